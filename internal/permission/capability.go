package permission

// Capability is a named action that the permission table maps to a
// per-role grant.
type Capability string

const (
	// Church management
	CapUpdateChurch   Capability = "updateChurch"
	CapDeleteChurch   Capability = "deleteChurch"
	CapManageCampuses Capability = "manageCampuses"

	// Membership management
	CapPromoteToOwner     Capability = "promoteToOwner"
	CapPromoteToOverseer  Capability = "promoteToOverseer"
	CapPromoteToModerator Capability = "promoteToModerator"
	CapDemoteToMember     Capability = "demoteToMember"
	CapRemoveMembers      Capability = "removeMembers"
	CapAssignCampus       Capability = "assignCampus"

	// Invites and join requests
	CapCreateInvites      Capability = "createInvites"
	CapRevokeInvites      Capability = "revokeInvites"
	CapReviewJoinRequests Capability = "reviewJoinRequests"

	// Ministries and volunteer scheduling
	CapManageMinistries Capability = "manageMinistries"
	CapManageVolunteers Capability = "manageVolunteers"
	CapCreateSchedules  Capability = "createSchedules"
	CapUpdateSchedules  Capability = "updateSchedules"
	CapDeleteSchedules  Capability = "deleteSchedules"

	// Safety team
	CapManageSafetyTeam      Capability = "manageSafetyTeam"
	CapCreateSafetySchedules Capability = "createSafetySchedules"
	CapUpdateSafetySchedules Capability = "updateSafetySchedules"
	CapDeleteSafetySchedules Capability = "deleteSafetySchedules"
	CapManageIncidents       Capability = "manageIncidents"
	CapViewIncidents         Capability = "viewIncidents"
)

// AllCapabilities lists every capability the table must cover.
var AllCapabilities = []Capability{
	CapUpdateChurch, CapDeleteChurch, CapManageCampuses,
	CapPromoteToOwner, CapPromoteToOverseer, CapPromoteToModerator,
	CapDemoteToMember, CapRemoveMembers, CapAssignCampus,
	CapCreateInvites, CapRevokeInvites, CapReviewJoinRequests,
	CapManageMinistries, CapManageVolunteers,
	CapCreateSchedules, CapUpdateSchedules, CapDeleteSchedules,
	CapManageSafetyTeam, CapCreateSafetySchedules, CapUpdateSafetySchedules,
	CapDeleteSafetySchedules, CapManageIncidents, CapViewIncidents,
}

// promotionTargets maps role-assignment capabilities to the role they would
// set on the target membership. Authorize applies the CanAssignRole ceiling
// to these on top of the table lookup.
var promotionTargets = map[Capability]Role{
	CapPromoteToOwner:     RoleOwner,
	CapPromoteToOverseer:  RoleOverseer,
	CapPromoteToModerator: RoleModerator,
	CapDemoteToMember:     RoleMember,
}

// PromotionTarget returns the role a promotion capability assigns, if any.
func PromotionTarget(c Capability) (Role, bool) {
	r, ok := promotionTargets[c]
	return r, ok
}
