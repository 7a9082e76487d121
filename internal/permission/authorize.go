// Package permission is the pure decision core for role-based access.
// It holds the static role/capability grant table and the promotion ceiling
// guard. It performs no I/O: callers load the actor's membership (role and
// campus) and pass it in.
package permission

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidInvocation marks a caller contract violation: an unknown
	// capability, or a scoped capability invoked without scope context.
	ErrInvalidInvocation = errors.New("invalid permission invocation")
)

// Scope carries campus context for campus-scoped capabilities.
// TargetCampus is the campus the acted-on entity belongs to; empty means the
// target is church-wide.
type Scope struct {
	ActorCampus  string
	TargetCampus string
}

// Decision is a definite allow/deny outcome. Reason is set on denial and is
// suitable for a user-facing 403 message.
type Decision struct {
	Allowed bool
	Reason  string
}

func allowedDecision() Decision {
	return Decision{Allowed: true}
}

func deniedDecision(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

type grant uint8

const (
	deny grant = iota
	allow
	allowScoped
)

// grants holds one explicit decision per role. Every capability in the table
// spells out all four roles; there is no implicit default.
type grants struct {
	owner     grant
	overseer  grant
	moderator grant
	member    grant
}

func (g grants) forRole(r Role) (grant, error) {
	switch r {
	case RoleOwner:
		return g.owner, nil
	case RoleOverseer:
		return g.overseer, nil
	case RoleModerator:
		return g.moderator, nil
	case RoleMember:
		return g.member, nil
	default:
		return deny, fmt.Errorf("%w: %q", ErrInvalidRole, r)
	}
}

// table is the static capability grant matrix. Owners act church-wide;
// overseer grants are campus-scoped. The totality of the table over
// AllCapabilities x AllRoles is asserted by tests.
var table = map[Capability]grants{
	CapUpdateChurch:   {owner: allow, overseer: deny, moderator: deny, member: deny},
	CapDeleteChurch:   {owner: allow, overseer: deny, moderator: deny, member: deny},
	CapManageCampuses: {owner: allow, overseer: deny, moderator: deny, member: deny},

	CapPromoteToOwner:     {owner: allow, overseer: deny, moderator: deny, member: deny},
	CapPromoteToOverseer:  {owner: allow, overseer: deny, moderator: deny, member: deny},
	CapPromoteToModerator: {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapDemoteToMember:     {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapRemoveMembers:      {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapAssignCampus:       {owner: allow, overseer: allowScoped, moderator: deny, member: deny},

	CapCreateInvites:      {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapRevokeInvites:      {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapReviewJoinRequests: {owner: allow, overseer: allowScoped, moderator: allowScoped, member: deny},

	CapManageMinistries: {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapManageVolunteers: {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapCreateSchedules:  {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapUpdateSchedules:  {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapDeleteSchedules:  {owner: allow, overseer: allowScoped, moderator: deny, member: deny},

	CapManageSafetyTeam:      {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapCreateSafetySchedules: {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapUpdateSafetySchedules: {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapDeleteSafetySchedules: {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapManageIncidents:       {owner: allow, overseer: allowScoped, moderator: deny, member: deny},
	CapViewIncidents:         {owner: allow, overseer: allowScoped, moderator: allowScoped, member: deny},
}

// actionPhrases provides the verb phrase used in denial messages.
var actionPhrases = map[Capability]string{
	CapUpdateChurch:          "update church settings",
	CapDeleteChurch:          "delete a church",
	CapManageCampuses:        "manage campuses",
	CapPromoteToOwner:        "promote members to owner",
	CapPromoteToOverseer:     "promote members to overseer",
	CapPromoteToModerator:    "promote members to moderator",
	CapDemoteToMember:        "demote members",
	CapRemoveMembers:         "remove members",
	CapAssignCampus:          "assign members to a campus",
	CapCreateInvites:         "create invites",
	CapRevokeInvites:         "revoke invites",
	CapReviewJoinRequests:    "review join requests",
	CapManageMinistries:      "manage ministries",
	CapManageVolunteers:      "manage volunteers",
	CapCreateSchedules:       "create schedules",
	CapUpdateSchedules:       "update schedules",
	CapDeleteSchedules:       "delete schedules",
	CapManageSafetyTeam:      "manage the safety team",
	CapCreateSafetySchedules: "create safety schedules",
	CapUpdateSafetySchedules: "update safety schedules",
	CapDeleteSafetySchedules: "delete safety schedules",
	CapManageIncidents:       "manage incident reports",
	CapViewIncidents:         "view incident reports",
}

// Authorize decides whether an actor holding role may perform capability.
//
// It is a pure function: identical inputs always yield identical outputs.
// A Denied decision is a normal outcome, not an error; errors are reserved
// for contract violations (unknown role or capability, missing scope).
func Authorize(role Role, capability Capability, scope *Scope) (Decision, error) {
	if !role.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	g, ok := table[capability]
	if !ok {
		return Decision{}, fmt.Errorf("%w: unknown capability %q", ErrInvalidInvocation, capability)
	}

	gr, err := g.forRole(role)
	if err != nil {
		return Decision{}, err
	}

	switch gr {
	case deny:
		return deniedDecision(roleDenialReason(capability)), nil
	case allowScoped:
		if scope == nil {
			return Decision{}, fmt.Errorf("%w: capability %q requires scope context", ErrInvalidInvocation, capability)
		}
		if scope.ActorCampus == "" || scope.ActorCampus != scope.TargetCampus {
			return deniedDecision(fmt.Sprintf("you may only %s within your own campus", actionPhrases[capability])), nil
		}
	}

	// Promotion ceiling, enforced regardless of what the table says.
	if target, isPromotion := PromotionTarget(capability); isPromotion {
		if !CanAssignRole(role, target) {
			return deniedDecision("you cannot assign a role equal to or higher than your own"), nil
		}
	}

	return allowedDecision(), nil
}

// roleDenialReason builds a role-aware denial message such as
// "only owners and overseers can create schedules".
func roleDenialReason(capability Capability) string {
	g := table[capability]
	var holders []string
	for _, r := range AllRoles {
		gr, err := g.forRole(r)
		if err == nil && gr != deny {
			holders = append(holders, string(r)+"s")
		}
	}
	if len(holders) == 0 {
		return "nobody is permitted to " + actionPhrases[capability]
	}
	var who string
	if len(holders) == 1 {
		who = holders[0]
	} else {
		who = strings.Join(holders[:len(holders)-1], ", ") + " and " + holders[len(holders)-1]
	}
	return fmt.Sprintf("only %s can %s", who, actionPhrases[capability])
}
