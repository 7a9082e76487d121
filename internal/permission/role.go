package permission

import "fmt"

// Role is a membership role within a church, ordered by privilege.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleOverseer  Role = "overseer"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

var roleLevels = map[Role]int{
	RoleOwner:     4,
	RoleOverseer:  3,
	RoleModerator: 2,
	RoleMember:    1,
}

// AllRoles lists every valid role, highest privilege first.
var AllRoles = []Role{RoleOwner, RoleOverseer, RoleModerator, RoleMember}

// ParseRole validates a raw role string from storage or input.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the numeric privilege level (owner=4 .. member=1), 0 for unknown.
func (r Role) Level() int {
	return roleLevels[r]
}

// Outranks reports whether r is strictly higher privileged than other.
func (r Role) Outranks(other Role) bool {
	return r.Level() > other.Level()
}

// CanAssignRole reports whether an actor holding `actor` may set a membership
// to `target`. Only overseers and above hold any assignment authority, and the
// ceiling is strict: the target role must rank below the actor's own role.
// Owners are the exception and may assign any role, including transferring
// ownership itself.
//
// This guard is enforced independently of the capability table, so a table
// entry mistakenly granting e.g. an overseer promoteToOverseer or a moderator
// demoteToMember could never take effect.
func CanAssignRole(actor, target Role) bool {
	if !actor.Valid() || !target.Valid() {
		return false
	}
	if actor == RoleOwner {
		return true
	}
	if actor.Level() < RoleOverseer.Level() {
		return false
	}
	return actor.Outranks(target)
}
