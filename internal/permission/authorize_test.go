package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleScope returns a same-campus scope so scoped grants resolve to their
// base table decision.
func sampleScope() *Scope {
	return &Scope{ActorCampus: "campus-1", TargetCampus: "campus-1"}
}

func TestAuthorizeTotality(t *testing.T) {
	// Every role x capability pair must yield a definite decision.
	for _, role := range AllRoles {
		for _, cap := range AllCapabilities {
			d, err := Authorize(role, cap, sampleScope())
			require.NoError(t, err, "role=%s cap=%s", role, cap)
			assert.NotNil(t, d)
			if !d.Allowed {
				assert.NotEmpty(t, d.Reason, "denials must carry a reason (role=%s cap=%s)", role, cap)
			}
		}
	}
}

func TestAuthorizeInvalidRole(t *testing.T) {
	_, err := Authorize(Role("superuser"), CapCreateInvites, sampleScope())
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthorizeUnknownCapability(t *testing.T) {
	_, err := Authorize(RoleOwner, Capability("launchRockets"), nil)
	assert.ErrorIs(t, err, ErrInvalidInvocation)
}

func TestAuthorizeMissingScopeIsContractViolation(t *testing.T) {
	// createInvites is scoped for overseers: calling without scope context
	// must fail rather than silently deny or allow.
	_, err := Authorize(RoleOverseer, CapCreateInvites, nil)
	assert.ErrorIs(t, err, ErrInvalidInvocation)

	// For a role whose grant is unscoped, scope is not required.
	d, err := Authorize(RoleOwner, CapCreateInvites, nil)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAuthorizeScopeEnforcement(t *testing.T) {
	t.Run("same campus allowed", func(t *testing.T) {
		d, err := Authorize(RoleOverseer, CapCreateInvites, &Scope{ActorCampus: "West", TargetCampus: "West"})
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("different campus denied", func(t *testing.T) {
		d, err := Authorize(RoleOverseer, CapCreateInvites, &Scope{ActorCampus: "West", TargetCampus: "East"})
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Contains(t, d.Reason, "campus")
	})

	t.Run("actor without campus denied", func(t *testing.T) {
		d, err := Authorize(RoleOverseer, CapCreateInvites, &Scope{ActorCampus: "", TargetCampus: ""})
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})

	t.Run("church-wide target denied for scoped actor", func(t *testing.T) {
		d, err := Authorize(RoleOverseer, CapRemoveMembers, &Scope{ActorCampus: "West", TargetCampus: ""})
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})
}

func TestNoUpwardPromotion(t *testing.T) {
	// No actor below owner may ever assign a role at or above their own,
	// whatever the table says for the individual capability.
	for _, actor := range AllRoles {
		for cap, target := range promotionTargets {
			d, err := Authorize(actor, cap, sampleScope())
			require.NoError(t, err)
			if d.Allowed && actor != RoleOwner {
				assert.True(t, actor.Outranks(target),
					"actor %s was allowed to assign %s via %s", actor, target, cap)
			}
		}
	}
}

func TestPromotionScenarios(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		cap     Capability
		scope   *Scope
		allowed bool
	}{
		{"owner may promote to owner", RoleOwner, CapPromoteToOwner, nil, true},
		{"overseer may not promote to owner", RoleOverseer, CapPromoteToOwner, sampleScope(), false},
		{"overseer may promote to moderator in own campus", RoleOverseer, CapPromoteToModerator, sampleScope(), true},
		{"overseer may not promote to moderator in another campus", RoleOverseer, CapPromoteToModerator, &Scope{ActorCampus: "A", TargetCampus: "B"}, false},
		{"moderator may not promote", RoleModerator, CapPromoteToModerator, sampleScope(), false},
		{"member may not promote", RoleMember, CapPromoteToModerator, sampleScope(), false},
		{"moderator may not create invites", RoleModerator, CapCreateInvites, sampleScope(), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Authorize(tc.role, tc.cap, tc.scope)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, d.Allowed, "reason: %s", d.Reason)
		})
	}
}

func TestCanAssignRoleCeiling(t *testing.T) {
	assert.True(t, CanAssignRole(RoleOwner, RoleOwner))
	assert.True(t, CanAssignRole(RoleOwner, RoleOverseer))
	assert.True(t, CanAssignRole(RoleOverseer, RoleModerator))
	assert.True(t, CanAssignRole(RoleOverseer, RoleMember))

	assert.False(t, CanAssignRole(RoleOverseer, RoleOverseer))
	assert.False(t, CanAssignRole(RoleOverseer, RoleOwner))
	assert.False(t, CanAssignRole(RoleModerator, RoleModerator))
	assert.False(t, CanAssignRole(RoleModerator, RoleMember))
	assert.False(t, CanAssignRole(RoleMember, RoleMember))
	assert.False(t, CanAssignRole(Role("bogus"), RoleMember))
}

func TestAuthorizeIsPure(t *testing.T) {
	// Repeated identical calls must yield identical decisions.
	for i := 0; i < 50; i++ {
		for _, role := range AllRoles {
			first, err := Authorize(role, CapCreateSchedules, sampleScope())
			require.NoError(t, err)
			second, err := Authorize(role, CapCreateSchedules, sampleScope())
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	}
}

func TestDenialMessages(t *testing.T) {
	d, err := Authorize(RoleMember, CapCreateSchedules, nil)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	assert.Equal(t, "only owners and overseers can create schedules", d.Reason)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("overseer")
	require.NoError(t, err)
	assert.Equal(t, RoleOverseer, r)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleOwner.Outranks(RoleOverseer))
	assert.True(t, RoleOverseer.Outranks(RoleModerator))
	assert.True(t, RoleModerator.Outranks(RoleMember))
	assert.False(t, RoleMember.Outranks(RoleMember))
	assert.False(t, RoleMember.Outranks(RoleOwner))
}
