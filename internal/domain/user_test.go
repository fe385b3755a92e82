package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRolePermits(t *testing.T) {
	assert.True(t, RoleOwner.Permits(RoleOwner))
	assert.True(t, RoleOwner.Permits(RoleModerator))
	assert.True(t, RoleModerator.Permits(RoleGuest))
	assert.False(t, RoleGuest.Permits(RoleModerator))
	assert.False(t, RoleModerator.Permits(RoleOwner))
}

func TestIdentityMutedLazyExpiry(t *testing.T) {
	now := time.Now()
	ident := Identity{ID: "c1", Name: "Bob"}

	active, _ := ident.Muted(now)
	assert.False(t, active, "no mute set")

	ident.MuteExpiry = now.Add(time.Minute)
	active, left := ident.Muted(now)
	assert.True(t, active)
	assert.Equal(t, time.Minute, left)

	// nothing clears the field, the timestamp just stops matching
	active, _ = ident.Muted(now.Add(2 * time.Minute))
	assert.False(t, active)
	assert.False(t, ident.MuteExpiry.IsZero())
}
