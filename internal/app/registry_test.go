package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgutzeit/plausch/internal/domain"
)

func TestRegisterGeneratesUniqueGuestNames(t *testing.T) {
	reg := NewRegistry("Gast")
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ident := reg.Register(domain.ClientID(strings.Repeat("x", i+1)))
		assert.True(t, strings.HasPrefix(ident.Name, "Gast-"), "got %q", ident.Name)
		assert.Equal(t, domain.RoleGuest, ident.Role)
		key := domain.NameKey(ident.Name)
		assert.False(t, seen[key], "duplicate name %q", ident.Name)
		seen[key] = true
	}
}

func TestRenameCollisionSuffixes(t *testing.T) {
	reg := NewRegistry("Gast")
	reg.Register("a")
	reg.Register("b")
	reg.Register("c")

	_, got, err := reg.Rename("a", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got)

	// collisions are disambiguated, never hard failures
	_, got, err = reg.Rename("b", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob_2", got)

	// case-insensitive collision
	_, got, err = reg.Rename("c", "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob_3", got)
}

func TestRenameSelfCaseChange(t *testing.T) {
	reg := NewRegistry("Gast")
	reg.Register("a")
	_, _, err := reg.Rename("a", "Bob")
	require.NoError(t, err)

	// changing only the case of your own name is not a collision
	_, got, err := reg.Rename("a", "BOB")
	require.NoError(t, err)
	assert.Equal(t, "BOB", got)
}

func TestRenameInvalid(t *testing.T) {
	reg := NewRegistry("Gast")
	ident := reg.Register("a")

	for _, bad := range []string{"", "   ", "admin", strings.Repeat("y", 40)} {
		_, _, err := reg.Rename("a", bad)
		assert.ErrorIs(t, err, domain.ErrInvalidName, "input %q", bad)
	}
	got, _ := reg.Identity("a")
	assert.Equal(t, ident.Name, got.Name, "failed rename must not change state")
}

func TestUnregisterFreesName(t *testing.T) {
	reg := NewRegistry("Gast")
	reg.Register("a")
	_, _, err := reg.Rename("a", "Bob")
	require.NoError(t, err)

	reg.Unregister("a")
	_, ok := reg.Lookup("Bob")
	assert.False(t, ok)

	reg.Register("b")
	_, got, err := reg.Rename("b", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got, "name reusable after disconnect")
}

func TestLookupCaseInsensitive(t *testing.T) {
	reg := NewRegistry("Gast")
	reg.Register("a")
	_, _, err := reg.Rename("a", "Bob")
	require.NoError(t, err)

	id, ok := reg.Lookup("bOb")
	assert.True(t, ok)
	assert.Equal(t, domain.ClientID("a"), id)
}

func TestGrantOwnerSingleHolder(t *testing.T) {
	reg := NewRegistry("Gast")
	reg.Register("a")
	reg.Register("b")

	require.NoError(t, reg.GrantOwner("a"))
	ident, _ := reg.Identity("a")
	assert.Equal(t, domain.RoleOwner, ident.Role)

	assert.ErrorIs(t, reg.GrantOwner("b"), domain.ErrOwnerTaken)
	// re-granting to the same holder is fine
	assert.NoError(t, reg.GrantOwner("a"))

	// the slot frees up when the owner disconnects
	reg.Unregister("a")
	assert.NoError(t, reg.GrantOwner("b"))
}

func TestMuteRoundTrip(t *testing.T) {
	reg := NewRegistry("Gast")
	reg.Register("a")
	now := time.Now()

	reg.SetMute("a", now.Add(time.Minute))
	active, left := reg.Muted("a", now)
	assert.True(t, active)
	assert.Equal(t, time.Minute, left)

	active, _ = reg.Muted("a", now.Add(61*time.Second))
	assert.False(t, active)

	reg.SetMute("a", now.Add(time.Minute))
	assert.True(t, reg.ClearMute("a", now))
	active, _ = reg.Muted("a", now)
	assert.False(t, active)
	assert.False(t, reg.ClearMute("a", now), "second clear finds nothing")
}

func TestUnknownConnectionNoOps(t *testing.T) {
	reg := NewRegistry("Gast")
	_, _, err := reg.Rename("ghost", "Bob")
	assert.NoError(t, err)
	assert.False(t, reg.SetRole("ghost", domain.RoleModerator))
	assert.False(t, reg.SetMute("ghost", time.Now()))
	reg.Unregister("ghost")
}
