package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgutzeit/plausch/internal/domain"
)

func TestBanLifecycle(t *testing.T) {
	bans := NewBanList()
	now := time.Now()

	require.NoError(t, bans.Ban("Bob", now.Add(10*time.Minute), now))
	banned, left := bans.Banned("bob", now)
	assert.True(t, banned, "match is case-insensitive")
	assert.Equal(t, 10*time.Minute, left)

	// active ban cannot be stacked
	assert.ErrorIs(t, bans.Ban("BOB", now.Add(time.Minute), now), domain.ErrAlreadySanctioned)

	// expired records stay in place and stop matching
	later := now.Add(11 * time.Minute)
	banned, _ = bans.Banned("Bob", later)
	assert.False(t, banned)

	// and the name can be banned again afterwards
	require.NoError(t, bans.Ban("Bob", later.Add(time.Minute), later))
}

func TestLiftIdempotent(t *testing.T) {
	bans := NewBanList()
	now := time.Now()

	assert.False(t, bans.Lift("Bob", now), "nothing to lift")

	require.NoError(t, bans.Ban("Bob", now.Add(time.Minute), now))
	assert.True(t, bans.Lift("Bob", now))
	assert.False(t, bans.Lift("Bob", now))

	banned, _ := bans.Banned("Bob", now)
	assert.False(t, banned)
}

func TestEntriesListsOnlyActive(t *testing.T) {
	bans := NewBanList()
	now := time.Now()
	require.NoError(t, bans.Ban("Old", now.Add(time.Minute), now))
	require.NoError(t, bans.Ban("New", now.Add(time.Hour), now))

	entries := bans.Entries(now.Add(2 * time.Minute))
	require.Len(t, entries, 1)
	assert.Equal(t, "New", entries[0].Name)
}
