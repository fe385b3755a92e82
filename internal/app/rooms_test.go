package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgutzeit/plausch/internal/domain"
)

func newDir() *RoomDirectory {
	return NewRoomDirectory("Global")
}

func TestJoinCreatesAndLeaveDeletes(t *testing.T) {
	d := newDir()
	_, err := d.Join("a", "Global")
	require.NoError(t, err)
	_, err = d.Join("b", "Global")
	require.NoError(t, err)

	rep, err := d.Join("a", "TeamX")
	require.NoError(t, err)
	assert.True(t, rep.Created)
	assert.Equal(t, domain.RoomName("Global"), rep.From)
	assert.False(t, rep.FromDeleted, "Global keeps a member")
	assert.Equal(t, 1, d.MemberCount("TeamX"))
	assert.Equal(t, 1, d.MemberCount("Global"))

	// disconnect of the last member removes the room
	rep, had := d.Leave("a")
	assert.True(t, had)
	assert.True(t, rep.FromDeleted)
	assert.False(t, d.Exists("TeamX"))
}

func TestMainRoomIsNeverDeleted(t *testing.T) {
	d := newDir()
	_, err := d.Join("a", "Global")
	require.NoError(t, err)
	rep, had := d.Leave("a")
	assert.True(t, had)
	assert.False(t, rep.FromDeleted)
	assert.True(t, d.Exists("Global"))
	assert.Equal(t, 0, d.MemberCount("Global"))
}

func TestJoinSameRoomIsNoOp(t *testing.T) {
	d := newDir()
	_, err := d.Join("a", "Global")
	require.NoError(t, err)
	rep, err := d.Join("a", "Global")
	require.NoError(t, err)
	assert.True(t, rep.AlreadyThere)
	assert.Equal(t, 1, d.MemberCount("Global"))
}

func TestJoinInvalidRoom(t *testing.T) {
	d := newDir()
	_, err := d.Join("a", "no spaces")
	assert.ErrorIs(t, err, domain.ErrInvalidRoom)
	_, ok := d.RoomOf("a")
	assert.False(t, ok, "failed join leaves no trace")
}

func TestLeaveWithoutRoom(t *testing.T) {
	d := newDir()
	_, had := d.Leave("ghost")
	assert.False(t, had)
}

func TestCallLifecycle(t *testing.T) {
	d := newDir()
	for _, id := range []domain.ClientID{"a", "b", "c"} {
		_, err := d.Join(id, "R")
		require.NoError(t, err)
	}

	_, err := d.OpenCall("a")
	require.NoError(t, err)
	_, err = d.OpenCall("b")
	assert.ErrorIs(t, err, domain.ErrCallAlreadyOpen)

	_, others, err := d.JoinCall("b")
	require.NoError(t, err)
	assert.Equal(t, []domain.ClientID{"a"}, others)

	_, _, err = d.JoinCall("b")
	assert.ErrorIs(t, err, domain.ErrAlreadyInCall)

	_, others, err = d.JoinCall("c")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ClientID{"a", "b"}, others)

	// leaving one by one; the last participant out closes the session
	_, closed, err := d.LeaveCall("a")
	require.NoError(t, err)
	assert.False(t, closed)
	_, closed, err = d.LeaveCall("b")
	require.NoError(t, err)
	assert.False(t, closed)
	_, closed, err = d.LeaveCall("c")
	require.NoError(t, err)
	assert.True(t, closed)

	_, _, err = d.LeaveCall("c")
	assert.ErrorIs(t, err, domain.ErrNoOpenCall)
}

func TestCallRequiresRoomMembership(t *testing.T) {
	d := newDir()
	_, err := d.OpenCall("ghost")
	assert.ErrorIs(t, err, domain.ErrNotInRoom)
	_, _, err = d.JoinCall("ghost")
	assert.ErrorIs(t, err, domain.ErrNotInRoom)
}

// Call participants are always a subset of the room's members: changing
// rooms or disconnecting detaches the participant in the same step.
func TestCallDetachOnRoomChangeAndDisconnect(t *testing.T) {
	d := newDir()
	for _, id := range []domain.ClientID{"a", "b"} {
		_, err := d.Join(id, "R")
		require.NoError(t, err)
	}
	_, err := d.OpenCall("a")
	require.NoError(t, err)
	_, _, err = d.JoinCall("b")
	require.NoError(t, err)

	rep, err := d.Join("b", "Global")
	require.NoError(t, err)
	assert.True(t, rep.LeftCall)
	assert.False(t, rep.CallClosed)
	assert.Equal(t, []domain.ClientID{"a"}, d.CallParticipants("R"))

	rep, had := d.Leave("a")
	assert.True(t, had)
	assert.True(t, rep.LeftCall)
	assert.True(t, rep.CallClosed)
	assert.True(t, rep.FromDeleted, "a was the last member of R")
	assert.False(t, d.Exists("R"))
}

func TestCallParticipantsStayMembers(t *testing.T) {
	d := newDir()
	ids := []domain.ClientID{"a", "b", "c", "d"}
	for _, id := range ids {
		_, err := d.Join(id, "R")
		require.NoError(t, err)
	}
	_, err := d.OpenCall("a")
	require.NoError(t, err)
	for _, id := range ids[1:] {
		_, _, err := d.JoinCall(id)
		require.NoError(t, err)
	}

	check := func() {
		members := map[domain.ClientID]bool{}
		for _, m := range d.Members("R") {
			members[m] = true
		}
		for _, p := range d.CallParticipants("R") {
			assert.True(t, members[p], "participant %s not a member", p)
		}
	}

	check()
	_, _ = d.Join("b", "Global")
	check()
	_, _ = d.Leave("c")
	check()
	_, _, _ = d.LeaveCall("d")
	check()
}

func TestListIncludesCounts(t *testing.T) {
	d := newDir()
	_, err := d.Join("a", "Global")
	require.NoError(t, err)
	_, err = d.Join("b", "Zimmer")
	require.NoError(t, err)

	list := d.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.RoomName("Global"), list[0].Name)
	assert.Equal(t, 1, list[0].Count)
	assert.Equal(t, domain.RoomName("Zimmer"), list[1].Name)
}
