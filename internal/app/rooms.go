package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rgutzeit/plausch/internal/core"
	"github.com/rgutzeit/plausch/internal/domain"
)

// RoomDirectory owns room membership and the per-room call session. One
// mutex covers both so membership removal, empty-room deletion, and
// call-session detach happen in a single step: no caller can observe a
// room transiently empty-but-not-deleted, or a call participant who has
// already left the room.
type RoomDirectory struct {
	mu       sync.RWMutex
	main     domain.RoomName
	rooms    map[domain.RoomName]*roomState
	byClient map[domain.ClientID]domain.RoomName
}

type roomState struct {
	members map[domain.ClientID]struct{}
	call    *callState
}

type callState struct {
	initiator    domain.ClientID
	participants map[domain.ClientID]struct{}
}

// MoveReport tells the caller what a Join or Leave changed, so the
// corresponding broadcasts can be emitted after the fact.
type MoveReport struct {
	From         domain.RoomName // previous room, "" if none
	To           domain.RoomName // "" on a plain leave
	AlreadyThere bool
	Created      bool // To was created by this join
	FromDeleted  bool // From hit zero members and was dropped
	LeftCall     bool // the mover was detached from From's call session
	CallClosed   bool // that detach (or the room's deletion) closed the session
}

// NewRoomDirectory creates the directory with the permanent main room,
// which exists for the lifetime of the process and is never deleted.
func NewRoomDirectory(main domain.RoomName) *RoomDirectory {
	d := &RoomDirectory{
		main:     main,
		rooms:    make(map[domain.RoomName]*roomState),
		byClient: make(map[domain.ClientID]domain.RoomName),
	}
	d.rooms[main] = &roomState{members: make(map[domain.ClientID]struct{})}
	return d
}

func (d *RoomDirectory) Main() domain.RoomName { return d.main }

// Join moves the client into room, creating it on first use. A join into
// the current room is a no-op. The previous room is left first: count
// decremented, room deleted if empty and non-main, and the client
// detached from its call session, all under the same lock.
func (d *RoomDirectory) Join(id domain.ClientID, room domain.RoomName) (MoveReport, error) {
	if !domain.ValidRoomName(room) {
		return MoveReport{}, domain.ErrInvalidRoom
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.byClient[id]; ok && cur == room {
		return MoveReport{From: cur, To: room, AlreadyThere: true}, nil
	}

	rep := d.leaveLocked(id)
	rep.To = room

	rs, ok := d.rooms[room]
	if !ok {
		rs = &roomState{members: make(map[domain.ClientID]struct{})}
		d.rooms[room] = rs
		rep.Created = true
	}
	rs.members[id] = struct{}{}
	d.byClient[id] = room

	log.Info().Str("module", "app.rooms").Str("cid", string(id)).
		Str("from", string(rep.From)).Str("to", string(room)).Msg("joined room")
	return rep, nil
}

// Leave is the disconnect half of Join: removes the client from its room
// with the same deletion and call-detach rules. The bool reports whether
// the client was in a room at all.
func (d *RoomDirectory) Leave(id domain.ClientID) (MoveReport, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byClient[id]; !ok {
		return MoveReport{}, false
	}
	return d.leaveLocked(id), true
}

func (d *RoomDirectory) leaveLocked(id domain.ClientID) MoveReport {
	var rep MoveReport
	from, ok := d.byClient[id]
	if !ok {
		return rep
	}
	rep.From = from
	delete(d.byClient, id)

	rs := d.rooms[from]
	delete(rs.members, id)

	if rs.call != nil {
		if _, in := rs.call.participants[id]; in {
			delete(rs.call.participants, id)
			rep.LeftCall = true
		}
		if len(rs.call.participants) == 0 {
			rs.call = nil
			rep.CallClosed = true
		}
	}

	if len(rs.members) == 0 && from != d.main {
		delete(d.rooms, from)
		rep.FromDeleted = true
		log.Info().Str("module", "app.rooms").Str("room", string(from)).Msg("room removed")
	}
	return rep
}

// RoomOf returns the client's current room.
func (d *RoomDirectory) RoomOf(id domain.ClientID) (domain.RoomName, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.byClient[id]
	return room, ok
}

// Exists reports whether a room is currently in the directory.
func (d *RoomDirectory) Exists(room domain.RoomName) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[room]
	return ok
}

// Members returns the connection ids in a room, in stable order.
func (d *RoomDirectory) Members(room domain.RoomName) []domain.ClientID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rs, ok := d.rooms[room]
	if !ok {
		return nil
	}
	out := make([]domain.ClientID, 0, len(rs.members))
	for id := range rs.members {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *RoomDirectory) MemberCount(room domain.RoomName) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if rs, ok := d.rooms[room]; ok {
		return len(rs.members)
	}
	return 0
}

// List returns every room with its member count, sorted by name.
func (d *RoomDirectory) List() []core.RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(d.rooms))
	for name, rs := range d.rooms {
		out = append(out, core.RoomInfo{Name: name, Count: len(rs.members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OpenCall opens the room's call session with the caller as the sole
// participant. At most one session per room may exist.
func (d *RoomDirectory) OpenCall(id domain.ClientID) (domain.RoomName, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.byClient[id]
	if !ok {
		return "", domain.ErrNotInRoom
	}
	rs := d.rooms[room]
	if rs.call != nil {
		return room, domain.ErrCallAlreadyOpen
	}
	rs.call = &callState{
		initiator:    id,
		participants: map[domain.ClientID]struct{}{id: {}},
	}
	log.Info().Str("module", "app.rooms").Str("cid", string(id)).Str("room", string(room)).Msg("call opened")
	return room, nil
}

// JoinCall adds the caller to its room's open session and returns the
// participants that were already in it, so each can be rung.
func (d *RoomDirectory) JoinCall(id domain.ClientID) (domain.RoomName, []domain.ClientID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.byClient[id]
	if !ok {
		return "", nil, domain.ErrNotInRoom
	}
	rs := d.rooms[room]
	if rs.call == nil {
		return room, nil, domain.ErrNoOpenCall
	}
	if _, in := rs.call.participants[id]; in {
		return room, nil, domain.ErrAlreadyInCall
	}
	others := make([]domain.ClientID, 0, len(rs.call.participants))
	for p := range rs.call.participants {
		others = append(others, p)
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
	rs.call.participants[id] = struct{}{}
	return room, others, nil
}

// LeaveCall removes the caller from its room's session. When the last
// participant leaves, the session is destroyed and closed=true.
func (d *RoomDirectory) LeaveCall(id domain.ClientID) (domain.RoomName, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.byClient[id]
	if !ok {
		return "", false, domain.ErrNotInRoom
	}
	rs := d.rooms[room]
	if rs.call == nil {
		return room, false, domain.ErrNoOpenCall
	}
	if _, in := rs.call.participants[id]; !in {
		return room, false, domain.ErrNoOpenCall
	}
	delete(rs.call.participants, id)
	if len(rs.call.participants) == 0 {
		rs.call = nil
		return room, true, nil
	}
	return room, false, nil
}

// CallParticipants returns the ids inside the room's call session, or nil
// if no session is open.
func (d *RoomDirectory) CallParticipants(room domain.RoomName) []domain.ClientID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rs, ok := d.rooms[room]
	if !ok || rs.call == nil {
		return nil
	}
	out := make([]domain.ClientID, 0, len(rs.call.participants))
	for id := range rs.call.participants {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
