package orch

import (
	"fmt"
	"sort"

	"github.com/rgutzeit/plausch/internal/app"
	"github.com/rgutzeit/plausch/internal/core"
	"github.com/rgutzeit/plausch/internal/domain"
)

// JoinRoom is the transport-facing room-change request.
func (o *Orchestrator) JoinRoom(id domain.ClientID, room domain.RoomName) {
	o.joinRoom(id, room, false)
}

// joinRoom moves the client and emits everything both rooms need to see:
// the old room learns about the departure (and a possible call closure),
// the new room about the arrival, everyone about a deleted room, and the
// mover gets an acknowledgment plus the new roster.
func (o *Orchestrator) joinRoom(id domain.ClientID, room domain.RoomName, shortcut bool) {
	if shortcut && !o.Rooms.Exists(room) {
		o.notice(id, fmt.Sprintf("unknown command /%s, try /help", room))
		return
	}

	rep, err := o.Rooms.Join(id, room)
	if err != nil {
		o.fail(id, err)
		return
	}
	if rep.AlreadyThere {
		o.notice(id, fmt.Sprintf("you are already in %s", room))
		return
	}

	name := o.Reg.NameOf(id)
	o.afterLeave(rep, name)

	members := o.Rooms.Members(room)
	o.Notify.ToMany(members, core.System(fmt.Sprintf("%s joined %s", name, room)))
	o.Notify.ToClient(id, core.RoomChangedEvent{Type: "room-changed", Room: room})
	o.sendRoster(room)
}

// afterLeave emits the departure half of a move or disconnect, from a
// MoveReport produced under the directory's lock.
func (o *Orchestrator) afterLeave(rep app.MoveReport, name string) {
	if rep.From == "" {
		return
	}
	if rep.FromDeleted {
		o.Notify.ToAll(core.RoomRemovedEvent{Type: "room-removed", Room: rep.From})
		return
	}
	stayed := o.Rooms.Members(rep.From)
	o.Notify.ToMany(stayed, core.System(fmt.Sprintf("%s left %s", name, rep.From)))
	if rep.LeftCall {
		o.Notify.ToMany(stayed, core.System(fmt.Sprintf("%s left the call", name)))
	}
	if rep.CallClosed {
		o.Notify.ToMany(stayed, core.CallClosedEvent{Type: "call-closed", Room: rep.From})
		o.Notify.ToMany(stayed, core.System("the call ended"))
	}
	o.sendRoster(rep.From)
}

// roomRoster answers /members with the ordered names of the client's room.
func (o *Orchestrator) roomRoster(id domain.ClientID) {
	room, ok := o.Rooms.RoomOf(id)
	if !ok {
		o.fail(id, domain.ErrNotInRoom)
		return
	}
	o.Notify.ToClient(id, core.UserListEvent{Type: "userlist", Room: room, Names: o.names(o.Rooms.Members(room))})
}

func (o *Orchestrator) roomList(id domain.ClientID) {
	o.Notify.ToClient(id, core.RoomListEvent{Type: "rooms", Rooms: o.Rooms.List()})
}

// sendRoster pushes the current ordered member names to a whole room.
func (o *Orchestrator) sendRoster(room domain.RoomName) {
	members := o.Rooms.Members(room)
	o.Notify.ToMany(members, core.UserListEvent{Type: "userlist", Room: room, Names: o.names(members)})
}

// names maps connection ids to sorted display names. Names are stored
// escaped, so they are broadcast as-is.
func (o *Orchestrator) names(ids []domain.ClientID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := o.Reg.NameOf(id); n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
