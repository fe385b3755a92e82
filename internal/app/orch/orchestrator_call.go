package orch

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rgutzeit/plausch/internal/core"
	"github.com/rgutzeit/plausch/internal/domain"
)

// directCall rings one connection by name, outside of any room call
// session. The callee decides what to do with it.
func (o *Orchestrator) directCall(id domain.ClientID, targetName string) {
	target, ok := o.Reg.Lookup(targetName)
	if !ok {
		o.fail(id, domain.ErrUnknownTarget)
		return
	}
	name := o.Reg.NameOf(target)
	o.Notify.ToClient(target, core.IncomingCallEvent{
		Type:     "incoming-call",
		FromID:   id,
		FromName: o.Reg.NameOf(id),
	})
	o.notice(id, fmt.Sprintf("ringing %s", name))
}

func (o *Orchestrator) openCall(id domain.ClientID) {
	room, err := o.Rooms.OpenCall(id)
	if err != nil {
		o.fail(id, err)
		return
	}
	name := o.Reg.NameOf(id)
	o.Notify.ToMany(o.Rooms.Members(room),
		core.System(fmt.Sprintf("%s opened a call, /joincall to join", name)))
	log.Info().Str("module", "orch").Str("room", string(room)).Str("name", name).Msg("call opened")
}

// joinCall adds the sender to the room's open session and rings every
// participant that was already in: each of them initiates a peer
// negotiation toward the newcomer, which is what builds the full mesh.
func (o *Orchestrator) joinCall(id domain.ClientID) {
	room, others, err := o.Rooms.JoinCall(id)
	if err != nil {
		o.fail(id, err)
		return
	}
	name := o.Reg.NameOf(id)
	ring := core.IncomingCallEvent{Type: "incoming-call", FromID: id, FromName: name}
	o.Notify.ToMany(others, ring)
	o.Notify.ToMany(o.Rooms.Members(room), core.System(fmt.Sprintf("%s joined the call", name)))
}

func (o *Orchestrator) leaveCall(id domain.ClientID) {
	room, closed, err := o.Rooms.LeaveCall(id)
	if err != nil {
		o.fail(id, err)
		return
	}
	members := o.Rooms.Members(room)
	o.Notify.ToMany(members, core.System(fmt.Sprintf("%s left the call", o.Reg.NameOf(id))))
	if closed {
		o.Notify.ToMany(members, core.CallClosedEvent{Type: "call-closed", Room: room})
		o.Notify.ToMany(members, core.System("the call ended"))
	}
}

// HandleRelay forwards an opaque offer/answer/ice-candidate payload to
// the named target, stamping the sender's id as from. The payload is
// never inspected; this layer is a relay, not a media negotiator.
func (o *Orchestrator) HandleRelay(id domain.ClientID, kind string, to domain.ClientID, payload json.RawMessage) {
	if _, ok := o.Reg.Identity(to); !ok {
		o.fail(id, domain.ErrUnknownTarget)
		return
	}
	o.Notify.ToClient(to, core.RelayEvent{Type: kind, From: id, Payload: payload})
}
