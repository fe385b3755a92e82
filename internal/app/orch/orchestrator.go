// Package orch wires the stores together and dispatches inbound events.
// One event is processed to completion before its effects are visible
// anywhere; every multi-step transition lives inside a single store call.
package orch

import (
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rgutzeit/plausch/internal/app"
	"github.com/rgutzeit/plausch/internal/app/moderation"
	"github.com/rgutzeit/plausch/internal/command"
	"github.com/rgutzeit/plausch/internal/core"
	"github.com/rgutzeit/plausch/internal/domain"
)

type Orchestrator struct {
	Reg    *app.Registry
	Rooms  *app.RoomDirectory
	Bans   *app.BanList
	Mod    *moderation.Engine
	Notify core.Notifier

	// OwnerSecret is the startup-configured capability token for the
	// one-shot owner grant. Empty disables the grant path.
	OwnerSecret string

	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Connect handles a fresh transport connection. A claimed name (from the
// handshake) is checked against the ban ledger before anything else; a
// banned name never gets an identity. Otherwise the client is registered
// as a guest and auto-joined into the main room.
func (o *Orchestrator) Connect(id domain.ClientID, claimedName string) {
	if claimedName != "" {
		// The ledger stores names in their escaped display form, so the
		// claimed name goes through the same normalization before the
		// check. An unsanitizable claim can never become a display name
		// and needs no screening.
		if name, err := domain.SanitizeName(claimedName); err == nil {
			if banned, left := o.Bans.Banned(name, o.now()); banned {
				o.fail(id, fmt.Errorf("%w (%s left)", domain.ErrBanned, fmtDur(left)))
				o.Notify.Hangup(id)
				return
			}
		}
	}

	ident := o.Reg.Register(id)
	if claimedName != "" {
		if _, name, err := o.Reg.Rename(id, claimedName); err == nil && name != "" {
			ident.Name = name
		}
	}

	o.joinRoom(id, o.Rooms.Main(), false)
	o.Notify.ToClient(id, core.WhoAmIEvent{
		Type: "whoami",
		ID:   id,
		Name: o.Reg.NameOf(id),
		Room: o.Rooms.Main(),
	})
	log.Info().Str("module", "orch").Str("cid", string(id)).Str("name", ident.Name).Msg("connected")
}

// Disconnect is the terminal event for a connection: leave the current
// room (with the usual deletion and call-teardown rules), then drop the
// identity. No state for the connection is valid afterwards.
func (o *Orchestrator) Disconnect(id domain.ClientID) {
	name := o.Reg.NameOf(id)
	rep, had := o.Rooms.Leave(id)
	if had {
		o.afterLeave(rep, name)
	}
	o.Reg.Unregister(id)
	log.Info().Str("module", "orch").Str("cid", string(id)).Str("name", name).Msg("disconnected")
}

// HandleLine classifies one raw text line and routes it.
func (o *Orchestrator) HandleLine(id domain.ClientID, line string) {
	cmd, err := command.Parse(line, o.OwnerSecret)
	if err != nil {
		var ue *command.UsageError
		if errors.As(err, &ue) {
			o.notice(id, ue.Error())
			return
		}
		o.fail(id, err)
		return
	}

	switch cmd.Kind {
	case command.Chat:
		o.chat(id, cmd.Text)
	case command.Rename:
		o.rename(id, cmd.Name)
	case command.Whisper:
		o.whisper(id, cmd.Name, cmd.Text)
	case command.Join:
		o.joinRoom(id, cmd.Room, cmd.Shortcut)
	case command.Main:
		o.joinRoom(id, o.Rooms.Main(), false)
	case command.Online:
		o.online(id)
	case command.Members:
		o.roomRoster(id)
	case command.Rooms:
		o.roomList(id)
	case command.Help:
		o.notice(id, command.HelpText)
	case command.Kick:
		o.kick(id, cmd.Name)
	case command.Ban:
		o.ban(id, cmd.Name, cmd.Minutes)
	case command.Unban:
		o.unban(id, cmd.Name)
	case command.Mute:
		o.mute(id, cmd.Name, cmd.Minutes)
	case command.Unmute:
		o.unmute(id, cmd.Name)
	case command.Promote:
		o.setRole(id, cmd.Name, true)
	case command.Demote:
		o.setRole(id, cmd.Name, false)
	case command.RenameOther:
		o.renameOther(id, cmd.Name, cmd.Arg)
	case command.BanLog:
		o.banLog(id)
	case command.MuteLog:
		o.muteLog(id)
	case command.Call:
		o.directCall(id, cmd.Name)
	case command.OpenCall:
		o.openCall(id)
	case command.JoinCall:
		o.joinCall(id)
	case command.LeaveCall:
		o.leaveCall(id)
	case command.GrantOwner:
		o.grantOwner(id)
	case command.Unknown:
		o.notice(id, fmt.Sprintf("unknown command %s, try /help", html.EscapeString(cmd.Verb)))
	}
}

// chat broadcasts a plain line to the sender's room. Muted senders get a
// remaining-time notice instead; the mute itself expires lazily here.
func (o *Orchestrator) chat(id domain.ClientID, text string) {
	if text == "" {
		return
	}
	room, ok := o.Rooms.RoomOf(id)
	if !ok {
		o.fail(id, domain.ErrNotInRoom)
		return
	}
	if muted, left := o.Reg.Muted(id, o.now()); muted {
		o.fail(id, fmt.Errorf("%w (%s left)", domain.ErrMuted, fmtDur(left)))
		return
	}
	o.Notify.ToMany(o.Rooms.Members(room), core.ChatEvent{
		Type: "chat",
		From: o.Reg.NameOf(id),
		Room: room,
		Text: html.EscapeString(text),
		TS:   o.now().UnixMilli(),
	})
}

func (o *Orchestrator) rename(id domain.ClientID, desired string) {
	old, name, err := o.Reg.Rename(id, desired)
	if err != nil {
		o.fail(id, err)
		return
	}
	if old == "" {
		return
	}
	if room, ok := o.Rooms.RoomOf(id); ok {
		o.Notify.ToMany(o.Rooms.Members(room), core.System(fmt.Sprintf("%s is now %s", old, name)))
		o.sendRoster(room)
	} else {
		o.notice(id, fmt.Sprintf("you are now %s", name))
	}
}

func (o *Orchestrator) whisper(id domain.ClientID, targetName, text string) {
	target, ok := o.Reg.Lookup(targetName)
	if !ok {
		o.fail(id, domain.ErrUnknownTarget)
		return
	}
	escaped := html.EscapeString(text)
	o.Notify.ToClient(target, core.PrivateEvent{
		Type: "private",
		From: o.Reg.NameOf(id),
		Text: escaped,
		TS:   o.now().UnixMilli(),
	})
	o.notice(id, fmt.Sprintf("to %s: %s", o.Reg.NameOf(target), escaped))
}

func (o *Orchestrator) online(id domain.ClientID) {
	o.Notify.ToClient(id, core.UserListEvent{Type: "userlist", Names: o.Reg.Names()})
}

func (o *Orchestrator) grantOwner(id domain.ClientID) {
	if err := o.Mod.GrantOwner(id); err != nil {
		o.fail(id, err)
		return
	}
	o.notice(id, "you are now the owner")
}

func (o *Orchestrator) notice(id domain.ClientID, text string) {
	o.Notify.ToClient(id, core.System(text))
}

// fail maps a failure class to the notice sent back to the originating
// connection. Nothing here is fatal and nothing crosses connections.
func (o *Orchestrator) fail(id domain.ClientID, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		o.notice(id, "that name is not allowed")
	case errors.Is(err, domain.ErrInvalidRoom):
		o.notice(id, "room names are 1-24 letters, digits, _ or -")
	case errors.Is(err, domain.ErrUnknownTarget):
		o.notice(id, "no such user")
	case errors.Is(err, domain.ErrNotInRoom):
		o.notice(id, "join a room first")
	case errors.Is(err, domain.ErrNoPermission):
		o.notice(id, "you are not allowed to do that")
	case errors.Is(err, domain.ErrTargetProtected):
		o.notice(id, "the owner is protected")
	case errors.Is(err, domain.ErrAlreadySanctioned):
		o.notice(id, "there is already an active sanction")
	case errors.Is(err, domain.ErrOwnerTaken):
		o.notice(id, "there already is an owner")
	case errors.Is(err, domain.ErrCallAlreadyOpen):
		o.notice(id, "a call is already open in this room")
	case errors.Is(err, domain.ErrAlreadyInCall):
		o.notice(id, "you are already in the call")
	case errors.Is(err, domain.ErrNoOpenCall):
		o.notice(id, "no open call in this room")
	case errors.Is(err, domain.ErrMuted), errors.Is(err, domain.ErrBanned):
		// Sentinel text plus the wrapped remaining time.
		o.notice(id, err.Error())
	default:
		o.notice(id, err.Error())
	}
}

func fmtDur(d time.Duration) string {
	return d.Round(time.Second).String()
}
