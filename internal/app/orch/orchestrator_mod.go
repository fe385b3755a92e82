package orch

import (
	"fmt"
	"html"
	"strings"

	"github.com/rgutzeit/plausch/internal/core"
	"github.com/rgutzeit/plausch/internal/domain"
)

func (o *Orchestrator) kick(actor domain.ClientID, targetName string) {
	name, err := o.Mod.Kick(actor, targetName)
	if err != nil {
		o.fail(actor, err)
		return
	}
	o.notice(actor, fmt.Sprintf("kicked %s", name))
}

func (o *Orchestrator) ban(actor domain.ClientID, targetName string, minutes int) {
	name, err := o.Mod.Ban(actor, targetName, minutes)
	if err != nil {
		o.fail(actor, err)
		return
	}
	o.notice(actor, fmt.Sprintf("banned %s for %dm", name, minutes))
}

func (o *Orchestrator) unban(actor domain.ClientID, targetName string) {
	cleared, err := o.Mod.Unban(actor, targetName)
	if err != nil {
		o.fail(actor, err)
		return
	}
	escaped := html.EscapeString(targetName)
	if !cleared {
		o.notice(actor, fmt.Sprintf("%s is not banned", escaped))
		return
	}
	o.notice(actor, fmt.Sprintf("unbanned %s", escaped))
}

func (o *Orchestrator) mute(actor domain.ClientID, targetName string, minutes int) {
	name, err := o.Mod.Mute(actor, targetName, minutes)
	if err != nil {
		o.fail(actor, err)
		return
	}
	o.notice(actor, fmt.Sprintf("muted %s for %dm", name, minutes))
	if target, ok := o.Reg.Lookup(name); ok {
		o.notice(target, fmt.Sprintf("you are muted for %dm", minutes))
	}
}

func (o *Orchestrator) unmute(actor domain.ClientID, targetName string) {
	name, cleared, err := o.Mod.Unmute(actor, targetName)
	if err != nil {
		o.fail(actor, err)
		return
	}
	if !cleared {
		o.notice(actor, fmt.Sprintf("%s is not muted", name))
		return
	}
	o.notice(actor, fmt.Sprintf("unmuted %s", name))
	if target, ok := o.Reg.Lookup(name); ok {
		o.notice(target, "your mute was lifted")
	}
}

func (o *Orchestrator) setRole(actor domain.ClientID, targetName string, up bool) {
	var (
		name    string
		changed bool
		err     error
		role    = domain.RoleGuest
	)
	if up {
		role = domain.RoleModerator
		name, changed, err = o.Mod.Promote(actor, targetName)
	} else {
		name, changed, err = o.Mod.Demote(actor, targetName)
	}
	if err != nil {
		o.fail(actor, err)
		return
	}
	if !changed {
		o.notice(actor, fmt.Sprintf("%s is already %s", name, role))
		return
	}
	o.notice(actor, fmt.Sprintf("%s is now %s", name, role))
	if target, ok := o.Reg.Lookup(name); ok {
		o.notice(target, fmt.Sprintf("you are now %s", role))
	}
}

func (o *Orchestrator) renameOther(actor domain.ClientID, targetName, desired string) {
	old, name, err := o.Mod.RenameOther(actor, targetName, desired)
	if err != nil {
		o.fail(actor, err)
		return
	}
	target, ok := o.Reg.Lookup(name)
	if !ok {
		return
	}
	if room, inRoom := o.Rooms.RoomOf(target); inRoom {
		o.Notify.ToMany(o.Rooms.Members(room), core.System(fmt.Sprintf("%s is now %s", old, name)))
		o.sendRoster(room)
	}
	o.notice(actor, fmt.Sprintf("renamed %s to %s", old, name))
}

func (o *Orchestrator) banLog(actor domain.ClientID) {
	entries, err := o.Mod.BanLog(actor)
	if err != nil {
		o.fail(actor, err)
		return
	}
	if len(entries) == 0 {
		o.notice(actor, "no active bans")
		return
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s (%s left)", e.Name, fmtDur(e.Remaining)))
	}
	o.notice(actor, "active bans: "+strings.Join(lines, ", "))
}

func (o *Orchestrator) muteLog(actor domain.ClientID) {
	entries, err := o.Mod.MuteLog(actor)
	if err != nil {
		o.fail(actor, err)
		return
	}
	if len(entries) == 0 {
		o.notice(actor, "no active mutes")
		return
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s (%s left)", e.Name, fmtDur(e.Remaining)))
	}
	o.notice(actor, "active mutes: "+strings.Join(lines, ", "))
}
