// Package moderation implements the role hierarchy and time-boxed
// sanctions on top of the identity registry and the ban ledger.
package moderation

import (
	"html"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rgutzeit/plausch/internal/app"
	"github.com/rgutzeit/plausch/internal/domain"
)

// Disconnector force-closes a live connection. Fire-and-forget: sanctions
// report success without waiting for the transport.
type Disconnector interface {
	Hangup(id domain.ClientID)
}

// Engine dispatches privileged actions. Every verb here requires the
// acting identity to hold owner; owner targets are immune to sanctions.
type Engine struct {
	Reg   *app.Registry
	Bans  *app.BanList
	Conns Disconnector
	Now   func() time.Time
}

func NewEngine(reg *app.Registry, bans *app.BanList, conns Disconnector) *Engine {
	return &Engine{Reg: reg, Bans: bans, Conns: conns, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// requireOwner checks the acting connection's rank.
func (e *Engine) requireOwner(actor domain.ClientID) error {
	ident, ok := e.Reg.Identity(actor)
	if !ok || !ident.Role.Permits(domain.RoleOwner) {
		return domain.ErrNoPermission
	}
	return nil
}

// resolveTarget finds a live target by name and rejects owner targets.
func (e *Engine) resolveTarget(name string) (domain.Identity, error) {
	id, ok := e.Reg.Lookup(name)
	if !ok {
		return domain.Identity{}, domain.ErrUnknownTarget
	}
	target, ok := e.Reg.Identity(id)
	if !ok {
		return domain.Identity{}, domain.ErrUnknownTarget
	}
	if target.Role == domain.RoleOwner {
		return target, domain.ErrTargetProtected
	}
	return target, nil
}

// Kick force-disconnects a live target. Returns its resolved name.
func (e *Engine) Kick(actor domain.ClientID, targetName string) (string, error) {
	if err := e.requireOwner(actor); err != nil {
		return "", err
	}
	target, err := e.resolveTarget(targetName)
	if err != nil {
		return "", err
	}
	log.Info().Str("module", "moderation").Str("actor", string(actor)).Str("target", target.Name).Msg("kick")
	e.Conns.Hangup(target.ID)
	return target.Name, nil
}

// Mute sets a time-boxed mute on a live target. A second mute while one
// is active fails; after expiry the same target can be muted again.
func (e *Engine) Mute(actor domain.ClientID, targetName string, minutes int) (string, error) {
	if err := e.requireOwner(actor); err != nil {
		return "", err
	}
	target, err := e.resolveTarget(targetName)
	if err != nil {
		return "", err
	}
	now := e.now()
	if active, _ := e.Reg.Muted(target.ID, now); active {
		return target.Name, domain.ErrAlreadySanctioned
	}
	e.Reg.SetMute(target.ID, now.Add(time.Duration(minutes)*time.Minute))
	log.Info().Str("module", "moderation").Str("target", target.Name).Int("minutes", minutes).Msg("mute")
	return target.Name, nil
}

// Unmute lifts a mute. Idempotent: cleared=false means the target had no
// active mute, which is reported, not an error.
func (e *Engine) Unmute(actor domain.ClientID, targetName string) (string, bool, error) {
	if err := e.requireOwner(actor); err != nil {
		return "", false, err
	}
	id, ok := e.Reg.Lookup(targetName)
	if !ok {
		return "", false, domain.ErrUnknownTarget
	}
	name := e.Reg.NameOf(id)
	return name, e.Reg.ClearMute(id, e.now()), nil
}

// Ban records a name-keyed expiry and force-disconnects the target's live
// connection, if any. The name stays rejected at connect time until the
// expiry passes. Offline names can be banned too.
func (e *Engine) Ban(actor domain.ClientID, targetName string, minutes int) (string, error) {
	if err := e.requireOwner(actor); err != nil {
		return "", err
	}
	// Live names come back already escaped from the registry; an offline
	// name is raw input and gets escaped here before it is stored or
	// echoed anywhere.
	name := html.EscapeString(targetName)
	var live *domain.Identity
	if id, ok := e.Reg.Lookup(targetName); ok {
		target, _ := e.Reg.Identity(id)
		if target.Role == domain.RoleOwner {
			return target.Name, domain.ErrTargetProtected
		}
		name = target.Name
		live = &target
	}
	now := e.now()
	if err := e.Bans.Ban(name, now.Add(time.Duration(minutes)*time.Minute), now); err != nil {
		return name, err
	}
	if live != nil {
		e.Conns.Hangup(live.ID)
	}
	return name, nil
}

// Unban lifts a ban. Idempotent like Unmute.
func (e *Engine) Unban(actor domain.ClientID, targetName string) (bool, error) {
	if err := e.requireOwner(actor); err != nil {
		return false, err
	}
	return e.Bans.Lift(targetName, e.now()), nil
}

// Promote raises a guest to moderator. The owner role is never assigned
// through this path.
func (e *Engine) Promote(actor domain.ClientID, targetName string) (string, bool, error) {
	return e.setRole(actor, targetName, domain.RoleModerator)
}

// Demote lowers a moderator back to guest. Owner is immune.
func (e *Engine) Demote(actor domain.ClientID, targetName string) (string, bool, error) {
	return e.setRole(actor, targetName, domain.RoleGuest)
}

func (e *Engine) setRole(actor domain.ClientID, targetName string, role domain.Role) (string, bool, error) {
	if err := e.requireOwner(actor); err != nil {
		return "", false, err
	}
	target, err := e.resolveTarget(targetName)
	if err != nil {
		return "", false, err
	}
	if target.Role == role {
		return target.Name, false, nil
	}
	e.Reg.SetRole(target.ID, role)
	log.Info().Str("module", "moderation").Str("target", target.Name).Str("role", role.String()).Msg("role changed")
	return target.Name, true, nil
}

// RenameOther renames a target on the owner's behalf.
func (e *Engine) RenameOther(actor domain.ClientID, targetName, desired string) (old, now string, err error) {
	if err := e.requireOwner(actor); err != nil {
		return "", "", err
	}
	target, err := e.resolveTarget(targetName)
	if err != nil {
		return "", "", err
	}
	return e.Reg.Rename(target.ID, desired)
}

// GrantOwner is the one-shot bootstrap path: it runs only when an inbound
// line matches the configured owner secret, and it is the only way any
// connection acquires owner.
func (e *Engine) GrantOwner(id domain.ClientID) error {
	return e.Reg.GrantOwner(id)
}

// BanLog lists active bans for /banlog.
func (e *Engine) BanLog(actor domain.ClientID) ([]app.BanEntry, error) {
	if err := e.requireOwner(actor); err != nil {
		return nil, err
	}
	return e.Bans.Entries(e.now()), nil
}

// MuteEntry is one active mute for /mutelog.
type MuteEntry struct {
	Name      string
	Remaining time.Duration
}

// MuteLog lists active mutes for /mutelog.
func (e *Engine) MuteLog(actor domain.ClientID) ([]MuteEntry, error) {
	if err := e.requireOwner(actor); err != nil {
		return nil, err
	}
	now := e.now()
	var out []MuteEntry
	for _, ident := range e.Reg.MutedIdentities(now) {
		_, left := ident.Muted(now)
		out = append(out, MuteEntry{Name: ident.Name, Remaining: left})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
