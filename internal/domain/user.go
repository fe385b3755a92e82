// Package domain contains entities and validation rules, no transport or
// lifecycle logic.
package domain

import "time"

// ClientID is the transport-assigned identifier for one live connection.
// It is the unit of identity and addressing; never persisted.
type ClientID string

// Role is the moderation rank of an identity. Ordering matters:
// owner outranks moderator outranks guest.
type Role int

const (
	RoleGuest Role = iota
	RoleModerator
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleModerator:
		return "moderator"
	default:
		return "guest"
	}
}

// Permits reports whether the role satisfies a required minimum.
// The hierarchy is strictly linear, so a plain comparison is the whole rule.
func (r Role) Permits(min Role) bool {
	return r >= min
}

// Identity is the mutable record bound to one live connection.
type Identity struct {
	ID         ClientID
	Name       string
	Role       Role
	MuteExpiry time.Time
}

// Muted reports whether a mute is active at now, and how long it has left.
// Expiry is lazy: nothing ever clears MuteExpiry, it simply stops matching.
func (id *Identity) Muted(now time.Time) (bool, time.Duration) {
	if id.MuteExpiry.IsZero() || !id.MuteExpiry.After(now) {
		return false, 0
	}
	return true, id.MuteExpiry.Sub(now)
}
