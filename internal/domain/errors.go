package domain

import "errors"

// Failure classes for inbound events. Every one of these resolves at the
// originating event and is reported only to the originating connection as a
// system notice; none is fatal to the process.
var (
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidRoom       = errors.New("invalid room name")
	ErrUnknownTarget     = errors.New("no such user")
	ErrNotInRoom         = errors.New("not in a room")
	ErrMuted             = errors.New("you are muted")
	ErrBanned            = errors.New("you are banned")
	ErrTargetProtected   = errors.New("target is protected")
	ErrAlreadySanctioned = errors.New("already sanctioned")
	ErrNoPermission      = errors.New("no permission")
	ErrOwnerTaken        = errors.New("owner already granted")
	ErrCallAlreadyOpen   = errors.New("call already open")
	ErrAlreadyInCall     = errors.New("already in call")
	ErrNoOpenCall        = errors.New("no open call")
)
