package domain

import "regexp"

type RoomName string

var roomNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,24}$`)

// ValidRoomName reports whether a room name matches the allowed pattern.
// The main room is created at startup and always matches.
func ValidRoomName(name RoomName) bool {
	return roomNamePattern.MatchString(string(name))
}
