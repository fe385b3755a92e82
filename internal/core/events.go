package core

import (
	"encoding/json"

	"github.com/rgutzeit/plausch/internal/domain"
)

// Outbound event payloads. Everything user-originated inside them (names,
// message bodies) is HTML-escaped before it gets here, so clients never
// have to re-sanitize.

type SystemEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func System(text string) SystemEvent {
	return SystemEvent{Type: "system", Text: text}
}

type ChatEvent struct {
	Type string          `json:"type"`
	From string          `json:"from"`
	Room domain.RoomName `json:"room"`
	Text string          `json:"text"`
	TS   int64           `json:"ts"`
}

type PrivateEvent struct {
	Type string `json:"type"`
	From string `json:"from"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

type UserListEvent struct {
	Type  string          `json:"type"`
	Room  domain.RoomName `json:"room"`
	Names []string        `json:"names"`
}

type RoomChangedEvent struct {
	Type string          `json:"type"`
	Room domain.RoomName `json:"room"`
}

type RoomRemovedEvent struct {
	Type string          `json:"type"`
	Room domain.RoomName `json:"room"`
}

type RoomInfo struct {
	Name  domain.RoomName `json:"name"`
	Count int             `json:"count"`
}

type RoomListEvent struct {
	Type  string     `json:"type"`
	Rooms []RoomInfo `json:"rooms"`
}

type WhoAmIEvent struct {
	Type string          `json:"type"`
	ID   domain.ClientID `json:"id"`
	Name string          `json:"name"`
	Room domain.RoomName `json:"room"`
}

type IncomingCallEvent struct {
	Type     string          `json:"type"`
	FromID   domain.ClientID `json:"fromId"`
	FromName string          `json:"fromName"`
}

// RelayEvent carries an opaque signaling payload between two connections.
// Type is one of "offer", "answer", "ice-candidate"; the payload is
// forwarded verbatim, never inspected.
type RelayEvent struct {
	Type    string          `json:"type"`
	From    domain.ClientID `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type CallClosedEvent struct {
	Type string          `json:"type"`
	Room domain.RoomName `json:"room"`
}
