// Package core holds the contracts between the state machine and the
// transport adapters.
package core

import "github.com/rgutzeit/plausch/internal/domain"

// Frame is a raw outbound payload, already serialized.
type Frame []byte

// SignalConn abstracts one client's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConn interface {
	TrySend(Frame) error
	Close()
}

// Notifier is the outbound half of the message-delivery substrate. The
// state machine never touches sockets; it names connections and the
// adapter does the rest. Sends to already-gone connections are dropped
// silently, never retried.
type Notifier interface {
	ToClient(id domain.ClientID, v any)
	ToMany(ids []domain.ClientID, v any)
	ToAll(v any)
	// Hangup force-closes a client's transport. Fire-and-forget: the
	// caller does not wait for the close to be acknowledged.
	Hangup(id domain.ClientID)
}
