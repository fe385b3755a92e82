package signal

import "github.com/rgutzeit/plausch/internal/domain"

// The controller is the orchestrator's Notifier: addressed delivery over
// the live connection table. Sends to gone connections are dropped
// silently; the state machine never learns or cares.

func (ctl *Controller) ToClient(id domain.ClientID, v any) {
	if c, ok := ctl.lookup(id); ok {
		ctl.sendJSON(c, v)
	}
}

func (ctl *Controller) ToMany(ids []domain.ClientID, v any) {
	for _, id := range ids {
		ctl.ToClient(id, v)
	}
}

func (ctl *Controller) ToAll(v any) {
	ctl.mu.RLock()
	conns := make([]*wsConn, 0, len(ctl.conns))
	for _, c := range ctl.conns {
		conns = append(conns, c)
	}
	ctl.mu.RUnlock()
	for _, c := range conns {
		ctl.sendJSON(c, v)
	}
}

// Hangup force-closes a client's transport; the read pump notices and
// runs the normal disconnect path.
func (ctl *Controller) Hangup(id domain.ClientID) {
	if c, ok := ctl.lookup(id); ok {
		c.Close()
	}
}
