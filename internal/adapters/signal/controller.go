// Package signal is the websocket transport adapter: it owns the
// connections, feeds inbound events to the orchestrator, and implements
// the outbound Notifier.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rgutzeit/plausch/internal/app/orch"
	"github.com/rgutzeit/plausch/internal/config"
	"github.com/rgutzeit/plausch/internal/core"
	"github.com/rgutzeit/plausch/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	cfg     *config.Config
	orch    *orch.Orchestrator
	limiter *RateLimiter

	mu    sync.RWMutex
	conns map[domain.ClientID]*wsConn
}

func NewController(cfg *config.Config) *Controller {
	return &Controller{
		cfg:     cfg,
		limiter: NewRateLimiter(10, time.Second),
		conns:   make(map[domain.ClientID]*wsConn),
	}
}

// Bind attaches the orchestrator after both sides exist; the controller
// is the orchestrator's Notifier, so neither can be built first.
func (ctl *Controller) Bind(o *orch.Orchestrator) {
	ctl.orch = o
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and runs one connection's lifecycle.
// Every websocket is its own ClientID; the claimed name travels in the
// handshake query and is ban-checked by the orchestrator.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	claimed := c.Query("name")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	id := domain.ClientID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	ctl.mu.Lock()
	ctl.conns[id] = conn
	ctl.mu.Unlock()
	log.Info().Str("module", "signal").Str("cid", string(id)).Msg("new WS connection")

	cctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(cctx, conn)

	ctl.orch.Connect(id, claimed)

	go func() {
		ctl.readPump(cctx, id, conn)
		cancel()
		ctl.mu.Lock()
		delete(ctl.conns, id)
		ctl.mu.Unlock()
		ctl.limiter.Forget(id)
		ctl.orch.Disconnect(id)
	}()
}

func (ctl *Controller) lookup(id domain.ClientID) (*wsConn, bool) {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	c, ok := ctl.conns[id]
	return c, ok
}
