package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rgutzeit/plausch/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, id domain.ClientID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(id)).Msg("readPump closing")
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("cid", string(id)).Msg("readPump read error")
				return
			}
			ctl.handleInbound(id, c, data)
		}
	}
}

// handleInbound dispatches one JSON envelope from the client.
func (ctl *Controller) handleInbound(id domain.ClientID, c *wsConn, data []byte) {
	var env struct {
		Type    string          `json:"type"`
		Text    string          `json:"text"`
		Room    string          `json:"room"`
		To      string          `json:"to"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "message":
		if !ctl.limiter.Allow(id) {
			ctl.sendJSON(c, map[string]string{"type": "system", "text": "slow down"})
			return
		}
		ctl.orch.HandleLine(id, env.Text)
	case "join":
		ctl.orch.JoinRoom(id, domain.RoomName(env.Room))
	case "offer", "answer", "ice-candidate":
		ctl.orch.HandleRelay(id, env.Type, domain.ClientID(env.To), env.Payload)
	case "ping":
		ctl.sendJSON(c, map[string]string{"type": "pong"})
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown envelope")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
