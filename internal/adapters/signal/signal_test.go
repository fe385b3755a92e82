package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgutzeit/plausch/internal/app"
	"github.com/rgutzeit/plausch/internal/app/moderation"
	"github.com/rgutzeit/plausch/internal/app/orch"
	"github.com/rgutzeit/plausch/internal/config"
	"github.com/rgutzeit/plausch/internal/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:        "release",
		ReadLimit:   32768,
		PingPeriod:  50 * time.Second,
		MainRoom:    "Global",
		GuestPrefix: "Gast",
	}
	reg := app.NewRegistry(cfg.GuestPrefix)
	bans := app.NewBanList()
	ctl := NewController(cfg)
	eng := moderation.NewEngine(reg, bans, ctl)
	o := &orch.Orchestrator{
		Reg:    reg,
		Rooms:  app.NewRoomDirectory(domain.RoomName(cfg.MainRoom)),
		Bans:   bans,
		Mod:    eng,
		Notify: ctl,
	}
	ctl.Bind(o)

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// waitFor reads frames until one with the wanted type arrives.
func waitFor(t *testing.T, ws *websocket.Conn, typ string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, ws.SetReadDeadline(deadline))
	for {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err, "waiting for %q", typ)
		var ev map[string]any
		require.NoError(t, json.Unmarshal(data, &ev))
		if ev["type"] == typ {
			return ev
		}
	}
}

func send(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(v))
}

func TestConnectHandshake(t *testing.T) {
	srv := newTestServer(t)
	ws := dial(t, srv)

	who := waitFor(t, ws, "whoami")
	assert.True(t, strings.HasPrefix(who["name"].(string), "Gast-"))
	assert.Equal(t, "Global", who["room"])
}

func TestChatRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)
	waitFor(t, alice, "whoami")
	whoBob := waitFor(t, bob, "whoami")

	send(t, alice, map[string]string{"type": "message", "text": "hallo zusammen"})
	chat := waitFor(t, bob, "chat")
	assert.Equal(t, "hallo zusammen", chat["text"])
	assert.Equal(t, "Global", chat["room"])
	assert.NotEqual(t, whoBob["name"], chat["from"])
}

func TestRenameCommandOverWire(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)
	waitFor(t, alice, "whoami")
	waitFor(t, bob, "whoami")

	send(t, alice, map[string]string{"type": "message", "text": "/name Alice"})
	send(t, alice, map[string]string{"type": "message", "text": "hi"})
	chat := waitFor(t, bob, "chat")
	assert.Equal(t, "Alice", chat["from"])
}

func TestRelayOverWire(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)
	waitFor(t, alice, "whoami")
	whoBob := waitFor(t, bob, "whoami")
	bobID := whoBob["id"].(string)

	send(t, alice, map[string]any{
		"type":    "offer",
		"to":      bobID,
		"payload": map[string]string{"sdp": "v=0 test"},
	})
	offer := waitFor(t, bob, "offer")
	payload, ok := offer["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v=0 test", payload["sdp"])
	assert.NotEmpty(t, offer["from"])
}

func TestRoomChangeOverWire(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	waitFor(t, alice, "whoami")

	send(t, alice, map[string]string{"type": "join", "room": "TeamX"})
	changed := waitFor(t, alice, "room-changed")
	assert.Equal(t, "TeamX", changed["room"])
}

func TestPingPong(t *testing.T) {
	srv := newTestServer(t)
	ws := dial(t, srv)
	waitFor(t, ws, "whoami")

	send(t, ws, map[string]string{"type": "ping"})
	waitFor(t, ws, "pong")
}
