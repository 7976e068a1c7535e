package server

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gravitas-015/hexward/internal/config"
	"github.com/gravitas-015/hexward/internal/gamemap"
	"github.com/gravitas-015/hexward/internal/network"
	"github.com/gravitas-015/hexward/pkg/hex"
	"github.com/gravitas-015/hexward/pkg/models"
)

type testEnv struct {
	srv  *Server
	ts   *httptest.Server
	priv *ecdsa.PrivateKey
}

func newTestEnv(t *testing.T, mod func(*config.Config)) *testEnv {
	t.Helper()
	priv, keySrv := newKeyServer(t)
	cfg := testConfig(keySrv.URL)
	if mod != nil {
		mod(cfg)
	}
	ctx, cancel := context.WithCancel(context.Background())
	v, err := NewJWTValidator(ctx, cfg, fakeBlacklist{})
	if err != nil {
		cancel()
		t.Fatalf("new validator: %v", err)
	}
	gm, err := gamemap.New(cfg.Grid)
	if err != nil {
		cancel()
		t.Fatalf("new map: %v", err)
	}
	srv := newServer(ctx, cancel, cfg, v, gm)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { srv.Shutdown() })
	return &testEnv{srv: srv, ts: ts, priv: priv}
}

type received struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type client struct {
	t  *testing.T
	ws *websocket.Conn
}

func (e *testEnv) dial(t *testing.T, perms int64) (*client, network.WelcomePayload) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws"
	header := http.Header{"Authorization": {"Bearer " + signToken(t, e.priv, testClaims(perms))}}
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	c := &client{t: t, ws: ws}

	msg := c.read()
	if msg.Type != network.MsgTypeWelcome {
		t.Fatalf("expected welcome, got %s", msg.Type)
	}
	var welcome network.WelcomePayload
	c.decode(msg, &welcome)
	return c, welcome
}

func (c *client) request(msgType, id string, payload interface{}) received {
	c.t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if err := c.ws.WriteJSON(network.ClientMessage{Type: msgType, ID: id, Payload: raw}); err != nil {
		c.t.Fatalf("write: %v", err)
	}
	msg := c.read()
	if msg.ID != id {
		c.t.Fatalf("expected reply to %q, got %q", id, msg.ID)
	}
	return msg
}

func (c *client) read() received {
	c.t.Helper()
	c.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg received
	if err := c.ws.ReadJSON(&msg); err != nil {
		c.t.Fatalf("read: %v", err)
	}
	return msg
}

func (c *client) decode(msg received, v interface{}) {
	c.t.Helper()
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.t.Fatalf("decode %s: %v", msg.Type, err)
	}
}

func (c *client) expectError(msg received, code string) {
	c.t.Helper()
	if msg.Type != network.MsgTypeError {
		c.t.Fatalf("expected error %s, got %s", code, msg.Type)
	}
	var e network.ErrorPayload
	c.decode(msg, &e)
	if e.Code != code {
		c.t.Fatalf("expected error %s, got %s (%s)", code, e.Code, e.Message)
	}
}

func TestWelcome(t *testing.T) {
	env := newTestEnv(t, nil)
	_, welcome := env.dial(t, models.PermMapRead)
	if welcome.PlayerID != "42" || welcome.CanEdit || welcome.ConnectionID == "" {
		t.Fatalf("unexpected welcome %+v", welcome)
	}
	if welcome.Map.Radius != 3 || welcome.Map.Orientation != hex.PointyTop || welcome.Map.Cells != 37 {
		t.Fatalf("unexpected map info %+v", welcome.Map)
	}
}

func TestMissingAndInvalidToken(t *testing.T) {
	env := newTestEnv(t, nil)
	url := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %v", err)
	}
	_, resp, err = websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer junk"}})
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %v", err)
	}
}

func TestCellQueries(t *testing.T) {
	env := newTestEnv(t, nil)
	c, _ := env.dial(t, models.PermMapRead)

	msg := c.request(network.MsgTypeCell, "1", network.PointPayload{Point: hex.Axial(1, 0)})
	if msg.Type != network.MsgTypeCell {
		t.Fatalf("expected cell, got %s", msg.Type)
	}
	var cell network.Cell
	c.decode(msg, &cell)
	if cell.Point != hex.Axial(1, 0) || cell.Terrain != "plains" {
		t.Fatalf("unexpected cell %+v", cell)
	}
	if cell.Center != hex.ToPixel(hex.Axial(1, 0), hex.PointyTop, 10) {
		t.Fatalf("unexpected center %v", cell.Center)
	}

	c.expectError(c.request(network.MsgTypeCell, "2", network.PointPayload{Point: hex.Axial(4, 0)}), network.ErrCodeOutOfBounds)
	c.expectError(c.request(network.MsgTypeCell, "3", network.PointPayload{Point: hex.Point{Q: 1, R: 1, S: 1}}), network.ErrCodeInvalidCoordinate)
	c.expectError(c.request("teleport", "4", struct{}{}), network.ErrCodeUnknownType)
	c.expectError(c.request(network.MsgTypeCell, "5", "not an object"), network.ErrCodeInvalidPayload)

	if msg := c.request(network.MsgTypePing, "6", struct{}{}); msg.Type != network.MsgTypePong {
		t.Fatalf("expected pong, got %s", msg.Type)
	}
}

func TestAreaQueries(t *testing.T) {
	env := newTestEnv(t, nil)
	c, _ := env.dial(t, models.PermMapRead)

	var cells network.CellsPayload
	c.decode(c.request(network.MsgTypeRange, "r", network.AreaPayload{Center: hex.Origin, Radius: 1}), &cells)
	if len(cells.Cells) != 7 || cells.Cells[0].Point != hex.Origin {
		t.Fatalf("expected 7 cells from origin, got %d", len(cells.Cells))
	}

	c.decode(c.request(network.MsgTypeRing, "g", network.AreaPayload{Center: hex.Origin, Radius: 2}), &cells)
	if len(cells.Cells) != 12 {
		t.Fatalf("expected 12 ring cells, got %d", len(cells.Cells))
	}
	for i, want := range hex.Ring(hex.Origin, 2) {
		if cells.Cells[i].Point != want {
			t.Fatalf("ring cell %d: expected %v, got %v", i, want, cells.Cells[i].Point)
		}
	}

	c.decode(c.request(network.MsgTypeNeighbors, "n", network.PointPayload{Point: hex.Axial(0, 3)}), &cells)
	if len(cells.Cells) != 3 {
		t.Fatalf("expected 3 edge neighbors, got %d", len(cells.Cells))
	}

	c.decode(c.request(network.MsgTypeLine, "l", network.LinePayload{From: hex.Axial(-3, 0), To: hex.Axial(3, 0)}), &cells)
	if len(cells.Cells) != 7 {
		t.Fatalf("expected 7 line cells, got %d", len(cells.Cells))
	}

	c.expectError(c.request(network.MsgTypeRange, "big", network.AreaPayload{Center: hex.Origin, Radius: 5}), network.ErrCodeRadiusTooLarge)
	c.expectError(c.request(network.MsgTypeRing, "neg", network.AreaPayload{Center: hex.Origin, Radius: -1}), network.ErrCodeInvalidPayload)
}

func TestPixelQuery(t *testing.T) {
	env := newTestEnv(t, nil)
	c, _ := env.dial(t, models.PermMapRead)

	center := hex.ToPixel(hex.Axial(-1, 2), hex.PointyTop, 10)
	var res network.PointResultPayload
	c.decode(c.request(network.MsgTypePixel, "p", network.PixelPayload{X: center.X() + 2, Y: center.Y() - 3}), &res)
	if res.Point != hex.Axial(-1, 2) || !res.InBounds {
		t.Fatalf("unexpected pixel result %+v", res)
	}
	c.decode(c.request(network.MsgTypePixel, "far", network.PixelPayload{X: 1000, Y: 0}), &res)
	if res.InBounds {
		t.Fatalf("far pixel reported in bounds: %+v", res)
	}
}

func TestEditsRequirePermission(t *testing.T) {
	env := newTestEnv(t, nil)
	reader, _ := env.dial(t, models.PermMapRead)
	reader.expectError(reader.request(network.MsgTypeSet, "s", network.SetPayload{Point: hex.Origin, Terrain: "lava"}), network.ErrCodeForbidden)
	reader.expectError(reader.request(network.MsgTypeRemove, "d", network.PointPayload{Point: hex.Origin}), network.ErrCodeForbidden)

	editor, welcome := env.dial(t, models.PermMapRead|models.PermMapEdit)
	if !welcome.CanEdit {
		t.Fatalf("editor should be allowed to edit")
	}
	var cell network.Cell
	editor.decode(editor.request(network.MsgTypeSet, "s", network.SetPayload{Point: hex.Origin, Terrain: "lava"}), &cell)
	if cell.Terrain != "lava" {
		t.Fatalf("expected lava, got %q", cell.Terrain)
	}
	editor.expectError(editor.request(network.MsgTypeSet, "far", network.SetPayload{Point: hex.Axial(0, 4)}), network.ErrCodeOutOfBounds)

	if msg := editor.request(network.MsgTypeRemove, "d", network.PointPayload{Point: hex.Axial(1, 0)}); msg.Type != network.MsgTypeRemoved {
		t.Fatalf("expected removed, got %s", msg.Type)
	}
	editor.expectError(editor.request(network.MsgTypeRemove, "d2", network.PointPayload{Point: hex.Axial(1, 0)}), network.ErrCodeAbsent)
	reader.expectError(reader.request(network.MsgTypeCell, "c", network.PointPayload{Point: hex.Axial(1, 0)}), network.ErrCodeAbsent)

	// the reader sees the edit on its next query
	reader.decode(reader.request(network.MsgTypeCell, "o", network.PointPayload{Point: hex.Origin}), &cell)
	if cell.Terrain != "lava" {
		t.Fatalf("expected lava for reader, got %q", cell.Terrain)
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Query.RateLimit = 0.001
		cfg.Query.Burst = 1
	})
	c, _ := env.dial(t, models.PermMapRead)
	if msg := c.request(network.MsgTypePing, "1", struct{}{}); msg.Type != network.MsgTypePong {
		t.Fatalf("expected pong, got %s", msg.Type)
	}
	c.expectError(c.request(network.MsgTypePing, "2", struct{}{}), network.ErrCodeRateLimited)
}

func TestHTTPEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	c, _ := env.dial(t, models.PermMapRead)
	c.request(network.MsgTypePing, "1", struct{}{})

	get := func(path string) []byte {
		t.Helper()
		resp, err := http.Get(env.ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		return body
	}

	var health struct {
		Status  string        `json:"status"`
		Session SessionStatus `json:"session"`
	}
	if err := json.Unmarshal(get("/health"), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Session.PlayerCount != 1 || health.Session.Cells != 37 {
		t.Fatalf("unexpected health %+v", health)
	}

	var info struct {
		network.MapInfo
		Bound *[2][2]float64 `json:"bound"`
	}
	if err := json.Unmarshal(get("/map"), &info); err != nil {
		t.Fatalf("decode map: %v", err)
	}
	if info.Radius != 3 || info.Bound == nil {
		t.Fatalf("unexpected map info %+v", info)
	}

	var cells network.CellsPayload
	if err := json.Unmarshal(get("/map/cells"), &cells); err != nil {
		t.Fatalf("decode cells: %v", err)
	}
	if len(cells.Cells) != 37 {
		t.Fatalf("expected 37 cells, got %d", len(cells.Cells))
	}

	metrics := string(get("/metrics"))
	for _, want := range []string{`hexward_messages_total{type="ping"} 1`, "hexward_map_cells 37", "hexward_ws_connections_active 1"} {
		if !strings.Contains(metrics, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestQueriesRequireReadPermission(t *testing.T) {
	env := newTestEnv(t, nil)
	c, welcome := env.dial(t, 0)
	if welcome.CanRead || welcome.CanEdit {
		t.Fatalf("unexpected permissions in welcome %+v", welcome)
	}
	c.expectError(c.request(network.MsgTypeCell, "c", network.PointPayload{Point: hex.Origin}), network.ErrCodeForbidden)
	c.expectError(c.request(network.MsgTypeRange, "r", network.AreaPayload{Center: hex.Origin, Radius: 1}), network.ErrCodeForbidden)
	c.expectError(c.request(network.MsgTypePixel, "p", network.PixelPayload{}), network.ErrCodeForbidden)
	if msg := c.request(network.MsgTypePing, "ping", struct{}{}); msg.Type != network.MsgTypePong {
		t.Fatalf("expected pong, got %s", msg.Type)
	}
}

func TestConnectionMarksPlayerBeforeRegistering(t *testing.T) {
	env := newTestEnv(t, nil)
	player := &models.Player{ID: "7", Username: "bo"}
	conn := NewConnection(nil, env.srv, player)
	if !player.Connected || player.ConnectedAt.IsZero() {
		t.Fatalf("player not marked connected: %+v", player)
	}
	if conn.id == "" {
		t.Fatalf("connection has no id")
	}
}

func TestShutdownWithOpenConnections(t *testing.T) {
	env := newTestEnv(t, nil)
	c1, _ := env.dial(t, models.PermMapRead)
	env.dial(t, models.PermMapRead)
	if err := env.srv.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	c1.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := c1.ws.ReadMessage(); err == nil {
		t.Fatalf("expected connection to close on shutdown")
	}
	if n := env.srv.session.GetStatus().PlayerCount; n != 0 {
		t.Fatalf("expected empty session after shutdown, got %d players", n)
	}
}
