package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"sleepygame/internal/game"
	"sleepygame/internal/game/sleepy"
	"sleepygame/internal/session"
	"sleepygame/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts  *httptest.Server
	mgr *session.Manager
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	reg := game.NewRegistry()
	reg.Register(sleepy.Sleepy{
		MaxPlayers: 3,
		Rand:       func() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) },
	})
	mgr := session.NewManager(reg, store, session.WithBotDelay(time.Millisecond))

	webFS := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html><body>test</body></html>")},
	}
	srv := New(reg, mgr, webFS, zap.NewNop())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, mgr: mgr}
}

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// --- REST API helpers ---

func createSessionViaAPI(t *testing.T, ts *httptest.Server, playerID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"gameType":%q,"playerId":%q}`, sleepy.Name, playerID)
	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var result createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result.Code
}

// getJSON fetches path, checks the status and decodes the body into v
// unless v is nil.
func getJSON(t *testing.T, ts *httptest.Server, path string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: expected %d, got %d", path, wantStatus, resp.StatusCode)
	}
	if v == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func postStatus(t *testing.T, ts *httptest.Server, path string) int {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", nil)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server, code string) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/sessions/" + code + "/ws"
}

// wsConnect dials a WebSocket, sends a join message, and returns the connection.
// The caller is responsible for closing the connection.
func wsConnect(t *testing.T, ts *httptest.Server, code, playerID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := timeoutCtx(t)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, code), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	wsSend(ctx, t, conn, "join", joinPayload{PlayerID: playerID, Name: strings.ToUpper(playerID[:1]) + playerID[1:]})
	return conn
}

// wsSend marshals and writes a typed message, calling t.Fatal on error.
func wsSend(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	p, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := json.Marshal(WSMessage{Type: msgType, Payload: p})
	if err != nil {
		t.Fatalf("marshal ws message: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("ws write: %v", err)
	}
}

// wsRead reads and unmarshals a WebSocket message, calling t.Fatal on error.
func wsRead(ctx context.Context, t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal ws message: %v", err)
	}
	return msg
}

// wireState mirrors statePayload with the sleepy view decoded.
type wireState struct {
	State        *wireView           `json:"state"`
	ValidActions []game.Action       `json:"validActions"`
	SessionInfo  session.Info        `json:"sessionInfo"`
	Results      []game.PlayerResult `json:"results"`
}

type wireView struct {
	Viewer      string   `json:"viewer"`
	CurrentTurn string   `json:"currentTurn"`
	GameOver    bool     `json:"gameOver"`
	Winner      string   `json:"winner"`
	Log         []string `json:"actionLog"`
	Pending     *struct {
		TargetPlayerID string `json:"targetPlayerId"`
	} `json:"pending"`
	Players []struct {
		ID       string            `json:"id"`
		Hand     []json.RawMessage `json:"hand"`
		HandSize int               `json:"handSize"`
	} `json:"players"`
}

// readState reads a WebSocket message and expects it to be a "state" message.
func readState(ctx context.Context, t *testing.T, conn *websocket.Conn) wireState {
	t.Helper()
	msg := wsRead(ctx, t, conn)
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %q: %s", msg.Type, string(msg.Payload))
	}
	var ws wireState
	if err := json.Unmarshal(msg.Payload, &ws); err != nil {
		t.Fatalf("unmarshal state payload: %v", err)
	}
	return ws
}

// readError reads a WebSocket message and expects it to be an "error" message.
func readError(ctx context.Context, t *testing.T, conn *websocket.Conn) errorPayload {
	t.Helper()
	msg := wsRead(ctx, t, conn)
	if msg.Type != "error" {
		t.Fatalf("expected error message, got %q: %s", msg.Type, string(msg.Payload))
	}
	var ep errorPayload
	if err := json.Unmarshal(msg.Payload, &ep); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	return ep
}

// readDisconnect expects a "player_disconnected" message and returns the
// departed player's ID.
func readDisconnect(ctx context.Context, t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	msg := wsRead(ctx, t, conn)
	if msg.Type != "player_disconnected" {
		t.Fatalf("expected player_disconnected message, got %q: %s", msg.Type, string(msg.Payload))
	}
	var dp disconnectPayload
	if err := json.Unmarshal(msg.Payload, &dp); err != nil {
		t.Fatalf("unmarshal disconnect payload: %v", err)
	}
	return dp.PlayerID
}

// readUntil reads state messages until match reports true.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, match func(wireState) bool) wireState {
	t.Helper()
	for {
		ws := readState(ctx, t, conn)
		if match(ws) {
			return ws
		}
	}
}

func seatIDs(info session.Info) []string {
	ids := make([]string, len(info.Players))
	for i, p := range info.Players {
		ids[i] = p.ID
	}
	return ids
}
