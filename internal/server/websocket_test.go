package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"sleepygame/internal/engine"
	"sleepygame/internal/game"
	"sleepygame/internal/game/sleepy"
	"sleepygame/internal/session"
)

// startTwoPlayerGame seats alice (host) and bob over websockets and starts
// the match. Both connections have consumed the start broadcast.
func startTwoPlayerGame(ctx context.Context, t *testing.T, env *testEnv) (code string, alice, bob *websocket.Conn) {
	t.Helper()
	code = createSessionViaAPI(t, env.ts, "alice")

	alice = wsConnect(t, env.ts, code, "alice")
	t.Cleanup(func() { alice.Close(websocket.StatusNormalClosure, "") })
	readState(ctx, t, alice)

	bob = wsConnect(t, env.ts, code, "bob")
	t.Cleanup(func() { bob.Close(websocket.StatusNormalClosure, "") })
	readState(ctx, t, alice)
	readState(ctx, t, bob)

	wsSend(ctx, t, alice, "start", struct{}{})
	if st := readState(ctx, t, alice); st.State == nil || st.SessionInfo.Status != session.StatusPlaying {
		t.Fatalf("alice: expected a running match, got %+v", st)
	}
	if st := readState(ctx, t, bob); st.State == nil {
		t.Fatal("bob: expected a running match")
	}
	return code, alice, bob
}

func action(t *testing.T, typ string, payload any) actionPayload {
	t.Helper()
	a := game.Action{Type: typ}
	if payload != nil {
		p, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal action payload: %v", err)
		}
		a.Payload = p
	}
	return actionPayload{Action: a}
}

func TestWebSocketJoin(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice")

	aliceConn := wsConnect(t, env.ts, code, "alice")
	defer aliceConn.Close(websocket.StatusNormalClosure, "")
	first := readState(ctx, t, aliceConn)
	if first.State != nil {
		t.Fatal("a waiting room has no game state")
	}

	bobConn := wsConnect(t, env.ts, code, "bob")
	defer bobConn.Close(websocket.StatusNormalClosure, "")

	for name, conn := range map[string]*websocket.Conn{"alice": aliceConn, "bob": bobConn} {
		st := readState(ctx, t, conn)
		if got := seatIDs(st.SessionInfo); !slices.Equal(got, []string{"alice", "bob"}) {
			t.Fatalf("%s: expected [alice bob], got %v", name, got)
		}
		if st.SessionInfo.Players[1].Name != "Bob" {
			t.Fatalf("%s: expected bob's display name, got %q", name, st.SessionInfo.Players[1].Name)
		}
	}
}

func TestWebSocketJoinRejected(t *testing.T) {
	env := setupTestEnv(t)
	code := createSessionViaAPI(t, env.ts, "alice")

	t.Run("first message not a join", func(t *testing.T) {
		ctx, cancel := timeoutCtx(t)
		defer cancel()
		conn, _, err := websocket.Dial(ctx, wsURL(env.ts, code), nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		wsSend(ctx, t, conn, "start", struct{}{})
		if ep := readError(ctx, t, conn); !strings.Contains(ep.Message, "join") {
			t.Fatalf("unexpected error: %+v", ep)
		}
	})

	t.Run("missing player id", func(t *testing.T) {
		ctx, cancel := timeoutCtx(t)
		defer cancel()
		conn, _, err := websocket.Dial(ctx, wsURL(env.ts, code), nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		wsSend(ctx, t, conn, "join", joinPayload{})
		if ep := readError(ctx, t, conn); ep.Message != "invalid join payload" {
			t.Fatalf("unexpected error: %+v", ep)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		ctx, cancel := timeoutCtx(t)
		defer cancel()
		_, resp, err := websocket.Dial(ctx, wsURL(env.ts, "nope"), nil)
		if err == nil {
			t.Fatal("expected dial to fail")
		}
		if resp == nil || resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 response, got %+v", resp)
		}
	})
}

func TestWebSocketStartHostOnly(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice")
	alice := wsConnect(t, env.ts, code, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, alice)

	// Alone in the room the host cannot start.
	wsSend(ctx, t, alice, "start", struct{}{})
	if ep := readError(ctx, t, alice); !strings.Contains(ep.Message, "at least 2") {
		t.Fatalf("unexpected error: %+v", ep)
	}

	bob := wsConnect(t, env.ts, code, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, alice)
	readState(ctx, t, bob)

	wsSend(ctx, t, bob, "start", struct{}{})
	if ep := readError(ctx, t, bob); ep.Message != "only the host can start" {
		t.Fatalf("unexpected error: %+v", ep)
	}
	wsSend(ctx, t, bob, "add_bot", struct{}{})
	if ep := readError(ctx, t, bob); ep.Message != "only the host can add bots" {
		t.Fatalf("unexpected error: %+v", ep)
	}

	wsSend(ctx, t, alice, "start", struct{}{})
	st := readState(ctx, t, bob)
	if st.State == nil || st.State.Viewer != "bob" || st.State.CurrentTurn != "alice" {
		t.Fatalf("unexpected view after start: %+v", st.State)
	}
}

func TestWebSocketActionErrorsCarryCodes(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()
	_, alice, bob := startTwoPlayerGame(ctx, t, env)

	tests := []struct {
		name string
		conn *websocket.Conn
		act  actionPayload
		want engine.Code
	}{
		{name: "out of turn", conn: bob, act: action(t, sleepy.ActionEndTurn, nil), want: engine.CodeInvalidTurn},
		{name: "bad card index", conn: alice, act: action(t, sleepy.ActionPlayCard, sleepy.PlayCardPayload{CardIndex: 99}), want: engine.CodeInvalidCardIndex},
		{name: "nothing pending", conn: alice, act: action(t, sleepy.ActionResolvePending, sleepy.ResolvePendingPayload{}), want: engine.CodeInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wsSend(ctx, t, tt.conn, "action", tt.act)
			ep := readError(ctx, t, tt.conn)
			if ep.Code != tt.want {
				t.Fatalf("expected code %s, got %+v", tt.want, ep)
			}
		})
	}

	t.Run("malformed payload", func(t *testing.T) {
		wsSend(ctx, t, alice, "action", action(t, sleepy.ActionPlayCard, nil))
		ep := readError(ctx, t, alice)
		if ep.Code != "" || !strings.Contains(ep.Message, "payload") {
			t.Fatalf("unexpected error: %+v", ep)
		}
	})

	t.Run("unknown message type", func(t *testing.T) {
		wsSend(ctx, t, alice, "dance", struct{}{})
		if ep := readError(ctx, t, alice); !strings.Contains(ep.Message, "unknown message type") {
			t.Fatalf("unexpected error: %+v", ep)
		}
	})
}

func TestWebSocketEndTurnBroadcasts(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()
	_, alice, bob := startTwoPlayerGame(ctx, t, env)

	wsSend(ctx, t, alice, "action", action(t, sleepy.ActionEndTurn, nil))

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		st := readState(ctx, t, conn)
		if st.State.CurrentTurn != "bob" {
			t.Fatalf("%s: expected bob's turn, got %q", name, st.State.CurrentTurn)
		}
	}
}

func TestWebSocketLeaveWhileWaiting(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice")
	alice := wsConnect(t, env.ts, code, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, alice)
	bob := wsConnect(t, env.ts, code, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, alice)
	readState(ctx, t, bob)

	wsSend(ctx, t, bob, "leave", struct{}{})
	st := readState(ctx, t, alice)
	if got := seatIDs(st.SessionInfo); !slices.Equal(got, []string{"alice"}) {
		t.Fatalf("expected only alice, got %v", got)
	}

	// The server closes the departed player's socket and tells the room.
	readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readCancel()
	if _, _, err := bob.Read(readCtx); err == nil {
		t.Fatal("expected bob's connection to be closed")
	}
	if got := readDisconnect(ctx, t, alice); got != "bob" {
		t.Fatalf("expected bob to be reported gone, got %q", got)
	}
}

func TestWebSocketLeaveMidGameEndsMatch(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()
	code, alice, bob := startTwoPlayerGame(ctx, t, env)

	wsSend(ctx, t, bob, "leave", struct{}{})
	st := readState(ctx, t, alice)
	if !st.State.GameOver || st.State.Winner != "alice" {
		t.Fatalf("expected alice to win by default, got %+v", st.State)
	}
	if len(st.Results) != 2 || st.Results[0].Rank != 1 {
		t.Fatalf("unexpected results: %+v", st.Results)
	}
	if st.SessionInfo.Status != session.StatusFinished {
		t.Fatalf("expected finished room, got %s", st.SessionInfo.Status)
	}
	if len(st.ValidActions) != 0 {
		t.Fatalf("no actions remain after the game ends, got %v", st.ValidActions)
	}

	var h session.History
	getJSON(t, env.ts, "/api/sessions/"+code+"/history", http.StatusOK, &h)
	if len(h.Results) != 2 {
		t.Fatalf("expected archived results, got %+v", h)
	}
}

func TestWebSocketReconnect(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()
	code, alice, bob := startTwoPlayerGame(ctx, t, env)

	alice.Close(websocket.StatusNormalClosure, "")
	if got := readDisconnect(ctx, t, bob); got != "alice" {
		t.Fatalf("expected alice to be reported gone, got %q", got)
	}

	again := wsConnect(t, env.ts, code, "alice")
	defer again.Close(websocket.StatusNormalClosure, "")
	st := readState(ctx, t, again)
	if st.State == nil || st.State.Viewer != "alice" {
		t.Fatalf("expected alice's view on reconnect, got %+v", st.State)
	}
	if got := seatIDs(st.SessionInfo); !slices.Equal(got, []string{"alice", "bob"}) {
		t.Fatalf("reconnect must not add a seat, got %v", got)
	}
	readState(ctx, t, bob)

	// A stranger cannot join a running match.
	carol, _, err := websocket.Dial(ctx, wsURL(env.ts, code), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer carol.Close(websocket.StatusNormalClosure, "")
	wsSend(ctx, t, carol, "join", joinPayload{PlayerID: "carol"})
	if ep := readError(ctx, t, carol); !strings.Contains(ep.Message, "not accepting") {
		t.Fatalf("unexpected error: %+v", ep)
	}
}

func TestWebSocketBotTakesItsTurn(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice")
	alice := wsConnect(t, env.ts, code, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, alice)

	wsSend(ctx, t, alice, "add_bot", struct{}{})
	st := readState(ctx, t, alice)
	if len(st.SessionInfo.Players) != 2 || !st.SessionInfo.Players[1].Bot {
		t.Fatalf("expected a bot seat, got %+v", st.SessionInfo.Players)
	}
	botID := st.SessionInfo.Players[1].ID

	wsSend(ctx, t, alice, "start", struct{}{})
	readState(ctx, t, alice)
	wsSend(ctx, t, alice, "action", action(t, sleepy.ActionEndTurn, nil))

	readUntil(ctx, t, alice, func(s wireState) bool {
		return s.State != nil && s.State.CurrentTurn == botID
	})
	// The bot plays until alice must act again or the game ends.
	st = readUntil(ctx, t, alice, func(s wireState) bool {
		v := s.State
		if v.GameOver {
			return true
		}
		if v.Pending != nil {
			return v.Pending.TargetPlayerID == "alice"
		}
		return v.CurrentTurn == "alice"
	})
	if !slices.ContainsFunc(st.State.Log, func(line string) bool { return strings.HasPrefix(line, "Bot 1") }) {
		t.Fatalf("expected the bot in the action log, got %v", st.State.Log)
	}
}
