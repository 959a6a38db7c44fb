package sleepy

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"

	"go.uber.org/zap/zaptest"

	"sleepygame/internal/engine"
	"sleepygame/internal/game"
)

func newTestMatch(t *testing.T, seats ...game.Seat) *Match {
	t.Helper()
	if len(seats) == 0 {
		seats = []game.Seat{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}}
	}
	g := Sleepy{Rand: func() *rand.Rand { return rand.New(rand.NewPCG(11, 12)) }}
	m, err := g.NewMatch(game.MatchConfig{Seats: seats, Logger: zaptest.NewLogger(t)})
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	return m.(*Match)
}

func action(t *testing.T, typ string, payload any) game.Action {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return game.Action{Type: typ, Payload: raw}
}

func TestInfo(t *testing.T) {
	info := Sleepy{}.Info()
	if info.Name != "sleepy" || info.MinPlayers != 2 || info.MaxPlayers != 4 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := (Sleepy{MaxPlayers: 6}).Info().MaxPlayers; got != 6 {
		t.Fatalf("expected max players 6, got %d", got)
	}
}

func TestNewMatchNeedsTwoSeats(t *testing.T) {
	_, err := Sleepy{}.NewMatch(game.MatchConfig{Seats: []game.Seat{{ID: "alice"}}})
	if err == nil {
		t.Fatal("expected error for a single seat")
	}
}

func TestStateIsRedacted(t *testing.T) {
	m := newTestMatch(t)
	v, ok := m.State("alice").(engine.View)
	if !ok {
		t.Fatalf("expected engine.View, got %T", m.State("alice"))
	}
	if len(v.Player("alice").Hand) != 5 {
		t.Fatalf("expected own hand of 5, got %d", len(v.Player("alice").Hand))
	}
	if v.Player("bob").Hand != nil {
		t.Fatal("opponent hand leaked")
	}
	if v.Player("bob").HandSize != 5 {
		t.Fatalf("expected opponent hand size 5, got %d", v.Player("bob").HandSize)
	}
}

func TestValidActions(t *testing.T) {
	m := newTestMatch(t)

	actions := m.ValidActions("alice")
	if len(actions) < 2 {
		t.Fatalf("expected plays plus end_turn and forfeit, got %d", len(actions))
	}
	if actions[len(actions)-2].Type != ActionEndTurn || actions[len(actions)-1].Type != ActionForfeit {
		t.Fatalf("unexpected trailing actions: %+v", actions[len(actions)-2:])
	}

	actions = m.ValidActions("bob")
	if len(actions) != 1 || actions[0].Type != ActionForfeit {
		t.Fatalf("expected only forfeit for bob, got %+v", actions)
	}
}

func TestEndTurnAction(t *testing.T) {
	m := newTestMatch(t)
	if err := m.ApplyAction("alice", game.Action{Type: ActionEndTurn}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Actor() != "bob" {
		t.Fatalf("expected bob to act, got %s", m.Actor())
	}
	// Start, full hand, turn passed.
	log := m.Log()
	if len(log) != 3 {
		t.Fatalf("expected 3 log lines, got %v", log)
	}
}

func TestRuleErrorsKeepTheirCode(t *testing.T) {
	m := newTestMatch(t)

	err := m.ApplyAction("bob", game.Action{Type: ActionEndTurn})
	if !errors.Is(err, engine.ErrInvalidTurn) {
		t.Fatalf("expected INVALID_TURN, got %v", err)
	}

	err = m.ApplyAction("alice", action(t, ActionPlayCard, PlayCardPayload{CardIndex: 9}))
	if engine.CodeOf(err) != engine.CodeInvalidCardIndex {
		t.Fatalf("expected INVALID_CARD_INDEX, got %v", err)
	}

	err = m.ApplyAction("alice", action(t, ActionResolvePending, ResolvePendingPayload{}))
	if engine.CodeOf(err) != engine.CodeInvalidState {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}
}

func TestBadPayloads(t *testing.T) {
	m := newTestMatch(t)
	if err := m.ApplyAction("alice", game.Action{Type: ActionPlayCard}); err == nil {
		t.Fatal("expected error for missing payload")
	}
	if err := m.ApplyAction("alice", game.Action{Type: ActionPlayCard, Payload: json.RawMessage(`{"cardIndex":"x"}`)}); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if err := m.ApplyAction("alice", game.Action{Type: "dance"}); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestPlayCardPayloadFlattensParams(t *testing.T) {
	var p PlayCardPayload
	raw := `{"cardIndex":2,"targetCharacterId":"bob_char_1","ownCardIndices":[0,1],"targetCardIndices":[3,4]}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.CardIndex != 2 || p.TargetCharacterID != "bob_char_1" || len(p.OwnCardIndices) != 2 || p.TargetCardIndices[1] != 4 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestForfeitEndsTwoPlayerMatch(t *testing.T) {
	m := newTestMatch(t)
	if m.Results() != nil {
		t.Fatal("expected no results before the match ends")
	}
	if err := m.ApplyAction("bob", game.Action{Type: ActionForfeit}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.IsOver() {
		t.Fatal("expected match over")
	}
	if m.Actor() != "" {
		t.Fatalf("expected no actor, got %s", m.Actor())
	}
	results := m.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].PlayerID != "alice" || results[0].Rank != 1 {
		t.Fatalf("expected alice first, got %+v", results[0])
	}
	if results[1].PlayerID != "bob" || results[1].Rank != 2 {
		t.Fatalf("expected bob second, got %+v", results[1])
	}
	if m.ValidActions("alice") != nil {
		t.Fatal("expected no actions after the match ends")
	}
}

func TestRunBot(t *testing.T) {
	m := newTestMatch(t, game.Seat{ID: "alice"}, game.Seat{ID: "bot-1", Bot: true})
	if err := m.ApplyAction("alice", game.Action{Type: ActionEndTurn}); err != nil {
		t.Fatal(err)
	}
	if m.Actor() != "bot-1" {
		t.Fatalf("expected bot to act, got %s", m.Actor())
	}

	// Keep answering for the bot until the game is waiting on alice again.
	for i := 0; i < 10 && m.Actor() == "bot-1"; i++ {
		if err := m.RunBot("bot-1"); err != nil {
			t.Fatalf("bot error: %v", err)
		}
	}
	if !m.IsOver() && m.Actor() != "alice" {
		t.Fatalf("expected alice to act after the bot, got %q", m.Actor())
	}
}

var (
	_ game.BotRunner = (*Match)(nil)
	_ game.Leaver    = (*Match)(nil)
)
