// Package sleepy exposes the sleep card game engine as a game.Game.
package sleepy

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"sleepygame/internal/bot"
	"sleepygame/internal/engine"
	"sleepygame/internal/game"
)

// Name is the registry key of the game.
const Name = "sleepy"

// Action types accepted by Match.ApplyAction.
const (
	ActionPlayCard       = "play_card"
	ActionResolvePending = "resolve_pending"
	ActionEndTurn        = "end_turn"
	ActionForfeit        = "forfeit"
)

// Sleepy implements game.Game.
type Sleepy struct {
	Rules      engine.Rules
	MaxPlayers int
	// Rand, when set, supplies the random source of each new match.
	Rand func() *rand.Rand
}

func (s Sleepy) Info() game.GameInfo {
	maxPlayers := s.MaxPlayers
	if maxPlayers < 2 {
		maxPlayers = 4
	}
	return game.GameInfo{
		Name:       Name,
		MinPlayers: 2,
		MaxPlayers: maxPlayers,
	}
}

func (s Sleepy) NewMatch(config game.MatchConfig) (game.Match, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := s.Rules
	if rules == (engine.Rules{}) {
		rules = engine.DefaultRules()
	}
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if s.Rand != nil {
		rng = s.Rand()
	}

	specs := make([]engine.PlayerSpec, len(config.Seats))
	for i, seat := range config.Seats {
		specs[i] = engine.PlayerSpec{ID: seat.ID, Name: seat.Name, IsBot: seat.Bot}
	}
	g, err := engine.New(specs,
		engine.WithRules(rules),
		engine.WithRand(rng),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}
	return &Match{
		game: g,
		bot:  bot.New(rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())), logger.Named("bot")),
	}, nil
}

// Match implements game.Match and game.BotRunner.
type Match struct {
	game *engine.Game
	bot  *bot.Policy
}

// PlayCardPayload is the payload of a play_card action.
type PlayCardPayload struct {
	CardIndex int `json:"cardIndex"`
	engine.PlayParams
}

// ResolvePendingPayload is the payload of a resolve_pending action.
type ResolvePendingPayload struct {
	UseDefense       bool `json:"useDefense"`
	DefenseCardIndex int  `json:"defenseCardIndex"`
}

// State returns the redacted engine.View for playerID.
func (m *Match) State(playerID string) any {
	return m.game.ViewFor(playerID)
}

// ValidActions lists what playerID may do right now. Card plays carry only
// the card index; targets are chosen by the client.
func (m *Match) ValidActions(playerID string) []game.Action {
	v := m.game.ViewFor(playerID)
	me := v.Player(playerID)
	if v.GameOver || me == nil || me.Eliminated {
		return nil
	}

	var actions []game.Action
	switch {
	case v.Pending != nil && v.Pending.TargetPlayerID == playerID:
		actions = append(actions, mustAction(ActionResolvePending, ResolvePendingPayload{}))
		for i, c := range me.Hand {
			if c.Type == engine.CardDefense {
				actions = append(actions, mustAction(ActionResolvePending, ResolvePendingPayload{UseDefense: true, DefenseCardIndex: i}))
			}
		}
	case v.Pending == nil && v.CurrentTurn == playerID:
		for i, c := range me.Hand {
			if c.Type != engine.CardDefense {
				actions = append(actions, mustAction(ActionPlayCard, PlayCardPayload{CardIndex: i}))
			}
		}
		actions = append(actions, game.Action{Type: ActionEndTurn})
	}
	return append(actions, game.Action{Type: ActionForfeit})
}

// ApplyAction decodes and applies one action. Rule violations are returned
// as *engine.Error.
func (m *Match) ApplyAction(playerID string, action game.Action) error {
	var err error
	switch action.Type {
	case ActionPlayCard:
		var p PlayCardPayload
		if err := decode(action, &p); err != nil {
			return err
		}
		_, err = m.game.PlayCard(playerID, p.CardIndex, p.PlayParams)
	case ActionResolvePending:
		var p ResolvePendingPayload
		if err := decode(action, &p); err != nil {
			return err
		}
		_, err = m.game.ResolvePending(playerID, p.UseDefense, p.DefenseCardIndex)
	case ActionEndTurn:
		_, err = m.game.EndTurn(playerID)
	case ActionForfeit:
		_, err = m.game.Forfeit(playerID)
	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
	return err
}

// RunBot lets the bot policy act for playerID.
func (m *Match) RunBot(playerID string) error {
	return m.bot.Act(m.game, playerID)
}

// Leave forfeits playerID's seat.
func (m *Match) Leave(playerID string) error {
	_, err := m.game.Forfeit(playerID)
	return err
}

func (m *Match) Actor() string { return m.game.Actor() }

func (m *Match) IsOver() bool { return m.game.Status().GameOver }

func (m *Match) Log() []string { return m.game.Log() }

// Results ranks the winner first. Score is the number of characters put to
// sleep.
func (m *Match) Results() []game.PlayerResult {
	s := m.game.Snapshot()
	if !s.GameOver {
		return nil
	}
	results := make([]game.PlayerResult, 0, len(s.TurnOrder))
	for _, id := range s.TurnOrder {
		rank := 2
		if id == s.Winner {
			rank = 1
		}
		results = append(results, game.PlayerResult{PlayerID: id, Rank: rank, Score: s.Players[id].SleptCount})
	}
	return results
}

func decode(action game.Action, v any) error {
	if len(action.Payload) == 0 {
		return fmt.Errorf("%s requires a payload", action.Type)
	}
	if err := json.Unmarshal(action.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", action.Type, err)
	}
	return nil
}

func mustAction(typ string, payload any) game.Action {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return game.Action{Type: typ, Payload: raw}
}
