// Package engine implements the sleep card game: dealing, the card-play state
// machine with its defense window, turn rotation, win detection and the
// redacted per-player view.
//
// A Game is not safe for concurrent use. Callers serialize access per game.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rules holds the tunable game constants.
type Rules struct {
	MaxHandSize         int
	CharactersPerPlayer int
	// SupportSelfOnly restricts support cards to the caster's own characters.
	SupportSelfOnly bool
	RarityScale     int
}

// DefaultRules returns the standard table rules.
func DefaultRules() Rules {
	return Rules{
		MaxHandSize:         5,
		CharactersPerPlayer: 3,
		RarityScale:         DefaultRarityScale,
	}
}

// PlayerSpec seats one player at game creation.
type PlayerSpec struct {
	ID    string
	Name  string
	IsBot bool
}

// Game owns one State and is the only thing allowed to mutate it.
type Game struct {
	state      State
	rules      Rules
	deck       *Deck
	rng        *rand.Rand
	logger     *zap.Logger
	characters []CharacterTemplate
	cards      []Card
}

// Option configures a Game.
type Option func(*Game)

// WithRules overrides DefaultRules.
func WithRules(r Rules) Option {
	return func(g *Game) { g.rules = r }
}

// WithRand sets the random source used for dealing and drawing.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) { g.logger = l }
}

// WithCharacterTemplates replaces the character pool.
func WithCharacterTemplates(t []CharacterTemplate) Option {
	return func(g *Game) { g.characters = t }
}

// WithCardTemplates replaces the card pool.
func WithCardTemplates(t []Card) Option {
	return func(g *Game) { g.cards = t }
}

// New deals a fresh game: every player gets CharactersPerPlayer distinct
// characters from the shuffled pool and a full hand. The first player listed moves first.
func New(specs []PlayerSpec, opts ...Option) (*Game, error) {
	g := &Game{
		rules:      DefaultRules(),
		characters: CharacterTemplates,
		cards:      CardTemplates,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.rules.MaxHandSize <= 0 || g.rules.CharactersPerPlayer <= 0 {
		return nil, errors.New("hand size and characters per player must be positive")
	}
	if len(specs) < 2 {
		return nil, fmt.Errorf("need at least 2 players, have %d", len(specs))
	}
	if need := len(specs) * g.rules.CharactersPerPlayer; need > len(g.characters) {
		return nil, fmt.Errorf("need %d character templates, have %d", need, len(g.characters))
	}

	deck, err := NewDeck(g.cards, g.rules.RarityScale, g.rng)
	if err != nil {
		return nil, err
	}
	g.deck = deck

	g.state = State{
		ID:      uuid.NewString(),
		Players: make(map[string]*Player, len(specs)),
	}

	pool := append([]CharacterTemplate(nil), g.characters...)
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	for _, ps := range specs {
		if ps.ID == "" {
			return nil, errors.New("player id required")
		}
		if _, dup := g.state.Players[ps.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %q", ps.ID)
		}
		name := ps.Name
		if name == "" {
			name = ps.ID
		}
		p := &Player{ID: ps.ID, Name: name, IsBot: ps.IsBot}
		for i := 0; i < g.rules.CharactersPerPlayer; i++ {
			t := pool[0]
			pool = pool[1:]
			p.Characters = append(p.Characters, Character{
				ID:          fmt.Sprintf("%s_char_%d", ps.ID, i),
				OwnerID:     ps.ID,
				Name:        t.Name,
				Age:         t.Age,
				Description: t.Description,
				MaxSleep:    t.MaxSleep,
			})
		}
		p.Hand = g.deck.DrawUpTo(nil, g.rules.MaxHandSize)
		g.state.Players[ps.ID] = p
		g.state.TurnOrder = append(g.state.TurnOrder, ps.ID)
	}
	g.state.CurrentTurn = g.state.TurnOrder[0]
	g.state.record(fmt.Sprintf("Game started! It's %s's turn.", g.state.name(g.state.CurrentTurn)))

	g.logger.Info("game created",
		zap.String("game_id", g.state.ID),
		zap.Strings("players", g.state.TurnOrder),
	)
	return g, nil
}

// ID returns the game's unique identifier.
func (g *Game) ID() string { return g.state.ID }

// Rules returns the rules the game was created with.
func (g *Game) Rules() Rules { return g.rules }

// Snapshot returns a deep copy of the full, unredacted state.
func (g *Game) Snapshot() State { return g.state.Clone() }

// Log returns a copy of the action log.
func (g *Game) Log() []string { return slices.Clone(g.state.Log) }

// Status reports the current win status.
func (g *Game) Status() WinStatus { return CheckWinCondition(&g.state, g.rules) }

// Actor returns the player the game is waiting on: the pending target while a
// defense window is open, otherwise the player whose turn it is. It is empty
// once the game is over.
func (g *Game) Actor() string {
	switch {
	case g.state.GameOver:
		return ""
	case g.state.Pending != nil:
		return g.state.Pending.TargetPlayerID
	default:
		return g.state.CurrentTurn
	}
}

func (g *Game) checkLive() error {
	if g.state.GameOver {
		return ErrGameOver
	}
	return nil
}

// settle applies the win check after a successful mutation.
func (g *Game) settle() WinStatus {
	ws := CheckWinCondition(&g.state, g.rules)
	if ws.GameOver && !g.state.GameOver {
		g.state.GameOver = true
		g.state.Winner = ws.WinnerID
		g.state.Pending = nil
		g.state.record(ws.Message)
		g.logger.Info("game over",
			zap.String("game_id", g.state.ID),
			zap.String("winner", ws.WinnerID),
		)
	}
	return ws
}

func (g *Game) reject(op, playerID string, err error) (WinStatus, error) {
	g.logger.Debug("operation rejected",
		zap.String("game_id", g.state.ID),
		zap.String("op", op),
		zap.String("player_id", playerID),
		zap.Error(err),
	)
	return g.Status(), err
}
