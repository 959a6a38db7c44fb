package game

import (
	"encoding/json"

	"go.uber.org/zap"
)

// GameInfo describes a game type for the lobby.
type GameInfo struct {
	Name       string `json:"name"`
	MinPlayers int    `json:"minPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
}

// Seat is one participant in a new match.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bot  bool   `json:"bot"`
}

// MatchConfig holds settings for creating a new match.
type MatchConfig struct {
	Seats  []Seat
	Logger *zap.Logger
}

// Action represents a move a player can make.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PlayerResult holds the outcome for one player.
type PlayerResult struct {
	PlayerID string `json:"playerId"`
	Rank     int    `json:"rank"` // 1 = first place
	Score    int    `json:"score"`
}

// Game describes a game type.
type Game interface {
	Info() GameInfo
	NewMatch(config MatchConfig) (Match, error)
}

// Match is one in-progress game session. Implementations are not safe for
// concurrent use; the session layer serializes calls.
type Match interface {
	State(playerID string) any
	ValidActions(playerID string) []Action
	ApplyAction(playerID string, action Action) error
	// Actor is the player the match is waiting on, or "" once it is over.
	Actor() string
	IsOver() bool
	Results() []PlayerResult
	// Log returns the human-readable action log.
	Log() []string
}

// BotRunner is implemented by matches that can play a bot-controlled seat.
type BotRunner interface {
	RunBot(playerID string) error
}

// Leaver is implemented by matches that can drop a player mid-game.
type Leaver interface {
	Leave(playerID string) error
}
