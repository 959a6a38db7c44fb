package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sleepygame/internal/game"
)

// Status represents the session lifecycle.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// ErrNoActiveGame is returned for game operations on a room whose match has
// not started.
var ErrNoActiveGame = errors.New("game not started")

// Player is a seat in the room. Bots have no Send channel.
type Player struct {
	ID   string
	Name string
	Bot  bool
	Send chan []byte // outbound messages
}

// Session is one game room with its seated players.
type Session struct {
	mu       sync.RWMutex
	Code     string
	GameType string
	Status   Status
	HostID   string
	Players  map[string]*Player
	Match    game.Match
	order    []string
	game     game.Game
	// botScheduled is set while a bot move is queued for this room.
	botScheduled bool
	finishedAt   time.Time
}

// NewSession creates a session in the waiting state.
func NewSession(code, gameType string, g game.Game) *Session {
	return &Session{
		Code:     code,
		GameType: gameType,
		Status:   StatusWaiting,
		Players:  make(map[string]*Player),
		game:     g,
	}
}

// AddPlayer seats a human player. Returns error if full or already playing.
func (s *Session) AddPlayer(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.canSeatLocked(playerID); err != nil {
		return err
	}
	if name == "" {
		name = playerID
	}
	s.seatLocked(&Player{ID: playerID, Name: name, Send: make(chan []byte, 64)})
	if s.HostID == "" {
		s.HostID = playerID
	}
	return nil
}

// AddBot seats a bot and returns its generated ID.
func (s *Session) AddBot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := "bot-" + uuid.NewString()[:8]
	if err := s.canSeatLocked(id); err != nil {
		return "", err
	}
	bots := 0
	for _, p := range s.Players {
		if p.Bot {
			bots++
		}
	}
	s.seatLocked(&Player{ID: id, Name: fmt.Sprintf("Bot %d", bots+1), Bot: true})
	return id, nil
}

func (s *Session) canSeatLocked(playerID string) error {
	if s.Status != StatusWaiting {
		return fmt.Errorf("session is not accepting players")
	}
	if len(s.Players) >= s.game.Info().MaxPlayers {
		return fmt.Errorf("session is full")
	}
	if _, exists := s.Players[playerID]; exists {
		return fmt.Errorf("player %s already in session", playerID)
	}
	return nil
}

func (s *Session) seatLocked(p *Player) {
	s.Players[p.ID] = p
	s.order = append(s.order, p.ID)
}

// RemovePlayer removes a player from the session. The host role passes to
// the next human in join order.
func (s *Session) RemovePlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removePlayerLocked(playerID)
}

func (s *Session) removePlayerLocked(playerID string) {
	p, ok := s.Players[playerID]
	if !ok {
		return
	}
	if p.Send != nil {
		close(p.Send)
	}
	delete(s.Players, playerID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == playerID })
	if s.HostID == playerID {
		s.HostID = ""
		for _, id := range s.order {
			if !s.Players[id].Bot {
				s.HostID = id
				break
			}
		}
	}
}

// ConnectPlayer replaces the Send channel for a reconnecting player.
func (s *Session) ConnectPlayer(playerID string, send chan []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Players[playerID]
	if !ok || p.Bot {
		return false
	}
	p.Send = send
	return true
}

// PlayerIDs returns the player IDs in join order.
func (s *Session) PlayerIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// HumanCount returns the number of seated humans.
func (s *Session) HumanCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.humansLocked()
}

func (s *Session) humansLocked() int {
	n := 0
	for _, p := range s.Players {
		if !p.Bot {
			n++
		}
	}
	return n
}

// Start transitions the session from waiting to playing. Seats are dealt in
// join order, so the first to join moves first.
func (s *Session) Start(logger *zap.Logger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusWaiting {
		return fmt.Errorf("session is not in waiting state")
	}
	info := s.game.Info()
	if len(s.Players) < info.MinPlayers {
		return fmt.Errorf("need at least %d players, have %d", info.MinPlayers, len(s.Players))
	}

	seats := make([]game.Seat, 0, len(s.order))
	for _, id := range s.order {
		p := s.Players[id]
		seats = append(seats, game.Seat{ID: p.ID, Name: p.Name, Bot: p.Bot})
	}
	match, err := s.game.NewMatch(game.MatchConfig{Seats: seats, Logger: logger})
	if err != nil {
		return err
	}
	s.Match = match
	s.Status = StatusPlaying
	return nil
}

// finishLocked marks the session finished at the given time.
func (s *Session) finishLocked(at time.Time) {
	s.Status = StatusFinished
	s.finishedAt = at
}

// Broadcast sends a message to all connected players.
func (s *Session) Broadcast(msg []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.Players {
		if p.Send == nil {
			continue
		}
		select {
		case p.Send <- msg:
		default:
			// drop message if buffer full
		}
	}
}

// GetPlayer returns a player, or nil if not found.
func (s *Session) GetPlayer(playerID string) *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Players[playerID]
}

// Info returns session info for the API.
type Info struct {
	Code     string      `json:"code"`
	GameType string      `json:"gameType"`
	Status   Status      `json:"status"`
	Players  []game.Seat `json:"players"`
	HostID   string      `json:"hostId"`
}

func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.infoLocked()
}

// InfoLocked returns info without acquiring the lock (caller must hold it).
func (s *Session) InfoLocked() Info {
	return s.infoLocked()
}

func (s *Session) infoLocked() Info {
	seats := make([]game.Seat, 0, len(s.order))
	for _, id := range s.order {
		p := s.Players[id]
		seats = append(seats, game.Seat{ID: p.ID, Name: p.Name, Bot: p.Bot})
	}
	return Info{
		Code:     s.Code,
		GameType: s.GameType,
		Status:   s.Status,
		Players:  seats,
		HostID:   s.HostID,
	}
}

// RLock/RUnlock let the server read the match while it renders views.
func (s *Session) RLock()   { s.mu.RLock() }
func (s *Session) RUnlock() { s.mu.RUnlock() }
