package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sleepygame/internal/game"
	"sleepygame/internal/storage"
)

// ErrNotFound is returned for unknown room codes.
var ErrNotFound = errors.New("session not found")

// Manager manages all active sessions and drives their bots.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	registry *game.Registry
	store    *storage.Store
	logger   *zap.Logger
	botDelay time.Duration
	notify   func(*Session)
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithBotDelay sets the pause before a bot takes its move.
func WithBotDelay(d time.Duration) Option {
	return func(m *Manager) { m.botDelay = d }
}

// NewManager creates a session manager.
func NewManager(registry *game.Registry, store *storage.Store, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		registry: registry,
		store:    store,
		logger:   zap.NewNop(),
		notify:   func(*Session) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetNotifier registers the callback run after every state change,
// including bot moves. The server uses it to broadcast state.
func (m *Manager) SetNotifier(fn func(*Session)) {
	if fn == nil {
		fn = func(*Session) {}
	}
	m.mu.Lock()
	m.notify = fn
	m.mu.Unlock()
}

// Create makes a new session and persists it.
func (m *Manager) Create(gameType string) (*Session, error) {
	g, ok := m.registry.Get(gameType)
	if !ok {
		return nil, fmt.Errorf("unknown game type: %s", gameType)
	}
	code := generateCode()
	if err := m.store.CreateSession(code, gameType); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s := NewSession(code, gameType, g)
	m.mu.Lock()
	m.sessions[code] = s
	m.mu.Unlock()
	m.logger.Info("session created", zap.String("room", code), zap.String("game", gameType))
	return s, nil
}

// Get returns a session by code.
func (m *Manager) Get(code string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[code]
	return s, ok
}

// Lookup returns the live match of a room.
func (m *Manager) Lookup(code string) (*Session, game.Match, error) {
	s, ok := m.Get(code)
	if !ok {
		return nil, nil, ErrNotFound
	}
	s.mu.RLock()
	match := s.Match
	s.mu.RUnlock()
	if match == nil {
		return s, nil, ErrNoActiveGame
	}
	return s, match, nil
}

// List returns info for all rooms held in memory, ordered by code.
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	m.mu.RUnlock()
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Code, b.Code) })
	return infos
}

// Start deals the room's match and hands control to the first player.
func (m *Manager) Start(s *Session) error {
	if err := s.Start(m.logger.With(zap.String("room", s.Code))); err != nil {
		return err
	}
	m.logger.Info("session started", zap.String("room", s.Code), zap.Strings("players", s.PlayerIDs()))
	m.afterChange(s, true)
	return nil
}

// Apply runs one player action against the room's match.
func (m *Manager) Apply(s *Session, playerID string, action game.Action) error {
	s.mu.Lock()
	if s.Match == nil {
		s.mu.Unlock()
		return ErrNoActiveGame
	}
	err := s.Match.ApplyAction(playerID, action)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	m.afterChange(s, true)
	return nil
}

// Leave removes playerID from the room. In a running match the seat is
// forfeited and stays in the roster. A waiting room left without humans is
// removed.
func (m *Manager) Leave(s *Session, playerID string) error {
	s.mu.Lock()
	if s.Status == StatusWaiting {
		s.removePlayerLocked(playerID)
		s.mu.Unlock()
		m.notifier()(s)
		if s.HumanCount() == 0 {
			m.logger.Info("last human left", zap.String("room", s.Code))
			m.Remove(s.Code)
		}
		return nil
	}
	var err error
	if l, ok := s.Match.(game.Leaver); ok && s.Status == StatusPlaying {
		err = l.Leave(playerID)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	m.afterChange(s, true)
	return nil
}

// afterChange persists the room status, archives a finished match, notifies
// listeners and queues the next bot move.
func (m *Manager) afterChange(s *Session, scheduleBots bool) {
	s.mu.Lock()
	match := s.Match
	var (
		archive  bool
		results  []storage.ResultRow
		log      []string
		schedule bool
		finished time.Time
	)
	if match != nil && match.IsOver() && s.Status != StatusFinished {
		finished = m.now()
		s.finishLocked(finished)
		archive = true
		for _, r := range match.Results() {
			row := storage.ResultRow{PlayerID: r.PlayerID, Rank: r.Rank, Score: r.Score}
			if p, ok := s.Players[r.PlayerID]; ok {
				row.Name, row.Bot = p.Name, p.Bot
			}
			results = append(results, row)
		}
		log = match.Log()
	}
	if match != nil && scheduleBots && s.Status == StatusPlaying && !s.botScheduled {
		if p, ok := s.Players[match.Actor()]; ok && p.Bot {
			s.botScheduled = true
			schedule = true
		}
	}
	status := s.Status
	s.mu.Unlock()

	if archive {
		if err := m.store.ArchiveMatch(s.Code, finished, results, log); err != nil {
			m.logger.Error("archive match", zap.String("room", s.Code), zap.Error(err))
		} else {
			m.logger.Info("match archived", zap.String("room", s.Code))
		}
	} else if err := m.store.UpdateSessionStatus(s.Code, string(status)); err != nil {
		m.logger.Error("update session status", zap.String("room", s.Code), zap.Error(err))
	}

	m.notifier()(s)

	if schedule {
		time.AfterFunc(m.botDelay, func() { m.runBot(s) })
	}
}

// runBot lets the bot the match is waiting on take its move.
func (m *Manager) runBot(s *Session) {
	s.mu.Lock()
	s.botScheduled = false
	if s.Match == nil || s.Status != StatusPlaying {
		s.mu.Unlock()
		return
	}
	actor := s.Match.Actor()
	p, ok := s.Players[actor]
	runner, canRun := s.Match.(game.BotRunner)
	if !ok || !p.Bot || !canRun {
		s.mu.Unlock()
		return
	}
	err := runner.RunBot(actor)
	s.mu.Unlock()

	if err != nil {
		// Do not requeue a bot that cannot move; the room would spin.
		m.logger.Error("bot move failed", zap.String("room", s.Code), zap.String("player_id", actor), zap.Error(err))
		m.afterChange(s, false)
		return
	}
	m.afterChange(s, true)
}

// History is the archived record of a finished room.
type History struct {
	Code     string              `json:"code"`
	GameType string              `json:"gameType"`
	Status   string              `json:"status"`
	Results  []storage.ResultRow `json:"results"`
	Log      []string            `json:"actionLog"`
}

// History reads a room's archived results and action log. It works after
// the room has been cleaned out of memory.
func (m *Manager) History(code string) (History, error) {
	row, err := m.store.GetSession(code)
	if err != nil {
		return History{}, ErrNotFound
	}
	h := History{Code: row.Code, GameType: row.GameType, Status: row.Status}
	if h.Results, err = m.store.GetResults(code); err != nil {
		return History{}, fmt.Errorf("load results: %w", err)
	}
	if h.Log, err = m.store.GetActionLog(code); err != nil {
		return History{}, fmt.Errorf("load action log: %w", err)
	}
	return h, nil
}

// Finished lists the archived rooms, newest first.
func (m *Manager) Finished() ([]storage.SessionRow, error) {
	return m.store.ListSessions(string(StatusFinished))
}

// Remove deletes a session from memory. Unfinished rooms are deleted from
// storage too; finished ones keep their archive.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	s, ok := m.sessions[code]
	delete(m.sessions, code)
	m.mu.Unlock()
	if ok && s.Info().Status == StatusFinished {
		return
	}
	if err := m.store.DeleteSession(code); err != nil {
		m.logger.Warn("delete session", zap.String("room", code), zap.Error(err))
	}
}

// CleanupLoop removes stale sessions periodically until ctx is done.
func (m *Manager) CleanupLoop(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(maxAge)
		}
	}
}

// cleanup drops rooms no human is seated in, and rooms that finished more
// than maxAge ago.
func (m *Manager) cleanup(maxAge time.Duration) {
	m.mu.RLock()
	var stale []string
	now := m.now()
	for code, s := range m.sessions {
		s.mu.RLock()
		empty := s.humansLocked() == 0
		expired := s.Status == StatusFinished && now.Sub(s.finishedAt) > maxAge
		s.mu.RUnlock()

		if empty || expired {
			stale = append(stale, code)
		}
	}
	m.mu.RUnlock()

	for _, code := range stale {
		m.logger.Info("cleaning up session", zap.String("room", code))
		m.Remove(code)
	}
}

func (m *Manager) notifier() func(*Session) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.notify
}

func generateCode() string {
	b := make([]byte, 3) // 6 hex chars
	rand.Read(b)
	return hex.EncodeToString(b)
}
