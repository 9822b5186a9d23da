// Package web exposes 2048 sessions over a JSON HTTP API with live
// WebSocket updates.
package web

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/merge-arcade/internal/games/t2048"
	"github.com/vovakirdan/merge-arcade/internal/storage"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("web: session not found")

// Store is the persistence used by web sessions. *storage.Store satisfies it.
type Store interface {
	SaveScore(gameID string, score int) (int64, error)
	TopScores(gameID string, limit int) ([]storage.ScoreEntry, error)
	LoadHighScore(gameID string) (int, error)
	SaveHighScore(gameID string, score int) (bool, error)
}

// StateView is the JSON shape of a session's state.
type StateView struct {
	ID        string                                `json:"id"`
	Board     [t2048.BoardSize][t2048.BoardSize]int `json:"board"`
	Score     int                                   `json:"score"`
	HighScore int                                   `json:"high_score"`
	Level     int                                   `json:"level"`
	MaxLevel  int                                   `json:"max_level"`
	MaxTile   int                                   `json:"max_tile"`
	GameOver  bool                                  `json:"game_over"`
	CreatedAt time.Time                             `json:"created_at"`
}

// MoveOutcome is returned by a move: the new state plus what the move did.
type MoveOutcome struct {
	State   StateView `json:"state"`
	Moved   bool      `json:"moved"`
	Gained  int       `json:"gained"`
	LevelUp int       `json:"level_up,omitempty"`
}

// Session is one 2048 game. Its mutex serializes every engine call.
type Session struct {
	mu         sync.Mutex
	id         string
	engine     *t2048.Engine
	createdAt  time.Time
	lastSeen   time.Time
	scoreSaved bool
}

func (s *Session) view() StateView {
	return StateView{
		ID:        s.id,
		Board:     s.engine.Board().Rows(),
		Score:     s.engine.Score(),
		HighScore: s.engine.HighScore(),
		Level:     s.engine.Level(),
		MaxLevel:  t2048.MaxLevel(),
		MaxTile:   s.engine.MaxTile(),
		GameOver:  !s.engine.CanMove(),
		CreatedAt: s.createdAt,
	}
}

// Manager owns the live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    Store
	logger   *log.Logger
	newRand  func() t2048.Rand
	now      func() time.Time
}

// NewManager creates a session manager. store may be nil.
func NewManager(store Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		logger:   logger,
		newRand: func() t2048.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		now: time.Now,
	}
}

// Create starts a new session seeded with the stored high score.
func (m *Manager) Create() StateView {
	best := 0
	if m.store != nil {
		hs, err := m.store.LoadHighScore(t2048.GameID)
		if err != nil {
			m.logger.Warn("could not load high score", "game", t2048.GameID, "error", err)
		}
		best = hs
	}

	created := m.now().UTC()
	s := &Session{
		id: uuid.NewString(),
		engine: t2048.NewEngine(
			m.newRand(),
			t2048.WithSpawn4Prob(t2048.CurrentSettings().Spawn4Prob),
			t2048.WithHighScore(best),
		),
		createdAt: created,
		lastSeen:  created,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session", s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (m *Manager) get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Get returns a session's current state.
func (m *Manager) Get(id string) (StateView, error) {
	s, err := m.get(id)
	if err != nil {
		return StateView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = m.now()
	return s.view(), nil
}

// List returns session ids in creation order.
func (m *Manager) List() []string {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].createdAt.Equal(all[j].createdAt) {
			return all[i].id < all[j].id
		}
		return all[i].createdAt.Before(all[j].createdAt)
	})

	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.id
	}
	return ids
}

// Delete drops a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.logger.Info("session deleted", "session", id)
	return nil
}

// Sweep drops sessions that no request has touched for longer than maxIdle.
// Returns how many were removed.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("idle sessions swept", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(maxIdle)
		}
	}
}

// Move applies a direction to a session. Invalid directions return an error
// wrapping t2048.ErrInvalidDirection and leave the session untouched.
func (m *Manager) Move(id, direction string) (MoveOutcome, error) {
	s, err := m.get(id)
	if err != nil {
		return MoveOutcome{}, err
	}

	dir, err := t2048.ParseDirection(direction)
	if err != nil {
		return MoveOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = m.now()

	prevBest := s.engine.HighScore()
	res, err := s.engine.Move(dir)
	if err != nil {
		return MoveOutcome{}, err
	}

	if s.engine.HighScore() > prevBest {
		m.persistHighScore(s.engine.HighScore())
	}
	if !s.engine.CanMove() && !s.scoreSaved {
		m.saveScore(s.id, s.engine.Score())
		s.scoreSaved = true
	}

	return MoveOutcome{
		State:   s.view(),
		Moved:   res.Moved,
		Gained:  res.Gained,
		LevelUp: res.LevelUp,
	}, nil
}

// Restart starts a fresh board in an existing session, keeping its high score.
func (m *Manager) Restart(id string) (StateView, error) {
	s, err := m.get(id)
	if err != nil {
		return StateView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = m.now()
	s.engine.Restart()
	s.scoreSaved = false
	return s.view(), nil
}

// TopScores returns the best recorded scores for a game.
func (m *Manager) TopScores(gameID string, limit int) ([]storage.ScoreEntry, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.TopScores(gameID, limit)
}

func (m *Manager) persistHighScore(score int) {
	if m.store == nil {
		return
	}
	if _, err := m.store.SaveHighScore(t2048.GameID, score); err != nil {
		m.logger.Warn("could not save high score", "game", t2048.GameID, "score", score, "error", err)
	}
}

func (m *Manager) saveScore(sessionID string, score int) {
	if m.store == nil || score <= 0 {
		return
	}
	if _, err := m.store.SaveScore(t2048.GameID, score); err != nil {
		m.logger.Warn("could not save score", "session", sessionID, "score", score, "error", err)
		return
	}
	m.logger.Info("game over", "session", sessionID, "score", score)
}
