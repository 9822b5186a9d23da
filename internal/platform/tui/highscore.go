package tui

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/merge-arcade/internal/registry"
	"github.com/vovakirdan/merge-arcade/internal/storage"
)

// Store is the persistence the game runner needs. *storage.Store satisfies it.
type Store interface {
	SaveScore(gameID string, score int) (int64, error)
	LoadHighScore(gameID string) (int, error)
	SaveHighScore(gameID string, score int) (bool, error)
}

// storeFor avoids wrapping a nil *storage.Store in a non-nil interface.
func storeFor(s *storage.Store) Store {
	if s == nil {
		return nil
	}
	return s
}

// HighScoreKeeper loads a game's persisted high score and writes it back
// whenever the game raises it. Storage errors are logged, never returned:
// play continues with the in-memory value.
type HighScoreKeeper struct {
	store  Store
	logger *log.Logger
	gameID string
	saved  int
	active bool
}

// NewHighScoreKeeper creates a keeper. A nil store disables persistence.
func NewHighScoreKeeper(store Store, logger *log.Logger) *HighScoreKeeper {
	if logger == nil {
		logger = log.Default()
	}
	return &HighScoreKeeper{store: store, logger: logger}
}

// Attach seeds the game with its stored high score. Games that don't
// implement registry.HighScorer are ignored.
func (k *HighScoreKeeper) Attach(game registry.Game) {
	k.gameID = game.ID()
	k.saved = 0
	k.active = false

	hs, ok := game.(registry.HighScorer)
	if !ok || k.store == nil {
		return
	}
	k.active = true

	best, err := k.store.LoadHighScore(k.gameID)
	if err != nil {
		k.logger.Warn("could not load high score", "game", k.gameID, "error", err)
		return
	}
	k.saved = best
	hs.SetHighScore(best)
	k.logger.Debug("high score loaded", "game", k.gameID, "score", best)
}

// Observe persists the game's high score if it rose since the last write.
func (k *HighScoreKeeper) Observe(game registry.Game) {
	if !k.active {
		return
	}
	hs, ok := game.(registry.HighScorer)
	if !ok {
		return
	}

	current := hs.HighScore()
	if current <= k.saved {
		return
	}

	// A failed write is not retried until the score rises again.
	if _, err := k.store.SaveHighScore(k.gameID, current); err != nil {
		k.logger.Warn("could not save high score", "game", k.gameID, "score", current, "error", err)
	}
	k.saved = current
}

// Saved returns the last high score the keeper wrote or loaded.
func (k *HighScoreKeeper) Saved() int {
	return k.saved
}
