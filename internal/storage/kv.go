package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned by GetValue for a missing key.
var ErrNotFound = errors.New("storage: key not found")

// HighScoreKey returns the kv key holding a game's high score.
func HighScoreKey(gameID string) string {
	return "highscore:" + gameID
}

// GetValue reads a value from the key-value table.
func (s *Store) GetValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("storage: cannot read %s: %w", key, err)
	}
	return value, nil
}

// SetValue writes a value to the key-value table, replacing any existing one.
func (s *Store) SetValue(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", key, err)
	}
	return nil
}

// ResetHighScore sets the stored high score for a game back to 0.
func (s *Store) ResetHighScore(gameID string) error {
	return s.SetValue(HighScoreKey(gameID), "0")
}

// LoadHighScore returns the stored high score for a game, or 0 if none.
func (s *Store) LoadHighScore(gameID string) (int, error) {
	raw, err := s.GetValue(HighScoreKey(gameID))
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("storage: corrupt high score for %s: %w", gameID, err)
	}
	return n, nil
}

// SaveHighScore stores score as the game's high score if it beats the stored one.
// Returns true when the stored value changed.
func (s *Store) SaveHighScore(gameID string, score int) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		 WHERE CAST(kv.value AS INTEGER) < CAST(excluded.value AS INTEGER)`,
		HighScoreKey(gameID), strconv.Itoa(score),
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot save high score: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	return n > 0, nil
}
