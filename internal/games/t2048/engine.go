package t2048

import (
	"errors"
	"fmt"
)

// DefaultSpawn4Prob is the chance that a spawned tile is a 4 instead of a 2.
const DefaultSpawn4Prob = 0.10

var (
	// ErrInvalidDirection is returned by Move for a direction outside the four valid ones.
	ErrInvalidDirection = errors.New("t2048: invalid direction")

	// ErrInvalidBoard is returned by Load for cells that are not 0 or a power of two.
	ErrInvalidBoard = errors.New("t2048: invalid board")
)

// Rand is the random source used for tile spawns. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// LevelUpFunc is called once per move that raises the level.
type LevelUpFunc func(level int)

// Spawn describes a tile placed by SpawnTile.
type Spawn struct {
	Index int // Row-major cell index
	Value int
}

// MoveResult describes what a single Move did.
type MoveResult struct {
	Moved   bool   // Whether any cell changed
	Gained  int    // Score added by merges
	Spawned *Spawn // Tile spawned after the move, nil if none
	LevelUp int    // New level if this move raised it, otherwise 0
}

// Engine owns one session's board, score, level and high score.
// It is not safe for concurrent use; callers serialize access per session.
type Engine struct {
	board      Board
	score      int
	level      int
	highScore  int
	rng        Rand
	spawn4Prob float64
	onLevelUp  LevelUpFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithSpawn4Prob overrides the probability of spawning a 4.
func WithSpawn4Prob(p float64) Option {
	return func(e *Engine) {
		e.spawn4Prob = p
	}
}

// WithHighScore seeds the high score loaded by the caller.
func WithHighScore(score int) Option {
	return func(e *Engine) {
		e.SetHighScore(score)
	}
}

// WithLevelUpHandler registers a callback fired on every level increase.
func WithLevelUpHandler(fn LevelUpFunc) Option {
	return func(e *Engine) {
		e.onLevelUp = fn
	}
}

// NewEngine creates an engine and starts a fresh game with two tiles.
func NewEngine(rng Rand, opts ...Option) *Engine {
	e := &Engine{
		rng:        rng,
		spawn4Prob: DefaultSpawn4Prob,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Restart()
	return e
}

// Board returns a copy of the current board.
func (e *Engine) Board() Board {
	return e.board
}

// Score returns the current score.
func (e *Engine) Score() int {
	return e.score
}

// Level returns the current level (0-5).
func (e *Engine) Level() int {
	return e.level
}

// HighScore returns the best score known to this engine.
func (e *Engine) HighScore() int {
	return e.highScore
}

// SetHighScore raises the high score to n. Lower values are ignored.
func (e *Engine) SetHighScore(n int) {
	if n > e.highScore {
		e.highScore = n
	}
}

// MaxTile returns the largest tile on the board.
func (e *Engine) MaxTile() int {
	return MaxTile(e.board)
}

// CanMove reports whether any direction would change the board.
func (e *Engine) CanMove() bool {
	return CanMove(e.board)
}

// Move slides the board in dir. If nothing changed the engine state is left
// as it was and no tile spawns. Otherwise a tile spawns, the level is
// recomputed and the high score follows the score.
func (e *Engine) Move(dir Direction) (MoveResult, error) {
	if !dir.Valid() {
		return MoveResult{}, fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}

	next, gained, moved := Slide(e.board, dir)
	if !moved {
		return MoveResult{}, nil
	}

	e.board = next
	e.score += gained

	result := MoveResult{Moved: true, Gained: gained}
	if spawn, ok := e.SpawnTile(); ok {
		result.Spawned = &spawn
	}
	result.LevelUp = e.checkLevel()
	e.SetHighScore(e.score)

	return result, nil
}

// SpawnTile places a 2 (or a 4 with the configured probability) in a random
// empty cell. Does nothing and returns false when the board is full.
func (e *Engine) SpawnTile() (Spawn, bool) {
	empty := EmptyCells(e.board)
	if len(empty) == 0 {
		return Spawn{}, false
	}

	idx := empty[e.rng.Intn(len(empty))]

	value := 2
	if e.rng.Float64() < e.spawn4Prob {
		value = 4
	}

	e.board[idx] = value
	return Spawn{Index: idx, Value: value}, true
}

// Restart clears the board, score and level and spawns two tiles.
// The high score is kept.
func (e *Engine) Restart() {
	e.board = Board{}
	e.score = 0
	e.level = 0
	e.SpawnTile()
	e.SpawnTile()
}

// Load replaces the board and score with a position reached elsewhere.
// The level is set to the highest milestone at or below the max tile and no
// level-up event fires. The high score follows the score as usual.
func (e *Engine) Load(b Board, score int) error {
	if score < 0 {
		return fmt.Errorf("%w: negative score %d", ErrInvalidBoard, score)
	}
	for i, v := range b {
		if v != 0 && (v < 2 || v&(v-1) != 0) {
			return fmt.Errorf("%w: cell %d holds %d", ErrInvalidBoard, i, v)
		}
	}

	e.board = b
	e.score = score
	e.level = 0
	maxTile := MaxTile(b)
	for _, m := range Milestones {
		if m.Tile <= maxTile {
			e.level = m.Level
		}
	}
	e.SetHighScore(score)
	return nil
}

// checkLevel raises the level when the max tile is a milestone above it.
// Returns the new level, or 0 if it did not change.
func (e *Engine) checkLevel() int {
	level, ok := LevelForTile(MaxTile(e.board))
	if !ok || level <= e.level {
		return 0
	}

	e.level = level
	if e.onLevelUp != nil {
		e.onLevelUp(level)
	}
	return level
}
