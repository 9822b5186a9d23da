// Package memory implements a sequence-memory game: watch a growing run of
// colored pads light up, then repeat it.
package memory

import (
	"errors"
	"fmt"
	"strings"
)

// Color identifies one of the four pads.
type Color int

const (
	Green Color = iota
	Teal
	Gold
	DarkGreen
)

// Colors lists the pads in a fixed order; random picks index into it.
var Colors = []Color{Green, Teal, Gold, DarkGreen}

// String returns the pad name.
func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case Teal:
		return "teal"
	case Gold:
		return "gold"
	case DarkGreen:
		return "darkgreen"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Valid reports whether c is one of the four pads.
func (c Color) Valid() bool {
	return c >= Green && c <= DarkGreen
}

// ParseColor maps a pad name (any case) to a Color.
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Colors {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// Phase is the engine's position in the round cycle.
type Phase int

const (
	PhaseIdle    Phase = iota // Not started
	PhaseShowing              // Sequence is being played back
	PhaseInput                // Waiting for the player
	PhaseCleared              // Round reproduced, next round pending
	PhaseOver                 // Wrong pad pressed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseShowing:
		return "showing"
	case PhaseInput:
		return "input"
	case PhaseCleared:
		return "cleared"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// PressResult is the outcome of a single pad press.
type PressResult int

const (
	PressCorrect       PressResult = iota // Matches, more to go
	PressRoundComplete                    // Matches and completes the sequence
	PressWrong                            // Mismatch, game over
)

var (
	// ErrNotYourTurn is returned for presses outside the input phase.
	ErrNotYourTurn = errors.New("memory: not accepting input")
	// ErrUnknownColor is returned for a color outside the four pads.
	ErrUnknownColor = errors.New("memory: unknown color")
)

// Rand is the random source for sequence growth. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Engine holds one memory game session.
type Engine struct {
	sequence  []Color
	input     []Color
	level     int
	cleared   int
	highScore int
	phase     Phase
	rng       Rand
}

// NewEngine creates an idle engine. Call Start to begin.
func NewEngine(rng Rand) *Engine {
	return &Engine{rng: rng}
}

// Start resets the sequence and begins round one.
func (e *Engine) Start() {
	e.sequence = nil
	e.input = nil
	e.level = 0
	e.cleared = 0
	e.NextRound()
}

// NextRound extends the sequence by one random pad and enters playback.
func (e *Engine) NextRound() {
	e.input = e.input[:0]
	e.level++
	e.sequence = append(e.sequence, Colors[e.rng.Intn(len(Colors))])
	e.phase = PhaseShowing
}

// PlaybackDone hands the turn to the player once the sequence has been shown.
func (e *Engine) PlaybackDone() {
	if e.phase == PhaseShowing {
		e.phase = PhaseInput
	}
}

// Press records a pad press and checks it against the sequence.
func (e *Engine) Press(c Color) (PressResult, error) {
	if !c.Valid() {
		return PressWrong, fmt.Errorf("%w: %d", ErrUnknownColor, int(c))
	}
	if e.phase != PhaseInput {
		return PressWrong, fmt.Errorf("%w (phase %s)", ErrNotYourTurn, e.phase)
	}

	e.input = append(e.input, c)
	i := len(e.input) - 1

	if e.input[i] != e.sequence[i] {
		e.phase = PhaseOver
		return PressWrong, nil
	}

	if len(e.input) == len(e.sequence) {
		e.phase = PhaseCleared
		e.cleared = e.level
		if e.cleared > e.highScore {
			e.highScore = e.cleared
		}
		return PressRoundComplete, nil
	}

	return PressCorrect, nil
}

// Sequence returns a copy of the current sequence.
func (e *Engine) Sequence() []Color {
	out := make([]Color, len(e.sequence))
	copy(out, e.sequence)
	return out
}

// Progress returns how many pads of the current round have been entered.
func (e *Engine) Progress() int {
	return len(e.input)
}

// Level returns the current round number (0 before Start).
func (e *Engine) Level() int {
	return e.level
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Score returns the number of rounds fully reproduced.
func (e *Engine) Score() int {
	return e.cleared
}

// HighScore returns the best score seen by this engine.
func (e *Engine) HighScore() int {
	return e.highScore
}

// SetHighScore raises the high score to n. Lower values are ignored.
func (e *Engine) SetHighScore(n int) {
	if n > e.highScore {
		e.highScore = n
	}
}
