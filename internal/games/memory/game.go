package memory

import (
	"math/rand"
	"sync"

	"github.com/vovakirdan/merge-arcade/internal/core"
	"github.com/vovakirdan/merge-arcade/internal/registry"
)

// GameID is the registry and storage identifier for the memory game.
const GameID = "memory"

// Settings holds the playback timings, in milliseconds.
type Settings struct {
	StartDelayMS int // Pause before a round's playback begins
	StepMS       int // Interval between pads during playback
	BlinkMS      int // How long a pad stays lit
	RoundPauseMS int // Pause after a cleared round
	PopupMS      int // Level popup duration
}

// DefaultSettings returns the stock timings.
func DefaultSettings() Settings {
	return Settings{
		StartDelayMS: 800,
		StepMS:       700,
		BlinkMS:      400,
		RoundPauseMS: 1000,
		PopupMS:      800,
	}
}

var (
	settingsMu sync.RWMutex
	settings   = DefaultSettings()
)

// Configure sets the timings used by games created after this call.
func Configure(s Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = s
}

func currentSettings() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

// Status messages shown under the pads.
const (
	msgStart   = "Press Enter to start"
	msgWatch   = "Watch carefully"
	msgYours   = "Your turn"
	msgCorrect = "Correct!"
	msgOver    = "Game Over! Press Enter"
)

// Game adapts the Engine to the arcade platform.
type Game struct {
	engine   *Engine
	settings Settings
	rt       core.RuntimeConfig
	tick     uint64
	best     int

	screenW  int
	screenH  int
	tooSmall bool
	paused   bool

	message    string
	countdown  int // Ticks until the next scheduled step
	showIndex  int // Next sequence position to play back
	lit        Color
	litTicks   int
	popupTicks int
	events     []core.Event
}

// New creates a new memory game.
func New() *Game {
	return &Game{}
}

func init() {
	registry.Register(GameID, func() registry.Game {
		return New()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return GameID
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Memory Sequence"
}

// Reset puts the game back on the start screen.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	if g.engine != nil && g.engine.HighScore() > g.best {
		g.best = g.engine.HighScore()
	}

	g.settings = currentSettings()
	g.rt = cfg
	g.engine = NewEngine(rand.New(rand.NewSource(cfg.Seed)))
	g.engine.SetHighScore(g.best)

	g.tick = 0
	g.paused = false
	g.message = msgStart
	g.countdown = 0
	g.showIndex = 0
	g.litTicks = 0
	g.popupTicks = 0
	g.events = nil

	g.Resize(cfg.ScreenW, cfg.ScreenH)
}

// Resize updates the screen dimensions.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	// Pads form a 3x3 cross of 10x3 blocks plus HUD and message lines
	g.tooSmall = w < 34 || h < 17
}

// HighScore implements registry.HighScorer.
func (g *Game) HighScore() int {
	if g.engine == nil {
		return g.best
	}
	return g.engine.HighScore()
}

// SetHighScore implements registry.HighScorer.
func (g *Game) SetHighScore(score int) {
	if score > g.best {
		g.best = score
	}
	if g.engine != nil {
		g.engine.SetHighScore(score)
	}
}

// Engine exposes the underlying sequence engine.
func (g *Game) Engine() *Engine {
	return g.engine
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	g.events = nil

	if g.tooSmall {
		return g.result()
	}

	if in.Has(core.ActionRestart) {
		g.start()
		return g.result()
	}

	phase := g.engine.Phase()
	if in.Has(core.ActionPause) && phase != PhaseIdle && phase != PhaseOver {
		g.paused = !g.paused
	}
	if g.paused {
		return g.result()
	}

	if g.litTicks > 0 {
		g.litTicks--
	}
	if g.popupTicks > 0 {
		g.popupTicks--
	}

	switch phase {
	case PhaseIdle, PhaseOver:
		if in.Has(core.ActionConfirm) {
			g.start()
		}
	case PhaseShowing:
		g.stepPlayback()
	case PhaseInput:
		if c, ok := colorFor(in); ok {
			g.press(c)
		}
	case PhaseCleared:
		g.countdown--
		if g.countdown <= 0 {
			g.engine.NextRound()
			g.beginRound()
		}
	}

	return g.result()
}

// start begins a fresh sequence from round one.
func (g *Game) start() {
	g.paused = false
	g.engine.Start()
	g.beginRound()
}

// beginRound schedules playback of the round the engine just entered.
// The first pad lights one step after the start delay.
func (g *Game) beginRound() {
	g.message = msgWatch
	g.showIndex = 0
	g.countdown = g.rt.TicksFor(g.settings.StartDelayMS) + g.rt.TicksFor(g.settings.StepMS)
	g.popupTicks = g.rt.TicksFor(g.settings.PopupMS)
	g.events = append(g.events, core.Event{Kind: core.EventLevelUp, Value: g.engine.Level()})
}

func (g *Game) stepPlayback() {
	g.countdown--
	if g.countdown > 0 {
		return
	}

	seq := g.engine.Sequence()
	g.blink(seq[g.showIndex])
	g.showIndex++

	if g.showIndex >= len(seq) {
		g.engine.PlaybackDone()
		g.message = msgYours
		return
	}
	g.countdown = g.rt.TicksFor(g.settings.StepMS)
}

func (g *Game) press(c Color) {
	prevBest := g.engine.HighScore()
	res, err := g.engine.Press(c)
	if err != nil {
		return
	}
	g.blink(c)

	switch res {
	case PressWrong:
		g.message = msgOver
		g.events = append(g.events, core.Event{Kind: core.EventGameOver, Value: g.engine.Score()})
	case PressRoundComplete:
		g.message = msgCorrect
		g.countdown = g.rt.TicksFor(g.settings.RoundPauseMS)
		if g.engine.HighScore() > prevBest {
			g.events = append(g.events, core.Event{Kind: core.EventHighScore, Value: g.engine.HighScore()})
		}
	}
}

func (g *Game) blink(c Color) {
	g.lit = c
	g.litTicks = g.rt.TicksFor(g.settings.BlinkMS)
}

// Lit returns the pad currently lit, if any.
func (g *Game) Lit() (Color, bool) {
	return g.lit, g.litTicks > 0
}

// Message returns the status line.
func (g *Game) Message() string {
	return g.message
}

func (g *Game) result() core.StepResult {
	return core.StepResult{State: g.State(), Events: g.events}
}

// colorFor maps the pad layout onto directional actions.
func colorFor(in core.InputFrame) (Color, bool) {
	switch {
	case in.Has(core.ActionUp):
		return Green, true
	case in.Has(core.ActionRight):
		return Teal, true
	case in.Has(core.ActionDown):
		return Gold, true
	case in.Has(core.ActionLeft):
		return DarkGreen, true
	}
	return 0, false
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.engine == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.engine.Score(),
		GameOver: g.engine.Phase() == PhaseOver,
		Paused:   g.paused || g.tooSmall,
	}
}
