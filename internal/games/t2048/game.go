package t2048

import (
	"math/rand"
	"sync"

	"github.com/vovakirdan/merge-arcade/internal/core"
	"github.com/vovakirdan/merge-arcade/internal/registry"
)

// GameID is the registry and storage identifier for 2048.
const GameID = "2048"

// levelPopupMS is how long the level-up overlay stays on screen.
const levelPopupMS = 2000

// Settings holds tunables applied to new games.
type Settings struct {
	Spawn4Prob float64
}

var (
	settingsMu sync.RWMutex
	settings   = Settings{Spawn4Prob: DefaultSpawn4Prob}
)

// Configure sets the tunables used by games created after this call.
func Configure(s Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = s
}

// CurrentSettings returns the tunables set by Configure.
func CurrentSettings() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

// Game adapts the Engine to the arcade platform.
type Game struct {
	engine   *Engine
	settings Settings
	tick     uint64
	best     int // High score seeded before the engine exists

	screenW  int
	screenH  int
	tickRate int

	gameOver   bool
	paused     bool
	tooSmall   bool
	popupLevel int
	popupTicks int
	events     []core.Event
}

// New creates a new 2048 game.
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
	return "2048"
}

// Reset initializes/restarts the game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	if g.engine != nil && g.engine.HighScore() > g.best {
		g.best = g.engine.HighScore()
	}

	g.settings = CurrentSettings()
	g.engine = NewEngine(
		rand.New(rand.NewSource(cfg.Seed)),
		WithSpawn4Prob(g.settings.Spawn4Prob),
		WithHighScore(g.best),
		WithLevelUpHandler(g.onLevelUp),
	)

	g.tick = 0
	g.tickRate = cfg.TickRate
	g.gameOver = false
	g.paused = false
	g.popupLevel = 0
	g.popupTicks = 0
	g.events = nil

	g.Resize(cfg.ScreenW, cfg.ScreenH)
}

// Resize updates the screen dimensions without touching the board.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.checkScreenSize()
}

// checkScreenSize checks if the screen is large enough.
func (g *Game) checkScreenSize() {
	// Board is 21x9 plus a 4-line HUD and a hint line
	minW := 29
	minH := 15
	g.tooSmall = g.screenW < minW || g.screenH < minH
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

// Engine exposes the underlying board engine.
func (g *Game) Engine() *Engine {
	return g.engine
}

func (g *Game) onLevelUp(level int) {
	g.popupLevel = level
	rt := core.RuntimeConfig{TickRate: g.tickRate}
	g.popupTicks = rt.TicksFor(levelPopupMS)
	g.events = append(g.events, core.Event{Kind: core.EventLevelUp, Value: level})
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	g.events = nil

	if g.tooSmall {
		return g.result()
	}

	if in.Has(core.ActionRestart) {
		g.restart()
		return g.result()
	}

	if in.Has(core.ActionPause) && !g.gameOver {
		g.paused = !g.paused
	}
	if g.paused {
		return g.result()
	}

	if g.popupTicks > 0 {
		g.popupTicks--
	}

	if g.gameOver {
		return g.result()
	}

	dir, ok := directionFor(in)
	if !ok {
		return g.result()
	}

	prevBest := g.engine.HighScore()
	res, err := g.engine.Move(dir)
	if err != nil || !res.Moved {
		return g.result()
	}

	if g.engine.HighScore() > prevBest {
		g.events = append(g.events, core.Event{Kind: core.EventHighScore, Value: g.engine.HighScore()})
	}
	if !g.engine.CanMove() {
		g.gameOver = true
		g.events = append(g.events, core.Event{Kind: core.EventGameOver, Value: g.engine.Score()})
	}

	return g.result()
}

// restart starts a new board in place, keeping the engine's random stream.
func (g *Game) restart() {
	g.engine.Restart()
	g.gameOver = false
	g.paused = false
	g.popupLevel = 0
	g.popupTicks = 0
}

func (g *Game) result() core.StepResult {
	return core.StepResult{State: g.State(), Events: g.events}
}

// directionFor maps the first directional action in the frame to a Direction.
func directionFor(in core.InputFrame) (Direction, bool) {
	switch {
	case in.Has(core.ActionUp):
		return DirUp, true
	case in.Has(core.ActionDown):
		return DirDown, true
	case in.Has(core.ActionLeft):
		return DirLeft, true
	case in.Has(core.ActionRight):
		return DirRight, true
	}
	return 0, false
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	score := 0
	if g.engine != nil {
		score = g.engine.Score()
	}
	return core.GameState{
		Score:    score,
		GameOver: g.gameOver,
		Paused:   g.paused || g.tooSmall,
	}
}
