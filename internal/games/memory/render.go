package memory

import (
	"fmt"

	"github.com/vovakirdan/merge-arcade/internal/core"
)

const (
	padW = 10
	padH = 3
)

// padColors are the screen colors of the four pads.
var padColors = map[Color]core.Color{
	Green:     core.ColorGreen,
	Teal:      core.ColorTeal,
	Gold:      core.ColorGold,
	DarkGreen: core.ColorDarkGreen,
}

// padSlots places each pad in a 3x3 cross, matching the arrow key it answers to.
var padSlots = map[Color][2]int{
	Green:     {1, 0},
	Teal:      {2, 1},
	Gold:      {1, 2},
	DarkGreen: {0, 1},
}

// Render draws the pads, HUD and status line.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		y := g.screenH / 2
		dst.DrawTextCentered(y, "Window too small")
		dst.DrawTextCentered(y+1, "Please resize terminal")
		return
	}

	areaW := padW * 3
	areaH := padH * 3
	areaX := (g.screenW - areaW) / 2
	areaY := 4

	g.renderHUD(dst, areaX, areaW)

	lit, isLit := g.Lit()
	for _, c := range Colors {
		slot := padSlots[c]
		r := core.NewRect(areaX+slot[0]*padW, areaY+slot[1]*padH, padW, padH)
		fill := '░'
		if isLit && lit == c {
			fill = '█'
		}
		dst.FillRect(r, fill, padColors[c])
	}

	msgY := areaY + areaH + 1
	dst.DrawTextCentered(msgY, g.message)

	cx := areaX + areaW/2
	cy := areaY + areaH/2
	switch {
	case g.paused:
		g.drawOverlay(dst, cx, cy, "PAUSED", "Press P to resume")
	case g.popupTicks > 0:
		g.drawOverlay(dst, cx, cy, fmt.Sprintf("LEVEL %d", g.engine.Level()))
	}

	dst.DrawTextCentered(msgY+2, g.Controls())
}

func (g *Game) renderHUD(dst *core.Screen, areaX, areaW int) {
	title := g.Title()
	dst.DrawText(areaX+(areaW-len(title))/2, 0, title)

	dst.DrawText(areaX, 1, fmt.Sprintf("Level: %d", g.engine.Level()))

	best := fmt.Sprintf("Best: %d", g.engine.HighScore())
	bestX := areaX + areaW - len(best)
	if bestX < areaX {
		bestX = areaX
	}
	dst.DrawText(bestX, 1, best)

	if g.engine.Phase() == PhaseInput {
		progress := fmt.Sprintf("%d/%d", g.engine.Progress(), len(g.engine.Sequence()))
		dst.DrawText(areaX+(areaW-len(progress))/2, 2, progress)
	}
}

func (g *Game) drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}

	box := core.CenteredRect(centerX, centerY, maxLen+4, len(lines)+2)
	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box)

	for i, line := range lines {
		dst.DrawTextColored(centerX-len(line)/2, box.Y+1+i, line, core.ColorBrightYellow)
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows: Pads | Enter: Start | P: Pause | Q: Quit"
}
