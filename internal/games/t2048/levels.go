// Package t2048 implements the 2048 tile-merging puzzle: a deterministic
// board engine plus the arcade game that drives it.
package t2048

// Milestone is a tile value whose first appearance raises the level.
type Milestone struct {
	Level int
	Tile  int
	Name  string
}

// Milestones lists the level thresholds in increasing order.
var Milestones = []Milestone{
	{Level: 1, Tile: 128, Name: "Warm-up"},
	{Level: 2, Tile: 256, Name: "Getting Started"},
	{Level: 3, Tile: 512, Name: "Building Momentum"},
	{Level: 4, Tile: 1024, Name: "The Climb"},
	{Level: 5, Tile: 2048, Name: "Classic 2048"},
}

// MaxLevel is the highest reachable level.
func MaxLevel() int {
	return Milestones[len(Milestones)-1].Level
}

// LevelForTile looks up the level for an exact tile value.
// Values that are not a milestone (including 4096 and above) report false.
func LevelForTile(tile int) (int, bool) {
	for _, m := range Milestones {
		if m.Tile == tile {
			return m.Level, true
		}
	}
	return 0, false
}

// MilestoneFor returns the milestone for a level, or nil for level 0 or out of range.
func MilestoneFor(level int) *Milestone {
	for i := range Milestones {
		if Milestones[i].Level == level {
			return &Milestones[i]
		}
	}
	return nil
}
