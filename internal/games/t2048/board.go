package t2048

import (
	"fmt"
	"strings"
)

// Direction represents a move direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// String returns the lowercase name used at text boundaries.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the four move directions.
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}

// ParseDirection maps "left", "right", "up" or "down" (any case) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// BoardSize is the board dimension.
const BoardSize = 4

// CellCount is the number of cells on the board.
const CellCount = BoardSize * BoardSize

// Board is a 4x4 grid stored in row-major order. 0 marks an empty cell.
type Board [CellCount]int

// At returns the value at column x, row y.
func (b Board) At(x, y int) int {
	return b[y*BoardSize+x]
}

// Rows returns the board as a 4x4 matrix.
func (b Board) Rows() [BoardSize][BoardSize]int {
	var rows [BoardSize][BoardSize]int
	for i, v := range b {
		rows[i/BoardSize][i%BoardSize] = v
	}
	return rows
}

// lineIndices returns the board indices of line i, ordered so that index 0
// is the cell tiles slide towards.
func lineIndices(dir Direction, i int) [BoardSize]int {
	var idx [BoardSize]int
	for j := range BoardSize {
		if dir == DirLeft || dir == DirRight {
			idx[j] = i*BoardSize + j
		} else {
			idx[j] = j*BoardSize + i
		}
	}
	if dir == DirRight || dir == DirDown {
		for a, z := 0, BoardSize-1; a < z; a, z = a+1, z-1 {
			idx[a], idx[z] = idx[z], idx[a]
		}
	}
	return idx
}

// compact drops zero cells while keeping the order of the rest.
func compact(cells []int) []int {
	out := make([]int, 0, len(cells))
	for _, v := range cells {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

// slideLine slides and merges a single line towards index 0.
// A tile consumed by a merge is zeroed, so it can't merge again in the same pass.
// Returns the updated line and the score gained from merges.
func slideLine(line [BoardSize]int) (result [BoardSize]int, score int) {
	tiles := compact(line[:])

	for k := 0; k < len(tiles)-1; k++ {
		if tiles[k] != 0 && tiles[k] == tiles[k+1] {
			tiles[k] *= 2
			score += tiles[k]
			tiles[k+1] = 0
		}
	}

	copy(result[:], compact(tiles))
	return result, score
}

// Slide performs a move in the given direction.
// Returns the new board, score gained, and whether any cell changed.
// An invalid direction leaves the board untouched.
func Slide(board Board, dir Direction) (Board, int, bool) {
	if !dir.Valid() {
		return board, 0, false
	}

	next := board
	total := 0
	changed := false

	for i := range BoardSize {
		idx := lineIndices(dir, i)

		var line [BoardSize]int
		for j, at := range idx {
			line[j] = board[at]
		}

		slid, score := slideLine(line)
		total += score

		for j, at := range idx {
			if next[at] != slid[j] {
				changed = true
			}
			next[at] = slid[j]
		}
	}

	return next, total, changed
}

// EmptyCells returns the indices of all empty cells in row-major order.
func EmptyCells(board Board) []int {
	var cells []int
	for i, v := range board {
		if v == 0 {
			cells = append(cells, i)
		}
	}
	return cells
}

// HasEmptyCell returns true if there's at least one empty cell.
func HasEmptyCell(board Board) bool {
	for _, v := range board {
		if v == 0 {
			return true
		}
	}
	return false
}

// HasPossibleMerge returns true if any adjacent tiles can merge.
func HasPossibleMerge(board Board) bool {
	for y := range BoardSize {
		for x := range BoardSize {
			val := board.At(x, y)
			if val == 0 {
				continue
			}
			if x < BoardSize-1 && board.At(x+1, y) == val {
				return true
			}
			if y < BoardSize-1 && board.At(x, y+1) == val {
				return true
			}
		}
	}
	return false
}

// CanMove returns true if any move is possible.
func CanMove(board Board) bool {
	return HasEmptyCell(board) || HasPossibleMerge(board)
}

// MaxTile returns the maximum tile value on the board.
func MaxTile(board Board) int {
	maxVal := 0
	for _, v := range board {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

// TileCount returns the number of occupied cells.
func TileCount(board Board) int {
	n := 0
	for _, v := range board {
		if v != 0 {
			n++
		}
	}
	return n
}

// Sum returns the total of all tile values.
func Sum(board Board) int {
	total := 0
	for _, v := range board {
		total += v
	}
	return total
}
