package engine

import (
	"errors"
	"fmt"
)

// Classic board dimensions.
const (
	DefaultWidth  = 10
	DefaultHeight = 20
)

// ErrInvalidDimensions is returned when a board is built with a non-positive size.
var ErrInvalidDimensions = errors.New("engine: board dimensions must be positive")

// ClearResult describes one row-clearing pass.
type ClearResult struct {
	Lines  int    // Rows removed (0-4 for a single piece)
	Rows   []int  // Indices of removed rows, top to bottom, in pre-clear coordinates
	Matrix Matrix // Compacted matrix after removal
	Bonus  int    // Display-only estimate; the scoring engine is authoritative
}

// Intersect reports whether shape placed with its top-left at (offsetX, offsetY)
// collides with the walls, the floor or a filled cell of m. Cells above the
// top edge (y < 0) never collide, so pieces may spawn partly hidden.
func Intersect(m Matrix, shape Matrix, offsetX, offsetY int) bool {
	w, h := m.Width(), m.Height()
	for i, row := range shape {
		for j, c := range row {
			if !c.Filled() {
				continue
			}
			x, y := offsetX+j, offsetY+i
			if x < 0 || x >= w || y >= h {
				return true
			}
			if y < 0 {
				continue
			}
			if m[y][x].Filled() {
				return true
			}
		}
	}
	return false
}

// Merge returns a copy of m with the shape's cells written at the offset.
// The caller guarantees Intersect is false for the same arguments. Cells
// above the top edge are dropped.
func Merge(m Matrix, shape Matrix, offsetX, offsetY int) Matrix {
	out := m.Clone()
	for i, row := range shape {
		for j, c := range row {
			if !c.Filled() {
				continue
			}
			x, y := offsetX+j, offsetY+i
			if y < 0 || y >= out.Height() || x < 0 || x >= out.Width() {
				continue
			}
			out[y][x] = c
		}
	}
	return out
}

// ClearRows removes every complete row at once, keeps the order of the
// remaining rows, and pads the top with as many empty rows as were removed.
func ClearRows(m Matrix) ClearResult {
	w, h := m.Width(), m.Height()
	kept := make(Matrix, 0, h)
	var removed []int

	for y, row := range m {
		if rowComplete(row) {
			removed = append(removed, y)
			continue
		}
		kept = append(kept, append([]Cell(nil), row...))
	}

	out := make(Matrix, 0, h)
	for range removed {
		out = append(out, make([]Cell, w))
	}
	out = append(out, kept...)

	n := len(removed)
	return ClearResult{
		Lines:  n,
		Rows:   removed,
		Matrix: out,
		Bonus:  50 * n * n,
	}
}

func rowComplete(row []Cell) bool {
	if len(row) == 0 {
		return false
	}
	for _, c := range row {
		if !c.Filled() {
			return false
		}
	}
	return true
}

// Board owns the background matrix for one session. It is mutated only by
// Merge and ClearRows; readers get copies.
type Board struct {
	width  int
	height int
	cells  Matrix
}

// NewBoard creates an empty board.
func NewBoard(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Board{
		width:  width,
		height: height,
		cells:  NewMatrix(width, height),
	}, nil
}

// Width returns the board width in cells.
func (b *Board) Width() int { return b.width }

// Height returns the board height in cells.
func (b *Board) Height() int { return b.height }

// Intersect tests a shape at an offset against the board.
func (b *Board) Intersect(shape Matrix, x, y int) bool {
	return Intersect(b.cells, shape, x, y)
}

// Merge writes a shape into the board.
func (b *Board) Merge(shape Matrix, x, y int) {
	b.cells = Merge(b.cells, shape, x, y)
}

// ClearRows runs one clear pass and keeps the compacted matrix.
// The returned result carries its own copy of the matrix.
func (b *Board) ClearRows() ClearResult {
	res := ClearRows(b.cells)
	b.cells = res.Matrix
	res.Matrix = res.Matrix.Clone()
	return res
}

// IsEmpty reports whether the whole board is clear.
func (b *Board) IsEmpty() bool {
	return b.cells.IsEmpty()
}

// Reset empties the board.
func (b *Board) Reset() {
	b.cells = NewMatrix(b.width, b.height)
}

// Snapshot returns a copy of the background matrix.
func (b *Board) Snapshot() Matrix {
	return b.cells.Clone()
}

// At returns the cell at (x, y), Empty when out of range.
func (b *Board) At(x, y int) Cell {
	return b.cells.At(x, y)
}

// DropDistance returns how many rows the shape can fall from (x, y) before
// it would collide. Returns 0 when it cannot move at all.
func (b *Board) DropDistance(shape Matrix, x, y int) int {
	d := 0
	for !b.Intersect(shape, x, y+d+1) {
		d++
		if d > b.height+len(shape) {
			break
		}
	}
	return d
}

// Load replaces the board contents with a copy of m. Rows and columns beyond
// the board are ignored, missing ones are left empty. Used for fixtures and
// puzzle setups.
func (b *Board) Load(m Matrix) {
	b.Reset()
	for y := 0; y < b.height && y < m.Height(); y++ {
		for x := 0; x < b.width && x < len(m[y]); x++ {
			b.cells[y][x] = m[y][x]
		}
	}
}
