// Package engine implements the falling-block simulation: the board grid,
// the piece catalog and generators, rotation, scoring and the session state
// machine. It has no I/O and no timing of its own; drivers call into it one
// intent at a time.
package engine

import "strings"

// Cell is a board or shape cell. Empty is 0, 1..7 are piece colours.
type Cell uint8

// Empty marks an unoccupied cell.
const Empty Cell = 0

// Filled reports whether the cell holds a block.
func (c Cell) Filled() bool {
	return c != Empty
}

// Matrix is a row-major grid of cells: m[y][x].
type Matrix [][]Cell

// NewMatrix allocates an empty matrix of the given size.
func NewMatrix(width, height int) Matrix {
	m := make(Matrix, height)
	for y := range m {
		m[y] = make([]Cell, width)
	}
	return m
}

// Height returns the number of rows.
func (m Matrix) Height() int {
	return len(m)
}

// Width returns the number of columns (0 for an empty matrix).
func (m Matrix) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// At returns the cell at (x, y), or Empty when out of range.
func (m Matrix) At(x, y int) Cell {
	if y < 0 || y >= len(m) || x < 0 || x >= len(m[y]) {
		return Empty
	}
	return m[y][x]
}

// Clone returns a deep copy. Callers receiving a clone may mutate it freely.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	c := make(Matrix, len(m))
	for y, row := range m {
		c[y] = append([]Cell(nil), row...)
	}
	return c
}

// IsEmpty reports whether no cell is filled.
func (m Matrix) IsEmpty() bool {
	for _, row := range m {
		for _, c := range row {
			if c.Filled() {
				return false
			}
		}
	}
	return true
}

// Count returns the number of filled cells.
func (m Matrix) Count() int {
	n := 0
	for _, row := range m {
		for _, c := range row {
			if c.Filled() {
				n++
			}
		}
	}
	return n
}

// Equal reports whether both matrices have the same shape and cells.
func (m Matrix) Equal(other Matrix) bool {
	if len(m) != len(other) {
		return false
	}
	for y := range m {
		if len(m[y]) != len(other[y]) {
			return false
		}
		for x := range m[y] {
			if m[y][x] != other[y][x] {
				return false
			}
		}
	}
	return true
}

// String renders filled cells as their colour digit and empty cells as '.'.
// Used by tests and the ASCII dump of the sim command.
func (m Matrix) String() string {
	var sb strings.Builder
	for y, row := range m {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range row {
			if c.Filled() {
				sb.WriteByte('0' + byte(c))
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}

// ParseMatrix builds a matrix from rows of '.' (empty) and '1'..'7'.
// Any other non-space rune is treated as colour 1. Handy for fixtures.
func ParseMatrix(rows ...string) Matrix {
	m := make(Matrix, len(rows))
	for y, row := range rows {
		m[y] = make([]Cell, 0, len(row))
		for _, r := range row {
			switch {
			case r == ' ':
				continue
			case r == '.':
				m[y] = append(m[y], Empty)
			case r >= '1' && r <= '7':
				m[y] = append(m[y], Cell(r-'0'))
			default:
				m[y] = append(m[y], 1)
			}
		}
	}
	return m
}
