package engine

// Cursor is the (piece, rotation index) pair of the active piece. It is a
// value: candidates are computed without touching the receiver and Commit
// returns a new cursor.
type Cursor struct {
	piece Piece
	index int
}

// NewCursor starts a piece at rotation state 0.
func NewCursor(p Piece) Cursor {
	return Cursor{piece: p}
}

// Piece returns the piece being rotated.
func (c Cursor) Piece() Piece { return c.piece }

// Index returns the committed rotation index.
func (c Cursor) Index() int { return c.index }

// CurrentShape returns a copy of the shape for the committed index.
func (c Cursor) CurrentShape() Matrix {
	return c.current().Clone()
}

// CandidateNext returns the shape and index one rotation step ahead. The
// step wraps around the piece's state count.
func (c Cursor) CandidateNext() (Matrix, int) {
	shape, next := c.candidate()
	return shape.Clone(), next
}

func (c Cursor) current() Matrix {
	return c.piece.shape(c.index)
}

func (c Cursor) candidate() (Matrix, int) {
	n := c.piece.States()
	if n == 0 {
		return nil, 0
	}
	next := (c.index + 1) % n
	return c.piece.shape(next), next
}

// Commit returns a cursor set to index.
func (c Cursor) Commit(index int) Cursor {
	n := c.piece.States()
	if n > 0 {
		index = ((index % n) + n) % n
	}
	c.index = index
	return c
}
