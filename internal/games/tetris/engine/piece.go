package engine

// Kind identifies one of the seven tetrominoes. Its numeric value doubles
// as the cell colour written to the board.
type Kind uint8

const (
	KindNone Kind = iota
	KindI
	KindJ
	KindL
	KindO
	KindS
	KindT
	KindZ
)

// KindCount is the number of distinct tetrominoes.
const KindCount = 7

// AllKinds lists every tetromino in colour order.
var AllKinds = [KindCount]Kind{KindI, KindJ, KindL, KindO, KindS, KindT, KindZ}

// String returns the conventional one-letter name.
func (k Kind) String() string {
	switch k {
	case KindI:
		return "I"
	case KindJ:
		return "J"
	case KindL:
		return "L"
	case KindO:
		return "O"
	case KindS:
		return "S"
	case KindT:
		return "T"
	case KindZ:
		return "Z"
	default:
		return "?"
	}
}

// Valid reports whether k is one of the seven pieces.
func (k Kind) Valid() bool {
	return k >= KindI && k <= KindZ
}

// Color returns the board cell value written when this piece locks.
func (k Kind) Color() Cell {
	return Cell(k)
}

// spawnShapes holds the first rotation state of each piece in its tightest
// bounding box. Further states are derived by counter-clockwise rotation.
var spawnShapes = map[Kind][]string{
	KindI: {"1111"},
	KindJ: {"2..", "222"},
	KindL: {"..3", "333"},
	KindO: {"44", "44"},
	KindS: {".55", "55."},
	KindT: {".6.", "666"},
	KindZ: {"77.", ".77"},
}

// Piece is an immutable tetromino: a kind plus its cyclic rotation states.
type Piece struct {
	kind   Kind
	states []Matrix
}

var catalog = buildCatalog()

func buildCatalog() map[Kind]Piece {
	out := make(map[Kind]Piece, KindCount)
	for _, k := range AllKinds {
		base := ParseMatrix(spawnShapes[k]...)
		states := []Matrix{base}
		next := rotateCCW(base)
		for len(states) < 4 && !next.Equal(base) {
			states = append(states, next)
			next = rotateCCW(next)
		}
		out[k] = Piece{kind: k, states: states}
	}
	return out
}

// rotateCCW turns a shape a quarter counter-clockwise.
func rotateCCW(m Matrix) Matrix {
	h, w := m.Height(), m.Width()
	out := NewMatrix(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[w-1-x][y] = m[y][x]
		}
	}
	return out
}

// PieceOf returns the catalog piece for a kind. Panics on an invalid kind;
// generators only ever produce valid ones.
func PieceOf(k Kind) Piece {
	p, ok := catalog[k]
	if !ok {
		panic("engine: unknown piece kind")
	}
	return p
}

// Kind returns the piece identifier.
func (p Piece) Kind() Kind { return p.kind }

// States returns the number of distinct rotation states.
func (p Piece) States() int { return len(p.states) }

// Shape returns a copy of rotation state i (taken modulo the state count).
func (p Piece) Shape(i int) Matrix {
	return p.shape(i).Clone()
}

// shape returns the shared state matrix; engine code must not mutate it.
func (p Piece) shape(i int) Matrix {
	n := len(p.states)
	if n == 0 {
		return nil
	}
	return p.states[((i%n)+n)%n]
}

// IsZero reports whether p is the zero Piece (no kind).
func (p Piece) IsZero() bool {
	return p.kind == KindNone
}
