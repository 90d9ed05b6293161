package engine_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris/engine"
)

func TestNewBoardRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 20}, {10, 0}, {-1, 5}, {3, -3}} {
		_, err := engine.NewBoard(dims[0], dims[1])
		assert.ErrorIs(t, err, engine.ErrInvalidDimensions, "dims %v", dims)
	}

	b, err := engine.NewBoard(engine.DefaultWidth, engine.DefaultHeight)
	require.NoError(t, err)
	assert.Equal(t, 10, b.Width())
	assert.Equal(t, 20, b.Height())
	assert.True(t, b.IsEmpty())
}

func TestIntersect(t *testing.T) {
	m := engine.NewMatrix(10, 20)
	m[5][3] = 2
	bar := engine.ParseMatrix("1111")

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"top-left inside", 0, 0, false},
		{"flush with right wall", 6, 0, false},
		{"past right wall", 7, 0, true},
		{"past left wall", -1, 0, true},
		{"bottom row", 0, 19, false},
		{"below floor", 0, 20, true},
		{"above the board", 0, -5, false},
		{"above the board but past wall", -1, -5, true},
		{"overlaps filled cell", 0, 5, true},
		{"beside filled cell", 4, 5, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, engine.Intersect(m, bar, tc.x, tc.y))
		})
	}
}

func TestIntersectIgnoresEmptyShapeCells(t *testing.T) {
	m := engine.NewMatrix(4, 4)
	m[0][0] = 1
	// The hollow corner of the J sits on the filled cell.
	j := engine.ParseMatrix(".2", ".2", "22")
	assert.False(t, engine.Intersect(m, j, 0, 0))
	assert.True(t, engine.Intersect(m, j, -1, 0))
}

func TestMergeCopies(t *testing.T) {
	m := engine.NewMatrix(4, 4)
	shape := engine.ParseMatrix("44", "44")

	out := engine.Merge(m, shape, 1, 2)

	assert.True(t, m.IsEmpty(), "input matrix must not change")
	assert.Equal(t, "....\n....\n.44.\n.44.", out.String())
}

func TestMergeDropsCellsAboveBoard(t *testing.T) {
	m := engine.NewMatrix(3, 2)
	shape := engine.ParseMatrix("1", "1", "1")

	out := engine.Merge(m, shape, 0, -1)

	assert.Equal(t, "1..\n1..", out.String())
}

func TestClearRows(t *testing.T) {
	m := engine.ParseMatrix(
		"1..",
		"111",
		".2.",
		"222",
		"3.3",
	)

	res := engine.ClearRows(m)

	assert.Equal(t, 2, res.Lines)
	assert.Equal(t, []int{1, 3}, res.Rows)
	assert.Equal(t, 200, res.Bonus)
	assert.Equal(t, "...\n...\n1..\n.2.\n3.3", res.Matrix.String())
	assert.Equal(t, "1..\n111\n.2.\n222\n3.3", m.String(), "input matrix must not change")
}

func TestClearRowsNoneComplete(t *testing.T) {
	m := engine.ParseMatrix("1.1", ".1.")
	res := engine.ClearRows(m)

	assert.Zero(t, res.Lines)
	assert.Empty(t, res.Rows)
	assert.Zero(t, res.Bonus)
	assert.True(t, res.Matrix.Equal(m))
}

func TestClearRowsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 200; iter++ {
		w, h := 1+rng.Intn(10), 1+rng.Intn(20)
		m := engine.NewMatrix(w, h)
		for y := 0; y < h; y++ {
			full := rng.Intn(3) == 0
			for x := 0; x < w; x++ {
				if full || rng.Intn(2) == 0 {
					m[y][x] = engine.Cell(1 + rng.Intn(7))
				}
			}
		}

		var survivors []string
		complete := 0
		for y := 0; y < h; y++ {
			if m[y : y+1].Count() == w {
				complete++
				continue
			}
			survivors = append(survivors, m[y:y+1].String())
		}

		res := engine.ClearRows(m)
		require.Equal(t, complete, res.Lines)
		require.Equal(t, h, res.Matrix.Height())

		for y := 0; y < complete; y++ {
			require.Zero(t, res.Matrix[y:y+1].Count(), "row %d should be empty", y)
		}
		for i, want := range survivors {
			require.Equal(t, want, res.Matrix[complete+i:complete+i+1].String())
		}
	}
}

func TestBoardClearRowsReturnsCopy(t *testing.T) {
	b, err := engine.NewBoard(2, 2)
	require.NoError(t, err)
	b.Load(engine.ParseMatrix("..", "11"))

	res := b.ClearRows()
	require.Equal(t, 1, res.Lines)
	res.Matrix[0][0] = 5

	assert.True(t, b.IsEmpty(), "mutating the result must not reach the board")
}

func TestBoardSnapshotIsolation(t *testing.T) {
	b, err := engine.NewBoard(3, 3)
	require.NoError(t, err)

	snap := b.Snapshot()
	snap[1][1] = 3

	assert.Equal(t, engine.Empty, b.At(1, 1))
}

func TestDropDistance(t *testing.T) {
	b, err := engine.NewBoard(10, 20)
	require.NoError(t, err)
	bar := engine.ParseMatrix("1111")

	assert.Equal(t, 19, b.DropDistance(bar, 3, 0))
	b.Merge(bar, 3, 10)
	assert.Equal(t, 9, b.DropDistance(bar, 3, 0))
	assert.Equal(t, 9, b.DropDistance(bar, 0, 0), "overlaps the locked bar at x=3")

	dot := engine.ParseMatrix("1")
	assert.Equal(t, 19, b.DropDistance(dot, 0, 0))
	assert.Equal(t, 0, b.DropDistance(dot, 0, 19))
}
