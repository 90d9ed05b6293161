package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris/engine"
)

func TestCatalogStates(t *testing.T) {
	expected := map[engine.Kind]int{
		engine.KindI: 2,
		engine.KindJ: 4,
		engine.KindL: 4,
		engine.KindO: 1,
		engine.KindS: 2,
		engine.KindT: 4,
		engine.KindZ: 2,
	}

	for _, k := range engine.AllKinds {
		p := engine.PieceOf(k)
		assert.Equal(t, k, p.Kind())
		assert.Equal(t, expected[k], p.States(), "states of %s", k)

		for i := 0; i < p.States(); i++ {
			shape := p.Shape(i)
			assert.Equal(t, 4, shape.Count(), "%s state %d should have four cells", k, i)
			for _, row := range shape {
				for _, c := range row {
					if c.Filled() {
						assert.Equal(t, k.Color(), c, "%s state %d colour", k, i)
					}
				}
			}
		}
	}
}

func TestShapeIsCopy(t *testing.T) {
	p := engine.PieceOf(engine.KindT)
	s := p.Shape(0)
	s[0][0] = 7

	assert.Equal(t, ".6.\n666", p.Shape(0).String())
}

func TestShapeIndexWraps(t *testing.T) {
	p := engine.PieceOf(engine.KindI)
	assert.Equal(t, p.Shape(0).String(), p.Shape(2).String())
	assert.Equal(t, p.Shape(1).String(), p.Shape(-1).String())
	assert.Equal(t, "1\n1\n1\n1", p.Shape(1).String())
}

func TestPieceOfInvalidPanics(t *testing.T) {
	assert.Panics(t, func() { engine.PieceOf(engine.KindNone) })
}

func TestCursor(t *testing.T) {
	c := engine.NewCursor(engine.PieceOf(engine.KindT))
	require.Equal(t, 0, c.Index())

	shape, next := c.CandidateNext()
	assert.Equal(t, 1, next)
	assert.Equal(t, 0, c.Index(), "candidate must not move the cursor")
	assert.Equal(t, ".6\n66\n.6", shape.String())

	c = c.Commit(next)
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, shape.String(), c.CurrentShape().String())

	c = c.Commit(3)
	_, next = c.CandidateNext()
	assert.Equal(t, 0, next, "rotation wraps after the last state")

	o := engine.NewCursor(engine.PieceOf(engine.KindO))
	_, next = o.CandidateNext()
	assert.Equal(t, 0, next)
}
