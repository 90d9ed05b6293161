package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris/engine"
)

func drawKinds(g engine.Generator, n int) []engine.Kind {
	out := make([]engine.Kind, n)
	for i := range out {
		out[i] = g.Next().Kind()
	}
	return out
}

func TestGeneratorDeterminism(t *testing.T) {
	for _, policy := range []engine.Policy{engine.PolicyBag, engine.PolicyRandom} {
		a := drawKinds(engine.NewGenerator(policy, 99), 50)
		b := drawKinds(engine.NewGenerator(policy, 99), 50)
		assert.Equal(t, a, b, "policy %s", policy)
	}
}

func TestGeneratorPeekStable(t *testing.T) {
	g := engine.NewGenerator(engine.PolicyRandom, 3)
	for i := 0; i < 30; i++ {
		peek := g.Peek()
		assert.Equal(t, peek.Kind(), g.Peek().Kind(), "peek must not consume")
		assert.Equal(t, peek.Kind(), g.Next().Kind(), "next returns what peek showed")
	}
}

func TestBagDealsEveryKind(t *testing.T) {
	g := engine.NewBagGenerator(12345)
	for bag := 0; bag < 5; bag++ {
		seen := make(map[engine.Kind]bool)
		for _, k := range drawKinds(g, engine.KindCount) {
			seen[k] = true
		}
		assert.Len(t, seen, engine.KindCount, "bag %d", bag)
	}
}

func TestSequenceGenerator(t *testing.T) {
	g := engine.NewSequenceGenerator(engine.KindO, engine.KindI)
	assert.Equal(t, engine.KindO, g.Peek().Kind())
	assert.Equal(t,
		[]engine.Kind{engine.KindO, engine.KindI, engine.KindO, engine.KindI},
		drawKinds(g, 4))

	assert.Panics(t, func() { engine.NewSequenceGenerator() })
	assert.Panics(t, func() { engine.NewSequenceGenerator(engine.KindNone) })
}

func TestParsePolicy(t *testing.T) {
	p, err := engine.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, engine.PolicyBag, p)

	p, err = engine.ParsePolicy("random")
	require.NoError(t, err)
	assert.Equal(t, engine.PolicyRandom, p)

	_, err = engine.ParsePolicy("tgm")
	assert.Error(t, err)
}
