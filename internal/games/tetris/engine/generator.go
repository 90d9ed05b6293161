package engine

import (
	"fmt"
	"math/rand"
)

// Generator produces the piece sequence with one piece of lookahead.
// Peek is stable until the following Next.
type Generator interface {
	Next() Piece
	Peek() Piece
}

// Policy selects a piece selection strategy.
type Policy string

const (
	PolicyBag    Policy = "bag"    // Shuffled bags of all seven pieces
	PolicyRandom Policy = "random" // Independent uniform draws
)

// ParsePolicy validates a policy name. An empty name means PolicyBag.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyBag:
		return PolicyBag, nil
	case PolicyRandom:
		return PolicyRandom, nil
	default:
		return "", fmt.Errorf("engine: unknown generator policy %q", s)
	}
}

// NewGenerator builds a seeded generator for the policy. The same seed and
// policy always yield the same sequence.
func NewGenerator(policy Policy, seed int64) Generator {
	if policy == PolicyRandom {
		return NewRandomGenerator(seed)
	}
	return NewBagGenerator(seed)
}

// BagGenerator deals all seven pieces in a shuffled order before reshuffling.
type BagGenerator struct {
	rng   *rand.Rand
	bag   []Kind
	ahead Kind
}

// NewBagGenerator creates a 7-bag generator.
func NewBagGenerator(seed int64) *BagGenerator {
	g := &BagGenerator{rng: rand.New(rand.NewSource(seed))}
	g.ahead = g.draw()
	return g
}

func (g *BagGenerator) draw() Kind {
	if len(g.bag) == 0 {
		g.bag = append(g.bag[:0], AllKinds[:]...)
		g.rng.Shuffle(len(g.bag), func(i, j int) {
			g.bag[i], g.bag[j] = g.bag[j], g.bag[i]
		})
	}
	k := g.bag[0]
	g.bag = g.bag[1:]
	return k
}

// Next consumes the lookahead piece.
func (g *BagGenerator) Next() Piece {
	k := g.ahead
	g.ahead = g.draw()
	return PieceOf(k)
}

// Peek returns the piece the next call to Next will return.
func (g *BagGenerator) Peek() Piece {
	return PieceOf(g.ahead)
}

// RandomGenerator draws each piece uniformly and independently.
type RandomGenerator struct {
	rng   *rand.Rand
	ahead Kind
}

// NewRandomGenerator creates a uniform generator.
func NewRandomGenerator(seed int64) *RandomGenerator {
	g := &RandomGenerator{rng: rand.New(rand.NewSource(seed))}
	g.ahead = g.draw()
	return g
}

func (g *RandomGenerator) draw() Kind {
	return AllKinds[g.rng.Intn(KindCount)]
}

// Next consumes the lookahead piece.
func (g *RandomGenerator) Next() Piece {
	k := g.ahead
	g.ahead = g.draw()
	return PieceOf(k)
}

// Peek returns the piece the next call to Next will return.
func (g *RandomGenerator) Peek() Piece {
	return PieceOf(g.ahead)
}

// SequenceGenerator cycles through a fixed list of kinds. Scripted replays
// and tests use it.
type SequenceGenerator struct {
	kinds []Kind
	pos   int
}

// NewSequenceGenerator cycles through kinds in order. Panics when kinds is
// empty or holds an invalid kind.
func NewSequenceGenerator(kinds ...Kind) *SequenceGenerator {
	if len(kinds) == 0 {
		panic("engine: sequence generator needs at least one kind")
	}
	for _, k := range kinds {
		if !k.Valid() {
			panic(fmt.Sprintf("engine: invalid kind %d in sequence", k))
		}
	}
	return &SequenceGenerator{kinds: append([]Kind(nil), kinds...)}
}

// Next consumes the current piece.
func (g *SequenceGenerator) Next() Piece {
	k := g.kinds[g.pos]
	g.pos = (g.pos + 1) % len(g.kinds)
	return PieceOf(k)
}

// Peek returns the current piece without consuming it.
func (g *SequenceGenerator) Peek() Piece {
	return PieceOf(g.kinds[g.pos])
}
