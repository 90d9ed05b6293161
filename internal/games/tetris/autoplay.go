package tetris

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris/engine"
)

// Policy picks the action for the next tick of a headless run. It returns
// false once it has nothing left to play.
type Policy interface {
	Next(g *Game) (core.Action, bool)
}

// Run steps g with actions from p until the game ends, the policy is done
// or maxTicks have passed, and returns the final snapshot. The run is
// headless, so the screen size g was reset with does not matter.
func Run(g *Game, p Policy, maxTicks int) Snapshot {
	g.SetHeadless(true)
	for i := 0; i < maxTicks && !g.session.IsGameOver(); i++ {
		a, ok := p.Next(g)
		if !ok {
			break
		}
		g.Step(core.FrameOf(a))
	}
	return g.Snapshot()
}

var scriptActions = map[rune]core.Action{
	'L': core.ActionLeft,
	'R': core.ActionRight,
	'U': core.ActionRotate,
	'D': core.ActionSoftDrop,
	'H': core.ActionHardDrop,
	'C': core.ActionHold,
	'.': core.ActionNone,
}

// MaxRepeat bounds a single repeat count in a script.
const MaxRepeat = 100000

// Script replays a fixed list of actions, one per tick.
type Script struct {
	actions []core.Action
	pos     int
}

// ParseScript reads a script such as "3L U H . C 2R H". Letters are
// L left, R right, U rotate, D soft drop, H hard drop, C hold and '.'
// waits a tick. A number repeats the following letter. Whitespace and
// commas are ignored.
func ParseScript(src string) (*Script, error) {
	var actions []core.Action
	count := ""
	for i, r := range strings.ToUpper(src) {
		switch {
		case r >= '0' && r <= '9':
			count += string(r)
			continue
		case r == ' ' || r == ',' || r == '\t' || r == '\n':
			if count != "" {
				return nil, fmt.Errorf("tetris: script position %d: repeat count without action", i)
			}
			continue
		}
		a, ok := scriptActions[r]
		if !ok {
			return nil, fmt.Errorf("tetris: script position %d: unknown action %q", i, r)
		}
		n := 1
		if count != "" {
			var err error
			n, err = strconv.Atoi(count)
			if err != nil || n > MaxRepeat {
				return nil, fmt.Errorf("tetris: script position %d: repeat count %s is above %d", i, count, MaxRepeat)
			}
			count = ""
		}
		for j := 0; j < n; j++ {
			actions = append(actions, a)
		}
	}
	if count != "" {
		return nil, fmt.Errorf("tetris: script ends with a repeat count")
	}
	return &Script{actions: actions}, nil
}

// Len returns the number of ticks in the script.
func (s *Script) Len() int { return len(s.actions) }

// Next implements Policy.
func (s *Script) Next(*Game) (core.Action, bool) {
	if s.pos >= len(s.actions) {
		return core.ActionNone, false
	}
	a := s.actions[s.pos]
	s.pos++
	return a, true
}

// Weights for the greedy placement evaluation.
const (
	weightLines  = 0.76
	weightHeight = -0.51
	weightHoles  = -0.36
	weightBumps  = -0.18
)

type placement struct {
	rotation int
	x        int
}

// Greedy places each piece where a one-piece lookahead scores best on
// height, holes, bumpiness and cleared lines. It never holds.
type Greedy struct {
	target  placement
	planned int // PiecesLocked value the target was computed for
	hasPlan bool

	last     core.Action
	lastView engine.ViewData
}

// NewGreedy creates a greedy autopilot.
func NewGreedy() *Greedy {
	return &Greedy{}
}

// Next implements Policy.
func (p *Greedy) Next(g *Game) (core.Action, bool) {
	s := g.Session()
	if s.IsGameOver() {
		return core.ActionNone, false
	}
	v := s.View()
	if v.Active == nil {
		return core.ActionNone, true
	}

	if !p.hasPlan || p.planned != s.PiecesLocked() {
		p.target = bestPlacement(s.Board(), v.ActiveKind)
		p.planned = s.PiecesLocked()
		p.hasPlan = true
		p.last = core.ActionNone
	}

	// A shift or rotation that changed nothing is blocked; drop here.
	blocked := p.last != core.ActionNone && p.last != core.ActionHardDrop &&
		v.X == p.lastView.X && v.Rotation == p.lastView.Rotation

	var a core.Action
	switch {
	case blocked:
		a = core.ActionHardDrop
	case v.Rotation != p.target.rotation:
		a = core.ActionRotate
	case v.X > p.target.x:
		a = core.ActionLeft
	case v.X < p.target.x:
		a = core.ActionRight
	default:
		a = core.ActionHardDrop
	}
	p.last, p.lastView = a, v
	return a, true
}

// bestPlacement tries every rotation and column of kind on board. The first
// best candidate wins ties, so the choice is deterministic.
func bestPlacement(board engine.Matrix, kind engine.Kind) placement {
	piece := engine.PieceOf(kind)
	best := placement{}
	bestScore := 0.0
	found := false

	for r := 0; r < piece.States(); r++ {
		shape := piece.Shape(r)
		for x := 0; x+shape.Width() <= board.Width(); x++ {
			if engine.Intersect(board, shape, x, 0) {
				continue
			}
			y := 0
			for !engine.Intersect(board, shape, x, y+1) {
				y++
			}
			clr := engine.ClearRows(engine.Merge(board, shape, x, y))
			score := evaluate(clr.Matrix, clr.Lines)
			if !found || score > bestScore {
				best, bestScore, found = placement{rotation: r, x: x}, score, true
			}
		}
	}
	return best
}

func evaluate(m engine.Matrix, lines int) float64 {
	w, h := m.Width(), m.Height()
	aggregate, holes, bumps := 0, 0, 0
	prev := -1
	for x := 0; x < w; x++ {
		height := 0
		seen := false
		for y := 0; y < h; y++ {
			if m.At(x, y).Filled() {
				if !seen {
					height = h - y
					seen = true
				}
			} else if seen {
				holes++
			}
		}
		aggregate += height
		if prev >= 0 {
			bumps += abs(height - prev)
		}
		prev = height
	}
	return weightLines*float64(lines) +
		weightHeight*float64(aggregate) +
		weightHoles*float64(holes) +
		weightBumps*float64(bumps)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
