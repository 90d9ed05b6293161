package engine

// LinesPerLevel is the number of cleared lines between level increases.
const LinesPerLevel = 10

// Base points per clear size, multiplied by the level.
const (
	pointsSingle       = 100
	pointsDouble       = 300
	pointsTriple       = 500
	pointsTetris       = 800
	pointsB2BTetris    = 1200
	pointsPerfectClear = 2000
	pointsComboStep    = 50
	pointsHardDropRow  = 2
	pointsSoftDropRow  = 1
)

// ScoreState is the scoring snapshot. Every transition returns a new value;
// the zero value is not valid, start from NewScoreState.
type ScoreState struct {
	Score         int
	Level         int
	TotalLines    int
	Combo         int  // Consecutive placements that cleared at least one line
	BackToBack    int  // Consecutive Tetris clears (1 after the first)
	LastWasTetris bool // Whether the previous clear removed four lines
}

// NewScoreState returns the initial state.
func NewScoreState() ScoreState {
	return ScoreState{Level: 1}
}

// LevelFor returns the level reached after clearing total lines.
func LevelFor(total int) int {
	if total < 0 {
		total = 0
	}
	return total/LinesPerLevel + 1
}

// EventKind enumerates scoring events.
type EventKind int

const (
	EventLineClear EventKind = iota
	EventTetris
	EventPerfectClear
	EventHardDrop
	EventSoftDrop
	EventPlacedWithoutClear
	EventReset
)

// Event is one scoring input. N is the line count for EventLineClear and the
// distance for drop events; it is ignored otherwise.
type Event struct {
	Kind EventKind
	N    int
}

// Apply folds an event into s.
func Apply(s ScoreState, e Event) ScoreState {
	switch e.Kind {
	case EventLineClear:
		return s.AddLineClear(e.N)
	case EventTetris:
		return s.AddTetris()
	case EventPerfectClear:
		return s.AddPerfectClear()
	case EventHardDrop:
		return s.AddHardDrop(e.N)
	case EventSoftDrop:
		return s.AddSoftDrop(e.N)
	case EventPlacedWithoutClear:
		return s.PlacedWithoutClear()
	case EventReset:
		return NewScoreState()
	default:
		return s
	}
}

// AddLineClear scores a 1-3 line clear. A count of 4 is routed to AddTetris;
// anything outside 1-4 is treated as a placement without a clear.
func (s ScoreState) AddLineClear(n int) ScoreState {
	var base int
	switch n {
	case 1:
		base = pointsSingle
	case 2:
		base = pointsDouble
	case 3:
		base = pointsTriple
	case 4:
		return s.AddTetris()
	default:
		return s.PlacedWithoutClear()
	}

	s.Score += base * s.Level
	s.TotalLines += n
	s.Level = LevelFor(s.TotalLines)
	s = s.addCombo()
	s.BackToBack = 0
	s.LastWasTetris = false
	return s
}

// AddTetris scores a four line clear, 1200 per level instead of 800 when the
// previous clear was also a Tetris.
func (s ScoreState) AddTetris() ScoreState {
	base := pointsTetris
	if s.LastWasTetris {
		s.BackToBack++
		base = pointsB2BTetris
	} else {
		s.BackToBack = 1
	}

	s.Score += base * s.Level
	s.TotalLines += 4
	s.Level = LevelFor(s.TotalLines)
	s = s.addCombo()
	s.LastWasTetris = true
	return s
}

// addCombo pays out the running combo, then extends it.
func (s ScoreState) addCombo() ScoreState {
	if s.Combo > 0 {
		s.Score += pointsComboStep * s.Level * s.Combo
	}
	s.Combo++
	return s
}

// AddPerfectClear adds the empty-board bonus. A running combo pays out again.
func (s ScoreState) AddPerfectClear() ScoreState {
	s.Score += pointsPerfectClear * s.Level
	if s.Combo > 0 {
		s = s.addCombo()
	}
	return s
}

// AddHardDrop adds two points per row fallen.
func (s ScoreState) AddHardDrop(distance int) ScoreState {
	if distance > 0 {
		s.Score += pointsHardDropRow * distance
	}
	return s
}

// AddSoftDrop adds one point per user-driven row.
func (s ScoreState) AddSoftDrop(distance int) ScoreState {
	if distance > 0 {
		s.Score += pointsSoftDropRow * distance
	}
	return s
}

// PlacedWithoutClear breaks the combo. The back-to-back streak is kept; only
// a 1-3 line clear resets it.
func (s ScoreState) PlacedWithoutClear() ScoreState {
	s.Combo = 0
	return s
}

// BackToBackActive reports whether at least two Tetrises ran consecutively.
func (s ScoreState) BackToBackActive() bool {
	return s.BackToBack > 1
}
