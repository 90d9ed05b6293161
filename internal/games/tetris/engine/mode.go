package engine

import (
	"fmt"
	"time"
)

// Defaults for the goal modes.
const (
	DefaultLineGoal  = 40
	DefaultTimeLimit = 2 * time.Minute
)

// ModeKind distinguishes the termination policies.
type ModeKind int

const (
	ModeEndless ModeKind = iota
	ModeLineGoal
	ModeTimeBoxed
)

// String returns the mode name used in ids and logs.
func (k ModeKind) String() string {
	switch k {
	case ModeEndless:
		return "endless"
	case ModeLineGoal:
		return "lines"
	case ModeTimeBoxed:
		return "timed"
	default:
		return "unknown"
	}
}

// Mode is a session termination policy.
type Mode struct {
	Kind      ModeKind
	LineGoal  int           // Lines to clear, ModeLineGoal only
	TimeLimit time.Duration // Play time, ModeTimeBoxed only
}

// Endless never ends on its own.
func Endless() Mode {
	return Mode{Kind: ModeEndless}
}

// LineGoal ends the session once n lines have been cleared.
func LineGoal(n int) Mode {
	return Mode{Kind: ModeLineGoal, LineGoal: n}
}

// TimeBoxed ends the session once d has elapsed on the session clock.
func TimeBoxed(d time.Duration) Mode {
	return Mode{Kind: ModeTimeBoxed, TimeLimit: d}
}

// Validate rejects goals that can never be played.
func (m Mode) Validate() error {
	switch m.Kind {
	case ModeEndless:
		return nil
	case ModeLineGoal:
		if m.LineGoal <= 0 {
			return fmt.Errorf("engine: line goal must be positive, got %d", m.LineGoal)
		}
		return nil
	case ModeTimeBoxed:
		if m.TimeLimit <= 0 {
			return fmt.Errorf("engine: time limit must be positive, got %s", m.TimeLimit)
		}
		return nil
	default:
		return fmt.Errorf("engine: unknown mode kind %d", m.Kind)
	}
}

// String describes the mode for display.
func (m Mode) String() string {
	switch m.Kind {
	case ModeLineGoal:
		return fmt.Sprintf("%d Lines", m.LineGoal)
	case ModeTimeBoxed:
		return fmt.Sprintf("Time Attack %s", m.TimeLimit)
	default:
		return "Endless"
	}
}

// goalReached reports whether a line goal has been met.
func (m Mode) goalReached(totalLines int) bool {
	return m.Kind == ModeLineGoal && totalLines >= m.LineGoal
}

// timeUp reports whether the time box has run out.
func (m Mode) timeUp(elapsed time.Duration) bool {
	return m.Kind == ModeTimeBoxed && elapsed >= m.TimeLimit
}

// Clock supplies the current time for time boxed modes. Drivers pass one in
// (a tick counter works fine); NewSession falls back to the wall clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// ManualClock is a Clock advanced explicitly. Tick-driven adapters and tests
// use it.
type ManualClock struct {
	now time.Time
}

// NewManualClock starts a clock at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
