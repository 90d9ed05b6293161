package config

import (
	"math"
	"time"
)

// Gravity turns the level into a fall interval. The engine has no notion of
// time; the game adapter asks Gravity how many ticks to wait between
// automatic drops.
type Gravity struct {
	cfg GravityConfig
}

// NewGravity creates a schedule from the gravity section.
func NewGravity(cfg GravityConfig) *Gravity {
	if cfg.Scale <= 0 {
		cfg.Scale = 1.0
	}
	return &Gravity{cfg: cfg}
}

// baseMs looks the level up in the table; past the end it keeps stepping
// down until the floor.
func (g *Gravity) baseMs(level int) int {
	table := g.cfg.IntervalsMs
	if len(table) == 0 {
		return g.cfg.FloorMs
	}
	if g.cfg.Fixed || level < 1 {
		level = 1
	}
	if level <= len(table) {
		return table[level-1]
	}
	ms := table[len(table)-1] - (level-len(table))*g.cfg.StepMs
	if ms < g.cfg.FloorMs {
		ms = g.cfg.FloorMs
	}
	return ms
}

// Interval returns the fall interval for a level after scaling.
func (g *Gravity) Interval(level int) time.Duration {
	ms := float64(g.baseMs(level)) * g.cfg.Scale
	return time.Duration(math.Round(ms)) * time.Millisecond
}

// Ticks converts Interval into whole simulation ticks, at least one.
func (g *Gravity) Ticks(level, tickRate int) int {
	if tickRate <= 0 {
		return 1
	}
	ticks := int(math.Round(g.Interval(level).Seconds() * float64(tickRate)))
	if ticks < 1 {
		return 1
	}
	return ticks
}
