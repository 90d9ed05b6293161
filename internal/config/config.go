// Package config loads the YAML game configuration and turns difficulty
// presets into a gravity schedule.
package config

import (
	"errors"
	"fmt"
)

// TetrisConfig is the full game configuration.
type TetrisConfig struct {
	Board     BoardConfig     `yaml:"board"`
	Generator GeneratorConfig `yaml:"generator"`
	Gravity   GravityConfig   `yaml:"gravity"`
	Modes     ModesConfig     `yaml:"modes"`
	Display   DisplayConfig   `yaml:"display"`
	Spectate  SpectateConfig  `yaml:"spectate"`
}

// BoardConfig sets the playfield size in cells.
type BoardConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// GeneratorConfig picks the piece generator.
type GeneratorConfig struct {
	Policy string `yaml:"policy"` // "bag" or "random"
}

// GravityConfig is the per-level fall interval schedule.
type GravityConfig struct {
	IntervalsMs    []int   `yaml:"intervals_ms"`     // Level 1 first
	FloorMs        int     `yaml:"floor_ms"`         // Never faster than this
	StepMs         int     `yaml:"step_ms"`          // Decrease per level past the table
	Scale          float64 `yaml:"scale"`            // Multiplier applied after lookup
	Fixed          bool    `yaml:"fixed"`            // Stay at the level 1 interval
	SoftDropRepeat int     `yaml:"soft_drop_repeat"` // Rows per soft drop key press
}

// ModesConfig sets the goals of the non-endless modes.
type ModesConfig struct {
	LineGoal         int `yaml:"line_goal"`
	TimeLimitSeconds int `yaml:"time_limit_seconds"`
}

// DisplayConfig holds rendering toggles.
type DisplayConfig struct {
	Ghost             bool `yaml:"ghost"`
	NotificationTicks int  `yaml:"notification_ticks"` // How long "TETRIS +800" stays up
}

// SpectateConfig tunes the spectator broadcast.
type SpectateConfig struct {
	PublishEvery int `yaml:"publish_every"` // Ticks between snapshots
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Validate rejects values the game cannot run with.
func (c TetrisConfig) Validate() error {
	switch {
	case c.Board.Width <= 0 || c.Board.Height <= 0:
		return fmt.Errorf("%w: board %dx%d", ErrInvalidConfig, c.Board.Width, c.Board.Height)
	case c.Generator.Policy != "" && c.Generator.Policy != "bag" && c.Generator.Policy != "random":
		return fmt.Errorf("%w: generator policy %q", ErrInvalidConfig, c.Generator.Policy)
	case len(c.Gravity.IntervalsMs) == 0:
		return fmt.Errorf("%w: gravity table is empty", ErrInvalidConfig)
	case c.Gravity.FloorMs <= 0:
		return fmt.Errorf("%w: gravity floor %dms", ErrInvalidConfig, c.Gravity.FloorMs)
	case c.Gravity.Scale <= 0:
		return fmt.Errorf("%w: gravity scale %v", ErrInvalidConfig, c.Gravity.Scale)
	case c.Modes.LineGoal <= 0:
		return fmt.Errorf("%w: line goal %d", ErrInvalidConfig, c.Modes.LineGoal)
	case c.Modes.TimeLimitSeconds <= 0:
		return fmt.Errorf("%w: time limit %ds", ErrInvalidConfig, c.Modes.TimeLimitSeconds)
	}
	for i, ms := range c.Gravity.IntervalsMs {
		if ms <= 0 {
			return fmt.Errorf("%w: gravity level %d interval %dms", ErrInvalidConfig, i+1, ms)
		}
	}
	return nil
}

// DifficultyPreset is a named gravity adjustment.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name; empty means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// ScaleForPreset returns the gravity multiplier of a preset. Larger is slower.
func ScaleForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 1.25
	case DifficultyHard:
		return 0.6
	default:
		return 1.0
	}
}

// ApplyPreset adjusts the gravity section for a preset.
func ApplyPreset(cfg *TetrisConfig, preset DifficultyPreset) {
	cfg.Gravity.Fixed = preset == DifficultyFixed
	cfg.Gravity.Scale = ScaleForPreset(preset)
}
