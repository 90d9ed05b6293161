package config

import (
	_ "embed"
)

//go:embed defaults/tetris.yaml
var defaultTetrisYAML []byte

// DefaultTetrisConfig returns the built-in configuration. It matches the
// embedded YAML and is used when that fails to parse.
func DefaultTetrisConfig() TetrisConfig {
	return TetrisConfig{
		Board: BoardConfig{
			Width:  10,
			Height: 20,
		},
		Generator: GeneratorConfig{
			Policy: "bag",
		},
		Gravity: GravityConfig{
			IntervalsMs: []int{
				1500, 1400, 1300, 1200, 1100,
				1000, 950, 900, 850, 800,
				750, 700, 650, 600, 550,
			},
			FloorMs:        500,
			StepMs:         10,
			Scale:          1.0,
			SoftDropRepeat: 1,
		},
		Modes: ModesConfig{
			LineGoal:         40,
			TimeLimitSeconds: 120,
		},
		Display: DisplayConfig{
			Ghost:             true,
			NotificationTicks: 90, // 1.5s at 60fps
		},
		Spectate: SpectateConfig{
			PublishEvery: 6,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultTetrisYAML
}
