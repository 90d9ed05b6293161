package main

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/spectate"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var flagSpectate string

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode",
	Long: `Start playing the given mode (default: tetris).

Modes:
  tetris         - Endless, play until you top out
  tetris_lines   - Line race, clear 40 lines
  tetris_timed   - Time attack, score as much as you can in 2 minutes

Controls:
  Left/Right, A/D  - Move
  Up/W             - Rotate
  Down/S           - Soft drop
  Space            - Hard drop
  C                - Hold
  P/Esc            - Pause
  N                - New game
  R                - Restart (after game over)
  B                - Back
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Slower gravity
  normal - Standard gravity table
  hard   - Faster gravity
  fixed  - Gravity stays at the level 1 speed

Examples:
  tetris play
  tetris play tetris_timed --difficulty hard
  tetris play tetris_lines --seed 42
  tetris play --spectate :8080`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagSpectate, "spectate", "", "Serve live snapshots to WebSocket viewers on this address")
}

func runPlay(_ *cobra.Command, args []string) {
	mode := tetris.IDEndless
	if len(args) == 1 {
		mode = args[0]
	}
	if !registry.Exists(mode) {
		fail("unknown mode %q\nRun 'tetris modes' to see available modes.", mode)
	}

	// The terminal belongs to the game; log only to an explicit file.
	logger, closeLog, err := newLogger(io.Discard, "")
	if err != nil {
		fail("%v", err)
	}
	defer closeLog()
	cfg := setup(logger)

	game, err := registry.Create(mode)
	if err != nil {
		fail("%v", err)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "err", err)
		store = nil
	}

	opts := tui.Options{Store: store, Logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	if flagSpectate != "" {
		opts.Publisher = startSpectate(ctx, flagSpectate, logger)
		opts.PublishEvery = cfg.Spectate.PublishEvery
	}

	runErr := tui.Run(game, runtimeConfig(), opts)
	cancel()
	if store != nil {
		store.Close()
	}
	if runErr != nil {
		fail("running game: %v", runErr)
	}
}

// startSpectate runs a spectator hub on addr until ctx is done.
func startSpectate(ctx context.Context, addr string, logger *log.Logger) *spectate.Hub {
	hub := spectate.NewHub(logger.With("component", "spectate"))
	go func() {
		if err := spectate.ListenAndServe(ctx, addr, hub); err != nil {
			logger.Error("spectator hub stopped", "err", err)
		}
	}()
	return hub
}
