package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/spectate"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// Options wires a game model to the outside world. Every field is optional.
type Options struct {
	Store  *storage.Store
	Logger *log.Logger

	// Spectator publishing: every PublishEvery ticks the game's snapshot
	// is sent to Publisher under Source.
	Publisher    spectate.Publisher
	Source       string
	PublishEvery int
}

// GameModel is the Bubble Tea model that runs one game.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	opts       Options
	log        *log.Logger
	config     core.RuntimeConfig
	keys       GameKeyMap
	inputFrame core.InputFrame
	gameState  core.GameState
	ticks      uint64
	standalone bool // Back quits the program instead of returning to a menu
	quitting   bool
	backToMenu bool
	saved      bool // Result of the current game already stored
}

// NewGameModel creates a model for the given game.
func NewGameModel(game registry.Game, cfg core.RuntimeConfig, opts Options) GameModel {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if opts.PublishEvery <= 0 {
		opts.PublishEvery = 1
	}
	if opts.Source == "" {
		opts.Source = game.ID()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return GameModel{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		opts:       opts,
		log:        logger,
		config:     cfg,
		keys:       DefaultGameKeyMap(),
		inputFrame: core.NewInputFrame(),
	}
}

// Init starts the game and the tick loop.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		if path, err := m.saveScreenshot(); err != nil {
			m.log.Warn("screenshot failed", "err", err)
		} else {
			m.log.Info("screenshot saved", "path", path)
		}
		return m, nil
	}

	action := m.keys.Action(msg)
	if action == core.ActionQuit {
		m.quitting = true
		return m, tea.Quit
	}
	m.inputFrame.Set(action)
	return m, nil
}

// handleResize keeps the running game; only the layout changes.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(registry.Resizable); ok {
		r.Resize(msg.Width, msg.Height)
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}
	return m, nil
}

func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	wasOver := m.gameState.GameOver
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()
	m.ticks++

	if !m.gameState.GameOver {
		m.saved = false
	} else if !m.saved {
		m.saveResult()
		m.saved = true
	}

	if m.ticks%uint64(m.opts.PublishEvery) == 0 || m.gameState.GameOver != wasOver {
		m.publish()
	}

	if m.gameState.Back {
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil
	}

	return m, tickCmd(m.config.TickRate)
}

// saveResult stores the finished game. Games with nothing scored are skipped.
func (m *GameModel) saveResult() {
	if m.opts.Store == nil {
		return
	}
	f, ok := m.game.(registry.Finished)
	if !ok {
		return
	}
	res, ok := f.Result()
	if !ok || res.Score <= 0 {
		return
	}

	id, err := m.opts.Store.SaveResult(storage.Result{
		Mode:       res.Mode,
		Score:      res.Score,
		Level:      res.Level,
		Lines:      res.Lines,
		DurationMs: res.DurationMs,
		EndReason:  res.EndReason,
	})
	if err != nil {
		m.log.Warn("could not save result", "mode", res.Mode, "err", err)
		return
	}
	m.log.Debug("result saved", "id", id, "mode", res.Mode, "score", res.Score)
}

func (m *GameModel) publish() {
	if m.opts.Publisher == nil {
		return
	}
	obs, ok := m.game.(registry.Observable)
	if !ok {
		return
	}
	if err := m.opts.Publisher.Publish(m.opts.Source, obs.Observe()); err != nil {
		m.log.Warn("spectator publish failed", "err", err)
	}
}

// saveScreenshot writes the current screen as plain text.
func (m *GameModel) saveScreenshot() (string, error) {
	m.screen.Clear()
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	dir := filepath.Join(home, ".tetris", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create screenshot directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.txt", m.game.ID(), time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return "", fmt.Errorf("cannot write screenshot: %w", err)
	}
	return path, nil
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.screen.Clear()
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// IsQuitting reports whether the user asked to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu reports whether the user asked to return to the menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// State returns the game state after the last tick.
func (m GameModel) State() core.GameState {
	return m.gameState
}

// Run plays one game in the alternate screen until the user quits.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	model := NewGameModel(game, cfg, opts)
	model.standalone = true

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
