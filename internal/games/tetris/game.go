// Package tetris adapts the falling-block engine to the platform registry.
// It owns the gravity schedule and the tick clock, maps input frames to
// engine intents and draws the playfield into a core.Screen.
package tetris

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris/engine"
	"github.com/vovakirdan/tui-tetris/internal/registry"
)

// Game ids, one per mode.
const (
	IDEndless = "tetris"
	IDLines   = "tetris_lines"
	IDTimed   = "tetris_timed"
)

var (
	settingsMu sync.RWMutex
	settings   = config.DefaultTetrisConfig()
	logger     = log.New(io.Discard)
)

// SetConfig replaces the configuration used by games created afterwards.
func SetConfig(cfg config.TetrisConfig) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = cfg
}

// SetLogger sets the logger for session events. nil silences them.
func SetLogger(l *log.Logger) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

func currentSettings() (config.TetrisConfig, *log.Logger) {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings, logger
}

func init() {
	registry.Register(IDEndless, func() registry.Game { return New() })
	registry.Register(IDLines, func() registry.Game { return NewLines() })
	registry.Register(IDTimed, func() registry.Game { return NewTimed() })
}

// Game is one player's tetris game.
type Game struct {
	kind     engine.ModeKind
	override *config.TetrisConfig

	cfg     config.TetrisConfig
	gravity *config.Gravity
	log     *log.Logger

	session *engine.Session
	clock   *engine.ManualClock
	seed    int64
	round   int64

	tick        uint64
	tickRate    int
	fallTicks   int
	paused      bool
	back        bool
	notice      string
	noticeTicks int
	endLogged   bool

	screenW  int
	screenH  int
	tooSmall bool
	headless bool
}

// New creates an endless game.
func New() *Game {
	return &Game{kind: engine.ModeEndless}
}

// NewLines creates a line race game.
func NewLines() *Game {
	return &Game{kind: engine.ModeLineGoal}
}

// NewTimed creates a time attack game.
func NewTimed() *Game {
	return &Game{kind: engine.ModeTimeBoxed}
}

// NewWithConfig creates a game of the given mode that ignores the package
// configuration.
func NewWithConfig(kind engine.ModeKind, cfg config.TetrisConfig) *Game {
	return &Game{kind: kind, override: &cfg}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	switch g.kind {
	case engine.ModeLineGoal:
		return IDLines
	case engine.ModeTimeBoxed:
		return IDTimed
	default:
		return IDEndless
	}
}

// Title returns the display name.
func (g *Game) Title() string {
	switch g.kind {
	case engine.ModeLineGoal:
		return "Tetris: Line Race"
	case engine.ModeTimeBoxed:
		return "Tetris: Time Attack"
	default:
		return "Tetris"
	}
}

// Reset loads the configuration and starts a new game.
func (g *Game) Reset(rt core.RuntimeConfig) {
	cfg, l := currentSettings()
	if g.override != nil {
		cfg = *g.override
	}
	if err := cfg.Validate(); err != nil {
		l.Warn("invalid tetris config, using defaults", "err", err)
		cfg = config.DefaultTetrisConfig()
	}

	g.cfg = cfg
	g.gravity = config.NewGravity(cfg.Gravity)
	g.log = l.With("game", g.ID())
	g.seed = rt.Seed
	g.round = 0
	g.tick = 0
	g.tickRate = rt.TickRate
	if g.tickRate <= 0 {
		g.tickRate = 60
	}
	g.Resize(rt.ScreenW, rt.ScreenH)
	g.start()
}

// start builds a fresh session for the current round.
func (g *Game) start() {
	policy, err := engine.ParsePolicy(g.cfg.Generator.Policy)
	if err != nil {
		policy = engine.PolicyBag
	}

	g.clock = engine.NewManualClock(time.Unix(0, 0))
	ecfg := engine.Config{
		Width:  g.cfg.Board.Width,
		Height: g.cfg.Board.Height,
		Seed:   g.seed + g.round,
		Policy: policy,
		Mode:   modeFor(g.kind, g.cfg.Modes),
	}
	s, ecfg, err := newSession(ecfg, g.clock, g.log)
	if err != nil {
		panic(fmt.Sprintf("tetris: %v", err))
	}
	g.session = s
	g.fallTicks = 0
	g.paused = false
	g.notice = ""
	g.noticeTicks = 0
	g.endLogged = false

	s.NewGame()
	g.log.Info("game started", "mode", ecfg.Mode, "seed", ecfg.Seed)
	if s.IsGameOver() {
		g.finish()
	}
}

// newSession opens a session for ecfg. Reset validated the config, so a
// rejection means a bad override of a single field; the game then runs
// endless on the default board instead.
func newSession(ecfg engine.Config, clock engine.Clock, l *log.Logger) (*engine.Session, engine.Config, error) {
	s, err := engine.NewSession(ecfg, engine.WithClock(clock))
	if err == nil {
		return s, ecfg, nil
	}
	l.Error("cannot create session", "err", err)

	ecfg.Width, ecfg.Height = engine.DefaultWidth, engine.DefaultHeight
	ecfg.Mode = engine.Endless()
	s, err = engine.NewSession(ecfg, engine.WithClock(clock))
	if err != nil {
		l.Error("cannot create fallback session", "err", err)
		return nil, ecfg, err
	}
	return s, ecfg, nil
}

func modeFor(kind engine.ModeKind, m config.ModesConfig) engine.Mode {
	switch kind {
	case engine.ModeLineGoal:
		return engine.LineGoal(m.LineGoal)
	case engine.ModeTimeBoxed:
		return engine.TimeBoxed(time.Duration(m.TimeLimitSeconds) * time.Second)
	default:
		return engine.Endless()
	}
}

// Resize adapts the layout to a new screen size without touching the game.
func (g *Game) Resize(w, h int) {
	g.screenW, g.screenH = w, h
	minW, minH := g.minSize()
	g.tooSmall = !g.headless && (w < minW || h < minH)
}

// SetHeadless marks a game that has no screen. A headless game never pauses
// for a small window, whatever size it was reset with.
func (g *Game) SetHeadless(on bool) {
	g.headless = on
	g.Resize(g.screenW, g.screenH)
}

func (g *Game) tickDuration() time.Duration {
	return time.Second / time.Duration(g.tickRate)
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	g.back = in.Has(core.ActionBack)

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionNewGame) || (in.Has(core.ActionRestart) && g.session.IsGameOver()) {
		g.round++
		g.start()
		return core.StepResult{State: g.State()}
	}

	if g.session.IsGameOver() {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.clock.Advance(g.tickDuration())
	if g.session.CheckTime() {
		g.finish()
		return core.StepResult{State: g.State()}
	}

	g.applyInput(in)
	if !g.session.IsGameOver() {
		g.applyGravity()
	}

	if g.noticeTicks > 0 {
		g.noticeTicks--
		if g.noticeTicks == 0 {
			g.notice = ""
		}
	}
	if g.session.IsGameOver() {
		g.finish()
	}
	return core.StepResult{State: g.State()}
}

// applyInput runs the frame's intents in a fixed order: hold, rotate,
// shift, soft drop, hard drop. A lock ends the frame's piece handling so
// the freshly spawned piece is not moved by the same frame.
func (g *Game) applyInput(in core.InputFrame) {
	s := g.session

	if in.Has(core.ActionHold) && s.Hold() {
		g.fallTicks = 0
	}
	if in.Has(core.ActionRotate) {
		s.Rotate()
	}
	if in.Has(core.ActionLeft) {
		s.MoveLeft()
	}
	if in.Has(core.ActionRight) {
		s.MoveRight()
	}

	if in.Has(core.ActionSoftDrop) {
		g.fallTicks = 0
		repeat := g.cfg.Gravity.SoftDropRepeat
		if repeat < 1 {
			repeat = 1
		}
		for i := 0; i < repeat; i++ {
			if res := s.MoveDown(engine.SourceUser); res != nil {
				g.onLock(*res)
				return
			}
		}
	}

	if in.Has(core.ActionHardDrop) {
		if res := s.HardDrop(); res != nil {
			g.onLock(*res)
		}
	}
}

func (g *Game) applyGravity() {
	g.fallTicks++
	if g.fallTicks < g.gravity.Ticks(g.session.Level(), g.tickRate) {
		return
	}
	g.fallTicks = 0
	if res := g.session.MoveDown(engine.SourceSystem); res != nil {
		g.onLock(*res)
	}
}

func (g *Game) onLock(res engine.LockResult) {
	g.fallTicks = 0
	if text := lockNotice(res, g.session.Level()); text != "" {
		g.notice = text
		g.noticeTicks = g.cfg.Display.NotificationTicks
	}
	if res.Clear.Lines > 0 {
		g.log.Debug("lines cleared",
			"lines", res.Clear.Lines,
			"points", res.Points,
			"combo", res.Combo,
			"b2b", res.BackToBack,
			"perfect", res.PerfectClear)
	}
	if res.LevelUp {
		g.log.Info("level up", "level", g.session.Level())
	}
}

// lockNotice builds the transient message for a lock, such as
// "TETRIS +800" or "B2B TETRIS +1200".
func lockNotice(res engine.LockResult, level int) string {
	var text string
	switch {
	case res.PerfectClear:
		text = fmt.Sprintf("PERFECT CLEAR +%d", res.Points)
	case res.Clear.Lines > 0:
		label := res.Kind.String()
		if res.BackToBack {
			label = "B2B " + label
		}
		text = fmt.Sprintf("%s +%d", label, res.Points)
		if res.Combo > 1 {
			text += fmt.Sprintf(" COMBO %d", res.Combo)
		}
	}
	if res.LevelUp {
		if text != "" {
			text += " "
		}
		text += fmt.Sprintf("LEVEL %d", level)
	}
	return text
}

func (g *Game) finish() {
	if g.endLogged {
		return
	}
	g.endLogged = true
	sc := g.session.Score()
	g.log.Info("game ended",
		"reason", g.session.EndReason(),
		"score", sc.Score,
		"level", sc.Level,
		"lines", sc.TotalLines,
		"elapsed", g.session.Elapsed())
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	sc := g.session.Score()
	return core.GameState{
		Score:    sc.Score,
		Level:    sc.Level,
		Lines:    sc.TotalLines,
		GameOver: g.session.IsGameOver(),
		Paused:   g.paused || g.tooSmall,
		Back:     g.back,
	}
}

// Session exposes the engine session for read access by bots and tests.
func (g *Game) Session() *engine.Session {
	return g.session
}

// Result returns the record of a finished game.
func (g *Game) Result() (registry.Result, bool) {
	if g.session == nil || !g.session.IsGameOver() {
		return registry.Result{}, false
	}
	sc := g.session.Score()
	return registry.Result{
		Mode:       g.ID(),
		Score:      sc.Score,
		Level:      sc.Level,
		Lines:      sc.TotalLines,
		DurationMs: g.session.Elapsed().Milliseconds(),
		EndReason:  g.session.EndReason().String(),
	}, true
}

// Observe implements registry.Observable.
func (g *Game) Observe() any {
	return g.Snapshot()
}

var (
	_ registry.Game       = (*Game)(nil)
	_ registry.Observable = (*Game)(nil)
	_ registry.Finished   = (*Game)(nil)
	_ registry.Resizable  = (*Game)(nil)
)
