package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// fakeGame ends after a fixed number of steps.
type fakeGame struct {
	steps   int
	endAt   int
	resets  int
	resized [2]int
	last    core.InputFrame
}

func (g *fakeGame) ID() string { return "fake" }
func (g *fakeGame) Title() string { return "Fake" }
func (g *fakeGame) Reset(core.RuntimeConfig) { g.resets++; g.steps = 0 }
func (g *fakeGame) Render(dst *core.Screen) { dst.DrawText(0, 0, "fake") }
func (g *fakeGame) Resize(width, height int) { g.resized = [2]int{width, height} }
func (g *fakeGame) Observe() any { return map[string]int{"steps": g.steps} }
func (g *fakeGame) over() bool { return g.endAt > 0 && g.steps >= g.endAt }
func (g *fakeGame) State() core.GameState {
	return core.GameState{Score: g.steps * 10, GameOver: g.over(), Back: g.last.Has(core.ActionBack)}
}

func (g *fakeGame) Step(in core.InputFrame) core.StepResult {
	g.last = in.Clone()
	if !g.over() {
		g.steps++
	}
	return core.StepResult{State: g.State()}
}

func (g *fakeGame) Result() (registry.Result, bool) {
	if !g.over() {
		return registry.Result{}, false
	}
	return registry.Result{Mode: "fake", Score: g.steps * 10, Lines: 1, DurationMs: 500, EndReason: "topped_out"}, true
}

type recorder struct {
	sources []string
	frames  []any
}

func (r *recorder) Publish(source string, v any) error {
	r.sources = append(r.sources, source)
	r.frames = append(r.frames, v)
	return nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tick(t *testing.T, m GameModel) GameModel {
	t.Helper()
	next, _ := m.Update(TickMsg{})
	gm, ok := next.(GameModel)
	if !ok {
		t.Fatalf("Update returned %T, expected GameModel", next)
	}
	return gm
}

func TestGameKeyMap(t *testing.T) {
	keys := DefaultGameKeyMap()
	tests := []struct {
		msg      tea.KeyMsg
		expected core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft},
		{keyRunes("a"), core.ActionLeft},
		{keyRunes("d"), core.ActionRight},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionRotate},
		{keyRunes("s"), core.ActionSoftDrop},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, core.ActionHardDrop},
		{keyRunes("c"), core.ActionHold},
		{keyRunes("n"), core.ActionNewGame},
		{keyRunes("r"), core.ActionRestart},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionPause},
		{keyRunes("b"), core.ActionBack},
		{keyRunes("q"), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{keyRunes("x"), core.ActionNone},
	}

	for _, tt := range tests {
		if got := keys.Action(tt.msg); got != tt.expected {
			t.Errorf("Action(%q) = %v, expected %v", tt.msg.String(), got, tt.expected)
		}
	}
}

func TestGameModelForwardsInputOnce(t *testing.T) {
	g := &fakeGame{}
	m := NewGameModel(g, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}, Options{})

	next, _ := m.Update(keyRunes("c"))
	m = next.(GameModel)
	m = tick(t, m)
	if !g.last.Has(core.ActionHold) {
		t.Errorf("first tick input = %v, expected hold", g.last.Actions)
	}

	m = tick(t, m)
	if !g.last.Empty() {
		t.Errorf("second tick input = %v, expected empty", g.last.Actions)
	}
}

func TestGameModelSavesResultOnce(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	g := &fakeGame{endAt: 3}
	m := NewGameModel(g, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}, Options{Store: store})
	for range 6 {
		m = tick(t, m)
	}

	results, err := store.TopResults("fake", 10)
	if err != nil {
		t.Fatalf("TopResults() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, expected 1", len(results))
	}
	if results[0].Score != 30 || results[0].EndReason != "topped_out" {
		t.Errorf("result = %+v, expected score 30 topped_out", results[0])
	}
}

func TestGameModelPublishes(t *testing.T) {
	rec := &recorder{}
	g := &fakeGame{endAt: 5}
	m := NewGameModel(g, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1},
		Options{Publisher: rec, PublishEvery: 2})
	for range 4 {
		m = tick(t, m)
	}
	if len(rec.frames) != 2 {
		t.Fatalf("published %d frames, expected 2", len(rec.frames))
	}
	if rec.sources[0] != "fake" {
		t.Errorf("source = %q, expected game id", rec.sources[0])
	}

	// The game-over transition is published even off the interval.
	m = tick(t, m)
	if len(rec.frames) != 3 {
		t.Errorf("published %d frames after game over, expected 3", len(rec.frames))
	}
}

func TestGameModelBack(t *testing.T) {
	g := &fakeGame{}
	m := NewGameModel(g, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}, Options{})

	next, _ := m.Update(keyRunes("b"))
	m = tick(t, next.(GameModel))
	if !m.BackToMenu() {
		t.Error("BackToMenu() = false, expected true")
	}
	if m.IsQuitting() {
		t.Error("IsQuitting() = true inside a session")
	}

	standalone := NewGameModel(&fakeGame{}, core.RuntimeConfig{ScreenW: 80, ScreenH: 24}, Options{})
	standalone.standalone = true
	next, _ = standalone.Update(keyRunes("b"))
	standalone = tick(t, next.(GameModel))
	if !standalone.IsQuitting() {
		t.Error("standalone back should quit")
	}
}

func TestGameModelResizeKeepsGame(t *testing.T) {
	g := &fakeGame{}
	m := NewGameModel(g, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60}, Options{})
	m.Init()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(GameModel)
	if g.resets != 1 {
		t.Errorf("resets = %d, expected 1", g.resets)
	}
	if g.resized != [2]int{100, 40} {
		t.Errorf("resized = %v, expected [100 40]", g.resized)
	}
	if m.View() == "" {
		t.Error("View() is empty")
	}
}

func TestGameModelQuit(t *testing.T) {
	m := NewGameModel(&fakeGame{}, core.RuntimeConfig{ScreenW: 80, ScreenH: 24}, Options{})
	next, cmd := m.Update(keyRunes("q"))
	if !next.(GameModel).IsQuitting() {
		t.Error("IsQuitting() = false after q")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("command is not tea.Quit")
	}
}
