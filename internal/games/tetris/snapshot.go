package tetris

import (
	"strings"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris/engine"
)

// GameStateType is the coarse state shown to spectators.
type GameStateType string

const (
	StatePlaying     GameStateType = "playing"
	StatePaused      GameStateType = "paused"
	StateGameOver    GameStateType = "game_over"
	StatePausedSmall GameStateType = "paused_small_window"
)

// PieceSnapshot describes the falling piece.
type PieceSnapshot struct {
	Kind     string   `json:"kind"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Rotation int      `json:"rotation"`
	GhostY   int      `json:"ghost_y"`
	Cells    []string `json:"cells"`
}

// Snapshot captures the complete game state for determinism testing,
// headless runs and spectators. Matrices are rows of '.' and colour digits.
type Snapshot struct {
	Tick           uint64         `json:"tick"`
	Mode           string         `json:"mode"`
	State          GameStateType  `json:"state"`
	EndReason      string         `json:"end_reason,omitempty"`
	Score          int            `json:"score"`
	Level          int            `json:"level"`
	Lines          int            `json:"lines"`
	Combo          int            `json:"combo"`
	BackToBack     int            `json:"back_to_back"`
	PiecesLocked   int            `json:"pieces_locked"`
	ElapsedMs      int64          `json:"elapsed_ms"`
	RemainingMs    int64          `json:"remaining_ms,omitempty"`
	LinesRemaining int            `json:"lines_remaining,omitempty"`
	Board          []string       `json:"board"`
	Active         *PieceSnapshot `json:"active,omitempty"`
	Next           string         `json:"next"`
	Hold           string         `json:"hold,omitempty"`
	HoldAvailable  bool           `json:"hold_available"`
	Notice         string         `json:"notice,omitempty"`
}

func rows(m engine.Matrix) []string {
	if m == nil {
		return nil
	}
	return strings.Split(m.String(), "\n")
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	s := g.session
	sc := s.Score()
	v := s.View()

	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case s.IsGameOver():
		state = StateGameOver
	case g.paused:
		state = StatePaused
	}

	snap := Snapshot{
		Tick:           g.tick,
		Mode:           g.ID(),
		State:          state,
		Score:          sc.Score,
		Level:          sc.Level,
		Lines:          sc.TotalLines,
		Combo:          sc.Combo,
		BackToBack:     sc.BackToBack,
		PiecesLocked:   s.PiecesLocked(),
		ElapsedMs:      s.Elapsed().Milliseconds(),
		RemainingMs:    s.TimeRemaining().Milliseconds(),
		LinesRemaining: s.LinesRemaining(),
		Board:          rows(s.Board()),
		HoldAvailable:  v.HoldAvailable,
		Notice:         g.notice,
	}
	if s.IsGameOver() {
		snap.EndReason = s.EndReason().String()
	}
	if v.Active != nil {
		snap.Active = &PieceSnapshot{
			Kind:     v.ActiveKind.String(),
			X:        v.X,
			Y:        v.Y,
			Rotation: v.Rotation,
			GhostY:   v.GhostY,
			Cells:    rows(v.Active),
		}
	}
	if v.NextKind.Valid() {
		snap.Next = v.NextKind.String()
	}
	if v.HoldKind.Valid() {
		snap.Hold = v.HoldKind.String()
	}
	return snap
}
