package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris/engine"
)

func newTestSession(t *testing.T, cfg engine.Config, kinds ...engine.Kind) *engine.Session {
	t.Helper()
	s, err := engine.NewSession(cfg, engine.WithGeneratorFactory(func() engine.Generator {
		return engine.NewSequenceGenerator(kinds...)
	}))
	require.NoError(t, err)
	return s
}

// dropOAt moves the active O piece to column x and hard drops it.
func dropOAt(t *testing.T, s *engine.Session, x int) *engine.LockResult {
	t.Helper()
	for s.View().X > x {
		require.True(t, s.MoveLeft())
	}
	for s.View().X < x {
		require.True(t, s.MoveRight())
	}
	res := s.HardDrop()
	require.NotNil(t, res)
	return res
}

func TestNewSessionValidation(t *testing.T) {
	_, err := engine.NewSession(engine.Config{Width: 0, Height: 20})
	assert.ErrorIs(t, err, engine.ErrInvalidDimensions)

	cfg := engine.DefaultConfig()
	cfg.Mode = engine.LineGoal(0)
	_, err = engine.NewSession(cfg)
	assert.Error(t, err)

	cfg.Mode = engine.TimeBoxed(-time.Second)
	_, err = engine.NewSession(cfg)
	assert.Error(t, err)
}

func TestIdleSessionIgnoresIntents(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindT)

	assert.Equal(t, engine.StateIdle, s.State())
	assert.False(t, s.MoveLeft())
	assert.False(t, s.MoveRight())
	assert.False(t, s.Rotate())
	assert.False(t, s.Hold())
	assert.Nil(t, s.MoveDown(engine.SourceUser))
	assert.Nil(t, s.HardDrop())
	assert.Nil(t, s.View().Active)
	assert.False(t, s.IsGameOver())
}

func TestSpawnPosition(t *testing.T) {
	tests := []struct {
		kind engine.Kind
		x    int
	}{
		{engine.KindI, 3},
		{engine.KindO, 4},
		{engine.KindT, 4},
	}
	for _, tc := range tests {
		s := newTestSession(t, engine.DefaultConfig(), tc.kind)
		s.NewGame()

		v := s.View()
		assert.Equal(t, tc.kind, v.ActiveKind)
		assert.Equal(t, tc.x, v.X, "spawn x of %s", tc.kind)
		assert.Equal(t, 0, v.Y)
		assert.True(t, v.HoldAvailable)
	}
}

func TestHardDropAcrossEmptyBoard(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindI)
	s.NewGame()
	require.Equal(t, 19, s.View().GhostY)

	res := s.HardDrop()

	require.NotNil(t, res)
	assert.Equal(t, 19, res.DropDistance)
	assert.Equal(t, 38, res.Points)
	assert.Equal(t, 38, s.Score().Score)
	assert.Zero(t, s.Score().Combo)
	assert.Zero(t, res.Clear.Lines)
	assert.Equal(t, engine.ClearNone, res.Kind)
	assert.Equal(t, 1, s.PiecesLocked())
	assert.Equal(t, engine.StateActive, s.State())
	assert.Equal(t, "1111", s.Board()[19:20].String()[3:7])
}

func TestFailedMovesLeaveStateUnchanged(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindO)
	s.NewGame()

	for i := 0; i < 4; i++ {
		require.True(t, s.MoveLeft())
	}
	before := s.View()
	assert.False(t, s.MoveLeft())
	assert.Equal(t, before, s.View())

	for i := 0; i < 8; i++ {
		require.True(t, s.MoveRight())
	}
	before = s.View()
	assert.False(t, s.MoveRight())
	assert.Equal(t, before, s.View())
	assert.Equal(t, 8, before.X)
}

func TestRotateBlockedAtFloor(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindI)
	s.NewGame()
	for i := 0; i < 19; i++ {
		require.Nil(t, s.MoveDown(engine.SourceSystem))
	}

	before := s.View()
	require.Equal(t, 19, before.Y)
	assert.False(t, s.Rotate(), "vertical I would poke through the floor")
	assert.Equal(t, before, s.View())
	assert.Zero(t, s.Score().Score, "gravity steps never score")
}

func TestRotateCommits(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindT)
	s.NewGame()

	require.True(t, s.Rotate())
	v := s.View()
	assert.Equal(t, 1, v.Rotation)
	assert.Equal(t, ".6\n66\n.6", v.Active.String())

	for i := 0; i < 3; i++ {
		require.True(t, s.Rotate())
	}
	assert.Equal(t, 0, s.View().Rotation)
}

func TestSoftDropScoresOnlyUserSteps(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindO)
	s.NewGame()

	assert.Nil(t, s.MoveDown(engine.SourceUser))
	assert.Equal(t, 1, s.Score().Score)
	assert.Nil(t, s.MoveDown(engine.SourceSystem))
	assert.Equal(t, 1, s.Score().Score)
	assert.Equal(t, 2, s.View().Y)
}

func TestGravityLockDoesNotScoreDrop(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindO)
	s.NewGame()

	var res *engine.LockResult
	for steps := 0; res == nil; steps++ {
		require.Less(t, steps, 30)
		res = s.MoveDown(engine.SourceSystem)
	}
	assert.Zero(t, res.DropDistance)
	assert.Zero(t, res.Points)
	assert.Equal(t, engine.KindO, s.View().ActiveKind, "next piece spawned")
}

func TestHoldOncePerPiece(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindT, engine.KindI, engine.KindO)
	s.NewGame()

	require.True(t, s.Hold())
	first := s.View()
	assert.Equal(t, engine.KindT, first.HoldKind)
	assert.Equal(t, engine.KindI, first.ActiveKind)
	assert.False(t, first.HoldAvailable)

	assert.False(t, s.Hold(), "second hold in the same lifetime is a no-op")
	assert.Equal(t, first, s.View())

	require.NotNil(t, s.HardDrop())
	v := s.View()
	assert.Equal(t, engine.KindO, v.ActiveKind)
	assert.True(t, v.HoldAvailable, "spawn resets the hold allowance")

	require.True(t, s.MoveLeft())
	require.True(t, s.Hold())
	v = s.View()
	assert.Equal(t, engine.KindT, v.ActiveKind)
	assert.Equal(t, engine.KindO, v.HoldKind)
	assert.Equal(t, 4, v.X, "swapped piece restarts at the spawn offset")
	assert.Equal(t, 0, v.Y)
	assert.Equal(t, 0, v.Rotation)
	assert.Equal(t, ".6.\n666", v.Active.String())
}

func TestDoubleWithPerfectClear(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindO)
	s.NewGame()

	for _, x := range []int{0, 2, 4, 6} {
		res := dropOAt(t, s, x)
		assert.Zero(t, res.Clear.Lines)
		assert.Equal(t, 36, res.Points)
	}

	res := dropOAt(t, s, 8)

	assert.Equal(t, 2, res.Clear.Lines)
	assert.Equal(t, []int{18, 19}, res.Clear.Rows)
	assert.Equal(t, engine.ClearDouble, res.Kind)
	assert.True(t, res.PerfectClear)
	assert.Equal(t, 36+300+2000+50, res.Points)
	assert.Equal(t, 2, res.Combo)

	sc := s.Score()
	assert.Equal(t, 36*5+300+2000+50, sc.Score)
	assert.Equal(t, 2, sc.TotalLines)
	assert.Equal(t, 1, sc.Level)
	assert.True(t, s.Board().IsEmpty())
	assert.Equal(t, engine.StateActive, s.State())
}

func TestLineGoalEndsSession(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Mode = engine.LineGoal(2)
	s := newTestSession(t, cfg, engine.KindO)
	s.NewGame()
	assert.Equal(t, 2, s.LinesRemaining())

	for _, x := range []int{0, 2, 4, 6} {
		dropOAt(t, s, x)
	}
	res := dropOAt(t, s, 8)

	assert.True(t, res.Ended)
	assert.True(t, res.PerfectClear)
	assert.True(t, s.IsGameOver())
	assert.Equal(t, engine.EndGoalReached, s.EndReason())
	assert.Zero(t, s.LinesRemaining())
	assert.False(t, s.MoveLeft())
	assert.Nil(t, s.HardDrop())
}

func TestTimeBoxEndsSession(t *testing.T) {
	clock := engine.NewManualClock(time.Unix(1000, 0))
	cfg := engine.DefaultConfig()
	cfg.Mode = engine.TimeBoxed(2 * time.Minute)
	s, err := engine.NewSession(cfg, engine.WithClock(clock))
	require.NoError(t, err)
	s.NewGame()

	clock.Advance(119 * time.Second)
	assert.False(t, s.CheckTime())
	assert.Nil(t, s.MoveDown(engine.SourceSystem))
	assert.Equal(t, time.Second, s.TimeRemaining())

	clock.Advance(time.Second)
	assert.Nil(t, s.MoveDown(engine.SourceUser))
	assert.True(t, s.IsGameOver())
	assert.Equal(t, engine.EndTimeUp, s.EndReason())
	assert.Zero(t, s.Score().Score, "the step that hit the limit did not move")
	assert.Equal(t, 2*time.Minute, s.Elapsed())

	clock.Advance(time.Hour)
	assert.Equal(t, 2*time.Minute, s.Elapsed(), "elapsed freezes at the end")
	assert.False(t, s.CheckTime())
}

func TestCheckTimeEndsActiveSession(t *testing.T) {
	clock := engine.NewManualClock(time.Unix(0, 0))
	cfg := engine.DefaultConfig()
	cfg.Mode = engine.TimeBoxed(time.Second)
	s, err := engine.NewSession(cfg, engine.WithClock(clock))
	require.NoError(t, err)
	s.NewGame()

	clock.Advance(time.Second)
	assert.True(t, s.CheckTime())
	assert.Equal(t, engine.EndTimeUp, s.EndReason())
}

func TestTopOut(t *testing.T) {
	s := newTestSession(t, engine.Config{Width: 4, Height: 2}, engine.KindO)
	s.NewGame()
	require.Equal(t, 1, s.View().X)

	res := s.MoveDown(engine.SourceSystem)

	require.NotNil(t, res)
	assert.True(t, res.Ended)
	assert.True(t, s.IsGameOver())
	assert.Equal(t, engine.EndToppedOut, s.EndReason())
	assert.Nil(t, s.View().Active)
}

func TestStop(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindT)
	s.Stop()
	assert.True(t, s.IsGameOver())
	assert.Equal(t, engine.EndStopped, s.EndReason())

	s.NewGame()
	s.Stop()
	assert.Equal(t, engine.EndStopped, s.EndReason())
}

func TestNewGameResetsEverything(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindT, engine.KindI)
	s.NewGame()
	require.True(t, s.Hold())
	require.NotNil(t, s.HardDrop())
	s.Stop()

	s.NewGame()

	assert.Equal(t, engine.StateActive, s.State())
	assert.Equal(t, engine.EndNone, s.EndReason())
	assert.Equal(t, engine.NewScoreState(), s.Score())
	assert.True(t, s.Board().IsEmpty())
	assert.Zero(t, s.PiecesLocked())
	_, ok := s.LastLock()
	assert.False(t, ok)

	v := s.View()
	assert.Nil(t, v.Hold)
	assert.Equal(t, engine.KindT, v.ActiveKind, "generator restarts with the game")
	assert.Equal(t, engine.KindI, v.NextKind)
}

func TestSeededSessionsMatch(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Seed = 2024

	a, err := engine.NewSession(cfg)
	require.NoError(t, err)
	b, err := engine.NewSession(cfg)
	require.NoError(t, err)
	a.NewGame()
	b.NewGame()

	for i := 0; i < 40 && !a.IsGameOver(); i++ {
		if i%3 == 0 {
			a.Rotate()
			b.Rotate()
		}
		if i%2 == 0 {
			a.MoveLeft()
			b.MoveLeft()
		}
		a.HardDrop()
		b.HardDrop()
	}

	assert.Equal(t, a.Score(), b.Score())
	assert.True(t, a.Board().Equal(b.Board()))
	assert.Equal(t, a.View(), b.View())
}

func TestBoardSnapshotCannotCorruptSession(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindO)
	s.NewGame()

	snap := s.Board()
	for y := range snap {
		for x := range snap[y] {
			snap[y][x] = 1
		}
	}
	v := s.View()
	v.Active[0][0] = 0

	assert.True(t, s.Board().IsEmpty())
	assert.True(t, s.MoveDown(engine.SourceSystem) == nil)
	assert.Equal(t, 4, s.View().Active.Count())
}

func TestSetMode(t *testing.T) {
	s := newTestSession(t, engine.DefaultConfig(), engine.KindO)
	require.NoError(t, s.SetMode(engine.LineGoal(40)))
	assert.Equal(t, engine.ModeLineGoal, s.Mode().Kind)
	assert.Error(t, s.SetMode(engine.Mode{Kind: engine.ModeKind(9)}))
	assert.Equal(t, 40, s.Mode().LineGoal)
}
