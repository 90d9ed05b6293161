package engine

import (
	"fmt"
	"time"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
	StateEnded
)

// String returns a lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EndReason explains why a session reached StateEnded.
type EndReason int

const (
	EndNone        EndReason = iota
	EndToppedOut             // A new piece could not spawn
	EndGoalReached           // Line goal met
	EndTimeUp                // Time box elapsed
	EndStopped               // Stopped by the driver
)

// String returns a short description of the reason.
func (r EndReason) String() string {
	switch r {
	case EndNone:
		return "none"
	case EndToppedOut:
		return "topped_out"
	case EndGoalReached:
		return "goal_reached"
	case EndTimeUp:
		return "time_up"
	case EndStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Source tells MoveDown who asked for the step. Only user steps score.
type Source int

const (
	SourceUser Source = iota
	SourceSystem
)

// HoldState is the once-per-piece hold allowance. It belongs to the active
// piece and starts as HoldAvailable on every spawn.
type HoldState uint8

const (
	HoldAvailable HoldState = iota
	HoldUsed
)

// ClearKind names the size of a line clear.
type ClearKind int

const (
	ClearNone ClearKind = iota
	ClearSingle
	ClearDouble
	ClearTriple
	ClearTetris
)

// String returns the display label for the clear.
func (k ClearKind) String() string {
	switch k {
	case ClearSingle:
		return "SINGLE"
	case ClearDouble:
		return "DOUBLE"
	case ClearTriple:
		return "TRIPLE"
	case ClearTetris:
		return "TETRIS"
	default:
		return ""
	}
}

func clearKindFor(lines int) ClearKind {
	switch {
	case lines <= 0:
		return ClearNone
	case lines == 1:
		return ClearSingle
	case lines == 2:
		return ClearDouble
	case lines == 3:
		return ClearTriple
	default:
		return ClearTetris
	}
}

// LockResult reports the outcome of one lock sequence.
type LockResult struct {
	Clear        ClearResult
	Kind         ClearKind
	BackToBack   bool // Tetris scored at the back-to-back rate
	PerfectClear bool
	Combo        int // Combo count after the lock
	DropDistance int // Rows covered by the hard drop that caused the lock, 0 otherwise
	Points       int // Score gained by the whole lock sequence
	LevelUp      bool
	Ended        bool // The lock ended the session
}

// ViewData is what a renderer needs for the falling and queued pieces.
// Matrices are copies.
type ViewData struct {
	Active        Matrix // nil when there is no active piece
	ActiveKind    Kind
	X, Y          int
	Rotation      int
	GhostY        int // Row the active piece would land on
	Next          Matrix
	NextKind      Kind
	Hold          Matrix // nil when the hold slot is empty
	HoldKind      Kind
	HoldAvailable bool
}

// Config configures a session.
type Config struct {
	Width  int
	Height int
	Seed   int64
	Policy Policy
	Mode   Mode
}

// DefaultConfig is a classic 10x20 endless game with a 7-bag.
func DefaultConfig() Config {
	return Config{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Policy: PolicyBag,
		Mode:   Endless(),
	}
}

// Option customises a Session.
type Option func(*Session)

// WithClock sets the time source used for time boxed modes.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithGeneratorFactory overrides how each new game builds its generator.
func WithGeneratorFactory(f func() Generator) Option {
	return func(s *Session) {
		if f != nil {
			s.newGen = f
		}
	}
}

type activePiece struct {
	cursor Cursor
	x, y   int
	hold   HoldState
}

type holdSlot struct {
	piece Piece
	held  bool
}

// Session is the game state machine: Idle -> Active -> Ended, and back to
// Active via NewGame. It is not safe for concurrent use; one driver issues
// one intent at a time.
type Session struct {
	board  *Board
	newGen func() Generator
	gen    Generator
	clock  Clock
	mode   Mode

	state  State
	reason EndReason
	active *activePiece
	hold   holdSlot
	score  ScoreState

	pendingDrop int
	startedAt   time.Time
	endedAt     time.Time
	locked      int
	lastLock    *LockResult
}

// NewSession validates cfg and returns an Idle session.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	board, err := NewBoard(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	if err := cfg.Mode.Validate(); err != nil {
		return nil, err
	}
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyBag
	}
	seed := cfg.Seed

	s := &Session{
		board: board,
		newGen: func() Generator {
			return NewGenerator(policy, seed)
		},
		clock: ClockFunc(time.Now),
		mode:  cfg.Mode,
		state: StateIdle,
		score: NewScoreState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gen = s.newGen()
	return s, nil
}

// NewGame clears the board, hold slot and score, restarts the generator and
// session clock, and spawns the first piece.
func (s *Session) NewGame() {
	s.board.Reset()
	s.hold = holdSlot{}
	s.score = NewScoreState()
	s.gen = s.newGen()
	s.pendingDrop = 0
	s.locked = 0
	s.lastLock = nil
	s.reason = EndNone
	s.active = nil
	s.startedAt = s.clock.Now()
	s.endedAt = time.Time{}
	s.state = StateActive

	if !s.spawn(s.gen.Next()) {
		s.end(EndToppedOut)
	}
}

// SetMode changes the termination policy. It applies immediately; goals are
// checked against the running totals.
func (s *Session) SetMode(m Mode) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mode = m
	return nil
}

// Stop ends an Idle or Active session.
func (s *Session) Stop() {
	if s.state == StateEnded {
		return
	}
	s.end(EndStopped)
}

// MoveLeft shifts the active piece one column left.
func (s *Session) MoveLeft() bool {
	return s.shift(-1, 0)
}

// MoveRight shifts the active piece one column right.
func (s *Session) MoveRight() bool {
	return s.shift(1, 0)
}

// MoveDown drops the active piece one row. User steps score a soft drop
// point, system (gravity) steps do not. When the piece cannot move it locks
// and the lock result is returned; otherwise the result is nil.
func (s *Session) MoveDown(src Source) *LockResult {
	if s.state != StateActive {
		return nil
	}
	if s.checkTime() {
		return nil
	}
	if s.shift(0, 1) {
		if src == SourceUser {
			s.score = s.score.AddSoftDrop(1)
		}
		return nil
	}
	res := s.lock()
	return &res
}

// Rotate advances the active piece one rotation state in place. There is
// no wall kick: a colliding candidate leaves the piece untouched.
func (s *Session) Rotate() bool {
	if s.state != StateActive {
		return false
	}
	a := s.mustActive()
	shape, next := a.cursor.candidate()
	if s.board.Intersect(shape, a.x, a.y) {
		return false
	}
	a.cursor = a.cursor.Commit(next)
	return true
}

// Hold stores the active piece, or swaps it with the stored one. Allowed
// once per piece; later calls in the same piece lifetime do nothing.
func (s *Session) Hold() bool {
	if s.state != StateActive || s.active == nil || s.active.hold == HoldUsed {
		return false
	}
	current := s.active.cursor.Piece()

	if !s.hold.held {
		s.hold = holdSlot{piece: current, held: true}
		if !s.spawn(s.gen.Next()) {
			s.end(EndToppedOut)
			return true
		}
		s.active.hold = HoldUsed
		return true
	}

	incoming := newActivePiece(s.hold.piece, s.board.Width())
	if s.board.Intersect(incoming.cursor.current(), incoming.x, incoming.y) {
		return false
	}
	s.hold.piece = current
	incoming.hold = HoldUsed
	s.active = incoming
	return true
}

// HardDrop drops the active piece as far as it goes and locks it.
func (s *Session) HardDrop() *LockResult {
	if s.state != StateActive {
		return nil
	}
	if s.checkTime() {
		return nil
	}
	s.mustActive()

	distance := 0
	for s.shift(0, 1) {
		distance++
	}
	s.pendingDrop = distance
	res := s.lock()
	return &res
}

// CheckTime applies the time box policy and reports whether it ended the
// session on this call. Drivers call it on every tick.
func (s *Session) CheckTime() bool {
	if s.state != StateActive {
		return false
	}
	return s.checkTime()
}

func (s *Session) checkTime() bool {
	if s.mode.timeUp(s.clock.Now().Sub(s.startedAt)) {
		s.end(EndTimeUp)
		return true
	}
	return false
}

func (s *Session) shift(dx, dy int) bool {
	if s.state != StateActive {
		return false
	}
	a := s.mustActive()
	if s.board.Intersect(a.cursor.current(), a.x+dx, a.y+dy) {
		return false
	}
	a.x += dx
	a.y += dy
	return true
}

// lock runs merge, drop scoring, clear, clear scoring, goal check, perfect
// clear, and the next spawn.
func (s *Session) lock() LockResult {
	a := s.mustActive()
	before := s.score

	s.board.Merge(a.cursor.current(), a.x, a.y)
	s.active = nil
	s.locked++

	distance := s.pendingDrop
	if distance > 0 {
		s.score = s.score.AddHardDrop(distance)
		s.pendingDrop = 0
	}

	clr := s.board.ClearRows()
	res := LockResult{
		Clear:        clr,
		Kind:         clearKindFor(clr.Lines),
		DropDistance: distance,
	}

	goal := false
	if clr.Lines > 0 {
		if clr.Lines == 4 {
			s.score = s.score.AddTetris()
			res.BackToBack = s.score.BackToBackActive()
		} else {
			s.score = s.score.AddLineClear(clr.Lines)
		}
		goal = s.mode.goalReached(s.score.TotalLines)
	} else {
		s.score = s.score.PlacedWithoutClear()
	}

	if s.board.IsEmpty() {
		s.score = s.score.AddPerfectClear()
		res.PerfectClear = true
	}

	res.Combo = s.score.Combo
	res.Points = s.score.Score - before.Score
	res.LevelUp = s.score.Level > before.Level

	switch {
	case goal:
		s.end(EndGoalReached)
	case !s.spawn(s.gen.Next()):
		s.end(EndToppedOut)
	}
	res.Ended = s.state == StateEnded

	last := res
	s.lastLock = &last
	return res
}

func newActivePiece(p Piece, boardWidth int) *activePiece {
	c := NewCursor(p)
	return &activePiece{
		cursor: c,
		x:      boardWidth/2 - c.current().Width()/2,
		y:      0,
		hold:   HoldAvailable,
	}
}

// spawn places p at the top centre. On collision no piece becomes active
// and false is returned.
func (s *Session) spawn(p Piece) bool {
	ap := newActivePiece(p, s.board.Width())
	if s.board.Intersect(ap.cursor.current(), ap.x, ap.y) {
		s.active = nil
		return false
	}
	s.active = ap
	return true
}

func (s *Session) end(reason EndReason) {
	s.state = StateEnded
	s.reason = reason
	s.endedAt = s.clock.Now()
}

// mustActive guards piece operations. An Active session always has a piece;
// reaching here without one is a wiring bug.
func (s *Session) mustActive() *activePiece {
	if s.active == nil {
		panic(fmt.Sprintf("engine: no active piece in state %s", s.state))
	}
	return s.active
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// EndReason returns why the session ended, EndNone while not ended.
func (s *Session) EndReason() EndReason { return s.reason }

// IsGameOver reports whether the session has ended for any reason.
func (s *Session) IsGameOver() bool { return s.state == StateEnded }

// Mode returns the current termination policy.
func (s *Session) Mode() Mode { return s.mode }

// Score returns the scoring state.
func (s *Session) Score() ScoreState { return s.score }

// Level returns the current level, for gravity scheduling.
func (s *Session) Level() int { return s.score.Level }

// Width returns the board width.
func (s *Session) Width() int { return s.board.Width() }

// Height returns the board height.
func (s *Session) Height() int { return s.board.Height() }

// Board returns a copy of the background matrix.
func (s *Session) Board() Matrix { return s.board.Snapshot() }

// PiecesLocked returns how many pieces have locked this game.
func (s *Session) PiecesLocked() int { return s.locked }

// LastLock returns the most recent lock result of this game.
func (s *Session) LastLock() (LockResult, bool) {
	if s.lastLock == nil {
		return LockResult{}, false
	}
	return *s.lastLock, true
}

// Elapsed returns play time on the session clock.
func (s *Session) Elapsed() time.Duration {
	switch s.state {
	case StateActive:
		return s.clock.Now().Sub(s.startedAt)
	case StateEnded:
		if s.startedAt.IsZero() {
			return 0
		}
		return s.endedAt.Sub(s.startedAt)
	default:
		return 0
	}
}

// TimeRemaining returns the time left in a time boxed game, 0 otherwise.
func (s *Session) TimeRemaining() time.Duration {
	if s.mode.Kind != ModeTimeBoxed {
		return 0
	}
	left := s.mode.TimeLimit - s.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// LinesRemaining returns the lines left to a line goal, 0 otherwise.
func (s *Session) LinesRemaining() int {
	if s.mode.Kind != ModeLineGoal {
		return 0
	}
	left := s.mode.LineGoal - s.score.TotalLines
	if left < 0 {
		return 0
	}
	return left
}

// View returns copies of the active, next and held shapes.
func (s *Session) View() ViewData {
	v := ViewData{
		HoldAvailable: s.active != nil && s.active.hold == HoldAvailable,
	}
	if s.active != nil {
		shape := s.active.cursor.current()
		v.Active = shape.Clone()
		v.ActiveKind = s.active.cursor.Piece().Kind()
		v.X = s.active.x
		v.Y = s.active.y
		v.Rotation = s.active.cursor.Index()
		v.GhostY = s.active.y + s.board.DropDistance(shape, s.active.x, s.active.y)
	}
	if s.state != StateIdle {
		next := s.gen.Peek()
		v.Next = next.Shape(0)
		v.NextKind = next.Kind()
	}
	if s.hold.held {
		v.Hold = s.hold.piece.Shape(0)
		v.HoldKind = s.hold.piece.Kind()
	}
	return v
}
