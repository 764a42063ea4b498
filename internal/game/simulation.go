package game

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrBallsMoving     = errors.New("balls are still moving")
	ErrCueBallCaptured = errors.New("cue ball is not on the table")
	ErrInvalidPower    = errors.New("invalid power")
	ErrInvalidAngle    = errors.New("invalid angle")
	ErrDegenerateAim   = errors.New("aim point coincides with the cue ball")
	ErrTableTooSmall   = errors.New("rack does not fit on the table")
)

// Simulation owns one table, its balls and the tick counter. It is not safe
// for concurrent use; Runner serializes access when a goroutine drives it.
type Simulation struct {
	table  *Table
	balls  []Ball
	params Params
	tick   uint64
	shots  int
}

// StepResult describes one completed tick.
type StepResult struct {
	Tick   uint64           `json:"tick"`
	Moving bool             `json:"moving"`
	Events []CollisionEvent `json:"events,omitempty"`
}

// BallSnapshot is the read-only view of a ball handed to renderers.
type BallSnapshot struct {
	ID       int     `json:"id"`
	Number   int     `json:"number"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Color    string  `json:"color"`
	Striped  bool    `json:"striped"`
	Captured bool    `json:"captured"`
}

// Snapshot is a copy of the simulation state between ticks.
type Snapshot struct {
	Tick           uint64         `json:"tick"`
	Moving         bool           `json:"moving"`
	RemainingBalls int            `json:"remaining_balls"`
	Shots          int            `json:"shots"`
	Balls          []BallSnapshot `json:"balls"`
}

// Geometry exposes the table and pockets so renderers draw what physics uses.
type Geometry struct {
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	PocketRadius float64  `json:"pocket_radius"`
	BallRadius   float64  `json:"ball_radius"`
	MaxPower     float64  `json:"max_power"`
	Pockets      []Pocket `json:"pockets"`
}

// NewSimulation racks a fresh set of balls on t.
func NewSimulation(t *Table, p Params) (*Simulation, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil table", ErrInvalidTable)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	balls := CreateRack(t)
	if !rackFits(t, balls, p) {
		return nil, ErrTableTooSmall
	}
	return &Simulation{table: t, balls: balls, params: p}, nil
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() StepResult {
	events := Step(s.table, s.balls, s.params)
	s.tick++
	return StepResult{Tick: s.tick, Moving: s.IsMoving(), Events: events}
}

// IsMoving reports whether any in-play ball has a nonzero velocity.
func (s *Simulation) IsMoving() bool {
	for i := range s.balls {
		b := &s.balls[i]
		if !b.IsCaptured() && !b.Velocity.IsZero() {
			return true
		}
	}
	return false
}

// ApplyImpulse strikes the cue ball toward angle (radians) with the given
// power. It is rejected, leaving every ball untouched, unless all balls are
// at rest.
func (s *Simulation) ApplyImpulse(angle, power float64) error {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return ErrInvalidAngle
	}
	if math.IsNaN(power) || power <= 0 || power > s.params.MaxPower {
		return fmt.Errorf("%w: %v not in (0, %v]", ErrInvalidPower, power, s.params.MaxPower)
	}
	if s.IsMoving() {
		return ErrBallsMoving
	}
	cue := s.cueBall()
	if cue == nil {
		return ErrCueBallCaptured
	}

	cue.Velocity = cue.Velocity.Plus(FromAngle(angle, power*s.params.ImpulseScale))
	s.shots++
	return nil
}

// ApplyImpulseToward strikes the cue ball in the direction of aim.
func (s *Simulation) ApplyImpulseToward(aim Vec2, power float64) error {
	if !aim.IsFinite() {
		return ErrInvalidAngle
	}
	cue := s.cueBall()
	if cue == nil {
		return ErrCueBallCaptured
	}
	dir := aim.Minus(cue.Position)
	if dir.MagnitudeSquared() < 1e-12 {
		return ErrDegenerateAim
	}
	return s.ApplyImpulse(dir.Angle(), power)
}

// Reset re-racks every ball. Only allowed at rest.
func (s *Simulation) Reset() error {
	if s.IsMoving() {
		return ErrBallsMoving
	}
	s.balls = CreateRack(s.table)
	s.shots = 0
	return nil
}

// RemainingBalls counts object balls still in play.
func (s *Simulation) RemainingBalls() int {
	n := 0
	for i := range s.balls {
		if s.balls[i].Number > 0 && !s.balls[i].IsCaptured() {
			n++
		}
	}
	return n
}

func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:           s.tick,
		Moving:         s.IsMoving(),
		RemainingBalls: s.RemainingBalls(),
		Shots:          s.shots,
		Balls:          make([]BallSnapshot, len(s.balls)),
	}
	for i := range s.balls {
		b := &s.balls[i]
		snap.Balls[i] = BallSnapshot{
			ID:       b.ID,
			Number:   b.Number,
			X:        b.Position.X,
			Y:        b.Position.Y,
			Radius:   b.Radius,
			Color:    b.Color,
			Striped:  b.IsStriped(),
			Captured: b.IsCaptured(),
		}
	}
	return snap
}

func (s *Simulation) Geometry() Geometry {
	return Geometry{
		X:            s.table.X,
		Y:            s.table.Y,
		Width:        s.table.Width,
		Height:       s.table.Height,
		PocketRadius: s.table.PocketRadius,
		BallRadius:   BallRadius,
		MaxPower:     s.params.MaxPower,
		Pockets:      s.table.PocketMouths(),
	}
}

// Balls returns a copy of the ball array.
func (s *Simulation) Balls() []Ball {
	out := make([]Ball, len(s.balls))
	copy(out, s.balls)
	return out
}

func (s *Simulation) Table() *Table  { return s.table }
func (s *Simulation) Params() Params { return s.params }
func (s *Simulation) Tick() uint64   { return s.tick }
func (s *Simulation) Shots() int     { return s.shots }

func (s *Simulation) cueBall() *Ball {
	for i := range s.balls {
		if s.balls[i].IsCue() {
			if s.balls[i].IsCaptured() {
				return nil
			}
			return &s.balls[i]
		}
	}
	return nil
}
