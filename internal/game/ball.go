package game

// BallState is the lifecycle of a ball. Captured is terminal.
type BallState uint8

const (
	StateInPlay BallState = iota
	StateCaptured
)

func (s BallState) String() string {
	switch s {
	case StateInPlay:
		return "in_play"
	case StateCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

// Ball is a rigid disc. Mass equals radius (uniform-density disc convention).
type Ball struct {
	ID       int       `json:"id"`
	Number   int       `json:"number"` // 0 = cue ball
	Color    string    `json:"color"`
	Position Vec2      `json:"position"`
	Velocity Vec2      `json:"velocity"`
	Radius   float64   `json:"radius"`
	Mass     float64   `json:"mass"`
	State    BallState `json:"state"`
}

func NewBall(id, number int, color string, pos Vec2, radius float64) Ball {
	return Ball{
		ID:       id,
		Number:   number,
		Color:    color,
		Position: pos,
		Radius:   radius,
		Mass:     radius,
		State:    StateInPlay,
	}
}

func (b *Ball) IsCaptured() bool {
	return b.State == StateCaptured
}

func (b *Ball) IsCue() bool {
	return b.Number == 0
}

// IsStriped reports whether the ball is drawn as a stripe (9-15).
func (b *Ball) IsStriped() bool {
	return b.Number >= 9 && b.Number <= 15
}

func (b *Ball) Momentum() Vec2 {
	return b.Velocity.Times(b.Mass)
}

func (b *Ball) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.MagnitudeSquared()
}

// capture parks the ball off-table. There is no way back to StateInPlay.
func (b *Ball) capture() {
	b.Velocity = Vec2{}
	b.Position = CapturedPosition
	b.State = StateCaptured
}
