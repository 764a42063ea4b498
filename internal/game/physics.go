package game

import "math"

// EventType classifies a collision event.
type EventType string

const (
	EventBall    EventType = "ball"
	EventCushion EventType = "cushion"
	EventPocket  EventType = "pocket"
)

// Rails, used as TargetID of cushion events.
const (
	RailLeft = iota
	RailRight
	RailTop
	RailBottom
)

// CollisionEvent records a contact during a tick, for sound playback and HUD.
type CollisionEvent struct {
	Type     EventType `json:"type"`
	BallID   int       `json:"ball_id"`
	TargetID int       `json:"target_id"` // ball ID, rail, or pocket ID
	Speed    float64   `json:"speed"`     // impact speed
}

// Step advances balls by exactly one tick on table t:
// integration with geometric friction, velocity snapping, cushion reflection,
// pocket capture, then pairwise elastic collisions with positional correction
// relaxed until no pair overlaps.
// Balls are addressed by index and mutated in place.
func Step(t *Table, balls []Ball, p Params) []CollisionEvent {
	var events []CollisionEvent
	pockets := t.pocketList()

	for i := range balls {
		b := &balls[i]
		if b.IsCaptured() {
			continue
		}

		integrate(b, p)
		events = reflectCushions(b, t.CushionBounds(b.Radius), events)

		for _, pk := range pockets {
			if pk.Captures(b.Position, b.Radius, p.CaptureBallFraction) {
				speed := b.Velocity.Magnitude()
				b.capture()
				events = append(events, CollisionEvent{Type: EventPocket, BallID: b.ID, TargetID: pk.ID, Speed: speed})
				break
			}
		}
	}

	for i := 0; i < len(balls); i++ {
		a := &balls[i]
		if a.IsCaptured() {
			continue
		}
		for j := i + 1; j < len(balls); j++ {
			b := &balls[j]
			if b.IsCaptured() {
				continue
			}
			if speed, ok := resolvePair(a, b); ok {
				events = append(events, CollisionEvent{Type: EventBall, BallID: a.ID, TargetID: b.ID, Speed: speed})
			}
		}
	}

	// Positional correction can push a ball past a rail; put it back.
	for i := range balls {
		if !balls[i].IsCaptured() {
			containBall(t, &balls[i])
		}
	}

	relaxOverlaps(t, balls)
	return events
}

// relaxOverlaps repeats positional correction until no in-play pair overlaps
// by more than overlapTolerance or maxRelaxPasses is reached. One pass can
// leave chained contacts (and balls pinned against a rail) overlapping.
// Velocities are not touched; the exchange happened in the first pass.
func relaxOverlaps(t *Table, balls []Ball) {
	for pass := 0; pass < maxRelaxPasses; pass++ {
		worst := 0.0
		for i := 0; i < len(balls); i++ {
			a := &balls[i]
			if a.IsCaptured() {
				continue
			}
			for j := i + 1; j < len(balls); j++ {
				b := &balls[j]
				if b.IsCaptured() {
					continue
				}
				if o := separate(t, a, b); o > worst {
					worst = o
				}
			}
		}
		if worst <= overlapTolerance {
			return
		}
	}
}

// separate pushes an overlapping pair apart along the line of centers while
// keeping both inside the cushions. A ball held by a rail stays put and its
// partner takes the whole correction. It returns the overlap it found.
func separate(t *Table, a, b *Ball) float64 {
	delta := b.Position.Minus(a.Position)
	d := delta.Magnitude()
	minD := a.Radius + b.Radius
	if d == 0 || d >= minD-overlapTolerance {
		return 0
	}

	n := delta.Times(1 / d)
	overlap := minD - d
	a.Position = a.Position.Minus(n.Times(overlap / 2))
	containBall(t, a)
	b.Position = a.Position.Plus(n.Times(minD))
	if containBall(t, b) {
		a.Position = b.Position.Minus(n.Times(minD))
		containBall(t, a)
	}
	return overlap
}

// containBall clamps the ball center into the cushion bounds and reports
// whether it moved.
func containBall(t *Table, b *Ball) bool {
	bounds := t.CushionBounds(b.Radius)
	x := math.Max(bounds.Left, math.Min(bounds.Right, b.Position.X))
	y := math.Max(bounds.Top, math.Min(bounds.Bottom, b.Position.Y))
	moved := x != b.Position.X || y != b.Position.Y
	b.Position = Vec2{X: x, Y: y}
	return moved
}

// integrate moves the ball one tick and applies friction and snapping.
func integrate(b *Ball, p Params) {
	b.Position = b.Position.Plus(b.Velocity)
	b.Velocity = b.Velocity.Times(p.FrictionFactor)

	if math.Abs(b.Velocity.X) < p.SnapThreshold {
		b.Velocity.X = 0
	}
	if math.Abs(b.Velocity.Y) < p.SnapThreshold {
		b.Velocity.Y = 0
	}
}

// reflectCushions clamps the center into bounds and negates the velocity
// component of each crossed axis. Axes are independent, so a corner hit
// reflects both in the same tick.
func reflectCushions(b *Ball, bounds Bounds, events []CollisionEvent) []CollisionEvent {
	hit := func(rail int, speed float64) {
		events = append(events, CollisionEvent{Type: EventCushion, BallID: b.ID, TargetID: rail, Speed: math.Abs(speed)})
	}

	if b.Position.X < bounds.Left {
		b.Position.X = bounds.Left
		hit(RailLeft, b.Velocity.X)
		b.Velocity.X = -b.Velocity.X
	} else if b.Position.X > bounds.Right {
		b.Position.X = bounds.Right
		hit(RailRight, b.Velocity.X)
		b.Velocity.X = -b.Velocity.X
	}

	if b.Position.Y < bounds.Top {
		b.Position.Y = bounds.Top
		hit(RailTop, b.Velocity.Y)
		b.Velocity.Y = -b.Velocity.Y
	} else if b.Position.Y > bounds.Bottom {
		b.Position.Y = bounds.Bottom
		hit(RailBottom, b.Velocity.Y)
		b.Velocity.Y = -b.Velocity.Y
	}

	return events
}

// resolvePair separates two overlapping balls and exchanges the normal
// components of their velocities (1-D elastic collision with unequal masses).
// It returns the closing speed and whether velocities were exchanged.
func resolvePair(a, b *Ball) (float64, bool) {
	delta := b.Position.Minus(a.Position)
	d := delta.Magnitude()
	minD := a.Radius + b.Radius
	if !(d > 0 && d < minD) {
		return 0, false
	}

	n := delta.Times(1 / d)
	overlap := (minD - d) / 2
	a.Position = a.Position.Minus(n.Times(overlap))
	b.Position = b.Position.Plus(n.Times(overlap))

	tg := n.LeftNormal()
	vAn := a.Velocity.Dot(n)
	vAt := a.Velocity.Dot(tg)
	vBn := b.Velocity.Dot(n)
	vBt := b.Velocity.Dot(tg)

	closing := vAn - vBn
	m1, m2 := a.Mass, b.Mass
	// Already separating pairs keep their velocities; the overlap was positional only.
	if closing <= 0 || m1+m2 <= 0 {
		return 0, false
	}

	vAn2 := (vAn*(m1-m2) + 2*m2*vBn) / (m1 + m2)
	vBn2 := (vBn*(m2-m1) + 2*m1*vAn) / (m1 + m2)

	a.Velocity = n.Times(vAn2).Plus(tg.Times(vAt))
	b.Velocity = n.Times(vBn2).Plus(tg.Times(vBt))

	return closing, true
}
