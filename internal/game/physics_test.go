package game

import (
	"math"
	"testing"
)

const eps = 1e-9

// setupBalls places balls on a standard table. Ball i gets number i, so ball 0
// is the cue ball.
func setupBalls(positions []Vec2, velocities []Vec2) (*Table, []Ball) {
	t := NewStandardTable()
	balls := make([]Ball, len(positions))
	for i, p := range positions {
		balls[i] = NewBall(i, i, "#FFFFFF", p, BallRadius)
		if i < len(velocities) {
			balls[i].Velocity = velocities[i]
		}
	}
	return t, balls
}

func totalMomentum(balls []Ball) Vec2 {
	var m Vec2
	for i := range balls {
		if !balls[i].IsCaptured() {
			m = m.Plus(balls[i].Momentum())
		}
	}
	return m
}

func totalEnergy(balls []Ball) float64 {
	var e float64
	for i := range balls {
		if !balls[i].IsCaptured() {
			e += balls[i].KineticEnergy()
		}
	}
	return e
}

func TestResolvePairConservesMomentumAndEnergy(t *testing.T) {
	a := NewBall(0, 0, CueColor, NewVec2(100, 100), BallRadius)
	b := NewBall(1, 1, "#FFD200", NewVec2(114, 106), 8)
	a.Velocity = NewVec2(4, 1.5)
	b.Velocity = NewVec2(-1, 0.5)

	p0 := a.Momentum().Plus(b.Momentum())
	e0 := a.KineticEnergy() + b.KineticEnergy()

	speed, ok := resolvePair(&a, &b)
	if !ok || speed <= 0 {
		t.Fatalf("expected a closing contact, got speed=%v ok=%v", speed, ok)
	}

	p1 := a.Momentum().Plus(b.Momentum())
	e1 := a.KineticEnergy() + b.KineticEnergy()
	if p1.Minus(p0).Magnitude() > eps {
		t.Errorf("momentum changed: before=%v after=%v", p0, p1)
	}
	if math.Abs(e1-e0) > eps {
		t.Errorf("kinetic energy changed: before=%v after=%v", e0, e1)
	}
	if d := a.Position.Distance(b.Position); math.Abs(d-(a.Radius+b.Radius)) > eps {
		t.Errorf("balls not separated to touching distance: d=%v", d)
	}
}

func TestResolvePairSeparatingKeepsVelocities(t *testing.T) {
	a := NewBall(0, 0, CueColor, NewVec2(100, 100), BallRadius)
	b := NewBall(1, 1, "#FFD200", NewVec2(120, 100), BallRadius)
	a.Velocity = NewVec2(-2, 0)
	b.Velocity = NewVec2(2, 0)

	if _, ok := resolvePair(&a, &b); ok {
		t.Fatal("separating pair should not exchange velocities")
	}
	if a.Velocity != NewVec2(-2, 0) || b.Velocity != NewVec2(2, 0) {
		t.Errorf("velocities changed: a=%v b=%v", a.Velocity, b.Velocity)
	}
	if d := a.Position.Distance(b.Position); math.Abs(d-22) > eps {
		t.Errorf("overlap not corrected: d=%v", d)
	}
}

func TestResolvePairCoincidentCentersIsNoop(t *testing.T) {
	a := NewBall(0, 0, CueColor, NewVec2(100, 100), BallRadius)
	b := NewBall(1, 1, "#FFD200", NewVec2(100, 100), BallRadius)
	a.Velocity = NewVec2(1, 0)

	if _, ok := resolvePair(&a, &b); ok {
		t.Fatal("coincident centers must be skipped")
	}
	if a.Position != b.Position || a.Velocity != NewVec2(1, 0) {
		t.Errorf("state changed for degenerate pair")
	}
}

func TestHeadOnEqualMassTransfersVelocity(t *testing.T) {
	// Cue moving right toward a resting ball one unit away.
	table, balls := setupBalls(
		[]Vec2{NewVec2(300, 248), NewVec2(323, 248)},
		[]Vec2{NewVec2(5, 0)},
	)

	events := Step(table, balls, DefaultParams())

	if !balls[0].Velocity.IsZero() {
		t.Errorf("cue ball should stop dead, got %v", balls[0].Velocity)
	}
	if math.Abs(balls[1].Velocity.X-5*FrictionFactor) > eps || balls[1].Velocity.Y != 0 {
		t.Errorf("object ball velocity = %v, want (%v, 0)", balls[1].Velocity, 5*FrictionFactor)
	}
	if p := totalMomentum(balls); math.Abs(p.X-BallRadius*5*FrictionFactor) > eps || p.Y != 0 {
		t.Errorf("momentum after contact = %v", p)
	}
	if d := balls[0].Position.Distance(balls[1].Position); d < 2*BallRadius-eps {
		t.Errorf("balls still overlap: d=%v", d)
	}

	found := false
	for _, ev := range events {
		if ev.Type == EventBall && ev.BallID == 0 && ev.TargetID == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("missing ball collision event, got %+v", events)
	}
}

func TestCornerCapture(t *testing.T) {
	table, balls := setupBalls(
		[]Vec2{NewVec2(DefaultTableX+40, DefaultTableY+40)},
		[]Vec2{NewVec2(-5, -5)},
	)

	var pocketEvents []CollisionEvent
	for tick := 0; tick < 50 && !balls[0].IsCaptured(); tick++ {
		for _, ev := range Step(table, balls, DefaultParams()) {
			if ev.Type == EventPocket {
				pocketEvents = append(pocketEvents, ev)
			}
		}
	}

	b := balls[0]
	if !b.IsCaptured() {
		t.Fatalf("ball was not captured, position=%v", b.Position)
	}
	if b.Position != CapturedPosition || !b.Velocity.IsZero() {
		t.Errorf("captured ball not parked: pos=%v vel=%v", b.Position, b.Velocity)
	}
	if len(pocketEvents) != 1 || pocketEvents[0].TargetID != 0 {
		t.Errorf("expected one capture in the top-left pocket, got %+v", pocketEvents)
	}
}

func TestBallAtPocketMouthIsCapturedInOneTick(t *testing.T) {
	for _, pk := range NewStandardTable().PocketMouths() {
		table, balls := setupBalls([]Vec2{pk.Mouth}, nil)

		events := Step(table, balls, DefaultParams())

		if !balls[0].IsCaptured() {
			t.Errorf("pocket %d (%s): ball at the mouth not captured after one tick, at %v", pk.ID, pk.Kind, balls[0].Position)
			continue
		}
		var captured []int
		for _, ev := range events {
			if ev.Type == EventPocket {
				captured = append(captured, ev.TargetID)
			}
		}
		if len(captured) != 1 || captured[0] != pk.ID {
			t.Errorf("pocket %d: capture events %v", pk.ID, captured)
		}
	}
}

func TestCaptureIsTerminal(t *testing.T) {
	table, balls := setupBalls(
		[]Vec2{NewVec2(200, 200), NewVec2(300, 200)},
		nil,
	)
	balls[1].capture()
	balls[0].Velocity = NewVec2(3, 0)

	for i := 0; i < 100; i++ {
		Step(table, balls, DefaultParams())
		if !balls[1].IsCaptured() || balls[1].Position != CapturedPosition || !balls[1].Velocity.IsZero() {
			t.Fatalf("tick %d: captured ball changed: %+v", i, balls[1])
		}
	}
}

func TestRestIsStable(t *testing.T) {
	table := NewStandardTable()
	balls := CreateRack(table)
	before := make([]Ball, len(balls))
	copy(before, balls)

	for i := 0; i < 10; i++ {
		if events := Step(table, balls, DefaultParams()); len(events) != 0 {
			t.Fatalf("tick %d: resting rack produced events %+v", i, events)
		}
	}
	for i := range balls {
		if balls[i] != before[i] {
			t.Errorf("ball %d moved at rest: %+v -> %+v", i, before[i], balls[i])
		}
	}
}

func TestFrictionIsMonotoneAndStops(t *testing.T) {
	table, balls := setupBalls(
		[]Vec2{NewStandardTable().Center()},
		[]Vec2{NewVec2(5, 0)},
	)

	prev := balls[0].Velocity.Magnitude()
	ticks := 0
	for ; ticks < 5000 && !balls[0].Velocity.IsZero(); ticks++ {
		Step(table, balls, DefaultParams())
		speed := balls[0].Velocity.Magnitude()
		if speed > prev+eps {
			t.Fatalf("tick %d: speed increased %v -> %v", ticks, prev, speed)
		}
		prev = speed
	}
	if !balls[0].Velocity.IsZero() {
		t.Fatalf("ball still moving after %d ticks", ticks)
	}
	if balls[0].IsCaptured() {
		t.Fatal("ball rolling along the center line should not be pocketed")
	}
}

func TestCushionReflectionAndContainment(t *testing.T) {
	table, balls := setupBalls(
		[]Vec2{NewVec2(DefaultTableX+DefaultTableWidth-BallRadius-2, 248)},
		[]Vec2{NewVec2(6, 0)},
	)

	events := Step(table, balls, DefaultParams())

	bounds := table.CushionBounds(BallRadius)
	if balls[0].Position.X != bounds.Right {
		t.Errorf("ball not clamped to right cushion: x=%v want %v", balls[0].Position.X, bounds.Right)
	}
	if balls[0].Velocity.X >= 0 {
		t.Errorf("x velocity not reflected: %v", balls[0].Velocity)
	}
	if len(events) != 1 || events[0].Type != EventCushion || events[0].TargetID != RailRight {
		t.Errorf("expected one right-rail event, got %+v", events)
	}
}

func TestBreakKeepsBallsContainedAndApart(t *testing.T) {
	sim, err := NewSimulation(NewStandardTable(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.ApplyImpulse(0, MaxPower); err != nil {
		t.Fatal(err)
	}

	energy := totalEnergy(sim.balls)
	for tick := 0; tick < 3000 && sim.IsMoving(); tick++ {
		sim.Step()

		if e := totalEnergy(sim.balls); e > energy+1e-6 {
			t.Fatalf("tick %d: kinetic energy grew %v -> %v", tick, energy, e)
		} else {
			energy = e
		}

		for i := range sim.balls {
			b := &sim.balls[i]
			if b.IsCaptured() {
				continue
			}
			bounds := sim.table.CushionBounds(b.Radius)
			if b.Position.X < bounds.Left || b.Position.X > bounds.Right ||
				b.Position.Y < bounds.Top || b.Position.Y > bounds.Bottom {
				t.Fatalf("tick %d: ball %d outside cushions at %v", tick, b.ID, b.Position)
			}
			for j := i + 1; j < len(sim.balls); j++ {
				o := &sim.balls[j]
				if o.IsCaptured() {
					continue
				}
				if d := b.Position.Distance(o.Position); d < b.Radius+o.Radius-1e-6 {
					t.Fatalf("tick %d: balls %d and %d overlap by %v", tick, b.ID, o.ID, b.Radius+o.Radius-d)
				}
			}
		}
	}
	if sim.IsMoving() {
		t.Fatal("break did not come to rest")
	}
}

func assertNoOverlap(t *testing.T, balls []Ball) {
	t.Helper()
	for i := range balls {
		for j := i + 1; j < len(balls); j++ {
			minD := balls[i].Radius + balls[j].Radius
			if d := balls[i].Position.Distance(balls[j].Position); d < minD-1e-6 {
				t.Errorf("balls %d and %d overlap by %v", i, j, minD-d)
			}
		}
	}
}

func TestChainedContactsAreSeparated(t *testing.T) {
	// A fast ball driven into a tight row: one correction pass pushes the
	// first object ball into the second.
	table, balls := setupBalls(
		[]Vec2{NewVec2(300, 248), NewVec2(318, 248), NewVec2(339, 248), NewVec2(360, 248)},
		[]Vec2{NewVec2(11, 0)},
	)

	for tick := 0; tick < 5; tick++ {
		Step(table, balls, DefaultParams())
		assertNoOverlap(t, balls)
	}
}

func TestBallPinnedOnRailIsSeparated(t *testing.T) {
	bounds := NewStandardTable().CushionBounds(BallRadius)
	table, balls := setupBalls(
		[]Vec2{NewVec2(bounds.Right-17, 248), NewVec2(bounds.Right, 248)},
		nil,
	)

	Step(table, balls, DefaultParams())

	assertNoOverlap(t, balls)
	if balls[1].Position.X != bounds.Right {
		t.Errorf("rail ball moved to %v, want %v", balls[1].Position.X, bounds.Right)
	}
	if balls[0].Position.X != bounds.Right-2*BallRadius {
		t.Errorf("free ball at %v, want %v", balls[0].Position.X, bounds.Right-2*BallRadius)
	}
}

func TestBallWedgedBetweenRailBallsIsSeparated(t *testing.T) {
	bounds := NewStandardTable().CushionBounds(BallRadius)
	// Two balls on the right rail squeeze a third; far from any pocket.
	table, balls := setupBalls(
		[]Vec2{NewVec2(bounds.Right, 150), NewVec2(bounds.Right-10, 160), NewVec2(bounds.Right, 170)},
		nil,
	)

	Step(table, balls, DefaultParams())

	assertNoOverlap(t, balls)
	for i := range balls {
		if balls[i].IsCaptured() {
			t.Fatalf("ball %d captured", i)
		}
		b := table.CushionBounds(balls[i].Radius)
		p := balls[i].Position
		if p.X < b.Left || p.X > b.Right || p.Y < b.Top || p.Y > b.Bottom {
			t.Errorf("ball %d outside cushions at %v", i, p)
		}
	}
}

func TestSnapZeroesSlowComponents(t *testing.T) {
	table, balls := setupBalls(
		[]Vec2{NewVec2(400, 248)},
		[]Vec2{NewVec2(0.005, 2)},
	)
	Step(table, balls, DefaultParams())
	if balls[0].Velocity.X != 0 {
		t.Errorf("slow x component not snapped: %v", balls[0].Velocity)
	}
	if balls[0].Velocity.Y == 0 {
		t.Errorf("fast y component snapped: %v", balls[0].Velocity)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		ok     bool
	}{
		{"defaults", func(p *Params) {}, true},
		{"lightest accepted friction", func(p *Params) { p.FrictionFactor = 0.995 }, true},
		{"heaviest accepted friction", func(p *Params) { p.FrictionFactor = MinFrictionFactor }, true},
		{"no friction", func(p *Params) { p.FrictionFactor = 1 }, false},
		{"zero friction", func(p *Params) { p.FrictionFactor = 0 }, false},
		{"friction far below range", func(p *Params) { p.FrictionFactor = 0.5 }, false},
		{"friction above one", func(p *Params) { p.FrictionFactor = 1.01 }, false},
		{"zero snap", func(p *Params) { p.SnapThreshold = 0 }, false},
		{"negative snap", func(p *Params) { p.SnapThreshold = -0.1 }, false},
		{"NaN impulse", func(p *Params) { p.ImpulseScale = math.NaN() }, false},
		{"zero max power", func(p *Params) { p.MaxPower = 0 }, false},
		{"capture fraction above one", func(p *Params) { p.CaptureBallFraction = 1.5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
