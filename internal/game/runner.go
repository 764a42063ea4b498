package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// Listener receives what a running table produces. Calls come from the
// runner goroutine, never while the runner holds its lock.
type Listener interface {
	// OnTick is called after every tick during which balls were moving.
	OnTick(token string, snap Snapshot, events []CollisionEvent)
	// OnRest is called once when the table transitions from Moving to AtRest.
	OnRest(token string, snap Snapshot)
}

// Runner drives one Simulation at a fixed tick rate. The runner goroutine is
// the only writer of ball state; shots and reads go through its mutex and
// readers get copies.
type Runner struct {
	token    string
	sim      *Simulation
	listener Listener
	interval time.Duration

	mu           sync.Mutex
	moving       bool
	lastActivity time.Time
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewRunner wraps sim. tickRate is in ticks per second; <= 0 selects DefaultTickRate.
func NewRunner(token string, sim *Simulation, tickRate int, l Listener) *Runner {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Runner{
		token:        token,
		sim:          sim,
		listener:     l,
		interval:     time.Second / time.Duration(tickRate),
		lastActivity: time.Now(),
	}
}

// Start launches the tick loop. It runs until Stop or until ctx is done.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Printf("[TABLE] Runner for table %s stopping", r.token)
				return
			case <-ticker.C:
				r.tick()
			}
		}
	}()
}

// Stop cancels the tick loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// StepN advances the simulation n ticks synchronously, notifying the listener
// exactly as the loop does.
func (r *Runner) StepN(n int) {
	for i := 0; i < n; i++ {
		r.tick()
	}
}

func (r *Runner) tick() {
	r.mu.Lock()
	res := r.sim.Step()
	wasMoving := r.moving
	r.moving = res.Moving
	var snap Snapshot
	if wasMoving || res.Moving {
		snap = r.sim.Snapshot()
	}
	r.mu.Unlock()

	if r.listener == nil {
		return
	}
	if res.Moving {
		r.listener.OnTick(r.token, snap, res.Events)
	} else if wasMoving {
		r.listener.OnRest(r.token, snap)
	}
}

// Shoot applies a shot by angle. The error is the simulation's rejection.
func (r *Runner) Shoot(angle, power float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sim.ApplyImpulse(angle, power); err != nil {
		return err
	}
	r.moving = true
	r.lastActivity = time.Now()
	return nil
}

// Apply applies a shot request. When the shot is aimed at a point the
// returned record carries the resolved angle.
func (r *Runner) Apply(shot ShotParams) (ShotRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	angle := shot.Angle
	var err error
	if shot.Aim != nil {
		if cue := r.sim.cueBall(); cue != nil {
			angle = shot.Aim.Minus(cue.Position).Angle()
		}
		err = r.sim.ApplyImpulseToward(*shot.Aim, shot.Power)
	} else {
		err = r.sim.ApplyImpulse(shot.Angle, shot.Power)
	}
	if err != nil {
		return ShotRecord{}, err
	}
	r.moving = true
	r.lastActivity = time.Now()
	return ShotRecord{
		Number: r.sim.Shots(),
		Tick:   r.sim.Tick(),
		Angle:  angle,
		Power:  shot.Power,
	}, nil
}

// Reset re-racks the table when it is at rest.
func (r *Runner) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sim.Reset(); err != nil {
		return err
	}
	r.lastActivity = time.Now()
	return nil
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sim.Snapshot()
}

func (r *Runner) AimGuide(target Vec2) AimGuide {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sim.AimGuide(target)
}

func (r *Runner) IsMoving() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sim.IsMoving()
}

func (r *Runner) Geometry() Geometry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sim.Geometry()
}

// Touch records external activity (viewers aiming) for idle tracking.
func (r *Runner) Touch() {
	r.mu.Lock()
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

func (r *Runner) LastActivity() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

func (r *Runner) Token() string { return r.token }
