package game

import "math"

// AimGuide is where the aiming line drawn from the cue ball should end.
type AimGuide struct {
	From      Vec2 `json:"from"`
	To        Vec2 `json:"to"`
	HitBall   bool `json:"hit_ball"`
	HitBallID int  `json:"hit_ball_id"`
}

// AimGuide clamps target to the table and then clips the cue->target segment
// at the first object ball whose center passes within its radius plus
// AimBallMargin of the segment. Without a cue ball on the table the guide is
// empty and From == To == target.
func (s *Simulation) AimGuide(target Vec2) AimGuide {
	cue := s.cueBall()
	if cue == nil || !target.IsFinite() {
		return AimGuide{From: target, To: target, HitBallID: -1}
	}

	from := cue.Position
	to := s.table.Clamp(target)
	guide := AimGuide{From: from, To: to, HitBallID: -1}

	d := to.Minus(from)
	denom := d.MagnitudeSquared()
	if denom == 0 {
		return guide
	}

	minT := math.Inf(1)
	for i := range s.balls {
		b := &s.balls[i]
		if b == cue || b.IsCaptured() {
			continue
		}
		t := b.Position.Minus(from).Dot(d) / denom
		if t < 0 || t > 1 {
			continue
		}
		closest := from.Plus(d.Times(t))
		if closest.Distance(b.Position) <= b.Radius+AimBallMargin && t < minT {
			minT = t
			guide.To = closest
			guide.HitBall = true
			guide.HitBallID = b.ID
		}
	}
	return guide
}
