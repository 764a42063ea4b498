package game

// CueColor is the cue ball's display color.
const CueColor = "#FFFFFF"

// ballPalette lists object balls in rack order.
var ballPalette = []struct {
	number int
	color  string
}{
	{1, "#FFD200"}, {2, "#0E6FFF"}, {3, "#E53935"}, {4, "#8E3AC1"}, {5, "#FF7F00"},
	{6, "#8B4A2F"}, {7, "#1E8A3A"}, {8, "#000000"}, {9, "#FFD200"}, {10, "#0E6FFF"},
	{11, "#FF6B6B"}, {12, "#B57EDC"}, {13, "#FFC58A"}, {14, "#8B4A2F"}, {15, "#66C175"},
}

var rackRows = []int{5, 4, 3, 2, 1}

// CreateRack returns the cue ball plus fifteen object balls in a 5-4-3-2-1
// triangle. Ball IDs equal their slice index. The output depends only on the
// table geometry.
func CreateRack(t *Table) []Ball {
	balls := make([]Ball, 0, NumBalls)
	center := t.Center()

	balls = append(balls, NewBall(0, 0, CueColor, Vec2{X: t.X + t.Width*CueStartFraction, Y: center.Y}, BallRadius))

	spacing := 2 * BallRadius
	startX := t.X + t.Width*RackBaseFraction
	idx := 0
	for row, size := range rackRows {
		x := startX + float64(row)*spacing*RackRowStepFactor
		totalH := float64(size-1) * spacing
		for col := 0; col < size; col++ {
			y := center.Y - totalH/2 + float64(col)*spacing
			def := ballPalette[idx]
			balls = append(balls, NewBall(len(balls), def.number, def.color, Vec2{X: x, Y: y}, BallRadius))
			idx++
		}
	}
	return balls
}

// rackFits reports whether every racked ball starts inside the cushions and
// clear of every pocket.
func rackFits(t *Table, balls []Ball, p Params) bool {
	pockets := t.PocketMouths()
	for i := range balls {
		b := &balls[i]
		bounds := t.CushionBounds(b.Radius)
		if b.Position.X < bounds.Left || b.Position.X > bounds.Right ||
			b.Position.Y < bounds.Top || b.Position.Y > bounds.Bottom {
			return false
		}
		for _, pk := range pockets {
			if pk.Captures(b.Position, b.Radius, p.CaptureBallFraction) {
				return false
			}
		}
	}
	return true
}
