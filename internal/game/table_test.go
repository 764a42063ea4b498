package game

import (
	"errors"
	"math"
	"testing"
)

func TestNewTableRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name                               string
		x, y, w, h, pocketRadius, mouthOff float64
	}{
		{"zero width", 0, 0, 0, 440, 26, 0},
		{"negative height", 0, 0, 880, -1, 26, 0},
		{"zero pocket", 0, 0, 880, 440, 0, 0},
		{"pocket too large", 0, 0, 880, 440, 110, 0},
		{"mouth offset beyond pocket", 0, 0, 880, 440, 26, 26},
		{"NaN origin", math.NaN(), 0, 880, 440, 26, 0},
		{"infinite width", 0, 0, math.Inf(1), 440, 26, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.x, tt.y, tt.w, tt.h, tt.pocketRadius, tt.mouthOff)
			if !errors.Is(err, ErrInvalidTable) {
				t.Errorf("err = %v, want ErrInvalidTable", err)
			}
		})
	}
}

func TestPocketOrder(t *testing.T) {
	table := NewStandardTable()
	pockets := table.PocketMouths()
	if len(pockets) != 6 {
		t.Fatalf("got %d pockets, want 6", len(pockets))
	}

	want := []struct {
		kind PocketKind
		pos  Vec2
	}{
		{PocketCorner, NewVec2(28, 28)},
		{PocketSide, NewVec2(468, 28)},
		{PocketCorner, NewVec2(908, 28)},
		{PocketCorner, NewVec2(28, 468)},
		{PocketSide, NewVec2(468, 468)},
		{PocketCorner, NewVec2(908, 468)},
	}
	for i, w := range want {
		p := pockets[i]
		if p.ID != i || p.Kind != w.kind || p.Position != w.pos {
			t.Errorf("pocket %d = %+v, want kind=%s pos=%v", i, p, w.kind, w.pos)
		}
		if p.Mouth != p.Position {
			t.Errorf("pocket %d: mouth %v should equal position with zero offset", i, p.Mouth)
		}
		if p.CaptureRadius != PocketRadius {
			t.Errorf("pocket %d: capture radius %v", i, p.CaptureRadius)
		}
	}
}

func TestPocketMouthOffsetMovesTowardCenter(t *testing.T) {
	table, err := NewTable(DefaultTableX, DefaultTableY, DefaultTableWidth, DefaultTableHeight, PocketRadius, 5)
	if err != nil {
		t.Fatal(err)
	}
	center := table.Center()
	for _, p := range table.PocketMouths() {
		if d := p.Mouth.Distance(p.Position); math.Abs(d-5) > eps {
			t.Errorf("pocket %d: mouth is %v from the rail point, want 5", p.ID, d)
		}
		if p.Mouth.Distance(center) >= p.Position.Distance(center) {
			t.Errorf("pocket %d: mouth did not move toward the center", p.ID)
		}
	}
}

func TestPocketMouthsReturnsCopy(t *testing.T) {
	table := NewStandardTable()
	pockets := table.PocketMouths()
	pockets[0].Mouth = NewVec2(0, 0)
	if table.PocketMouths()[0].Mouth != NewVec2(28, 28) {
		t.Error("mutating the returned slice changed the table")
	}
}

func TestPocketCaptures(t *testing.T) {
	p := NewStandardTable().PocketMouths()[0]
	reach := PocketRadius + CaptureBallFraction*BallRadius

	if !p.Captures(p.Mouth.Plus(NewVec2(reach-0.1, 0)), BallRadius, CaptureBallFraction) {
		t.Error("ball just inside the capture distance was not captured")
	}
	if p.Captures(p.Mouth.Plus(NewVec2(reach+0.1, 0)), BallRadius, CaptureBallFraction) {
		t.Error("ball outside the capture distance was captured")
	}
}

func TestCushionBounds(t *testing.T) {
	b := NewStandardTable().CushionBounds(BallRadius)
	want := Bounds{Left: 39, Right: 897, Top: 39, Bottom: 457}
	if b != want {
		t.Errorf("CushionBounds = %+v, want %+v", b, want)
	}
}

func TestTableContainsAndClamp(t *testing.T) {
	table := NewStandardTable()

	if !table.Contains(NewVec2(28, 28)) || !table.Contains(table.Center()) {
		t.Error("points on the surface should be contained")
	}
	if table.Contains(NewVec2(27.9, 100)) || table.Contains(NewVec2(100, 468.1)) {
		t.Error("points off the surface should not be contained")
	}

	tests := []struct {
		in, want Vec2
	}{
		{NewVec2(1000, 248), NewVec2(908, 248)},
		{NewVec2(-5, -5), NewVec2(28, 28)},
		{NewVec2(300, 600), NewVec2(300, 468)},
		{NewVec2(300, 200), NewVec2(300, 200)},
	}
	for _, tt := range tests {
		if got := table.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLiteralTableBuildsPockets(t *testing.T) {
	table := &Table{X: 0, Y: 0, Width: 400, Height: 200, PocketRadius: 20}
	if n := len(table.PocketMouths()); n != 6 {
		t.Errorf("literal table has %d pockets, want 6", n)
	}
}
