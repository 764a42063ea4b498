package game

import (
	"math"
	"testing"
)

func TestVec2Arithmetic(t *testing.T) {
	a := NewVec2(3, 4)
	b := NewVec2(-1, 2)

	if got := a.Plus(b); got != NewVec2(2, 6) {
		t.Errorf("Plus = %v", got)
	}
	if got := a.Minus(b); got != NewVec2(4, 2) {
		t.Errorf("Minus = %v", got)
	}
	if got := a.Times(2); got != NewVec2(6, 8) {
		t.Errorf("Times = %v", got)
	}
	if got := a.Dot(b); got != 5 {
		t.Errorf("Dot = %v", got)
	}
	if got := a.Magnitude(); got != 5 {
		t.Errorf("Magnitude = %v", got)
	}
	if got := a.MagnitudeSquared(); got != 25 {
		t.Errorf("MagnitudeSquared = %v", got)
	}
	if got := a.Distance(b); math.Abs(got-math.Sqrt(20)) > eps {
		t.Errorf("Distance = %v", got)
	}
	if got := a.Invert(); got != NewVec2(-3, -4) {
		t.Errorf("Invert = %v", got)
	}
}

func TestVec2Normalize(t *testing.T) {
	n := NewVec2(3, 4).Normalize()
	if math.Abs(n.Magnitude()-1) > eps {
		t.Errorf("normalized magnitude = %v", n.Magnitude())
	}
	if z := (Vec2{}).Normalize(); !z.IsZero() {
		t.Errorf("zero vector normalized to %v", z)
	}
}

func TestVec2Normals(t *testing.T) {
	v := NewVec2(1, 0)
	if got := v.RightNormal(); got != NewVec2(0, -1) {
		t.Errorf("RightNormal = %v", got)
	}
	if got := v.LeftNormal(); got != NewVec2(0, 1) {
		t.Errorf("LeftNormal = %v", got)
	}
	if v.Dot(v.RightNormal()) != 0 || v.Dot(v.LeftNormal()) != 0 {
		t.Error("normals are not perpendicular")
	}
}

func TestFromAngleRoundTrip(t *testing.T) {
	for _, angle := range []float64{0, math.Pi / 6, math.Pi / 2, -2.5, 3} {
		v := FromAngle(angle, 7)
		if math.Abs(v.Magnitude()-7) > eps {
			t.Errorf("angle %v: length %v", angle, v.Magnitude())
		}
		if math.Abs(v.Angle()-angle) > eps {
			t.Errorf("angle %v: round trip gave %v", angle, v.Angle())
		}
	}
}

func TestVec2IsFinite(t *testing.T) {
	tests := []struct {
		v    Vec2
		want bool
	}{
		{NewVec2(1, 2), true},
		{NewVec2(math.NaN(), 0), false},
		{NewVec2(0, math.Inf(1)), false},
		{NewVec2(math.Inf(-1), 0), false},
	}
	for _, tt := range tests {
		if got := tt.v.IsFinite(); got != tt.want {
			t.Errorf("IsFinite(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
