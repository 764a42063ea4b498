package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTable is returned by NewTable for impossible geometry.
var ErrInvalidTable = errors.New("invalid table geometry")

// PocketKind distinguishes corner pockets from the two mid-rail pockets.
type PocketKind string

const (
	PocketCorner PocketKind = "corner"
	PocketSide   PocketKind = "side"
)

// Pocket is one of the six capture points around the table.
// Mouth is the effective capture center; Position is the nominal rail point.
type Pocket struct {
	ID            int        `json:"id"`
	Kind          PocketKind `json:"kind"`
	Position      Vec2       `json:"position"`
	Mouth         Vec2       `json:"mouth"`
	CaptureRadius float64    `json:"capture_radius"`
}

// Captures reports whether a ball centered at pos is inside the pocket mouth.
// The capture distance grows by fraction of the ball's own radius.
func (p Pocket) Captures(pos Vec2, ballRadius, fraction float64) bool {
	return pos.Distance(p.Mouth) < p.CaptureRadius+fraction*ballRadius
}

// Bounds is the rectangle a ball center must stay within.
type Bounds struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Table is the axis-aligned playing surface. It is immutable once built.
type Table struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	PocketRadius float64 `json:"pocket_radius"`
	MouthOffset  float64 `json:"mouth_offset"` // positive moves mouths toward the table center
	pockets      []Pocket
}

// NewTable validates the geometry and derives the six pockets.
func NewTable(x, y, width, height, pocketRadius, mouthOffset float64) (*Table, error) {
	for _, v := range []float64{x, y, width, height, pocketRadius, mouthOffset} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value", ErrInvalidTable)
		}
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width and height must be positive", ErrInvalidTable)
	}
	if pocketRadius <= 0 || pocketRadius >= math.Min(width, height)/4 {
		return nil, fmt.Errorf("%w: pocket radius %v out of range", ErrInvalidTable, pocketRadius)
	}
	if math.Abs(mouthOffset) >= pocketRadius {
		return nil, fmt.Errorf("%w: mouth offset %v exceeds pocket radius", ErrInvalidTable, mouthOffset)
	}

	t := &Table{
		X:            x,
		Y:            y,
		Width:        width,
		Height:       height,
		PocketRadius: pocketRadius,
		MouthOffset:  mouthOffset,
	}
	t.pockets = t.buildPockets()
	return t, nil
}

// NewStandardTable returns the default table used by the browser client.
func NewStandardTable() *Table {
	t, err := NewTable(DefaultTableX, DefaultTableY, DefaultTableWidth, DefaultTableHeight, PocketRadius, 0)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) buildPockets() []Pocket {
	nominal := []struct {
		kind PocketKind
		pos  Vec2
	}{
		{PocketCorner, Vec2{X: t.X, Y: t.Y}},
		{PocketSide, Vec2{X: t.X + t.Width/2, Y: t.Y}},
		{PocketCorner, Vec2{X: t.X + t.Width, Y: t.Y}},
		{PocketCorner, Vec2{X: t.X, Y: t.Y + t.Height}},
		{PocketSide, Vec2{X: t.X + t.Width/2, Y: t.Y + t.Height}},
		{PocketCorner, Vec2{X: t.X + t.Width, Y: t.Y + t.Height}},
	}

	center := t.Center()
	pockets := make([]Pocket, len(nominal))
	for i, n := range nominal {
		dir := center.Minus(n.pos).Normalize()
		pockets[i] = Pocket{
			ID:            i,
			Kind:          n.kind,
			Position:      n.pos,
			Mouth:         n.pos.Plus(dir.Times(t.MouthOffset)),
			CaptureRadius: t.PocketRadius,
		}
	}
	return pockets
}

// pocketList returns the derived pockets, building them for tables that were
// declared as literals instead of through NewTable.
func (t *Table) pocketList() []Pocket {
	if t.pockets == nil {
		return t.buildPockets()
	}
	return t.pockets
}

func (t *Table) Center() Vec2 {
	return Vec2{X: t.X + t.Width/2, Y: t.Y + t.Height/2}
}

// CushionBounds returns the rectangle a center of a ball with radius r must stay in.
func (t *Table) CushionBounds(r float64) Bounds {
	return Bounds{
		Left:   t.X + r,
		Right:  t.X + t.Width - r,
		Top:    t.Y + r,
		Bottom: t.Y + t.Height - r,
	}
}

// PocketMouths returns a copy of the six pockets: top-left, top-middle,
// top-right, bottom-left, bottom-middle, bottom-right.
func (t *Table) PocketMouths() []Pocket {
	pockets := t.pocketList()
	out := make([]Pocket, len(pockets))
	copy(out, pockets)
	return out
}

// Contains reports whether p lies on the playing surface (rails included).
func (t *Table) Contains(p Vec2) bool {
	return p.X >= t.X && p.X <= t.X+t.Width && p.Y >= t.Y && p.Y <= t.Y+t.Height
}

// Clamp moves p onto the playing surface.
func (t *Table) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Max(t.X, math.Min(t.X+t.Width, p.X)),
		Y: math.Max(t.Y, math.Min(t.Y+t.Height, p.Y)),
	}
}
