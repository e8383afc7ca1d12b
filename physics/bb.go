package physics

import (
	"fmt"
	"math"

	"github.com/setanarut/vec"
)

// BB is an axis-aligned 2D bounding box. (left, bottom, right, top)
type BB struct {
	L, B, R, T float64
}

// NewBB is convenience constructor for BB structs.
func NewBB(l, b, r, t float64) BB {
	return BB{L: l, B: b, R: r, T: t}
}

// EmptyBB returns an inverted box that any Merge or Expand replaces.
func EmptyBB() BB {
	return BB{L: infinity, B: infinity, R: -infinity, T: -infinity}
}

func (bb BB) String() string {
	return fmt.Sprintf("%v %v %v %v", bb.L, bb.B, bb.R, bb.T)
}

// NewBBForExtents constructs a BB centered on a point with the given extents (half sizes).
func NewBBForExtents(c vec.Vec2, hw, hh float64) BB {
	return BB{
		L: c.X - hw,
		B: c.Y - hh,
		R: c.X + hw,
		T: c.Y + hh,
	}
}

// NewBBForCircle constructs a BB for a circle with the given position and radius.
func NewBBForCircle(p vec.Vec2, r float64) BB {
	return NewBBForExtents(p, r, r)
}

// IsValid reports whether the box is not inverted.
func (bb BB) IsValid() bool {
	return bb.L <= bb.R && bb.B <= bb.T
}

// Intersects returns true if a and b intersect.
func (bb BB) Intersects(b BB) bool {
	return bb.L <= b.R && b.L <= bb.R && bb.B <= b.T && b.B <= bb.T
}

// Contains returns true if other lies completely within bb.
func (bb BB) Contains(other BB) bool {
	return bb.L <= other.L && bb.R >= other.R && bb.B <= other.B && bb.T >= other.T
}

// ContainsVect returns true if bb contains v.
func (bb BB) ContainsVect(v vec.Vec2) bool {
	return bb.L <= v.X && bb.R >= v.X && bb.B <= v.Y && bb.T >= v.Y
}

// Merge returns a bounding box that holds both bounding boxes.
func (bb BB) Merge(b BB) BB {
	return BB{
		math.Min(bb.L, b.L),
		math.Min(bb.B, b.B),
		math.Max(bb.R, b.R),
		math.Max(bb.T, b.T),
	}
}

// Expand returns a bounding box that holds both bb and v.
func (bb BB) Expand(v vec.Vec2) BB {
	return BB{
		math.Min(bb.L, v.X),
		math.Min(bb.B, v.Y),
		math.Max(bb.R, v.X),
		math.Max(bb.T, v.Y),
	}
}

// Grow returns bb pushed outwards by margin on every side.
func (bb BB) Grow(margin float64) BB {
	return BB{bb.L - margin, bb.B - margin, bb.R + margin, bb.T + margin}
}

// Center returns the center of a bounding box.
func (bb BB) Center() vec.Vec2 {
	return vec.Vec2{X: (bb.L + bb.R) * 0.5, Y: (bb.B + bb.T) * 0.5}
}

// Extents returns the half width and half height.
func (bb BB) Extents() vec.Vec2 {
	return vec.Vec2{X: (bb.R - bb.L) * 0.5, Y: (bb.T - bb.B) * 0.5}
}

// Area returns the area of the bounding box.
func (bb BB) Area() float64 {
	return (bb.R - bb.L) * (bb.T - bb.B)
}

// MergedArea merges a and b and returns the area of the merged bounding box.
func (bb BB) MergedArea(b BB) float64 {
	return (math.Max(bb.R, b.R) - math.Min(bb.L, b.L)) * (math.Max(bb.T, b.T) - math.Min(bb.B, b.B))
}

// Offset returns a bounding box offseted by v.
func (bb BB) Offset(v vec.Vec2) BB {
	return BB{bb.L + v.X, bb.B + v.Y, bb.R + v.X, bb.T + v.Y}
}

// Scaled returns the box spanned by the per-axis scaled corners of bb.
func (bb BB) Scaled(s vec.Vec2) BB {
	a := scalePerAxis(vec.Vec2{X: bb.L, Y: bb.B}, s)
	b := scalePerAxis(vec.Vec2{X: bb.R, Y: bb.T}, s)
	return BB{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

// Proximity returns a Manhattan distance between box centers, scaled by two.
func (bb BB) Proximity(b BB) float64 {
	return math.Abs(bb.L+bb.R-b.L-b.R) + math.Abs(bb.B+bb.T-b.B-b.T)
}
