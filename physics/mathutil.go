package physics

import (
	"math"

	"github.com/setanarut/vec"
)

const (
	infinity     float64 = math.MaxFloat64
	magicEpsilon float64 = 1e-5
)

// UnitScale is the identity per-axis scale.
var UnitScale = vec.Vec2{X: 1, Y: 1}

func clamp(f, min, max float64) float64 {
	if f > min {
		return math.Min(f, max)
	}
	return math.Min(min, max)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(f, 1))
}

// perp returns a perpendicular vector. (90 degree rotation)
func perp(a vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -a.Y, Y: a.X}
}

// reversePerp returns a perpendicular vector. (-90 degree rotation)
func reversePerp(a vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: a.Y, Y: -a.X}
}

func lengthSq(a vec.Vec2) float64 {
	return a.Dot(a)
}

func normalize(a vec.Vec2) vec.Vec2 {
	l := a.Mag()
	if l == 0 {
		return vec.Vec2{}
	}
	return a.Scale(1 / l)
}

// scalePerAxis multiplies a component-wise by s.
func scalePerAxis(a, s vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: a.X * s.X, Y: a.Y * s.Y}
}

// maxAbsScale returns the largest absolute component of a scale.
// Round features (circles, rounding radii) only support uniform scale.
func maxAbsScale(s vec.Vec2) float64 {
	return math.Max(math.Abs(s.X), math.Abs(s.Y))
}

// rotateComplex uses complex number multiplication to rotate this by other.
func rotateComplex(this, other vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: this.X*other.X - this.Y*other.Y, Y: this.X*other.Y + this.Y*other.X}
}

// collision related
func lerpT(a, b vec.Vec2, t float64) vec.Vec2 {
	ht := 0.5 * t
	return a.Scale(0.5 - ht).Add(b.Scale(0.5 + ht))
}

func closestDist(v0, v1 vec.Vec2) float64 {
	return lengthSq(lerpT(v0, v1, closestT(v0, v1)))
}

func closestT(a, b vec.Vec2) float64 {
	delta := b.Sub(a)
	return -clamp(delta.Dot(a.Add(b))/lengthSq(delta), -1.0, 1.0)
}

func checkAxis(v0, v1, p, n vec.Vec2) bool {
	return p.Dot(n) <= math.Max(v0.Dot(n), v1.Dot(n))
}

func pointGreater(a, b, c vec.Vec2) bool {
	return (b.Y-a.Y)*(a.X+b.X-2*c.X) > (b.X-a.X)*(a.Y+b.Y-2*c.Y)
}
