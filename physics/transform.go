package physics

import (
	"math"

	"github.com/setanarut/vec"
)

// Transform represents a 2D affine transformation using a 2x3 matrix.
//
//	| a  c  tx |   -> X' = a * X + c * Y + tx
//	| b  d  ty |   -> Y' = b * X + d * Y + ty
//
// Bodies only ever produce rigid transforms. Compound children may add a
// per-axis scale on top of that through the Scale arguments of the query
// functions, never through the matrix itself.
type Transform struct {
	a, b, c, d, tx, ty float64
}

// NewTransformIdentity creates and returns an identity transformation.
func NewTransformIdentity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

// NewTransform returns a new transform matrix.
//
//   - (a, b) is the x basis vector.
//   - (c, d) is the y basis vector.
//   - (tx, ty) is the translation.
func NewTransform(a, b, c, d, tx, ty float64) Transform {
	return Transform{a, b, c, d, tx, ty}
}

// NewTransformTranslate returns a new transformation matrix with translation
func NewTransformTranslate(translate vec.Vec2) Transform {
	return Transform{1, 0, 0, 1, translate.X, translate.Y}
}

// NewTransformRotate returns a new rigid transformation with rotation
func NewTransformRotate(angle float64) Transform {
	rot := vec.ForAngle(angle)
	return Transform{rot.X, rot.Y, -rot.Y, rot.X, 0, 0}
}

// NewTransformRigid creates a transformation that rotates by angle and then
// translates by translate.
func NewTransformRigid(translate vec.Vec2, angle float64) Transform {
	rot := vec.ForAngle(angle)
	return Transform{rot.X, rot.Y, -rot.Y, rot.X, translate.X, translate.Y}
}

// Inverse returns the inverse of this matrix t.
func (t Transform) Inverse() Transform {
	invDet := 1.0 / (t.a*t.d - t.c*t.b)
	return Transform{
		a:  t.d * invDet,
		b:  -t.b * invDet,
		c:  -t.c * invDet,
		d:  t.a * invDet,
		tx: (t.c*t.ty - t.tx*t.d) * invDet,
		ty: (t.tx*t.b - t.a*t.ty) * invDet,
	}
}

// Mult returns t * t2. Applying the result is applying t2 first, then t.
func (t Transform) Mult(t2 Transform) Transform {
	return Transform{
		a:  t.a*t2.a + t.c*t2.b,
		b:  t.b*t2.a + t.d*t2.b,
		c:  t.a*t2.c + t.c*t2.d,
		d:  t.b*t2.c + t.d*t2.d,
		tx: t.a*t2.tx + t.c*t2.ty + t.tx,
		ty: t.b*t2.tx + t.d*t2.ty + t.ty,
	}
}

// Apply applies the transformation to a point.
func (t Transform) Apply(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: t.a*p.X + t.c*p.Y + t.tx,
		Y: t.b*p.X + t.d*p.Y + t.ty,
	}
}

// ApplyVector applies the linear part of the transformation to a direction.
func (t Transform) ApplyVector(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: t.a*v.X + t.c*v.Y,
		Y: t.b*v.X + t.d*v.Y,
	}
}

// Translation returns the translation column.
func (t Transform) Translation() vec.Vec2 {
	return vec.Vec2{X: t.tx, Y: t.ty}
}

// Angle returns the rotation of the x basis vector.
func (t Transform) Angle() float64 {
	return math.Atan2(t.b, t.a)
}

// Determinant of the linear part.
func (t Transform) Determinant() float64 {
	return t.a*t.d - t.c*t.b
}

// BB returns the axis-aligned box holding bb after transformation.
func (t Transform) BB(bb BB) BB {
	hw := (bb.R - bb.L) * 0.5
	hh := (bb.T - bb.B) * 0.5

	a := t.a * hw
	b := t.c * hh
	d := t.b * hw
	e := t.d * hh
	hwMax := math.Max(math.Abs(a+b), math.Abs(a-b))
	hhMax := math.Max(math.Abs(d+e), math.Abs(d-e))
	return NewBBForExtents(t.Apply(bb.Center()), hwMax, hhMax)
}
