package physics

import (
	"math"

	"github.com/setanarut/vec"
)

// Draw flags
const (
	DrawShapes          = 1 << 0
	DrawCollisionPoints = 1 << 1
	DrawBounds          = 1 << 2
)

// 16 bytes
type FColor struct {
	R, G, B, A float32
}

var (
	ColorWhite  = FColor{1, 1, 1, 1}
	ColorGrey   = FColor{0.5, 0.5, 0.5, 1}
	ColorRed    = FColor{1, 0, 0, 1}
	ColorGreen  = FColor{0, 1, 0, 1}
	ColorBlue   = FColor{0, 0, 1, 1}
	ColorYellow = FColor{1, 1, 0, 1}
	ColorOrange = FColor{1, 0.5, 0, 1}
)

// DebugRenderer draws world space primitives. Implementations must be safe
// to call from contact callbacks.
type DebugRenderer interface {
	DrawLine(from, to vec.Vec2, color FColor)
	DrawArrow(from, to vec.Vec2, color FColor, size float64)
	// DrawWirePolygon draws the closed outline of verts placed with transform.
	DrawWirePolygon(transform Transform, verts []vec.Vec2, color FColor, radius float64)
	DrawText(position vec.Vec2, text string, color FColor, height float64)
}

const circleSegments = 16

// DrawShape outlines a shape placed at transform with scale.
func DrawShape(r DebugRenderer, shape *Shape, transform Transform, scale vec.Vec2, color FColor) {
	switch class := shape.Class.(type) {
	case *Circle:
		center := transform.Apply(scalePerAxis(class.center, scale))
		radius := class.radius * maxAbsScale(scale)
		verts := make([]vec.Vec2, circleSegments)
		for i := range verts {
			a := 2 * math.Pi * float64(i) / circleSegments
			verts[i] = vec.ForAngle(a).Scale(radius)
		}
		r.DrawWirePolygon(NewTransformRigid(center, transform.Angle()), verts, color, 0)
		r.DrawLine(center, center.Add(vec.ForAngle(transform.Angle()).Scale(radius)), color)
	case *PolyShape:
		verts := make([]vec.Vec2, len(class.verts))
		for i, v := range class.verts {
			verts[i] = scalePerAxis(v, scale)
		}
		r.DrawWirePolygon(transform, verts, color, class.radius*maxAbsScale(scale))
	case *Compound:
		for i, child := range class.children {
			DrawShape(r, child.Shape, class.childTransform(i, transform, scale), scale, color)
		}
	default:
		panic("Unknown shape type")
	}
}

// BodyColor picks the outline color of a body.
func BodyColor(body *Body) FColor {
	switch {
	case body.IsSensor():
		return ColorYellow
	case body.IsStatic():
		return ColorGrey
	case body.IsKinematic():
		return ColorGreen
	case !body.IsActive():
		return ColorBlue
	}
	return ColorWhite
}

// DrawSpace draws the bodies and contacts of a space.
func DrawSpace(r DebugRenderer, space *Space, flags uint) {
	space.EachBody(func(b *Body) {
		if flags&DrawShapes != 0 {
			DrawShape(r, b.shape, b.transform, UnitScale, BodyColor(b))
		}
		if flags&DrawBounds != 0 {
			bb := b.WorldBounds()
			r.DrawWirePolygon(NewTransformIdentity(), []vec.Vec2{
				{X: bb.L, Y: bb.B}, {X: bb.R, Y: bb.B}, {X: bb.R, Y: bb.T}, {X: bb.L, Y: bb.T},
			}, ColorOrange, 0)
		}
	})

	if flags&DrawCollisionPoints == 0 {
		return
	}
	space.EachContact(func(_, _ *Body, m *ContactManifold, _ ContactSettings) {
		n := m.WorldSpaceNormal
		for j := 0; j < m.NumPoints(); j++ {
			p1 := m.WorldSpaceContactPointOn1(j)
			p2 := m.WorldSpaceContactPointOn2(j)
			r.DrawLine(p1.Add(n.Scale(-0.1)), p2.Add(n.Scale(0.1)), ColorRed)
		}
	})
}
