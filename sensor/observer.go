package sensor

import (
	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/vec"
)

// ContactObserver draws the contact points and normal of every new or
// persisting manifold, for each side that is not a sensor. It never changes
// the contact.
type ContactObserver struct {
	Renderer physics.DebugRenderer
}

func (o *ContactObserver) OnContactAdded(body1, body2 *physics.Body, m *physics.ContactManifold, _ *physics.ContactSettings) {
	if !body1.IsSensor() {
		o.drawSide(m.BaseOffset, m.RelativeContactPointsOn1, m.WorldSpaceNormal.Neg())
	}
	if !body2.IsSensor() {
		o.drawSide(m.BaseOffset, m.RelativeContactPointsOn2, m.WorldSpaceNormal)
	}
}

func (o *ContactObserver) OnContactPersisted(body1, body2 *physics.Body, m *physics.ContactManifold, settings *physics.ContactSettings) {
	o.OnContactAdded(body1, body2, m, settings)
}

func (o *ContactObserver) OnContactRemoved(physics.SubShapeIDPair) {}

func (o *ContactObserver) drawSide(base vec.Vec2, points []vec.Vec2, dir vec.Vec2) {
	o.Renderer.DrawWirePolygon(physics.NewTransformTranslate(base), points, physics.ColorGreen, 0.01)
	from := base.Add(MeanPoint(points))
	o.Renderer.DrawArrow(from, from.Add(dir), physics.ColorYellow, 0.1)
}

// MeanPoint returns the average of points. points must not be empty.
func MeanPoint(points []vec.Vec2) vec.Vec2 {
	var sum vec.Vec2
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}
