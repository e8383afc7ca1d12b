package physics

import "github.com/setanarut/vec"

// Circle is a solid disc.
type Circle struct {
	center vec.Vec2
	radius float64
}

// NewCircleShape creates a circle of radius r centered at offset in shape space.
func NewCircleShape(r float64, offset vec.Vec2) *Shape {
	return newShape(&Circle{center: offset, radius: r})
}

func (circle *Circle) LocalBounds() BB {
	return NewBBForCircle(circle.center, circle.radius)
}

func (circle *Circle) MassInfo() ShapeMassInfo {
	return ShapeMassInfo{
		Area:            AreaForCircle(0, circle.radius),
		I:               MomentForCircle(1, 0, circle.radius, vec.Vec2{}),
		CenterOfGravity: circle.center,
	}
}

func (circle *Circle) Radius() float64 {
	return circle.radius
}

func (circle *Circle) Center() vec.Vec2 {
	return circle.center
}
