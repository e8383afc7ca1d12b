package physics

import "github.com/setanarut/vec"

// CollideShapeSettings controls a shape vs shape query.
type CollideShapeSettings struct {
	// MaxSeparationDistance reports pairs that are up to this far apart as
	// hits with a negative penetration depth.
	MaxSeparationDistance float64
	// CollectFaces fills in the supporting faces of each hit so a manifold
	// with more than one point can be built.
	CollectFaces bool
}

// SupportingFace is the feature of a shape that touches the other shape,
// in world space. A vertex contact has Count 1, an edge contact Count 2.
type SupportingFace struct {
	Points [2]vec.Vec2
	Count  int
}

// Slice returns the used points.
func (f *SupportingFace) Slice() []vec.Vec2 {
	return f.Points[:f.Count]
}

// CollideShapeResult is one hit between two leaf shapes, in world space.
type CollideShapeResult struct {
	ContactPointOn1 vec.Vec2
	ContactPointOn2 vec.Vec2
	// PenetrationAxis is the unit direction from shape 1 towards shape 2.
	PenetrationAxis vec.Vec2
	// PenetrationDepth is positive when the shapes overlap.
	PenetrationDepth float64
	SubShapeID1      SubShapeID
	SubShapeID2      SubShapeID
	Face1            SupportingFace
	Face2            SupportingFace
}

// Swapped returns the hit seen from shape 2.
func (r CollideShapeResult) Swapped() CollideShapeResult {
	return CollideShapeResult{
		ContactPointOn1:  r.ContactPointOn2,
		ContactPointOn2:  r.ContactPointOn1,
		PenetrationAxis:  r.PenetrationAxis.Neg(),
		PenetrationDepth: r.PenetrationDepth,
		SubShapeID1:      r.SubShapeID2,
		SubShapeID2:      r.SubShapeID1,
		Face1:            r.Face2,
		Face2:            r.Face1,
	}
}

// CollideShapeVsShape reports every overlapping pair of leaves between two
// placed shapes to collector. Compound shapes on either side are descended
// with their child indices pushed onto part1 and part2, and only children
// whose bounds overlap the other shape are visited. The filter sees every
// leaf pair before it is tested. The walk stops as soon as the collector
// asks for an early out.
func CollideShapeVsShape(shape1, shape2 *Shape, scale1, scale2 vec.Vec2, transform1, transform2 Transform, part1, part2 SubShapeIDCreator, settings *CollideShapeSettings, collector CollideShapeCollector, filter ShapeFilter) {
	if collector.ShouldEarlyOut() {
		return
	}
	if filter == nil {
		filter = DefaultShapeFilter{}
	}

	if c, ok := shape1.Class.(*Compound); ok {
		region := shape2.WorldBounds(transform2, scale2).Grow(settings.MaxSeparationDistance)
		c.query(region, transform1, scale1, func(index int, child Transform) bool {
			CollideShapeVsShape(c.children[index].Shape, shape2, scale1, scale2, child, transform2,
				part1.PushID(uint32(index), c.bits), part2, settings, collector, filter)
			return !collector.ShouldEarlyOut()
		})
		return
	}
	if c, ok := shape2.Class.(*Compound); ok {
		region := shape1.WorldBounds(transform1, scale1).Grow(settings.MaxSeparationDistance)
		c.query(region, transform2, scale2, func(index int, child Transform) bool {
			CollideShapeVsShape(shape1, c.children[index].Shape, scale1, scale2, transform1, child,
				part1, part2.PushID(uint32(index), c.bits), settings, collector, filter)
			return !collector.ShouldEarlyOut()
		})
		return
	}

	if !filter.ShouldCollidePair(shape1, part1.ID(), shape2, part2.ID()) {
		return
	}
	if !shape1.WorldBounds(transform1, scale1).Grow(settings.MaxSeparationDistance).Intersects(shape2.WorldBounds(transform2, scale2)) {
		return
	}

	var c1, c2 convex
	c1.init(shape1, transform1, scale1)
	c2.init(shape2, transform2, scale2)
	result, ok := collideConvex(&c1, &c2, settings)
	if !ok {
		return
	}
	result.SubShapeID1 = part1.ID()
	result.SubShapeID2 = part2.ID()
	collector.AddHit(result)
}
