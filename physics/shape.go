package physics

import (
	"fmt"
	"math"

	"github.com/setanarut/vec"
)

// IShape is implemented by the concrete shape classes: *Circle, *PolyShape and *Compound.
type IShape interface {
	LocalBounds() BB
	MassInfo() ShapeMassInfo
}

// ShapeMassInfo describes the mass distribution of a shape with unit density.
type ShapeMassInfo struct {
	// Area of the shape.
	Area float64
	// Moment of inertia per unit mass around CenterOfGravity.
	I float64
	// CenterOfGravity in shape space.
	CenterOfGravity vec.Vec2
}

// Shape is an immutable collision geometry. One Shape may be shared by any
// number of bodies and compound parents; placement is always supplied by the
// caller as a transform and scale.
type Shape struct {
	Class    IShape
	UserData any
	// Density is mass per unit area, used when a dynamic body is created from the shape.
	Density float64
}

func newShape(class IShape) *Shape {
	return &Shape{Class: class, Density: 1}
}

func (s Shape) String() string {
	return fmt.Sprintf("%T", s.Class)
}

// LocalBounds returns the bounds of the shape in its own space.
func (s *Shape) LocalBounds() BB {
	return s.Class.LocalBounds()
}

// MassInfo returns the unit-density mass distribution.
func (s *Shape) MassInfo() ShapeMassInfo {
	return s.Class.MassInfo()
}

// IsCompound returns true if the shape has sub shapes.
func (s *Shape) IsCompound() bool {
	_, ok := s.Class.(*Compound)
	return ok
}

// SubShapeIDBits returns how many bits a direct child index of this shape uses.
func (s *Shape) SubShapeIDBits() uint {
	if c, ok := s.Class.(*Compound); ok {
		return c.bits
	}
	return 0
}

// WorldBounds returns the bounds after scaling and transforming the shape.
func (s *Shape) WorldBounds(t Transform, scale vec.Vec2) BB {
	switch class := s.Class.(type) {
	case *Circle:
		return NewBBForCircle(t.Apply(scalePerAxis(class.center, scale)), class.radius*maxAbsScale(scale))
	case *PolyShape:
		bb := EmptyBB()
		for _, v := range class.verts {
			bb = bb.Expand(t.Apply(scalePerAxis(v, scale)))
		}
		return bb.Grow(class.radius * maxAbsScale(scale))
	default:
		return t.BB(s.LocalBounds().Scaled(scale))
	}
}

// TransformedShape is a leaf or compound shape placed in the world.
type TransformedShape struct {
	Shape             *Shape
	Transform         Transform
	Scale             vec.Vec2
	SubShapeIDCreator SubShapeIDCreator
}

// WorldBounds returns the bounds of the placed shape.
func (ts TransformedShape) WorldBounds() BB {
	return ts.Shape.WorldBounds(ts.Transform, ts.Scale)
}

// SubShapeID returns the path of the placed shape from its root.
func (ts TransformedShape) SubShapeID() SubShapeID {
	return ts.SubShapeIDCreator.ID()
}

// TransformedShapeCollector receives leaves from CollectTransformedShapes.
type TransformedShapeCollector interface {
	AddHit(ts TransformedShape)
	ShouldEarlyOut() bool
}

// CollectTransformedShapes reports every convex leaf of the shape whose world
// bounds overlap region. Compounds are descended recursively and each leaf
// carries the SubShapeIDCreator that addresses it from the root. The filter is
// consulted once per leaf.
func (s *Shape) CollectTransformedShapes(region BB, t Transform, scale vec.Vec2, part SubShapeIDCreator, collector TransformedShapeCollector, filter ShapeFilter) {
	if collector.ShouldEarlyOut() {
		return
	}
	if filter == nil {
		filter = DefaultShapeFilter{}
	}
	if c, ok := s.Class.(*Compound); ok {
		c.query(region, t, scale, func(index int, child Transform) bool {
			c.children[index].Shape.CollectTransformedShapes(region, child, scale, part.PushID(uint32(index), c.bits), collector, filter)
			return !collector.ShouldEarlyOut()
		})
		return
	}
	if !s.WorldBounds(t, scale).Intersects(region) {
		return
	}
	if !filter.ShouldCollide(s, part.ID()) {
		return
	}
	collector.AddHit(TransformedShape{Shape: s, Transform: t, Scale: scale, SubShapeIDCreator: part})
}

// TransformedSubShape resolves id to the leaf it addresses, returning the leaf
// placed in the world and the part of the ID that was not consumed.
func (s *Shape) TransformedSubShape(id SubShapeID, t Transform, scale vec.Vec2) (TransformedShape, SubShapeID) {
	ts := TransformedShape{Shape: s, Transform: t, Scale: scale}
	for {
		c, ok := ts.Shape.Class.(*Compound)
		if !ok {
			return ts, id
		}
		var index uint32
		index, id = id.PopID(c.bits)
		if int(index) >= len(c.children) {
			return ts, id
		}
		ts.SubShapeIDCreator = ts.SubShapeIDCreator.PushID(index, c.bits)
		ts.Transform = c.childTransform(int(index), ts.Transform, ts.Scale)
		ts.Shape = c.children[index].Shape
	}
}

// ShapeFilter decides which leaf shapes take part in collision queries.
type ShapeFilter interface {
	ShouldCollide(shape *Shape, id SubShapeID) bool
	ShouldCollidePair(shape1 *Shape, id1 SubShapeID, shape2 *Shape, id2 SubShapeID) bool
}

// DefaultShapeFilter accepts everything.
type DefaultShapeFilter struct{}

func (DefaultShapeFilter) ShouldCollide(*Shape, SubShapeID) bool { return true }

func (DefaultShapeFilter) ShouldCollidePair(*Shape, SubShapeID, *Shape, SubShapeID) bool {
	return true
}

// ShapeFilterFunc adapts a function to a ShapeFilter that accepts every pair
// whose leaves it accepts individually.
type ShapeFilterFunc func(shape *Shape, id SubShapeID) bool

func (f ShapeFilterFunc) ShouldCollide(shape *Shape, id SubShapeID) bool {
	return f(shape, id)
}

func (f ShapeFilterFunc) ShouldCollidePair(shape1 *Shape, id1 SubShapeID, shape2 *Shape, id2 SubShapeID) bool {
	return f(shape1, id1) && f(shape2, id2)
}

// AreaForCircle returns area of a hollow circle.
//
// r1 and r2 are the inner and outer radii. A solid circle has an inner radius of 0.
func AreaForCircle(r1, r2 float64) float64 {
	return math.Pi * math.Abs(r1*r1-r2*r2)
}

// MomentForCircle calculates the moment of inertia for a hollow circle.
// r1 and r2 are the inner and outer radii.
func MomentForCircle(mass, r1, r2 float64, offset vec.Vec2) float64 {
	return mass * (0.5*(r1*r1+r2*r2) + lengthSq(offset))
}

// MomentForBox calculates the moment of inertia for a solid box.
func MomentForBox(mass, width, height float64) float64 {
	return mass * (width*width + height*height) / 12.0
}

// MomentForPoly calculates the moment of inertia for a solid polygon shape
// assuming it's center of gravity is at it's centroid.
//
// The offset is added to each vertex.
func MomentForPoly(mass float64, verts []vec.Vec2, offset vec.Vec2) float64 {
	count := len(verts)
	if count < 3 {
		return 0
	}
	var sum1 float64
	var sum2 float64
	for i := 0; i < count; i++ {
		v1 := verts[i].Add(offset)
		v2 := verts[(i+1)%count].Add(offset)

		a := v2.Cross(v1)
		b := v1.Dot(v1) + v1.Dot(v2) + v2.Dot(v2)

		sum1 += a * b
		sum2 += a
	}
	return (mass * sum1) / (6.0 * sum2)
}

// AreaForPoly calculates the area of a counter-clockwise polygon grown by r.
func AreaForPoly(verts []vec.Vec2, r float64) float64 {
	var area float64
	var perimeter float64
	count := len(verts)
	for i := 0; i < count; i++ {
		v1 := verts[i]
		v2 := verts[(i+1)%count]

		area += v1.Cross(v2)
		perimeter += v2.Sub(v1).Mag()
	}
	return r*(math.Pi*math.Abs(r)+perimeter) + math.Abs(area)/2.0
}

// CentroidForPoly calculates the natural centroid of a polygon.
func CentroidForPoly(verts []vec.Vec2) vec.Vec2 {
	var sum float64
	vsum := vec.Vec2{}
	count := len(verts)
	for i := 0; i < count; i++ {
		v1 := verts[i]
		v2 := verts[(i+1)%count]
		cross := v1.Cross(v2)

		sum += cross
		vsum = vsum.Add(v1.Add(v2).Scale(cross))
	}
	if sum == 0 {
		// degenerate, fall back to the vertex average
		vsum = vec.Vec2{}
		for _, v := range verts {
			vsum = vsum.Add(v)
		}
		return vsum.Scale(1 / float64(count))
	}
	return vsum.Scale(1.0 / (3.0 * sum))
}
