package sensor

import (
	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/vec"
)

// inlineLeaves is how many leaves a LeafCollector holds before it allocates.
const inlineLeaves = 32

// LeafShape is a convex leaf of a body shape placed in the world. It is only
// valid during the body pair query that produced it.
type LeafShape struct {
	Bounds            physics.BB
	Transform         physics.Transform
	Scale             vec.Vec2
	Shape             *physics.Shape
	SubShapeIDCreator physics.SubShapeIDCreator
}

// LeafCollector gathers LeafShapes. The first 32 leaves are stored inside the
// collector itself; a collector must not be copied once it holds leaves.
type LeafCollector struct {
	Leaves []LeafShape
	inline [inlineLeaves]LeafShape
}

// AddHit records a placed leaf together with its world bounds.
func (c *LeafCollector) AddHit(ts physics.TransformedShape) {
	if c.Leaves == nil {
		c.Leaves = c.inline[:0]
	}
	c.Leaves = append(c.Leaves, LeafShape{
		Bounds:            ts.WorldBounds(),
		Transform:         ts.Transform,
		Scale:             ts.Scale,
		Shape:             ts.Shape,
		SubShapeIDCreator: ts.SubShapeIDCreator,
	})
}

func (c *LeafCollector) ShouldEarlyOut() bool { return false }

// Len returns the number of collected leaves.
func (c *LeafCollector) Len() int {
	return len(c.Leaves)
}

// Reset drops the collected leaves and returns to the inline storage.
func (c *LeafCollector) Reset() {
	clear(c.Leaves)
	c.Leaves = c.inline[:0]
}

// CollectLeaves appends to c every leaf of shape, placed at t, whose world
// bounds overlap region and that filter accepts. Leaves of a compound are
// visited in the order of the compound's bounding volume tree, which only
// depends on the shape.
func CollectLeaves(shape *physics.Shape, t physics.Transform, region physics.BB, filter physics.ShapeFilter, c *LeafCollector) {
	shape.CollectTransformedShapes(region, t, physics.UnitScale, physics.SubShapeIDCreator{}, c, filter)
}
