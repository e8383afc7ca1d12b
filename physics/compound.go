package physics

import (
	"math/bits"

	"github.com/setanarut/vec"
)

// CompoundChild is one sub shape of a compound, placed in compound space.
type CompoundChild struct {
	Shape    *Shape
	Position vec.Vec2
	Angle    float64
}

func (cc CompoundChild) transform() Transform {
	return NewTransformRigid(cc.Position, cc.Angle)
}

// Compound groups child shapes into one rigid shape. Children may themselves
// be compounds. The child list is fixed at construction and indexed by a
// bounding box tree so region queries only visit overlapping children.
type Compound struct {
	children []CompoundChild
	tree     *BBTree
	bounds   BB
	bits     uint
	massInfo ShapeMassInfo
}

// NewCompoundShape creates a compound from children. Child order defines the
// sub shape indices.
func NewCompoundShape(children ...CompoundChild) *Shape {
	if len(children) == 0 {
		panic("physics: compound needs at least one child")
	}
	c := &Compound{
		children: append([]CompoundChild(nil), children...),
		tree:     NewBBTree(),
		bounds:   EmptyBB(),
		bits:     uint(bits.Len32(uint32(len(children) - 1))),
	}
	var area float64
	var cog vec.Vec2
	for i, child := range c.children {
		bb := child.transform().BB(child.Shape.LocalBounds())
		c.tree.Insert(i, bb)
		c.bounds = c.bounds.Merge(bb)

		mi := child.Shape.MassInfo()
		area += mi.Area
		cog = cog.Add(child.transform().Apply(mi.CenterOfGravity).Scale(mi.Area))
	}
	if area > 0 {
		cog = cog.Scale(1 / area)
		var i float64
		for _, child := range c.children {
			mi := child.Shape.MassInfo()
			offset := child.transform().Apply(mi.CenterOfGravity).Sub(cog)
			i += mi.Area * (mi.I + lengthSq(offset))
		}
		c.massInfo = ShapeMassInfo{Area: area, I: i / area, CenterOfGravity: cog}
	}
	return newShape(c)
}

func (c *Compound) LocalBounds() BB {
	return c.bounds
}

func (c *Compound) MassInfo() ShapeMassInfo {
	return c.massInfo
}

// NumChildren returns the number of direct sub shapes.
func (c *Compound) NumChildren() int {
	return len(c.children)
}

// Child returns the i-th sub shape.
func (c *Compound) Child(i int) CompoundChild {
	return c.children[i]
}

// childTransform places child i under a parent placed at t with scale.
// The scale is applied to the child position and then, in the child's own
// frame, to its geometry; rotated children therefore expect a uniform scale.
func (c *Compound) childTransform(i int, t Transform, scale vec.Vec2) Transform {
	child := c.children[i]
	return t.Mult(NewTransformRigid(scalePerAxis(child.Position, scale), child.Angle))
}

// query visits the children whose bounds overlap the world space region.
// Returning false from f stops the walk.
func (c *Compound) query(region BB, t Transform, scale vec.Vec2, f func(index int, child Transform) bool) {
	local := t.Inverse().BB(region).Scaled(vec.Vec2{X: 1 / scale.X, Y: 1 / scale.Y})
	c.tree.Query(local, func(index int) bool {
		return f(index, c.childTransform(index, t, scale))
	})
}
