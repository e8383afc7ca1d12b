package physics

import (
	"log"
	"math"

	"github.com/setanarut/vec"
)

const (
	maxGjkIterations  = 30
	maxEpaIterations  = 30
	warnEpaIterations = 20
	inlineConvexVerts = 8
)

// convex is a leaf shape baked into world space for the narrow phase:
// a point or a counter-clockwise polygon, grown by radius.
type convex struct {
	verts   []vec.Vec2
	normals []vec.Vec2
	radius  float64

	vbuf [inlineConvexVerts]vec.Vec2
	nbuf [inlineConvexVerts]vec.Vec2
}

func (c *convex) init(shape *Shape, t Transform, scale vec.Vec2) {
	switch class := shape.Class.(type) {
	case *Circle:
		c.verts = c.vbuf[:1]
		c.verts[0] = t.Apply(scalePerAxis(class.center, scale))
		c.normals = nil
		c.radius = class.radius * maxAbsScale(scale)
	case *PolyShape:
		count := len(class.verts)
		if count <= inlineConvexVerts {
			c.verts = c.vbuf[:count]
			c.normals = c.nbuf[:count]
		} else {
			c.verts = make([]vec.Vec2, count)
			c.normals = make([]vec.Vec2, count)
		}
		// A mirroring placement flips the winding.
		mirrored := t.Determinant()*scale.X*scale.Y < 0
		for i, v := range class.verts {
			j := i
			if mirrored {
				j = count - 1 - i
			}
			c.verts[j] = t.Apply(scalePerAxis(v, scale))
		}
		for i := 0; i < count; i++ {
			a := c.verts[(i-1+count)%count]
			c.normals[i] = normalize(reversePerp(c.verts[i].Sub(a)))
		}
		c.radius = class.radius * maxAbsScale(scale)
	default:
		panic("physics: narrow phase needs a convex leaf shape")
	}
}

func (c *convex) supportPointIndex(n vec.Vec2) int {
	max := -infinity
	var index int
	for i, v := range c.verts {
		d := v.Dot(n)
		if d > max {
			max = d
			index = i
		}
	}
	return index
}

func (c *convex) center() vec.Vec2 {
	var sum vec.Vec2
	for _, v := range c.verts {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(c.verts)))
}

type supportPoint struct {
	p vec.Vec2
	// Save an index of the point so duplicate support points can be detected cheaply.
	index uint32
}

func (c *convex) support(n vec.Vec2) supportPoint {
	i := c.supportPointIndex(n)
	return supportPoint{c.verts[i], uint32(i)}
}

// edge is the feature of a convex most aligned with a direction.
type edge struct {
	a, b vec.Vec2
	r    float64
	n    vec.Vec2
}

func (c *convex) supportEdge(n vec.Vec2) edge {
	count := len(c.verts)
	if count == 1 {
		return edge{c.verts[0], c.verts[0], c.radius, n}
	}
	i1 := c.supportPointIndex(n)
	i0 := (i1 - 1 + count) % count
	i2 := (i1 + 1) % count

	if n.Dot(c.normals[i1]) > n.Dot(c.normals[i2]) {
		return edge{c.verts[i0], c.verts[i1], c.radius, c.normals[i1]}
	}
	return edge{c.verts[i1], c.verts[i2], c.radius, c.normals[i2]}
}

// supportingFace returns the surface feature of c facing along n, pushed
// out by the rounding radius.
func (c *convex) supportingFace(n vec.Vec2) SupportingFace {
	e := c.supportEdge(n)
	offset := n.Scale(e.r)
	if len(c.verts) == 1 {
		return SupportingFace{Points: [2]vec.Vec2{e.a.Add(offset)}, Count: 1}
	}
	return SupportingFace{Points: [2]vec.Vec2{e.a.Add(offset), e.b.Add(offset)}, Count: 2}
}

// collideConvex tests two convex leaves. The returned axis points from c1 to c2.
func collideConvex(c1, c2 *convex, settings *CollideShapeSettings) (CollideShapeResult, bool) {
	var a, b, n vec.Vec2
	var d float64
	if len(c1.verts) == 1 && len(c2.verts) == 1 {
		a, b = c1.verts[0], c2.verts[0]
		delta := b.Sub(a)
		d = delta.Mag()
		if d != 0 {
			n = delta.Scale(1.0 / d)
		} else {
			n = vec.Vec2{X: 1, Y: 0}
		}
	} else {
		points := gjk(c1, c2)
		a, b, n, d = points.a, points.b, points.n, points.d
	}

	separation := d - c1.radius - c2.radius
	if separation > settings.MaxSeparationDistance {
		return CollideShapeResult{}, false
	}

	result := CollideShapeResult{
		ContactPointOn1:  a.Add(n.Scale(c1.radius)),
		ContactPointOn2:  b.Sub(n.Scale(c2.radius)),
		PenetrationAxis:  n,
		PenetrationDepth: -separation,
	}
	if settings.CollectFaces {
		result.Face1 = c1.supportingFace(n)
		result.Face2 = c2.supportingFace(n.Neg())
	}
	return result, true
}

type supportContext struct {
	c1, c2 *convex
}

// support calculates the maximal point on the minkowski difference of two shapes along a particular axis.
func (ctx supportContext) support(n vec.Vec2) minkowskiPoint {
	a := ctx.c1.support(n.Neg())
	b := ctx.c2.support(n)
	return newMinkowskiPoint(a, b)
}

type closestPoints struct {
	// Surface points in absolute coordinates.
	a, b vec.Vec2
	// Minimum separating axis of the two shapes.
	n vec.Vec2
	// Signed distance between the points.
	d float64
	// Concatenation of the id's of the minkoski points.
	id uint32
}

// minkowskiPoint is a point on the surface of two shapes' minkowski difference.
type minkowskiPoint struct {
	// Cache the two original support points.
	a, b vec.Vec2
	// b - a
	ab vec.Vec2
	// Concatenate the two support point indexes.
	id uint32
}

func newMinkowskiPoint(a, b supportPoint) minkowskiPoint {
	return minkowskiPoint{a.p, b.p, b.p.Sub(a.p), (a.index&0xFF)<<8 | (b.index & 0xFF)}
}

// closestPoints calculates the closest points on two shapes given the closest edge on their minkowski difference to (0, 0)
func (v0 minkowskiPoint) closestPoints(v1 minkowskiPoint) closestPoints {
	// Find the closest p(t) on the minkowski difference to (0, 0)
	t := closestT(v0.ab, v1.ab)
	p := lerpT(v0.ab, v1.ab, t)

	// Interpolate the original support points using the same 't' value as above.
	// This gives you the closest surface points in absolute coordinates. NEAT!
	pa := lerpT(v0.a, v1.a, t)
	pb := lerpT(v0.b, v1.b, t)
	id := (v0.id&0xFFFF)<<16 | (v1.id & 0xFFFF)

	// First try calculating the MSA from the minkowski difference edge.
	// This gives us a nice, accurate MSA when the surfaces are close together.
	delta := v1.ab.Sub(v0.ab)
	n := normalize(reversePerp(delta))
	d := n.Dot(p)

	if d <= 0 || (-1 < t && t < 1) {
		// If the shapes are overlapping, or we have a regular vertex/edge collision, we are done.
		return closestPoints{pa, pb, n, d, id}
	}

	// Vertex/vertex collisions need special treatment since the MSA won't be shared with an axis of the minkowski difference.
	d2 := p.Mag()
	n2 := p.Scale(1 / (d2 + math.SmallestNonzeroFloat64))

	return closestPoints{pa, pb, n2, d2, id}
}

// gjk finds the closest points between two convex shapes.
func gjk(c1, c2 *convex) closestPoints {
	ctx := supportContext{c1, c2}
	// Use the centers as a guess for a starting axis.
	axis := perp(c1.center().Sub(c2.center()))
	if axis.X == 0 && axis.Y == 0 {
		axis = vec.Vec2{X: 1, Y: 0}
	}
	v0 := ctx.support(axis)
	v1 := ctx.support(axis.Neg())
	return gjkRecurse(ctx, v0, v1, 1)
}

func gjkRecurse(ctx supportContext, v0, v1 minkowskiPoint, iteration int) closestPoints {
	if iteration > maxGjkIterations {
		return v0.closestPoints(v1)
	}

	if pointGreater(v1.ab, v0.ab, vec.Vec2{}) {
		// Origin is behind axis. Flip and try again.
		return gjkRecurse(ctx, v1, v0, iteration)
	}
	t := closestT(v0.ab, v1.ab)
	var n vec.Vec2
	if -1.0 < t && t < 1.0 {
		n = perp(v1.ab.Sub(v0.ab))
	} else {
		n = lerpT(v0.ab, v1.ab, t).Neg()
	}
	p := ctx.support(n)

	if pointGreater(p.ab, v0.ab, vec.Vec2{}) && pointGreater(v1.ab, p.ab, vec.Vec2{}) {
		return epa(ctx, v0, p, v1)
	}

	if checkAxis(v0.ab, v1.ab, p.ab, n) {
		return v0.closestPoints(v1)
	}

	if closestDist(v0.ab, p.ab) < closestDist(p.ab, v1.ab) {
		return gjkRecurse(ctx, v0, p, iteration+1)
	}
	return gjkRecurse(ctx, p, v1, iteration+1)
}

// epa is called from gjk when two shapes overlap.
// Finds the closest points on the surface of two overlapping shapes using the EPA algorithm.
// This is a moderately expensive step! Avoid it by adding radii to your shapes so their inner polygons won't overlap.
func epa(ctx supportContext, v0, v1, v2 minkowskiPoint) closestPoints {
	hull := []minkowskiPoint{v0, v1, v2}
	return epaRecurse(ctx, 3, hull, 1)
}

// epaRecurse adds a point to the convex hull until it's known that we have the closest point on the surface.
func epaRecurse(ctx supportContext, count int, hull []minkowskiPoint, iteration int) closestPoints {
	mini := 0
	minDist := infinity

	// Find the closest segment hull[i] and hull[i + 1] to (0, 0)
	i := count - 1
	j := 0
	for j < count {
		d := closestDist(hull[i].ab, hull[j].ab)
		if d < minDist {
			minDist = d
			mini = i
		}
		i = j
		j++
	}

	v0 := hull[mini]
	v1 := hull[(mini+1)%count]

	p := ctx.support(perp(v1.ab.Sub(v0.ab)))

	duplicate := p.id == v0.id || p.id == v1.id

	if !duplicate && pointGreater(v0.ab, v1.ab, p.ab) && iteration < maxEpaIterations {
		// Rebuild the convex hull by inserting p.
		hull2 := make([]minkowskiPoint, count+1)
		count2 := 1
		hull2[0] = p

		for i := range count {
			index := (mini + 1 + i) % count

			h0 := hull2[count2-1].ab
			h1 := hull[index].ab
			var h2 vec.Vec2
			if i+1 < count {
				h2 = hull[(index+1)%count].ab
			} else {
				h2 = p.ab
			}

			if pointGreater(h0, h2, h1) {
				hull2[count2] = hull[index]
				count2++
			}
		}

		return epaRecurse(ctx, count2, hull2, iteration+1)
	}

	if iteration > warnEpaIterations {
		log.Println("Warning: High EPA iterations:", iteration)
	}

	// Could not find a new point to insert, so we have found the closest edge of the minkowski difference.
	return v0.closestPoints(v1)
}
