package physics

import (
	"fmt"

	"github.com/setanarut/vec"
)

// PolyShape is a convex polygon with counter-clockwise winding, optionally
// grown by a rounding radius.
type PolyShape struct {
	radius float64
	verts  []vec.Vec2
	// normals[i] is the outward normal of the edge verts[i-1] -> verts[i].
	normals []vec.Vec2
}

// NewPolyShape creates the convex hull of vertices after applying t to them.
func NewPolyShape(vertices []vec.Vec2, t Transform, radius float64) *Shape {
	hullVerts := make([]vec.Vec2, len(vertices))
	for i, v := range vertices {
		hullVerts[i] = t.Apply(v)
	}
	hullCount := convexHull(len(hullVerts), hullVerts, nil, 0)
	return NewPolyShapeRaw(hullVerts[:hullCount], radius)
}

// NewPolyShapeRaw creates a polygon from vertices that already form a
// counter-clockwise convex hull.
func NewPolyShapeRaw(verts []vec.Vec2, radius float64) *Shape {
	if len(verts) == 0 {
		panic("physics: polygon needs at least one vertex")
	}
	poly := &PolyShape{radius: radius}
	poly.setVerts(verts)
	return newShape(poly)
}

// NewBoxShape creates a box of width w and height h centered on the shape origin.
func NewBoxShape(w, h, r float64) *Shape {
	hw := w / 2.0
	hh := h / 2.0
	return NewBoxShape2(BB{-hw, -hh, hw, hh}, r)
}

// NewBoxShape2 creates a box covering bb.
func NewBoxShape2(bb BB, r float64) *Shape {
	verts := []vec.Vec2{
		{X: bb.R, Y: bb.B},
		{X: bb.R, Y: bb.T},
		{X: bb.L, Y: bb.T},
		{X: bb.L, Y: bb.B},
	}
	return NewPolyShapeRaw(verts, r)
}

func (ps *PolyShape) setVerts(verts []vec.Vec2) {
	count := len(verts)
	ps.verts = make([]vec.Vec2, count)
	ps.normals = make([]vec.Vec2, count)
	copy(ps.verts, verts)
	for i := 0; i < count; i++ {
		a := verts[(i-1+count)%count]
		b := verts[i]
		ps.normals[i] = normalize(reversePerp(b.Sub(a)))
	}
}

func (ps *PolyShape) LocalBounds() BB {
	bb := EmptyBB()
	for _, v := range ps.verts {
		bb = bb.Expand(v)
	}
	return bb.Grow(ps.radius)
}

func (ps *PolyShape) MassInfo() ShapeMassInfo {
	centroid := CentroidForPoly(ps.verts)
	return ShapeMassInfo{
		Area:            AreaForPoly(ps.verts, ps.radius),
		I:               MomentForPoly(1, ps.verts, centroid.Neg()),
		CenterOfGravity: centroid,
	}
}

func (ps *PolyShape) Count() int {
	return len(ps.verts)
}

// Verts returns the hull vertices. The slice must not be modified.
func (ps *PolyShape) Verts() []vec.Vec2 {
	return ps.verts
}

func (ps *PolyShape) Radius() float64 {
	return ps.radius
}

func (ps *PolyShape) String() string {
	return fmt.Sprintf("PolyShape(%d verts, r=%v)", len(ps.verts), ps.radius)
}

// QuickHull seemed like a neat algorithm, and efficient-ish for large input sets.
// This implementation performs an in place reduction using the result array as scratch space.
func convexHull(count int, verts []vec.Vec2, first *int, tol float64) int {
	start, end := loopIndexes(verts, count)
	if start == end {
		if first != nil {
			*first = 0
		}
		return 1
	}

	verts[0], verts[start] = verts[start], verts[0]
	if end == 0 {
		verts[1], verts[start] = verts[start], verts[1]
	} else {
		verts[1], verts[end] = verts[end], verts[1]
	}

	a := verts[0]
	b := verts[1]

	if first != nil {
		*first = start
	}

	return qhullReduce(tol, verts[2:], count-2, a, b, a, verts[1:]) + 1
}

func loopIndexes(verts []vec.Vec2, count int) (int, int) {
	start := 0
	end := 0

	min := verts[0]
	max := min

	for i := 1; i < count; i++ {
		v := verts[i]

		if v.X < min.X || (v.X == min.X && v.Y < min.Y) {
			min = v
			start = i
		} else if v.X > max.X || (v.X == max.X && v.Y > max.Y) {
			max = v
			end = i
		}
	}

	return start, end
}

func qhullReduce(tol float64, verts []vec.Vec2, count int, a, pivot, b vec.Vec2, result []vec.Vec2) int {
	if count == 0 {
		result[0] = pivot
		return 1
	}

	leftCount := qhullPartition(verts, count, a, pivot, tol)
	var index int
	if leftCount-1 >= 0 {
		index = qhullReduce(tol, verts[1:], leftCount-1, a, verts[0], pivot, result)
	}

	result[index] = pivot
	index++

	rightCount := qhullPartition(verts[leftCount:], count-leftCount, pivot, b, tol)
	if rightCount-1 < 0 {
		return index
	}
	return index + qhullReduce(tol, verts[leftCount+1:], rightCount-1, pivot, verts[leftCount], b, result[index:])
}

func qhullPartition(verts []vec.Vec2, count int, a, b vec.Vec2, tol float64) int {
	if count == 0 {
		return 0
	}

	max := 0.0
	pivot := 0

	delta := b.Sub(a)
	valueTol := tol * delta.Mag()

	head := 0
	for tail := count - 1; head <= tail; {
		value := verts[head].Sub(a).Cross(delta)
		if value > valueTol {
			if value > max {
				max = value
				pivot = head
			}

			head++
		} else {
			verts[head], verts[tail] = verts[tail], verts[head]
			tail--
		}
	}

	// move the new pivot to the front if it's not already there.
	if pivot != 0 {
		verts[0], verts[pivot] = verts[pivot], verts[0]
	}
	return head
}
