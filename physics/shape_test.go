package physics_test

import (
	"math"
	"slices"
	"testing"

	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/vec"
)

type leafList struct {
	leaves []physics.TransformedShape
	limit  int
}

func (l *leafList) AddHit(ts physics.TransformedShape) {
	l.leaves = append(l.leaves, ts)
}

func (l *leafList) ShouldEarlyOut() bool {
	return l.limit > 0 && len(l.leaves) >= l.limit
}

func (l *leafList) ids() []physics.SubShapeID {
	ids := make([]physics.SubShapeID, len(l.leaves))
	for i, ts := range l.leaves {
		ids[i] = ts.SubShapeID()
	}
	slices.Sort(ids)
	return ids
}

// three unit boxes at x = 0, 2, 4
func boxRow() *physics.Shape {
	box := physics.NewBoxShape(1, 1, 0)
	return physics.NewCompoundShape(
		physics.CompoundChild{Shape: box, Position: vec.Vec2{X: 0}},
		physics.CompoundChild{Shape: box, Position: vec.Vec2{X: 2}},
		physics.CompoundChild{Shape: box, Position: vec.Vec2{X: 4}},
	)
}

func TestShapeCircleArea(t *testing.T) {
	circle := physics.NewCircleShape(2, vec.Vec2{})
	if circle.MassInfo().Area != 4*math.Pi {
		t.Fail()
	}
}

func TestShapeRadius(t *testing.T) {
	circle := physics.NewCircleShape(0.5, vec.Vec2{X: 1})
	if r := circle.Class.(*physics.Circle).Radius(); r != 0.5 {
		t.Errorf("circle radius %v", r)
	}
	rounded := physics.NewBoxShape(2, 2, 0.1)
	if r := rounded.Class.(*physics.PolyShape).Radius(); r != 0.1 {
		t.Errorf("box radius %v", r)
	}
	// rounding grows the bounds
	if got, want := rounded.LocalBounds(), physics.NewBB(-1.1, -1.1, 1.1, 1.1); math.Abs(got.R-want.R) > 1e-12 || math.Abs(got.T-want.T) > 1e-12 {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestShapeBoxBounds(t *testing.T) {
	box := physics.NewBoxShape(2, 4, 0)
	if got, want := box.LocalBounds(), physics.NewBB(-1, -2, 1, 2); got != want {
		t.Errorf("got %v want %v", got, want)
	}
	bb := box.WorldBounds(physics.NewTransformTranslate(vec.Vec2{X: 10, Y: 0}), physics.UnitScale)
	if got, want := bb, physics.NewBB(9, -2, 11, 2); got != want {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestShapePolyHull(t *testing.T) {
	// interior point is dropped
	shape := physics.NewPolyShape([]vec.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 0.2}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}, physics.NewTransformIdentity(), 0)
	poly := shape.Class.(*physics.PolyShape)
	if poly.Count() != 4 {
		t.Errorf("expected 4 hull vertices, got %d", poly.Count())
	}
	if slices.Contains(poly.Verts(), vec.Vec2{X: 0.5, Y: 0.2}) {
		t.Errorf("interior point kept in %v", poly.Verts())
	}
	if math.Abs(shape.MassInfo().Area-1) > 1e-12 {
		t.Errorf("area %v", shape.MassInfo().Area)
	}
}

func TestShapeCompoundBits(t *testing.T) {
	box := physics.NewBoxShape(1, 1, 0)
	for _, tc := range []struct {
		children int
		bits     uint
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{21, 5},
	} {
		children := make([]physics.CompoundChild, tc.children)
		for i := range children {
			children[i] = physics.CompoundChild{Shape: box, Position: vec.Vec2{X: float64(i)}}
		}
		if got := physics.NewCompoundShape(children...).SubShapeIDBits(); got != tc.bits {
			t.Errorf("%d children: got %d bits want %d", tc.children, got, tc.bits)
		}
	}
	if box.SubShapeIDBits() != 0 || box.IsCompound() {
		t.Error("a box has no sub shapes")
	}
}

func TestShapeCompoundMass(t *testing.T) {
	row := boxRow()
	mi := row.MassInfo()
	if math.Abs(mi.Area-3) > 1e-12 {
		t.Errorf("area %v", mi.Area)
	}
	if math.Abs(mi.CenterOfGravity.X-2) > 1e-12 || math.Abs(mi.CenterOfGravity.Y) > 1e-12 {
		t.Errorf("center of gravity %v", mi.CenterOfGravity)
	}
}

func TestCollectTransformedShapes(t *testing.T) {
	row := boxRow()
	id := physics.NewTransformIdentity()

	var leaves leafList
	row.CollectTransformedShapes(physics.NewBB(1.6, -0.4, 2.4, 0.4), id, physics.UnitScale, physics.SubShapeIDCreator{}, &leaves, nil)
	if len(leaves.leaves) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(leaves.leaves))
	}
	leaf := leaves.leaves[0]
	if leaf.SubShapeID() != 1 {
		t.Errorf("got %v want 1", leaf.SubShapeID())
	}
	if got := leaf.Transform.Translation(); got != (vec.Vec2{X: 2}) {
		t.Errorf("leaf placed at %v", got)
	}
	if leaf.SubShapeIDCreator.NumBitsWritten() != 2 {
		t.Errorf("got %d bits", leaf.SubShapeIDCreator.NumBitsWritten())
	}

	leaves = leafList{}
	row.CollectTransformedShapes(physics.NewBB(-10, -10, 10, 10), id, physics.UnitScale, physics.SubShapeIDCreator{}, &leaves, nil)
	if got := leaves.ids(); !slices.Equal(got, []physics.SubShapeID{0, 1, 2}) {
		t.Errorf("got %v", got)
	}

	leaves = leafList{}
	row.CollectTransformedShapes(physics.NewBB(10, 10, 11, 11), id, physics.UnitScale, physics.SubShapeIDCreator{}, &leaves, nil)
	if len(leaves.leaves) != 0 {
		t.Errorf("expected no leaves, got %d", len(leaves.leaves))
	}
}

func TestCollectTransformedShapesFilter(t *testing.T) {
	row := boxRow()
	notFirst := physics.ShapeFilterFunc(func(_ *physics.Shape, id physics.SubShapeID) bool {
		return id != 0
	})
	var leaves leafList
	row.CollectTransformedShapes(physics.NewBB(-10, -10, 10, 10), physics.NewTransformIdentity(), physics.UnitScale, physics.SubShapeIDCreator{}, &leaves, notFirst)
	if got := leaves.ids(); !slices.Equal(got, []physics.SubShapeID{1, 2}) {
		t.Errorf("got %v", got)
	}
}

func TestCollectTransformedShapesEarlyOut(t *testing.T) {
	leaves := leafList{limit: 1}
	boxRow().CollectTransformedShapes(physics.NewBB(-10, -10, 10, 10), physics.NewTransformIdentity(), physics.UnitScale, physics.SubShapeIDCreator{}, &leaves, nil)
	if len(leaves.leaves) != 1 {
		t.Errorf("expected the walk to stop after 1 leaf, got %d", len(leaves.leaves))
	}
}

func TestCollectTransformedShapesNested(t *testing.T) {
	row := boxRow()
	outer := physics.NewCompoundShape(
		physics.CompoundChild{Shape: row, Position: vec.Vec2{X: 0, Y: 10}},
		physics.CompoundChild{Shape: physics.NewBoxShape(1, 1, 0)},
	)
	var leaves leafList
	// third box of the inner row
	outer.CollectTransformedShapes(physics.NewBB(3.8, 9.8, 4.2, 10.2), physics.NewTransformIdentity(), physics.UnitScale, physics.SubShapeIDCreator{}, &leaves, nil)
	if len(leaves.leaves) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(leaves.leaves))
	}
	// outer index 0 in the low bit, inner index 2 above it
	if got := leaves.leaves[0].SubShapeID(); got != 2<<1 {
		t.Errorf("got %v", got)
	}

	ts, rest := outer.TransformedSubShape(2<<1, physics.NewTransformIdentity(), physics.UnitScale)
	if ts.Shape != row.Class.(*physics.Compound).Child(2).Shape || rest != physics.EmptySubShapeID {
		t.Errorf("resolved to %v, rest %v", ts.Shape, rest)
	}
	if got := ts.Transform.Translation(); got != (vec.Vec2{X: 4, Y: 10}) {
		t.Errorf("leaf placed at %v", got)
	}
	if ts.SubShapeID() != 2<<1 {
		t.Errorf("got %v", ts.SubShapeID())
	}
}

func TestSubShapeIDPushPop(t *testing.T) {
	var c physics.SubShapeIDCreator
	c = c.PushID(3, 2).PushID(5, 3).PushID(1, 1)
	if c.NumBitsWritten() != 6 {
		t.Errorf("got %d bits", c.NumBitsWritten())
	}
	id := c.ID()
	for _, want := range []struct {
		bits  uint
		value uint32
	}{{2, 3}, {3, 5}, {1, 1}} {
		var v uint32
		v, id = id.PopID(want.bits)
		if v != want.value {
			t.Errorf("popped %d want %d", v, want.value)
		}
	}
	if id != physics.EmptySubShapeID {
		t.Errorf("left over %v", id)
	}
}

func TestSubShapeIDOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an index wider than its bits")
		}
	}()
	physics.SubShapeIDCreator{}.PushID(4, 2)
}
