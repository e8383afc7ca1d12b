package physics_test

import (
	"errors"
	"math"
	"testing"

	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/vec"
)

type eventLog struct {
	added, persisted, removed int
}

func (l *eventLog) OnContactAdded(_, _ *physics.Body, _ *physics.ContactManifold, _ *physics.ContactSettings) {
	l.added++
}

func (l *eventLog) OnContactPersisted(_, _ *physics.Body, _ *physics.ContactManifold, _ *physics.ContactSettings) {
	l.persisted++
}

func (l *eventLog) OnContactRemoved(physics.SubShapeIDPair) {
	l.removed++
}

func addGround(space *physics.Space) *physics.Body {
	ground := physics.NewStaticBody(physics.NewBoxShape(20, 1, 0))
	space.AddBody(ground)
	return ground
}

func addBox(space *physics.Space, p vec.Vec2) *physics.Body {
	box := physics.NewDynamicBody(physics.NewBoxShape(1, 1, 0))
	box.SetPosition(p)
	space.AddBody(box)
	return box
}

// overlapping kinematic sensor and static box, neither moves
func sensorScene() (*physics.Space, *physics.Body) {
	space := physics.NewSpace()
	addGround(space)
	sensor := physics.NewKinematicBody(physics.NewBoxShape(2, 2, 0))
	sensor.SetSensor(true)
	sensor.CollideKinematicVsNonDynamic = true
	sensor.SetPosition(vec.Vec2{Y: 1})
	space.AddBody(sensor)
	return space, sensor
}

type countingRoutine struct {
	calls int
}

func (c *countingRoutine) collide(body1, body2 *physics.Body, transform1, transform2 physics.Transform, settings *physics.CollideShapeSettings, collector physics.CollideShapeCollector, filter physics.ShapeFilter) {
	c.calls++
	physics.DefaultSimCollideBodyVsBody(body1, body2, transform1, transform2, settings, collector, filter)
}

func TestSpaceAddRemoveBody(t *testing.T) {
	s := physics.NewSpace()
	b := physics.NewDynamicBody(physics.NewCircleShape(1, vec.Vec2{}))
	id := s.AddBody(b)
	if b.Space != s || s.Body(id) != b || b.ID() != id {
		t.Error("body not registered")
	}
	if s.BodyCount() != 1 {
		t.Error("should have one body")
	}
	s.RemoveBody(b)
	if s.BodyCount() != 0 || s.Body(id) != nil {
		t.Error("should not have any bodies")
	}
	if b.ID() != physics.InvalidBodyID {
		t.Errorf("removed body keeps id %d", b.ID())
	}
	// IDs are recycled
	if s.AddBody(physics.NewDynamicBody(physics.NewCircleShape(1, vec.Vec2{}))) != id {
		t.Error("expected the free id to be reused")
	}
}

func TestSpaceBoxRestsOnGround(t *testing.T) {
	space := physics.NewSpace()
	space.Gravity = vec.Vec2{Y: -10}
	addGround(space)
	box := addBox(space, vec.Vec2{Y: 2})
	for i := 0; i < 300; i++ {
		space.Step(1.0 / 60.0)
	}
	if y := box.Position().Y; math.Abs(y-1) > 0.05 {
		t.Errorf("box should rest at y=1, got %v", y)
	}
	if math.Abs(box.Position().X) > 0.05 {
		t.Errorf("box drifted to x=%v", box.Position().X)
	}
	if space.ContactCount() != 1 {
		t.Errorf("expected 1 contact, got %d", space.ContactCount())
	}
}

func TestSpaceContactEvents(t *testing.T) {
	space := physics.NewSpace()
	var events eventLog
	space.ContactListener = &events
	addGround(space)
	ball := physics.NewDynamicBody(physics.NewCircleShape(0.5, vec.Vec2{}))
	ball.SetPosition(vec.Vec2{Y: 0.9})
	space.AddBody(ball)

	space.Step(1.0 / 60.0)
	if events.added != 1 || events.persisted != 0 {
		t.Fatalf("after first step %+v", events)
	}
	space.Step(1.0 / 60.0)
	if events.added != 1 || events.persisted != 1 {
		t.Fatalf("after second step %+v", events)
	}

	space.SetPositionRotationAndVelocity(ball.ID(), vec.Vec2{Y: 10}, 0, vec.Vec2{}, 0)
	space.Step(1.0 / 60.0)
	if events.removed != 1 || space.ContactCount() != 0 {
		t.Errorf("after moving away %+v, %d contacts", events, space.ContactCount())
	}
}

func TestSpaceSensorContactsAreNotSolved(t *testing.T) {
	space := physics.NewSpace()
	space.Gravity = vec.Vec2{Y: -10}
	addGround(space)
	sensor := physics.NewStaticBody(physics.NewBoxShape(4, 6, 0))
	sensor.SetPosition(vec.Vec2{Y: 3})
	sensor.SetSensor(true)
	space.AddBody(sensor)
	box := addBox(space, vec.Vec2{Y: 4})

	var sensorContacts int
	for i := 0; i < 60; i++ {
		space.Step(1.0 / 60.0)
	}
	space.EachContact(func(b1, b2 *physics.Body, _ *physics.ContactManifold, settings physics.ContactSettings) {
		if b1 == sensor || b2 == sensor {
			sensorContacts++
			if !settings.IsSensor {
				t.Error("sensor contact not flagged")
			}
		}
	})
	if box.Position().Y > 3 {
		t.Errorf("box should fall through the sensor, at y=%v", box.Position().Y)
	}
	if sensorContacts == 0 {
		t.Error("expected the sensor to report the box")
	}
}

func TestSpaceContactCache(t *testing.T) {
	space, sensor := sensorScene()
	var events eventLog
	space.ContactListener = &events
	var counter countingRoutine
	space.SetSimCollideBodyVsBody(counter.collide)

	space.Step(1.0 / 60.0)
	if counter.calls != 1 || space.ContactCount() != 1 {
		t.Fatalf("first step: %d calls, %d contacts", counter.calls, space.ContactCount())
	}

	// nothing moved, the cached result is reused
	space.Step(1.0 / 60.0)
	if counter.calls != 1 || space.ContactCount() != 1 || events.persisted != 1 {
		t.Fatalf("second step: %d calls, %d contacts, %+v", counter.calls, space.ContactCount(), events)
	}

	space.InvalidateContactCache(sensor.ID())
	space.Step(1.0 / 60.0)
	if counter.calls != 2 {
		t.Errorf("invalidated pair should be collided again, %d calls", counter.calls)
	}
}

func TestSpaceRoutineSlot(t *testing.T) {
	space, sensor := sensorScene()
	if space.SimCollideBodyVsBody() == nil {
		t.Fatal("a new space has a routine installed")
	}

	space.SetSimCollideBodyVsBody(func(_, _ *physics.Body, _, _ physics.Transform, _ *physics.CollideShapeSettings, _ physics.CollideShapeCollector, _ physics.ShapeFilter) {
	})
	space.Step(1.0 / 60.0)
	if space.ContactCount() != 0 {
		t.Errorf("silent routine produced %d contacts", space.ContactCount())
	}

	space.SetSimCollideBodyVsBody(nil)
	space.InvalidateContactCache(sensor.ID())
	space.Step(1.0 / 60.0)
	if space.ContactCount() != 1 {
		t.Errorf("default routine should report 1 contact, got %d", space.ContactCount())
	}
}

func TestSpaceKinematicVsStatic(t *testing.T) {
	space, sensor := sensorScene()
	sensor.CollideKinematicVsNonDynamic = false
	space.Step(1.0 / 60.0)
	if space.ContactCount() != 0 {
		t.Errorf("kinematic vs static pair should be skipped, got %d contacts", space.ContactCount())
	}
}

func pile(workers int) *physics.Space {
	space := physics.NewSpace()
	space.Gravity = vec.Vec2{Y: -10}
	space.Workers = workers
	addGround(space)
	for i := 0; i < 8; i++ {
		addBox(space, vec.Vec2{X: float64(i%3) * 0.6, Y: 1 + float64(i)*1.1})
	}
	return space
}

func positions(space *physics.Space) []vec.Vec2 {
	var out []vec.Vec2
	space.EachBody(func(b *physics.Body) {
		out = append(out, b.Position(), vec.Vec2{X: b.Angle()})
	})
	return out
}

func TestSpaceWorkersDeterministic(t *testing.T) {
	serial := pile(1)
	parallel := pile(4)
	for i := 0; i < 120; i++ {
		serial.Step(1.0 / 60.0)
		parallel.Step(1.0 / 60.0)
	}
	a, b := positions(serial), positions(parallel)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("state %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSpaceSleep(t *testing.T) {
	space := physics.NewSpace()
	space.Gravity = vec.Vec2{Y: -10}
	space.SleepTimeThreshold = 0.5
	addGround(space)
	box := addBox(space, vec.Vec2{Y: 1})
	for i := 0; i < 600 && box.IsActive(); i++ {
		space.Step(1.0 / 60.0)
	}
	if box.IsActive() {
		t.Error("resting box should fall asleep")
	}
	box.Activate()
	if !box.IsActive() || box.IdleTime() != 0 {
		t.Error("activate wakes the box")
	}
}

func TestSpaceSaveRestore(t *testing.T) {
	space := pile(1)
	for i := 0; i < 30; i++ {
		space.Step(1.0 / 60.0)
	}
	rec := physics.NewStateRecorder()
	space.SaveState(rec)

	replay := func() []vec.Vec2 {
		rec.Rewind()
		if err := space.RestoreState(rec); err != nil {
			t.Fatal(err)
		}
		if !rec.IsEOF() {
			t.Fatal("state not fully read")
		}
		for i := 0; i < 60; i++ {
			space.Step(1.0 / 60.0)
		}
		return positions(space)
	}
	a, b := replay(), replay()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("replay %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSpaceRestoreErrors(t *testing.T) {
	space := pile(1)
	err := space.RestoreState(physics.NewStateRecorder())
	if !errors.Is(err, physics.ErrStateUnderflow) {
		t.Errorf("got %v", err)
	}

	rec := physics.NewStateRecorder()
	physics.NewSpace().SaveState(rec)
	if err := space.RestoreState(rec); !errors.Is(err, physics.ErrStateMismatch) {
		t.Errorf("got %v", err)
	}

	rec = physics.NewStateRecorder()
	space.SaveState(rec)
	truncated := physics.NewStateRecorderFromBytes(rec.Bytes()[:len(rec.Bytes())-3])
	if err := space.RestoreState(truncated); !errors.Is(err, physics.ErrStateUnderflow) {
		t.Errorf("got %v", err)
	}
}

func TestSpaceLocked(t *testing.T) {
	space, _ := sensorScene()
	var panicked bool
	space.SetSimCollideBodyVsBody(func(body1, _ *physics.Body, _, _ physics.Transform, _ *physics.CollideShapeSettings, _ physics.CollideShapeCollector, _ physics.ShapeFilter) {
		defer func() { panicked = recover() != nil }()
		if !body1.Space.IsLocked() {
			t.Error("space should be locked during the narrow phase")
		}
		body1.Space.AddBody(physics.NewDynamicBody(physics.NewCircleShape(1, vec.Vec2{})))
	})
	space.Step(1.0 / 60.0)
	if !panicked {
		t.Error("adding a body during a step must panic")
	}
	if space.IsLocked() {
		t.Error("space stays locked after the step")
	}
}
