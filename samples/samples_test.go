package samples_test

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/simcollide/samples"
	"github.com/setanarut/simcollide/sensor"
	"github.com/setanarut/vec"
)

const dt = 1.0 / 60.0

func newSimCollide(t *testing.T) (*samples.Runner, *samples.SimCollideBodyVsBody) {
	t.Helper()
	runner, err := samples.NewRunnerByName(samples.SimCollideBodyVsBodyName, nil)
	if err != nil {
		t.Fatal(err)
	}
	return runner, runner.Test.(*samples.SimCollideBodyVsBody)
}

func sensorContacts(space *physics.Space, sensorID physics.BodyID) int {
	var n int
	space.EachContact(func(b1, b2 *physics.Body, _ *physics.ContactManifold, _ physics.ContactSettings) {
		if b1.ID() == sensorID || b2.ID() == sensorID {
			n++
		}
	})
	return n
}

func checkResetRow(t *testing.T, space *physics.Space, ids []physics.BodyID) {
	t.Helper()
	for i, id := range ids {
		b := space.Body(id)
		want := vec.Vec2{X: -4.9 + float64(i), Y: 5}
		if got := b.Position(); math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
			t.Errorf("body %d at %v want %v", i, got, want)
		}
		if b.Angle() != 0 || b.AngularVelocity() != 0 {
			t.Errorf("body %d angle %v angular velocity %v", i, b.Angle(), b.AngularVelocity())
		}
		if !b.IsActive() {
			t.Errorf("body %d is not active", i)
		}
	}
}

func TestRegistry(t *testing.T) {
	if !slices.Contains(samples.Names(), samples.SimCollideBodyVsBodyName) {
		t.Errorf("names %v", samples.Names())
	}
	if _, err := samples.New("NoSuchTest"); !errors.Is(err, samples.ErrUnknownTest) {
		t.Errorf("got %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("registering a name twice must panic")
		}
	}()
	samples.Register(samples.SimCollideBodyVsBodyName, func() samples.Test { return samples.NewSimCollideBodyVsBody() })
}

func TestSimCollideScene(t *testing.T) {
	runner, test := newSimCollide(t)
	space := runner.Space
	if space.BodyCount() != 12 {
		t.Fatalf("expected 12 bodies, got %d", space.BodyCount())
	}
	sensorBody := space.Body(test.SensorID())
	if !sensorBody.IsSensor() || !sensorBody.IsKinematic() || !sensorBody.CollideKinematicVsNonDynamic || sensorBody.UseManifoldReduction {
		t.Errorf("sensor body misconfigured: %v", sensorBody)
	}
	if got := sensorBody.WorldBounds(); got != physics.NewBB(-10, -5, 10, 15) {
		t.Errorf("sensor bounds %v", got)
	}
	if space.ContactListener != test {
		t.Error("the test should listen to contacts")
	}
	if len(test.BodyIDs()) != 10 {
		t.Errorf("expected 10 dropped bodies, got %d", len(test.BodyIDs()))
	}
	if test.Mode() != sensor.NoMode {
		t.Errorf("mode before the first update %v", test.Mode())
	}
}

func TestSimCollideFirstStepResets(t *testing.T) {
	runner, test := newSimCollide(t)
	var changes []sensor.Mode
	test.OnModeChange = func(mode sensor.Mode) { changes = append(changes, mode) }
	runner.Step(dt)
	if !slices.Equal(changes, []sensor.Mode{sensor.ModeAllContacts}) {
		t.Errorf("changes %v", changes)
	}
	checkResetRow(t, runner.Space, test.BodyIDs())
}

func TestSimCollideModeChangeResets(t *testing.T) {
	runner, test := newSimCollide(t)
	runner.Step(dt)
	for test.Mode() == sensor.ModeAllContacts {
		runner.Step(dt)
		if runner.Steps() > 200 {
			t.Fatal("mode never changed")
		}
	}
	if test.Mode() != sensor.ModeAnyHitPerBody {
		t.Fatalf("second mode %v", test.Mode())
	}
	if s := runner.Steps(); s < 180 || s > 181 {
		t.Errorf("mode changed after %d steps", s)
	}
	checkResetRow(t, runner.Space, test.BodyIDs())
}

func TestSimCollideLastModeChangeResets(t *testing.T) {
	runner, test := newSimCollide(t)
	var changes []sensor.Mode
	changedAt := -1
	test.OnModeChange = func(mode sensor.Mode) {
		changes = append(changes, mode)
		if mode != sensor.ModeDeepestHitPerLeaf {
			return
		}
		// the bodies are reset before the space steps
		changedAt = runner.Steps() + 1
		checkResetRow(t, runner.Space, test.BodyIDs())
	}
	for changedAt < 0 {
		runner.Step(dt)
		if runner.Steps() > 760 {
			t.Fatal("last mode never started")
		}
	}
	if changedAt < 718 || changedAt > 722 {
		t.Errorf("last mode started at step %d", changedAt)
	}
	want := []sensor.Mode{
		sensor.ModeAllContacts, sensor.ModeAnyHitPerBody, sensor.ModeDeepestHitPerBody,
		sensor.ModeAnyHitPerLeaf, sensor.ModeDeepestHitPerLeaf,
	}
	if !slices.Equal(changes, want) {
		t.Errorf("changes %v", changes)
	}
}

func TestSimCollideContactsPerMode(t *testing.T) {
	runner, test := newSimCollide(t)
	// sample in the middle of each mode
	want := map[int]struct {
		mode     sensor.Mode
		contacts int
	}{
		90:  {sensor.ModeAllContacts, 21},
		270: {sensor.ModeAnyHitPerBody, 11},
		450: {sensor.ModeDeepestHitPerBody, 11},
		630: {sensor.ModeAnyHitPerLeaf, 21},
		810: {sensor.ModeDeepestHitPerLeaf, 21},
	}
	for step := 1; step <= 810; step++ {
		runner.Step(dt)
		w, ok := want[step]
		if !ok {
			continue
		}
		if test.Mode() != w.mode {
			t.Errorf("step %d: mode %v want %v", step, test.Mode(), w.mode)
		}
		if got := sensorContacts(runner.Space, test.SensorID()); got != w.contacts {
			t.Errorf("step %d (%v): %d sensor contacts want %d", step, w.mode, got, w.contacts)
		}
	}
}

func TestSimCollideRoutineInstalled(t *testing.T) {
	runner, test := newSimCollide(t)
	for i := 0; i < 200; i++ {
		runner.Step(dt)
	}
	if test.Mode() != sensor.ModeAnyHitPerBody {
		t.Fatalf("mode %v", test.Mode())
	}
	// the per body routine reports a single hit for the sensor and the floor
	var hits physics.AllHitCollector
	settings := physics.CollideShapeSettings{}
	floor, sensorBody := runner.Space.Body(0), runner.Space.Body(test.SensorID())
	runner.Space.SimCollideBodyVsBody()(floor, sensorBody, floor.Transform(), sensorBody.Transform(), &settings, &hits, nil)
	if len(hits.Hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits.Hits))
	}
}

type countingRenderer struct {
	texts  []string
	arrows int
}

func (r *countingRenderer) DrawLine(vec.Vec2, vec.Vec2, physics.FColor) {}

func (r *countingRenderer) DrawArrow(vec.Vec2, vec.Vec2, physics.FColor, float64) {
	r.arrows++
}

func (r *countingRenderer) DrawWirePolygon(physics.Transform, []vec.Vec2, physics.FColor, float64) {}

func (r *countingRenderer) DrawText(_ vec.Vec2, text string, _ physics.FColor, _ float64) {
	r.texts = append(r.texts, text)
}

func TestSimCollideDraws(t *testing.T) {
	var r countingRenderer
	runner := samples.NewRunner(samples.NewSimCollideBodyVsBody(), &r)
	runner.Step(dt)
	runner.Step(dt)
	if !slices.Equal(r.texts, []string{sensor.ModeAllContacts.String(), sensor.ModeAllContacts.String()}) {
		t.Errorf("texts %q", r.texts)
	}
	if r.arrows == 0 {
		t.Error("expected contact arrows")
	}
}

func positions(space *physics.Space) []vec.Vec2 {
	var out []vec.Vec2
	space.EachBody(func(b *physics.Body) {
		out = append(out, b.Position(), b.Velocity())
	})
	return out
}

func TestSimCollideSaveRestore(t *testing.T) {
	runner, test := newSimCollide(t)
	for i := 0; i < 170; i++ {
		runner.Step(dt)
	}
	rec := physics.NewStateRecorder()
	runner.SaveState(rec)
	saved := rec.Bytes()

	replay := func(r *samples.Runner) []vec.Vec2 {
		if err := r.RestoreState(physics.NewStateRecorderFromBytes(saved)); err != nil {
			t.Fatal(err)
		}
		// crosses the change to the second mode
		for i := 0; i < 30; i++ {
			r.Step(dt)
		}
		return positions(r.Space)
	}

	first := replay(runner)
	if test.Mode() != sensor.ModeAnyHitPerBody {
		t.Errorf("mode after replay %v", test.Mode())
	}
	fresh, _ := newSimCollide(t)
	second := replay(fresh)
	if !slices.Equal(first, second) {
		t.Error("replaying the same state in a fresh runner diverged")
	}
}

func TestSimCollideRestoreErrors(t *testing.T) {
	runner, _ := newSimCollide(t)
	rec := physics.NewStateRecorder()
	runner.Space.SaveState(rec)
	// test state missing
	if err := runner.RestoreState(rec); !errors.Is(err, physics.ErrStateUnderflow) {
		t.Errorf("got %v", err)
	}
}
