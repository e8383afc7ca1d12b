package samples

import (
	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/simcollide/sensor"
	"github.com/setanarut/vec"
)

// SimCollideBodyVsBodyName is the registry name of SimCollideBodyVsBody.
const SimCollideBodyVsBodyName = "SimCollideBodyVsBody"

func init() {
	Register(SimCollideBodyVsBodyName, func() Test { return NewSimCollideBodyVsBody() })
}

const numDroppedBodies = 10

// SimCollideBodyVsBody drops boxes through a kinematic sensor that overlaps a
// floor made of many small shapes, cycling through the sensor collision
// modes every few seconds.
type SimCollideBodyVsBody struct {
	// OnModeChange is called from PrePhysicsUpdate after the scene was reset
	// for a new mode.
	OnModeChange func(mode sensor.Mode)

	space    *physics.Space
	renderer physics.DebugRenderer
	observer sensor.ContactObserver
	clock    *sensor.ModeClock
	sensorID physics.BodyID
	bodyIDs  []physics.BodyID
}

// NewSimCollideBodyVsBody creates the test.
func NewSimCollideBodyVsBody() *SimCollideBodyVsBody {
	return &SimCollideBodyVsBody{clock: sensor.NewModeClock()}
}

func (s *SimCollideBodyVsBody) Description() string {
	return "Overrides the body vs body collision routine so a sensor reports one contact per body or per leaf shape."
}

// flatTopTrapezoid is a pyramid with a flat top, 2 wide and 1 high.
func flatTopTrapezoid() *physics.Shape {
	return physics.NewPolyShapeRaw([]vec.Vec2{
		{X: 1, Y: 0}, {X: 0.1, Y: 1}, {X: -0.1, Y: 1}, {X: -1, Y: 0},
	}, 0)
}

func (s *SimCollideBodyVsBody) Initialize(ctx *Context) {
	s.space = ctx.Space
	s.renderer = ctx.Renderer
	s.observer.Renderer = ctx.Renderer
	s.space.Gravity = vec.Vec2{Y: -9.81}

	// Floor of many trapezoids sharing one shape
	trapezoid := flatTopTrapezoid()
	var children []physics.CompoundChild
	for x := -10; x <= 10; x++ {
		children = append(children, physics.CompoundChild{Shape: trapezoid, Position: vec.Vec2{X: float64(x) * 2}})
	}
	floor := physics.NewStaticBody(physics.NewCompoundShape(children...))
	floor.SetPositionAndAngle(vec.Vec2{}, 0)
	s.space.AddBody(floor)

	// A kinematic sensor that also detects static bodies
	sensorBody := physics.NewKinematicBody(physics.NewBoxShape(20, 20, 0))
	sensorBody.SetSensor(true)
	sensorBody.CollideKinematicVsNonDynamic = true
	sensorBody.UseManifoldReduction = false
	sensorBody.SetPositionAndAngle(vec.Vec2{Y: 5}, 0)
	s.sensorID = s.space.AddBody(sensorBody)

	// Dynamic bodies, placed by the first PrePhysicsUpdate
	s.bodyIDs = s.bodyIDs[:0]
	for i := 0; i < numDroppedBodies; i++ {
		s.bodyIDs = append(s.bodyIDs, s.space.AddBody(physics.NewDynamicBody(physics.NewBoxShape(0.2, 1, 0))))
	}
}

func (s *SimCollideBodyVsBody) PrePhysicsUpdate(params PreUpdateParams) {
	mode, changed := s.clock.Advance(params.DeltaTime)
	s.space.SetSimCollideBodyVsBody(mode.Routine())
	s.renderer.DrawText(vec.Vec2{Y: 5}, mode.String(), physics.ColorWhite, 0.5)

	if !changed {
		return
	}
	// Start all bodies from the top
	for i, id := range s.bodyIDs {
		s.space.SetPositionRotationAndVelocity(id, vec.Vec2{X: -4.9 + float64(i), Y: 5}, 0, vec.Vec2{}, 0)
		s.space.ActivateBody(id)
	}
	// Cached sensor contacts were made by the previous routine
	s.space.InvalidateContactCache(s.sensorID)
	if s.OnModeChange != nil {
		s.OnModeChange(mode)
	}
}

func (s *SimCollideBodyVsBody) OnContactAdded(body1, body2 *physics.Body, m *physics.ContactManifold, settings *physics.ContactSettings) {
	s.observer.OnContactAdded(body1, body2, m, settings)
}

func (s *SimCollideBodyVsBody) OnContactPersisted(body1, body2 *physics.Body, m *physics.ContactManifold, settings *physics.ContactSettings) {
	s.observer.OnContactPersisted(body1, body2, m, settings)
}

func (s *SimCollideBodyVsBody) OnContactRemoved(pair physics.SubShapeIDPair) {
	s.observer.OnContactRemoved(pair)
}

func (s *SimCollideBodyVsBody) SaveState(rec *physics.StateRecorder) {
	s.clock.SaveState(rec)
}

func (s *SimCollideBodyVsBody) RestoreState(rec *physics.StateRecorder) error {
	return s.clock.RestoreState(rec)
}

// Mode returns the mode selected by the last PrePhysicsUpdate.
func (s *SimCollideBodyVsBody) Mode() sensor.Mode {
	return s.clock.PrevMode()
}

// SensorID returns the ID of the sensor body.
func (s *SimCollideBodyVsBody) SensorID() physics.BodyID {
	return s.sensorID
}

// BodyIDs returns the IDs of the dropped bodies in reset order.
func (s *SimCollideBodyVsBody) BodyIDs() []physics.BodyID {
	return s.bodyIDs
}
