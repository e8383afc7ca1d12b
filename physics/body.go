package physics

import (
	"fmt"
	"math"

	"github.com/setanarut/vec"
)

// BodyType for bodies; Dynamic, Kinematic or Static
type BodyType uint8

const (
	Dynamic   BodyType = 0
	Kinematic BodyType = 1
	Static    BodyType = 2
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	case Static:
		return "static"
	}
	return fmt.Sprintf("BodyType(%d)", uint8(t))
}

// BodyID is assigned by Space.AddBody and stays valid until the body is removed.
type BodyID uint32

// InvalidBodyID is the ID of a body that is not in a space.
const InvalidBodyID BodyID = ^BodyID(0)

const (
	// NoGroup is the value for CollisionFilter.Group signifying that a body is not in any group.
	NoGroup uint = 0
	// AllCategories is the value for CollisionFilter layers signifying that a body is in every layer.
	AllCategories uint = ^uint(0)
)

// CollisionFilter is fast filter used to pre-discard body pairs in the broad phase.
type CollisionFilter struct {
	// Two objects with the same non-zero group value do not collide.
	Group uint
	// A bitmask of user definable categories that this object belongs to.
	Categories uint
	// A bitmask of user definable category types that this object object collides with.
	Mask uint
}

// CollisionFilterAll collides with anything except CollisionFilterNone.
var CollisionFilterAll = CollisionFilter{NoGroup, AllCategories, AllCategories}

// CollisionFilterNone does not collide with anything.
var CollisionFilterNone = CollisionFilter{NoGroup, ^AllCategories, ^AllCategories}

// Reject returns true if the two filters are incompatible.
func (f CollisionFilter) Reject(other CollisionFilter) bool {
	return (f.Group != 0 && f.Group == other.Group) ||
		(f.Categories&other.Mask) == 0 ||
		(other.Categories&f.Mask) == 0
}

// Body is a rigid body carrying a single shape. Compound geometry is
// expressed with a compound shape.
type Body struct {
	// UserData is an object that this body is associated with.
	//
	// You can use this get a reference to your game object or controller object from within callbacks.
	UserData any
	Space    *Space

	// Filter is tested in the broad phase before any shape is looked at.
	Filter CollisionFilter
	// Friction and Restitution are combined by multiplication with the other body.
	Friction, Restitution float64
	// CollideKinematicVsNonDynamic lets a kinematic body generate contacts
	// against static and other kinematic bodies.
	CollideKinematicVsNonDynamic bool
	// UseManifoldReduction merges the manifolds of a body pair that share a
	// normal. Both bodies must enable it.
	UseManifoldReduction bool

	id                     BodyID
	shape                  *Shape
	bodyType               BodyType
	sensor                 bool
	mass                   float64 // Mass
	massInverse            float64 // Mass inverse
	momentOfInertia        float64 // Moment of inertia
	momentOfInertiaInverse float64 // Inverse of moment of inertia i
	angle                  float64 // Angle (radians)
	w                      float64 // Angular velocity,
	torque                 float64 // Torque (radians)
	centerOfGravity        vec.Vec2
	position               vec.Vec2 // Center of gravity in world space
	velocity               vec.Vec2
	force                  vec.Vec2
	transform              Transform
	active                 bool
	sleepingIdleTime       float64
	vBias                  vec.Vec2 // "pseudo-velocities" used for eliminating overlap. (Erin Catto)
	wBias                  float64  // "pseudo-velocities" used for eliminating overlap. (Erin Catto)
}

// NewBody creates a body of the given type for shape. Dynamic bodies take
// their mass and moment from the shape area and density.
func NewBody(shape *Shape, bodyType BodyType) *Body {
	body := &Body{
		id:                   InvalidBodyID,
		shape:                shape,
		bodyType:             bodyType,
		Filter:               CollisionFilterAll,
		Friction:             0.7,
		UseManifoldReduction: true,
		transform:            NewTransformIdentity(),
	}
	mi := shape.MassInfo()
	body.centerOfGravity = mi.CenterOfGravity
	if bodyType == Dynamic && mi.Area > 0 {
		mass := mi.Area * shape.Density
		body.setMass(mass, mass*mi.I)
	} else {
		body.setMass(infinity, infinity)
	}
	body.SetTransform(vec.Vec2{}, 0)
	body.active = bodyType != Static
	return body
}

// NewStaticBody creates a body that never moves.
func NewStaticBody(shape *Shape) *Body {
	return NewBody(shape, Static)
}

// NewKinematicBody creates a body moved only by its velocity.
func NewKinematicBody(shape *Shape) *Body {
	return NewBody(shape, Kinematic)
}

// NewDynamicBody creates a body driven by gravity and contacts.
func NewDynamicBody(shape *Shape) *Body {
	return NewBody(shape, Dynamic)
}

// String returns body id as string
func (body *Body) String() string {
	return fmt.Sprint("Body ", body.id, ", ", body.bodyType, ", ", body.shape)
}

func (body *Body) setMass(mass, moment float64) {
	body.mass = mass
	body.momentOfInertia = moment
	body.massInverse = 1.0 / mass
	body.momentOfInertiaInverse = 1.0 / moment
	if math.IsInf(mass, 0) || mass == infinity {
		body.massInverse = 0
	}
	if math.IsInf(moment, 0) || moment == infinity {
		body.momentOfInertiaInverse = 0
	}
}

// ID returns the identifier assigned by the space.
func (body *Body) ID() BodyID {
	return body.id
}

// Shape returns the collision shape.
func (body *Body) Shape() *Shape {
	return body.shape
}

// Type returns the type of the body.
func (body *Body) Type() BodyType {
	return body.bodyType
}

func (body *Body) IsStatic() bool    { return body.bodyType == Static }
func (body *Body) IsKinematic() bool { return body.bodyType == Kinematic }
func (body *Body) IsDynamic() bool   { return body.bodyType == Dynamic }

// IsSensor returns true if the body only reports contacts.
func (body *Body) IsSensor() bool {
	return body.sensor
}

// SetSensor wakes up the body then marks it as a sensor.
// Sensors only call contact callbacks, and never generate real collisions.
func (body *Body) SetSensor(sensor bool) {
	body.Activate()
	body.sensor = sensor
}

// Mass returns the mass of the body.
func (body *Body) Mass() float64 {
	return body.mass
}

// Moment returns moment of inertia of the body.
func (body *Body) Moment() float64 {
	return body.momentOfInertia
}

// CenterOfGravity returns the offset of the center of gravity in body local coordinates.
func (body *Body) CenterOfGravity() vec.Vec2 {
	return body.centerOfGravity
}

// CenterOfMassPosition returns the center of gravity in world coordinates.
func (body *Body) CenterOfMassPosition() vec.Vec2 {
	return body.position
}

// Angle returns the angle of the body.
func (body *Body) Angle() float64 {
	return body.angle
}

// Rotation returns the rotation vector of the body.
//
// (The x basis vector of it's transform.)
func (body *Body) Rotation() vec.Vec2 {
	return vec.Vec2{X: body.transform.a, Y: body.transform.b}
}

// Position returns the position of the body origin.
func (body *Body) Position() vec.Vec2 {
	return body.transform.Apply(vec.Vec2{})
}

// SetPosition sets the position of the body origin.
func (body *Body) SetPosition(position vec.Vec2) {
	body.Activate()
	body.position = body.transform.ApplyVector(body.centerOfGravity).Add(position)
	body.SetTransform(body.position, body.angle)
}

// SetAngle rotates the body around its center of gravity.
func (body *Body) SetAngle(angle float64) {
	body.Activate()
	body.angle = angle
	body.SetTransform(body.position, angle)
}

// SetPositionAndAngle places the body origin at position with rotation angle.
func (body *Body) SetPositionAndAngle(position vec.Vec2, angle float64) {
	body.Activate()
	body.angle = angle
	rot := vec.ForAngle(angle)
	body.position = position.Add(rotateComplex(body.centerOfGravity, rot))
	body.SetTransform(body.position, angle)
}

// SetPositionRotationAndVelocity teleports the body and sets both velocities.
// Pending overlap correction is dropped.
func (body *Body) SetPositionRotationAndVelocity(position vec.Vec2, angle float64, velocity vec.Vec2, angularVelocity float64) {
	body.SetPositionAndAngle(position, angle)
	body.velocity = velocity
	body.w = angularVelocity
	body.vBias = vec.Vec2{}
	body.wBias = 0
}

// Velocity returns the velocity of the body.
func (body *Body) Velocity() vec.Vec2 {
	return body.velocity
}

// SetVelocity sets the velocity of the body
func (body *Body) SetVelocity(v vec.Vec2) {
	body.Activate()
	body.velocity = v
}

// AngularVelocity returns the angular velocity of the body.
func (body *Body) AngularVelocity() float64 {
	return body.w
}

// SetAngularVelocity sets the angular velocity of the body.
func (body *Body) SetAngularVelocity(angularVelocity float64) {
	body.Activate()
	body.w = angularVelocity
}

// Force returns the force applied to the body for the next time step.
func (body *Body) Force() vec.Vec2 {
	return body.force
}

// SetForce sets the force applied to the body for the next time step.
func (body *Body) SetForce(force vec.Vec2) {
	body.Activate()
	body.force = force
}

// SetTransform sets the transform from the world position of the center of
// gravity and an angle.
func (body *Body) SetTransform(p vec.Vec2, a float64) {
	rot := vec.Vec2{X: math.Cos(a), Y: math.Sin(a)}
	c := body.centerOfGravity

	body.transform = Transform{
		a:  rot.X,
		b:  rot.Y,
		c:  -rot.Y,
		d:  rot.X,
		tx: p.X - (c.X*rot.X - c.Y*rot.Y),
		ty: p.Y - (c.X*rot.Y + c.Y*rot.X),
	}
}

// Transform returns body's transform
func (body *Body) Transform() Transform {
	return body.transform
}

// WorldBounds returns the bounds of the body shape.
func (body *Body) WorldBounds() BB {
	return body.shape.WorldBounds(body.transform, UnitScale)
}

// Activate wakes up a sleeping or idle body. Static bodies are never active.
func (body *Body) Activate() {
	if body == nil || body.bodyType == Static {
		return
	}
	body.sleepingIdleTime = 0
	body.active = true
}

// Deactivate puts the body to sleep and clears its velocity.
func (body *Body) Deactivate() {
	if body.bodyType == Static {
		return
	}
	body.active = false
	body.velocity = vec.Vec2{}
	body.w = 0
	body.sleepingIdleTime = 0
}

// IsActive returns true if the body is simulated this step.
func (body *Body) IsActive() bool {
	return body.active
}

// IdleTime returns how long the body has been below the sleep threshold.
func (body *Body) IdleTime() float64 {
	return body.sleepingIdleTime
}

// KineticEnergy returns the kinetic energy of this body.
func (body *Body) KineticEnergy() float64 {
	// Need to do some fudging to avoid NaNs
	vsq := body.velocity.Dot(body.velocity)
	wsq := body.w * body.w
	var a, b float64
	if vsq != 0 {
		a = vsq * body.mass
	}
	if wsq != 0 {
		b = wsq * body.momentOfInertia
	}
	return a + b
}

// WorldToLocal converts from world to body local Coordinates.
func (body *Body) WorldToLocal(point vec.Vec2) vec.Vec2 {
	return body.transform.Inverse().Apply(point)
}

// LocalToWorld converts from body local to world coordinates.
func (body *Body) LocalToWorld(point vec.Vec2) vec.Vec2 {
	return body.transform.Apply(point)
}

// ApplyImpulseAtWorldPoint applies impulse at world point
func (body *Body) ApplyImpulseAtWorldPoint(impulse, point vec.Vec2) {
	body.Activate()
	r := point.Sub(body.position)
	applyImpulse(body, impulse, r)
}

// VelocityAtWorldPoint returns the world velocity of a point given in world coordinates.
func (body *Body) VelocityAtWorldPoint(point vec.Vec2) vec.Vec2 {
	r := point.Sub(body.position)
	return body.velocity.Add(perp(r).Scale(body.w))
}

// updateVelocity is the velocity integration step.
func (body *Body) updateVelocity(gravity vec.Vec2, damping, dt float64) {
	if body.bodyType != Dynamic {
		return
	}
	body.velocity = body.velocity.Scale(damping).Add(gravity.Add(body.force.Scale(body.massInverse)).Scale(dt))
	body.w = body.w*damping + body.torque*body.momentOfInertiaInverse*dt

	body.force = vec.Vec2{}
	body.torque = 0
}

// updatePosition is the position integration step.
func (body *Body) updatePosition(dt float64) {
	body.position = body.position.Add(body.velocity.Add(body.vBias).Scale(dt))
	body.angle = body.angle + (body.w+body.wBias)*dt
	body.SetTransform(body.position, body.angle)

	body.vBias = vec.Vec2{}
	body.wBias = 0
}
