package physics

import (
	"fmt"
	"log"
	"math"
	"slices"

	"github.com/setanarut/vec"
	"golang.org/x/sync/errgroup"
)

// SimCollideBodyVsBodyFunc is the narrow phase routine run for every body
// pair the broad phase finds. It must report its hits to collector, with
// shape 1 belonging to body1. The routine may be called from several
// goroutines at once for different pairs.
type SimCollideBodyVsBodyFunc func(body1, body2 *Body, transform1, transform2 Transform, settings *CollideShapeSettings, collector CollideShapeCollector, filter ShapeFilter)

// DefaultSimCollideBodyVsBody collides the two body shapes and reports every
// overlapping leaf pair.
func DefaultSimCollideBodyVsBody(body1, body2 *Body, transform1, transform2 Transform, settings *CollideShapeSettings, collector CollideShapeCollector, filter ShapeFilter) {
	CollideShapeVsShape(body1.shape, body2.shape, UnitScale, UnitScale, transform1, transform2,
		SubShapeIDCreator{}, SubShapeIDCreator{}, settings, collector, filter)
}

type bodyPairKey struct {
	a, b BodyID
}

type bodyPair struct {
	body1, body2 *Body
	hits         AllHitCollector
	reused       bool
}

func (p *bodyPair) key() bodyPairKey {
	return bodyPairKey{p.body1.id, p.body2.id}
}

// cachedPair holds the manifolds of a body pair from the last step it was
// collided, valid while neither body moves.
type cachedPair struct {
	transform1, transform2 Transform
	manifolds              []ContactManifold
	stamp                  uint
}

type contact struct {
	body1, body2 *Body
	manifold     ContactManifold
	settings     ContactSettings
	arb          *arbiter
}

// Space is a basic unit of simulation.
type Space struct {
	UserData any

	// Iterations is number of iterations to use in the impulse solver to solve
	// contacts. Must be non-zero.
	Iterations uint

	// IdleSpeedThreshold is speed threshold for a body to be considered idle.
	// The default value of 0 means to let the space guess a good threshold based on gravity.
	IdleSpeedThreshold float64

	// SleepTimeThreshold is time a body must remain idle in order to fall asleep.
	// The default value of INFINITY disables sleeping.
	SleepTimeThreshold float64

	// Gravity to pass to rigid bodies when integrating velocity.
	Gravity vec.Vec2

	// Damping rate expressed as the fraction of velocity bodies retain each second.
	//
	// A value of 0.9 would mean that each body's velocity will drop 10% per second.
	// The default value is 1.0, meaning no Damping is applied.
	Damping float64

	// CollisionSlop is amount of encouraged penetration between colliding shapes.
	//
	// Used to reduce oscillating contacts and keep the collision cache warm.
	CollisionSlop float64

	// CollisionBias determines how fast overlapping shapes are pushed apart.
	//
	// Expressed as a fraction of the error remaining after each second.
	// Defaults to math.Pow(0.9, 60) meaning that 10% of overlap is fixed each frame at 60Hz.
	CollisionBias float64

	// SpeculativeContactDistance is the separation up to which contacts are
	// created before shapes touch.
	SpeculativeContactDistance float64

	// Workers is the number of goroutines running the narrow phase.
	// Values below 2 run it on the stepping goroutine.
	Workers int

	// ContactListener receives contact events, may be nil.
	ContactListener ContactListener

	// ShapeFilter is passed to the narrow phase routine, nil accepts everything.
	ShapeFilter ShapeFilter

	bodies            []*Body
	freeIDs           []BodyID
	broadphase        *BBTree
	collideBodyVsBody SimCollideBodyVsBodyFunc
	pairs             []bodyPair
	pairCache         map[bodyPairKey]*cachedPair
	contacts          map[SubShapeIDPair]*contact
	contactOrder      []SubShapeIDPair
	arbiters          []*arbiter
	stamp             uint
	currDT            float64
	locked            bool
}

// NewSpace allocates and initializes a Space
func NewSpace() *Space {
	return &Space{
		Iterations:                 10,
		IdleSpeedThreshold:         0.0,
		SleepTimeThreshold:         infinity,
		Gravity:                    vec.Vec2{},
		Damping:                    1.0,
		CollisionSlop:              0.01,
		CollisionBias:              math.Pow(0.9, 60),
		SpeculativeContactDistance: 0.02,
		Workers:                    1,
		broadphase:                 NewBBTree(),
		collideBodyVsBody:          DefaultSimCollideBodyVsBody,
		pairCache:                  map[bodyPairKey]*cachedPair{},
		contacts:                   map[SubShapeIDPair]*contact{},
	}
}

// IsLocked returns true from inside a step, when bodies cannot be added or removed.
func (s *Space) IsLocked() bool {
	return s.locked
}

func (s *Space) assertUnlocked(op string) {
	if s.locked {
		log.Panicf("physics: %s while the space is locked. Wait until the current step is complete.", op)
	}
}

// SetSimCollideBodyVsBody installs the narrow phase routine used from the
// next step on. nil restores DefaultSimCollideBodyVsBody.
func (s *Space) SetSimCollideBodyVsBody(f SimCollideBodyVsBodyFunc) {
	s.assertUnlocked("cannot swap the body vs body routine")
	if f == nil {
		f = DefaultSimCollideBodyVsBody
	}
	s.collideBodyVsBody = f
}

// SimCollideBodyVsBody returns the installed narrow phase routine.
func (s *Space) SimCollideBodyVsBody() SimCollideBodyVsBodyFunc {
	return s.collideBodyVsBody
}

// AddBody adds body to the space and returns its new ID.
//
// Do not add the same Body twice.
func (s *Space) AddBody(body *Body) BodyID {
	s.assertUnlocked("cannot add a body")
	if body.Space != nil {
		log.Panicln("physics: body is already in a space")
	}
	if n := len(s.freeIDs); n > 0 {
		body.id = s.freeIDs[n-1]
		s.freeIDs = s.freeIDs[:n-1]
		s.bodies[body.id] = body
	} else {
		body.id = BodyID(len(s.bodies))
		s.bodies = append(s.bodies, body)
	}
	body.Space = s
	return body.id
}

// RemoveBody removes a body from the simulation. Its contacts are reported
// removed during the next step.
func (s *Space) RemoveBody(body *Body) {
	s.assertUnlocked("cannot remove a body")
	if body.Space != s {
		return
	}
	s.InvalidateContactCache(body.id)
	s.bodies[body.id] = nil
	s.freeIDs = append(s.freeIDs, body.id)
	body.Space = nil
	body.id = InvalidBodyID
}

// Body returns the body with the given ID, or nil.
func (s *Space) Body(id BodyID) *Body {
	if int(id) >= len(s.bodies) {
		return nil
	}
	return s.bodies[id]
}

// BodyCount returns the number of bodies in the space.
func (s *Space) BodyCount() int {
	return len(s.bodies) - len(s.freeIDs)
}

// EachBody calls f for each body in ID order.
func (s *Space) EachBody(f func(b *Body)) {
	for _, b := range s.bodies {
		if b != nil {
			f(b)
		}
	}
}

// EachContact calls f for each manifold found in the last step, in the order
// the contact events were raised.
func (s *Space) EachContact(f func(body1, body2 *Body, manifold *ContactManifold, settings ContactSettings)) {
	for _, key := range s.contactOrder {
		c := s.contacts[key]
		f(c.body1, c.body2, &c.manifold, c.settings)
	}
}

// ContactCount returns the number of manifolds found in the last step.
func (s *Space) ContactCount() int {
	return len(s.contactOrder)
}

// ActivateBody wakes the body with the given ID.
func (s *Space) ActivateBody(id BodyID) {
	if b := s.Body(id); b != nil {
		b.Activate()
	}
}

// SetPositionRotationAndVelocity teleports the body with the given ID.
func (s *Space) SetPositionRotationAndVelocity(id BodyID, position vec.Vec2, angle float64, velocity vec.Vec2, angularVelocity float64) {
	if b := s.Body(id); b != nil {
		b.SetPositionRotationAndVelocity(position, angle, velocity, angularVelocity)
	}
}

// InvalidateContactCache forces every pair involving the body through the
// narrow phase on the next step, even if nothing moved.
func (s *Space) InvalidateContactCache(id BodyID) {
	for key := range s.pairCache {
		if key.a == id || key.b == id {
			delete(s.pairCache, key)
		}
	}
}

// TimeStep returns the current (or most recent) time step used with the given space.
func (s *Space) TimeStep() float64 {
	return s.currDT
}

// Step makes the simulation go forward by dt. The narrow phase routine is
// read once at the start of the step.
func (s *Space) Step(dt float64) {
	if dt == 0 {
		return
	}
	s.assertUnlocked("cannot step")

	s.stamp++

	prevDT := s.currDT
	s.currDT = dt

	s.locked = true
	defer func() { s.locked = false }()

	// Integrate positions
	for _, body := range s.bodies {
		if body != nil && body.active {
			body.updatePosition(dt)
		}
	}

	// Find colliding pairs.
	s.findPairs()
	s.collidePairs()
	s.updateContacts()

	s.processSleep(dt)

	// Prestep the arbiters.
	slop := s.CollisionSlop
	biasCoef := 1 - math.Pow(s.CollisionBias, dt)
	for _, arb := range s.arbiters {
		arb.preStep(dt, slop, biasCoef)
	}

	// Integrate velocities.
	damping := math.Pow(s.Damping, dt)
	for _, body := range s.bodies {
		if body != nil && body.active {
			body.updateVelocity(s.Gravity, damping, dt)
		}
	}

	// Apply cached impulses
	var dtCoef float64
	if prevDT != 0 {
		dtCoef = dt / prevDT
	}
	for _, arb := range s.arbiters {
		arb.applyCachedImpulse(dtCoef)
	}

	// Run the impulse solver.
	for i := uint(0); i < s.Iterations; i++ {
		for _, arb := range s.arbiters {
			arb.applyImpulse()
		}
	}
}

// queryReject returns true if the two bodies must not be collided.
func queryReject(a, b *Body) bool {
	if a == b {
		return true
	}
	if a.Filter.Reject(b.Filter) {
		return true
	}
	if !a.IsDynamic() && !b.IsDynamic() {
		return !(a.IsKinematic() && a.CollideKinematicVsNonDynamic) &&
			!(b.IsKinematic() && b.CollideKinematicVsNonDynamic)
	}
	return false
}

func (s *Space) findPairs() {
	margin := s.SpeculativeContactDistance
	s.broadphase.Reset()
	for _, body := range s.bodies {
		if body != nil {
			s.broadphase.Insert(int(body.id), body.WorldBounds().Grow(margin))
		}
	}

	s.pairs = s.pairs[:0]
	for _, body := range s.bodies {
		// Static and sleeping bodies are only found, never searched from.
		if body == nil || !body.active {
			continue
		}
		s.broadphase.Query(body.WorldBounds().Grow(margin), func(index int) bool {
			other := s.bodies[index]
			if other.active && other.id < body.id {
				// found from the other side
				return true
			}
			if queryReject(body, other) {
				return true
			}
			if !other.active && other.IsDynamic() && body.sleepingIdleTime == 0 {
				other.Activate()
			}
			if body.id < other.id {
				s.pairs = append(s.pairs, bodyPair{body1: body, body2: other})
			} else {
				s.pairs = append(s.pairs, bodyPair{body1: other, body2: body})
			}
			return true
		})
	}
	slices.SortFunc(s.pairs, func(x, y bodyPair) int {
		if x.body1.id != y.body1.id {
			return int(x.body1.id) - int(y.body1.id)
		}
		return int(x.body2.id) - int(y.body2.id)
	})
}

func (s *Space) collidePairs() {
	routine := s.collideBodyVsBody
	filter := s.ShapeFilter
	if filter == nil {
		filter = DefaultShapeFilter{}
	}
	settings := CollideShapeSettings{MaxSeparationDistance: s.SpeculativeContactDistance, CollectFaces: true}

	work := make([]int, 0, len(s.pairs))
	for i := range s.pairs {
		p := &s.pairs[i]
		cached, ok := s.pairCache[p.key()]
		if ok && cached.transform1 == p.body1.transform && cached.transform2 == p.body2.transform {
			p.reused = true
			continue
		}
		work = append(work, i)
	}

	collide := func(p *bodyPair) {
		local := settings
		routine(p.body1, p.body2, p.body1.transform, p.body2.transform, &local, &p.hits, filter)
	}
	if s.Workers < 2 || len(work) < 2 {
		for _, i := range work {
			collide(&s.pairs[i])
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(s.Workers)
	for _, i := range work {
		p := &s.pairs[i]
		g.Go(func() error {
			collide(p)
			return nil
		})
	}
	// collide never fails
	g.Wait()
}

func (s *Space) updateContacts() {
	listener := s.ContactListener
	prev := s.contacts
	next := make(map[SubShapeIDPair]*contact, len(prev))
	order := make([]SubShapeIDPair, 0, len(s.contactOrder))
	s.arbiters = s.arbiters[:0]

	for i := range s.pairs {
		p := &s.pairs[i]
		b1, b2 := p.body1, p.body2

		var manifolds []ContactManifold
		if p.reused {
			cached := s.pairCache[p.key()]
			cached.stamp = s.stamp
			manifolds = cached.manifolds
		} else {
			base := b1.position
			for j := range p.hits.Hits {
				manifolds = append(manifolds, manifoldFromHit(&p.hits.Hits[j], base, s.SpeculativeContactDistance))
			}
			if b1.UseManifoldReduction && b2.UseManifoldReduction && len(manifolds) > 1 {
				manifolds = reduceManifolds(manifolds)
			}
			s.pairCache[p.key()] = &cachedPair{
				transform1: b1.transform,
				transform2: b2.transform,
				manifolds:  manifolds,
				stamp:      s.stamp,
			}
		}

		for j := range manifolds {
			key := SubShapeIDPair{b1.id, manifolds[j].SubShapeID1, b2.id, manifolds[j].SubShapeID2}
			if _, dup := next[key]; dup {
				continue
			}
			c := &contact{
				body1:    b1,
				body2:    b2,
				manifold: manifolds[j],
				settings: ContactSettings{
					CombinedFriction:    b1.Friction * b2.Friction,
					CombinedRestitution: b1.Restitution * b2.Restitution,
					IsSensor:            b1.sensor || b2.sensor,
				},
			}
			old, existed := prev[key]
			if listener != nil {
				if existed {
					listener.OnContactPersisted(b1, b2, &c.manifold, &c.settings)
				} else {
					listener.OnContactAdded(b1, b2, &c.manifold, &c.settings)
				}
			}
			next[key] = c
			order = append(order, key)

			if c.settings.IsSensor || (!b1.IsDynamic() && !b2.IsDynamic()) {
				continue
			}
			arb := newArbiter(key, b1, b2, &c.manifold, &c.settings)
			if existed {
				arb.warmStart(old.arb)
			}
			c.arb = arb
			s.arbiters = append(s.arbiters, arb)
		}
	}

	if listener != nil {
		for _, key := range s.contactOrder {
			if _, ok := next[key]; !ok {
				listener.OnContactRemoved(key)
			}
		}
	}
	s.contacts = next
	s.contactOrder = order

	for key, cached := range s.pairCache {
		if cached.stamp != s.stamp {
			delete(s.pairCache, key)
		}
	}
	for i := range s.pairs {
		s.pairs[i].hits = AllHitCollector{}
	}
}

func (s *Space) processSleep(dt float64) {
	if s.SleepTimeThreshold == infinity {
		return
	}
	dv := s.IdleSpeedThreshold
	var dvsq float64
	if dv != 0 {
		dvsq = dv * dv
	} else {
		dvsq = lengthSq(s.Gravity) * dt * dt
	}

	for _, body := range s.bodies {
		if body == nil || !body.active || !body.IsDynamic() {
			continue
		}
		// Need to deal with infinite mass objects
		var keThreshold float64
		if dvsq != 0 {
			keThreshold = body.mass * dvsq
		}
		if body.KineticEnergy() > keThreshold {
			body.sleepingIdleTime = 0
		} else {
			body.sleepingIdleTime += dt
		}
	}

	// Bodies touching a moving body stay awake.
	for _, arb := range s.arbiters {
		a, b := arb.bodyA, arb.bodyB
		if a.IsKinematic() || (a.active && a.sleepingIdleTime == 0) {
			b.sleepingIdleTime = 0
		}
		if b.IsKinematic() || (b.active && b.sleepingIdleTime == 0) {
			a.sleepingIdleTime = 0
		}
	}

	for _, body := range s.bodies {
		if body != nil && body.active && body.IsDynamic() && body.sleepingIdleTime >= s.SleepTimeThreshold {
			body.Deactivate()
		}
	}
}

// SaveState writes the motion state of every body. Contact caches are not
// part of the state.
func (s *Space) SaveState(rec *StateRecorder) {
	rec.WriteUint32(uint32(s.BodyCount()))
	s.EachBody(func(b *Body) {
		rec.WriteUint32(uint32(b.id))
		rec.WriteVec2(b.position)
		rec.WriteFloat64(b.angle)
		rec.WriteVec2(b.velocity)
		rec.WriteFloat64(b.w)
		rec.WriteBool(b.active)
		rec.WriteFloat64(b.sleepingIdleTime)
		rec.WriteVec2(b.vBias)
		rec.WriteFloat64(b.wBias)
	})
	rec.WriteFloat64(s.currDT)
}

// RestoreState reads what SaveState wrote into a space holding the same
// bodies. Cached contacts are dropped, so the next step reports every
// contact as added.
func (s *Space) RestoreState(rec *StateRecorder) error {
	s.assertUnlocked("cannot restore state")
	count, err := rec.ReadUint32()
	if err != nil {
		return fmt.Errorf("read body count: %w", err)
	}
	if int(count) != s.BodyCount() {
		return fmt.Errorf("%w: %d bodies recorded, %d in space", ErrStateMismatch, count, s.BodyCount())
	}
	for i := uint32(0); i < count; i++ {
		id, err := rec.ReadUint32()
		if err != nil {
			return fmt.Errorf("read body id: %w", err)
		}
		b := s.Body(BodyID(id))
		if b == nil {
			return fmt.Errorf("%w: no body with id %d", ErrStateMismatch, id)
		}
		if b.position, err = rec.ReadVec2(); err != nil {
			return fmt.Errorf("read body %d: %w", id, err)
		}
		if b.angle, err = rec.ReadFloat64(); err != nil {
			return fmt.Errorf("read body %d: %w", id, err)
		}
		if b.velocity, err = rec.ReadVec2(); err != nil {
			return fmt.Errorf("read body %d: %w", id, err)
		}
		if b.w, err = rec.ReadFloat64(); err != nil {
			return fmt.Errorf("read body %d: %w", id, err)
		}
		if b.active, err = rec.ReadBool(); err != nil {
			return fmt.Errorf("read body %d: %w", id, err)
		}
		if b.sleepingIdleTime, err = rec.ReadFloat64(); err != nil {
			return fmt.Errorf("read body %d: %w", id, err)
		}
		if b.vBias, err = rec.ReadVec2(); err != nil {
			return fmt.Errorf("read body %d: %w", id, err)
		}
		if b.wBias, err = rec.ReadFloat64(); err != nil {
			return fmt.Errorf("read body %d: %w", id, err)
		}
		b.SetTransform(b.position, b.angle)
	}
	if s.currDT, err = rec.ReadFloat64(); err != nil {
		return fmt.Errorf("read time step: %w", err)
	}
	clear(s.pairCache)
	clear(s.contacts)
	s.contactOrder = s.contactOrder[:0]
	s.arbiters = s.arbiters[:0]
	return nil
}
