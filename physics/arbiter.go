package physics

import (
	"math"

	"github.com/setanarut/vec"
)

const warmStartMatchDistSq = 1e-4

type contactPoint struct {
	r1, r2 vec.Vec2

	nMass, tMass float64
	bias, bounce float64

	jnAcc, jtAcc, jBias float64
}

// arbiter solves the non-penetration and friction constraints of one
// contact manifold with sequential impulses.
type arbiter struct {
	key          SubShapeIDPair
	bodyA, bodyB *Body
	e, u         float64
	normal       vec.Vec2
	contacts     []contactPoint
	// the previous step had a manifold with the same key
	persisted bool
}

func newArbiter(key SubShapeIDPair, a, b *Body, m *ContactManifold, settings *ContactSettings) *arbiter {
	arb := &arbiter{
		key:      key,
		bodyA:    a,
		bodyB:    b,
		e:        settings.CombinedRestitution,
		u:        settings.CombinedFriction,
		normal:   m.WorldSpaceNormal,
		contacts: make([]contactPoint, m.NumPoints()),
	}
	for i := range arb.contacts {
		// r1 and r2 are offsets from the centers of gravity.
		arb.contacts[i].r1 = m.WorldSpaceContactPointOn1(i).Sub(a.position)
		arb.contacts[i].r2 = m.WorldSpaceContactPointOn2(i).Sub(b.position)
	}
	return arb
}

// warmStart copies accumulated impulses from the matching points of old.
func (arb *arbiter) warmStart(old *arbiter) {
	if old == nil {
		return
	}
	arb.persisted = true
	for i := range arb.contacts {
		con := &arb.contacts[i]
		for j := range old.contacts {
			// This could trigger false positives, but is fairly unlikely nor serious if it does.
			if lengthSq(con.r1.Sub(old.contacts[j].r1)) < warmStartMatchDistSq {
				con.jnAcc = old.contacts[j].jnAcc
				con.jtAcc = old.contacts[j].jtAcc
				break
			}
		}
	}
}

func (arb *arbiter) preStep(dt, slop, bias float64) {
	a := arb.bodyA
	b := arb.bodyB
	n := arb.normal
	bodyDelta := b.position.Sub(a.position)

	for i := range arb.contacts {
		con := &arb.contacts[i]

		// Calculate the mass normal and mass tangent.
		con.nMass = 1.0 / kScalar(a, b, con.r1, con.r2, n)
		con.tMass = 1.0 / kScalar(a, b, con.r1, con.r2, perp(n))

		// Calculate the target bias velocity.
		dist := con.r2.Sub(con.r1).Add(bodyDelta).Dot(n)
		con.bias = -bias * math.Min(0, dist+slop) / dt
		con.jBias = 0.0

		// Calculate the target bounce velocity.
		con.bounce = normalRelativeVelocity(a, b, con.r1, con.r2, n) * arb.e
	}
}

func (arb *arbiter) applyCachedImpulse(dtCoef float64) {
	if !arb.persisted {
		return
	}
	for i := range arb.contacts {
		con := &arb.contacts[i]
		j := rotateComplex(arb.normal, vec.Vec2{X: con.jnAcc, Y: con.jtAcc})
		applyImpulses(arb.bodyA, arb.bodyB, con.r1, con.r2, j.Scale(dtCoef))
	}
}

func (arb *arbiter) applyImpulse() {
	a := arb.bodyA
	b := arb.bodyB
	n := arb.normal
	friction := arb.u

	for i := range arb.contacts {
		con := &arb.contacts[i]
		nMass := con.nMass
		r1 := con.r1
		r2 := con.r2

		vb1 := a.vBias.Add(perp(r1).Scale(a.wBias))
		vb2 := b.vBias.Add(perp(r2).Scale(b.wBias))
		vr := relativeVelocity(a, b, r1, r2)

		vbn := vb2.Sub(vb1).Dot(n)
		vrn := vr.Dot(n)
		vrt := vr.Dot(perp(n))

		jbn := (con.bias - vbn) * nMass
		jbnOld := con.jBias
		con.jBias = math.Max(jbnOld+jbn, 0)

		jn := -(con.bounce + vrn) * nMass
		jnOld := con.jnAcc
		con.jnAcc = math.Max(jnOld+jn, 0)

		jtMax := friction * con.jnAcc
		jt := -vrt * con.tMass
		jtOld := con.jtAcc
		con.jtAcc = clamp(jtOld+jt, -jtMax, jtMax)

		applyBiasImpulses(a, b, r1, r2, n.Scale(con.jBias-jbnOld))
		applyImpulses(a, b, r1, r2, rotateComplex(n, vec.Vec2{
			X: con.jnAcc - jnOld,
			Y: con.jtAcc - jtOld,
		}))
	}
}

func applyImpulses(a, b *Body, r1, r2, j vec.Vec2) {
	b.velocity.X += j.X * b.massInverse
	b.velocity.Y += j.Y * b.massInverse
	b.w += b.momentOfInertiaInverse * (r2.X*j.Y - r2.Y*j.X)

	j.X = -j.X
	j.Y = -j.Y
	a.velocity.X += j.X * a.massInverse
	a.velocity.Y += j.Y * a.massInverse
	a.w += a.momentOfInertiaInverse * (r1.X*j.Y - r1.Y*j.X)
}

func applyImpulse(body *Body, j, r vec.Vec2) {
	body.velocity.X += j.X * body.massInverse
	body.velocity.Y += j.Y * body.massInverse
	body.w += body.momentOfInertiaInverse * r.Cross(j)
}

func applyBiasImpulses(a, b *Body, r1, r2, j vec.Vec2) {
	b.vBias.X += j.X * b.massInverse
	b.vBias.Y += j.Y * b.massInverse
	b.wBias += b.momentOfInertiaInverse * (r2.X*j.Y - r2.Y*j.X)

	j.X = -j.X
	j.Y = -j.Y
	a.vBias.X += j.X * a.massInverse
	a.vBias.Y += j.Y * a.massInverse
	a.wBias += a.momentOfInertiaInverse * (r1.X*j.Y - r1.Y*j.X)
}

func relativeVelocity(a, b *Body, r1, r2 vec.Vec2) vec.Vec2 {
	return perp(r2).Scale(b.w).Add(b.velocity).Sub(perp(r1).Scale(a.w).Add(a.velocity))
}

func normalRelativeVelocity(a, b *Body, r1, r2, n vec.Vec2) float64 {
	return relativeVelocity(a, b, r1, r2).Dot(n)
}

func kScalarBody(body *Body, r, n vec.Vec2) float64 {
	rcn := r.Cross(n)
	return body.massInverse + body.momentOfInertiaInverse*rcn*rcn
}

func kScalar(a, b *Body, r1, r2, n vec.Vec2) float64 {
	return kScalarBody(a, r1, n) + kScalarBody(b, r2, n)
}
