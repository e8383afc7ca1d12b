package physics

import (
	"math"

	"github.com/setanarut/vec"
)

const (
	// MaxContactPointsPerManifold is the most points a reduced manifold keeps.
	MaxContactPointsPerManifold = 2
	// manifolds whose normals are closer than this cosine merge under reduction
	manifoldNormalTolerance = 0.996194698 // cos(5 deg)
	contactPointMergeDistSq = 1e-8
)

// ContactManifold is a set of contact points between one leaf of body 1 and
// one leaf of body 2. Points are stored relative to BaseOffset.
type ContactManifold struct {
	BaseOffset vec.Vec2
	// WorldSpaceNormal points from body 1 towards body 2.
	WorldSpaceNormal         vec.Vec2
	PenetrationDepth         float64
	SubShapeID1              SubShapeID
	SubShapeID2              SubShapeID
	RelativeContactPointsOn1 []vec.Vec2
	RelativeContactPointsOn2 []vec.Vec2
}

// WorldSpaceContactPointOn1 returns point i on the surface of body 1.
func (m *ContactManifold) WorldSpaceContactPointOn1(i int) vec.Vec2 {
	return m.BaseOffset.Add(m.RelativeContactPointsOn1[i])
}

// WorldSpaceContactPointOn2 returns point i on the surface of body 2.
func (m *ContactManifold) WorldSpaceContactPointOn2(i int) vec.Vec2 {
	return m.BaseOffset.Add(m.RelativeContactPointsOn2[i])
}

// NumPoints returns the number of point pairs.
func (m *ContactManifold) NumPoints() int {
	return len(m.RelativeContactPointsOn1)
}

// ContactSettings may be changed by a ContactListener before the contact is solved.
type ContactSettings struct {
	CombinedFriction    float64
	CombinedRestitution float64
	// IsSensor contacts are reported but never solved.
	IsSensor bool
}

// ContactListener receives contact events during Space.Step. Callbacks run on
// the stepping goroutine, in body pair order.
type ContactListener interface {
	// OnContactAdded is called for a manifold that did not exist last step.
	OnContactAdded(body1, body2 *Body, manifold *ContactManifold, settings *ContactSettings)
	// OnContactPersisted is called for a manifold that also existed last step.
	OnContactPersisted(body1, body2 *Body, manifold *ContactManifold, settings *ContactSettings)
	// OnContactRemoved is called once a manifold stops being reported.
	OnContactRemoved(pair SubShapeIDPair)
}

// manifoldFromHit turns a narrow phase hit into a manifold relative to base.
// When both supporting faces are edges they are clipped against each other
// to yield up to two points, otherwise the hit's contact points are used.
func manifoldFromHit(hit *CollideShapeResult, base vec.Vec2, maxSeparation float64) ContactManifold {
	m := ContactManifold{
		BaseOffset:       base,
		WorldSpaceNormal: hit.PenetrationAxis,
		PenetrationDepth: hit.PenetrationDepth,
		SubShapeID1:      hit.SubShapeID1,
		SubShapeID2:      hit.SubShapeID2,
	}
	if hit.Face1.Count == 2 && hit.Face2.Count == 2 {
		clipFaces(&m, hit.Face1.Points, hit.Face2.Points, hit.PenetrationAxis, maxSeparation)
	}
	if m.NumPoints() == 0 {
		m.RelativeContactPointsOn1 = append(m.RelativeContactPointsOn1, hit.ContactPointOn1.Sub(base))
		m.RelativeContactPointsOn2 = append(m.RelativeContactPointsOn2, hit.ContactPointOn2.Sub(base))
	}
	return m
}

// clipFaces finds contact point pairs on two support edges' surfaces.
func clipFaces(m *ContactManifold, e1, e2 [2]vec.Vec2, n vec.Vec2, maxSeparation float64) {
	dE1A := e1[0].Cross(n)
	dE1B := e1[1].Cross(n)
	dE2A := e2[0].Cross(n)
	dE2B := e2[1].Cross(n)

	e1Denom := 1 / (dE1B - dE1A + math.SmallestNonzeroFloat64)
	e2Denom := 1 / (dE2B - dE2A + math.SmallestNonzeroFloat64)

	// Project the endpoints of the two edges onto the opposing edge, clamping them as necessary.
	// Compare the projected points to the collision normal to see if the shapes overlap there.
	push := func(p1, p2 vec.Vec2) {
		if p2.Sub(p1).Dot(n) > maxSeparation {
			return
		}
		for i := range m.RelativeContactPointsOn1 {
			if lengthSq(m.WorldSpaceContactPointOn1(i).Sub(p1)) < contactPointMergeDistSq {
				return
			}
		}
		m.RelativeContactPointsOn1 = append(m.RelativeContactPointsOn1, p1.Sub(m.BaseOffset))
		m.RelativeContactPointsOn2 = append(m.RelativeContactPointsOn2, p2.Sub(m.BaseOffset))
	}
	push(
		e1[0].Lerp(e1[1], clamp01((dE2B-dE1A)*e1Denom)),
		e2[0].Lerp(e2[1], clamp01((dE1A-dE2A)*e2Denom)),
	)
	push(
		e1[0].Lerp(e1[1], clamp01((dE2A-dE1A)*e1Denom)),
		e2[0].Lerp(e2[1], clamp01((dE1B-dE2A)*e2Denom)),
	)
}

// reduceManifolds merges manifolds with nearly parallel normals and prunes
// each merged point set to the two points spanning the widest tangent range.
func reduceManifolds(manifolds []ContactManifold) []ContactManifold {
	out := manifolds[:0]
	for _, m := range manifolds {
		merged := false
		for i := range out {
			o := &out[i]
			if o.WorldSpaceNormal.Dot(m.WorldSpaceNormal) < manifoldNormalTolerance {
				continue
			}
			o.RelativeContactPointsOn1 = append(o.RelativeContactPointsOn1, m.RelativeContactPointsOn1...)
			o.RelativeContactPointsOn2 = append(o.RelativeContactPointsOn2, m.RelativeContactPointsOn2...)
			if m.PenetrationDepth > o.PenetrationDepth {
				o.PenetrationDepth = m.PenetrationDepth
			}
			merged = true
			break
		}
		if !merged {
			out = append(out, m)
		}
	}
	for i := range out {
		pruneContactPoints(&out[i])
	}
	return out
}

func pruneContactPoints(m *ContactManifold) {
	if m.NumPoints() <= MaxContactPointsPerManifold {
		return
	}
	tangent := perp(m.WorldSpaceNormal)
	lo, hi := 0, 0
	for i, p := range m.RelativeContactPointsOn1 {
		if p.Dot(tangent) < m.RelativeContactPointsOn1[lo].Dot(tangent) {
			lo = i
		}
		if p.Dot(tangent) > m.RelativeContactPointsOn1[hi].Dot(tangent) {
			hi = i
		}
	}
	p1 := []vec.Vec2{m.RelativeContactPointsOn1[lo], m.RelativeContactPointsOn1[hi]}
	p2 := []vec.Vec2{m.RelativeContactPointsOn2[lo], m.RelativeContactPointsOn2[hi]}
	m.RelativeContactPointsOn1 = p1
	m.RelativeContactPointsOn2 = p2
}
