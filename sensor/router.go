// Package sensor provides narrow phase routines that reduce the contacts
// reported for sensor bodies. Pairs without a sensor always take the
// default path.
package sensor

import "github.com/setanarut/simcollide/physics"

func involvesSensor(body1, body2 *physics.Body) bool {
	return body1.IsSensor() || body2.IsSensor()
}

// PerBody returns a routine that reports at most one hit per sensor pair,
// chosen by policy from a single test between the two body shapes. The
// space shape filter is not applied to sensor pairs.
func PerBody(policy Policy) physics.SimCollideBodyVsBodyFunc {
	return func(body1, body2 *physics.Body, transform1, transform2 physics.Transform, settings *physics.CollideShapeSettings, collector physics.CollideShapeCollector, filter physics.ShapeFilter) {
		if !involvesSensor(body1, body2) {
			physics.DefaultSimCollideBodyVsBody(body1, body2, transform1, transform2, settings, collector, filter)
			return
		}
		hit := policy.NewCollector()
		physics.CollideShapeVsShape(body1.Shape(), body2.Shape(), physics.UnitScale, physics.UnitScale,
			transform1, transform2, physics.SubShapeIDCreator{}, physics.SubShapeIDCreator{},
			settings, hit, physics.DefaultShapeFilter{})
		if hit.HadHit() {
			collector.AddHit(hit.Hit())
		}
	}
}

// PerLeaf returns a routine that reports at most one hit per overlapping
// leaf pair of a sensor pair, chosen by policy.
//
// The leaves of each body are first culled against the bounds of the other
// body, then every remaining leaf pair with overlapping bounds is tested.
func PerLeaf(policy Policy) physics.SimCollideBodyVsBodyFunc {
	return func(body1, body2 *physics.Body, transform1, transform2 physics.Transform, settings *physics.CollideShapeSettings, collector physics.CollideShapeCollector, filter physics.ShapeFilter) {
		if !involvesSensor(body1, body2) {
			physics.DefaultSimCollideBodyVsBody(body1, body2, transform1, transform2, settings, collector, filter)
			return
		}
		shape1, shape2 := body1.Shape(), body2.Shape()
		bounds1 := shape1.WorldBounds(transform1, physics.UnitScale)
		bounds2 := shape2.WorldBounds(transform2, physics.UnitScale)

		var leaves1, leaves2 LeafCollector
		CollectLeaves(shape1, transform1, bounds2, filter, &leaves1)
		CollectLeaves(shape2, transform2, bounds1, filter, &leaves2)

		for i := range leaves1.Leaves {
			leaf1 := &leaves1.Leaves[i]
			for j := range leaves2.Leaves {
				leaf2 := &leaves2.Leaves[j]
				if !leaf1.Bounds.Intersects(leaf2.Bounds) {
					continue
				}
				hit := policy.NewCollector()
				physics.CollideShapeVsShape(leaf1.Shape, leaf2.Shape, leaf1.Scale, leaf2.Scale,
					leaf1.Transform, leaf2.Transform, leaf1.SubShapeIDCreator, leaf2.SubShapeIDCreator,
					settings, hit, filter)
				if hit.HadHit() {
					collector.AddHit(hit.Hit())
				}
			}
		}
	}
}
