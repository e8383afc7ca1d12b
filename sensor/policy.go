package sensor

import (
	"fmt"

	"github.com/setanarut/simcollide/physics"
)

// Policy selects how the hits of one test are reduced to a single hit.
type Policy uint8

const (
	// AnyHit keeps the first hit and stops the test.
	AnyHit Policy = iota
	// DeepestHit keeps the hit with the largest penetration depth.
	DeepestHit
)

// NewCollector returns a fresh collector implementing the policy.
func (p Policy) NewCollector() physics.HitCollector {
	switch p {
	case AnyHit:
		return &physics.AnyHitCollector{}
	case DeepestHit:
		return &physics.DeepestHitCollector{}
	}
	panic(fmt.Sprintf("sensor: unknown policy %d", uint8(p)))
}

func (p Policy) String() string {
	switch p {
	case AnyHit:
		return "any"
	case DeepestHit:
		return "deepest"
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}
