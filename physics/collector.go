package physics

// CollideShapeCollector receives the hits of a shape query.
type CollideShapeCollector interface {
	AddHit(hit CollideShapeResult)
	// ShouldEarlyOut reports that no further hits are wanted.
	ShouldEarlyOut() bool
}

// HitCollector is a collector that keeps at most one hit.
type HitCollector interface {
	CollideShapeCollector
	HadHit() bool
	Hit() CollideShapeResult
}

// AllHitCollector keeps every hit in arrival order.
type AllHitCollector struct {
	Hits []CollideShapeResult
}

func (c *AllHitCollector) AddHit(hit CollideShapeResult) {
	c.Hits = append(c.Hits, hit)
}

func (c *AllHitCollector) ShouldEarlyOut() bool { return false }

func (c *AllHitCollector) HadHit() bool {
	return len(c.Hits) > 0
}

// Reset drops the hits but keeps the storage.
func (c *AllHitCollector) Reset() {
	c.Hits = c.Hits[:0]
}

// AnyHitCollector keeps the first hit and stops the query.
type AnyHitCollector struct {
	hit    CollideShapeResult
	hadHit bool
}

func (c *AnyHitCollector) AddHit(hit CollideShapeResult) {
	if !c.hadHit {
		c.hit = hit
		c.hadHit = true
	}
}

func (c *AnyHitCollector) ShouldEarlyOut() bool { return c.hadHit }

func (c *AnyHitCollector) HadHit() bool { return c.hadHit }

func (c *AnyHitCollector) Hit() CollideShapeResult { return c.hit }

// DeepestHitCollector keeps the hit with the largest penetration depth.
// When depths tie the first hit wins.
type DeepestHitCollector struct {
	hit    CollideShapeResult
	hadHit bool
}

func (c *DeepestHitCollector) AddHit(hit CollideShapeResult) {
	if !c.hadHit || hit.PenetrationDepth > c.hit.PenetrationDepth {
		c.hit = hit
		c.hadHit = true
	}
}

func (c *DeepestHitCollector) ShouldEarlyOut() bool { return false }

func (c *DeepestHitCollector) HadHit() bool { return c.hadHit }

func (c *DeepestHitCollector) Hit() CollideShapeResult { return c.hit }
