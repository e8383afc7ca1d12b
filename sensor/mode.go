package sensor

import (
	"fmt"

	"github.com/setanarut/simcollide/physics"
)

// Mode is one of the sensor collision strategies.
type Mode int32

const (
	ModeAllContacts Mode = iota
	ModeAnyHitPerBody
	ModeDeepestHitPerBody
	ModeAnyHitPerLeaf
	ModeDeepestHitPerLeaf

	// NumModes is the length of the mode cycle.
	NumModes = 5
)

// NoMode is the previous mode of a clock that has never advanced.
const NoMode Mode = -1

func (m Mode) String() string {
	switch m {
	case ModeAllContacts:
		return "Sensor: Collect all contact points"
	case ModeAnyHitPerBody:
		return "Sensor: Collect any contact point per body"
	case ModeDeepestHitPerBody:
		return "Sensor: Collect deepest contact point per body"
	case ModeAnyHitPerLeaf:
		return "Sensor: Collect any contact point per leaf shape"
	case ModeDeepestHitPerLeaf:
		return "Sensor: Collect deepest contact point per leaf shape"
	}
	return fmt.Sprintf("Mode(%d)", int32(m))
}

var routines = [NumModes]physics.SimCollideBodyVsBodyFunc{
	ModeAllContacts:       physics.DefaultSimCollideBodyVsBody,
	ModeAnyHitPerBody:     PerBody(AnyHit),
	ModeDeepestHitPerBody: PerBody(DeepestHit),
	ModeAnyHitPerLeaf:     PerLeaf(AnyHit),
	ModeDeepestHitPerLeaf: PerLeaf(DeepestHit),
}

// Routine returns the narrow phase routine for the mode. Unknown modes use
// the default routine.
func (m Mode) Routine() physics.SimCollideBodyVsBodyFunc {
	if m < 0 || m >= NumModes {
		return physics.DefaultSimCollideBodyVsBody
	}
	return routines[m]
}

// DefaultModePeriod is how long each mode lasts.
const DefaultModePeriod = 3.0

// ModeClock cycles through the modes as simulated time passes.
type ModeClock struct {
	// Period is the time each mode lasts. Must be positive.
	Period float64

	prevMode Mode
	time     float64
}

// NewModeClock returns a clock at time zero that reports a change on its
// first Advance.
func NewModeClock() *ModeClock {
	return &ModeClock{Period: DefaultModePeriod, prevMode: NoMode}
}

// Advance moves the clock forward by dt and returns the current mode and
// whether it differs from the mode of the previous Advance.
func (c *ModeClock) Advance(dt float64) (mode Mode, changed bool) {
	c.time += dt
	mode = Mode(int(c.time/c.Period) % NumModes)
	if mode != c.prevMode {
		c.prevMode = mode
		return mode, true
	}
	return mode, false
}

// Time returns the elapsed time.
func (c *ModeClock) Time() float64 {
	return c.time
}

// PrevMode returns the mode seen by the last Advance, or NoMode.
func (c *ModeClock) PrevMode() Mode {
	return c.prevMode
}

// SaveState writes the previous mode then the elapsed time.
func (c *ModeClock) SaveState(rec *physics.StateRecorder) {
	rec.WriteInt32(int32(c.prevMode))
	rec.WriteFloat64(c.time)
}

// RestoreState reads what SaveState wrote.
func (c *ModeClock) RestoreState(rec *physics.StateRecorder) error {
	prev, err := rec.ReadInt32()
	if err != nil {
		return fmt.Errorf("read previous mode: %w", err)
	}
	t, err := rec.ReadFloat64()
	if err != nil {
		return fmt.Errorf("read mode time: %w", err)
	}
	c.prevMode = Mode(prev)
	c.time = t
	return nil
}
