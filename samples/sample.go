// Package samples holds runnable physics scenes and the machinery to step
// them.
package samples

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/vec"
)

// ErrUnknownTest is returned by New for a name nobody registered.
var ErrUnknownTest = errors.New("samples: unknown test")

// Context is handed to a test when it builds its scene.
type Context struct {
	Space    *physics.Space
	Renderer physics.DebugRenderer
}

// PreUpdateParams describes the step about to be taken.
type PreUpdateParams struct {
	DeltaTime float64
}

// Test is a scene that can be stepped and replayed.
type Test interface {
	Description() string
	// Initialize creates the bodies of the scene.
	Initialize(ctx *Context)
	// PrePhysicsUpdate runs before every Space.Step.
	PrePhysicsUpdate(params PreUpdateParams)
	// SaveState and RestoreState cover the test's own state, not the space.
	SaveState(rec *physics.StateRecorder)
	RestoreState(rec *physics.StateRecorder) error
}

// Factory creates a fresh, uninitialized test.
type Factory func() Test

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a test available under name. Registering a name twice panics.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("samples: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("samples: Register called twice for " + name)
	}
	registry[name] = factory
}

// New creates the test registered under name.
func New(name string) (Test, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTest, name)
	}
	return factory(), nil
}

// Names returns the registered test names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type discardRenderer struct{}

func (discardRenderer) DrawLine(vec.Vec2, vec.Vec2, physics.FColor) {}
func (discardRenderer) DrawArrow(vec.Vec2, vec.Vec2, physics.FColor, float64) {}
func (discardRenderer) DrawWirePolygon(physics.Transform, []vec.Vec2, physics.FColor, float64) {}
func (discardRenderer) DrawText(vec.Vec2, string, physics.FColor, float64) {}
