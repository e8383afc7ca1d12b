package samples

import (
	"fmt"

	"github.com/setanarut/simcollide/physics"
)

// Runner owns a space and the test that populates it.
type Runner struct {
	Space    *physics.Space
	Test     Test
	Renderer physics.DebugRenderer

	steps int
}

// NewRunner creates a space, initializes test in it and, when the test
// implements physics.ContactListener, installs it as the contact listener.
// A nil renderer discards all drawing.
func NewRunner(test Test, renderer physics.DebugRenderer) *Runner {
	if renderer == nil {
		renderer = discardRenderer{}
	}
	r := &Runner{
		Space:    physics.NewSpace(),
		Test:     test,
		Renderer: renderer,
	}
	test.Initialize(&Context{Space: r.Space, Renderer: renderer})
	if listener, ok := test.(physics.ContactListener); ok && r.Space.ContactListener == nil {
		r.Space.ContactListener = listener
	}
	return r
}

// NewRunnerByName looks up a registered test and starts it.
func NewRunnerByName(name string, renderer physics.DebugRenderer) (*Runner, error) {
	test, err := New(name)
	if err != nil {
		return nil, err
	}
	return NewRunner(test, renderer), nil
}

// Step runs the test's pre update and advances the space by dt.
func (r *Runner) Step(dt float64) {
	r.Test.PrePhysicsUpdate(PreUpdateParams{DeltaTime: dt})
	r.Space.Step(dt)
	r.steps++
}

// Steps returns how many steps have been taken.
func (r *Runner) Steps() int {
	return r.steps
}

// SaveState writes the space followed by the test state.
func (r *Runner) SaveState(rec *physics.StateRecorder) {
	r.Space.SaveState(rec)
	r.Test.SaveState(rec)
}

// RestoreState reads what SaveState wrote.
func (r *Runner) RestoreState(rec *physics.StateRecorder) error {
	if err := r.Space.RestoreState(rec); err != nil {
		return fmt.Errorf("restore space: %w", err)
	}
	if err := r.Test.RestoreState(rec); err != nil {
		return fmt.Errorf("restore test: %w", err)
	}
	return nil
}
