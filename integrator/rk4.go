package integrator

import (
	"fmt"

	"github.com/ChristopherRabotin/ode"
)

// RK4 is the classical fourth order Runge Kutta, delegated to ode.RK4 for a single step.
type RK4 struct {
	step float64
}

// NewRK4 returns a new RK4 with the provided step size, which must be positive.
func NewRK4(step float64) RK4 {
	mustStep(step)
	return RK4{step}
}

// StepSize implements the Integrator interface.
func (r RK4) StepSize() float64 {
	return r.step
}

// Integrate implements the Integrator interface.
func (r RK4) Integrate(f Derivative, t float64, state, inputs []float64) []float64 {
	s := &singleStep{f: f, inputs: inputs, state: append([]float64(nil), state...)}
	if _, _, err := ode.NewRK4(t, r.step, s).Solve(); err != nil {
		panic(fmt.Errorf("rk4 step failed: %s", err))
	}
	return s.state
}

// singleStep is an ode.Integrable which stops after the first SetState.
type singleStep struct {
	f      Derivative
	inputs []float64
	state  []float64
	done   bool
}

// GetState implements the ode.Integrable interface.
func (s *singleStep) GetState() []float64 {
	return s.state
}

// SetState implements the ode.Integrable interface.
func (s *singleStep) SetState(t float64, state []float64) {
	s.state = state
	s.done = true
}

// Stop implements the ode.Integrable interface.
func (s *singleStep) Stop(t float64) bool {
	return s.done
}

// Func implements the ode.Integrable interface.
func (s *singleStep) Func(t float64, state []float64) []float64 {
	return eval(s.f, t, state, s.inputs)
}
