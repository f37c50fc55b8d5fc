package integrator

// RK2 is the explicit midpoint method (second order).
// The full step is recombined from k2 only: x' = x + h*k2.
type RK2 struct {
	step float64
}

// NewRK2 returns a new RK2 with the provided step size, which must be positive.
func NewRK2(step float64) RK2 {
	mustStep(step)
	return RK2{step}
}

// StepSize implements the Integrator interface.
func (r RK2) StepSize() float64 {
	return r.step
}

// Integrate implements the Integrator interface.
func (r RK2) Integrate(f Derivative, t float64, state, inputs []float64) []float64 {
	h := r.step
	tState := make([]float64, len(state))

	k1 := eval(f, t, state, inputs)
	for i := range state {
		tState[i] = state[i] + h*k1[i]/2
	}
	k2 := eval(f, t+h/2, tState, inputs)

	next := make([]float64, len(state))
	for i := range state {
		next[i] = state[i] + h*k2[i]
	}
	return next
}
