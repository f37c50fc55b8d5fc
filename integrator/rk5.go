package integrator

// RK5 is a six stage explicit Runge Kutta of order five with nodes
// {0, 1/3, 2/25, 1, 2/3, 4/5}.
// k2 and k4 only feed the intermediate stages: their final weight is zero.
// Do not drop them, the reference trajectories depend on this exact arithmetic.
type RK5 struct {
	step float64
}

// NewRK5 returns a new RK5 with the provided step size, which must be positive.
func NewRK5(step float64) RK5 {
	mustStep(step)
	return RK5{step}
}

// StepSize implements the Integrator interface.
func (r RK5) StepSize() float64 {
	return r.step
}

// Integrate implements the Integrator interface.
func (r RK5) Integrate(f Derivative, t float64, state, inputs []float64) []float64 {
	h := r.step
	// tState is used as the stage buffer for every k.
	tState := make([]float64, len(state))

	k1 := eval(f, t, state, inputs)
	for i := range state {
		tState[i] = state[i] + h*(k1[i]/3)
	}
	k2 := eval(f, t+h/3, tState, inputs)
	for i := range state {
		tState[i] = state[i] + h*(4*k1[i]/25+6*k2[i]/25)
	}
	k3 := eval(f, t+2*h/25, tState, inputs)
	for i := range state {
		tState[i] = state[i] + h*(k1[i]/4-3*k2[i]+15*k3[i]/4)
	}
	k4 := eval(f, t+h, tState, inputs)
	for i := range state {
		tState[i] = state[i] + h*(2*k1[i]/27+10*k2[i]/9-50*k3[i]/81+8*k4[i]/81)
	}
	k5 := eval(f, t+2*h/3, tState, inputs)
	for i := range state {
		tState[i] = state[i] + h*(2*k1[i]/25+12*k2[i]/25+2*k3[i]/15+8*k4[i]/75)
	}
	k6 := eval(f, t+4*h/5, tState, inputs)

	next := make([]float64, len(state))
	for i := range state {
		next[i] = state[i] + h*(23*k1[i]/192+125*k3[i]/192-27*k5[i]/64+125*k6[i]/192)
	}
	return next
}
