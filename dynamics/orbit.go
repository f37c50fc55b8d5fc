package dynamics

import (
	"fmt"
	"math"
)

// TwoBody is the point mass gravity derivative.
// The state is [r(3); v(3)] in meters and m/s, and the optional inputs are an applied force in Newtons.
type TwoBody struct {
	Mu   float64 // Gravitational parameter of the central body in m^3/s^2.
	Mass float64 // Spacecraft mass in kg; the applied force is ignored unless positive.
}

// Func implements the integrator.Derivative interface.
func (b TwoBody) Func(t float64, state, inputs []float64) []float64 {
	if len(state) != 6 {
		panic(fmt.Errorf("orbit state must have 6 components, got %d", len(state)))
	}
	r := math.Sqrt(state[0]*state[0] + state[1]*state[1] + state[2]*state[2])
	r3 := r * r * r
	fDot := make([]float64, 6)
	for i := 0; i < 3; i++ {
		fDot[i] = state[i+3]
		fDot[i+3] = -b.Mu * state[i] / r3
	}
	if b.Mass > 0 && len(inputs) >= 3 {
		for i := 0; i < 3; i++ {
			fDot[i+3] += inputs[i] / b.Mass
		}
	}
	return fDot
}
