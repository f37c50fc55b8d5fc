package integrator

import (
	"fmt"
	"math"
	"strings"
)

// Derivative defines something which can be integrated.
// Func must be pure: it is called several times per step with intermediate states
// which do not correspond to any real epoch.
type Derivative interface {
	Func(t float64, state, inputs []float64) []float64 // Derivative of state at time t given the inputs.
}

// DerivativeFunc allows a plain function to be used as a Derivative.
type DerivativeFunc func(t float64, state, inputs []float64) []float64

// Func implements the Derivative interface.
func (f DerivativeFunc) Func(t float64, state, inputs []float64) []float64 {
	return f(t, state, inputs)
}

// Integrator advances a state vector by exactly one fixed step.
type Integrator interface {
	Integrate(f Derivative, t float64, state, inputs []float64) []float64
	StepSize() float64
}

// Kind defines an enum of integrators.
type Kind uint8

const (
	// RK2Kind is the explicit midpoint method.
	RK2Kind Kind = iota + 1
	// RK4Kind is the classical fourth order Runge Kutta.
	RK4Kind
	// RK5Kind is the six stage fifth order Runge Kutta.
	RK5Kind
)

func (k Kind) String() string {
	switch k {
	case RK2Kind:
		return "rk2"
	case RK4Kind:
		return "rk4"
	case RK5Kind:
		return "rk5"
	}
	panic("cannot stringify unknown integrator")
}

// KindFromString returns the integrator kind from its name.
func KindFromString(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rk2", "midpoint":
		return RK2Kind, nil
	case "rk4":
		return RK4Kind, nil
	case "rk5", "":
		return RK5Kind, nil
	default:
		return 0, fmt.Errorf("undefined integrator '%s'", name)
	}
}

// New returns the integrator of the provided kind with the given step size.
func New(k Kind, step float64) Integrator {
	switch k {
	case RK2Kind:
		return NewRK2(step)
	case RK4Kind:
		return NewRK4(step)
	case RK5Kind:
		return NewRK5(step)
	}
	panic(fmt.Errorf("integrator %d not yet implemented", k))
}

func mustStep(step float64) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		panic("config StepSize must be positive")
	}
}

// eval calls f and enforces that the derivative has the layout of the state.
func eval(f Derivative, t float64, state, inputs []float64) []float64 {
	k := f.Func(t, state, inputs)
	if len(k) != len(state) {
		panic(fmt.Errorf("derivative returned %d components for a %d component state", len(k), len(state)))
	}
	return k
}
