package plant

import (
	"fmt"

	"github.com/gagandeepthapar/polaris-plant/dynamics"
	"github.com/gagandeepthapar/polaris-plant/integrator"
)

const ephemerisStateSize = 6

// EphemerisSignal is the true inertial position and velocity of the spacecraft.
type EphemerisSignal struct {
	R [3]float64 // ECI position in meters.
	V [3]float64 // ECI velocity in m/s.
}

// StateVector returns the state as [r; v].
func (s EphemerisSignal) StateVector() []float64 {
	return []float64{s.R[0], s.R[1], s.R[2], s.V[0], s.V[1], s.V[2]}
}

// SetStateVector sets the signal from [r; v]; it is the inverse of StateVector.
func (s *EphemerisSignal) SetStateVector(v []float64) {
	if len(v) != ephemerisStateSize {
		panic(fmt.Errorf("ephemeris state vector must have %d components, got %d", ephemerisStateSize, len(v)))
	}
	copy(s.R[:], v[:3])
	copy(s.V[:], v[3:])
}

func (s EphemerisSignal) finite() bool {
	return finite(s.StateVector()...)
}

func (s EphemerisSignal) String() string {
	return fmt.Sprintf("r=[%f %f %f] v=[%f %f %f]", s.R[0], s.R[1], s.R[2], s.V[0], s.V[1], s.V[2])
}

// EphemerisBus propagates the orbit about the central body.
type EphemerisBus struct {
	Signal     EphemerisSignal
	integrator integrator.Integrator
	model      dynamics.TwoBody
}

// NewEphemerisBus returns a new EphemerisBus about the provided body.
// The mass is only used to convert the applied force into an acceleration.
func NewEphemerisBus(s EphemerisSignal, body CelestialObject, mass float64, i integrator.Integrator) *EphemerisBus {
	return &EphemerisBus{Signal: s, integrator: i, model: dynamics.TwoBody{Mu: body.GM(), Mass: mass}}
}

// Process propagates the previous ephemeris by one step with the net force of the actuators.
// The result is written in place into this bus' Signal.
func (b *EphemerisBus) Process(act ActuatorResponse, prev *EphemerisBus) {
	next := b.integrator.Integrate(b.model, 0, prev.Signal.StateVector(), act.Force[:])
	b.Signal.SetStateVector(next)
}
