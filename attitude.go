package plant

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gagandeepthapar/polaris-plant/dynamics"
	"github.com/gagandeepthapar/polaris-plant/integrator"
)

const attitudeStateSize = 7

// AttitudeSignal is the true attitude of the spacecraft.
type AttitudeSignal struct {
	Q     [4]float64 // Body to inertial quaternion, scalar last.
	Omega [3]float64 // Body rate in rad/s.
}

// StateVector returns the state as [q; ω].
func (s AttitudeSignal) StateVector() []float64 {
	return []float64{s.Q[0], s.Q[1], s.Q[2], s.Q[3], s.Omega[0], s.Omega[1], s.Omega[2]}
}

// SetStateVector sets the signal from [q; ω]; it is the inverse of StateVector.
func (s *AttitudeSignal) SetStateVector(v []float64) {
	if len(v) != attitudeStateSize {
		panic(fmt.Errorf("attitude state vector must have %d components, got %d", attitudeStateSize, len(v)))
	}
	copy(s.Q[:], v[:4])
	copy(s.Omega[:], v[4:])
}

// Norm returns the norm of the quaternion, which drifts from one as no normalization happens during integration.
func (s AttitudeSignal) Norm() float64 {
	return math.Sqrt(s.Q[0]*s.Q[0] + s.Q[1]*s.Q[1] + s.Q[2]*s.Q[2] + s.Q[3]*s.Q[3])
}

// Normalize rescales the quaternion to a unit norm.
func (s *AttitudeSignal) Normalize() {
	n := s.Norm()
	if n == 0 {
		return
	}
	for i := range s.Q {
		s.Q[i] /= n
	}
}

// Momentum returns the body angular momentum J*ω.
func (s AttitudeSignal) Momentum(J mat.Matrix) (h [3]float64) {
	v := mat.NewVecDense(3, nil)
	v.MulVec(J, mat.NewVecDense(3, s.Omega[:]))
	for i := range h {
		h[i] = v.AtVec(i)
	}
	return
}

func (s AttitudeSignal) finite() bool {
	return finite(s.StateVector()...)
}

func (s AttitudeSignal) String() string {
	return fmt.Sprintf("q=[%f %f %f %f] ω=[%f %f %f]", s.Q[0], s.Q[1], s.Q[2], s.Q[3], s.Omega[0], s.Omega[1], s.Omega[2])
}

// AttitudeBus propagates the rigid body attitude.
type AttitudeBus struct {
	Signal     AttitudeSignal
	integrator integrator.Integrator
	body       *dynamics.RigidBody
}

// NewAttitudeBus returns a new AttitudeBus for the provided initial signal and inertia tensor.
func NewAttitudeBus(s AttitudeSignal, J mat.Matrix, i integrator.Integrator) (*AttitudeBus, error) {
	body, err := dynamics.NewRigidBody(J)
	if err != nil {
		return nil, err
	}
	return &AttitudeBus{Signal: s, integrator: i, body: body}, nil
}

// Inertia returns the inertia tensor of this bus.
func (b *AttitudeBus) Inertia() mat.Matrix {
	return b.body.J
}

// Process propagates the previous attitude by one step with the net torque of the actuators.
// The result is written in place into this bus' Signal.
func (b *AttitudeBus) Process(act ActuatorResponse, prev *AttitudeBus) {
	next := b.integrator.Integrate(b.body, 0, prev.Signal.StateVector(), act.Torque[:])
	b.Signal.SetStateVector(next)
}
