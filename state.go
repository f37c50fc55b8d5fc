package plant

import "github.com/gagandeepthapar/polaris-plant/integrator"

// SpacecraftState is one complete snapshot of the truth.
type SpacecraftState struct {
	Actuators ActuatorResponse
	Ephemeris *EphemerisBus
	Attitude  *AttitudeBus
	Multibody MultibodyState
	Sensors   SensorState
}

// newSpacecraftState returns a state at the initial conditions of the parameters, which must be valid.
func newSpacecraftState(p Params) (*SpacecraftState, error) {
	i := integrator.New(p.Integrator, p.Step)
	att, err := NewAttitudeBus(p.Attitude, p.InertiaMatrix(), i)
	if err != nil {
		return nil, err
	}
	return &SpacecraftState{
		Ephemeris: NewEphemerisBus(p.Ephemeris, p.Body, p.Mass, i),
		Attitude:  att,
		Multibody: MultibodyState{Inertia: p.Multibody},
	}, nil
}

// Healthy returns whether both propagated signals are finite.
func (s *SpacecraftState) Healthy() bool {
	return s.Ephemeris.Signal.finite() && s.Attitude.Signal.finite()
}
