package plant

import (
	"github.com/pkg/errors"

	"github.com/gagandeepthapar/polaris-plant/dynamics"
)

// Configuration errors. They are wrapped with context, so test them with errors.Is.
var (
	ErrSingularInertia      = dynamics.ErrSingularInertia
	ErrInertiaNotPD         = dynamics.ErrInertiaNotPD
	ErrStepSize             = errors.New("step size must be positive and finite")
	ErrMass                 = errors.New("mass must be positive")
	ErrQuaternion           = errors.New("quaternion must have a finite non-zero norm")
	ErrNonFinite            = errors.New("non-finite initial condition")
	ErrUnknownIntegrator    = errors.New("unknown integrator")
	ErrUnknownActuatorModel = errors.New("unknown actuator model")
	ErrUnknownSensorModel   = errors.New("unknown sensor model")
	ErrUnknownBody          = errors.New("unknown central body")
	ErrTLE                  = errors.New("invalid two line element set")
)
