package plant

import (
	"strings"

	"github.com/pkg/errors"
)

// ActuatorCommands are the actuator outputs commanded by the flight software for one tick.
type ActuatorCommands struct {
	Force  [3]float64 // ECI, N
	Torque [3]float64 // Body frame, N.m
}

// ActuatorResponse is the net effect of the actuators on the vehicle.
type ActuatorResponse struct {
	Force  [3]float64 // ECI, N
	Torque [3]float64 // Body frame, N.m
}

// ActuatorModel computes the actuator response from the commands.
type ActuatorModel interface {
	Respond(cmd ActuatorCommands, prev ActuatorResponse) ActuatorResponse
}

// NullActuators produce no force nor torque whatever the commands.
type NullActuators struct{}

// Respond implements the ActuatorModel interface.
func (NullActuators) Respond(cmd ActuatorCommands, prev ActuatorResponse) ActuatorResponse {
	return ActuatorResponse{}
}

// IdealActuators apply exactly what is commanded, without delay nor saturation.
type IdealActuators struct{}

// Respond implements the ActuatorModel interface.
func (IdealActuators) Respond(cmd ActuatorCommands, prev ActuatorResponse) ActuatorResponse {
	return ActuatorResponse{Force: cmd.Force, Torque: cmd.Torque}
}

// ActuatorModelFromString returns the actuator model from its name.
func ActuatorModelFromString(name string) (ActuatorModel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "null", "":
		return NullActuators{}, nil
	case "ideal":
		return IdealActuators{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownActuatorModel, "'%s'", name)
	}
}
