package plant

// MultibodyState is the state of the appendages of the vehicle.
type MultibodyState struct {
	Inertia [3]float64 // Principal moments of the appendages, kg.m^2.
}

// MultibodyModel computes the multibody state from the actuator response.
type MultibodyModel interface {
	Respond(act ActuatorResponse, prev MultibodyState) MultibodyState
}

// RigidMultibody has no articulation: its state is constant.
type RigidMultibody struct {
	Inertia [3]float64
}

// Respond implements the MultibodyModel interface.
func (m RigidMultibody) Respond(act ActuatorResponse, prev MultibodyState) MultibodyState {
	return MultibodyState{Inertia: m.Inertia}
}
