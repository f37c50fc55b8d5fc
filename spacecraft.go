package plant

import (
	"math"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Spacecraft is the plant: it holds the previous and current truth states and steps them once per tick.
// It is not safe for concurrent use.
type Spacecraft struct {
	SimTime   float64 // Simulated seconds since the epoch.
	params    Params
	states    [2]*SpacecraftState
	cur       int // Index of the current state; the other one is the previous state.
	ticks     uint64
	actuators ActuatorModel
	multibody MultibodyModel
	sensors   SensorModel
	initial   RawSensorBus
	logger    log.Logger
	diverged  bool
}

// Option configures a Spacecraft.
type Option func(*Spacecraft)

// WithLogger sets the logger of the spacecraft.
func WithLogger(logger log.Logger) Option {
	return func(sc *Spacecraft) {
		sc.logger = logger
	}
}

// WithActuators overrides the actuator model set in the parameters.
func WithActuators(m ActuatorModel) Option {
	return func(sc *Spacecraft) {
		sc.actuators = m
	}
}

// WithMultibody overrides the default rigid multibody model.
func WithMultibody(m MultibodyModel) Option {
	return func(sc *Spacecraft) {
		sc.multibody = m
	}
}

// WithSensors overrides the sensor model set in the parameters.
func WithSensors(m SensorModel) Option {
	return func(sc *Spacecraft) {
		sc.sensors = m
	}
}

// NewSpacecraft returns a new Spacecraft at the initial conditions of the parameters.
func NewSpacecraft(p Params, opts ...Option) (*Spacecraft, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sc := &Spacecraft{params: p, logger: log.NewNopLogger(), multibody: RigidMultibody{Inertia: p.Multibody}}
	// Validate guarantees these are known.
	sc.actuators, _ = ActuatorModelFromString(p.Actuators)
	sc.sensors, _ = SensorModelFromConfig(p.Sensors)
	for _, opt := range opts {
		opt(sc)
	}
	for i := range sc.states {
		s, err := newSpacecraftState(p)
		if err != nil {
			return nil, err
		}
		sc.states[i] = s
	}
	cur := sc.Current()
	sensors := sc.sensors.Synthesize(ActuatorCommands{}, cur.Actuators, cur.Ephemeris.Signal, cur.Attitude.Signal, cur.Multibody, SensorState{})
	for _, s := range sc.states {
		s.Sensors = sensors
	}
	sc.initial = sensors.Raw
	level.Info(sc.logger).Log("subsys", "plant", "status", "initialized", "step", p.Step, "integrator", p.Integrator, "body", p.Body.Name, "epoch", p.Epoch, "orbit", cur.Ephemeris.Signal, "attitude", cur.Attitude.Signal)
	return sc, nil
}

// Current returns the state computed during the last tick.
func (sc *Spacecraft) Current() *SpacecraftState {
	return sc.states[sc.cur]
}

// Previous returns the state computed during the tick before the last one.
func (sc *Spacecraft) Previous() *SpacecraftState {
	return sc.states[sc.cur^1]
}

// Params returns the parameters this spacecraft was built with.
func (sc *Spacecraft) Params() Params {
	return sc.params
}

// Ticks returns the number of ticks simulated so far.
func (sc *Spacecraft) Ticks() uint64 {
	return sc.ticks
}

// Date returns the simulated date.
func (sc *Spacecraft) Date() time.Time {
	return sc.params.Epoch.Add(time.Duration(math.Round(sc.SimTime * float64(time.Second))))
}

// InitialState returns the sensor bus of the initial conditions, before any tick.
func (sc *Spacecraft) InitialState() RawSensorBus {
	return sc.initial
}

// Healthy returns whether the current truth state is finite. Once it is not, the spacecraft must not be stepped any further.
func (sc *Spacecraft) Healthy() bool {
	return sc.Current().Healthy()
}

// Simulate steps the plant by one tick with the provided commands and returns the raw sensor measurements.
func (sc *Spacecraft) Simulate(cmd ActuatorCommands) RawSensorBus {
	// The previous state is recycled as the current one.
	sc.cur ^= 1
	prev := sc.Previous()
	cur := sc.Current()

	cur.Actuators = sc.actuators.Respond(cmd, prev.Actuators)
	cur.Ephemeris.Process(cur.Actuators, prev.Ephemeris)
	cur.Attitude.Process(cur.Actuators, prev.Attitude)
	cur.Multibody = sc.multibody.Respond(cur.Actuators, prev.Multibody)
	cur.Sensors = sc.sensors.Synthesize(cmd, cur.Actuators, cur.Ephemeris.Signal, cur.Attitude.Signal, cur.Multibody, prev.Sensors)

	sc.SimTime += sc.params.Step
	sc.ticks++

	level.Debug(sc.logger).Log("subsys", "plant", "tick", sc.ticks, "t", sc.SimTime, "orbit", cur.Ephemeris.Signal, "attitude", cur.Attitude.Signal)
	if !sc.diverged && !cur.Healthy() {
		sc.diverged = true
		level.Error(sc.logger).Log("subsys", "plant", "status", "diverged", "tick", sc.ticks, "t", sc.SimTime, "orbit", cur.Ephemeris.Signal, "attitude", cur.Attitude.Signal)
	}
	return cur.Sensors.Raw
}
