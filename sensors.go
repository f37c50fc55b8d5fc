package plant

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// RawSensorBus holds the raw measurements handed to the flight software.
type RawSensorBus struct {
	Gyro         [3]float64 // Body rate, rad/s.
	StarTracker  [4]float64 // Body to inertial quaternion, scalar last.
	GNSSPosition [3]float64 // ECI, m.
	GNSSVelocity [3]float64 // ECI, m/s.
	Valid        bool
}

// SensorState is the state of the sensor suite which persists between ticks.
type SensorState struct {
	Raw      RawSensorBus
	GyroBias [3]float64 // rad/s
}

// SensorModel synthesizes the sensor measurements from the truth.
type SensorModel interface {
	Synthesize(cmd ActuatorCommands, act ActuatorResponse, eph EphemerisSignal, att AttitudeSignal, mb MultibodyState, prev SensorState) SensorState
}

// NullSensors always return an empty and invalid bus.
type NullSensors struct{}

// Synthesize implements the SensorModel interface.
func (NullSensors) Synthesize(cmd ActuatorCommands, act ActuatorResponse, eph EphemerisSignal, att AttitudeSignal, mb MultibodyState, prev SensorState) SensorState {
	return SensorState{}
}

// IdealSensors measure the truth perfectly.
type IdealSensors struct{}

// Synthesize implements the SensorModel interface.
func (IdealSensors) Synthesize(cmd ActuatorCommands, act ActuatorResponse, eph EphemerisSignal, att AttitudeSignal, mb MultibodyState, prev SensorState) SensorState {
	return SensorState{Raw: RawSensorBus{Gyro: att.Omega, StarTracker: att.Q, GNSSPosition: eph.R, GNSSVelocity: eph.V, Valid: true}}
}

// SensorConfig defines the sensor suite. Noises are one sigma, per axis and per tick.
type SensorConfig struct {
	Model             string
	Seed              uint64
	GyroNoise         float64 // rad/s
	GyroBiasWalk      float64 // rad/s
	StarTrackerNoise  float64 // rad
	GNSSPositionNoise float64 // m
	GNSSVelocityNoise float64 // m/s
}

// NoisySensors add white Gaussian noise to the truth, and a random walk bias to the gyro.
// All the noises are drawn from sources seeded from the configuration, so runs are reproducible.
type NoisySensors struct {
	gyroNoise, biasWalk, attNoise, posNoise, velNoise *distmv.Normal
}

// NewNoisySensors returns new NoisySensors; a zero sigma disables the corresponding noise.
func NewNoisySensors(conf SensorConfig) (*NoisySensors, error) {
	s := NoisySensors{}
	for i, dist := range []struct {
		σ   float64
		dst **distmv.Normal
	}{
		{conf.GyroNoise, &s.gyroNoise},
		{conf.GyroBiasWalk, &s.biasWalk},
		{conf.StarTrackerNoise, &s.attNoise},
		{conf.GNSSPositionNoise, &s.posNoise},
		{conf.GNSSVelocityNoise, &s.velNoise},
	} {
		if dist.σ < 0 || !finite(dist.σ) {
			return nil, errors.Errorf("invalid sensor noise %f", dist.σ)
		}
		if dist.σ == 0 {
			continue
		}
		σ2 := dist.σ * dist.σ
		n, ok := distmv.NewNormal([]float64{0, 0, 0}, mat.NewSymDense(3, []float64{σ2, 0, 0, 0, σ2, 0, 0, 0, σ2}), rand.NewPCG(conf.Seed, uint64(i)))
		if !ok {
			panic("NOK in Gaussian")
		}
		*dist.dst = n
	}
	return &s, nil
}

// Synthesize implements the SensorModel interface.
func (s *NoisySensors) Synthesize(cmd ActuatorCommands, act ActuatorResponse, eph EphemerisSignal, att AttitudeSignal, mb MultibodyState, prev SensorState) SensorState {
	next := SensorState{GyroBias: add(prev.GyroBias, draw(s.biasWalk))}
	next.Raw.Valid = true
	next.Raw.Gyro = add(add(att.Omega, next.GyroBias), draw(s.gyroNoise))
	next.Raw.GNSSPosition = add(eph.R, draw(s.posNoise))
	next.Raw.GNSSVelocity = add(eph.V, draw(s.velNoise))
	// Small angle error quaternion applied in the body frame.
	δθ := draw(s.attNoise)
	δq := [4]float64{δθ[0] / 2, δθ[1] / 2, δθ[2] / 2, 1}
	q := quatMul(att.Q, δq)
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	for i := range q {
		q[i] /= n
	}
	next.Raw.StarTracker = q
	return next
}

func draw(n *distmv.Normal) (v [3]float64) {
	if n != nil {
		copy(v[:], n.Rand(nil))
	}
	return
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// SensorModelFromConfig returns the sensor model from its configuration.
func SensorModelFromConfig(conf SensorConfig) (SensorModel, error) {
	switch strings.ToLower(strings.TrimSpace(conf.Model)) {
	case "null", "":
		return NullSensors{}, nil
	case "ideal":
		return IdealSensors{}, nil
	case "noisy":
		s, err := NewNoisySensors(conf)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.Wrapf(ErrUnknownSensorModel, "'%s'", conf.Model)
	}
}
