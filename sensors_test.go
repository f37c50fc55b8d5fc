package plant

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

func truth() (EphemerisSignal, AttitudeSignal) {
	eph := CircularOrbit(Earth, 500e3)
	att := AttitudeSignal{Q: [4]float64{0, 0, math.Sin(0.3), math.Cos(0.3)}, Omega: [3]float64{0.01, -0.02, 0.03}}
	return eph, att
}

func TestIdealSensors(t *testing.T) {
	eph, att := truth()
	s := IdealSensors{}.Synthesize(ActuatorCommands{}, ActuatorResponse{}, eph, att, MultibodyState{}, SensorState{})
	exp := RawSensorBus{Gyro: att.Omega, StarTracker: att.Q, GNSSPosition: eph.R, GNSSVelocity: eph.V, Valid: true}
	if s.Raw != exp {
		t.Fatalf("ideal sensors do not return the truth: %+v", s.Raw)
	}
	if (NullSensors{}).Synthesize(ActuatorCommands{}, ActuatorResponse{}, eph, att, MultibodyState{}, s) != (SensorState{}) {
		t.Fatal("null sensors returned a measurement")
	}
}

func TestNoisySensorsZeroSigma(t *testing.T) {
	s, err := NewNoisySensors(SensorConfig{Model: "noisy"})
	if err != nil {
		t.Fatal(err)
	}
	eph, att := truth()
	got := s.Synthesize(ActuatorCommands{}, ActuatorResponse{}, eph, att, MultibodyState{}, SensorState{})
	if got.Raw.Gyro != att.Omega || got.Raw.GNSSPosition != eph.R || got.Raw.GNSSVelocity != eph.V || !got.Raw.Valid {
		t.Fatalf("noiseless sensors differ from truth: %+v", got.Raw)
	}
	for i := range att.Q {
		if !scalar.EqualWithinAbs(got.Raw.StarTracker[i], att.Q[i], 1e-15) {
			t.Fatalf("noiseless star tracker %v != %v", got.Raw.StarTracker, att.Q)
		}
	}
}

func TestNoisySensorsDeterminism(t *testing.T) {
	conf := SensorConfig{Model: "noisy", Seed: 42, GyroNoise: 1e-4, GyroBiasWalk: 1e-6, StarTrackerNoise: 1e-4, GNSSPositionNoise: 5, GNSSVelocityNoise: 0.05}
	run := func(conf SensorConfig) []SensorState {
		s, err := NewNoisySensors(conf)
		if err != nil {
			t.Fatal(err)
		}
		eph, att := truth()
		states := make([]SensorState, 50)
		prev := SensorState{}
		for i := range states {
			prev = s.Synthesize(ActuatorCommands{}, ActuatorResponse{}, eph, att, MultibodyState{}, prev)
			states[i] = prev
		}
		return states
	}
	a, b := run(conf), run(conf)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed differs at sample %d", i)
		}
	}
	conf.Seed = 43
	c := run(conf)
	if a[0] == c[0] {
		t.Fatal("different seeds returned the same measurements")
	}
}

func TestNoisySensorsStatistics(t *testing.T) {
	const (
		n = 5000
		σ = 2.0
	)
	s, err := NewNoisySensors(SensorConfig{Seed: 1, GNSSPositionNoise: σ, GyroNoise: 1e-3})
	if err != nil {
		t.Fatal(err)
	}
	eph, att := truth()
	errs := make([][]float64, 3)
	for i := 0; i < n; i++ {
		raw := s.Synthesize(ActuatorCommands{}, ActuatorResponse{}, eph, att, MultibodyState{}, SensorState{}).Raw
		for j := 0; j < 3; j++ {
			errs[j] = append(errs[j], raw.GNSSPosition[j]-eph.R[j])
		}
		if raw.GNSSVelocity != eph.V {
			t.Fatal("velocity noise is disabled but velocity differs")
		}
	}
	for j := 0; j < 3; j++ {
		mean, std := stat.MeanStdDev(errs[j], nil)
		if math.Abs(mean) > 5*σ/math.Sqrt(n) {
			t.Fatalf("axis %d: biased position noise mean=%f", j, mean)
		}
		if !scalar.EqualWithinRel(std, σ, 0.1) {
			t.Fatalf("axis %d: std=%f expected %f", j, std, σ)
		}
	}
}

func TestNoisySensorsBiasWalk(t *testing.T) {
	s, err := NewNoisySensors(SensorConfig{Seed: 3, GyroBiasWalk: 1e-5})
	if err != nil {
		t.Fatal(err)
	}
	eph, att := truth()
	prev := SensorState{}
	for i := 0; i < 100; i++ {
		next := s.Synthesize(ActuatorCommands{}, ActuatorResponse{}, eph, att, MultibodyState{}, prev)
		if next.GyroBias == prev.GyroBias {
			t.Fatalf("bias did not walk at tick %d", i)
		}
		// Without white noise, the gyro is the truth plus the bias.
		for j := 0; j < 3; j++ {
			if !scalar.EqualWithinAbs(next.Raw.Gyro[j], att.Omega[j]+next.GyroBias[j], 1e-18) {
				t.Fatalf("gyro %v != ω + bias %v", next.Raw.Gyro, next.GyroBias)
			}
		}
		prev = next
	}
}

func TestNoisyStarTracker(t *testing.T) {
	const σ = 1e-3
	s, err := NewNoisySensors(SensorConfig{Seed: 9, StarTrackerNoise: σ})
	if err != nil {
		t.Fatal(err)
	}
	eph, att := truth()
	for i := 0; i < 200; i++ {
		q := s.Synthesize(ActuatorCommands{}, ActuatorResponse{}, eph, att, MultibodyState{}, SensorState{}).Raw.StarTracker
		n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
		if !scalar.EqualWithinAbs(n, 1, 1e-12) {
			t.Fatalf("star tracker quaternion norm %f", n)
		}
		// Angle between the measured and true attitudes.
		d := math.Abs(q[0]*att.Q[0] + q[1]*att.Q[1] + q[2]*att.Q[2] + q[3]*att.Q[3])
		if angle := 2 * math.Acos(math.Min(d, 1)); angle > 10*σ {
			t.Fatalf("star tracker error of %f rad", angle)
		}
	}
}

func TestSensorModelFromConfig(t *testing.T) {
	for name, exp := range map[string]SensorModel{"": NullSensors{}, "null": NullSensors{}, "Ideal": IdealSensors{}} {
		m, err := SensorModelFromConfig(SensorConfig{Model: name})
		if err != nil || m != exp {
			t.Fatalf("'%s': got %T (%v)", name, m, err)
		}
	}
	m, err := SensorModelFromConfig(SensorConfig{Model: " noisy ", GyroNoise: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.(*NoisySensors); !ok {
		t.Fatalf("expected noisy sensors, got %T", m)
	}
	if m, err := SensorModelFromConfig(SensorConfig{Model: "noisy", GNSSPositionNoise: -1}); err == nil || m != nil {
		t.Fatal("negative sigma accepted")
	}
	if _, err := SensorModelFromConfig(SensorConfig{Model: "noisy", GyroNoise: math.NaN()}); err == nil {
		t.Fatal("NaN sigma accepted")
	}
	if _, err := SensorModelFromConfig(SensorConfig{Model: "lidar"}); !errors.Is(err, ErrUnknownSensorModel) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestActuatorModels(t *testing.T) {
	cmd := ActuatorCommands{Force: [3]float64{1, 2, 3}, Torque: [3]float64{-1, 0, 1}}
	if (NullActuators{}).Respond(cmd, ActuatorResponse{Force: [3]float64{5}}) != (ActuatorResponse{}) {
		t.Fatal("null actuators responded")
	}
	if r := (IdealActuators{}).Respond(cmd, ActuatorResponse{}); r.Force != cmd.Force || r.Torque != cmd.Torque {
		t.Fatalf("ideal actuators did not pass the commands: %+v", r)
	}
	for name, exp := range map[string]ActuatorModel{"": NullActuators{}, "NULL": NullActuators{}, "ideal": IdealActuators{}} {
		m, err := ActuatorModelFromString(name)
		if err != nil || m != exp {
			t.Fatalf("'%s': got %T (%v)", name, m, err)
		}
	}
	if _, err := ActuatorModelFromString("ion"); !errors.Is(err, ErrUnknownActuatorModel) {
		t.Fatalf("unexpected error %v", err)
	}
}
