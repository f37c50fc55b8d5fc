package plant

import (
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/gagandeepthapar/polaris-plant/dynamics"
	"github.com/gagandeepthapar/polaris-plant/integrator"
)

const (
	// DefaultStep is the default simulation step in seconds.
	DefaultStep = 0.1
	// DefaultAltitude is the altitude of the default circular orbit in meters.
	DefaultAltitude = 500e3
)

// Params is the parameter architecture of the plant, consumed once by NewSpacecraft.
type Params struct {
	Step       float64         // Fixed simulation step, seconds.
	Integrator integrator.Kind // Integrator used by both propagation buses.
	Epoch      time.Time       // Date of the first state, only used for exports and TLE seeding.
	Body       CelestialObject // Central body.
	Attitude   AttitudeSignal  // Initial attitude.
	Inertia    [9]float64      // Inertia tensor in kg.m^2, row major.
	Ephemeris  EphemerisSignal // Initial orbit.
	Mass       float64         // kg
	Multibody  [3]float64      // Appendage principal moments, kg.m^2.
	Actuators  string          // Actuator model name.
	Sensors    SensorConfig
}

// DefaultParams returns a vehicle at rest with an identity attitude, on a 500 km circular equatorial orbit about Earth.
func DefaultParams() Params {
	return Params{
		Step:       DefaultStep,
		Integrator: integrator.RK5Kind,
		Epoch:      time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		Body:       Earth,
		Attitude:   AttitudeSignal{Q: [4]float64{0, 0, 0, 1}},
		Inertia:    [9]float64{10, 0, 0, 0, 20, 0, 0, 0, 30},
		Ephemeris:  CircularOrbit(Earth, DefaultAltitude),
		Mass:       100,
		Actuators:  "null",
		Sensors:    SensorConfig{Model: "null"},
	}
}

// InertiaMatrix returns the inertia tensor as a matrix.
func (p Params) InertiaMatrix() *mat.Dense {
	data := p.Inertia
	return mat.NewDense(3, 3, data[:])
}

// Validate returns the first configuration error of these parameters, if any.
func (p Params) Validate() error {
	if p.Step <= 0 || !finite(p.Step) {
		return errors.Wrapf(ErrStepSize, "step=%f", p.Step)
	}
	if p.Integrator < integrator.RK2Kind || p.Integrator > integrator.RK5Kind {
		return errors.Wrapf(ErrUnknownIntegrator, "kind %d", p.Integrator)
	}
	if p.Mass <= 0 || !finite(p.Mass) {
		return errors.Wrapf(ErrMass, "mass=%f", p.Mass)
	}
	if p.Body.GM() <= 0 {
		return errors.Wrapf(ErrUnknownBody, "%s has no gravitational parameter", p.Body.Name)
	}
	if n := p.Attitude.Norm(); n == 0 || !finite(n) {
		return errors.Wrapf(ErrQuaternion, "norm=%f", n)
	}
	if !p.Attitude.finite() {
		return errors.Wrapf(ErrNonFinite, "attitude %s", p.Attitude)
	}
	if !p.Ephemeris.finite() || p.Ephemeris.RNorm() == 0 {
		return errors.Wrapf(ErrNonFinite, "ephemeris %s", p.Ephemeris)
	}
	if err := dynamics.CheckInertia(p.InertiaMatrix()); err != nil {
		return err
	}
	if _, err := ActuatorModelFromString(p.Actuators); err != nil {
		return err
	}
	if _, err := SensorModelFromConfig(p.Sensors); err != nil {
		return err
	}
	return nil
}

// SeedFromTLE sets the initial ephemeris and epoch from a two line element set propagated with SGP4 to its own epoch.
// The TEME frame is taken as ECI.
func (p *Params) SeedFromTLE(line1, line2 string) (err error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)
	if !p.Body.Equals(Earth) {
		return errors.Wrapf(ErrTLE, "TLE requires Earth as the central body, not %s", p.Body.Name)
	}
	// go-satellite does not validate its inputs.
	if len(line1) != 69 || len(line2) != 69 || line1[0] != '1' || line2[0] != '2' {
		return errors.Wrap(ErrTLE, "lines must be 69 characters and start with 1 and 2")
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrTLE, "%v", r)
		}
	}()
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return errors.Wrapf(ErrTLE, "sgp4 init failed: code=%d %s", sat.Error, sat.ErrorStr)
	}
	epoch, err := tleEpoch(line1)
	if err != nil {
		return err
	}
	year, month, day := epoch.Date()
	hour, min, sec := epoch.Clock()
	pos, vel := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	eph := EphemerisSignal{
		R: [3]float64{pos.X * 1e3, pos.Y * 1e3, pos.Z * 1e3},
		V: [3]float64{vel.X * 1e3, vel.Y * 1e3, vel.Z * 1e3},
	}
	if !eph.finite() || eph.Altitude(Earth) < 0 {
		return errors.Wrapf(ErrTLE, "sgp4 propagation failed: %s", eph)
	}
	p.Ephemeris = eph
	p.Epoch = epoch
	return nil
}

// tleEpoch returns the epoch of the first line of a TLE, truncated to the second.
func tleEpoch(line1 string) (time.Time, error) {
	yy, err := strconv.Atoi(strings.TrimSpace(line1[18:20]))
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrTLE, "epoch year: %s", err)
	}
	doy, err := strconv.ParseFloat(strings.TrimSpace(line1[20:32]), 64)
	if err != nil || doy < 1 {
		return time.Time{}, errors.Wrapf(ErrTLE, "epoch day '%s'", line1[20:32])
	}
	year := 1900 + yy
	if yy < 57 {
		year = 2000 + yy
	}
	secs := math.Floor((doy - 1) * 86400)
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second), nil
}
