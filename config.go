package plant

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"

	"github.com/gagandeepthapar/polaris-plant/integrator"
)

// ConfigEnv is the environment variable holding the directory of conf.toml.
const ConfigEnv = "PLANT_CONFIG"

// ParamsFromFile reads the parameters from a TOML scenario. Missing keys keep their DefaultParams value.
func ParamsFromFile(path string) (Params, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Params{}, errors.Wrapf(err, "reading scenario %s", path)
	}
	return paramsFromViper(v)
}

// ParamsFromEnv reads the parameters from conf.toml in the directory named by PLANT_CONFIG.
func ParamsFromEnv() (Params, error) {
	confPath := os.Getenv(ConfigEnv)
	if confPath == "" {
		return Params{}, errors.Errorf("environment variable `%s` is missing or empty", ConfigEnv)
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		return Params{}, errors.Wrapf(err, "%s/conf.toml", confPath)
	}
	return paramsFromViper(v)
}

func paramsFromViper(v *viper.Viper) (p Params, err error) {
	p = DefaultParams()

	// General
	if v.IsSet("general.step") {
		p.Step = v.GetFloat64("general.step")
	}
	if v.IsSet("general.integrator") {
		if p.Integrator, err = integrator.KindFromString(v.GetString("general.integrator")); err != nil {
			return p, errors.Wrap(ErrUnknownIntegrator, err.Error())
		}
	}
	if v.IsSet("general.epoch") {
		p.Epoch = readJDEorTime(v, "general.epoch")
	}
	if v.IsSet("general.body") {
		if p.Body, err = CelestialObjectFromString(v.GetString("general.body")); err != nil {
			return p, err
		}
		p.Ephemeris = CircularOrbit(p.Body, DefaultAltitude)
	}

	// Attitude
	if err = readFloats(v, "attitude.quaternion", p.Attitude.Q[:]); err != nil {
		return p, err
	}
	if err = readFloats(v, "attitude.omega", p.Attitude.Omega[:]); err != nil {
		return p, err
	}
	if v.IsSet("attitude.inertia") {
		if vals, ferr := toFloats(v.Get("attitude.inertia")); ferr == nil && len(vals) == 3 {
			p.Inertia = [9]float64{vals[0], 0, 0, 0, vals[1], 0, 0, 0, vals[2]}
		} else if err = readFloats(v, "attitude.inertia", p.Inertia[:]); err != nil {
			return p, err
		}
	}

	// Ephemeris
	if v.IsSet("ephemeris.altitude") {
		p.Ephemeris = InclinedCircularOrbit(p.Body, v.GetFloat64("ephemeris.altitude"),
			deg2rad(v.GetFloat64("ephemeris.inclination")), deg2rad(v.GetFloat64("ephemeris.raan")),
			deg2rad(v.GetFloat64("ephemeris.latitude_argument")))
	}
	if err = readFloats(v, "ephemeris.position", p.Ephemeris.R[:]); err != nil {
		return p, err
	}
	if err = readFloats(v, "ephemeris.velocity", p.Ephemeris.V[:]); err != nil {
		return p, err
	}
	if v.IsSet("ephemeris.mass") {
		p.Mass = v.GetFloat64("ephemeris.mass")
	}
	if v.IsSet("ephemeris.tle1") || v.IsSet("ephemeris.tle2") {
		if err = p.SeedFromTLE(v.GetString("ephemeris.tle1"), v.GetString("ephemeris.tle2")); err != nil {
			return p, err
		}
	}

	// Multibody and actuators
	if err = readFloats(v, "multibody.inertia", p.Multibody[:]); err != nil {
		return p, err
	}
	if v.IsSet("actuators.model") {
		p.Actuators = v.GetString("actuators.model")
	}

	// Sensors
	if v.IsSet("sensors.model") {
		p.Sensors.Model = v.GetString("sensors.model")
	}
	p.Sensors.Seed = v.GetUint64("sensors.seed")
	p.Sensors.GyroNoise = v.GetFloat64("sensors.gyro_noise")
	p.Sensors.GyroBiasWalk = v.GetFloat64("sensors.gyro_bias_walk")
	p.Sensors.StarTrackerNoise = v.GetFloat64("sensors.star_tracker_noise")
	p.Sensors.GNSSPositionNoise = v.GetFloat64("sensors.gnss_position_noise")
	p.Sensors.GNSSVelocityNoise = v.GetFloat64("sensors.gnss_velocity_noise")

	return p, p.Validate()
}

func deg2rad(a float64) float64 {
	return a * math.Pi / 180
}

// readJDEorTime reads a date either as a Julian day or as a time.
func readJDEorTime(v *viper.Viper, key string) time.Time {
	if jde := v.GetFloat64(key); jde != 0 {
		return julian.JDToTime(jde).UTC()
	}
	return v.GetTime(key).UTC()
}

// readFloats copies the array at key into dst, if it is set.
func readFloats(v *viper.Viper, key string, dst []float64) error {
	if !v.IsSet(key) {
		return nil
	}
	vals, err := toFloats(v.Get(key))
	if err != nil {
		return errors.Wrapf(err, "%s", key)
	}
	if len(vals) != len(dst) {
		return errors.Errorf("%s must have %d components, got %d", key, len(dst), len(vals))
	}
	copy(dst, vals)
	return nil
}

func toFloats(raw interface{}) ([]float64, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Errorf("expected an array, got %T", raw)
	}
	vals := make([]float64, len(items))
	for i, item := range items {
		switch x := item.(type) {
		case float64:
			vals[i] = x
		case int64:
			vals[i] = float64(x)
		case int:
			vals[i] = float64(x)
		case string:
			if _, err := fmt.Sscanf(strings.TrimSpace(x), "%g", &vals[i]); err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
		default:
			return nil, errors.Errorf("item %d is a %T", i, item)
		}
	}
	return vals, nil
}
