package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/floats"

	plant "github.com/gagandeepthapar/polaris-plant"
)

// PlantCollector bundles the Prometheus metrics of a running plant.
type PlantCollector struct {
	gatherer prometheus.Gatherer

	Ticks         prometheus.Counter
	TickDurations prometheus.Histogram

	SimTime        prometheus.Gauge
	Energy         prometheus.Gauge
	OrbitMomentum  prometheus.Gauge
	Altitude       prometheus.Gauge
	QuaternionNorm prometheus.Gauge
	BodyMomentum   prometheus.Gauge
	Healthy        prometheus.Gauge
}

// NewPlantCollector registers the plant metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewPlantCollector(reg prometheus.Registerer) (*PlantCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &PlantCollector{gatherer: gatherer}
	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plant_ticks_total",
		Help: "Total number of simulated plant ticks.",
	}), "plant_ticks_total")
	if err != nil {
		return nil, err
	}
	c.Ticks = ticks

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plant_tick_duration_seconds",
		Help:    "Wall clock duration of one plant tick in seconds.",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
	}), "plant_tick_duration_seconds")
	if err != nil {
		return nil, err
	}
	c.TickDurations = durations

	for _, g := range []struct {
		dst        *prometheus.Gauge
		name, help string
	}{
		{&c.SimTime, "plant_sim_time_seconds", "Simulated time since the epoch."},
		{&c.Energy, "plant_orbit_energy_joules_per_kilogram", "Specific mechanical energy of the orbit."},
		{&c.OrbitMomentum, "plant_orbit_angular_momentum", "Norm of the specific orbital angular momentum in m^2/s."},
		{&c.Altitude, "plant_orbit_altitude_meters", "Altitude above the equatorial radius of the central body."},
		{&c.QuaternionNorm, "plant_attitude_quaternion_norm", "Norm of the propagated attitude quaternion."},
		{&c.BodyMomentum, "plant_attitude_angular_momentum", "Norm of the body angular momentum in kg.m^2/s."},
		{&c.Healthy, "plant_healthy", "1 while the propagated state is finite, 0 otherwise."},
	} {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}
	return c, nil
}

// Observe records the state of the spacecraft after a tick which lasted elapsed.
func (c *PlantCollector) Observe(sc *plant.Spacecraft, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TickDurations.Observe(elapsed.Seconds())
	c.Sample(sc)
}

// Sample sets the gauges from the current state of the spacecraft.
func (c *PlantCollector) Sample(sc *plant.Spacecraft) {
	if c == nil {
		return
	}
	cur := sc.Current()
	body := sc.Params().Body
	eph := cur.Ephemeris.Signal
	att := cur.Attitude.Signal
	h := att.Momentum(cur.Attitude.Inertia())

	c.SimTime.Set(sc.SimTime)
	c.Energy.Set(eph.Energyξ(body.GM()))
	c.OrbitMomentum.Set(eph.HNorm())
	c.Altitude.Set(eph.Altitude(body))
	c.QuaternionNorm.Set(att.Norm())
	c.BodyMomentum.Set(floats.Norm(h[:], 2))
	if sc.Healthy() {
		c.Healthy.Set(1)
	} else {
		c.Healthy.Set(0)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PlantCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
