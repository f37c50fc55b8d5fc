package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	plant "github.com/gagandeepthapar/polaris-plant"
	"github.com/gagandeepthapar/polaris-plant/metrics"
)

// This runs the plant open loop: the commands are constant for the whole run.

var (
	scenario    string
	ticks       uint64
	logLevel    string
	exportDir   string
	exportFmt   string
	exportEvery uint64
	metricsAddr string
	realtime    bool
	torque      string
	force       string
	actuators   string
)

func init() {
	flag.StringVar(&scenario, "scenario", "", "scenario TOML file (defaults to $"+plant.ConfigEnv+"/conf.toml, then to the built in defaults)")
	flag.Uint64Var(&ticks, "ticks", 6000, "number of ticks to simulate")
	flag.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&exportDir, "export", "", "directory of the exported truth (disabled if empty)")
	flag.StringVar(&exportFmt, "format", "csv", "export format: csv, cosmo or both")
	flag.Uint64Var(&exportEvery, "every", 10, "export one sample every N ticks")
	flag.StringVar(&metricsAddr, "metrics", "", "address of the Prometheus /metrics endpoint (disabled if empty)")
	flag.BoolVar(&realtime, "realtime", false, "pace the ticks to the wall clock")
	flag.StringVar(&torque, "torque", "0,0,0", "constant commanded body torque in N.m")
	flag.StringVar(&force, "force", "0,0,0", "constant commanded inertial force in N")
	flag.StringVar(&actuators, "actuators", "", "actuator model overriding the scenario: null or ideal")
}

func main() {
	flag.Parse()
	runID := uuid.New().String()
	logger := newLogger(logLevel)
	logger = log.With(logger, "run", runID)

	if err := run(logger, runID); err != nil {
		level.Error(logger).Log("subsys", "plantsim", "err", err)
		os.Exit(1)
	}
}

func run(logger log.Logger, runID string) error {
	params, err := loadParams()
	if err != nil {
		return err
	}
	if actuators != "" {
		params.Actuators = actuators
	}
	cmd := plant.ActuatorCommands{}
	if cmd.Torque, err = parseVector(torque); err != nil {
		return fmt.Errorf("-torque: %s", err)
	}
	if cmd.Force, err = parseVector(force); err != nil {
		return fmt.Errorf("-force: %s", err)
	}

	sc, err := plant.NewSpacecraft(params, plant.WithLogger(logger))
	if err != nil {
		return err
	}

	var collector *metrics.PlantCollector
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		if collector, err = metrics.NewPlantCollector(reg); err != nil {
			return err
		}
		collector.Sample(sc)
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				level.Error(logger).Log("subsys", "metrics", "err", err)
			}
		}()
		defer srv.Close()
		level.Info(logger).Log("subsys", "metrics", "addr", metricsAddr)
	}

	var exporter *plant.Exporter
	if exportDir != "" {
		conf := plant.ExportConfig{Dir: exportDir, Filename: "plantsim", Every: exportEvery, Timestamp: true}
		switch strings.ToLower(exportFmt) {
		case "csv":
			conf.AsCSV = true
		case "cosmo":
			conf.Cosmo = true
		case "both":
			conf.AsCSV, conf.Cosmo = true, true
		default:
			return fmt.Errorf("unknown export format '%s'", exportFmt)
		}
		if exporter, err = plant.NewExporter(conf, sc, runID); err != nil {
			return err
		}
		defer func() {
			if err := exporter.Close(); err != nil {
				level.Error(logger).Log("subsys", "export", "err", err)
			}
			level.Info(logger).Log("subsys", "export", "dir", exportDir, "samples", exporter.Written())
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	step := time.Duration(params.Step * float64(time.Second))
	wallStart := time.Now()
	for sc.Ticks() < ticks {
		select {
		case <-ctx.Done():
			level.Warn(logger).Log("subsys", "plantsim", "status", "interrupted", "tick", sc.Ticks())
			return nil
		default:
		}
		start := time.Now()
		sc.Simulate(cmd)
		elapsed := time.Since(start)
		collector.Observe(sc, elapsed)
		if exporter != nil {
			if err := exporter.Write(sc); err != nil {
				return err
			}
		}
		if !sc.Healthy() {
			return fmt.Errorf("state diverged at tick %d", sc.Ticks())
		}
		if realtime && step > elapsed {
			time.Sleep(step - elapsed)
		}
	}

	cur := sc.Current()
	body := params.Body
	level.Info(logger).Log("subsys", "plantsim", "status", "finished", "ticks", sc.Ticks(), "sim_time", sc.SimTime,
		"date", sc.Date(), "wall", time.Since(wallStart), "altitude(km)", cur.Ephemeris.Signal.Altitude(body)/1e3,
		"energy", cur.Ephemeris.Signal.Energyξ(body.GM()), "|q|", cur.Attitude.Signal.Norm())
	return nil
}

func loadParams() (plant.Params, error) {
	if scenario != "" {
		return plant.ParamsFromFile(scenario)
	}
	if os.Getenv(plant.ConfigEnv) != "" {
		return plant.ParamsFromEnv()
	}
	return plant.DefaultParams(), nil
}

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	return level.NewFilter(logger, opt)
}

func parseVector(s string) (v [3]float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected three comma separated values, got '%s'", s)
	}
	for i, p := range parts {
		if v[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return v, err
		}
	}
	return v, nil
}
