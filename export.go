package plant

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
)

// CgCatalog definition.
type CgCatalog struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Items   []*CgItems `json:"items"`
	Require []string   `json:"require,omitempty"`
}

func (c *CgCatalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// CgItems definition.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory,omitempty"`
	Label           *CgLabel          `json:"label,omitempty"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot,omitempty"`
}

// CgTrajectory definition.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate validates a CgTrajectory.
func (t *CgTrajectory) Validate() error {
	if t.Type != "InterpolatedStates" || !strings.HasSuffix(t.Source, "xyzv") {
		return errors.New("only InterpolatedStates are currently supported in Cosmographia trajectory types")
	}
	return nil
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState is one record of a Cosmographia xyzv file, in km and km/s.
type CgInterpolatedState struct {
	JD       float64
	Position [3]float64
	Velocity [3]float64
}

// FromText initializes from text.
// The `record` parameter must be an array of seven items.
func (i *CgInterpolatedState) FromText(record []string) error {
	if len(record) != 7 {
		return errors.Errorf("expected 7 fields, got %d", len(record))
	}
	vals := make([]float64, 7)
	for j, field := range record {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return errors.Wrapf(err, "field %d", j)
		}
		vals[j] = val
	}
	i.JD = vals[0]
	copy(i.Position[:], vals[1:4])
	copy(i.Velocity[:], vals[4:])
	return nil
}

// ToText converts to text for written output.
func (i *CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position[0], i.Position[1], i.Position[2], i.Velocity[0], i.Velocity[1], i.Velocity[2])
}

// ParseInterpolatedStates reads the records of a Cosmographia xyzv file.
func ParseInterpolatedStates(r io.Reader) ([]*CgInterpolatedState, error) {
	var states = []*CgInterpolatedState{}
	cr := csv.NewReader(r)
	cr.Comma = ' '
	cr.Comment = '#'
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		state := CgInterpolatedState{}
		if err := state.FromText(record); err != nil {
			return nil, err
		}
		states = append(states, &state)
	}
	return states, nil
}

// csvHeader lists the columns of the truth CSV export.
var csvHeader = []string{"tick", "time", "jd", "rx", "ry", "rz", "vx", "vy", "vz", "qx", "qy", "qz", "qw", "wx", "wy", "wz", "energy", "altitude", "valid"}

// ExportConfig configures the exporting of the simulation.
type ExportConfig struct {
	Dir       string // Output directory.
	Filename  string
	Cosmo     bool // Cosmographia xyzv trajectory and catalog.
	AsCSV     bool // Full truth as CSV.
	Timestamp bool // Append the creation time to the file names.
	Every     uint64
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.Cosmo && !c.AsCSV
}

// Exporter writes the truth of the spacecraft after each tick.
type Exporter struct {
	conf        ExportConfig
	name        string
	f, fAsCSV   *os.File
	csv         *csv.Writer
	start, last time.Time
	body        CelestialObject
	written     uint64
}

// NewExporter creates the export files and writes the initial state of the spacecraft.
// The run identifier is written in the headers. Close must be called.
func NewExporter(conf ExportConfig, sc *Spacecraft, runID string) (*Exporter, error) {
	if conf.Every == 0 {
		conf.Every = 1
	}
	name := conf.Filename
	if conf.Timestamp {
		t := time.Now()
		name = fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	e := &Exporter{conf: conf, name: name, start: sc.Date(), body: sc.Params().Body}
	var err error
	if conf.Cosmo {
		if e.f, err = os.Create(filepath.Join(conf.Dir, fmt.Sprintf("prop-%s.xyzv", name))); err != nil {
			return nil, errors.Wrap(err, "creating trajectory")
		}
		fmt.Fprintf(e.f, `# Creation date (UTC): %s
# Run: %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a UTC Julian date
#   Position in km
#   Velocity in km/sec
#   Simulation time start (UTC): %s`, time.Now().UTC(), runID, e.start.UTC())
	}
	if conf.AsCSV {
		if e.fAsCSV, err = os.Create(filepath.Join(conf.Dir, fmt.Sprintf("truth-%s.csv", name))); err != nil {
			e.Close()
			return nil, errors.Wrap(err, "creating csv")
		}
		fmt.Fprintf(e.fAsCSV, "# Run: %s\n# Simulation time start (UTC): %s\n", runID, e.start.UTC())
		e.csv = csv.NewWriter(e.fAsCSV)
		if err := e.csv.Write(csvHeader); err != nil {
			e.Close()
			return nil, err
		}
	}
	if err := e.write(sc); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// Write exports the current state of the spacecraft, every conf.Every ticks.
func (e *Exporter) Write(sc *Spacecraft) error {
	if sc.Ticks()%e.conf.Every != 0 {
		return nil
	}
	return e.write(sc)
}

func (e *Exporter) write(sc *Spacecraft) error {
	cur := sc.Current()
	eph := cur.Ephemeris.Signal
	att := cur.Attitude.Signal
	dt := sc.Date()
	jd := julian.TimeToJD(dt)
	e.last = dt
	e.written++
	if e.f != nil {
		asTxt := CgInterpolatedState{JD: jd}
		for i := 0; i < 3; i++ {
			asTxt.Position[i] = eph.R[i] / 1e3
			asTxt.Velocity[i] = eph.V[i] / 1e3
		}
		if _, err := e.f.WriteString("\n" + asTxt.ToText()); err != nil {
			return err
		}
	}
	if e.csv != nil {
		record := []string{strconv.FormatUint(sc.Ticks(), 10), ftoa(sc.SimTime), ftoa(jd)}
		for _, v := range eph.StateVector() {
			record = append(record, ftoa(v))
		}
		for _, v := range att.StateVector() {
			record = append(record, ftoa(v))
		}
		record = append(record, ftoa(eph.Energyξ(e.body.GM())), ftoa(eph.Altitude(e.body)), strconv.FormatBool(cur.Sensors.Raw.Valid))
		if err := e.csv.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Close ends the exports and writes the Cosmographia catalog.
func (e *Exporter) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.csv != nil {
		e.csv.Flush()
		keep(e.csv.Error())
	}
	if e.fAsCSV != nil {
		_, err := fmt.Fprintf(e.fAsCSV, "# Simulation time end (UTC): %s\n", e.last.UTC())
		keep(err)
		keep(e.fAsCSV.Close())
	}
	if e.f != nil {
		_, err := e.f.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", e.last.UTC()))
		keep(err)
		keep(e.f.Close())
		keep(e.writeCatalog())
	}
	return firstErr
}

func (e *Exporter) writeCatalog() error {
	color := []float64{0.6, 1, 1}
	longerEnd := e.last.Add(time.Hour)
	traj := CgTrajectory{Type: "InterpolatedStates", Source: fmt.Sprintf("prop-%s.xyzv", e.name)}
	if err := traj.Validate(); err != nil {
		return err
	}
	item := CgItems{
		Class:           "spacecraft",
		Name:            e.name,
		StartTime:       e.start.UTC().Format(time.RFC3339),
		EndTime:         longerEnd.UTC().Format(time.RFC3339),
		Center:          e.body.Name,
		TrajectoryFrame: "ICRF",
		Trajectory:      &traj,
		Label:           &CgLabel{Color: color, FadeSize: 1000000, ShowText: true},
		TrajectoryPlot: &CgTrajectoryPlot{Color: color, LineWidth: 1, Duration: fmt.Sprintf("%d d", int(longerEnd.Sub(e.start).Hours()/24+1)),
			Lead: "0 d", SampleCount: 10},
	}
	c := CgCatalog{Version: "1.0", Name: e.name, Items: []*CgItems{&item}}
	marsh, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.conf.Dir, fmt.Sprintf("catalog-%s.json", e.name)), marsh, 0o644)
}

// Written returns the number of exported samples.
func (e *Exporter) Written() uint64 {
	return e.written
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
