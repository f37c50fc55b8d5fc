package plant

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestExporter(t *testing.T) {
	dir := t.TempDir()
	p := DefaultParams()
	p.Sensors.Model = "ideal"
	sc, err := NewSpacecraft(p)
	if err != nil {
		t.Fatal(err)
	}
	conf := ExportConfig{Dir: dir, Filename: "test", Cosmo: true, AsCSV: true, Every: 5}
	if conf.IsUseless() {
		t.Fatal("config should not be useless")
	}
	e, err := NewExporter(conf, sc, "run-1234")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		sc.Simulate(ActuatorCommands{})
		if err := e.Write(sc); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	// Initial state and every fifth tick.
	if e.Written() != 5 {
		t.Fatalf("expected 5 samples, got %d", e.Written())
	}

	// Trajectory
	f, err := os.Open(filepath.Join(dir, "prop-test.xyzv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	states, err := ParseInterpolatedStates(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 5 {
		t.Fatalf("expected 5 trajectory records, got %d", len(states))
	}
	if jd := julian.TimeToJD(p.Epoch); !scalar.EqualWithinAbs(states[0].JD, jd, 1e-6) {
		t.Fatalf("invalid first JD %f != %f", states[0].JD, jd)
	}
	if !scalar.EqualWithinAbs(states[0].Position[0], p.Ephemeris.R[0]/1e3, 1e-6) {
		t.Fatalf("position not in km: %v", states[0].Position)
	}
	if !scalar.EqualWithinAbs(states[4].JD-states[0].JD, 2.0/86400, 1e-6) {
		t.Fatalf("invalid JD span %f", states[4].JD-states[0].JD)
	}

	// Truth
	cf, err := os.Open(filepath.Join(dir, "truth-test.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer cf.Close()
	r := csv.NewReader(cf)
	r.Comment = '#'
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 6 {
		t.Fatalf("expected a header and 5 records, got %d rows", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(csvHeader, ",") {
		t.Fatalf("invalid header %v", records[0])
	}
	last := records[5]
	if last[0] != "20" || last[len(last)-1] != "true" {
		t.Fatalf("invalid last record %v", last)
	}
	alt, err := strconv.ParseFloat(last[17], 64)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(alt, DefaultAltitude, 1) {
		t.Fatalf("invalid altitude %f", alt)
	}
	qw, _ := strconv.ParseFloat(last[12], 64)
	if qw != 1 {
		t.Fatalf("attitude changed without rate: qw=%f", qw)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "truth-test.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "# Run: run-1234\n") {
		t.Fatal("run identifier missing from the truth header")
	}

	// Catalog
	raw, err = os.ReadFile(filepath.Join(dir, "catalog-test.json"))
	if err != nil {
		t.Fatal(err)
	}
	var cat CgCatalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		t.Fatal(err)
	}
	if len(cat.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(cat.Items))
	}
	item := cat.Items[0]
	if item.Center != "Earth" || item.Trajectory.Source != "prop-test.xyzv" || item.Trajectory.Validate() != nil {
		t.Fatalf("invalid catalog item %+v", item)
	}
}

func TestExporterCSVOnly(t *testing.T) {
	dir := t.TempDir()
	sc, err := NewSpacecraft(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewExporter(ExportConfig{Dir: dir, Filename: "csv", AsCSV: true}, sc, "run")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		sc.Simulate(ActuatorCommands{})
		if err := e.Write(sc); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if e.Written() != 4 {
		t.Fatalf("every tick should be written, got %d", e.Written())
	}
	for _, name := range []string{"prop-csv.xyzv", "catalog-csv.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s should not exist", name)
		}
	}
}

func TestExporterErrors(t *testing.T) {
	sc, err := NewSpacecraft(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if !(ExportConfig{Every: 3}).IsUseless() {
		t.Fatal("config without outputs should be useless")
	}
	if _, err := NewExporter(ExportConfig{Dir: filepath.Join(t.TempDir(), "missing"), Filename: "x", AsCSV: true}, sc, "run"); err == nil {
		t.Fatal("created an export in a missing directory")
	}
}

func TestInterpolatedStateText(t *testing.T) {
	s := CgInterpolatedState{JD: 2451545, Position: [3]float64{7000, -1.5, 0}, Velocity: [3]float64{0, 7.5, 0.001}}
	var back CgInterpolatedState
	if err := back.FromText(strings.Fields(s.ToText())); err != nil {
		t.Fatal(err)
	}
	if back != s {
		t.Fatalf("%+v != %+v", back, s)
	}
	if err := back.FromText([]string{"1", "2"}); err == nil {
		t.Fatal("short record accepted")
	}
	if err := back.FromText([]string{"a", "0", "0", "0", "0", "0", "0"}); err == nil {
		t.Fatal("non numeric record accepted")
	}
	if _, err := ParseInterpolatedStates(strings.NewReader("# header\n1 2 3\n")); err == nil {
		t.Fatal("short record parsed")
	}
	if (&CgTrajectory{Type: "Spice", Source: "a.bsp"}).Validate() == nil {
		t.Fatal("unsupported trajectory validated")
	}
}
