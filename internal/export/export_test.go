package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/pendulab/internal/experiment"
	"github.com/san-kum/pendulab/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

func run(t *testing.T, n int) *experiment.Result {
	t.Helper()
	res, err := experiment.New(experiment.Config{
		Params:   sim.DefaultParams(n),
		Dt:       0.01,
		Duration: 0.5,
	}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func TestHeader(t *testing.T) {
	got := strings.Join(Header(2), ",")
	want := "time,angle1,omega1,angle2,omega2,x1,y1,x2,y2,energy"
	if got != want {
		t.Errorf("header %q, want %q", got, want)
	}
}

func TestWriteCSV(t *testing.T) {
	res := run(t, 3)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, res); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv does not parse: %v", err)
	}
	if len(records) != len(res.Times)+1 {
		t.Fatalf("expected %d records, got %d", len(res.Times)+1, len(records))
	}
	for i, rec := range records {
		if len(rec) != len(Header(3)) {
			t.Fatalf("record %d has %d fields", i, len(rec))
		}
	}
	if records[1][0] != "0.010000" {
		t.Errorf("first sample time %q", records[1][0])
	}
}

func TestWriteJSON(t *testing.T) {
	res := run(t, 2)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("json does not decode: %v", err)
	}
	if data.Links != 2 || data.Samples != len(res.Times) || data.ID != res.ID {
		t.Errorf("unexpected header fields: %+v", data)
	}
	if len(data.Final) != 2 || data.Final[0].Length != 1.5 {
		t.Errorf("final readout not exported: %+v", data.Final)
	}
	if _, ok := data.Metrics["energy_drift"]; !ok {
		t.Errorf("metrics missing: %v", data.Metrics)
	}
}

func TestWriteJSONRejectsNaN(t *testing.T) {
	res := &experiment.Result{Links: 1, Times: []float64{0}, Energy: []float64{math.NaN()}}
	if err := WriteJSON(&bytes.Buffer{}, res); err == nil {
		t.Error("expected an error encoding NaN")
	}
}

func TestPaths(t *testing.T) {
	res := &experiment.Result{
		Links: 2,
		Bobs: [][]r2.Vec{
			{{X: 1, Y: 2}, {X: 3, Y: 4}},
			{{X: 5, Y: 6}, {X: 7, Y: 8}},
		},
	}
	paths := Paths(res)
	if len(paths) != 2 || len(paths[0]) != 2 {
		t.Fatalf("unexpected shape %v", paths)
	}
	if paths[1][1] != (r2.Vec{X: 7, Y: 8}) {
		t.Errorf("paths not transposed: %v", paths)
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	res := run(t, 3)
	svg := TrajectoryToSVG(res, 400, 400)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("not a complete svg document")
	}
	if got := strings.Count(svg, "<path"); got != 3 {
		t.Errorf("expected 3 paths, got %d", got)
	}
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 bobs, got %d", got)
	}
	for _, c := range LinkColors {
		if !strings.Contains(svg, c) {
			t.Errorf("link color %s missing", c)
		}
	}
}

func TestTrajectoryToSVGSkipsNonFinite(t *testing.T) {
	nan := math.NaN()
	res := &experiment.Result{
		Links: 1,
		Bobs: [][]r2.Vec{
			{{X: 0, Y: 10}},
			{{X: 5, Y: 10}},
			{{X: nan, Y: nan}},
			{{X: 10, Y: 10}},
			{{X: 10, Y: 5}},
		},
	}
	svg := TrajectoryToSVG(res, 100, 100)
	if strings.Contains(svg, "NaN") {
		t.Error("NaN leaked into the svg")
	}
	if got := strings.Count(svg, "M"); got < 2 {
		t.Errorf("expected the path to restart after a gap, got %d moves", got)
	}
}

func TestFitIsSquare(t *testing.T) {
	b := fit(r2.Vec{}, [][]r2.Vec{{{X: 0, Y: 0}, {X: 10, Y: 2}}})
	w, h := b.max.X-b.min.X, b.max.Y-b.min.Y
	if math.Abs(w-h) > 1e-12 || w <= 10 {
		t.Errorf("expected a padded square box, got %v x %v", w, h)
	}
}

func TestWritePNG(t *testing.T) {
	res := run(t, 2)

	p, err := TrajectoryPlot(res)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, p, 2, 2); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output is not a png")
	}
}

func TestSavePNGWritesThreeFiles(t *testing.T) {
	res := run(t, 1)
	path := filepath.Join(t.TempDir(), "run.png")

	written, err := SavePNG(path, res)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"run.png", "run-angles.png", "run-energy.png"}
	if len(written) != len(want) {
		t.Fatalf("wrote %v", written)
	}
	for i, name := range written {
		if filepath.Base(name) != want[i] {
			t.Errorf("file %d is %s, want %s", i, filepath.Base(name), want[i])
		}
		if info, err := os.Stat(name); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestFiniteDropsBadPoints(t *testing.T) {
	pts := finite([]float64{0, 1, 2, 3}, []float64{1, math.NaN(), math.Inf(1), 4})
	if len(pts) != 2 || pts[1].X != 3 {
		t.Errorf("unexpected points %v", pts)
	}
}

func TestSaveCSVReportsBadPath(t *testing.T) {
	res := run(t, 1)
	if err := SaveCSV(filepath.Join(t.TempDir(), "missing", "x.csv"), res); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
