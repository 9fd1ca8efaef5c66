// Package store keeps finished runs on disk, one directory per run holding
// metadata.json and the samples as samples.csv.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/pendulab/internal/config"
	"github.com/san-kum/pendulab/internal/experiment"
	"github.com/san-kum/pendulab/internal/export"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrNotFound = errors.New("store: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string              `json:"id"`
	SimID     string              `json:"sim_id"`
	Kind      string              `json:"kind"`
	Links     int                 `json:"links"`
	Preset    string              `json:"preset,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	Dt        float64             `json:"dt"`
	Duration  float64             `json:"duration"`
	Gravity   float64             `json:"gravity"`
	Damping   float64             `json:"damping"`
	Chain     []config.LinkConfig `json:"chain"`
	Samples   int                 `json:"samples"`
	Flipped   bool                `json:"flipped"`
	Metrics   map[string]float64  `json:"metrics"`
}

// Samples is a stored run's time series. Angles has one row per sample
// with one entry per link, in radians.
type Samples struct {
	Times  []float64
	Angles [][]float64
	Energy []float64
}

// Save writes res under a new run ID built from the chain kind, the time
// and the simulator ID.
func (s *Store) Save(cfg *config.Config, preset string, res *experiment.Result) (string, error) {
	now := time.Now()
	kind := config.Kind(res.Links)
	short := res.ID
	if len(short) > 8 {
		short = short[:8]
	}
	runID := fmt.Sprintf("%s_%d_%s", kind, now.Unix(), short)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		SimID:     res.ID,
		Kind:      kind,
		Links:     res.Links,
		Preset:    preset,
		Timestamp: now,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Gravity:   cfg.Gravity,
		Damping:   cfg.Damping,
		Chain:     append([]config.LinkConfig(nil), cfg.Chain[:res.Links]...),
		Samples:   len(res.Times),
		Flipped:   res.Flipped(),
		Metrics:   finiteMetrics(res.Metrics),
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, samplesFile), func(w io.Writer) error {
		return export.WriteCSV(w, res)
	}); err != nil {
		return "", err
	}
	return runID, nil
}

// finiteMetrics drops values JSON cannot hold.
func finiteMetrics(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("store %s: %w", path, err)
	}
	return f.Close()
}

// List returns the stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) dir(runID string) (string, error) {
	if runID == "" || strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return "", fmt.Errorf("%w: %q", ErrNotFound, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.dir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("store %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads a run's samples back. Columns are found by name, so
// files from chains of any length load.
func (s *Store) LoadSamples(runID string) (*Samples, error) {
	dir, err := s.dir(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(dir, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", runID, err)
	}

	out := &Samples{}
	if len(records) < 1 {
		return out, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	var angleCols []int
	for i := 1; ; i++ {
		c, ok := col["angle"+strconv.Itoa(i)]
		if !ok {
			break
		}
		angleCols = append(angleCols, c)
	}
	energyCol, hasEnergy := col["energy"]

	header := records[0]
	for r, record := range records[1:] {
		line := r + 2
		cell := func(c int) (float64, error) {
			v, err := strconv.ParseFloat(record[c], 64)
			if err != nil {
				return 0, fmt.Errorf("store %s: %s line %d column %q: %w", runID, samplesFile, line, header[c], err)
			}
			return v, nil
		}

		t, err := cell(0)
		if err != nil {
			return nil, err
		}
		row := make([]float64, len(angleCols))
		for j, c := range angleCols {
			if row[j], err = cell(c); err != nil {
				return nil, err
			}
		}
		out.Times = append(out.Times, t)
		out.Angles = append(out.Angles, row)
		if hasEnergy {
			e, err := cell(energyCol)
			if err != nil {
				return nil, err
			}
			out.Energy = append(out.Energy, e)
		}
	}
	return out, nil
}

func (s *Store) Remove(runID string) error {
	dir, err := s.dir(runID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return os.RemoveAll(dir)
}
