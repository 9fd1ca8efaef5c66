package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pendulab/internal/experiment"
)

type ExportData struct {
	ID         string             `json:"id"`
	Links      int                `json:"links"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Samples    int                `json:"samples"`
	Flipped    bool               `json:"flipped"`
	Times      []float64          `json:"times"`
	Angles     [][]float64        `json:"angles"`
	Velocities [][]float64        `json:"velocities"`
	Energy     []float64          `json:"energy"`
	Metrics    map[string]float64 `json:"metrics"`
	Final      []Link             `json:"final"`
}

// Link is a readout row in user units.
type Link struct {
	Length float64 `json:"length_m"`
	Mass   float64 `json:"mass"`
	Angle  float64 `json:"angle_deg"`
}

func NewExportData(res *experiment.Result) ExportData {
	data := ExportData{
		ID:         res.ID,
		Links:      res.Links,
		Dt:         res.Dt,
		Duration:   res.Readout.Time,
		Samples:    len(res.Times),
		Flipped:    res.Flipped(),
		Times:      res.Times,
		Angles:     res.Angles,
		Velocities: res.Velocities,
		Energy:     res.Energy,
		Metrics:    res.Metrics,
	}
	for _, l := range res.Readout.Links {
		data.Final = append(data.Final, Link{Length: l.Length, Mass: l.Mass, Angle: l.Angle})
	}
	return data
}

// WriteJSON encodes the run as indented JSON. Non-finite samples are not
// representable in JSON, so a diverged run fails to encode.
func WriteJSON(w io.Writer, res *experiment.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(res))
}

func SaveJSON(path string, res *experiment.Result) error {
	return save(path, func(w io.Writer) error { return WriteJSON(w, res) })
}
