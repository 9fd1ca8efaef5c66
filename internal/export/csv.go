package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/pendulab/internal/experiment"
)

// Header returns the CSV column names for an n-link run.
func Header(n int) []string {
	header := []string{"time"}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("angle%d", i), fmt.Sprintf("omega%d", i))
	}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	return append(header, "energy")
}

// WriteCSV writes one row per recorded sample. Angles are in radians and
// positions in internal units.
func WriteCSV(w io.Writer, res *experiment.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(res.Links)); err != nil {
		return err
	}

	for i, t := range res.Times {
		row := []string{format(t)}
		for j := 0; j < res.Links; j++ {
			row = append(row, format(res.Angles[i][j]), format(res.Velocities[i][j]))
		}
		for j := 0; j < res.Links; j++ {
			var x, y float64
			if i < len(res.Bobs) {
				x, y = res.Bobs[i][j].X, res.Bobs[i][j].Y
			}
			row = append(row, format(x), format(y))
		}
		var e float64
		if i < len(res.Energy) {
			e = res.Energy[i]
		}
		row = append(row, format(e))

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func SaveCSV(path string, res *experiment.Result) error {
	return save(path, func(w io.Writer) error { return WriteCSV(w, res) })
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func save(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}
