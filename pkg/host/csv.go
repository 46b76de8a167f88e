package host

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes a captured trace in the column layout the analysis
// tooling expects: elapsed time in ms, sweep voltage in V, current in
// mA, with the physical shifts already applied.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"time (ms)", "Voltage (V)", "Current (mA)"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
			strconv.FormatFloat(r.SweepVolts(), 'f', 4, 64),
			strconv.FormatFloat(r.CurrentMilliamps(), 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
