package host

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ADC scale factors of the instrument link: at unity gain one bit is
// 2 mV, and both channels carry a digital shift that recovers the
// physical value (the sweep is offset by +1 V into the DAC's unipolar
// range, the transimpedance stage idles at +2.5 V).
const (
	voltsPerBit  = 0.002
	sweepShift   = 1.0
	currentShift = 2.5
	maxRawValue  = 4095
)

// Record is one timestamped sample streamed by the instrument during a
// sweep.
type Record struct {
	Elapsed    time.Duration // Time since the sweep started
	SweepRaw   uint16        // Raw sweep-monitor reading (0-4095)
	CurrentRaw uint16        // Raw current-proxy reading (0-4095)
}

// SweepVolts returns the applied sweep voltage in volts.
func (r Record) SweepVolts() float64 {
	return float64(r.SweepRaw)*voltsPerBit - sweepShift
}

// CurrentMilliamps returns the cell current in milliamps.
func (r Record) CurrentMilliamps() float64 {
	return float64(r.CurrentRaw)*voltsPerBit - currentShift
}

// parseRecord parses a sample line from the instrument.
// Format: elapsed_ms,sweep_raw,current_raw
// Example: 152,1310,2087
func parseRecord(line string) (Record, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("invalid record format: expected 3 comma-separated values, got %d", len(parts))
	}

	elapsedMs, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	sweepRaw, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Record{}, fmt.Errorf("invalid sweep reading: %w", err)
	}
	if sweepRaw > maxRawValue {
		return Record{}, fmt.Errorf("sweep reading out of range: %d (max %d)", sweepRaw, maxRawValue)
	}

	currentRaw, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return Record{}, fmt.Errorf("invalid current reading: %w", err)
	}
	if currentRaw > maxRawValue {
		return Record{}, fmt.Errorf("current reading out of range: %d (max %d)", currentRaw, maxRawValue)
	}

	return Record{
		Elapsed:    time.Duration(elapsedMs) * time.Millisecond,
		SweepRaw:   uint16(sweepRaw),
		CurrentRaw: uint16(currentRaw),
	}, nil
}
