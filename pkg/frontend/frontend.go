package frontend

import "math"

// Electrical constants of the analog front end. These describe the
// hardware and are not runtime-negotiable.
const (
	// Resolution is the number of codes of the DAC and both ADCs.
	Resolution = 4096
	// MaxCode is the largest output/input code (12-bit).
	MaxCode = Resolution - 1
	// FullScale is the physical range spanned by the codes, in volts.
	FullScale = 5.0
	// Offset shifts the bipolar sweep range into the DAC's unipolar
	// range: a requested -1 V becomes 0 V at the converter.
	Offset = 1.0
	// RestCode is the code the output must sit at whenever no sweep is
	// stepping: the bottom rail.
	RestCode uint16 = 0
)

// AnalogFrontEnd is the instrument's view of the converter hardware:
// one writable output channel and two readable input channels.
type AnalogFrontEnd interface {
	// SetOutput drives the output channel to the given code.
	SetOutput(code uint16)
	// ReadSweepMonitor samples the channel tracking the applied sweep
	// voltage.
	ReadSweepMonitor() uint16
	// ReadCurrent samples the transimpedance-amplifier current proxy.
	ReadCurrent() uint16
}

// CodeForVoltage maps a physical voltage to the nearest output code,
// clamped to the converter range.
func CodeForVoltage(v float64) uint16 {
	code := math.Round(v / FullScale * MaxCode)
	if code < 0 {
		return 0
	}
	if code > MaxCode {
		return MaxCode
	}
	return uint16(code)
}

// VoltageForCode maps an output code back to the physical voltage it
// produces.
func VoltageForCode(code uint16) float64 {
	return float64(code) / MaxCode * FullScale
}
