package host

import "time"

// Instrument defines the interface for the voltammetry instrument
// (real or mocked).
type Instrument interface {
	Connect() error
	Close() error
	Handshake(timeout time.Duration) (string, error)
	SetSweepTime(d time.Duration) error
	SetVoltageRange(low, high float64) error
	SetScanCount(n int) error
	StartPause() error
	Stop() error
	Records() <-chan Record
	SweepDone() <-chan struct{}
	IsConnected() bool
}

// Ensure Serial implements Instrument.
var _ Instrument = (*Serial)(nil)

// Ensure Mock implements Instrument.
var _ Instrument = (*Mock)(nil)
