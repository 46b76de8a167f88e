package frontend

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/config"
)

// capacitiveCounts is the non-faradaic background current of the
// simulated cell, in ADC counts. Its sign follows the scan direction.
const capacitiveCounts = 40.0

// Sim simulates the analog front end wired to an electrochemical cell:
// the sweep monitor tracks the driven output and the current proxy
// shows a capacitive background plus a redox peak around the configured
// half-wave potential. Useful for development and tests without
// hardware attached.
type Sim struct {
	cfg config.SimConfig

	mu       sync.Mutex
	code     uint16
	lastCode uint16
	reads    int
}

var _ AnalogFrontEnd = (*Sim)(nil)

// NewSim creates a simulated front end. A nil config uses defaults.
func NewSim(cfg *config.SimConfig) *Sim {
	if cfg == nil {
		def := config.Default().Sim
		cfg = &def
	}
	return &Sim{cfg: *cfg}
}

// SetOutput drives the simulated output channel.
func (s *Sim) SetOutput(code uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCode = s.code
	s.code = code
}

// ReadSweepMonitor returns the driven code with a little reading noise.
func (s *Sim) ReadSweepMonitor() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clampCode(float32(s.code) + s.noise())
}

// ReadCurrent returns the simulated cell response at the present sweep
// voltage.
func (s *Sim) ReadCurrent() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Cell potential, with the unipolar shift removed.
	v := float32(VoltageForCode(s.code) - Offset)

	// Gaussian faradaic peak around the half-wave potential.
	width := float32(s.cfg.PeakWidth)
	x := (v - float32(s.cfg.PeakVoltage)) / width
	peak := float32(s.cfg.PeakHeight) * math32.Exp(-x*x)

	// Capacitive background flips sign with the scan direction.
	direction := float32(1)
	if s.code < s.lastCode {
		direction = -1
	}

	value := float32(s.cfg.BaselineCode) + direction*(capacitiveCounts+peak) + s.noise()
	return clampCode(value)
}

// noise derives a small deterministic pseudo-noise term from the read
// counter. Callers must hold mu.
func (s *Sim) noise() float32 {
	s.reads++
	n := math32.Sin(float32(s.reads)*0.7) + math32.Cos(float32(s.reads)*1.3)
	return n * float32(s.cfg.NoiseLevel) * 0.5
}

func clampCode(v float32) uint16 {
	if v < 0 {
		return 0
	}
	if v > MaxCode {
		return MaxCode
	}
	return uint16(v)
}
