package sweep

import (
	"errors"
	"fmt"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/config"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/frontend"
)

// ErrInvalidBounds is returned when the sweep bounds cannot produce a
// ramp: the upper bound does not exceed the lower one, or the two map
// to the same output code.
var ErrInvalidBounds = errors.New("sweep: invalid voltage bounds")

// Params holds the sweep parameters. The dispatcher is the only writer;
// the engine snapshots a copy when a sweep starts, so mutations during
// an active sweep take effect on the next invocation only.
type Params struct {
	SweepTime float64 // Duration of one full up+down sweep, seconds
	VLow      float64 // Lower bound of the triangle wave, volts
	VHigh     float64 // Upper bound, volts
	NumScans  int     // Full up/down cycles per sweep

	// Offset-compensated bounds, kept in lockstep with VLow/VHigh.
	// These are what the engine maps to output codes.
	CompLow  float64
	CompHigh float64
}

// DefaultParams returns the power-on sweep parameters.
func DefaultParams() Params {
	var p Params
	p.SetSweepTime(20)
	p.SetVLow(-1.0)
	p.SetVHigh(0.6)
	p.SetNumScans(1)
	return p
}

// ParamsFromConfig builds Params from a sweep configuration section.
func ParamsFromConfig(cfg config.SweepConfig) Params {
	var p Params
	p.SetSweepTime(cfg.TimeSeconds)
	p.SetVLow(cfg.VoltageLow)
	p.SetVHigh(cfg.VoltageHigh)
	p.SetNumScans(cfg.NumScans)
	return p
}

// SetSweepTime sets the total up+down sweep duration in seconds.
func (p *Params) SetSweepTime(seconds float64) {
	p.SweepTime = seconds
}

// SetVLow sets the lower voltage bound and recomputes its compensated
// value.
func (p *Params) SetVLow(v float64) {
	p.VLow = v
	p.CompLow = v + frontend.Offset
}

// SetVHigh sets the upper voltage bound and recomputes its compensated
// value.
func (p *Params) SetVHigh(v float64) {
	p.VHigh = v
	p.CompHigh = v + frontend.Offset
}

// SetNumScans sets the number of full up/down cycles.
func (p *Params) SetNumScans(n int) {
	p.NumScans = n
}

// Validate rejects parameter sets the engine cannot run. In particular
// it catches bounds whose codes collapse to a zero-length ramp, which
// would otherwise divide by zero computing the per-step delay.
func (p Params) Validate() error {
	if p.VHigh <= p.VLow {
		return fmt.Errorf("%w: high %g V must exceed low %g V", ErrInvalidBounds, p.VHigh, p.VLow)
	}
	codeLow := frontend.CodeForVoltage(p.CompLow)
	codeHigh := frontend.CodeForVoltage(p.CompHigh)
	if codeHigh <= codeLow {
		return fmt.Errorf("%w: range [%g, %g] V spans no output codes", ErrInvalidBounds, p.VLow, p.VHigh)
	}
	if p.NumScans < 1 {
		return fmt.Errorf("sweep: scan count %d must be at least 1", p.NumScans)
	}
	if p.SweepTime < 0 {
		return fmt.Errorf("sweep: sweep time %g s must not be negative", p.SweepTime)
	}
	return nil
}
