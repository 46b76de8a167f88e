package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/frontend"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/transport"
)

const (
	// completionMarker is emitted when a sweep runs to completion. It is
	// repeated so a lossy half-duplex host still sees at least one copy.
	completionMarker = "DONE"
	completionRepeat = 5

	// pausePollInterval paces the parked wait while the sweep is
	// paused, instead of spinning on the transport.
	pausePollInterval = time.Millisecond
)

// Control is the engine's view of the dispatcher: a non-blocking
// command poll plus the pause/stop state it maintains. The engine
// yields to it after every sample, which is what keeps Stop and Pause
// responsive while a sweep owns the single thread of control.
type Control interface {
	// Poll handles at most one pending command.
	Poll()
	// Continue reports whether the sweep should keep stepping. False
	// means paused.
	Continue() bool
	// Stopped reports whether an abort was requested. Stop wins over
	// pause.
	Stopped() bool
}

// Engine generates the triangular waveform: it steps the output code
// between the configured bounds, samples both input channels at every
// step, and streams one record per step over the transport.
type Engine struct {
	fe frontend.AnalogFrontEnd
	tr transport.Transport
}

// NewEngine creates an Engine driving the given front end and
// streaming over the given transport.
func NewEngine(fe frontend.AnalogFrontEnd, tr transport.Transport) *Engine {
	return &Engine{fe: fe, tr: tr}
}

// Run executes one sweep with a snapshot of the given parameters and
// returns when all scans complete, a stop is requested, or ctx is
// cancelled. The output channel is left at the rest code in every case.
//
// Cancellation is cooperative: it is observed at step boundaries, never
// mid-hold, so the engine is unresponsive for at most one step delay.
func (e *Engine) Run(ctx context.Context, p Params, ctl Control) error {
	codeLow := frontend.CodeForVoltage(p.CompLow)
	codeHigh := frontend.CodeForVoltage(p.CompHigh)
	if codeHigh <= codeLow {
		e.fe.SetOutput(frontend.RestCode)
		return fmt.Errorf("%w: [%g, %g] V maps to codes [%d, %d]",
			ErrInvalidBounds, p.VLow, p.VHigh, codeLow, codeHigh)
	}

	steps := int(codeHigh - codeLow)

	// Half the sweep covers the ascending steps; the descending phase
	// reuses the same interval, giving a constant slew rate. The delay
	// is truncated to whole milliseconds like the converter timing unit.
	holdMillis := int(p.SweepTime / 2 / float64(steps) * 1000)
	hold := time.Duration(holdMillis) * time.Millisecond

	start := time.Now()

	for scan := 0; scan < p.NumScans; scan++ {
		for code := codeLow; code < codeHigh; code++ {
			if stopped := e.step(ctx, code, hold, start, ctl); stopped {
				return nil
			}
		}
		for code := codeHigh; code > codeLow; code-- {
			if stopped := e.step(ctx, code, hold, start, ctl); stopped {
				return nil
			}
		}
	}

	e.fe.SetOutput(frontend.RestCode)
	for i := 0; i < completionRepeat; i++ {
		_ = e.tr.WriteLine(completionMarker)
	}
	return nil
}

// step performs one waveform step: drive the code, hold, sample both
// channels, emit the record, then yield to the dispatcher. While
// paused it parks, polling for a resume or stop; no output change and
// no sampling happen in that state. Reports whether the sweep must end.
func (e *Engine) step(ctx context.Context, code uint16, hold time.Duration, start time.Time, ctl Control) bool {
	for !ctl.Continue() {
		ctl.Poll()
		if ctl.Stopped() || ctx.Err() != nil {
			e.fe.SetOutput(frontend.RestCode)
			return true
		}
		if ctl.Continue() {
			break
		}
		time.Sleep(pausePollInterval)
	}

	e.fe.SetOutput(code)
	time.Sleep(hold)

	monitor := e.fe.ReadSweepMonitor()
	current := e.fe.ReadCurrent()
	elapsed := time.Since(start).Milliseconds()
	_ = e.tr.WriteLine(fmt.Sprintf("%d,%d,%d", elapsed, monitor, current))

	ctl.Poll()
	if ctl.Stopped() || ctx.Err() != nil {
		e.fe.SetOutput(frontend.RestCode)
		return true
	}
	return false
}
