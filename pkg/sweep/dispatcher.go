package sweep

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/frontend"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/transport"
)

// Command opcodes of the wire protocol. Each command is a single byte;
// the parameter-setting opcodes are followed by an ASCII number
// terminated by PayloadDelim.
const (
	OpHandshake  byte = 0
	OpStartPause byte = 4
	OpSweepTime  byte = 5
	OpVLow       byte = 6
	OpVHigh      byte = 7
	OpNumScans   byte = 8
	OpStop       byte = 9
)

// PayloadDelim terminates the ASCII numeric payload of a command.
const PayloadDelim byte = 'x'

// HandshakeAck is the fixed reply to OpHandshake.
const HandshakeAck = "Message received."

// quiescentPollInterval paces the dispatcher loop while no sweep runs.
const quiescentPollInterval = time.Millisecond

// Dispatcher decodes command bytes from the transport and routes them:
// parameter mutations go to its Params, start hands control to the
// Engine, and pause/stop flip the flags the Engine polls at every step.
type Dispatcher struct {
	tr     transport.Transport
	fe     frontend.AnalogFrontEnd
	engine *Engine

	params  Params
	running bool
	cont    bool
	stop    bool
}

var _ Control = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with the given initial parameters.
func NewDispatcher(tr transport.Transport, fe frontend.AnalogFrontEnd, params Params) *Dispatcher {
	return &Dispatcher{
		tr:     tr,
		fe:     fe,
		engine: NewEngine(fe, tr),
		params: params,
	}
}

// Params returns the current sweep parameters.
func (d *Dispatcher) Params() Params {
	return d.params
}

// Running reports whether a sweep is active.
func (d *Dispatcher) Running() bool {
	return d.running
}

// Continue implements Control.
func (d *Dispatcher) Continue() bool {
	return d.cont
}

// Stopped implements Control.
func (d *Dispatcher) Stopped() bool {
	return d.stop
}

// Run polls for commands until ctx is cancelled, parking the output at
// the rest code on the way out. This is the instrument's main loop.
func (d *Dispatcher) Run(ctx context.Context) {
	d.fe.SetOutput(frontend.RestCode)
	for {
		select {
		case <-ctx.Done():
			d.fe.SetOutput(frontend.RestCode)
			return
		default:
		}
		d.PollContext(ctx)
		time.Sleep(quiescentPollInterval)
	}
}

// Poll handles at most one pending command. With nothing pending it
// returns immediately; this is the only work done in the quiescent
// state, and the engine re-invokes it after every waveform step.
func (d *Dispatcher) Poll() {
	d.PollContext(context.Background())
}

// PollContext is Poll with a context that bounds any sweep started by a
// command.
func (d *Dispatcher) PollContext(ctx context.Context) {
	if !d.tr.Available() {
		return
	}

	op, err := d.tr.ReadByte()
	if err != nil {
		return
	}

	switch op {
	case OpHandshake:
		if d.tr.WriteReady() {
			_ = d.tr.WriteLine(HandshakeAck)
		}

	case OpStartPause:
		d.cont = !d.cont
		if !d.running {
			d.startSweep(ctx)
		}

	case OpSweepTime:
		d.params.SetSweepTime(d.readNumber())

	case OpVLow:
		d.params.SetVLow(d.readNumber())

	case OpVHigh:
		d.params.SetVHigh(d.readNumber())

	case OpNumScans:
		d.params.SetNumScans(int(d.readNumber()))

	case OpStop:
		d.stop = true
		if !d.running {
			// No engine to observe the flag; park the output here.
			d.cont = false
			d.stop = false
			d.fe.SetOutput(frontend.RestCode)
		}

	default:
		// Unknown opcodes are silently ignored.
	}
}

// startSweep validates the parameters and hands control to the engine.
// The call returns only when the sweep completes or is stopped; command
// responsiveness in the meantime comes from the engine polling this
// dispatcher at every step.
func (d *Dispatcher) startSweep(ctx context.Context) {
	if err := d.params.Validate(); err != nil {
		log.Printf("Rejecting sweep start: %v", err)
		if d.tr.WriteReady() {
			_ = d.tr.WriteLine("ERROR " + err.Error())
		}
		d.cont = false
		return
	}

	d.stop = false
	d.running = true
	if err := d.engine.Run(ctx, d.params, d); err != nil {
		log.Printf("Sweep failed: %v", err)
	}
	d.running = false
	d.stop = false
	// A finished sweep leaves the toggle in the idle position, matching
	// the host's view after it sees the completion marker.
	d.cont = false
}

// readNumber reads the delimited ASCII payload following a
// parameter-setting opcode. Malformed or empty tokens coerce to zero;
// no error is surfaced, matching the documented wire behavior.
func (d *Dispatcher) readNumber() float64 {
	token, err := d.tr.ReadToken(PayloadDelim)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil {
		return 0
	}
	return v
}
