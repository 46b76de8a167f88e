package transport

import "errors"

const (
	// BaudRate is the fixed line rate of the instrument link.
	// Sample lines are short ("<ms>,<v1>,<v2>\n", ~20 bytes), so even the
	// fastest sweeps stay well below the line capacity at 115200 baud.
	BaudRate = 115200
)

// ErrNoData is returned by ReadByte when no inbound byte is pending.
var ErrNoData = errors.New("transport: no data available")

// Transport is the byte-oriented duplex channel between the instrument
// core and its host. The core uses it from a single goroutine and never
// expects Available to block; ReadToken may block briefly while a
// command payload trickles in.
type Transport interface {
	// Available reports whether at least one inbound byte is ready to
	// be consumed without blocking.
	Available() bool

	// ReadByte consumes one inbound byte.
	ReadByte() (byte, error)

	// ReadToken consumes bytes up to and including delim and returns the
	// token without the delimiter. A token cut short (link timeout,
	// closed peer) is returned as-is; the caller decides what a partial
	// token means.
	ReadToken(delim byte) (string, error)

	// WriteReady reports whether the outbound side can accept a line.
	WriteReady() bool

	// WriteLine writes s followed by a newline terminator.
	WriteLine(s string) error
}
