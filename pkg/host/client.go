package host

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/sweep"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/transport"
)

const (
	// DefaultBufferSize is the default size for the records channel buffer.
	DefaultBufferSize = 100

	// DefaultHandshakeTimeout bounds how long Handshake waits for the
	// acknowledgement line.
	DefaultHandshakeTimeout = 2 * time.Second
)

// Serial represents a connection to the voltammetry instrument over a
// serial port.
type Serial struct {
	port    string
	bufSize int

	conn      serial.Port
	records   chan Record
	sweepDone chan struct{}
	ack       chan string
	done      chan struct{}
	mu        sync.RWMutex
	connected bool
}

// New creates a new instrument client for the specified port.
func New(port string, bufSize int) *Serial {
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:      port,
		bufSize:   bufSize,
		records:   make(chan Record, bufSize),
		sweepDone: make(chan struct{}, 1),
		ack:       make(chan string, 1),
		done:      make(chan struct{}),
	}
}

// Connect opens the serial port and starts reading the sample stream.
func (c *Serial) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: transport.BaudRate,
	}

	port, err := serial.Open(c.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", c.port, err)
	}

	c.conn = port
	c.connected = true

	go c.readLines()

	return nil
}

// Close closes the connection and stops reading.
func (c *Serial) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	close(c.done)

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		c.conn = nil
	}

	c.connected = false
	close(c.records)

	return nil
}

// Records returns the channel of parsed sample records.
func (c *Serial) Records() <-chan Record {
	return c.records
}

// SweepDone returns a channel that receives a signal when the
// instrument reports sweep completion.
func (c *Serial) SweepDone() <-chan struct{} {
	return c.sweepDone
}

// IsConnected returns whether the client is currently connected.
func (c *Serial) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Handshake sends a liveness request and waits for the fixed
// acknowledgement line. A zero timeout uses DefaultHandshakeTimeout.
func (c *Serial) Handshake(timeout time.Duration) (string, error) {
	if timeout == 0 {
		timeout = DefaultHandshakeTimeout
	}

	if err := c.writeCommand(sweep.OpHandshake, ""); err != nil {
		return "", err
	}

	select {
	case line := <-c.ack:
		return line, nil
	case <-time.After(timeout):
		return "", fmt.Errorf("handshake timed out after %s", timeout)
	}
}

// SetSweepTime sets the duration of one full up+down sweep. The wire
// carries seconds.
func (c *Serial) SetSweepTime(d time.Duration) error {
	return c.writeCommand(sweep.OpSweepTime, strconv.FormatFloat(d.Seconds(), 'g', -1, 64))
}

// SetVoltageRange sets the sweep bounds in volts.
func (c *Serial) SetVoltageRange(low, high float64) error {
	if err := c.writeCommand(sweep.OpVLow, formatVolts(low)); err != nil {
		return err
	}
	return c.writeCommand(sweep.OpVHigh, formatVolts(high))
}

// SetScanCount sets the number of full up/down cycles per sweep.
func (c *Serial) SetScanCount(n int) error {
	return c.writeCommand(sweep.OpNumScans, strconv.Itoa(n))
}

// StartPause toggles the instrument between stepping and paused,
// starting a sweep if none is running.
func (c *Serial) StartPause() error {
	return c.writeCommand(sweep.OpStartPause, "")
}

// Stop aborts any active sweep.
func (c *Serial) Stop() error {
	return c.writeCommand(sweep.OpStop, "")
}

// writeCommand sends an opcode byte, followed by the delimited ASCII
// payload if one is given.
func (c *Serial) writeCommand(op byte, payload string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := c.conn.Write(encodeCommand(op, payload)); err != nil {
		return fmt.Errorf("failed to send command %d: %w", op, err)
	}
	return nil
}

// encodeCommand builds the wire form of a command: the opcode byte,
// then payload + delimiter when a payload is present.
func encodeCommand(op byte, payload string) []byte {
	buf := []byte{op}
	if payload != "" {
		buf = append(buf, payload...)
		buf = append(buf, sweep.PayloadDelim)
	}
	return buf
}

// formatVolts renders a voltage the way the instrument parses it.
func formatVolts(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SweepTimeForScanRate converts a scan rate in mV/s over the given
// bounds into the total up+down sweep duration.
func SweepTimeForScanRate(low, high, rateMilliVoltsPerSecond float64) time.Duration {
	rangeMilliVolts := (high - low) * 1000
	oneWayMs := math.Round(rangeMilliVolts / rateMilliVoltsPerSecond * 1000)
	return 2 * time.Duration(oneWayMs) * time.Millisecond
}

// readLines reads lines from the serial port, routing sample records,
// the completion marker, and handshake acknowledgements.
func (c *Serial) readLines() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLines: %v", r)
		}
	}()

	scanner := bufio.NewScanner(c.conn)
	for {
		select {
		case <-c.done:
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			c.handleLine(line)
		}
	}
}

func (c *Serial) handleLine(line string) {
	switch {
	case line == sweep.HandshakeAck:
		select {
		case c.ack <- line:
		default:
		}

	case strings.Contains(line, "DONE"):
		select {
		case c.sweepDone <- struct{}{}:
		default:
			// Completion marker repeats; one signal is enough.
		}

	default:
		record, err := parseRecord(line)
		if err != nil {
			// Lines that are neither records nor markers (boot noise,
			// error reports) are skipped.
			log.Printf("Skipping line '%s': %v", line, err)
			return
		}
		select {
		case c.records <- record:
		case <-c.done:
		default:
			log.Printf("Records channel full, dropping record")
		}
	}
}
