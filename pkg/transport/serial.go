package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

const (
	// pollTimeout bounds the peek performed by Available. Keeping it
	// short keeps the dispatcher's quiescent loop responsive.
	pollTimeout = time.Millisecond

	// tokenTimeout bounds how long ReadToken waits for the delimiter of
	// a command payload. Hosts send opcode and payload back to back, so
	// hitting this means the token is truncated, not slow.
	tokenTimeout = 100 * time.Millisecond

	lineEnding = "\r\n"
)

// Serial is a Transport over a physical serial port.
type Serial struct {
	portName string
	baudRate int

	port serial.Port

	// One byte of lookahead so Available can peek without losing data.
	pending     bool
	pendingByte byte
}

var _ Transport = (*Serial)(nil)

// OpenSerial opens the named serial port at the fixed instrument baud
// rate and returns it as a Transport.
func OpenSerial(portName string) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &Serial{
		portName: portName,
		baudRate: BaudRate,
		port:     port,
	}, nil
}

// Ports returns the names of the serial ports present on the system.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Close closes the underlying port.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

// Available reports whether an inbound byte is pending. It performs a
// bounded single-byte read and stashes the result for ReadByte.
func (s *Serial) Available() bool {
	if s.pending {
		return true
	}

	if err := s.port.SetReadTimeout(pollTimeout); err != nil {
		return false
	}

	var buf [1]byte
	n, err := s.port.Read(buf[:])
	if err != nil || n == 0 {
		return false
	}

	s.pendingByte = buf[0]
	s.pending = true
	return true
}

// ReadByte consumes the next inbound byte. Returns ErrNoData if nothing
// arrives within the poll timeout.
func (s *Serial) ReadByte() (byte, error) {
	if s.pending {
		s.pending = false
		return s.pendingByte, nil
	}

	if err := s.port.SetReadTimeout(pollTimeout); err != nil {
		return 0, fmt.Errorf("failed to set read timeout: %w", err)
	}

	var buf [1]byte
	n, err := s.port.Read(buf[:])
	if err != nil {
		return 0, fmt.Errorf("failed to read from serial port: %w", err)
	}
	if n == 0 {
		return 0, ErrNoData
	}
	return buf[0], nil
}

// ReadToken accumulates bytes until delim, consuming it. If the link
// goes quiet before the delimiter arrives, the partial token collected
// so far is returned.
func (s *Serial) ReadToken(delim byte) (string, error) {
	if err := s.port.SetReadTimeout(tokenTimeout); err != nil {
		return "", fmt.Errorf("failed to set read timeout: %w", err)
	}

	var token []byte
	if s.pending {
		s.pending = false
		if s.pendingByte == delim {
			return "", nil
		}
		token = append(token, s.pendingByte)
	}

	var buf [1]byte
	for {
		n, err := s.port.Read(buf[:])
		if err != nil {
			return string(token), fmt.Errorf("failed to read from serial port: %w", err)
		}
		if n == 0 {
			// Timed out waiting for the delimiter.
			return string(token), nil
		}
		if buf[0] == delim {
			return string(token), nil
		}
		token = append(token, buf[0])
	}
}

// WriteReady reports whether the port can accept output. An open serial
// port is always writable; backpressure is absorbed by the OS buffer.
func (s *Serial) WriteReady() bool {
	return s.port != nil
}

// WriteLine writes s with the instrument's line ending.
func (s *Serial) WriteLine(line string) error {
	if s.port == nil {
		return fmt.Errorf("serial port %s is closed", s.portName)
	}
	if _, err := s.port.Write([]byte(line + lineEnding)); err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	return nil
}
