package transport

import (
	"bytes"
	"strings"
	"sync"
)

// Loopback is an in-memory Transport for tests and host-less runs. The
// test side queues inbound bytes with Push/PushString and collects the
// lines the core wrote with Lines.
type Loopback struct {
	mu         sync.Mutex
	in         bytes.Buffer
	out        []string
	writeReady bool
}

var _ Transport = (*Loopback)(nil)

// NewLoopback returns a Loopback that is ready for writing.
func NewLoopback() *Loopback {
	return &Loopback{writeReady: true}
}

// Push queues inbound bytes for the core to read.
func (l *Loopback) Push(b ...byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.in.Write(b)
}

// PushString queues an inbound string for the core to read.
func (l *Loopback) PushString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.in.WriteString(s)
}

// Lines returns a copy of the lines written by the core so far.
func (l *Loopback) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	lines := make([]string, len(l.out))
	copy(lines, l.out)
	return lines
}

// Reset discards all queued input and collected output.
func (l *Loopback) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.in.Reset()
	l.out = nil
}

// SetWriteReady controls what WriteReady reports, so tests can simulate
// a link that cannot accept output.
func (l *Loopback) SetWriteReady(ready bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeReady = ready
}

func (l *Loopback) Available() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.in.Len() > 0
}

func (l *Loopback) ReadByte() (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.in.Len() == 0 {
		return 0, ErrNoData
	}
	return l.in.ReadByte()
}

func (l *Loopback) ReadToken(delim byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	token, err := l.in.ReadString(delim)
	if err != nil {
		// Delimiter never arrived; hand back the partial token.
		return token, nil
	}
	return strings.TrimSuffix(token, string(delim)), nil
}

func (l *Loopback) WriteReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeReady
}

func (l *Loopback) WriteLine(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = append(l.out, line)
	return nil
}
