package host

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/config"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/frontend"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/sweep"
)

// DefaultMockStepInterval paces the simulated sweep. Much faster than
// real hardware so development loops stay quick.
const DefaultMockStepInterval = 100 * time.Microsecond

// Mock simulates the voltammetry instrument for testing and
// development: it runs the same triangular code ramp against a
// simulated cell and streams records through the usual channels.
type Mock struct {
	fe       *frontend.Sim
	interval time.Duration

	records   chan Record
	sweepDone chan struct{}
	done      chan struct{}

	mu        sync.Mutex
	wg        sync.WaitGroup
	connected bool
	params    sweep.Params
	running   bool
	cont      bool
	stop      bool
}

// NewMock creates a mocked instrument. A nil config uses the default
// simulated cell; a zero interval uses DefaultMockStepInterval.
func NewMock(cfg *config.SimConfig, interval time.Duration) *Mock {
	if interval == 0 {
		interval = DefaultMockStepInterval
	}
	return &Mock{
		fe:        frontend.NewSim(cfg),
		interval:  interval,
		records:   make(chan Record, DefaultBufferSize),
		sweepDone: make(chan struct{}, 1),
		done:      make(chan struct{}),
		params:    sweep.DefaultParams(),
	}
}

// Connect simulates connecting to the instrument.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	m.connected = true
	return nil
}

// Close stops the mocked instrument.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	m.stop = true
	close(m.done)
	m.connected = false
	m.mu.Unlock()

	// Let an active sweep observe the stop before tearing down the
	// records channel.
	m.wg.Wait()

	m.mu.Lock()
	close(m.records)
	return nil
}

// Handshake returns the fixed acknowledgement immediately.
func (m *Mock) Handshake(time.Duration) (string, error) {
	if !m.IsConnected() {
		return "", fmt.Errorf("not connected")
	}
	return sweep.HandshakeAck, nil
}

// SetSweepTime sets the simulated sweep duration.
func (m *Mock) SetSweepTime(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.SetSweepTime(d.Seconds())
	return nil
}

// SetVoltageRange sets the simulated sweep bounds.
func (m *Mock) SetVoltageRange(low, high float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.SetVLow(low)
	m.params.SetVHigh(high)
	return nil
}

// SetScanCount sets the simulated scan count.
func (m *Mock) SetScanCount(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.SetNumScans(n)
	return nil
}

// StartPause toggles stepping, starting a simulated sweep if none runs.
func (m *Mock) StartPause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}

	m.cont = !m.cont
	if !m.running {
		if err := m.params.Validate(); err != nil {
			m.cont = false
			return err
		}
		m.running = true
		m.stop = false
		m.wg.Add(1)
		go func(p sweep.Params) {
			defer m.wg.Done()
			m.runSweep(p)
		}(m.params)
	}
	return nil
}

// Stop aborts the simulated sweep.
func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
	return nil
}

// Records returns the channel of simulated records.
func (m *Mock) Records() <-chan Record {
	return m.records
}

// SweepDone returns the completion signal channel.
func (m *Mock) SweepDone() <-chan struct{} {
	return m.sweepDone
}

// IsConnected returns whether the mock is connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// runSweep mirrors the instrument's triangular ramp against the
// simulated cell, paced by the mock interval instead of the configured
// sweep time.
func (m *Mock) runSweep(p sweep.Params) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.cont = false
		m.stop = false
		m.mu.Unlock()
	}()

	codeLow := frontend.CodeForVoltage(p.CompLow)
	codeHigh := frontend.CodeForVoltage(p.CompHigh)
	start := time.Now()

	for scan := 0; scan < p.NumScans; scan++ {
		for code := codeLow; code < codeHigh; code++ {
			if stopped := m.step(code, start); stopped {
				return
			}
		}
		for code := codeHigh; code > codeLow; code-- {
			if stopped := m.step(code, start); stopped {
				return
			}
		}
	}

	select {
	case m.sweepDone <- struct{}{}:
	default:
	}
}

func (m *Mock) step(code uint16, start time.Time) bool {
	for {
		m.mu.Lock()
		cont, stop := m.cont, m.stop
		m.mu.Unlock()
		if stop {
			return true
		}
		if cont {
			break
		}
		select {
		case <-m.done:
			return true
		case <-time.After(m.interval):
		}
	}

	m.fe.SetOutput(code)
	record := Record{
		Elapsed:    time.Since(start),
		SweepRaw:   m.fe.ReadSweepMonitor(),
		CurrentRaw: m.fe.ReadCurrent(),
	}

	select {
	case m.records <- record:
	case <-m.done:
		return true
	default:
		log.Printf("Records channel full, dropping record")
	}

	select {
	case <-m.done:
		return true
	case <-time.After(m.interval):
	}
	return false
}
