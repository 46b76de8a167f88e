package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeForVoltage(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want uint16
	}{
		{"bottom rail", 0, 0},
		{"full scale", 5.0, 4095},
		{"mid scale", 2.5, 2048},
		{"compensated default high bound", 1.6, 1310},
		{"rounds to nearest", 1.0, 819},
		{"clamps below range", -0.5, 0},
		{"clamps above range", 6.0, 4095},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeForVoltage(tt.v))
		})
	}
}

func TestVoltageForCode_RoundTrip(t *testing.T) {
	for _, code := range []uint16{0, 1, 819, 1310, 2048, 4094, 4095} {
		v := VoltageForCode(code)
		assert.Equal(t, code, CodeForVoltage(v), "code %d should round-trip", code)
	}
}

func TestSim_MonitorTracksOutput(t *testing.T) {
	sim := NewSim(nil)

	for _, code := range []uint16{0, 100, 1310, 4095} {
		sim.SetOutput(code)
		got := sim.ReadSweepMonitor()
		assert.InDelta(t, float64(code), float64(got), 5, "monitor should track code %d", code)
	}
}

func TestSim_CurrentWithinRange(t *testing.T) {
	sim := NewSim(nil)

	for code := uint16(0); code < 4095; code += 17 {
		sim.SetOutput(code)
		got := sim.ReadCurrent()
		assert.LessOrEqual(t, got, uint16(MaxCode))
	}
}

func TestSim_PeakAboveBaseline(t *testing.T) {
	sim := NewSim(nil)

	// Far from the redox potential the response is near baseline.
	sim.SetOutput(CodeForVoltage(0)) // -1 V at the cell
	sim.SetOutput(CodeForVoltage(0.05))
	baseline := sim.ReadCurrent()

	// At the half-wave potential (+0.25 V cell, +1.25 V at the DAC) the
	// peak dominates.
	sim.SetOutput(CodeForVoltage(1.20))
	sim.SetOutput(CodeForVoltage(1.25))
	peak := sim.ReadCurrent()

	assert.Greater(t, peak, baseline)
	assert.InDelta(t, 400, float64(peak)-float64(baseline), 100)
}
