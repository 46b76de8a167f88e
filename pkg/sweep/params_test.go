package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/config"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	assert.Equal(t, 20.0, p.SweepTime)
	assert.Equal(t, -1.0, p.VLow)
	assert.Equal(t, 0.6, p.VHigh)
	assert.Equal(t, 1, p.NumScans)
	require.NoError(t, p.Validate())
}

func TestParams_CompensatedBounds(t *testing.T) {
	var p Params

	p.SetVLow(-1.0)
	assert.Equal(t, -1.0, p.VLow)
	assert.Equal(t, 0.0, p.CompLow)

	p.SetVHigh(0.6)
	assert.Equal(t, 0.6, p.VHigh)
	assert.InDelta(t, 1.6, p.CompHigh, 1e-12)

	// Compensated values follow every raw mutation.
	p.SetVLow(-0.5)
	assert.InDelta(t, 0.5, p.CompLow, 1e-12)
}

func TestParams_Validate(t *testing.T) {
	valid := func() Params {
		var p Params
		p.SetSweepTime(20)
		p.SetVLow(-1.0)
		p.SetVHigh(0.6)
		p.SetNumScans(1)
		return p
	}

	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
	}{
		{"valid", func(p *Params) {}, nil},
		{"inverted bounds", func(p *Params) { p.SetVLow(0.6); p.SetVHigh(-1.0) }, ErrInvalidBounds},
		{"equal bounds", func(p *Params) { p.SetVLow(0.5); p.SetVHigh(0.5) }, ErrInvalidBounds},
		{"sub-code range", func(p *Params) { p.SetVLow(0.5); p.SetVHigh(0.5 + 1e-6) }, ErrInvalidBounds},
		{"zero scans", func(p *Params) { p.SetNumScans(0) }, nil},
		{"negative sweep time", func(p *Params) { p.SetSweepTime(-1) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.name == "valid" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParamsFromConfig(t *testing.T) {
	p := ParamsFromConfig(config.SweepConfig{
		TimeSeconds: 10,
		VoltageLow:  -0.5,
		VoltageHigh: 1.0,
		NumScans:    3,
	})

	assert.Equal(t, 10.0, p.SweepTime)
	assert.Equal(t, -0.5, p.VLow)
	assert.Equal(t, 1.0, p.VHigh)
	assert.Equal(t, 3, p.NumScans)
	assert.InDelta(t, 0.5, p.CompLow, 1e-12)
	assert.InDelta(t, 2.0, p.CompHigh, 1e-12)
	require.NoError(t, p.Validate())
}
