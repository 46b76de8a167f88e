package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, float64(20), cfg.Sweep.TimeSeconds)
	assert.Equal(t, float64(-1.0), cfg.Sweep.VoltageLow)
	assert.Equal(t, float64(0.6), cfg.Sweep.VoltageHigh)
	assert.Equal(t, 1, cfg.Sweep.NumScans)
	assert.Equal(t, float64(0.25), cfg.Sim.PeakVoltage)
	assert.Equal(t, float64(2048), cfg.Sim.BaselineCode)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "COM7"

sweep:
  time_seconds: 10
  voltage_low: -0.5
  voltage_high: 1.0
  num_scans: 3

sim:
  noise_level: 0
  peak_voltage: 0.3
  peak_width: 0.05
  peak_height: 250
  baseline_code: 1800
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "COM7", cfg.Serial.Port)
	assert.Equal(t, float64(10), cfg.Sweep.TimeSeconds)
	assert.Equal(t, float64(-0.5), cfg.Sweep.VoltageLow)
	assert.Equal(t, float64(1.0), cfg.Sweep.VoltageHigh)
	assert.Equal(t, 3, cfg.Sweep.NumScans)
	assert.Equal(t, float64(0.3), cfg.Sim.PeakVoltage)
	assert.Equal(t, float64(0.05), cfg.Sim.PeakWidth)
	assert.Equal(t, float64(250), cfg.Sim.PeakHeight)
	assert.Equal(t, float64(1800), cfg.Sim.BaselineCode)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB1"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, float64(20), cfg.Sweep.TimeSeconds)    // default
	assert.Equal(t, float64(-1.0), cfg.Sweep.VoltageLow)   // default
	assert.Equal(t, float64(2048), cfg.Sim.BaselineCode)   // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Sweep.NumScans = 5

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 5, loaded.Sweep.NumScans)
}
