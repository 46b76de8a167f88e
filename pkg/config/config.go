package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the instrument configuration.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Sweep  SweepConfig  `yaml:"sweep"`
	Sim    SimConfig    `yaml:"sim"`
}

// SerialConfig contains serial port configuration. The baud rate is a
// fixed protocol constant and deliberately not configurable here.
type SerialConfig struct {
	Port string `yaml:"port"`
}

// SweepConfig contains the power-on sweep parameters. The host normally
// overwrites these over the wire before starting a sweep.
type SweepConfig struct {
	TimeSeconds float64 `yaml:"time_seconds"` // Duration of one full up+down sweep
	VoltageLow  float64 `yaml:"voltage_low"`  // Lower bound of the triangle wave (V)
	VoltageHigh float64 `yaml:"voltage_high"` // Upper bound of the triangle wave (V)
	NumScans    int     `yaml:"num_scans"`    // Full up/down cycles per sweep
}

// SimConfig tunes the simulated electrochemical cell.
type SimConfig struct {
	NoiseLevel   float64 `yaml:"noise_level"`   // Reading noise amplitude in ADC counts
	PeakVoltage  float64 `yaml:"peak_voltage"`  // Half-wave potential of the simulated redox couple (V)
	PeakWidth    float64 `yaml:"peak_width"`    // Width of the simulated current peak (V)
	PeakHeight   float64 `yaml:"peak_height"`   // Peak height above baseline in ADC counts
	BaselineCode float64 `yaml:"baseline_code"` // Zero-current output of the transimpedance stage in ADC counts
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
		},
		Sweep: SweepConfig{
			TimeSeconds: 20,
			VoltageLow:  -1.0,
			VoltageHigh: 0.6,
			NumScans:    1,
		},
		Sim: SimConfig{
			NoiseLevel:   2,
			PeakVoltage:  0.25,
			PeakWidth:    0.1,
			PeakHeight:   400,
			BaselineCode: 2048, // TIA output rests at mid-scale (2.5 V)
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}

	if c.Sweep.TimeSeconds == 0 {
		c.Sweep.TimeSeconds = def.Sweep.TimeSeconds
	}
	if c.Sweep.VoltageLow == 0 && c.Sweep.VoltageHigh == 0 {
		c.Sweep.VoltageLow = def.Sweep.VoltageLow
		c.Sweep.VoltageHigh = def.Sweep.VoltageHigh
	}
	if c.Sweep.NumScans == 0 {
		c.Sweep.NumScans = def.Sweep.NumScans
	}

	if c.Sim.PeakWidth == 0 {
		c.Sim.PeakWidth = def.Sim.PeakWidth
	}
	if c.Sim.PeakHeight == 0 {
		c.Sim.PeakHeight = def.Sim.PeakHeight
	}
	if c.Sim.BaselineCode == 0 {
		c.Sim.BaselineCode = def.Sim.BaselineCode
	}
}
