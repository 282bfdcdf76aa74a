package core

import (
	"encoding/json"
	"os"

	"tlog.app/go/errors"

	"github.com/sarchlab/dp8sim/timing/latency"
)

// Config describes a datapath instance.
type Config struct {
	// RegCount is the number of registers. Default: 8.
	RegCount uint8 `json:"reg_count"`

	// ZeroRegister hard-wires r0 to zero. Default: true.
	ZeroRegister bool `json:"zero_register"`

	// Timing holds the advisory latencies.
	Timing *latency.TimingConfig `json:"timing"`
}

// DefaultConfig returns the demonstration machine: 8 registers, r0 wired
// to zero and the default latencies.
func DefaultConfig() *Config {
	return &Config{
		RegCount:     8,
		ZeroRegister: true,
		Timing:       latency.DefaultTimingConfig(),
	}
}

// LoadConfig loads a Config from a JSON file. Missing fields keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read machine config file")
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "parse machine config")
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "serialize machine config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write machine config file")
	}

	return nil
}

// Validate checks the register count and the timing values.
func (c *Config) Validate() error {
	if c.RegCount == 0 {
		return errors.New("reg_count must be > 0")
	}
	if c.Timing == nil {
		return errors.New("timing must be set")
	}
	if err := c.Timing.Validate(); err != nil {
		return errors.Wrap(err, "timing")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := &Config{
		RegCount:     c.RegCount,
		ZeroRegister: c.ZeroRegister,
	}
	if c.Timing != nil {
		clone.Timing = c.Timing.Clone()
	}
	return clone
}
