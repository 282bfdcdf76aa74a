package latency

import (
	"encoding/json"
	"math"
	"os"

	"tlog.app/go/errors"
)

// TimingConfig holds the advisory latencies of the datapath, in seconds.
// They pace presentation only and never affect results.
type TimingConfig struct {
	// ALULatency is the delay of one ALU execution. Default: 0.8s.
	ALULatency float64 `json:"alu_latency"`

	// RegReadLatency is the delay of one register read, single or pair.
	// Default: 0.3s.
	RegReadLatency float64 `json:"reg_read_latency"`

	// RegWriteLatency is the delay of one register write. Default: 0.4s.
	RegWriteLatency float64 `json:"reg_write_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the demonstration defaults.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:      0.8,
		RegReadLatency:  0.3,
		RegWriteLatency: 0.4,
	}
}

// ZeroTimingConfig returns a TimingConfig with every latency at zero,
// suitable for batch runs.
func ZeroTimingConfig() *TimingConfig {
	return &TimingConfig{}
}

// LoadConfig loads a TimingConfig from a JSON file. Missing fields keep
// their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read timing config file")
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "parse timing config")
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "serialize timing config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write timing config file")
	}

	return nil
}

// Validate checks that all latency values are finite and >= 0.
func (c *TimingConfig) Validate() error {
	if !valid(c.ALULatency) {
		return errors.New("alu_latency must be >= 0, got %v", c.ALULatency)
	}
	if !valid(c.RegReadLatency) {
		return errors.New("reg_read_latency must be >= 0, got %v", c.RegReadLatency)
	}
	if !valid(c.RegWriteLatency) {
		return errors.New("reg_write_latency must be >= 0, got %v", c.RegWriteLatency)
	}
	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	return &TimingConfig{
		ALULatency:      c.ALULatency,
		RegReadLatency:  c.RegReadLatency,
		RegWriteLatency: c.RegWriteLatency,
	}
}

func valid(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
