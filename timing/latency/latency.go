// Package latency provides the advisory timing model of the datapath.
//
// Latencies are configuration data. Pacing layers consume them to slow a
// demonstration down or to advance a virtual clock; the ALU and the
// register file never read them while computing.
package latency

import "time"

// Kind identifies a datapath step that carries a latency.
type Kind uint8

// Step kinds.
const (
	KindRead Kind = iota
	KindWrite
	KindExecute
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindExecute:
		return "execute"
	default:
		return "unknown"
	}
}

// Table provides latency lookups by step kind.
type Table struct {
	config *TimingConfig
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the latency in seconds for the given step kind.
func (t *Table) GetLatency(kind Kind) float64 {
	switch kind {
	case KindRead:
		return t.config.RegReadLatency
	case KindWrite:
		return t.config.RegWriteLatency
	case KindExecute:
		return t.config.ALULatency
	default:
		return 0
	}
}

// Duration converts a latency in seconds to a time.Duration.
func Duration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
