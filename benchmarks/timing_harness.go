// Package benchmarks runs register-level programs on the datapath and
// reports their advisory timing.
package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sarchlab/dp8sim/emu"
	"github.com/sarchlab/dp8sim/timing/core"
	"github.com/sarchlab/dp8sim/timing/pacing"
	"github.com/sarchlab/dp8sim/translate"
)

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark exercises
	Description string `json:"description"`

	// Steps is the number of program instructions executed
	Steps int `json:"steps"`

	// Reads, Writes and Executions count datapath operations of the program
	Reads      uint64 `json:"reads"`
	Writes     uint64 `json:"writes"`
	Executions uint64 `json:"executions"`

	// VirtualSeconds is the virtual time the program took, setup excluded
	VirtualSeconds float64 `json:"virtual_seconds"`

	// Registers is the register file after the program
	Registers []emu.Cell `json:"registers"`

	// Passed reports whether every expected register matched
	Passed bool `json:"passed"`

	// Mismatches describes each expected register that did not match
	Mismatches []string `json:"mismatches,omitempty"`

	// Error is set when the program stopped early
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the program
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single register-level program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark exercises
	Description string

	// Setup prepares the register file. It is not timed.
	Setup func(ctx context.Context, c *core.Core) error

	// Program is executed in order with core.Step
	Program []core.Instr

	// Expected maps register index to its value after the program
	Expected map[uint8]uint8
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Core is the machine each benchmark runs on. Nil uses core.DefaultConfig.
	Core *core.Config

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose logs every benchmark as it completes
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Core:   core.DefaultConfig(),
		Output: os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Core == nil {
		config.Core = core.DefaultConfig()
	}
	return &Harness{
		config: config,
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks, each on a fresh core, and returns
// results in order.
func (h *Harness) RunAll(ctx context.Context) ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		r, err := h.Run(ctx, bench)
		if err != nil {
			return results, errors.Wrap(err, "benchmark %v", bench.Name)
		}

		results = append(results, r)
	}

	return results, nil
}

// Run executes one benchmark on a fresh core paced by a VirtualPacer.
// Program failures are reported in the result; the returned error is for
// failures to build the core or to run the setup.
func (h *Harness) Run(ctx context.Context, bench Benchmark) (BenchmarkResult, error) {
	pacer := pacing.NewVirtualPacer()

	c, err := core.New(h.config.Core, core.WithPacer(pacer))
	if err != nil {
		return BenchmarkResult{}, err
	}

	if bench.Setup != nil {
		if err := bench.Setup(ctx, c); err != nil {
			return BenchmarkResult{}, errors.Wrap(err, "setup")
		}
	}

	pacer.Reset()
	before := c.Stats()

	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	start := time.Now()
	for _, in := range bench.Program {
		if _, err := c.Step(ctx, in); err != nil {
			result.Error = fmt.Sprintf("%v: %v", in, err)
			break
		}
		result.Steps++
	}
	result.WallTime = time.Since(start)

	after := c.Stats()
	result.Reads = after.Reads - before.Reads
	result.Writes = after.Writes - before.Writes
	result.Executions = after.Executions - before.Executions
	result.VirtualSeconds = pacer.Now()

	result.Registers, err = c.Dump()
	if err != nil {
		return result, err
	}

	result.Mismatches = mismatches(bench, result.Registers)
	result.Passed = result.Error == "" && len(result.Mismatches) == 0

	if h.config.Verbose {
		tlog.Printw("benchmark", "name", bench.Name, "steps", result.Steps,
			"virtual", result.VirtualSeconds, "passed", result.Passed)
	}

	return result, nil
}

func mismatches(bench Benchmark, regs []emu.Cell) []string {
	var out []string
	for _, a := range sortedAddrs(bench.Expected) {
		want := bench.Expected[a]
		if int(a) >= len(regs) {
			out = append(out, translate.From("invalid address r%d (size %d)", a, len(regs)))
			continue
		}
		if got := regs[a].Value; got != want {
			out = append(out, translate.From("benchmark %v: r%d = %d, want %d", bench.Name, a, got, want))
		}
	}

	return out
}

func sortedAddrs(m map[uint8]uint8) []uint8 {
	addrs := make([]uint8, 0, len(m))
	for a := range m {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	return addrs
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	w := h.config.Output

	for _, r := range results {
		status := translate.From("PASS")
		if !r.Passed {
			status = translate.From("FAIL")
		}

		_, _ = fmt.Fprintf(w, "[%s] %s\n", status,
			translate.From("%v: %d steps, %.1fs virtual, %v wall", r.Name, r.Steps, r.VirtualSeconds, r.WallTime))

		for _, m := range r.Mismatches {
			_, _ = fmt.Fprintf(w, "  %s\n", m)
		}
		if r.Error != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", r.Error)
		}
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "name,steps,reads,writes,executions,virtual_seconds,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%.3f,%t\n",
			r.Name,
			r.Steps,
			r.Reads,
			r.Writes,
			r.Executions,
			r.VirtualSeconds,
			r.Passed,
		)
	}
}

// WriteJSON outputs benchmark results as an indented JSON array.
func (h *Harness) WriteJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

// Preload returns a Setup that writes the given register values in
// address order.
func Preload(values map[uint8]uint8) func(ctx context.Context, c *core.Core) error {
	return func(ctx context.Context, c *core.Core) error {
		for _, a := range sortedAddrs(values) {
			if err := c.Write(ctx, a, values[a]); err != nil {
				return err
			}
		}

		return nil
	}
}
