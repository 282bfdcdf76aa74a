// Package main provides the dp8sim command line.
// dp8sim drives the 8-bit datapath model from scripts and the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/k0kubun/pp/v3"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sarchlab/dp8sim/benchmarks"
	"github.com/sarchlab/dp8sim/insts"
	"github.com/sarchlab/dp8sim/script"
	"github.com/sarchlab/dp8sim/timing/core"
	"github.com/sarchlab/dp8sim/timing/latency"
	"github.com/sarchlab/dp8sim/timing/pacing"
	"github.com/sarchlab/dp8sim/translate"
)

func main() {
	demoCmd := &cli.Command{
		Name:        "demo",
		Description: "run the built-in ALU, register and combined walkthrough",
		Action:      demoAct,
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "run starlark scripts against one datapath",
		Action:      runAct,
		Args:        cli.Args{},
	}

	execCmd := &cli.Command{
		Name:        "exec",
		Description: "execute one ALU operation: exec <a> <b> <op>",
		Action:      execAct,
		Args:        cli.Args{},
	}

	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "apply addr=value writes and print the register file",
		Action:      dumpAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("pretty", false, "pretty-print the register cells"),
		},
	}

	benchCmd := &cli.Command{
		Name:        "bench",
		Description: "run the register-level benchmark programs",
		Action:      benchAct,
		Flags: []*cli.Flag{
			cli.NewFlag("format", "text", "output format: text, csv or json"),
		},
	}

	configCmd := &cli.Command{
		Name:        "config",
		Description: "print the machine configuration as JSON",
		Action:      configAct,
		Flags: []*cli.Flag{
			cli.NewFlag("save", "", "also write the machine configuration to this file"),
			cli.NewFlag("save-timing", "", "also write the timing configuration to this file"),
		},
	}

	app := &cli.Command{
		Name:        "dp8sim",
		Description: "dp8sim models an 8-bit ALU and register file datapath",
		Flags: []*cli.Flag{
			cli.NewFlag("config,c", "", "machine configuration JSON file"),
			cli.NewFlag("timing", "", "timing configuration JSON file, overrides the machine's timing"),
			cli.NewFlag("pace", "none", "latency pacing: none, sleep or virtual"),
			cli.NewFlag("lang", "", "output language, e.g. en or ja"),
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics, e.g. core,pacing"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			demoCmd,
			runCmd,
			execCmd,
			dumpCmd,
			benchCmd,
			configCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func demoAct(c *cli.Command) error {
	ctx, cancel := setup(c)
	defer cancel()

	dp, vp, err := newCore(c)
	if err != nil {
		return err
	}

	_, err = script.NewRunner(dp).Exec(ctx, "demo.star", script.Demo)
	if err != nil {
		return err
	}

	report(dp, vp)

	return nil
}

func runAct(c *cli.Command) error {
	ctx, cancel := setup(c)
	defer cancel()

	if len(c.Args) == 0 {
		return errors.New("no script given")
	}

	dp, vp, err := newCore(c)
	if err != nil {
		return err
	}

	r := script.NewRunner(dp)

	for _, a := range c.Args {
		if _, err := r.RunFile(ctx, a); err != nil {
			return err
		}
	}

	report(dp, vp)

	return nil
}

func execAct(c *cli.Command) error {
	ctx, cancel := setup(c)
	defer cancel()

	if len(c.Args) != 3 {
		return errors.New("usage: exec <a> <b> <op>")
	}

	a, err := parseByte(c.Args[0])
	if err != nil {
		return errors.Wrap(err, "operand a")
	}

	b, err := parseByte(c.Args[1])
	if err != nil {
		return errors.Wrap(err, "operand b")
	}

	op, err := parseOp(c.Args[2])
	if err != nil {
		return err
	}

	dp, _, err := newCore(c)
	if err != nil {
		return err
	}

	r, err := dp.Execute(ctx, a, b, op)
	if err != nil {
		return err
	}

	fmt.Printf("%v(%d, %d) = %d (0x%02x)  %v\n", op, a, b, r.Value, r.Value, r.Flags)

	return nil
}

func dumpAct(c *cli.Command) error {
	ctx, cancel := setup(c)
	defer cancel()

	dp, _, err := newCore(c)
	if err != nil {
		return err
	}

	for _, a := range c.Args {
		addr, value, err := parseAssign(a)
		if err != nil {
			return err
		}

		if err := dp.Write(ctx, addr, value); err != nil {
			return err
		}
	}

	cells, err := dp.Dump()
	if err != nil {
		return err
	}

	if c.Bool("pretty") {
		_, err = pp.Println(cells)
		return err
	}

	for _, cell := range cells {
		fmt.Printf("r%d = %d (0x%02x)\n", cell.Index, cell.Value, cell.Value)
	}

	return nil
}

func benchAct(c *cli.Command) error {
	ctx, cancel := setup(c)
	defer cancel()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	return runBench(ctx, os.Stdout, cfg, benchmarks.GetMicrobenchmarks(), c.String("format"))
}

// runBench runs benches on cfg and writes the results to w in format.
// It fails if any benchmark did not pass.
func runBench(ctx context.Context, w io.Writer, cfg *core.Config, benches []benchmarks.Benchmark, format string) error {
	switch format {
	case "text", "csv", "json":
	default:
		return errors.New("unknown format %q", format)
	}

	hc := benchmarks.DefaultConfig()
	hc.Core = cfg
	hc.Output = w

	h := benchmarks.NewHarness(hc)
	h.AddBenchmarks(benches)

	results, err := h.RunAll(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		h.PrintResults(results)
	case "csv":
		h.PrintCSV(results)
	case "json":
		if err := h.WriteJSON(results); err != nil {
			return err
		}
	}

	for _, r := range results {
		if !r.Passed {
			return errors.New("benchmark %v failed", r.Name)
		}
	}

	return nil
}

func configAct(c *cli.Command) error {
	_, cancel := setup(c)
	defer cancel()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if path := c.String("save"); path != "" {
		if err := cfg.SaveConfig(path); err != nil {
			return err
		}
	}

	if path := c.String("save-timing"); path != "" {
		if err := cfg.Timing.SaveConfig(path); err != nil {
			return err
		}
	}

	return writeConfig(os.Stdout, cfg)
}

func writeConfig(w io.Writer, cfg *core.Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(cfg)
}

// setup applies the global flags and returns a context cancelled on interrupt.
func setup(c *cli.Command) (context.Context, context.CancelFunc) {
	tlog.DefaultLogger = tlog.New(tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags))
	tlog.SetVerbosity(c.String("verbosity"))

	if lang := c.String("lang"); lang != "" {
		tag := translate.SetLanguage(lang)
		tlog.V("lang").Printw("language", "tag", tag.String())
	}

	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func loadConfig(c *cli.Command) (*core.Config, error) {
	return machineConfig(c.String("config"), c.String("timing"))
}

// machineConfig loads the machine from configPath, or the default machine
// when it is empty. A non-empty timingPath replaces the machine's timing.
func machineConfig(configPath, timingPath string) (cfg *core.Config, err error) {
	cfg = core.DefaultConfig()

	if configPath != "" {
		cfg, err = core.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	}

	if timingPath != "" {
		cfg.Timing, err = latency.LoadConfig(timingPath)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}

	return cfg, nil
}

func newCore(c *cli.Command) (*core.Core, *pacing.VirtualPacer, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	pacer, vp, err := newPacer(c.String("pace"))
	if err != nil {
		return nil, nil, err
	}

	dp, err := core.New(cfg, core.WithPacer(pacer))
	if err != nil {
		return nil, nil, err
	}

	return dp, vp, nil
}

// newPacer returns the pacer for name. vp is set only for "virtual".
func newPacer(name string) (p pacing.Pacer, vp *pacing.VirtualPacer, err error) {
	switch name {
	case "", "none":
		return pacing.Nop{}, nil, nil
	case "sleep":
		return pacing.Sleep{}, nil, nil
	case "virtual":
		vp = pacing.NewVirtualPacer()
		return vp, vp, nil
	default:
		return nil, nil, errors.New("unknown pacer %q", name)
	}
}

func report(dp *core.Core, vp *pacing.VirtualPacer) {
	s := dp.Stats()

	tlog.Printw("done", "reads", s.Reads, "writes", s.Writes, "ignored_writes", s.IgnoredWrites,
		"executions", s.Executions, "advisory_s", s.AdvisorySeconds)

	if vp != nil {
		tlog.Printw("virtual clock", "now_s", vp.Now(), "steps", len(vp.Trace()))
	}
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}

	return uint8(v), nil
}

// parseOp accepts a mnemonic or a numeric opcode.
func parseOp(s string) (insts.Op, error) {
	if n, err := strconv.ParseUint(s, 0, 8); err == nil {
		inst, err := insts.NewDecoder().Decode(uint8(n))
		return inst.Op, err
	}

	return insts.ParseOp(s)
}

// parseAssign parses "addr=value", with an optional r prefix on addr.
func parseAssign(s string) (addr, value uint8, err error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, errors.New("expected addr=value, got %q", s)
	}

	addr, err = parseByte(strings.TrimPrefix(strings.TrimSpace(k), "r"))
	if err != nil {
		return 0, 0, errors.Wrap(err, "address in %q", s)
	}

	value, err = parseByte(strings.TrimSpace(v))
	if err != nil {
		return 0, 0, errors.Wrap(err, "value in %q", s)
	}

	return addr, value, nil
}
