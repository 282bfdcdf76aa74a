// Package core provides the datapath orchestrator.
// It composes an ALU and a register file, serializes every call and
// hands the advisory latency of each step to a pacer.
package core

import (
	"context"
	"fmt"
	"sync"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sarchlab/dp8sim/emu"
	"github.com/sarchlab/dp8sim/insts"
	"github.com/sarchlab/dp8sim/timing/latency"
	"github.com/sarchlab/dp8sim/timing/pacing"
)

// Stats holds operation counts for the core.
type Stats struct {
	// Reads counts read operations; a pair read counts once.
	Reads uint64
	// Writes counts accepted writes, including ignored ones.
	Writes uint64
	// IgnoredWrites counts writes discarded by the zero register.
	IgnoredWrites uint64
	// Executions counts ALU executions.
	Executions uint64
	// AdvisorySeconds is the sum of all latencies handed to the pacer.
	AdvisorySeconds float64
}

// Instr is a register-level operation: read two sources, execute and
// optionally write the result back.
type Instr struct {
	Op        insts.Op
	SrcA      uint8
	SrcB      uint8
	Dest      uint8
	WriteBack bool
}

func (in Instr) String() string {
	if !in.WriteBack {
		return fmt.Sprintf("%v r%d, r%d", in.Op, in.SrcA, in.SrcB)
	}
	return fmt.Sprintf("%v r%d, r%d -> r%d", in.Op, in.SrcA, in.SrcB, in.Dest)
}

// Core is the datapath: one ALU, one register file and a pacer.
// All methods are safe for concurrent use; calls run one at a time.
// The ALU and register file are never handed out.
type Core struct {
	mu sync.Mutex

	cfg     *Config
	alu     *emu.ALU
	regFile *emu.RegFile
	table   *latency.Table

	pacer  pacing.Pacer
	logger *tlog.Logger

	stats Stats
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithPacer sets the pacer. The default is pacing.Nop.
func WithPacer(p pacing.Pacer) Option {
	return func(c *Core) {
		c.pacer = p
	}
}

// WithLogger sets the logger used by the core and its register file.
func WithLogger(l *tlog.Logger) Option {
	return func(c *Core) {
		c.logger = l
	}
}

// New creates a Core from cfg.
func New(cfg *Config, opts ...Option) (*Core, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}

	c := &Core{
		cfg:   cfg.Clone(),
		table: latency.NewTableWithConfig(cfg.Timing.Clone()),
		pacer: pacing.Nop{},
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error

	c.alu, err = emu.NewALU(emu.ALUConfig{
		Latency: c.table.GetLatency(latency.KindExecute),
	})
	if err != nil {
		return nil, errors.Wrap(err, "alu setup")
	}

	c.regFile, err = emu.NewRegFile(emu.RegFileConfig{
		Size:         cfg.RegCount,
		ReserveZero:  cfg.ZeroRegister,
		ReadLatency:  c.table.GetLatency(latency.KindRead),
		WriteLatency: c.table.GetLatency(latency.KindWrite),
		Logger:       c.logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "register file setup")
	}

	c.logf("core created", "regs", cfg.RegCount, "zero_reg", cfg.ZeroRegister,
		"alu_latency", c.alu.Latency(), "read_latency", c.regFile.ReadLatency(), "write_latency", c.regFile.WriteLatency())

	return c, nil
}

// Config returns a copy of the machine configuration the core was built from.
func (c *Core) Config() *Config {
	return c.cfg.Clone()
}

// Last returns the most recent ALU result.
func (c *Core) Last() emu.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.alu.Last()
}

// Stats returns operation counts.
func (c *Core) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// Write stores value into register addr.
func (c *Core) Write(ctx context.Context, addr, value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.write(ctx, addr, value)
}

// Read returns register addr.
func (c *Core) Read(ctx context.Context, addr uint8) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.regFile.Read(addr)
	if err != nil {
		return 0, err
	}

	c.stats.Reads++

	return v, c.pace(ctx, latency.KindRead, c.regFile.ReadLatency(), fmt.Sprintf("r%d", addr))
}

// ReadPair returns registers a and b, paying the read latency once.
func (c *Core) ReadPair(ctx context.Context, a, b uint8) (uint8, uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.readPair(ctx, a, b)
}

// Execute runs op on immediate operands.
func (c *Core) Execute(ctx context.Context, a, b uint8, op insts.Op) (emu.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.execute(ctx, a, b, op)
}

// Step reads the two sources, executes and, if requested, writes the
// result to Dest. Nothing is read or executed when Dest is out of range.
func (c *Core) Step(ctx context.Context, in Instr) (emu.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if in.WriteBack && int(in.Dest) >= int(c.regFile.Size()) {
		return emu.Result{}, emu.AddressOutOfRangeError{Addr: in.Dest, Size: c.regFile.Size()}
	}
	if !in.Op.Valid() {
		return emu.Result{}, insts.ErrInvalidOpcode
	}

	a, b, err := c.readPair(ctx, in.SrcA, in.SrcB)
	if err != nil {
		return emu.Result{}, err
	}

	r, err := c.execute(ctx, a, b, in.Op)
	if err != nil {
		return emu.Result{}, err
	}

	if in.WriteBack {
		if err := c.write(ctx, in.Dest, r.Value); err != nil {
			return r, err
		}
	}

	tlog.V("core").Printw("step", "instr", in.String(), "a", a, "b", b, "result", r.Value, "flags", r.Flags.String())

	return r, nil
}

// Clear resets all registers to zero.
func (c *Core) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.regFile.Clear(); err != nil {
		return err
	}

	c.logf("registers cleared")

	return nil
}

// Dump returns all registers in index order.
func (c *Core) Dump() ([]emu.Cell, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.regFile.Dump()
}

func (c *Core) write(ctx context.Context, addr, value uint8) error {
	if err := c.regFile.Write(addr, value); err != nil {
		return err
	}

	c.stats.Writes++
	if c.regFile.Reserved(addr) {
		c.stats.IgnoredWrites++
	}

	return c.pace(ctx, latency.KindWrite, c.regFile.WriteLatency(), fmt.Sprintf("r%d", addr))
}

func (c *Core) readPair(ctx context.Context, a, b uint8) (uint8, uint8, error) {
	va, vb, err := c.regFile.ReadPair(a, b)
	if err != nil {
		return 0, 0, err
	}

	c.stats.Reads++

	return va, vb, c.pace(ctx, latency.KindRead, c.regFile.ReadLatency(), fmt.Sprintf("r%d,r%d", a, b))
}

func (c *Core) execute(ctx context.Context, a, b uint8, op insts.Op) (emu.Result, error) {
	r, err := c.alu.Execute(a, b, op)
	if err != nil {
		return emu.Result{}, err
	}

	c.stats.Executions++

	return r, c.pace(ctx, latency.KindExecute, c.alu.Latency(), op.String())
}

func (c *Core) pace(ctx context.Context, kind latency.Kind, seconds float64, detail string) error {
	c.stats.AdvisorySeconds += seconds

	return c.pacer.Pace(ctx, pacing.Step{Kind: kind, Seconds: seconds, Detail: detail})
}

func (c *Core) logf(msg string, kvs ...interface{}) {
	if c.logger != nil {
		c.logger.Printw(msg, kvs...)
		return
	}
	tlog.V("core").Printw(msg, kvs...)
}
