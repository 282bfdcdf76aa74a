// Package emu provides the functional model of the 8-bit datapath.
package emu

import (
	"tlog.app/go/tlog"
)

// RegFileConfig holds the register file creation parameters.
type RegFileConfig struct {
	// Size is the number of 8-bit cells, r0..r(Size-1).
	Size uint8

	// ReserveZero hard-wires r0 to zero. Writes to r0 are accepted and
	// discarded with a notice.
	ReserveZero bool

	// ReadLatency and WriteLatency are advisory delays in seconds.
	ReadLatency  float64
	WriteLatency float64

	// Logger receives diagnostic notices. Nil uses the default logger.
	Logger *tlog.Logger
}

// Cell is one register in a dump.
type Cell struct {
	Index uint8 `json:"index"`
	Value uint8 `json:"value"`
}

// RegFileSetup is a register file that has not been created yet.
// Create may succeed only once per setup value.
type RegFileSetup struct {
	done bool
}

// Create consumes the setup and returns a register file with every cell
// set to zero.
func (s *RegFileSetup) Create(cfg RegFileConfig) (*RegFile, error) {
	if s.done {
		return nil, ErrAlreadyCreated
	}
	if cfg.Size == 0 {
		return nil, ErrInvalidSize
	}
	if !validLatency(cfg.ReadLatency) || !validLatency(cfg.WriteLatency) {
		return nil, ErrInvalidLatency
	}

	s.done = true

	return &RegFile{
		created:      true,
		regs:         make([]uint8, cfg.Size),
		reserveZero:  cfg.ReserveZero,
		readLatency:  cfg.ReadLatency,
		writeLatency: cfg.WriteLatency,
		logger:       cfg.Logger,
	}, nil
}

// NewRegFile creates a register file in one step.
func NewRegFile(cfg RegFileConfig) (*RegFile, error) {
	return new(RegFileSetup).Create(cfg)
}

// RegFile is a fixed-size bank of 8-bit registers.
// When ReserveZero is set, r0 always reads as 0 (like XZR).
// The zero value and a nil *RegFile are uncreated: operations return
// ErrNotCreated and accessors return zero values.
type RegFile struct {
	created     bool
	regs        []uint8
	reserveZero bool

	readLatency  float64
	writeLatency float64

	logger *tlog.Logger
}

// Write stores value into addr. Writes to a reserved r0 are ignored.
func (r *RegFile) Write(addr, value uint8) error {
	if err := r.check(addr); err != nil {
		return err
	}

	if r.Reserved(addr) {
		r.notice("write ignored: zero register", "addr", addr, "value", value)
		return nil
	}

	r.regs[addr] = value

	return nil
}

// Read returns the value of addr.
func (r *RegFile) Read(addr uint8) (uint8, error) {
	if err := r.check(addr); err != nil {
		return 0, err
	}

	return r.load(addr), nil
}

// ReadPair returns the values of two registers. Both addresses are
// validated before either is read.
func (r *RegFile) ReadPair(addrA, addrB uint8) (uint8, uint8, error) {
	if err := r.check(addrA); err != nil {
		return 0, 0, err
	}
	if err := r.check(addrB); err != nil {
		return 0, 0, err
	}

	return r.load(addrA), r.load(addrB), nil
}

// Clear resets every non-reserved register to zero.
func (r *RegFile) Clear() error {
	if !r.Created() {
		return ErrNotCreated
	}

	for i := range r.regs {
		if r.Reserved(uint8(i)) {
			continue
		}
		r.regs[i] = 0
	}

	return nil
}

// Dump returns all registers in index order.
func (r *RegFile) Dump() ([]Cell, error) {
	if !r.Created() {
		return nil, ErrNotCreated
	}

	cells := make([]Cell, len(r.regs))
	for i := range r.regs {
		cells[i] = Cell{Index: uint8(i), Value: r.load(uint8(i))}
	}

	return cells, nil
}

// Reserved reports whether addr is the hard-wired zero register.
func (r *RegFile) Reserved(addr uint8) bool {
	return r != nil && r.reserveZero && addr == 0
}

// Created reports whether the register file came from a successful setup.
func (r *RegFile) Created() bool {
	return r != nil && r.created
}

// Size returns the number of registers.
func (r *RegFile) Size() uint8 {
	if r == nil {
		return 0
	}
	return uint8(len(r.regs))
}

// ReserveZero reports whether r0 is hard-wired to zero.
func (r *RegFile) ReserveZero() bool {
	return r != nil && r.reserveZero
}

// ReadLatency returns the advisory read latency in seconds.
func (r *RegFile) ReadLatency() float64 {
	if r == nil {
		return 0
	}
	return r.readLatency
}

// WriteLatency returns the advisory write latency in seconds.
func (r *RegFile) WriteLatency() float64 {
	if r == nil {
		return 0
	}
	return r.writeLatency
}

func (r *RegFile) check(addr uint8) error {
	if !r.Created() {
		return ErrNotCreated
	}
	if int(addr) >= len(r.regs) {
		return AddressOutOfRangeError{Addr: addr, Size: uint8(len(r.regs))}
	}
	return nil
}

func (r *RegFile) load(addr uint8) uint8 {
	if r.Reserved(addr) {
		return 0
	}
	return r.regs[addr]
}

func (r *RegFile) notice(msg string, kvs ...interface{}) {
	if r.logger != nil {
		r.logger.Printw(msg, kvs...)
		return
	}
	tlog.Printw(msg, kvs...)
}
