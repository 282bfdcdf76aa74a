// Package emu provides the functional model of the 8-bit datapath.
package emu

import (
	"math"

	"github.com/sarchlab/dp8sim/insts"
)

// ALUConfig holds the ALU setup parameters.
type ALUConfig struct {
	// Latency is the advisory execution delay in seconds. It is data for
	// pacing layers only and never changes a result.
	Latency float64
}

// Result is the outcome of one ALU execution.
type Result struct {
	Value uint8
	Flags Flags
}

// ALUSetup is an ALU that has not been configured yet.
// Configure may succeed only once per setup value.
type ALUSetup struct {
	done bool
}

// Configure consumes the setup and returns a ready ALU.
func (s *ALUSetup) Configure(cfg ALUConfig) (*ALU, error) {
	if s.done {
		return nil, ErrAlreadyConfigured
	}
	if !validLatency(cfg.Latency) {
		return nil, ErrInvalidLatency
	}

	s.done = true

	return &ALU{
		configured: true,
		latency:    cfg.Latency,
		decoder:    insts.NewDecoder(),
	}, nil
}

// NewALU creates and configures an ALU in one step.
func NewALU(cfg ALUConfig) (*ALU, error) {
	return new(ALUSetup).Configure(cfg)
}

// ALU implements the 8-bit arithmetic/logic unit.
//
// Arithmetic opcodes run through a single adder with optional inversion of
// B and a carry-in; logic opcodes always report NC. The zero value and a
// nil *ALU are unconfigured: Execute returns ErrNotConfigured and the
// accessors return zero values.
type ALU struct {
	configured bool
	latency    float64
	decoder    *insts.Decoder

	last Result
}

// Execute computes op over x and y. The result also replaces Last.
func (a *ALU) Execute(x, y uint8, op insts.Op) (Result, error) {
	if a == nil || !a.configured {
		return Result{}, ErrNotConfigured
	}

	inst, err := a.decoder.Decode(uint8(op))
	if err != nil {
		return Result{}, err
	}

	var r Result
	if inst.Logic {
		r = a.logic(x, y, inst.Op)
	} else {
		r = a.arith(x, y, inst)
	}

	a.last = r

	return r, nil
}

// arith models the adder: A + (InvertB ? ~B : B) + CarryIn, 9 bits wide.
func (a *ALU) arith(x, y uint8, inst insts.Instruction) Result {
	b := y
	if inst.InvertB {
		b = ^y
	}

	wide := uint16(x) + uint16(b) + uint16(inst.CarryIn)
	value := uint8(wide & 0xFF)
	carryOut := wide&0x100 != 0

	return Result{Value: value, Flags: deriveFlags(value, carryOut)}
}

func (a *ALU) logic(x, y uint8, op insts.Op) Result {
	var value uint8

	switch op {
	case insts.OpNOR:
		value = ^(x | y)
	case insts.OpAND:
		value = x & y
	case insts.OpXOR:
		value = x ^ y
	case insts.OpRSH:
		value = uint8((uint16(x|y) >> 1) & 0xFF)
	}

	return Result{Value: value, Flags: deriveFlags(value, false)}
}

// Last returns the most recent result. It is the zero Result until the
// first successful execution.
func (a *ALU) Last() Result {
	if a == nil {
		return Result{}
	}
	return a.last
}

// Latency returns the configured advisory latency in seconds.
func (a *ALU) Latency() float64 {
	if a == nil {
		return 0
	}
	return a.latency
}

// Configured reports whether the ALU came from a successful setup.
func (a *ALU) Configured() bool {
	return a != nil && a.configured
}

func validLatency(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
