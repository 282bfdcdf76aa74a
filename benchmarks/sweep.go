package benchmarks

import (
	"github.com/sarchlab/dp8sim/emu"
	"github.com/sarchlab/dp8sim/insts"
)

// Sweep executes op on every operand pair (a, b) in row-major order and
// calls fn with each result. It stops at the first non-nil error from
// fn or from the ALU.
func Sweep(alu *emu.ALU, op insts.Op, fn func(a, b uint8, r emu.Result) error) error {
	for a := 0; a <= 0xFF; a++ {
		for b := 0; b <= 0xFF; b++ {
			r, err := alu.Execute(uint8(a), uint8(b), op)
			if err != nil {
				return err
			}
			if err := fn(uint8(a), uint8(b), r); err != nil {
				return err
			}
		}
	}

	return nil
}

// Reference computes op with plain integer arithmetic, independent of
// the adder model. Carry is bit 8 of the wide sum; logic ops never carry.
func Reference(a, b uint8, op insts.Op) (value uint8, carry bool) {
	x, y := uint16(a), uint16(b)

	var wide uint16
	switch op {
	case insts.OpADD:
		wide = x + y
	case insts.OpADC:
		wide = x + y + 1
	case insts.OpSUB:
		wide = x + (0xFF - y) + 1
	case insts.OpSBC:
		wide = x + (0xFF - y)
	case insts.OpNOR:
		return ^(a | b), false
	case insts.OpAND:
		return a & b, false
	case insts.OpXOR:
		return a ^ b, false
	case insts.OpRSH:
		return (a | b) >> 1, false
	}

	return uint8(wide), wide > 0xFF
}
