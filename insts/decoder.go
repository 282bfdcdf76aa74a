package insts

import (
	"strings"

	"github.com/sarchlab/dp8sim/translate"
)

// Op represents a datapath opcode.
type Op uint8

// Opcodes, in their 3-bit encoding.
const (
	OpADD Op = 0b000 // A + B
	OpADC Op = 0b001 // A + B + 1
	OpSUB Op = 0b010 // A - B
	OpSBC Op = 0b011 // A - B - 1
	OpNOR Op = 0b100 // ~(A | B)
	OpAND Op = 0b101 // A & B
	OpXOR Op = 0b110 // A ^ B
	OpRSH Op = 0b111 // (A | B) >> 1
)

// NumOps is the number of defined opcodes.
const NumOps = 8

const (
	groupBit  = 0b100
	invertBit = 0b010
)

// ErrInvalidOpcode is returned for opcode values outside the 3-bit range
// and for unknown mnemonics.
var ErrInvalidOpcode error = translate.Error("invalid opcode")

var opNames = [NumOps]string{"ADD", "ADC", "SUB", "SBC", "NOR", "AND", "XOR", "RSH"}

// Valid reports whether o is one of the eight defined opcodes.
func (o Op) Valid() bool {
	return o < NumOps
}

// IsLogic reports whether o belongs to the logic group.
func (o Op) IsLogic() bool {
	return o&groupBit != 0
}

// InvertsB reports whether the second operand is inverted before the adder.
// Only meaningful for the arithmetic group.
func (o Op) InvertsB() bool {
	return !o.IsLogic() && o&invertBit != 0
}

// CarryIn returns the carry injected into the adder.
// ADC and SUB inject 1; every other opcode injects 0.
func (o Op) CarryIn() uint8 {
	if o == OpADC || o == OpSUB {
		return 1
	}
	return 0
}

// String returns the mnemonic.
func (o Op) String() string {
	if !o.Valid() {
		return translate.From("OP(%d)", uint8(o))
	}
	return opNames[o]
}

// ParseOp looks up an opcode by mnemonic, ignoring case.
func ParseOp(name string) (Op, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range opNames {
		if n == upper {
			return Op(i), nil
		}
	}
	return 0, ErrInvalidOpcode
}

// Ops returns all opcodes in encoding order.
func Ops() []Op {
	ops := make([]Op, NumOps)
	for i := range ops {
		ops[i] = Op(i)
	}
	return ops
}

// Instruction is a decoded opcode with its control signals.
type Instruction struct {
	Op      Op    // Operation code
	Logic   bool  // true for the logic group
	InvertB bool  // invert B before the adder
	CarryIn uint8 // adder carry-in, 0 or 1
}

// Decoder turns raw opcode bits into control signals.
type Decoder struct{}

// NewDecoder creates a new opcode decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 3-bit opcode value.
func (d *Decoder) Decode(bits uint8) (Instruction, error) {
	op := Op(bits)
	if !op.Valid() {
		return Instruction{}, ErrInvalidOpcode
	}

	return Instruction{
		Op:      op,
		Logic:   op.IsLogic(),
		InvertB: op.InvertsB(),
		CarryIn: op.CarryIn(),
	}, nil
}
