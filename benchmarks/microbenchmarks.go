package benchmarks

import (
	"github.com/sarchlab/dp8sim/insts"
	"github.com/sarchlab/dp8sim/timing/core"
)

// GetMicrobenchmarks returns the standard set of register-level programs.
// Each one targets a specific part of the datapath.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		combinedDatapath(),
		fibonacci(),
		subtractBorrow(),
		logicMix(),
		zeroRegisterSink(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		combinedDatapath(),
		fibonacci(),
	}
}

// Op builds a write-back instruction: dest = a op b.
func Op(op insts.Op, dest, a, b uint8) core.Instr {
	return core.Instr{Op: op, SrcA: a, SrcB: b, Dest: dest, WriteBack: true}
}

// 1. Combined datapath - the classic read, execute, write-back sequence
func combinedDatapath() Benchmark {
	return Benchmark{
		Name:        "combined_datapath",
		Description: "4 read-execute-write steps over preloaded registers",
		Setup:       Preload(map[uint8]uint8{1: 150, 2: 100, 3: 50, 4: 255}),
		Program: []core.Instr{
			Op(insts.OpADD, 5, 1, 2),
			Op(insts.OpSUB, 6, 1, 3),
			Op(insts.OpAND, 7, 2, 4),
			Op(insts.OpXOR, 1, 5, 6),
		},
		Expected: map[uint8]uint8{0: 0, 1: 158, 2: 100, 3: 50, 4: 255, 5: 250, 6: 100, 7: 100},
	}
}

// 2. Fibonacci - dependent ADD chain that wraps past 255
func fibonacci() Benchmark {
	var program []core.Instr

	// Rotate r1, r2, r3 so each step adds the previous two terms.
	rot := [3][3]uint8{{3, 1, 2}, {1, 2, 3}, {2, 3, 1}}
	for i := 0; i < 12; i++ {
		r := rot[i%3]
		program = append(program, Op(insts.OpADD, r[0], r[1], r[2]))
	}

	return Benchmark{
		Name:        "fibonacci",
		Description: "12 dependent ADDs, last term wraps modulo 256",
		Setup:       Preload(map[uint8]uint8{1: 1, 2: 1}),
		Program:     program,
		Expected:    map[uint8]uint8{1: 233, 2: 121, 3: 144},
	}
}

// 3. Subtract with borrow - inverted-operand adder paths
func subtractBorrow() Benchmark {
	return Benchmark{
		Name:        "subtract_borrow",
		Description: "SUB, SBC and ADC on wrapping operands",
		Setup:       Preload(map[uint8]uint8{1: 1, 2: 200}),
		Program: []core.Instr{
			Op(insts.OpSUB, 3, 1, 2),
			Op(insts.OpSBC, 4, 1, 2),
			Op(insts.OpADC, 5, 3, 4),
			Op(insts.OpSUB, 6, 2, 2),
		},
		Expected: map[uint8]uint8{3: 57, 4: 56, 5: 114, 6: 0},
	}
}

// 4. Logic mix - every logic-group opcode on one operand pair
func logicMix() Benchmark {
	return Benchmark{
		Name:        "logic_mix",
		Description: "AND, XOR, NOR and RSH on 0b10010010 and 0b01111011",
		Setup:       Preload(map[uint8]uint8{1: 0b10010010, 2: 0b01111011}),
		Program: []core.Instr{
			Op(insts.OpAND, 3, 1, 2),
			Op(insts.OpXOR, 4, 1, 2),
			Op(insts.OpNOR, 5, 1, 2),
			Op(insts.OpRSH, 6, 1, 2),
		},
		Expected: map[uint8]uint8{3: 18, 4: 233, 5: 4, 6: 125},
	}
}

// 5. Zero register sink - results written to r0 are discarded
func zeroRegisterSink() Benchmark {
	return Benchmark{
		Name:        "zero_register_sink",
		Description: "write-back to r0 and reads of r0 as a constant zero",
		Setup:       Preload(map[uint8]uint8{1: 7, 2: 9}),
		Program: []core.Instr{
			Op(insts.OpADD, 0, 1, 2),
			Op(insts.OpADD, 3, 0, 1),
			Op(insts.OpXOR, 4, 1, 1),
		},
		Expected: map[uint8]uint8{0: 0, 3: 7, 4: 0},
	}
}
