// Package insts provides the opcode set of the 8-bit datapath and its decoding.
//
// Opcodes are 3 bits wide. Bit 2 selects the group: 0 is arithmetic
// (ADD, ADC, SUB, SBC) and 1 is logic (NOR, AND, XOR, RSH). Within the
// arithmetic group bit 1 inverts the second operand before the adder.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(0b010) // SUB
//	fmt.Printf("Op: %v, Logic: %v, InvertB: %v, CarryIn: %d\n",
//		inst.Op, inst.Logic, inst.InvertB, inst.CarryIn)
package insts
