package emu

import "fmt"

// Flags is the condition flag set produced by every ALU execution.
// Each flag has a complement; exactly one of each pair is set.
type Flags uint8

// Flag bits.
const (
	FlagC  Flags = 1 << 0 // Carry
	FlagNC Flags = 1 << 1 // Not Carry
	FlagZ  Flags = 1 << 2 // Zero
	FlagNZ Flags = 1 << 3 // Not Zero
	FlagE  Flags = 1 << 4 // Even
	FlagO  Flags = 1 << 5 // Odd
)

// deriveFlags computes the flag set for a final 8-bit result.
func deriveFlags(result uint8, carryOut bool) Flags {
	var fl Flags

	if carryOut {
		fl |= FlagC
	} else {
		fl |= FlagNC
	}

	if result == 0 {
		fl |= FlagZ
	} else {
		fl |= FlagNZ
	}

	if result&1 == 0 {
		fl |= FlagE
	} else {
		fl |= FlagO
	}

	return fl
}

// Carry reports the carry-out of the adder.
func (fl Flags) Carry() bool { return fl&FlagC != 0 }

// NotCarry is the complement of Carry.
func (fl Flags) NotCarry() bool { return fl&FlagNC != 0 }

// Zero reports a zero result.
func (fl Flags) Zero() bool { return fl&FlagZ != 0 }

// NotZero is the complement of Zero.
func (fl Flags) NotZero() bool { return fl&FlagNZ != 0 }

// Even reports a result with a clear low bit.
func (fl Flags) Even() bool { return fl&FlagE != 0 }

// Odd is the complement of Even.
func (fl Flags) Odd() bool { return fl&FlagO != 0 }

// Consistent reports whether exactly one flag of each pair is set.
func (fl Flags) Consistent() bool {
	return fl.Carry() != fl.NotCarry() &&
		fl.Zero() != fl.NotZero() &&
		fl.Even() != fl.Odd()
}

// String formats the flags as "C=0 NC=1 Z=0 NZ=1 E=1 O=0".
func (fl Flags) String() string {
	return fmt.Sprintf("C=%d NC=%d Z=%d NZ=%d E=%d O=%d",
		bit(fl.Carry()), bit(fl.NotCarry()),
		bit(fl.Zero()), bit(fl.NotZero()),
		bit(fl.Even()), bit(fl.Odd()))
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
