// Package emu provides the functional model of the 8-bit datapath.
package emu

import (
	"github.com/sarchlab/dp8sim/translate"
)

var f = translate.From

var (
	// Lifecycle errors
	ErrNotConfigured     error = translate.Error("alu not configured")
	ErrAlreadyConfigured error = translate.Error("alu already configured")
	ErrNotCreated        error = translate.Error("register file not created")
	ErrAlreadyCreated    error = translate.Error("register file already created")

	// Configuration errors
	ErrInvalidLatency error = translate.Error("latency must be a non-negative number")
	ErrInvalidSize    error = translate.Error("register file size must be at least 1")

	// ErrAddressOutOfRange matches any AddressOutOfRangeError.
	ErrAddressOutOfRange error = translate.Error("address out of range")
)

// AddressOutOfRangeError reports a register access outside 0..Size-1.
type AddressOutOfRangeError struct {
	Addr uint8
	Size uint8
}

func (err AddressOutOfRangeError) Error() string {
	return f("invalid address r%d (size %d)", err.Addr, err.Size)
}

func (err AddressOutOfRangeError) Is(target error) bool {
	return target == ErrAddressOutOfRange
}
