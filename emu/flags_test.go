package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dp8sim/emu"
)

var _ = Describe("Flags", func() {
	It("should format every flag", func() {
		fl := emu.FlagC | emu.FlagNZ | emu.FlagE
		Expect(fl.String()).To(Equal("C=1 NC=0 Z=0 NZ=1 E=1 O=0"))
	})

	It("should use the original bit layout", func() {
		Expect(uint8(emu.FlagC)).To(Equal(uint8(0x01)))
		Expect(uint8(emu.FlagNC)).To(Equal(uint8(0x02)))
		Expect(uint8(emu.FlagZ)).To(Equal(uint8(0x04)))
		Expect(uint8(emu.FlagNZ)).To(Equal(uint8(0x08)))
		Expect(uint8(emu.FlagE)).To(Equal(uint8(0x10)))
		Expect(uint8(emu.FlagO)).To(Equal(uint8(0x20)))
	})

	It("should detect inconsistent sets", func() {
		Expect(emu.Flags(0).Consistent()).To(BeFalse())
		Expect((emu.FlagC | emu.FlagNC | emu.FlagZ | emu.FlagE).Consistent()).To(BeFalse())
		Expect((emu.FlagNC | emu.FlagZ | emu.FlagE).Consistent()).To(BeTrue())
	})
})
