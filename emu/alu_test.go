package emu_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dp8sim/emu"
	"github.com/sarchlab/dp8sim/insts"
)

var _ = Describe("ALU", func() {
	var alu *emu.ALU

	BeforeEach(func() {
		var err error
		alu, err = emu.NewALU(emu.ALUConfig{Latency: 0.8})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Setup", func() {
		It("should keep the configured latency", func() {
			Expect(alu.Latency()).To(Equal(0.8))
			Expect(alu.Configured()).To(BeTrue())
		})

		It("should reject a second Configure on the same setup", func() {
			setup := &emu.ALUSetup{}
			first, err := setup.Configure(emu.ALUConfig{Latency: 0.1})
			Expect(err).NotTo(HaveOccurred())

			second, err := setup.Configure(emu.ALUConfig{Latency: 0.5})
			Expect(err).To(MatchError(emu.ErrAlreadyConfigured))
			Expect(second).To(BeNil())
			Expect(first.Latency()).To(Equal(0.1))
		})

		It("should reject a negative latency and leave the setup usable", func() {
			setup := &emu.ALUSetup{}
			_, err := setup.Configure(emu.ALUConfig{Latency: -1})
			Expect(err).To(MatchError(emu.ErrInvalidLatency))

			a, err := setup.Configure(emu.ALUConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Configured()).To(BeTrue())
		})

		It("should refuse to execute when not configured", func() {
			var zero emu.ALU
			_, err := zero.Execute(1, 2, insts.OpADD)
			Expect(err).To(MatchError(emu.ErrNotConfigured))
			Expect(zero.Last()).To(Equal(emu.Result{}))

			var nilALU *emu.ALU
			_, err = nilALU.Execute(1, 2, insts.OpADD)
			Expect(err).To(MatchError(emu.ErrNotConfigured))
			Expect(nilALU.Configured()).To(BeFalse())
			Expect(nilALU.Last()).To(Equal(emu.Result{}))
			Expect(nilALU.Latency()).To(BeZero())
		})
	})

	Describe("Arithmetic operations", func() {
		It("should compute SUB 1 - 200 = 57 without carry", func() {
			r, err := alu.Execute(1, 200, insts.OpSUB)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Value).To(Equal(uint8(57)))
			Expect(r.Flags.Carry()).To(BeFalse())
			Expect(r.Flags.NotZero()).To(BeTrue())
			Expect(r.Flags.Odd()).To(BeTrue())
		})

		It("should compute SBC 1 - 200 - 1 = 56 without carry", func() {
			r, err := alu.Execute(1, 200, insts.OpSBC)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Value).To(Equal(uint8(56)))
			Expect(r.Flags.Carry()).To(BeFalse())
			Expect(r.Flags.Even()).To(BeTrue())
		})

		It("should compute ADD 200 + 100 = 44 with carry", func() {
			r, err := alu.Execute(200, 100, insts.OpADD)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Value).To(Equal(uint8(44)))
			Expect(r.Flags.Carry()).To(BeTrue())
			Expect(r.Flags.Even()).To(BeTrue())
		})

		It("should compute ADC 200 + 100 + 1 = 45 with carry", func() {
			r, err := alu.Execute(200, 100, insts.OpADC)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Value).To(Equal(uint8(45)))
			Expect(r.Flags.Carry()).To(BeTrue())
			Expect(r.Flags.Odd()).To(BeTrue())
		})

		It("should report carry on SUB when no borrow occurs", func() {
			r, err := alu.Execute(150, 50, insts.OpSUB)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Value).To(Equal(uint8(100)))
			Expect(r.Flags.Carry()).To(BeTrue())

			r, err = alu.Execute(7, 7, insts.OpSUB)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Value).To(Equal(uint8(0)))
			Expect(r.Flags).To(Equal(emu.FlagC | emu.FlagZ | emu.FlagE))
		})
	})

	Describe("Logic operations", func() {
		It("should compute NOR 0b10101010, 0b01010101 = 0 with Z", func() {
			r, err := alu.Execute(0b10101010, 0b01010101, insts.OpNOR)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Value).To(Equal(uint8(0)))
			Expect(r.Flags).To(Equal(emu.FlagNC | emu.FlagZ | emu.FlagE))
		})

		DescribeTable("should match the reference results",
			func(a, b uint8, op insts.Op, want uint8, flags emu.Flags) {
				r, err := alu.Execute(a, b, op)
				Expect(err).NotTo(HaveOccurred())
				Expect(r.Value).To(Equal(want))
				Expect(r.Flags).To(Equal(flags))
			},
			Entry("NOR", uint8(0b01110111), uint8(0b00001111), insts.OpNOR, uint8(128), emu.FlagNC|emu.FlagNZ|emu.FlagE),
			Entry("AND", uint8(0b10010010), uint8(0b01111011), insts.OpAND, uint8(18), emu.FlagNC|emu.FlagNZ|emu.FlagE),
			Entry("XOR", uint8(0b01100111), uint8(0b00110011), insts.OpXOR, uint8(84), emu.FlagNC|emu.FlagNZ|emu.FlagE),
			Entry("RSH", uint8(0b10101010), uint8(0b01010101), insts.OpRSH, uint8(127), emu.FlagNC|emu.FlagNZ|emu.FlagO),
			Entry("RSH high bit", uint8(0x80), uint8(0x00), insts.OpRSH, uint8(0x40), emu.FlagNC|emu.FlagNZ|emu.FlagE),
			Entry("AND to zero", uint8(0xF0), uint8(0x0F), insts.OpAND, uint8(0), emu.FlagNC|emu.FlagZ|emu.FlagE),
		)

		It("should never report carry for logic opcodes", func() {
			for _, op := range []insts.Op{insts.OpNOR, insts.OpAND, insts.OpXOR, insts.OpRSH} {
				r, err := alu.Execute(0xFF, 0xFF, op)
				Expect(err).NotTo(HaveOccurred())
				Expect(r.Flags.NotCarry()).To(BeTrue(), op.String())
			}
		})
	})

	Describe("Last result", func() {
		It("should be overwritten by each execution", func() {
			_, _ = alu.Execute(200, 100, insts.OpADD)
			Expect(alu.Last().Value).To(Equal(uint8(44)))

			_, _ = alu.Execute(1, 200, insts.OpSUB)
			Expect(alu.Last().Value).To(Equal(uint8(57)))
			Expect(alu.Last().Flags.Carry()).To(BeFalse())
		})

		It("should be left alone by an invalid opcode", func() {
			_, _ = alu.Execute(200, 100, insts.OpADD)

			_, err := alu.Execute(1, 1, insts.Op(9))
			Expect(err).To(MatchError(insts.ErrInvalidOpcode))
			Expect(alu.Last().Value).To(Equal(uint8(44)))
		})
	})

	Describe("Properties", func() {
		It("should hold for every operand pair", func() {
			var failures []string

			for a := 0; a < 256; a++ {
				for b := 0; b < 256; b++ {
					x, y := uint8(a), uint8(b)

					add, errAdd := alu.Execute(x, y, insts.OpADD)
					rev, errRev := alu.Execute(y, x, insts.OpADD)
					sub, errSub := alu.Execute(x, y, insts.OpSUB)
					nor, errNor := alu.Execute(x, y, insts.OpNOR)

					switch {
					case errAdd != nil || errRev != nil || errSub != nil || errNor != nil:
						failures = append(failures, fmt.Sprintf("%d,%d: %v %v %v %v", x, y, errAdd, errRev, errSub, errNor))
					case add != rev:
						failures = append(failures, fmt.Sprintf("ADD %d,%d not commutative", x, y))
					case sub.Value != x-y || sub.Flags.Carry() != (x >= y):
						failures = append(failures, fmt.Sprintf("SUB %d,%d = %d %v", x, y, sub.Value, sub.Flags))
					case nor.Value != 255-(x|y):
						failures = append(failures, fmt.Sprintf("NOR %d,%d = %d", x, y, nor.Value))
					case !add.Flags.Consistent() || !sub.Flags.Consistent() || !nor.Flags.Consistent():
						failures = append(failures, fmt.Sprintf("inconsistent flags for %d,%d", x, y))
					}
				}
			}

			Expect(failures).To(BeEmpty())
		})
	})
})
