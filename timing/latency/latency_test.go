package latency_test

import (
	"math"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dp8sim/timing/latency"
)

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTableWithConfig(latency.DefaultTimingConfig())
	})

	Describe("Default Timing Values", func() {
		It("should have correct ALU latency", func() {
			Expect(table.GetLatency(latency.KindExecute)).To(Equal(0.8))
		})

		It("should have correct read latency", func() {
			Expect(table.GetLatency(latency.KindRead)).To(Equal(0.3))
		})

		It("should have correct write latency", func() {
			Expect(table.GetLatency(latency.KindWrite)).To(Equal(0.4))
		})

		It("should return 0 for an unknown kind", func() {
			Expect(table.GetLatency(latency.Kind(42))).To(BeZero())
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			customTable := latency.NewTableWithConfig(&latency.TimingConfig{
				ALULatency:      0.05,
				RegReadLatency:  0.01,
				RegWriteLatency: 0.02,
			})

			Expect(customTable.GetLatency(latency.KindExecute)).To(Equal(0.05))
			Expect(customTable.GetLatency(latency.KindRead)).To(Equal(0.01))
			Expect(customTable.GetLatency(latency.KindWrite)).To(Equal(0.02))
		})
	})

	Describe("Kinds", func() {
		It("should name each kind", func() {
			Expect(latency.KindRead.String()).To(Equal("read"))
			Expect(latency.KindWrite.String()).To(Equal("write"))
			Expect(latency.KindExecute.String()).To(Equal("execute"))
		})
	})

	It("should convert seconds to durations", func() {
		Expect(latency.Duration(0.25)).To(Equal(250 * time.Millisecond))
		Expect(latency.Duration(0)).To(BeZero())
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
			Expect(latency.ZeroTimingConfig().Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject negative ALU latency", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = -1
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject NaN read latency", func() {
			config := latency.DefaultTimingConfig()
			config.RegReadLatency = math.NaN()
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject infinite write latency", func() {
			config := latency.DefaultTimingConfig()
			config.RegWriteLatency = math.Inf(1)
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.ALULatency = 100

			Expect(original.ALULatency).To(Equal(0.8))
			Expect(clone.ALULatency).To(Equal(100.0))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.ALULatency = 0.5
			original.RegWriteLatency = 0.125

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ALULatency).To(Equal(0.5))
			Expect(loaded.RegWriteLatency).To(Equal(0.125))
			Expect(loaded.RegReadLatency).To(Equal(0.3))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"alu_latency": 0}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ALULatency).To(BeZero())
			Expect(loaded.RegReadLatency).To(Equal(0.3))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
