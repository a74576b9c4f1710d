package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/umsim/insts"
	"github.com/sarchlab/umsim/timing/latency"
)

var _ = Describe("Latency", func() {
	var (
		table   *latency.Table
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		table = latency.NewTable()
		decoder = insts.NewDecoder()
	})

	Describe("Default Timing Values", func() {
		It("should have correct ALU latency", func() {
			Expect(table.Config().ALULatency).To(Equal(uint64(1)))
		})

		It("should have correct divide latency", func() {
			Expect(table.Config().DivideLatency).To(Equal(uint64(10)))
		})

		It("should have correct program switch penalty", func() {
			Expect(table.Config().ProgramSwitchPenalty).To(Equal(uint64(12)))
		})
	})

	DescribeTable("Instruction Latencies",
		func(word uint32, want uint64) {
			Expect(table.GetLatency(decoder.Decode(word))).To(Equal(want))
		},
		Entry("add", insts.EncodeAdd(0, 1, 2), uint64(1)),
		Entry("sub", insts.EncodeSub(0, 1, 2), uint64(1)),
		Entry("nand", insts.EncodeNand(0, 1, 2), uint64(1)),
		Entry("cmov", insts.EncodeCMov(0, 1, 2), uint64(1)),
		Entry("ldi", insts.EncodeImmediate(0, 5), uint64(1)),
		Entry("mul", insts.EncodeMul(0, 1, 2), uint64(3)),
		Entry("div", insts.EncodeDiv(0, 1, 2), uint64(10)),
		Entry("mod", insts.EncodeMod(0, 1, 2), uint64(10)),
		Entry("index", insts.EncodeIndex(0, 1, 2), uint64(1)),
		Entry("amend", insts.EncodeAmend(0, 1, 2), uint64(1)),
		Entry("alloc", insts.EncodeAlloc(0, 1), uint64(20)),
		Entry("abandon", insts.EncodeAbandon(1), uint64(5)),
		Entry("out", insts.EncodeOutput(1), uint64(1)),
		Entry("in", insts.EncodeInput(1), uint64(1)),
		Entry("ldprog", insts.EncodeLoadProgram(1, 2), uint64(1)),
		Entry("halt", insts.EncodeHalt(), uint64(1)),
	)

	Describe("Instruction Type Detection", func() {
		It("should detect memory operations", func() {
			Expect(table.IsMemoryOp(decoder.Decode(insts.EncodeIndex(0, 1, 2)))).To(BeTrue())
			Expect(table.IsMemoryOp(decoder.Decode(insts.EncodeAmend(0, 1, 2)))).To(BeTrue())
			Expect(table.IsMemoryOp(decoder.Decode(insts.EncodeAdd(0, 1, 2)))).To(BeFalse())
		})

		It("should detect branch operations", func() {
			Expect(table.IsBranchOp(decoder.Decode(insts.EncodeLoadProgram(0, 1)))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(insts.EncodeHalt()))).To(BeFalse())
		})
	})

	Describe("Nil Instruction Handling", func() {
		It("should return 1 for nil instruction", func() {
			Expect(table.GetLatency(nil)).To(Equal(uint64(1)))
		})

		It("should return false for nil instruction checks", func() {
			Expect(table.IsMemoryOp(nil)).To(BeFalse())
			Expect(table.IsBranchOp(nil)).To(BeFalse())
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 2
			config.DivideLatency = 40
			customTable := latency.NewTableWithConfig(config)

			Expect(customTable.GetLatency(decoder.Decode(insts.EncodeAdd(0, 1, 2)))).To(Equal(uint64(2)))
			Expect(customTable.GetLatency(decoder.Decode(insts.EncodeMod(0, 1, 2)))).To(Equal(uint64(40)))
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultTimingConfig()
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject zero ALU latency", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero divide latency", func() {
			config := latency.DefaultTimingConfig()
			config.DivideLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero alloc latency", func() {
			config := latency.DefaultTimingConfig()
			config.AllocLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should allow a zero program switch penalty", func() {
			config := latency.DefaultTimingConfig()
			config.ProgramSwitchPenalty = 0
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.ALULatency = 100

			Expect(original.ALULatency).To(Equal(uint64(1)))
			Expect(clone.ALULatency).To(Equal(uint64(100)))
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
			original.ALULatency = 5
			original.AllocLatency = 50

			path := filepath.Join(tempDir, "timing.toml")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for keys missing from the file", func() {
			path := filepath.Join(tempDir, "partial.toml")
			Expect(os.WriteFile(path, []byte("divide_latency = 33\n"), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.DivideLatency).To(Equal(uint64(33)))
			Expect(loaded.MultiplyLatency).To(Equal(uint64(3)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.toml")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid TOML", func() {
			path := filepath.Join(tempDir, "invalid.toml")
			err := os.WriteFile(path, []byte("not = [valid toml"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
