package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/umsim/insts"
	"github.com/sarchlab/umsim/loader"
)

var _ = Describe("umsim", func() {
	var (
		tempDir string
		stdin   *strings.Reader
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "umsim-test")
		Expect(err).NotTo(HaveOccurred())

		stdin = strings.NewReader("")
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	writeImage := func(name string, words ...uint32) string {
		path := filepath.Join(tempDir, name)
		Expect(loader.Save(path, words)).To(Succeed())
		return path
	}

	writeFile := func(name, contents string) string {
		path := filepath.Join(tempDir, name)
		Expect(os.WriteFile(path, []byte(contents), 0644)).To(Succeed())
		return path
	}

	run := func(args ...string) error {
		app := newApp(stdin, stdout, stderr)
		return app.Run(append([]string{"umsim"}, args...))
	}

	hello := func() string {
		return writeImage("hello.um",
			insts.EncodeImmediate(0, 'H'),
			insts.EncodeOutput(0),
			insts.EncodeImmediate(0, 'i'),
			insts.EncodeOutput(0),
			insts.EncodeHalt(),
		)
	}

	Describe("Running a program", func() {
		It("should write program output to stdout", func() {
			Expect(run(hello())).To(Succeed())
			Expect(stdout.String()).To(Equal("Hi"))
		})

		It("should accept the run command", func() {
			Expect(run("run", hello())).To(Succeed())
			Expect(stdout.String()).To(Equal("Hi"))
		})

		It("should feed stdin to the input port", func() {
			stdin = strings.NewReader("z")
			path := writeImage("echo.um",
				insts.EncodeInput(1),
				insts.EncodeOutput(1),
				insts.EncodeHalt(),
			)

			Expect(run(path)).To(Succeed())
			Expect(stdout.String()).To(Equal("z"))
		})

		It("should fail without a program", func() {
			Expect(run()).To(MatchError(ContainSubstring("missing program image")))
		})

		It("should fail on a missing image", func() {
			err := run(filepath.Join(tempDir, "missing.um"))
			Expect(err).To(MatchError(ContainSubstring("error loading program")))
		})

		It("should fail on a truncated image", func() {
			path := writeFile("bad.um", "abc")
			Expect(run(path)).To(HaveOccurred())
		})
	})

	Describe("Faults", func() {
		var divide string

		BeforeEach(func() {
			divide = writeImage("div.um",
				insts.EncodeImmediate(0, 'A'),
				insts.EncodeOutput(0),
				insts.EncodeDiv(1, 2, 3),
				insts.EncodeOutput(0),
				insts.EncodeHalt(),
			)
		})

		It("should report the fault and keep earlier output", func() {
			err := run(divide)
			Expect(err).To(MatchError(errFaulted))
			Expect(stdout.String()).To(Equal("A"))
			Expect(stderr.String()).To(ContainSubstring("FAULT"))
			Expect(stderr.String()).To(ContainSubstring("division by zero"))
		})

		It("should dump machine state when verbose", func() {
			Expect(run("--verbose", divide)).To(MatchError(errFaulted))
			Expect(stderr.String()).To(ContainSubstring("Registers"))
			Expect(stderr.String()).To(ContainSubstring("ActiveArray"))
		})
	})

	Describe("Instruction limit", func() {
		It("should stop a looping program", func() {
			path := writeImage("loop.um",
				insts.EncodeImmediate(0, 'x'),
				insts.EncodeOutput(0),
				insts.EncodeLoadProgram(1, 1),
			)

			Expect(run("--max-instructions", "9", path)).To(Succeed())
			Expect(stdout.String()).To(Equal("xxx"))
		})

		It("should take the limit from a run file", func() {
			path := writeImage("loop.um",
				insts.EncodeImmediate(0, 'x'),
				insts.EncodeOutput(0),
				insts.EncodeLoadProgram(1, 1),
			)
			config := writeFile("run.toml", "max_instructions = 5\n")

			Expect(run("--config", config, path)).To(Succeed())
			Expect(stdout.String()).To(Equal("xx"))
		})
	})

	Describe("Heap limits", func() {
		allocTwice := func() string {
			return writeImage("alloc.um",
				insts.EncodeImmediate(1, 8),
				insts.EncodeAlloc(2, 1),
				insts.EncodeAlloc(3, 1),
				insts.EncodeHalt(),
			)
		}

		It("should reject an identifier limit wider than 32 bits", func() {
			err := run("--identifier-limit", "4294967296", hello())
			Expect(err).To(MatchError(ContainSubstring("identifier-limit 4294967296 exceeds 4294967295")))
			Expect(stdout.String()).To(BeEmpty())
		})

		It("should accept the largest 32-bit identifier limit", func() {
			Expect(run("run", "--identifier-limit", "4294967295", hello())).To(Succeed())
			Expect(stdout.String()).To(Equal("Hi"))
		})

		It("should fault when the heap limit is exhausted", func() {
			Expect(run("--heap-limit", "16", allocTwice())).To(MatchError(errFaulted))
			Expect(stderr.String()).To(ContainSubstring("heap word budget exhausted"))
		})

		It("should take the heap limit from a run file", func() {
			config := writeFile("run.toml", "heap_limit = 16\n")
			Expect(run("run", "--config", config, allocTwice())).To(MatchError(errFaulted))
			Expect(stderr.String()).To(ContainSubstring("heap word budget exhausted"))
		})

		It("should fault on an allocation of 0xFFFFFFFF words", func() {
			path := writeImage("huge.um",
				insts.EncodeImmediate(1, 0),
				insts.EncodeNand(1, 1, 1),
				insts.EncodeAlloc(2, 1),
				insts.EncodeHalt(),
			)

			Expect(run(path)).To(MatchError(errFaulted))
			Expect(stderr.String()).To(ContainSubstring("heap word budget exhausted"))
		})
	})

	Describe("Timing mode", func() {
		It("should print a report", func() {
			Expect(run("--timing", hello())).To(Succeed())
			Expect(stdout.String()).To(Equal("Hi"))
			Expect(stderr.String()).To(ContainSubstring("Cycles"))
			Expect(stderr.String()).To(ContainSubstring("I-cache misses"))
		})

		It("should use latencies from the run file", func() {
			config := writeFile("run.toml", "[latency]\nalu_latency = 7\n")
			Expect(run("--timing", "--config", config, hello())).To(Succeed())
			Expect(stderr.String()).To(ContainSubstring("Cycles"))
		})
	})

	Describe("Run files", func() {
		It("should keep defaults for missing keys", func() {
			path := writeFile("run.toml", "[dcache]\nmiss_latency = 99\n")
			config, err := LoadRunConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(config.DCache.MissLatency).To(Equal(uint64(99)))
			Expect(config.DCache.Associativity).To(Equal(8))
			Expect(config.Latency.DivideLatency).To(Equal(uint64(10)))
		})

		It("should reject unknown keys", func() {
			path := writeFile("run.toml", "max_instrs = 5\n")
			_, err := LoadRunConfig(path)
			Expect(err).To(MatchError(ContainSubstring("max_instrs")))
		})

		It("should reject invalid timing", func() {
			path := writeFile("run.toml", "[latency]\nalu_latency = 0\n")
			_, err := LoadRunConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Disassembly", func() {
		It("should list every word", func() {
			Expect(run("disasm", hello())).To(Succeed())
			lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
			Expect(lines).To(HaveLen(5))
			Expect(lines[0]).To(ContainSubstring("ldi r0, 72"))
			Expect(lines[4]).To(ContainSubstring("halt"))
		})
	})

	Describe("Benchmarks", func() {
		It("should print CSV results", func() {
			Expect(run("bench", "--format", "csv")).To(Succeed())
			Expect(stdout.String()).To(HavePrefix("name,status,cycles"))
			Expect(stdout.String()).To(ContainSubstring("hello_world,halted"))
		})

		It("should reject an unknown format", func() {
			Expect(run("bench", "--format", "xml")).To(HaveOccurred())
		})
	})
})
