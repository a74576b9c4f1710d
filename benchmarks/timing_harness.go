// Package benchmarks provides timing benchmark infrastructure for umsim
// calibration.
package benchmarks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/sarchlab/umsim/emu"
	"github.com/sarchlab/umsim/timing/core"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Status is how the run ended: halted, faulted or running (limit hit).
	Status string `json:"status"`

	// Error describes the fault, if any.
	Error string `json:"error,omitempty"`

	// Passed reports whether the output matched the expected output.
	Passed bool `json:"passed"`

	// Output is everything the program wrote.
	Output string `json:"output"`

	// SimulatedCycles is the total cycle count from the timing model
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	ProgramSwitches uint64 `json:"program_switches"`
	Allocations     uint64 `json:"allocations"`
	Abandons        uint64 `json:"abandons"`
	PeakLive        int    `json:"peak_live"`

	ICacheHits   uint64 `json:"icache_hits"`
	ICacheMisses uint64 `json:"icache_misses"`
	DCacheHits   uint64 `json:"dcache_hits"`
	DCacheMisses uint64 `json:"dcache_misses"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the word image loaded into array 0
	Program []uint32

	// Input is fed to the input port
	Input string

	// ExpectedOutput is what the program must write (for validation)
	ExpectedOutput string
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Core holds the latency table and cache geometries
	Core core.Config

	// MaxInstructions bounds each run (0 = unlimited)
	MaxInstructions uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Core:            core.DefaultConfig(),
		MaxInstructions: 10_000_000,
		Output:          os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}

	return results
}

// runBenchmark executes a single benchmark on a fresh core.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	var out bytes.Buffer

	c, err := core.NewCore(h.config.Core,
		emu.WithOutput(&out),
		emu.WithInput(strings.NewReader(bench.Input)),
		emu.WithMaxInstructions(h.config.MaxInstructions),
	)
	if err != nil {
		return BenchmarkResult{
			Name:        bench.Name,
			Description: bench.Description,
			Status:      "error",
			Error:       err.Error(),
		}
	}
	c.LoadProgram(bench.Program)

	start := time.Now()
	run := c.Run()
	wallTime := time.Since(start)

	stats := c.Stats()
	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		Status:              run.Status.String(),
		Output:              out.String(),
		SimulatedCycles:     stats.Cycles,
		InstructionsRetired: stats.Instructions,
		CPI:                 stats.CPI(),
		ProgramSwitches:     stats.ProgramSwitches,
		Allocations:         stats.Allocations,
		Abandons:            stats.Abandons,
		PeakLive:            stats.PeakLive,
		ICacheHits:          stats.ICache.Hits,
		ICacheMisses:        stats.ICache.Misses,
		DCacheHits:          stats.DCache.Hits,
		DCacheMisses:        stats.DCache.Misses,
		WallTime:            wallTime,
	}

	if err := run.Err(); err != nil {
		result.Error = err.Error()
	}
	result.Passed = run.Status == emu.StatusHalted && result.Output == bench.ExpectedOutput

	return result
}

// PrintResults outputs benchmark results as a table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== umsim Timing Benchmark Results ===")

	table := tablewriter.NewWriter(h.config.Output)
	table.SetHeader([]string{
		"Benchmark", "Status", "Cycles", "Insts", "CPI",
		"I$ Hit/Miss", "D$ Hit/Miss", "Allocs", "Switches",
	})

	for _, r := range results {
		status := r.Status
		if !r.Passed {
			status += " (FAIL)"
		}
		table.Append([]string{
			r.Name,
			status,
			fmt.Sprint(r.SimulatedCycles),
			fmt.Sprint(r.InstructionsRetired),
			fmt.Sprintf("%.3f", r.CPI),
			fmt.Sprintf("%d/%d", r.ICacheHits, r.ICacheMisses),
			fmt.Sprintf("%d/%d", r.DCacheHits, r.DCacheMisses),
			fmt.Sprint(r.Allocations),
			fmt.Sprint(r.ProgramSwitches),
		})
	}

	table.Render()

	if h.config.Verbose {
		for _, r := range results {
			_, _ = fmt.Fprintf(h.config.Output, "%s: %s\n", r.Name, r.Description)
			if r.Error != "" {
				_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
			}
			_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		}
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,status,cycles,instructions,cpi,icache_hits,icache_misses,dcache_hits,dcache_misses,allocations,abandons,program_switches,peak_live")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Status,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.ICacheHits,
			r.ICacheMisses,
			r.DCacheHits,
			r.DCacheMisses,
			r.Allocations,
			r.Abandons,
			r.ProgramSwitches,
			r.PeakLive,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	Metadata ReportMetadata    `json:"metadata"`
	Results  []BenchmarkResult `json:"results"`
	Summary  ReportSummary     `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	Timestamp string      `json:"timestamp"`
	Config    core.Config `json:"config"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Passed            int           `json:"passed"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates a set of results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
		if r.Passed {
			summary.Passed++
		}
	}

	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}

	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config:    h.config.Core,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
