// Package core provides the timed model of the machine.
// It wraps the functional emulator and charges cycles for every event it
// reports: per-opcode latency, instruction fetch through an I-cache, array
// accesses through a D-cache, and a penalty for switching program arrays.
package core

import (
	"fmt"

	"github.com/sarchlab/umsim/emu"
	"github.com/sarchlab/umsim/timing/cache"
	"github.com/sarchlab/umsim/timing/latency"
)

// Config collects the timing parameters of a core.
type Config struct {
	Latency *latency.TimingConfig
	ICache  cache.Config
	DCache  cache.Config
}

// DefaultConfig returns the default latency table and cache geometries.
func DefaultConfig() Config {
	return Config{
		Latency: latency.DefaultTimingConfig(),
		ICache:  cache.DefaultICacheConfig(),
		DCache:  cache.DefaultDCacheConfig(),
	}
}

// Validate checks every part of the configuration.
func (c Config) Validate() error {
	if c.Latency != nil {
		if err := c.Latency.Validate(); err != nil {
			return fmt.Errorf("latency: %w", err)
		}
	}
	if err := c.ICache.Validate(); err != nil {
		return fmt.Errorf("icache: %w", err)
	}
	if err := c.DCache.Validate(); err != nil {
		return fmt.Errorf("dcache: %w", err)
	}
	return nil
}

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed.
	Instructions uint64
	// ProgramSwitches counts load-program instructions that changed the
	// active array.
	ProgramSwitches uint64
	// Allocations and Abandons count heap operations.
	Allocations uint64
	Abandons    uint64
	// PeakLive is the largest number of live arrays seen, array 0 included.
	PeakLive int

	ICache cache.Statistics
	DCache cache.Statistics
}

// CPI returns cycles per instruction, or 0 before the first instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core runs a program on the functional emulator while keeping time.
type Core struct {
	emulator *emu.Emulator
	latency  *latency.Table
	icache   *cache.Cache
	dcache   *cache.Cache

	stats Stats

	// fetchArray is the array the last instruction was fetched from.
	fetchArray uint32
}

// NewCore creates a core. Emulator options such as ports and limits are
// passed through; the core adds its own observer. A nil Latency selects the
// default table; cache geometries must be valid.
func NewCore(config Config, opts ...emu.EmulatorOption) (*Core, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid core config: %w", err)
	}

	table := latency.NewTable()
	if config.Latency != nil {
		table = latency.NewTableWithConfig(config.Latency)
	}

	c := &Core{
		latency: table,
		icache:  cache.New(config.ICache),
		dcache:  cache.New(config.DCache),
	}

	opts = append(opts, emu.WithObserver(emu.ObserverFunc(c.observe)))
	c.emulator = emu.NewEmulator(opts...)
	c.stats.PeakLive = c.emulator.Heap().Live()

	return c, nil
}

// Emulator returns the underlying functional emulator.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// LoadProgram installs a program and clears timing state.
func (c *Core) LoadProgram(program []uint32) {
	c.emulator.LoadProgram(program)
	c.icache.Reset()
	c.dcache.Reset()
	c.stats = Stats{PeakLive: c.emulator.Heap().Live()}
	c.fetchArray = emu.ProgramArray
}

// Tick executes one instruction.
func (c *Core) Tick() emu.StepResult {
	return c.emulator.Step()
}

// Halted reports whether the program has stopped, normally or by fault.
func (c *Core) Halted() bool {
	return c.emulator.Status() != emu.StatusRunning
}

// Run executes until the program halts, faults or reaches the
// instruction limit.
func (c *Core) Run() emu.Result {
	return c.emulator.Run()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.stats
	s.Instructions = c.emulator.InstructionCount()
	s.ICache = c.icache.Stats()
	s.DCache = c.dcache.Stats()
	return s
}

func (c *Core) observe(ev emu.Event) {
	switch ev.Kind {
	case emu.EventExecute:
		// Charged before execution, so a faulting instruction costs its
		// cycles without being counted as completed.
		c.fetchArray = ev.Array
		c.stats.Cycles += c.latency.GetLatency(ev.Inst)
		c.stats.Cycles += c.icache.Read(cache.Address(ev.Array, ev.PC)).Latency

	case emu.EventRead:
		c.stats.Cycles += c.dcache.Read(cache.Address(ev.Array, ev.Offset)).Latency

	case emu.EventWrite:
		c.stats.Cycles += c.dcache.Write(cache.Address(ev.Array, ev.Offset)).Latency

	case emu.EventAllocate:
		c.stats.Allocations++
		if live := c.emulator.Heap().Live(); live > c.stats.PeakLive {
			c.stats.PeakLive = live
		}

	case emu.EventAbandon:
		c.stats.Abandons++
		c.icache.InvalidateArray(ev.Array)
		c.dcache.InvalidateArray(ev.Array)

	case emu.EventLoadProgram:
		if ev.Array != c.fetchArray {
			c.stats.ProgramSwitches++
			c.stats.Cycles += c.latency.Config().ProgramSwitchPenalty
		}
	}
}
