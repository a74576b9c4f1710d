package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/tliron/commonlog"

	"github.com/sarchlab/umsim/emu"
	"github.com/sarchlab/umsim/loader"
	"github.com/sarchlab/umsim/timing/core"
)

var log = commonlog.GetLogger("umsim")

// errFaulted is returned when the program stops on a fault. The fault
// itself has already been reported.
var errFaulted = errors.New("program faulted")

// runOptions collects everything a single run needs.
type runOptions struct {
	programPath string
	config      *RunConfig
	timing      bool
	trace       bool
	verbose     bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// runProgram loads an image, runs it and reports how it ended.
func runProgram(opts runOptions) (emu.Result, error) {
	prog, err := loader.Load(opts.programPath)
	if err != nil {
		return emu.Result{}, fmt.Errorf("error loading program: %w", err)
	}
	log.Infof("loaded %s: %d words", prog.Path, prog.Len())

	emuOpts := []emu.EmulatorOption{
		emu.WithInput(opts.stdin),
		emu.WithOutput(opts.stdout),
		emu.WithMaxInstructions(opts.config.MaxInstructions),
		emu.WithHeapLimit(opts.config.HeapLimit),
	}
	if opts.config.IdentifierLimit > 0 {
		emuOpts = append(emuOpts, emu.WithIdentifierLimit(opts.config.IdentifierLimit))
	}
	if opts.trace {
		emuOpts = append(emuOpts, emu.WithObserver(traceObserver{}))
	}

	var (
		result    emu.Result
		emulator  *emu.Emulator
		timedCore *core.Core
	)

	if opts.timing {
		timedCore, err = core.NewCore(opts.config.Core(), emuOpts...)
		if err != nil {
			return emu.Result{}, err
		}
		timedCore.LoadProgram(prog.Words)
		emulator = timedCore.Emulator()
		result = timedCore.Run()
	} else {
		emulator = emu.NewEmulator(emuOpts...)
		emulator.LoadProgram(prog.Words)
		result = emulator.Run()
	}

	switch result.Status {
	case emu.StatusHalted:
		log.Infof("halted after %d instructions", result.Instructions)
	case emu.StatusRunning:
		log.Noticef("stopped at instruction limit %d (array %d pc %d)",
			opts.config.MaxInstructions, emulator.ActiveArray(), emulator.PC())
	case emu.StatusFaulted:
		reportFault(opts.stderr, result.Fault)
		if opts.verbose {
			dumpState(opts.stderr, emulator)
		}
	}

	if timedCore != nil {
		printStats(opts.stderr, opts.programPath, result, timedCore.Stats())
	}

	if result.Status == emu.StatusFaulted {
		return result, errFaulted
	}
	return result, nil
}

func reportFault(w io.Writer, fault *emu.Fault) {
	banner := color.New(color.FgRed, color.Bold)
	_, _ = banner.Fprintf(w, "FAULT: %v\n", fault.Reason)
	_, _ = fmt.Fprintf(w, "  %v\n", fault)
}

// machineState is what a verbose fault report dumps.
type machineState struct {
	Registers   [emu.NumRegs]uint32
	ActiveArray uint32
	PC          uint32
	LiveArrays  int
	Executed    uint64
}

func dumpState(w io.Writer, e *emu.Emulator) {
	state := machineState{
		Registers:   e.RegFile().Snapshot(),
		ActiveArray: e.ActiveArray(),
		PC:          e.PC(),
		LiveArrays:  e.Heap().Live(),
		Executed:    e.InstructionCount(),
	}

	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true}
	cfg.Fdump(w, state)
}

func printStats(w io.Writer, programPath string, result emu.Result, stats core.Stats) {
	_, _ = fmt.Fprintf(w, "\nProgram: %s\n", programPath)
	_, _ = fmt.Fprintf(w, "Status: %s\n", result.Status)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Instructions", fmt.Sprint(stats.Instructions)},
		{"Cycles", fmt.Sprint(stats.Cycles)},
		{"CPI", fmt.Sprintf("%.2f", stats.CPI())},
		{"I-cache hits", fmt.Sprint(stats.ICache.Hits)},
		{"I-cache misses", fmt.Sprint(stats.ICache.Misses)},
		{"D-cache hits", fmt.Sprint(stats.DCache.Hits)},
		{"D-cache misses", fmt.Sprint(stats.DCache.Misses)},
		{"Allocations", fmt.Sprint(stats.Allocations)},
		{"Abandons", fmt.Sprint(stats.Abandons)},
		{"Peak live arrays", fmt.Sprint(stats.PeakLive)},
		{"Program switches", fmt.Sprint(stats.ProgramSwitches)},
	})
	table.Render()
}

// traceObserver logs every execution event at debug level.
type traceObserver struct{}

func (traceObserver) Observe(ev emu.Event) {
	switch ev.Kind {
	case emu.EventExecute:
		log.Debugf("[%d:%d] %s", ev.Array, ev.PC, ev.Inst)
	case emu.EventRead, emu.EventWrite:
		log.Debugf("  %s array %d offset %d", ev.Kind, ev.Array, ev.Offset)
	case emu.EventAllocate:
		log.Debugf("  allocate array %d size %d", ev.Array, ev.Offset)
	case emu.EventAbandon:
		log.Debugf("  abandon array %d", ev.Array)
	case emu.EventLoadProgram:
		log.Debugf("  load-program array %d pc %d", ev.Array, ev.Offset)
	}
}
