package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/umsim/insts"
)

// Status is the execution state of an emulator.
type Status uint8

// Execution states. Halted and Faulted are terminal.
const (
	StatusRunning Status = iota
	StatusHalted
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusHalted:
		return "halted"
	case StatusFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the instruction was a halt.
	Halted bool

	// Err is set if execution cannot continue: a *Fault, or
	// ErrInstructionLimit for a bounded run.
	Err error
}

// Result is the outcome of Run.
type Result struct {
	// Status is StatusHalted or StatusFaulted, or StatusRunning when a
	// bounded run stopped early.
	Status Status

	// Fault is set when Status is StatusFaulted.
	Fault *Fault

	// Instructions is the number of instructions completed.
	Instructions uint64
}

// Err returns the error that ended the run, nil on a normal halt.
func (r Result) Err() error {
	switch r.Status {
	case StatusFaulted:
		return r.Fault
	case StatusRunning:
		return ErrInstructionLimit
	default:
		return nil
	}
}

// Emulator executes machine words functionally.
type Emulator struct {
	regFile *RegFile
	heap    *Heap
	decoder *insts.Decoder
	alu     *ALU
	lsu     *LoadStoreUnit
	branch  *BranchUnit

	// I/O
	stdin  io.Reader
	stdout io.Writer
	input  InputPort
	output OutputPort

	observers []Observer

	// Execution state
	pc     uint32
	active uint32
	status Status
	fault  *Fault

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit, counted per Run
	runStart         uint64 // instructionCount when the current Run began
	identifierLimit  uint32 // 0 means no limit
	heapLimit        uint64 // 0 means DefaultHeapLimit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithOutput sets the writer that receives output bytes. Output is buffered
// and flushed before input is read and when the machine stops.
func WithOutput(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithInput sets the reader that supplies input bytes.
func WithInput(r io.Reader) EmulatorOption {
	return func(e *Emulator) {
		e.stdin = r
	}
}

// WithOutputPort sets a custom output port. It takes precedence over
// WithOutput.
func WithOutputPort(p OutputPort) EmulatorOption {
	return func(e *Emulator) {
		e.output = p
	}
}

// WithInputPort sets a custom input port. It takes precedence over
// WithInput.
func WithInputPort(p InputPort) EmulatorOption {
	return func(e *Emulator) {
		e.input = p
	}
}

// WithObserver registers an observer for execution events.
func WithObserver(o Observer) EmulatorOption {
	return func(e *Emulator) {
		e.observers = append(e.observers, o)
	}
}

// WithMaxInstructions sets the maximum number of instructions a single Run
// may complete. A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithIdentifierLimit caps the largest array identifier the heap will mint.
// A value of 0 means no limit.
func WithIdentifierLimit(max uint32) EmulatorOption {
	return func(e *Emulator) {
		e.identifierLimit = max
	}
}

// WithHeapLimit caps the total number of words held by live arrays.
// Allocations past the budget fault with ErrOutOfMemory. A value of 0 keeps
// DefaultHeapLimit.
func WithHeapLimit(words uint64) EmulatorOption {
	return func(e *Emulator) {
		e.heapLimit = words
	}
}

// NewEmulator creates a new emulator with an empty program.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := &RegFile{}

	e := &Emulator{
		regFile: regFile,
		decoder: insts.NewDecoder(),
		alu:     NewALU(regFile),
		stdout:  os.Stdout,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.input == nil || e.output == nil {
		console := NewConsole(e.stdin, e.stdout)
		if e.input == nil {
			e.input = console
		}
		if e.output == nil {
			e.output = console
		}
	}

	e.LoadProgram(nil)

	return e
}

// Run executes program on a fresh emulator until it halts, faults, or
// reaches the instruction limit.
func Run(program []uint32, opts ...EmulatorOption) Result {
	e := NewEmulator(opts...)
	e.LoadProgram(program)
	return e.Run()
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Heap returns the emulator's heap.
func (e *Emulator) Heap() *Heap {
	return e.heap
}

// PC returns the program counter.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// ActiveArray returns the identifier of the array instructions are fetched
// from.
func (e *Emulator) ActiveArray() uint32 {
	return e.active
}

// Status returns the execution state.
func (e *Emulator) Status() Status {
	return e.status
}

// Fault returns the fault that stopped the emulator, if any.
func (e *Emulator) Fault() *Fault {
	return e.fault
}

// InstructionCount returns the number of instructions completed since the
// program was loaded. A faulting instruction is not counted.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram resets the machine and installs program as array 0. Registers
// are cleared and execution restarts at offset 0 of array 0.
func (e *Emulator) LoadProgram(program []uint32) {
	e.heap = NewHeap(program)
	if e.identifierLimit > 0 {
		e.heap.SetIdentifierLimit(e.identifierLimit)
	}
	e.heap.SetWordLimit(e.heapLimit)
	e.lsu = NewLoadStoreUnit(e.regFile, e.heap)
	e.branch = NewBranchUnit(e.regFile, e.heap)

	*e.regFile = RegFile{}
	e.pc = 0
	e.active = ProgramArray
	e.status = StatusRunning
	e.fault = nil
	e.instructionCount = 0
	e.runStart = 0
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	switch e.status {
	case StatusHalted:
		return StepResult{Halted: true}
	case StatusFaulted:
		return StepResult{Err: e.fault}
	}

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount-e.runStart >= e.maxInstructions {
		return StepResult{Err: ErrInstructionLimit}
	}

	// 1. Fetch from the active array
	code, err := e.heap.Array(e.active)
	if err != nil {
		return e.raise(err, nil)
	}
	if uint64(e.pc) >= uint64(len(code)) {
		return e.raise(fmt.Errorf("%w: pc %d, array %d has %d words",
			ErrPCOutOfBounds, e.pc, e.active, len(code)), nil)
	}

	// 2. Decode
	inst := e.decoder.Decode(code[e.pc])
	e.notify(Event{Kind: EventExecute, PC: e.pc, Array: e.active, Inst: inst})

	// 3. Execute. A faulting instruction does not complete and is not
	// counted.
	result := e.execute(inst)
	if result.Err == nil {
		e.instructionCount++
	}

	return result
}

// Run executes instructions until the program halts, faults, or reaches
// the instruction limit.
func (e *Emulator) Run() Result {
	e.runStart = e.instructionCount

	for {
		result := e.Step()
		if result.Halted || result.Err != nil {
			break
		}
	}

	if e.status == StatusRunning {
		// Bounded stop: make what was emitted so far visible.
		e.flush()
	}

	return Result{
		Status:       e.status,
		Fault:        e.fault,
		Instructions: e.instructionCount,
	}
}

// execute dispatches and executes a decoded instruction.
func (e *Emulator) execute(inst *insts.Instruction) StepResult {
	regs := e.regFile

	switch inst.Op {
	case insts.OpConditionalMove:
		e.alu.CMOV(inst.A, inst.B, inst.C)
	case insts.OpArrayIndex:
		if err := e.executeIndex(inst); err != nil {
			return e.raise(err, inst)
		}
	case insts.OpArrayAmendment:
		if err := e.executeAmend(inst); err != nil {
			return e.raise(err, inst)
		}
	case insts.OpAdd:
		e.alu.ADD(inst.A, inst.B, inst.C)
	case insts.OpMul:
		e.alu.MUL(inst.A, inst.B, inst.C)
	case insts.OpDiv:
		if err := e.alu.DIV(inst.A, inst.B, inst.C); err != nil {
			return e.raise(err, inst)
		}
	case insts.OpNand:
		e.alu.NAND(inst.A, inst.B, inst.C)
	case insts.OpHalt:
		return e.halt(inst)
	case insts.OpAlloc:
		if err := e.executeAlloc(inst); err != nil {
			return e.raise(err, inst)
		}
	case insts.OpAbandon:
		if err := e.executeAbandon(inst); err != nil {
			return e.raise(err, inst)
		}
	case insts.OpOutput:
		if err := e.output.WriteByte(byte(regs.ReadReg(inst.C))); err != nil {
			return e.raise(err, inst)
		}
	case insts.OpInput:
		if err := e.executeInput(inst); err != nil {
			return e.raise(err, inst)
		}
	case insts.OpLoadProgram:
		if err := e.executeLoadProgram(inst); err != nil {
			return e.raise(err, inst)
		}
		return StepResult{} // PC already updated
	case insts.OpLoadImmediate:
		e.alu.LDI(inst.A, inst.Imm)
	case insts.OpSub:
		e.alu.SUB(inst.A, inst.B, inst.C)
	case insts.OpMod:
		if err := e.alu.MOD(inst.A, inst.B, inst.C); err != nil {
			return e.raise(err, inst)
		}
	default:
		return e.raise(fmt.Errorf("%w: 0x%08X", ErrIllegalOpcode, inst.Word), inst)
	}

	e.pc++

	return StepResult{}
}

// executeIndex loads ra = array[rb][rc].
func (e *Emulator) executeIndex(inst *insts.Instruction) error {
	id, offset, err := e.lsu.Index(inst.A, inst.B, inst.C)
	if err != nil {
		return err
	}

	e.notify(Event{Kind: EventRead, PC: e.pc, Inst: inst, Array: id, Offset: offset})
	return nil
}

// executeAmend stores array[ra][rb] = rc.
func (e *Emulator) executeAmend(inst *insts.Instruction) error {
	id, offset, err := e.lsu.Amend(inst.A, inst.B, inst.C)
	if err != nil {
		return err
	}

	e.notify(Event{Kind: EventWrite, PC: e.pc, Inst: inst, Array: id, Offset: offset})
	return nil
}

// executeAlloc creates an array of rb words and stores its identifier in ra.
func (e *Emulator) executeAlloc(inst *insts.Instruction) error {
	size := e.regFile.ReadReg(inst.B)

	id, err := e.heap.Allocate(size)
	if err != nil {
		return err
	}

	e.regFile.WriteReg(inst.A, id)
	e.notify(Event{Kind: EventAllocate, PC: e.pc, Inst: inst, Array: id, Offset: size})
	return nil
}

// executeAbandon releases the array named by rc.
func (e *Emulator) executeAbandon(inst *insts.Instruction) error {
	id := e.regFile.ReadReg(inst.C)

	if err := e.heap.Abandon(id); err != nil {
		return err
	}

	e.notify(Event{Kind: EventAbandon, PC: e.pc, Inst: inst, Array: id})
	return nil
}

// executeInput reads one byte into rc, or EndOfInput once input is exhausted.
func (e *Emulator) executeInput(inst *insts.Instruction) error {
	b, err := e.input.ReadByte()
	switch {
	case errors.Is(err, io.EOF):
		e.regFile.WriteReg(inst.C, EndOfInput)
	case err != nil:
		return err
	default:
		e.regFile.WriteReg(inst.C, uint32(b))
	}
	return nil
}

// executeLoadProgram switches the active array to rb and sets pc to rc.
// The switch swaps which array is fetched from; nothing is copied.
func (e *Emulator) executeLoadProgram(inst *insts.Instruction) error {
	id, target, err := e.branch.LoadProgram(inst.B, inst.C)
	if err != nil {
		return err
	}

	from := e.pc
	e.active = id
	e.pc = target
	e.notify(Event{Kind: EventLoadProgram, PC: from, Inst: inst, Array: id, Offset: target})
	return nil
}

// halt stops the machine normally.
func (e *Emulator) halt(inst *insts.Instruction) StepResult {
	if err := e.flush(); err != nil {
		return e.raise(err, inst)
	}

	e.status = StatusHalted
	return StepResult{Halted: true}
}

// raise moves the machine into the faulted state. The program counter is left
// on the faulting instruction.
func (e *Emulator) raise(err error, inst *insts.Instruction) StepResult {
	e.fault = newFault(err, e.pc, e.active, inst)
	e.status = StatusFaulted
	_ = e.flush()
	return StepResult{Err: e.fault}
}

func (e *Emulator) flush() error {
	if f, ok := e.output.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func (e *Emulator) notify(ev Event) {
	for _, o := range e.observers {
		o.Observe(ev)
	}
}
