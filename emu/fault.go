package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/umsim/insts"
)

// Fault reasons. Every fault is fatal to the running instance.
var (
	// ErrIllegalOpcode is raised when a word's opcode has no instruction.
	ErrIllegalOpcode = errors.New("illegal opcode")

	// ErrInvalidArray is raised when an identifier does not name an
	// allocated array.
	ErrInvalidArray = errors.New("invalid array")

	// ErrOutOfBounds is raised when an offset is not below the array length.
	ErrOutOfBounds = errors.New("offset out of bounds")

	// ErrDivisionByZero is raised by division or modulo with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrPCOutOfBounds is raised when the program counter is not below the
	// length of the active array.
	ErrPCOutOfBounds = errors.New("program counter out of bounds")

	// ErrOutOfIdentifiers is raised when the heap cannot mint a new array
	// identifier.
	ErrOutOfIdentifiers = errors.New("out of array identifiers")

	// ErrOutOfMemory is raised when an allocation would take the heap past
	// its word budget.
	ErrOutOfMemory = errors.New("heap word budget exhausted")

	// ErrIO is raised when an I/O port fails with something other than
	// end of input.
	ErrIO = errors.New("i/o port failure")
)

// ErrInstructionLimit is returned when a bounded run exhausts its
// instruction budget. It is not a fault: the budget applies per call to
// Run, so a later Run continues where the previous one stopped.
var ErrInstructionLimit = errors.New("max instructions reached")

var faultReasons = []error{
	ErrIllegalOpcode,
	ErrInvalidArray,
	ErrOutOfBounds,
	ErrDivisionByZero,
	ErrPCOutOfBounds,
	ErrOutOfIdentifiers,
	ErrOutOfMemory,
	ErrIO,
}

// Fault describes the failure that stopped an instance.
type Fault struct {
	// Reason is one of the Err* fault sentinels.
	Reason error

	// PC is the offset of the faulting instruction in the active array.
	PC uint32

	// Array is the identifier of the active array at the time of the fault.
	Array uint32

	// Inst is the faulting instruction, nil if the fault happened on fetch.
	Inst *insts.Instruction

	cause error
}

func newFault(cause error, pc, array uint32, inst *insts.Instruction) *Fault {
	f := &Fault{
		Reason: ErrIO,
		PC:     pc,
		Array:  array,
		Inst:   inst,
		cause:  cause,
	}

	for _, reason := range faultReasons {
		if errors.Is(cause, reason) {
			f.Reason = reason
			return f
		}
	}

	f.cause = fmt.Errorf("%w: %w", ErrIO, cause)
	return f
}

// Error implements error.
func (f *Fault) Error() string {
	where := fmt.Sprintf("array %d pc %d", f.Array, f.PC)
	if f.Inst != nil {
		where += fmt.Sprintf(" (%s)", f.Inst)
	}
	return fmt.Sprintf("fault at %s: %v", where, f.cause)
}

// Unwrap returns the underlying cause, which always wraps Reason.
func (f *Fault) Unwrap() error {
	return f.cause
}
