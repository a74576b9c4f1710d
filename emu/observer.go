package emu

import "github.com/sarchlab/umsim/insts"

// EventKind identifies what an Event reports.
type EventKind uint8

// Event kinds.
const (
	// EventExecute fires after an instruction is fetched and decoded, before
	// it executes.
	EventExecute EventKind = iota
	// EventRead fires on a successful array index.
	EventRead
	// EventWrite fires on a successful array amendment.
	EventWrite
	// EventAllocate fires after a new array is created.
	EventAllocate
	// EventAbandon fires after an array is released.
	EventAbandon
	// EventLoadProgram fires after the active array is switched.
	EventLoadProgram
)

var eventNames = []string{
	EventExecute:     "execute",
	EventRead:        "read",
	EventWrite:       "write",
	EventAllocate:    "allocate",
	EventAbandon:     "abandon",
	EventLoadProgram: "load-program",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event describes one observable step of execution.
type Event struct {
	Kind EventKind

	// PC and Inst identify the instruction that caused the event.
	PC   uint32
	Inst *insts.Instruction

	// Array is the active array for EventExecute, the target array for heap
	// events, and the new active array for EventLoadProgram.
	Array uint32

	// Offset is the word offset for EventRead and EventWrite, the array size
	// for EventAllocate, and the new program counter for EventLoadProgram.
	Offset uint32
}

// Observer receives execution events. Observers run synchronously on the
// emulator's goroutine and must not modify the emulator.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
