// Package latency provides instruction timing models for the word machine.
//
// Latencies are configured via TimingConfig and looked up per decoded
// instruction.
package latency

import (
	"github.com/sarchlab/umsim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given instruction.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Op {
	case insts.OpAdd, insts.OpSub, insts.OpNand, insts.OpConditionalMove, insts.OpLoadImmediate:
		return t.config.ALULatency

	case insts.OpMul:
		return t.config.MultiplyLatency

	case insts.OpDiv, insts.OpMod:
		return t.config.DivideLatency

	case insts.OpArrayIndex, insts.OpArrayAmendment:
		return t.config.ArrayLatency

	case insts.OpAlloc:
		return t.config.AllocLatency

	case insts.OpAbandon:
		return t.config.AbandonLatency

	case insts.OpInput, insts.OpOutput:
		return t.config.IOLatency

	case insts.OpLoadProgram:
		return t.config.BranchLatency

	default:
		return 1
	}
}

// IsMemoryOp returns true if the instruction reads or writes an array.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpArrayIndex || inst.Op == insts.OpArrayAmendment
}

// IsBranchOp returns true if the instruction transfers control.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLoadProgram
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
