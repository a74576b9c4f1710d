// Package emu provides functional emulation of the 32-bit word machine.
package emu

// NumRegs is the number of general-purpose registers.
const NumRegs = 8

// RegFile represents the machine register file: eight 32-bit registers.
// All arithmetic on register values wraps modulo 2^32.
type RegFile struct {
	// R holds the general-purpose registers r0-r7.
	R [NumRegs]uint32
}

// ReadReg reads a register value. The index is masked to three bits, the
// width of every register field in an instruction word.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.R[reg&(NumRegs-1)]
}

// WriteReg writes a value to a register.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.R[reg&(NumRegs-1)] = value
}

// Snapshot returns a copy of all register values.
func (r *RegFile) Snapshot() [NumRegs]uint32 {
	return r.R
}
