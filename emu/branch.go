package emu

import "fmt"

// BranchUnit resolves load-program, the machine's only control transfer.
type BranchUnit struct {
	regFile *RegFile
	heap    *Heap
}

// NewBranchUnit creates a new BranchUnit connected to the given register
// file and heap.
func NewBranchUnit(regFile *RegFile, heap *Heap) *BranchUnit {
	return &BranchUnit{regFile: regFile, heap: heap}
}

// LoadProgram returns the array named by rb and the offset in rc as the
// next place to fetch from. The array must be live; the offset is checked
// at the next fetch.
func (b *BranchUnit) LoadProgram(rb, rc uint8) (array, pc uint32, err error) {
	array = b.regFile.ReadReg(rb)
	pc = b.regFile.ReadReg(rc)

	if !b.heap.IsAllocated(array) {
		return 0, 0, fmt.Errorf("%w: cannot load program from array %d", ErrInvalidArray, array)
	}

	return array, pc, nil
}
