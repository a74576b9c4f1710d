package emu

// LoadStoreUnit implements the array index and amendment instructions.
type LoadStoreUnit struct {
	regFile *RegFile
	heap    *Heap
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and heap.
func NewLoadStoreUnit(regFile *RegFile, heap *Heap) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		heap:    heap,
	}
}

// Index performs ra = array[rb][rc] and returns the word it read from.
// The destination is left untouched on a fault.
func (lsu *LoadStoreUnit) Index(ra, rb, rc uint8) (id, offset uint32, err error) {
	id = lsu.regFile.ReadReg(rb)
	offset = lsu.regFile.ReadReg(rc)

	value, err := lsu.heap.Read(id, offset)
	if err != nil {
		return id, offset, err
	}

	lsu.regFile.WriteReg(ra, value)
	return id, offset, nil
}

// Amend performs array[ra][rb] = rc and returns the word it wrote to.
func (lsu *LoadStoreUnit) Amend(ra, rb, rc uint8) (id, offset uint32, err error) {
	id = lsu.regFile.ReadReg(ra)
	offset = lsu.regFile.ReadReg(rb)

	return id, offset, lsu.heap.Write(id, offset, lsu.regFile.ReadReg(rc))
}
