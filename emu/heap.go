package emu

import (
	"container/heap"
	"fmt"
	"math"
)

// ProgramArray is the identifier of the array that holds the program loaded
// at startup. It is never allocated or abandoned.
const ProgramArray uint32 = 0

// DefaultHeapLimit is the default word budget of a heap: 64Mi words, or
// 256 MiB of array storage.
const DefaultHeapLimit uint64 = 1 << 26

// Heap holds the machine's arrays, addressed by identifier.
//
// Identifiers index an arena of word buffers. Abandoned identifiers go onto a
// free list and are handed out again, smallest first, before any fresh
// identifier is minted, so a fixed sequence of Allocate and Abandon calls
// always yields the same identifiers.
type Heap struct {
	arrays [][]uint32
	live   []bool
	free   freeList

	liveCount int
	limit     uint32

	// words is the number of words held by live arrays, array 0 included.
	words     uint64
	wordLimit uint64
}

// NewHeap creates a heap whose array 0 holds a copy of program.
func NewHeap(program []uint32) *Heap {
	code := make([]uint32, len(program))
	copy(code, program)

	return &Heap{
		arrays:    [][]uint32{code},
		live:      []bool{true},
		liveCount: 1,
		limit:     math.MaxUint32,
		words:     uint64(len(code)),
		wordLimit: DefaultHeapLimit,
	}
}

// SetIdentifierLimit caps the largest identifier the heap will mint.
// Identifiers already handed out stay valid.
func (h *Heap) SetIdentifierLimit(max uint32) {
	h.limit = max
}

// SetWordLimit caps the total number of words held by live arrays. A limit
// of 0 restores DefaultHeapLimit.
func (h *Heap) SetWordLimit(words uint64) {
	if words == 0 {
		words = DefaultHeapLimit
	}
	h.wordLimit = words
}

// Words returns the number of words held by live arrays, including array 0.
func (h *Heap) Words() uint64 {
	return h.words
}

// Allocate creates a zero-filled array of size words and returns its
// identifier. The request is checked against the word budget before any
// storage is reserved.
func (h *Heap) Allocate(size uint32) (uint32, error) {
	if h.words+uint64(size) > h.wordLimit {
		return 0, fmt.Errorf("%w: %d words requested, %d of %d in use",
			ErrOutOfMemory, size, h.words, h.wordLimit)
	}

	var id uint32

	switch {
	case h.free.Len() > 0:
		id = heap.Pop(&h.free).(uint32)
	case uint64(len(h.arrays)) <= uint64(h.limit):
		id = uint32(len(h.arrays))
		h.arrays = append(h.arrays, nil)
		h.live = append(h.live, false)
	default:
		return 0, fmt.Errorf("%w: all %d identifiers in use", ErrOutOfIdentifiers, h.limit)
	}

	h.arrays[id] = make([]uint32, size)
	h.live[id] = true
	h.liveCount++
	h.words += uint64(size)

	return id, nil
}

// Abandon releases an array. Its identifier becomes available to a later
// Allocate.
func (h *Heap) Abandon(id uint32) error {
	if id == ProgramArray {
		return fmt.Errorf("%w: array 0 cannot be abandoned", ErrInvalidArray)
	}
	if !h.IsAllocated(id) {
		return fmt.Errorf("%w: array %d is not allocated", ErrInvalidArray, id)
	}

	h.words -= uint64(len(h.arrays[id]))
	h.arrays[id] = nil
	h.live[id] = false
	h.liveCount--
	heap.Push(&h.free, id)

	return nil
}

// IsAllocated reports whether id names a live array. Array 0 is always live.
func (h *Heap) IsAllocated(id uint32) bool {
	return uint64(id) < uint64(len(h.live)) && h.live[id]
}

// Array returns the words of a live array. The slice aliases heap storage and
// is only valid until the array is abandoned.
func (h *Heap) Array(id uint32) ([]uint32, error) {
	if !h.IsAllocated(id) {
		return nil, fmt.Errorf("%w: array %d is not allocated", ErrInvalidArray, id)
	}
	return h.arrays[id], nil
}

// Size returns the length of a live array in words.
func (h *Heap) Size(id uint32) (uint32, error) {
	words, err := h.Array(id)
	if err != nil {
		return 0, err
	}
	return uint32(len(words)), nil
}

// Read returns the word at offset in array id.
func (h *Heap) Read(id, offset uint32) (uint32, error) {
	words, err := h.Array(id)
	if err != nil {
		return 0, err
	}
	if uint64(offset) >= uint64(len(words)) {
		return 0, fmt.Errorf("%w: offset %d, array %d has %d words",
			ErrOutOfBounds, offset, id, len(words))
	}
	return words[offset], nil
}

// Write stores value at offset in array id.
func (h *Heap) Write(id, offset, value uint32) error {
	words, err := h.Array(id)
	if err != nil {
		return err
	}
	if uint64(offset) >= uint64(len(words)) {
		return fmt.Errorf("%w: offset %d, array %d has %d words",
			ErrOutOfBounds, offset, id, len(words))
	}
	words[offset] = value
	return nil
}

// Live returns the number of live arrays, including array 0.
func (h *Heap) Live() int {
	return h.liveCount
}

// freeList is a min-heap of abandoned identifiers.
type freeList []uint32

func (f freeList) Len() int           { return len(f) }
func (f freeList) Less(i, j int) bool { return f[i] < f[j] }
func (f freeList) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func (f *freeList) Push(x any) {
	*f = append(*f, x.(uint32))
}

func (f *freeList) Pop() any {
	old := *f
	n := len(old)
	id := old[n-1]
	*f = old[:n-1]
	return id
}
