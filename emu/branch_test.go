package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/umsim/emu"
)

var _ = Describe("BranchUnit", func() {
	var (
		regFile    *emu.RegFile
		heap       *emu.Heap
		branchUnit *emu.BranchUnit
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		heap = emu.NewHeap([]uint32{0, 0, 0})
		branchUnit = emu.NewBranchUnit(regFile, heap)
	})

	It("should jump within array 0", func() {
		regFile.WriteReg(2, 2)

		array, pc, err := branchUnit.LoadProgram(1, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(array).To(Equal(uint32(0)))
		Expect(pc).To(Equal(uint32(2)))
	})

	It("should switch to an allocated array", func() {
		id, err := heap.Allocate(4)
		Expect(err).NotTo(HaveOccurred())
		regFile.WriteReg(1, id)
		regFile.WriteReg(2, 3)

		array, pc, err := branchUnit.LoadProgram(1, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(array).To(Equal(id))
		Expect(pc).To(Equal(uint32(3)))
	})

	It("should leave the offset check to the next fetch", func() {
		regFile.WriteReg(2, 1000)

		_, pc, err := branchUnit.LoadProgram(1, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(pc).To(Equal(uint32(1000)))
	})

	It("should reject an array that was never allocated", func() {
		regFile.WriteReg(1, 9)

		_, _, err := branchUnit.LoadProgram(1, 2)
		Expect(err).To(MatchError(emu.ErrInvalidArray))
	})

	It("should reject an abandoned array", func() {
		id, _ := heap.Allocate(1)
		Expect(heap.Abandon(id)).To(Succeed())
		regFile.WriteReg(1, id)

		_, _, err := branchUnit.LoadProgram(1, 2)
		Expect(err).To(MatchError(emu.ErrInvalidArray))
	})
})
