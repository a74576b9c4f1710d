package emu_test

import (
	"bytes"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/umsim/emu"
	"github.com/sarchlab/umsim/insts"
)

var _ = Describe("Console", func() {
	It("should buffer output until flushed", func() {
		out := &bytes.Buffer{}
		console := emu.NewConsole(nil, out)

		Expect(console.WriteByte('h')).To(Succeed())
		Expect(console.WriteByte('i')).To(Succeed())
		Expect(out.Len()).To(BeZero())

		Expect(console.Flush()).To(Succeed())
		Expect(out.String()).To(Equal("hi"))
	})

	It("should flush pending output before reading input", func() {
		out := &bytes.Buffer{}
		console := emu.NewConsole(strings.NewReader("x"), out)

		Expect(console.WriteByte('>')).To(Succeed())
		b, err := console.ReadByte()

		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal(byte('x')))
		Expect(out.String()).To(Equal(">"))
	})

	It("should report end of input", func() {
		console := emu.NewConsole(strings.NewReader(""), nil)
		_, err := console.ReadByte()
		Expect(err).To(MatchError(io.EOF))

		empty := emu.NewConsole(nil, nil)
		_, err = empty.ReadByte()
		Expect(err).To(MatchError(io.EOF))
	})

	It("should echo input through the machine", func() {
		// Reads until end of input, where r1 + 1 wraps to zero and the
		// conditional move leaves the exit target in place.
		out := &bytes.Buffer{}
		echo := []uint32{
			insts.EncodeInput(1),          // 0
			insts.EncodeImmediate(3, 1),   // 1
			insts.EncodeAdd(4, 1, 3),      // 2: r4 == 0 at end of input
			insts.EncodeImmediate(5, 9),   // 3: exit target
			insts.EncodeImmediate(6, 7),   // 4: print target
			insts.EncodeCMov(5, 6, 4),     // 5: r5 = 7 unless end of input
			insts.EncodeLoadProgram(0, 5), // 6
			insts.EncodeOutput(1),         // 7
			insts.EncodeLoadProgram(0, 0), // 8: back to 0 (r0 == 0)
			insts.EncodeHalt(),            // 9
		}

		result := emu.Run(echo, emu.WithInput(strings.NewReader("echo")), emu.WithOutput(out))

		Expect(result.Status).To(Equal(emu.StatusHalted))
		Expect(out.String()).To(Equal("echo"))
	})
})
