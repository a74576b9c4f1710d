package emu

import (
	"bufio"
	"io"
	"math"
)

// EndOfInput is the word an input instruction stores once the input source
// is exhausted.
const EndOfInput uint32 = math.MaxUint32

// OutputPort is the byte sink used by the output instruction. Bytes must be
// delivered in the order they are written.
type OutputPort interface {
	WriteByte(c byte) error
}

// InputPort is the byte source used by the input instruction. ReadByte
// returns io.EOF once the source is exhausted and may block until a byte is
// available.
type InputPort interface {
	ReadByte() (byte, error)
}

// flusher is implemented by ports that buffer output.
type flusher interface {
	Flush() error
}

// Console adapts a reader and a writer to the machine's ports.
//
// Output is buffered and flushed whenever the program asks for input, so
// prompts reach the user before the machine blocks, and on Flush.
type Console struct {
	in  *bufio.Reader
	out *bufio.Writer
}

// NewConsole creates a console. A nil reader behaves as empty input; a nil
// writer discards output.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	if out == nil {
		out = io.Discard
	}
	c.out = bufio.NewWriter(out)
	return c
}

// WriteByte implements OutputPort.
func (c *Console) WriteByte(b byte) error {
	return c.out.WriteByte(b)
}

// ReadByte implements InputPort.
func (c *Console) ReadByte() (byte, error) {
	if err := c.out.Flush(); err != nil {
		return 0, err
	}
	if c.in == nil {
		return 0, io.EOF
	}
	return c.in.ReadByte()
}

// Flush writes any buffered output.
func (c *Console) Flush() error {
	return c.out.Flush()
}
