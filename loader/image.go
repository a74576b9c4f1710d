// Package loader provides program-image loading for the word machine.
//
// A program image is a flat sequence of 32-bit instruction words stored
// big-endian, four bytes per word, with no header. The loader hands the
// engine the words and nothing else; it does not look at what they encode.
package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WordSize is the size of one instruction word in an image, in bytes.
const WordSize = 4

// Program represents a loaded image ready for execution.
type Program struct {
	// Path is the file the image was read from, empty for in-memory images.
	Path string
	// Words holds the instruction words that become array 0.
	Words []uint32
}

// Len returns the number of words in the program.
func (p *Program) Len() int {
	return len(p.Words)
}

// Load reads a program image from a file.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program image: %w", err)
	}
	defer func() { _ = f.Close() }()

	words, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Program{Path: path, Words: words}, nil
}

// Parse decodes an image from r. The image length must be a multiple of
// WordSize.
func Parse(r io.Reader) ([]uint32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}

	return Decode(data)
}

// Decode converts raw image bytes into words.
func Decode(data []byte) ([]uint32, error) {
	if len(data)%WordSize != 0 {
		return nil, fmt.Errorf("image size %d is not a multiple of %d bytes",
			len(data), WordSize)
	}

	words := make([]uint32, len(data)/WordSize)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[i*WordSize:])
	}

	return words, nil
}

// Encode converts words into raw image bytes.
func Encode(words []uint32) []byte {
	data := make([]byte, len(words)*WordSize)
	for i, w := range words {
		binary.BigEndian.PutUint32(data[i*WordSize:], w)
	}
	return data
}

// Write stores words as an image to w.
func Write(w io.Writer, words []uint32) error {
	if _, err := io.Copy(w, bytes.NewReader(Encode(words))); err != nil {
		return fmt.Errorf("failed to write program image: %w", err)
	}
	return nil
}

// Save writes words as an image file.
func Save(path string, words []uint32) error {
	if err := os.WriteFile(path, Encode(words), 0644); err != nil {
		return fmt.Errorf("failed to write program image: %w", err)
	}
	return nil
}
