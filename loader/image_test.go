package loader_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/umsim/insts"
	"github.com/sarchlab/umsim/loader"
)

var _ = Describe("Image Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "image-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("with a valid image", func() {
			var imagePath string
			words := []uint32{
				insts.EncodeImmediate(0, 72),
				insts.EncodeOutput(0),
				insts.EncodeHalt(),
			}

			BeforeEach(func() {
				imagePath = filepath.Join(tempDir, "hello.um")
				Expect(loader.Save(imagePath, words)).To(Succeed())
			})

			It("should load without error", func() {
				prog, err := loader.Load(imagePath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.Path).To(Equal(imagePath))
				Expect(prog.Len()).To(Equal(3))
			})

			It("should preserve word values", func() {
				prog, err := loader.Load(imagePath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.Words).To(Equal(words))
			})
		})

		Context("with a truncated image", func() {
			It("should reject sizes that are not a multiple of four", func() {
				imagePath := filepath.Join(tempDir, "bad.um")
				Expect(os.WriteFile(imagePath, []byte{0x70, 0, 0}, 0644)).To(Succeed())

				_, err := loader.Load(imagePath)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not a multiple of 4"))
			})
		})

		Context("with a missing file", func() {
			It("should return an error", func() {
				_, err := loader.Load(filepath.Join(tempDir, "missing.um"))
				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
			})
		})
	})

	Describe("Decode", func() {
		It("should read words big-endian", func() {
			words, err := loader.Decode([]byte{0xD0, 0x00, 0x00, 0x48, 0x70, 0x00, 0x00, 0x00})
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{0xD0000048, 0x70000000}))
		})

		It("should accept an empty image", func() {
			words, err := loader.Decode(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(BeEmpty())
		})
	})

	Describe("Write and Parse", func() {
		It("should round-trip through a stream", func() {
			buf := &bytes.Buffer{}
			Expect(loader.Write(buf, []uint32{1, 0xFFFFFFFF})).To(Succeed())
			Expect(buf.Bytes()).To(Equal([]byte{0, 0, 0, 1, 0xFF, 0xFF, 0xFF, 0xFF}))

			words, err := loader.Parse(buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{1, 0xFFFFFFFF}))
		})
	})
})
