package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalArchive", func() {
	var (
		basePath string
		archive  *LocalArchive
	)

	BeforeEach(func() {
		basePath = GinkgoT().TempDir()
		var err error
		archive, err = NewLocalArchive(basePath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should round-trip an attachment through Save and Get", func() {
		path, err := archive.Save("receipt.png", []byte("png-bytes"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("receipt.png"))

		data, err := archive.Get(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("png-bytes")))
	})

	It("should sanitize phone-generated filenames on save", func() {
		path, err := archive.Save("IMG_2024!!@#  scan.png", []byte("x"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("IMG_2024 scan.png"))

		_, err = os.Stat(filepath.Join(basePath, path))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should remove the file on Delete", func() {
		path, err := archive.Save("receipt.png", []byte("x"))
		Expect(err).NotTo(HaveOccurred())

		Expect(archive.Delete(path)).To(Succeed())

		_, err = archive.Get(path)
		Expect(err).To(HaveOccurred())
	})

	It("should error when deleting a missing file", func() {
		Expect(archive.Delete("nope.png")).NotTo(Succeed())
	})
})
