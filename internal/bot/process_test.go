package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/receiptbot/receiptbot/internal/receipt"
	"github.com/receiptbot/receiptbot/internal/scanning"
)

// fakeScanner is a fake implementation of scanning.Scanner
type fakeScanner struct {
	isReceipt  bool
	scanResult *scanning.Extraction
	checkErr   error
	scanErr    error
}

func (f *fakeScanner) IsReceipt(ctx context.Context, data []byte, contentType string) (bool, error) {
	return f.isReceipt, f.checkErr
}

func (f *fakeScanner) Scan(ctx context.Context, data []byte, contentType string) (*scanning.Extraction, error) {
	return f.scanResult, f.scanErr
}

// memoryArchive is a mock implementation of receipt.Archive
type memoryArchive struct {
	files   map[string][]byte
	saveErr error
}

func (m *memoryArchive) Save(filename string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.files[filename] = data
	return filename, nil
}

func (m *memoryArchive) Get(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

func (m *memoryArchive) Delete(path string) error {
	delete(m.files, path)
	return nil
}

var _ = Describe("Ingestor", func() {
	var (
		scanner  *fakeScanner
		archive  *memoryArchive
		ingestor *Ingestor
		scope    Scope
	)

	BeforeEach(func() {
		scanner = &fakeScanner{
			isReceipt: true,
			scanResult: &scanning.Extraction{
				Items: []scanning.ExtractedItem{
					{Name: "CAFFE LATTE", Quantity: 2, Price: 4.5},
					{Name: "CROISSANT", Quantity: 1, Price: 3.25},
				},
				ExtraFees:   1.5,
				Discounts:   0.75,
				TotalPrice:  999, // model totals are never trusted
				ReceiptDate: "13-07-2025",
			},
		}
		archive = &memoryArchive{files: make(map[string][]byte)}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		ingestor = NewIngestorWithDeps(scanner, archive, &mockTimeSource{now: time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)}, logger)
		scope = Scope{UserID: "u1", RoomID: "r1", ThreadID: "t1"}
	})

	Describe("ProcessAttachment", func() {
		var (
			draft *receipt.Receipt
			err   error
		)

		JustBeforeEach(func() {
			draft, err = ingestor.ProcessAttachment(context.Background(), []byte("image-bytes"), "image/jpeg", "receipt.jpg", scope, "m1")
		})

		When("scanning succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should bind the draft to the message scope", func() {
				Expect(draft.UserID).To(Equal("u1"))
				Expect(draft.RoomID).To(Equal("r1"))
				Expect(draft.ThreadID).To(Equal("t1"))
				Expect(draft.MessageID).To(Equal("m1"))
			})

			It("should assign stable item ids", func() {
				Expect(draft.Items).To(HaveLen(2))
				Expect(draft.Items[0].ID).NotTo(BeEmpty())
				Expect(draft.Items[0].ID).NotTo(Equal(draft.Items[1].ID))
			})

			It("should recompute the total instead of trusting the model", func() {
				// 2*4.50 + 3.25 + 1.50 - 0.75
				Expect(draft.TotalPrice).To(Equal(13.0))
			})

			It("should stamp the upload date from the clock", func() {
				Expect(draft.UploadedDate).To(Equal("2025-08-15"))
			})

			It("should canonicalize the printed receipt date", func() {
				Expect(draft.ReceiptDate).To(Equal("2025-07-13"))
			})

			It("should archive the original file", func() {
				Expect(archive.files).To(HaveKey("receipt.jpg"))
			})

			It("should record the archive path on the draft", func() {
				Expect(draft.ArchivePath).To(Equal("receipt.jpg"))
			})
		})

		When("the extraction has no receipt date", func() {
			BeforeEach(func() {
				scanner.scanResult.ReceiptDate = ""
			})

			It("should leave the draft's receipt date empty", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(draft.ReceiptDate).To(BeEmpty())
			})
		})

		When("the attachment is not a receipt", func() {
			BeforeEach(func() {
				scanner.isReceipt = false
			})

			It("should return ErrNotReceipt", func() {
				Expect(errors.Is(err, ErrNotReceipt)).To(BeTrue())
				Expect(draft).To(BeNil())
			})
		})

		When("validation fails", func() {
			BeforeEach(func() {
				scanner.checkErr = errors.New("model unavailable")
			})

			It("should return the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, ErrNotReceipt)).To(BeFalse())
			})
		})

		When("archiving fails", func() {
			BeforeEach(func() {
				archive.saveErr = errors.New("disk full")
			})

			It("should still return the draft", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(draft).NotTo(BeNil())
				Expect(draft.ArchivePath).To(BeEmpty())
			})
		})
	})
})
