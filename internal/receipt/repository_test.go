package receipt

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Repository", func() {
	var (
		store *BoltStore
		repo  *Repository
	)

	newReceipt := func(messageID, userID, roomID, threadID, uploadedDate, receiptDate string, total float64) Receipt {
		return Receipt{
			UserID:       userID,
			MessageID:    messageID,
			RoomID:       roomID,
			ThreadID:     threadID,
			Items:        []Item{{ID: NewItemID(), Name: "SODA", Quantity: 1, Price: total}},
			TotalPrice:   total,
			UploadedDate: uploadedDate,
			ReceiptDate:  receiptDate,
		}
	}

	BeforeEach(func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		store, err = NewBoltStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		repo = NewRepository(store)
	})

	AfterEach(func() {
		store.Close()
	})

	Describe("Save", func() {
		It("should store a new receipt retrievable by its tuple", func() {
			Expect(repo.Save(newReceipt("m1", "u1", "r1", "", "2025-08-14", "", 10))).To(Succeed())

			got, err := repo.Get("r1", "m1", "u1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.TotalPrice).To(Equal(10.0))
		})

		It("should stamp the current schema version", func() {
			rcpt := newReceipt("m1", "u1", "r1", "", "2025-08-14", "", 10)
			rcpt.SchemaVersion = 0
			Expect(repo.Save(rcpt)).To(Succeed())

			got, err := repo.Get("r1", "m1", "u1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SchemaVersion).To(Equal(CurrentSchemaVersion))
		})

		It("should overwrite on re-save of the same tuple instead of duplicating", func() {
			Expect(repo.Save(newReceipt("m1", "u1", "r1", "", "2025-08-14", "", 10))).To(Succeed())
			Expect(repo.Save(newReceipt("m1", "u1", "r1", "", "2025-08-14", "", 25))).To(Succeed())

			receipts, err := repo.ByUserAndRoom("u1", "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(1))
			Expect(receipts[0].TotalPrice).To(Equal(25.0))
		})

		It("should keep receipts with different threads distinct", func() {
			Expect(repo.Save(newReceipt("m1", "u1", "r1", "t1", "2025-08-14", "", 10))).To(Succeed())
			Expect(repo.Save(newReceipt("m2", "u1", "r1", "t2", "2025-08-14", "", 20))).To(Succeed())

			receipts, err := repo.ByThread("r1", "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(1))
			Expect(receipts[0].TotalPrice).To(Equal(10.0))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			Expect(repo.Save(newReceipt("m1", "u1", "r1", "", "2025-08-14", "", 10))).To(Succeed())
		})

		It("should remove the receipt", func() {
			Expect(repo.Delete("r1", "m1", "u1", "")).To(Succeed())

			got, err := repo.Get("r1", "m1", "u1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should be idempotent for missing tuples", func() {
			Expect(repo.Delete("r1", "m9", "u1", "")).To(Succeed())
			Expect(repo.Delete("r1", "m9", "u1", "")).To(Succeed())
		})

		When("an archive is configured", func() {
			var archive *LocalArchive

			BeforeEach(func() {
				var err error
				archive, err = NewLocalArchive(GinkgoT().TempDir())
				Expect(err).NotTo(HaveOccurred())
				repo = NewRepositoryWithArchive(store, archive)

				path, err := archive.Save("scan.png", []byte("png"))
				Expect(err).NotTo(HaveOccurred())

				rcpt := newReceipt("m2", "u1", "r1", "", "2025-08-14", "", 10)
				rcpt.ArchivePath = path
				Expect(repo.Save(rcpt)).To(Succeed())
			})

			It("should delete the archived attachment with the receipt", func() {
				Expect(repo.Delete("r1", "m2", "u1", "")).To(Succeed())

				_, err := archive.Get("scan.png")
				Expect(err).To(HaveOccurred())
			})

			It("should still delete the receipt when no attachment was archived", func() {
				Expect(repo.Delete("r1", "m1", "u1", "")).To(Succeed())

				got, err := repo.Get("r1", "m1", "u1", "")
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(BeNil())
			})
		})
	})

	Describe("queries", func() {
		BeforeEach(func() {
			Expect(repo.Save(newReceipt("m1", "u1", "r1", "", "2025-08-10", "2025-08-01", 10))).To(Succeed())
			Expect(repo.Save(newReceipt("m2", "u1", "r1", "t1", "2025-08-11", "2025-08-05", 20))).To(Succeed())
			Expect(repo.Save(newReceipt("m3", "u2", "r1", "t1", "2025-08-11", "", 30))).To(Succeed())
			Expect(repo.Save(newReceipt("m4", "u1", "r2", "", "2025-08-12", "2025-08-12", 40))).To(Succeed())
		})

		It("should scope ByUserAndRoom to both user and room", func() {
			receipts, err := repo.ByUserAndRoom("u1", "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(2))
		})

		It("should return all receipts in a room", func() {
			receipts, err := repo.ByRoom("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(3))
		})

		It("should list receipts by upload date", func() {
			receipts, err := repo.ByRoomAndDate("r1", "2025-08-11")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(2))
		})

		It("should list receipts in a thread", func() {
			receipts, err := repo.ByThread("r1", "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(2))
		})

		It("should scope thread receipts to a user", func() {
			receipts, err := repo.ByThreadAndUser("r1", "t1", "u2")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(1))
			Expect(receipts[0].TotalPrice).To(Equal(30.0))
		})

		It("should return receipts oldest first", func() {
			receipts, err := repo.ByUserAndRoom("u1", "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts[0].MessageID).To(Equal("m1"))
			Expect(receipts[1].MessageID).To(Equal("m2"))
		})
	})

	Describe("ByUserAndDateRange", func() {
		BeforeEach(func() {
			Expect(repo.Save(newReceipt("m1", "u1", "r1", "", "2025-08-15", "2025-08-01", 10))).To(Succeed())
			Expect(repo.Save(newReceipt("m2", "u1", "r1", "", "2025-08-15", "2025-08-05", 20))).To(Succeed())
			Expect(repo.Save(newReceipt("m3", "u1", "r1", "", "2025-08-15", "2025-08-09", 30))).To(Succeed())
		})

		It("should include both endpoints", func() {
			receipts, err := repo.ByUserAndDateRange("u1", "r1", "2025-08-01", "2025-08-09")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(3))
		})

		It("should filter on the receipt date, not the upload date", func() {
			receipts, err := repo.ByUserAndDateRange("u1", "r1", "2025-08-02", "2025-08-08")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(1))
			Expect(receipts[0].ReceiptDate).To(Equal("2025-08-05"))
		})

		It("should return empty for a range before everything", func() {
			receipts, err := repo.ByUserAndDateRange("u1", "r1", "2025-01-01", "2025-01-31")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(BeEmpty())
		})

		It("should fall back to the upload date for receipts without a receipt date", func() {
			Expect(repo.Save(newReceipt("m4", "u1", "r1", "", "2025-08-20", "", 40))).To(Succeed())

			receipts, err := repo.ByUserAndDateRange("u1", "r1", "2025-08-20", "2025-08-20")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(1))
			Expect(receipts[0].MessageID).To(Equal("m4"))
		})
	})
})
