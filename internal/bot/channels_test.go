package bot

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ChannelRegistry", func() {
	var (
		store    *mockStore
		registry *ChannelRegistry
	)

	BeforeEach(func() {
		store = newMockStore()
		registry = NewChannelRegistry(store)
	})

	Describe("Add and Channels", func() {
		It("should start empty", func() {
			rooms, err := registry.Channels("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rooms).To(BeEmpty())
		})

		It("should record added rooms", func() {
			Expect(registry.Add("r1", "u1")).To(Succeed())
			Expect(registry.Add("r2", "u1")).To(Succeed())

			rooms, err := registry.Channels("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rooms).To(Equal([]string{"r1", "r2"}))
		})

		It("should not duplicate a re-added room", func() {
			Expect(registry.Add("r1", "u1")).To(Succeed())
			Expect(registry.Add("r1", "u1")).To(Succeed())

			rooms, err := registry.Channels("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rooms).To(Equal([]string{"r1"}))
		})

		It("should keep lists per user", func() {
			Expect(registry.Add("r1", "u1")).To(Succeed())

			rooms, err := registry.Channels("u2")
			Expect(err).NotTo(HaveOccurred())
			Expect(rooms).To(BeEmpty())
		})

		It("should propagate store errors", func() {
			store.readErr = errors.New("disk gone")
			_, err := registry.Channels("u1")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SetCurrency and Currency", func() {
		It("should default to USD", func() {
			code, err := registry.Currency("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal("USD"))
		})

		It("should store an uppercased code", func() {
			Expect(registry.SetCurrency("r1", "vnd")).To(Succeed())

			code, err := registry.Currency("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal("VND"))
		})

		It("should overwrite a previous code", func() {
			Expect(registry.SetCurrency("r1", "VND")).To(Succeed())
			Expect(registry.SetCurrency("r1", "EUR")).To(Succeed())

			code, err := registry.Currency("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal("EUR"))
		})

		It("should keep currencies per room", func() {
			Expect(registry.SetCurrency("r1", "VND")).To(Succeed())

			code, err := registry.Currency("r2")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal("USD"))
		})

		It("should reject an empty code", func() {
			Expect(registry.SetCurrency("r1", "  ")).NotTo(Succeed())
		})
	})
})
