package bot

import (
	"context"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LLMCategorizer", func() {
	var (
		client      *fakeClient
		categorizer *LLMCategorizer
		calls       int
		callsMu     sync.Mutex
	)

	BeforeEach(func() {
		calls = 0
		client = &fakeClient{textFn: func(systemPrompt, userPrompt string) (string, error) {
			callsMu.Lock()
			calls++
			callsMu.Unlock()
			if strings.Contains(userPrompt, "LATTE") {
				return "Beverages", nil
			}
			return "Food", nil
		}}
		categorizer = NewLLMCategorizer(client)
	})

	It("should ask the model once per distinct item name", func() {
		for i := 0; i < 3; i++ {
			label, err := categorizer.Categorize(context.Background(), "CAFFE LATTE")
			Expect(err).NotTo(HaveOccurred())
			Expect(label).To(Equal("Beverages"))
		}
		Expect(calls).To(Equal(1))
	})

	It("should cache case-insensitively on the item name", func() {
		_, err := categorizer.Categorize(context.Background(), "CAFFE LATTE")
		Expect(err).NotTo(HaveOccurred())
		_, err = categorizer.Categorize(context.Background(), "  caffe latte ")
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("should serve concurrent callers on one shared instance", func() {
		results := make([]string, 16)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				name := "CAFFE LATTE"
				if i%2 == 1 {
					name = "CROISSANT"
				}
				label, err := categorizer.Categorize(context.Background(), name)
				Expect(err).NotTo(HaveOccurred())
				results[i] = label
			}(i)
		}
		wg.Wait()

		for i, label := range results {
			if i%2 == 0 {
				Expect(label).To(Equal("Beverages"))
			} else {
				Expect(label).To(Equal("Food"))
			}
		}
	})
})
