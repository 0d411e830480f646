package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/receiptbot/receiptbot/internal/command"
	"github.com/receiptbot/receiptbot/internal/receipt"
	"github.com/receiptbot/receiptbot/internal/report"
)

// mockNotifier is a mock implementation of Notifier
type mockNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (m *mockNotifier) Notify(ctx context.Context, scope Scope, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.texts = append(m.texts, text)
	return nil
}

// mockDeleter is a mock implementation of MessageDeleter
type mockDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (m *mockDeleter) DeleteMessage(ctx context.Context, roomID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, messageID)
	return nil
}

var _ = Describe("ConfirmSave", func() {
	var (
		store    *mockStore
		repo     *receipt.Repository
		client   *fakeClient
		handler  *Handler
		notifier *mockNotifier
		deleter  *mockDeleter
		rcpt     receipt.Receipt
		err      error
	)

	BeforeEach(func() {
		store = newMockStore()
		repo = receipt.NewRepository(store)
		client = &fakeClient{textFn: func(systemPrompt, userPrompt string) (string, error) {
			return "Saved your receipt! Coffee again?", nil
		}}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler = NewHandlerWithDeps(
			repo, NewChannelRegistry(store), command.NewResolver(client), client,
			report.NewTextSink(), &fixedCategorizer{label: "Beverages"}, nil,
			&mockTimeSource{now: time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)},
			logger,
		)
		notifier = &mockNotifier{}
		deleter = &mockDeleter{}
		rcpt = receipt.Receipt{
			UserID:       "u1",
			MessageID:    "m1",
			RoomID:       "r1",
			Items:        []receipt.Item{{ID: receipt.NewItemID(), Name: "CAFFE LATTE", Quantity: 1, Price: 4.5}},
			TotalPrice:   4.5,
			UploadedDate: "2025-08-15",
		}
	})

	JustBeforeEach(func() {
		err = handler.ConfirmSave(context.Background(), rcpt, "prompt-msg", notifier, deleter)
	})

	When("everything succeeds", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should persist the receipt", func() {
			got, getErr := repo.Get("r1", "m1", "u1", "")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
		})

		It("should post the confirmation", func() {
			Expect(notifier.texts).To(ConsistOf("Saved your receipt! Coffee again?"))
		})

		It("should delete the interim prompt message", func() {
			Expect(deleter.deleted).To(ConsistOf("prompt-msg"))
		})
	})

	When("the confirmation model fails", func() {
		BeforeEach(func() {
			client.textFn = func(systemPrompt, userPrompt string) (string, error) {
				return "", errors.New("unavailable")
			}
		})

		It("should fall back to the static confirmation", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.texts).To(ConsistOf(fallbackConfirmResponse))
		})
	})

	When("the notifier fails", func() {
		BeforeEach(func() {
			notifier.err = errors.New("room archived")
		})

		It("should report the failure", func() {
			Expect(err).To(HaveOccurred())
		})

		It("should still persist the receipt", func() {
			got, getErr := repo.Get("r1", "m1", "u1", "")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
		})

		It("should still delete the prompt message", func() {
			Expect(deleter.deleted).To(ConsistOf("prompt-msg"))
		})
	})

	When("both notify and delete fail", func() {
		BeforeEach(func() {
			notifier.err = errors.New("room archived")
			deleter.err = errors.New("already deleted")
		})

		It("should join both failures", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("room archived"))
			Expect(err.Error()).To(ContainSubstring("already deleted"))
		})
	})
})
