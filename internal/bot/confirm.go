package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/receiptbot/receiptbot/internal/llm"
	"github.com/receiptbot/receiptbot/internal/money"
	"github.com/receiptbot/receiptbot/internal/receipt"
)

// Notifier posts a message into a room, threading it when the scope has a
// thread.
type Notifier interface {
	Notify(ctx context.Context, scope Scope, text string) error
}

// MessageDeleter removes a message, used to clean up the interim
// save-or-edit prompt once the user confirms.
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, roomID, messageID string) error
}

const confirmSystemPrompt = `The user just saved a receipt. Confirm the
receipt is saved and make a friendly, casual comment about it, for example
about the items or the amount. Use a warm conversational tone, two sentences
at most, no markdown.

Examples:
- "Saved your receipt! Coffee and pastries, yum. Was it a special treat?"
- "Receipt saved! Big bookstore haul, any book you're excited about?"`

const fallbackConfirmResponse = "Receipt saved!"

// ConfirmSave persists a confirmed receipt, posts the confirmation reply
// and removes the interim prompt message. The three effects run
// concurrently and are all awaited: a failure in one never cancels the
// others, and every failure is reported together.
func (h *Handler) ConfirmSave(ctx context.Context, rcpt receipt.Receipt, promptMessageID string, notifier Notifier, deleter MessageDeleter) error {
	scope := Scope{UserID: rcpt.UserID, RoomID: rcpt.RoomID, ThreadID: rcpt.ThreadID}

	var (
		wg                            sync.WaitGroup
		saveErr, notifyErr, deleteErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := h.repo.Save(rcpt); err != nil {
			saveErr = fmt.Errorf("saving receipt: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := notifier.Notify(ctx, scope, h.confirmationText(ctx, rcpt)); err != nil {
			notifyErr = fmt.Errorf("sending confirmation: %w", err)
		}
	}()

	if promptMessageID != "" && deleter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := deleter.DeleteMessage(ctx, rcpt.RoomID, promptMessageID); err != nil {
				deleteErr = fmt.Errorf("deleting prompt message: %w", err)
			}
		}()
	}

	wg.Wait()
	return errors.Join(saveErr, notifyErr, deleteErr)
}

// confirmationText asks the classifier for a friendly confirmation. Best
// effort: a failure falls back to a static reply rather than blocking the
// save.
func (h *Handler) confirmationText(ctx context.Context, rcpt receipt.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Receipt from %s, total %s.\nItems:\n", rcpt.UploadedDate, money.FormatAmount(rcpt.TotalPrice, DefaultCurrency))
	for _, item := range rcpt.Items {
		fmt.Fprintf(&b, "- x%d %s\n", item.Quantity, item.Name)
	}

	answer, err := h.client.GenerateText(ctx, confirmSystemPrompt, b.String())
	if err != nil {
		h.logger.Warn("generating confirmation text", "error", err)
		return fallbackConfirmResponse
	}
	answer = strings.TrimSpace(llm.StripFences(answer))
	if answer == "" {
		return fallbackConfirmResponse
	}
	return answer
}
