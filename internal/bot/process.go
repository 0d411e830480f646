package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/receiptbot/receiptbot/internal/money"
	"github.com/receiptbot/receiptbot/internal/receipt"
	"github.com/receiptbot/receiptbot/internal/scanning"
)

// ErrNotReceipt signals that an uploaded attachment was readable but is not
// a receipt. Callers reply with InvalidImageResponse.
var ErrNotReceipt = errors.New("attachment is not a receipt")

// Ingestor turns uploaded attachments into draft receipts: validate, scan,
// archive the original file. Drafts are not persisted; that happens on
// confirmation.
type Ingestor struct {
	scanner    scanning.Scanner
	archive    receipt.Archive
	timeSource TimeSource
	logger     *slog.Logger
}

func NewIngestor(scanner scanning.Scanner, archive receipt.Archive, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		scanner:    scanner,
		archive:    archive,
		timeSource: &defaultTimeSource{},
		logger:     logger,
	}
}

// NewIngestorWithDeps creates an Ingestor with a custom time source for testing
func NewIngestorWithDeps(scanner scanning.Scanner, archive receipt.Archive, timeSrc TimeSource, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		scanner:    scanner,
		archive:    archive,
		timeSource: timeSrc,
		logger:     logger,
	}
}

// ProcessAttachment validates and scans an uploaded file into a draft
// receipt bound to the message it arrived on. Returns ErrNotReceipt when
// the image is readable but not a receipt, and wraps scanning errors
// otherwise.
func (g *Ingestor) ProcessAttachment(ctx context.Context, data []byte, contentType, filename string, scope Scope, messageID string) (*receipt.Receipt, error) {
	ok, err := g.scanner.IsReceipt(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("validating attachment: %w", err)
	}
	if !ok {
		return nil, ErrNotReceipt
	}

	extraction, err := g.scanner.Scan(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("scanning attachment: %w", err)
	}

	archivePath := ""
	if g.archive != nil {
		path, err := g.archive.Save(filename, data)
		if err != nil {
			// the extracted data is still good without the original file
			g.logger.Warn("archiving attachment", "error", err, "filename", filename)
		} else {
			archivePath = path
		}
	}

	now := g.timeSource.Now()
	receiptDate := ""
	if extraction.ReceiptDate != "" {
		receiptDate = money.CanonicalDateString(extraction.ReceiptDate, now)
	}
	items := make([]receipt.Item, 0, len(extraction.Items))
	for _, extracted := range extraction.Items {
		items = append(items, receipt.Item{
			ID:       receipt.NewItemID(),
			Name:     extracted.Name,
			Quantity: extracted.Quantity,
			Price:    extracted.Price,
		})
	}

	draft := &receipt.Receipt{
		SchemaVersion: receipt.CurrentSchemaVersion,
		UserID:        scope.UserID,
		MessageID:     messageID,
		RoomID:        scope.RoomID,
		ThreadID:      scope.ThreadID,
		Items:         items,
		ExtraFee:      extraction.ExtraFees,
		Discounts:     extraction.Discounts,
		TotalPrice:    receipt.ComputeTotal(items, extraction.ExtraFees, extraction.Discounts),
		UploadedDate:  money.DateString(now),
		ReceiptDate:   receiptDate,
		ArchivePath:   archivePath,
	}

	g.logger.Info("attachment scanned", "items", len(items), "total", draft.TotalPrice, "room", scope.RoomID)
	return draft, nil
}
