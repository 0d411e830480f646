package receipt

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/receiptbot/receiptbot/internal/money"
)

// CurrentSchemaVersion tags every newly written record. Older stored shapes
// (no discounts, no stable item ids, no receipt date) are upgraded at decode
// time and are never a write target.
const CurrentSchemaVersion = 3

// Item is a single receipt line item. The ID is assigned at creation and
// stays stable across edits so edit forms can address items directly.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"` // unit price
}

// Receipt is a stored receipt. Dates are zero-padded ISO strings so
// lexicographic comparison matches chronological order.
type Receipt struct {
	SchemaVersion int     `json:"schema_version"`
	UserID        string  `json:"user_id"`
	MessageID     string  `json:"message_id"`
	RoomID        string  `json:"room_id"`
	ThreadID      string  `json:"thread_id,omitempty"`
	Items         []Item  `json:"items"`
	ExtraFee      float64 `json:"extra_fee"`
	Discounts     float64 `json:"discounts"`
	TotalPrice    float64 `json:"total_price"`
	UploadedDate  string  `json:"uploaded_date"` // creation time, immutable
	ReceiptDate   string  `json:"receipt_date"`  // as printed, user-editable
	ArchivePath   string  `json:"archive_path,omitempty"`
}

// ComputeTotal derives the total price from items, extra fee and discounts,
// rounded to minor-unit precision.
func ComputeTotal(items []Item, extraFee, discounts float64) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Price * float64(item.Quantity)
	}
	return money.Round(sum + extraFee - discounts)
}

// NewItemID returns a fresh stable item identifier.
func NewItemID() string {
	return uuid.NewString()
}

// decodeReceipt unmarshals a stored record and applies defaulting rules for
// historical schema versions:
//
//	v1: no discounts field, no item ids, no receipt date
//	v2: discounts but no stable item ids
//	v3: current
func decodeReceipt(data []byte) (Receipt, error) {
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return Receipt{}, fmt.Errorf("unmarshaling receipt: %w", err)
	}

	if r.SchemaVersion < CurrentSchemaVersion {
		for i := range r.Items {
			if r.Items[i].ID == "" {
				r.Items[i].ID = NewItemID()
			}
			if r.Items[i].Quantity < 1 {
				r.Items[i].Quantity = 1
			}
		}
		if r.ReceiptDate == "" {
			r.ReceiptDate = r.UploadedDate
		}
		r.SchemaVersion = CurrentSchemaVersion
	}
	return r, nil
}

// rangeDate is the date a receipt counts under for range filtering. Upgraded
// legacy records always have ReceiptDate set, but guard anyway.
func (r Receipt) rangeDate() string {
	if r.ReceiptDate != "" {
		return r.ReceiptDate
	}
	return r.UploadedDate
}
