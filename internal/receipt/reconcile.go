package receipt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/receiptbot/receiptbot/internal/money"
)

// ErrIncompleteEdit rejects an edit that would leave the receipt without
// items or without a parseable receipt date. The stored record is left
// untouched.
var ErrIncompleteEdit = errors.New("edit is incomplete")

// ItemEdit is the typed edit delta for one item. A blank field means
// "no change", never "clear the value".
type ItemEdit struct {
	Name     string
	Quantity string
	Price    string
}

// EditForm is a submitted edit of a receipt. Items maps item id to its
// delta; an item missing from the map was removed by the user.
type EditForm struct {
	ReceiptDate string
	ExtraFee    string
	Discounts   string
	Items       map[string]ItemEdit
}

// Reconcile merges a partial edit into a receipt. Items are matched by
// stable id; items absent from the form are dropped; blank form fields keep
// the original value. The total price is always recomputed from
// items + extra fee - discounts, never taken from the form, so stale totals
// cannot persist.
func Reconcile(original Receipt, form EditForm) (Receipt, error) {
	updated := original

	receiptDate := strings.TrimSpace(form.ReceiptDate)
	if receiptDate == "" {
		return original, fmt.Errorf("%w: missing receipt date", ErrIncompleteEdit)
	}
	if _, err := time.Parse(money.ISODate, receiptDate); err != nil {
		return original, fmt.Errorf("%w: invalid receipt date %q", ErrIncompleteEdit, receiptDate)
	}
	updated.ReceiptDate = receiptDate

	items := make([]Item, 0, len(original.Items))
	for _, item := range original.Items {
		edit, present := form.Items[item.ID]
		if !present {
			continue // removed in the form
		}

		merged := item
		if name := strings.TrimSpace(edit.Name); name != "" {
			merged.Name = name
		}
		if qty, ok := parsePositiveInt(edit.Quantity); ok {
			merged.Quantity = qty
		}
		if price, ok := parseNonNegative(edit.Price); ok {
			merged.Price = price
		}
		items = append(items, merged)
	}
	if len(items) == 0 {
		return original, fmt.Errorf("%w: no items remain", ErrIncompleteEdit)
	}
	updated.Items = items

	if fee, ok := parseNonNegative(form.ExtraFee); ok {
		updated.ExtraFee = fee
	}
	if discounts, ok := parseNonNegative(form.Discounts); ok {
		updated.Discounts = discounts
	}

	updated.TotalPrice = ComputeTotal(updated.Items, updated.ExtraFee, updated.Discounts)
	return updated, nil
}

func parsePositiveInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func parseNonNegative(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := money.ParseAmount(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
