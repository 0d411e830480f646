package scanning

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/receiptbot/receiptbot/internal/llm"
)

var (
	// ErrUnparseable means the model answer was not valid JSON even after
	// fence stripping.
	ErrUnparseable = errors.New("extraction response is not valid JSON")

	// ErrMalformed means the JSON parsed but a required field is missing or
	// has the wrong type. extra_fees and total_price must be numeric because
	// downstream arithmetic assumes numbers.
	ErrMalformed = errors.New("extraction payload is malformed")
)

// ExtractedItem is a single line item from a scanned receipt.
type ExtractedItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Extraction is the validated result of a receipt scan. ReceiptDate is kept
// as printed (usually DD-MM-YYYY); canonicalization happens later.
type Extraction struct {
	Items       []ExtractedItem `json:"items"`
	ExtraFees   float64         `json:"extra_fees"`
	Discounts   float64         `json:"discounts"`
	TotalPrice  float64         `json:"total_price"`
	ReceiptDate string          `json:"receipt_date"`
}

// rawItem defers field decoding so missing fields can be defaulted instead
// of rejecting the whole receipt. A human confirms before saving, so partial
// data beats total failure.
type rawItem struct {
	Name     json.RawMessage `json:"name"`
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price"`
}

type rawPayload struct {
	Items       json.RawMessage `json:"items"`
	ExtraFees   json.RawMessage `json:"extra_fees"`
	Discounts   json.RawMessage `json:"discounts"`
	TotalPrice  json.RawMessage `json:"total_price"`
	ReceiptDate string          `json:"receipt_date"`
}

// ParseExtraction validates the raw model answer and returns a structured
// extraction. It is strict on items/extra_fees/total_price types and lenient
// on receipt_date and discounts, which the upstream model omits
// inconsistently.
func ParseExtraction(raw string) (*Extraction, error) {
	text, err := llm.ExtractJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnparseable, err)
	}

	var payload rawPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnparseable, err)
	}

	if payload.Items == nil {
		return nil, fmt.Errorf("%w: missing items array", ErrMalformed)
	}
	var items []rawItem
	if err := json.Unmarshal(payload.Items, &items); err != nil {
		return nil, fmt.Errorf("%w: items is not an array", ErrMalformed)
	}

	extraFees, err := requireNumber(payload.ExtraFees, "extra_fees")
	if err != nil {
		return nil, err
	}
	totalPrice, err := requireNumber(payload.TotalPrice, "total_price")
	if err != nil {
		return nil, err
	}

	result := &Extraction{
		Items:       make([]ExtractedItem, 0, len(items)),
		ExtraFees:   extraFees,
		Discounts:   optionalNumber(payload.Discounts),
		TotalPrice:  totalPrice,
		ReceiptDate: payload.ReceiptDate,
	}

	for _, item := range items {
		result.Items = append(result.Items, ExtractedItem{
			Name:     optionalString(item.Name),
			Quantity: defaultQuantity(item.Quantity),
			Price:    optionalNumber(item.Price),
		})
	}

	return result, nil
}

func requireNumber(raw json.RawMessage, field string) (float64, error) {
	if raw == nil {
		return 0, fmt.Errorf("%w: missing numeric field %s", ErrMalformed, field)
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("%w: field %s is not a number", ErrMalformed, field)
	}
	return value, nil
}

func optionalNumber(raw json.RawMessage) float64 {
	if raw == nil {
		return 0
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0
	}
	return value
}

func optionalString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// defaultQuantity defaults missing or invalid quantities to 1 so a single
// unreadable field does not drop the line item.
func defaultQuantity(raw json.RawMessage) int {
	if raw == nil {
		return 1
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 1
	}
	if value < 1 {
		return 1
	}
	return int(value)
}
