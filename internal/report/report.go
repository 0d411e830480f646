// Package report holds the spending report shape and the sinks that turn it
// into shareable artifacts. It deliberately knows nothing about receipts or
// storage so any producer can feed it.
package report

import (
	"context"
	"errors"

	"github.com/receiptbot/receiptbot/internal/money"
)

// ErrExportFailed signals that the report data was computed fine but could
// not be rendered into an artifact. Callers distinguish this from an empty
// result when picking the user-facing message.
var ErrExportFailed = errors.New("report export failed")

// Item is one merged line of a spending report.
type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Category groups merged items under a classifier label.
type Category struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// Total returns the summed price of all items in the category.
func (c Category) Total() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += float64(item.Quantity) * item.Price
	}
	return money.Round(sum)
}

// Spending is a category-grouped view over a date range. Dates are ISO
// strings derived from the receipts that fed the report, not from the query
// that selected them.
type Spending struct {
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	Categories []Category `json:"categories"`
	ExtraFee   float64    `json:"extra_fee"`
	Discounts  float64    `json:"discounts"`
	Currency   string     `json:"currency"`
	Summary    string     `json:"summary,omitempty"`
}

// GrandTotal sums every category plus fees minus discounts.
func (s *Spending) GrandTotal() float64 {
	var sum float64
	for _, c := range s.Categories {
		sum += c.Total()
	}
	return money.Round(sum + s.ExtraFee - s.Discounts)
}

// Build assembles a spending report from already-aggregated parts. Pure
// shape-work: no grouping, no arithmetic beyond what the accessors derive.
func Build(startDate, endDate string, categories []Category, extraFee, discounts float64) *Spending {
	return &Spending{
		StartDate:  startDate,
		EndDate:    endDate,
		Categories: categories,
		ExtraFee:   extraFee,
		Discounts:  discounts,
	}
}

// Format selects the artifact encoding a sink produces.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

// Artifact is a rendered report ready to hand to a chat upload or a file
// write.
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
}

// Sink renders a spending report into an artifact.
type Sink interface {
	Render(ctx context.Context, spending *Spending, format Format) (*Artifact, error)
}
