package receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/receiptbot/receiptbot/internal/money"
	"github.com/receiptbot/receiptbot/internal/report"
)

// ErrNoData signals that a category filter matched nothing. Distinct from an
// empty report so the caller can message the user appropriately.
var ErrNoData = errors.New("no data for the requested category")

// Categorizer assigns a category label to an item name. Implementations
// delegate to a classifier; tests inject canned labels.
type Categorizer interface {
	Categorize(ctx context.Context, itemName string) (string, error)
}

// Totals are the simple reductions over a set of receipts. Safe on empty
// input: all zeros.
type Totals struct {
	ExtraFee   float64
	Discounts  float64
	GrandTotal float64
}

// Aggregate reduces receipts to their combined totals. Order-independent.
func Aggregate(receipts []Receipt) Totals {
	var t Totals
	for _, r := range receipts {
		t.ExtraFee += r.ExtraFee
		t.Discounts += r.Discounts
		t.GrandTotal += r.TotalPrice
	}
	t.ExtraFee = money.Round(t.ExtraFee)
	t.Discounts = money.Round(t.Discounts)
	t.GrandTotal = money.Round(t.GrandTotal)
	return t
}

// BuildCategorySummary groups every item across the receipts by the label
// the categorizer assigns, merging items with the same (category, name) by
// summing quantity and keeping the most recently observed unit price.
// Receipts must arrive oldest-first for "most recent" to mean anything;
// repository queries guarantee that ordering.
//
// When categoryFilter is non-empty only that category is retained, and zero
// matches yields ErrNoData.
func BuildCategorySummary(ctx context.Context, receipts []Receipt, categorizer Categorizer, categoryFilter string) (*report.Spending, error) {
	type mergedItem struct {
		name     string
		quantity int
		price    float64
	}

	categoryOrder := make([]string, 0)
	itemOrder := make(map[string][]string)
	merged := make(map[string]map[string]*mergedItem)

	startDate, endDate := "", ""

	for _, rcpt := range receipts {
		date := rcpt.rangeDate()
		if startDate == "" || date < startDate {
			startDate = date
		}
		if date > endDate {
			endDate = date
		}

		for _, item := range rcpt.Items {
			label, err := categorizer.Categorize(ctx, item.Name)
			if err != nil {
				return nil, fmt.Errorf("categorizing %q: %w", item.Name, err)
			}
			label = strings.TrimSpace(label)
			if label == "" {
				label = "Uncategorized"
			}

			if merged[label] == nil {
				merged[label] = make(map[string]*mergedItem)
				categoryOrder = append(categoryOrder, label)
			}
			if existing, ok := merged[label][item.Name]; ok {
				existing.quantity += item.Quantity
				existing.price = item.Price // most recently observed price wins
			} else {
				merged[label][item.Name] = &mergedItem{
					name:     item.Name,
					quantity: item.Quantity,
					price:    item.Price,
				}
				itemOrder[label] = append(itemOrder[label], item.Name)
			}
		}
	}

	categories := make([]report.Category, 0, len(categoryOrder))
	for _, label := range categoryOrder {
		if categoryFilter != "" && !strings.EqualFold(label, categoryFilter) {
			continue
		}
		items := make([]report.Item, 0, len(itemOrder[label]))
		for _, name := range itemOrder[label] {
			m := merged[label][name]
			items = append(items, report.Item{
				Name:     m.name,
				Quantity: m.quantity,
				Price:    m.price,
			})
		}
		categories = append(categories, report.Category{
			Category: label,
			Items:    items,
		})
	}

	if categoryFilter != "" && len(categories) == 0 {
		return nil, ErrNoData
	}

	totals := Aggregate(receipts)
	return report.Build(startDate, endDate, categories, totals.ExtraFee, totals.Discounts), nil
}
