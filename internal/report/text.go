package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/receiptbot/receiptbot/internal/money"
)

// TextSink renders spending reports as plain text or CSV. It is the default
// sink wired into the bot; chat platforms accept both as file uploads.
type TextSink struct{}

func NewTextSink() *TextSink {
	return &TextSink{}
}

func (t *TextSink) Render(ctx context.Context, spending *Spending, format Format) (*Artifact, error) {
	switch format {
	case FormatText:
		return t.renderText(spending)
	case FormatCSV:
		return t.renderCSV(spending)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrExportFailed, format)
	}
}

func (t *TextSink) renderText(spending *Spending) (*Artifact, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Spending report %s to %s\n", spending.StartDate, spending.EndDate)
	if spending.Summary != "" {
		b.WriteString("\n")
		b.WriteString(spending.Summary)
		b.WriteString("\n")
	}

	for _, category := range spending.Categories {
		fmt.Fprintf(&b, "\n%s (%s)\n", category.Category, money.FormatAmount(category.Total(), spending.Currency))
		for _, item := range category.Items {
			fmt.Fprintf(&b, "  %s x%d @ %s\n", item.Name, item.Quantity, money.FormatAmount(item.Price, spending.Currency))
		}
	}

	b.WriteString("\n")
	if spending.ExtraFee != 0 {
		fmt.Fprintf(&b, "Extra fees: %s\n", money.FormatAmount(spending.ExtraFee, spending.Currency))
	}
	if spending.Discounts != 0 {
		fmt.Fprintf(&b, "Discounts: -%s\n", money.FormatAmount(spending.Discounts, spending.Currency))
	}
	fmt.Fprintf(&b, "Total: %s\n", money.FormatAmount(spending.GrandTotal(), spending.Currency))

	return &Artifact{
		Filename: reportFilename(spending, "txt"),
		MIME:     "text/plain",
		Data:     []byte(b.String()),
	}, nil
}

func (t *TextSink) renderCSV(spending *Spending) (*Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"category", "item", "quantity", "unit_price", "subtotal"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	for _, category := range spending.Categories {
		for _, item := range category.Items {
			subtotal := money.Round(float64(item.Quantity) * item.Price)
			row := []string{
				category.Category,
				item.Name,
				strconv.Itoa(item.Quantity),
				strconv.FormatFloat(item.Price, 'f', -1, 64),
				strconv.FormatFloat(subtotal, 'f', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	return &Artifact{
		Filename: reportFilename(spending, "csv"),
		MIME:     "text/csv",
		Data:     buf.Bytes(),
	}, nil
}

func reportFilename(spending *Spending, ext string) string {
	if spending.StartDate == "" && spending.EndDate == "" {
		return "spending-report." + ext
	}
	return fmt.Sprintf("spending-report-%s-to-%s.%s", spending.StartDate, spending.EndDate, ext)
}
