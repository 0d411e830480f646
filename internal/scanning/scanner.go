package scanning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/receiptbot/receiptbot/internal/llm"
)

// Scanner defines the interface for receipt extraction operations
type Scanner interface {
	// IsReceipt checks whether an uploaded attachment is a receipt at all
	IsReceipt(ctx context.Context, data []byte, contentType string) (bool, error)

	// Scan extracts structured receipt data from an attachment
	Scan(ctx context.Context, data []byte, contentType string) (*Extraction, error)
}

// Extractor implements Scanner on top of any llm.Client.
type Extractor struct {
	client llm.Client
}

// NewExtractor creates a new Extractor
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// IsReceipt asks the model whether the attachment shows a receipt. A
// malformed answer counts as "not a receipt" rather than an error so
// ordinary photos in a busy channel never surface failures.
func (e *Extractor) IsReceipt(ctx context.Context, data []byte, contentType string) (bool, error) {
	pngData, err := prepareImageData(data, contentType)
	if err != nil {
		return false, err
	}

	response, err := e.client.GenerateVision(ctx, ocrSystemPrompt, receiptValidationPrompt, pngData)
	if err != nil {
		return false, fmt.Errorf("validating image: %w", err)
	}

	text, err := llm.ExtractJSONObject(response)
	if err != nil {
		slog.Warn("Receipt validation answer was not JSON", "response", response)
		return false, nil
	}

	var answer struct {
		IsReceipt bool `json:"is_receipt"`
	}
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		slog.Warn("Receipt validation answer did not parse", "response", response)
		return false, nil
	}
	return answer.IsReceipt, nil
}

// Scan extracts structured receipt data from an attachment and validates it
func (e *Extractor) Scan(ctx context.Context, data []byte, contentType string) (*Extraction, error) {
	pngData, err := prepareImageData(data, contentType)
	if err != nil {
		return nil, err
	}

	response, err := e.client.GenerateVision(ctx, ocrSystemPrompt, receiptScanPrompt, pngData)
	if err != nil {
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	extraction, err := ParseExtraction(response)
	if err != nil {
		// Keep the raw text around for diagnosing prompt drift
		slog.Error("Failed to parse extraction", "error", err, "response", response)
		return nil, err
	}
	return extraction, nil
}
