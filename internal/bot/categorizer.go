package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/receiptbot/receiptbot/internal/llm"
	"github.com/receiptbot/receiptbot/internal/report"
)

const categorizeSystemPrompt = `You are a spending categorization assistant.
Given the name of a purchased item, answer with a single short category name
such as Food, Beverages, Household, Entertainment, Transport, Health or
Clothing. Answer with the category name only, no punctuation and no
explanation.`

const summarizeSystemPrompt = `You are a spending analysis assistant. Given a
category breakdown of a user's receipts, write a brief summary of their
purchases and comment on their purchase habits: which categories they spend
the most on, any noticeable trends, or suggestions for improvement. Answer
with two to three plain sentences, no markdown.`

// LLMCategorizer assigns spending categories to item names through the
// classifier. Labels are cached per item name so a report over many receipts
// asks about each distinct item once. Safe for concurrent use; one instance
// is shared across every dispatch.
type LLMCategorizer struct {
	client llm.Client

	mu    sync.Mutex
	cache map[string]string
}

func NewLLMCategorizer(client llm.Client) *LLMCategorizer {
	return &LLMCategorizer{
		client: client,
		cache:  make(map[string]string),
	}
}

func (l *LLMCategorizer) Categorize(ctx context.Context, itemName string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(itemName))
	l.mu.Lock()
	label, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		return label, nil
	}

	// The model call runs unlocked; concurrent misses on the same name may
	// both ask, and the later answer wins.
	answer, err := l.client.GenerateText(ctx, categorizeSystemPrompt, itemName)
	if err != nil {
		return "", fmt.Errorf("categorizing item: %w", err)
	}

	label = strings.TrimSpace(llm.StripFences(answer))
	if idx := strings.IndexByte(label, '\n'); idx >= 0 {
		label = strings.TrimSpace(label[:idx])
	}
	l.mu.Lock()
	l.cache[key] = label
	l.mu.Unlock()
	return label, nil
}

// summarizeSpending asks the classifier for a narrative paragraph over an
// assembled report. Best effort: any failure yields an empty summary, never
// an error, because the numbers stand on their own.
func summarizeSpending(ctx context.Context, client llm.Client, spending *report.Spending) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spending from %s to %s.\n", spending.StartDate, spending.EndDate)
	for _, category := range spending.Categories {
		fmt.Fprintf(&b, "%s: total %.2f\n", category.Category, category.Total())
		for _, item := range category.Items {
			fmt.Fprintf(&b, "- %s x%d at %.2f\n", item.Name, item.Quantity, item.Price)
		}
	}

	answer, err := client.GenerateText(ctx, summarizeSystemPrompt, b.String())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(llm.StripFences(answer))
}
