package command

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/receiptbot/receiptbot/internal/llm"
)

// Resolver converts free-form user text into a typed Intent by delegating
// classification to an llm.Client and strictly parsing the answer.
type Resolver struct {
	client llm.Client
}

// NewResolver creates a new Resolver
func NewResolver(client llm.Client) *Resolver {
	return &Resolver{client: client}
}

// classifierAnswer mirrors the JSON shape the classifier is instructed to
// return.
type classifierAnswer struct {
	Command string  `json:"command"`
	Params  *Params `json:"params"`
}

// Resolve maps messageText to an Intent. Any failure mode (transport error,
// unparseable answer, command outside the vocabulary) degrades to the
// unknown intent so the caller can show help instead of failing silently.
func (r *Resolver) Resolve(ctx context.Context, messageText string, today time.Time) Intent {
	prompt := translationPrompt(messageText, today)

	response, err := r.client.GenerateText(ctx, "You are a helpful assistant.", prompt)
	if err != nil {
		slog.Error("Command classification failed", "error", err)
		return Intent{Command: CommandUnknown}
	}

	intent, err := parseClassifierAnswer(response)
	if err != nil {
		slog.Warn("Classifier answer rejected", "error", err, "response", response)
		return Intent{Command: CommandUnknown}
	}

	// Backstop: if the classifier omitted params entirely, try local regex
	// extraction. Local extraction is advisory and never overrides a param
	// the classifier did supply.
	if intent.Params.IsEmpty() {
		intent.Params = ExtractParams(messageText)
	}

	intent.normalize()
	return intent
}

func parseClassifierAnswer(response string) (Intent, error) {
	text, err := llm.ExtractJSONObject(response)
	if err != nil {
		return Intent{}, fmt.Errorf("extracting answer object: %w", err)
	}

	var answer classifierAnswer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return Intent{}, fmt.Errorf("unmarshaling answer: %w", err)
	}

	cmd := Command(answer.Command)
	if !vocabulary[cmd] {
		return Intent{}, fmt.Errorf("command %q not in vocabulary", answer.Command)
	}

	intent := Intent{Command: cmd}
	if answer.Params != nil {
		intent.Params = *answer.Params
	}
	return intent, nil
}
