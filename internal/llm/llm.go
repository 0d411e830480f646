package llm

import "context"

// Client defines the interface for text-generation backends. The core only
// depends on prompt-in, text-out; provider wire formats stay behind the
// implementations.
type Client interface {
	// GenerateText sends a text-only prompt and returns the raw model answer
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// GenerateVision sends a prompt plus a PNG image and returns the raw model answer
	GenerateVision(ctx context.Context, systemPrompt, userPrompt string, pngData []byte) (string, error)

	// Close closes the client and releases resources
	Close() error
}
