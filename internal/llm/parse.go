package llm

import (
	"fmt"
	"strings"
)

// StripFences removes markdown code fences a model may wrap around its
// answer, despite being told not to.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ExtractJSONObject strips fences and cuts the answer down to its outermost
// JSON object, discarding any surrounding commentary.
func ExtractJSONObject(text string) (string, error) {
	text = StripFences(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return "", fmt.Errorf("invalid JSON object in response")
	}
	return text[start : end+1], nil
}
