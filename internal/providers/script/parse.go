package script

import (
	"encoding/json"
	"fmt"
	"strings"

	"podcastgen/internal/domain"
)

// ParseScript decodes model output into dialogue lines. It tolerates a
// surrounding markdown fence and prose around the array; anything else is
// reported as domain.ErrMalformedResponse.
func ParseScript(raw string) ([]domain.DialogueLine, error) {
	text := trimCodeFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty script", domain.ErrMalformedResponse)
	}

	lines, err := decodeLines(text)
	if err == nil {
		return lines, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no json array in script: %v", domain.ErrMalformedResponse, err)
	}
	lines, err = decodeLines(text[start : end+1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return lines, nil
}

func decodeLines(text string) ([]domain.DialogueLine, error) {
	var lines []domain.DialogueLine
	if err := json.Unmarshal([]byte(text), &lines); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("script array is empty")
	}
	return lines, nil
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
	}
	return strings.TrimSpace(trimmed)
}
