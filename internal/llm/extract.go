package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers a JSON object from model output. It first parses the
// whole text, then falls back to the substring between the first '{' and the
// last '}' to tolerate leading or trailing prose. On total failure it returns
// an empty map; callers supply defaults for missing keys.
func ExtractJSON(text string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err == nil && m != nil {
		return m
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		m = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &m); err == nil && m != nil {
			return m
		}
	}

	return map[string]any{}
}
