package llm

import "testing"

func TestExtractJSONWholeText(t *testing.T) {
	m := ExtractJSON(`{"narrative": "ok", "count": 2}`)
	if m["narrative"] != "ok" {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestExtractJSONEmbedded(t *testing.T) {
	m := ExtractJSON("Sure! Here is the result:\n```json\n{\"a\": 1}\n```\nLet me know.")
	if v, ok := m["a"].(float64); !ok || v != 1 {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestExtractJSONNestedBraces(t *testing.T) {
	m := ExtractJSON(`prefix {"outer": {"inner": true}} suffix`)
	outer, ok := m["outer"].(map[string]any)
	if !ok || outer["inner"] != true {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	for _, text := range []string{"not json at all", "", "{broken", "[1, 2, 3]"} {
		m := ExtractJSON(text)
		if m == nil || len(m) != 0 {
			t.Fatalf("expected empty map for %q, got %v", text, m)
		}
	}
}
