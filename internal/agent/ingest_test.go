package agent

import (
	"strings"
	"testing"
)

func TestParseInventoryLines(t *testing.T) {
	parsed := ParseInventoryLines("Tomatoes, 50, 20\nBad Line\nCheese, x, 2\n\n  Olive Oil , 3 , 5 ")

	if len(parsed.Valid) != 2 {
		t.Fatalf("expected 2 valid lines, got %d: %+v", len(parsed.Valid), parsed.Valid)
	}
	first := parsed.Valid[0]
	if first.ProductName != "Tomatoes" || first.Stock != 50 || first.SafetyStock != 20 {
		t.Fatalf("unexpected entry: %+v", first)
	}
	second := parsed.Valid[1]
	if second.ProductName != "Olive Oil" || second.Stock != 3 || second.SafetyStock != 5 {
		t.Fatalf("unexpected entry: %+v", second)
	}

	if len(parsed.Malformed) != 2 {
		t.Fatalf("expected 2 malformed lines, got %d: %v", len(parsed.Malformed), parsed.Malformed)
	}
	// Malformed lines are preserved verbatim.
	if parsed.Malformed[0] != "Bad Line" || parsed.Malformed[1] != "Cheese, x, 2" {
		t.Fatalf("malformed lines not verbatim: %v", parsed.Malformed)
	}
}

func TestParseInventoryLinesRejectsNegativeAndEmpty(t *testing.T) {
	parsed := ParseInventoryLines("Apples, -1, 2\n, 3, 4\nPears, 1, 2, 3")
	if len(parsed.Valid) != 0 {
		t.Fatalf("expected no valid lines, got %+v", parsed.Valid)
	}
	if len(parsed.Malformed) != 3 {
		t.Fatalf("expected 3 malformed lines, got %v", parsed.Malformed)
	}
}

func TestParseInventoryLinesEmpty(t *testing.T) {
	parsed := ParseInventoryLines(" \n\n ")
	if len(parsed.Valid) != 0 || len(parsed.Malformed) != 0 {
		t.Fatalf("expected empty result, got %+v", parsed)
	}
}

func TestInventoryConfirmation(t *testing.T) {
	msg := inventoryConfirmation(2, []string{"Bad Line"})
	if !strings.Contains(msg, "Updated 2 inventory item(s).") {
		t.Fatalf("missing success count: %q", msg)
	}
	if !strings.Contains(msg, "Bad Line") {
		t.Fatalf("missing malformed echo: %q", msg)
	}

	msg = inventoryConfirmation(0, nil)
	if msg != "No valid inventory lines found." {
		t.Fatalf("unexpected message: %q", msg)
	}

	// Malformed lines are echoed exactly as received, whitespace included.
	msg = inventoryConfirmation(0, []string{"  spaced, line  "})
	if !strings.Contains(msg, "  spaced, line  ") {
		t.Fatalf("malformed line not echoed verbatim: %q", msg)
	}
}

func TestRemainderAfter(t *testing.T) {
	got := remainderAfter("please @GRO inventory\nTomatoes, 1, 2", triggerInventory)
	if got != "\nTomatoes, 1, 2" {
		t.Fatalf("unexpected remainder: %q", got)
	}
	if remainderAfter("no trigger here", triggerInventory) != "" {
		t.Fatal("expected empty remainder without trigger")
	}
}

// The byte offset of the trigger must stay valid when the text before it
// contains multi-byte cased runes whose lowercase form has a different byte
// length.
func TestRemainderAfterMultibytePrefix(t *testing.T) {
	got := remainderAfter(strings.Repeat("Ⱥ", 20)+"@gro inventory\nEggs, 6, 12", triggerInventory)
	if got != "\nEggs, 6, 12" {
		t.Fatalf("growing rune prefix mishandled: %q", got)
	}
	got = remainderAfter("İİ @gro inventory\nEggs, 6, 12", triggerInventory)
	if got != "\nEggs, 6, 12" {
		t.Fatalf("shrinking rune prefix mishandled: %q", got)
	}
}
