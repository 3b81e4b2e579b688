package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const inventoryUsage = "To update inventory, send lines after '@gro inventory' in the form:\n" +
	"  product name, stock, safety_stock\n" +
	"For example:\n" +
	"  @gro inventory\n" +
	"  Tomatoes, 50, 20\n" +
	"  Cheese, 5, 10"

// ParsedInventory is the outcome of parsing an ingestion payload: the lines
// that parsed cleanly and the ones that did not, kept verbatim for the
// confirmation message.
type ParsedInventory struct {
	Valid     []InventoryEntry
	Malformed []string
}

// InventoryEntry is one well-formed ingestion line.
type InventoryEntry struct {
	ProductName string
	Stock       int
	SafetyStock int
}

// ParseInventoryLines parses the free text that follows the inventory
// trigger. A valid line has exactly three comma-separated fields: a non-empty
// product name and two non-negative integers. Anything else lands in
// Malformed unchanged; blank lines are skipped.
func ParseInventoryLines(text string) ParsedInventory {
	var parsed ParsedInventory
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, ok := parseInventoryLine(line)
		if !ok {
			parsed.Malformed = append(parsed.Malformed, line)
			continue
		}
		parsed.Valid = append(parsed.Valid, entry)
	}
	return parsed
}

func parseInventoryLine(line string) (InventoryEntry, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return InventoryEntry{}, false
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return InventoryEntry{}, false
	}
	stock, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || stock < 0 {
		return InventoryEntry{}, false
	}
	safety, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || safety < 0 {
		return InventoryEntry{}, false
	}
	return InventoryEntry{ProductName: name, Stock: stock, SafetyStock: safety}, true
}

// handleInventoryIngest parses the message remainder after the trigger,
// upserts the valid lines and replies with a confirmation that accounts for
// every input line.
func (p *Pipeline) handleInventoryIngest(ctx context.Context, roomID, userID int64, content string) {
	remainder := remainderAfter(content, triggerInventory)
	if strings.TrimSpace(remainder) == "" {
		p.sendAgentMessage(ctx, roomID, inventoryUsage)
		return
	}

	parsed := ParseInventoryLines(remainder)
	var stored int
	for _, entry := range parsed.Valid {
		if err := p.store.UpsertInventoryItem(ctx, userID, entry.ProductName, entry.Stock, entry.SafetyStock); err != nil {
			p.log.Error().Err(err).Str("product", entry.ProductName).Msg("inventory upsert failed")
			parsed.Malformed = append(parsed.Malformed, entry.ProductName+" (storage error)")
			continue
		}
		stored++
	}

	p.sendAgentMessage(ctx, roomID, inventoryConfirmation(stored, parsed.Malformed))
}

// remainderAfter returns everything after the first case-insensitive
// occurrence of the trigger.
func remainderAfter(content, trigger string) string {
	i := asciiIndexFold(content, trigger)
	if i < 0 {
		return ""
	}
	return content[i+len(trigger):]
}

func inventoryConfirmation(stored int, malformed []string) string {
	var sb strings.Builder
	if stored > 0 {
		fmt.Fprintf(&sb, "Updated %d inventory item(s).", stored)
	} else {
		sb.WriteString("No valid inventory lines found.")
	}
	if len(malformed) > 0 {
		sb.WriteString("\nCould not parse:\n")
		for _, line := range malformed {
			// Echoed exactly as received so the sender can spot the problem.
			sb.WriteString("  " + line + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
