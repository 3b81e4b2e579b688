package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

// Expected CSV headers. The price column is padded in the source dataset.
const (
	csvHeaderCategory = "Sub Category"
	csvHeaderPrice    = "Price"
	csvHeaderRating   = "Rating"
	csvHeaderTitle    = "Title"
)

// ImportGroceryCSV loads the grocery catalog from a CSV file unless the
// catalog is already populated. Rows that fail to parse are skipped; the
// number of imported rows is returned.
func ImportGroceryCSV(ctx context.Context, s Store, path string) (int, error) {
	count, err := s.CountGroceryItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count catalog rows: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open catalog csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{csvHeaderTitle, csvHeaderCategory, csvHeaderPrice} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("catalog csv missing column %q", required)
		}
	}

	var items []domain.GroceryItem
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		title := strings.TrimSpace(field(record, cols[csvHeaderTitle]))
		if title == "" {
			continue
		}
		item := domain.GroceryItem{
			Title:       title,
			SubCategory: strings.TrimSpace(field(record, cols[csvHeaderCategory])),
			Price:       parsePrice(field(record, cols[csvHeaderPrice])),
		}
		if i, ok := cols[csvHeaderRating]; ok {
			item.RatingValue, _ = strconv.ParseFloat(strings.TrimSpace(field(record, i)), 64)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return 0, nil
	}
	if err := s.InsertGroceryItems(ctx, items); err != nil {
		return 0, fmt.Errorf("failed to insert catalog rows: %w", err)
	}
	return len(items), nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// parsePrice tolerates currency symbols and thousands separators.
func parsePrice(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.':
			return r
		default:
			return -1
		}
	}, raw)
	v, _ := strconv.ParseFloat(cleaned, 64)
	return v
}
