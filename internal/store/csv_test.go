package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleCSV = `Sub Category, Price ,Rating,Title
Oils,"$8.50",4.2,Olive Oil 500ml
Dairy,"6.00",4.8,Cheddar Cheese
Dairy,"bad",,
Produce,"1,299.00",3.1,Saffron Threads
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

func TestImportGroceryCSV(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := ImportGroceryCSV(ctx, s, writeTempCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("ImportGroceryCSV failed: %v", err)
	}
	// The titleless row is skipped.
	if n != 3 {
		t.Fatalf("expected 3 imported rows, got %d", n)
	}

	items, err := s.SearchGroceryItems(ctx, "saffron", 10)
	if err != nil {
		t.Fatalf("SearchGroceryItems failed: %v", err)
	}
	if len(items) != 1 || items[0].Price != 1299.0 {
		t.Fatalf("expected thousands separator stripped, got %+v", items)
	}
}

func TestImportGroceryCSVSkipsWhenPopulated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	path := writeTempCSV(t, sampleCSV)
	if _, err := ImportGroceryCSV(ctx, s, path); err != nil {
		t.Fatalf("ImportGroceryCSV failed: %v", err)
	}

	n, err := ImportGroceryCSV(ctx, s, path)
	if err != nil {
		t.Fatalf("ImportGroceryCSV failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected repeat import to be a no-op, got %d", n)
	}

	count, err := s.CountGroceryItems(ctx)
	if err != nil {
		t.Fatalf("CountGroceryItems failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}
}

func TestImportGroceryCSVMissingColumn(t *testing.T) {
	s := newTestStore(t)

	path := writeTempCSV(t, "Title,Rating\nOlive Oil,4.2\n")
	if _, err := ImportGroceryCSV(context.Background(), s, path); err == nil {
		t.Fatal("expected error for missing columns")
	}
}
