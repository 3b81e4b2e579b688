package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

type fakeSearcher struct {
	results map[string][]domain.GroceryItem
	err     error
	queries []string
}

func (f *fakeSearcher) SearchGroceryItems(ctx context.Context, term string, limit int) ([]domain.GroceryItem, error) {
	f.queries = append(f.queries, term)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[term], nil
}

func TestFindRelatedErrorTreatedAsEmpty(t *testing.T) {
	a := NewAdapter(&fakeSearcher{err: errors.New("db closed")}, zerolog.Nop())

	got := a.FindRelated(context.Background(), "olive", 10)
	if got != nil {
		t.Fatalf("expected nil on error, got %v", got)
	}
}

func TestFindRelatedForTermsDedupes(t *testing.T) {
	s := &fakeSearcher{results: map[string][]domain.GroceryItem{
		"oil": {
			{Title: "Olive Oil 500ml", Price: 8.5},
			{Title: "Sunflower Oil", Price: 4.0},
		},
		"olive": {
			{Title: "Olive Oil 500ml", Price: 8.5},
			{Title: "Olive Tapenade", Price: 6.0},
		},
	}}
	a := NewAdapter(s, zerolog.Nop())

	got := a.FindRelatedForTerms(context.Background(), []string{"oil", "olive", "oil"}, 10)

	// "oil" queried once despite appearing twice.
	if len(s.queries) != 2 {
		t.Fatalf("expected 2 queries, got %v", s.queries)
	}
	// Titles merged with first-seen order preserved.
	want := []string{"Olive Oil 500ml", "Sunflower Oil", "Olive Tapenade"}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %+v", len(want), got)
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("unexpected order at %d: got %q want %q", i, got[i].Title, title)
		}
	}
}

func TestFindRelatedForTermsEmpty(t *testing.T) {
	s := &fakeSearcher{}
	a := NewAdapter(s, zerolog.Nop())

	if got := a.FindRelatedForTerms(context.Background(), nil, 10); len(got) != 0 {
		t.Fatalf("expected no items, got %v", got)
	}
	if len(s.queries) != 0 {
		t.Fatalf("expected no queries, got %v", s.queries)
	}
}
