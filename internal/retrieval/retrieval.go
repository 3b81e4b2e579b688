// Package retrieval adapts the grocery catalog search for pipeline use.
package retrieval

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

// Searcher is the catalog search contract the adapter delegates to. The
// three-tier fallback (title match, category match, top-rated) lives behind
// this interface.
type Searcher interface {
	SearchGroceryItems(ctx context.Context, term string, limit int) ([]domain.GroceryItem, error)
}

// Adapter issues one catalog query per product term and merges the results.
type Adapter struct {
	searcher Searcher
	log      zerolog.Logger
}

// NewAdapter creates a retrieval adapter.
func NewAdapter(searcher Searcher, log zerolog.Logger) *Adapter {
	return &Adapter{
		searcher: searcher,
		log:      log.With().Str("component", "retrieval").Logger(),
	}
}

// FindRelated returns catalog candidates for one product term. A failed query
// is treated as zero candidates, never a pipeline failure.
func (a *Adapter) FindRelated(ctx context.Context, term string, limit int) []domain.GroceryItem {
	items, err := a.searcher.SearchGroceryItems(ctx, term, limit)
	if err != nil {
		a.log.Warn().Err(err).Str("term", term).Msg("catalog query failed, treating as empty")
		return nil
	}
	return items
}

// FindRelatedForTerms queries once per distinct term, then merges and
// deduplicates candidates by title, preserving first-seen order.
func (a *Adapter) FindRelatedForTerms(ctx context.Context, terms []string, limitPerTerm int) []domain.GroceryItem {
	seenTerms := make(map[string]struct{}, len(terms))
	seenTitles := make(map[string]struct{})
	var merged []domain.GroceryItem

	for _, term := range terms {
		if _, ok := seenTerms[term]; ok {
			continue
		}
		seenTerms[term] = struct{}{}

		for _, item := range a.FindRelated(ctx, term, limitPerTerm) {
			if _, ok := seenTitles[item.Title]; ok {
				continue
			}
			seenTitles[item.Title] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}
