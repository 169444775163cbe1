package search

import (
	"sort"
	"strings"

	"github.com/winfind/winfind/internal/models"
)

// usageWeight is the fraction at which learned preference contributes to a
// non-empty query's total score. Text relevance dominates.
const usageWeight = 0.3

// Ledger supplies the learned usage-preference score for an item.
type Ledger interface {
	PreferenceScore(it models.Item) float64
}

// Search ranks the catalog for query. Pure over its inputs: no I/O, safe on
// the interactive path, never fails.
//
// An empty query returns every item sorted by usage preference alone; items
// without usage history keep their catalog-merge order. A non-empty query
// blends text relevance with usage preference, drops items scoring zero or
// below, and sorts descending. Both sorts are stable so ties preserve the
// aggregator's deliberate merge order.
func Search(query string, catalog models.Catalog, ledger Ledger) []models.Item {
	items := make([]models.Item, len(catalog.Items))
	copy(items, catalog.Items)

	query = strings.ToLower(strings.TrimSpace(query))

	if query == "" {
		sort.SliceStable(items, func(i, j int) bool {
			return ledger.PreferenceScore(items[i]) > ledger.PreferenceScore(items[j])
		})
		return items
	}

	type scored struct {
		item  models.Item
		total float64
	}
	results := make([]scored, 0, len(items))
	for _, it := range items {
		total := Score(query, it) + ledger.PreferenceScore(it)*usageWeight
		if total <= 0 {
			continue
		}
		results = append(results, scored{item: it, total: total})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].total > results[j].total
	})

	ranked := make([]models.Item, len(results))
	for i, r := range results {
		ranked[i] = r.item
	}
	return ranked
}
