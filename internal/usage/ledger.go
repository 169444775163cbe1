// Package usage tracks which catalog entries the user actually picks and
// turns that history into a preference score the search engine blends into
// its ranking.
package usage

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/winfind/winfind/internal/database"
	"github.com/winfind/winfind/internal/models"
)

const (
	maxHistoryCount = 50
	maxSuggestions  = 5

	// Recency bonus: max 5 points, linear decay of 0.5/day, zero after 10
	// days. Keeps one very recent pick from outweighing a long history.
	recencyCap   = 5.0
	recencyDecay = 0.5
)

type record struct {
	count        int
	lastSelected time.Time
}

// Ledger holds selection counts keyed by item signature plus the raw search
// query history. State lives in memory and writes through to the repository;
// a nil repository gives a purely in-memory ledger (tests, one-shot runs).
type Ledger struct {
	mu      sync.RWMutex
	records map[string]record
	queries []string

	repo *database.Repository
	now  func() time.Time
}

// NewLedger builds a ledger, loading persisted state when repo is non-nil.
func NewLedger(repo *database.Repository) *Ledger {
	l := &Ledger{
		records: make(map[string]record),
		repo:    repo,
		now:     time.Now,
	}
	if repo == nil {
		return l
	}

	rows, err := repo.LoadUsage()
	if err != nil {
		log.Printf("usage: failed to load usage records, starting empty: %v", err)
	}
	for _, row := range rows {
		l.records[row.Signature] = record{count: row.Count, lastSelected: row.LastSelected}
	}

	queries, err := repo.LoadQueries()
	if err != nil {
		log.Printf("usage: failed to load search history, starting empty: %v", err)
	}
	l.queries = queries

	return l
}

// RecordSelection bumps the selection count for the item's signature and
// stamps it with the current time.
func (l *Ledger) RecordSelection(it models.Item) {
	l.mu.Lock()
	rec := l.records[it.Signature()]
	rec.count++
	rec.lastSelected = l.now()
	l.records[it.Signature()] = rec
	l.mu.Unlock()

	if l.repo != nil {
		if err := l.repo.UpsertUsage(it.Signature(), rec.count, rec.lastSelected); err != nil {
			log.Printf("usage: failed to persist selection for %q: %v", it.Signature(), err)
		}
	}
}

// PreferenceScore returns count plus a recency bonus for the item's
// signature, zero when the item has never been selected.
func (l *Ledger) PreferenceScore(it models.Item) float64 {
	l.mu.RLock()
	rec, ok := l.records[it.Signature()]
	l.mu.RUnlock()
	if !ok {
		return 0
	}

	days := l.now().Sub(rec.lastSelected).Hours() / 24
	recency := recencyCap - days*recencyDecay
	if recency < 0 {
		recency = 0
	}
	return float64(rec.count) + recency
}

// RecordQuery prepends text to the search history. An exact repeat moves to
// the front instead of duplicating; the history is capped at 50 entries.
func (l *Ledger) RecordQuery(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	l.mu.Lock()
	kept := make([]string, 0, len(l.queries)+1)
	kept = append(kept, text)
	for _, q := range l.queries {
		if q != text {
			kept = append(kept, q)
		}
	}
	if len(kept) > maxHistoryCount {
		kept = kept[:maxHistoryCount]
	}
	l.queries = kept
	snapshot := make([]string, len(kept))
	copy(snapshot, kept)
	l.mu.Unlock()

	if l.repo != nil {
		if err := l.repo.ReplaceQueries(snapshot); err != nil {
			log.Printf("usage: failed to persist search history: %v", err)
		}
	}
}

// RecentQueries returns the search history, most recent first.
func (l *Ledger) RecentQueries() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.queries))
	copy(out, l.queries)
	return out
}

// Suggest returns up to 5 history entries containing prefix, most recent
// first. An empty prefix returns the newest 5 entries.
func (l *Ledger) Suggest(prefix string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, maxSuggestions)
	if prefix == "" {
		for _, q := range l.queries {
			if len(out) == maxSuggestions {
				break
			}
			out = append(out, q)
		}
		return out
	}

	needle := strings.ToLower(prefix)
	for _, q := range l.queries {
		if len(out) == maxSuggestions {
			break
		}
		if strings.Contains(strings.ToLower(q), needle) {
			out = append(out, q)
		}
	}
	return out
}

// TopSelections returns the most-selected signatures with counts, highest
// first.
func (l *Ledger) TopSelections(limit int) []models.UsageRecord {
	if limit <= 0 {
		return nil
	}
	if l.repo != nil {
		rows, err := l.repo.TopSelections(limit)
		if err == nil {
			return rows
		}
		log.Printf("usage: failed to query top selections: %v", err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	rows := make([]models.UsageRecord, 0, len(l.records))
	for sig, rec := range l.records {
		rows = append(rows, models.UsageRecord{Signature: sig, Count: rec.count, LastSelected: rec.lastSelected})
	}
	sortTop(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// Clear erases selection counts and search history, in memory and on disk.
// Intended for resets and tests, not a casual user action.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	l.records = make(map[string]record)
	l.queries = nil
	l.mu.Unlock()

	if l.repo != nil {
		return l.repo.Clear()
	}
	return nil
}
