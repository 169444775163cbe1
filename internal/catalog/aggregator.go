// Package catalog aggregates switchable targets from every source adapter
// into one deduplicated, TTL-cached catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/winfind/winfind/internal/config"
	"github.com/winfind/winfind/internal/models"
	"github.com/winfind/winfind/pkg/source"
)

// ErrAllSourcesFailed is returned only when every source produced zero items
// and at least one reported a hard error. An all-empty result with no errors
// is a valid empty catalog.
var ErrAllSourcesFailed = errors.New("all catalog sources failed")

// SourceFailure records one adapter failure from the last refresh. Failures
// are a soft signal: the refresh still returns whatever the other sources
// produced.
type SourceFailure struct {
	Source           string `json:"source"`
	Error            string `json:"error"`
	PermissionDenied bool   `json:"permission_denied"`
	Timeout          bool   `json:"timeout"`
}

// Report summarizes the outcome of the last refresh.
type Report struct {
	RefreshedAt time.Time       `json:"refreshed_at"`
	ItemCount   int             `json:"item_count"`
	Failures    []SourceFailure `json:"failures,omitempty"`
}

// Partial reports whether the last refresh had at least one source failure.
func (r Report) Partial() bool {
	return len(r.Failures) > 0
}

// Aggregator orchestrates the source adapters and caches the merged catalog.
// All dependencies arrive through the constructor so tests can substitute
// fakes.
type Aggregator struct {
	cfg     *config.Config
	windows source.WindowSource
	apps    source.AppSource
	tabs    source.TabSource
	history source.HistorySource

	mu     sync.RWMutex
	cached *models.Catalog
	report Report

	flight singleflight.Group
	now    func() time.Time
}

// NewAggregator wires an aggregator from its source adapters. Any adapter
// may be nil; a nil adapter simply contributes no items.
func NewAggregator(cfg *config.Config, windows source.WindowSource, apps source.AppSource, tabs source.TabSource, history source.HistorySource) *Aggregator {
	return &Aggregator{
		cfg:     cfg,
		windows: windows,
		apps:    apps,
		tabs:    tabs,
		history: history,
		now:     time.Now,
	}
}

// GetCatalog returns the cached catalog while it is fresh, refreshing
// synchronously otherwise. Safe for concurrent use; a warm cache costs one
// read lock and no adapter I/O.
func (a *Aggregator) GetCatalog(ctx context.Context) (models.Catalog, error) {
	a.mu.RLock()
	if a.cached != nil && a.now().Sub(a.cached.FetchedAt) < a.cfg.Catalog.CacheTTL {
		cat := *a.cached
		a.mu.RUnlock()
		return cat, nil
	}
	a.mu.RUnlock()

	return a.Refresh(ctx)
}

// Refresh rebuilds the catalog from every source. Concurrent callers share a
// single in-flight refresh and all observe its result.
func (a *Aggregator) Refresh(ctx context.Context) (models.Catalog, error) {
	v, err, _ := a.flight.Do("refresh", func() (interface{}, error) {
		return a.doRefresh(ctx)
	})
	if err != nil {
		return models.Catalog{}, err
	}
	return v.(models.Catalog), nil
}

// Invalidate drops the cached catalog so the next GetCatalog refreshes. It
// does not cancel an in-flight refresh.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	a.cached = nil
	a.mu.Unlock()
}

// LastReport returns the outcome summary of the most recent refresh.
func (a *Aggregator) LastReport() Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report
}

func (a *Aggregator) doRefresh(ctx context.Context) (models.Catalog, error) {
	start := a.now()

	var (
		windowRecs  []source.WindowRecord
		appRecs     []source.AppRecord
		historyRecs []source.HistoryRecord
		windowErr   error
		appErr      error
		historyErr  error
	)

	// The three independent sources fan out concurrently; results land in
	// fixed slots so completion order never leaks into merge order. Errors
	// are captured per slot, never propagated through the group.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		windowRecs, windowErr = a.listWindows(gctx)
		return nil
	})
	g.Go(func() error {
		appRecs, appErr = a.listApplications(gctx)
		return nil
	})
	g.Go(func() error {
		historyRecs, historyErr = a.listHistory(gctx)
		return nil
	})
	_ = g.Wait()

	var failures []SourceFailure
	if windowErr != nil {
		log.Printf("catalog: window source failed: %v", windowErr)
		failures = append(failures, newFailure("windows", windowErr))
	}
	if appErr != nil {
		log.Printf("catalog: application source failed: %v", appErr)
		failures = append(failures, newFailure("applications", appErr))
	}
	if historyErr != nil {
		log.Printf("catalog: history source failed: %v", historyErr)
		failures = append(failures, newFailure("history", historyErr))
	}

	items := make([]models.Item, 0, len(windowRecs)+len(appRecs)+len(historyRecs))
	running := make(map[string]bool)

	// Windows and their tabs first: live targets beat launch entries and
	// history suggestions.
	for _, w := range windowRecs {
		if w.OwnerName == "" && w.Title == "" {
			continue
		}
		running[w.OwnerName] = true

		browser := a.cfg.IsTabCapable(w.OwnerName)
		if browser && a.tabs != nil {
			tabs, err := a.listTabs(ctx, w)
			if err != nil {
				log.Printf("catalog: tab automation failed for %s window %d: %v", w.OwnerName, w.Handle, err)
				failures = append(failures, newFailure("tabs/"+w.OwnerName, err))
			}
			if len(tabs) > 0 {
				// Tabs supersede the bare window entry, but only when
				// retrieval actually produced some. Failure or an empty
				// result falls back to the plain window item.
				for _, t := range tabs {
					items = append(items, models.NewTabItem(w.OwnerName, t.Title, t.URL, w.Handle, t.Index, w.ProcessID, start))
				}
				continue
			}
		}

		items = append(items, models.NewWindowItem(w.OwnerName, w.Title, w.Handle, w.ProcessID, browser, start))
	}

	// Non-running applications next, alphabetically.
	sort.SliceStable(appRecs, func(i, j int) bool {
		return strings.ToLower(appRecs[i].Name) < strings.ToLower(appRecs[j].Name)
	})
	for _, app := range appRecs {
		if running[app.Name] {
			continue
		}
		items = append(items, models.NewApplicationItem(app.Name, app.DesktopID, app.Icon, start))
	}

	// History tabs last, most recently visited first.
	sort.SliceStable(historyRecs, func(i, j int) bool {
		return historyRecs[i].LastVisit.After(historyRecs[j].LastVisit)
	})
	for _, h := range historyRecs {
		items = append(items, models.NewHistoryItem(h.Browser, h.Title, h.URL, h.LastVisit, start))
	}

	items = dedupeByID(items)

	if len(items) == 0 && len(failures) > 0 {
		a.mu.Lock()
		a.report = Report{RefreshedAt: start, Failures: failures}
		a.mu.Unlock()
		return models.Catalog{}, ErrAllSourcesFailed
	}

	cat := models.Catalog{Items: items, FetchedAt: start}

	a.mu.Lock()
	a.cached = &cat
	a.report = Report{RefreshedAt: start, ItemCount: len(items), Failures: failures}
	a.mu.Unlock()

	log.Printf("catalog: refresh complete, %d items (%d source failures)", len(items), len(failures))
	return cat, nil
}

func (a *Aggregator) listWindows(ctx context.Context) ([]source.WindowRecord, error) {
	if a.windows == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Catalog.AutomationTimeout)
	defer cancel()
	return a.windows.ListWindows(ctx)
}

func (a *Aggregator) listApplications(ctx context.Context) ([]source.AppRecord, error) {
	if a.apps == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Catalog.AutomationTimeout)
	defer cancel()
	return a.apps.ListApplications(ctx)
}

func (a *Aggregator) listHistory(ctx context.Context) ([]source.HistoryRecord, error) {
	if a.history == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Catalog.AutomationTimeout)
	defer cancel()
	return a.history.RecentEntries(ctx, a.cfg.Catalog.HistoryLimit)
}

func (a *Aggregator) listTabs(ctx context.Context, w source.WindowRecord) ([]source.TabRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Catalog.AutomationTimeout)
	defer cancel()
	tabs, err := a.tabs.ListTabs(ctx, w.OwnerName, w.Handle)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, source.ErrTimeout) {
		err = fmt.Errorf("%v: %w", err, source.ErrTimeout)
	}
	return tabs, err
}

// dedupeByID keeps the first item for each id. First-wins matches the merge
// priority: a live window beats anything merged after it.
func dedupeByID(items []models.Item) []models.Item {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

func newFailure(name string, err error) SourceFailure {
	return SourceFailure{
		Source:           name,
		Error:            err.Error(),
		PermissionDenied: errors.Is(err, source.ErrPermissionDenied),
		Timeout:          errors.Is(err, source.ErrTimeout),
	}
}
