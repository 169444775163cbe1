// Package history reads recently visited pages out of browser history
// databases. Browsers keep these sqlite files locked while running, so each
// read works on a throwaway copy.
package history

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/winfind/winfind/pkg/source"
)

// chromeEpochOffset converts Chrome timestamps (microseconds since
// 1601-01-01) to the unix epoch.
const chromeEpochOffset = int64(11644473600000000)

// futureSlack bounds how far past now a stored visit time may lie before
// the row is considered corrupt and dropped.
const futureSlack = 24 * time.Hour

type browserConfig struct {
	name   string
	path   string
	flavor flavor
}

type flavor int

const (
	flavorChromium flavor = iota
	flavorFirefox
)

// Source implements source.HistorySource across every installed browser it
// knows about. Browsers fail independently; partial success is success.
type Source struct {
	window   time.Duration
	browsers []browserConfig
	now      func() time.Time
}

// NewSource creates a history source covering the stock browser install
// locations. window bounds how far back entries are considered.
func NewSource(window time.Duration) *Source {
	home, _ := os.UserHomeDir()
	return &Source{
		window: window,
		browsers: []browserConfig{
			{name: "Google Chrome", path: filepath.Join(home, ".config/google-chrome/Default/History"), flavor: flavorChromium},
			{name: "Chromium", path: filepath.Join(home, ".config/chromium/Default/History"), flavor: flavorChromium},
			{name: "Brave Browser", path: filepath.Join(home, ".config/BraveSoftware/Brave-Browser/Default/History"), flavor: flavorChromium},
			{name: "Microsoft Edge", path: filepath.Join(home, ".config/microsoft-edge/Default/History"), flavor: flavorChromium},
			{name: "Firefox", path: firefoxPlacesPath(home), flavor: flavorFirefox},
		},
		now: time.Now,
	}
}

// RecentEntries returns up to limit entries across all browsers, most
// recent first. An error surfaces only when every browser failed and zero
// entries were produced; a system with no browsers installed is an empty
// success.
func (s *Source) RecentEntries(ctx context.Context, limit int) ([]source.HistoryRecord, error) {
	// Extreme limits clamp, they never error.
	if limit < 0 {
		limit = 0
	}
	if limit > 10000 {
		limit = 10000
	}
	if limit == 0 {
		return nil, nil
	}

	var all []source.HistoryRecord
	var lastErr error

	for _, browser := range s.browsers {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}
		if browser.path == "" {
			continue
		}
		if _, err := os.Stat(browser.path); err != nil {
			continue // not installed, not a failure
		}

		entries, err := s.readBrowser(browser, limit)
		if err != nil {
			log.Printf("history: %s read failed: %v", browser.name, err)
			lastErr = err
			continue
		}
		all = append(all, entries...)
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LastVisit.After(all[j].LastVisit)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Source) readBrowser(browser browserConfig, limit int) ([]source.HistoryRecord, error) {
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("winfind_history_%s.db", uuid.NewString()))
	if err := copyFile(browser.path, tmpPath); err != nil {
		return nil, fmt.Errorf("failed to copy %s history database: %w", browser.name, err)
	}
	defer os.Remove(tmpPath)

	db, err := gorm.Open(sqlite.Open(tmpPath+"?mode=ro"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s history database: %w", browser.name, err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	switch browser.flavor {
	case flavorChromium:
		return s.readChromium(db, browser.name, limit)
	case flavorFirefox:
		return s.readFirefox(db, browser.name, limit)
	default:
		return nil, fmt.Errorf("unknown browser flavor for %s", browser.name)
	}
}

type chromiumRow struct {
	URL           string
	Title         string
	LastVisitTime int64
}

func (s *Source) readChromium(db *gorm.DB, name string, limit int) ([]source.HistoryRecord, error) {
	cutoff := s.now().Add(-s.window).UnixMicro() + chromeEpochOffset

	var rows []chromiumRow
	err := db.Raw(`
		SELECT url, title, last_visit_time
		FROM urls
		WHERE last_visit_time > ? AND hidden = 0 AND title != ''
		ORDER BY last_visit_time DESC
		LIMIT ?`, cutoff, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s history: %w", name, err)
	}

	records := make([]source.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		visit, ok := s.convertMicros(row.LastVisitTime - chromeEpochOffset)
		if !ok {
			// Corrupt timestamp drops the row, never the whole fetch.
			log.Printf("history: dropping %s entry with out-of-range timestamp %d", name, row.LastVisitTime)
			continue
		}
		records = append(records, source.HistoryRecord{
			Browser:   name,
			Title:     row.Title,
			URL:       row.URL,
			LastVisit: visit,
		})
	}
	return records, nil
}

type firefoxRow struct {
	URL           string
	Title         string
	LastVisitDate int64
}

func (s *Source) readFirefox(db *gorm.DB, name string, limit int) ([]source.HistoryRecord, error) {
	cutoff := s.now().Add(-s.window).UnixMicro()

	var rows []firefoxRow
	err := db.Raw(`
		SELECT url, title, last_visit_date
		FROM moz_places
		WHERE last_visit_date > ? AND hidden = 0 AND title IS NOT NULL AND title != ''
		ORDER BY last_visit_date DESC
		LIMIT ?`, cutoff, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s history: %w", name, err)
	}

	records := make([]source.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		visit, ok := s.convertMicros(row.LastVisitDate)
		if !ok {
			log.Printf("history: dropping %s entry with out-of-range timestamp %d", name, row.LastVisitDate)
			continue
		}
		records = append(records, source.HistoryRecord{
			Browser:   name,
			Title:     row.Title,
			URL:       row.URL,
			LastVisit: visit,
		})
	}
	return records, nil
}

// convertMicros turns microseconds since the unix epoch into a time,
// rejecting values outside [epoch, now+slack].
func (s *Source) convertMicros(micros int64) (time.Time, bool) {
	if micros <= 0 {
		return time.Time{}, false
	}
	t := time.UnixMicro(micros)
	if t.After(s.now().Add(futureSlack)) {
		return time.Time{}, false
	}
	return t, true
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}

// firefoxPlacesPath finds the default Firefox profile's places database, or
// "" when no profile exists.
func firefoxPlacesPath(home string) string {
	profilesDir := filepath.Join(home, ".mozilla/firefox")
	entries, err := os.ReadDir(profilesDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(profilesDir, entry.Name(), "places.sqlite")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
