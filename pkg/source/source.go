package source

import (
	"context"
	"time"
)

// WindowRecord describes one visible top-level window as reported by the
// window system.
type WindowRecord struct {
	OwnerName string // display name of the owning application
	Handle    int    // window-system identifier
	ProcessID int
	Title     string
}

// AppRecord describes one installed application.
type AppRecord struct {
	Name      string
	DesktopID string // desktop-file id, stable across scans
	Exec      string
	Icon      string
}

// TabRecord describes one open browser tab.
type TabRecord struct {
	Index int
	Title string
	URL   string
}

// HistoryRecord describes one recently visited page. LastVisit has already
// been converted from the browser's native epoch and range-checked.
type HistoryRecord struct {
	Browser   string
	Title     string
	URL       string
	LastVisit time.Time
}

// WindowSource enumerates visible top-level windows. Best effort: an empty
// list is a valid result.
type WindowSource interface {
	ListWindows(ctx context.Context) ([]WindowRecord, error)
}

// AppSource enumerates installed applications.
type AppSource interface {
	ListApplications(ctx context.Context) ([]AppRecord, error)
}

// TabSource enumerates the open tabs of one browser window. Failures are
// typed (see errors.go) so permission problems can be told apart from a
// browser that simply is not running or not scriptable.
type TabSource interface {
	ListTabs(ctx context.Context, ownerName string, handle int) ([]TabRecord, error)
}

// HistorySource returns recently visited pages across all supported
// browsers, most recent first, at most limit entries.
type HistorySource interface {
	RecentEntries(ctx context.Context, limit int) ([]HistoryRecord, error)
}

// FaviconSource fetches the favicon image for a page URL. Implementations
// are expected to be network-bound and cacheable.
type FaviconSource interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}
