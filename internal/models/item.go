package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind tags a catalog item. The set is closed; every consumer switches
// exhaustively over it.
type Kind int

const (
	KindApplication Kind = iota // installed but not running
	KindWindow                  // visible top-level window
	KindTab                     // open browser tab
	KindHistoryTab              // recently visited page from browser history
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindWindow:
		return "window"
	case KindTab:
		return "tab"
	case KindHistoryTab:
		return "history"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NoWindow is the window-handle sentinel for kinds that have no window.
const NoWindow = -1

// NoTab is the tab-index sentinel for kinds that are not tabs.
const NoTab = -1

// futureSlack bounds how far past "now" a source-reported timestamp may lie
// before it is considered corrupt.
const futureSlack = 24 * time.Hour

// Item is the unit of search: one switchable target.
type Item struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	OwnerName    string    `json:"owner_name"`
	WindowHandle int       `json:"window_handle"` // NoWindow unless Kind is Window or Tab
	TabIndex     int       `json:"tab_index"`     // NoTab unless Kind is Tab
	ProcessID    int       `json:"process_id"`
	Icon         string    `json:"icon,omitempty"` // icon reference (theme name, path or URL)
	URL          string    `json:"url,omitempty"`  // set for Tab/HistoryTab when known
	LastAccess   time.Time `json:"last_access"`
}

// idSpace namespaces the deterministic item ids. Ids are derived from the
// item's identity fields so an unchanged system produces identical ids
// refresh after refresh.
var idSpace = uuid.MustParse("9c0d4b6e-3f5a-4c1d-8e2b-7a6f5d4c3b2a")

func itemID(parts string) string {
	return uuid.NewSHA1(idSpace, []byte(parts)).String()
}

// NewWindowItem builds a Window-kind item. Untitled windows fall back to the
// owner name with a generic subtitle so they stay searchable.
func NewWindowItem(ownerName, windowTitle string, handle, pid int, browserWindow bool, now time.Time) Item {
	subtitle := windowTitle
	if windowTitle == "" || windowTitle == " " {
		if browserWindow {
			subtitle = "Browser Window"
		} else {
			subtitle = "Window"
		}
	}
	return Item{
		ID:           itemID(fmt.Sprintf("window/%d", handle)),
		Kind:         KindWindow,
		Title:        ownerName,
		Subtitle:     subtitle,
		OwnerName:    ownerName,
		WindowHandle: handle,
		TabIndex:     NoTab,
		ProcessID:    pid,
		LastAccess:   now,
	}
}

// NewTabItem builds a Tab-kind item for one open browser tab.
func NewTabItem(ownerName, title, url string, handle, tabIndex, pid int, now time.Time) Item {
	if title == "" {
		title = "Untitled Tab"
	}
	return Item{
		ID:           itemID(fmt.Sprintf("tab/%d/%d", handle, tabIndex)),
		Kind:         KindTab,
		Title:        title,
		Subtitle:     fmt.Sprintf("%s - %s", ownerName, url),
		OwnerName:    ownerName,
		WindowHandle: handle,
		TabIndex:     tabIndex,
		ProcessID:    pid,
		URL:          url,
		LastAccess:   now,
	}
}

// NewApplicationItem builds an Application-kind item for an installed,
// not-running application.
func NewApplicationItem(name, desktopID, icon string, now time.Time) Item {
	return Item{
		ID:           itemID("app/" + desktopID),
		Kind:         KindApplication,
		Title:        name,
		Subtitle:     "Application",
		OwnerName:    name,
		WindowHandle: NoWindow,
		TabIndex:     NoTab,
		Icon:         icon,
		LastAccess:   now,
	}
}

// NewHistoryItem builds a HistoryTab-kind item. lastVisit is clamped to
// [epoch, now+slack]; history databases are not trusted to carry sane dates.
func NewHistoryItem(browser, title, url string, lastVisit, now time.Time) Item {
	if title == "" {
		title = url
	}
	return Item{
		ID:           itemID("history/" + url),
		Kind:         KindHistoryTab,
		Title:        title,
		Subtitle:     fmt.Sprintf("%s - %s", browser, url),
		WindowHandle: NoWindow,
		TabIndex:     NoTab,
		URL:          url,
		LastAccess:   ClampTime(lastVisit, now),
	}
}

// ClampTime forces t into the sane window [unix epoch, now+futureSlack].
// Out-of-range values collapse to now rather than propagating garbage dates.
func ClampTime(t, now time.Time) time.Time {
	if t.IsZero() || t.Before(time.Unix(0, 0)) || t.After(now.Add(futureSlack)) {
		return now
	}
	return t
}

// Signature is the process-restart-stable usage-tracking key. It is
// deliberately coarser than ID: a window keeps its usage history across
// restarts even though its handle changes.
func (it Item) Signature() string {
	return it.Title + "|" + it.OwnerName
}

// Validate checks the per-kind invariants.
func (it Item) Validate() error {
	if it.Title == "" {
		return fmt.Errorf("item %s: empty title", it.ID)
	}
	switch it.Kind {
	case KindWindow:
		if it.WindowHandle < 0 {
			return fmt.Errorf("window item %q: negative window handle", it.Title)
		}
		if it.TabIndex != NoTab {
			return fmt.Errorf("window item %q: unexpected tab index", it.Title)
		}
	case KindTab:
		if it.WindowHandle < 0 {
			return fmt.Errorf("tab item %q: negative window handle", it.Title)
		}
		if it.TabIndex < 0 {
			return fmt.Errorf("tab item %q: missing tab index", it.Title)
		}
	case KindApplication:
		if it.WindowHandle != NoWindow || it.TabIndex != NoTab {
			return fmt.Errorf("application item %q: window fields set", it.Title)
		}
	case KindHistoryTab:
		if it.WindowHandle != NoWindow || it.TabIndex != NoTab {
			return fmt.Errorf("history item %q: window fields set", it.Title)
		}
		if it.URL == "" {
			return fmt.Errorf("history item %q: missing url", it.Title)
		}
	default:
		return fmt.Errorf("item %q: unknown kind %d", it.Title, int(it.Kind))
	}
	return nil
}

// Catalog is the merged result of one aggregator refresh.
type Catalog struct {
	Items     []Item    `json:"items"`
	FetchedAt time.Time `json:"fetched_at"`
}
