package models

import (
	"strings"
	"testing"
	"time"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindApplication: "application",
		KindWindow:      "window",
		KindTab:         "tab",
		KindHistoryTab:  "history",
		Kind(99):        "kind(99)",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestNewWindowItem(t *testing.T) {
	now := time.Now()
	it := NewWindowItem("Terminal", "bash - /home", 42, 1234, false, now)

	if it.Kind != KindWindow {
		t.Fatalf("kind = %v, want window", it.Kind)
	}
	if it.Title != "Terminal" || it.Subtitle != "bash - /home" {
		t.Errorf("title/subtitle = %q/%q", it.Title, it.Subtitle)
	}
	if it.WindowHandle != 42 || it.TabIndex != NoTab || it.ProcessID != 1234 {
		t.Errorf("handle/tab/pid = %d/%d/%d", it.WindowHandle, it.TabIndex, it.ProcessID)
	}
	if err := it.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNewWindowItemUntitledFallback(t *testing.T) {
	now := time.Now()

	plain := NewWindowItem("Terminal", "", 1, 10, false, now)
	if plain.Subtitle != "Window" {
		t.Errorf("plain subtitle = %q, want Window", plain.Subtitle)
	}
	browser := NewWindowItem("Google Chrome", " ", 2, 11, true, now)
	if browser.Subtitle != "Browser Window" {
		t.Errorf("browser subtitle = %q, want Browser Window", browser.Subtitle)
	}
}

func TestNewTabItemUntitledFallback(t *testing.T) {
	it := NewTabItem("Google Chrome", "", "https://example.org", 1, 0, 10, time.Now())
	if it.Title != "Untitled Tab" {
		t.Errorf("title = %q, want Untitled Tab", it.Title)
	}
	if err := it.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNewHistoryItemTitleFallsBackToURL(t *testing.T) {
	it := NewHistoryItem("Firefox", "", "https://example.org/page", time.Now().Add(-time.Hour), time.Now())
	if it.Title != "https://example.org/page" {
		t.Errorf("title = %q, want the url", it.Title)
	}
	if !strings.HasPrefix(it.Subtitle, "Firefox - ") {
		t.Errorf("subtitle = %q, want browser prefix", it.Subtitle)
	}
}

func TestDeterministicIDs(t *testing.T) {
	a := NewWindowItem("Terminal", "bash", 42, 100, false, time.Now())
	b := NewWindowItem("Terminal", "vim", 42, 200, false, time.Now().Add(time.Minute))
	if a.ID != b.ID {
		t.Errorf("same handle produced different ids: %q vs %q", a.ID, b.ID)
	}

	c := NewWindowItem("Terminal", "bash", 43, 100, false, time.Now())
	if a.ID == c.ID {
		t.Error("different handles produced the same id")
	}

	t1 := NewTabItem("Google Chrome", "GitHub", "https://github.com", 1, 0, 10, time.Now())
	t2 := NewTabItem("Google Chrome", "GitHub", "https://github.com", 1, 1, 10, time.Now())
	if t1.ID == t2.ID {
		t.Error("different tab indexes produced the same id")
	}

	h1 := NewHistoryItem("Firefox", "Docs", "https://example.org", time.Now(), time.Now())
	h2 := NewHistoryItem("Chrome", "Docs again", "https://example.org", time.Now(), time.Now())
	if h1.ID != h2.ID {
		t.Error("same url must map to the same history id regardless of browser")
	}
}

func TestSignatureStableAcrossHandles(t *testing.T) {
	a := NewWindowItem("Terminal", "bash", 42, 100, false, time.Now())
	b := NewWindowItem("Terminal", "bash", 900, 7, false, time.Now())
	if a.Signature() != b.Signature() {
		t.Errorf("signature changed with handle: %q vs %q", a.Signature(), b.Signature())
	}
	if a.ID == b.ID {
		t.Error("ids should differ when the handle differs")
	}
}

func TestClampTime(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"zero", time.Time{}, now},
		{"pre-epoch", time.Unix(-100, 0), now},
		{"far future", now.Add(48 * time.Hour), now},
		{"slight future", now.Add(time.Hour), now.Add(time.Hour)},
		{"normal past", now.Add(-time.Hour), now.Add(-time.Hour)},
	}
	for _, tc := range cases {
		if got := ClampTime(tc.in, now); !got.Equal(tc.want) {
			t.Errorf("%s: ClampTime = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidateRejectsMalformedItems(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name string
		item Item
	}{
		{"empty title", Item{Kind: KindWindow, WindowHandle: 1, TabIndex: NoTab}},
		{"window with tab index", func() Item {
			it := NewWindowItem("Terminal", "bash", 1, 10, false, now)
			it.TabIndex = 3
			return it
		}()},
		{"tab without index", func() Item {
			it := NewTabItem("Chrome", "GitHub", "https://github.com", 1, 0, 10, now)
			it.TabIndex = NoTab
			return it
		}()},
		{"application with handle", func() Item {
			it := NewApplicationItem("Notes", "notes", "", now)
			it.WindowHandle = 5
			return it
		}()},
		{"history without url", func() Item {
			it := NewHistoryItem("Firefox", "Docs", "https://example.org", now, now)
			it.URL = ""
			return it
		}()},
		{"unknown kind", Item{Kind: Kind(42), Title: "x"}},
	}
	for _, tc := range cases {
		if err := tc.item.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want error", tc.name)
		}
	}
}
