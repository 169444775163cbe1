package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/winfind/winfind/internal/catalog"
	"github.com/winfind/winfind/internal/config"
	"github.com/winfind/winfind/internal/models"
	"github.com/winfind/winfind/internal/usage"
	"github.com/winfind/winfind/pkg/source"
)

type stubWindows struct {
	records []source.WindowRecord
}

func (s *stubWindows) ListWindows(ctx context.Context) ([]source.WindowRecord, error) {
	return s.records, nil
}

type stubFavicons struct {
	icon []byte
	err  error
}

func (s *stubFavicons) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	return s.icon, s.err
}

func newTestMux(t *testing.T, favicons source.FaviconSource) (*http.ServeMux, *usage.Ledger) {
	t.Helper()
	cfg := config.Default()
	windows := &stubWindows{records: []source.WindowRecord{
		{OwnerName: "Terminal", Handle: 7, ProcessID: 100, Title: "bash"},
		{OwnerName: "Editor", Handle: 8, ProcessID: 101, Title: "main.go"},
	}}
	agg := catalog.NewAggregator(cfg, windows, nil, nil, nil)
	ledger := usage.NewLedger(nil)

	mux := http.NewServeMux()
	NewHandler(cfg, agg, ledger, favicons).SetupRoutes(mux)
	return mux, ledger
}

func TestHandleSearch(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=term", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Query   string        `json:"query"`
		Results []models.Item `json:"results"`
		Partial bool          `json:"partial"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Query != "term" {
		t.Errorf("query = %q", resp.Query)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "Terminal" {
		t.Errorf("results = %+v, want only Terminal", resp.Results)
	}
	if resp.Partial {
		t.Error("partial should be false with healthy sources")
	}
}

func TestHandleSearchEmptyQueryReturnsAll(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	var resp struct {
		Results []models.Item `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("got %d results, want the whole catalog", len(resp.Results))
	}
}

func TestHandleSelectRecordsUsage(t *testing.T) {
	mux, ledger := newTestMux(t, nil)

	// Find a real item id through the catalog endpoint first.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	var cat models.Catalog
	if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
		t.Fatal(err)
	}
	if len(cat.Items) == 0 {
		t.Fatal("empty catalog")
	}
	target := cat.Items[0]

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"id":"` + target.ID + `"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/select", body))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if ledger.PreferenceScore(target) <= 0 {
		t.Error("selection was not recorded")
	}
}

func TestHandleSelectUnknownID(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"id":"no-such-item"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/select", body))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSelectBadBody(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/select", strings.NewReader("{}")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHistoryRoundTrip(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	for _, q := range []string{"chrome", "editor"} {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"query":"` + q + `"}`)
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/history", body))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("record %q: status = %d", q, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	var queries []string
	if err := json.Unmarshal(rec.Body.Bytes(), &queries); err != nil {
		t.Fatal(err)
	}
	if len(queries) != 2 || queries[0] != "editor" {
		t.Errorf("queries = %v, want newest first", queries)
	}
}

func TestHandleSuggest(t *testing.T) {
	mux, ledger := newTestMux(t, nil)
	ledger.RecordQuery("chrome tabs")
	ledger.RecordQuery("editor")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/suggest?q=chro", nil))
	var suggestions []string
	if err := json.Unmarshal(rec.Body.Bytes(), &suggestions); err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 1 || suggestions[0] != "chrome tabs" {
		t.Errorf("suggestions = %v", suggestions)
	}
}

func TestHandleRefreshAndInvalidate(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", rec.Code)
	}
	var resp struct {
		ItemCount int `json:"item_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ItemCount != 2 {
		t.Errorf("item_count = %d, want 2", resp.ItemCount)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/invalidate", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("invalidate status = %d", rec.Code)
	}
}

func TestHandleFavicon(t *testing.T) {
	// A PNG header so DetectContentType has something real to classify.
	icon := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	mux, _ := newTestMux(t, &stubFavicons{icon: icon})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/favicon?url=https://example.org", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got == "" {
		t.Error("missing Cache-Control header")
	}
}

func TestHandleFaviconMissingURL(t *testing.T) {
	mux, _ := newTestMux(t, &stubFavicons{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/favicon", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	// Warm the catalog so the report is populated.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		LastRefresh catalog.Report `json:"last_refresh"`
		Partial     bool           `json:"partial"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.LastRefresh.ItemCount != 2 {
		t.Errorf("item_count = %d, want 2", resp.LastRefresh.ItemCount)
	}
	if resp.LastRefresh.RefreshedAt.After(time.Now().Add(time.Minute)) {
		t.Error("refreshed_at in the future")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/search"},
		{http.MethodGet, "/api/refresh"},
		{http.MethodGet, "/api/select"},
		{http.MethodDelete, "/api/history"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", tc.method, tc.path, rec.Code)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
