package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/winfind/winfind/internal/catalog"
	"github.com/winfind/winfind/internal/config"
	"github.com/winfind/winfind/internal/search"
	"github.com/winfind/winfind/internal/usage"
	"github.com/winfind/winfind/pkg/source"
)

type Handler struct {
	config     *config.Config
	aggregator *catalog.Aggregator
	ledger     *usage.Ledger
	favicons   source.FaviconSource
}

func NewHandler(cfg *config.Config, agg *catalog.Aggregator, ledger *usage.Ledger, favicons source.FaviconSource) *Handler {
	return &Handler{
		config:     cfg,
		aggregator: agg,
		ledger:     ledger,
		favicons:   favicons,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/search", h.handleSearch)
	mux.HandleFunc("/api/catalog", h.handleCatalog)
	mux.HandleFunc("/api/refresh", h.handleRefresh)
	mux.HandleFunc("/api/invalidate", h.handleInvalidate)
	mux.HandleFunc("/api/select", h.handleSelect)
	mux.HandleFunc("/api/history", h.handleHistory)
	mux.HandleFunc("/api/suggest", h.handleSuggest)
	mux.HandleFunc("/api/usage/top", h.handleTopUsage)
	mux.HandleFunc("/api/favicon", h.handleFavicon)
	mux.HandleFunc("/api/status", h.handleStatus)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cat, err := h.aggregator.GetCatalog(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build catalog: %v", err), http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query().Get("q")
	results := search.Search(query, cat, h.ledger)

	respondJSON(w, map[string]interface{}{
		"query":   query,
		"results": results,
		"partial": h.aggregator.LastReport().Partial(),
	})
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cat, err := h.aggregator.GetCatalog(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build catalog: %v", err), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, cat)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cat, err := h.aggregator.Refresh(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Refresh failed: %v", err), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, map[string]interface{}{
		"item_count": len(cat.Items),
		"report":     h.aggregator.LastReport(),
	})
}

func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.aggregator.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "Request body must carry an item id", http.StatusBadRequest)
		return
	}

	cat, err := h.aggregator.GetCatalog(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build catalog: %v", err), http.StatusServiceUnavailable)
		return
	}

	for _, it := range cat.Items {
		if it.ID == req.ID {
			h.ledger.RecordSelection(it)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	http.Error(w, "Unknown item id", http.StatusNotFound)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, h.ledger.RecentQueries())
	case http.MethodPost:
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
			http.Error(w, "Request body must carry a query", http.StatusBadRequest)
			return
		}
		h.ledger.RecordQuery(req.Query)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, h.ledger.Suggest(r.URL.Query().Get("q")))
}

func (h *Handler) handleTopUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	respondJSON(w, h.ledger.TopSelections(limit))
}

func (h *Handler) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.favicons == nil {
		http.Error(w, "Favicon source unavailable", http.StatusNotFound)
		return
	}

	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		http.Error(w, "Missing url parameter", http.StatusBadRequest)
		return
	}

	icon, err := h.favicons.Fetch(r.Context(), pageURL)
	if err != nil {
		http.Error(w, "No favicon available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(icon))
	w.Header().Set("Cache-Control", "max-age=86400")
	if _, err := w.Write(icon); err != nil {
		log.Printf("web: failed to write favicon response: %v", err)
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := h.aggregator.LastReport()
	respondJSON(w, map[string]interface{}{
		"last_refresh": report,
		"partial":      report.Partial(),
		"config": map[string]interface{}{
			"cache_ttl_seconds": int(h.config.Catalog.CacheTTL.Seconds()),
			"history_limit":     h.config.Catalog.HistoryLimit,
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	respondJSON(w, map[string]interface{}{
		"name": "winfind",
		"endpoints": []string{
			"/api/search?q=",
			"/api/catalog",
			"/api/refresh",
			"/api/invalidate",
			"/api/select",
			"/api/history",
			"/api/suggest?q=",
			"/api/usage/top",
			"/api/favicon?url=",
			"/api/status",
			"/health",
		},
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("web: failed to encode response: %v", err)
	}
}
