// Package devtools lists open browser tabs through the Chrome DevTools
// protocol's HTTP endpoint.
package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/winfind/winfind/pkg/source"
)

// Source implements source.TabSource against a browser started with
// --remote-debugging-port. The endpoint is per-browser, not per-window, so
// every window of the owner sees the same tab list; the aggregator keys tab
// items by window handle to keep ids distinct.
type Source struct {
	port   int
	client *http.Client
}

// NewSource creates a tab source talking to 127.0.0.1:port.
func NewSource(port int) *Source {
	return &Source{
		port: port,
		// Timeouts come from the caller's context; the client itself stays
		// unbounded so one configuration knob controls the budget.
		client: &http.Client{},
	}
}

type target struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ListTabs queries /json/list and returns the page targets in endpoint
// order. Failures are classified onto the source sentinel errors so the
// caller can tell a closed port from a denied request.
func (s *Source) ListTabs(ctx context.Context, ownerName string, handle int) ([]source.TabRecord, error) {
	url := fmt.Sprintf("http://127.0.0.1:%d/json/list", s.port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build devtools request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ownerName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("devtools endpoint for %s refused access: %w", ownerName, source.ErrPermissionDenied)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("devtools endpoint for %s returned %d: %w", ownerName, resp.StatusCode, source.ErrNotScriptable)
	}

	var targets []target
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("devtools endpoint for %s sent malformed response: %w", ownerName, source.ErrNotScriptable)
	}

	var tabs []source.TabRecord
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		tabs = append(tabs, source.TabRecord{
			Index: len(tabs),
			Title: t.Title,
			URL:   t.URL,
		})
	}
	return tabs, nil
}

func classifyTransportError(ownerName string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("devtools request to %s timed out: %w", ownerName, source.ErrTimeout)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("devtools endpoint for %s unreachable: %w", ownerName, source.ErrTargetNotRunning)
	}

	return fmt.Errorf("devtools request to %s failed: %w", ownerName, source.ErrUnavailable)
}
