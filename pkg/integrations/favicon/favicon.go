// Package favicon fetches and caches page favicons.
package favicon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/winfind/winfind/pkg/source"
)

// maxIconBytes caps a single downloaded icon.
const maxIconBytes = 256 * 1024

// Cache is a FaviconSource with an LRU cache keyed by page URL and in-flight
// request de-duplication: two concurrent fetches for the same URL share one
// download. Entries live until ClearCache; there is no TTL.
type Cache struct {
	cache  *lru.Cache[string, []byte]
	flight singleflight.Group
	client *http.Client

	// endpoints yields the candidate icon URLs for a host, in order.
	endpoints func(host string) []string
}

// NewCache creates a favicon cache holding up to size icons.
func NewCache(size int, fetchTimeout time.Duration) (*Cache, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create favicon cache: %w", err)
	}
	return &Cache{
		cache:  cache,
		client: &http.Client{Timeout: fetchTimeout},
		endpoints: func(host string) []string {
			return []string{
				fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=32", host),
				fmt.Sprintf("https://icons.duckduckgo.com/ip3/%s.ico", host),
				fmt.Sprintf("https://%s/favicon.ico", host),
			}
		},
	}, nil
}

// Fetch returns the favicon bytes for pageURL, from cache when possible.
// Several well-known favicon endpoints are tried in order before giving up.
func (c *Cache) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if icon, ok := c.cache.Get(pageURL); ok {
		return icon, nil
	}

	v, err, _ := c.flight.Do(pageURL, func() (interface{}, error) {
		if icon, ok := c.cache.Get(pageURL); ok {
			return icon, nil
		}

		parsed, err := url.Parse(pageURL)
		if err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("favicon: unusable page url %q: %w", pageURL, source.ErrUnavailable)
		}
		host := parsed.Host

		for _, candidate := range c.endpoints(host) {
			icon, err := c.download(ctx, candidate)
			if err != nil {
				continue
			}
			c.cache.Add(pageURL, icon)
			return icon, nil
		}

		return nil, fmt.Errorf("favicon: no endpoint produced an icon for %s: %w", host, source.ErrUnavailable)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// ClearCache drops every cached icon.
func (c *Cache) ClearCache() {
	c.cache.Purge()
}

func (c *Cache) download(ctx context.Context, iconURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("favicon endpoint returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("favicon endpoint returned empty body")
	}
	return data, nil
}
