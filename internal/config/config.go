package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Catalog aggregation configuration
	Catalog CatalogConfig

	// Favicon cache configuration
	Favicon FaviconConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Web server configuration
	Web WebConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// CatalogConfig holds catalog refresh behavior configuration
type CatalogConfig struct {
	CacheTTL          time.Duration // How long a refreshed catalog stays fresh
	AutomationTimeout time.Duration // Bound on any single external source call
	HistoryLimit      int           // Max browser-history entries per refresh
	HistoryWindow     time.Duration // How far back history queries look
	TabCapable        []string      // Owner names queried for open tabs
	DevToolsPort      int           // Chrome DevTools protocol port
}

// FaviconConfig holds favicon cache configuration
type FaviconConfig struct {
	CacheSize    int           // Max cached favicons
	FetchTimeout time.Duration // Per-fetch network timeout
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// Bounds on the history limit. Extreme values clamp instead of erroring.
const (
	MinHistoryLimit = 0
	MaxHistoryLimit = 10000
)

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/winfind/winfind.db
		},
		Catalog: CatalogConfig{
			CacheTTL:          5 * time.Minute,
			AutomationTimeout: 10 * time.Second,
			HistoryLimit:      20,
			HistoryWindow:     24 * time.Hour,
			TabCapable: []string{
				"Google Chrome",
				"Chromium",
				"Brave Browser",
				"Microsoft Edge",
				"Firefox",
			},
			DevToolsPort: 9222,
		},
		Favicon: FaviconConfig{
			CacheSize:    512,
			FetchTimeout: 5 * time.Second,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/winfind-%d.pid", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid(),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Catalog.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.Catalog.CacheTTL)
	}

	if c.Catalog.AutomationTimeout <= 0 {
		return fmt.Errorf("automation timeout must be positive, got %v", c.Catalog.AutomationTimeout)
	}

	if c.Catalog.HistoryWindow <= 0 {
		return fmt.Errorf("history window must be positive, got %v", c.Catalog.HistoryWindow)
	}

	// Out-of-range history limits clamp rather than fail: sources treat the
	// limit as advisory.
	if c.Catalog.HistoryLimit < MinHistoryLimit {
		c.Catalog.HistoryLimit = MinHistoryLimit
	}
	if c.Catalog.HistoryLimit > MaxHistoryLimit {
		c.Catalog.HistoryLimit = MaxHistoryLimit
	}

	if c.Catalog.DevToolsPort < 1 || c.Catalog.DevToolsPort > 65535 {
		return fmt.Errorf("devtools port must be between 1 and 65535, got %d", c.Catalog.DevToolsPort)
	}

	if c.Favicon.CacheSize < 1 {
		return fmt.Errorf("favicon cache size must be positive, got %d", c.Favicon.CacheSize)
	}

	// Validate web config
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// IsTabCapable reports whether windows of this owner should be queried for
// open tabs.
func (c *Config) IsTabCapable(ownerName string) bool {
	for _, name := range c.Catalog.TabCapable {
		if name == ownerName {
			return true
		}
	}
	return false
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Catalog:
    Cache TTL: %v
    Automation Timeout: %v
    History Limit: %d
    History Window: %v
    Tab-capable: %v
    DevTools Port: %d
  Favicon:
    Cache Size: %d
    Fetch Timeout: %v
  Daemon:
    PID File: %s
  Web:
    Host: %s
    Port: %d`,
		c.Database.Path,
		c.Catalog.CacheTTL,
		c.Catalog.AutomationTimeout,
		c.Catalog.HistoryLimit,
		c.Catalog.HistoryWindow,
		c.Catalog.TabCapable,
		c.Catalog.DevToolsPort,
		c.Favicon.CacheSize,
		c.Favicon.FetchTimeout,
		c.Daemon.PIDFile,
		c.Web.Host,
		c.Web.Port,
	)
}
