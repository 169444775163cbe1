package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("WINFIND_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Catalog configuration
	if ttl := os.Getenv("WINFIND_CACHE_TTL"); ttl != "" {
		if seconds, err := strconv.Atoi(ttl); err == nil && seconds > 0 {
			cfg.Catalog.CacheTTL = time.Duration(seconds) * time.Second
		}
	}

	if timeout := os.Getenv("WINFIND_AUTOMATION_TIMEOUT"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.Catalog.AutomationTimeout = time.Duration(seconds) * time.Second
		}
	}

	if limit := os.Getenv("WINFIND_HISTORY_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			cfg.Catalog.HistoryLimit = n
		}
	}

	if browsers := os.Getenv("WINFIND_TAB_CAPABLE"); browsers != "" {
		names := strings.Split(browsers, ",")
		cfg.Catalog.TabCapable = cfg.Catalog.TabCapable[:0]
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				cfg.Catalog.TabCapable = append(cfg.Catalog.TabCapable, trimmed)
			}
		}
	}

	if port := os.Getenv("WINFIND_DEVTOOLS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p <= 65535 {
			cfg.Catalog.DevToolsPort = p
		}
	}

	// Daemon configuration
	if pidFile := os.Getenv("WINFIND_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Web configuration
	if webHost := os.Getenv("WINFIND_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("WINFIND_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
