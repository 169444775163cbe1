package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/winfind/winfind/internal/catalog"
	"github.com/winfind/winfind/internal/config"
	"github.com/winfind/winfind/internal/daemon"
	"github.com/winfind/winfind/internal/database"
	"github.com/winfind/winfind/internal/search"
	"github.com/winfind/winfind/internal/usage"
	"github.com/winfind/winfind/internal/web"
	"github.com/winfind/winfind/pkg/sources"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "serve":
		serve()
	case "stop":
		stop()
	case "status":
		showStatus()
	case "search":
		searchOnce()
	case "refresh":
		refreshOnce()
	case "clear":
		clearLedger()
	case "version":
		fmt.Printf("winfind version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`winfind - window, application, tab and history launcher core

Usage:
  winfind <command> [options]

Commands:
  serve              Run the catalog daemon with the web API
  stop               Stop a running daemon
  status             Show daemon status
  search <query>     One-shot search against a fresh catalog
  refresh            Build a catalog once and print a summary
  clear              Erase usage history and search history
  version            Show version information
  help               Show this help message

Examples:
  winfind serve
  winfind search chrome
  winfind status
  winfind stop

Environment Variables:
  WINFIND_DB_PATH             Database file path
  WINFIND_CACHE_TTL           Catalog cache TTL in seconds
  WINFIND_AUTOMATION_TIMEOUT  Per-source timeout in seconds
  WINFIND_HISTORY_LIMIT       Max browser-history entries per refresh
  WINFIND_TAB_CAPABLE         Comma-separated browser names to query for tabs
  WINFIND_DEVTOOLS_PORT       Chrome DevTools protocol port
  WINFIND_PID_FILE            PID file path
  WINFIND_WEB_HOST            Web API host
  WINFIND_WEB_PORT            Web API port

Version: %s
`, version)
}

// buildStack wires the full engine: config, persistence, sources,
// aggregator, ledger.
func buildStack(persist bool) (*config.Config, *catalog.Aggregator, *usage.Ledger, *sources.Set, func()) {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cleanup := func() {}
	var ledger *usage.Ledger
	if persist {
		db, err := database.Connect(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		if err := db.Initialize(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		ledger = usage.NewLedger(database.NewRepository(db))
		cleanup = func() {
			if err := db.Close(); err != nil {
				log.Printf("Failed to close database: %v", err)
			}
		}
	} else {
		ledger = usage.NewLedger(nil)
	}

	set, err := sources.New(cfg)
	if err != nil {
		cleanup()
		log.Fatalf("Failed to build sources: %v", err)
	}

	agg := catalog.NewAggregator(cfg, set.Windows, set.Apps, set.Tabs, set.History)
	return cfg, agg, ledger, set, cleanup
}

func serve() {
	cfg, agg, ledger, set, cleanup := buildStack(true)
	defer cleanup()

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}
	if err := dm.WritePID(); err != nil {
		log.Fatalf("Failed to write PID file: %v", err)
	}
	defer func() {
		if err := dm.RemovePID(); err != nil {
			log.Printf("Failed to remove PID file: %v", err)
		}
	}()

	handler := web.NewHandler(cfg, agg, ledger, set.Favicons)
	server := web.NewServer(cfg, handler, 0)

	// Warm the catalog before accepting traffic so the first keystroke is
	// served from cache.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := agg.Refresh(ctx); err != nil {
			log.Printf("Initial refresh failed: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			log.Printf("Web server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func stop() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)
	if err := dm.Stop(); err != nil {
		log.Fatalf("Failed to stop daemon: %v", err)
	}
	fmt.Println("Daemon stopped")
}

func showStatus() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		fmt.Printf("Daemon running (PID: %d) on http://%s:%d\n", pid, cfg.Web.Host, cfg.Web.Port)
	} else {
		fmt.Println("Daemon not running")
	}
}

func searchOnce() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: winfind search <query>")
		os.Exit(1)
	}
	query := os.Args[2]

	_, agg, ledger, _, cleanup := buildStack(true)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cat, err := agg.GetCatalog(ctx)
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}

	results := search.Search(query, cat, ledger)
	ledger.RecordQuery(query)

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode results: %v", err)
	}
	fmt.Println(string(out))
}

func refreshOnce() {
	_, agg, _, _, cleanup := buildStack(false)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cat, err := agg.Refresh(ctx)
	if err != nil {
		log.Fatalf("Refresh failed: %v", err)
	}

	report := agg.LastReport()
	fmt.Printf("Catalog built: %d items\n", len(cat.Items))
	for _, f := range report.Failures {
		fmt.Printf("  source %s failed: %s\n", f.Source, f.Error)
	}
}

func clearLedger() {
	cfg := config.New()
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ledger := usage.NewLedger(database.NewRepository(db))
	if err := ledger.Clear(); err != nil {
		log.Fatalf("Failed to clear usage data: %v", err)
	}
	fmt.Println("Usage history and search history cleared")
}
