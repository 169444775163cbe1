// Package sources composes the per-platform source adapters. Resolution
// happens once here, at composition time; consumers receive plain
// interfaces.
package sources

import (
	"log"

	"github.com/winfind/winfind/internal/config"
	"github.com/winfind/winfind/pkg/integrations/devtools"
	"github.com/winfind/winfind/pkg/integrations/favicon"
	"github.com/winfind/winfind/pkg/integrations/history"
	"github.com/winfind/winfind/pkg/integrations/x11"
	"github.com/winfind/winfind/pkg/integrations/xdg"
	"github.com/winfind/winfind/pkg/source"
)

// Set bundles every source adapter the aggregator consumes.
type Set struct {
	Windows  source.WindowSource
	Apps     source.AppSource
	Tabs     source.TabSource
	History  source.HistorySource
	Favicons *favicon.Cache
}

// New builds the platform source set for this system. Sources that cannot
// run here stay nil and simply contribute nothing.
func New(cfg *config.Config) (*Set, error) {
	set := &Set{
		Apps:    xdg.NewSource(),
		Tabs:    devtools.NewSource(cfg.Catalog.DevToolsPort),
		History: history.NewSource(cfg.Catalog.HistoryWindow),
	}

	windows := x11.NewSource()
	if windows.Available() {
		set.Windows = windows
	} else {
		log.Printf("sources: no X display available, window source disabled")
	}

	favicons, err := favicon.NewCache(cfg.Favicon.CacheSize, cfg.Favicon.FetchTimeout)
	if err != nil {
		return nil, err
	}
	set.Favicons = favicons

	return set, nil
}
