// Package xdg lists installed applications from freedesktop .desktop
// entries.
package xdg

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/winfind/winfind/pkg/source"
)

// Source implements source.AppSource by scanning XDG application
// directories.
type Source struct {
	dirs []string
}

// NewSource creates an application source over the standard XDG search
// path. User entries shadow system entries with the same desktop-file id.
func NewSource() *Source {
	var dirs []string

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local/share/applications"))
	}
	if xdgDirs := os.Getenv("XDG_DATA_DIRS"); xdgDirs != "" {
		for _, dir := range strings.Split(xdgDirs, ":") {
			if dir != "" {
				dirs = append(dirs, filepath.Join(dir, "applications"))
			}
		}
	} else {
		dirs = append(dirs,
			"/usr/local/share/applications",
			"/usr/share/applications",
		)
	}

	return &Source{dirs: dirs}
}

// NewSourceWithDirs creates a source over explicit directories, earlier
// directories shadowing later ones.
func NewSourceWithDirs(dirs []string) *Source {
	return &Source{dirs: dirs}
}

// ListApplications parses every .desktop entry on the search path. Broken or
// hidden entries are skipped; unreadable directories are not an error.
func (s *Source) ListApplications(ctx context.Context) ([]source.AppRecord, error) {
	var records []source.AppRecord
	seen := make(map[string]bool)

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
				continue
			}

			id := strings.TrimSuffix(entry.Name(), ".desktop")
			if seen[id] {
				continue
			}

			app, ok := parseDesktopFile(filepath.Join(dir, entry.Name()))
			if !ok {
				continue
			}
			app.DesktopID = id
			seen[id] = true
			records = append(records, app)
		}
	}

	return records, nil
}

// parseDesktopFile reads the [Desktop Entry] group of one .desktop file.
// Returns ok=false for entries that should not appear in a launcher.
func parseDesktopFile(path string) (source.AppRecord, bool) {
	f, err := os.Open(path)
	if err != nil {
		return source.AppRecord{}, false
	}
	defer f.Close()

	var app source.AppRecord
	entryType := ""
	inDesktopEntry := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			inDesktopEntry = line == "[Desktop Entry]"
			continue
		}
		if !inDesktopEntry {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Type":
			entryType = value
		case "Name":
			if app.Name == "" {
				app.Name = value
			}
		case "Exec":
			app.Exec = stripFieldCodes(value)
		case "Icon":
			app.Icon = value
		case "NoDisplay", "Hidden":
			if value == "true" {
				return source.AppRecord{}, false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return source.AppRecord{}, false
	}

	if entryType != "Application" || app.Name == "" {
		return source.AppRecord{}, false
	}
	return app, true
}

// stripFieldCodes removes the %f/%u style placeholders from an Exec line.
func stripFieldCodes(exec string) string {
	fields := strings.Fields(exec)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "%") && len(f) == 2 {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
