// Package scan finds English UI-string catalogs below a root directory and
// groups them by the localization directory that owns them.
//
// A catalog belongs to the nearest ancestor directory named after the
// marker (default "i18n"). Catalogs without such an ancestor are ignored.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/minios-linux/jsloc/catalog"
	"github.com/minios-linux/jsloc/merge"
)

// DefaultMarker is the directory name that identifies a localization directory.
const DefaultMarker = "i18n"

// DefaultCatalogNames are the file names of English source catalogs.
var DefaultCatalogNames = []string{"en.js", "en-US.js", "en-GB.js"}

// DefaultSkipDirs are directory names never descended into.
var DefaultSkipDirs = []string{".git", ".hg", ".svn", "node_modules"}

// Options controls catalog discovery.
type Options struct {
	// Marker is the localization directory name (default DefaultMarker).
	Marker string
	// CatalogNames are the recognized catalog file names (default DefaultCatalogNames).
	CatalogNames []string
	// SkipDirs are directory names to skip (nil means DefaultSkipDirs).
	SkipDirs []string
	// OnError reports unreadable directories and files that are skipped.
	OnError func(format string, args ...any)
	// OnOverride, if set, is told which keys of an earlier file in the same
	// group a later file replaced.
	OnOverride func(file string, keys []string)
}

func (o *Options) marker() string {
	if o.Marker != "" {
		return o.Marker
	}
	return DefaultMarker
}

func (o *Options) catalogNames() []string {
	if len(o.CatalogNames) > 0 {
		return o.CatalogNames
	}
	return DefaultCatalogNames
}

func (o *Options) skipDirs() []string {
	if o.SkipDirs != nil {
		return o.SkipDirs
	}
	return DefaultSkipDirs
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	}
}

// Group is the merged catalog of one localization directory.
type Group struct {
	// Dir is the absolute, cleaned path of the localization directory.
	Dir string
	// Catalog holds the merged English entries.
	Catalog *catalog.Catalog
	// Files lists the catalog files folded into Catalog, in discovery order.
	Files []string
}

// FindMarkerDir walks upward from path (inclusive) and returns the first
// directory whose base name equals marker.
func FindMarkerDir(path, marker string) (string, bool) {
	current, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	for {
		if filepath.Base(current) == marker {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// FindCatalogs returns the absolute paths of all catalog files below root in
// lexical walk order. Symlinked catalogs are returned as well; whether they
// resolve is left to the reader. Only a root that cannot be read is an
// error; other unreadable entries are reported through opts.OnError and
// skipped.
func FindCatalogs(root string, opts Options) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", root)
	}

	names := make(map[string]bool)
	for _, n := range opts.catalogNames() {
		names[n] = true
	}
	skip := make(map[string]bool)
	for _, d := range opts.skipDirs() {
		skip[d] = true
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			opts.logError("Failed to read %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != absRoot && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if (d.Type().IsRegular() || d.Type()&fs.ModeSymlink != 0) && names[d.Name()] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// Walk discovers catalogs below root, parses them and merges them per
// localization directory. Groups are returned sorted by directory.
//
// Within a group files are folded in discovery order and the last file
// defining a key wins. A file that cannot be read is reported and skipped;
// its group still exists.
func Walk(root string, opts Options) ([]*Group, error) {
	files, err := FindCatalogs(root, opts)
	if err != nil {
		return nil, err
	}

	marker := opts.marker()
	byDir := make(map[string]*Group)
	var groups []*Group
	for _, file := range files {
		dir, ok := FindMarkerDir(file, marker)
		if !ok {
			continue
		}
		g, ok := byDir[dir]
		if !ok {
			g = &Group{Dir: dir, Catalog: catalog.New()}
			byDir[dir] = g
			groups = append(groups, g)
		}
		parsed, err := catalog.ParseFile(file)
		if err != nil {
			opts.logError("Failed to read %s: %v", file, err)
			continue
		}
		if opts.OnOverride != nil {
			if keys := merge.Overrides(g.Catalog, parsed); len(keys) > 0 {
				opts.OnOverride(file, keys)
			}
		}
		merge.Into(g.Catalog, parsed)
		g.Files = append(g.Files, file)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Dir < groups[j].Dir })
	return groups, nil
}
