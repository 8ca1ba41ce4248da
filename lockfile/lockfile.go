// Package lockfile implements jsloc.lock, a manifest of the catalog files
// jsloc generated. Each output is recorded with the English source files it
// came from and the MD5 checksum of the merged source catalog, so a later
// run (or `jsloc status`) can tell when an output is stale.
//
// The lock file is stored in the scanned root as jsloc.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "jsloc.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Output describes one generated file.
type Output struct {
	// Sources are the English catalogs merged into the translated set,
	// relative to the root.
	Sources []string `yaml:"sources"`
	// Checksum is the MD5 of the serialized merged source catalog.
	Checksum string `yaml:"checksum"`
	// Label is the target language label the file was translated to.
	Label string `yaml:"label"`
}

// LockFile represents the jsloc.lock file structure.
type LockFile struct {
	Version int               `yaml:"version"`
	Outputs map[string]Output `yaml:"outputs"` // target -> output

	mu   sync.Mutex `yaml:"-"`
	root string     `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the lock file of root. A missing file yields an empty one.
func Load(root string) (*LockFile, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	path := filepath.Join(root, LockFileName)
	lf := &LockFile{
		Version: Version,
		Outputs: make(map[string]Output),
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, lf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if lf.Outputs == nil {
		lf.Outputs = make(map[string]Output)
	}
	lf.root = root
	lf.path = path
	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of data.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}

// TargetKey returns the slash-separated form of path relative to the lock
// file's root. Paths outside the root are kept absolute.
func (lf *LockFile) TargetKey(path string) string {
	rel, err := filepath.Rel(lf.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Record stores the output written to path. Source paths are made relative
// to the root.
func (lf *LockFile) Record(path, label, checksum string, sources []string) {
	rel := make([]string, len(sources))
	for i, s := range sources {
		rel[i] = lf.TargetKey(s)
	}
	key := lf.TargetKey(path)

	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.Outputs[key] = Output{Sources: rel, Checksum: checksum, Label: label}
}

// Lookup returns the record of the output at path.
func (lf *LockFile) Lookup(path string) (Output, bool) {
	key := lf.TargetKey(path)

	lf.mu.Lock()
	defer lf.mu.Unlock()
	out, ok := lf.Outputs[key]
	return out, ok
}

// IsStale reports whether the output at path is unrecorded or was generated
// from a source catalog with a different checksum.
func (lf *LockFile) IsStale(path, checksum string) bool {
	out, ok := lf.Lookup(path)
	return !ok || out.Checksum != checksum
}

// Prune removes records whose output file no longer exists and returns
// their keys.
func (lf *LockFile) Prune() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	var removed []string
	for key := range lf.Outputs {
		path := filepath.FromSlash(key)
		if !filepath.IsAbs(path) {
			path = filepath.Join(lf.root, path)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(lf.Outputs, key)
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	return removed
}

// Targets returns the sorted list of recorded outputs.
func (lf *LockFile) Targets() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	targets := make([]string, 0, len(lf.Outputs))
	for t := range lf.Outputs {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	n := len(lf.Targets())
	switch n {
	case 0:
		return "empty"
	case 1:
		return "1 output"
	default:
		return fmt.Sprintf("%d outputs", n)
	}
}
