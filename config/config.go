// Package config loads jsloc settings.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults
//  2. .jsloc.yaml in the scanned root
//  3. .env in the scanned root (optional)
//  4. the process environment (JSLOC_*)
//
// CLI flags are applied on top by the caller.
package config

import (
	"time"

	"github.com/minios-linux/jsloc/pipeline"
	"github.com/minios-linux/jsloc/scan"
)

// Config is the effective configuration of a run.
type Config struct {
	// Language is the English name of the target language ("German").
	Language string
	// Countries are dialect country codes ("AT", "CH").
	Countries []string

	// Marker is the localization directory name.
	Marker string
	// Catalogs are the English catalog file names.
	Catalogs []string
	// MainDir is the path suffix of the main Dev UI localization directory.
	MainDir string
	// SkipDirs are directory names never scanned.
	SkipDirs []string

	// Provider is the AI provider ID.
	Provider string
	// Model is the provider model.
	Model string
	// BaseURL overrides the provider endpoint.
	BaseURL string
	// APIKey is only ever read from the environment.
	APIKey string
	// Proxy is an HTTP/HTTPS proxy URL.
	Proxy string
	// Prompt overrides the system prompt.
	Prompt string
	// Timeout is the per-request timeout (0 = provider default).
	Timeout time.Duration
	// MaxRetries bounds retries on rate limits and server errors. Zero makes
	// a single attempt.
	MaxRetries int
	// MemoryWindow is the number of session messages replayed per request.
	MemoryWindow int

	// FilePath is the .jsloc.yaml that was loaded, or "".
	FilePath string
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Marker:       scan.DefaultMarker,
		Catalogs:     append([]string(nil), scan.DefaultCatalogNames...),
		MainDir:      pipeline.DefaultMainDir,
		SkipDirs:     append([]string(nil), scan.DefaultSkipDirs...),
		MaxRetries:   3,
		MemoryWindow: 10,
	}
}

// Load returns the configuration for root: defaults, then .jsloc.yaml,
// then .env and the environment.
func Load(root string) (*Config, error) {
	cfg := Defaults()

	f, path, err := LoadFile(root)
	if err != nil {
		return nil, err
	}
	if f != nil {
		if err := f.apply(cfg); err != nil {
			return nil, err
		}
		cfg.FilePath = path
	}

	if err := applyEnv(cfg, root); err != nil {
		return nil, err
	}
	return cfg, nil
}
