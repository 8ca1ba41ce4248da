package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the scanned root.
const FileName = ".jsloc.yaml"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the .jsloc.yaml structure. Unset fields keep their defaults.
type File struct {
	Language  string   `yaml:"language,omitempty"`
	Countries []string `yaml:"countries,omitempty"`

	Marker   string   `yaml:"marker,omitempty"`
	Catalogs []string `yaml:"catalogs,omitempty"`
	MainDir  string   `yaml:"main_dir,omitempty"`
	SkipDirs []string `yaml:"skip_dirs,omitempty"`

	Provider     string `yaml:"provider,omitempty"`
	Model        string `yaml:"model,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Prompt       string `yaml:"prompt,omitempty"`
	Timeout      string `yaml:"timeout,omitempty"`
	MaxRetries   *int   `yaml:"max_retries,omitempty"`
	MemoryWindow *int   `yaml:"memory_window,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadFile reads .jsloc.yaml from root. It returns nil and no error when the
// file does not exist.
func LoadFile(root string) (*File, string, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return &f, path, nil
}

func (f *File) validate() error {
	if strings.ContainsAny(f.Marker, `/\`) {
		return fmt.Errorf("marker %q must be a directory name, not a path", f.Marker)
	}
	for _, name := range f.Catalogs {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("catalog name %q must be a plain file name", name)
		}
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", f.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("timeout %q must not be negative", f.Timeout)
		}
	}
	if f.MaxRetries != nil && *f.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

func (f *File) apply(cfg *Config) error {
	if f.Language != "" {
		cfg.Language = f.Language
	}
	if len(f.Countries) > 0 {
		cfg.Countries = f.Countries
	}
	if f.Marker != "" {
		cfg.Marker = f.Marker
	}
	if len(f.Catalogs) > 0 {
		cfg.Catalogs = f.Catalogs
	}
	if f.MainDir != "" {
		cfg.MainDir = f.MainDir
	}
	if f.SkipDirs != nil {
		cfg.SkipDirs = f.SkipDirs
	}
	if f.Provider != "" {
		cfg.Provider = f.Provider
	}
	if f.Model != "" {
		cfg.Model = f.Model
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.Prompt != "" {
		cfg.Prompt = f.Prompt
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", f.Timeout, err)
		}
		cfg.Timeout = d
	}
	if f.MaxRetries != nil {
		cfg.MaxRetries = *f.MaxRetries
	}
	if f.MemoryWindow != nil {
		cfg.MemoryWindow = *f.MemoryWindow
	}
	return nil
}
