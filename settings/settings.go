// Package settings stores per-user jsloc data in the XDG data directory:
//
//	$XDG_DATA_HOME/jsloc/  (default: ~/.local/share/jsloc/)
//
// Files:
//   - auth.json     API keys per provider, mode 0600
//   - prompts.json  user-editable system prompts
//
// API keys are looked up in this order: --api-key flag, JSLOC_API_KEY,
// then this store.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName     = "jsloc"
	authFileName    = "auth.json"
	promptsFileName = "prompts.json"
)

// DataDir returns the jsloc data directory, honouring $XDG_DATA_HOME.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func pathIn(name string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// AuthFilePath returns the path of auth.json.
func AuthFilePath() (string, error) {
	return pathIn(authFileName)
}

// PromptsFilePath returns the path of prompts.json.
func PromptsFilePath() (string, error) {
	return pathIn(promptsFileName)
}
