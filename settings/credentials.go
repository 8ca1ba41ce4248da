package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Credential is the stored secret for one provider.
type Credential struct {
	Key string `json:"key"`
	// BaseURL is kept for providers with a user-chosen endpoint (custom-openai).
	BaseURL string `json:"baseUrl,omitempty"`
}

// Store maps provider IDs to credentials.
type Store map[string]Credential

// Load reads the credential store. A missing or unreadable file yields an
// empty store.
func Load() Store {
	path, err := AuthFilePath()
	if err != nil {
		return make(Store)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store with 0600 permissions.
func Save(store Store) error {
	path, err := AuthFilePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// SetAPIKey stores key (and an optional endpoint) for providerID.
func SetAPIKey(providerID, key, baseURL string) error {
	store := Load()
	store[providerID] = Credential{Key: key, BaseURL: baseURL}
	return Save(store)
}

// APIKey returns the stored key for providerID, or "".
func APIKey(providerID string) string {
	return Load()[providerID].Key
}

// BaseURL returns the stored endpoint for providerID, or "".
func BaseURL(providerID string) string {
	return Load()[providerID].BaseURL
}

// Providers returns the IDs with stored credentials, sorted.
func Providers() []string {
	store := Load()
	ids := make([]string, 0, len(store))
	for id := range store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Remove deletes the credentials of providerID. Unknown IDs are a no-op.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// RemoveAll deletes auth.json.
func RemoveAll() error {
	path, err := AuthFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// MaskKey returns a display-safe form of key.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
