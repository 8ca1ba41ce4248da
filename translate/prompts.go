package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minios-linux/jsloc/settings"
)

// ---------------------------------------------------------------------------
// System prompts
// ---------------------------------------------------------------------------

const promptDefault = "default"

// DefaultSystemPrompt is the system prompt for Dev UI string translation.
const DefaultSystemPrompt = `You translate English UI strings, used in Quarkus Dev UI, to {{targetLang}}.
You might receive numbered variables, like ${0}. Keep every variable exactly as written; a variable might move position in the translated sentence.
Some terms (especially technical terms), eg "Beans" in the context of the ArC extension, do not translate.
Return only the translated text.`

// PromptsConfig holds the prompts loaded from prompts.json.
type PromptsConfig struct {
	Prompts map[string]string `json:"prompts"`
}

var loadedPrompts *PromptsConfig

// LoadPromptsFromFile loads system prompts from a JSON file. A missing file
// is not an error; the built-in prompts stay in effect.
func LoadPromptsFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading prompts file: %w", err)
	}

	var cfg PromptsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing prompts file: %w", err)
	}
	loadedPrompts = &cfg
	return nil
}

func writeDefaultPromptsFile(path string) error {
	cfg := PromptsConfig{Prompts: map[string]string{promptDefault: DefaultSystemPrompt}}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default prompts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating prompts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing default prompts file: %w", err)
	}
	return nil
}

// LoadPromptsFromDefaultLocation loads prompts.json from the user data
// directory, creating it with the built-in prompt first if it is missing.
// It returns the path that was loaded.
func LoadPromptsFromDefaultLocation() (string, error) {
	path, err := settings.PromptsFilePath()
	if err != nil {
		return "", fmt.Errorf("resolving prompts file path: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefaultPromptsFile(path); err != nil {
			return "", err
		}
	}
	if err := LoadPromptsFromFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// getPrompt returns the loaded prompt of the given type, falling back to the
// built-in one.
func getPrompt(promptType string) string {
	if loadedPrompts != nil {
		if p, ok := loadedPrompts.Prompts[promptType]; ok && p != "" {
			return p
		}
	}
	return DefaultSystemPrompt
}
