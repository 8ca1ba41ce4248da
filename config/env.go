package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFileName is the optional environment file in the scanned root.
const DotEnvFileName = ".env"

// envOverlay lists the settings the environment may override. Empty values
// mean "not set".
type envOverlay struct {
	Language  string   `env:"JSLOC_LANGUAGE"`
	Countries []string `env:"JSLOC_COUNTRIES" envSeparator:","`
	Provider  string   `env:"JSLOC_PROVIDER"`
	Model     string   `env:"JSLOC_MODEL"`
	APIKey    string   `env:"JSLOC_API_KEY"`
	BaseURL   string   `env:"JSLOC_BASE_URL"`
	Proxy     string   `env:"JSLOC_PROXY"`
}

// environment returns the variables of root/.env overlaid with the process
// environment. The process environment is never modified.
func environment(root string) (map[string]string, error) {
	vars := make(map[string]string)
	path := filepath.Join(root, DotEnvFileName)
	if _, err := os.Stat(path); err == nil {
		fileVars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		vars[k] = v
	}
	return vars, nil
}

func applyEnv(cfg *Config, root string) error {
	vars, err := environment(root)
	if err != nil {
		return err
	}

	var ov envOverlay
	if err := env.ParseWithOptions(&ov, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if ov.Language != "" {
		cfg.Language = ov.Language
	}
	if len(ov.Countries) > 0 {
		cfg.Countries = ov.Countries
	}
	if ov.Provider != "" {
		cfg.Provider = ov.Provider
	}
	if ov.Model != "" {
		cfg.Model = ov.Model
	}
	if ov.APIKey != "" {
		cfg.APIKey = ov.APIKey
	}
	if ov.BaseURL != "" {
		cfg.BaseURL = ov.BaseURL
	}
	if ov.Proxy != "" {
		cfg.Proxy = ov.Proxy
	}
	return nil
}
