package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name looked up in the working
// directory.
const FileName = "enginehost.yaml"

// Load reads the configuration.
// Search order: customPath -> ~/.enginehost/config.yaml -> ./enginehost.yaml -> embedded default.
// Files are merged onto Default, so they only need the keys they change.
// ENGINEHOST_* environment variables are applied last.
func Load(customPath string) (Config, error) {
	cfg := Default()

	switch {
	case customPath != "":
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		cfg.Path = customPath

	case loadOptional(userConfigPath(), &cfg):
	case loadOptional(FileName, &cfg):

	default:
		if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
			cfg = Default()
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// loadOptional merges path into cfg when it exists and parses. A file that
// fails to parse is skipped in favor of the next location.
func loadOptional(path string, cfg *Config) bool {
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	candidate := *cfg
	if err := yaml.Unmarshal(data, &candidate); err != nil {
		return false
	}
	candidate.Path = path
	*cfg = candidate
	return true
}

// userConfigPath returns ~/.enginehost/config.yaml, or empty if home is
// unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".enginehost", "config.yaml")
}

// ApplyEnv overrides cfg from ENGINEHOST_* environment variables. Unset
// variables leave values untouched. The display list has no variables.
func ApplyEnv(cfg *Config) error {
	for _, section := range []any{
		&cfg.Assets,
		&cfg.Surface,
		&cfg.Engine,
		&cfg.Storage,
		&cfg.SSH,
		&cfg.Log,
	} {
		if err := ParseEnv(section); err != nil {
			return err
		}
	}
	return nil
}

// ParseEnv loads env-tagged fields of target from the environment.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
