package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	dconfig "airtraffic-stats/domain/config"
)

// Path resolves the config file location: CONFIG_PATH env when set, else
// ./config.yml.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.yml"
}

// Load parses the YAML configuration file at path and fills in defaults for
// anything the file leaves out.
func Load(path string) (*dconfig.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c dconfig.Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	c.FillDefaults()
	slog.Info("config.loaded", "path", path)
	return &c, nil
}

// LoadOrDefault loads the config at path, falling back to the built-in
// defaults when the file does not exist.
func LoadOrDefault(path string) *dconfig.Config {
	c, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("config.load.error", "path", path, "error", err)
		}
		return dconfig.Default()
	}
	return c
}
