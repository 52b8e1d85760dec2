// Package config loads server settings from an optional YAML file with
// environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server and the report tool need to start.
type Config struct {
	Addr     string `yaml:"ADDR"`
	DBPath   string `yaml:"DB_PATH"`
	Seed     int64  `yaml:"SEED"`
	LogLevel string `yaml:"LOG_LEVEL"`
}

// Default returns the out-of-the-box configuration.
func Default() Config {
	return Config{
		Addr:     ":8080",
		DBPath:   "data/newsim.db",
		Seed:     42,
		LogLevel: "info",
	}
}

// Load reads the YAML file at path when it exists, then applies NEWSIM_*
// environment overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := envString("NEWSIM_ADDR"); v != "" {
		if !strings.HasPrefix(v, ":") && !strings.Contains(v, ":") {
			v = ":" + v
		}
		cfg.Addr = v
	}
	if v := envString("NEWSIM_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := envString("NEWSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("NEWSIM_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if v := envString("NEWSIM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
