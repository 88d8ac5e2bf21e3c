// Package config loads tool configuration.
//
// Loading order (later overrides earlier):
//  1. Defaults (hardcoded)
//  2. Project config: <root>/.smartcontext.yaml
//  3. Environment variables: SMARTCONTEXT_*
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"smartcontext/internal/scan"
)

// ConfigFileName is the per-project configuration file.
const ConfigFileName = ".smartcontext.yaml"

// Config is the complete tool configuration.
type Config struct {
	Extensions    []string `yaml:"extensions"`       // file extension allowlist
	Ignore        []string `yaml:"ignore"`           // extra gitignore-style patterns
	MaxFileSizeKB int      `yaml:"max_file_size_kb"` // per-file size cap
	Workers       int      `yaml:"workers"`          // concurrent reducers
	NoCache       bool     `yaml:"no_cache"`         // disable the skeleton cache
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Extensions:    nil, // scan falls back to its own allowlist
		MaxFileSizeKB: scan.DefaultMaxFileSize / 1024,
		Workers:       4,
	}
}

// Load resolves configuration for a scanned root.
// A missing config file is fine; a malformed one is an error.
func Load(root string) (Config, error) {
	cfg := Default()

	path := filepath.Join(root, ConfigFileName)
	if content, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides config fields from SMARTCONTEXT_* variables.
func applyEnv(cfg *Config) {
	if exts := os.Getenv("SMARTCONTEXT_EXTENSIONS"); exts != "" {
		cfg.Extensions = splitList(exts)
	}
	if patterns := os.Getenv("SMARTCONTEXT_IGNORE"); patterns != "" {
		cfg.Ignore = append(cfg.Ignore, splitList(patterns)...)
	}
	if kb := os.Getenv("SMARTCONTEXT_MAX_FILE_KB"); kb != "" {
		if n, err := strconv.Atoi(kb); err == nil && n > 0 {
			cfg.MaxFileSizeKB = n
		}
	}
	if workers := os.Getenv("SMARTCONTEXT_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if cacheEnv := os.Getenv("SMARTCONTEXT_CACHE"); cacheEnv != "" {
		switch strings.ToLower(cacheEnv) {
		case "off", "false", "0":
			cfg.NoCache = true
		case "on", "true", "1":
			cfg.NoCache = false
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ScanConfig converts the tool configuration into scan settings.
func (c Config) ScanConfig() scan.Config {
	return scan.Config{
		Extensions:     c.Extensions,
		IgnorePatterns: c.Ignore,
		MaxFileSize:    int64(c.MaxFileSizeKB) * 1024,
	}
}
