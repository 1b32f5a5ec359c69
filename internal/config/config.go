package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cyber-boost/helix-sub000/internal/binary"
	"github.com/cyber-boost/helix-sub000/internal/logging"
	"github.com/cyber-boost/helix-sub000/internal/optimizer"
)

// Config holds the on-disk settings for the HELIX toolchain: where the
// compile cache lives, what a bare `helix compile` defaults to, and how
// logging behaves. Everything else an invocation needs is either a CLI
// flag or derived at runtime.
type Config struct {
	// CacheDir is the compile cache's root directory. Empty means
	// resolve at load time via ResolveCacheDir.
	CacheDir string `yaml:"cache_dir"`

	// DefaultOptimizeLevel is the optimization level `compile` and
	// `bundle` use when the command line doesn't specify one.
	DefaultOptimizeLevel optimizer.Level `yaml:"default_optimize_level"`

	// DefaultCompression is the section compression kind `compile`
	// applies when the command line doesn't specify one.
	DefaultCompression binary.CompressionKind `yaml:"default_compression"`

	Logging logging.LoggingConfigSnapshot `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no .helix/config.yaml
// exists: zstd section compression, optimization level Two (safe,
// non-inlining passes only), logging off.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:             "",
		DefaultOptimizeLevel: optimizer.Two,
		DefaultCompression:   binary.CompressionZstd,
		Logging: logging.LoggingConfigSnapshot{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// Load reads .helix/config.yaml under dir. A missing file is not an
// error: Load returns the defaults with environment overrides applied.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(dir, ".helix", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to .helix/config.yaml under dir,
// creating the directory if needed.
func (c *Config) Save(dir string) error {
	configDir := filepath.Join(dir, ".helix")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets HELIX_CACHE_DIR, HELIX_OPTIMIZE_LEVEL, and
// HELIX_DEBUG override the loaded/default values, mirroring the
// teacher's env-override-after-YAML-load ordering.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("HELIX_CACHE_DIR"); dir != "" {
		c.CacheDir = dir
	}
	if lvl := os.Getenv("HELIX_OPTIMIZE_LEVEL"); lvl != "" {
		switch lvl {
		case "0":
			c.DefaultOptimizeLevel = optimizer.Zero
		case "1":
			c.DefaultOptimizeLevel = optimizer.One
		case "2":
			c.DefaultOptimizeLevel = optimizer.Two
		case "3":
			c.DefaultOptimizeLevel = optimizer.Three
		}
	}
	if debug := os.Getenv("HELIX_DEBUG"); debug == "1" || debug == "true" {
		c.Logging.DebugMode = true
	}
}

// ResolveCacheDir returns c.CacheDir if set, otherwise the host home
// directory plus a fixed subpath (~/.cache/helix), matching the
// resolution order of HELIX_CACHE_DIR → config file → default.
func (c *Config) ResolveCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "helix"), nil
}

// WriteLoggingSnapshot persists c.Logging to .helix/config.json, the
// format internal/logging reads to avoid importing this package.
func (c *Config) WriteLoggingSnapshot(dir string) error {
	configDir := filepath.Join(dir, ".helix")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return logging.WriteConfigSnapshot(filepath.Join(configDir, "config.json"), c.Logging)
}
