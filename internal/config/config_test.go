package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyber-boost/helix-sub000/internal/binary"
	"github.com/cyber-boost/helix-sub000/internal/optimizer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, optimizer.Two, cfg.DefaultOptimizeLevel)
	assert.Equal(t, binary.CompressionZstd, cfg.DefaultCompression)
	assert.False(t, cfg.Logging.DebugMode)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, optimizer.Two, cfg.DefaultOptimizeLevel)
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".helix")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	content := "default_optimize_level: 3\ndefault_compression: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, optimizer.Three, cfg.DefaultOptimizeLevel)
	assert.Equal(t, binary.CompressionNone, cfg.DefaultCompression)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DefaultOptimizeLevel = optimizer.One
	cfg.CacheDir = "/tmp/somewhere"
	require.NoError(t, cfg.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, optimizer.One, loaded.DefaultOptimizeLevel)
	assert.Equal(t, "/tmp/somewhere", loaded.CacheDir)
}

func TestEnvOverridesCacheDir(t *testing.T) {
	t.Setenv("HELIX_CACHE_DIR", "/custom/cache")
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/custom/cache", cfg.CacheDir)
}

func TestEnvOverridesOptimizeLevel(t *testing.T) {
	t.Setenv("HELIX_OPTIMIZE_LEVEL", "0")
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, optimizer.Zero, cfg.DefaultOptimizeLevel)
}

func TestEnvOverridesDebugMode(t *testing.T) {
	t.Setenv("HELIX_DEBUG", "true")
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Logging.DebugMode)
}

func TestResolveCacheDirUsesConfiguredPathWhenSet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheDir = "/explicit/path"
	dir, err := cfg.ResolveCacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/explicit/path", dir)
}

func TestResolveCacheDirFallsBackToHomeSubpath(t *testing.T) {
	cfg := DefaultConfig()
	dir, err := cfg.ResolveCacheDir()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".cache", "helix"), dir)
}

func TestWriteLoggingSnapshotWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Logging.DebugMode = true
	cfg.Logging.Level = "debug"
	require.NoError(t, cfg.WriteLoggingSnapshot(dir))

	data, err := os.ReadFile(filepath.Join(dir, ".helix", "config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"debug_mode": true`)
}
