package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/codelens/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .codelens/config.yml and .codelens/config.yaml
// - LoadConfig() merges a partial config file with defaults
// - Environment variables override config file values and defaults
// - LoadConfig() returns error for malformed YAML
// - LoadConfig() returns error for invalid configuration values
// - Validate() rejects unknown languages, non-positive sizes, empty includes,
//   malformed globs, non-positive cache capacity and workers, unknown log levels
// - Validate() reports every problem at once and keeps sentinel errors matchable
// - Language() maps the configured name to a language hint

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Parser.DefaultLanguage)
	assert.Equal(t, int64(1<<20), cfg.Parser.MaxFileBytes)
	assert.Contains(t, cfg.Paths.Include, "**/*.py")
	assert.Contains(t, cfg.Paths.Include, "**/*.java")
	assert.Contains(t, cfg.Paths.Include, "**/*.cpp")
	assert.Contains(t, cfg.Paths.Ignore, ".git/**")
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 1024, cfg.Cache.Capacity)
	assert.Positive(t, cfg.Scan.Workers)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NoError(t, Validate(cfg))
	assert.Equal(t, extraction.Language(""), cfg.Language())
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
parser:
  default_language: java
  max_file_bytes: 2048

paths:
  include:
    - "src/**/*.java"
  ignore:
    - "gen/**"

cache:
  enabled: false
  capacity: 0

scan:
  workers: 3

log:
  level: debug
  development: true
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "java", cfg.Parser.DefaultLanguage)
	assert.Equal(t, extraction.Java, cfg.Language())
	assert.Equal(t, int64(2048), cfg.Parser.MaxFileBytes)
	assert.Equal(t, []string{"src/**/*.java"}, cfg.Paths.Include)
	assert.Equal(t, []string{"gen/**"}, cfg.Paths.Ignore)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", `
parser:
  default_language: c++
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)
	assert.Equal(t, extraction.Cpp, cfg.Language())
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
scan:
  workers: 2
`)

	cfg, err := LoadConfigFromDir(tempDir)
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, defaults.Paths, cfg.Paths)
	assert.Equal(t, defaults.Cache, cfg.Cache)
	assert.Equal(t, defaults.Parser, cfg.Parser)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
cache:
  capacity: 10
log:
  level: warn
`)

	t.Setenv("CODELENS_CACHE_CAPACITY", "99")
	t.Setenv("CODELENS_PARSER_DEFAULT_LANGUAGE", "python")
	t.Setenv("CODELENS_SCAN_WORKERS", "7")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, 99, cfg.Cache.Capacity)
	assert.Equal(t, extraction.Python, cfg.Language())
	assert.Equal(t, 7, cfg.Scan.Workers)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "parser: [unclosed\n")

	_, err := NewLoader(tempDir).Load()
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
parser:
  default_language: cobol
`)

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown language", func(c *Config) { c.Parser.DefaultLanguage = "rust" }, ErrInvalidLanguage},
		{"zero max bytes", func(c *Config) { c.Parser.MaxFileBytes = 0 }, ErrInvalidSize},
		{"empty include", func(c *Config) { c.Paths.Include = nil }, ErrEmptyInclude},
		{"bad include glob", func(c *Config) { c.Paths.Include = []string{"src/["} }, ErrInvalidPattern},
		{"bad ignore glob", func(c *Config) { c.Paths.Ignore = []string{"vendor/["} }, ErrInvalidPattern},
		{"zero capacity", func(c *Config) { c.Cache.Capacity = 0 }, ErrInvalidCacheSettings},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, ErrInvalidWorkers},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_DisabledCacheIgnoresCapacity(t *testing.T) {
	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Cache.Capacity = 0
	assert.NoError(t, Validate(cfg))
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Parser.MaxFileBytes = -1
	cfg.Scan.Workers = -1
	cfg.Log.Level = "nope"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.True(t, errors.Is(err, ErrInvalidSize))
	assert.True(t, errors.Is(err, ErrInvalidWorkers))
	assert.True(t, errors.Is(err, ErrInvalidLogLevel))
}
