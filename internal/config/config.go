package config

import (
	"runtime"

	"github.com/mvp-joe/codelens/internal/extraction"
)

// Config represents the complete codelens configuration.
// It can be loaded from .codelens/config.yml with environment variable overrides.
type Config struct {
	Parser ParserConfig `yaml:"parser" mapstructure:"parser"`
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ParserConfig controls how source files are parsed.
type ParserConfig struct {
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language"` // empty means detect
	MaxFileBytes    int64  `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`     // larger files are skipped
}

// PathsConfig defines which files to parse and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// CacheConfig configures the in-memory parse cache.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled" mapstructure:"enabled"`
	Capacity int  `yaml:"capacity" mapstructure:"capacity"` // max cached results
}

// ScanConfig configures directory scans.
type ScanConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // files parsed concurrently
}

// LogConfig configures the logger.
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	Development bool   `yaml:"development" mapstructure:"development"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			DefaultLanguage: "",
			MaxFileBytes:    1 << 20,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.py",
				"**/*.java",
				"**/*.c",
				"**/*.cc",
				"**/*.cpp",
				"**/*.cxx",
				"**/*.h",
				"**/*.hpp",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				".venv/**",
				"*.pyc",
			},
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1024,
		},
		Scan: ScanConfig{
			Workers: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Language returns the configured language hint, or "" to detect.
func (c *Config) Language() extraction.Language {
	return extraction.ParseLanguage(c.Parser.DefaultLanguage)
}
