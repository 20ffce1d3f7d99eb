package refocus

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables the core algorithm would otherwise treat as
// fixed constants (the search-result truncator's 20-hit-line / 1000-char
// caps) plus the audit sink's target path. DefaultConfig reproduces the
// zero-configuration behavior exactly.
type Config struct {
	MaxSearchHitLines int    `yaml:"max_search_hit_lines"`
	MaxHitLineChars   int    `yaml:"max_hit_line_chars"`
	LogPath           string `yaml:"log_path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MaxSearchHitLines: 20,
		MaxHitLineChars:   1000,
		LogPath:           defaultLogPath(),
	}
}

func defaultLogPath() string {
	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		cwd = "."
	}
	return filepath.Join(cwd, ".doh", "logs", "qwen.log")
}

// LoadConfig reads an optional YAML config file and layers it over
// DefaultConfig; a missing or unparsable file is not an error, it falls
// back to defaults rather than surfacing a config error to a library
// caller. Only fields present in the file override the default.
func LoadConfig(path string) Config {
	cfg := DefaultConfig()
	if path == "" {
		return cfg
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	var overrides struct {
		MaxSearchHitLines *int    `yaml:"max_search_hit_lines"`
		MaxHitLineChars   *int    `yaml:"max_hit_line_chars"`
		LogPath           *string `yaml:"log_path"`
	}
	if err := yaml.Unmarshal(b, &overrides); err != nil {
		return cfg
	}
	if overrides.MaxSearchHitLines != nil {
		cfg.MaxSearchHitLines = *overrides.MaxSearchHitLines
	}
	if overrides.MaxHitLineChars != nil {
		cfg.MaxHitLineChars = *overrides.MaxHitLineChars
	}
	if overrides.LogPath != nil {
		cfg.LogPath = *overrides.LogPath
	}
	return cfg
}
