package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// HistoryConfig controls the run-history store.
type HistoryConfig struct {
	// Enabled turns on recording of run statistics.
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database.
	DBPath string `yaml:"db_path"`

	// KeepRuns is how many runs to retain (0 = unlimited).
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents flatpack configuration options.
type Config struct {
	// LogLevel sets logging verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run log files are written.
	// Empty disables file logging.
	LogDir string `yaml:"log_dir"`

	// SizeWarnMB is the cumulative output size (in MB) above which a
	// size-limit warning is emitted after the run.
	SizeWarnMB int `yaml:"size_warn_mb"`

	// MaxConvertMB caps (in MB) how large a convertible file may be
	// before a placeholder is written instead of its content.
	MaxConvertMB int `yaml:"max_convert_mb"`

	// ExtraSkipDirs are additional directory names to prune, on top of
	// the built-in skip-set.
	ExtraSkipDirs []string `yaml:"extra_skip_dirs"`

	// ExtraIgnoredExtensions are additional extensions to skip, on top
	// of the built-in ignored set. The supported set cannot be changed:
	// output naming is a compatibility contract.
	ExtraIgnoredExtensions []string `yaml:"extra_ignored_extensions"`

	// DryRun classifies and reports without writing any output.
	DryRun bool `yaml:"dry_run"`

	// History contains run-history store configuration.
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		LogDir:       "",
		SizeWarnMB:   100,
		MaxConvertMB: 256,
		DryRun:       false,
		History: HistoryConfig{
			Enabled:  false,
			DBPath:   filepath.Join(".flatpack", "history.db"),
			KeepRuns: 0,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from the file over the defaults.
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if fileCfg.SizeWarnMB != 0 {
		cfg.SizeWarnMB = fileCfg.SizeWarnMB
	}
	if fileCfg.MaxConvertMB != 0 {
		cfg.MaxConvertMB = fileCfg.MaxConvertMB
	}
	if len(fileCfg.ExtraSkipDirs) > 0 {
		cfg.ExtraSkipDirs = fileCfg.ExtraSkipDirs
	}
	if len(fileCfg.ExtraIgnoredExtensions) > 0 {
		cfg.ExtraIgnoredExtensions = fileCfg.ExtraIgnoredExtensions
	}
	if fileCfg.DryRun {
		cfg.DryRun = fileCfg.DryRun
	}

	// The history section needs presence detection: an explicit
	// "enabled: false" must not be confused with the section missing.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, exists := rawMap["history"]; exists && section != nil {
			sectionMap, _ := section.(map[string]interface{})
			if _, ok := sectionMap["enabled"]; ok {
				cfg.History.Enabled = fileCfg.History.Enabled
			}
			if _, ok := sectionMap["db_path"]; ok {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
			if _, ok := sectionMap["keep_runs"]; ok {
				cfg.History.KeepRuns = fileCfg.History.KeepRuns
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .flatpack/config.yaml in
// the specified directory. If the directory or file doesn't exist,
// returns default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".flatpack", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values, so flags take
// precedence over config file settings.
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, sizeWarnMB *int, dryRun *bool, record *bool) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if sizeWarnMB != nil {
		c.SizeWarnMB = *sizeWarnMB
	}
	if dryRun != nil {
		c.DryRun = *dryRun
	}
	if record != nil {
		c.History.Enabled = *record
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.SizeWarnMB < 0 {
		return fmt.Errorf("size_warn_mb must be >= 0, got %d", c.SizeWarnMB)
	}
	if c.MaxConvertMB <= 0 {
		return fmt.Errorf("max_convert_mb must be > 0, got %d", c.MaxConvertMB)
	}

	for _, ext := range c.ExtraIgnoredExtensions {
		if strings.ContainsAny(ext, "./\\") {
			return fmt.Errorf("extra ignored extension %q must be a bare suffix without dots or separators", ext)
		}
	}

	if c.History.Enabled {
		if c.History.DBPath == "" {
			return fmt.Errorf("history.db_path cannot be empty when history is enabled")
		}
		if c.History.KeepRuns < 0 {
			return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
		}
	}

	return nil
}
