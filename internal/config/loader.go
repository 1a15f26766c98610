package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a configuration loader that searches the given root
// directory for .repoanalyst/config.yml.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// NewFileLoader creates a loader bound to an explicit config file path.
func NewFileLoader(configFile string) Loader {
	return &loader{configFile: configFile}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (REPOANALYST_*)
// 2. Config file (.repoanalyst/config.yml or an explicit --config path)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		configDir := filepath.Join(l.rootDir, ".repoanalyst")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("REPOANALYST")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g. REPOANALYST_CORPUS_MAX_BYTES)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys. List values are
	// comma-separated (viper's unmarshal hook splits them), e.g.
	// REPOANALYST_CORPUS_INCLUDE_PATTERNS="*.go,*.md"
	v.BindEnv("corpus.include_patterns")
	v.BindEnv("corpus.exclude_paths")
	v.BindEnv("corpus.max_bytes")
	v.BindEnv("corpus.output_dir")
	v.BindEnv("mirror.root")
	v.BindEnv("mirror.source_root")
	v.BindEnv("catalog.path")
	v.BindEnv("analysis.provider")
	v.BindEnv("analysis.model")
	v.BindEnv("analysis.api_key_env")
	v.BindEnv("analysis.temperature")
	v.BindEnv("backup.dir")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is acceptable; defaults + env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if l.configFile == "" {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// An explicit --config path must exist and parse.
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("corpus.include_patterns", defaults.Corpus.IncludePatterns)
	v.SetDefault("corpus.exclude_paths", defaults.Corpus.ExcludePaths)
	v.SetDefault("corpus.max_bytes", defaults.Corpus.MaxBytes)
	v.SetDefault("corpus.output_dir", defaults.Corpus.OutputDir)

	v.SetDefault("mirror.root", defaults.Mirror.Root)
	v.SetDefault("mirror.source_root", defaults.Mirror.SourceRoot)
	v.SetDefault("catalog.path", defaults.Catalog.Path)

	v.SetDefault("analysis.provider", defaults.Analysis.Provider)
	v.SetDefault("analysis.model", defaults.Analysis.Model)
	v.SetDefault("analysis.api_key_env", defaults.Analysis.APIKeyEnv)
	v.SetDefault("analysis.temperature", defaults.Analysis.Temperature)

	v.SetDefault("backup.dir", defaults.Backup.Dir)
}

// LoadConfig loads configuration from the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// LoadConfigFromFile loads configuration from an explicit file path.
func LoadConfigFromFile(configFile string) (*Config, error) {
	return NewFileLoader(configFile).Load()
}
