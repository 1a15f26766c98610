package config

import "github.com/archinspect/repoanalyst/internal/corpus"

// Config represents the complete repoanalyst configuration.
// It can be loaded from .repoanalyst/config.yml with environment variable
// overrides, and resolves to plain value objects before any build runs.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus" mapstructure:"corpus"`
	Mirror   MirrorConfig   `yaml:"mirror" mapstructure:"mirror"`
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Backup   BackupConfig   `yaml:"backup" mapstructure:"backup"`
}

// CorpusConfig selects files and bounds corpus size.
type CorpusConfig struct {
	IncludePatterns []string `yaml:"include_patterns" mapstructure:"include_patterns"` // glob patterns deciding eligibility
	ExcludePaths    []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`       // directory names never descended
	MaxBytes        int64    `yaml:"max_bytes" mapstructure:"max_bytes"`               // embedded content byte budget
	OutputDir       string   `yaml:"output_dir" mapstructure:"output_dir"`             // where corpus artifacts are written
}

// MirrorConfig locates local working copies of imported repositories.
// SourceRoot is searched for checkouts to copy; repositories without one get
// a placeholder mirror.
type MirrorConfig struct {
	Root       string `yaml:"root" mapstructure:"root"`
	SourceRoot string `yaml:"source_root" mapstructure:"source_root"`
}

// CatalogConfig locates the SQLite catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnalysisConfig configures the analysis client.
type AnalysisConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`       // "mock" or "gemini"
	Model       string  `yaml:"model" mapstructure:"model"`             // e.g. "gemini-1.5-flash"
	APIKeyEnv   string  `yaml:"api_key_env" mapstructure:"api_key_env"` // env var holding the API key
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// BackupConfig locates catalog backups.
type BackupConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{
			IncludePatterns: []string{"*.py", "*.md", "*.txt", "*.js", "*.ts"},
			ExcludePaths:    []string{".git", "node_modules", "dist", "build", "target", "venv", ".venv"},
			MaxBytes:        corpus.DefaultMaxBytes,
			OutputDir:       "./data/corpora",
		},
		Mirror: MirrorConfig{
			Root:       "./data/repos",
			SourceRoot: "./testdata/repos",
		},
		Catalog: CatalogConfig{
			Path: "./data/catalog.db",
		},
		Analysis: AnalysisConfig{
			Provider:    "mock",
			Model:       "gemini-1.5-flash",
			APIKeyEnv:   "GEMINI_API_KEY",
			Temperature: 0.2,
		},
		Backup: BackupConfig{
			Dir: "./data/backups",
		},
	}
}

// CorpusOptions resolves the corpus section into the explicit value object the
// builder consumes. The builder never sees where configuration came from.
func (c *Config) CorpusOptions() corpus.Options {
	return corpus.Options{
		IncludePatterns: c.Corpus.IncludePatterns,
		ExcludePaths:    c.Corpus.ExcludePaths,
		MaxBytes:        c.Corpus.MaxBytes,
	}
}
