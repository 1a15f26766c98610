package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoIncludePatterns indicates an empty include pattern list
	ErrNoIncludePatterns = errors.New("no include patterns")

	// ErrInvalidMaxBytes indicates a non-positive corpus byte budget
	ErrInvalidMaxBytes = errors.New("invalid max bytes")

	// ErrNoOutputDir indicates a missing corpus output directory
	ErrNoOutputDir = errors.New("empty corpus output directory")

	// ErrNoMirrorRoot indicates a missing mirror root
	ErrNoMirrorRoot = errors.New("empty mirror root")

	// ErrNoCatalogPath indicates a missing catalog path
	ErrNoCatalogPath = errors.New("empty catalog path")

	// ErrInvalidProvider indicates an unsupported analysis provider
	ErrInvalidProvider = errors.New("invalid analysis provider")

	// ErrEmptyModel indicates a missing model for a remote provider
	ErrEmptyModel = errors.New("empty analysis model")

	// ErrInvalidTemperature indicates an out-of-range sampling temperature
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrNoBackupDir indicates a missing backup directory
	ErrNoBackupDir = errors.New("empty backup directory")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateCorpus(&cfg.Corpus); err != nil {
		errs = append(errs, err)
	}
	if err := validateMirror(&cfg.Mirror); err != nil {
		errs = append(errs, err)
	}
	if err := validateCatalog(&cfg.Catalog); err != nil {
		errs = append(errs, err)
	}
	if err := validateAnalysis(&cfg.Analysis); err != nil {
		errs = append(errs, err)
	}
	if err := validateBackup(&cfg.Backup); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateCorpus(cfg *CorpusConfig) error {
	var errs []error

	if len(cfg.IncludePatterns) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrNoIncludePatterns))
	}
	if cfg.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_bytes must be positive, got %d", ErrInvalidMaxBytes, cfg.MaxBytes))
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		errs = append(errs, fmt.Errorf("%w: output_dir is required", ErrNoOutputDir))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateMirror(cfg *MirrorConfig) error {
	if strings.TrimSpace(cfg.Root) == "" {
		return fmt.Errorf("%w: mirror.root is required", ErrNoMirrorRoot)
	}
	return nil
}

func validateCatalog(cfg *CatalogConfig) error {
	if strings.TrimSpace(cfg.Path) == "" {
		return fmt.Errorf("%w: catalog.path is required", ErrNoCatalogPath)
	}
	return nil
}

func validateAnalysis(cfg *AnalysisConfig) error {
	var errs []error

	provider := strings.ToLower(cfg.Provider)
	if provider != "mock" && provider != "gemini" {
		errs = append(errs, fmt.Errorf("%w: must be 'mock' or 'gemini', got '%s'", ErrInvalidProvider, cfg.Provider))
	}
	if provider == "gemini" && strings.TrimSpace(cfg.Model) == "" {
		errs = append(errs, fmt.Errorf("%w: model is required for the gemini provider", ErrEmptyModel))
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%w: temperature must be in [0, 2], got %.2f", ErrInvalidTemperature, cfg.Temperature))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateBackup(cfg *BackupConfig) error {
	if strings.TrimSpace(cfg.Dir) == "" {
		return fmt.Errorf("%w: backup.dir is required", ErrNoBackupDir)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
