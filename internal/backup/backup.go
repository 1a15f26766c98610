// Package backup exports the catalog database as per-table JSON files
// and restores those exports back into a catalog.
//
// A backup is one directory under the backup root holding
// repositories.json, prompts.json, corpus_runs.json, analysis_runs.json
// and a metadata.json describing what was written. Corpus artifacts on
// disk are not part of a backup, only the catalog rows that point at
// them.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/archinspect/repoanalyst/internal/catalog"
)

// tableOrder lists the backed-up tables in dependency order.
var tableOrder = []string{"repositories", "prompts", "corpus_runs", "analysis_runs"}

// metadataFile sits next to the table files and marks a directory as a
// valid backup.
const metadataFile = "metadata.json"

// Metadata describes one backup directory.
type Metadata struct {
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Version   string         `json:"version"` // catalog schema version at backup time
	Tables    []string       `json:"tables"`
	Counts    map[string]int `json:"counts"`
}

// Info is one entry of a backup listing.
type Info struct {
	Name      string
	CreatedAt time.Time
	Counts    map[string]int
	SizeMB    float64
}

// Service writes and restores catalog backups under a root directory.
type Service struct {
	root string
	cat  *catalog.Catalog
}

// NewService creates a backup service rooted at root.
func NewService(root string, cat *catalog.Catalog) *Service {
	return &Service{root: root, cat: cat}
}

// Create writes a new backup and returns its metadata. An empty name
// picks a timestamped one. Creation is all or nothing: a failed export
// removes the partial directory.
func (s *Service) Create(name string) (*Metadata, error) {
	if name == "" {
		name = "backup_" + time.Now().UTC().Format("20060102_150405")
	}

	dir, err := s.backupPath(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("backup %s already exists", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	meta, err := s.export(dir, name)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	log.Printf("Created backup %s (%d repositories, %d corpus runs)\n",
		name, meta.Counts["repositories"], meta.Counts["corpus_runs"])
	return meta, nil
}

func (s *Service) export(dir, name string) (*Metadata, error) {
	snap, err := s.cat.ExportSnapshot()
	if err != nil {
		return nil, err
	}

	if err := writeTable(dir, "repositories", snap.Repositories); err != nil {
		return nil, err
	}
	if err := writeTable(dir, "prompts", snap.Prompts); err != nil {
		return nil, err
	}
	if err := writeTable(dir, "corpus_runs", snap.CorpusRuns); err != nil {
		return nil, err
	}
	if err := writeTable(dir, "analysis_runs", snap.AnalysisRuns); err != nil {
		return nil, err
	}

	meta := &Metadata{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Version:   catalog.SchemaVersion,
		Tables:    tableOrder,
		Counts: map[string]int{
			"repositories":  len(snap.Repositories),
			"prompts":       len(snap.Prompts),
			"corpus_runs":   len(snap.CorpusRuns),
			"analysis_runs": len(snap.AnalysisRuns),
		},
	}
	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// Restore loads a backup into the catalog and returns per-table restored
// counts. The import runs in one transaction: it either applies fully or
// leaves the catalog as it was. With clearExisting the tables are
// emptied first; without it, backup rows overwrite existing rows with
// the same key and everything else stays. A table file missing from the
// backup is skipped with a count of zero.
func (s *Service) Restore(name string, clearExisting bool) (map[string]int, error) {
	dir, err := s.backupPath(name)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("backup %s not found", name)
	}
	if _, err := readMetadata(dir); err != nil {
		return nil, fmt.Errorf("%s is not a valid backup: %w", name, err)
	}

	snap := &catalog.Snapshot{}
	if snap.Repositories, err = readTable[*catalog.Repository](dir, "repositories"); err != nil {
		return nil, err
	}
	if snap.Prompts, err = readTable[*catalog.Prompt](dir, "prompts"); err != nil {
		return nil, err
	}
	if snap.CorpusRuns, err = readTable[*catalog.CorpusRun](dir, "corpus_runs"); err != nil {
		return nil, err
	}
	if snap.AnalysisRuns, err = readTable[*catalog.AnalysisRun](dir, "analysis_runs"); err != nil {
		return nil, err
	}

	if err := s.cat.ImportSnapshot(snap, clearExisting); err != nil {
		return nil, fmt.Errorf("failed to restore backup %s: %w", name, err)
	}

	counts := map[string]int{
		"repositories":  len(snap.Repositories),
		"prompts":       len(snap.Prompts),
		"corpus_runs":   len(snap.CorpusRuns),
		"analysis_runs": len(snap.AnalysisRuns),
	}
	log.Printf("Restored backup %s: %v\n", name, counts)
	return counts, nil
}

// List returns the backups under the root, newest first. Directories
// without metadata still show up, dated by their modification time.
func (s *Service) List() ([]*Info, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup root: %w", err)
	}

	var infos []*Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, entry.Name())

		info := &Info{Name: entry.Name(), Counts: map[string]int{}}
		if meta, err := readMetadata(dir); err == nil {
			info.CreatedAt = meta.CreatedAt
			info.Counts = meta.Counts
		} else if fi, statErr := entry.Info(); statErr == nil {
			info.CreatedAt = fi.ModTime().UTC()
		}

		size, err := dirSize(dir)
		if err != nil {
			return nil, err
		}
		info.SizeMB = math.Round(float64(size)/(1024*1024)*100) / 100

		infos = append(infos, info)
	}

	// Timestamped names sort chronologically, so reverse name order is
	// newest first.
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name > infos[j].Name })
	return infos, nil
}

// Delete removes one backup directory. Deleting a backup that does not
// exist is an error.
func (s *Service) Delete(name string) error {
	dir, err := s.backupPath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("backup %s not found", name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", name, err)
	}
	return nil
}

// backupPath resolves name inside the backup root, rejecting names that
// would escape it.
func (s *Service) backupPath(name string) (string, error) {
	if s.root == "" {
		return "", fmt.Errorf("backup root is empty")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == "." || trimmed == ".." {
		return "", fmt.Errorf("invalid backup name %q", name)
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return "", fmt.Errorf("backup name %q must be a single path segment", name)
	}
	return filepath.Join(s.root, trimmed), nil
}

func readMetadata(dir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", metadataFile, err)
	}
	meta := &Metadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("malformed %s: %w", metadataFile, err)
	}
	return meta, nil
}

// writeTable serializes records to <dir>/<table>.json. An empty table
// still produces a file, holding an empty array.
func writeTable[T any](dir, table string, records []T) error {
	if records == nil {
		records = []T{}
	}
	return writeJSON(filepath.Join(dir, table+".json"), records)
}

// readTable loads <dir>/<table>.json. A missing file is not an error;
// it logs a warning and returns no records.
func readTable[T any](dir, table string) ([]T, error) {
	path := filepath.Join(dir, table+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: backup file %s.json not found, skipping\n", table)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("malformed %s.json: %w", table, err)
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// dirSize sums the sizes of all regular files under dir.
func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to measure backup %s: %w", dir, err)
	}
	return total, nil
}
