package registry

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/archinspect/repoanalyst/internal/catalog"
)

// TSVSource reads repositories from a tab-separated platform export.
//
// The file needs a header row; columns are resolved by name, in any order:
// name, description, created_at, updated_at, visibility, is_active, web_url,
// namespace_path, external_id, tech_stack. Only external_id and name are
// required.
type TSVSource struct {
	path string
}

// NewTSVSource creates a TSVSource for the given file.
// Fails if the file does not exist.
func NewTSVSource(path string) (*TSVSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("tsv file not found: %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("tsv path is a directory: %s", path)
	}
	return &TSVSource{path: path}, nil
}

// List reads one page of repositories.
// pageToken is a 1-based page number as a string; empty means page 1.
// Rows that cannot be parsed are skipped with a warning.
func (s *TSVSource) List(_ context.Context, pageSize int, pageToken string) ([]*catalog.Repository, string, error) {
	if pageSize <= 0 {
		return nil, "", fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	page := 1
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 1 {
			return nil, "", fmt.Errorf("invalid page token %q", pageToken)
		}
		page = n
	}

	all, err := s.readAll()
	if err != nil {
		return nil, "", err
	}

	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, "", nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	nextToken := ""
	if end < len(all) {
		nextToken = strconv.Itoa(page + 1)
	}
	return all[start:end], nextToken, nil
}

func (s *TSVSource) readAll() ([]*catalog.Repository, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tsv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1 // rows may omit trailing columns

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read tsv file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tsv file is empty: %s", s.path)
	}

	cols, err := resolveColumns(records[0])
	if err != nil {
		return nil, err
	}

	var repos []*catalog.Repository
	for i, record := range records[1:] {
		repo, err := parseRow(cols, record)
		if err != nil {
			log.Printf("Warning: skipping tsv row %d: %v\n", i+2, err)
			continue
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// columnMap holds the resolved index of each known column, -1 when absent.
type columnMap struct {
	externalID    int
	name          int
	webURL        int
	description   int
	techStack     int
	namespacePath int
	visibility    int
	isActive      int
	createdAt     int
	updatedAt     int
}

func resolveColumns(header []string) (*columnMap, error) {
	index := func(name string) int {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
		return -1
	}

	cols := &columnMap{
		externalID:    index("external_id"),
		name:          index("name"),
		webURL:        index("web_url"),
		description:   index("description"),
		techStack:     index("tech_stack"),
		namespacePath: index("namespace_path"),
		visibility:    index("visibility"),
		isActive:      index("is_active"),
		createdAt:     index("created_at"),
		updatedAt:     index("updated_at"),
	}

	if cols.externalID < 0 {
		return nil, fmt.Errorf("tsv header missing required column external_id")
	}
	if cols.name < 0 {
		return nil, fmt.Errorf("tsv header missing required column name")
	}
	return cols, nil
}

func parseRow(cols *columnMap, record []string) (*catalog.Repository, error) {
	externalID := field(record, cols.externalID)
	if externalID == "" {
		return nil, fmt.Errorf("empty external_id")
	}
	name := field(record, cols.name)
	if name == "" {
		return nil, fmt.Errorf("empty name")
	}

	visibility := field(record, cols.visibility)
	if visibility == "" {
		visibility = "internal"
	}

	return &catalog.Repository{
		ExternalID:    externalID,
		Name:          name,
		URL:           field(record, cols.webURL),
		Description:   field(record, cols.description),
		TechStack:     field(record, cols.techStack),
		NamespacePath: field(record, cols.namespacePath),
		Visibility:    visibility,
		IsActive:      parseActive(field(record, cols.isActive)),
		CreatedAt:     parseFlexibleTime(field(record, cols.createdAt)),
		UpdatedAt:     parseFlexibleTime(field(record, cols.updatedAt)),
	}, nil
}

// field returns the trimmed value at idx, or "" when the column is absent
// or the row is short.
func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseActive treats a missing value as active, matching platform exports
// that only flag archived repositories.
func parseActive(value string) bool {
	if value == "" {
		return true
	}
	switch value {
	case "1", "true", "True", "yes":
		return true
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseFlexibleTime accepts the timestamp shapes seen in platform exports.
// Unparseable values become the zero time.
func parseFlexibleTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	log.Printf("Warning: could not parse timestamp %q\n", value)
	return time.Time{}
}
