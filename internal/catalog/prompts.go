package catalog

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// PromptStore handles reading and writing analysis prompt templates.
type PromptStore struct {
	db *sql.DB
}

// NewPromptStore creates a PromptStore instance.
// DB must have schema already created via CreateSchema().
func NewPromptStore(db *sql.DB) *PromptStore {
	return &PromptStore{db: db}
}

var promptColumns = []string{
	"title", "short_description", "category", "prompt_text", "is_active", "updated_at",
}

// defaultPrompts are seeded on first open. Titles are stable keys, so
// seeding never overwrites user edits.
var defaultPrompts = []Prompt{
	{
		Title:            "Techstack-Analyse",
		ShortDescription: "Analysiert den verwendeten Technologie-Stack",
		Category:         "techstack",
		PromptText: "Analysiere den Technologie-Stack dieses Repositories. " +
			"Identifiziere verwendete Programmiersprachen, Frameworks, " +
			"Bibliotheken und Tools. Bewerte die Aktualität und gib " +
			"Empfehlungen für Verbesserungen.",
		IsActive: true,
	},
	{
		Title:            "Hexagonale Architektur Check",
		ShortDescription: "Prüft die Umsetzung hexagonaler Architektur",
		Category:         "hexagonal",
		PromptText: "Analysiere, ob und wie gut dieses Repository das Pattern " +
			"der hexagonalen Architektur (Ports & Adapters) umsetzt. " +
			"Identifiziere Domain, Application Services, Ports und Adapters. " +
			"Gib einen Score und Verbesserungsvorschläge.",
		IsActive: true,
	},
	{
		Title:            "REST Level 2 Compliance",
		ShortDescription: "Prüft REST API auf Richardson Maturity Level 2",
		Category:         "rest_l2",
		PromptText: "Analysiere die REST API dieses Repositories auf Konformität " +
			"mit Richardson Maturity Model Level 2. Prüfe HTTP-Verben, " +
			"Statuscodes, Ressourcen-Modellierung. Liste alle Endpoints auf " +
			"und gib Verbesserungsvorschläge.",
		IsActive: true,
	},
	{
		Title:            "Security Audit",
		ShortDescription: "Sicherheitsüberprüfung des Codes",
		Category:         "security",
		PromptText: "Führe ein Security Audit durch. Suche nach potentiellen " +
			"Sicherheitslücken, unsicheren Praktiken, fehlenden Validierungen, " +
			"SQL Injection Risiken, XSS-Problemen, etc. Gib konkrete " +
			"Empfehlungen.",
		IsActive: true,
	},
}

// SeedDefaults inserts the built-in prompts.
// Existing rows with the same title are left untouched.
func (s *PromptStore) SeedDefaults() error {
	now := time.Now().UTC()
	for _, p := range defaultPrompts {
		_, err := sq.Insert("prompts").
			Columns(promptColumns...).
			Values(promptValues(&p, now)...).
			Options("OR IGNORE").
			RunWith(s.db).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to seed prompt %s: %w", p.Title, err)
		}
	}
	return nil
}

// Upsert writes or replaces a prompt keyed by title and stamps it as
// updated now.
func (s *PromptStore) Upsert(p *Prompt) error {
	if p.Title == "" {
		return fmt.Errorf("prompt has no title")
	}
	if !ValidPromptCategory(p.Category) {
		return fmt.Errorf("prompt %s has unknown category %q", p.Title, p.Category)
	}

	_, err := sq.Insert("prompts").
		Columns(promptColumns...).
		Values(promptValues(p, time.Now().UTC())...).
		Options("OR REPLACE").
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to upsert prompt %s: %w", p.Title, err)
	}
	return nil
}

// promptValues binds p to promptColumns in order, with an explicit
// updated_at so bulk loads can carry the original timestamp.
func promptValues(p *Prompt, updatedAt time.Time) []any {
	return []any{
		p.Title,
		p.ShortDescription,
		p.Category,
		p.PromptText,
		p.IsActive,
		updatedAt.UTC().Format(time.RFC3339),
	}
}

// GetActive retrieves the active prompt for a category.
// Returns (nil, nil) if the category has no active prompt.
func (s *PromptStore) GetActive(category string) (*Prompt, error) {
	row := sq.Select(promptColumns...).
		From("prompts").
		Where(sq.Eq{"category": category, "is_active": true}).
		OrderBy("title").
		Limit(1).
		RunWith(s.db).
		QueryRow()

	prompt, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active prompt for %s: %w", category, err)
	}
	return prompt, nil
}

// List retrieves all prompts ordered by category, then title.
func (s *PromptStore) List() ([]*Prompt, error) {
	rows, err := sq.Select(promptColumns...).
		From("prompts").
		OrderBy("category", "title").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	var results []*Prompt
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		results = append(results, prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompts: %w", err)
	}
	return results, nil
}

func scanPrompt(row rowScanner) (*Prompt, error) {
	prompt := &Prompt{}
	var updatedAt string

	err := row.Scan(
		&prompt.Title,
		&prompt.ShortDescription,
		&prompt.Category,
		&prompt.PromptText,
		&prompt.IsActive,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	prompt.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return prompt, nil
}
