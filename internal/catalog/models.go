package catalog

import "time"

// Domain models that mirror SQL tables in schema.go.
// These are lightweight data transfer structs, NOT ORM models.
// JSON tags define the backup file format.

// Repository represents one entry of the repository catalog.
// Maps to the repositories table.
type Repository struct {
	ExternalID    string    `json:"external_id"`    // stable ID from the hosting platform
	Name          string    `json:"name"`           // repository name
	URL           string    `json:"url"`            // web URL on the hosting platform
	Description   string    `json:"description"`    // free text
	TechStack     string    `json:"tech_stack"`     // comma-separated hints, may be empty
	NamespacePath string    `json:"namespace_path"` // group/subgroup path
	Visibility    string    `json:"visibility"`     // public, internal, private
	IsActive      bool      `json:"is_active"`      // archived repositories are inactive
	LocalPath     string    `json:"local_path"`     // mirror location, empty until mirrored
	CreatedAt     time.Time `json:"created_at"`     // from the platform export
	UpdatedAt     time.Time `json:"updated_at"`     // from the platform export
}

// CorpusRun records one generated corpus artifact for a repository.
// Maps to the corpus_runs table.
type CorpusRun struct {
	ID              string    `json:"id"`               // UUID
	RepoExternalID  string    `json:"repo_external_id"` // FK to repositories
	ArtifactPath    string    `json:"artifact_path"`    // where the document was written
	FileCount       int       `json:"file_count"`       // files embedded in the document
	FilesDiscovered int       `json:"files_discovered"` // eligible files before packing
	SizeBytes       int64     `json:"size_bytes"`       // embedded content bytes
	SHA256          string    `json:"sha256"`           // hex digest of the full document
	Complete        bool      `json:"complete"`         // false when the size limit cut files
	CreatedAt       time.Time `json:"created_at"`       // generation time
}

// AnalysisRun records one prompt execution against a corpus artifact.
// Maps to the analysis_runs table.
type AnalysisRun struct {
	ID              string    `json:"id"`               // UUID
	RepoExternalID  string    `json:"repo_external_id"` // FK to repositories
	CorpusRunID     string    `json:"corpus_run_id"`    // FK to corpus_runs
	PromptTitle     string    `json:"prompt_title"`     // which prompt ran
	PromptCategory  string    `json:"prompt_category"`  // techstack, security, ...
	PromptSnapshot  string    `json:"prompt_snapshot"`  // prompt text at execution time
	Provider        string    `json:"provider"`         // mock or gemini
	Model           string    `json:"model"`            // model name used
	ScorePct        int       `json:"score_pct"`        // 0-100
	Summary         string    `json:"summary"`          // short result text
	SuggestionsJSON string    `json:"suggestions_json"` // serialized []Suggestion
	EndpointsJSON   string    `json:"endpoints_json"`   // serialized []Endpoint
	CreatedAt       time.Time `json:"created_at"`       // execution time
}

// Prompt is a reusable analysis prompt template.
// Maps to the prompts table.
type Prompt struct {
	Title            string    `json:"title"`             // unique human-readable name
	ShortDescription string    `json:"short_description"` // one-liner for listings
	Category         string    `json:"category"`          // one of PromptCategories
	PromptText       string    `json:"prompt_text"`       // the instruction sent to the client
	IsActive         bool      `json:"is_active"`         // inactive prompts are skipped
	UpdatedAt        time.Time `json:"updated_at"`
}

// PromptCategories lists the valid prompt categories.
var PromptCategories = []string{
	"techstack",
	"fachlichkeit",
	"hexagonal",
	"rest_l2",
	"security",
	"performance",
	"other",
}

// ValidPromptCategory reports whether category is one of PromptCategories.
func ValidPromptCategory(category string) bool {
	for _, c := range PromptCategories {
		if c == category {
			return true
		}
	}
	return false
}
