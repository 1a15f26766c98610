package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/archinspect/repoanalyst/internal/catalog"
)

// Service runs analysis prompts against the latest corpus of a repository
// and records the outcome.
type Service struct {
	client  Client
	runs    *catalog.RunStore
	prompts *catalog.PromptStore
}

// NewService creates an analysis service on an open catalog.
func NewService(client Client, cat *catalog.Catalog) *Service {
	return &Service{
		client:  client,
		runs:    cat.Runs,
		prompts: cat.Prompts,
	}
}

// Run executes the active prompt of the given category against the latest
// corpus artifact of repo and records an analysis run.
//
// The prompt text is snapshotted into the run, so later prompt edits never
// change what past runs say was executed.
func (s *Service) Run(ctx context.Context, repo *catalog.Repository, category string) (*catalog.AnalysisRun, *Result, error) {
	if repo == nil {
		return nil, nil, fmt.Errorf("repository is nil")
	}
	if !catalog.ValidPromptCategory(category) {
		return nil, nil, fmt.Errorf("unknown prompt category %q", category)
	}

	prompt, err := s.prompts.GetActive(category)
	if err != nil {
		return nil, nil, err
	}
	if prompt == nil {
		return nil, nil, fmt.Errorf("no active prompt for category %q", category)
	}

	corpusRun, err := s.runs.LatestCorpusRun(repo.ExternalID)
	if err != nil {
		return nil, nil, err
	}
	if corpusRun == nil {
		return nil, nil, fmt.Errorf("repository %s has no corpus yet, run corpus build first", repo.Name)
	}

	document, err := os.ReadFile(corpusRun.ArtifactPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read corpus artifact: %w", err)
	}

	result, err := s.client.Analyze(ctx, prompt.PromptText, string(document))
	if err != nil {
		return nil, nil, fmt.Errorf("analysis failed: %w", err)
	}

	suggestionsJSON, err := json.Marshal(result.Suggestions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode suggestions: %w", err)
	}
	endpointsJSON, err := json.Marshal(result.Endpoints)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode endpoints: %w", err)
	}

	run := &catalog.AnalysisRun{
		ID:              uuid.New().String(),
		RepoExternalID:  repo.ExternalID,
		CorpusRunID:     corpusRun.ID,
		PromptTitle:     prompt.Title,
		PromptCategory:  prompt.Category,
		PromptSnapshot:  prompt.PromptText,
		Provider:        s.client.Provider(),
		Model:           s.client.Model(),
		ScorePct:        result.ScorePct,
		Summary:         result.Summary,
		SuggestionsJSON: string(suggestionsJSON),
		EndpointsJSON:   string(endpointsJSON),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.runs.InsertAnalysisRun(run); err != nil {
		return nil, nil, err
	}

	return run, result, nil
}
