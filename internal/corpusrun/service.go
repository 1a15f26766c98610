// Package corpusrun generates corpus artifacts for catalog repositories and
// records each run.
package corpusrun

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/archinspect/repoanalyst/internal/catalog"
	"github.com/archinspect/repoanalyst/internal/config"
	"github.com/archinspect/repoanalyst/internal/corpus"
	"github.com/archinspect/repoanalyst/internal/mirror"
)

// Service builds corpora for repositories: it ensures a local mirror,
// runs the builder, writes the artifact, and records a run row.
type Service struct {
	cfg   *config.Config
	repos *catalog.RepositoryStore
	runs  *catalog.RunStore
}

// NewService creates a corpus generation service on an open catalog.
func NewService(cfg *config.Config, cat *catalog.Catalog) *Service {
	return &Service{
		cfg:   cfg,
		repos: cat.Repositories,
		runs:  cat.Runs,
	}
}

// Generate builds the corpus for repo and returns the recorded run.
//
// The repository is mirrored first if it has no usable local path. The
// artifact is written to <output_dir>/<name>_corpus.md; the run row carries
// the generation time and the document hash.
func (s *Service) Generate(ctx context.Context, repo *catalog.Repository) (*catalog.CorpusRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is nil")
	}

	root, err := s.ensureMirror(repo)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.CorpusOptions()
	opts.Label = repo.Name

	output, err := corpus.Build(root, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build corpus for %s: %w", repo.Name, err)
	}

	artifactPath, err := s.writeArtifact(repo.Name, output.Document)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256([]byte(output.Document))
	run := &catalog.CorpusRun{
		ID:              uuid.New().String(),
		RepoExternalID:  repo.ExternalID,
		ArtifactPath:    artifactPath,
		FileCount:       output.FilesEmbedded,
		FilesDiscovered: output.FilesDiscovered,
		SizeBytes:       output.TotalBytes,
		SHA256:          hex.EncodeToString(digest[:]),
		Complete:        output.Complete,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.runs.InsertCorpusRun(run); err != nil {
		return nil, err
	}

	return run, nil
}

// ensureMirror returns the repository's working copy, mirroring it first
// when the recorded path is empty or gone.
func (s *Service) ensureMirror(repo *catalog.Repository) (string, error) {
	if repo.LocalPath != "" {
		if info, err := os.Stat(repo.LocalPath); err == nil && info.IsDir() {
			return repo.LocalPath, nil
		}
	}

	sourceDir := ""
	if s.cfg.Mirror.SourceRoot != "" {
		sourceDir = filepath.Join(s.cfg.Mirror.SourceRoot, repo.Name)
	}

	target, err := mirror.Mirror(repo.Name, sourceDir, s.cfg.Mirror.Root)
	if err != nil {
		return "", fmt.Errorf("failed to mirror %s: %w", repo.Name, err)
	}

	if err := s.repos.SetLocalPath(repo.ExternalID, target); err != nil {
		return "", err
	}
	repo.LocalPath = target

	return target, nil
}

// writeArtifact writes the document under the configured output directory.
func (s *Service) writeArtifact(repoName, document string) (string, error) {
	outputDir := s.cfg.Corpus.OutputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	artifactPath := filepath.Join(outputDir, repoName+"_corpus.md")
	if err := os.WriteFile(artifactPath, []byte(document), 0o644); err != nil {
		return "", fmt.Errorf("failed to write corpus artifact: %w", err)
	}
	return artifactPath, nil
}
