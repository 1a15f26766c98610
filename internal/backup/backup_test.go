package backup

// Test Plan for Backup Service:
//
// 1. Create Backups
//    - Test: all four table files plus metadata are written
//    - Test: default name is timestamped, explicit names are kept
//    - Test: creating over an existing backup fails
//    - Test: unsafe names are rejected
//
// 2. Restore Backups
//    - Test: full round trip after the catalog was wiped
//    - Test: restore without clearing keeps rows the backup never had
//    - Test: missing table files are skipped with a zero count
//    - Test: a backup with broken references restores nothing at all
//    - Test: directories without metadata are not restorable
//
// 3. Listing and Deletion
//    - Test: newest first ordering with sizes
//    - Test: metadata-less directories fall back to modification time
//    - Test: deleting removes the directory, deleting twice fails

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archinspect/repoanalyst/internal/catalog"
)

func newTestService(t *testing.T) (*Service, *catalog.Catalog) {
	t.Helper()
	cat := catalog.NewTestCatalog(t)
	root := filepath.Join(t.TempDir(), "backups")
	return NewService(root, cat), cat
}

// seedCatalog populates one repository with a corpus run and an analysis
// run so every backed-up table has data.
func seedCatalog(t *testing.T, cat *catalog.Catalog) {
	t.Helper()

	repo := &catalog.Repository{
		ExternalID: "101",
		Name:       "payments",
		URL:        "https://git.example.com/team/payments",
		Visibility: "internal",
		IsActive:   true,
		CreatedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	_, err := cat.Repositories.Upsert(repo)
	require.NoError(t, err)
	require.NoError(t, cat.Repositories.SetLocalPath("101", "/data/repos/payments"))

	require.NoError(t, cat.Runs.InsertCorpusRun(&catalog.CorpusRun{
		ID:              "corpus-1",
		RepoExternalID:  "101",
		ArtifactPath:    "/data/corpora/payments_corpus.md",
		FileCount:       3,
		FilesDiscovered: 5,
		SizeBytes:       2048,
		SHA256:          "abc123",
		Complete:        false,
		CreatedAt:       time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, cat.Runs.InsertAnalysisRun(&catalog.AnalysisRun{
		ID:              "analysis-1",
		RepoExternalID:  "101",
		CorpusRunID:     "corpus-1",
		PromptTitle:     "Security Audit",
		PromptCategory:  "security",
		PromptSnapshot:  "Führe ein Security-Audit durch",
		Provider:        "mock",
		ScorePct:        45,
		Summary:         "Sicherheitsanalyse abgeschlossen",
		SuggestionsJSON: "[]",
		EndpointsJSON:   "[]",
		CreatedAt:       time.Date(2024, 3, 3, 9, 5, 0, 0, time.UTC),
	}))
}

func TestCreate_WritesTablesAndMetadata(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	meta, err := svc.Create("backup_20240315_120000")
	require.NoError(t, err)
	require.NotNil(t, meta)

	// Test: every table file plus metadata.json exists on disk
	dir := filepath.Join(svc.root, "backup_20240315_120000")
	for _, name := range []string{
		"repositories.json", "prompts.json", "corpus_runs.json",
		"analysis_runs.json", "metadata.json",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected %s", name)
	}

	// Test: metadata reflects what was exported
	prompts, err := cat.Prompts.List()
	require.NoError(t, err)
	assert.Equal(t, "backup_20240315_120000", meta.Name)
	assert.Equal(t, catalog.SchemaVersion, meta.Version)
	assert.Equal(t, 1, meta.Counts["repositories"])
	assert.Equal(t, len(prompts), meta.Counts["prompts"])
	assert.Equal(t, 1, meta.Counts["corpus_runs"])
	assert.Equal(t, 1, meta.Counts["analysis_runs"])
	assert.False(t, meta.CreatedAt.IsZero())
}

func TestCreate_DefaultNameIsTimestamped(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	meta, err := svc.Create("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(meta.Name, "backup_"), "got %q", meta.Name)

	// Test: the timestamp part parses back
	_, err = time.Parse("20060102_150405", strings.TrimPrefix(meta.Name, "backup_"))
	assert.NoError(t, err)
}

func TestCreate_ExistingNameFails(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	_, err := svc.Create("backup_a")
	require.NoError(t, err)

	_, err = svc.Create("backup_a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreate_RejectsUnsafeNames(t *testing.T) {
	svc, _ := newTestService(t)

	for _, name := range []string{".", "..", "a/b", `a\b`, "../escape", "x..y"} {
		_, err := svc.Create(name)
		assert.Error(t, err, "name %q should be rejected", name)
	}
}

func TestRestore_RoundTripAfterWipe(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	meta, err := svc.Create("backup_roundtrip")
	require.NoError(t, err)

	// Wipe the catalog completely, then bring it back
	require.NoError(t, cat.ImportSnapshot(&catalog.Snapshot{}, true))
	count, err := cat.Repositories.Count()
	require.NoError(t, err)
	require.Zero(t, count)

	counts, err := svc.Restore("backup_roundtrip", true)
	require.NoError(t, err)
	assert.Equal(t, meta.Counts, counts)

	// Test: repository comes back with its mirror location intact
	repo, err := cat.Repositories.Get("101")
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, "payments", repo.Name)
	assert.Equal(t, "/data/repos/payments", repo.LocalPath)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), repo.CreatedAt)

	// Test: runs come back attached to the repository
	run, err := cat.Runs.LatestCorpusRun("101")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "corpus-1", run.ID)
	assert.Equal(t, int64(2048), run.SizeBytes)
	assert.False(t, run.Complete)

	analyses, err := cat.Runs.ListAnalysisRuns("101")
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, "Führe ein Security-Audit durch", analyses[0].PromptSnapshot)
}

func TestRestore_WithoutClearingKeepsNewRows(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	_, err := svc.Create("backup_merge")
	require.NoError(t, err)

	// Change the backed-up repository and add one the backup never saw
	repo, err := cat.Repositories.Get("101")
	require.NoError(t, err)
	repo.Description = "edited after the backup"
	_, err = cat.Repositories.Upsert(repo)
	require.NoError(t, err)

	_, err = cat.Repositories.Upsert(&catalog.Repository{
		ExternalID: "202",
		Name:       "inventory",
		Visibility: "internal",
		IsActive:   true,
	})
	require.NoError(t, err)

	_, err = svc.Restore("backup_merge", false)
	require.NoError(t, err)

	// Test: backup rows win by key, unrelated rows survive
	restored, err := cat.Repositories.Get("101")
	require.NoError(t, err)
	assert.Empty(t, restored.Description)

	kept, err := cat.Repositories.Get("202")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, "inventory", kept.Name)
}

func TestRestore_SkipsMissingTableFile(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	_, err := svc.Create("backup_partial")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(svc.root, "backup_partial", "analysis_runs.json")))

	counts, err := svc.Restore("backup_partial", true)
	require.NoError(t, err)
	assert.Zero(t, counts["analysis_runs"])
	assert.Equal(t, 1, counts["repositories"])
	assert.Equal(t, 1, counts["corpus_runs"])

	analyses, err := cat.Runs.ListAnalysisRuns("101")
	require.NoError(t, err)
	assert.Empty(t, analyses)
}

func TestRestore_AtomicWhenReferenceBroken(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	_, err := svc.Create("backup_broken")
	require.NoError(t, err)
	// The analysis run file still references corpus-1, so without the
	// corpus run file the import violates a foreign key
	require.NoError(t, os.Remove(filepath.Join(svc.root, "backup_broken", "corpus_runs.json")))

	_, err = svc.Restore("backup_broken", true)
	require.Error(t, err)

	// Test: the failed import rolled back, including the clearing
	repo, err := cat.Repositories.Get("101")
	require.NoError(t, err)
	require.NotNil(t, repo)
	run, err := cat.Runs.LatestCorpusRun("101")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "corpus-1", run.ID)
}

func TestRestore_MissingBackupFails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Restore("backup_nope", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRestore_DirectoryWithoutMetadataFails(t *testing.T) {
	svc, _ := newTestService(t)

	dir := filepath.Join(svc.root, "not_a_backup")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.txt"), []byte("x"), 0o644))

	_, err := svc.Restore("not_a_backup", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid backup")
}

func TestList_NewestFirstWithSizes(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	_, err := svc.Create("backup_20240101_000000")
	require.NoError(t, err)
	_, err = svc.Create("backup_20240315_000000")
	require.NoError(t, err)

	infos, err := svc.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "backup_20240315_000000", infos[0].Name)
	assert.Equal(t, "backup_20240101_000000", infos[1].Name)
	for _, info := range infos {
		assert.GreaterOrEqual(t, info.SizeMB, 0.0)
		assert.Equal(t, 1, info.Counts["repositories"])
		assert.False(t, info.CreatedAt.IsZero())
	}
}

func TestList_FallsBackWithoutMetadata(t *testing.T) {
	svc, _ := newTestService(t)

	dir := filepath.Join(svc.root, "backup_manual")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repositories.json"), []byte("[]"), 0o644))
	// Stray files next to backup directories are ignored
	require.NoError(t, os.WriteFile(filepath.Join(svc.root, "notes.txt"), []byte("x"), 0o644))

	infos, err := svc.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "backup_manual", infos[0].Name)
	assert.False(t, infos[0].CreatedAt.IsZero())
	assert.Empty(t, infos[0].Counts)
}

func TestList_EmptyRoot(t *testing.T) {
	svc, _ := newTestService(t)

	// The root does not exist until the first backup is created
	infos, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestDelete_RemovesBackup(t *testing.T) {
	svc, cat := newTestService(t)
	seedCatalog(t, cat)

	_, err := svc.Create("backup_gone")
	require.NoError(t, err)

	require.NoError(t, svc.Delete("backup_gone"))
	_, err = os.Stat(filepath.Join(svc.root, "backup_gone"))
	assert.True(t, os.IsNotExist(err))

	// Test: deleting again fails, and traversal names never reach the disk
	err = svc.Delete("backup_gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Error(t, svc.Delete("../escape"))
}
