package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Corpus Builder:
// - Build embeds every candidate when the budget is large enough, in tier order
// - Build skips an oversized candidate and keeps packing smaller ones
// - Build over a tree with no eligible files returns zero sections, complete
// - Build fails with ErrNotFound when the root is missing
// - Build fails with ErrNotFound when the root is a regular file
// - Build fails with ErrInvalidConfiguration for zero or negative budgets
// - Build fails with ErrInvalidConfiguration for an uncompilable pattern
// - Ties within a tier break by lexical relative path
// - Two builds over identical inputs produce identical documents
// - Tier ordering holds across all five named tiers
// - The truncation note appears exactly when the output is incomplete
// - Labels default to the root base name and are overridable

func writeTestFile(t *testing.T, root, relPath string, content []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, content, 0o644))
}

func bytesOfSize(n int) []byte {
	return []byte(strings.Repeat("a", n))
}

func scenarioTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTestFile(t, root, "README.md", bytesOfSize(500))
	writeTestFile(t, root, "main.py", bytesOfSize(2000))
	writeTestFile(t, root, "config.yml", bytesOfSize(300))
	return root
}

var scenarioPatterns = []string{"*.md", "*.py", "*.yml"}

func TestBuild_EmbedsAllWithinBudget(t *testing.T) {
	// Test: generous budget embeds every file, ordered by tier
	root := scenarioTree(t)

	out, err := Build(root, Options{
		IncludePatterns: scenarioPatterns,
		MaxBytes:        10000,
	})
	require.NoError(t, err)

	require.Len(t, out.Sections, 3)
	assert.Equal(t, "README.md", out.Sections[0].Path)
	assert.Equal(t, "main.py", out.Sections[1].Path)
	assert.Equal(t, "config.yml", out.Sections[2].Path)
	assert.True(t, out.Complete)
	assert.Equal(t, int64(2800), out.TotalBytes)
	assert.Equal(t, 3, out.FilesDiscovered)
	assert.Equal(t, 3, out.FilesEmbedded)
	assert.Empty(t, out.SkippedForBudget)
}

func TestBuild_SkipsOversizedAndContinues(t *testing.T) {
	// Test: a candidate that would overflow is skipped, later smaller
	// candidates still embed
	root := scenarioTree(t)

	out, err := Build(root, Options{
		IncludePatterns: scenarioPatterns,
		MaxBytes:        2000,
	})
	require.NoError(t, err)

	require.Len(t, out.Sections, 2)
	assert.Equal(t, "README.md", out.Sections[0].Path)
	assert.Equal(t, "config.yml", out.Sections[1].Path)
	assert.False(t, out.Complete)
	assert.Equal(t, int64(800), out.TotalBytes)
	assert.Equal(t, []string{"main.py"}, out.SkippedForBudget)

	// The tree still lists the skipped file.
	assert.Contains(t, out.Tree, "main.py")
}

func TestBuild_EmptyTreeIsComplete(t *testing.T) {
	// Test: nothing eligible yields an empty, complete corpus
	root := t.TempDir()
	writeTestFile(t, root, "logo.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01})

	out, err := Build(root, Options{
		IncludePatterns: []string{"*.py"},
		MaxBytes:        10000,
	})
	require.NoError(t, err)

	assert.Empty(t, out.Sections)
	assert.True(t, out.Complete)
	assert.Equal(t, int64(0), out.TotalBytes)
	assert.Contains(t, out.Tree, "(no matching files)")
}

func TestBuild_MissingRootReturnsNotFound(t *testing.T) {
	// Test: absent root is ErrNotFound
	_, err := Build(filepath.Join(t.TempDir(), "nope"), Options{
		IncludePatterns: []string{"*.py"},
		MaxBytes:        1000,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBuild_FileRootReturnsNotFound(t *testing.T) {
	// Test: a regular file as root is ErrNotFound
	root := t.TempDir()
	writeTestFile(t, root, "file.py", []byte("x = 1\n"))

	_, err := Build(filepath.Join(root, "file.py"), Options{
		IncludePatterns: []string{"*.py"},
		MaxBytes:        1000,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBuild_ZeroBudgetReturnsInvalidConfiguration(t *testing.T) {
	// Test: budget 0 is a contract violation, not an empty result
	_, err := Build(t.TempDir(), Options{
		IncludePatterns: []string{"*.py"},
		MaxBytes:        0,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	_, err = Build(t.TempDir(), Options{
		IncludePatterns: []string{"*.py"},
		MaxBytes:        -5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestBuild_BadPatternReturnsInvalidConfiguration(t *testing.T) {
	// Test: an uncompilable glob is a configuration error
	_, err := Build(t.TempDir(), Options{
		IncludePatterns: []string{"[broken"},
		MaxBytes:        1000,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestBuild_LexicalOrderBreaksTies(t *testing.T) {
	// Test: same tier, path order decides
	root := t.TempDir()
	writeTestFile(t, root, "b/file.py", []byte("b = 2\n"))
	writeTestFile(t, root, "a/file.py", []byte("a = 1\n"))

	out, err := Build(root, Options{
		IncludePatterns: []string{"*.py"},
		MaxBytes:        10000,
	})
	require.NoError(t, err)

	require.Len(t, out.Sections, 2)
	assert.Equal(t, "a/file.py", out.Sections[0].Path)
	assert.Equal(t, "b/file.py", out.Sections[1].Path)
}

func TestBuild_DeterministicOutput(t *testing.T) {
	// Test: identical inputs render byte-for-byte identical documents
	root := t.TempDir()
	writeTestFile(t, root, "README.md", []byte("# readme\n"))
	writeTestFile(t, root, "src/app.py", []byte("print('hi')\n"))
	writeTestFile(t, root, "src/util.py", []byte("def f():\n    pass\n"))
	writeTestFile(t, root, "conf/settings.yml", []byte("debug: false\n"))

	opts := Options{
		IncludePatterns: []string{"*.md", "*.py", "*.yml"},
		MaxBytes:        DefaultMaxBytes,
	}

	first, err := Build(root, opts)
	require.NoError(t, err)
	second, err := Build(root, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, first.TotalBytes, second.TotalBytes)
	assert.Equal(t, first.Sections, second.Sections)
}

func TestBuild_OrdersAcrossTiers(t *testing.T) {
	// Test: root docs, code, config, docs, markup embed in that order
	root := t.TempDir()
	writeTestFile(t, root, "style.css", []byte("body {}\n"))
	writeTestFile(t, root, "notes.txt", []byte("notes\n"))
	writeTestFile(t, root, "settings.yml", []byte("a: 1\n"))
	writeTestFile(t, root, "app.py", []byte("x = 1\n"))
	writeTestFile(t, root, "README.md", []byte("# r\n"))

	out, err := Build(root, Options{
		IncludePatterns: []string{"*.css", "*.txt", "*.yml", "*.py", "*.md"},
		MaxBytes:        10000,
	})
	require.NoError(t, err)

	require.Len(t, out.Sections, 5)
	assert.Equal(t, "README.md", out.Sections[0].Path)
	assert.Equal(t, "app.py", out.Sections[1].Path)
	assert.Equal(t, "settings.yml", out.Sections[2].Path)
	assert.Equal(t, "notes.txt", out.Sections[3].Path)
	assert.Equal(t, "style.css", out.Sections[4].Path)
}

func TestBuild_TruncationNoteMatchesCompleteness(t *testing.T) {
	// Test: the note line appears exactly when incomplete
	root := scenarioTree(t)

	full, err := Build(root, Options{IncludePatterns: scenarioPatterns, MaxBytes: 10000})
	require.NoError(t, err)
	assert.NotContains(t, full.Document, "Size limit reached")

	cut, err := Build(root, Options{IncludePatterns: scenarioPatterns, MaxBytes: 2000})
	require.NoError(t, err)
	assert.Contains(t, cut.Document, "**Note**: Size limit reached. Not all files included.")
	assert.True(t, strings.HasSuffix(cut.Document, "Not all files included.\n"))
}

func TestBuild_LabelDefaultsToRootBase(t *testing.T) {
	// Test: document title comes from the root directory unless overridden
	root := t.TempDir()
	writeTestFile(t, root, "README.md", []byte("# r\n"))

	out, err := Build(root, Options{IncludePatterns: []string{"*.md"}, MaxBytes: 1000})
	require.NoError(t, err)
	assert.Contains(t, out.Document, "# Repository: "+filepath.Base(root))

	labeled, err := Build(root, Options{
		IncludePatterns: []string{"*.md"},
		MaxBytes:        1000,
		Label:           "billing-service",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(labeled.Document, "# Repository: billing-service\n"))
}
