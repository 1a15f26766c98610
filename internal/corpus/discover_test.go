package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Discovery:
// - Filename globs match base names at any depth
// - Path globs match the relative path only
// - "**/" patterns also cover root-level files
// - Built-in and caller-provided exclude directories are never descended
// - Binary files never become candidates even when a pattern matches
// - Candidates come back ordered by tier, then relative path
// - An unreadable subdirectory is skipped and the build still completes

func TestDiscover_FilenameGlobMatchesAnyDepth(t *testing.T) {
	// Test: "*.py" selects nested files too
	root := t.TempDir()
	writeTestFile(t, root, "main.py", []byte("a\n"))
	writeTestFile(t, root, "src/deep/worker.py", []byte("b\n"))
	writeTestFile(t, root, "src/readme.rst", []byte("c\n"))

	out, err := Build(root, Options{IncludePatterns: []string{"*.py"}, MaxBytes: 1000})
	require.NoError(t, err)

	require.Len(t, out.Sections, 2)
	assert.Equal(t, "main.py", out.Sections[0].Path)
	assert.Equal(t, "src/deep/worker.py", out.Sections[1].Path)
}

func TestDiscover_PathGlobMatchesRelativePath(t *testing.T) {
	// Test: "src/*.py" selects only direct children of src
	root := t.TempDir()
	writeTestFile(t, root, "main.py", []byte("a\n"))
	writeTestFile(t, root, "src/app.py", []byte("b\n"))
	writeTestFile(t, root, "src/deep/worker.py", []byte("c\n"))

	out, err := Build(root, Options{IncludePatterns: []string{"src/*.py"}, MaxBytes: 1000})
	require.NoError(t, err)

	require.Len(t, out.Sections, 1)
	assert.Equal(t, "src/app.py", out.Sections[0].Path)
}

func TestDiscover_DoubleStarPrefixCoversRootFiles(t *testing.T) {
	// Test: "**/*.md" matches README.md at the root as well as nested docs
	root := t.TempDir()
	writeTestFile(t, root, "README.md", []byte("a\n"))
	writeTestFile(t, root, "docs/guide.md", []byte("b\n"))

	out, err := Build(root, Options{IncludePatterns: []string{"**/*.md"}, MaxBytes: 1000})
	require.NoError(t, err)

	require.Len(t, out.Sections, 2)
	assert.Equal(t, "README.md", out.Sections[0].Path)
	assert.Equal(t, "docs/guide.md", out.Sections[1].Path)
}

func TestDiscover_ExcludedDirectoriesNeverAppear(t *testing.T) {
	// Test: default and custom excludes are invisible to tree and sections
	root := t.TempDir()
	writeTestFile(t, root, "app.py", []byte("a\n"))
	writeTestFile(t, root, "node_modules/lib/index.js", []byte("b\n"))
	writeTestFile(t, root, ".git/config", []byte("c\n"))
	writeTestFile(t, root, "generated/out.py", []byte("d\n"))

	out, err := Build(root, Options{
		IncludePatterns: []string{"*.py", "*.js", "config"},
		ExcludePaths:    []string{"generated"},
		MaxBytes:        1000,
	})
	require.NoError(t, err)

	require.Len(t, out.Sections, 1)
	assert.Equal(t, "app.py", out.Sections[0].Path)
	assert.NotContains(t, out.Tree, "node_modules")
	assert.NotContains(t, out.Tree, ".git")
	assert.NotContains(t, out.Tree, "generated")
	assert.Equal(t, 1, out.FilesDiscovered)
}

func TestDiscover_BinaryFilesAreNotCandidates(t *testing.T) {
	// Test: a NUL byte in the head disqualifies a file entirely
	root := t.TempDir()
	writeTestFile(t, root, "real.py", []byte("x = 1\n"))
	writeTestFile(t, root, "compiled.py", append([]byte{0x00, 0x01}, bytesOfSize(64)...))

	out, err := Build(root, Options{IncludePatterns: []string{"*.py"}, MaxBytes: 1000})
	require.NoError(t, err)

	require.Len(t, out.Sections, 1)
	assert.Equal(t, "real.py", out.Sections[0].Path)
	assert.Equal(t, 1, out.FilesDiscovered)
	assert.True(t, out.Complete)
	assert.NotContains(t, out.Tree, "compiled.py")
}

func TestDiscover_CandidatesSortedByTierThenPath(t *testing.T) {
	// Test: discover returns tier order with lexical ties
	root := t.TempDir()
	writeTestFile(t, root, "z.py", []byte("a\n"))
	writeTestFile(t, root, "a.yml", []byte("b\n"))
	writeTestFile(t, root, "m.py", []byte("c\n"))

	include, err := compilePatterns([]string{"*.py", "*.yml"})
	require.NoError(t, err)

	candidates, err := discover(root, include, excludeSet(nil))
	require.NoError(t, err)

	require.Len(t, candidates, 3)
	assert.Equal(t, "m.py", candidates[0].RelPath)
	assert.Equal(t, "z.py", candidates[1].RelPath)
	assert.Equal(t, "a.yml", candidates[2].RelPath)
}

func TestBuild_SkipsUnreadableSubdirectory(t *testing.T) {
	// Test: a permission-denied subtree is a local failure of that
	// subtree, not of the build; readable files still embed and the
	// corpus stays complete
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	root := t.TempDir()
	writeTestFile(t, root, "readable.py", []byte("ok\n"))
	writeTestFile(t, root, "locked/hidden.py", []byte("secret\n"))

	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	out, err := Build(root, Options{IncludePatterns: []string{"*.py"}, MaxBytes: 1000})
	require.NoError(t, err)

	require.Len(t, out.Sections, 1)
	assert.Equal(t, "readable.py", out.Sections[0].Path)
	assert.Equal(t, 1, out.FilesDiscovered)
	assert.True(t, out.Complete)
	assert.Empty(t, out.SkippedForBudget)
	assert.NotContains(t, out.Tree, "hidden.py")
}
