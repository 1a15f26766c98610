// Package corpus builds prioritized, size-bounded markdown snapshots of a
// source tree for downstream AI analysis.
package corpus

// DefaultMaxBytes is the documented 450 KB corpus limit.
const DefaultMaxBytes = 450 * 1024

// Options configures a single build. A build is a pure function of
// (root, Options); nothing here is global or mutated between calls.
type Options struct {
	// IncludePatterns decide eligibility. Patterns without a path separator
	// are filename globs and match base names ("*.py" matches src/main.py);
	// patterns containing '/' match the slash-separated relative path.
	IncludePatterns []string

	// ExcludePaths are directory names never descended into, merged with the
	// built-in exclude set (.git, node_modules, ...).
	ExcludePaths []string

	// MaxBytes bounds the total embedded content bytes. Must be positive.
	MaxBytes int64

	// Label titles the document. Empty defaults to the root base name.
	Label string
}

// Candidate is a file eligible for embedding.
type Candidate struct {
	RelPath string // slash-separated, relative to the build root
	AbsPath string
	Size    int64
	Tier    int
}

// Section is one embedded file in the output document.
type Section struct {
	Path    string
	Content string
}

// Output is the result of one build. Sections hold only embedded files, in
// embed order; Tree covers every eligible file discovered, embedded or not.
type Output struct {
	Label      string
	Sections   []Section
	TotalBytes int64
	Tree       string
	Complete   bool
	Document   string

	FilesDiscovered  int
	FilesEmbedded    int
	SkippedForBudget []string
}
