package corpus

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Build produces a deterministic, size-bounded markdown snapshot of the tree
// rooted at root. Candidates are ordered by priority tier, then lexical
// relative path, and packed greedily: a file is embedded whole when its
// content still fits under opts.MaxBytes, otherwise it is skipped and the
// output marked incomplete. Budget exhaustion is not an error; a missing root
// is ErrNotFound and a non-positive budget or broken pattern is
// ErrInvalidConfiguration.
func Build(root string, opts Options) (*Output, error) {
	if opts.MaxBytes <= 0 {
		return nil, fmt.Errorf("%w: max bytes must be positive, got %d", ErrInvalidConfiguration, opts.MaxBytes)
	}
	include, err := compilePatterns(opts.IncludePatterns)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, root)
	}

	label := opts.Label
	if label == "" {
		label = filepath.Base(filepath.Clean(root))
	}

	candidates, err := discover(root, include, excludeSet(opts.ExcludePaths))
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %v", ErrNotFound, root, err)
	}

	out := &Output{
		Label:           label,
		Complete:        true,
		FilesDiscovered: len(candidates),
	}

	var total int64
	for _, c := range candidates {
		// Stat size decides before reading so oversized files are never
		// loaded; the read length is re-checked in case the file changed.
		if total+c.Size > opts.MaxBytes {
			out.Complete = false
			out.SkippedForBudget = append(out.SkippedForBudget, c.RelPath)
			continue
		}
		content, err := os.ReadFile(c.AbsPath)
		if err != nil {
			log.Printf("Warning: could not read %s: %v\n", c.RelPath, err)
			continue
		}
		if total+int64(len(content)) > opts.MaxBytes {
			out.Complete = false
			out.SkippedForBudget = append(out.SkippedForBudget, c.RelPath)
			continue
		}
		out.Sections = append(out.Sections, Section{Path: c.RelPath, Content: string(content)})
		total += int64(len(content))
	}

	out.TotalBytes = total
	out.FilesEmbedded = len(out.Sections)
	out.Tree = renderTree(label, candidates)
	out.Document = renderDocument(label, out)
	return out, nil
}
