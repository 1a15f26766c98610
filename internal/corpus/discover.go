package corpus

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// defaultExcludeDirs are directory names never descended into, regardless of
// caller-provided excludes.
var defaultExcludeDirs = []string{
	".git", "node_modules", "dist", "build", "target", "venv", ".venv",
	"__pycache__", ".pytest_cache", ".idea", ".vscode", "vendor",
	"coverage", ".coverage", "htmlcov", ".tox", "eggs", ".eggs",
}

// compiledPattern keeps the pattern text next to its compiled form so
// matching can special-case filename globs and "**/" prefixes.
type compiledPattern struct {
	pattern    string
	glob       glob.Glob
	simplified glob.Glob // pattern with a leading "**/" stripped, for root files
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidConfiguration, pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			if sg, err := glob.Compile(rest, '/'); err == nil {
				cp.simplified = sg
			}
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// matchesAny reports whether the relative path is selected by any pattern.
// Patterns without a separator match the base name; patterns with one match
// the full slash-separated path, with "**/*.md" also covering root files.
func matchesAny(relPath string, patterns []compiledPattern) bool {
	base := path.Base(relPath)
	atRoot := !strings.Contains(relPath, "/")
	for _, cp := range patterns {
		if !strings.Contains(cp.pattern, "/") {
			if cp.glob.Match(base) {
				return true
			}
			continue
		}
		if cp.glob.Match(relPath) {
			return true
		}
		if atRoot && cp.simplified != nil && cp.simplified.Match(relPath) {
			return true
		}
	}
	return false
}

func excludeSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(defaultExcludeDirs)+len(extra))
	for _, name := range defaultExcludeDirs {
		set[name] = struct{}{}
	}
	for _, name := range extra {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// IsExcludedDirName reports whether name is one of the directory names the
// walker never descends into.
func IsExcludedDirName(name string) bool {
	for _, n := range defaultExcludeDirs {
		if n == name {
			return true
		}
	}
	return false
}

// Matcher applies the discovery matching rules to individual paths, for
// callers that react to file events instead of walking a tree.
type Matcher struct {
	patterns []compiledPattern
}

// NewMatcher compiles include patterns into a reusable Matcher.
func NewMatcher(include []string) (*Matcher, error) {
	if len(include) == 0 {
		return nil, fmt.Errorf("%w: no include patterns", ErrInvalidConfiguration)
	}
	compiled, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	return &Matcher{patterns: compiled}, nil
}

// Match reports whether the slash-separated relative path is selected.
func (m *Matcher) Match(relPath string) bool {
	return matchesAny(relPath, m.patterns)
}

// discover walks root and returns the eligible candidates ordered by tier,
// then lexical relative path. Per-entry walk errors skip that entry; only a
// failure on the root itself aborts.
func discover(root string, include []compiledPattern, exclude map[string]struct{}) ([]Candidate, error) {
	var candidates []Candidate

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.Printf("Warning: skipping %s: %v\n", p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p == root {
				return nil
			}
			if _, skip := exclude[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !matchesAny(rel, include) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.Printf("Warning: skipping %s: %v\n", rel, err)
			return nil
		}
		text, err := isTextFile(p)
		if err != nil {
			log.Printf("Warning: skipping %s: %v\n", rel, err)
			return nil
		}
		if !text {
			return nil
		}

		candidates = append(candidates, Candidate{
			RelPath: rel,
			AbsPath: p,
			Size:    info.Size(),
			Tier:    classify(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Tier != candidates[j].Tier {
			return candidates[i].Tier < candidates[j].Tier
		}
		return candidates[i].RelPath < candidates[j].RelPath
	})
	return candidates, nil
}

// isTextFile reads the first 512 bytes and reports false when a null byte
// appears, the same heuristic the 'file' tool uses.
func isTextFile(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return false, nil
		}
	}
	return true, nil
}
