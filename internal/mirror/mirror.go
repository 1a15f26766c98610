// Package mirror materializes local working copies of repositories under a
// mirror root, so corpus generation always reads from a stable path.
package mirror

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/archinspect/repoanalyst/internal/corpus"
)

// placeholderReadme marks mirrors whose source was unavailable.
const placeholderReadme = "This is a placeholder directory. Repository source not available.\n"

// Mirror materializes a working copy for repoName under mirrorRoot and
// returns its path.
//
// If sourceDir exists, its tree is copied (excluded directory names are
// skipped). Otherwise a placeholder directory with a README is created.
// An existing non-empty mirror is reused as is.
func Mirror(repoName, sourceDir, mirrorRoot string) (string, error) {
	target, err := targetPath(repoName, mirrorRoot)
	if err != nil {
		return "", err
	}

	populated, err := isPopulated(target)
	if err != nil {
		return "", err
	}
	if populated {
		return target, nil
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("failed to create mirror directory: %w", err)
	}

	if sourceDir != "" {
		if info, err := os.Stat(sourceDir); err == nil && info.IsDir() {
			if err := copyTree(sourceDir, target); err != nil {
				return "", fmt.Errorf("failed to copy %s: %w", sourceDir, err)
			}
			return target, nil
		}
	}

	// Source unavailable, leave a placeholder so downstream steps still work
	log.Printf("Warning: source for %s not found, creating placeholder mirror\n", repoName)
	readme := fmt.Sprintf("# %s\n\n%s", repoName, placeholderReadme)
	if err := os.WriteFile(filepath.Join(target, "README.md"), []byte(readme), 0o644); err != nil {
		return "", fmt.Errorf("failed to write placeholder README: %w", err)
	}
	return target, nil
}

// Remove deletes the mirror for repoName.
// Removing a mirror that does not exist is not an error.
func Remove(repoName, mirrorRoot string) error {
	target, err := targetPath(repoName, mirrorRoot)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to remove mirror %s: %w", target, err)
	}
	return nil
}

// IsPlaceholder reports whether the mirror at dir only holds the
// placeholder README.
func IsPlaceholder(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || entries[0].Name() != "README.md" {
		return false
	}
	content, err := os.ReadFile(filepath.Join(dir, "README.md"))
	if err != nil {
		return false
	}
	return strings.Contains(string(content), placeholderReadme)
}

// targetPath joins repoName onto mirrorRoot, rejecting names that would
// escape the root.
func targetPath(repoName, mirrorRoot string) (string, error) {
	if mirrorRoot == "" {
		return "", fmt.Errorf("mirror root is empty")
	}
	name := strings.TrimSpace(repoName)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid repository name %q", repoName)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("repository name %q must be a single path segment", repoName)
	}
	return filepath.Join(mirrorRoot, name), nil
}

// isPopulated reports whether dir exists and has at least one entry.
func isPopulated(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read mirror directory: %w", err)
	}
	return len(entries) > 0, nil
}

// copyTree copies src into dst, skipping excluded directory names and
// anything that is not a regular file.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == src {
				return err
			}
			log.Printf("Warning: skipping %s: %v\n", p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		targetPath := filepath.Join(dst, rel)

		if d.IsDir() {
			if corpus.IsExcludedDirName(d.Name()) {
				return filepath.SkipDir
			}
			return os.MkdirAll(targetPath, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(p, targetPath)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
