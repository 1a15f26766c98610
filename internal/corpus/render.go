package corpus

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// renderTree lists every eligible file under a root line, directories first,
// indented two spaces per nesting level. The tree covers all candidates, not
// just embedded ones, so a truncated corpus still shows the full structure.
func renderTree(label string, files []Candidate) string {
	var b strings.Builder
	b.WriteString("```\n")
	b.WriteString(label + "/\n")
	if len(files) == 0 {
		b.WriteString("  (no matching files)\n")
		b.WriteString("```")
		return b.String()
	}

	dirSet := make(map[string]struct{})
	for _, f := range files {
		for dir := path.Dir(f.RelPath); dir != "."; dir = path.Dir(dir) {
			dirSet[dir] = struct{}{}
		}
	}
	dirs := make([]string, 0, len(dirSet))
	for dir := range dirSet {
		dirs = append(dirs, dir)
	}
	sort.Slice(dirs, func(i, j int) bool {
		if di, dj := pathDepth(dirs[i]), pathDepth(dirs[j]); di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})
	for _, dir := range dirs {
		b.WriteString(strings.Repeat("  ", pathDepth(dir)))
		b.WriteString(path.Base(dir) + "/\n")
	}

	sorted := make([]Candidate, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		if di, dj := path.Dir(sorted[i].RelPath), path.Dir(sorted[j].RelPath); di != dj {
			return di < dj
		}
		return path.Base(sorted[i].RelPath) < path.Base(sorted[j].RelPath)
	})
	for _, f := range sorted {
		b.WriteString(strings.Repeat("  ", pathDepth(f.RelPath)))
		b.WriteString(path.Base(f.RelPath) + "\n")
	}

	b.WriteString("```")
	return b.String()
}

func pathDepth(relPath string) int {
	return strings.Count(relPath, "/") + 1
}

// renderDocument assembles the final artifact: header, tree block, one fenced
// section per embedded file, and the truncation note when incomplete. The
// document carries no wall-clock content so identical inputs render
// byte-for-byte identical output.
func renderDocument(label string, out *Output) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Repository: %s\n\n", label)
	b.WriteString("## Directory Structure\n\n")
	b.WriteString(out.Tree)
	b.WriteString("\n\n")
	b.WriteString("## File Contents\n\n")
	for _, s := range out.Sections {
		fmt.Fprintf(&b, "### %s\n\n", s.Path)
		fmt.Fprintf(&b, "```%s\n", fenceInfo(s.Path))
		b.WriteString(s.Content)
		b.WriteString("\n```\n\n")
	}
	if !out.Complete {
		b.WriteString("---\n**Note**: Size limit reached. Not all files included.\n")
	}
	return b.String()
}

// fenceInfo is the code-fence info string: the extension without its dot,
// empty for extensionless names such as LICENSE.
func fenceInfo(relPath string) string {
	return strings.TrimPrefix(path.Ext(relPath), ".")
}
