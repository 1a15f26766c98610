package corpus

import (
	"path"
	"strings"
)

// Priority tiers. Lower tiers embed first when the budget is scarce.
const (
	tierRootDocs = 1
	tierCode     = 2
	tierConfig   = 3
	tierDocs     = 4
	tierMarkup   = 5
	tierOther    = 6
)

// rootDocNames are classified tier 1 by exact name, at any depth.
var rootDocNames = map[string]struct{}{
	"README.md":       {},
	"README.MD":       {},
	"readme.md":       {},
	"LICENSE":         {},
	"CHANGELOG.md":    {},
	"CONTRIBUTING.md": {},
}

var tierByExt = map[string]int{
	".py":   tierCode,
	".js":   tierCode,
	".ts":   tierCode,
	".tsx":  tierCode,
	".jsx":  tierCode,
	".java": tierCode,
	".kt":   tierCode,
	".go":   tierCode,
	".rs":   tierCode,

	".yml":  tierConfig,
	".yaml": tierConfig,
	".json": tierConfig,
	".toml": tierConfig,
	".xml":  tierConfig,

	".md":  tierDocs,
	".txt": tierDocs,
	".sh":  tierDocs,
	".sql": tierDocs,

	".html": tierMarkup,
	".css":  tierMarkup,
}

// classify assigns exactly one tier to an eligible file. Name rules win over
// extension rules; anything unmatched lands in the last tier.
func classify(relPath string) int {
	base := path.Base(relPath)
	if _, ok := rootDocNames[base]; ok {
		return tierRootDocs
	}
	if tier, ok := tierByExt[strings.ToLower(path.Ext(base))]; ok {
		return tier
	}
	return tierOther
}
