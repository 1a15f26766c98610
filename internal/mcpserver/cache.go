package mcpserver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/maypok86/otter"

	"github.com/archinspect/repoanalyst/internal/corpus"
)

// cacheTTL bounds staleness: a cached document can lag behind source
// edits by at most this long.
const cacheTTL = 30 * time.Second

// cacheCapacity is the total cost budget. Entries are costed by document
// size, so this is roughly the bytes held in memory.
const cacheCapacity = 64 << 20

// buildCache memoizes corpus builds across tool calls. A build is a pure
// function of (root, options), so within the TTL a stats call and a
// build call over the same tree walk it once.
type buildCache struct {
	cache otter.Cache[string, *corpus.Output]
}

func newBuildCache() (*buildCache, error) {
	cache, err := otter.MustBuilder[string, *corpus.Output](cacheCapacity).
		Cost(func(key string, out *corpus.Output) uint32 {
			return uint32(len(out.Document)) + 1
		}).
		WithTTL(cacheTTL).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build corpus cache: %w", err)
	}
	return &buildCache{cache: cache}, nil
}

// build returns the cached output for the input tuple or runs the build
// and caches it.
func (b *buildCache) build(root string, opts corpus.Options) (*corpus.Output, error) {
	key := cacheKey(root, opts)
	if out, ok := b.cache.Get(key); ok {
		return out, nil
	}
	out, err := corpus.Build(root, opts)
	if err != nil {
		return nil, err
	}
	b.cache.Set(key, out)
	return out, nil
}

func (b *buildCache) close() {
	b.cache.Close()
}

// cacheKey hashes the full build input tuple. Elements are separated by
// NUL so no two tuples collapse into the same key text.
func cacheKey(root string, opts corpus.Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%s",
		root,
		strings.Join(opts.IncludePatterns, "\x01"),
		strings.Join(opts.ExcludePaths, "\x01"),
		opts.MaxBytes,
		opts.Label,
	)
	return hex.EncodeToString(h.Sum(nil))
}
