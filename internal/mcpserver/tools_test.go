package mcpserver

// Test Plan for Corpus Tools:
// - Both tools register without panicking
// - corpus_build returns the document with packing stats
// - corpus_stats returns the tree and omits the document
// - Missing or unknown roots produce tool errors, not protocol errors
// - Argument overrides (label, max_bytes, patterns) are honored
// - Repeated calls inside the TTL are served from the cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archinspect/repoanalyst/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Corpus.IncludePatterns = []string{"*.py", "*.md"}
	cfg.Corpus.MaxBytes = 64 * 1024
	return cfg
}

func newTestCache(t *testing.T) *buildCache {
	t.Helper()
	cache, err := newBuildCache()
	require.NoError(t, err)
	t.Cleanup(cache.close)
	return cache
}

// writeSourceTree lays out a small repository with one doc, one source
// file and one excluded directory.
func writeSourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# demo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.py"), []byte("print('hi')\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep.py"), []byte("x\n"), 0o644))
	return root
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	require.NoError(t, err, "should not return protocol error")
	require.NotNil(t, result)
	return result
}

func decodeResponse(t *testing.T, result *mcp.CallToolResult) *CorpusResponse {
	t.Helper()
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")

	response := &CorpusResponse{}
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), response))
	return response
}

func TestAddCorpusTools_Registration(t *testing.T) {
	t.Parallel()

	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	cfg := testConfig()
	cache := newTestCache(t)

	require.NotPanics(t, func() {
		AddCorpusBuildTool(mcpServer, cfg, cache)
		AddCorpusStatsTool(mcpServer, cfg, cache)
	})
	assert.NotNil(t, mcpServer)
}

func TestCorpusBuildHandler_ValidRequest(t *testing.T) {
	t.Parallel()

	root := writeSourceTree(t)
	handler := createCorpusHandler(testConfig(), newTestCache(t), true)

	result := callTool(t, handler, map[string]interface{}{"root": root})
	assert.False(t, result.IsError)

	response := decodeResponse(t, result)
	assert.True(t, response.Complete)
	assert.Equal(t, 2, response.FilesDiscovered)
	assert.Equal(t, 2, response.FilesEmbedded)
	assert.Contains(t, response.Document, "### README.md")
	assert.Contains(t, response.Document, "### src/main.py")
	assert.NotContains(t, response.Document, "node_modules")
	assert.Empty(t, response.Tree)
}

func TestCorpusStatsHandler_OmitsDocument(t *testing.T) {
	t.Parallel()

	root := writeSourceTree(t)
	handler := createCorpusHandler(testConfig(), newTestCache(t), false)

	result := callTool(t, handler, map[string]interface{}{"root": root})
	assert.False(t, result.IsError)

	response := decodeResponse(t, result)
	assert.Empty(t, response.Document)
	assert.Contains(t, response.Tree, "README.md")
	assert.Contains(t, response.Tree, "main.py")
	assert.Equal(t, 2, response.FilesEmbedded)
}

func TestCorpusHandler_MissingRoot(t *testing.T) {
	t.Parallel()

	handler := createCorpusHandler(testConfig(), newTestCache(t), true)

	result := callTool(t, handler, map[string]interface{}{})
	assert.True(t, result.IsError)

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Contains(t, textContent.Text, "root parameter is required")
}

func TestCorpusHandler_UnknownRoot(t *testing.T) {
	t.Parallel()

	handler := createCorpusHandler(testConfig(), newTestCache(t), true)

	result := callTool(t, handler, map[string]interface{}{
		"root": filepath.Join(t.TempDir(), "missing"),
	})
	assert.True(t, result.IsError)

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Contains(t, textContent.Text, "not found")
}

func TestCorpusHandler_Overrides(t *testing.T) {
	t.Parallel()

	root := writeSourceTree(t)
	handler := createCorpusHandler(testConfig(), newTestCache(t), true)

	// Test: label and patterns replace the configured defaults
	result := callTool(t, handler, map[string]interface{}{
		"root":     root,
		"label":    "custom-label",
		"patterns": []interface{}{"*.md"},
	})
	response := decodeResponse(t, result)
	assert.Equal(t, "custom-label", response.Label)
	assert.Equal(t, 1, response.FilesDiscovered)
	assert.Contains(t, response.Document, "### README.md")
	assert.NotContains(t, response.Document, "main.py")

	// Test: a one-byte budget embeds nothing and reports incomplete
	result = callTool(t, handler, map[string]interface{}{
		"root":      root,
		"max_bytes": float64(1),
	})
	response = decodeResponse(t, result)
	assert.False(t, response.Complete)
	assert.Zero(t, response.FilesEmbedded)
	assert.Len(t, response.SkippedForBudget, 2)
}

func TestCorpusHandler_ServesFromCache(t *testing.T) {
	t.Parallel()

	root := writeSourceTree(t)
	handler := createCorpusHandler(testConfig(), newTestCache(t), true)

	first := decodeResponse(t, callTool(t, handler, map[string]interface{}{"root": root}))

	// Change the tree; within the TTL the same tuple must return the
	// cached document
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.py"), []byte("print('changed')\n"), 0o644))

	second := decodeResponse(t, callTool(t, handler, map[string]interface{}{"root": root}))
	assert.Equal(t, first.Document, second.Document)
	assert.NotContains(t, second.Document, "changed")
}
