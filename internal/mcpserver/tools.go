package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/archinspect/repoanalyst/internal/config"
	"github.com/archinspect/repoanalyst/internal/corpus"
)

// CorpusResponse is the JSON payload returned by the corpus tools.
// corpus_build fills Document; corpus_stats fills Tree instead.
type CorpusResponse struct {
	Label            string   `json:"label"`
	Complete         bool     `json:"complete"`
	TotalBytes       int64    `json:"total_bytes"`
	FilesDiscovered  int      `json:"files_discovered"`
	FilesEmbedded    int      `json:"files_embedded"`
	SkippedForBudget []string `json:"skipped_for_budget,omitempty"`
	Tree             string   `json:"tree,omitempty"`
	Document         string   `json:"document,omitempty"`
}

// AddCorpusBuildTool registers the corpus_build tool with an MCP server.
// This function is composable with other tool registrations.
func AddCorpusBuildTool(s *server.MCPServer, cfg *config.Config, cache *buildCache) {
	tool := mcp.NewTool(
		"corpus_build",
		mcp.WithDescription("Build a prioritized markdown corpus of a source tree. Files are selected by glob patterns, ordered by priority (docs and configs first, then source, then the rest), and packed whole into a byte budget. Returns the full document plus packing stats."),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Directory to snapshot")),
		mcp.WithString("label",
			mcp.Description("Document title; defaults to the root directory name")),
		mcp.WithNumber("max_bytes",
			mcp.Description("Content byte budget; defaults to the configured limit")),
		mcp.WithArray("patterns",
			mcp.Description("Include patterns replacing the configured ones (e.g. ['*.go', '*.md'])")),
		mcp.WithArray("excludes",
			mcp.Description("Extra directory names to skip, merged with the built-in exclusions")),
	)

	s.AddTool(tool, createCorpusHandler(cfg, cache, true))
}

// AddCorpusStatsTool registers the corpus_stats tool with an MCP server.
// It answers "what would a build embed" without shipping the document.
func AddCorpusStatsTool(s *server.MCPServer, cfg *config.Config, cache *buildCache) {
	tool := mcp.NewTool(
		"corpus_stats",
		mcp.WithDescription("Report what a corpus build over a source tree would contain: the file tree of eligible files, how many fit the byte budget, and which are skipped. Same selection arguments as corpus_build, without the document body."),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Directory to inspect")),
		mcp.WithString("label",
			mcp.Description("Document title; defaults to the root directory name")),
		mcp.WithNumber("max_bytes",
			mcp.Description("Content byte budget; defaults to the configured limit")),
		mcp.WithArray("patterns",
			mcp.Description("Include patterns replacing the configured ones")),
		mcp.WithArray("excludes",
			mcp.Description("Extra directory names to skip, merged with the built-in exclusions")),
	)

	s.AddTool(tool, createCorpusHandler(cfg, cache, false))
}

// createCorpusHandler builds the shared handler for both corpus tools.
// includeDocument picks between the full document and the tree summary.
func createCorpusHandler(cfg *config.Config, cache *buildCache, includeDocument bool) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		root, err := parseStringArg(argsMap, "root", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		opts := cfg.CorpusOptions()
		if label, _ := parseStringArg(argsMap, "label", false); label != "" {
			opts.Label = label
		}
		if maxBytes := parseInt64Arg(argsMap, "max_bytes", 0); maxBytes > 0 {
			opts.MaxBytes = maxBytes
		}
		if patterns := parseArrayArg(argsMap, "patterns"); len(patterns) > 0 {
			opts.IncludePatterns = patterns
		}
		if excludes := parseArrayArg(argsMap, "excludes"); len(excludes) > 0 {
			opts.ExcludePaths = append(opts.ExcludePaths, excludes...)
		}

		output, err := cache.build(root, opts)
		if err != nil {
			// Bad inputs are tool errors the client can fix, not
			// protocol failures
			if errors.Is(err, corpus.ErrNotFound) || errors.Is(err, corpus.ErrInvalidConfiguration) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("corpus build failed: %w", err)
		}

		response := &CorpusResponse{
			Label:            output.Label,
			Complete:         output.Complete,
			TotalBytes:       output.TotalBytes,
			FilesDiscovered:  output.FilesDiscovered,
			FilesEmbedded:    output.FilesEmbedded,
			SkippedForBudget: output.SkippedForBudget,
		}
		if includeDocument {
			response.Document = output.Document
		} else {
			response.Tree = output.Tree
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
