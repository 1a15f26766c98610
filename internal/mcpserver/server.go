// Package mcpserver exposes corpus building over the Model Context
// Protocol, so AI assistants can pull repository snapshots on demand
// instead of reading artifact files from disk.
package mcpserver

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/archinspect/repoanalyst/internal/config"
)

const serverName = "repoanalyst-mcp"

// Server manages the MCP server lifecycle.
type Server struct {
	cfg   *config.Config
	cache *buildCache
	mcp   *server.MCPServer
}

// NewServer creates an MCP server with the corpus tools registered.
// Tool defaults come from cfg; version is reported to clients during the
// protocol handshake.
func NewServer(cfg *config.Config, version string) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	cache, err := newBuildCache()
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
	)

	AddCorpusBuildTool(mcpServer, cfg, cache)
	AddCorpusStatsTool(mcpServer, cfg, cache)

	return &Server{
		cfg:   cfg,
		cache: cache,
		mcp:   mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the corpus cache.
func (s *Server) Close() error {
	if s.cache != nil {
		s.cache.close()
	}
	return nil
}
