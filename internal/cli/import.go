package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archinspect/repoanalyst/internal/registry"
)

var importPageSizeFlag int

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.tsv>",
	Short: "Import repository metadata from a platform TSV export",
	Long: `Import reads a tab-separated repository export (header row with
name, external_id, web_url, namespace_path, visibility, is_active,
description, created_at, updated_at in any column order) and upserts
every row into the catalog by external ID. Reruns are idempotent.

Example:
  repoanalyst import repos.tsv --page-size 50
`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().IntVar(&importPageSizeFlag, "page-size", registry.DefaultPageSize, "Repositories fetched per page")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	source, err := registry.NewTSVSource(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}

	svc := registry.NewImportService(source, cat.Repositories)
	if importPageSizeFlag > 0 {
		svc.PageSize = importPageSizeFlag
	}

	stats, err := svc.Run(context.Background())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("✓ Imported %d repositories (%d created, %d updated)\n",
		stats.Total, stats.Created, stats.Updated)
	return nil
}
