package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archinspect/repoanalyst/internal/analysis"
	"github.com/archinspect/repoanalyst/internal/catalog"
)

var analyzeCategoryFlag string

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <external-id>",
	Short: "Run an AI analysis over a repository's latest corpus",
	Long: `Analyze loads the active prompt for the given category, reads the
repository's latest corpus artifact, runs the configured analysis
client (mock by default, gemini with an API key), and records the
result in the catalog.

Categories: ` + strings.Join(catalog.PromptCategories, ", ") + `

Example:
  repoanalyst analyze 1042 --category security
`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeCategoryFlag, "category", "techstack", "Prompt category to run")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if !catalog.ValidPromptCategory(analyzeCategoryFlag) {
		return fmt.Errorf("unknown category %q (valid: %s)",
			analyzeCategoryFlag, strings.Join(catalog.PromptCategories, ", "))
	}

	cfg, err := loadCLIConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	repo, err := requireRepository(cat, args[0])
	if err != nil {
		return err
	}

	client, err := analysis.NewClient(ctx, cfg.Analysis)
	if err != nil {
		return fmt.Errorf("failed to create analysis client: %w", err)
	}
	defer client.Close()

	run, result, err := analysis.NewService(client, cat).Run(ctx, repo, analyzeCategoryFlag)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Printf("✓ Analysis complete: %s / %s (provider %s)\n", repo.Name, run.PromptCategory, run.Provider)
	fmt.Printf("\nScore:   %d%%\n", result.ScorePct)
	fmt.Printf("Summary: %s\n", result.Summary)
	if len(result.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range result.Suggestions {
			fmt.Printf("  - %s (%dh): %s\n", s.Title, s.EffortHours, s.Description)
		}
	}
	if len(result.Endpoints) > 0 {
		fmt.Println("\nEndpoints:")
		for _, e := range result.Endpoints {
			fmt.Printf("  - %-6s %s (maturity L%d)\n", e.Method, e.Path, e.MaturityLevel)
		}
	}
	return nil
}
