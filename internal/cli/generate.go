package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archinspect/repoanalyst/internal/corpusrun"
)

// corpusGenerateCmd represents the corpus generate command
var corpusGenerateCmd = &cobra.Command{
	Use:   "generate <external-id>",
	Short: "Generate and record a corpus for a catalog repository",
	Long: `Generate runs the full corpus pipeline for one imported repository:
ensure a local mirror exists, build the corpus with the configured
options, write the artifact to the output directory, and record the
run (size, hash, completeness) in the catalog.

Example:
  repoanalyst corpus generate 1042
`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusGenerate,
}

func init() {
	corpusCmd.AddCommand(corpusGenerateCmd)
}

func runCorpusGenerate(cmd *cobra.Command, args []string) error {
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

	run, err := corpusrun.NewService(cfg, cat).Generate(context.Background(), repo)
	if err != nil {
		return fmt.Errorf("failed to generate corpus for %s: %w", repo.Name, err)
	}

	if run.Complete {
		fmt.Printf("✓ Corpus for %s: %d files, %d bytes → %s\n",
			repo.Name, run.FileCount, run.SizeBytes, run.ArtifactPath)
	} else {
		fmt.Printf("✓ Corpus for %s: %d of %d files, %d bytes → %s (size limit reached)\n",
			repo.Name, run.FileCount, run.FilesDiscovered, run.SizeBytes, run.ArtifactPath)
	}
	return nil
}
