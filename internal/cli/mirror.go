package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/archinspect/repoanalyst/internal/mirror"
)

var mirrorSourceFlag string

// mirrorCmd represents the mirror command
var mirrorCmd = &cobra.Command{
	Use:   "mirror <external-id>",
	Short: "Materialize a local working copy for a repository",
	Long: `Mirror copies a repository checkout under the configured mirror root
so the corpus builder can read it. Without --source, the checkout is
looked up as <mirror.source_root>/<name>; a missing source produces a
placeholder mirror noting the source was unavailable.

Examples:
  repoanalyst mirror 1042
  repoanalyst mirror 1042 --source /path/to/checkout
`,
	Args: cobra.ExactArgs(1),
	RunE: runMirror,
}

func init() {
	rootCmd.AddCommand(mirrorCmd)
	mirrorCmd.Flags().StringVar(&mirrorSourceFlag, "source", "", "Directory to copy the working tree from")
}

func runMirror(cmd *cobra.Command, args []string) error {
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

	sourceDir := mirrorSourceFlag
	if sourceDir == "" {
		sourceDir = filepath.Join(cfg.Mirror.SourceRoot, repo.Name)
	}

	localPath, err := mirror.Mirror(repo.Name, sourceDir, cfg.Mirror.Root)
	if err != nil {
		return fmt.Errorf("failed to mirror %s: %w", repo.Name, err)
	}
	if err := cat.Repositories.SetLocalPath(repo.ExternalID, localPath); err != nil {
		return fmt.Errorf("failed to record mirror path: %w", err)
	}

	if mirror.IsPlaceholder(localPath) {
		fmt.Printf("✓ Created placeholder mirror at %s (source %s unavailable)\n", localPath, sourceDir)
	} else {
		fmt.Printf("✓ Mirrored %s → %s\n", repo.Name, localPath)
	}
	return nil
}
