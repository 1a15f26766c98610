package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reposCmd groups catalog inspection commands
var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Inspect the repository catalog",
}

// reposListCmd represents the repos list command
var reposListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all repositories in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runReposList,
}

// reposShowCmd represents the repos show command
var reposShowCmd = &cobra.Command{
	Use:   "show <external-id>",
	Short: "Show one repository with its latest corpus run",
	Args:  cobra.ExactArgs(1),
	RunE:  runReposShow,
}

func init() {
	rootCmd.AddCommand(reposCmd)
	reposCmd.AddCommand(reposListCmd)
	reposCmd.AddCommand(reposShowCmd)
}

func runReposList(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	repos, err := cat.Repositories.List()
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}
	if len(repos) == 0 {
		fmt.Println("No repositories in catalog")
		return nil
	}

	fmt.Printf("%-12s %-30s %-10s %-8s %s\n", "EXTERNAL ID", "NAME", "VISIBILITY", "ACTIVE", "MIRROR")
	for _, repo := range repos {
		mirror := repo.LocalPath
		if mirror == "" {
			mirror = "-"
		}
		fmt.Printf("%-12s %-30s %-10s %-8t %s\n",
			repo.ExternalID, repo.Name, repo.Visibility, repo.IsActive, mirror)
	}
	fmt.Printf("\n%d repositories\n", len(repos))
	return nil
}

func runReposShow(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Name:        %s\n", repo.Name)
	fmt.Printf("External ID: %s\n", repo.ExternalID)
	fmt.Printf("URL:         %s\n", repo.URL)
	fmt.Printf("Namespace:   %s\n", repo.NamespacePath)
	fmt.Printf("Visibility:  %s\n", repo.Visibility)
	fmt.Printf("Active:      %t\n", repo.IsActive)
	if repo.TechStack != "" {
		fmt.Printf("Tech stack:  %s\n", repo.TechStack)
	}
	if repo.Description != "" {
		fmt.Printf("Description: %s\n", repo.Description)
	}
	if repo.LocalPath != "" {
		fmt.Printf("Mirror:      %s\n", repo.LocalPath)
	}

	run, err := cat.Runs.LatestCorpusRun(repo.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to load corpus runs: %w", err)
	}
	if run == nil {
		fmt.Println("\nNo corpus generated yet")
		return nil
	}
	fmt.Printf("\nLatest corpus (%s):\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Artifact:  %s\n", run.ArtifactPath)
	fmt.Printf("  Files:     %d embedded of %d discovered\n", run.FileCount, run.FilesDiscovered)
	fmt.Printf("  Size:      %d bytes\n", run.SizeBytes)
	fmt.Printf("  Complete:  %t\n", run.Complete)
	fmt.Printf("  SHA256:    %s\n", run.SHA256)
	return nil
}
