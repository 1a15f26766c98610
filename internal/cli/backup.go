package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archinspect/repoanalyst/internal/backup"
	"github.com/archinspect/repoanalyst/internal/config"
)

var backupClearFlag bool

// backupCmd groups catalog backup commands
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up and restore the catalog",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a timestamped JSON backup of the catalog",
	Args:  cobra.NoArgs,
	RunE:  runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore the catalog from a backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupRestore,
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete one backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupDelete,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupDeleteCmd)

	backupRestoreCmd.Flags().BoolVar(&backupClearFlag, "clear", false, "Clear existing catalog tables before restoring")
}

// backupService opens the catalog and wraps it in a backup service.
// The returned cleanup closes the catalog.
func backupService() (*backup.Service, func(), *config.Config, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return backup.NewService(cfg.Backup.Dir, cat), func() { cat.Close() }, cfg, nil
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	svc, cleanup, _, err := backupService()
	if err != nil {
		return err
	}
	defer cleanup()

	meta, err := svc.Create("")
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup %s created\n", meta.Name)
	for _, table := range meta.Tables {
		fmt.Printf("  %-15s %d records\n", table, meta.Counts[table])
	}
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	svc, cleanup, _, err := backupService()
	if err != nil {
		return err
	}
	defer cleanup()

	infos, err := svc.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No backups found")
		return nil
	}

	fmt.Printf("%-25s %-20s %-8s %s\n", "NAME", "CREATED", "SIZE", "RECORDS")
	for _, info := range infos {
		total := 0
		for _, n := range info.Counts {
			total += n
		}
		fmt.Printf("%-25s %-20s %-8.1f %d\n",
			info.Name, info.CreatedAt.Format("2006-01-02 15:04:05"), info.SizeMB, total)
	}
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	svc, cleanup, _, err := backupService()
	if err != nil {
		return err
	}
	defer cleanup()

	counts, err := svc.Restore(args[0], backupClearFlag)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Printf("✓ Restored backup %s\n", args[0])
	for table, n := range counts {
		fmt.Printf("  %-15s %d records\n", table, n)
	}
	return nil
}

func runBackupDelete(cmd *cobra.Command, args []string) error {
	svc, cleanup, _, err := backupService()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	fmt.Printf("✓ Deleted backup %s\n", args[0])
	return nil
}
