package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/archinspect/repoanalyst/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "repoanalyst",
	Short: "Repo-Analyst - repository corpus and analysis toolkit",
	Long: `Repo-Analyst imports repository metadata, mirrors source trees,
builds prioritized markdown corpora bounded by a byte budget, and runs
AI-based analyses over them.

Typical workflow:
  repoanalyst import repos.tsv
  repoanalyst mirror 1042 --source /path/to/checkout
  repoanalyst corpus build ./data/repos/myrepo
  repoanalyst analyze 1042 --category security
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadDotEnv)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .repoanalyst/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadDotEnv loads a .env file from the working directory if one exists,
// so API keys reach the analysis client without shell exports.
func loadDotEnv() {
	if err := godotenv.Load(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}
}

// loadCLIConfig resolves the effective configuration for a command run:
// an explicit --config file when given, otherwise the working-directory
// search with env overrides.
func loadCLIConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadConfigFromFile(cfgFile)
	}
	return config.LoadConfig()
}
