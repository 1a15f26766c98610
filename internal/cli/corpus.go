package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/archinspect/repoanalyst/internal/corpus"
	"github.com/archinspect/repoanalyst/internal/watch"
)

var (
	corpusBudgetFlag   int64
	corpusPatternFlags []string
	corpusExcludeFlags []string
	corpusLabelFlag    string
	corpusOutputFlag   string
	corpusStdoutFlag   bool
	corpusQuietFlag    bool
)

// corpusCmd groups corpus generation commands
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Build prioritized markdown corpora from source trees",
}

// corpusBuildCmd represents the corpus build command
var corpusBuildCmd = &cobra.Command{
	Use:   "build <root>",
	Short: "Build a size-bounded markdown corpus for a source tree",
	Long: `Build walks a source tree, classifies eligible files into priority
tiers (root documents first, then application code, configuration,
documentation, markup), and packs whole files in priority order until
the byte budget is reached.

The result is a single markdown document: a directory-tree summary over
every eligible file, followed by the embedded file contents. When the
budget cuts files, the document ends with a truncation note.

Examples:
  # Build with configured defaults, write to the output directory
  repoanalyst corpus build ./data/repos/myrepo

  # Custom budget and patterns, print to stdout
  repoanalyst corpus build ./src --budget 65536 --pattern '*.go' --stdout

  # Explicit output file
  repoanalyst corpus build ./src --output /tmp/src_corpus.md
`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusBuild,
}

// corpusWatchCmd represents the corpus watch command
var corpusWatchCmd = &cobra.Command{
	Use:   "watch <root>",
	Short: "Rebuild the corpus whenever the source tree changes",
	Long: `Watch builds the corpus once, then watches the tree for changes to
eligible files and rebuilds after each change burst. Stop with Ctrl+C.

Example:
  repoanalyst corpus watch ./data/repos/myrepo
`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusWatch,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusBuildCmd)
	corpusCmd.AddCommand(corpusWatchCmd)

	for _, cmd := range []*cobra.Command{corpusBuildCmd, corpusWatchCmd} {
		cmd.Flags().Int64Var(&corpusBudgetFlag, "budget", 0, "Byte budget for embedded content (default from config)")
		cmd.Flags().StringArrayVar(&corpusPatternFlags, "pattern", nil, "Include pattern, repeatable (default from config)")
		cmd.Flags().StringArrayVar(&corpusExcludeFlags, "exclude", nil, "Excluded directory name, repeatable")
		cmd.Flags().StringVar(&corpusLabelFlag, "label", "", "Document label (default is the root base name)")
		cmd.Flags().StringVar(&corpusOutputFlag, "output", "", "Output file path (default <output_dir>/<label>_corpus.md)")
		cmd.Flags().BoolVarP(&corpusQuietFlag, "quiet", "q", false, "Suppress progress output")
	}
	corpusBuildCmd.Flags().BoolVar(&corpusStdoutFlag, "stdout", false, "Print the document to stdout instead of writing a file")
}

// resolveCorpusOptions merges configured defaults with command flags.
func resolveCorpusOptions() (corpus.Options, string, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return corpus.Options{}, "", fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := cfg.CorpusOptions()
	if corpusBudgetFlag > 0 {
		opts.MaxBytes = corpusBudgetFlag
	}
	if len(corpusPatternFlags) > 0 {
		opts.IncludePatterns = corpusPatternFlags
	}
	if len(corpusExcludeFlags) > 0 {
		opts.ExcludePaths = append(opts.ExcludePaths, corpusExcludeFlags...)
	}
	opts.Label = corpusLabelFlag

	return opts, cfg.Corpus.OutputDir, nil
}

func runCorpusBuild(cmd *cobra.Command, args []string) error {
	opts, outputDir, err := resolveCorpusOptions()
	if err != nil {
		return err
	}

	out, err := corpus.Build(args[0], opts)
	if err != nil {
		return err
	}

	if corpusStdoutFlag {
		fmt.Print(out.Document)
		return nil
	}

	target := corpusOutputFlag
	if target == "" {
		target = filepath.Join(outputDir, out.Label+"_corpus.md")
	}
	if err := writeDocument(target, out.Document); err != nil {
		return err
	}

	if out.Complete {
		fmt.Printf("✓ Corpus built: %d files embedded, %d bytes → %s\n",
			out.FilesEmbedded, out.TotalBytes, target)
	} else {
		fmt.Printf("✓ Corpus built: %d of %d files embedded, %d bytes → %s\n",
			out.FilesEmbedded, out.FilesDiscovered, out.TotalBytes, target)
		log.Printf("Warning: size limit reached, skipped: %s", strings.Join(out.SkippedForBudget, ", "))
	}
	return nil
}

func runCorpusWatch(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Stopping watch...")
		cancel()
	}()

	opts, outputDir, err := resolveCorpusOptions()
	if err != nil {
		return err
	}

	rebuild := func() {
		out, err := corpus.Build(args[0], opts)
		if err != nil {
			log.Printf("Warning: corpus build failed: %v", err)
			return
		}
		target := corpusOutputFlag
		if target == "" {
			target = filepath.Join(outputDir, out.Label+"_corpus.md")
		}
		if err := writeDocument(target, out.Document); err != nil {
			log.Printf("Warning: failed to write corpus: %v", err)
			return
		}
		if !corpusQuietFlag {
			log.Printf("✓ Rebuilt corpus: %d files embedded, %d bytes", out.FilesEmbedded, out.TotalBytes)
		}
	}

	rebuild()

	watcher, err := watch.New(args[0], opts.IncludePatterns)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	if !corpusQuietFlag {
		fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", args[0])
	}
	if err := watcher.Start(ctx, func(files []string) {
		if !corpusQuietFlag {
			log.Printf("%d files changed, rebuilding...", len(files))
		}
		rebuild()
	}); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	return nil
}

// writeDocument writes the corpus document, with a byte progress bar for
// large documents unless suppressed.
func writeDocument(target, document string) error {
	if dir := filepath.Dir(target); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if corpusQuietFlag || len(document) < 64*1024 {
		if _, err := f.WriteString(document); err != nil {
			return fmt.Errorf("failed to write corpus: %w", err)
		}
		return nil
	}

	bar := progressbar.DefaultBytes(int64(len(document)), "Writing corpus")
	if _, err := io.Copy(io.MultiWriter(f, bar), strings.NewReader(document)); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return bar.Finish()
}
