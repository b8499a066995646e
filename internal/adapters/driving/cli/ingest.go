package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
	"github.com/custodia-labs/storysmith/internal/logger"
)

var (
	ingestWatch    bool
	ingestWorkers  int
	ingestPatterns []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest a corpus directory into the vector store",
	Long: `Scrape every PDF and Excel file in the corpus directory, split the content
into overlapping chunks, embed them and store them in the collection.

Re-running ingest is safe: chunks that are already stored are counted as
duplicates and left untouched.

Examples:
  storysmith ingest                 # Use ingest.corpus_dir from config
  storysmith ingest ./data          # Ingest a specific directory
  storysmith ingest ./data --watch  # Keep ingesting new or changed files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the corpus for new or changed files")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "files processed concurrently (default from config)")
	ingestCmd.Flags().StringSliceVar(&ingestPatterns, "pattern", nil, "glob patterns to include (default from config)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	req := driving.IngestRequest{
		CorpusDir: a.settings.Ingest.CorpusDir,
		Patterns:  ingestPatterns,
		Workers:   ingestWorkers,
	}
	if len(args) > 0 {
		req.CorpusDir = args[0]
	}

	cmd.Printf("Ingesting %s...\n", req.CorpusDir)
	bar := newIngestProgress(cmd)
	req.OnProgress = bar.update

	report, err := a.ingest.Ingest(ctx, req)
	bar.finish()
	if report != nil {
		printIngestReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if !ingestWatch {
		return nil
	}
	cmd.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", req.CorpusDir)
	return a.ingest.Watch(ctx, req, func(r *driving.FileReport) {
		printFileReport(cmd, r)
	})
}

// ingestProgress draws a progress bar on terminals and nothing elsewhere.
type ingestProgress struct {
	cmd *cobra.Command
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newIngestProgress(cmd *cobra.Command) *ingestProgress {
	return &ingestProgress{cmd: cmd}
}

func (p *ingestProgress) update(done, total int, file *driving.FileReport) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !isTerminal(p.cmd.ErrOrStderr()) || logger.IsVerbose() {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.cmd.ErrOrStderr()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	p.bar.Describe(fmt.Sprintf("[cyan]Ingesting[reset] %s", file.Name))
	_ = p.bar.Set(done)
}

func (p *ingestProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.cmd.ErrOrStderr())
	}
}

func printIngestReport(cmd *cobra.Command, r *driving.IngestReport) {
	out := cmd.OutOrStdout()
	cmd.Println(styled(out, titleStyle, "Ingestion complete"))
	cmd.Printf("  Files found:      %d\n", r.FilesFound)
	cmd.Printf("  Files ingested:   %d\n", r.FilesProcessed)
	cmd.Printf("  Files skipped:    %d\n", r.FilesSkipped)
	cmd.Printf("  Files failed:     %d\n", r.FilesFailed)
	cmd.Printf("  Chunks written:   %d\n", r.ChunksWritten)
	cmd.Printf("  Duplicates:       %d\n", r.Duplicates)
	if r.ElementsSkipped > 0 {
		cmd.Printf("  Empty elements:   %d\n", r.ElementsSkipped)
	}
	if r.ElementsFailed > 0 {
		cmd.Printf("  Failed elements:  %d\n", r.ElementsFailed)
	}
	cmd.Printf("  Collection count: %d\n", r.CollectionCount)
	cmd.Printf("  Duration:         %s\n", r.Duration.Round(time.Millisecond))

	for _, f := range r.Files {
		if f.Err != nil {
			cmd.Println(styled(out, warnStyle, fmt.Sprintf("  ! %s: %v", f.Name, f.Err)))
		}
	}
}

func printFileReport(cmd *cobra.Command, r *driving.FileReport) {
	switch {
	case r.Err != nil:
		cmd.Printf("  ! %s: %v\n", r.Name, r.Err)
	case r.Skipped:
		cmd.Printf("  - %s: skipped\n", r.Name)
	default:
		cmd.Printf("  + %s: %d chunk(s), %d duplicate(s)\n", r.Name, r.ChunksWritten, r.Duplicates)
	}
}
