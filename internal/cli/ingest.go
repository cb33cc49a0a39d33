package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/flakeradar/flakeradar/internal/config"
	"github.com/flakeradar/flakeradar/internal/domain"
	"github.com/flakeradar/flakeradar/internal/pipeline"
)

// AddIngestCommand registers the ingest command on the root command.
func AddIngestCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newIngestCmd(flags))
}

// ingestOptions contains all options for the ingest command.
type ingestOptions struct {
	manifestPath  string
	configPath    string
	concurrency   int
	format        string
	timeout       time.Duration
	maxFileSize   int64
	correlationID string
}

// newIngestCmd creates the ingest command.
func newIngestCmd(flags *GlobalFlags) *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Download and parse every artifact in a run manifest",
		Long: `Ingest downloads the artifacts listed in a run manifest, extracts report
files from archives, parses them into normalized test results, and prints a
summary. One failing artifact never aborts the batch: partial results are
reported alongside the errors.

Examples:
  flakeradar ingest --manifest run-manifest.yaml
  flakeradar ingest --manifest run-manifest.yaml --config flakeradar.yaml
  flakeradar ingest --manifest run-manifest.yaml --concurrency 5 --format pytest
  flakeradar ingest --manifest run-manifest.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, flags, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "path to the run manifest YAML (required)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a flakeradar config file")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "artifacts processed in flight at once (1-10)")
	cmd.Flags().StringVar(&opts.format, "format", "", "force a report dialect instead of auto-detecting")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-artifact idle download timeout")
	cmd.Flags().Int64Var(&opts.maxFileSize, "max-file-size", 0, "per-artifact download size limit in bytes")
	cmd.Flags().StringVar(&opts.correlationID, "correlation-id", "", "correlation ID stamped on the run (generated when empty)")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}

// runIngest executes the ingest command.
func runIngest(cmd *cobra.Command, flags *GlobalFlags, opts *ingestOptions) error {
	logger := GetLogger()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	manifest, err := LoadManifest(opts.manifestPath)
	if err != nil {
		return err
	}
	manifest.ApplyTo(cfg)

	// Flag overrides beat both the manifest and the config file.
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if cmd.Flags().Changed("format") {
		cfg.ExpectedFormat = domain.ReportFormat(opts.format)
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if cmd.Flags().Changed("max-file-size") {
		cfg.MaxFileSizeBytes = opts.maxFileSize
	}
	config.ApplyDefaults(cfg)

	orch := pipeline.New(cfg, "", nil, logger)
	orch.Subscribe(&logSink{log: logger})

	res := orch.Ingest(cmd.Context(), pipeline.IngestionParameters{CorrelationID: opts.correlationID})

	if err := renderIngestionResult(cmd, flags, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("ingestion failed: %d of %d files failed, %d error(s)",
			res.Stats.FailedFiles, res.Stats.TotalFiles, len(res.Errors))
	}
	return nil
}

// renderIngestionResult prints the result in the selected output format.
func renderIngestionResult(cmd *cobra.Command, flags *GlobalFlags, res *domain.IngestionResult) error {
	out := cmd.OutOrStdout()

	if flags.Output == OutputJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	fmt.Fprintf(out, "Ingestion %s (run %s)\n", successWord(res.Success), res.CorrelationID)
	fmt.Fprintf(out, "  Files:    %d processed, %d failed, %d total\n",
		res.Stats.ProcessedFiles, res.Stats.FailedFiles, res.Stats.TotalFiles)
	fmt.Fprintf(out, "  Tests:    %d total, %d failures, %d errors, %d skipped\n",
		res.Stats.TotalTests, res.Stats.TotalFailures, res.Stats.TotalErrors, res.Stats.TotalSkipped)
	fmt.Fprintf(out, "  Timing:   %s processing, %s downloading\n",
		res.Stats.ProcessingTime.Round(time.Millisecond),
		res.Stats.DownloadTime.Round(time.Millisecond))

	for _, r := range res.Results {
		fmt.Fprintf(out, "  parsed %s (%s): %d tests\n", r.FileName, r.Format, r.TestSuites.Tests)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  error [%s] %s: %s\n", e.Type, e.FileName, e.Message)
	}
	return nil
}

func successWord(success bool) string {
	if success {
		return "succeeded"
	}
	return "failed"
}

// logSink routes pipeline events into the structured logger so --verbose
// shows per-phase progress.
type logSink struct {
	log zerolog.Logger
}

// Progress implements domain.EventSink.
func (s *logSink) Progress(ev domain.ProgressEvent) {
	s.log.Debug().
		Str("phase", string(ev.Phase)).
		Int("processed", ev.Processed).
		Int("total", ev.Total).
		Str("file", ev.FileName).
		Msg("pipeline progress")
}

// ArtifactProcessed implements domain.EventSink.
func (s *logSink) ArtifactProcessed(r domain.FileProcessingResult) {
	s.log.Info().
		Str("file", r.FileName).
		Str("format", string(r.Format)).
		Int("tests", r.TestSuites.Tests).
		Dur("took", r.ProcessingTime).
		Msg("report parsed")
}

// Error implements domain.EventSink.
func (s *logSink) Error(e domain.IngestionError) {
	s.log.Error().
		Str("type", string(e.Type)).
		Str("file", e.FileName).
		Msg(e.Message)
}

// Warning implements domain.EventSink.
func (s *logSink) Warning(message, context string) {
	s.log.Warn().Str("context", context).Msg(message)
}

// Compile-time interface check.
var _ domain.EventSink = (*logSink)(nil)
