// Package cli provides the command-line interface for flakeradar.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flakeradar/flakeradar/internal/errors"
	"github.com/flakeradar/flakeradar/internal/logging"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// Set during PersistentPreRunE; access via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands. Must only
// be called after the root command's PersistentPreRunE has executed; before
// that it returns a zero-value logger that discards all output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates the root command for the flakeradar CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "flakeradar",
		Short: "flakeradar - CI test-report ingestion",
		Long: `flakeradar ingests CI test-report artifacts: it downloads XML report
files and archives, detects the report dialect (surefire, gradle, jest,
pytest, phpunit), and parses everything into one normalized result.

Examples:
  flakeradar ingest --manifest run-manifest.yaml
  flakeradar detect target/surefire-reports/TEST-example.xml
  flakeradar parse build/test-results/test/TEST-example.xml --format gradle`,
		Version: formatVersion(info),
		// Run displays help when invoked without subcommands, which still
		// exercises PersistentPreRunE for flag validation.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: output %q must be one of %v",
					errors.ErrInvalidFormat, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = logging.InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)

	AddIngestCommand(cmd, flags)
	AddDetectCommand(cmd, flags)
	AddParseCommand(cmd, flags)
	AddVersionCommand(cmd, info)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, info)
	defer logging.CloseLogFile()
	return cmd.ExecuteContext(ctx)
}
