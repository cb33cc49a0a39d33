package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flakeradar/flakeradar/internal/domain"
	"github.com/flakeradar/flakeradar/internal/parser"
)

// AddParseCommand registers the parse command on the root command.
func AddParseCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newParseCmd(flags))
}

// parseOptions contains all options for the parse command.
type parseOptions struct {
	format string
	strict bool
}

// newParseCmd creates the parse command.
func newParseCmd(flags *GlobalFlags) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a local report file into normalized test results",
		Long: `Parse reads one XML report file, auto-detecting its dialect unless
--format forces one, and prints the normalized suite tree summary.

Examples:
  flakeradar parse target/surefire-reports/TEST-example.xml
  flakeradar parse build/test-results/test/TEST-example.xml --format gradle
  flakeradar parse junit.xml --strict -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, flags, &opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "force a report dialect instead of auto-detecting")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat malformed counter attributes as errors")

	return cmd
}

// runParse executes the parse command.
func runParse(cmd *cobra.Command, flags *GlobalFlags, opts *parseOptions, path string) error {
	f, err := os.Open(path) //nolint:gosec // user-supplied file path
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read-side close

	result, err := parser.Parse(f, parser.Options{
		ExpectedFormat: domain.ReportFormat(opts.format),
		FileName:       path,
		Strict:         opts.strict,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.Output == OutputJSON {
		data, merr := json.MarshalIndent(result.TestSuites, "", "  ")
		if merr != nil {
			return merr
		}
		_, werr := fmt.Fprintln(out, string(data))
		return werr
	}

	ts := result.TestSuites
	fmt.Fprintf(out, "Format: %s\n", result.Format)
	fmt.Fprintf(out, "Suites: %d (%d tests, %d failures, %d errors, %d skipped)\n",
		len(ts.Suites), ts.Tests, ts.Failures, ts.Errors, ts.Skipped)
	for _, s := range ts.Suites {
		fmt.Fprintf(out, "  %s: %d cases\n", s.Name, len(s.TestCases))
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	return nil
}
