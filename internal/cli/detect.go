package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flakeradar/flakeradar/internal/constants"
	"github.com/flakeradar/flakeradar/internal/detect"
)

// AddDetectCommand registers the detect command on the root command.
func AddDetectCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newDetectCmd(flags))
}

// newDetectCmd creates the detect command.
func newDetectCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect the report dialect of a local XML file",
		Long: `Detect scores a report file against the known dialect signatures
(surefire, gradle, jest, pytest, phpunit) using a bounded content prefix and
the file path, and prints the winning dialect with its confidence and the
signals that contributed.

Examples:
  flakeradar detect target/surefire-reports/TEST-example.xml
  flakeradar detect junit.xml -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, flags, args[0])
		},
	}
}

// runDetect executes the detect command.
func runDetect(cmd *cobra.Command, flags *GlobalFlags, path string) error {
	f, err := os.Open(path) //nolint:gosec // user-supplied file path
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read-side close

	prefix := make([]byte, constants.DetectionPrefixBytes)
	n, err := io.ReadFull(f, prefix)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return err
	}

	result := detect.Detect(prefix[:n], path)
	out := cmd.OutOrStdout()

	if flags.Output == OutputJSON {
		data, merr := json.MarshalIndent(result, "", "  ")
		if merr != nil {
			return merr
		}
		_, werr := fmt.Fprintln(out, string(data))
		return werr
	}

	fmt.Fprintf(out, "Format:     %s\n", result.Format)
	fmt.Fprintf(out, "Confidence: %.2f\n", result.Confidence)
	for _, ind := range result.Indicators {
		fmt.Fprintf(out, "  signal: %s\n", ind)
	}
	return nil
}
