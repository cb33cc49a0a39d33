package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddVersionCommand registers the version command on the root command.
func AddVersionCommand(root *cobra.Command, info BuildInfo) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the flakeradar version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "flakeradar %s\n", formatVersion(info))
			return err
		},
	})
}
