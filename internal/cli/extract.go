package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docanalysis-backend/internal/extract"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Print the plain text of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extract.Extract(cmd.Context(), args[0], "")
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
