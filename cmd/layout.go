package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/report"
)

var layoutTarget string

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the directory layout of a relocated project",
	Long: `Print the directories a relocation creates below the target and the
artifact kinds stored in each.

Example:
  migrations layout --target new`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		root, err := filepath.Abs(layoutTarget)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", layoutTarget, err)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), report.Layout(layout.New(root)))
		return err
	},
}

func init() {
	layoutCmd.Flags().StringVarP(&layoutTarget, "target", "t", ".", "project root")
	rootCmd.AddCommand(layoutCmd)
}
