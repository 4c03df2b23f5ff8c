package commands

import (
	"github.com/spf13/cobra"

	"github.com/docscan/form-renamer/cmd/form-renamer/ui"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ui.Message("form-renamer version %s", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
