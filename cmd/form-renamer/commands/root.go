package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "form-renamer",
	Short: "Rename scanned patient forms by the handwritten name on page 1",
	Long: `form-renamer reads scanned patient forms (PDF) from an input directory,
sends the first page of each form to a vision model to read the handwritten
patient name, and moves the form to the output directory under
"Patientenbogen - <Name>.pdf". Multi-patient batch scans are split into
per-patient parts first.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
