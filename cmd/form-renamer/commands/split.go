package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docscan/form-renamer/cmd/form-renamer/ui"
	"github.com/docscan/form-renamer/internal/domain"
)

var (
	splitFile string
	splitDest string
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a multi-patient batch scan into per-patient PDFs",
	Long: `Inspect the given PDF and, when its page count spans several patient
forms, write one PDF per form. Parts go to the temp directory unless --dest
is given. The source file is not touched.`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitFile, "file", "f", "", "path to the PDF (required)")
	splitCmd.Flags().StringVarP(&splitDest, "dest", "d", "", "destination directory for the parts")
	_ = splitCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if splitDest != "" {
		cfg.Dirs.Temp = splitDest
	}

	ui.InitUI(noColor, verbose)
	p := buildPipeline(cfg)

	insp := p.splitter.Inspect(splitFile)

	ui.Section("Document Inspection")
	ui.KeyValue("File", splitFile)
	ui.KeyValue("Pages", fmt.Sprintf("%d", insp.Pages))
	ui.KeyValue("Assessment", insp.Reason)
	ui.Newline()

	switch insp.Decision {
	case domain.SplitUnreadable, domain.SplitInvalidCount:
		return domain.ConversionError(insp.Reason, nil)
	case domain.SplitSingleForm:
		ui.Info("single form, nothing to split")
		return nil
	}

	parts, err := p.splitter.Split(cmd.Context(), splitFile)
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}

	ui.Success("wrote %d parts", len(parts))
	for _, part := range parts {
		ui.Step("%s", part)
	}

	return nil
}
