package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docscan/form-renamer/cmd/form-renamer/ui"
	"github.com/docscan/form-renamer/internal/rename"
)

var extractFile string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Read the patient name from a single PDF without moving it",
	Long: `Rasterize page 1 of the given PDF, query the vision model for the
handwritten patient name and print the raw and sanitized result. The file
itself is not touched. Useful for checking a scan the batch skipped.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "path to the PDF (required)")
	_ = extractCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ui.InitUI(noColor, verbose)
	p := buildPipeline(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Vision.RequestTimeout+time.Minute)
	defer cancel()

	ui.Section("Name Extraction")
	ui.KeyValue("File", extractFile)
	ui.KeyValue("Model", cfg.Vision.Model)
	ui.Newline()

	sp := ui.NewSpinner("rasterizing page 1...")
	sp.Start()
	image, err := p.rasterizer.FirstPage(ctx, extractFile)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}
	ui.Success("page 1 rendered (%dx%d px, %s)", image.Width, image.Height, ui.FormatBytes(int64(len(image.Data))))

	sp = ui.NewSpinner("querying vision model...")
	sp.Start()
	extraction, err := p.extractor.Extract(ctx, image)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("extract name: %w", err)
	}

	if !extraction.Found {
		ui.Warning("the model could not read a name on page 1")
		return nil
	}

	sanitized := rename.SanitizeWithLimit(extraction.Name, cfg.Rename.MaxNameLength)

	ui.Newline()
	ui.KeyValue("Extracted name", extraction.Name)
	if sanitized == "" {
		ui.Warning("name is empty after sanitizing, the batch would skip this file")
		return nil
	}
	ui.KeyValue("Sanitized name", sanitized)
	ui.KeyValue("Would rename to", cfg.Rename.Prefix+sanitized+".pdf")

	return nil
}
