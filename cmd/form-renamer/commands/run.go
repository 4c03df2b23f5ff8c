package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docscan/form-renamer/cmd/form-renamer/ui"
	"github.com/docscan/form-renamer/internal/batch"
	"github.com/docscan/form-renamer/internal/domain"
)

var (
	runInputDir  string
	runOutputDir string
	runTodayOnly bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rename every patient form in the input directory",
	Long: `Process all PDF files in the input directory: read the handwritten
patient name from page 1 via the vision model and move each form to the
output directory as "Patientenbogen - <Name>.pdf". Files whose name cannot
be read are left in place.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInputDir, "input", "", "input directory (overrides config)")
	runCmd.Flags().StringVar(&runOutputDir, "output", "", "output directory (overrides config)")
	runCmd.Flags().BoolVar(&runTodayOnly, "today", false, "process only files modified today")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runInputDir != "" {
		cfg.Dirs.Input = runInputDir
	}
	if runOutputDir != "" {
		cfg.Dirs.Output = runOutputDir
	}

	ui.InitUI(noColor, verbose)
	p := buildPipeline(cfg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		ui.Error("interrupt received, stopping after the current file")
		cancel()
	}()

	ui.Section("Patient Form Renaming")
	ui.KeyValue("Input", cfg.Dirs.Input)
	ui.KeyValue("Output", cfg.Dirs.Output)
	ui.KeyValue("Model", cfg.Vision.Model)
	if runTodayOnly {
		ui.KeyValue("Filter", "files modified today")
	}
	ui.Newline()

	events := make(chan domain.RunEvent, 100)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		renderEvents(events)
	}()

	summary, runErr := p.runner.Run(ctx, batch.Options{TodayOnly: runTodayOnly}, events)
	close(events)
	<-rendered

	if summary != nil {
		displaySummary(summary)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("run interrupted")
		}
		return runErr
	}

	// Per-file failures are reported in the summary, not via the exit code
	return nil
}

// renderEvents drives the progress bar and per-unit status lines. The bar
// counts units, so a split grows the total by the number of new parts.
func renderEvents(events <-chan domain.RunEvent) {
	var bar *ui.ProgressBar
	var unitTotal int

	line := func(print func()) {
		if bar != nil {
			bar.Clear()
		}
		print()
	}

	for ev := range events {
		switch ev.Type {
		case domain.EventRunStart:
			unitTotal = ev.Total
			if unitTotal == 0 {
				ui.Info("no PDF files to process")
				continue
			}
			ui.Step("processing %d file(s)", ev.Total)
			// Verbose runs stream the debug log to stderr instead of a bar
			if !ui.Verbose() {
				bar = ui.NewProgressBar(int64(unitTotal), "starting")
			}

		case domain.EventDocumentStart:
			if bar != nil {
				bar.Describe(ev.Document)
			}

		case domain.EventDocumentSplit:
			unitTotal += ev.Total - 1
			if bar != nil {
				bar.SetTotal(int64(unitTotal))
			}
			line(func() { ui.Info("%s: %s", ev.Document, ev.Message) })

		case domain.EventUnitRenamed:
			line(func() { ui.Success("%s → %s", ev.Document, filepath.Base(ev.Outcome.NewPath)) })
			if bar != nil {
				bar.Add(1)
			}

		case domain.EventUnitSkipped:
			line(func() { ui.Warning("%s skipped: %s", ev.Document, ev.Outcome.Reason) })
			if bar != nil {
				bar.Add(1)
			}

		case domain.EventUnitFailed:
			line(func() { ui.Error("%s failed: %s", ev.Document, ev.Outcome.Reason) })
			if bar != nil {
				bar.Add(1)
			}

		case domain.EventDocumentArchived:
			line(func() { ui.Step("%s archived as originals/%s", ev.Document, ev.Message) })

		case domain.EventRunComplete:
			if bar != nil {
				bar.Finish()
				bar = nil
			}
		}
	}

	// Interrupted runs never see a completion event
	if bar != nil {
		bar.Clear()
	}
}

func displaySummary(s *domain.RunSummary) {
	ui.Section("Summary")
	ui.Table([]string{"Metric", "Value"}, [][]string{
		{"Renamed", fmt.Sprintf("%d", s.Renamed)},
		{"Skipped", fmt.Sprintf("%d", s.Skipped)},
		{"Failed", fmt.Sprintf("%d", s.Failed)},
		{"Documents split", fmt.Sprintf("%d", s.SplitDocs)},
		{"Duration", ui.FormatDuration(s.Duration)},
	})

	if s.HasFailures() {
		ui.Newline()
		ui.Warning("%d file(s) could not be processed:", s.Failed)
		for _, o := range s.FailedOutcomes() {
			ui.Error("%s: %s", o.Name, o.Reason)
		}
	}
}
