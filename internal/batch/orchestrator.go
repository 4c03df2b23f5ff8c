// Package batch drives the per-document pipeline across an input directory:
// triage by page count, rasterize page 1, query the vision model, sanitize
// the name, move the file. One unit is in flight at a time and a unit
// failure never aborts the batch.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/docscan/form-renamer/internal/config"
	"github.com/docscan/form-renamer/internal/domain"
	"github.com/docscan/form-renamer/internal/observability"
	"github.com/docscan/form-renamer/internal/rename"
)

// Options holds run-scoped settings
type Options struct {
	TodayOnly bool // process only files modified today
}

// Orchestrator coordinates the collaborators for one batch run. It is the
// only place where per-unit errors become recorded outcomes; everything
// below it just returns typed errors.
type Orchestrator struct {
	cfg        *config.Config
	files      *rename.Manager
	splitter   domain.Splitter
	rasterizer domain.Rasterizer
	extractor  domain.NameExtractor
	logger     *observability.Logger
}

// NewOrchestrator wires the pipeline collaborators together
func NewOrchestrator(
	cfg *config.Config,
	files *rename.Manager,
	splitter domain.Splitter,
	rasterizer domain.Rasterizer,
	extractor domain.NameExtractor,
	logger *observability.Logger,
) *Orchestrator {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Orchestrator{
		cfg:        cfg,
		files:      files,
		splitter:   splitter,
		rasterizer: rasterizer,
		extractor:  extractor,
		logger:     logger,
	}
}

// Run processes every PDF in the input directory and returns the summary.
// Events are emitted on the given channel when it is non-nil; the caller
// must drain it. A non-nil error alongside a summary means the run was
// cut short, already-recorded outcomes and moved files stand.
func (o *Orchestrator) Run(ctx context.Context, opts Options, events chan<- domain.RunEvent) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	logger := o.logger.WithRun(summary.RunID)

	if err := o.files.EnsureDirs(); err != nil {
		return nil, err
	}

	// Drop stale split parts from aborted runs
	if err := o.splitter.CleanupTemp(); err != nil {
		logger.Warn().Err(err).Msg("temp cleanup failed")
	}

	docs, err := o.files.ListDocuments(opts.TodayOnly)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("documents", len(docs)).
		Bool("today_only", opts.TodayOnly).
		Msg("run started")
	o.emit(events, domain.RunEvent{Type: domain.EventRunStart, Total: len(docs)})

	for i, doc := range docs {
		if ctx.Err() != nil {
			o.finish(summary)
			return summary, ctx.Err()
		}

		o.emit(events, domain.RunEvent{
			Type:     domain.EventDocumentStart,
			Document: doc.Name,
			Index:    i + 1,
			Total:    len(docs),
		})

		o.processDocument(ctx, doc, summary, events, logger.WithDocument(doc.Name))
	}

	if err := o.splitter.CleanupTemp(); err != nil {
		logger.Warn().Err(err).Msg("temp cleanup failed")
	}

	o.finish(summary)
	logger.Info().
		Int("renamed", summary.Renamed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("run complete")
	o.emit(events, domain.RunEvent{Type: domain.EventRunComplete, Total: len(docs)})

	return summary, ctx.Err()
}

// processDocument triages one input file and routes it through the
// single-form or multi-form path
func (o *Orchestrator) processDocument(ctx context.Context, doc domain.SourceDocument, summary *domain.RunSummary, events chan<- domain.RunEvent, logger *observability.Logger) {
	insp := o.splitter.Inspect(doc.Path)
	logger.Debug().
		Int("pages", insp.Pages).
		Str("decision", string(insp.Decision)).
		Msg(insp.Reason)

	switch insp.Decision {
	case domain.SplitUnreadable, domain.SplitInvalidCount:
		err := domain.ConversionError(insp.Reason, nil)
		o.record(summary, events, domain.FailedOutcome(doc.Path, "", err), logger)

	case domain.SplitMultiForm:
		o.processMultiForm(ctx, doc, summary, events, logger)

	case domain.SplitSingleForm:
		o.record(summary, events, o.processUnit(ctx, doc.Path, ""), logger)
	}
}

// processMultiForm splits a batch scan into per-patient parts, processes
// each part, then archives the source so its pages stay recoverable
func (o *Orchestrator) processMultiForm(ctx context.Context, doc domain.SourceDocument, summary *domain.RunSummary, events chan<- domain.RunEvent, logger *observability.Logger) {
	parts, err := o.splitter.Split(ctx, doc.Path)
	if err != nil {
		o.record(summary, events, domain.FailedOutcome(doc.Path, "", err), logger)
		return
	}

	summary.SplitDocs++
	o.emit(events, domain.RunEvent{
		Type:     domain.EventDocumentSplit,
		Document: doc.Name,
		Total:    len(parts),
		Message:  fmt.Sprintf("split into %d parts", len(parts)),
	})

	for _, part := range parts {
		if ctx.Err() != nil {
			return
		}
		o.record(summary, events, o.processUnit(ctx, part, doc.Name), logger)
	}

	// An interrupted document stays in the input directory for a retry
	if ctx.Err() != nil {
		return
	}

	archived, err := o.files.Archive(doc.Path)
	if err != nil {
		logger.Error().Err(err).Msg("could not archive split source")
		return
	}

	logger.Info().Str("target", filepath.Base(archived)).Msg("split source archived")
	o.emit(events, domain.RunEvent{
		Type:     domain.EventDocumentArchived,
		Document: doc.Name,
		Message:  filepath.Base(archived),
	})
}

// processUnit runs the per-unit state machine: rasterize, extract,
// sanitize, move. Skipped and failed units leave their source in place.
func (o *Orchestrator) processUnit(ctx context.Context, path, parent string) domain.Outcome {
	image, err := o.rasterizer.FirstPage(ctx, path)
	if err != nil {
		return domain.FailedOutcome(path, parent, err)
	}

	extraction, err := o.extractor.Extract(ctx, image)
	if err != nil {
		return domain.FailedOutcome(path, parent, err)
	}
	if !extraction.Found {
		return domain.SkippedOutcome(path, parent, "no legible name found")
	}

	name := rename.SanitizeWithLimit(extraction.Name, o.cfg.Rename.MaxNameLength)
	if name == "" {
		return domain.SkippedOutcome(path, parent, "name empty after sanitizing")
	}

	newPath, err := o.files.RenameAndMove(path, name)
	if err != nil {
		return domain.FailedOutcome(path, parent, err)
	}

	return domain.RenamedOutcome(path, parent, name, newPath)
}

// record is the single point where outcomes enter the summary
func (o *Orchestrator) record(summary *domain.RunSummary, events chan<- domain.RunEvent, outcome domain.Outcome, logger *observability.Logger) {
	summary.Add(outcome)

	switch outcome.Status {
	case domain.StatusRenamed:
		logger.Info().
			Str("unit", outcome.Name).
			Str("patient", outcome.PatientName).
			Str("target", filepath.Base(outcome.NewPath)).
			Msg("renamed")
		o.emit(events, domain.RunEvent{Type: domain.EventUnitRenamed, Document: outcome.Name, Outcome: &outcome})

	case domain.StatusSkipped:
		logger.Info().
			Str("unit", outcome.Name).
			Str("reason", outcome.Reason).
			Msg("skipped")
		o.emit(events, domain.RunEvent{Type: domain.EventUnitSkipped, Document: outcome.Name, Outcome: &outcome})

	case domain.StatusFailed:
		logger.Error().
			Str("unit", outcome.Name).
			Err(outcome.Err).
			Msg("failed")
		o.emit(events, domain.RunEvent{Type: domain.EventUnitFailed, Document: outcome.Name, Outcome: &outcome})
	}
}

func (o *Orchestrator) emit(events chan<- domain.RunEvent, ev domain.RunEvent) {
	if events == nil {
		return
	}
	ev.Timestamp = time.Now()
	events <- ev
}

func (o *Orchestrator) finish(summary *domain.RunSummary) {
	summary.CompletedAt = time.Now()
	summary.Duration = summary.CompletedAt.Sub(summary.StartedAt)
}
