package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docscan/form-renamer/internal/domain"
	"github.com/docscan/form-renamer/internal/observability"
)

// Splitter splits multi-form scans into per-patient documents using pdfcpu.
// A scanner batch may contain several patient forms in one PDF; each form
// is a fixed-length page set.
type Splitter struct {
	pagesPerForm int
	tempDir      string
	logger       *observability.Logger
}

// NewSplitter creates a splitter writing parts into tempDir
func NewSplitter(pagesPerForm int, tempDir string, logger *observability.Logger) *Splitter {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Splitter{
		pagesPerForm: pagesPerForm,
		tempDir:      tempDir,
		logger:       logger,
	}
}

// Inspect classifies a document by its page count without modifying it
func (s *Splitter) Inspect(pdfPath string) domain.Inspection {
	count, err := api.PageCountFile(pdfPath)
	if err != nil || count == 0 {
		return domain.Inspection{
			Pages:    0,
			Decision: domain.SplitUnreadable,
			Reason:   "could not read page count",
		}
	}
	return Classify(count, s.pagesPerForm)
}

// Classify maps a page count onto a split decision. Exposed separately so
// the triage rules stay testable without real PDF files.
func Classify(pages, pagesPerForm int) domain.Inspection {
	switch {
	case pages <= 0:
		return domain.Inspection{
			Pages:    pages,
			Decision: domain.SplitUnreadable,
			Reason:   "could not read page count",
		}
	case pages == pagesPerForm:
		return domain.Inspection{
			Pages:    pages,
			Forms:    1,
			Decision: domain.SplitSingleForm,
			Reason:   fmt.Sprintf("single form (%d pages)", pages),
		}
	case pages%pagesPerForm != 0:
		return domain.Inspection{
			Pages:    pages,
			Decision: domain.SplitInvalidCount,
			Reason:   fmt.Sprintf("invalid page count (%d pages, not divisible by %d)", pages, pagesPerForm),
		}
	default:
		forms := pages / pagesPerForm
		return domain.Inspection{
			Pages:    pages,
			Forms:    forms,
			Decision: domain.SplitMultiForm,
			Reason:   fmt.Sprintf("multi-form document (%d pages = %d patients)", pages, forms),
		}
	}
}

// Split writes one PDF per contained form into the temp directory and
// returns the part paths in form order. The source file is not modified.
func (s *Splitter) Split(ctx context.Context, pdfPath string) ([]string, error) {
	count, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, domain.ConversionError("could not read page count", err)
	}
	if count == 0 || count%s.pagesPerForm != 0 {
		return nil, domain.ConversionError(fmt.Sprintf("document is not splittable (%d pages, %d per form)", count, s.pagesPerForm), nil)
	}

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return nil, domain.IOError("could not create temp directory", err)
	}

	forms := count / s.pagesPerForm
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))

	parts := make([]string, 0, forms)
	for i := 0; i < forms; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		first, last := PageRange(i, s.pagesPerForm)
		outPath := filepath.Join(s.tempDir, fmt.Sprintf("%s_patient_%d.pdf", stem, i+1))

		pages := []string{fmt.Sprintf("%d-%d", first, last)}
		if err := api.TrimFile(pdfPath, outPath, pages, nil); err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("failed to extract pages %d-%d", first, last), err)
		}

		parts = append(parts, outPath)
	}

	s.logger.Debug().
		Str("document", filepath.Base(pdfPath)).
		Int("parts", len(parts)).
		Msg("split multi-form document")

	return parts, nil
}

// PageRange returns the 1-based page span of the Nth form (0-based index)
func PageRange(form, pagesPerForm int) (first, last int) {
	first = form*pagesPerForm + 1
	last = first + pagesPerForm - 1
	return first, last
}

// CleanupTemp removes leftover split parts from the temp directory.
// Called at run start (stale parts from aborted runs) and at run end.
func (s *Splitter) CleanupTemp() error {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return domain.IOError("could not read temp directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(s.tempDir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Str("path", path).Err(err).Msg("could not remove temp file")
		}
	}

	return nil
}
