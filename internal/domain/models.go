package domain

import (
	"os"
	"path/filepath"
	"time"
)

// SourceDocument represents one scanned PDF discovered in the input directory
type SourceDocument struct {
	Path    string // absolute path
	Name    string // base filename
	Size    int64
	ModTime time.Time
}

// NewSourceDocument builds a SourceDocument from a path and its file info
func NewSourceDocument(path string, info os.FileInfo) SourceDocument {
	return SourceDocument{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// PageImage is the rendered first page of a document, encoded in memory.
// It lives only for the duration of one extraction call.
type PageImage struct {
	Data   []byte // encoded image bytes
	Format string // "png"
	DPI    int
	Width  int
	Height int
}

// Extraction is the parsed model response for one page image:
// either a candidate patient name or "nothing legible".
type Extraction struct {
	Name  string
	Found bool
}

// OutcomeStatus is the terminal state of one processed unit
type OutcomeStatus string

const (
	StatusRenamed OutcomeStatus = "renamed"
	StatusSkipped OutcomeStatus = "skipped"
	StatusFailed  OutcomeStatus = "failed"
)

// Outcome records the terminal state of one processed unit. A unit is either
// an input file or, for multi-form documents, one split part. Parent names
// the original document when the unit is a split part.
type Outcome struct {
	Source      string // path of the processed unit
	Name        string // base filename of the unit
	Parent      string // base filename of the split source, empty for whole files
	Status      OutcomeStatus
	PatientName string // sanitized name, set when Status is renamed
	NewPath     string // destination path, set when Status is renamed
	Reason      string // short human-readable reason for skipped/failed
	Err         error  // underlying error, set when Status is failed
}

// RenamedOutcome marks a unit as successfully renamed and moved
func RenamedOutcome(src, parent, patientName, newPath string) Outcome {
	return Outcome{
		Source:      src,
		Name:        baseName(src),
		Parent:      parent,
		Status:      StatusRenamed,
		PatientName: patientName,
		NewPath:     newPath,
	}
}

// SkippedOutcome marks a unit as skipped, leaving its source in place
func SkippedOutcome(src, parent, reason string) Outcome {
	return Outcome{
		Source: src,
		Name:   baseName(src),
		Parent: parent,
		Status: StatusSkipped,
		Reason: reason,
	}
}

// FailedOutcome marks a unit as failed, leaving its source in place
func FailedOutcome(src, parent string, err error) Outcome {
	o := Outcome{
		Source: src,
		Name:   baseName(src),
		Parent: parent,
		Status: StatusFailed,
		Err:    err,
	}
	if err != nil {
		o.Reason = err.Error()
	}
	return o
}

// RunSummary aggregates the outcomes of one batch run in processing order
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Outcomes    []Outcome
	Renamed     int
	Skipped     int
	Failed      int
	SplitDocs   int // multi-form documents that were split
}

// Add appends an outcome and updates the counters
func (s *RunSummary) Add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusRenamed:
		s.Renamed++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// Total returns the number of processed units
func (s *RunSummary) Total() int {
	return len(s.Outcomes)
}

// HasFailures reports whether any unit failed
func (s *RunSummary) HasFailures() bool {
	return s.Failed > 0
}

// FailedOutcomes returns the failed units in processing order
func (s *RunSummary) FailedOutcomes() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// SplitDecision classifies a document by its page count
type SplitDecision string

const (
	SplitSingleForm   SplitDecision = "single_form"
	SplitMultiForm    SplitDecision = "multi_form"
	SplitInvalidCount SplitDecision = "invalid_page_count"
	SplitUnreadable   SplitDecision = "unreadable"
)

// Inspection is the page-count triage result for one document
type Inspection struct {
	Pages    int
	Forms    int // number of contained forms, set for multi_form
	Decision SplitDecision
	Reason   string
}

// EventType represents the type of run event
type EventType string

const (
	EventRunStart         EventType = "run_start"
	EventDocumentStart    EventType = "document_start"
	EventDocumentSplit    EventType = "document_split"
	EventUnitRenamed      EventType = "unit_renamed"
	EventUnitSkipped      EventType = "unit_skipped"
	EventUnitFailed       EventType = "unit_failed"
	EventDocumentArchived EventType = "document_archived"
	EventRunComplete      EventType = "run_complete"
)

// RunEvent is emitted by the orchestrator as a batch run progresses.
// The CLI consumes these to drive progress output; the orchestrator
// itself never prints.
type RunEvent struct {
	Type      EventType
	Document  string   // base filename of the current document
	Index     int      // 1-based document index within the run
	Total     int      // number of discovered documents
	Outcome   *Outcome // set for unit_* events
	Message   string
	Timestamp time.Time
}

func baseName(path string) string {
	return filepath.Base(path)
}
