package domain

import "context"

// Rasterizer renders the first page of a PDF document into an image
type Rasterizer interface {
	// FirstPage renders page 1 at the configured resolution
	FirstPage(ctx context.Context, pdfPath string) (*PageImage, error)
}

// NameExtractor reads the handwritten patient name from a page image
type NameExtractor interface {
	// Extract submits the image to the vision model and parses the reply.
	// A sentinel or empty reply yields Extraction{Found: false}, not an error.
	Extract(ctx context.Context, image *PageImage) (Extraction, error)
}

// Splitter triages documents by page count and splits multi-form PDFs
type Splitter interface {
	// Inspect classifies a document without modifying it
	Inspect(pdfPath string) Inspection

	// Split writes one PDF per contained form into the temp directory
	// and returns their paths in form order
	Split(ctx context.Context, pdfPath string) ([]string, error)

	// CleanupTemp removes leftover split parts from previous runs
	CleanupTemp() error
}
