package pdf

import (
	"bytes"
	"context"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"

	"github.com/docscan/form-renamer/internal/domain"
	"github.com/docscan/form-renamer/internal/observability"
)

const largeFileBytes = 100 * 1024 * 1024

// Rasterizer renders the first page of a PDF to an in-memory PNG using go-fitz
type Rasterizer struct {
	dpi    int
	logger *observability.Logger
}

// NewRasterizer creates a rasterizer rendering at the given DPI
func NewRasterizer(dpi int, logger *observability.Logger) *Rasterizer {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Rasterizer{
		dpi:    dpi,
		logger: logger,
	}
}

// FirstPage renders page 1 of the document at the configured resolution.
// The handwritten name is expected on the first page; later pages are
// never rendered.
func (r *Rasterizer) FirstPage(ctx context.Context, pdfPath string) (*domain.PageImage, error) {
	validator := NewValidator()
	if err := validator.ValidatePDFPath(pdfPath); err != nil {
		return nil, err
	}
	if err := validator.ValidateDPI(r.dpi); err != nil {
		return nil, err
	}

	if info, err := os.Stat(pdfPath); err == nil && info.Size() > largeFileBytes {
		r.logger.Warn().
			Str("path", pdfPath).
			Int64("size_mb", info.Size()/(1024*1024)).
			Msg("PDF file is very large, rendering may take a while")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Open PDF document
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.ConversionError("failed to open PDF", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, domain.ConversionError("PDF has no pages", nil)
	}

	img, err := doc.ImageDPI(0, float64(r.dpi))
	if err != nil {
		return nil, domain.ConversionError("failed to render first page", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, domain.ConversionError("failed to encode first page as PNG", err)
	}

	bounds := img.Bounds()
	return &domain.PageImage{
		Data:   buf.Bytes(),
		Format: "png",
		DPI:    r.dpi,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
