package vision

import (
	"context"
	"strings"

	"github.com/docscan/form-renamer/internal/domain"
	"github.com/docscan/form-renamer/internal/observability"
)

// Sentinel is the reply the model is instructed to give when no name is
// legible. Compared case-insensitively after trimming.
const Sentinel = "UNLESBAR"

// namePrompt instructs the model to answer with the patient's name only.
// The forms are German, so the instruction is too.
const namePrompt = `Dies ist ein handschriftlich ausgefüllter Patientenbogen.
Bitte extrahiere den vollständigen Namen des Patienten (Vor- und Nachname).
Gib NUR den Namen zurück, ohne zusätzliche Erklärungen oder Text.
Falls der Name nicht lesbar ist, antworte mit 'UNLESBAR'.`

// Extractor reads the handwritten patient name from a rendered form page
type Extractor struct {
	client *Client
	logger *observability.Logger
}

// NewExtractor creates an extractor backed by the given client
func NewExtractor(client *Client, logger *observability.Logger) *Extractor {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Extractor{
		client: client,
		logger: logger,
	}
}

// Extract submits the page image and parses the model's reply. A sentinel
// or empty reply yields Extraction{Found: false}, not an error; the model
// saying "nothing legible" is an expected answer.
func (e *Extractor) Extract(ctx context.Context, image *domain.PageImage) (domain.Extraction, error) {
	reply, err := e.client.Complete(ctx, image, namePrompt)
	if err != nil {
		return domain.Extraction{}, err
	}

	result := ParseReply(reply)
	e.logger.Debug().
		Bool("found", result.Found).
		Msg("name extraction reply parsed")

	return result, nil
}

// ParseReply maps a raw model reply onto an Extraction
func ParseReply(reply string) domain.Extraction {
	name := strings.TrimSpace(reply)
	if name == "" || strings.EqualFold(name, Sentinel) {
		return domain.Extraction{}
	}
	return domain.Extraction{Name: name, Found: true}
}
