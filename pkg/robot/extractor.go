package robot

import (
	"context"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/normalize"
)

// textNormalizer is the subset of normalize.Normalizer used here, so tests
// can substitute a stub without pulling in golang.org/x/text.
type textNormalizer interface {
	Clean(raw string) string
}

// ExtractorHandler produces FULL_TEXT artifacts by invoking an external
// Extractor and running its output through the text normalizer. Empty
// output is rejected both before and after cleaning, since a normalizer
// that drops every line (e.g. an all-digits OCR dump) can turn non-empty
// raw text into an empty cleaned result.
type ExtractorHandler struct {
	Extractor  Extractor
	Normalizer textNormalizer
}

// NewExtractorHandler constructs an ExtractorHandler with the production
// normalize.Normalizer.
func NewExtractorHandler(extractor Extractor) *ExtractorHandler {
	return &ExtractorHandler{Extractor: extractor, Normalizer: normalize.Normalizer{}}
}

// Handle implements Handler.
func (h *ExtractorHandler) Handle(ctx context.Context, doc *models.Document) Outcome {
	raw, err := h.Extractor.Extract(ctx, doc.FilePath)
	if err != nil {
		return Fail(err.Error())
	}
	if raw == "" {
		return Fail("empty text extracted")
	}

	cleaned := h.Normalizer.Clean(raw)
	if cleaned == "" {
		return Fail("empty text extracted")
	}

	return Produced(models.Content{
		"text":           cleaned,
		"raw_length":     len(raw),
		"cleaned_length": len(cleaned),
	})
}
