// Package extract implements the robot.Extractor used by the FULL_TEXT
// robot: pulling plain text out of a PDF file on disk.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/robot"
)

// PDFExtractor reads every page of a PDF with ledongthuc/pdf and
// concatenates their plain text. It implements robot.Extractor.
type PDFExtractor struct{}

// Extract implements robot.Extractor. ctx is accepted for interface
// symmetry with other collaborators; the underlying library's page walk is
// not itself cancellable, but the caller (robot.Runtime's handler
// invocation) is free to run Extract on its own goroutine.
func (PDFExtractor) Extract(_ context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", robot.ExtractionError(fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", robot.ExtractionError(fmt.Errorf("read %s: %w", path, err))
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", robot.ExtractionError(fmt.Errorf("copy text from %s: %w", path, err))
	}
	return buf.String(), nil
}
