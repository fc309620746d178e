package robot

import (
	"context"
	"errors"
	"testing"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(context.Context, string) (string, error) {
	return s.text, s.err
}

type stubNormalizer struct {
	out string
}

func (s stubNormalizer) Clean(string) string { return s.out }

func TestExtractorHandlerProducesCleanedText(t *testing.T) {
	h := &ExtractorHandler{
		Extractor:  stubExtractor{text: "hello world"},
		Normalizer: stubNormalizer{out: "hello world"},
	}
	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/a.pdf"})
	if outcome.kind != kindProduced {
		t.Fatalf("expected produced, got kind=%d reason=%q", outcome.kind, outcome.reason)
	}
	if outcome.content["text"] != "hello world" {
		t.Fatalf("got %v", outcome.content)
	}
	if outcome.content["raw_length"] != 11 || outcome.content["cleaned_length"] != 11 {
		t.Fatalf("unexpected lengths: %v", outcome.content)
	}
}

func TestExtractorHandlerFailsOnExtractorError(t *testing.T) {
	h := &ExtractorHandler{Extractor: stubExtractor{err: errors.New("boom")}}
	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/a.pdf"})
	if outcome.kind != kindFail {
		t.Fatalf("expected fail, got kind=%d", outcome.kind)
	}
	if outcome.reason != "boom" {
		t.Fatalf("got reason %q", outcome.reason)
	}
}

func TestExtractorHandlerFailsOnEmptyRawText(t *testing.T) {
	h := &ExtractorHandler{Extractor: stubExtractor{text: ""}}
	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/a.pdf"})
	if outcome.kind != kindFail || outcome.reason != "empty text extracted" {
		t.Fatalf("got kind=%d reason=%q", outcome.kind, outcome.reason)
	}
}

func TestExtractorHandlerFailsWhenCleanedTextIsEmpty(t *testing.T) {
	h := &ExtractorHandler{
		Extractor:  stubExtractor{text: "42"},
		Normalizer: stubNormalizer{out: ""},
	}
	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/a.pdf"})
	if outcome.kind != kindFail || outcome.reason != "empty text extracted" {
		t.Fatalf("got kind=%d reason=%q", outcome.kind, outcome.reason)
	}
}
