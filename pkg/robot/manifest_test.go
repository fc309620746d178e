package robot

import (
	"context"
	"testing"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

type stubSource struct {
	records map[string]Record
	err     error
	loads   int
}

func (s *stubSource) Load(context.Context) (map[string]Record, error) {
	s.loads++
	return s.records, s.err
}

func TestManifestSyncHandlerHitsExactFilename(t *testing.T) {
	src := &stubSource{records: map[string]Record{
		"paper.pdf": {"venue": "ICML"},
	}}
	h := NewManifestSyncHandler(src)

	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/incoming/paper.pdf"})
	if outcome.kind != kindProduced {
		t.Fatalf("expected produced, got kind=%d reason=%q", outcome.kind, outcome.reason)
	}
	if outcome.content["venue"] != "ICML" {
		t.Fatalf("got %v", outcome.content)
	}
}

func TestManifestSyncHandlerFallsBackOnDuplicateSuffix(t *testing.T) {
	src := &stubSource{records: map[string]Record{
		"paper.pdf": {"venue": "NeurIPS"},
	}}
	h := NewManifestSyncHandler(src)

	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/incoming/paper(1).pdf"})
	if outcome.kind != kindProduced {
		t.Fatalf("expected produced, got kind=%d reason=%q", outcome.kind, outcome.reason)
	}
	if outcome.content["venue"] != "NeurIPS" {
		t.Fatalf("got %v", outcome.content)
	}
}

func TestManifestSyncHandlerFallsBackOnMultiDigitDuplicateSuffix(t *testing.T) {
	src := &stubSource{records: map[string]Record{
		"paper.pdf": {"venue": "NeurIPS"},
	}}
	h := NewManifestSyncHandler(src)

	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/incoming/paper(12).pdf"})
	if outcome.kind != kindProduced {
		t.Fatalf("expected produced, got %d", outcome.kind)
	}
}

func TestManifestSyncHandlerDiscardsOnMiss(t *testing.T) {
	h := NewManifestSyncHandler(&stubSource{records: map[string]Record{}})

	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/incoming/unknown.pdf"})
	if outcome.kind != kindDiscard {
		t.Fatalf("expected discard, got kind=%d", outcome.kind)
	}
	if outcome.reason != "No manifest entry found" {
		t.Fatalf("got reason %q", outcome.reason)
	}
}

func TestManifestSyncHandlerLoadsSourceOnce(t *testing.T) {
	src := &stubSource{records: map[string]Record{"a.pdf": {"x": 1}}}
	h := NewManifestSyncHandler(src)

	h.Handle(context.Background(), &models.Document{FilePath: "/a.pdf"})
	h.Handle(context.Background(), &models.Document{FilePath: "/a.pdf"})
	h.Handle(context.Background(), &models.Document{FilePath: "/b.pdf"})

	if src.loads != 1 {
		t.Fatalf("expected source to load once, loaded %d times", src.loads)
	}
}

func TestManifestSyncHandlerIsCaseInsensitive(t *testing.T) {
	src := &stubSource{records: map[string]Record{"paper.pdf": {"venue": "ICML"}}}
	h := NewManifestSyncHandler(src)

	outcome := h.Handle(context.Background(), &models.Document{FilePath: "/incoming/PAPER.PDF"})
	if outcome.kind != kindProduced {
		t.Fatalf("expected produced, got %d", outcome.kind)
	}
}
