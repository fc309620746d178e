package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCSVSourceParsesKnownColumns(t *testing.T) {
	path := writeCSV(t, "filename,title,authors,year,tags\n"+
		"paper.pdf,Attention Is All You Need,Vaswani; Shazeer,2017,transformers; nlp\n")

	src := NewCSVSource(path)
	records, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	rec, ok := records["paper.pdf"]
	if !ok {
		t.Fatalf("expected record for paper.pdf, got %v", records)
	}
	if rec["title"] != "Attention Is All You Need" {
		t.Fatalf("got title %v", rec["title"])
	}
	if rec["year"] != 2017 {
		t.Fatalf("got year %v (%T)", rec["year"], rec["year"])
	}
	authors, ok := rec["authors"].([]string)
	if !ok || len(authors) != 2 || authors[0] != "Vaswani" {
		t.Fatalf("got authors %v", rec["authors"])
	}
}

func TestCSVSourceCarriesUnknownColumnsVerbatim(t *testing.T) {
	path := writeCSV(t, "filename,custom_field\npaper.pdf,some-value\n")

	src := NewCSVSource(path)
	records, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if records["paper.pdf"]["custom_field"] != "some-value" {
		t.Fatalf("got %v", records["paper.pdf"])
	}
}

func TestCSVSourceSkipsRowsWithEmptyFilename(t *testing.T) {
	path := writeCSV(t, "filename,title\n,Untitled\n")

	src := NewCSVSource(path)
	records, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %v", records)
	}
}

func TestCSVSourceReturnsErrorForMissingFile(t *testing.T) {
	src := NewCSVSource("/nonexistent/export.csv")
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
