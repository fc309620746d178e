package search

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

func TestProjectDocumentMergesBothArtifactTypes(t *testing.T) {
	now := time.Now()
	doc := models.DocumentWithArtifacts{
		Document: models.Document{ID: 1, FilePath: "/a.pdf"},
		Artifacts: []models.Enhancement{
			{
				EnhancementType: models.EnhancementPaperpileMetadata,
				Content: models.Content{
					"title":   "Attention Is All You Need",
					"authors": []any{"Vaswani", "Shazeer"},
					"year":    float64(2017),
					"tags":    []any{"transformers"},
				},
				CreatedAt: now,
			},
			{
				EnhancementType: models.EnhancementFullText,
				Content:         models.Content{"text": "the quick brown fox"},
				CreatedAt:       now,
			},
		},
	}

	out := ProjectDocument(doc)
	if out.Title != "Attention Is All You Need" {
		t.Fatalf("got title %q", out.Title)
	}
	if len(out.Authors) != 2 || out.Authors[0] != "Vaswani" {
		t.Fatalf("got authors %v", out.Authors)
	}
	if out.Year != 2017 {
		t.Fatalf("got year %d", out.Year)
	}
	if out.FullText != "the quick brown fox" {
		t.Fatalf("got full_text %q", out.FullText)
	}
	if out.FilePath != "/a.pdf" {
		t.Fatalf("got file_path %q", out.FilePath)
	}
}

func TestProjectDocumentHandlesMissingArtifacts(t *testing.T) {
	doc := models.DocumentWithArtifacts{Document: models.Document{ID: 2, FilePath: "/b.pdf"}}
	out := ProjectDocument(doc)
	if out.Title != "" || out.FullText != "" {
		t.Fatalf("expected empty fields, got %+v", out)
	}
	if out.FilePath != "/b.pdf" {
		t.Fatalf("got file_path %q", out.FilePath)
	}

	// full_text is always written, as "" when no FULL_TEXT artifact exists;
	// the other missing fields are omitted entirely.
	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := body["full_text"]; !ok || v != "" {
		t.Fatalf("expected full_text key present as empty string, got %v (present=%v)", v, ok)
	}
	if _, ok := body["title"]; ok {
		t.Fatalf("expected missing title to be omitted, got %s", raw)
	}
	if _, ok := body["year"]; ok {
		t.Fatalf("expected missing year to be omitted, got %s", raw)
	}
}

func TestProjectDocumentPicksLatestOfEachType(t *testing.T) {
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	doc := models.DocumentWithArtifacts{
		Document: models.Document{ID: 3, FilePath: "/c.pdf"},
		Artifacts: []models.Enhancement{
			{EnhancementType: models.EnhancementPaperpileMetadata, Content: models.Content{"title": "old"}, CreatedAt: older, RobotID: "robot-a"},
			{EnhancementType: models.EnhancementPaperpileMetadata, Content: models.Content{"title": "new"}, CreatedAt: newer, RobotID: "robot-b"},
		},
	}
	out := ProjectDocument(doc)
	if out.Title != "new" {
		t.Fatalf("expected latest title, got %q", out.Title)
	}
}
