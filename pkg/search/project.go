package search

import (
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

// IndexedDocument is the flattened view of a document written to
// Elasticsearch. Its fields mirror mapping.go exactly.
type IndexedDocument struct {
	Title     string   `json:"title,omitempty"`
	Abstract  string   `json:"abstract,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Venue     string   `json:"venue,omitempty"`
	Year      int      `json:"year,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	ItemType  string   `json:"item_type,omitempty"`
	DOI       string   `json:"doi,omitempty"`
	ArxivID   string   `json:"arxiv_id,omitempty"`
	Folders   []string `json:"folders,omitempty"`
	FilePath  string   `json:"file_path"`
	FullText  string   `json:"full_text"`
}

// ProjectDocument derives an IndexedDocument from a document and its
// accumulated artifacts. It picks the latest PAPERPILE_METADATA artifact
// for bibliographic fields and the latest FULL_TEXT artifact for body
// text. Absent bibliographic fields are omitted from the serialized body;
// full_text is always written, as the empty string when no FULL_TEXT
// artifact exists. This is a pure function deliberately kept free of any
// Elasticsearch dependency so it is trivially unit-testable.
func ProjectDocument(doc models.DocumentWithArtifacts) IndexedDocument {
	out := IndexedDocument{FilePath: doc.Document.FilePath}

	if meta, ok := doc.Latest(models.EnhancementPaperpileMetadata); ok {
		out.Title = stringField(meta.Content, "title")
		out.Abstract = stringField(meta.Content, "abstract")
		out.Authors = stringSliceField(meta.Content, "authors")
		out.Keywords = stringSliceField(meta.Content, "keywords")
		out.Venue = stringField(meta.Content, "venue")
		out.Year = intField(meta.Content, "year")
		out.Tags = stringSliceField(meta.Content, "tags")
		out.ItemType = stringField(meta.Content, "item_type")
		out.DOI = stringField(meta.Content, "doi")
		out.ArxivID = stringField(meta.Content, "arxiv_id")
		out.Folders = stringSliceField(meta.Content, "folders")
	}

	if full, ok := doc.Latest(models.EnhancementFullText); ok {
		out.FullText = stringField(full.Content, "text")
	}

	return out
}

func stringField(c models.Content, key string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intField(c models.Content, key string) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func stringSliceField(c models.Content, key string) []string {
	v, ok := c[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
