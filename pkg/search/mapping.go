package search

// mapping is the field list backing the search projection: bibliographic
// metadata (from a PAPERPILE_METADATA artifact), extracted body text (from
// a FULL_TEXT artifact), and catalog identity. text fields carry a keyword
// sub-field where exact filtering or aggregation is needed (authors for
// faceting, title for exact-match sorting).
var mapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"title": map[string]any{
				"type":   "text",
				"fields": map[string]any{"keyword": map[string]any{"type": "keyword", "ignore_above": 1024}},
			},
			"abstract": map[string]any{"type": "text"},
			"authors": map[string]any{
				"type":   "text",
				"fields": map[string]any{"keyword": map[string]any{"type": "keyword", "ignore_above": 256}},
			},
			"keywords":  map[string]any{"type": "keyword"},
			"venue":     map[string]any{"type": "keyword"},
			"year":      map[string]any{"type": "integer"},
			"tags":      map[string]any{"type": "keyword"},
			"item_type": map[string]any{"type": "keyword"},
			"doi":       map[string]any{"type": "keyword"},
			"arxiv_id":  map[string]any{"type": "keyword"},
			"folders":   map[string]any{"type": "keyword"},
			"file_path": map[string]any{"type": "keyword"},
			"full_text": map[string]any{"type": "text"},
		},
	},
}
