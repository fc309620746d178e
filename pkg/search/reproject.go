package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

// ArtifactSource is the subset of artifact.Store reprojection depends on.
type ArtifactSource interface {
	ListWithArtifacts(ctx context.Context, documentIDs []int64, limit *int) ([]models.DocumentWithArtifacts, error)
}

// bulkBatchSize caps how many documents go into a single _bulk request, so
// one reprojection run over a large catalog doesn't assemble an
// unboundedly large request body in memory.
const bulkBatchSize = 500

// ReprojectResult summarizes a Reproject run.
type ReprojectResult struct {
	Indexed    int
	BulkErrors int
}

// Reproject derives the indexable view for each of documentIDs (or every
// document, if documentIDs is empty) and bulk-indexes it into the alias.
// Per-document bulk errors are logged and counted, not fatal: a single bad
// document should not abort reprojection of the rest of the catalog.
func Reproject(ctx context.Context, c *Client, source ArtifactSource, documentIDs []int64) (ReprojectResult, error) {
	if err := c.Initialize(ctx); err != nil {
		return ReprojectResult{}, fmt.Errorf("search: reproject: initialize: %w", err)
	}

	docs, err := source.ListWithArtifacts(ctx, documentIDs, nil)
	if err != nil {
		return ReprojectResult{}, fmt.Errorf("search: reproject: list documents: %w", err)
	}

	var result ReprojectResult
	for batch := range chunkDocuments(docs, bulkBatchSize) {
		indexed, bulkErrors, err := c.bulkIndex(ctx, batch)
		if err != nil {
			return result, fmt.Errorf("search: reproject: bulk index: %w", err)
		}
		result.Indexed += indexed
		result.BulkErrors += bulkErrors
	}

	if err := c.do(ctx, esapi.IndicesRefreshRequest{Index: []string{c.alias}}, nil); err != nil {
		return result, fmt.Errorf("search: reproject: refresh: %w", err)
	}
	return result, nil
}

func chunkDocuments(docs []models.DocumentWithArtifacts, size int) func(yield func([]models.DocumentWithArtifacts) bool) {
	return func(yield func([]models.DocumentWithArtifacts) bool) {
		for i := 0; i < len(docs); i += size {
			end := i + size
			if end > len(docs) {
				end = len(docs)
			}
			if !yield(docs[i:end]) {
				return
			}
		}
	}
}

// bulkIndex writes one _bulk request indexing every document in batch,
// keyed by document id so repeated runs upsert rather than duplicate.
func (c *Client) bulkIndex(ctx context.Context, batch []models.DocumentWithArtifacts) (indexed int, bulkErrors int, err error) {
	var buf bytes.Buffer
	for _, doc := range batch {
		meta := map[string]any{
			"index": map[string]any{
				"_index": c.alias,
				"_id":    fmt.Sprintf("%d", doc.Document.ID),
			},
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return indexed, bulkErrors, fmt.Errorf("encode bulk meta: %w", err)
		}
		docLine, err := json.Marshal(ProjectDocument(doc))
		if err != nil {
			return indexed, bulkErrors, fmt.Errorf("encode document %d: %w", doc.Document.ID, err)
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	var raw struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  *struct {
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := c.do(ctx, esapi.BulkRequest{Body: &buf}, &raw); err != nil {
		return indexed, bulkErrors, err
	}

	for _, item := range raw.Items {
		if item.Index.Error != nil {
			bulkErrors++
			slog.Error("search: bulk index item failed", "document_id", item.Index.ID, "reason", item.Index.Error.Reason)
			continue
		}
		indexed++
	}
	return indexed, bulkErrors, nil
}
