package robot

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

// duplicateSuffix matches a trailing parenthesized numeric duplicate
// marker before the extension, e.g. "paper(1).pdf" -> stem "paper(1)",
// suffix stripped to "paper".
var duplicateSuffix = regexp.MustCompile(`\s*\(\d+\)(\.[^.]+)?$`)

// ManifestSyncHandler produces PAPERPILE_METADATA artifacts by looking up a
// document's file name in a metadata map loaded once from an external
// MetadataSource. The map is loaded lazily on first Handle call and cached
// for the lifetime of the handler.
type ManifestSyncHandler struct {
	Source MetadataSource

	once    sync.Once
	loadErr error
	records map[string]Record
}

// NewManifestSyncHandler constructs a ManifestSyncHandler around source.
func NewManifestSyncHandler(source MetadataSource) *ManifestSyncHandler {
	return &ManifestSyncHandler{Source: source}
}

// Handle implements Handler.
func (h *ManifestSyncHandler) Handle(ctx context.Context, doc *models.Document) Outcome {
	h.once.Do(func() {
		h.records, h.loadErr = h.Source.Load(ctx)
	})
	if h.loadErr != nil {
		return Fail(fmt.Sprintf("load manifest: %s", h.loadErr))
	}

	name := strings.ToLower(filepath.Base(doc.FilePath))
	if rec, ok := h.records[name]; ok {
		return Produced(models.Content(rec))
	}

	fallback := strings.ToLower(duplicateSuffix.ReplaceAllString(filepath.Base(doc.FilePath), ""))
	ext := strings.ToLower(filepath.Ext(doc.FilePath))
	if !strings.HasSuffix(fallback, ext) {
		fallback += ext
	}
	if rec, ok := h.records[fallback]; ok {
		return Produced(models.Content(rec))
	}

	return Discard("No manifest entry found")
}
