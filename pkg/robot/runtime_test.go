package robot

import (
	"context"
	"sync"
	"testing"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/catalog"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/queue"
)

// fakeQueue is an in-memory queue.Store substitute sufficient to drive the
// runtime's pollOnce through every branch without a database.
type fakeQueue struct {
	mu    sync.Mutex
	rows  map[int64]*models.PendingEnhancement
	order []int64
	next  int64
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{rows: make(map[int64]*models.PendingEnhancement)}
}

func (q *fakeQueue) seed(documentID int64, t models.EnhancementType) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	id := q.next
	q.rows[id] = &models.PendingEnhancement{ID: id, DocumentID: documentID, EnhancementType: t, Status: models.StatusPending}
	q.order = append(q.order, id)
	return id
}

func (q *fakeQueue) ClaimNext(_ context.Context, t models.EnhancementType) (*models.PendingEnhancement, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range q.order {
		row := q.rows[id]
		if row.Status == models.StatusPending && row.EnhancementType == t {
			row.Status = models.StatusProcessing
			row.Attempts++
			cp := *row
			return &cp, nil
		}
	}
	return nil, queue.ErrNoWorkAvailable
}

func (q *fakeQueue) SetStatus(_ context.Context, id int64, newStatus models.Status, lastError *string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	row := q.rows[id]
	row.Status = newStatus
	row.LastError = lastError
	return nil
}

func (q *fakeQueue) get(id int64) models.PendingEnhancement {
	q.mu.Lock()
	defer q.mu.Unlock()
	return *q.rows[id]
}

type fakeCatalog struct {
	docs map[int64]*models.Document
}

func (c fakeCatalog) GetByID(_ context.Context, id int64) (*models.Document, error) {
	if d, ok := c.docs[id]; ok {
		return d, nil
	}
	return nil, catalog.ErrNotFound
}

type fakeWriter struct {
	mu      sync.Mutex
	written []writtenArtifact
}

type writtenArtifact struct {
	documentID int64
	enhType    models.EnhancementType
	content    models.Content
	robotID    string
}

func (w *fakeWriter) Put(_ context.Context, documentID int64, enhancementType models.EnhancementType, content models.Content, robotID string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, writtenArtifact{documentID, enhancementType, content, robotID})
	return int64(len(w.written)), nil
}

type fixedHandler struct {
	outcome Outcome
}

func (h fixedHandler) Handle(context.Context, *models.Document) Outcome { return h.outcome }

type panicHandler struct{}

func (panicHandler) Handle(context.Context, *models.Document) Outcome {
	panic("handler exploded")
}

// TestS1HappyPathExtract mirrors spec scenario S1: register, enqueue,
// extractor stub returns "hello world" -> one FULL_TEXT artifact,
// pending row COMPLETED, attempts == 1.
func TestS1HappyPathExtract(t *testing.T) {
	q := newFakeQueue()
	c := fakeCatalog{docs: map[int64]*models.Document{1: {ID: 1, FilePath: "/a.pdf"}}}
	w := &fakeWriter{}
	id := q.seed(1, models.EnhancementFullText)

	handler := &ExtractorHandler{
		Extractor:  stubExtractor{text: "hello world"},
		Normalizer: stubNormalizer{out: "hello world"},
	}
	rt := NewRuntime(Robot{ID: "pdf-extractor", Type: models.EnhancementFullText, Handler: handler}, q, c, w, RuntimeConfig{}, nil)

	did, err := rt.pollOnce(context.Background())
	if err != nil || !did {
		t.Fatalf("pollOnce: did=%v err=%v", did, err)
	}

	row := q.get(id)
	if row.Status != models.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", row.Status)
	}
	if row.Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", row.Attempts)
	}
	if len(w.written) != 1 || w.written[0].content["text"] != "hello world" {
		t.Fatalf("expected one FULL_TEXT artifact, got %v", w.written)
	}
}

// TestS2ExtractorFailure mirrors spec scenario S2: extractor raises an
// error -> pending row FAILED, last_error contains the message, no artifact.
func TestS2ExtractorFailure(t *testing.T) {
	q := newFakeQueue()
	c := fakeCatalog{docs: map[int64]*models.Document{1: {ID: 1, FilePath: "/a.pdf"}}}
	w := &fakeWriter{}
	id := q.seed(1, models.EnhancementFullText)

	handler := &ExtractorHandler{Extractor: stubExtractor{err: fmtErr("boom")}}
	rt := NewRuntime(Robot{ID: "pdf-extractor", Type: models.EnhancementFullText, Handler: handler}, q, c, w, RuntimeConfig{}, nil)

	if _, err := rt.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}

	row := q.get(id)
	if row.Status != models.StatusFailed {
		t.Fatalf("expected FAILED, got %s", row.Status)
	}
	if row.LastError == nil || *row.LastError != "boom" {
		t.Fatalf("expected last_error 'boom', got %v", row.LastError)
	}
	if len(w.written) != 0 {
		t.Fatalf("expected no artifact written, got %v", w.written)
	}
}

// TestS3MetadataHitWithDuplicateSuffix mirrors spec scenario S3.
func TestS3MetadataHitWithDuplicateSuffix(t *testing.T) {
	q := newFakeQueue()
	c := fakeCatalog{docs: map[int64]*models.Document{1: {ID: 1, FilePath: "/incoming/paper(1).pdf"}}}
	w := &fakeWriter{}
	id := q.seed(1, models.EnhancementPaperpileMetadata)

	src := &stubSource{records: map[string]Record{"paper.pdf": {"venue": "ICML"}}}
	handler := NewManifestSyncHandler(src)
	rt := NewRuntime(Robot{ID: "paperpile-sync", Type: models.EnhancementPaperpileMetadata, Handler: handler}, q, c, w, RuntimeConfig{}, nil)

	if _, err := rt.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}

	row := q.get(id)
	if row.Status != models.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", row.Status)
	}
	if len(w.written) != 1 || w.written[0].content["venue"] != "ICML" {
		t.Fatalf("expected metadata artifact, got %v", w.written)
	}
}

// TestS4MetadataMiss mirrors spec scenario S4.
func TestS4MetadataMiss(t *testing.T) {
	q := newFakeQueue()
	c := fakeCatalog{docs: map[int64]*models.Document{1: {ID: 1, FilePath: "/incoming/unknown.pdf"}}}
	w := &fakeWriter{}
	id := q.seed(1, models.EnhancementPaperpileMetadata)

	handler := NewManifestSyncHandler(&stubSource{records: map[string]Record{}})
	rt := NewRuntime(Robot{ID: "paperpile-sync", Type: models.EnhancementPaperpileMetadata, Handler: handler}, q, c, w, RuntimeConfig{}, nil)

	if _, err := rt.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}

	row := q.get(id)
	if row.Status != models.StatusDiscarded {
		t.Fatalf("expected DISCARDED, got %s", row.Status)
	}
	if row.LastError == nil || *row.LastError != "No manifest entry found" {
		t.Fatalf("got last_error %v", row.LastError)
	}
	if len(w.written) != 0 {
		t.Fatalf("expected no artifact written, got %v", w.written)
	}
}

func TestPollOnceDiscardsWhenDocumentVanished(t *testing.T) {
	q := newFakeQueue()
	c := fakeCatalog{docs: map[int64]*models.Document{}}
	w := &fakeWriter{}
	id := q.seed(99, models.EnhancementFullText)

	rt := NewRuntime(Robot{ID: "pdf-extractor", Type: models.EnhancementFullText, Handler: fixedHandler{}}, q, c, w, RuntimeConfig{}, nil)

	if _, err := rt.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}

	row := q.get(id)
	if row.Status != models.StatusDiscarded {
		t.Fatalf("expected DISCARDED, got %s", row.Status)
	}
	if row.LastError == nil || *row.LastError != "document no longer exists" {
		t.Fatalf("got last_error %v", row.LastError)
	}
}

func TestPollOnceConvertsPanicToFail(t *testing.T) {
	q := newFakeQueue()
	c := fakeCatalog{docs: map[int64]*models.Document{1: {ID: 1, FilePath: "/a.pdf"}}}
	w := &fakeWriter{}
	id := q.seed(1, models.EnhancementFullText)

	rt := NewRuntime(Robot{ID: "pdf-extractor", Type: models.EnhancementFullText, Handler: panicHandler{}}, q, c, w, RuntimeConfig{}, nil)

	if _, err := rt.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}

	row := q.get(id)
	if row.Status != models.StatusFailed {
		t.Fatalf("expected FAILED, got %s", row.Status)
	}
	if row.LastError == nil || *row.LastError != "handler exploded" {
		t.Fatalf("got last_error %v", row.LastError)
	}
}

func TestPollOnceReturnsDidFalseWhenQueueEmpty(t *testing.T) {
	q := newFakeQueue()
	c := fakeCatalog{docs: map[int64]*models.Document{}}
	w := &fakeWriter{}

	rt := NewRuntime(Robot{ID: "pdf-extractor", Type: models.EnhancementFullText, Handler: fixedHandler{}}, q, c, w, RuntimeConfig{}, nil)

	did, err := rt.pollOnce(context.Background())
	if err != nil {
		t.Fatalf("pollOnce: %v", err)
	}
	if did {
		t.Fatal("expected did=false on empty queue")
	}
}

func TestRunBoundedStopsAtEmptyQueueWithoutSleeping(t *testing.T) {
	q := newFakeQueue()
	c := fakeCatalog{docs: map[int64]*models.Document{1: {ID: 1, FilePath: "/a.pdf"}}}
	w := &fakeWriter{}
	q.seed(1, models.EnhancementFullText)

	handler := &ExtractorHandler{Extractor: stubExtractor{text: "x"}, Normalizer: stubNormalizer{out: "x"}}
	rt := NewRuntime(Robot{ID: "pdf-extractor", Type: models.EnhancementFullText, Handler: handler}, q, c, w, RuntimeConfig{}, nil)

	iterations, err := rt.RunBounded(context.Background(), 10)
	if err != nil {
		t.Fatalf("RunBounded: %v", err)
	}
	if iterations != 1 {
		t.Fatalf("expected 1 iteration (one seeded row), got %d", iterations)
	}
}

func fmtErr(s string) error { return errOf(s) }

type errOf string

func (e errOf) Error() string { return string(e) }
