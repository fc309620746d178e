package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
)

// fakeTransport is a scripted http.RoundTripper standing in for a real
// Elasticsearch cluster, keyed on method+path so each alias.go operation
// can be exercised without a live node.
type fakeTransport struct {
	t         *testing.T
	aliasName map[string]string // alias -> bound index, mutated as if a real cluster
	indices   map[string]bool
	blocked   map[string]bool
	requests  []string
}

func newFakeTransport(t *testing.T) *fakeTransport {
	return &fakeTransport{
		t:         t,
		aliasName: map[string]string{},
		indices:   map[string]bool{},
		blocked:   map[string]bool{},
	}
}

func jsonResponse(status int, body any) *http.Response {
	buf, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(buf)),
		Header: http.Header{
			"Content-Type":     []string{"application/json"},
			"X-Elastic-Product": []string{"Elasticsearch"},
		},
	}
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req.Method+" "+req.URL.Path)
	path := req.URL.Path

	switch {
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/_alias/"):
		alias := strings.TrimPrefix(path, "/_alias/")
		idx, ok := f.aliasName[alias]
		if !ok {
			return jsonResponse(404, map[string]any{}), nil
		}
		return jsonResponse(200, map[string]any{idx: map[string]any{}}), nil

	case req.Method == http.MethodPut && !strings.Contains(path, "_settings"):
		idx := strings.Trim(path, "/")
		f.indices[idx] = true
		return jsonResponse(200, map[string]any{"acknowledged": true}), nil

	case req.Method == http.MethodPost && path == "/_aliases":
		var body struct {
			Actions []map[string]map[string]string `json:"actions"`
		}
		data, _ := io.ReadAll(req.Body)
		json.Unmarshal(data, &body)
		for _, action := range body.Actions {
			if add, ok := action["add"]; ok {
				f.aliasName[add["alias"]] = add["index"]
			}
			if rm, ok := action["remove"]; ok {
				delete(f.aliasName, rm["alias"])
			}
		}
		return jsonResponse(200, map[string]any{"acknowledged": true}), nil

	case req.Method == http.MethodPost && path == "/_reindex":
		return jsonResponse(200, map[string]any{"total": 0, "created": 0}), nil

	case req.Method == http.MethodPut && strings.Contains(path, "_settings"):
		idx := strings.TrimSuffix(strings.Trim(path, "/"), "/_settings")
		var body struct {
			Block bool `json:"index.blocks.write"`
		}
		data, _ := io.ReadAll(req.Body)
		json.Unmarshal(data, &body)
		f.blocked[idx] = body.Block
		return jsonResponse(200, map[string]any{"acknowledged": true}), nil

	case req.Method == http.MethodHead:
		idx := strings.Trim(path, "/")
		if f.indices[idx] {
			return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"X-Elastic-Product": []string{"Elasticsearch"}}}, nil
		}
		return &http.Response{StatusCode: 404, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"X-Elastic-Product": []string{"Elasticsearch"}}}, nil

	case req.Method == http.MethodGet && strings.HasPrefix(path, "/_cat/indices"):
		var rows []map[string]string
		for idx := range f.indices {
			rows = append(rows, map[string]string{"index": idx})
		}
		return jsonResponse(200, rows), nil

	case req.Method == http.MethodDelete:
		idx := strings.Trim(path, "/")
		if !f.indices[idx] {
			return jsonResponse(404, map[string]any{}), nil
		}
		delete(f.indices, idx)
		return jsonResponse(200, map[string]any{"acknowledged": true}), nil

	case (req.Method == http.MethodGet || req.Method == http.MethodPost) && strings.HasSuffix(path, "/_count"):
		return jsonResponse(200, map[string]any{"count": 7}), nil

	default:
		f.t.Fatalf("fakeTransport: unhandled request %s %s", req.Method, path)
		return nil, nil
	}
}

func newTestClient(t *testing.T, alias string) (*Client, *fakeTransport) {
	ft := newFakeTransport(t)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{"http://fake"}, Transport: ft})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return &Client{es: es, alias: alias}, ft
}

func TestInitializeCreatesIndexAndBindsAlias(t *testing.T) {
	c, ft := newTestClient(t, "documents")

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if ft.aliasName["documents"] != "documents_v1" {
		t.Fatalf("expected alias bound to v1, got %v", ft.aliasName)
	}
	if !ft.indices["documents_v1"] {
		t.Fatalf("expected documents_v1 to exist")
	}
}

func TestInitializeIsNoOpWhenAliasExists(t *testing.T) {
	c, ft := newTestClient(t, "documents")
	ft.indices["documents_v1"] = true
	ft.aliasName["documents"] = "documents_v1"

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if ft.indices["documents_v2"] {
		t.Fatalf("expected no v2 to be created")
	}
}

func TestMigrateSwapsAliasAndBlocksOldIndex(t *testing.T) {
	c, ft := newTestClient(t, "documents")
	ft.indices["documents_v1"] = true
	ft.aliasName["documents"] = "documents_v1"

	version, err := c.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected version 2, got %d", version)
	}
	if ft.aliasName["documents"] != "documents_v2" {
		t.Fatalf("expected alias swapped to v2, got %v", ft.aliasName)
	}
	if !ft.blocked["documents_v1"] {
		t.Fatalf("expected documents_v1 to be write-blocked")
	}
}

func TestRollbackUnavailableAtVersionOne(t *testing.T) {
	c, ft := newTestClient(t, "documents")
	ft.indices["documents_v1"] = true
	ft.aliasName["documents"] = "documents_v1"

	err := c.Rollback(context.Background())
	if err != ErrRollbackUnavailable {
		t.Fatalf("expected ErrRollbackUnavailable, got %v", err)
	}
}

func TestRollbackRestoresPriorVersion(t *testing.T) {
	c, ft := newTestClient(t, "documents")
	ft.indices["documents_v1"] = true
	ft.indices["documents_v2"] = true
	ft.aliasName["documents"] = "documents_v2"
	ft.blocked["documents_v1"] = true

	if err := c.Rollback(context.Background()); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if ft.aliasName["documents"] != "documents_v1" {
		t.Fatalf("expected alias restored to v1, got %v", ft.aliasName)
	}
	if ft.blocked["documents_v1"] {
		t.Fatalf("expected documents_v1 unblocked")
	}
}

func TestCleanupKeepsOnlyNewestVersions(t *testing.T) {
	c, ft := newTestClient(t, "documents")
	ft.indices["documents_v1"] = true
	ft.indices["documents_v2"] = true
	ft.indices["documents_v3"] = true
	ft.aliasName["documents"] = "documents_v3"

	deleted, err := c.Cleanup(context.Background(), 1)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected 2 deleted, got %v", deleted)
	}
	if !ft.indices["documents_v3"] {
		t.Fatalf("expected documents_v3 to survive cleanup")
	}
}

func TestCleanupCountsFromAliasVersionNotNewestIndex(t *testing.T) {
	c, ft := newTestClient(t, "documents")
	ft.indices["documents_v1"] = true
	ft.indices["documents_v2"] = true
	ft.aliasName["documents"] = "documents_v1"

	deleted, err := c.Cleanup(context.Background(), 1)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(deleted) != 0 {
		t.Fatalf("expected nothing deleted after rollback to v1, got %v", deleted)
	}
	if !ft.indices["documents_v1"] {
		t.Fatalf("alias-bound documents_v1 must survive cleanup")
	}
}

func TestDeleteAllVersionsRemovesEveryIndex(t *testing.T) {
	c, ft := newTestClient(t, "documents")
	ft.indices["documents_v1"] = true
	ft.indices["documents_v2"] = true
	ft.aliasName["documents"] = "documents_v2"

	deleted, err := c.DeleteAllVersions(context.Background())
	if err != nil {
		t.Fatalf("DeleteAllVersions: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected 2 deleted, got %v", deleted)
	}
	if len(ft.indices) != 0 {
		t.Fatalf("expected no indices to survive, got %v", ft.indices)
	}
}

func TestStatusReportsAliasVersionAndCount(t *testing.T) {
	c, ft := newTestClient(t, "documents")
	ft.indices["documents_v1"] = true
	ft.aliasName["documents"] = "documents_v1"

	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.CurrentIndex != "documents_v1" || status.Version != 1 || status.DocumentCount != 7 {
		t.Fatalf("got %+v", status)
	}
}
