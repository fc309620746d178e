// Package search derives an indexable view of each document from the
// catalog and artifact store, and manages the Elasticsearch index that
// serves queries through a stable alias. Writes are idempotent per
// document id; per-document errors are logged and counted rather than
// retried by the caller.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/version"
)

// Client wraps the Elasticsearch driver plus the stable alias name queries
// and indexing operations target. Callers never address a physical index
// directly; Initialize/Migrate/Rollback manage the alias-to-index binding.
type Client struct {
	es    *elasticsearch.Client
	alias string
	cache redisCache
}

// WithCache attaches a Redis-backed cache to the Client, used by Venues to
// avoid re-aggregating the full index on every facet-panel render. Passing
// nil disables caching (the default).
func (c *Client) WithCache(cache redisCache) *Client {
	c.cache = cache
	return c
}

// Config configures a Client.
type Config struct {
	// Addresses is the list of Elasticsearch node URLs.
	Addresses []string
	// Alias is the stable index name queries and writes target.
	Alias    string
	Username string
	Password string
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Alias == "" {
		return nil, fmt.Errorf("search: alias is required")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Header:    http.Header{"User-Agent": []string{version.UserAgent()}},
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}
	return &Client{es: es, alias: cfg.Alias}, nil
}

// Alias returns the stable index name this client queries and writes.
func (c *Client) Alias() string { return c.alias }

// do runs req, decodes a non-error response body into out (if out is
// non-nil), and turns a non-2xx response into an error carrying the
// response body so failures are diagnosable without a second round trip.
func (c *Client) do(ctx context.Context, req esapi.Request, out any) error {
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("search: request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("search: read response: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("search: elasticsearch error (status %s): %s", res.Status(), string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("search: decode response: %w", err)
		}
	}
	return nil
}

func encodeJSON(v any) (*bytes.Reader, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("search: encode body: %w", err)
	}
	return bytes.NewReader(buf), nil
}

// decodeBody reads and JSON-decodes an esapi.Response body into out. Used
// by callers in alias.go that inspect res.StatusCode themselves before
// deciding whether to decode (e.g. treating 404 as "not found" rather than
// an error).
func decodeBody(res *esapi.Response, out any) error {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("search: read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("search: decode response: %w", err)
	}
	return nil
}
