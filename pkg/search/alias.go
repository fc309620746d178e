package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ErrRollbackUnavailable is returned by Rollback when there is no prior
// index version to roll back to, or it no longer exists.
var ErrRollbackUnavailable = errors.New("search: rollback unavailable")

// ErrAliasNotFound is returned by operations that require the alias to
// already be bound to a physical index; Initialize creates that binding.
var ErrAliasNotFound = errors.New("search: alias not found")

// IndexStatus reports the current state of the alias-to-index binding.
type IndexStatus struct {
	Alias         string
	CurrentIndex  string
	Version       int
	DocumentCount int64
	AllVersions   []string
}

// versionedName returns "<alias>_v<n>".
func (c *Client) versionedName(n int) string {
	return fmt.Sprintf("%s_v%d", c.alias, n)
}

// parseVersion extracts the trailing integer from "<alias>_v<n>", or 0 if
// name doesn't match that shape.
func (c *Client) parseVersion(name string) int {
	prefix := c.alias + "_v"
	if !strings.HasPrefix(name, prefix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil {
		return 0
	}
	return n
}

// currentIndex resolves the alias to its bound physical index via
// GET <alias>, returning ("", nil) if the alias does not exist.
func (c *Client) currentIndex(ctx context.Context) (string, error) {
	res, err := (esapi.IndicesGetAliasRequest{Name: []string{c.alias}}).Do(ctx, c.es)
	if err != nil {
		return "", fmt.Errorf("search: resolve alias: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return "", nil
	}
	if res.IsError() {
		return "", fmt.Errorf("search: resolve alias: status %s", res.Status())
	}

	var raw map[string]any
	if err := decodeBody(res, &raw); err != nil {
		return "", err
	}
	for name := range raw {
		return name, nil
	}
	return "", nil
}

// Initialize creates the first physical index and binds the alias to it,
// if the alias does not already exist. A no-op otherwise.
func (c *Client) Initialize(ctx context.Context) error {
	cur, err := c.currentIndex(ctx)
	if err != nil {
		return err
	}
	if cur != "" {
		return nil
	}

	name := c.versionedName(1)
	body, err := encodeJSON(mapping)
	if err != nil {
		return err
	}
	if err := c.do(ctx, esapi.IndicesCreateRequest{Index: name, Body: body}, nil); err != nil {
		return fmt.Errorf("search: create index %s: %w", name, err)
	}

	actions := map[string]any{"actions": []map[string]any{
		{"add": map[string]any{"index": name, "alias": c.alias}},
	}}
	actionsBody, err := encodeJSON(actions)
	if err != nil {
		return err
	}
	if err := c.do(ctx, esapi.IndicesUpdateAliasesRequest{Body: actionsBody}, nil); err != nil {
		return fmt.Errorf("search: bind alias %s to %s: %w", c.alias, name, err)
	}
	return nil
}

// Migrate creates the next physical index with the current mapping,
// reindexes every document from the current index into it, atomically
// swaps the alias, and write-blocks the now-superseded index. Returns the
// new version number.
func (c *Client) Migrate(ctx context.Context) (int, error) {
	cur, err := c.currentIndex(ctx)
	if err != nil {
		return 0, err
	}
	if cur == "" {
		return 0, fmt.Errorf("migrate %s: %w", c.alias, ErrAliasNotFound)
	}
	curVersion := c.parseVersion(cur)
	next := c.versionedName(curVersion + 1)

	body, err := encodeJSON(mapping)
	if err != nil {
		return 0, err
	}
	if err := c.do(ctx, esapi.IndicesCreateRequest{Index: next, Body: body}, nil); err != nil {
		return 0, fmt.Errorf("search: create index %s: %w", next, err)
	}

	reindexBody, err := encodeJSON(map[string]any{
		"source": map[string]any{"index": cur},
		"dest":   map[string]any{"index": next},
	})
	if err != nil {
		return 0, err
	}
	waitForCompletion := true
	if err := c.do(ctx, esapi.ReindexRequest{Body: reindexBody, WaitForCompletion: &waitForCompletion}, nil); err != nil {
		return 0, fmt.Errorf("search: reindex %s -> %s: %w", cur, next, err)
	}

	actions := map[string]any{"actions": []map[string]any{
		{"remove": map[string]any{"index": cur, "alias": c.alias}},
		{"add": map[string]any{"index": next, "alias": c.alias}},
	}}
	actionsBody, err := encodeJSON(actions)
	if err != nil {
		return 0, err
	}
	if err := c.do(ctx, esapi.IndicesUpdateAliasesRequest{Body: actionsBody}, nil); err != nil {
		return 0, fmt.Errorf("search: swap alias from %s to %s: %w", cur, next, err)
	}

	blockBody, err := encodeJSON(map[string]any{"index.blocks.write": true})
	if err != nil {
		return 0, err
	}
	if err := c.do(ctx, esapi.IndicesPutSettingsRequest{Index: []string{cur}, Body: blockBody}, nil); err != nil {
		return 0, fmt.Errorf("search: write-block %s: %w", cur, err)
	}

	return curVersion + 1, nil
}

// Rollback reverses the most recent Migrate: it requires the prior
// versioned index to still exist, unblocks writes on it, and swaps the
// alias back.
func (c *Client) Rollback(ctx context.Context) error {
	cur, err := c.currentIndex(ctx)
	if err != nil {
		return err
	}
	curVersion := c.parseVersion(cur)
	if curVersion <= 1 {
		return ErrRollbackUnavailable
	}
	prev := c.versionedName(curVersion - 1)

	existsRes, err := (esapi.IndicesExistsRequest{Index: []string{prev}}).Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("search: check %s exists: %w", prev, err)
	}
	defer existsRes.Body.Close()
	if existsRes.StatusCode == 404 {
		return ErrRollbackUnavailable
	}

	unblockBody, err := encodeJSON(map[string]any{"index.blocks.write": false})
	if err != nil {
		return err
	}
	if err := c.do(ctx, esapi.IndicesPutSettingsRequest{Index: []string{prev}, Body: unblockBody}, nil); err != nil {
		return fmt.Errorf("search: unblock %s: %w", prev, err)
	}

	actions := map[string]any{"actions": []map[string]any{
		{"remove": map[string]any{"index": cur, "alias": c.alias}},
		{"add": map[string]any{"index": prev, "alias": c.alias}},
	}}
	actionsBody, err := encodeJSON(actions)
	if err != nil {
		return err
	}
	if err := c.do(ctx, esapi.IndicesUpdateAliasesRequest{Body: actionsBody}, nil); err != nil {
		return fmt.Errorf("search: swap alias from %s to %s: %w", cur, prev, err)
	}
	return nil
}

// Cleanup deletes versioned indices older than the latest keep, counted
// from the version the alias is currently bound to — so an index the
// alias was rolled back onto is never deleted out from under it. A 404 on
// an index that vanished between listing and deletion is tolerated.
func (c *Client) Cleanup(ctx context.Context, keep int) ([]string, error) {
	cur, err := c.currentIndex(ctx)
	if err != nil {
		return nil, err
	}
	curVersion := c.parseVersion(cur)
	if curVersion == 0 {
		return nil, nil
	}
	if keep < 1 {
		keep = 1
	}

	versions, err := c.listVersions(ctx)
	if err != nil {
		return nil, err
	}

	var toDelete []string
	for _, name := range versions {
		if v := c.parseVersion(name); v >= 1 && v <= curVersion-keep {
			toDelete = append(toDelete, name)
		}
	}

	var deleted []string
	for _, name := range toDelete {
		res, err := (esapi.IndicesDeleteRequest{Index: []string{name}}).Do(ctx, c.es)
		if err != nil {
			return deleted, fmt.Errorf("search: delete %s: %w", name, err)
		}
		res.Body.Close()
		if res.IsError() && res.StatusCode != 404 {
			return deleted, fmt.Errorf("search: delete %s: status %s", name, res.Status())
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}

// DeleteAllVersions deletes every versioned physical index (the alias
// binding goes with its index). Used by a full rebuild, where the next
// Initialize starts over at version 1.
func (c *Client) DeleteAllVersions(ctx context.Context) ([]string, error) {
	versions, err := c.listVersions(ctx)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, name := range versions {
		res, err := (esapi.IndicesDeleteRequest{Index: []string{name}}).Do(ctx, c.es)
		if err != nil {
			return deleted, fmt.Errorf("search: delete %s: %w", name, err)
		}
		res.Body.Close()
		if res.IsError() && res.StatusCode != 404 {
			return deleted, fmt.Errorf("search: delete %s: status %s", name, res.Status())
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}

// Status reports the alias's current binding, version, document count, and
// every discovered versioned index, sorted oldest-to-newest.
func (c *Client) Status(ctx context.Context) (IndexStatus, error) {
	cur, err := c.currentIndex(ctx)
	if err != nil {
		return IndexStatus{}, err
	}
	versions, err := c.listVersions(ctx)
	if err != nil {
		return IndexStatus{}, err
	}

	status := IndexStatus{
		Alias:        c.alias,
		CurrentIndex: cur,
		Version:      c.parseVersion(cur),
		AllVersions:  versions,
	}

	if cur != "" {
		var count struct {
			Count int64 `json:"count"`
		}
		if err := c.do(ctx, esapi.CountRequest{Index: []string{cur}}, &count); err != nil {
			return IndexStatus{}, fmt.Errorf("search: count %s: %w", cur, err)
		}
		status.DocumentCount = count.Count
	}
	return status, nil
}

// listVersions lists every "<alias>_v*" index via _cat/indices, sorted by
// version ascending.
func (c *Client) listVersions(ctx context.Context) ([]string, error) {
	res, err := (esapi.CatIndicesRequest{Index: []string{c.alias + "_v*"}, Format: "json"}).Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("search: list indices: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("search: list indices: status %s", res.Status())
	}

	var rows []struct {
		Index string `json:"index"`
	}
	if err := decodeBody(res, &rows); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Index)
	}
	sort.Slice(names, func(i, j int) bool { return c.parseVersion(names[i]) < c.parseVersion(names[j]) })
	return names, nil
}
