package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
)

// SearchParams is the caller-facing query: free text plus structured
// filters. Query is split into an unquoted remainder (fed to multi_match)
// and zero or more quoted phrases (each a phrase-type multi_match filter
// across the same weighted fields).
type SearchParams struct {
	Query      string
	Tag        string
	Folder     string
	YearFrom   *int
	YearTo     *int
	Sort       string // "" or "relevance" (default), "year_asc", "year_desc"
	From, Size int
}

// Hit is a single search result.
type Hit struct {
	DocumentID int64           `json:"-"`
	Score      float64         `json:"_score"`
	Source     IndexedDocument `json:"_source"`
}

// SearchResult is the response to Search.
type SearchResult struct {
	Total int64
	Hits  []Hit
}

// scanQuotedPhrases splits q into an unquoted remainder and the list of
// "quoted" substrings, using a hand-rolled scanner (not a regex) so an
// escaped quote (\") inside a phrase round-trips rather than terminating
// the match early.
func scanQuotedPhrases(q string) (remainder string, phrases []string) {
	var rem strings.Builder
	runes := []rune(q)
	i := 0
	for i < len(runes) {
		if runes[i] != '"' {
			rem.WriteRune(runes[i])
			i++
			continue
		}
		// Found an opening quote; scan to the matching close, honoring \".
		var phrase strings.Builder
		i++
		closed := false
		for i < len(runes) {
			if runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == '"' {
				phrase.WriteRune('"')
				i += 2
				continue
			}
			if runes[i] == '"' {
				closed = true
				i++
				break
			}
			phrase.WriteRune(runes[i])
			i++
		}
		if closed && phrase.Len() > 0 {
			phrases = append(phrases, phrase.String())
		} else if !closed {
			// Unterminated quote: treat the opening quote and everything
			// after it as literal remainder text.
			rem.WriteRune('"')
			rem.WriteString(phrase.String())
		}
	}
	return strings.TrimSpace(rem.String()), phrases
}

// searchFields is the weighted field list both the unquoted remainder's
// multi_match clause and each quoted phrase's multi_match clause search
// across, so a phrase that only appears verbatim in e.g. the title still
// matches rather than being silently scoped to full_text alone.
var searchFields = []string{"title^4", "abstract^3", "keywords^3", "authors^2", "full_text^1"}

func (p SearchParams) buildQuery() map[string]any {
	must := []map[string]any{}
	remainder, phrases := scanQuotedPhrases(p.Query)

	if remainder != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  remainder,
				"type":   "best_fields",
				"fields": searchFields,
			},
		})
	}

	filter := []map[string]any{}
	for _, phrase := range phrases {
		filter = append(filter, map[string]any{
			"multi_match": map[string]any{
				"query":  phrase,
				"type":   "phrase",
				"fields": searchFields,
			},
		})
	}
	if p.Tag != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"tags": p.Tag}})
	}
	if p.Folder != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"folders": p.Folder}})
	}
	if p.YearFrom != nil || p.YearTo != nil {
		rng := map[string]any{}
		if p.YearFrom != nil {
			rng["gte"] = *p.YearFrom
		}
		if p.YearTo != nil {
			rng["lte"] = *p.YearTo
		}
		filter = append(filter, map[string]any{"range": map[string]any{"year": rng}})
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []map[string]any{{"match_all": map[string]any{}}}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]any{"bool": boolQuery}
}

func (p SearchParams) buildSort() []map[string]any {
	switch p.Sort {
	case "year_asc":
		return []map[string]any{{"year": map[string]any{"order": "asc", "missing": "_last"}}}
	case "year_desc":
		return []map[string]any{{"year": map[string]any{"order": "desc", "missing": "_last"}}}
	default:
		return []map[string]any{{"_score": map[string]any{"order": "desc"}}}
	}
}

// Search runs params against the alias and returns scored hits.
func (c *Client) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	size := params.Size
	if size <= 0 {
		size = 20
	}

	body, err := encodeJSON(map[string]any{
		"query": params.buildQuery(),
		"sort":  params.buildSort(),
		"from":  params.From,
		"size":  size,
	})
	if err != nil {
		return SearchResult{}, err
	}

	var raw esSearchResponse
	if err := c.do(ctx, esapi.SearchRequest{Index: []string{c.alias}, Body: body}, &raw); err != nil {
		return SearchResult{}, fmt.Errorf("search: search: %w", err)
	}
	return toSearchResult(raw), nil
}

// HighlightParams extends SearchParams with highlight-specific tuning. A
// caller-supplied override query takes precedence over Params.Query when
// OverrideQuery is non-nil, for callers that already built a bool query
// elsewhere. HighlightQuery, when set, is used as the full_text field's ES
// highlight_query so a caller can request fragments for a different term
// than the one used to select documents, per the CLI's --highlight flag.
type HighlightParams struct {
	Params            SearchParams
	OverrideQuery     map[string]any
	HighlightQuery    map[string]any
	FragmentSize      int
	NumberOfFragments int
}

// HighlightQueryForTerm builds an ES query usable as a full_text field's
// highlight_query, for highlighting a term distinct from the query used to
// select documents.
func HighlightQueryForTerm(term string) map[string]any {
	return map[string]any{"match": map[string]any{"full_text": term}}
}

// HighlightedHit is a search hit with highlighted full_text fragments.
type HighlightedHit struct {
	Hit
	Fragments []string
}

// Highlight runs the same query shape as Search but requests highlighted
// full_text fragments bracketed with ">>>"/"<<<" markers.
func (c *Client) Highlight(ctx context.Context, params HighlightParams) ([]HighlightedHit, error) {
	query := params.OverrideQuery
	if query == nil {
		query = params.Params.buildQuery()
	}

	fragmentSize := params.FragmentSize
	if fragmentSize <= 0 {
		fragmentSize = 150
	}
	numFragments := params.NumberOfFragments
	if numFragments <= 0 {
		numFragments = 3
	}

	size := params.Params.Size
	if size <= 0 {
		size = 20
	}

	fullTextField := map[string]any{}
	if params.HighlightQuery != nil {
		fullTextField["highlight_query"] = params.HighlightQuery
	}

	body, err := encodeJSON(map[string]any{
		"query": query,
		"sort":  params.Params.buildSort(),
		"from":  params.Params.From,
		"size":  size,
		"highlight": map[string]any{
			"pre_tags":            []string{">>>"},
			"post_tags":           []string{"<<<"},
			"fragment_size":       fragmentSize,
			"number_of_fragments": numFragments,
			"fields":              map[string]any{"full_text": fullTextField},
		},
	})
	if err != nil {
		return nil, err
	}

	var raw esSearchResponse
	if err := c.do(ctx, esapi.SearchRequest{Index: []string{c.alias}, Body: body}, &raw); err != nil {
		return nil, fmt.Errorf("search: highlight: %w", err)
	}

	result := toSearchResult(raw)
	out := make([]HighlightedHit, len(result.Hits))
	for i, h := range result.Hits {
		out[i] = HighlightedHit{Hit: h, Fragments: raw.Hits.Hits[i].Highlight.FullText}
	}
	return out, nil
}

// VenueBucket is one entry of a venue-frequency aggregation.
type VenueBucket struct {
	Venue string
	Count int64
}

// venueCacheTTL bounds how long Venues results are served from cache
// before falling back to Elasticsearch; venue distribution changes only
// as fast as new documents are indexed, so a short TTL is enough to take
// the repeated-query load off the cluster without serving stale facets
// for long.
const venueCacheTTL = 30 * time.Second

// Venues aggregates the topN most frequent venue values across the index,
// caching the result in Redis (when a cache is configured) to avoid
// hitting Elasticsearch on every facet-panel render.
func (c *Client) Venues(ctx context.Context, topN int) ([]VenueBucket, error) {
	if topN <= 0 {
		topN = 20
	}

	cacheKey := fmt.Sprintf("search:venues:%s:%d", c.alias, topN)
	if c.cache != nil {
		if buckets, ok := c.readVenueCache(ctx, cacheKey); ok {
			return buckets, nil
		}
	}

	body, err := encodeJSON(map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"venues": map[string]any{
				"terms": map[string]any{"field": "venue", "size": topN},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Aggregations struct {
			Venues struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int64  `json:"doc_count"`
				} `json:"buckets"`
			} `json:"venues"`
		} `json:"aggregations"`
	}
	if err := c.do(ctx, esapi.SearchRequest{Index: []string{c.alias}, Body: body}, &raw); err != nil {
		return nil, fmt.Errorf("search: venues aggregation: %w", err)
	}

	buckets := make([]VenueBucket, 0, len(raw.Aggregations.Venues.Buckets))
	for _, b := range raw.Aggregations.Venues.Buckets {
		buckets = append(buckets, VenueBucket{Venue: b.Key, Count: b.DocCount})
	}

	if c.cache != nil {
		c.writeVenueCache(ctx, cacheKey, buckets)
	}
	return buckets, nil
}

// esSearchResponse is the subset of the Elasticsearch _search response
// body used by Search and Highlight.
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID        string          `json:"_id"`
			Score     float64         `json:"_score"`
			Source    IndexedDocument `json:"_source"`
			Highlight struct {
				FullText []string `json:"full_text"`
			} `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

func toSearchResult(raw esSearchResponse) SearchResult {
	hits := make([]Hit, len(raw.Hits.Hits))
	for i, h := range raw.Hits.Hits {
		id, _ := strconv.ParseInt(h.ID, 10, 64)
		hits[i] = Hit{DocumentID: id, Score: h.Score, Source: h.Source}
	}
	return SearchResult{Total: raw.Hits.Total.Value, Hits: hits}
}

// redisCache is the minimal subset of *redis.Client Venues depends on.
type redisCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
}
