// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// webSearchBase is the web search JSON endpoint. Declared as a var so tests
// can substitute an httptest server.
var webSearchBase = "https://search.meshintel.dev/search"

// WebBackend queries a SearxNG-compatible web search API.
type WebBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *WebBackend) Name() string { return "web" }

// Category reports the source category this backend serves.
func (b *WebBackend) Category() types.SourceCategory { return types.CategoryWeb }

// Priority reports the backend's baseline priority.
func (b *WebBackend) Priority() int { return 5 }

// Search queries the web search API and returns relevance-scored results.
func (b *WebBackend) Search(ctx context.Context, query types.SearchQuery, cfg types.SourcesConfig) ([]types.SourceResult, error) {
	if query.Text == "" {
		return nil, fmt.Errorf("empty web search query")
	}

	params := url.Values{}
	params.Set("q", query.Text)
	params.Set("format", "json")
	if query.MaxResults > 0 {
		params.Set("max_results", strconv.Itoa(query.MaxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		webSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if cfg.SearchAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.SearchAPIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("web search API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search API returned HTTP %d", resp.StatusCode)
	}

	var payload webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing web search response: %w", err)
	}

	total := len(payload.Results)
	var results []types.SourceResult
	for i, item := range payload.Results {
		if item.URL == "" {
			continue
		}
		r := types.SourceResult{
			URL:      item.URL,
			Title:    item.Title,
			Snippet:  item.Content,
			Author:   item.Author,
			Category: types.CategoryWeb,
		}
		if item.Score > 0 {
			r.RelevanceScore = clampRelevance(item.Score)
		} else {
			r.RelevanceScore = positionRelevance(i, total)
		}
		if item.PublishedDate != "" {
			if t, parseErr := time.Parse(time.RFC3339, item.PublishedDate); parseErr == nil {
				r.PublishedDate = t
			}
		}
		results = append(results, r)
	}
	return results, nil
}

type webSearchResponse struct {
	Results []webSearchItem `json:"results"`
}

type webSearchItem struct {
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Author        string  `json:"author"`
	PublishedDate string  `json:"publishedDate"`
	Score         float64 `json:"score"`
}

func clampRelevance(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}
