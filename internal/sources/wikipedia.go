// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// wikipediaAPIBase is the MediaWiki search endpoint. Declared as a var so
// tests can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"

// wikipediaArticleBase prefixes article URLs built from search hits.
var wikipediaArticleBase = "https://en.wikipedia.org/wiki/"

// searchmatchRe strips the <span class="searchmatch"> markup MediaWiki
// embeds in snippets.
var searchmatchRe = regexp.MustCompile(`<[^>]+>`)

// WikipediaBackend queries the MediaWiki search API.
type WikipediaBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *WikipediaBackend) Name() string { return "wikipedia" }

// Category reports the source category this backend serves.
func (b *WikipediaBackend) Category() types.SourceCategory { return types.CategoryReference }

// Priority reports the backend's baseline priority.
func (b *WikipediaBackend) Priority() int { return 6 }

// Search queries the MediaWiki search API and returns article results.
func (b *WikipediaBackend) Search(ctx context.Context, query types.SearchQuery, cfg types.SourcesConfig) ([]types.SourceResult, error) {
	if query.Text == "" {
		return nil, fmt.Errorf("empty wikipedia query")
	}

	limit := query.MaxResults
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query.Text)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		wikipediaAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("wikipedia API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia API returned HTTP %d", resp.StatusCode)
	}

	var payload wikipediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing wikipedia response: %w", err)
	}

	total := len(payload.Query.Search)
	var results []types.SourceResult
	for i, hit := range payload.Query.Search {
		if hit.Title == "" {
			continue
		}
		r := types.SourceResult{
			URL:            wikipediaArticleBase + url.PathEscape(strings.ReplaceAll(hit.Title, " ", "_")),
			Title:          hit.Title,
			Snippet:        searchmatchRe.ReplaceAllString(hit.Snippet, ""),
			RelevanceScore: positionRelevance(i, total),
			Category:       types.CategoryReference,
		}
		// MediaWiki timestamps are last-edit times, which the scorer
		// treats as the update date for freshness.
		if t, parseErr := time.Parse(time.RFC3339, hit.Timestamp); parseErr == nil {
			r.PublishedDate = t
		}
		results = append(results, r)
	}
	return results, nil
}

type wikipediaResponse struct {
	Query struct {
		Search []wikipediaHit `json:"search"`
	} `json:"query"`
}

type wikipediaHit struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Timestamp string `json:"timestamp"`
}
