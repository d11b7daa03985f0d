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

// academicAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var academicAPIBase = "https://api.openalex.org/works"

// AcademicBackend queries the OpenAlex scholarly index. Email, when set,
// joins the polite pool via the mailto parameter.
type AcademicBackend struct {
	Client *http.Client
	Email  string
}

// Name returns the backend identifier.
func (b *AcademicBackend) Name() string { return "academic" }

// Category reports the source category this backend serves.
func (b *AcademicBackend) Category() types.SourceCategory { return types.CategoryAcademic }

// Priority reports the backend's baseline priority.
func (b *AcademicBackend) Priority() int { return 8 }

// Search queries OpenAlex and returns scholarly results with citation counts.
func (b *AcademicBackend) Search(ctx context.Context, query types.SearchQuery, cfg types.SourcesConfig) ([]types.SourceResult, error) {
	if query.Text == "" {
		return nil, fmt.Errorf("empty academic query")
	}

	perPage := query.MaxResults
	if perPage <= 0 {
		perPage = 10
	}

	params := url.Values{}
	params.Set("search", query.Text)
	params.Set("per-page", strconv.Itoa(perPage))
	params.Set("sort", "relevance_score:desc")
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		academicAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var payload openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	total := len(payload.Results)
	var results []types.SourceResult
	for i, work := range payload.Results {
		resultURL := work.PrimaryLocation.LandingPageURL
		if resultURL == "" {
			resultURL = work.ID
		}
		if resultURL == "" {
			continue
		}

		r := types.SourceResult{
			URL:            resultURL,
			Title:          work.DisplayName,
			RelevanceScore: positionRelevance(i, total),
			Category:       types.CategoryAcademic,
			CitationCount:  work.CitedByCount,
		}
		if len(work.Authorships) > 0 {
			r.Author = work.Authorships[0].Author.DisplayName
		}
		if work.PublicationDate != "" {
			if t, parseErr := time.Parse("2006-01-02", work.PublicationDate); parseErr == nil {
				r.PublishedDate = t
			}
		}
		if work.Abstract() != "" {
			r.Snippet = work.Abstract()
		}
		results = append(results, r)
	}
	return results, nil
}

// OpenAlex JSON structures, trimmed to the fields the engine uses.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string `json:"id"`
	DisplayName     string `json:"display_name"`
	PublicationDate string `json:"publication_date"`
	CitedByCount    int    `json:"cited_by_count"`
	PrimaryLocation struct {
		LandingPageURL string `json:"landing_page_url"`
	} `json:"primary_location"`
	Authorships []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`

	abstract string
}

// Abstract reconstructs the abstract text from OpenAlex's inverted index.
func (w *openAlexWork) Abstract() string {
	if w.abstract != "" || len(w.AbstractInvertedIndex) == 0 {
		return w.abstract
	}

	maxPos := -1
	for _, positions := range w.AbstractInvertedIndex {
		for _, p := range positions {
			if p > maxPos {
				maxPos = p
			}
		}
	}
	words := make([]string, maxPos+1)
	for word, positions := range w.AbstractInvertedIndex {
		for _, p := range positions {
			words[p] = word
		}
	}

	var sb []byte
	for i, word := range words {
		if word == "" {
			continue
		}
		if i > 0 && len(sb) > 0 {
			sb = append(sb, ' ')
		}
		sb = append(sb, word...)
	}
	w.abstract = string(sb)
	return w.abstract
}
