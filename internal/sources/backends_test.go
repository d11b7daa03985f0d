// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deep-research/pkg/types"
)

func swapBase(t *testing.T, base *string, url string) {
	t.Helper()
	old := *base
	*base = url
	t.Cleanup(func() { *base = old })
}

func TestWebBackendSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "solar power", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"url": "https://example.com/solar", "title": "Solar", "content": "Solar is growing.", "score": 0.95, "publishedDate": "2025-06-01T00:00:00Z"},
				{"url": "https://example.org/pv", "title": "PV", "content": "Photovoltaics."}
			]
		}`))
	}))
	defer ts.Close()
	swapBase(t, &webSearchBase, ts.URL)

	b := &WebBackend{Client: ts.Client()}
	got, err := b.Search(context.Background(),
		types.SearchQuery{Text: "solar power", MaxResults: 5},
		types.SourcesConfig{SearchAPIKey: "sk-test"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "https://example.com/solar", got[0].URL)
	assert.Equal(t, 0.95, got[0].RelevanceScore)
	assert.Equal(t, 2025, got[0].PublishedDate.Year())
	assert.Equal(t, types.CategoryWeb, got[0].Category)
	// No API score: falls back to position-based relevance.
	assert.InDelta(t, 0.1, got[1].RelevanceScore, 1e-9)
}

func TestWebBackendHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()
	swapBase(t, &webSearchBase, ts.URL)

	b := &WebBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), types.SearchQuery{Text: "x"}, types.SourcesConfig{})
	assert.ErrorContains(t, err, "HTTP 502")
}

func TestWebBackendEmptyQuery(t *testing.T) {
	b := &WebBackend{Client: http.DefaultClient}
	_, err := b.Search(context.Background(), types.SearchQuery{}, types.SourcesConfig{})
	assert.Error(t, err)
}

func TestWikipediaBackendSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "query", r.URL.Query().Get("action"))
		assert.Equal(t, "ocean acidification", r.URL.Query().Get("srsearch"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"query": {"search": [
				{"title": "Ocean acidification", "snippet": "Falling <span class=\"searchmatch\">pH</span> of oceans.", "timestamp": "2026-01-15T10:00:00Z"},
				{"title": "Carbon cycle", "snippet": "The carbon cycle.", "timestamp": "2025-11-02T08:30:00Z"}
			]}
		}`))
	}))
	defer ts.Close()
	swapBase(t, &wikipediaAPIBase, ts.URL)

	b := &WikipediaBackend{Client: ts.Client()}
	got, err := b.Search(context.Background(),
		types.SearchQuery{Text: "ocean acidification", MaxResults: 5},
		types.SourcesConfig{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "https://en.wikipedia.org/wiki/Ocean_acidification", got[0].URL)
	assert.Equal(t, "Falling pH of oceans.", got[0].Snippet, "markup stripped")
	assert.Equal(t, types.CategoryReference, got[0].Category)
	assert.Equal(t, 1.0, got[0].RelevanceScore)
	assert.False(t, got[0].PublishedDate.IsZero())
}

func TestWikipediaBackendHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	swapBase(t, &wikipediaAPIBase, ts.URL)

	b := &WikipediaBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), types.SearchQuery{Text: "x"}, types.SourcesConfig{})
	assert.ErrorContains(t, err, "HTTP 503")
}

func TestAcademicBackendSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fusion energy", r.URL.Query().Get("search"))
		assert.Equal(t, "research@meshintel.dev", r.URL.Query().Get("mailto"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{
					"id": "https://openalex.org/W1",
					"display_name": "Advances in magnetic confinement",
					"publication_date": "2024-03-18",
					"cited_by_count": 42,
					"primary_location": {"landing_page_url": "https://doi.org/10.1234/fusion"},
					"authorships": [{"author": {"display_name": "R. Chen"}}],
					"abstract_inverted_index": {"Fusion": [0], "progress": [1], "continues.": [2]}
				},
				{
					"id": "https://openalex.org/W2",
					"display_name": "Tokamak review",
					"publication_date": "2023-07-01",
					"cited_by_count": 7,
					"primary_location": {}
				}
			]
		}`))
	}))
	defer ts.Close()
	swapBase(t, &academicAPIBase, ts.URL)

	b := &AcademicBackend{Client: ts.Client(), Email: "research@meshintel.dev"}
	got, err := b.Search(context.Background(),
		types.SearchQuery{Text: "fusion energy", MaxResults: 5},
		types.SourcesConfig{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "https://doi.org/10.1234/fusion", got[0].URL)
	assert.Equal(t, "R. Chen", got[0].Author)
	assert.Equal(t, 42, got[0].CitationCount)
	assert.Equal(t, "Fusion progress continues.", got[0].Snippet)
	assert.Equal(t, types.CategoryAcademic, got[0].Category)
	assert.Equal(t, 2024, got[0].PublishedDate.Year())

	// Missing landing page falls back to the OpenAlex id URL.
	assert.Equal(t, "https://openalex.org/W2", got[1].URL)
}

func TestAcademicBackendHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()
	swapBase(t, &academicAPIBase, ts.URL)

	b := &AcademicBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), types.SearchQuery{Text: "x"}, types.SourcesConfig{})
	assert.ErrorContains(t, err, "HTTP 403")
}
