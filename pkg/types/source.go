// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the deep-research pipeline:
// source metadata and search results, quality scores, citations and claims,
// research plans, findings, and stage configuration.
package types

import "time"

// SourceCategory identifies a class of source backend a sub-query may target.
type SourceCategory string

const (
	CategoryWeb        SourceCategory = "web"
	CategoryAcademic   SourceCategory = "academic"
	CategoryNews       SourceCategory = "news"
	CategoryGovernment SourceCategory = "government"
	CategoryReference  SourceCategory = "reference"
	CategoryTechnical  SourceCategory = "technical"
)

// SearchQuery is the request handed to a SourceManager for one sub-query.
type SearchQuery struct {
	// Text is the search text.
	Text string `json:"text" yaml:"text"`

	// MaxResults caps the number of results per backend.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Categories restricts which backend categories are queried.
	// Empty means all configured backends.
	Categories []SourceCategory `json:"categories,omitempty" yaml:"categories,omitempty"`

	// MinPriority filters out backends below this priority (0-10).
	MinPriority int `json:"min_priority" yaml:"min_priority"`
}

// SourceResult is one raw result returned by a source backend. It carries the
// minimum fields the engine needs; backends may leave optional fields zero.
type SourceResult struct {
	// URL is the result location. Required.
	URL string `json:"url" yaml:"url"`

	// Title is the result title as returned by the backend.
	Title string `json:"title" yaml:"title"`

	// Snippet is a short excerpt of the result content.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Author is the byline, when the backend provides one.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// PublishedDate is the publication date, when known.
	PublishedDate time.Time `json:"published_date,omitzero" yaml:"published_date,omitempty"`

	// RelevanceScore is the backend's own relevance estimate in [0,1].
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// CitationCount is how often the result is cited, for backends that
	// index scholarly work. Zero when the backend does not track it.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Category identifies which backend category produced this result.
	Category SourceCategory `json:"category,omitempty" yaml:"category,omitempty"`
}

// SourceMetadata is the immutable input to quality scoring, constructed once
// per result. Optional fields left at their zero value lower the score
// confidence rather than causing errors.
type SourceMetadata struct {
	// URL is the full source URL.
	URL string `json:"url" yaml:"url"`

	// Domain is the hostname with any leading "www." stripped. When empty
	// the scorer derives it from URL.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Title is the document title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Author is the document byline.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// PublishedDate is when the document was first published.
	PublishedDate time.Time `json:"published_date,omitzero" yaml:"published_date,omitempty"`

	// LastUpdated is when the document was last revised.
	LastUpdated time.Time `json:"last_updated,omitzero" yaml:"last_updated,omitempty"`

	// CitationCount is how many times the document is cited elsewhere.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// Backlinks is the number of inbound links to the document.
	Backlinks int `json:"backlinks" yaml:"backlinks"`

	// PageRank is a 0-10 link-authority estimate.
	PageRank float64 `json:"page_rank" yaml:"page_rank"`

	// IsPaywalled reports whether the content sits behind a paywall.
	IsPaywalled bool `json:"is_paywalled" yaml:"is_paywalled"`

	// HasReferences reports whether the document cites its own sources.
	HasReferences bool `json:"has_references" yaml:"has_references"`

	// WordCount is the document length in words, 0 when unknown.
	WordCount int `json:"word_count" yaml:"word_count"`

	// Language is the ISO 639-1 content language code (e.g. "en").
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}
