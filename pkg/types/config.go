// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with requests
	// (e.g. "deep-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// QualityWeights holds the blend weights for the five quality sub-scores.
// Weights are used as given; they are intended to sum to 1.0 but this is not
// enforced.
type QualityWeights struct {
	Type      float64 `json:"type" yaml:"type"`
	Domain    float64 `json:"domain" yaml:"domain"`
	Freshness float64 `json:"freshness" yaml:"freshness"`
	Authority float64 `json:"authority" yaml:"authority"`
	Content   float64 `json:"content" yaml:"content"`
}

// DefaultQualityWeights returns the standard sub-score blend.
func DefaultQualityWeights() QualityWeights {
	return QualityWeights{
		Type:      0.30,
		Domain:    0.25,
		Freshness: 0.15,
		Authority: 0.15,
		Content:   0.15,
	}
}

// QualityConfig holds settings for the source quality scorer.
type QualityConfig struct {
	// Weights overrides the sub-score blend; zero-value means defaults.
	Weights QualityWeights `json:"weights" yaml:"weights"`

	// FreshnessHalfLife is the age at which half the freshness penalty
	// applies (default 365 days).
	FreshnessHalfLife time.Duration `json:"freshness_half_life" yaml:"freshness_half_life"`

	// FreshnessMaxPenalty is the asymptotic freshness deduction (default 30).
	FreshnessMaxPenalty float64 `json:"freshness_max_penalty" yaml:"freshness_max_penalty"`

	// CustomReputations is merged over the built-in domain table at
	// construction time.
	CustomReputations []DomainReputation `json:"custom_reputations,omitempty" yaml:"custom_reputations,omitempty"`
}

// TrackerConfig holds settings for the citation tracker.
type TrackerConfig struct {
	// MinQualityScore rejects sources scoring below it (default 0, accept all).
	MinQualityScore float64 `json:"min_quality_score" yaml:"min_quality_score"`

	// MinCrossRefs is the number of quality cross-references needed for a
	// citation to verify (default 2).
	MinCrossRefs int `json:"min_cross_refs" yaml:"min_cross_refs"`

	// EnableAutoVerification re-evaluates citation status on registration
	// and after each cross-reference batch.
	EnableAutoVerification bool `json:"enable_auto_verification" yaml:"enable_auto_verification"`
}

// OrchestratorConfig holds settings for the research orchestrator.
type OrchestratorConfig struct {
	// MaxConcurrentSubQueries bounds in-flight sub-queries within a phase
	// (default 3).
	MaxConcurrentSubQueries int `json:"max_concurrent_sub_queries" yaml:"max_concurrent_sub_queries"`

	// EnableCrossReferencing runs citation cross-referencing during
	// aggregation.
	EnableCrossReferencing bool `json:"enable_cross_referencing" yaml:"enable_cross_referencing"`
}

// SourcesConfig holds settings for the bundled source backends.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults caps results per backend per sub-query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableWeb controls the web search backend.
	EnableWeb bool `json:"enable_web" yaml:"enable_web"`

	// EnableWikipedia controls the Wikipedia backend.
	EnableWikipedia bool `json:"enable_wikipedia" yaml:"enable_wikipedia"`

	// EnableAcademic controls the academic index backend.
	EnableAcademic bool `json:"enable_academic" yaml:"enable_academic"`

	// SearchAPIKey authenticates the web search backend, when required.
	SearchAPIKey string `json:"search_api_key,omitempty" yaml:"search_api_key,omitempty"`

	// ContactEmail is sent to polite-pool APIs that request one.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
}

// StoreConfig holds settings for the session archive.
type StoreConfig struct {
	// DataDir is the directory holding the archive database (default
	// "sessions/").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default cap for archive queries (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all stage configurations for the engine.
type Config struct {
	Quality      QualityConfig      `json:"quality" yaml:"quality"`
	Tracker      TrackerConfig      `json:"tracker" yaml:"tracker"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
	Sources      SourcesConfig      `json:"sources" yaml:"sources"`
	Store        StoreConfig        `json:"store" yaml:"store"`
}
