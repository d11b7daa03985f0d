// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceType classifies a source by the kind of publisher behind it.
type SourceType string

const (
	SourceAcademic      SourceType = "academic"
	SourceGovernment    SourceType = "government"
	SourceInstitutional SourceType = "institutional"
	SourceNewsTier1     SourceType = "news_tier1"
	SourceNewsTier2     SourceType = "news_tier2"
	SourceEncyclopedia  SourceType = "encyclopedia"
	SourceTechnicalDocs SourceType = "technical_docs"
	SourceCorporate     SourceType = "corporate"
	SourceForum         SourceType = "forum"
	SourceSocialMedia   SourceType = "social_media"
	SourceBlog          SourceType = "blog"
	SourceUnknown       SourceType = "unknown"
)

// TrustLevel is a coarse reliability label attached to a domain reputation.
type TrustLevel string

const (
	TrustHigh     TrustLevel = "high"
	TrustMedium   TrustLevel = "medium"
	TrustLow      TrustLevel = "low"
	TrustUnverified TrustLevel = "unverified"
)

// DomainReputation is one entry of the static domain reputation table.
// Entries are read-only reference data; callers may register additional
// entries at scorer construction or at runtime.
type DomainReputation struct {
	// Domain is the bare hostname the entry applies to (no scheme, no www).
	Domain string `json:"domain" yaml:"domain"`

	// Type is the publisher classification for the domain.
	Type SourceType `json:"type" yaml:"type"`

	// BaseScore is the domain quality baseline in [0,100].
	BaseScore float64 `json:"base_score" yaml:"base_score"`

	// Tier groups domains into reliability bands 1 (best) through 3.
	Tier int `json:"tier" yaml:"tier"`

	// Trust is the coarse trust label.
	Trust TrustLevel `json:"trust" yaml:"trust"`
}

// QualityFactor is one component of a quality score with its contribution
// and a human-readable reason.
type QualityFactor struct {
	// Name identifies the factor: type, domain, freshness, authority, content.
	Name string `json:"name" yaml:"name"`

	// Score is the factor's raw sub-score in [0,100].
	Score float64 `json:"score" yaml:"score"`

	// Weight is the factor's share of the overall blend.
	Weight float64 `json:"weight" yaml:"weight"`

	// Reason explains how the sub-score was derived.
	Reason string `json:"reason" yaml:"reason"`
}

// QualityScore is the weighted 0-100 composite for one source, with the
// per-factor breakdown and a confidence reflecting metadata completeness.
// Invariant: Overall equals the weighted sum of factor scores clamped to
// [0,100].
type QualityScore struct {
	// Overall is the blended score in [0,100].
	Overall float64 `json:"overall" yaml:"overall"`

	// Type is the source classification used for the type sub-score.
	Type SourceType `json:"type" yaml:"type"`

	// Factors is the per-factor breakdown, in blend order.
	Factors []QualityFactor `json:"factors" yaml:"factors"`

	// Confidence in [0,1] reflects how much metadata backed the score.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
