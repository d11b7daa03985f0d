// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// VerificationStatus labels the corroboration tier of a citation or claim.
type VerificationStatus string

const (
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationPartial    VerificationStatus = "partially_verified"
	VerificationUnverified VerificationStatus = "unverified"
	VerificationDisputed   VerificationStatus = "disputed"
)

// Citation is a scored, URL-deduplicated reference to a source. A citation is
// created once per distinct URL and mutated in place as claims link to it and
// cross-references are discovered.
type Citation struct {
	// ID is the citation identifier.
	ID string `json:"id" yaml:"id"`

	// URL is the exact source URL; it is the registry's unique key.
	URL string `json:"url" yaml:"url"`

	// Title is the source title.
	Title string `json:"title" yaml:"title"`

	// Author is the source byline, when known.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// PublishedDate is the source publication date, when known.
	PublishedDate time.Time `json:"published_date,omitzero" yaml:"published_date,omitempty"`

	// AccessedAt is when the citation was registered.
	AccessedAt time.Time `json:"accessed_at" yaml:"accessed_at"`

	// Snippet is the excerpt the citation was drawn from.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Metadata is the source metadata used for scoring.
	Metadata SourceMetadata `json:"metadata" yaml:"metadata"`

	// Quality is the score computed at registration.
	Quality QualityScore `json:"quality" yaml:"quality"`

	// Status is the citation's verification state.
	Status VerificationStatus `json:"status" yaml:"status"`

	// Claims lists the texts of claims this citation supports.
	Claims []string `json:"claims,omitempty" yaml:"claims,omitempty"`

	// CrossReferences lists ids of citations linked by similarity edges.
	CrossReferences []string `json:"cross_references,omitempty" yaml:"cross_references,omitempty"`
}

// Evidence is one derived support/contradiction record linking a citation to
// a claim. Evidence is recomputed on claim verification, never persisted on
// its own.
type Evidence struct {
	// CitationID identifies the citation the evidence comes from.
	CitationID string `json:"citation_id" yaml:"citation_id"`

	// Snippet is the citation excerpt the scores were computed from.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Relevance in [0,1] is the fraction of claim keywords found in the snippet.
	Relevance float64 `json:"relevance" yaml:"relevance"`

	// Agreement in [-1,1]; negative values indicate contradiction.
	Agreement float64 `json:"agreement" yaml:"agreement"`
}

// Claim is a natural-language assertion supported or contradicted by
// citations. Claims are deduplicated by exact text.
type Claim struct {
	// ID is the claim identifier.
	ID string `json:"id" yaml:"id"`

	// Text is the claim's assertion; it is the registry's unique key.
	Text string `json:"text" yaml:"text"`

	// CitationIDs lists the citations linked to this claim.
	CitationIDs []string `json:"citation_ids,omitempty" yaml:"citation_ids,omitempty"`

	// Confidence in [0,1] blends citation count, quality, cross-referencing,
	// and evidence balance.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Status is the claim's verification state.
	Status VerificationStatus `json:"status" yaml:"status"`

	// Supporting holds evidence with agreement >= 0.3.
	Supporting []Evidence `json:"supporting,omitempty" yaml:"supporting,omitempty"`

	// Contradicting holds evidence with agreement <= -0.3.
	Contradicting []Evidence `json:"contradicting,omitempty" yaml:"contradicting,omitempty"`
}
