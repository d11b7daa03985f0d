// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation owns the registry of citations and claims. It deduplicates
// citations by URL, maintains an undirected cross-reference graph, drives the
// verification state machine for citations and claims, and formats exports.
//
// All registry mutation happens under one lock; the invariants tying claim
// confidence to citation state span multiple maps and must update together.
package citation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/events"
	"github.com/pdiddy/deep-research/internal/quality"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Caller-error sentinels, distinct from runtime failures.
var (
	ErrUnknownCitation = errors.New("unknown citation id")
	ErrUnknownClaim    = errors.New("unknown claim")
)

const (
	defaultMinCrossRefs = 2

	// crossRefQualityFloor is the quality a neighbor must reach for its
	// edge to count toward verification.
	crossRefQualityFloor = 60.0

	// edgeThreshold is the minimum similarity for recording a graph edge.
	edgeThreshold = 0.3
)

// Input carries the fields needed to register one citation.
type Input struct {
	URL           string
	Title         string
	Author        string
	PublishedDate time.Time
	Snippet       string

	// Metadata optionally overrides the metadata derived from the fields
	// above. Leave nil to let the tracker construct it.
	Metadata *types.SourceMetadata
}

// Tracker is the citation and claim registry. Safe for concurrent use.
type Tracker struct {
	cfg    types.TrackerConfig
	scorer *quality.Scorer
	bus    *events.Bus
	log    *zap.Logger
	now    func() time.Time

	mu           sync.Mutex
	citations    map[string]*types.Citation // id → citation
	byURL        map[string]string          // exact URL → id
	claims       map[string]*types.Claim    // id → claim
	claimsByText map[string]string          // exact text → id
	graph        map[string]map[string]bool // undirected cross-reference edges
}

// NewTracker builds a tracker using scorer for source quality. bus and logger
// may be nil.
func NewTracker(cfg types.TrackerConfig, scorer *quality.Scorer, bus *events.Bus, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinCrossRefs <= 0 {
		cfg.MinCrossRefs = defaultMinCrossRefs
	}

	return &Tracker{
		cfg:          cfg,
		scorer:       scorer,
		bus:          bus,
		log:          logger,
		now:          time.Now,
		citations:    make(map[string]*types.Citation),
		byURL:        make(map[string]string),
		claims:       make(map[string]*types.Claim),
		claimsByText: make(map[string]string),
		graph:        make(map[string]map[string]bool),
	}
}

// AddCitation registers a source. Citations are deduplicated by exact URL: a
// repeated URL merges missing fields into the existing citation and returns
// it. Sources scoring below MinQualityScore are rejected (a citation-rejected
// event fires; no error). The returned bool reports acceptance.
func (t *Tracker) AddCitation(in Input) (types.Citation, bool) {
	meta := t.buildMetadata(in)
	score := t.scorer.ScoreSource(meta)

	if t.cfg.MinQualityScore > 0 && score.Overall < t.cfg.MinQualityScore {
		t.log.Debug("citation rejected",
			zap.String("url", in.URL),
			zap.Float64("overall", score.Overall),
			zap.Float64("min", t.cfg.MinQualityScore))
		t.bus.Publish(events.CitationRejected, in.URL, score)
		return types.Citation{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byURL[in.URL]; ok {
		existing := t.citations[id]
		mergeCitation(existing, in)
		return *existing, true
	}

	c := &types.Citation{
		ID:            uuid.NewString(),
		URL:           in.URL,
		Title:         in.Title,
		Author:        in.Author,
		PublishedDate: in.PublishedDate,
		AccessedAt:    t.now(),
		Snippet:       in.Snippet,
		Metadata:      meta,
		Quality:       score,
		Status:        types.VerificationPending,
	}
	t.citations[c.ID] = c
	t.byURL[c.URL] = c.ID
	t.graph[c.ID] = make(map[string]bool)

	if t.cfg.EnableAutoVerification {
		t.evaluateCitationLocked(c)
	}

	t.bus.Publish(events.CitationAdded, c.ID, *c)
	return *c, true
}

// RemoveCitation deletes a citation and unwinds its graph edges and claim
// links. Claim confidences are recomputed. Returns ErrUnknownCitation for an
// unknown id.
func (t *Tracker) RemoveCitation(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.citations[id]
	if !ok {
		return ErrUnknownCitation
	}

	for neighbor := range t.graph[id] {
		delete(t.graph[neighbor], id)
		if nc, ok := t.citations[neighbor]; ok {
			nc.CrossReferences = removeString(nc.CrossReferences, id)
		}
	}
	delete(t.graph, id)
	delete(t.byURL, c.URL)
	delete(t.citations, id)

	for _, claim := range t.claims {
		before := len(claim.CitationIDs)
		claim.CitationIDs = removeString(claim.CitationIDs, id)
		if len(claim.CitationIDs) != before {
			t.recomputeClaimLocked(claim)
		}
	}

	t.bus.Publish(events.CitationRemoved, id, *c)
	return nil
}

// VerifyCitation re-evaluates one citation's verification status from its
// cross-references and quality. Returns ErrUnknownCitation for an unknown id.
func (t *Tracker) VerifyCitation(id string) (types.VerificationStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.citations[id]
	if !ok {
		return "", ErrUnknownCitation
	}

	t.evaluateCitationLocked(c)
	t.bus.Publish(events.CitationVerified, id, *c)
	return c.Status, nil
}

// evaluateCitationLocked applies the citation state machine:
// enough quality cross-references → verified; any cross-reference or own
// quality >= 80 → partially; otherwise unverified. Disputed is reserved for
// claim-level contradiction and never assigned here.
func (t *Tracker) evaluateCitationLocked(c *types.Citation) {
	qualityRefs := 0
	for neighbor := range t.graph[c.ID] {
		if nc, ok := t.citations[neighbor]; ok && nc.Quality.Overall >= crossRefQualityFloor {
			qualityRefs++
		}
	}

	switch {
	case qualityRefs >= t.cfg.MinCrossRefs:
		c.Status = types.VerificationVerified
	case len(t.graph[c.ID]) >= 1 || c.Quality.Overall >= 80:
		c.Status = types.VerificationPartial
	default:
		c.Status = types.VerificationUnverified
	}
}

// CitationAccuracy returns the quality-weighted verification ratio in
// [0,100]: verified citations contribute full weight, partially verified 0.7,
// disputed subtract 0.5, normalized by total weight. Zero citations yield 0.
func (t *Tracker) CitationAccuracy() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var earned, total float64
	for _, c := range t.citations {
		w := c.Quality.Overall
		total += w
		switch c.Status {
		case types.VerificationVerified:
			earned += w
		case types.VerificationPartial:
			earned += 0.7 * w
		case types.VerificationDisputed:
			earned -= 0.5 * w
		}
	}

	if total == 0 {
		return 0
	}

	ratio := earned / total * 100
	if ratio < 0 {
		return 0
	}
	if ratio > 100 {
		return 100
	}
	return ratio
}

// Citation returns a copy of the citation with the given id.
func (t *Tracker) Citation(id string) (types.Citation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.citations[id]
	if !ok {
		return types.Citation{}, ErrUnknownCitation
	}
	return *c, nil
}

// CitationByURL returns a copy of the citation registered under url.
func (t *Tracker) CitationByURL(url string) (types.Citation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.byURL[url]
	if !ok {
		return types.Citation{}, false
	}
	return *t.citations[id], true
}

// Citations returns copies of all registered citations in unspecified order.
func (t *Tracker) Citations() []types.Citation {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.Citation, 0, len(t.citations))
	for _, c := range t.citations {
		out = append(out, *c)
	}
	return out
}

// Claims returns copies of all registered claims in unspecified order.
func (t *Tracker) Claims() []types.Claim {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.Claim, 0, len(t.claims))
	for _, c := range t.claims {
		out = append(out, *c)
	}
	return out
}

// CitationCount returns the number of registered citations.
func (t *Tracker) CitationCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.citations)
}

func (t *Tracker) buildMetadata(in Input) types.SourceMetadata {
	if in.Metadata != nil {
		meta := *in.Metadata
		if meta.URL == "" {
			meta.URL = in.URL
		}
		if meta.Domain == "" {
			meta.Domain = quality.ExtractDomain(meta.URL)
		}
		return meta
	}

	return types.SourceMetadata{
		URL:           in.URL,
		Domain:        quality.ExtractDomain(in.URL),
		Title:         in.Title,
		Author:        in.Author,
		PublishedDate: in.PublishedDate,
		WordCount:     len(in.Snippet) / 6, // rough words-from-chars estimate
	}
}

func mergeCitation(dst *types.Citation, in Input) {
	if dst.Title == "" && in.Title != "" {
		dst.Title = in.Title
	}
	if dst.Author == "" && in.Author != "" {
		dst.Author = in.Author
	}
	if dst.PublishedDate.IsZero() && !in.PublishedDate.IsZero() {
		dst.PublishedDate = in.PublishedDate
	}
	if len(in.Snippet) > len(dst.Snippet) {
		dst.Snippet = in.Snippet
	}
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
