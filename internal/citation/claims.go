// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/events"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Evidence classification thresholds.
const (
	supportThreshold    = 0.3
	contradictThreshold = -0.3

	// claimCountSaturation is the citation count at which the count term
	// of the confidence blend reaches 1.0.
	claimCountSaturation = 3.0
)

// stopwords are excluded from claim keyword extraction.
var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"from": true, "have": true, "has": true, "are": true, "was": true,
	"were": true, "been": true, "will": true, "would": true, "could": true,
	"should": true, "which": true, "their": true, "there": true, "about": true,
	"into": true, "more": true, "than": true, "other": true, "some": true,
	"such": true, "most": true, "also": true, "when": true, "where": true,
}

// negationWords flip agreement when they co-occur with relevant claim
// keywords in a snippet. A deliberately simple lexical heuristic; it stands
// in for entailment and its exact behavior is part of the contract.
var negationWords = map[string]bool{
	"not": true, "no": true, "never": true, "false": true, "incorrect": true,
	"wrong": true, "untrue": true, "refuted": true, "refutes": true,
	"debunked": true, "disputed": true, "denies": true, "denied": true,
	"contrary": true, "myth": true, "disproven": true, "disproved": true,
}

// RegisterClaim registers a claim supported by the given citations, linking
// both directions and recomputing the claim's confidence. Claims deduplicate
// by exact text: re-registration merges the citation lists. Unknown citation
// ids return ErrUnknownCitation.
func (t *Tracker) RegisterClaim(text string, citationIDs []string) (types.Claim, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range citationIDs {
		if _, ok := t.citations[id]; !ok {
			return types.Claim{}, ErrUnknownCitation
		}
	}

	claim, isNew := t.claimForTextLocked(text)

	for _, id := range citationIDs {
		if !containsString(claim.CitationIDs, id) {
			claim.CitationIDs = append(claim.CitationIDs, id)
		}
		c := t.citations[id]
		if !containsString(c.Claims, text) {
			c.Claims = append(c.Claims, text)
		}
	}

	t.recomputeClaimLocked(claim)

	if isNew {
		t.bus.Publish(events.ClaimRegistered, claim.ID, *claim)
	}
	t.log.Debug("claim registered",
		zap.String("claim", claim.ID),
		zap.Int("citations", len(claim.CitationIDs)))

	return *claim, nil
}

// VerifyClaim scores every linked citation's snippet against the claim text,
// classifies the resulting evidence, recomputes confidence, and assigns the
// claim's verification status. Returns ErrUnknownClaim for an unregistered
// claim text.
func (t *Tracker) VerifyClaim(text string) (types.Claim, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.claimsByText[text]
	if !ok {
		return types.Claim{}, ErrUnknownClaim
	}
	claim := t.claims[id]

	keywords := claimKeywords(text)
	claim.Supporting = nil
	claim.Contradicting = nil

	for _, cid := range claim.CitationIDs {
		c, ok := t.citations[cid]
		if !ok {
			continue
		}

		relevance, agreement := scoreEvidence(keywords, c.Snippet)
		ev := types.Evidence{
			CitationID: cid,
			Snippet:    c.Snippet,
			Relevance:  relevance,
			Agreement:  agreement,
		}

		switch {
		case agreement >= supportThreshold:
			claim.Supporting = append(claim.Supporting, ev)
		case agreement <= contradictThreshold:
			claim.Contradicting = append(claim.Contradicting, ev)
		}
	}

	t.recomputeClaimLocked(claim)

	crossReferenced := 0
	for _, cid := range claim.CitationIDs {
		if len(t.graph[cid]) > 0 {
			crossReferenced++
		}
	}

	switch {
	case claim.Confidence >= 0.8 && crossReferenced >= 2:
		claim.Status = types.VerificationVerified
	case claim.Confidence >= 0.5:
		claim.Status = types.VerificationPartial
	case len(claim.Contradicting) > len(claim.Supporting):
		claim.Status = types.VerificationDisputed
	default:
		claim.Status = types.VerificationUnverified
	}

	t.bus.Publish(events.ClaimVerified, claim.ID, *claim)
	return *claim, nil
}

// Claim returns a copy of the claim registered under text.
func (t *Tracker) Claim(text string) (types.Claim, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.claimsByText[text]
	if !ok {
		return types.Claim{}, ErrUnknownClaim
	}
	return *t.claims[id], nil
}

// claimForTextLocked returns the claim for text, creating it when absent.
func (t *Tracker) claimForTextLocked(text string) (*types.Claim, bool) {
	if id, ok := t.claimsByText[text]; ok {
		return t.claims[id], false
	}

	claim := &types.Claim{
		ID:     uuid.NewString(),
		Text:   text,
		Status: types.VerificationPending,
	}
	t.claims[claim.ID] = claim
	t.claimsByText[text] = claim.ID
	return claim, true
}

// recomputeClaimLocked rebuilds the claim confidence as a weighted blend of
// citation-count saturation (20%), average citation quality (40%),
// cross-reference ratio (20%), and evidence agreement balance (20%), each
// clamped into [0,1] before blending.
func (t *Tracker) recomputeClaimLocked(claim *types.Claim) {
	n := len(claim.CitationIDs)
	if n == 0 {
		claim.Confidence = 0
		return
	}

	countSat := clamp01(float64(n) / claimCountSaturation)

	var qualitySum float64
	crossReferenced := 0
	for _, cid := range claim.CitationIDs {
		if c, ok := t.citations[cid]; ok {
			qualitySum += c.Quality.Overall
		}
		if len(t.graph[cid]) > 0 {
			crossReferenced++
		}
	}
	avgQuality := clamp01(qualitySum / float64(n) / 100)
	crossRefRatio := clamp01(float64(crossReferenced) / float64(n))

	balance := 0.5
	sup, con := len(claim.Supporting), len(claim.Contradicting)
	if sup+con > 0 {
		balance = float64(sup) / float64(sup+con)
	}

	claim.Confidence = 0.2*countSat + 0.4*avgQuality + 0.2*crossRefRatio + 0.2*balance
}

// claimKeywords extracts the distinct lowercase keywords of a claim: words of
// four or more characters that are not stopwords.
func claimKeywords(text string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range splitWords(text) {
		if len(w) < 4 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

// scoreEvidence computes lexical relevance (fraction of claim keywords
// present in the snippet) and agreement. Agreement equals relevance, negated
// when the snippet carries negation words alongside relevant keywords.
func scoreEvidence(keywords []string, snippet string) (relevance, agreement float64) {
	if len(keywords) == 0 {
		return 0, 0
	}

	tokens := tokenSet(snippet)

	matched := 0
	for _, kw := range keywords {
		if tokens[kw] {
			matched++
		}
	}
	relevance = float64(matched) / float64(len(keywords))

	negated := false
	for tok := range tokens {
		if negationWords[tok] {
			negated = true
			break
		}
	}

	agreement = relevance
	if negated && matched > 0 {
		agreement = -relevance
	}
	return relevance, agreement
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
