// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"strings"
	"unicode"

	"github.com/pdiddy/deep-research/pkg/types"
)

// CrossRef describes one similarity edge discovered between two citations.
type CrossRef struct {
	A, B  string
	Score float64
}

// CrossReference computes pairwise similarity among the given citations and
// records an undirected graph edge for every pair scoring above the
// threshold. Unknown ids are skipped. When auto-verification is enabled,
// every touched citation is re-evaluated after the batch. Returns the edges
// recorded by this call.
func (t *Tracker) CrossReference(ids []string) []CrossRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cites []*types.Citation
	for _, id := range ids {
		if c, ok := t.citations[id]; ok {
			cites = append(cites, c)
		}
	}

	var edges []CrossRef
	touched := make(map[string]bool)

	for i := 0; i < len(cites); i++ {
		for j := i + 1; j < len(cites); j++ {
			a, b := cites[i], cites[j]
			if t.graph[a.ID][b.ID] {
				continue
			}

			score := similarity(a, b)
			if score <= edgeThreshold {
				continue
			}

			t.graph[a.ID][b.ID] = true
			t.graph[b.ID][a.ID] = true
			a.CrossReferences = append(a.CrossReferences, b.ID)
			b.CrossReferences = append(b.CrossReferences, a.ID)
			touched[a.ID] = true
			touched[b.ID] = true
			edges = append(edges, CrossRef{A: a.ID, B: b.ID, Score: score})
		}
	}

	if t.cfg.EnableAutoVerification {
		for id := range touched {
			t.evaluateCitationLocked(t.citations[id])
		}
	}

	return edges
}

// CrossReferenceAll runs CrossReference over every registered citation.
func (t *Tracker) CrossReferenceAll() []CrossRef {
	t.mu.Lock()
	ids := make([]string, 0, len(t.citations))
	for id := range t.citations {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	return t.CrossReference(ids)
}

// CrossReferencesOf returns the ids of citations linked to id.
func (t *Tracker) CrossReferencesOf(id string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.citations[id]; !ok {
		return nil, ErrUnknownCitation
	}

	out := make([]string, 0, len(t.graph[id]))
	for neighbor := range t.graph[id] {
		out = append(out, neighbor)
	}
	return out, nil
}

// similarity scores two citations as
// 0.5*claimOverlap + 0.3*snippetJaccard + 0.2*domainMatch.
func similarity(a, b *types.Citation) float64 {
	return 0.5*claimOverlap(a.Claims, b.Claims) +
		0.3*jaccard(tokenSet(a.Snippet), tokenSet(b.Snippet)) +
		0.2*domainMatch(a, b)
}

// claimOverlap is the overlap coefficient of the two claim sets: shared
// claims divided by the smaller set's size.
func claimOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}

	shared := 0
	for _, s := range b {
		if set[s] {
			shared++
		}
	}

	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(shared) / float64(smaller)
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	shared := 0
	for tok := range a {
		if b[tok] {
			shared++
		}
	}

	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}

func domainMatch(a, b *types.Citation) float64 {
	if a.Metadata.Domain != "" && a.Metadata.Domain == b.Metadata.Domain {
		return 1
	}
	return 0
}

// tokenSet lowercases text and returns its distinct word tokens, keeping
// letters and digits only.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range splitWords(text) {
		set[tok] = true
	}
	return set
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
