// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/deep-research/pkg/types"
)

// dedupePrefixLen is how many normalized characters of content identify a
// finding for deduplication.
const dedupePrefixLen = 100

// Lexical finding-type patterns, checked in order: data, trend, opinion,
// insight; anything else is a fact.
var (
	dataRe    = regexp.MustCompile(`(?i)\d+(\.\d+)?\s*(%|percent|per cent)|statistics|survey(ed)?\s+\d|\bdata\s+(show|shows|indicate)`)
	trendRe   = regexp.MustCompile(`(?i)\b(increas|decreas|grow(th|ing)|declin|rising|falling|surg(e|ing)|trend(s|ing)?|accelerat)`)
	opinionRe = regexp.MustCompile(`(?i)\b(believe|argue[sd]?|opinion|critics?|claims?\s+that|according\s+to|suggest(s|ed)?\s+that)\b`)
	insightRe = regexp.MustCompile(`(?i)\b(analysis|indicates?|reveal(s|ed)?|demonstrat(es|ed)|shows?\s+that|implie[sd]|driven\s+by)\b`)
)

// classifyFinding assigns a finding type from lexical patterns in content.
func classifyFinding(content string) types.FindingType {
	switch {
	case dataRe.MatchString(content):
		return types.FindingData
	case trendRe.MatchString(content):
		return types.FindingTrend
	case opinionRe.MatchString(content):
		return types.FindingOpinion
	case insightRe.MatchString(content):
		return types.FindingInsight
	default:
		return types.FindingFact
	}
}

// contentKey normalizes finding content for deduplication: the first
// dedupePrefixLen alphanumeric characters, lowercased.
func contentKey(content string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(content) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			if b.Len() >= dedupePrefixLen {
				break
			}
		}
	}
	return b.String()
}

// dedupeFindings collapses findings whose content keys match: citation lists
// are unioned and confidence and relevance take the maximum across the
// duplicates. The first-seen content survives.
func dedupeFindings(findings []types.Finding) []types.Finding {
	seen := make(map[string]int)
	var out []types.Finding

	for _, f := range findings {
		key := contentKey(f.Content)
		idx, ok := seen[key]
		if !ok {
			seen[key] = len(out)
			out = append(out, f)
			continue
		}

		kept := &out[idx]
		kept.CitationIDs = unionStrings(kept.CitationIDs, f.CitationIDs)
		if f.Confidence > kept.Confidence {
			kept.Confidence = f.Confidence
		}
		if f.Relevance > kept.Relevance {
			kept.Relevance = f.Relevance
		}
	}
	return out
}

// rankFindings orders findings by 0.6*confidence + 0.4*relevance descending,
// breaking ties by content for stable output.
func rankFindings(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		si := 0.6*findings[i].Confidence + 0.4*findings[i].Relevance
		sj := 0.6*findings[j].Confidence + 0.4*findings[j].Relevance
		if si != sj {
			return si > sj
		}
		return findings[i].Content < findings[j].Content
	})
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			a = append(a, s)
		}
	}
	return a
}
