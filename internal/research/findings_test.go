// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"strings"
	"testing"

	"github.com/pdiddy/deep-research/pkg/types"
)

func TestClassifyFinding(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    types.FindingType
	}{
		{"percentage", "Emissions fell 12% between 2020 and 2024.", types.FindingData},
		{"statistics", "National statistics put unemployment at historic lows.", types.FindingData},
		{"trend", "Adoption of heat pumps is increasing across Europe.", types.FindingTrend},
		{"declining", "Coral cover has been declining for three decades.", types.FindingTrend},
		{"opinion", "Critics argue the policy favors large producers.", types.FindingOpinion},
		{"attribution", "According to the minister, talks will resume.", types.FindingOpinion},
		{"insight", "The analysis reveals a strong regional divide.", types.FindingInsight},
		{"shows that", "The experiment shows that the effect persists in the dark.", types.FindingInsight},
		{"fact", "Mount Everest stands on the border of Nepal and China.", types.FindingFact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyFinding(tt.content); got != tt.want {
				t.Errorf("classifyFinding(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestContentKeyNormalization(t *testing.T) {
	a := contentKey("Solar power is now the cheapest energy source!")
	b := contentKey("  SOLAR power... is now the CHEAPEST energy source?")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}

	long := strings.Repeat("abcdefghij", 20)
	if got := len(contentKey(long)); got != dedupePrefixLen {
		t.Errorf("key length = %d, want %d", got, dedupePrefixLen)
	}
}

func TestDedupeFindingsMergesDuplicates(t *testing.T) {
	findings := []types.Finding{
		{ID: "f1", Content: "Solar is the cheapest energy source.", Confidence: 0.5, Relevance: 0.9, CitationIDs: []string{"c1"}},
		{ID: "f2", Content: "solar IS the cheapest energy source", Confidence: 0.8, Relevance: 0.4, CitationIDs: []string{"c2", "c1"}},
		{ID: "f3", Content: "Wind capacity doubled in a decade.", Confidence: 0.6, CitationIDs: []string{"c3"}},
	}

	out := dedupeFindings(findings)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}

	merged := out[0]
	if merged.ID != "f1" {
		t.Errorf("survivor = %s, want first-seen f1", merged.ID)
	}
	if merged.Confidence != 0.8 {
		t.Errorf("Confidence = %f, want max 0.8", merged.Confidence)
	}
	if merged.Relevance != 0.9 {
		t.Errorf("Relevance = %f, want max 0.9", merged.Relevance)
	}
	if len(merged.CitationIDs) != 2 {
		t.Errorf("CitationIDs = %v, want union of c1, c2", merged.CitationIDs)
	}
}

func TestRankFindingsOrder(t *testing.T) {
	findings := []types.Finding{
		{Content: "low", Confidence: 0.2, Relevance: 0.2},
		{Content: "high", Confidence: 0.9, Relevance: 0.9},
		{Content: "mid", Confidence: 0.5, Relevance: 0.5},
	}
	rankFindings(findings)

	if findings[0].Content != "high" || findings[2].Content != "low" {
		t.Errorf("order = [%s %s %s], want [high mid low]",
			findings[0].Content, findings[1].Content, findings[2].Content)
	}
}

func TestRankFindingsWeighting(t *testing.T) {
	// Confidence carries 0.6, relevance 0.4: 0.8/0.1 (0.52) beats 0.3/0.7 (0.46).
	findings := []types.Finding{
		{Content: "relevant", Confidence: 0.3, Relevance: 0.7},
		{Content: "confident", Confidence: 0.8, Relevance: 0.1},
	}
	rankFindings(findings)

	if findings[0].Content != "confident" {
		t.Errorf("first = %s, want confident", findings[0].Content)
	}
}
