// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/deep-research/internal/events"
	"github.com/pdiddy/deep-research/internal/quality"
	"github.com/pdiddy/deep-research/pkg/types"
)

func newTestTracker(cfg types.TrackerConfig, bus *events.Bus) *Tracker {
	scorer := quality.NewScorer(types.QualityConfig{}, nil, nil)
	return NewTracker(cfg, scorer, bus, nil)
}

func mustAdd(t *testing.T, tr *Tracker, in Input) types.Citation {
	t.Helper()
	c, ok := tr.AddCitation(in)
	if !ok {
		t.Fatalf("AddCitation(%q) rejected", in.URL)
	}
	return c
}

// --- registration and dedup ---

func TestAddCitationDedupByURL(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	first := mustAdd(t, tr, Input{URL: "https://nature.com/articles/a", Title: "A"})
	second := mustAdd(t, tr, Input{URL: "https://nature.com/articles/a", Author: "Roe"})

	if first.ID != second.ID {
		t.Errorf("ids differ: %q vs %q", first.ID, second.ID)
	}
	if tr.CitationCount() != 1 {
		t.Errorf("CitationCount() = %d, want 1", tr.CitationCount())
	}
	// Merge fills missing fields without clobbering present ones.
	if second.Title != "A" || second.Author != "Roe" {
		t.Errorf("merged citation = %+v, want title A author Roe", second)
	}
}

func TestAddCitationStartsPending(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	c := mustAdd(t, tr, Input{URL: "https://example.com/a"})
	if c.Status != types.VerificationPending {
		t.Errorf("Status = %q, want pending", c.Status)
	}
}

func TestAddCitationRejectsLowQuality(t *testing.T) {
	bus := events.NewBus()
	var rejected []string
	bus.Subscribe(func(ev events.Event) {
		rejected = append(rejected, ev.ID)
	}, events.CitationRejected)

	tr := newTestTracker(types.TrackerConfig{MinQualityScore: 90}, bus)

	_, ok := tr.AddCitation(Input{URL: "https://someblog.blogspot.com/post"})
	if ok {
		t.Fatal("low quality source accepted")
	}
	if tr.CitationCount() != 0 {
		t.Errorf("CitationCount() = %d, want 0", tr.CitationCount())
	}
	if len(rejected) != 1 {
		t.Errorf("citation-rejected events = %d, want 1", len(rejected))
	}
}

func TestWWWVariantsAreDistinctCitations(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	a := mustAdd(t, tr, Input{URL: "https://www.reuters.com/world/story-a"})
	b := mustAdd(t, tr, Input{URL: "https://reuters.com/world/story-b"})

	if a.ID == b.ID {
		t.Fatal("distinct URLs collapsed into one citation")
	}
	// Both resolve to the same reputation-table domain.
	if a.Metadata.Domain != "reuters.com" || b.Metadata.Domain != "reuters.com" {
		t.Errorf("domains = %q, %q, want reuters.com for both", a.Metadata.Domain, b.Metadata.Domain)
	}
	if a.Quality.Type != b.Quality.Type {
		t.Errorf("types differ: %q vs %q", a.Quality.Type, b.Quality.Type)
	}
}

// --- cross-referencing ---

func TestCrossReferenceSymmetric(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	snippet := "global average temperature has risen due to greenhouse gas emissions"
	a := mustAdd(t, tr, Input{URL: "https://nature.com/a", Snippet: snippet})
	b := mustAdd(t, tr, Input{URL: "https://nature.com/b", Snippet: snippet})

	edges := tr.CrossReference([]string{a.ID, b.ID})
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}

	refsA, err := tr.CrossReferencesOf(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	refsB, err := tr.CrossReferencesOf(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(refsA) != 1 || refsA[0] != b.ID {
		t.Errorf("refs of a = %v, want [%s]", refsA, b.ID)
	}
	if len(refsB) != 1 || refsB[0] != a.ID {
		t.Errorf("refs of b = %v, want [%s]", refsB, a.ID)
	}
}

func TestCrossReferenceBelowThresholdNoEdge(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	a := mustAdd(t, tr, Input{URL: "https://nature.com/a", Snippet: "solar panel efficiency improvements"})
	b := mustAdd(t, tr, Input{URL: "https://bbc.com/b", Snippet: "championship football results yesterday"})

	edges := tr.CrossReference([]string{a.ID, b.ID})
	if len(edges) != 0 {
		t.Errorf("edges = %d, want 0 for dissimilar citations", len(edges))
	}
}

func TestCrossReferenceIdempotent(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	snippet := "identical snippet text shared by both sources"
	a := mustAdd(t, tr, Input{URL: "https://nature.com/a", Snippet: snippet})
	b := mustAdd(t, tr, Input{URL: "https://nature.com/b", Snippet: snippet})

	tr.CrossReference([]string{a.ID, b.ID})
	again := tr.CrossReference([]string{a.ID, b.ID})
	if len(again) != 0 {
		t.Errorf("second pass recorded %d edges, want 0", len(again))
	}

	got, _ := tr.Citation(a.ID)
	if len(got.CrossReferences) != 1 {
		t.Errorf("CrossReferences = %v, want single entry", got.CrossReferences)
	}
}

// --- citation verification ---

func TestVerifyCitationStateMachine(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	snippet := "arctic sea ice extent has declined sharply over recent decades"
	a := mustAdd(t, tr, Input{URL: "https://nature.com/ice-a", Snippet: snippet, Author: "Polar Desk"})
	b := mustAdd(t, tr, Input{URL: "https://nature.com/ice-b", Snippet: snippet})
	c := mustAdd(t, tr, Input{URL: "https://nature.com/ice-c", Snippet: snippet})

	// No edges yet: nature.com scores high enough for partial on its own.
	status, err := tr.VerifyCitation(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status != types.VerificationPartial {
		t.Errorf("pre-crossref status = %q, want partially_verified", status)
	}

	tr.CrossReference([]string{a.ID, b.ID, c.ID})

	status, err = tr.VerifyCitation(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status != types.VerificationVerified {
		t.Errorf("post-crossref status = %q, want verified", status)
	}
}

func TestVerifyCitationUnknownID(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	if _, err := tr.VerifyCitation("nope"); !errors.Is(err, ErrUnknownCitation) {
		t.Errorf("err = %v, want ErrUnknownCitation", err)
	}
}

func TestVerifyCitationUnverified(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	c := mustAdd(t, tr, Input{URL: "https://obscure-site.io/page"})

	status, err := tr.VerifyCitation(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status != types.VerificationUnverified {
		t.Errorf("status = %q, want unverified", status)
	}
}

// --- removal ---

func TestRemoveCitationUnwindsEdges(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	snippet := "shared snippet for edge construction between sources"
	a := mustAdd(t, tr, Input{URL: "https://nature.com/a", Snippet: snippet})
	b := mustAdd(t, tr, Input{URL: "https://nature.com/b", Snippet: snippet})
	tr.CrossReference([]string{a.ID, b.ID})

	if _, err := tr.RegisterClaim("shared snippet claim", []string{a.ID, b.ID}); err != nil {
		t.Fatal(err)
	}

	if err := tr.RemoveCitation(a.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.Citation(a.ID); !errors.Is(err, ErrUnknownCitation) {
		t.Errorf("removed citation still retrievable: %v", err)
	}

	bAfter, _ := tr.Citation(b.ID)
	if len(bAfter.CrossReferences) != 0 {
		t.Errorf("neighbor still lists removed id: %v", bAfter.CrossReferences)
	}

	claim, err := tr.Claim("shared snippet claim")
	if err != nil {
		t.Fatal(err)
	}
	if len(claim.CitationIDs) != 1 || claim.CitationIDs[0] != b.ID {
		t.Errorf("claim citations = %v, want [%s]", claim.CitationIDs, b.ID)
	}
}

func TestRemoveCitationUnknownID(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	if err := tr.RemoveCitation("nope"); !errors.Is(err, ErrUnknownCitation) {
		t.Errorf("err = %v, want ErrUnknownCitation", err)
	}
}

// --- claims ---

func TestRegisterClaimDedupByText(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	a := mustAdd(t, tr, Input{URL: "https://nature.com/a"})
	b := mustAdd(t, tr, Input{URL: "https://nature.com/b"})

	first, err := tr.RegisterClaim("oceans absorb excess heat", []string{a.ID})
	if err != nil {
		t.Fatal(err)
	}
	second, err := tr.RegisterClaim("oceans absorb excess heat", []string{b.ID})
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID {
		t.Errorf("claim ids differ: %q vs %q", first.ID, second.ID)
	}
	if len(second.CitationIDs) != 2 {
		t.Errorf("CitationIDs = %v, want both citations", second.CitationIDs)
	}
}

func TestRegisterClaimUnknownCitation(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	if _, err := tr.RegisterClaim("text", []string{"nope"}); !errors.Is(err, ErrUnknownCitation) {
		t.Errorf("err = %v, want ErrUnknownCitation", err)
	}
}

func TestClaimConfidenceMonotonicOnSupportingCitation(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	low := mustAdd(t, tr, Input{URL: "https://someblog.blogspot.com/x"})
	high := mustAdd(t, tr, Input{URL: "https://nature.com/y", Author: "Roe",
		PublishedDate: time.Now().Add(-24 * time.Hour)})

	if high.Quality.Overall < low.Quality.Overall {
		t.Fatalf("test setup: nature (%f) should outscore blogspot (%f)",
			high.Quality.Overall, low.Quality.Overall)
	}

	before, err := tr.RegisterClaim("sea levels are rising", []string{low.ID})
	if err != nil {
		t.Fatal(err)
	}
	after, err := tr.RegisterClaim("sea levels are rising", []string{high.ID})
	if err != nil {
		t.Fatal(err)
	}

	if after.Confidence < before.Confidence {
		t.Errorf("confidence dropped: %f -> %f", before.Confidence, after.Confidence)
	}
}

func TestVerifyClaimSupporting(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	c := mustAdd(t, tr, Input{
		URL:     "https://nature.com/warming",
		Snippet: "Studies confirm global temperatures increased significantly since 1900.",
	})
	if _, err := tr.RegisterClaim("global temperatures increased since 1900", []string{c.ID}); err != nil {
		t.Fatal(err)
	}

	claim, err := tr.VerifyClaim("global temperatures increased since 1900")
	if err != nil {
		t.Fatal(err)
	}
	if len(claim.Supporting) != 1 {
		t.Fatalf("Supporting = %d, want 1", len(claim.Supporting))
	}
	if claim.Supporting[0].Agreement < 0.3 {
		t.Errorf("Agreement = %f, want >= 0.3", claim.Supporting[0].Agreement)
	}
}

func TestVerifyClaimNegationFlipsAgreement(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)

	c := mustAdd(t, tr, Input{
		URL:     "https://nature.com/debunk",
		Snippet: "This study shows global temperatures have not increased since 1900; the claim is false.",
	})
	if _, err := tr.RegisterClaim("global temperatures increased since 1900", []string{c.ID}); err != nil {
		t.Fatal(err)
	}

	claim, err := tr.VerifyClaim("global temperatures increased since 1900")
	if err != nil {
		t.Fatal(err)
	}
	if len(claim.Contradicting) != 1 {
		t.Fatalf("Contradicting = %d, want 1", len(claim.Contradicting))
	}
	if claim.Contradicting[0].Agreement > -0.3 {
		t.Errorf("Agreement = %f, want <= -0.3", claim.Contradicting[0].Agreement)
	}
}

func TestVerifyClaimUnknownText(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	if _, err := tr.VerifyClaim("never registered"); !errors.Is(err, ErrUnknownClaim) {
		t.Errorf("err = %v, want ErrUnknownClaim", err)
	}
}

// --- accuracy ---

func TestCitationAccuracyEmpty(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	if acc := tr.CitationAccuracy(); acc != 0 {
		t.Errorf("CitationAccuracy() = %f, want 0", acc)
	}
}

func TestCitationAccuracyRange(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{EnableAutoVerification: true}, nil)

	snippet := "consistent reporting about the same underlying event details"
	ids := []string{}
	for _, u := range []string{"https://nature.com/1", "https://nature.com/2", "https://nature.com/3"} {
		c := mustAdd(t, tr, Input{URL: u, Snippet: snippet})
		ids = append(ids, c.ID)
	}
	tr.CrossReference(ids)

	acc := tr.CitationAccuracy()
	if acc < 0 || acc > 100 {
		t.Fatalf("CitationAccuracy() = %f, want [0,100]", acc)
	}
	if acc == 0 {
		t.Error("accuracy should be positive once citations verify")
	}
}

// --- export ---

func TestExportFormats(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	mustAdd(t, tr, Input{
		URL:           "https://nature.com/articles/warming",
		Title:         "Ocean Warming Trends",
		Author:        "Jane Roe",
		PublishedDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	tests := []struct {
		format ExportFormat
		want   []string
	}{
		{FormatJSON, []string{`"url": "https://nature.com/articles/warming"`, `"title": "Ocean Warming Trends"`}},
		{FormatYAML, []string{"url: https://nature.com/articles/warming"}},
		{FormatBibTeX, []string{"@misc{janeroe2024_1,", "title = {Ocean Warming Trends}", "year = {2024}"}},
		{FormatAPA, []string{"Jane Roe. (2024). Ocean Warming Trends. https://nature.com/articles/warming"}},
		{FormatMLA, []string{`Jane Roe. "Ocean Warming Trends." nature.com, 2024`}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			out, err := tr.Export(tt.format)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("%s output missing %q:\n%s", tt.format, want, out)
				}
			}
		})
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	tr := newTestTracker(types.TrackerConfig{}, nil)
	if _, err := tr.Export("ris"); err == nil {
		t.Error("want error for unsupported format")
	}
}
