// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"testing"

	"github.com/pdiddy/deep-research/pkg/types"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		text string
		want types.ResearchIntent
	}{
		{"what is photosynthesis", types.IntentFactual},
		{"how many moons does jupiter have", types.IntentFactual},
		{"rust vs go for systems programming", types.IntentComparative},
		{"compare solar and wind energy", types.IntentComparative},
		{"latest developments in fusion power", types.IntentCurrentEvents},
		{"how to configure nginx reverse proxy", types.IntentTechnical},
		{"peer reviewed research on intermittent fasting", types.IntentAcademic},
		{"why did the roman empire fall", types.IntentAnalytical},
		{"impact of remote work on productivity", types.IntentAnalytical},
		{"climate change causes", types.IntentExploratory},
		{"quantum computing", types.IntentExploratory},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ClassifyIntent(tt.text); got != tt.want {
				t.Errorf("ClassifyIntent(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestPlanRespectsDepthBudget(t *testing.T) {
	plan := Plan(types.ResearchQuery{Text: "climate change causes", Depth: types.DepthQuick})

	max := DepthFor(types.DepthQuick).MaxSubQueries
	if got := len(plan.SubQueries()); got > max {
		t.Errorf("sub-queries = %d, want <= %d", got, max)
	}
	if plan.Depth != types.DepthQuick {
		t.Errorf("Depth = %q, want quick", plan.Depth)
	}
}

func TestPlanPrimarySubQueryVerbatim(t *testing.T) {
	plan := Plan(types.ResearchQuery{Text: "ocean acidification effects"})

	subs := plan.SubQueries()
	if len(subs) == 0 {
		t.Fatal("plan has no sub-queries")
	}
	if subs[0].Text != "ocean acidification effects" {
		t.Errorf("primary text = %q, want the question verbatim", subs[0].Text)
	}
	if subs[0].Priority != 10 {
		t.Errorf("primary priority = %d, want 10", subs[0].Priority)
	}
}

func TestPlanPhaseGrouping(t *testing.T) {
	// Exploratory at standard depth: primary(10), overview(7), explained(5).
	plan := Plan(types.ResearchQuery{Text: "quantum computing", Depth: types.DepthStandard})

	if len(plan.Phases) != 2 {
		t.Fatalf("phases = %d, want 2 (primary, extended)", len(plan.Phases))
	}
	if plan.Phases[0].Name != phasePrimary || len(plan.Phases[0].SubQueries) != 1 {
		t.Errorf("phase 0 = %s/%d, want primary/1",
			plan.Phases[0].Name, len(plan.Phases[0].SubQueries))
	}
	if plan.Phases[1].Name != phaseExtended || len(plan.Phases[1].SubQueries) != 2 {
		t.Errorf("phase 1 = %s/%d, want extended/2",
			plan.Phases[1].Name, len(plan.Phases[1].SubQueries))
	}

	for _, ph := range plan.Phases {
		if ph.Timeout <= 0 {
			t.Errorf("phase %s has no timeout", ph.Name)
		}
		for _, sq := range ph.SubQueries {
			switch ph.Name {
			case phasePrimary:
				if sq.Priority < 8 {
					t.Errorf("primary phase holds priority %d", sq.Priority)
				}
			case phaseExtended:
				if sq.Priority < 5 || sq.Priority > 7 {
					t.Errorf("extended phase holds priority %d", sq.Priority)
				}
			default:
				if sq.Priority >= 5 {
					t.Errorf("supplementary phase holds priority %d", sq.Priority)
				}
			}
		}
	}
}

func TestPlanExplicitIntentSkipsClassification(t *testing.T) {
	plan := Plan(types.ResearchQuery{
		Text:   "what is dark matter", // would classify factual
		Intent: types.IntentAcademic,
	})
	if plan.Intent != types.IntentAcademic {
		t.Errorf("Intent = %q, want academic override", plan.Intent)
	}
}

func TestPlanCategoriesStayWithinDepth(t *testing.T) {
	plan := Plan(types.ResearchQuery{Text: "what is dark matter", Depth: types.DepthQuick})

	allowed := map[types.SourceCategory]bool{}
	for _, c := range DepthFor(types.DepthQuick).Categories {
		allowed[c] = true
	}
	for _, sq := range plan.SubQueries() {
		for _, c := range sq.Categories {
			if !allowed[c] {
				t.Errorf("sub-query %q targets %q, outside quick depth", sq.Text, c)
			}
		}
	}
}

func TestDepthForUnknownDefaultsToStandard(t *testing.T) {
	got := DepthFor("bottomless")
	want := DepthFor(types.DepthStandard)
	if got.MaxSubQueries != want.MaxSubQueries || got.Timeout != want.Timeout {
		t.Errorf("DepthFor(unknown) = %+v, want standard preset", got)
	}
}
