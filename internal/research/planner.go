// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research turns a natural-language research question into a phased
// plan of sub-queries, executes the phases against a source manager with
// bounded concurrency, and aggregates scored, citation-backed findings into a
// ranked result.
package research

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/deep-research/pkg/types"
)

// DepthConfig bounds one research run.
type DepthConfig struct {
	// MaxSources caps results ingested per sub-query.
	MaxSources int

	// MaxSubQueries caps the plan's sub-query count, primary included.
	MaxSubQueries int

	// Timeout bounds the whole run; phases split it evenly.
	Timeout time.Duration

	// MinQuality drops results whose citation scores below it.
	MinQuality float64

	// Categories lists the source categories eligible at this depth.
	Categories []types.SourceCategory
}

// depthConfigs are the named presets. Exhaustive depth opens every category
// and tolerates only higher-quality sources.
var depthConfigs = map[types.ResearchDepth]DepthConfig{
	types.DepthQuick: {
		MaxSources:    10,
		MaxSubQueries: 2,
		Timeout:       30 * time.Second,
		MinQuality:    40,
		Categories:    []types.SourceCategory{types.CategoryWeb, types.CategoryReference},
	},
	types.DepthStandard: {
		MaxSources:    25,
		MaxSubQueries: 4,
		Timeout:       2 * time.Minute,
		MinQuality:    50,
		Categories: []types.SourceCategory{
			types.CategoryWeb, types.CategoryReference, types.CategoryNews, types.CategoryAcademic,
		},
	},
	types.DepthDeep: {
		MaxSources:    50,
		MaxSubQueries: 6,
		Timeout:       5 * time.Minute,
		MinQuality:    55,
		Categories: []types.SourceCategory{
			types.CategoryWeb, types.CategoryReference, types.CategoryNews,
			types.CategoryAcademic, types.CategoryGovernment, types.CategoryTechnical,
		},
	},
	types.DepthExhaustive: {
		MaxSources:    100,
		MaxSubQueries: 8,
		Timeout:       10 * time.Minute,
		MinQuality:    60,
		Categories: []types.SourceCategory{
			types.CategoryWeb, types.CategoryReference, types.CategoryNews,
			types.CategoryAcademic, types.CategoryGovernment, types.CategoryTechnical,
		},
	},
}

// DepthFor returns the preset for depth, defaulting to standard.
func DepthFor(depth types.ResearchDepth) DepthConfig {
	if cfg, ok := depthConfigs[depth]; ok {
		return cfg
	}
	return depthConfigs[types.DepthStandard]
}

// intentKeywords drive classification; checked in order, first hit wins.
var intentKeywords = []struct {
	intent   types.ResearchIntent
	keywords []string
}{
	{types.IntentComparative, []string{" vs ", " versus ", "compare", "comparison", "difference between", "better than"}},
	{types.IntentCurrentEvents, []string{"latest", "breaking", "recent news", "this week", "today", "current events"}},
	{types.IntentTechnical, []string{"how to", "implement", "tutorial", "api ", "error", "install", "configure", "debug"}},
	{types.IntentAcademic, []string{"research", "study", "studies", "peer reviewed", "literature", "theory", "hypothesis"}},
	{types.IntentAnalytical, []string{"why ", "analyze", "analysis", "impact of", "effect of", "causes of", "implications"}},
	{types.IntentFactual, []string{"what is", "what are", "who is", "who was", "when did", "when was", "where is", "how many", "how much", "define"}},
}

// ClassifyIntent guesses the research intent from keyword heuristics.
// Unmatched questions default to exploratory.
func ClassifyIntent(text string) types.ResearchIntent {
	lower := " " + strings.ToLower(text) + " "
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.intent
			}
		}
	}
	return types.IntentExploratory
}

// expansion is one intent-specific sub-query template.
type expansion struct {
	suffix     string
	purpose    string
	priority   int
	categories []types.SourceCategory
}

// intentExpansions lists the sub-queries each intent adds after the primary.
var intentExpansions = map[types.ResearchIntent][]expansion{
	types.IntentFactual: {
		{"facts statistics data", "quantitative backing for the question", 7,
			[]types.SourceCategory{types.CategoryGovernment, types.CategoryReference}},
		{"studies research", "published evidence", 6,
			[]types.SourceCategory{types.CategoryAcademic}},
	},
	types.IntentExploratory: {
		{"overview", "broad orientation", 7,
			[]types.SourceCategory{types.CategoryReference, types.CategoryWeb}},
		{"explained", "accessible explanations", 5,
			[]types.SourceCategory{types.CategoryWeb}},
	},
	types.IntentComparative: {
		{"comparison", "direct comparisons", 7, nil},
		{"pros and cons", "trade-off discussions", 6, nil},
		{"differences", "distinguishing details", 4, nil},
	},
	types.IntentAnalytical: {
		{"causes factors", "causal background", 7, nil},
		{"impact effects", "downstream consequences", 6, nil},
		{"expert analysis", "interpretive commentary", 4,
			[]types.SourceCategory{types.CategoryNews, types.CategoryAcademic}},
	},
	types.IntentCurrentEvents: {
		{"latest news", "breaking coverage", 8,
			[]types.SourceCategory{types.CategoryNews}},
		{"recent developments", "short-term context", 6,
			[]types.SourceCategory{types.CategoryNews, types.CategoryWeb}},
	},
	types.IntentTechnical: {
		{"documentation", "authoritative reference", 7,
			[]types.SourceCategory{types.CategoryTechnical}},
		{"tutorial examples", "worked examples", 4,
			[]types.SourceCategory{types.CategoryTechnical, types.CategoryWeb}},
	},
	types.IntentAcademic: {
		{"peer reviewed research", "primary literature", 8,
			[]types.SourceCategory{types.CategoryAcademic}},
		{"meta analysis review", "synthesized evidence", 6,
			[]types.SourceCategory{types.CategoryAcademic}},
	},
}

// Phase names in execution order.
const (
	phasePrimary       = "primary"
	phaseExtended      = "extended"
	phaseSupplementary = "supplementary"
)

// Plan decomposes a research query into a phased plan. The primary sub-query
// carries the question verbatim at priority 10; intent-specific expansions
// follow, clamped to the depth's sub-query budget. Sub-queries bucket into
// phases by priority tier: >= 8 primary, 5-7 extended, below 5 supplementary.
func Plan(query types.ResearchQuery) types.ResearchPlan {
	intent := query.Intent
	if intent == "" {
		intent = ClassifyIntent(query.Text)
	}
	depth := query.Depth
	if depth == "" {
		depth = types.DepthStandard
	}
	cfg := DepthFor(depth)

	subQueries := []types.SubQuery{{
		ID:         uuid.NewString(),
		Text:       query.Text,
		Purpose:    "primary research question",
		Categories: cfg.Categories,
		Priority:   10,
	}}

	for _, exp := range intentExpansions[intent] {
		if len(subQueries) >= cfg.MaxSubQueries {
			break
		}
		categories := exp.categories
		if categories == nil {
			categories = cfg.Categories
		}
		subQueries = append(subQueries, types.SubQuery{
			ID:         uuid.NewString(),
			Text:       fmt.Sprintf("%s %s", query.Text, exp.suffix),
			Purpose:    exp.purpose,
			Categories: intersectCategories(categories, cfg.Categories),
			Priority:   exp.priority,
		})
	}

	return types.ResearchPlan{
		ID:        uuid.NewString(),
		Query:     query,
		Intent:    intent,
		Depth:     depth,
		Phases:    groupPhases(subQueries, cfg.Timeout),
		CreatedAt: time.Now(),
	}
}

// groupPhases buckets sub-queries by priority tier and splits the run
// timeout evenly across the non-empty phases.
func groupPhases(subQueries []types.SubQuery, timeout time.Duration) []types.ResearchPhase {
	var primary, extended, supplementary []types.SubQuery
	for _, sq := range subQueries {
		switch {
		case sq.Priority >= 8:
			primary = append(primary, sq)
		case sq.Priority >= 5:
			extended = append(extended, sq)
		default:
			supplementary = append(supplementary, sq)
		}
	}

	var phases []types.ResearchPhase
	for _, p := range []struct {
		name string
		sqs  []types.SubQuery
	}{
		{phasePrimary, primary},
		{phaseExtended, extended},
		{phaseSupplementary, supplementary},
	} {
		if len(p.sqs) > 0 {
			phases = append(phases, types.ResearchPhase{Name: p.name, SubQueries: p.sqs})
		}
	}

	if len(phases) > 0 {
		per := timeout / time.Duration(len(phases))
		for i := range phases {
			phases[i].Timeout = per
		}
	}
	return phases
}

// intersectCategories keeps the categories of want that the depth allows.
// An empty intersection falls back to the depth's own list so a sub-query
// never targets nothing.
func intersectCategories(want, allowed []types.SourceCategory) []types.SourceCategory {
	allowedSet := make(map[types.SourceCategory]bool, len(allowed))
	for _, c := range allowed {
		allowedSet[c] = true
	}

	var out []types.SourceCategory
	for _, c := range want {
		if allowedSet[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return allowed
	}
	return out
}
