// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ResearchIntent classifies what kind of answer a research question wants.
type ResearchIntent string

const (
	IntentFactual       ResearchIntent = "factual"
	IntentExploratory   ResearchIntent = "exploratory"
	IntentComparative   ResearchIntent = "comparative"
	IntentAnalytical    ResearchIntent = "analytical"
	IntentCurrentEvents ResearchIntent = "current_events"
	IntentTechnical     ResearchIntent = "technical"
	IntentAcademic      ResearchIntent = "academic"
)

// ResearchDepth names a preset bounding sources, sub-queries, timeout, and
// minimum quality for a run.
type ResearchDepth string

const (
	DepthQuick      ResearchDepth = "quick"
	DepthStandard   ResearchDepth = "standard"
	DepthDeep       ResearchDepth = "deep"
	DepthExhaustive ResearchDepth = "exhaustive"
)

// ResearchQuery is the caller's research request.
type ResearchQuery struct {
	// Text is the natural-language research question.
	Text string `json:"text" yaml:"text"`

	// Intent overrides automatic intent classification when non-empty.
	Intent ResearchIntent `json:"intent,omitempty" yaml:"intent,omitempty"`

	// Depth selects the depth preset; empty means standard.
	Depth ResearchDepth `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// SubQuery is one decomposed search the plan will execute.
type SubQuery struct {
	// ID is the sub-query identifier.
	ID string `json:"id" yaml:"id"`

	// Text is the search text sent to the source manager.
	Text string `json:"text" yaml:"text"`

	// Purpose explains why the planner generated this sub-query.
	Purpose string `json:"purpose" yaml:"purpose"`

	// Categories lists the source categories this sub-query targets.
	Categories []SourceCategory `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Priority is the scheduling priority in [0,10]; >=8 runs in the
	// primary phase, 5-7 extended, below 5 supplementary.
	Priority int `json:"priority" yaml:"priority"`
}

// ResearchPhase groups sub-queries that execute concurrently under one
// timeout. Phases run in plan order.
type ResearchPhase struct {
	// Name labels the phase: primary, extended, supplementary.
	Name string `json:"name" yaml:"name"`

	// SubQueries lists the sub-queries the phase runs.
	SubQueries []SubQuery `json:"sub_queries" yaml:"sub_queries"`

	// Timeout bounds the whole phase.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ResearchPlan is the immutable decomposition of a query into phased
// sub-queries. Progress bookkeeping lives in ResearchProgress, not here.
type ResearchPlan struct {
	// ID is the plan identifier.
	ID string `json:"id" yaml:"id"`

	// Query is the original research query.
	Query ResearchQuery `json:"query" yaml:"query"`

	// Intent is the classified (or caller-supplied) intent.
	Intent ResearchIntent `json:"intent" yaml:"intent"`

	// Depth is the effective depth preset.
	Depth ResearchDepth `json:"depth" yaml:"depth"`

	// Phases lists execution phases in order.
	Phases []ResearchPhase `json:"phases" yaml:"phases"`

	// CreatedAt is when the plan was produced.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SubQueries returns every sub-query across all phases in plan order.
func (p ResearchPlan) SubQueries() []SubQuery {
	var all []SubQuery
	for _, ph := range p.Phases {
		all = append(all, ph.SubQueries...)
	}
	return all
}

// PlanStatus is the orchestrator's state for one plan.
type PlanStatus string

const (
	PlanPlanning    PlanStatus = "planning"
	PlanExecuting   PlanStatus = "executing"
	PlanAggregating PlanStatus = "aggregating"
	PlanCompleted   PlanStatus = "completed"
	PlanFailed      PlanStatus = "failed"
)

// ResearchProgress is the mutable bookkeeping record for a running plan,
// keyed by plan id.
type ResearchProgress struct {
	// PlanID identifies the plan.
	PlanID string `json:"plan_id" yaml:"plan_id"`

	// Status is the plan's lifecycle state.
	Status PlanStatus `json:"status" yaml:"status"`

	// Phase is the name of the phase currently executing.
	Phase string `json:"phase,omitempty" yaml:"phase,omitempty"`

	// CompletedQueries counts finished sub-queries (failed ones included).
	CompletedQueries int `json:"completed_queries" yaml:"completed_queries"`

	// TotalQueries counts all planned sub-queries.
	TotalQueries int `json:"total_queries" yaml:"total_queries"`

	// ResultsSoFar counts raw results ingested.
	ResultsSoFar int `json:"results_so_far" yaml:"results_so_far"`

	// Errors records per-sub-query failures as "subquery-id: message".
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// StartedAt is when execution began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// UpdatedAt is the last bookkeeping update.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// FindingType classifies a finding by the kind of content it carries.
type FindingType string

const (
	FindingFact    FindingType = "fact"
	FindingInsight FindingType = "insight"
	FindingTrend   FindingType = "trend"
	FindingOpinion FindingType = "opinion"
	FindingData    FindingType = "data"
)

// Finding is one ranked, citation-backed unit of research output.
type Finding struct {
	// ID is the finding identifier.
	ID string `json:"id" yaml:"id"`

	// Content is the finding text.
	Content string `json:"content" yaml:"content"`

	// Type is the lexical content classification.
	Type FindingType `json:"type" yaml:"type"`

	// Confidence in [0,1] derives from the backing source's quality.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// CitationIDs lists the citations backing the finding. Duplicate
	// findings merge their citation lists.
	CitationIDs []string `json:"citation_ids,omitempty" yaml:"citation_ids,omitempty"`

	// SubQueryID identifies the sub-query that produced the finding.
	SubQueryID string `json:"sub_query_id" yaml:"sub_query_id"`

	// Relevance in [0,1] is the backend's relevance estimate.
	Relevance float64 `json:"relevance" yaml:"relevance"`
}

// PhaseTiming records the wall-clock duration of one executed phase.
type PhaseTiming struct {
	// Name is the phase name.
	Name string `json:"name" yaml:"name"`

	// Duration is how long the phase took.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// SubQueries counts the sub-queries the phase ran.
	SubQueries int `json:"sub_queries" yaml:"sub_queries"`
}

// ResearchStatistics summarizes a completed run.
type ResearchStatistics struct {
	// TotalResults counts raw results before deduplication.
	TotalResults int `json:"total_results" yaml:"total_results"`

	// UniqueResults counts findings after deduplication.
	UniqueResults int `json:"unique_results" yaml:"unique_results"`

	// CitationsAdded counts citations registered during the run.
	CitationsAdded int `json:"citations_added" yaml:"citations_added"`

	// AverageQuality is the mean citation quality in [0,100].
	AverageQuality float64 `json:"average_quality" yaml:"average_quality"`

	// FailedQueries counts sub-queries that errored or timed out.
	FailedQueries int `json:"failed_queries" yaml:"failed_queries"`

	// ExecutionTime is the total wall-clock run duration.
	ExecutionTime time.Duration `json:"execution_time" yaml:"execution_time"`

	// PhaseTimings lists per-phase durations in execution order.
	PhaseTimings []PhaseTiming `json:"phase_timings,omitempty" yaml:"phase_timings,omitempty"`
}

// ResearchResult is the terminal, immutable snapshot of a completed run.
type ResearchResult struct {
	// PlanID identifies the plan that produced the result.
	PlanID string `json:"plan_id" yaml:"plan_id"`

	// Query is the original research question.
	Query string `json:"query" yaml:"query"`

	// Findings lists deduplicated findings in rank order.
	Findings []Finding `json:"findings" yaml:"findings"`

	// Citations lists every citation registered during the run.
	Citations []Citation `json:"citations" yaml:"citations"`

	// Claims lists every claim registered during the run.
	Claims []Claim `json:"claims,omitempty" yaml:"claims,omitempty"`

	// Statistics summarizes the run.
	Statistics ResearchStatistics `json:"statistics" yaml:"statistics"`

	// CompletedAt is when aggregation finished.
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
}
