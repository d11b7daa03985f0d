// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/deep-research/internal/citation"
	"github.com/pdiddy/deep-research/internal/events"
	"github.com/pdiddy/deep-research/internal/quality"
	"github.com/pdiddy/deep-research/pkg/types"
)

// ErrUnknownPlan is returned for operations on plan ids the orchestrator is
// not tracking.
var ErrUnknownPlan = errors.New("unknown plan id")

// errCancelled aborts phase execution after CancelResearch.
var errCancelled = errors.New("research cancelled")

const defaultMaxConcurrent = 3

// SourceManager is the external search collaborator. Implementations may be
// slow, may partially fail, and may return zero results; they must honor ctx
// so a cancelled run can abort in-flight calls.
type SourceManager interface {
	AggregatedResults(ctx context.Context, query types.SearchQuery) ([]types.SourceResult, error)
}

// Orchestrator executes research plans. Safe for concurrent use; multiple
// plans may run at once.
type Orchestrator struct {
	cfg     types.OrchestratorConfig
	sources SourceManager
	scorer  *quality.Scorer
	tracker *citation.Tracker
	bus     *events.Bus
	log     *zap.Logger

	mu       sync.Mutex
	progress map[string]*types.ResearchProgress
	active   map[string]context.CancelFunc
}

// NewOrchestrator wires an orchestrator from its collaborators. bus and
// logger may be nil.
func NewOrchestrator(cfg types.OrchestratorConfig, sources SourceManager, scorer *quality.Scorer, tracker *citation.Tracker, bus *events.Bus, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrentSubQueries <= 0 {
		cfg.MaxConcurrentSubQueries = defaultMaxConcurrent
	}

	return &Orchestrator{
		cfg:      cfg,
		sources:  sources,
		scorer:   scorer,
		tracker:  tracker,
		bus:      bus,
		log:      logger,
		progress: make(map[string]*types.ResearchProgress),
		active:   make(map[string]context.CancelFunc),
	}
}

// Research runs a query end to end: plan, execute phases, aggregate. A
// result is returned even when individual sub-queries fail; only plan-fatal
// errors (caller cancellation, cancelled plan) yield an error instead.
func (o *Orchestrator) Research(ctx context.Context, query types.ResearchQuery) (types.ResearchResult, error) {
	plan, runCtx := o.preparePlan(ctx, query)
	defer o.finishPlan(plan.ID)

	return o.run(runCtx, plan, nil)
}

// Progress returns a copy of the bookkeeping record for a plan. Records
// survive completion and cancellation.
func (o *Orchestrator) Progress(planID string) (types.ResearchProgress, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.progress[planID]
	if !ok {
		return types.ResearchProgress{}, ErrUnknownPlan
	}
	return *p, nil
}

// CancelResearch cooperatively cancels a running plan: the plan leaves the
// active set, progress flips to failed, and the run context is cancelled so
// source calls that honor it abort. Results from still-in-flight sub-queries
// are discarded; no further phases start.
func (o *Orchestrator) CancelResearch(planID string) error {
	o.mu.Lock()
	cancel, ok := o.active[planID]
	if !ok {
		o.mu.Unlock()
		return ErrUnknownPlan
	}
	delete(o.active, planID)

	p := o.progress[planID]
	p.Status = types.PlanFailed
	p.Errors = append(p.Errors, "research cancelled")
	p.UpdatedAt = time.Now()
	o.mu.Unlock()

	cancel()
	o.log.Info("research cancelled", zap.String("plan", planID))
	o.bus.Publish(events.ResearchCancelled, planID, nil)
	return nil
}

// preparePlan builds the plan and registers bookkeeping for the run.
func (o *Orchestrator) preparePlan(ctx context.Context, query types.ResearchQuery) (types.ResearchPlan, context.Context) {
	plan := Plan(query)
	o.bus.Publish(events.PlanCreated, plan.ID, plan)

	runCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	o.progress[plan.ID] = &types.ResearchProgress{
		PlanID:       plan.ID,
		Status:       types.PlanPlanning,
		TotalQueries: len(plan.SubQueries()),
		StartedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	o.active[plan.ID] = cancel
	o.mu.Unlock()

	return plan, runCtx
}

// finishPlan drops the plan from the active set, releasing its context.
func (o *Orchestrator) finishPlan(planID string) {
	o.mu.Lock()
	cancel, ok := o.active[planID]
	if ok {
		delete(o.active, planID)
	}
	o.mu.Unlock()
	if ok {
		cancel()
	}
}

// run executes the planned phases and aggregates the result. emit, when
// non-nil, receives incremental stream events.
func (o *Orchestrator) run(ctx context.Context, plan types.ResearchPlan, emit func(StreamEvent)) (types.ResearchResult, error) {
	start := time.Now()
	depthCfg := DepthFor(plan.Depth)

	o.setStatus(plan.ID, types.PlanExecuting, "")
	o.bus.Publish(events.ResearchStarted, plan.ID, plan)
	o.emitProgress(plan.ID, emit)
	o.log.Info("research started",
		zap.String("plan", plan.ID),
		zap.String("intent", string(plan.Intent)),
		zap.String("depth", string(plan.Depth)),
		zap.Int("sub_queries", len(plan.SubQueries())))

	var (
		ingestMu     sync.Mutex
		findings     []types.Finding
		citationIDs  = make(map[string]bool)
		totalResults int
		timings      []types.PhaseTiming
	)

	for _, phase := range plan.Phases {
		if !o.isLive(plan.ID) {
			return types.ResearchResult{}, o.fail(plan.ID, errCancelled)
		}
		if err := ctx.Err(); err != nil {
			return types.ResearchResult{}, o.fail(plan.ID, err)
		}

		o.setStatus(plan.ID, types.PlanExecuting, phase.Name)
		phaseStart := time.Now()

		phaseCtx, cancelPhase := context.WithTimeout(ctx, phase.Timeout)
		g := new(errgroup.Group)
		g.SetLimit(o.cfg.MaxConcurrentSubQueries)

		for _, sq := range phase.SubQueries {
			sq := sq
			g.Go(func() error {
				results, err := o.sources.AggregatedResults(phaseCtx, types.SearchQuery{
					Text:       sq.Text,
					MaxResults: depthCfg.MaxSources,
					Categories: sq.Categories,
				})

				ingestMu.Lock()
				defer ingestMu.Unlock()

				// A completion arriving after cancellation is a no-op.
				if !o.isLive(plan.ID) {
					return nil
				}

				if err != nil {
					o.recordError(plan.ID, fmt.Sprintf("%s: %v", sq.ID, err))
					o.bumpCompleted(plan.ID, 0)
					o.emitProgress(plan.ID, emit)
					return nil
				}

				ingested := 0
				for _, res := range results {
					f, c, ok := o.ingestResult(sq, res, depthCfg)
					if !ok {
						continue
					}
					findings = append(findings, f)
					citationIDs[c.ID] = true
					totalResults++
					ingested++
					if emit != nil {
						emit(StreamEvent{Kind: StreamFinding, Finding: &f})
						emit(StreamEvent{Kind: StreamCitation, Citation: &c})
					}
				}

				o.bumpCompleted(plan.ID, ingested)
				o.emitProgress(plan.ID, emit)
				return nil
			})
		}

		// Workers record their own failures; Wait never returns one.
		_ = g.Wait()
		cancelPhase()

		timings = append(timings, types.PhaseTiming{
			Name:       phase.Name,
			Duration:   time.Since(phaseStart),
			SubQueries: len(phase.SubQueries),
		})
	}

	if !o.isLive(plan.ID) {
		return types.ResearchResult{}, o.fail(plan.ID, errCancelled)
	}
	if err := ctx.Err(); err != nil {
		return types.ResearchResult{}, o.fail(plan.ID, err)
	}

	o.setStatus(plan.ID, types.PlanAggregating, "")
	o.emitProgress(plan.ID, emit)

	if o.cfg.EnableCrossReferencing && len(citationIDs) > 1 {
		ids := make([]string, 0, len(citationIDs))
		for id := range citationIDs {
			ids = append(ids, id)
		}
		o.tracker.CrossReference(ids)
	}

	findings = dedupeFindings(findings)
	rankFindings(findings)
	if len(findings) > depthCfg.MaxSources {
		findings = findings[:depthCfg.MaxSources]
	}

	result := types.ResearchResult{
		PlanID:      plan.ID,
		Query:       plan.Query.Text,
		Findings:    findings,
		Citations:   o.tracker.Citations(),
		Claims:      o.tracker.Claims(),
		Statistics:  o.statistics(plan.ID, totalResults, len(findings), citationIDs, timings, time.Since(start)),
		CompletedAt: time.Now(),
	}

	o.setStatus(plan.ID, types.PlanCompleted, "")
	o.bus.Publish(events.ResearchCompleted, plan.ID, result)
	o.log.Info("research completed",
		zap.String("plan", plan.ID),
		zap.Int("findings", len(result.Findings)),
		zap.Int("citations", result.Statistics.CitationsAdded),
		zap.Duration("took", result.Statistics.ExecutionTime))
	if emit != nil {
		emit(StreamEvent{Kind: StreamComplete, Result: &result})
	}

	return result, nil
}

// ingestResult scores one raw result and converts it into a citation plus a
// finding. Results below the depth's quality floor, and sources the tracker
// rejects, are dropped.
func (o *Orchestrator) ingestResult(sq types.SubQuery, res types.SourceResult, depthCfg DepthConfig) (types.Finding, types.Citation, bool) {
	meta := types.SourceMetadata{
		URL:           res.URL,
		Domain:        quality.ExtractDomain(res.URL),
		Title:         res.Title,
		Author:        res.Author,
		PublishedDate: res.PublishedDate,
		CitationCount: res.CitationCount,
		WordCount:     len(res.Snippet) / 6,
	}

	score := o.scorer.ScoreSource(meta)
	if score.Overall < depthCfg.MinQuality {
		return types.Finding{}, types.Citation{}, false
	}

	cite, ok := o.tracker.AddCitation(citation.Input{
		URL:           res.URL,
		Title:         res.Title,
		Author:        res.Author,
		PublishedDate: res.PublishedDate,
		Snippet:       res.Snippet,
		Metadata:      &meta,
	})
	if !ok {
		return types.Finding{}, types.Citation{}, false
	}

	content := res.Snippet
	if content == "" {
		content = res.Title
	}

	f := types.Finding{
		ID:          uuid.NewString(),
		Content:     content,
		Type:        classifyFinding(content),
		Confidence:  score.Confidence * score.Overall / 100,
		CitationIDs: []string{cite.ID},
		SubQueryID:  sq.ID,
		Relevance:   res.RelevanceScore,
	}
	return f, cite, true
}

func (o *Orchestrator) statistics(planID string, totalResults, unique int, citationIDs map[string]bool, timings []types.PhaseTiming, took time.Duration) types.ResearchStatistics {
	var qualitySum float64
	count := 0
	for id := range citationIDs {
		if c, err := o.tracker.Citation(id); err == nil {
			qualitySum += c.Quality.Overall
			count++
		}
	}
	avgQuality := 0.0
	if count > 0 {
		avgQuality = qualitySum / float64(count)
	}

	o.mu.Lock()
	failed := len(o.progress[planID].Errors)
	o.mu.Unlock()

	return types.ResearchStatistics{
		TotalResults:   totalResults,
		UniqueResults:  unique,
		CitationsAdded: len(citationIDs),
		AverageQuality: avgQuality,
		FailedQueries:  failed,
		ExecutionTime:  took,
		PhaseTimings:   timings,
	}
}

// fail marks the plan failed unless cancellation already did, and publishes
// the failure. Cancellation keeps its research-cancelled event.
func (o *Orchestrator) fail(planID string, err error) error {
	if errors.Is(err, errCancelled) {
		return fmt.Errorf("plan %s: %w", planID, err)
	}

	o.mu.Lock()
	if p, ok := o.progress[planID]; ok {
		p.Status = types.PlanFailed
		p.Errors = append(p.Errors, err.Error())
		p.UpdatedAt = time.Now()
	}
	o.mu.Unlock()

	o.bus.Publish(events.ResearchFailed, planID, err.Error())
	o.log.Warn("research failed", zap.String("plan", planID), zap.Error(err))
	return fmt.Errorf("plan %s: %w", planID, err)
}

func (o *Orchestrator) isLive(planID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.active[planID]
	return ok
}

func (o *Orchestrator) setStatus(planID string, status types.PlanStatus, phase string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.progress[planID]
	if !ok {
		return
	}
	// Cancellation owns the terminal status.
	if p.Status == types.PlanFailed {
		return
	}
	p.Status = status
	if phase != "" {
		p.Phase = phase
	}
	p.UpdatedAt = time.Now()
}

func (o *Orchestrator) recordError(planID, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p, ok := o.progress[planID]; ok {
		p.Errors = append(p.Errors, msg)
		p.UpdatedAt = time.Now()
	}
}

func (o *Orchestrator) bumpCompleted(planID string, results int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p, ok := o.progress[planID]; ok {
		p.CompletedQueries++
		p.ResultsSoFar += results
		p.UpdatedAt = time.Now()
	}
}

func (o *Orchestrator) emitProgress(planID string, emit func(StreamEvent)) {
	o.mu.Lock()
	var snapshot *types.ResearchProgress
	if p, ok := o.progress[planID]; ok {
		copied := *p
		snapshot = &copied
	}
	o.mu.Unlock()

	if snapshot == nil {
		return
	}
	o.bus.Publish(events.Progress, planID, *snapshot)
	if emit != nil {
		emit(StreamEvent{Kind: StreamProgress, Progress: snapshot})
	}
}
