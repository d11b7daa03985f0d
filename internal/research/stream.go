// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"

	"github.com/pdiddy/deep-research/pkg/types"
)

// StreamEventKind identifies one incremental research event.
type StreamEventKind string

const (
	StreamProgress StreamEventKind = "progress"
	StreamFinding  StreamEventKind = "finding"
	StreamCitation StreamEventKind = "citation"
	StreamComplete StreamEventKind = "complete"
	StreamError    StreamEventKind = "error"
)

// StreamEvent is one element of a streamed research run. Exactly one payload
// field matching Kind is set.
type StreamEvent struct {
	Kind     StreamEventKind
	Progress *types.ResearchProgress
	Finding  *types.Finding
	Citation *types.Citation
	Result   *types.ResearchResult
	Err      error
}

// StreamResearch runs the same pipeline as Research but delivers the run
// incrementally: progress snapshots, findings, and citations as they are
// ingested, then a terminal complete or error event. The channel closes when
// the run ends or ctx is cancelled; the caller must drain it.
func (o *Orchestrator) StreamResearch(ctx context.Context, query types.ResearchQuery) <-chan StreamEvent {
	out := make(chan StreamEvent, 16)

	plan, runCtx := o.preparePlan(ctx, query)

	emit := func(ev StreamEvent) {
		select {
		case out <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(out)
		defer o.finishPlan(plan.ID)

		if _, err := o.run(runCtx, plan, emit); err != nil {
			emit(StreamEvent{Kind: StreamError, Err: err})
		}
	}()

	return out
}
