// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources implements the engine's source manager: a set of search
// backends (web, Wikipedia, academic index) fanned out concurrently per
// sub-query, with per-backend failure capture and URL-level deduplication.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Backend searches one source category. Implementations must honor ctx and
// return partial metadata rather than failing on missing fields.
type Backend interface {
	Name() string
	Category() types.SourceCategory
	Priority() int
	Search(ctx context.Context, query types.SearchQuery, cfg types.SourcesConfig) ([]types.SourceResult, error)
}

// Aggregator fans a search query out across backends. It implements the
// orchestrator's SourceManager interface.
type Aggregator struct {
	cfg      types.SourcesConfig
	backends []Backend
	log      *zap.Logger
}

// NewAggregator builds an aggregator with the backends cfg enables. logger
// may be nil.
func NewAggregator(cfg types.SourcesConfig, logger *zap.Logger) *Aggregator {
	client := &http.Client{Timeout: cfg.Timeout}

	var backends []Backend
	if cfg.EnableWeb {
		backends = append(backends, &WebBackend{Client: client})
	}
	if cfg.EnableWikipedia {
		backends = append(backends, &WikipediaBackend{Client: client})
	}
	if cfg.EnableAcademic {
		backends = append(backends, &AcademicBackend{Client: client, Email: cfg.ContactEmail})
	}

	return NewAggregatorWith(cfg, logger, backends...)
}

// NewAggregatorWith builds an aggregator over explicit backends.
func NewAggregatorWith(cfg types.SourcesConfig, logger *zap.Logger, backends ...Backend) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	return &Aggregator{cfg: cfg, backends: backends, log: logger}
}

// AggregatedResults queries every eligible backend concurrently and merges
// the results, deduplicated by URL and sorted by relevance. Individual
// backend failures are logged and tolerated; an error is returned only when
// every eligible backend fails.
func (a *Aggregator) AggregatedResults(ctx context.Context, query types.SearchQuery) ([]types.SourceResult, error) {
	eligible := a.eligibleBackends(query)
	if len(eligible) == 0 {
		return nil, nil
	}

	if query.MaxResults <= 0 || query.MaxResults > a.cfg.MaxResults {
		query.MaxResults = a.cfg.MaxResults
	}

	type backendResult struct {
		name    string
		results []types.SourceResult
		err     error
	}

	ch := make(chan backendResult, len(eligible))
	var wg sync.WaitGroup
	for _, b := range eligible {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			results, err := b.Search(ctx, query, a.cfg)
			ch <- backendResult{name: b.Name(), results: results, err: err}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.SourceResult
	failures := 0
	var lastErr error
	for br := range ch {
		if br.err != nil {
			failures++
			lastErr = fmt.Errorf("%s: %w", br.name, br.err)
			a.log.Warn("backend failed",
				zap.String("backend", br.name), zap.Error(br.err))
			continue
		}
		all = append(all, br.results...)
	}

	if failures == len(eligible) {
		return nil, lastErr
	}

	merged := dedupeByURL(all)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})
	if len(merged) > query.MaxResults {
		merged = merged[:query.MaxResults]
	}
	return merged, nil
}

func (a *Aggregator) eligibleBackends(query types.SearchQuery) []Backend {
	wanted := make(map[types.SourceCategory]bool, len(query.Categories))
	for _, c := range query.Categories {
		wanted[c] = true
	}

	var out []Backend
	for _, b := range a.backends {
		if len(wanted) > 0 && !wanted[b.Category()] {
			continue
		}
		if b.Priority() < query.MinPriority {
			continue
		}
		out = append(out, b)
	}
	return out
}

// dedupeByURL keeps the first result per URL, filling missing fields and
// keeping the higher relevance from later duplicates.
func dedupeByURL(results []types.SourceResult) []types.SourceResult {
	seen := make(map[string]int)
	var out []types.SourceResult

	for _, r := range results {
		if r.URL == "" {
			continue
		}
		idx, ok := seen[r.URL]
		if !ok {
			seen[r.URL] = len(out)
			out = append(out, r)
			continue
		}

		dst := &out[idx]
		if dst.Title == "" {
			dst.Title = r.Title
		}
		if dst.Snippet == "" {
			dst.Snippet = r.Snippet
		}
		if dst.Author == "" {
			dst.Author = r.Author
		}
		if dst.PublishedDate.IsZero() {
			dst.PublishedDate = r.PublishedDate
		}
		if r.RelevanceScore > dst.RelevanceScore {
			dst.RelevanceScore = r.RelevanceScore
		}
	}
	return out
}

// positionRelevance assigns a descending score by result position for
// backends whose APIs return relevance-ordered results without a score.
func positionRelevance(i, total int) float64 {
	if total <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(total-1)*0.9
}
