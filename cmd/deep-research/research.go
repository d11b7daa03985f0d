// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/citation"
	"github.com/pdiddy/deep-research/internal/events"
	"github.com/pdiddy/deep-research/internal/quality"
	"github.com/pdiddy/deep-research/internal/research"
	"github.com/pdiddy/deep-research/internal/sources"
	"github.com/pdiddy/deep-research/internal/store"
	"github.com/pdiddy/deep-research/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [question]",
	Short: "Run a research question end to end",
	Long: `Research decomposes a question into prioritized sub-queries, executes
them in phases against the configured source backends, scores and tracks
every citation, and prints ranked findings.

Depth presets (quick, standard, deep, exhaustive) control how many
sub-queries and sources a run may use. Completed sessions are archived
unless --no-archive is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("depth", "standard", "research depth: quick, standard, deep, exhaustive")
	researchCmd.Flags().String("intent", "", "override intent classification: factual, comparative, exploratory, current_events, academic, technical, analytical")
	researchCmd.Flags().Bool("stream", false, "print findings as they arrive instead of a final table")
	researchCmd.Flags().Bool("json", false, "output the full result as JSON")
	researchCmd.Flags().Bool("no-archive", false, "skip archiving the session")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := engineConfig()
	depth, _ := cmd.Flags().GetString("depth")
	intent, _ := cmd.Flags().GetString("intent")
	streaming, _ := cmd.Flags().GetBool("stream")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	noArchive, _ := cmd.Flags().GetBool("no-archive")

	bus := events.NewBus()
	scorer := quality.NewScorer(cfg.Quality, bus, log)
	tracker := citation.NewTracker(cfg.Tracker, scorer, bus, log)
	aggregator := sources.NewAggregator(cfg.Sources, log)
	orch := research.NewOrchestrator(cfg.Orchestrator, aggregator, scorer, tracker, bus, log)

	// The plan is needed for archiving; capture it as it is created.
	var plan types.ResearchPlan
	bus.Subscribe(func(ev events.Event) {
		if p, ok := ev.Payload.(types.ResearchPlan); ok {
			plan = p
		}
	}, events.PlanCreated)

	query := types.ResearchQuery{
		Text:   strings.Join(args, " "),
		Depth:  types.ResearchDepth(depth),
		Intent: types.ResearchIntent(intent),
	}

	var result types.ResearchResult
	if streaming {
		result, err = streamToTerminal(cmd.Context(), orch, query)
	} else {
		result, err = orch.Research(cmd.Context(), query)
	}
	if err != nil {
		return err
	}

	if !noArchive {
		if archiveErr := archiveSession(cmd.Context(), cfg.Store, result, plan); archiveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: session not archived: %v\n", archiveErr)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	if !streaming {
		printFindings(result.Findings)
	}
	printStatistics(result)
	return nil
}

// streamToTerminal drains a streamed run, printing findings as they arrive,
// and returns the terminal result.
func streamToTerminal(ctx context.Context, orch *research.Orchestrator, query types.ResearchQuery) (types.ResearchResult, error) {
	var result types.ResearchResult
	var runErr error

	for ev := range orch.StreamResearch(ctx, query) {
		switch ev.Kind {
		case research.StreamProgress:
			fmt.Fprintf(os.Stderr, "phase %-13s  %d/%d sub-queries, %d results\n",
				ev.Progress.Phase, ev.Progress.CompletedQueries,
				ev.Progress.TotalQueries, ev.Progress.ResultsSoFar)
		case research.StreamFinding:
			fmt.Printf("[%s] (%.2f) %s\n", ev.Finding.Type, ev.Finding.Confidence,
				truncate(ev.Finding.Content, 120))
		case research.StreamCitation:
			fmt.Fprintf(os.Stderr, "cited %s (quality %.0f)\n",
				ev.Citation.URL, ev.Citation.Quality.Overall)
		case research.StreamComplete:
			result = *ev.Result
		case research.StreamError:
			runErr = ev.Err
		}
	}
	return result, runErr
}

func archiveSession(ctx context.Context, cfg types.StoreConfig, result types.ResearchResult, plan types.ResearchPlan) error {
	s, err := store.NewStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Archive(ctx, result, plan)
}

func printFindings(findings []types.Finding) {
	if len(findings) == 0 {
		fmt.Println("No findings.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-10s  %s\n", "Rank", "Type", "Confidence", "Finding")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for i, f := range findings {
		fmt.Fprintf(os.Stdout, "%-4d  %-8s  %-10.2f  %s\n",
			i+1, f.Type, f.Confidence, truncate(f.Content, 70))
	}
}

func printStatistics(result types.ResearchResult) {
	stats := result.Statistics
	fmt.Fprintf(os.Stdout,
		"\nsession %s: %d findings (%d results, %d unique), %d citations, avg quality %.1f, %d failed queries, %s\n",
		result.PlanID, len(result.Findings), stats.TotalResults, stats.UniqueResults,
		stats.CitationsAdded, stats.AverageQuality, stats.FailedQueries,
		stats.ExecutionTime.Round(time.Millisecond))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
