// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/quality"
	"github.com/pdiddy/deep-research/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score [url]",
	Short: "Score a single source URL for quality",
	Long: `Score evaluates one URL against the quality model: source type,
domain reputation, freshness, authority, and content signals, blended
into an overall 0-100 score with a confidence estimate.

Metadata flags fill in what the URL alone cannot reveal; more metadata
raises the confidence of the score.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().String("title", "", "document title")
	scoreCmd.Flags().String("author", "", "document byline")
	scoreCmd.Flags().String("published", "", "publication date (YYYY-MM-DD)")
	scoreCmd.Flags().String("updated", "", "last update date (YYYY-MM-DD)")
	scoreCmd.Flags().Int("citations", 0, "citation count")
	scoreCmd.Flags().Int("word-count", 0, "document word count")
	scoreCmd.Flags().Bool("has-references", false, "document cites its sources")
	scoreCmd.Flags().Bool("json", false, "output the score as JSON")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	meta, err := metadataFromFlags(cmd, args[0])
	if err != nil {
		return err
	}

	cfg := engineConfig()
	scorer := quality.NewScorer(cfg.Quality, nil, log)
	score := scorer.ScoreSource(meta)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(score)
	}

	fmt.Printf("%s (%s)\n\n", meta.URL, score.Type)
	fmt.Fprintf(os.Stdout, "%-12s  %-7s  %-7s  %s\n", "Factor", "Score", "Weight", "Reason")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, f := range score.Factors {
		fmt.Fprintf(os.Stdout, "%-12s  %-7.1f  %-7.2f  %s\n", f.Name, f.Score, f.Weight, f.Reason)
	}
	fmt.Printf("\noverall %.1f / 100 (confidence %.2f)\n", score.Overall, score.Confidence)
	return nil
}

func metadataFromFlags(cmd *cobra.Command, rawURL string) (types.SourceMetadata, error) {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	published, _ := cmd.Flags().GetString("published")
	updated, _ := cmd.Flags().GetString("updated")
	citations, _ := cmd.Flags().GetInt("citations")
	wordCount, _ := cmd.Flags().GetInt("word-count")
	hasRefs, _ := cmd.Flags().GetBool("has-references")

	meta := types.SourceMetadata{
		URL:           rawURL,
		Domain:        quality.ExtractDomain(rawURL),
		Title:         title,
		Author:        author,
		CitationCount: citations,
		WordCount:     wordCount,
		HasReferences: hasRefs,
	}

	if published != "" {
		t, err := time.Parse("2006-01-02", published)
		if err != nil {
			return types.SourceMetadata{}, fmt.Errorf("parsing --published: %w", err)
		}
		meta.PublishedDate = t
	}
	if updated != "" {
		t, err := time.Parse("2006-01-02", updated)
		if err != nil {
			return types.SourceMetadata{}, fmt.Errorf("parsing --updated: %w", err)
		}
		meta.LastUpdated = t
	}
	return meta, nil
}
