// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/store"
	"github.com/pdiddy/deep-research/pkg/types"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage the research session archive (list, show, search, delete)",
	Long: `Sessions manages the local archive of completed research runs. Use
subcommands to list sessions, show a full result, search past findings
with full-text queries, or delete a session.`,
}

// --- list subcommand ---

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions, most recent first",
	RunE:  runSessionsList,
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	sessions, err := s.Sessions(cmd.Context())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("No archived sessions.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-38s  %-30s  %-12s  %-8s  %-9s  %s\n",
		"ID", "Query", "Completed", "Findings", "Citations", "Quality")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, sess := range sessions {
		fmt.Fprintf(os.Stdout, "%-38s  %-30s  %-12s  %-8d  %-9d  %.1f\n",
			sess.ID, truncate(sess.Query, 30),
			sess.CompletedAt.Format("2006-01-02"),
			sess.FindingCount, sess.CitationCount, sess.AverageQuality)
	}
	fmt.Fprintf(os.Stdout, "\n%d sessions\n", len(sessions))
	return nil
}

// --- show subcommand ---

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show the full result of an archived session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Session(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("query: %s\n\n", result.Query)
	printFindings(result.Findings)
	printStatistics(result)
	return nil
}

// --- search subcommand ---

var sessionsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search archived findings with full-text search and filters",
	Long: `Search runs an FTS5 full-text query over the findings of every
archived session, optionally filtered by finding type, session, or
minimum confidence.`,
	RunE: runSessionsSearch,
}

func runSessionsSearch(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	findingType, _ := cmd.Flags().GetString("type")
	sessionID, _ := cmd.Flags().GetString("session")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := store.SearchOptions{
		Query:         strings.Join(args, " "),
		Type:          types.FindingType(findingType),
		SessionID:     sessionID,
		MinConfidence: minConfidence,
		MaxResults:    limit,
	}
	if opts.Query == "" && opts.Type == "" && opts.SessionID == "" && opts.MinConfidence == 0 {
		return fmt.Errorf("query or filter required: provide search terms, --type, --session, or --min-confidence")
	}

	hits, err := s.SearchFindings(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-10s  %-30s  %s\n",
		"Rank", "Type", "Confidence", "Session query", "Finding")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for i, h := range hits {
		fmt.Fprintf(os.Stdout, "%-4d  %-8s  %-10.2f  %-30s  %s\n",
			i+1, h.Type, h.Confidence, truncate(h.SessionQuery, 30), truncate(h.Content, 50))
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(hits))
	return nil
}

// --- delete subcommand ---

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete an archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openArchive()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeleteSession(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted session %s\n", args[0])
		return nil
	},
}

// --- shared helpers ---

func openArchive() (*store.Store, error) {
	return store.NewStore(engineConfig().Store)
}

func init() {
	sessionsListCmd.Flags().Bool("json", false, "output as JSON")
	sessionsShowCmd.Flags().Bool("json", false, "output as JSON")

	sessionsSearchCmd.Flags().String("type", "", "filter by finding type: fact, opinion, data, trend, insight")
	sessionsSearchCmd.Flags().String("session", "", "restrict search to one session ID")
	sessionsSearchCmd.Flags().Float64("min-confidence", 0, "drop findings below this confidence")
	sessionsSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	sessionsSearchCmd.Flags().Bool("json", false, "output as JSON")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsSearchCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	rootCmd.AddCommand(sessionsCmd)
}
