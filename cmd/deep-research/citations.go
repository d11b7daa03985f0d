// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/citation"
	"github.com/pdiddy/deep-research/internal/store"
)

var citationsCmd = &cobra.Command{
	Use:   "citations [session-id]",
	Short: "Export the citations of an archived session",
	Long: `Citations renders the citation list of an archived research session
in one of several formats: json, yaml, bibtex, apa, or mla.`,
	Args: cobra.ExactArgs(1),
	RunE: runCitations,
}

func init() {
	citationsCmd.Flags().String("format", "json", "export format: json, yaml, bibtex, apa, mla")

	rootCmd.AddCommand(citationsCmd)
}

func runCitations(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := engineConfig()
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Session(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(result.Citations) == 0 {
		return fmt.Errorf("session %s has no citations", args[0])
	}

	out, err := citation.Format(result.Citations, citation.ExportFormat(format))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
