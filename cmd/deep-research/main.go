// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deep-research CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/secrets"
	"github.com/pdiddy/deep-research/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the deep-research CLI.
var rootCmd = &cobra.Command{
	Use:   "deep-research",
	Short: "Concurrent research engine with source scoring and citation tracking",
	Long: `deep-research answers research questions by decomposing them into
sub-queries, executing them in prioritized phases against web, reference,
and academic backends, scoring every source for quality, and tracking
citations with cross-reference verification.

Completed sessions are archived locally; use the sessions subcommand to
list, inspect, and search past research.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deep-research.yaml or ~/.config/deep-research/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deep-research")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deep-research"))
		}
	}

	viper.SetEnvPrefix("DEEP_RESEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger: errors only by default, full development
// output with --verbose.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	return cfg.Build()
}

// engineConfig assembles the full engine configuration from viper, with
// secrets filling gaps the config file leaves.
func engineConfig() types.Config {
	viper.SetDefault("sources.timeout", 30*time.Second)
	viper.SetDefault("sources.user_agent", "deep-research/"+version)
	viper.SetDefault("sources.max_results", 10)
	viper.SetDefault("sources.enable_web", true)
	viper.SetDefault("sources.enable_wikipedia", true)
	viper.SetDefault("sources.enable_academic", true)
	viper.SetDefault("tracker.min_cross_refs", 2)
	viper.SetDefault("tracker.enable_auto_verification", true)
	viper.SetDefault("orchestrator.max_concurrent_sub_queries", 3)
	viper.SetDefault("orchestrator.enable_cross_referencing", true)
	viper.SetDefault("store.data_dir", "sessions")
	viper.SetDefault("store.max_results", 20)

	cfg := types.Config{
		Quality: types.QualityConfig{
			FreshnessHalfLife:   viper.GetDuration("quality.freshness_half_life"),
			FreshnessMaxPenalty: viper.GetFloat64("quality.freshness_max_penalty"),
		},
		Tracker: types.TrackerConfig{
			MinQualityScore:        viper.GetFloat64("tracker.min_quality_score"),
			MinCrossRefs:           viper.GetInt("tracker.min_cross_refs"),
			EnableAutoVerification: viper.GetBool("tracker.enable_auto_verification"),
		},
		Orchestrator: types.OrchestratorConfig{
			MaxConcurrentSubQueries: viper.GetInt("orchestrator.max_concurrent_sub_queries"),
			EnableCrossReferencing:  viper.GetBool("orchestrator.enable_cross_referencing"),
		},
		Sources: types.SourcesConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("sources.timeout"),
				UserAgent: viper.GetString("sources.user_agent"),
			},
			MaxResults:      viper.GetInt("sources.max_results"),
			EnableWeb:       viper.GetBool("sources.enable_web"),
			EnableWikipedia: viper.GetBool("sources.enable_wikipedia"),
			EnableAcademic:  viper.GetBool("sources.enable_academic"),
			SearchAPIKey:    secretDefault("search-api-key", viper.GetString("sources.search_api_key")),
			ContactEmail:    secretDefault("contact-email", viper.GetString("sources.contact_email")),
		},
		Store: types.StoreConfig{
			DataDir:    viper.GetString("store.data_dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
