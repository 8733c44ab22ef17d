// Package cli provides the flowwatch command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "flowwatch",
	Short: "Track attention flow across news and social platforms",
	Long: `flowwatch samples hot lists from 22 Chinese news, social, finance and
tech platforms, scores the attention flowing through them, classifies
market sentiment and flow stage, and raises alerts when thresholds trip.

Snapshots are stored locally in sqlite. Run 'flowwatch run' for a single
pass or 'flowwatch scheduler start' to sample continuously.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// VocabularyWatcher hot-reloads the keyword vocabulary until ctx is done.
type VocabularyWatcher interface {
	Watch(ctx context.Context) error
}

// Services holds the driving ports the commands call into.
// Any field may be nil; commands that need a missing service fail
// with a "not configured" error.
type Services struct {
	Catalog    driving.SourceCatalog
	Ingestion  driving.Ingestion
	Pipeline   driving.Pipeline
	History    driving.History
	Alerts     driving.Alerts
	Scheduler  driving.Scheduler
	Settings   driving.Settings
	Vocabulary VocabularyWatcher
}

var (
	catalog           driving.SourceCatalog
	ingestion         driving.Ingestion
	pipeline          driving.Pipeline
	historyService    driving.History
	alertsService     driving.Alerts
	scheduler         driving.Scheduler
	settingsService   driving.Settings
	vocabularyWatcher VocabularyWatcher
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by every command.
func SetServices(s *Services) {
	catalog = s.Catalog
	ingestion = s.Ingestion
	pipeline = s.Pipeline
	historyService = s.History
	alertsService = s.Alerts
	scheduler = s.Scheduler
	settingsService = s.Settings
	vocabularyWatcher = s.Vocabulary
}

// SetVersion sets the version reported by 'flowwatch version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. ctx is cancelled on interrupt by the caller.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
