// Package cli provides the cobra command tree for sercha-rag.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var (
	ingestionService driving.IngestionService
	batchService     driving.BatchService
	retrievalService driving.RetrievalService
	sourceService    driving.SourceService
	settingsService  driving.SettingsService
)

// Services holds the driving ports used by the commands.
// Nil fields make the matching commands report "not configured".
type Services struct {
	Ingestion driving.IngestionService
	Batch     driving.BatchService
	Retrieval driving.RetrievalService
	Source    driving.SourceService
	Settings  driving.SettingsService
}

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Local knowledge base for retrieval-augmented answers",
	Long: `sercha-rag ingests git repositories and web pages into a local knowledge
base, splits them into overlapping chunks, embeds every chunk and answers
questions by retrieving the closest chunks.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	ingestionService = s.Ingestion
	batchService = s.Batch
	retrievalService = s.Retrieval
	sourceService = s.Source
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
