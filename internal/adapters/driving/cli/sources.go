package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var reconcileOlderThan time.Duration

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage ingested sources",
	Long:  `List, inspect or delete the sources held in the knowledge base.`,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sources, newest first",
	RunE:  runSourcesList,
}

var sourcesGetCmd = &cobra.Command{
	Use:   "get [source-id]",
	Short: "Show a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesGet,
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete [source-id]",
	Short: "Delete a source and all of its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Mark abandoned ingestions as failed",
	Long: `Sources left in the processing state by an interrupted run are moved to
failed once they have not been updated for the given duration.`,
	RunE: runReconcile,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the store and the embedding provider",
	RunE:  runHealth,
}

func init() {
	reconcileCmd.Flags().DurationVar(&reconcileOlderThan, "older-than", domain.DefaultReconcileAfter,
		"minimum time since the last update")

	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesGetCmd)
	sourcesCmd.AddCommand(sourcesDeleteCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(healthCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources. Add one with 'sercha-rag ingest repo' or 'sercha-rag ingest web'.")
		return nil
	}

	out := cmd.OutOrStdout()
	cmd.Println("Sources:")
	cmd.Println()
	for i := range sources {
		src := &sources[i]
		cmd.Printf("  %s  %s\n", src.ID, paint(out, labelStyle, src.Label()))
		cmd.Printf("    Kind: %s  Status: %s  Chunks: %d\n", src.Kind, statusText(cmd, src.Status), src.ChunkCount)
	}
	cmd.Printf("\nTotal: %d sources\n", len(sources))
	return nil
}

func runSourcesGet(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	src, err := sourceService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}

	cmd.Printf("Source: %s\n\n", src.ID)
	cmd.Printf("  Name:    %s\n", src.Name)
	cmd.Printf("  Kind:    %s\n", src.Kind)
	if src.Origin != "" {
		cmd.Printf("  Origin:  %s\n", src.Origin)
	}
	cmd.Printf("  Status:  %s\n", statusText(cmd, src.Status))
	cmd.Printf("  Chunks:  %d\n", src.ChunkCount)
	cmd.Printf("  Created: %s\n", src.CreatedAt.Local().Format(time.RFC3339))
	cmd.Printf("  Updated: %s\n", src.UpdatedAt.Local().Format(time.RFC3339))
	if urls, ok := src.Metadata["urls"]; ok && urls != "" {
		cmd.Println("  URLs:")
		for _, u := range splitLines(urls) {
			cmd.Printf("    %s\n", u)
		}
	}
	return nil
}

func runSourcesDelete(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	deleted, err := sourceService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	cmd.Printf("Deleted source %s and %d chunks.\n", args[0], deleted)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	stats, err := sourceService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Println(paint(out, headingStyle, "Knowledge Base"))
	cmd.Println("==============")
	cmd.Printf("  Sources:             %d\n", stats.TotalSources)
	cmd.Printf("  Chunks:              %d\n", stats.TotalChunks)
	cmd.Printf("  Embedding dimension: %d\n", stats.EmbeddingDimension)

	if len(stats.ByKind) > 0 {
		cmd.Println()
		cmd.Println("[By Kind]")
		for _, kind := range []domain.SourceKind{domain.SourceKindRepository, domain.SourceKindWeb} {
			cmd.Printf("  %-11s %d\n", kind, stats.ByKind[kind])
		}
	}
	if len(stats.ByStatus) > 0 {
		cmd.Println()
		cmd.Println("[By Status]")
		for _, status := range domain.AllSourceStatuses() {
			cmd.Printf("  %-11s %d\n", status, stats.ByStatus[status])
		}
	}
	if len(stats.PerSource) > 0 {
		cmd.Println()
		cmd.Println("[Chunks per Source]")
		for _, s := range stats.PerSource {
			cmd.Printf("  %6d  %s %s\n", s.Count, s.Name, paint(out, mutedStyle, "("+s.SourceID+")"))
		}
	}
	return nil
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	reconciled, err := sourceService.Reconcile(cmd.Context(), reconcileOlderThan)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	if len(reconciled) == 0 {
		cmd.Println("No abandoned sources.")
		return nil
	}
	for i := range reconciled {
		cmd.Printf("  marked failed: %s (%s)\n", reconciled[i].Label(), reconciled[i].ID)
	}
	cmd.Printf("Reconciled %d source(s).\n", len(reconciled))
	return nil
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	h := sourceService.Health(cmd.Context())
	out := cmd.OutOrStdout()

	store := paint(out, successStyle, "ok")
	if h.StoreError != "" {
		store = paint(out, errorStyle, h.StoreError)
	}
	embedder := paint(out, successStyle, "ok")
	if h.EmbedError != "" {
		embedder = paint(out, errorStyle, h.EmbedError)
	}

	cmd.Printf("  Store:    %s\n", store)
	if h.EmbedderName != "" {
		cmd.Printf("  Embedder: %s (%s)\n", embedder, h.EmbedderName)
	} else {
		cmd.Printf("  Embedder: %s\n", embedder)
	}

	if !h.Healthy {
		return errors.New("unhealthy")
	}
	return nil
}

func statusText(cmd *cobra.Command, status domain.SourceStatus) string {
	out := cmd.OutOrStdout()
	switch status {
	case domain.SourceStatusCompleted:
		return paint(out, successStyle, status.String())
	case domain.SourceStatusFailed:
		return paint(out, errorStyle, status.String())
	default:
		return paint(out, warningStyle, status.String())
	}
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
