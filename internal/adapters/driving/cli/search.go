package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// previewChars bounds the content shown per search result.
const previewChars = 500

var (
	searchK         int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Long: `Embeds the query and returns the closest chunks by Euclidean distance.
Only chunks closer than the distance threshold are returned, nearest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the knowledge base",
	Long: `Retrieves the chunks closest to the question and composes an answer that
quotes them with their sources.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "limit", "k", 0, "maximum number of results (default from config)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "maximum distance (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	opts := domain.SearchOptions{
		K:                 searchK,
		DistanceThreshold: searchThreshold,
	}
	results, err := retrievalService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	answer, err := retrievalService.ComposeResponse(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println(answer)
	return nil
}

// searchResultJSON is the JSON shape of one search result.
type searchResultJSON struct {
	Content         string         `json:"content"`
	Metadata        map[string]any `json:"metadata"`
	Distance        float64        `json:"distance"`
	SimilarityScore float64        `json:"similarity_score"`
	SourceID        string         `json:"source_id"`
	Position        int            `json:"position"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	out := make([]searchResultJSON, len(results))
	for i, r := range results {
		out[i] = searchResultJSON{
			Content:         preview(r.Chunk.Content),
			Metadata:        r.Metadata(),
			Distance:        r.Distance,
			SimilarityScore: r.SimilarityScore(),
			SourceID:        r.Chunk.SourceID,
			Position:        r.Chunk.Position,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	out := cmd.OutOrStdout()
	cmd.Println(paint(out, headingStyle, "Results:"))
	cmd.Println()
	for i := range results {
		r := results[i]
		label := r.SourceName
		if path, ok := r.Chunk.Metadata[domain.MetaPath].(string); ok && path != "" {
			label += "/" + path
		} else if origin, ok := r.Chunk.Metadata[domain.MetaOriginURL].(string); ok && origin != "" {
			label = origin
		}

		cmd.Printf("  [%d] %s %s\n", i+1,
			paint(out, labelStyle, label),
			paint(out, mutedStyle, fmt.Sprintf("(similarity %.2f, distance %.3f)", r.SimilarityScore(), r.Distance)))
		for _, line := range strings.Split(preview(r.Chunk.Content), "\n") {
			cmd.Printf("      %s\n", line)
		}
		cmd.Println()
	}
	return nil
}

// preview returns the first previewChars characters of s, marking a cut with "...".
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewChars]) + "..."
}
