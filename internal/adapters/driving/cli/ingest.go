package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var ingestName string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add content to the knowledge base",
	Long: `Acquire content from a git repository or a list of web pages, split it
into chunks, embed the chunks and store them as one new source.`,
}

var ingestRepoCmd = &cobra.Command{
	Use:   "repo [url]",
	Short: "Ingest the text files of a git repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestRepo,
}

var ingestWebCmd = &cobra.Command{
	Use:   "web [url...]",
	Short: "Ingest one or more web pages",
	Long: `Fetches every URL, strips the markup and ingests the pages as one source.
Pages that fail to fetch are skipped and reported; they do not fail the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngestWeb,
}

var ingestBatchCmd = &cobra.Command{
	Use:   "batch [manifest.yaml]",
	Short: "Ingest every source listed in a YAML manifest",
	Long: `Ingests the sources of a manifest one after another. A failed entry is
reported and the batch continues.

Manifest format:
  sources:
    - type: repository
      url: https://github.com/octo/hello.git
    - type: web
      name: Product docs
      urls:
        - https://example.com/docs/install
        - https://example.com/docs/usage`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestBatch,
}

func init() {
	ingestRepoCmd.Flags().StringVar(&ingestName, "name", "", "display name (default: repository name)")
	ingestWebCmd.Flags().StringVar(&ingestName, "name", "", "display name (default: \"Web docs (N URLs)\")")

	ingestCmd.AddCommand(ingestRepoCmd)
	ingestCmd.AddCommand(ingestWebCmd)
	ingestCmd.AddCommand(ingestBatchCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestRepo(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	cmd.Printf("Ingesting repository %s...\n", args[0])
	result, err := ingestionService.IngestRepository(cmd.Context(), args[0], ingestName)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	printIngestResult(cmd, result)
	return nil
}

func runIngestWeb(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	cmd.Printf("Ingesting %d web page(s)...\n", len(args))
	result, err := ingestionService.IngestWeb(cmd.Context(), args, ingestName)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	printIngestResult(cmd, result)
	return nil
}

// manifest is the batch file layout.
type manifest struct {
	Sources []domain.SourceDescriptor `yaml:"sources"`
}

func loadManifest(path string) ([]domain.SourceDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("%w: manifest %s lists no sources", domain.ErrInvalidInput, path)
	}
	return m.Sources, nil
}

func runIngestBatch(cmd *cobra.Command, args []string) error {
	if batchService == nil {
		return errors.New("batch service not configured")
	}

	descs, err := loadManifest(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Ingesting %d source(s)...\n\n", len(descs))
	outcome := batchService.Run(cmd.Context(), descs)

	out := cmd.OutOrStdout()
	for i, r := range outcome.Results {
		name := r.Descriptor.DisplayName()
		if r.Status == domain.BatchItemSuccess {
			cmd.Printf("  [%d] %s %s: %d chunks (%s)\n",
				i+1, paint(out, successStyle, "ok    "), name, r.ChunkCount, r.SourceID)
			continue
		}
		cmd.Printf("  [%d] %s %s: %v\n", i+1, paint(out, errorStyle, "failed"), name, r.Err)
	}

	cmd.Printf("\n%d succeeded, %d failed\n", outcome.Succeeded(), outcome.Failed())
	if outcome.Failed() > 0 && outcome.Succeeded() == 0 {
		return errors.New("every batch entry failed")
	}
	return nil
}

func printIngestResult(cmd *cobra.Command, result domain.IngestResult) {
	out := cmd.OutOrStdout()
	cmd.Printf("%s %q (%s)\n", paint(out, successStyle, "Ingested"), result.Name, result.SourceID)
	cmd.Printf("  Documents: %d\n", result.DocumentCount)
	cmd.Printf("  Chunks:    %d\n", result.ChunkCount)
	if len(result.Skipped) == 0 {
		return
	}
	cmd.Printf("  Skipped:   %d\n", len(result.Skipped))
	for _, item := range result.Skipped {
		cmd.Printf("    - %s\n", paint(out, warningStyle, describeSkip(item)))
	}
}

func describeSkip(item domain.ItemResult) string {
	if item.Err == nil {
		return item.Locator
	}
	var fe *domain.FetchError
	if errors.As(item.Err, &fe) {
		return fe.Error()
	}
	return fmt.Sprintf("%s: %v", item.Locator, item.Err)
}
