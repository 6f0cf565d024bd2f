package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// secretKeys are prompted for without echo when no value is given.
var secretKeys = map[string]bool{
	"embedding.api_key":        true,
	"acquisition.github_token": true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the settings stored in ~/.sercha-rag/config.toml.

Every key can also be overridden from the environment, for example
SERCHA_RAG_RETRIEVAL_K=5 overrides retrieval.k.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Secrets (embedding.api_key,
acquisition.github_token) are read from the terminal when the value is omitted.

Run 'sercha-rag config keys' for the list of keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  K: %d\n", settings.Retrieval.K)
	cmd.Printf("  Distance threshold: %.2f\n", settings.Retrieval.DistanceThreshold)
	cmd.Printf("  Excerpt chars: %d\n", settings.Retrieval.ExcerptChars)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.Provider != domain.AIProviderHashing {
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	}
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.Provider == domain.AIProviderOllama || settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskedOrUnset(settings.Embedding.APIKey))
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Acquisition]")
	cmd.Printf("  Fetch timeout: %s\n", settings.Acquisition.FetchTimeout)
	cmd.Printf("  Fetch rate: %.1f/s\n", settings.Acquisition.FetchRate)
	cmd.Printf("  Extensions: %s\n", strings.Join(settings.Acquisition.Extensions, ","))
	cmd.Printf("  Cloner: %s\n", settings.Acquisition.Cloner)
	if settings.Acquisition.Cloner == "github" {
		cmd.Printf("  GitHub token: %s\n", maskedOrUnset(settings.Acquisition.GitHubToken))
	}
	cmd.Printf("  Work dir: %s\n", orDefault(settings.Acquisition.WorkDir, "(system temp)"))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", orDefault(settings.Storage.DataDir, "~/.sercha-rag/data"))
	cmd.Println()

	cmd.Println(paint(cmd.OutOrStdout(), mutedStyle,
		"Environment overrides use the "+services.EnvPrefix+" prefix."))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case secretKeys[key]:
		cmd.Printf("Enter %s: ", key)
		value = readPassword()
		cmd.Println()
		if value == "" {
			return errors.New("no value entered")
		}
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if secretKeys[key] {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Printf("  %-30s %s\n", key, paint(cmd.OutOrStdout(), mutedStyle, services.EnvName(key)))
	}
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskedOrUnset(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return maskAPIKey(secret)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
