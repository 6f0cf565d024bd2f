package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"ingest", "search", "ask", "sources", "stats", "reconcile", "health", "config", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer logger.SetVerbose(false)

	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)

	_, err := execute("--verbose", "version")
	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestCommands_ErrorWithoutServices(t *testing.T) {
	SetServices(Services{})

	tests := [][]string{
		{"ingest", "repo", "https://example.com/r.git"},
		{"ingest", "web", "https://example.com/"},
		{"ingest", "batch", "manifest.yaml"},
		{"search", "query"},
		{"ask", "question"},
		{"sources", "list"},
		{"sources", "get", "id"},
		{"sources", "delete", "id"},
		{"stats"},
		{"reconcile"},
		{"health"},
		{"mcp", "serve"},
		{"config", "show"},
		{"config", "set", "retrieval.k", "3"},
	}
	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			_, err := execute(args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not configured")
		})
	}
}
