package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Chunking]")
	assert.Contains(t, out, "Chunk size: 1000")
	assert.Contains(t, out, "K: 3")
	assert.Contains(t, out, "Distance threshold: 0.70")
	assert.Contains(t, out, "Provider: Ollama (local)")
	assert.Contains(t, out, "SERCHA_RAG_")
}

func TestConfigSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "set", "retrieval.k", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "retrieval.k = 5")

	out, err = execute("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "K: 5")
}

func TestConfigSetCmd_MasksSecrets(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "set", "embedding.api_key", "sk-1234567890abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "embedding.api_key = sk-1...cdef")
	assert.NotContains(t, out, "567890")
}

func TestConfigSetCmd_Invalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("config", "set", "retrieval.k", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an integer")

	_, err = execute("config", "set", "search.mode", "hybrid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")

	_, err = execute("config", "set", "retrieval.k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a value is required")
}

func TestConfigKeysCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "retrieval.distance_threshold")
	assert.Contains(t, out, "SERCHA_RAG_RETRIEVAL_DISTANCE_THRESHOLD")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcd...mnop", maskAPIKey("abcdefghijklmnop"))
	assert.Equal(t, "(not set)", maskedOrUnset(""))
}
