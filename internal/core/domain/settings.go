package domain

import (
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderHashing is the offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// Defaults for every tunable.
const (
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultExcerptChars      = 800
	DefaultEmbeddingModel    = "all-minilm"
	DefaultEmbeddingDims     = 384
	DefaultOllamaURL         = "http://localhost:11434"
	DefaultFetchTimeout      = 10 * time.Second
	DefaultFetchRate         = 5.0
	DefaultCloner            = "git"
	DefaultReconcileAfter    = time.Hour
	defaultExtensionsLiteral = "py,js,ts,jsx,tsx,md,txt,rst,yml,yaml,json"
)

// DefaultExtensions returns the repository file extensions that are ingested.
func DefaultExtensions() []string {
	return strings.Split(defaultExtensionsLiteral, ",")
}

// EmbeddingDimensions maps known embedding models to their dimensions.
var EmbeddingDimensions = map[string]int{
	"all-minilm":             384,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// ChunkingSettings configures the recursive text splitter.
type ChunkingSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// Overlap is the number of trailing characters repeated in the next chunk.
	Overlap int
}

// RetrievalSettings configures nearest-neighbour retrieval.
type RetrievalSettings struct {
	K                 int
	DistanceThreshold float64
	ExcerptChars      int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// Dimensions is the vector length every chunk must share.
	Dimensions int

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return e.Provider == AIProviderHashing || e.Model != ""
}

// AcquisitionSettings configures repository and web acquisition.
type AcquisitionSettings struct {
	// FetchTimeout bounds each web page request.
	FetchTimeout time.Duration

	// FetchRate is the maximum number of web requests per second.
	FetchRate float64

	// Extensions is the allow-list of repository file extensions, without dots.
	Extensions []string

	// WorkDir is the parent directory for scoped clone directories.
	// Empty uses the system temp directory.
	WorkDir string

	// Cloner selects "git" (git CLI) or "github" (archive download).
	Cloner string

	// GitHubToken authenticates archive downloads.
	GitHubToken string
}

// StorageSettings configures persistence.
type StorageSettings struct {
	// DataDir holds the SQLite database.
	DataDir string
}

// Settings is the complete runtime configuration.
type Settings struct {
	Chunking    ChunkingSettings
	Retrieval   RetrievalSettings
	Embedding   EmbeddingSettings
	Acquisition AcquisitionSettings
	Storage     StorageSettings
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			K:                 DefaultSearchK,
			DistanceThreshold: DefaultDistanceThreshold,
			ExcerptChars:      DefaultExcerptChars,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      DefaultEmbeddingModel,
			Dimensions: DefaultEmbeddingDims,
			BaseURL:    DefaultOllamaURL,
		},
		Acquisition: AcquisitionSettings{
			FetchTimeout: DefaultFetchTimeout,
			FetchRate:    DefaultFetchRate,
			Extensions:   DefaultExtensions(),
			Cloner:       DefaultCloner,
		},
	}
}

// Normalise replaces invalid values with defaults.
// A zero overlap is kept. An overlap that is not smaller than the chunk size
// is clamped to a quarter of it.
func (s *Settings) Normalise() {
	d := DefaultSettings()
	if s.Chunking.ChunkSize <= 0 {
		s.Chunking.ChunkSize = d.Chunking.ChunkSize
	}
	if s.Chunking.Overlap < 0 {
		s.Chunking.Overlap = 0
	}
	if s.Chunking.Overlap >= s.Chunking.ChunkSize {
		s.Chunking.Overlap = s.Chunking.ChunkSize / 4
	}
	if s.Retrieval.K <= 0 {
		s.Retrieval.K = d.Retrieval.K
	}
	if s.Retrieval.DistanceThreshold <= 0 {
		s.Retrieval.DistanceThreshold = d.Retrieval.DistanceThreshold
	}
	if s.Retrieval.ExcerptChars <= 0 {
		s.Retrieval.ExcerptChars = d.Retrieval.ExcerptChars
	}
	if !s.Embedding.Provider.IsValid() {
		s.Embedding.Provider = d.Embedding.Provider
	}
	if s.Embedding.Model == "" {
		s.Embedding.Model = d.Embedding.Model
	}
	if s.Embedding.Dimensions <= 0 {
		if dims, ok := EmbeddingDimensions[s.Embedding.Model]; ok {
			s.Embedding.Dimensions = dims
		} else {
			s.Embedding.Dimensions = d.Embedding.Dimensions
		}
	}
	if s.Embedding.Provider == AIProviderOllama && s.Embedding.BaseURL == "" {
		s.Embedding.BaseURL = d.Embedding.BaseURL
	}
	if s.Acquisition.FetchTimeout <= 0 {
		s.Acquisition.FetchTimeout = d.Acquisition.FetchTimeout
	}
	if s.Acquisition.FetchRate <= 0 {
		s.Acquisition.FetchRate = d.Acquisition.FetchRate
	}
	if len(s.Acquisition.Extensions) == 0 {
		s.Acquisition.Extensions = d.Acquisition.Extensions
	}
	if s.Acquisition.Cloner == "" {
		s.Acquisition.Cloner = d.Acquisition.Cloner
	}
}
