package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides. "retrieval.k" is read from SERCHA_RAG_RETRIEVAL_K.
const EnvPrefix = "SERCHA_RAG_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize         = "chunking.chunk_size"
	keyChunkOverlap      = "chunking.overlap"
	keyRetrievalK        = "retrieval.k"
	keyDistanceThreshold = "retrieval.distance_threshold"
	keyExcerptChars      = "retrieval.excerpt_chars"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyFetchTimeout      = "acquisition.fetch_timeout"
	keyFetchRate         = "acquisition.fetch_rate"
	keyExtensions        = "acquisition.extensions"
	keyWorkDir           = "acquisition.work_dir"
	keyCloner            = "acquisition.cloner"
	keyGitHubToken       = "acquisition.github_token"
	keyDataDir           = "storage.data_dir"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
	kindList
)

var settingKinds = map[string]valueKind{
	keyChunkSize:         kindInt,
	keyChunkOverlap:      kindInt,
	keyRetrievalK:        kindInt,
	keyDistanceThreshold: kindFloat,
	keyExcerptChars:      kindInt,
	keyEmbedProvider:     kindString,
	keyEmbedModel:        kindString,
	keyEmbedDimensions:   kindInt,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyFetchTimeout:      kindDuration,
	keyFetchRate:         kindFloat,
	keyExtensions:        kindList,
	keyWorkDir:           kindString,
	keyCloner:            kindString,
	keyGitHubToken:       kindString,
	keyDataDir:           kindString,
}

type keyValue struct {
	key   string
	value any
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a settings service reading overrides from the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	s.lookupEnv = lookup
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get returns normalised settings. Unparsable values fall back to defaults.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := domain.Settings{
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, d.Chunking.ChunkSize),
			Overlap:   s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			K:                 s.getInt(keyRetrievalK, d.Retrieval.K),
			DistanceThreshold: s.getFloat(keyDistanceThreshold, d.Retrieval.DistanceThreshold),
			ExcerptChars:      s.getInt(keyExcerptChars, d.Retrieval.ExcerptChars),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   domain.AIProvider(s.getString(keyEmbedProvider, d.Embedding.Provider.String())),
			Model:      s.getString(keyEmbedModel, ""),
			Dimensions: s.getInt(keyEmbedDimensions, 0),
			BaseURL:    s.getString(keyEmbedBaseURL, ""),
			APIKey:     s.getString(keyEmbedAPIKey, ""),
		},
		Acquisition: domain.AcquisitionSettings{
			FetchTimeout: s.getDuration(keyFetchTimeout, d.Acquisition.FetchTimeout),
			FetchRate:    s.getFloat(keyFetchRate, d.Acquisition.FetchRate),
			Extensions:   s.getList(keyExtensions, d.Acquisition.Extensions),
			WorkDir:      s.getString(keyWorkDir, ""),
			Cloner:       s.getString(keyCloner, d.Acquisition.Cloner),
			GitHubToken:  s.getString(keyGitHubToken, ""),
		},
		Storage: domain.StorageSettings{
			DataDir: s.getString(keyDataDir, ""),
		},
	}
	if settings.Embedding.Model == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.Model = "text-embedding-3-small"
	}

	settings.Normalise()
	return settings, nil
}

// Save persists application settings. Secrets are only written when set.
func (s *SettingsService) Save(settings domain.Settings) error {
	values := []keyValue{
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyRetrievalK, settings.Retrieval.K},
		{keyDistanceThreshold, settings.Retrieval.DistanceThreshold},
		{keyExcerptChars, settings.Retrieval.ExcerptChars},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyFetchTimeout, settings.Acquisition.FetchTimeout.String()},
		{keyFetchRate, settings.Acquisition.FetchRate},
		{keyExtensions, settings.Acquisition.Extensions},
		{keyWorkDir, settings.Acquisition.WorkDir},
		{keyCloner, settings.Acquisition.Cloner},
		{keyDataDir, settings.Storage.DataDir},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, keyValue{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.Acquisition.GitHubToken != "" {
		values = append(values, keyValue{keyGitHubToken, settings.Acquisition.GitHubToken})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindDuration:
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 10s", domain.ErrInvalidInput, key)
		}
		parsed = d.String()
	case kindList:
		parsed = splitList(value)
	default:
		if key == keyEmbedProvider && !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	}
	return s.configStore.Set(key, parsed)
}

// Keys returns every recognised configuration key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// raw returns the environment override or the stored value of key as text.
func (s *SettingsService) raw(key string) (string, bool) {
	if s.lookupEnv != nil {
		if v, ok := s.lookupEnv(EnvName(key)); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	v, ok := s.configStore.Get(key)
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, val != ""
	case []string:
		return strings.Join(val, ","), len(val) > 0
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ","), len(parts) > 0
	default:
		return fmt.Sprint(val), true
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.raw(key); ok {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.raw(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f)
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.raw(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getDuration accepts Go duration syntax or a plain number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	v, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultVal
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if v, ok := s.raw(key); ok {
		if list := splitList(v); len(list) > 0 {
			return list
		}
	}
	return defaultVal
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
