package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService reads and writes runtime configuration.
type SettingsService interface {
	// Get returns normalised settings, with environment overrides applied.
	Get() (domain.Settings, error)

	// Save persists settings to the config store.
	Save(settings domain.Settings) error

	// Set validates and stores a single key.
	Set(key, value string) error

	// Keys returns every recognised configuration key.
	Keys() []string
}
