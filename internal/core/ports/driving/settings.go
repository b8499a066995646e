package driving

import "github.com/custodia-labs/storysmith/internal/core/domain"

// SettingsService resolves application settings from the config file and
// environment.
type SettingsService interface {
	// Get returns defaults overlaid by the config file and then the environment.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single config key.
	Set(key, value string) error

	// Effective returns every known key with its resolved value.
	// Secrets are masked.
	Effective() (map[string]string, error)

	// Validate checks the resolved settings are usable.
	Validate() error
}
