package driving

import "github.com/custodia-labs/xerosync/internal/core/domain"

// SettingsService manages export settings.
type SettingsService interface {
	// Get retrieves current settings merged over the defaults.
	Get() (*domain.Settings, error)

	// Set validates and persists one setting.
	Set(key domain.SettingKey, value string) error

	// Path returns where settings are stored.
	Path() string
}
