package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString returns "" if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// Set stores a configuration value and persists it immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
