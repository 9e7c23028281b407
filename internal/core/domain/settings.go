package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Defaults for export settings.
const (
	DefaultOutputPath        = "."
	DefaultMaxOpenFiles      = 10
	DefaultRequestsPerMinute = 60
)

// SettingKey names one persisted setting.
type SettingKey string

// Available settings.
const (
	SettingClientID          SettingKey = "client_id"
	SettingClientSecret      SettingKey = "client_secret" //nolint:gosec // G101: key name, not a credential.
	SettingOutputPath        SettingKey = "output_path"
	SettingSplit             SettingKey = "split"
	SettingMaxOpenFiles      SettingKey = "max_open_files"
	SettingRequestsPerMinute SettingKey = "requests_per_minute"
	SettingTokenFile         SettingKey = "token_file"
	SettingHistoryDB         SettingKey = "history_db"
)

// AllSettingKeys returns every setting in display order.
func AllSettingKeys() []SettingKey {
	return []SettingKey{
		SettingClientID,
		SettingClientSecret,
		SettingOutputPath,
		SettingSplit,
		SettingMaxOpenFiles,
		SettingRequestsPerMinute,
		SettingTokenFile,
		SettingHistoryDB,
	}
}

// IsValid returns true if the key is recognised.
func (k SettingKey) IsValid() bool {
	for _, key := range AllSettingKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// IsSecret returns true if the value should be masked when displayed.
func (k SettingKey) IsSecret() bool {
	return k == SettingClientSecret
}

// String returns the string representation.
func (k SettingKey) String() string {
	return string(k)
}

// Description returns a human-readable description of the setting.
func (k SettingKey) Description() string {
	switch k {
	case SettingClientID:
		return "Xero app client ID"
	case SettingClientSecret:
		return "Xero app client secret"
	case SettingOutputPath:
		return "Export output directory"
	case SettingSplit:
		return "Time partitioning: none, years, months, days"
	case SettingMaxOpenFiles:
		return "Maximum output files held open"
	case SettingRequestsPerMinute:
		return "Request throttle (negative disables)"
	case SettingTokenFile:
		return "Stored OAuth2 token file"
	case SettingHistoryDB:
		return "Export history database"
	default:
		return "Unknown"
	}
}

// Settings holds export configuration.
type Settings struct {
	// ClientID and ClientSecret identify the Xero app used to refresh tokens.
	ClientID     string
	ClientSecret string

	// OutputPath is the default export root.
	OutputPath string

	// Split is the default time partitioning.
	Split Split

	// MaxOpenFiles bounds the output file handle pool.
	MaxOpenFiles int

	// RequestsPerMinute is the proactive request throttle.
	RequestsPerMinute int

	// TokenFile is the stored token path. Empty means ~/.xerosync/token.json.
	TokenFile string

	// HistoryDB is the run history path. Empty means ~/.xerosync/history.db.
	HistoryDB string
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		OutputPath:        DefaultOutputPath,
		Split:             DefaultSplit,
		MaxOpenFiles:      DefaultMaxOpenFiles,
		RequestsPerMinute: DefaultRequestsPerMinute,
	}
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	if _, err := ParseSplit(string(s.Split)); err != nil {
		return err
	}
	if s.MaxOpenFiles < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidInput, SettingMaxOpenFiles)
	}
	return nil
}

// Value returns the setting as display text.
func (s Settings) Value(key SettingKey) string {
	switch key {
	case SettingClientID:
		return s.ClientID
	case SettingClientSecret:
		return s.ClientSecret
	case SettingOutputPath:
		return s.OutputPath
	case SettingSplit:
		return string(s.Split)
	case SettingMaxOpenFiles:
		return strconv.Itoa(s.MaxOpenFiles)
	case SettingRequestsPerMinute:
		return strconv.Itoa(s.RequestsPerMinute)
	case SettingTokenFile:
		return s.TokenFile
	case SettingHistoryDB:
		return s.HistoryDB
	default:
		return ""
	}
}

// ParseSettingValue converts text to the value type stored for key.
func ParseSettingValue(key SettingKey, text string) (any, error) {
	switch key {
	case SettingMaxOpenFiles, SettingRequestsPerMinute:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidInput, key)
		}
		if key == SettingMaxOpenFiles && n < 1 {
			return nil, fmt.Errorf("%w: %s must be at least 1", ErrInvalidInput, key)
		}
		return n, nil
	case SettingSplit:
		split, err := ParseSplit(text)
		if err != nil {
			return nil, err
		}
		return string(split), nil
	default:
		if !key.IsValid() {
			return nil, fmt.Errorf("%w: unknown setting %q", ErrInvalidInput, key)
		}
		return text, nil
	}
}
