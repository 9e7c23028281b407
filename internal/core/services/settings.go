package services

import (
	"fmt"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService manages export settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings merged over the defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		ClientID:          s.configStore.GetString(string(domain.SettingClientID)),
		ClientSecret:      s.configStore.GetString(string(domain.SettingClientSecret)),
		OutputPath:        s.getString(domain.SettingOutputPath, defaults.OutputPath),
		Split:             domain.Split(s.getString(domain.SettingSplit, string(defaults.Split))),
		MaxOpenFiles:      s.getInt(domain.SettingMaxOpenFiles, defaults.MaxOpenFiles),
		RequestsPerMinute: s.getInt(domain.SettingRequestsPerMinute, defaults.RequestsPerMinute),
		TokenFile:         s.configStore.GetString(string(domain.SettingTokenFile)),
		HistoryDB:         s.configStore.GetString(string(domain.SettingHistoryDB)),
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// Set validates and persists one setting.
func (s *SettingsService) Set(key domain.SettingKey, value string) error {
	parsed, err := domain.ParseSettingValue(key, value)
	if err != nil {
		return err
	}
	if err := s.configStore.Set(string(key), parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Path returns where settings are stored.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key domain.SettingKey, defaultVal string) string {
	if val := s.configStore.GetString(string(key)); val != "" {
		return val
	}
	return defaultVal
}

// getInt treats an absent key as the default; an explicit 0 is kept.
func (s *SettingsService) getInt(key domain.SettingKey, defaultVal int) int {
	if _, ok := s.configStore.Get(string(key)); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(string(key))
}
