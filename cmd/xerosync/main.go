// Command xerosync exports Xero accounting data to local NDJSON files.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/xerosync/internal/adapters/driven/auth"
	checkpointfile "github.com/custodia-labs/xerosync/internal/adapters/driven/checkpoint/file"
	configfile "github.com/custodia-labs/xerosync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/xerosync/internal/adapters/driven/output/jsonl"
	"github.com/custodia-labs/xerosync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/xerosync/internal/adapters/driven/xero"
	"github.com/custodia-labs/xerosync/internal/adapters/driving/cli"
	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/services"
	"github.com/custodia-labs/xerosync/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// TokenFile is the default token name inside the config directory.
const TokenFile = "token.json"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters into the core services.
func bootstrap(configDir string) (*cli.Services, error) {
	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dir := filepath.Dir(configStore.Path())

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		// Keep `settings set` usable to repair the file.
		logger.Warn("%v; using default settings", err)
		defaults := domain.DefaultSettings()
		settings = &defaults
	}

	tokenFile := settings.TokenFile
	if tokenFile == "" {
		tokenFile = filepath.Join(dir, TokenFile)
	}
	tokens := auth.NewTokenFileProvider(tokenFile, settings.ClientID, settings.ClientSecret)

	client := xero.NewClient(tokens, xero.Config{RequestsPerMinute: settings.RequestsPerMinute})

	historyDB := settings.HistoryDB
	if historyDB == "" {
		historyDB = filepath.Join(dir, sqlite.DatabaseFile)
	}
	store, err := sqlite.NewStore(historyDB)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	runs := store.RunStore()

	exporter := services.NewExportService(
		xero.NewAPI(client),
		checkpointfile.NewStore(),
		jsonl.Factory(nil),
		runs,
		nil,
		nil,
	)

	return &cli.Services{
		Exporter: exporter,
		Checker:  services.NewCheckService(),
		History:  services.NewHistoryService(runs),
		Settings: settingsService,
		Auth:     services.NewAuthService(tokens),
		Close:    store.Close,
	}, nil
}
