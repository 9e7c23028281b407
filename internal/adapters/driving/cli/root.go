// Package cli provides the xerosync command line interface.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
	"github.com/custodia-labs/xerosync/internal/logger"
)

var version = "dev"

// Services are the core services the commands drive.
type Services struct {
	Exporter driving.Exporter
	Checker  driving.Checker
	History  driving.HistoryService
	Settings driving.SettingsService
	Auth     driving.AuthService

	// Close releases the services' resources. Optional.
	Close func() error
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(configDir string) (*Services, error)

var (
	exporter        driving.Exporter
	checker         driving.Checker
	historyService  driving.HistoryService
	settingsService driving.SettingsService
	authService     driving.AuthService

	bootstrap     Bootstrap
	closeServices func() error
)

var (
	configDir string
	logLevel  string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "xerosync",
	Short: "Export Xero accounting data to local JSON files",
	Long: `xerosync exports accounting data from every connected Xero organisation
into time-partitioned newline-delimited JSON files, and resumes from a
per-organisation checkpoint on later runs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.xerosync)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "shorthand for --log-level debug")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap installs the service constructor used by the commands.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly.
func SetServices(s *Services) {
	exporter = s.Exporter
	checker = s.Checker
	historyService = s.History
	settingsService = s.Settings
	authService = s.Auth
	closeServices = s.Close
}

// Execute runs the root command until it finishes or SIGINT arrives.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		err = errors.Join(err, closeServices())
		closeServices = nil
	}
	return err
}

func setupLogging(_ *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
		return nil
	}
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	return nil
}

// ensureServices builds the services on first use.
func ensureServices() error {
	if exporter != nil || bootstrap == nil {
		return nil
	}
	s, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}
