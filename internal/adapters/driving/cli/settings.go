package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage export settings",
	Long: `View and change the settings stored in config.toml. Command line flags
override them for a single run; XEROSYNC_<KEY> environment variables
override them for the whole process.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	styles := newStyles()
	cmd.Println(styles.Title.Render("Settings") + " " + styles.Muted.Render(settingsService.Path()))
	for _, key := range domain.AllSettingKeys() {
		value := settings.Value(key)
		switch {
		case value == "":
			value = styles.Muted.Render("(not set)")
		case key.IsSecret():
			value = maskSecret(value)
		}
		cmd.Printf("  %-20s %-40s %s\n", key, value, styles.Muted.Render(key.Description()))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := domain.SettingKey(strings.ToLower(args[0]))
	if !key.IsValid() {
		return fmt.Errorf("unknown setting %q", args[0])
	}
	if err := settingsService.Set(key, args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

// maskSecret shows only the last four characters.
func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
