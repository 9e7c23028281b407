package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List exportable endpoints",
	Args:  cobra.NoArgs,
	RunE:  runEndpoints,
}

func init() {
	rootCmd.AddCommand(endpointsCmd)
}

func runEndpoints(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if exporter == nil {
		return errors.New("export service not configured")
	}

	styles := newStyles()
	cmd.Printf("%-20s %-12s %-7s %s\n", "ENDPOINT", "KIND", "UPDATE", "CURSOR")
	for _, info := range exporter.Endpoints() {
		update := styles.Muted.Render(fmt.Sprintf("%-7s", "no"))
		if info.SupportsUpdate {
			update = styles.Success.Render(fmt.Sprintf("%-7s", "yes"))
		}
		cmd.Printf("%-20s %-12s %s %s\n", info.Name, info.Kind, update, strings.Join(info.LatestFields, ", "))
	}
	return nil
}
