package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history [tenant]",
	Short: "Show recent export runs",
	Long: `Shows the most recent endpoint exports, newest first. A tenant ID or name
limits the list to that tenant.

With --last-success ENDPOINT, shows only the latest successful export of
that endpoint.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyLimit       int
	historyLastSuccess string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&historyLastSuccess, "last-success", "", "show the latest successful export of an endpoint")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if historyService == nil {
		return errors.New("history service not configured")
	}

	tenant := ""
	if len(args) > 0 {
		tenant = args[0]
	}
	if historyLastSuccess != "" {
		return printLastSuccess(cmd, tenant, historyLastSuccess)
	}

	runs, err := historyService.Recent(cmd.Context(), tenant, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No exports recorded.")
		return nil
	}

	styles := newStyles()
	cmd.Println(styles.Title.Render(fmt.Sprintf("%-20s %-24s %-18s %-6s %8s %9s  %s",
		"STARTED", "TENANT", "ENDPOINT", "MODE", "ENTITIES", "DURATION", "STATUS")))
	for _, run := range runs {
		cmd.Printf("%-20s %-24s %-18s %-6s %8d %9s  %s\n",
			run.StartedAt.Local().Format(time.DateTime),
			truncate(run.TenantName, 24),
			run.Endpoint,
			runMode(run),
			run.Entities,
			run.Duration().Round(time.Second),
			runStatus(run, styles),
		)
	}
	return nil
}

func printLastSuccess(cmd *cobra.Command, tenant, endpoint string) error {
	run, err := historyService.LastSuccess(cmd.Context(), tenant, endpoint)
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("No successful %s export recorded.\n", endpoint)
		return nil
	}
	if err != nil {
		return err
	}
	cmd.Printf("%s last succeeded %s for %s (%d entities, %s)\n",
		run.Endpoint,
		run.StartedAt.Local().Format(time.DateTime),
		run.TenantName,
		run.Entities,
		runMode(*run),
	)
	return nil
}

func runMode(run domain.ExportRun) string {
	if run.Update {
		return "update"
	}
	return "full"
}

func runStatus(run domain.ExportRun, styles *styles) string {
	if run.Status == domain.RunSucceeded {
		return styles.Success.Render(string(run.Status))
	}
	return styles.Error.Render(string(run.Status)) + " " + styles.Muted.Render(truncate(run.Error, 60))
}

// truncate shortens s to maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
