package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

var checkCmd = &cobra.Command{
	Use:   "check <kind> <file>...",
	Short: "Validate exported files",
	Long: `Reads exported NDJSON files and prints the number of records and the
range of their key fields.

Kinds:
  journals      duplicate JournalID or JournalNumber, gaps in JournalNumber
  transactions  duplicate BankTransactionID

Exits non-zero and lists every problem when validation fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if checker == nil {
		return errors.New("check service not configured")
	}

	styles := newStyles()
	summary, err := checker.Check(cmd.Context(), args[0], args[1:])
	var checkErr *domain.CheckError
	if errors.As(err, &checkErr) {
		cmd.PrintErrln(styles.Error.Render(checkErr.Title + ":"))
		for _, problem := range checkErr.Problems {
			cmd.PrintErrln("  " + problem)
		}
		return fmt.Errorf("%d problem(s) found", len(checkErr.Problems))
	}
	if err != nil {
		return err
	}

	cmd.Print(formatSummary(summary, styles))
	return nil
}

// formatSummary aligns labels right in a 16 column gutter.
func formatSummary(summary *domain.CheckSummary, styles *styles) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d\n", styles.Label.Render(fmt.Sprintf("%16s", summary.Label)), summary.Entries)
	for _, r := range summary.Ranges {
		fmt.Fprintf(&b, "%s: %s -> %s\n",
			styles.Label.Render(fmt.Sprintf("%16s", r.Field)), orNone(r.Min, styles), orNone(r.Max, styles))
	}
	return b.String()
}

func orNone(value string, styles *styles) string {
	if value == "" {
		return styles.Muted.Render("none")
	}
	return value
}
