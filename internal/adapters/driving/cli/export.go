package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
)

var exportCmd = &cobra.Command{
	Use:   "export [endpoint...]",
	Short: "Export endpoints for every connected tenant",
	Long: `Exports the named endpoints (default: all of them, in catalogue order)
for every connected tenant, or the tenants selected with --tenant.

Each tenant is written to its own directory under --path. With --update the
export resumes from the tenant's latest.json checkpoint and appends to the
existing files of endpoints that support it.`,
	RunE: runExport,
}

var (
	exportPath         string
	exportTenants      []string
	exportUpdate       bool
	exportSplit        string
	exportMaxOpenFiles int
	exportKeepGoing    bool
)

// progressOutput receives progress lines. Nil disables them.
var progressOutput = stderrIfTerminal

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "path", "p", "", "output directory (default from settings)")
	exportCmd.Flags().StringArrayVarP(&exportTenants, "tenant", "t", nil, "tenant ID or name to export (repeatable)")
	exportCmd.Flags().BoolVarP(&exportUpdate, "update", "u", false, "resume from the stored checkpoint")
	exportCmd.Flags().StringVar(&exportSplit, "split", "", "file partitioning: none, years, months, days")
	exportCmd.Flags().IntVar(&exportMaxOpenFiles, "max-open-files", 0, "output files held open at once")
	exportCmd.Flags().BoolVar(&exportKeepGoing, "keep-going", false, "continue with other tenants after a failure")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if exporter == nil {
		return errors.New("export service not configured")
	}

	req, err := exportRequest(args)
	if err != nil {
		return err
	}
	if out := progressOutput(); out != nil {
		req.Progress = progressPrinter(out)
	}

	err = exporter.Export(cmd.Context(), req)
	if out := progressOutput(); out != nil {
		fmt.Fprintln(out)
	}
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrAuthExpired) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Run 'xerosync auth login' to connect to Xero.")
		}
		return err
	}

	mode := "Exported"
	if req.Update {
		mode = "Updated"
	}
	cmd.Printf("%s %s to %s\n", mode, describeEndpoints(req.Endpoints), req.Path)
	return nil
}

// exportRequest merges flags over the stored settings.
func exportRequest(endpoints []string) (driving.ExportRequest, error) {
	settings := domain.DefaultSettings()
	if settingsService != nil {
		stored, err := settingsService.Get()
		if err != nil {
			return driving.ExportRequest{}, err
		}
		settings = *stored
	}

	req := driving.ExportRequest{
		Path:         settings.OutputPath,
		Endpoints:    endpoints,
		Tenants:      exportTenants,
		Update:       exportUpdate,
		Split:        settings.Split,
		KeepGoing:    exportKeepGoing,
		MaxOpenFiles: settings.MaxOpenFiles,
	}
	if exportPath != "" {
		req.Path = exportPath
	}
	if exportSplit != "" {
		split, err := domain.ParseSplit(exportSplit)
		if err != nil {
			return driving.ExportRequest{}, err
		}
		req.Split = split
	}
	if exportMaxOpenFiles != 0 {
		if exportMaxOpenFiles < 1 {
			return driving.ExportRequest{}, fmt.Errorf("%w: --max-open-files must be at least 1", domain.ErrInvalidInput)
		}
		req.MaxOpenFiles = exportMaxOpenFiles
	}
	return req, nil
}

func describeEndpoints(endpoints []string) string {
	if len(endpoints) == 0 {
		return "all endpoints"
	}
	return strings.Join(endpoints, ", ")
}

// progressPrinter rewrites one status line per endpoint.
func progressPrinter(out io.Writer) driving.Progress {
	return func(tenant, endpoint string, entities int) {
		fmt.Fprintf(out, "\r\033[K%s: %s %d", tenant, endpoint, entities)
	}
}

func stderrIfTerminal() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return nil
}
