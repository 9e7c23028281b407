package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List connected tenants",
	Long: `Lists the tenants (organisations) the stored token can access, one JSON
object per line. With --field only that field is printed.`,
	Args: cobra.NoArgs,
	RunE: runTenants,
}

var tenantsField string

func init() {
	tenantsCmd.Flags().StringVarP(&tenantsField, "field", "f", "", "print only this field, e.g. tenantId")
	rootCmd.AddCommand(tenantsCmd)
}

func runTenants(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if exporter == nil {
		return errors.New("export service not configured")
	}

	tenants, err := exporter.Tenants(cmd.Context())
	if err != nil {
		return err
	}
	for _, tenant := range tenants {
		if tenantsField == "" {
			cmd.Println(string(tenant.Raw))
			continue
		}
		cmd.Println(tenant.Raw.String(tenantsField))
	}
	return nil
}
