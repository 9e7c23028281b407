package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/xerosync/internal/adapters/driving/oauth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to Xero",
	Long: `Sign in to Xero and inspect the stored token.

The Xero app's client ID (and secret, for confidential apps) come from the
client_id and client_secret settings. Register
http://localhost:<port>/callback as the app's redirect URI.

Examples:
  xerosync settings set client_id ABC123
  xerosync auth login
  xerosync auth status`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorise xerosync in the browser",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored token",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var (
	authPort      int
	authNoBrowser bool
	authTimeout   time.Duration
)

// openBrowser is replaced in tests.
var openBrowser = oauth.OpenBrowser

func init() {
	authLoginCmd.Flags().IntVar(&authPort, "port", oauth.DefaultPort, "local callback port")
	authLoginCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the URL instead of opening a browser")
	authLoginCmd.Flags().DurationVar(&authTimeout, "timeout", 5*time.Minute, "how long to wait for the callback")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if authService == nil {
		return errors.New("auth service not configured")
	}

	// The redirect URI must be known before the request is built.
	server := oauth.NewCallbackServer(authPort, "")
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	req, err := authService.Begin(server.RedirectURI())
	if err != nil {
		return err
	}
	server.ExpectState(req.State)

	cmd.Println("Open this URL to authorise xerosync:")
	cmd.Println()
	cmd.Println("  " + req.URL)
	cmd.Println()
	if !authNoBrowser {
		if err := openBrowser(req.URL); err != nil {
			cmd.PrintErrf("Could not open a browser: %v\n", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
	defer cancel()
	code, err := server.WaitForCode(ctx)
	if err != nil {
		return err
	}
	if err := authService.Complete(ctx, req, code); err != nil {
		return err
	}

	cmd.Println(newStyles().Success.Render("Signed in."))
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if authService == nil {
		return errors.New("auth service not configured")
	}

	status, err := authService.Status()
	if err != nil {
		return err
	}

	styles := newStyles()
	cmd.Printf("Token file: %s\n", status.Path)
	if !status.Authenticated {
		cmd.Println(styles.Warning.Render("Not signed in.") + " Run 'xerosync auth login'.")
		return nil
	}

	expiry := "unknown"
	if !status.Expiry.IsZero() {
		expiry = status.Expiry.Local().Format(time.DateTime)
		if status.Expired(time.Now()) {
			expiry += " (expired)"
		}
	}
	cmd.Printf("Access token expires: %s\n", expiry)
	cmd.Printf("Refresh token: %s\n", yesNo(status.Refreshable))
	if status.Expired(time.Now()) && !status.Refreshable {
		return fmt.Errorf("token expired and cannot be refreshed; run 'xerosync auth login'")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
