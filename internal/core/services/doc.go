// Package services implements the driving port interfaces.
//
// ExportService drives a sync: it resolves tenants, loads the checkpoint,
// runs one strategy per endpoint and records each run. Every remote call
// goes through CallWithRetry, which waits out rate limits indefinitely.
// The remaining services cover validation of exported files, run history,
// settings and the OAuth2 login flow.
//
// Services depend only on domain types and driven ports.
package services
