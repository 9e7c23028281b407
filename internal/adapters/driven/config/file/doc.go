// Package file provides the TOML configuration store.
//
// Settings live in ~/.xerosync/config.toml. Any key may be overridden by an
// environment variable named XEROSYNC_ plus the upper-cased key, with dots
// replaced by underscores (client_id becomes XEROSYNC_CLIENT_ID).
package file
