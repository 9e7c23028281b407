// Package domain defines the core business types for xerosync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Entity: One record fetched from the accounting API, kept as raw JSON
//   - Cursor: The high water mark of one endpoint's last sync
//   - Checkpoint: The per-tenant map of endpoint name to Cursor
//   - Split: The time partitioning granularity of output files
//   - Tenant: A connected organisation
//   - ExportRun: One endpoint export recorded in the run history
//   - CheckSummary: The result of validating exported files
//   - Settings: Persisted export configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse. The only external import is gjson, used to
// read fields out of raw entity JSON.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/tidwall/gjson
//   - Cannot Import: Any internal/ package
package domain
