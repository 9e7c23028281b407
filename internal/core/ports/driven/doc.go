// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EntitySource: Fetches one endpoint's entities for one tenant
//   - AccountingAPI: Resolves entity sources for a tenant
//   - APIFactory: Lists tenants and binds APIs to them
//   - CheckpointStore: Checkpoint (latest.json) persistence
//   - EntityWriter: Routes entities to partitioned output files
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Export run history. Without it, no history is recorded.
//   - TokenProvider: Stored OAuth2 token. Only the HTTP adapter needs it.
//   - AuthFlow: Authorization code exchange. Only the auth commands need it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
