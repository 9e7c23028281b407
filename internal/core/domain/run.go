package domain

import "time"

// RunStatus is the outcome of one endpoint export.
type RunStatus string

const (
	// RunSucceeded means every entity was written.
	RunSucceeded RunStatus = "succeeded"
	// RunFailed means the export aborted; the checkpoint was not advanced.
	RunFailed RunStatus = "failed"
)

// ExportRun records one endpoint export for one tenant.
type ExportRun struct {
	// ID identifies the run.
	ID string

	// TenantID and TenantName identify the tenant.
	TenantID   string
	TenantName string

	// Endpoint is the exported endpoint.
	Endpoint string

	// Update is true for incremental runs.
	Update bool

	StartedAt  time.Time
	FinishedAt time.Time

	// Entities is the number of entities written.
	Entities int

	Status RunStatus

	// Error is the failure message when Status is RunFailed.
	Error string
}

// Duration returns how long the run took.
func (r ExportRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
