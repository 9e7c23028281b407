package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
	"github.com/custodia-labs/xerosync/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.Exporter = (*ExportService)(nil)

// Output file names inside each tenant directory.
const (
	CheckpointFile = "latest.json"
	TenantFile     = "tenant.json"
)

// ExportService syncs tenants' endpoints to local files.
type ExportService struct {
	apis        driven.APIFactory
	checkpoints driven.CheckpointStore
	writers     driven.WriterFactory
	runs        driven.RunStore
	catalogue   *Catalogue
	sleep       Sleeper
	now         func() time.Time
}

// NewExportService creates an export service.
// runs is optional; if nil, no history is recorded. A nil sleep uses SleepContext.
func NewExportService(
	apis driven.APIFactory,
	checkpoints driven.CheckpointStore,
	writers driven.WriterFactory,
	runs driven.RunStore,
	catalogue *Catalogue,
	sleep Sleeper,
) *ExportService {
	if catalogue == nil {
		catalogue = DefaultCatalogue()
	}
	if sleep == nil {
		sleep = SleepContext
	}
	return &ExportService{
		apis:        apis,
		checkpoints: checkpoints,
		writers:     writers,
		runs:        runs,
		catalogue:   catalogue,
		sleep:       sleep,
		now:         time.Now,
	}
}

// Tenants lists the connected tenants, waiting out rate limits.
func (s *ExportService) Tenants(ctx context.Context) ([]domain.Tenant, error) {
	tenants, err := CallWithRetry(ctx, s.sleep, s.apis.Tenants)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// Endpoints lists the endpoint catalogue in default sync order.
func (s *ExportService) Endpoints() []driving.EndpointInfo {
	return s.catalogue.Info()
}

// Export runs one export across the selected tenants and endpoints.
// The first failing tenant ends the run unless KeepGoing is set, in which
// case every tenant is attempted and the failures are joined.
func (s *ExportService) Export(ctx context.Context, req driving.ExportRequest) error {
	strategies, err := s.catalogue.Resolve(req.Endpoints)
	if err != nil {
		return err
	}
	if req.Split == "" {
		req.Split = domain.DefaultSplit
	}

	tenants, err := s.Tenants(ctx)
	if err != nil {
		return err
	}
	selected, err := SelectTenants(tenants, req.Tenants)
	if err != nil {
		return err
	}

	var errs []error
	for _, tenant := range selected {
		logger.Section(tenant.Name)
		if err := s.exportTenant(ctx, tenant, strategies, req); err != nil {
			err = fmt.Errorf("tenant %s: %w", tenant.Name, err)
			if !req.KeepGoing || ctx.Err() != nil {
				return errors.Join(append(errs, err)...)
			}
			logger.Error("%v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// exportTenant syncs strategies for one tenant and saves its checkpoint
// only if every endpoint completed.
func (s *ExportService) exportTenant(
	ctx context.Context,
	tenant domain.Tenant,
	strategies []*Strategy,
	req driving.ExportRequest,
) (err error) {
	dir := filepath.Join(req.Path, SanitiseName(tenant.Name))
	checkpointPath := filepath.Join(dir, CheckpointFile)

	writer := s.writers(req.MaxOpenFiles)
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	if len(tenant.Raw) > 0 {
		if err := writer.Write(tenant.Raw, filepath.Join(dir, TenantFile), false); err != nil {
			return fmt.Errorf("write %s: %w", TenantFile, err)
		}
	}

	checkpoint, err := s.checkpoints.Load(checkpointPath)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	api := WithRetry(s.apis.ForTenant(tenant), s.sleep)
	for _, strategy := range strategies {
		latest, err := s.exportEndpoint(ctx, api, writer, tenant, dir, checkpoint, strategy, req)
		if err != nil {
			return fmt.Errorf("export %s: %w", strategy.Endpoint, err)
		}
		checkpoint.Set(strategy.Endpoint, latest)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := s.checkpoints.Save(checkpointPath, checkpoint); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	logger.Info("Saved checkpoint %s", checkpointPath)
	return nil
}

func (s *ExportService) exportEndpoint(
	ctx context.Context,
	api driven.AccountingAPI,
	writer driven.EntityWriter,
	tenant domain.Tenant,
	dir string,
	checkpoint *domain.Checkpoint,
	strategy *Strategy,
	req driving.ExportRequest,
) (*domain.Cursor, error) {
	var previous *domain.Cursor
	if req.Update {
		previous, _ = checkpoint.Get(strategy.Endpoint)
	}
	appendMode := req.Update && strategy.SupportsUpdate

	record := domain.ExportRun{
		ID:         uuid.New().String(),
		TenantID:   tenant.ID,
		TenantName: tenant.Name,
		Endpoint:   strategy.Endpoint,
		Update:     req.Update,
		StartedAt:  s.now(),
	}
	logger.Info("Syncing %s (%s, append=%t)", strategy.Endpoint, strategy.Kind, appendMode)

	run := strategy.Begin(previous)
	err := func() error {
		for entity, err := range run.Items(ctx, api) {
			if err != nil {
				return err
			}
			path := filepath.Join(dir, filepath.FromSlash(strategy.Name(entity, req.Split)))
			if err := writer.Write(entity, path, appendMode); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			record.Entities++
			if req.Progress != nil {
				req.Progress(tenant.Name, strategy.Endpoint, record.Entities)
			}
		}
		return nil
	}()

	record.FinishedAt = s.now()
	record.Status = domain.RunSucceeded
	if err != nil {
		record.Status = domain.RunFailed
		record.Error = err.Error()
	}
	s.recordRun(ctx, record)

	if err != nil {
		return nil, err
	}
	logger.Info("Synced %d %s entities", record.Entities, strategy.Endpoint)
	return run.Latest(), nil
}

// recordRun stores a run in the history. History is best effort.
func (s *ExportService) recordRun(ctx context.Context, run domain.ExportRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("Failed to record run history: %v", err)
	}
}

// SelectTenants filters tenants by ID or name, preserving the selector
// order. No selectors selects every tenant. A tenant named twice is
// exported once, and tenants whose names map to the same directory are
// rejected.
func SelectTenants(tenants []domain.Tenant, selectors []string) ([]domain.Tenant, error) {
	selected := tenants
	if len(selectors) > 0 {
		selected = make([]domain.Tenant, 0, len(selectors))
		seen := make(map[string]bool, len(selectors))
		for _, selector := range selectors {
			tenant, ok := findTenant(tenants, selector)
			if !ok {
				return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTenant, selector)
			}
			if seen[tenant.ID] {
				continue
			}
			seen[tenant.ID] = true
			selected = append(selected, tenant)
		}
	}

	dirs := make(map[string]string, len(selected))
	for _, tenant := range selected {
		dir := SanitiseName(tenant.Name)
		if other, ok := dirs[dir]; ok {
			return nil, fmt.Errorf("%w: tenants %q and %q share output directory %q",
				domain.ErrInvalidInput, other, tenant.Name, dir)
		}
		dirs[dir] = tenant.Name
	}
	return selected, nil
}

func findTenant(tenants []domain.Tenant, selector string) (domain.Tenant, bool) {
	if _, err := uuid.Parse(selector); err == nil {
		for _, t := range tenants {
			if strings.EqualFold(t.ID, selector) {
				return t, true
			}
		}
	}
	for _, t := range tenants {
		if t.Name == selector || t.ID == selector {
			return t, true
		}
	}
	return domain.Tenant{}, false
}
