package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// --- Fakes shared by the service tests ---

func ent(raw string) domain.Entity {
	return domain.Entity(raw)
}

// fakeSource implements driven.EntitySource with canned responses.
type fakeSource struct {
	endpoint string

	all    []domain.Entity
	allErr error

	// batches are returned by successive FetchFiltered calls; once
	// exhausted, FetchFiltered returns an empty batch.
	batches    [][]domain.Entity
	batchErrs  []error
	filterCall int
	filterOpts []driven.FetchOptions

	byID    map[string]domain.Entity
	byIDErr map[string]error
	idCalls []string

	attachments    map[string]domain.Entity
	attachmentsErr map[string]error
}

func (f *fakeSource) Endpoint() string { return f.endpoint }

func (f *fakeSource) FetchAll(_ context.Context) ([]domain.Entity, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.all, nil
}

func (f *fakeSource) FetchFiltered(_ context.Context, opts driven.FetchOptions) ([]domain.Entity, error) {
	i := f.filterCall
	f.filterCall++
	f.filterOpts = append(f.filterOpts, opts)
	if i < len(f.batchErrs) && f.batchErrs[i] != nil {
		return nil, f.batchErrs[i]
	}
	if i < len(f.batches) {
		return f.batches[i], nil
	}
	return nil, nil
}

func (f *fakeSource) FetchByID(_ context.Context, id string) (domain.Entity, error) {
	f.idCalls = append(f.idCalls, id)
	if err := f.byIDErr[id]; err != nil {
		return nil, err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeSource) FetchAttachments(_ context.Context, id string) (domain.Entity, error) {
	if err := f.attachmentsErr[id]; err != nil {
		return nil, err
	}
	return f.attachments[id], nil
}

// fakeAPI implements driven.AccountingAPI over a set of fake sources.
type fakeAPI struct {
	sources map[string]*fakeSource
}

func newFakeAPI(sources ...*fakeSource) *fakeAPI {
	api := &fakeAPI{sources: make(map[string]*fakeSource)}
	for _, s := range sources {
		api.sources[s.endpoint] = s
	}
	return api
}

func (a *fakeAPI) Source(endpoint string) driven.EntitySource {
	s, ok := a.sources[endpoint]
	if !ok {
		s = &fakeSource{endpoint: endpoint}
		a.sources[endpoint] = s
	}
	return s
}

// fakeFactory implements driven.APIFactory with one fakeAPI per tenant ID.
type fakeFactory struct {
	tenants    []domain.Tenant
	tenantsErr error
	apis       map[string]*fakeAPI
}

func (f *fakeFactory) Tenants(_ context.Context) ([]domain.Tenant, error) {
	return f.tenants, f.tenantsErr
}

func (f *fakeFactory) ForTenant(tenant domain.Tenant) driven.AccountingAPI {
	api, ok := f.apis[tenant.ID]
	if !ok {
		api = newFakeAPI()
	}
	return api
}

// writeCall records one EntityWriter.Write.
type writeCall struct {
	path   string
	record string
	append bool
}

// recordingWriter implements driven.EntityWriter in memory.
type recordingWriter struct {
	writes   []writeCall
	closed   int
	failPath string
}

func (w *recordingWriter) Write(entity domain.Entity, path string, appendHint bool) error {
	if w.failPath != "" && path == w.failPath {
		return errors.New("disk full")
	}
	w.writes = append(w.writes, writeCall{path: path, record: string(entity), append: appendHint})
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed++
	return nil
}

func (w *recordingWriter) paths() []string {
	out := make([]string, 0, len(w.writes))
	for _, c := range w.writes {
		out = append(out, c.path)
	}
	return out
}

// collect drains a run, returning entities as strings and the first error.
func collect(ctx context.Context, run *Run, api driven.AccountingAPI) ([]string, error) {
	var out []string
	for e, err := range run.Items(ctx, api) {
		if err != nil {
			return out, err
		}
		out = append(out, string(e))
	}
	return out, nil
}
