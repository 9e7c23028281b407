package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
)

// mockExporter implements driving.Exporter for testing.
type mockExporter struct {
	requests []driving.ExportRequest
	err      error
	tenants  []domain.Tenant
	progress []int
}

func (m *mockExporter) Export(_ context.Context, req driving.ExportRequest) error {
	m.requests = append(m.requests, req)
	if req.Progress != nil {
		for _, n := range m.progress {
			req.Progress("Demo Company", "Journals", n)
		}
	}
	return m.err
}

func (m *mockExporter) Endpoints() []driving.EndpointInfo {
	return []driving.EndpointInfo{
		{Name: "Accounts", Kind: "default"},
		{Name: "Journals", Kind: "sequential", LatestFields: []string{"JournalDate", "JournalNumber"}, SupportsUpdate: true},
	}
}

func (m *mockExporter) Tenants(_ context.Context) ([]domain.Tenant, error) {
	return m.tenants, m.err
}

// mockChecker implements driving.Checker for testing.
type mockChecker struct {
	kind    string
	paths   []string
	summary *domain.CheckSummary
	err     error
}

func (m *mockChecker) Kinds() []string {
	return []string{"journals", "transactions"}
}

func (m *mockChecker) Check(_ context.Context, kind string, paths []string) (*domain.CheckSummary, error) {
	m.kind, m.paths = kind, paths
	return m.summary, m.err
}

// mockHistory implements driving.HistoryService for testing.
type mockHistory struct {
	tenant   string
	limit    int
	runs     []domain.ExportRun
	endpoint string
	last     *domain.ExportRun
}

func (m *mockHistory) Recent(_ context.Context, tenant string, limit int) ([]domain.ExportRun, error) {
	m.tenant, m.limit = tenant, limit
	return m.runs, nil
}

func (m *mockHistory) LastSuccess(_ context.Context, tenant, endpoint string) (*domain.ExportRun, error) {
	m.tenant, m.endpoint = tenant, endpoint
	if m.last == nil {
		return nil, domain.ErrNotFound
	}
	return m.last, nil
}

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	settings domain.Settings
	set      map[domain.SettingKey]string
}

func (m *mockSettings) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key domain.SettingKey, value string) error {
	if _, err := domain.ParseSettingValue(key, value); err != nil {
		return err
	}
	if m.set == nil {
		m.set = make(map[domain.SettingKey]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Path() string {
	return "/home/user/.xerosync/config.toml"
}

// mockAuth implements driving.AuthService for testing.
type mockAuth struct {
	status    domain.AuthStatus
	begun     string
	completed string
}

func (m *mockAuth) Begin(redirectURI string) (*domain.AuthRequest, error) {
	m.begun = redirectURI
	return &domain.AuthRequest{URL: "https://login.example/authorize", State: "st", RedirectURI: redirectURI}, nil
}

func (m *mockAuth) Complete(_ context.Context, _ *domain.AuthRequest, code string) error {
	m.completed = code
	return nil
}

func (m *mockAuth) Status() (domain.AuthStatus, error) {
	return m.status, nil
}

// testServices holds the mocks installed by setupServices.
type testServices struct {
	exporter *mockExporter
	checker  *mockChecker
	history  *mockHistory
	settings *mockSettings
	auth     *mockAuth
}

// setupServices installs fresh mocks and resets command flags.
func setupServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		exporter: &mockExporter{},
		checker:  &mockChecker{},
		history:  &mockHistory{},
		settings: &mockSettings{settings: domain.DefaultSettings()},
		auth:     &mockAuth{},
	}
	SetServices(&Services{
		Exporter: ts.exporter,
		Checker:  ts.checker,
		History:  ts.history,
		Settings: ts.settings,
		Auth:     ts.auth,
	})
	resetFlags()
	oldProgress := progressOutput
	progressOutput = func() io.Writer { return nil }
	t.Cleanup(func() {
		SetServices(&Services{})
		progressOutput = oldProgress
		resetFlags()
	})
	return ts
}

func resetFlags() {
	exportPath, exportTenants, exportUpdate = "", nil, false
	exportSplit, exportMaxOpenFiles, exportKeepGoing = "", 0, false
	tenantsField = ""
	historyLimit, historyLastSuccess = 20, ""
	logLevel, verbose = "warn", false
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
