package xero

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/core/services"
)

// newTestAPI starts a server and returns an API pointed at it.
func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClientWithHTTPClient(server.Client(), Config{
		BaseURL:           server.URL + "/api.xro/2.0",
		ConnectionsURL:    server.URL + "/connections",
		RequestsPerMinute: -1,
	})
	return NewAPI(client)
}

func testTenant() domain.Tenant {
	return domain.Tenant{ID: "tenant-1", Name: "Tenant 1"}
}

func TestTenants(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connections", r.URL.Path)
		assert.Empty(t, r.Header.Get(HeaderTenantID))
		fmt.Fprint(w, `[{"id":"c1","tenantId":"t1","tenantType":"ORGANISATION","tenantName":"Tenant 1"},`+
			`{"id":"c2","tenantId":"t2","tenantType":"ORGANISATION","tenantName":"Tenant 2"}]`)
	})

	tenants, err := api.Tenants(context.Background())

	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "t1", tenants[0].ID)
	assert.Equal(t, "Tenant 1", tenants[0].Name)
	assert.Equal(t, "ORGANISATION", tenants[0].Type)
	assert.Contains(t, string(tenants[1].Raw), `"tenantName":"Tenant 2"`)
}

func TestFetchFiltered_JournalOffset(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.xro/2.0/Journals", r.URL.Path)
		assert.Equal(t, "tenant-1", r.Header.Get(HeaderTenantID))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "3", r.URL.Query().Get("offset"))
		fmt.Fprint(w, `{"Journals":[{"JournalID":"j4","JournalNumber":4,"JournalDate":"/Date(1680307200000+0000)/"}]}`)
	})

	batch, err := api.ForTenant(testTenant()).Source("Journals").
		FetchFiltered(context.Background(), driven.FetchOptions{Offset: 3})

	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, `{"JournalID":"j4","JournalNumber":4,"JournalDate":"2023-04-01T00:00:00+00:00"}`, string(batch[0]))
}

func TestFetchFiltered_PagedSince(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api.xro/2.0/Invoices", r.URL.Path)
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "1000", q.Get("pageSize"))
		assert.Equal(t, `Type=="ACCPAY"`, q.Get("where"))
		assert.Empty(t, q.Get("offset"))
		assert.Equal(t, "Thu, 16 Mar 2023 00:00:00 GMT", r.Header.Get(HeaderIfModifiedSince))
		fmt.Fprint(w, `{"Invoices":[]}`)
	})

	batch, err := api.ForTenant(testTenant()).Source("Invoices").FetchFiltered(context.Background(), driven.FetchOptions{
		Page:     2,
		PageSize: 1000,
		Where:    `Type=="ACCPAY"`,
		Since:    time.Date(2023, 3, 16, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestFetchAll_WalksPages(t *testing.T) {
	var pages []string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		count := 1
		if page == "1" {
			count = PageSize
		}
		items := make([]string, count)
		for i := range items {
			items[i] = fmt.Sprintf(`{"ContactID":"p%s-%d"}`, page, i)
		}
		fmt.Fprintf(w, `{"Contacts":[%s]}`, strings.Join(items, ","))
	})

	all, err := api.ForTenant(testTenant()).Source("Contacts").FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, all, PageSize+1)
	assert.Equal(t, []string{"1", "2"}, pages)
}

func TestFetchAll_Unpaged(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.xro/2.0/Organisation", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		fmt.Fprint(w, `{"Organisations":[{"Name":"Demo Company (UK)"}]}`)
	})

	all, err := api.ForTenant(testTenant()).Source("Organisation").FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Demo Company (UK)", all[0].String("Name"))
}

func TestFetchByID_Report(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.xro/2.0/Reports/BalanceSheet", r.URL.Path)
		fmt.Fprint(w, `{"Reports":[{"ReportID":"BalanceSheet","ReportName":"Balance Sheet"}]}`)
	})

	report, err := api.ForTenant(testTenant()).Source("Reports").FetchByID(context.Background(), "BalanceSheet")

	require.NoError(t, err)
	assert.Equal(t, "BalanceSheet", report.String("ReportID"))
}

func TestFetchByID_Empty(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Reports":[]}`)
	})

	_, err := api.ForTenant(testTenant()).Source("Reports").FetchByID(context.Background(), "BudgetSummary")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchAttachments(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.xro/2.0/Invoices/i1/Attachments", r.URL.Path)
		fmt.Fprint(w, `{"Attachments":[{"AttachmentID":"a1","FileName":"receipt.pdf"}]}`)
	})

	raw, err := api.ForTenant(testTenant()).Source("Invoices").FetchAttachments(context.Background(), "i1")

	require.NoError(t, err)
	assert.Equal(t, "a1", raw.Get("Attachments.0.AttachmentID").String())
}

func TestAPIError(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"Title":"An error occurred","Detail":"Something broke"}`)
	})

	_, err := api.ForTenant(testTenant()).Source("Accounts").FetchAll(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Something broke", apiErr.Message)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrAuthRequired)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
}

func TestAPIError_MatchesDomainErrors(t *testing.T) {
	assert.ErrorIs(t, &APIError{StatusCode: 404}, domain.ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", &APIError{StatusCode: 401}), domain.ErrAuthRequired)
	assert.ErrorIs(t, &APIError{StatusCode: 403}, domain.ErrAuthRequired)
	assert.NotErrorIs(t, &APIError{StatusCode: 404}, domain.ErrAuthRequired)
	assert.Equal(t, "Not Found", errorMessage([]byte("<html>"), "Not Found"))
}

func TestUnauthorizedIsAuthRequired(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"Title":"Unauthorized","Detail":"AuthenticationUnsuccessful"}`)
	})

	_, err := api.Tenants(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestQuotaHeadersTracked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderMinRemaining, "41")
		w.Header().Set(HeaderDayRemaining, "120")
		fmt.Fprint(w, `{"Accounts":[]}`)
	}))
	t.Cleanup(server.Close)
	client := NewClientWithHTTPClient(server.Client(), Config{BaseURL: server.URL, RequestsPerMinute: -1})

	_, err := NewAPI(client).ForTenant(testTenant()).Source("Accounts").FetchAll(context.Background())
	require.NoError(t, err)

	minute, day := client.rateLimiter.Remaining()
	assert.Equal(t, 41, minute)
	assert.Equal(t, 120, day)
	_, low := client.rateLimiter.LowDailyQuota(testTenant().ID)
	assert.False(t, low, "reported once by the request")
}

func TestRateLimitRetriedOnce(t *testing.T) {
	calls := 0
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set(HeaderRetryAfter, "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"Reports":[{"ReportID":"TrialBalance"}]}`)
	})

	var sleeps []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	tenantAPI := services.WithRetry(api.ForTenant(testTenant()), sleep)

	report, err := tenantAPI.Source("Reports").FetchByID(context.Background(), "TrialBalance")

	require.NoError(t, err)
	assert.Equal(t, "TrialBalance", report.String("ReportID"))
	assert.Equal(t, []time.Duration{time.Second}, sleeps)
	assert.Equal(t, 2, calls)
}

func TestRateLimitOnLaterPageKeepsEarlierPages(t *testing.T) {
	requests := map[string]int{}
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requests[page]++
		if page == "2" && requests[page] == 1 {
			w.Header().Set(HeaderRetryAfter, "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		count := 1
		if page == "1" {
			count = PageSize
		}
		items := make([]string, count)
		for i := range items {
			items[i] = fmt.Sprintf(`{"ContactID":"p%s-%d"}`, page, i)
		}
		fmt.Fprintf(w, `{"Contacts":[%s]}`, strings.Join(items, ","))
	})

	var sleeps []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	tenantAPI := services.WithRetry(api.ForTenant(testTenant()), sleep)

	all, err := tenantAPI.Source("Contacts").FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, all, PageSize+1)
	assert.Equal(t, map[string]int{"1": 1, "2": 2}, requests)
	assert.Equal(t, []time.Duration{time.Second}, sleeps)
}

func TestSourcePageSize(t *testing.T) {
	api := NewAPI(NewClient(nil, Config{})).ForTenant(testTenant())

	assert.Equal(t, PageSize, api.Source("Contacts").(driven.PagedSource).PageSize())
	assert.Equal(t, 0, api.Source("Organisation").(driven.PagedSource).PageSize())
}

func TestNotModifiedIsEmpty(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	})

	batch, err := api.ForTenant(testTenant()).Source("BankTransactions").
		FetchFiltered(context.Background(), driven.FetchOptions{Page: 1, Since: time.Now()})

	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestClientWithoutTokenProvider(t *testing.T) {
	api := NewAPI(NewClient(nil, Config{}))

	_, err := api.Tenants(context.Background())

	assert.Error(t, err)
}
