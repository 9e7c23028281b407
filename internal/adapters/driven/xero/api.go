package xero

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// Ensure API implements the interface.
var _ driven.APIFactory = (*API)(nil)

// API lists connected tenants and binds sources to them.
type API struct {
	client *Client
}

// NewAPI creates an API over client.
func NewAPI(client *Client) *API {
	return &API{client: client}
}

// Tenants lists the connections the current token can access.
func (a *API) Tenants(ctx context.Context) ([]domain.Tenant, error) {
	body, err := a.client.get(ctx, "", a.client.config.ConnectionsURL, nil, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid connections JSON", ErrUnexpectedResponse)
	}
	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: connections is not an array", ErrUnexpectedResponse)
	}

	var tenants []domain.Tenant
	for _, item := range list.Array() {
		tenants = append(tenants, domain.TenantFromEntity(domain.Entity(item.Raw)))
	}
	return tenants, nil
}

// ForTenant returns an API bound to one tenant.
func (a *API) ForTenant(tenant domain.Tenant) driven.AccountingAPI {
	return &tenantAPI{client: a.client, tenantID: tenant.ID}
}

type tenantAPI struct {
	client   *Client
	tenantID string
}

func (t *tenantAPI) Source(endpoint string) driven.EntitySource {
	return &source{client: t.client, tenantID: t.tenantID, endpoint: endpoint}
}
