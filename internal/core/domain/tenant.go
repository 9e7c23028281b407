package domain

// Tenant is an organisation connected to the authorised app.
type Tenant struct {
	// ID is the tenant identifier sent with every API request.
	ID string

	// Name is the organisation name; it also names the output directory.
	Name string

	// Type is the connection type, usually "ORGANISATION".
	Type string

	// Raw is the connection record as returned by the API.
	Raw Entity
}

// TenantFromEntity builds a Tenant from a connection record.
func TenantFromEntity(e Entity) Tenant {
	return Tenant{
		ID:   e.String("tenantId"),
		Name: e.String("tenantName"),
		Type: e.String("tenantType"),
		Raw:  e,
	}
}
