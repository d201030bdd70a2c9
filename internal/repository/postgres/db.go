// internal/repository/postgres/db.go
package postgres

// TenantScope carries the tenant id resolved by the tenant middleware.
// Repository methods that touch tenant-owned rows require one, so a query
// cannot be written without a tenant filter in scope.
type TenantScope struct {
	tenantID string
}

func NewTenantScope(tenantID string) TenantScope {
	return TenantScope{tenantID: tenantID}
}

func (s TenantScope) TenantID() string { return s.tenantID }
