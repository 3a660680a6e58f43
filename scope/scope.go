// Package scope enforces tenant isolation on every persistence call.
// Each entity-specific call site goes through a Scoped value built for
// the request's resolved tenant, so nobody has to remember to add the
// tenant filter by hand.
package scope

import (
	"errors"

	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
)

// TenantOwned is implemented by every tenant-scoped model. The Tenant
// model itself deliberately does not implement it.
type TenantOwned interface {
	OwnerTenantID() string
	SetTenantID(string)
}

// Where carries equality conditions, mirroring gorm map conditions.
type Where map[string]interface{}

// Scoped decorates a gorm handle with a fixed tenant id. It cannot be
// constructed without one: operations issued outside a tenant-resolved
// request path must fail instead of silently running unscoped.
type Scoped struct {
	db       *gorm.DB
	tenantID string
}

func For(db *gorm.DB, tenantID string) (*Scoped, error) {
	if db == nil {
		return nil, errors.New("scope: nil database handle")
	}
	if tenantID == "" {
		return nil, apperr.ErrTenantRequired
	}
	return &Scoped{db: db, tenantID: tenantID}, nil
}

func (s *Scoped) TenantID() string { return s.tenantID }

// DB exposes the underlying handle without any tenant filter. This is
// the cross-tenant trust boundary: it exists for operations on the
// Tenant entity itself and for narrowly-scoped admin paths, not as a
// shortcut around scoping.
func (s *Scoped) DB() *gorm.DB { return s.db }

// readWhere injects the tenant filter unless the caller already
// constrained tenant_id. A caller-supplied tenant_id on a read is
// preserved, which is the documented escape hatch for cross-tenant
// admin reads; writes never get that choice.
func (s *Scoped) readWhere(where Where) map[string]interface{} {
	w := make(map[string]interface{}, len(where)+1)
	for k, v := range where {
		w[k] = v
	}
	if _, ok := w["tenant_id"]; !ok {
		w["tenant_id"] = s.tenantID
	}
	return w
}

// writeWhere injects the tenant filter unconditionally so a write can
// never target another tenant's row, even when given a bare id.
func (s *Scoped) writeWhere(where Where) map[string]interface{} {
	w := make(map[string]interface{}, len(where)+1)
	for k, v := range where {
		w[k] = v
	}
	w["tenant_id"] = s.tenantID
	return w
}

// First loads a single record within the tenant.
func (s *Scoped) First(dest TenantOwned, where Where) error {
	return s.db.Where(s.readWhere(where)).First(dest).Error
}

// Query returns a tenant-filtered gorm handle for reads that need
// ordering, preloading or non-equality conditions. The tenant filter
// is already attached and cannot be chained away.
func (s *Scoped) Query(where Where) *gorm.DB {
	return s.db.Where(s.readWhere(where))
}

// Model returns a tenant-filtered handle bound to model, for count and
// aggregate reads.
func (s *Scoped) Model(model interface{}, where Where) *gorm.DB {
	return s.db.Model(model).Where(s.readWhere(where))
}

// Create stamps the record with the current tenant, overriding any
// caller-supplied value, then inserts it.
func (s *Scoped) Create(rec TenantOwned) error {
	rec.SetTenantID(s.tenantID)
	return s.db.Create(rec).Error
}

// CreateAll stamps and inserts a batch, one statement per record.
func (s *Scoped) CreateAll(recs ...TenantOwned) error {
	for _, rec := range recs {
		if err := s.Create(rec); err != nil {
			return err
		}
	}
	return nil
}

// Updates applies values to the rows of model matching where, always
// within the tenant.
func (s *Scoped) Updates(model TenantOwned, where Where, values map[string]interface{}) error {
	return s.db.Model(model).Where(s.writeWhere(where)).Updates(values).Error
}

// Delete removes the rows of model matching where, always within the
// tenant.
func (s *Scoped) Delete(model TenantOwned, where Where) error {
	return s.db.Where(s.writeWhere(where)).Delete(model).Error
}

// Count counts rows of model matching where within the tenant.
func (s *Scoped) Count(model interface{}, where Where) (int64, error) {
	var n int64
	err := s.db.Model(model).Where(s.readWhere(where)).Count(&n).Error
	return n, err
}

// Transaction runs fn inside a database transaction with a Scoped
// handle bound to it, so multi-step writes apply atomically.
func (s *Scoped) Transaction(fn func(tx *Scoped) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Scoped{db: tx, tenantID: s.tenantID})
	})
}
