package tenant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/tenant"
)

func TestResolvePrefersClaimOverEverything(t *testing.T) {
	id, err := tenant.Resolve("tenant-from-claim", "tenant-from-header", "demo.comanda.app")
	assert.NoError(t, err)
	assert.Equal(t, "tenant-from-claim", id.TenantID)
	assert.Equal(t, tenant.SourceJWT, id.Source)
}

func TestResolveFallsBackToHeader(t *testing.T) {
	id, err := tenant.Resolve("", "tenant-from-header", "demo.comanda.app")
	assert.NoError(t, err)
	assert.Equal(t, "tenant-from-header", id.TenantID)
	assert.Equal(t, tenant.SourceHeader, id.Source)
}

func TestResolveFallsBackToSubdomain(t *testing.T) {
	id, err := tenant.Resolve("", "", "demo.comanda.app")
	assert.NoError(t, err)
	assert.Equal(t, "demo", id.TenantID)
	assert.Equal(t, tenant.SourceSubdomain, id.Source)
}

func TestResolveSubdomainIgnoresPort(t *testing.T) {
	id, err := tenant.Resolve("", "", "demo.comanda.app:8080")
	assert.NoError(t, err)
	assert.Equal(t, "demo", id.TenantID)
}

func TestResolveBareDomainHasNoSubdomain(t *testing.T) {
	_, err := tenant.Resolve("", "", "comanda.app")
	assert.ErrorIs(t, err, apperr.ErrTenantRequired)

	_, err = tenant.Resolve("", "", "localhost:8080")
	assert.ErrorIs(t, err, apperr.ErrTenantRequired)
}

func TestResolveNothingFails(t *testing.T) {
	_, err := tenant.Resolve("", "", "")
	assert.ErrorIs(t, err, apperr.ErrTenantRequired)
	assert.Equal(t, 400, apperr.Status(err))
}
