// Package tenant resolves which tenant an inbound request belongs to.
// Resolution happens exactly once per request; everything below this
// layer receives the tenant id as an explicit argument.
package tenant

import (
	"net"
	"strings"

	"github.com/comandapos/comanda-app/apperr"
)

const (
	SourceJWT       = "jwt"
	SourceHeader    = "header"
	SourceSubdomain = "subdomain"
)

// HeaderName is the tenant-identifying request header.
const HeaderName = "X-Tenant-ID"

// Identity is the result of tenant resolution: the tenant id plus the
// mechanism that produced it.
type Identity struct {
	TenantID string `json:"tenant_id"`
	Source   string `json:"source"`
}

// Resolve picks the tenant for a request. Priority order: the
// authenticated principal's tenant claim, then the X-Tenant-ID header,
// then the first host label when the host carries a subdomain.
func Resolve(claimTenantID, headerTenantID, host string) (Identity, error) {
	if claimTenantID != "" {
		return Identity{TenantID: claimTenantID, Source: SourceJWT}, nil
	}

	if headerTenantID != "" {
		return Identity{TenantID: headerTenantID, Source: SourceHeader}, nil
	}

	if sub := subdomainOf(host); sub != "" {
		return Identity{TenantID: sub, Source: SourceSubdomain}, nil
	}

	return Identity{}, apperr.ErrTenantRequired
}

// subdomainOf returns the first label of host when host has more than
// two labels ("demo.comanda.app" -> "demo"), otherwise "".
func subdomainOf(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	parts := strings.Split(host, ".")
	if len(parts) > 2 {
		return parts[0]
	}
	return ""
}
