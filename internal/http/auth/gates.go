package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rounit002/demohavenn/internal/domain/library"
	"github.com/Rounit002/demohavenn/internal/http/common"
)

// Authentication gates decide whether a request may proceed based purely on
// which principal kind the session holds. Permission checks live in the
// Authorizer; gates never consult permissions. Each gate reads the session
// store exactly once and publishes the principal through the gin context.

func RequireOwner(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authenticate(c, authenticator)
		if !ok {
			return
		}
		if !principal.IsOwner() {
			rejectUnauthenticated(c)
			return
		}
		common.SetPrincipal(c, principal)
		common.SetTenantID(c, principal.TenantID)
		c.Next()
	}
}

func RequireUser(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authenticate(c, authenticator)
		if !ok {
			return
		}
		if !principal.IsUser() {
			rejectUnauthenticated(c)
			return
		}
		common.SetPrincipal(c, principal)
		c.Next()
	}
}

func RequireStudent(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authenticate(c, authenticator)
		if !ok {
			return
		}
		if !principal.IsStudent() {
			rejectUnauthenticated(c)
			return
		}
		common.SetPrincipal(c, principal)
		c.Next()
	}
}

// RequireAny admits any authenticated principal, checking owner, then user,
// then student. The owner case binds the tenant immediately; the others leave
// binding to BindTenant.
func RequireAny(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authenticate(c, authenticator)
		if !ok {
			return
		}
		switch {
		case principal.IsOwner():
			common.SetTenantID(c, principal.TenantID)
		case principal.IsUser(), principal.IsStudent():
		default:
			rejectUnauthenticated(c)
			return
		}
		common.SetPrincipal(c, principal)
		c.Next()
	}
}

// RequireAdminOrStaff is a coarse role gate: it admits users whose role is
// admin or staff without consulting the permission set. Staff is
// admin-equivalent here and only here; the capability-based Authorizer never
// bypasses for staff. Endpoints guarded by this gate expose read-mostly staff
// surfaces, not grantable capabilities.
func RequireAdminOrStaff(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authenticate(c, authenticator)
		if !ok {
			return
		}
		if !principal.IsUser() {
			rejectUnauthenticated(c)
			return
		}
		if principal.Role != library.RoleAdmin && principal.Role != library.RoleStaff {
			common.WriteErrorCode(c, http.StatusForbidden, "MISSING_ROLE", "forbidden")
			return
		}
		common.SetPrincipal(c, principal)
		c.Next()
	}
}

// BindTenant runs after an authentication gate and guarantees the effective
// tenant id is set before any handler or data access executes. A principal
// with no resolvable tenant is rejected as unauthenticated.
func BindTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := common.Principal(c)
		if !ok {
			return
		}
		if principal.TenantID == "" {
			rejectUnauthenticated(c)
			return
		}
		common.SetTenantID(c, principal.TenantID)
		c.Next()
	}
}

func authenticate(c *gin.Context, authenticator Authenticator) (library.Principal, bool) {
	if authenticator == nil {
		common.WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "auth misconfigured")
		return library.Principal{}, false
	}
	principal, err := authenticator.Authenticate(c)
	if err != nil {
		common.WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return library.Principal{}, false
	}
	return principal, true
}

func rejectUnauthenticated(c *gin.Context) {
	common.WriteErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthenticated")
}
