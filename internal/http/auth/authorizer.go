package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rounit002/demohavenn/internal/domain/library"
	"github.com/Rounit002/demohavenn/internal/http/common"
	"github.com/Rounit002/demohavenn/internal/policyopa"
)

type AuthzError struct {
	Code string
	Err  error
}

func (e *AuthzError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code
}

func (e *AuthzError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}

// Authorizer evaluates a required permission set against the session
// principal. Owners bypass every check; users with the admin role bypass the
// permission set; staff never bypass, regardless of role. An optional rego
// policy adds deny rules for admitted users and fails closed on evaluation
// errors.
type Authorizer struct {
	policy *policyopa.Engine
}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

func NewAuthorizerWithPolicy(engine *policyopa.Engine) *Authorizer {
	return &Authorizer{policy: engine}
}

// Require decides admit or reject. First match wins: owner admits, anonymous
// or non-user sessions are unauthenticated, admin role admits, then the
// required set is checked against held permissions under the combinator.
// Under ANY an empty required set admits any authenticated user.
func (a *Authorizer) Require(ctx context.Context, principal library.Principal, required []string, combinator library.Combinator) error {
	if principal.IsOwner() {
		return nil
	}
	if !principal.IsUser() {
		return library.ErrUnauthenticated
	}
	if principal.Role != library.RoleAdmin {
		if err := checkPermissions(principal, required, combinator); err != nil {
			return err
		}
	}
	if a.policy != nil {
		reasons, err := a.policy.Deny(ctx, policyopa.Input{
			Kind:        string(principal.Kind),
			Role:        principal.Role,
			TenantID:    principal.TenantID,
			Permissions: principal.Permissions,
			Required:    required,
			Combinator:  string(combinator),
		})
		if err != nil {
			return fmt.Errorf("auth policy: %w", err)
		}
		if len(reasons) > 0 {
			return &AuthzError{Code: "POLICY_DENIED", Err: library.ErrForbidden}
		}
	}
	return nil
}

func checkPermissions(principal library.Principal, required []string, combinator library.Combinator) error {
	switch combinator {
	case library.CombinatorAll:
		for _, perm := range required {
			if !principal.HasPermission(perm) {
				return &AuthzError{Code: "MISSING_PERMISSION", Err: library.ErrForbidden}
			}
		}
		return nil
	default:
		// ANY is the default combinator. A vacuous OR admits: an empty
		// required set means any authenticated user passes.
		if len(required) == 0 {
			return nil
		}
		for _, perm := range required {
			if principal.HasPermission(perm) {
				return nil
			}
		}
		return &AuthzError{Code: "MISSING_PERMISSION", Err: library.ErrForbidden}
	}
}

// Authorize is the authorization gate middleware: one session read, then
// Require, then tenant binding. Rejections short-circuit before any handler.
func Authorize(authenticator Authenticator, authorizer *Authorizer, combinator library.Combinator, required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authenticate(c, authenticator)
		if !ok {
			return
		}
		if authorizer == nil {
			common.WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "auth misconfigured")
			return
		}
		if err := authorizer.Require(c.Request.Context(), principal, required, combinator); err != nil {
			if authz, ok := IsAuthzError(err); ok {
				common.WriteErrorCode(c, http.StatusForbidden, authz.Code, "forbidden")
				return
			}
			common.WriteError(c, err)
			return
		}
		if principal.TenantID == "" {
			rejectUnauthenticated(c)
			return
		}
		common.SetPrincipal(c, principal)
		common.SetTenantID(c, principal.TenantID)
		c.Next()
	}
}
