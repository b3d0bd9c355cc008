package common

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

const (
	principalKey = "principal"
	tenantIDKey  = "tenant_id"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PrincipalResponse is the sanitized projection of a session principal.
// Password hashes never appear here.
type PrincipalResponse struct {
	Kind        string   `json:"kind"`
	TenantID    string   `json:"tenant_id,omitempty"`
	LibraryCode string   `json:"library_code,omitempty"`
	LibraryName string   `json:"library_name,omitempty"`
	OwnerName   string   `json:"owner_name,omitempty"`
	OwnerEmail  string   `json:"owner_email,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
	Username    string   `json:"username,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	StudentID   string   `json:"student_id,omitempty"`
}

func ToPrincipalResponse(p library.Principal) PrincipalResponse {
	return PrincipalResponse{
		Kind:        string(p.Kind),
		TenantID:    p.TenantID,
		LibraryCode: p.LibraryCode,
		LibraryName: p.LibraryName,
		OwnerName:   p.OwnerName,
		OwnerEmail:  p.OwnerEmail,
		UserID:      p.UserID,
		Username:    p.Username,
		Role:        p.Role,
		Permissions: p.Permissions,
		StudentID:   p.StudentID,
	}
}

func SetPrincipal(c *gin.Context, principal library.Principal) {
	c.Set(principalKey, principal)
}

func Principal(c *gin.Context) (library.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "principal missing")
		return library.Principal{}, false
	}
	principal, ok := value.(library.Principal)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "principal invalid")
		return library.Principal{}, false
	}
	return principal, true
}

func SetTenantID(c *gin.Context, tenantID string) {
	c.Set(tenantIDKey, tenantID)
}

// TenantID yields the effective tenant bound earlier in the pipeline. Every
// data access on behalf of this request must filter on it.
func TenantID(c *gin.Context) (string, bool) {
	value, ok := c.Get(tenantIDKey)
	if !ok {
		WriteErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "tenant not bound")
		return "", false
	}
	tenantID, ok := value.(string)
	if !ok || tenantID == "" {
		WriteErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "tenant not bound")
		return "", false
	}
	return tenantID, true
}

func ParseUUIDParam(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" is required")
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be a UUID")
		return "", false
	}
	return value, true
}

// WriteError maps domain errors onto the HTTP surface. Anything unmapped is
// an internal failure and surfaces with a generic body; driver diagnostics
// stay out of responses.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, library.ErrUnauthenticated):
		WriteErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthenticated")
	case errors.Is(err, library.ErrInvalidCredentials):
		WriteErrorCode(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, library.ErrForbidden):
		WriteErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, library.ErrNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, library.ErrConflict):
		WriteErrorCode(c, http.StatusConflict, "CONFLICT", "conflict")
	case errors.Is(err, library.ErrInvalidArgument):
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid argument")
	default:
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func WriteErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}
