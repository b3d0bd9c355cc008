package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Rounit002/demohavenn/internal/domain/library"
	"github.com/Rounit002/demohavenn/internal/http/common"
	"github.com/Rounit002/demohavenn/internal/session"
)

func newGateRouter(t *testing.T, gate func(Authenticator) gin.HandlerFunc, principal library.Principal) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore(session.MemoryStoreConfig{})
	token := ""
	if !principal.IsAnonymous() {
		minted, err := session.NewToken()
		if err != nil {
			t.Fatalf("mint token: %v", err)
		}
		if err := store.Set(context.Background(), minted, principal); err != nil {
			t.Fatalf("seed session: %v", err)
		}
		token = minted
	}

	authenticator := NewSessionAuthenticator(store, "library_session")
	r := gin.New()
	r.GET("/probe", gate(authenticator), func(c *gin.Context) {
		tenantID, _ := c.Get("tenant_id")
		c.JSON(http.StatusOK, gin.H{"tenant_id": tenantID})
	})
	return r, token
}

func probe(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireOwnerAdmitsOwnerAndBindsTenant(t *testing.T) {
	r, token := newGateRouter(t, RequireOwner, ownerSession())
	w := probe(r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"tenant_id":"lib-1"}` {
		t.Fatalf("tenant not bound: %s", body)
	}
}

func TestRequireOwnerRejectsOthers(t *testing.T) {
	for name, principal := range map[string]library.Principal{
		"anonymous": {},
		"user":      userSession(library.RoleAdmin),
		"student":   library.StudentPrincipal(library.Student{ID: "st-1", TenantID: "lib-1"}),
	} {
		r, token := newGateRouter(t, RequireOwner, principal)
		if w := probe(r, token); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
	}
}

func TestRequireUserAdmitsAnyRole(t *testing.T) {
	for _, role := range []string{library.RoleAdmin, library.RoleStaff, "other"} {
		r, token := newGateRouter(t, RequireUser, userSession(role))
		if w := probe(r, token); w.Code != http.StatusOK {
			t.Fatalf("role %s: expected 200, got %d", role, w.Code)
		}
	}
}

func TestRequireStudentRejectsAnonymous(t *testing.T) {
	r, token := newGateRouter(t, RequireStudent, library.Principal{})
	if w := probe(r, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAnyAdmitsEachKind(t *testing.T) {
	for name, principal := range map[string]library.Principal{
		"owner":   ownerSession(),
		"user":    userSession("other"),
		"student": library.StudentPrincipal(library.Student{ID: "st-1", TenantID: "lib-1"}),
	} {
		r, token := newGateRouter(t, RequireAny, principal)
		if w := probe(r, token); w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", name, w.Code)
		}
	}
	r, token := newGateRouter(t, RequireAny, library.Principal{})
	if w := probe(r, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", w.Code)
	}
}

func TestRequireAdminOrStaff(t *testing.T) {
	for role, want := range map[string]int{
		library.RoleAdmin: http.StatusOK,
		library.RoleStaff: http.StatusOK,
		"other":           http.StatusForbidden,
	} {
		r, token := newGateRouter(t, RequireAdminOrStaff, userSession(role))
		if w := probe(r, token); w.Code != want {
			t.Fatalf("role %s: expected %d, got %d", role, want, w.Code)
		}
	}
	r, token := newGateRouter(t, RequireAdminOrStaff, library.Principal{})
	if w := probe(r, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", w.Code)
	}
}

func TestBindTenantRejectsUnresolvedTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", func(c *gin.Context) {
		common.SetPrincipal(c, library.Principal{Kind: library.KindUser, UserID: "user-1"})
		c.Next()
	}, BindTenant(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unresolved tenant, got %d", w.Code)
	}
}
