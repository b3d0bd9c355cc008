package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Rounit002/demohavenn/internal/config"
	"github.com/Rounit002/demohavenn/internal/credentials"
	"github.com/Rounit002/demohavenn/internal/domain/library"
	"github.com/Rounit002/demohavenn/internal/usecase"
)

// fakeStore is an in-memory stand-in for the postgres repositories. It applies
// the same tenant equality filter the real store does, so cross-tenant reads
// come back ErrNotFound.
type fakeStore struct {
	mu        sync.Mutex
	libraries map[string]library.Library
	users     map[string]library.StaffUser
	students  map[string]library.Student
	branches  map[string]library.Branch
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		libraries: map[string]library.Library{},
		users:     map[string]library.StaffUser{},
		students:  map[string]library.Student{},
		branches:  map[string]library.Branch{},
	}
}

type fakeLibraries struct{ s *fakeStore }

func (r fakeLibraries) Create(_ context.Context, lib library.Library) (library.Library, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.libraries {
		if existing.OwnerEmail == lib.OwnerEmail || existing.Code == lib.Code {
			return library.Library{}, library.ErrConflict
		}
	}
	r.s.libraries[lib.ID] = lib
	return lib, nil
}

func (r fakeLibraries) GetByID(_ context.Context, id string) (library.Library, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lib, ok := r.s.libraries[id]
	if !ok {
		return library.Library{}, library.ErrNotFound
	}
	return lib, nil
}

func (r fakeLibraries) GetByOwnerEmail(_ context.Context, email string) (library.Library, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, lib := range r.s.libraries {
		if lib.OwnerEmail == email {
			return lib, nil
		}
	}
	return library.Library{}, library.ErrNotFound
}

func (r fakeLibraries) GetByCode(_ context.Context, code string) (library.Library, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, lib := range r.s.libraries {
		if lib.Code == code {
			return lib, nil
		}
	}
	return library.Library{}, library.ErrNotFound
}

type fakeUsers struct{ s *fakeStore }

func (r fakeUsers) Create(_ context.Context, user library.StaffUser) (library.StaffUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return library.StaffUser{}, library.ErrConflict
		}
	}
	r.s.users[user.ID] = user
	return user, nil
}

func (r fakeUsers) GetByUsername(_ context.Context, username string) (library.StaffUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return library.StaffUser{}, library.ErrNotFound
}

func (r fakeUsers) GetByID(_ context.Context, tenantID, id string) (library.StaffUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok || user.TenantID != tenantID {
		return library.StaffUser{}, library.ErrNotFound
	}
	return user, nil
}

func (r fakeUsers) List(_ context.Context, tenantID string) ([]library.StaffUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []library.StaffUser{}
	for _, user := range r.s.users {
		if user.TenantID == tenantID {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r fakeUsers) UpdateAccess(_ context.Context, tenantID, id, role string, permissions []string) (library.StaffUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok || user.TenantID != tenantID {
		return library.StaffUser{}, library.ErrNotFound
	}
	user.Role = role
	user.Permissions = permissions
	r.s.users[id] = user
	return user, nil
}

type fakeStudents struct{ s *fakeStore }

func (r fakeStudents) Create(_ context.Context, student library.Student) (library.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.students {
		if existing.RegistrationNo == student.RegistrationNo {
			return library.Student{}, library.ErrConflict
		}
	}
	r.s.students[student.ID] = student
	return student, nil
}

func (r fakeStudents) GetByRegistrationNo(_ context.Context, registrationNo string) (library.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, student := range r.s.students {
		if student.RegistrationNo == registrationNo {
			return student, nil
		}
	}
	return library.Student{}, library.ErrNotFound
}

func (r fakeStudents) GetByID(_ context.Context, tenantID, id string) (library.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	student, ok := r.s.students[id]
	if !ok || student.TenantID != tenantID {
		return library.Student{}, library.ErrNotFound
	}
	return student, nil
}

func (r fakeStudents) List(_ context.Context, tenantID string) ([]library.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []library.Student{}
	for _, student := range r.s.students {
		if student.TenantID == tenantID {
			out = append(out, student)
		}
	}
	return out, nil
}

func (r fakeStudents) Delete(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	student, ok := r.s.students[id]
	if !ok || student.TenantID != tenantID {
		return library.ErrNotFound
	}
	delete(r.s.students, id)
	return nil
}

type fakeBranches struct{ s *fakeStore }

func (r fakeBranches) Create(_ context.Context, branch library.Branch) (library.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.branches[branch.ID] = branch
	return branch, nil
}

func (r fakeBranches) GetByID(_ context.Context, tenantID, id string) (library.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	branch, ok := r.s.branches[id]
	if !ok || branch.TenantID != tenantID {
		return library.Branch{}, library.ErrNotFound
	}
	return branch, nil
}

func (r fakeBranches) List(_ context.Context, tenantID string) ([]library.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []library.Branch{}
	for _, branch := range r.s.branches {
		if branch.TenantID == tenantID {
			out = append(out, branch)
		}
	}
	return out, nil
}

func (r fakeBranches) Update(_ context.Context, branch library.Branch) (library.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.branches[branch.ID]
	if !ok || existing.TenantID != branch.TenantID {
		return library.Branch{}, library.ErrNotFound
	}
	r.s.branches[branch.ID] = branch
	return branch, nil
}

func (r fakeBranches) Delete(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	branch, ok := r.s.branches[id]
	if !ok || branch.TenantID != tenantID {
		return library.ErrNotFound
	}
	delete(r.s.branches, id)
	return nil
}

const testBcryptCost = 4

// Route :id params are validated as UUIDs, so seeded rows fetched by path need
// real UUID ids.
const (
	branchAID = "2f8b7c1a-9a34-4a2e-9a51-0c6f50f1d101"
	branchBID = "7d3e9b42-1c55-4f8a-8e02-b9a4c3d2e202"
)

type testEnv struct {
	server *Server
	store  *fakeStore
}

// newTestEnv seeds two tenants with an owner, a staff user, and a branch each
// and serves them through the full middleware pipeline.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	hash := func(secret string) string {
		h, err := credentials.Hash(secret, testBcryptCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		return h
	}

	store.libraries["lib-a"] = library.Library{
		ID: "lib-a", Code: "LIB-AAAA", Name: "Athens Library",
		OwnerName: "Asha", OwnerEmail: "owner@athens.example", PasswordHash: hash("owner-a"),
	}
	store.libraries["lib-b"] = library.Library{
		ID: "lib-b", Code: "LIB-BBBB", Name: "Bergen Library",
		OwnerName: "Bao", OwnerEmail: "owner@bergen.example", PasswordHash: hash("owner-b"),
	}
	store.users["user-a1"] = library.StaffUser{
		ID: "user-a1", TenantID: "lib-a", Username: "clerk-a", Role: library.RoleStaff,
		Permissions:  []string{library.PermManageLibraryStudents},
		PasswordHash: hash("clerk-a"),
	}
	store.users["user-a2"] = library.StaffUser{
		ID: "user-a2", TenantID: "lib-a", Username: "admin-a", Role: library.RoleAdmin,
		Permissions:  []string{},
		PasswordHash: hash("admin-a"),
	}
	store.students["student-a1"] = library.Student{
		ID: "student-a1", TenantID: "lib-a", Name: "Sana",
		RegistrationNo: "REG-001", PasswordHash: hash("student-a"),
	}
	store.branches[branchAID] = library.Branch{ID: branchAID, TenantID: "lib-a", Name: "Athens Main"}
	store.branches[branchBID] = library.Branch{ID: branchBID, TenantID: "lib-b", Name: "Bergen Main"}

	cfg := config.Config{
		SessionCookieName: "library_session",
		SessionTTLHours:   1,
		BcryptCost:        testBcryptCost,
	}
	server := NewServerWithDeps(cfg, ServerDeps{
		AuthService:    usecase.NewAuthService(fakeLibraries{store}, fakeUsers{store}, fakeStudents{store}, testBcryptCost),
		LibraryService: usecase.NewLibraryService(fakeBranches{store}, fakeStudents{store}, fakeUsers{store}, testBcryptCost),
	})
	return &testEnv{server: server, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, cookie string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(w, req)
	return w
}

// login performs a real login request and returns the session cookie.
func (e *testEnv) login(t *testing.T, path string, body any) string {
	t.Helper()
	w := e.do(t, http.MethodPost, path, "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", path, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "library_session" && c.Value != "" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatalf("login %s: no session cookie set", path)
	return ""
}

func (e *testEnv) loginOwnerA(t *testing.T) string {
	return e.login(t, "/api/auth/login", map[string]string{"email": "owner@athens.example", "password": "owner-a"})
}

func (e *testEnv) loginClerkA(t *testing.T) string {
	return e.login(t, "/api/users/login", map[string]string{"username": "clerk-a", "password": "clerk-a"})
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestAnonymousIsRejectedNotForbidden(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/branches", "/api/students", "/api/users"} {
		w := env.do(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s anonymous: status %d, want 401", path, w.Code)
		}
	}
}

func TestRegisterEstablishesSession(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"library_name": "Cairo Library",
		"owner_name":   "Chidi",
		"owner_email":  "owner@cairo.example",
		"password":     "owner-c",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", w.Code, w.Body.String())
	}
	var cookie string
	for _, c := range w.Result().Cookies() {
		if c.Name == "library_session" {
			cookie = c.Name + "=" + c.Value
		}
	}
	if cookie == "" {
		t.Fatalf("register did not set a session cookie")
	}

	status := env.do(t, http.MethodGet, "/api/auth/status", cookie, nil)
	if status.Code != http.StatusOK {
		t.Fatalf("status after register: %d", status.Code)
	}
	if !strings.Contains(status.Body.String(), `"kind":"owner"`) {
		t.Fatalf("status body missing owner principal: %s", status.Body.String())
	}
	if strings.Contains(status.Body.String(), "password") {
		t.Fatalf("status body leaks credential material: %s", status.Body.String())
	}
}

func TestLoginFailureBodiesAreIdentical(t *testing.T) {
	env := newTestEnv(t)
	wrongSecret := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "owner@athens.example", "password": "wrong",
	})
	unknownEmail := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@athens.example", "password": "owner-a",
	})
	if wrongSecret.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("statuses %d and %d, want 401 for both", wrongSecret.Code, unknownEmail.Code)
	}
	if wrongSecret.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("failure bodies differ: %s vs %s", wrongSecret.Body.String(), unknownEmail.Body.String())
	}
}

func TestOwnerBypassesPermissionChecks(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginOwnerA(t)

	w := env.do(t, http.MethodPost, "/api/branches", cookie, map[string]string{"name": "Athens Annex"})
	if w.Code != http.StatusCreated {
		t.Fatalf("owner create branch: status %d body %s", w.Code, w.Body.String())
	}
	create := env.do(t, http.MethodPost, "/api/users", cookie, map[string]any{
		"username": "clerk-new", "password": "clerk-new-pw",
	})
	if create.Code != http.StatusCreated {
		t.Fatalf("owner create user: status %d body %s", create.Code, create.Body.String())
	}
}

// The user listing sits behind the coarse role gate, which admits user
// principals only. The owner bypass lives in the permission authorizer and
// does not extend to role gates.
func TestRoleGateDoesNotAdmitOwner(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginOwnerA(t)
	w := env.do(t, http.MethodGet, "/api/users", cookie, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("owner on role-gated route: status %d, want 401", w.Code)
	}
}

func TestStaffAnyCombinatorAdmitsAcrossPermissions(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginClerkA(t)

	// manage_library_students satisfies the ANY set on branch reads.
	read := env.do(t, http.MethodGet, "/api/branches", cookie, nil)
	if read.Code != http.StatusOK {
		t.Fatalf("clerk branch list: status %d body %s", read.Code, read.Body.String())
	}
	// Branch writes require manage_branches, which the clerk lacks.
	write := env.do(t, http.MethodPost, "/api/branches", cookie, map[string]string{"name": "Rogue Annex"})
	if write.Code != http.StatusForbidden {
		t.Fatalf("clerk branch create: status %d, want 403", write.Code)
	}
}

func TestAdminRoleBypassesPermissionSets(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "/api/users/login", map[string]string{"username": "admin-a", "password": "admin-a"})

	w := env.do(t, http.MethodPost, "/api/branches", cookie, map[string]string{"name": "Admin Annex"})
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create branch: status %d body %s", w.Code, w.Body.String())
	}
}

func TestCrossTenantRowReadsAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginOwnerA(t)

	own := env.do(t, http.MethodGet, "/api/branches/"+branchAID, cookie, nil)
	if own.Code != http.StatusOK {
		t.Fatalf("own branch: status %d", own.Code)
	}
	foreign := env.do(t, http.MethodGet, "/api/branches/"+branchBID, cookie, nil)
	if foreign.Code != http.StatusNotFound {
		t.Fatalf("foreign branch: status %d, want 404", foreign.Code)
	}
}

func TestTenantScopedListsStayDisjoint(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginOwnerA(t)

	w := env.do(t, http.MethodGet, "/api/branches", cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("branch list: status %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "Bergen") {
		t.Fatalf("tenant A list leaked tenant B rows: %s", w.Body.String())
	}
}

func TestStudentSessionIsNotAUser(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "/api/students/login", map[string]string{
		"registration_no": "REG-001", "password": "student-a",
	})

	me := env.do(t, http.MethodGet, "/api/students/me", cookie, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("student /me: status %d body %s", me.Code, me.Body.String())
	}
	// A student is authenticated but not a user principal, so permissioned
	// routes reject it as unauthenticated rather than forbidden.
	list := env.do(t, http.MethodGet, "/api/students", cookie, nil)
	if list.Code != http.StatusUnauthorized {
		t.Fatalf("student on staff route: status %d, want 401", list.Code)
	}
}

func TestRefreshPicksUpGrantWithoutRelogin(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginClerkA(t)

	denied := env.do(t, http.MethodPost, "/api/branches", cookie, map[string]string{"name": "Annex"})
	if denied.Code != http.StatusForbidden {
		t.Fatalf("before grant: status %d, want 403", denied.Code)
	}

	user := env.store.users["user-a1"]
	user.Permissions = append(user.Permissions, library.PermManageBranches)
	env.store.users["user-a1"] = user

	// The session copy is stale until refreshed.
	stillDenied := env.do(t, http.MethodPost, "/api/branches", cookie, map[string]string{"name": "Annex"})
	if stillDenied.Code != http.StatusForbidden {
		t.Fatalf("stale session: status %d, want 403", stillDenied.Code)
	}
	refresh := env.do(t, http.MethodPost, "/api/auth/refresh", cookie, nil)
	if refresh.Code != http.StatusOK {
		t.Fatalf("refresh: status %d body %s", refresh.Code, refresh.Body.String())
	}
	granted := env.do(t, http.MethodPost, "/api/branches", cookie, map[string]string{"name": "Annex"})
	if granted.Code != http.StatusCreated {
		t.Fatalf("after refresh: status %d body %s", granted.Code, granted.Body.String())
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginOwnerA(t)

	logout := env.do(t, http.MethodPost, "/api/auth/logout", cookie, nil)
	if logout.Code != http.StatusOK {
		t.Fatalf("logout: status %d", logout.Code)
	}
	cleared := false
	for _, c := range logout.Result().Cookies() {
		if c.Name == "library_session" && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("logout did not clear the session cookie")
	}
	status := env.do(t, http.MethodGet, "/api/auth/status", cookie, nil)
	if status.Code != http.StatusUnauthorized {
		t.Fatalf("status after logout: %d, want 401", status.Code)
	}
}

func TestStaffCannotManageStaffWithoutPermission(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginClerkA(t)

	// The role gate admits staff to the listing.
	list := env.do(t, http.MethodGet, "/api/users", cookie, nil)
	if list.Code != http.StatusOK {
		t.Fatalf("staff user list: status %d", list.Code)
	}
	// Creating users is behind manage_staff, which the role gate does not grant.
	create := env.do(t, http.MethodPost, "/api/users", cookie, map[string]any{
		"username": "newbie", "password": "newbie-pw",
	})
	if create.Code != http.StatusForbidden {
		t.Fatalf("staff create user: status %d, want 403", create.Code)
	}
}
