package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

func ownerSession() library.Principal {
	return library.OwnerPrincipal(library.Library{
		ID:   "lib-1",
		Code: "LIB-CENTRAL",
		Name: "Central Library",
	})
}

func userSession(role string, perms ...string) library.Principal {
	return library.UserPrincipal(library.StaffUser{
		ID:          "user-1",
		TenantID:    "lib-1",
		Username:    "clerk",
		Role:        role,
		Permissions: perms,
	})
}

func TestRequireOwnerBypass(t *testing.T) {
	authorizer := NewAuthorizer()
	for _, required := range [][]string{
		nil,
		{library.PermManageBranches},
		{library.PermManageBranches, library.PermManageStaff, "made_up_permission"},
	} {
		for _, comb := range []library.Combinator{library.CombinatorAll, library.CombinatorAny} {
			if err := authorizer.Require(context.Background(), ownerSession(), required, comb); err != nil {
				t.Fatalf("owner rejected for %v/%s: %v", required, comb, err)
			}
		}
	}
}

func TestRequireAdminBypass(t *testing.T) {
	authorizer := NewAuthorizer()
	admin := userSession(library.RoleAdmin)
	if err := authorizer.Require(context.Background(), admin, []string{"anything", "at_all"}, library.CombinatorAll); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
}

func TestRequireAnonymousIsUnauthenticated(t *testing.T) {
	authorizer := NewAuthorizer()
	err := authorizer.Require(context.Background(), library.Principal{}, []string{library.PermManageBranches}, library.CombinatorAny)
	if !errors.Is(err, library.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if errors.Is(err, library.ErrForbidden) {
		t.Fatalf("anonymous session must never be forbidden")
	}
}

func TestRequireStudentIsUnauthenticated(t *testing.T) {
	authorizer := NewAuthorizer()
	student := library.StudentPrincipal(library.Student{ID: "st-1", TenantID: "lib-1"})
	err := authorizer.Require(context.Background(), student, nil, library.CombinatorAny)
	if !errors.Is(err, library.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for student, got %v", err)
	}
}

func TestRequireStaffNoRoleBypass(t *testing.T) {
	authorizer := NewAuthorizer()
	staff := userSession(library.RoleStaff)
	err := authorizer.Require(context.Background(), staff, []string{library.PermManageBranches}, library.CombinatorAny)
	if !errors.Is(err, library.ErrForbidden) {
		t.Fatalf("staff role must not bypass permission checks, got %v", err)
	}
}

func TestRequireCombinators(t *testing.T) {
	authorizer := NewAuthorizer()
	cases := []struct {
		name       string
		held       []string
		required   []string
		combinator library.Combinator
		admit      bool
	}{
		{
			name:       "all subset admits",
			held:       []string{library.PermManageBranches, library.PermManageLibraryStudents},
			required:   []string{library.PermManageBranches},
			combinator: library.CombinatorAll,
			admit:      true,
		},
		{
			name:       "all missing one rejects",
			held:       []string{library.PermManageBranches},
			required:   []string{library.PermManageBranches, library.PermManageStaff},
			combinator: library.CombinatorAll,
			admit:      false,
		},
		{
			name:       "any intersection admits",
			held:       []string{library.PermManageLibraryStudents},
			required:   []string{library.PermManageBranches, library.PermManageLibraryStudents},
			combinator: library.CombinatorAny,
			admit:      true,
		},
		{
			name:       "any disjoint rejects",
			held:       []string{library.PermManageLibraryStudents},
			required:   []string{library.PermManageBranches},
			combinator: library.CombinatorAny,
			admit:      false,
		},
		{
			name:       "empty any admits authenticated user",
			held:       nil,
			required:   nil,
			combinator: library.CombinatorAny,
			admit:      true,
		},
		{
			name:       "empty all admits vacuously",
			held:       nil,
			required:   nil,
			combinator: library.CombinatorAll,
			admit:      true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authorizer.Require(context.Background(), userSession("other", tc.held...), tc.required, tc.combinator)
			if tc.admit && err != nil {
				t.Fatalf("expected admit, got %v", err)
			}
			if !tc.admit {
				if !errors.Is(err, library.ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
			}
		})
	}
}

func TestAuthzErrorUnwrap(t *testing.T) {
	err := &AuthzError{Code: "MISSING_PERMISSION", Err: library.ErrForbidden}
	if !errors.Is(err, library.ErrForbidden) {
		t.Fatalf("expected ErrForbidden to be unwrapped")
	}
	if _, ok := IsAuthzError(err); !ok {
		t.Fatalf("expected IsAuthzError to match")
	}
}
