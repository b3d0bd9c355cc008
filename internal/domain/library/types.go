package library

import (
	"errors"
	"time"
)

// Kind identifies which principal variant is active for a session. A session
// holds at most one variant; the zero value is an anonymous session.
type Kind string

const (
	KindOwner   Kind = "owner"
	KindUser    Kind = "user"
	KindStudent Kind = "student"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

const (
	PermManageBranches        = "manage_branches"
	PermManageLibraryStudents = "manage_library_students"
	PermManageStaff           = "manage_staff"
	PermManageSchedules       = "manage_schedules"
	PermViewReports           = "view_reports"
)

// Combinator selects how a required permission set is evaluated.
type Combinator string

const (
	CombinatorAll Combinator = "all"
	CombinatorAny Combinator = "any"
)

// Principal is the authenticated identity acting in a request. Exactly one
// kind is populated per session; which fields carry meaning depends on Kind.
// TenantID is always the effective library id: for owners it is the library's
// own id, for users and students it is resolved from their membership row at
// login and refreshed on demand.
type Principal struct {
	Kind     Kind   `json:"kind,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`

	LibraryCode string `json:"library_code,omitempty"`
	LibraryName string `json:"library_name,omitempty"`
	OwnerName   string `json:"owner_name,omitempty"`
	OwnerEmail  string `json:"owner_email,omitempty"`

	UserID      string   `json:"user_id,omitempty"`
	Username    string   `json:"username,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`

	StudentID string `json:"student_id,omitempty"`
}

func OwnerPrincipal(lib Library) Principal {
	return Principal{
		Kind:        KindOwner,
		TenantID:    lib.ID,
		LibraryCode: lib.Code,
		LibraryName: lib.Name,
		OwnerName:   lib.OwnerName,
		OwnerEmail:  lib.OwnerEmail,
	}
}

func UserPrincipal(user StaffUser) Principal {
	perms := user.Permissions
	if perms == nil {
		perms = []string{}
	}
	return Principal{
		Kind:        KindUser,
		TenantID:    user.TenantID,
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Permissions: perms,
	}
}

func StudentPrincipal(student Student) Principal {
	return Principal{
		Kind:      KindStudent,
		TenantID:  student.TenantID,
		StudentID: student.ID,
	}
}

func (p Principal) IsAnonymous() bool {
	return p.Kind == ""
}

func (p Principal) IsOwner() bool {
	return p.Kind == KindOwner && p.TenantID != ""
}

func (p Principal) IsUser() bool {
	return p.Kind == KindUser && p.UserID != ""
}

func (p Principal) IsStudent() bool {
	return p.Kind == KindStudent && p.StudentID != ""
}

func (p Principal) HasPermission(perm string) bool {
	for _, held := range p.Permissions {
		if held == perm {
			return true
		}
	}
	return false
}

// Library is a tenant: the unit of data isolation. The owner's credentials
// live on the library row itself; an owner is the tenant key.
type Library struct {
	ID           string
	Code         string
	Name         string
	OwnerName    string
	OwnerEmail   string
	PasswordHash string
	CreatedAt    time.Time
}

// StaffUser is an administrative user inside a tenant. Role "admin" implies
// every permission; any other role holds exactly Permissions.
type StaffUser struct {
	ID           string
	TenantID     string
	Username     string
	Role         string
	Permissions  []string
	PasswordHash string
	CreatedAt    time.Time
}

type Student struct {
	ID             string
	TenantID       string
	Name           string
	RegistrationNo string
	PasswordHash   string
	CreatedAt      time.Time
}

type Branch struct {
	ID        string
	TenantID  string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternal           = errors.New("internal error")
)
