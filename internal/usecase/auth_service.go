package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Rounit002/demohavenn/internal/credentials"
	"github.com/Rounit002/demohavenn/internal/domain/library"
)

// AuthService turns submitted credentials into principals and refreshes
// session principals from canonical storage. It never writes sessions itself;
// the HTTP layer owns token and cookie lifecycle.
type AuthService struct {
	libraries  LibraryRepository
	users      UserRepository
	students   StudentRepository
	bcryptCost int
}

func NewAuthService(libraries LibraryRepository, users UserRepository, students StudentRepository, bcryptCost int) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = credentials.DefaultCost
	}
	return &AuthService{
		libraries:  libraries,
		users:      users,
		students:   students,
		bcryptCost: bcryptCost,
	}
}

type RegisterOwnerInput struct {
	LibraryName string
	LibraryCode string
	OwnerName   string
	OwnerEmail  string
	Password    string
}

// RegisterOwner creates a new tenant and returns its owner principal. The
// library code is taken as submitted or generated when absent; uniqueness is
// enforced by the store.
func (s *AuthService) RegisterOwner(ctx context.Context, input RegisterOwnerInput) (library.Principal, error) {
	input.LibraryName = strings.TrimSpace(input.LibraryName)
	input.OwnerName = strings.TrimSpace(input.OwnerName)
	input.OwnerEmail = strings.ToLower(strings.TrimSpace(input.OwnerEmail))
	input.LibraryCode = strings.ToUpper(strings.TrimSpace(input.LibraryCode))
	if input.LibraryName == "" || input.OwnerName == "" || input.OwnerEmail == "" || input.Password == "" {
		return library.Principal{}, library.ErrInvalidArgument
	}
	if input.LibraryCode == "" {
		input.LibraryCode = generateLibraryCode()
	} else {
		// Precheck a caller-supplied code for a friendlier conflict; the
		// unique index still backs this against races.
		if _, err := s.libraries.GetByCode(ctx, input.LibraryCode); err == nil {
			return library.Principal{}, library.ErrConflict
		} else if !errors.Is(err, library.ErrNotFound) {
			return library.Principal{}, fmt.Errorf("register owner: %w", err)
		}
	}
	hash, err := credentials.Hash(input.Password, s.bcryptCost)
	if err != nil {
		return library.Principal{}, fmt.Errorf("register owner: %w", err)
	}
	created, err := s.libraries.Create(ctx, library.Library{
		ID:           uuid.NewString(),
		Code:         input.LibraryCode,
		Name:         input.LibraryName,
		OwnerName:    input.OwnerName,
		OwnerEmail:   input.OwnerEmail,
		PasswordHash: hash,
	})
	if err != nil {
		return library.Principal{}, err
	}
	return library.OwnerPrincipal(created), nil
}

// LoginOwner exchanges owner credentials for an owner principal. Unknown
// email and wrong password are the same failure to the caller, with matching
// timing on both paths.
func (s *AuthService) LoginOwner(ctx context.Context, email, password string) (library.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return library.Principal{}, library.ErrInvalidCredentials
	}
	lib, err := s.libraries.GetByOwnerEmail(ctx, email)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			credentials.CompareDummy(password)
			return library.Principal{}, library.ErrInvalidCredentials
		}
		return library.Principal{}, fmt.Errorf("owner login: %w", err)
	}
	if !credentials.Verify(password, lib.PasswordHash) {
		return library.Principal{}, library.ErrInvalidCredentials
	}
	return library.OwnerPrincipal(lib), nil
}

func (s *AuthService) LoginUser(ctx context.Context, username, password string) (library.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return library.Principal{}, library.ErrInvalidCredentials
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			credentials.CompareDummy(password)
			return library.Principal{}, library.ErrInvalidCredentials
		}
		return library.Principal{}, fmt.Errorf("user login: %w", err)
	}
	if !credentials.Verify(password, user.PasswordHash) {
		return library.Principal{}, library.ErrInvalidCredentials
	}
	return library.UserPrincipal(user), nil
}

func (s *AuthService) LoginStudent(ctx context.Context, registrationNo, password string) (library.Principal, error) {
	registrationNo = strings.TrimSpace(registrationNo)
	if registrationNo == "" || password == "" {
		return library.Principal{}, library.ErrInvalidCredentials
	}
	student, err := s.students.GetByRegistrationNo(ctx, registrationNo)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			credentials.CompareDummy(password)
			return library.Principal{}, library.ErrInvalidCredentials
		}
		return library.Principal{}, fmt.Errorf("student login: %w", err)
	}
	if !credentials.Verify(password, student.PasswordHash) {
		return library.Principal{}, library.ErrInvalidCredentials
	}
	return library.StudentPrincipal(student), nil
}

// Refresh re-reads the principal's canonical row so role and permission
// changes take effect without re-login. The caller overwrites the session
// with the result.
func (s *AuthService) Refresh(ctx context.Context, principal library.Principal) (library.Principal, error) {
	switch {
	case principal.IsOwner():
		lib, err := s.libraries.GetByID(ctx, principal.TenantID)
		if err != nil {
			return library.Principal{}, refreshErr(err)
		}
		return library.OwnerPrincipal(lib), nil
	case principal.IsUser():
		user, err := s.users.GetByID(ctx, principal.TenantID, principal.UserID)
		if err != nil {
			return library.Principal{}, refreshErr(err)
		}
		return library.UserPrincipal(user), nil
	case principal.IsStudent():
		student, err := s.students.GetByID(ctx, principal.TenantID, principal.StudentID)
		if err != nil {
			return library.Principal{}, refreshErr(err)
		}
		return library.StudentPrincipal(student), nil
	default:
		return library.Principal{}, library.ErrUnauthenticated
	}
}

// refreshErr treats a vanished row as a dead session rather than a 404.
func refreshErr(err error) error {
	if errors.Is(err, library.ErrNotFound) {
		return library.ErrUnauthenticated
	}
	return fmt.Errorf("refresh principal: %w", err)
}

func generateLibraryCode() string {
	return "LIB-" + strings.ToUpper(uuid.NewString()[:8])
}
