package usecase

import (
	"context"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

// Repository methods that read or write tenant-owned rows take the tenant id
// explicitly and must apply it as an equality filter. A cross-tenant id is
// indistinguishable from an absent row: both are ErrNotFound.

type LibraryRepository interface {
	Create(ctx context.Context, lib library.Library) (library.Library, error)
	GetByID(ctx context.Context, id string) (library.Library, error)
	GetByOwnerEmail(ctx context.Context, email string) (library.Library, error)
	GetByCode(ctx context.Context, code string) (library.Library, error)
}

type UserRepository interface {
	Create(ctx context.Context, user library.StaffUser) (library.StaffUser, error)
	GetByUsername(ctx context.Context, username string) (library.StaffUser, error)
	GetByID(ctx context.Context, tenantID, id string) (library.StaffUser, error)
	List(ctx context.Context, tenantID string) ([]library.StaffUser, error)
	UpdateAccess(ctx context.Context, tenantID, id, role string, permissions []string) (library.StaffUser, error)
}

type StudentRepository interface {
	Create(ctx context.Context, student library.Student) (library.Student, error)
	GetByRegistrationNo(ctx context.Context, registrationNo string) (library.Student, error)
	GetByID(ctx context.Context, tenantID, id string) (library.Student, error)
	List(ctx context.Context, tenantID string) ([]library.Student, error)
	Delete(ctx context.Context, tenantID, id string) error
}

type BranchRepository interface {
	Create(ctx context.Context, branch library.Branch) (library.Branch, error)
	GetByID(ctx context.Context, tenantID, id string) (library.Branch, error)
	List(ctx context.Context, tenantID string) ([]library.Branch, error)
	Update(ctx context.Context, branch library.Branch) (library.Branch, error)
	Delete(ctx context.Context, tenantID, id string) error
}
