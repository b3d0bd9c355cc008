package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Rounit002/demohavenn/internal/credentials"
	"github.com/Rounit002/demohavenn/internal/domain/library"
)

// LibraryService covers the tenant-scoped plumbing: branches, students, and
// staff users. Every method takes the tenant id bound by the middleware
// pipeline and forwards it to the repositories unchanged.
type LibraryService struct {
	branches   BranchRepository
	students   StudentRepository
	users      UserRepository
	bcryptCost int
}

func NewLibraryService(branches BranchRepository, students StudentRepository, users UserRepository, bcryptCost int) *LibraryService {
	if bcryptCost <= 0 {
		bcryptCost = credentials.DefaultCost
	}
	return &LibraryService{
		branches:   branches,
		students:   students,
		users:      users,
		bcryptCost: bcryptCost,
	}
}

type BranchInput struct {
	Name    string
	Address string
}

func (s *LibraryService) ListBranches(ctx context.Context, tenantID string) ([]library.Branch, error) {
	return s.branches.List(ctx, tenantID)
}

func (s *LibraryService) GetBranch(ctx context.Context, tenantID, branchID string) (library.Branch, error) {
	return s.branches.GetByID(ctx, tenantID, branchID)
}

func (s *LibraryService) CreateBranch(ctx context.Context, tenantID string, input BranchInput) (library.Branch, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return library.Branch{}, library.ErrInvalidArgument
	}
	return s.branches.Create(ctx, library.Branch{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Name:     input.Name,
		Address:  strings.TrimSpace(input.Address),
	})
}

func (s *LibraryService) UpdateBranch(ctx context.Context, tenantID, branchID string, input BranchInput) (library.Branch, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return library.Branch{}, library.ErrInvalidArgument
	}
	existing, err := s.branches.GetByID(ctx, tenantID, branchID)
	if err != nil {
		return library.Branch{}, err
	}
	existing.Name = input.Name
	existing.Address = strings.TrimSpace(input.Address)
	return s.branches.Update(ctx, existing)
}

func (s *LibraryService) DeleteBranch(ctx context.Context, tenantID, branchID string) error {
	return s.branches.Delete(ctx, tenantID, branchID)
}

type StudentInput struct {
	Name           string
	RegistrationNo string
	Password       string
}

func (s *LibraryService) ListStudents(ctx context.Context, tenantID string) ([]library.Student, error) {
	return s.students.List(ctx, tenantID)
}

func (s *LibraryService) GetStudent(ctx context.Context, tenantID, studentID string) (library.Student, error) {
	return s.students.GetByID(ctx, tenantID, studentID)
}

func (s *LibraryService) CreateStudent(ctx context.Context, tenantID string, input StudentInput) (library.Student, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.RegistrationNo = strings.TrimSpace(input.RegistrationNo)
	if input.Name == "" || input.RegistrationNo == "" || input.Password == "" {
		return library.Student{}, library.ErrInvalidArgument
	}
	hash, err := credentials.Hash(input.Password, s.bcryptCost)
	if err != nil {
		return library.Student{}, fmt.Errorf("create student: %w", err)
	}
	return s.students.Create(ctx, library.Student{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		Name:           input.Name,
		RegistrationNo: input.RegistrationNo,
		PasswordHash:   hash,
	})
}

func (s *LibraryService) DeleteStudent(ctx context.Context, tenantID, studentID string) error {
	return s.students.Delete(ctx, tenantID, studentID)
}

type StaffUserInput struct {
	Username    string
	Password    string
	Role        string
	Permissions []string
}

func (s *LibraryService) ListUsers(ctx context.Context, tenantID string) ([]library.StaffUser, error) {
	return s.users.List(ctx, tenantID)
}

func (s *LibraryService) CreateUser(ctx context.Context, tenantID string, input StaffUserInput) (library.StaffUser, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Role = strings.TrimSpace(input.Role)
	if input.Username == "" || input.Password == "" {
		return library.StaffUser{}, library.ErrInvalidArgument
	}
	if input.Role == "" {
		input.Role = library.RoleStaff
	}
	if input.Permissions == nil {
		input.Permissions = []string{}
	}
	hash, err := credentials.Hash(input.Password, s.bcryptCost)
	if err != nil {
		return library.StaffUser{}, fmt.Errorf("create user: %w", err)
	}
	return s.users.Create(ctx, library.StaffUser{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Username:     input.Username,
		Role:         input.Role,
		Permissions:  input.Permissions,
		PasswordHash: hash,
	})
}

// UpdateUserAccess rewrites a user's role and permission grants. The next
// session refresh, or next login, picks the change up.
func (s *LibraryService) UpdateUserAccess(ctx context.Context, tenantID, userID, role string, permissions []string) (library.StaffUser, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return library.StaffUser{}, library.ErrInvalidArgument
	}
	if permissions == nil {
		permissions = []string{}
	}
	return s.users.UpdateAccess(ctx, tenantID, userID, role, permissions)
}
