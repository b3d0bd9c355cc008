package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user library.StaffUser) (library.StaffUser, error) {
	if r == nil || r.db == nil {
		return library.StaffUser{}, errDBUnavailable
	}
	perms, err := encodePermissions(user.Permissions)
	if err != nil {
		return library.StaffUser{}, err
	}
	model := UserModel{
		ID:           user.ID,
		TenantID:     user.TenantID,
		Username:     user.Username,
		Role:         user.Role,
		Permissions:  perms,
		PasswordHash: user.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return library.StaffUser{}, library.ErrConflict
		}
		return library.StaffUser{}, err
	}
	user.CreatedAt = model.CreatedAt
	return user, nil
}

// GetByUsername looks up across tenants: usernames are globally unique and
// the user's tenant membership is resolved from the row itself at login.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (library.StaffUser, error) {
	if r == nil || r.db == nil {
		return library.StaffUser{}, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return library.StaffUser{}, library.ErrNotFound
		}
		return library.StaffUser{}, err
	}
	return toStaffUser(model)
}

func (r *UserRepo) GetByID(ctx context.Context, tenantID, id string) (library.StaffUser, error) {
	if r == nil || r.db == nil {
		return library.StaffUser{}, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return library.StaffUser{}, library.ErrNotFound
		}
		return library.StaffUser{}, err
	}
	return toStaffUser(model)
}

func (r *UserRepo) List(ctx context.Context, tenantID string) ([]library.StaffUser, error) {
	if r == nil || r.db == nil {
		return nil, errDBUnavailable
	}
	var models []UserModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	users := make([]library.StaffUser, 0, len(models))
	for _, model := range models {
		user, err := toStaffUser(model)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *UserRepo) UpdateAccess(ctx context.Context, tenantID, id, role string, permissions []string) (library.StaffUser, error) {
	if r == nil || r.db == nil {
		return library.StaffUser{}, errDBUnavailable
	}
	perms, err := encodePermissions(permissions)
	if err != nil {
		return library.StaffUser{}, err
	}
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{"role": role, "permissions": perms})
	if result.Error != nil {
		return library.StaffUser{}, result.Error
	}
	if result.RowsAffected == 0 {
		return library.StaffUser{}, library.ErrNotFound
	}
	return r.GetByID(ctx, tenantID, id)
}

func toStaffUser(model UserModel) (library.StaffUser, error) {
	perms, err := decodePermissions(model.Permissions)
	if err != nil {
		return library.StaffUser{}, err
	}
	return library.StaffUser{
		ID:           model.ID,
		TenantID:     model.TenantID,
		Username:     model.Username,
		Role:         model.Role,
		Permissions:  perms,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
	}, nil
}

func encodePermissions(permissions []string) ([]byte, error) {
	if permissions == nil {
		permissions = []string{}
	}
	payload, err := json.Marshal(permissions)
	if err != nil {
		return nil, fmt.Errorf("encode permissions: %w", err)
	}
	return payload, nil
}

func decodePermissions(payload []byte) ([]string, error) {
	if len(payload) == 0 {
		return []string{}, nil
	}
	var permissions []string
	if err := json.Unmarshal(payload, &permissions); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	if permissions == nil {
		permissions = []string{}
	}
	return permissions, nil
}
