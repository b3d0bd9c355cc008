package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

type BranchRepo struct {
	db *gorm.DB
}

func NewBranchRepo(db *gorm.DB) *BranchRepo {
	return &BranchRepo{db: db}
}

func (r *BranchRepo) Create(ctx context.Context, branch library.Branch) (library.Branch, error) {
	if r == nil || r.db == nil {
		return library.Branch{}, errDBUnavailable
	}
	model := BranchModel{
		ID:       branch.ID,
		TenantID: branch.TenantID,
		Name:     branch.Name,
		Address:  branch.Address,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return library.Branch{}, library.ErrConflict
		}
		return library.Branch{}, err
	}
	branch.CreatedAt = model.CreatedAt
	branch.UpdatedAt = model.UpdatedAt
	return branch, nil
}

func (r *BranchRepo) GetByID(ctx context.Context, tenantID, id string) (library.Branch, error) {
	if r == nil || r.db == nil {
		return library.Branch{}, errDBUnavailable
	}
	var model BranchModel
	err := r.db.WithContext(ctx).First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return library.Branch{}, library.ErrNotFound
		}
		return library.Branch{}, err
	}
	return toBranch(model), nil
}

func (r *BranchRepo) List(ctx context.Context, tenantID string) ([]library.Branch, error) {
	if r == nil || r.db == nil {
		return nil, errDBUnavailable
	}
	var models []BranchModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	branches := make([]library.Branch, 0, len(models))
	for _, model := range models {
		branches = append(branches, toBranch(model))
	}
	return branches, nil
}

func (r *BranchRepo) Update(ctx context.Context, branch library.Branch) (library.Branch, error) {
	if r == nil || r.db == nil {
		return library.Branch{}, errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&BranchModel{}).
		Where("tenant_id = ? AND id = ?", branch.TenantID, branch.ID).
		Updates(map[string]any{"name": branch.Name, "address": branch.Address})
	if result.Error != nil {
		return library.Branch{}, result.Error
	}
	if result.RowsAffected == 0 {
		return library.Branch{}, library.ErrNotFound
	}
	return r.GetByID(ctx, branch.TenantID, branch.ID)
}

func (r *BranchRepo) Delete(ctx context.Context, tenantID, id string) error {
	if r == nil || r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&BranchModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return library.ErrNotFound
	}
	return nil
}

func toBranch(model BranchModel) library.Branch {
	return library.Branch{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Name:      model.Name,
		Address:   model.Address,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
