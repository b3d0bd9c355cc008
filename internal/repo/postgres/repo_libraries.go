package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

type LibraryRepo struct {
	db *gorm.DB
}

func NewLibraryRepo(db *gorm.DB) *LibraryRepo {
	return &LibraryRepo{db: db}
}

func (r *LibraryRepo) Create(ctx context.Context, lib library.Library) (library.Library, error) {
	if r == nil || r.db == nil {
		return library.Library{}, errDBUnavailable
	}
	model := LibraryModel{
		ID:           lib.ID,
		Code:         lib.Code,
		Name:         lib.Name,
		OwnerName:    lib.OwnerName,
		OwnerEmail:   lib.OwnerEmail,
		PasswordHash: lib.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return library.Library{}, library.ErrConflict
		}
		return library.Library{}, err
	}
	lib.CreatedAt = model.CreatedAt
	return lib, nil
}

func (r *LibraryRepo) GetByID(ctx context.Context, id string) (library.Library, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *LibraryRepo) GetByOwnerEmail(ctx context.Context, email string) (library.Library, error) {
	return r.getOne(ctx, "owner_email = ?", email)
}

func (r *LibraryRepo) GetByCode(ctx context.Context, code string) (library.Library, error) {
	return r.getOne(ctx, "code = ?", code)
}

func (r *LibraryRepo) getOne(ctx context.Context, query string, arg string) (library.Library, error) {
	if r == nil || r.db == nil {
		return library.Library{}, errDBUnavailable
	}
	var model LibraryModel
	err := r.db.WithContext(ctx).First(&model, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return library.Library{}, library.ErrNotFound
		}
		return library.Library{}, err
	}
	return library.Library{
		ID:           model.ID,
		Code:         model.Code,
		Name:         model.Name,
		OwnerName:    model.OwnerName,
		OwnerEmail:   model.OwnerEmail,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
	}, nil
}
