package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

type StudentRepo struct {
	db *gorm.DB
}

func NewStudentRepo(db *gorm.DB) *StudentRepo {
	return &StudentRepo{db: db}
}

func (r *StudentRepo) Create(ctx context.Context, student library.Student) (library.Student, error) {
	if r == nil || r.db == nil {
		return library.Student{}, errDBUnavailable
	}
	model := StudentModel{
		ID:             student.ID,
		TenantID:       student.TenantID,
		Name:           student.Name,
		RegistrationNo: student.RegistrationNo,
		PasswordHash:   student.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return library.Student{}, library.ErrConflict
		}
		return library.Student{}, err
	}
	student.CreatedAt = model.CreatedAt
	return student, nil
}

// GetByRegistrationNo looks up across tenants: registration numbers are
// globally unique and carry the student's tenant membership.
func (r *StudentRepo) GetByRegistrationNo(ctx context.Context, registrationNo string) (library.Student, error) {
	if r == nil || r.db == nil {
		return library.Student{}, errDBUnavailable
	}
	var model StudentModel
	err := r.db.WithContext(ctx).First(&model, "registration_no = ?", registrationNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return library.Student{}, library.ErrNotFound
		}
		return library.Student{}, err
	}
	return toStudent(model), nil
}

func (r *StudentRepo) GetByID(ctx context.Context, tenantID, id string) (library.Student, error) {
	if r == nil || r.db == nil {
		return library.Student{}, errDBUnavailable
	}
	var model StudentModel
	err := r.db.WithContext(ctx).First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return library.Student{}, library.ErrNotFound
		}
		return library.Student{}, err
	}
	return toStudent(model), nil
}

func (r *StudentRepo) List(ctx context.Context, tenantID string) ([]library.Student, error) {
	if r == nil || r.db == nil {
		return nil, errDBUnavailable
	}
	var models []StudentModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	students := make([]library.Student, 0, len(models))
	for _, model := range models {
		students = append(students, toStudent(model))
	}
	return students, nil
}

func (r *StudentRepo) Delete(ctx context.Context, tenantID, id string) error {
	if r == nil || r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&StudentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return library.ErrNotFound
	}
	return nil
}

func toStudent(model StudentModel) library.Student {
	return library.Student{
		ID:             model.ID,
		TenantID:       model.TenantID,
		Name:           model.Name,
		RegistrationNo: model.RegistrationNo,
		PasswordHash:   model.PasswordHash,
		CreatedAt:      model.CreatedAt,
	}
}
