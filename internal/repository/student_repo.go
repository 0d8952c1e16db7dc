package repository

import (
	"context"
	"errors"

	"github.com/sfgs/mail-dispatch/internal/domain"
	"gorm.io/gorm"
)

type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	GetByMatric(ctx context.Context, matricNumber string) (*domain.Student, error)
	ListWithBirthdayOn(ctx context.Context, month, day int) ([]domain.Student, error)
}

type GormStudentRepo struct {
	db *gorm.DB
}

func NewGormStudentRepo(db *gorm.DB) *GormStudentRepo {
	return &GormStudentRepo{db: db}
}

func (r *GormStudentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	var model StudentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return studentModelToDomain(&model), nil
}

func (r *GormStudentRepo) GetByMatric(ctx context.Context, matricNumber string) (*domain.Student, error) {
	var model StudentModel
	err := r.db.WithContext(ctx).
		Where("matric_number = ? AND archived = false", matricNumber).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return studentModelToDomain(&model), nil
}

// ListWithBirthdayOn returns active students whose birth month and day match,
// regardless of birth year.
func (r *GormStudentRepo) ListWithBirthdayOn(ctx context.Context, month, day int) ([]domain.Student, error) {
	var models []StudentModel
	err := r.db.WithContext(ctx).
		Where("birthday IS NOT NULL AND archived = false").
		Where("EXTRACT(MONTH FROM birthday) = ? AND EXTRACT(DAY FROM birthday) = ?", month, day).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	students := make([]domain.Student, 0, len(models))
	for i := range models {
		students = append(students, *studentModelToDomain(&models[i]))
	}

	return students, nil
}
