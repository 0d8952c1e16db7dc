package repository

import (
	"context"
	"errors"

	"github.com/sfgs/mail-dispatch/internal/domain"
	"gorm.io/gorm"
)

type UploadedFileRepository interface {
	Create(ctx context.Context, f *domain.UploadedFile) error
	GetByID(ctx context.Context, id string) (*domain.UploadedFile, error)
	List(ctx context.Context, page, pageSize int) ([]domain.UploadedFile, int64, error)
}

type GormUploadedFileRepo struct {
	db *gorm.DB
}

func NewGormUploadedFileRepo(db *gorm.DB) *GormUploadedFileRepo {
	return &GormUploadedFileRepo{db: db}
}

func (r *GormUploadedFileRepo) Create(ctx context.Context, f *domain.UploadedFile) error {
	model := uploadedFileModelFromDomain(f)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if f != nil {
		*f = *uploadedFileModelToDomain(model)
	}
	return nil
}

func (r *GormUploadedFileRepo) GetByID(ctx context.Context, id string) (*domain.UploadedFile, error) {
	var model UploadedFileModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return uploadedFileModelToDomain(&model), nil
}

func (r *GormUploadedFileRepo) List(ctx context.Context, page, pageSize int) ([]domain.UploadedFile, int64, error) {
	query := r.db.WithContext(ctx).Model(&UploadedFileModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = max(page, 1)
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []UploadedFileModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	files := make([]domain.UploadedFile, 0, len(models))
	for i := range models {
		files = append(files, *uploadedFileModelToDomain(&models[i]))
	}

	return files, total, nil
}
