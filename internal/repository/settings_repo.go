package repository

import (
	"context"
	"errors"

	"github.com/sfgs/mail-dispatch/internal/domain"
	"gorm.io/gorm"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, dailyEmailLimit, emailIntervalMinutes int) (*domain.Settings, error)
}

type GormSettingsRepo struct {
	db *gorm.DB
}

func NewGormSettingsRepo(db *gorm.DB) *GormSettingsRepo {
	return &GormSettingsRepo{db: db}
}

// Get returns the singleton settings row.
func (r *GormSettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	var model SettingsModel
	err := r.db.WithContext(ctx).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return settingsModelToDomain(&model), nil
}

// Update mutates the operator-editable fields. Sender identity stays as
// seeded by deployment configuration.
func (r *GormSettingsRepo) Update(ctx context.Context, dailyEmailLimit, emailIntervalMinutes int) (*domain.Settings, error) {
	candidate := domain.Settings{
		DailyEmailLimit:      dailyEmailLimit,
		EmailIntervalMinutes: emailIntervalMinutes,
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var model SettingsModel
	err := r.db.WithContext(ctx).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Model(&model).
		Updates(map[string]any{
			"daily_email_limit":      dailyEmailLimit,
			"email_interval_minutes": emailIntervalMinutes,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	model.DailyEmailLimit = dailyEmailLimit
	model.EmailIntervalMinutes = emailIntervalMinutes
	return settingsModelToDomain(&model), nil
}
