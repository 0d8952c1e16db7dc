package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sfgs/mail-dispatch/internal/domain"
	"gorm.io/gorm"
)

// ListOrder selects the sort column for operator listings.
type ListOrder string

const (
	OrderByCreatedAt ListOrder = "created_at"
	OrderBySentAt    ListOrder = "sent_at"
)

type ListParams struct {
	Status   *domain.Status
	Type     *domain.MessageType
	Search   string
	Order    ListOrder
	Page     int
	PageSize int
}

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	List(ctx context.Context, params ListParams) ([]domain.Message, int64, error)
	CountSentSince(ctx context.Context, since time.Time) (int, error)
	GetPendingBatch(ctx context.Context, limit int) ([]domain.Message, error)
	MarkProcessing(ctx context.Context, id string) (bool, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	Requeue(ctx context.Context, id string) error
	DeletePending(ctx context.Context, id string) error
	ExistsBirthdaySince(ctx context.Context, studentID string, since time.Time) (bool, error)
	SweepStaleProcessing(ctx context.Context, cutoff time.Time, reason string) (int64, error)
}

type GormMessageRepo struct {
	db *gorm.DB
}

func NewGormMessageRepo(db *gorm.DB) *GormMessageRepo {
	return &GormMessageRepo{db: db}
}

func (r *GormMessageRepo) Create(ctx context.Context, m *domain.Message) error {
	model := messageModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if m != nil {
		*m = *messageModelToDomain(model)
	}
	return nil
}

func (r *GormMessageRepo) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var model MessageModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return messageModelToDomain(&model), nil
}

func (r *GormMessageRepo) List(ctx context.Context, params ListParams) ([]domain.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&MessageModel{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if search := params.Search; search != "" {
		pattern := "%" + search + "%"
		query = query.Where("recipient_email ILIKE ? OR matric_number ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if params.Order == OrderBySentAt {
		order = "sent_at DESC NULLS LAST"
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []MessageModel
	err := query.
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	messages := make([]domain.Message, 0, len(models))
	for i := range models {
		messages = append(messages, *messageModelToDomain(&models[i]))
	}

	return messages, total, nil
}

func (r *GormMessageRepo) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("status = ? AND sent_at >= ?", domain.StatusSent, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *GormMessageRepo) GetPendingBatch(ctx context.Context, limit int) ([]domain.Message, error) {
	var models []MessageModel
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(models))
	for i := range models {
		messages = append(messages, *messageModelToDomain(&models[i]))
	}

	return messages, nil
}

// MarkProcessing claims a pending message for the current tick. The conditional
// update is the mutual-exclusion mechanism: it reports false when another
// owner moved the message first.
func (r *GormMessageRepo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("status", domain.StatusProcessing)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormMessageRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ? AND status = ?", id, domain.StatusProcessing).
		Updates(map[string]any{
			"status":        domain.StatusSent,
			"sent_at":       sentAt,
			"error_message": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.resolveMissingTransition(ctx, id)
	}
	return nil
}

func (r *GormMessageRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ? AND status = ?", id, domain.StatusProcessing).
		Updates(map[string]any{
			"status":        domain.StatusFailed,
			"error_message": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.resolveMissingTransition(ctx, id)
	}
	return nil
}

func (r *GormMessageRepo) Requeue(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ? AND status = ?", id, domain.StatusFailed).
		Updates(map[string]any{
			"status":        domain.StatusPending,
			"error_message": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.resolveMissingTransition(ctx, id)
	}
	return nil
}

func (r *GormMessageRepo) DeletePending(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Delete(&MessageModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.resolveMissingTransition(ctx, id)
	}
	return nil
}

func (r *GormMessageRepo) ExistsBirthdaySince(ctx context.Context, studentID string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("student_id = ? AND type = ? AND status <> ? AND created_at >= ?",
			studentID, domain.TypeBirthday, domain.StatusFailed, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormMessageRepo) SweepStaleProcessing(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("status = ? AND updated_at < ?", domain.StatusProcessing, cutoff).
		Updates(map[string]any{
			"status":        domain.StatusFailed,
			"error_message": reason,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// resolveMissingTransition turns a zero-row conditional update into the
// error the caller can act on: the record is gone, or it is in a state the
// transition does not apply to.
func (r *GormMessageRepo) resolveMissingTransition(ctx context.Context, id string) error {
	var model MessageModel
	err := r.db.WithContext(ctx).Select("id").First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrConflict
}
