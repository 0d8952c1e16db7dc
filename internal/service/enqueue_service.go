package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sfgs/mail-dispatch/internal/domain"
	"github.com/sfgs/mail-dispatch/internal/observability"
	"github.com/sfgs/mail-dispatch/internal/repository"
	"go.uber.org/zap"
)

// EnqueueCandidate is the input to the enqueue gate.
type EnqueueCandidate struct {
	StudentID      *string
	MatricNumber   string
	RecipientEmail string
	Type           domain.MessageType
	PayloadRef     *string
}

// EnqueueService validates candidates and schedules notification intent.
// It never sends; the dispatcher owns all outbound traffic.
type EnqueueService struct {
	messages repository.MessageRepository
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewEnqueueService(messages repository.MessageRepository, logger *zap.Logger) (*EnqueueService, error) {
	if messages == nil {
		return nil, fmt.Errorf("message repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EnqueueService{
		messages: messages,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *EnqueueService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Enqueue inserts a pending message, rejecting incomplete candidates and
// duplicate same-day birthday messages for the same student.
func (s *EnqueueService) Enqueue(ctx context.Context, candidate EnqueueCandidate) (*domain.Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now()

	message := &domain.Message{
		ID:             uuid.NewString(),
		StudentID:      candidate.StudentID,
		MatricNumber:   strings.TrimSpace(candidate.MatricNumber),
		RecipientEmail: strings.TrimSpace(candidate.RecipientEmail),
		Type:           candidate.Type,
		Status:         domain.StatusPending,
		PayloadRef:     candidate.PayloadRef,
		CreatedAt:      now.UTC(),
	}

	if err := message.Validate(); err != nil {
		return nil, err
	}

	if message.Type == domain.TypeBirthday {
		if message.StudentID == nil || strings.TrimSpace(*message.StudentID) == "" {
			return nil, fmt.Errorf("%w: birthday message requires a student", domain.ErrValidation)
		}

		exists, err := s.messages.ExistsBirthdaySince(ctx, *message.StudentID, startOfDay(now))
		if err != nil {
			return nil, fmt.Errorf("failed to check birthday idempotency: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: birthday message already queued today for student %s",
				domain.ErrConflict, *message.StudentID)
		}
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to enqueue message: %w", err)
	}

	s.logger.Info("message enqueued",
		zap.String("messageId", message.ID),
		zap.String("type", message.Type.String()),
		zap.String("recipient", message.RecipientEmail),
	)
	if s.metrics != nil {
		s.metrics.IncMessageQueued(message.Type.String())
	}

	return message, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
