package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sfgs/mail-dispatch/internal/domain"
	"github.com/sfgs/mail-dispatch/internal/repository"
	"go.uber.org/zap"
)

// RecoveryService exposes the operator actions on stuck messages. Both
// operations re-check the current status inside the store, so they race
// harmlessly with a running tick.
type RecoveryService struct {
	messages repository.MessageRepository
	logger   *zap.Logger
}

func NewRecoveryService(messages repository.MessageRepository, logger *zap.Logger) (*RecoveryService, error) {
	if messages == nil {
		return nil, fmt.Errorf("message repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RecoveryService{
		messages: messages,
		logger:   logger,
	}, nil
}

// Retry requeues a failed message and clears its failure reason. Valid only
// while the message is FAILED.
func (s *RecoveryService) Retry(ctx context.Context, id string) (*domain.Message, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}

	if err := s.messages.Requeue(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("message requeued", zap.String("messageId", id))
	return s.messages.GetByID(ctx, id)
}

// Cancel deletes a message that has not been picked up yet. Valid only
// while the message is PENDING.
func (s *RecoveryService) Cancel(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}

	if err := s.messages.DeletePending(ctx, id); err != nil {
		return err
	}

	s.logger.Info("message cancelled", zap.String("messageId", id))
	return nil
}
