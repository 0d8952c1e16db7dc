package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sfgs/mail-dispatch/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultSweepInterval = 5 * time.Minute
	defaultStaleAfter    = 30 * time.Minute

	staleProcessingReason = "dispatch interrupted before completion; marked failed for manual review"
)

// StaleSweeper periodically parks messages that have sat in PROCESSING past
// a timeout as FAILED, so a crash between claim and completion is surfaced
// to operators instead of hiding messages forever.
type StaleSweeper struct {
	messages   repository.MessageRepository
	logger     *zap.Logger
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
}

func NewStaleSweeper(
	messages repository.MessageRepository,
	interval time.Duration,
	staleAfter time.Duration,
	logger *zap.Logger,
) (*StaleSweeper, error) {
	if messages == nil {
		return nil, fmt.Errorf("message repository is required")
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StaleSweeper{
		messages:   messages,
		logger:     logger,
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
	}, nil
}

func (s *StaleSweeper) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("stale sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *StaleSweeper) sweep(ctx context.Context) error {
	cutoff := s.now().Add(-s.staleAfter)

	swept, err := s.messages.SweepStaleProcessing(ctx, cutoff, staleProcessingReason)
	if err != nil {
		return fmt.Errorf("failed to sweep stale processing messages: %w", err)
	}

	if swept > 0 {
		s.logger.Warn("parked stale processing messages as failed",
			zap.Int64("count", swept),
		)
	}

	return nil
}
