package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sfgs/mail-dispatch/internal/domain"
	"github.com/sfgs/mail-dispatch/internal/repository"
	"go.uber.org/zap"
)

// BirthdayService enqueues birthday notices for students whose birth month
// and day match today. Designed to be triggered once per day, but safe to
// run more often: the enqueue gate rejects same-day duplicates.
type BirthdayService struct {
	students repository.StudentRepository
	enqueue  *EnqueueService
	logger   *zap.Logger
	now      func() time.Time
}

func NewBirthdayService(
	students repository.StudentRepository,
	enqueue *EnqueueService,
	logger *zap.Logger,
) (*BirthdayService, error) {
	if students == nil {
		return nil, fmt.Errorf("student repository is required")
	}
	if enqueue == nil {
		return nil, fmt.Errorf("enqueue service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BirthdayService{
		students: students,
		enqueue:  enqueue,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run enqueues one birthday message per celebrating student and returns how
// many were queued this invocation.
func (s *BirthdayService) Run(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	today := s.now().UTC()
	students, err := s.students.ListWithBirthdayOn(ctx, int(today.Month()), today.Day())
	if err != nil {
		return 0, fmt.Errorf("failed to list celebrating students: %w", err)
	}

	queued := 0
	for i := range students {
		student := students[i]

		emails := student.GuardianEmails()
		if len(emails) == 0 {
			s.logger.Warn("celebrating student has no guardian email",
				zap.String("studentId", student.ID),
			)
			continue
		}

		_, err := s.enqueue.Enqueue(ctx, EnqueueCandidate{
			StudentID:      &student.ID,
			MatricNumber:   student.MatricNumber,
			RecipientEmail: emails[0],
			Type:           domain.TypeBirthday,
		})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Already queued today.
				continue
			}
			s.logger.Warn("failed to enqueue birthday message",
				zap.String("studentId", student.ID),
				zap.Error(err),
			)
			continue
		}
		queued++
	}

	return queued, nil
}
