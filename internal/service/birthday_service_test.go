package service

import (
	"context"
	"testing"
	"time"

	"github.com/sfgs/mail-dispatch/internal/domain"
	"go.uber.org/zap"
)

func newBirthdayService(t *testing.T, students *fakeStudentRepo, messages *fakeMessageRepo) *BirthdayService {
	t.Helper()

	enqueue, err := NewEnqueueService(messages, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEnqueueService() error = %v", err)
	}
	svc, err := NewBirthdayService(students, enqueue, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBirthdayService() error = %v", err)
	}
	return svc
}

func TestBirthdayRunQueuesCelebratingStudents(t *testing.T) {
	t.Parallel()

	students := &fakeStudentRepo{
		listWithBirthdayOnFn: func(ctx context.Context, month, day int) ([]domain.Student, error) {
			if month != 3 || day != 10 {
				t.Errorf("ListWithBirthdayOn(%d, %d), want (3, 10)", month, day)
			}
			return []domain.Student{
				{ID: "s-1", Name: "Adaeze Obi", ParentEmail1: "mum@example.com"},
				{ID: "s-2", Name: "Bola Ade", ParentEmail1: "dad@example.com", ParentEmail2: "aunt@example.com"},
			}, nil
		},
	}

	queued := make([]domain.Message, 0, 2)
	messages := &fakeMessageRepo{
		createFn: func(ctx context.Context, m *domain.Message) error {
			queued = append(queued, *m)
			return nil
		},
	}

	svc := newBirthdayService(t, students, messages)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	}

	count, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if count != 2 {
		t.Fatalf("Run() = %d, want 2", count)
	}
	// One message per student, addressed to the first guardian only.
	if len(queued) != 2 {
		t.Fatalf("queued = %d messages, want 2", len(queued))
	}
	if queued[1].RecipientEmail != "dad@example.com" {
		t.Fatalf("RecipientEmail = %q, want first guardian address", queued[1].RecipientEmail)
	}
	for _, m := range queued {
		if m.Type != domain.TypeBirthday {
			t.Fatalf("Type = %s, want %s", m.Type, domain.TypeBirthday)
		}
	}
}

func TestBirthdayRunIsIdempotentAcrossReruns(t *testing.T) {
	t.Parallel()

	students := &fakeStudentRepo{
		listWithBirthdayOnFn: func(ctx context.Context, month, day int) ([]domain.Student, error) {
			return []domain.Student{
				{ID: "s-1", Name: "Adaeze Obi", ParentEmail1: "mum@example.com"},
			}, nil
		},
	}

	inserted := 0
	messages := &fakeMessageRepo{
		createFn: func(ctx context.Context, m *domain.Message) error {
			inserted++
			return nil
		},
		existsBirthdaySinceFn: func(ctx context.Context, studentID string, since time.Time) (bool, error) {
			return inserted > 0, nil
		},
	}

	svc := newBirthdayService(t, students, messages)

	first, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if first != 1 || second != 0 {
		t.Fatalf("Run() = (%d, %d), want (1, 0)", first, second)
	}
	if inserted != 1 {
		t.Fatalf("inserted = %d, want exactly one message", inserted)
	}
}

func TestBirthdayRunSkipsStudentsWithoutGuardianEmail(t *testing.T) {
	t.Parallel()

	students := &fakeStudentRepo{
		listWithBirthdayOnFn: func(ctx context.Context, month, day int) ([]domain.Student, error) {
			return []domain.Student{
				{ID: "s-1", Name: "No Contact"},
				{ID: "s-2", Name: "Bola Ade", ParentEmail1: "dad@example.com"},
			}, nil
		},
	}
	messages := &fakeMessageRepo{}

	svc := newBirthdayService(t, students, messages)

	count, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("Run() = %d, want 1", count)
	}
}
