package service

import (
	"context"
	"time"

	"github.com/sfgs/mail-dispatch/internal/domain"
	"github.com/sfgs/mail-dispatch/internal/mailer"
	"github.com/sfgs/mail-dispatch/internal/repository"
)

type fakeMessageRepo struct {
	createFn               func(ctx context.Context, m *domain.Message) error
	getByIDFn              func(ctx context.Context, id string) (*domain.Message, error)
	listFn                 func(ctx context.Context, params repository.ListParams) ([]domain.Message, int64, error)
	countSentSinceFn       func(ctx context.Context, since time.Time) (int, error)
	getPendingBatchFn      func(ctx context.Context, limit int) ([]domain.Message, error)
	markProcessingFn       func(ctx context.Context, id string) (bool, error)
	markSentFn             func(ctx context.Context, id string, sentAt time.Time) error
	markFailedFn           func(ctx context.Context, id string, reason string) error
	requeueFn              func(ctx context.Context, id string) error
	deletePendingFn        func(ctx context.Context, id string) error
	existsBirthdaySinceFn  func(ctx context.Context, studentID string, since time.Time) (bool, error)
	sweepStaleProcessingFn func(ctx context.Context, cutoff time.Time, reason string) (int64, error)
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *domain.Message) error {
	if f.createFn != nil {
		return f.createFn(ctx, m)
	}
	return nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMessageRepo) List(ctx context.Context, params repository.ListParams) ([]domain.Message, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeMessageRepo) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	if f.countSentSinceFn != nil {
		return f.countSentSinceFn(ctx, since)
	}
	return 0, nil
}

func (f *fakeMessageRepo) GetPendingBatch(ctx context.Context, limit int) ([]domain.Message, error) {
	if f.getPendingBatchFn != nil {
		return f.getPendingBatchFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeMessageRepo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	if f.markProcessingFn != nil {
		return f.markProcessingFn(ctx, id)
	}
	return true, nil
}

func (f *fakeMessageRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	if f.markSentFn != nil {
		return f.markSentFn(ctx, id, sentAt)
	}
	return nil
}

func (f *fakeMessageRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	if f.markFailedFn != nil {
		return f.markFailedFn(ctx, id, reason)
	}
	return nil
}

func (f *fakeMessageRepo) Requeue(ctx context.Context, id string) error {
	if f.requeueFn != nil {
		return f.requeueFn(ctx, id)
	}
	return nil
}

func (f *fakeMessageRepo) DeletePending(ctx context.Context, id string) error {
	if f.deletePendingFn != nil {
		return f.deletePendingFn(ctx, id)
	}
	return nil
}

func (f *fakeMessageRepo) ExistsBirthdaySince(ctx context.Context, studentID string, since time.Time) (bool, error) {
	if f.existsBirthdaySinceFn != nil {
		return f.existsBirthdaySinceFn(ctx, studentID, since)
	}
	return false, nil
}

func (f *fakeMessageRepo) SweepStaleProcessing(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	if f.sweepStaleProcessingFn != nil {
		return f.sweepStaleProcessingFn(ctx, cutoff, reason)
	}
	return 0, nil
}

type fakeStudentRepo struct {
	getByIDFn            func(ctx context.Context, id string) (*domain.Student, error)
	getByMatricFn        func(ctx context.Context, matricNumber string) (*domain.Student, error)
	listWithBirthdayOnFn func(ctx context.Context, month, day int) ([]domain.Student, error)
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStudentRepo) GetByMatric(ctx context.Context, matricNumber string) (*domain.Student, error) {
	if f.getByMatricFn != nil {
		return f.getByMatricFn(ctx, matricNumber)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStudentRepo) ListWithBirthdayOn(ctx context.Context, month, day int) ([]domain.Student, error) {
	if f.listWithBirthdayOnFn != nil {
		return f.listWithBirthdayOnFn(ctx, month, day)
	}
	return nil, nil
}

type fakeFileRepo struct {
	createFn  func(ctx context.Context, file *domain.UploadedFile) error
	getByIDFn func(ctx context.Context, id string) (*domain.UploadedFile, error)
	listFn    func(ctx context.Context, page, pageSize int) ([]domain.UploadedFile, int64, error)
}

func (f *fakeFileRepo) Create(ctx context.Context, file *domain.UploadedFile) error {
	if f.createFn != nil {
		return f.createFn(ctx, file)
	}
	return nil
}

func (f *fakeFileRepo) GetByID(ctx context.Context, id string) (*domain.UploadedFile, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeFileRepo) List(ctx context.Context, page, pageSize int) ([]domain.UploadedFile, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, page, pageSize)
	}
	return nil, 0, nil
}

type fakeSettingsRepo struct {
	getFn    func(ctx context.Context) (*domain.Settings, error)
	updateFn func(ctx context.Context, dailyEmailLimit, emailIntervalMinutes int) (*domain.Settings, error)
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	if f.getFn != nil {
		return f.getFn(ctx)
	}
	return &domain.Settings{DailyEmailLimit: 100, EmailIntervalMinutes: 5}, nil
}

func (f *fakeSettingsRepo) Update(ctx context.Context, dailyEmailLimit, emailIntervalMinutes int) (*domain.Settings, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, dailyEmailLimit, emailIntervalMinutes)
	}
	return &domain.Settings{DailyEmailLimit: dailyEmailLimit, EmailIntervalMinutes: emailIntervalMinutes}, nil
}

type fakeMailer struct {
	sendFn func(ctx context.Context, email mailer.Email) (*mailer.SendResult, error)
}

func (f *fakeMailer) Send(ctx context.Context, email mailer.Email) (*mailer.SendResult, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, email)
	}
	return &mailer.SendResult{StatusCode: 201, MessageID: "msg-1"}, nil
}

type fakeTickGuard struct {
	acquireFn func(ctx context.Context, interval time.Duration) (bool, error)
	releaseFn func(ctx context.Context) error
	acquired  int
	released  int
}

func (f *fakeTickGuard) Acquire(ctx context.Context, interval time.Duration) (bool, error) {
	f.acquired++
	if f.acquireFn != nil {
		return f.acquireFn(ctx, interval)
	}
	return true, nil
}

func (f *fakeTickGuard) Release(ctx context.Context) error {
	f.released++
	if f.releaseFn != nil {
		return f.releaseFn(ctx)
	}
	return nil
}

type fakeAttachmentResolver struct {
	resolveFn func(ctx context.Context, payloadRef string) (*mailer.Attachment, error)
}

func (f *fakeAttachmentResolver) Resolve(ctx context.Context, payloadRef string) (*mailer.Attachment, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, payloadRef)
	}
	return &mailer.Attachment{Name: "doc.pdf", Content: "ZG9j"}, nil
}
