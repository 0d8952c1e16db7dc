package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sfgs/mail-dispatch/internal/domain"
	"github.com/sfgs/mail-dispatch/internal/repository"
	"go.uber.org/zap"
)

// UploadResult reports the outcome of registering one uploaded document.
type UploadResult struct {
	FileID             string
	MatricNumberRaw    string
	MatricNumberParsed string
	Matched            bool
	StudentName        string
	EmailsQueued       int
}

// UploadService matches uploaded PDFs to student records and enqueues one
// document message per known guardian address.
type UploadService struct {
	files    repository.UploadedFileRepository
	students repository.StudentRepository
	enqueue  *EnqueueService
	logger   *zap.Logger
	now      func() time.Time
}

func NewUploadService(
	files repository.UploadedFileRepository,
	students repository.StudentRepository,
	enqueue *EnqueueService,
	logger *zap.Logger,
) (*UploadService, error) {
	if files == nil {
		return nil, fmt.Errorf("uploaded file repository is required")
	}
	if students == nil {
		return nil, fmt.Errorf("student repository is required")
	}
	if enqueue == nil {
		return nil, fmt.Errorf("enqueue service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &UploadService{
		files:    files,
		students: students,
		enqueue:  enqueue,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// ParseMatricNumber derives the matric number from an uploaded file name.
// Files are named with dots standing in for slashes, e.g. 2023.ENG.001.pdf
// parses to 2023/ENG/001.
func ParseMatricNumber(fileName string) (raw string, parsed string) {
	raw = strings.TrimSpace(fileName)
	if ext := strings.ToLower(raw); strings.HasSuffix(ext, ".pdf") {
		raw = raw[:len(raw)-len(".pdf")]
	}
	parsed = strings.ReplaceAll(raw, ".", "/")
	return raw, parsed
}

// RegisterUpload records an uploaded file, matches it to a student by parsed
// matric number, and schedules document notifications for each guardian.
// Unmatched files are recorded but never enqueued.
func (s *UploadService) RegisterUpload(ctx context.Context, originalFileName, storagePath string) (*UploadResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	originalFileName = strings.TrimSpace(originalFileName)
	if originalFileName == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(storagePath) == "" {
		return nil, fmt.Errorf("%w: storage path is required", domain.ErrValidation)
	}

	raw, parsed := ParseMatricNumber(originalFileName)

	student, err := s.students.GetByMatric(ctx, parsed)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to match student: %w", err)
	}
	matched := student != nil

	file := &domain.UploadedFile{
		ID:                 uuid.NewString(),
		OriginalFileName:   originalFileName,
		MatricNumberRaw:    raw,
		MatricNumberParsed: parsed,
		Status:             domain.MatchStatusUnmatched,
		StoragePath:        storagePath,
		CreatedAt:          s.now().UTC(),
	}
	if matched {
		file.StudentID = &student.ID
		file.Status = domain.MatchStatusMatched
	}

	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to record uploaded file: %w", err)
	}

	result := &UploadResult{
		FileID:             file.ID,
		MatricNumberRaw:    raw,
		MatricNumberParsed: parsed,
		Matched:            matched,
	}
	if !matched {
		s.logger.Warn("uploaded file did not match a student",
			zap.String("fileName", originalFileName),
			zap.String("matricNumber", parsed),
		)
		return result, nil
	}

	result.StudentName = student.Name

	for _, guardianEmail := range student.GuardianEmails() {
		_, err := s.enqueue.Enqueue(ctx, EnqueueCandidate{
			StudentID:      &student.ID,
			MatricNumber:   parsed,
			RecipientEmail: guardianEmail,
			Type:           domain.TypeDocument,
			PayloadRef:     &file.ID,
		})
		if err != nil {
			s.logger.Warn("failed to enqueue document message",
				zap.String("fileId", file.ID),
				zap.String("recipient", guardianEmail),
				zap.Error(err),
			)
			continue
		}
		result.EmailsQueued++
	}

	return result, nil
}
