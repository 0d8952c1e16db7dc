package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/sfgs/mail-dispatch/internal/mailer"
	"github.com/sfgs/mail-dispatch/internal/repository"
)

// LocalResolver loads document payloads from the local upload directory. The
// payload reference is the uploaded file's record id; the record carries the
// on-disk path.
type LocalResolver struct {
	files repository.UploadedFileRepository
}

func NewLocalResolver(files repository.UploadedFileRepository) (*LocalResolver, error) {
	if files == nil {
		return nil, fmt.Errorf("uploaded file repository is required")
	}
	return &LocalResolver{files: files}, nil
}

func (r *LocalResolver) Resolve(ctx context.Context, payloadRef string) (*mailer.Attachment, error) {
	file, err := r.files.GetByID(ctx, payloadRef)
	if err != nil {
		return nil, fmt.Errorf("failed to load uploaded file record %s: %w", payloadRef, err)
	}

	content, err := os.ReadFile(file.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file %s: %w", file.StoragePath, err)
	}

	return &mailer.Attachment{
		Name:    file.OriginalFileName,
		Content: base64.StdEncoding.EncodeToString(content),
	}, nil
}
