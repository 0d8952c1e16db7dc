package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sfgs/mail-dispatch/internal/domain"
)

type fakeFileRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.UploadedFile, error)
}

func (f *fakeFileRepo) Create(ctx context.Context, file *domain.UploadedFile) error { return nil }

func (f *fakeFileRepo) GetByID(ctx context.Context, id string) (*domain.UploadedFile, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeFileRepo) List(ctx context.Context, page, pageSize int) ([]domain.UploadedFile, int64, error) {
	return nil, 0, nil
}

func TestResolveEncodesStoredFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "stored.pdf")
	payload := []byte("%PDF-1.4 test payload")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	repo := &fakeFileRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.UploadedFile, error) {
			if id != "file-1" {
				t.Fatalf("GetByID(%q), want file-1", id)
			}
			return &domain.UploadedFile{
				ID:               "file-1",
				OriginalFileName: "2023.ENG.001.pdf",
				StoragePath:      path,
			}, nil
		},
	}

	resolver, err := NewLocalResolver(repo)
	if err != nil {
		t.Fatalf("NewLocalResolver() error = %v", err)
	}

	attachment, err := resolver.Resolve(context.Background(), "file-1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if attachment.Name != "2023.ENG.001.pdf" {
		t.Fatalf("Name = %q, want original file name", attachment.Name)
	}
	if attachment.Content != base64.StdEncoding.EncodeToString(payload) {
		t.Fatal("Content must be the base64 of the stored bytes")
	}
}

func TestResolveUnknownRecord(t *testing.T) {
	t.Parallel()

	resolver, err := NewLocalResolver(&fakeFileRepo{})
	if err != nil {
		t.Fatalf("NewLocalResolver() error = %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestResolveMissingFileOnDisk(t *testing.T) {
	t.Parallel()

	repo := &fakeFileRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.UploadedFile, error) {
			return &domain.UploadedFile{
				ID:          id,
				StoragePath: filepath.Join(t.TempDir(), "gone.pdf"),
			}, nil
		},
	}

	resolver, err := NewLocalResolver(repo)
	if err != nil {
		t.Fatalf("NewLocalResolver() error = %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), "file-1"); err == nil {
		t.Fatal("Resolve() expected error for missing file")
	}
}
