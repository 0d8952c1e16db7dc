package handler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sfgs/mail-dispatch/internal/service"
)

// UploadRegistrar matches a stored file to a student and queues the
// notifications.
type UploadRegistrar interface {
	RegisterUpload(ctx context.Context, originalFileName, storagePath string) (*service.UploadResult, error)
}

type UploadHandler struct {
	uploads   UploadRegistrar
	uploadDir string
}

func NewUploadHandler(uploads UploadRegistrar, uploadDir string) (*UploadHandler, error) {
	if uploads == nil {
		return nil, fmt.Errorf("upload registrar is required")
	}
	if strings.TrimSpace(uploadDir) == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	return &UploadHandler{uploads: uploads, uploadDir: uploadDir}, nil
}

func RegisterUploadRoutes(router fiber.Router, uploads UploadRegistrar, uploadDir string) error {
	h, err := NewUploadHandler(uploads, uploadDir)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/uploads", h.UploadDocument)

	return nil
}

type uploadResponse struct {
	FileID             string `json:"fileId"`
	MatricNumberRaw    string `json:"matricNumberRaw"`
	MatricNumberParsed string `json:"matricNumberParsed"`
	Matched            bool   `json:"matched"`
	StudentName        string `json:"studentName,omitempty"`
	EmailsQueued       int    `json:"emailsQueued"`
}

// UploadDocument stores one multipart PDF under a collision-free name and
// registers it. Unmatched files come back 200 with matched=false so the
// operator can fix the file name and retry.
func (h *UploadHandler) UploadDocument(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
	}

	storagePath := filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, storagePath); err != nil {
		return fmt.Errorf("failed to store uploaded file: %w", err)
	}

	result, err := h.uploads.RegisterUpload(c.Context(), fileHeader.Filename, storagePath)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(uploadResponse{
		FileID:             result.FileID,
		MatricNumberRaw:    result.MatricNumberRaw,
		MatricNumberParsed: result.MatricNumberParsed,
		Matched:            result.Matched,
		StudentName:        result.StudentName,
		EmailsQueued:       result.EmailsQueued,
	})
}
