package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sfgs/mail-dispatch/internal/domain"
	"github.com/sfgs/mail-dispatch/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

// MessageDirectory is the read side of the queue exposed to operators.
type MessageDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Message, int64, error)
}

// MessageRecovery covers the operator actions on stuck messages.
type MessageRecovery interface {
	Retry(ctx context.Context, id string) (*domain.Message, error)
	Cancel(ctx context.Context, id string) error
}

type MessageHandler struct {
	directory MessageDirectory
	recovery  MessageRecovery
}

func NewMessageHandler(directory MessageDirectory, recovery MessageRecovery) (*MessageHandler, error) {
	if directory == nil {
		return nil, fmt.Errorf("message directory is required")
	}
	if recovery == nil {
		return nil, fmt.Errorf("message recovery is required")
	}
	return &MessageHandler{directory: directory, recovery: recovery}, nil
}

func RegisterMessageRoutes(router fiber.Router, directory MessageDirectory, recovery MessageRecovery) error {
	h, err := NewMessageHandler(directory, recovery)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/messages", h.ListMessages)
	v1.Get("/messages/:id", h.GetMessage)
	v1.Post("/messages/:id/retry", h.RetryMessage)
	v1.Delete("/messages/:id", h.CancelMessage)

	return nil
}

type messageResponse struct {
	ID             string     `json:"id"`
	StudentID      *string    `json:"studentId,omitempty"`
	MatricNumber   string     `json:"matricNumber,omitempty"`
	RecipientEmail string     `json:"recipientEmail"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	ErrorMessage   *string    `json:"errorMessage,omitempty"`
	PayloadRef     *string    `json:"payloadRef,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
}

type listMessagesResponse struct {
	Data []messageResponse `json:"data"`
	Meta listMeta          `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	messages, total, err := h.directory.List(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listMessagesResponse{
		Data: toMessageResponses(messages),
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *MessageHandler) GetMessage(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	message, err := h.directory.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toMessageResponse(message))
}

func (h *MessageHandler) RetryMessage(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	message, err := h.recovery.Retry(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toMessageResponse(message))
}

func (h *MessageHandler) CancelMessage(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.recovery.Cancel(c.Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"messageId": id,
		"deleted":   true,
	})
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseStatusFromString(rawStatus)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Status = &status
	}

	if rawType := strings.TrimSpace(c.Query("type")); rawType != "" {
		messageType, err := domain.ParseMessageTypeFromString(rawType)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Type = &messageType
	}

	switch order := strings.TrimSpace(c.Query("orderBy")); order {
	case "", "createdAt":
		params.Order = repository.OrderByCreatedAt
	case "sentAt":
		params.Order = repository.OrderBySentAt
	default:
		return repository.ListParams{}, fmt.Errorf("%w: orderBy must be createdAt or sentAt", domain.ErrValidation)
	}

	return params, nil
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	responses := make([]messageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toMessageResponse(&messages[i]))
	}
	return responses
}

func toMessageResponse(m *domain.Message) messageResponse {
	if m == nil {
		return messageResponse{}
	}

	return messageResponse{
		ID:             m.ID,
		StudentID:      m.StudentID,
		MatricNumber:   m.MatricNumber,
		RecipientEmail: m.RecipientEmail,
		Type:           m.Type.String(),
		Status:         m.Status.String(),
		ErrorMessage:   m.ErrorMessage,
		PayloadRef:     m.PayloadRef,
		CreatedAt:      m.CreatedAt,
		SentAt:         m.SentAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return err
	}
}
