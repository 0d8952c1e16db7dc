package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sfgs/mail-dispatch/internal/service"
)

// DispatchRunner triggers one dispatch tick on demand.
type DispatchRunner interface {
	RunTick(ctx context.Context) (*service.TickResult, error)
}

// BirthdayRunner enqueues today's birthday notices.
type BirthdayRunner interface {
	Run(ctx context.Context) (int, error)
}

type DispatchHandler struct {
	dispatcher DispatchRunner
	birthdays  BirthdayRunner
}

func NewDispatchHandler(dispatcher DispatchRunner, birthdays BirthdayRunner) (*DispatchHandler, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatch runner is required")
	}
	if birthdays == nil {
		return nil, fmt.Errorf("birthday runner is required")
	}
	return &DispatchHandler{dispatcher: dispatcher, birthdays: birthdays}, nil
}

func RegisterDispatchRoutes(router fiber.Router, dispatcher DispatchRunner, birthdays BirthdayRunner) error {
	h, err := NewDispatchHandler(dispatcher, birthdays)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/dispatch", h.RunDispatch)
	v1.Post("/birthdays/run", h.RunBirthdays)

	return nil
}

type dispatchResponse struct {
	Skipped  bool `json:"skipped"`
	Admitted int  `json:"admitted"`
	Sent     int  `json:"sent"`
	Failed   int  `json:"failed"`
}

// RunDispatch runs one tick immediately. The tick still honors the spacing
// guard and the daily cap, so a manual trigger can come back skipped.
func (h *DispatchHandler) RunDispatch(c *fiber.Ctx) error {
	result, err := h.dispatcher.RunTick(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(dispatchResponse{
		Skipped:  result.Skipped,
		Admitted: result.Admitted,
		Sent:     result.Sent,
		Failed:   result.Failed,
	})
}

func (h *DispatchHandler) RunBirthdays(c *fiber.Ctx) error {
	queued, err := h.birthdays.Run(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"queued": queued,
	})
}
