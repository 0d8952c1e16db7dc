package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sfgs/mail-dispatch/internal/domain"
)

// SettingsStore reads and mutates the scheduler knobs.
type SettingsStore interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, dailyEmailLimit, emailIntervalMinutes int) (*domain.Settings, error)
}

type SettingsHandler struct {
	settings SettingsStore
}

func NewSettingsHandler(settings SettingsStore) (*SettingsHandler, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings store is required")
	}
	return &SettingsHandler{settings: settings}, nil
}

func RegisterSettingsRoutes(router fiber.Router, settings SettingsStore) error {
	h, err := NewSettingsHandler(settings)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/settings", h.GetSettings)
	v1.Put("/settings", h.UpdateSettings)

	return nil
}

type updateSettingsRequest struct {
	DailyEmailLimit      int `json:"dailyEmailLimit"`
	EmailIntervalMinutes int `json:"emailIntervalMinutes"`
}

type settingsResponse struct {
	DailyEmailLimit      int       `json:"dailyEmailLimit"`
	EmailIntervalMinutes int       `json:"emailIntervalMinutes"`
	SenderName           string    `json:"senderName"`
	SenderEmail          string    `json:"senderEmail"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toSettingsResponse(settings))
}

// UpdateSettings changes the daily cap and tick spacing. Sender identity is
// provisioned through configuration and stays read-only here.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	settings, err := h.settings.Update(c.Context(), req.DailyEmailLimit, req.EmailIntervalMinutes)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toSettingsResponse(settings))
}

func toSettingsResponse(s *domain.Settings) settingsResponse {
	if s == nil {
		return settingsResponse{}
	}

	return settingsResponse{
		DailyEmailLimit:      s.DailyEmailLimit,
		EmailIntervalMinutes: s.EmailIntervalMinutes,
		SenderName:           s.SenderName,
		SenderEmail:          s.SenderEmail,
		UpdatedAt:            s.UpdatedAt,
	}
}
