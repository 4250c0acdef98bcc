package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/notifications/domain"
)

// SettingsProvider loads a user's settings, creating the defaults on
// first access.
type SettingsProvider interface {
	Settings(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)
}

// SettingsDTO is the API shape of notification settings.
type SettingsDTO struct {
	UserID     uuid.UUID            `json:"user_id"`
	EnablePush bool                 `json:"enable_push"`
	FocusHours []domain.FocusWindow `json:"focus_hours"`
	Frequency  domain.Frequency     `json:"notification_frequency"`
}

// GetSettingsHandler returns a user's notification settings.
type GetSettingsHandler struct {
	provider SettingsProvider
}

func NewGetSettingsHandler(provider SettingsProvider) *GetSettingsHandler {
	return &GetSettingsHandler{provider: provider}
}

func (h *GetSettingsHandler) Handle(ctx context.Context, userID uuid.UUID) (*SettingsDTO, error) {
	settings, err := h.provider.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToSettingsDTO(settings), nil
}

func ToSettingsDTO(s *domain.Settings) *SettingsDTO {
	focus := s.FocusHours
	if focus == nil {
		focus = []domain.FocusWindow{}
	}
	return &SettingsDTO{
		UserID:     s.UserID,
		EnablePush: s.EnablePush,
		FocusHours: focus,
		Frequency:  s.Frequency,
	}
}
