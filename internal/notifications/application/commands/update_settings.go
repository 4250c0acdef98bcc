package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/notifications/domain"
)

var ErrNoFieldsToUpdate = errors.New("no valid fields to update")

// SettingsProvider loads a user's settings, creating the defaults on
// first access.
type SettingsProvider interface {
	Settings(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)
}

// Replanner recomputes a user's notification plan after their settings
// change.
type Replanner interface {
	PlanForUser(ctx context.Context, userID uuid.UUID) error
}

// UpdateSettingsCommand carries partial settings changes. Nil pointers
// leave the corresponding field untouched.
type UpdateSettingsCommand struct {
	UserID     uuid.UUID
	EnablePush *bool
	FocusHours *[]domain.FocusWindow
	Frequency  *domain.Frequency
}

// UpdateSettingsHandler handles the UpdateSettingsCommand.
type UpdateSettingsHandler struct {
	provider  SettingsProvider
	repo      domain.SettingsRepository
	replanner Replanner
	logger    *slog.Logger
	clock     func() time.Time
}

func NewUpdateSettingsHandler(
	provider SettingsProvider,
	repo domain.SettingsRepository,
	replanner Replanner,
	logger *slog.Logger,
) *UpdateSettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateSettingsHandler{
		provider:  provider,
		repo:      repo,
		replanner: replanner,
		logger:    logger,
		clock:     time.Now,
	}
}

// Handle applies the changes and replans the user's notifications.
func (h *UpdateSettingsHandler) Handle(ctx context.Context, cmd UpdateSettingsCommand) (*domain.Settings, error) {
	if cmd.EnablePush == nil && cmd.FocusHours == nil && cmd.Frequency == nil {
		return nil, ErrNoFieldsToUpdate
	}

	if cmd.Frequency != nil {
		if err := domain.ValidateFrequency(*cmd.Frequency); err != nil {
			return nil, err
		}
	}
	if cmd.FocusHours != nil {
		for _, w := range *cmd.FocusHours {
			if err := w.Validate(); err != nil {
				return nil, err
			}
		}
	}

	settings, err := h.provider.Settings(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if cmd.EnablePush != nil {
		settings.EnablePush = *cmd.EnablePush
	}
	if cmd.FocusHours != nil {
		settings.FocusHours = *cmd.FocusHours
	}
	if cmd.Frequency != nil {
		settings.Frequency = *cmd.Frequency
	}
	settings.UpdatedAt = h.clock().UTC()

	if err := h.repo.Save(ctx, settings); err != nil {
		return nil, err
	}

	// New settings can change what gets scheduled, so replan now.
	if h.replanner != nil {
		if err := h.replanner.PlanForUser(ctx, cmd.UserID); err != nil {
			h.logger.Warn("replanning after settings update failed", "user_id", cmd.UserID, "error", err)
		}
	}

	return settings, nil
}
