package commands

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskwise/internal/notifications/domain"
)

type stubProvider struct {
	settings *domain.Settings
}

func (p *stubProvider) Settings(_ context.Context, userID uuid.UUID) (*domain.Settings, error) {
	if p.settings == nil {
		p.settings = domain.DefaultSettings(userID, time.Now())
	}
	return p.settings, nil
}

type recordingSettingsRepo struct {
	saved *domain.Settings
}

func (r *recordingSettingsRepo) Find(_ context.Context, _ uuid.UUID) (*domain.Settings, error) {
	return r.saved, nil
}

func (r *recordingSettingsRepo) Save(_ context.Context, s *domain.Settings) error {
	r.saved = s
	return nil
}

type recordingReplanner struct {
	calls []uuid.UUID
}

func (r *recordingReplanner) PlanForUser(_ context.Context, userID uuid.UUID) error {
	r.calls = append(r.calls, userID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestUpdateSettingsRejectsEmptyCommand(t *testing.T) {
	handler := NewUpdateSettingsHandler(&stubProvider{}, &recordingSettingsRepo{}, nil, testLogger())

	_, err := handler.Handle(context.Background(), UpdateSettingsCommand{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestUpdateSettingsRejectsUnknownFrequency(t *testing.T) {
	handler := NewUpdateSettingsHandler(&stubProvider{}, &recordingSettingsRepo{}, nil, testLogger())

	bad := domain.Frequency("hourly")
	_, err := handler.Handle(context.Background(), UpdateSettingsCommand{
		UserID:    uuid.New(),
		Frequency: &bad,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)
}

func TestUpdateSettingsRejectsBadFocusWindow(t *testing.T) {
	handler := NewUpdateSettingsHandler(&stubProvider{}, &recordingSettingsRepo{}, nil, testLogger())

	windows := []domain.FocusWindow{{StartHour: 14, EndHour: 9}}
	_, err := handler.Handle(context.Background(), UpdateSettingsCommand{
		UserID:     uuid.New(),
		FocusHours: &windows,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFocusHours)
}

func TestUpdateSettingsSavesAndReplans(t *testing.T) {
	userID := uuid.New()
	repo := &recordingSettingsRepo{}
	replanner := &recordingReplanner{}
	handler := NewUpdateSettingsHandler(&stubProvider{}, repo, replanner, testLogger())

	disable := false
	freq := domain.FrequencyHigh
	updated, err := handler.Handle(context.Background(), UpdateSettingsCommand{
		UserID:     userID,
		EnablePush: &disable,
		Frequency:  &freq,
	})
	require.NoError(t, err)

	assert.False(t, updated.EnablePush)
	assert.Equal(t, domain.FrequencyHigh, updated.Frequency)
	require.NotNil(t, repo.saved)
	assert.False(t, repo.saved.EnablePush)
	assert.Equal(t, []uuid.UUID{userID}, replanner.calls)
}
