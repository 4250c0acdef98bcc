package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/notifications/domain"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database"
)

// SQLSettingsRepository implements domain.SettingsRepository on any
// database.Connection. Focus windows are serialized to JSON at this
// boundary.
type SQLSettingsRepository struct {
	conn database.Connection
}

func NewSQLSettingsRepository(conn database.Connection) *SQLSettingsRepository {
	return &SQLSettingsRepository{conn: conn}
}

func (r *SQLSettingsRepository) rebind(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

func (r *SQLSettingsRepository) Find(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		SELECT user_id, enable_push, focus_hours, notification_frequency, created_at, updated_at
		FROM notification_settings
		WHERE user_id = ?`)

	var (
		id         string
		enablePush bool
		focusJSON  string
		frequency  string
		createdAt  string
		updatedAt  string
	)
	err := exec.QueryRow(ctx, query, userID.String()).
		Scan(&id, &enablePush, &focusJSON, &frequency, &createdAt, &updatedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query notification settings: %w", err)
	}

	settings := &domain.Settings{
		UserID:     userID,
		EnablePush: enablePush,
		Frequency:  domain.Frequency(frequency),
	}
	if err := json.Unmarshal([]byte(focusJSON), &settings.FocusHours); err != nil {
		return nil, fmt.Errorf("decode focus hours: %w", err)
	}
	if settings.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if settings.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return settings, nil
}

func (r *SQLSettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	focus := settings.FocusHours
	if focus == nil {
		focus = []domain.FocusWindow{}
	}
	focusJSON, err := json.Marshal(focus)
	if err != nil {
		return fmt.Errorf("encode focus hours: %w", err)
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		INSERT INTO notification_settings (user_id, enable_push, focus_hours, notification_frequency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			enable_push = excluded.enable_push,
			focus_hours = excluded.focus_hours,
			notification_frequency = excluded.notification_frequency,
			updated_at = excluded.updated_at`)

	_, err = exec.Exec(ctx, query,
		settings.UserID.String(),
		settings.EnablePush,
		string(focusJSON),
		string(settings.Frequency),
		settings.CreatedAt.UTC().Format(time.RFC3339Nano),
		settings.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save notification settings: %w", err)
	}
	return nil
}
