package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/activity"
)

// SQLActivityRepository implements activity.Repository on any
// database.Connection.
type SQLActivityRepository struct {
	conn database.Connection
}

// NewSQLActivityRepository creates an activity repository bound to conn.
func NewSQLActivityRepository(conn database.Connection) *SQLActivityRepository {
	return &SQLActivityRepository{conn: conn}
}

func (r *SQLActivityRepository) rebind(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

func (r *SQLActivityRepository) Append(ctx context.Context, entry *activity.Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal activity metadata: %w", err)
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		INSERT INTO activity_log (id, user_id, task_id, action, metadata, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err = exec.Exec(ctx, query,
		entry.ID.String(),
		entry.UserID.String(),
		uuidPtrToString(entry.TaskID),
		string(entry.Action),
		string(metadata),
		entry.OccurredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

func (r *SQLActivityRepository) FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*activity.Entry, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		SELECT id, user_id, task_id, action, metadata, occurred_at
		FROM activity_log
		WHERE user_id = ?
		ORDER BY occurred_at DESC
		LIMIT ?`)

	rows, err := exec.Query(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query activity log: %w", err)
	}
	defer rows.Close()

	var entries []*activity.Entry
	for rows.Next() {
		var (
			id         string
			uid        string
			taskID     *string
			action     string
			metadata   string
			occurredAt string
		)
		if err := rows.Scan(&id, &uid, &taskID, &action, &metadata, &occurredAt); err != nil {
			return nil, err
		}

		entry := &activity.Entry{Action: activity.Action(action)}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse entry id: %w", err)
		}
		if entry.UserID, err = uuid.Parse(uid); err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		if taskID != nil {
			parsed, err := uuid.Parse(*taskID)
			if err != nil {
				return nil, fmt.Errorf("parse task id: %w", err)
			}
			entry.TaskID = &parsed
		}
		if err := json.Unmarshal([]byte(metadata), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal activity metadata: %w", err)
		}
		if entry.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt); err != nil {
			return nil, fmt.Errorf("parse occurred_at: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
