package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database"
)

// SQLRepository implements Repository on any database.Connection.
// Timestamps are stored as RFC3339 strings so both drivers scan them
// identically.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates an outbox repository bound to conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

func (r *SQLRepository) rebind(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	return r.SaveBatch(ctx, []*Message{msg})
}

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		INSERT INTO outbox_messages (event_id, aggregate_type, aggregate_id, routing_key, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	for _, msg := range msgs {
		if _, err := exec.Exec(ctx, query,
			msg.EventID.String(),
			msg.AggregateType,
			msg.AggregateID.String(),
			msg.RoutingKey,
			string(msg.Payload),
			msg.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert outbox message: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, created_at, retry_count, last_error, next_retry_at
		FROM outbox_messages
		WHERE published_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?`)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows, err := exec.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query unpublished messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`UPDATE outbox_messages SET published_at = ? WHERE id = ?`)
	_, err := exec.Exec(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), id)
	return err
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`)
	_, err := exec.Exec(ctx, query, errMsg, nextRetryAt.UTC().Format(time.RFC3339Nano), id)
	return err
}

func (r *SQLRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`DELETE FROM outbox_messages WHERE published_at IS NOT NULL AND published_at < ?`)
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	res, err := exec.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMessage(rows database.Rows) (*Message, error) {
	var (
		msg         Message
		eventID     string
		aggregateID string
		payload     string
		createdAt   string
		lastError   *string
		nextRetryAt *string
	)
	if err := rows.Scan(&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.RoutingKey, &payload, &createdAt, &msg.RetryCount, &lastError, &nextRetryAt); err != nil {
		return nil, fmt.Errorf("scan outbox message: %w", err)
	}

	var err error
	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("parse aggregate id: %w", err)
	}
	if msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	msg.Payload = []byte(payload)
	msg.LastError = lastError
	if nextRetryAt != nil {
		t, err := time.Parse(time.RFC3339Nano, *nextRetryAt)
		if err != nil {
			return nil, fmt.Errorf("parse next_retry_at: %w", err)
		}
		msg.NextRetryAt = &t
	}
	return &msg, nil
}
