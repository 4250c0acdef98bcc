package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/insights/domain"
	sharedApplication "github.com/felixgeelhaar/taskwise/internal/shared/application"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database"
)

// SQLInsightRepository implements domain.Repository on any
// database.Connection. Payloads are serialized here, at the storage
// boundary, and decoded back into their typed form on read.
type SQLInsightRepository struct {
	conn database.Connection
	uow  sharedApplication.UnitOfWork
}

// NewSQLInsightRepository creates an insight repository bound to conn.
func NewSQLInsightRepository(conn database.Connection) *SQLInsightRepository {
	return &SQLInsightRepository{conn: conn, uow: database.NewUnitOfWork(conn)}
}

func (r *SQLInsightRepository) rebind(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// SaveBatch writes all insights inside one transaction so a concurrent
// reader never observes a partial generation run.
func (r *SQLInsightRepository) SaveBatch(ctx context.Context, insights []*domain.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	return sharedApplication.WithUnitOfWork(ctx, r.uow, func(txCtx context.Context) error {
		exec := database.ExecutorFromContext(txCtx, r.conn)
		query := r.rebind(`
			INSERT INTO insights (id, user_id, insight_type, payload, generated_at)
			VALUES (?, ?, ?, ?, ?)`)

		for _, ins := range insights {
			payload, err := domain.EncodePayload(ins.Payload)
			if err != nil {
				return fmt.Errorf("encode insight payload: %w", err)
			}
			if _, err := exec.Exec(txCtx, query,
				ins.ID.String(),
				ins.UserID.String(),
				string(ins.Type),
				string(payload),
				ins.GeneratedAt.UTC().Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("insert insight: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLInsightRepository) FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Insight, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		SELECT id, user_id, insight_type, payload, generated_at
		FROM insights
		WHERE user_id = ?
		ORDER BY generated_at DESC
		LIMIT ?`)

	rows, err := exec.Query(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	var insights []*domain.Insight
	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, ins)
	}
	return insights, rows.Err()
}

func (r *SQLInsightRepository) FindLatestByType(ctx context.Context, userID uuid.UUID, t domain.Type) (*domain.Insight, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind(`
		SELECT id, user_id, insight_type, payload, generated_at
		FROM insights
		WHERE user_id = ? AND insight_type = ?
		ORDER BY generated_at DESC
		LIMIT 1`)

	rows, err := exec.Query(ctx, query, userID.String(), string(t))
	if err != nil {
		return nil, fmt.Errorf("query latest insight: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanInsight(rows)
}

func scanInsight(rows database.Rows) (*domain.Insight, error) {
	var (
		id          string
		userID      string
		insightType string
		payload     string
		generatedAt string
	)
	if err := rows.Scan(&id, &userID, &insightType, &payload, &generatedAt); err != nil {
		return nil, fmt.Errorf("scan insight: %w", err)
	}

	ins := &domain.Insight{Type: domain.Type(insightType)}
	var err error
	if ins.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse insight id: %w", err)
	}
	if ins.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if ins.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return nil, fmt.Errorf("parse generated_at: %w", err)
	}
	if ins.Payload, err = domain.DecodePayload(ins.Type, []byte(payload)); err != nil {
		return nil, fmt.Errorf("decode insight payload: %w", err)
	}
	return ins, nil
}
