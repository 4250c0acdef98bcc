package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/insights/domain"
)

// defaultLimit is how many recent insights the API returns.
const defaultLimit = 10

// InsightDTO is the outward representation of one insight.
type InsightDTO struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Type        string         `json:"insight_type"`
	Payload     domain.Payload `json:"insight_data"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// GetInsightsQuery fetches a user's most recent insights.
type GetInsightsQuery struct {
	UserID uuid.UUID
	Limit  int
}

// GetInsightsHandler handles the GetInsightsQuery.
type GetInsightsHandler struct {
	insightRepo domain.Repository
}

// NewGetInsightsHandler creates a new GetInsightsHandler.
func NewGetInsightsHandler(insightRepo domain.Repository) *GetInsightsHandler {
	return &GetInsightsHandler{insightRepo: insightRepo}
}

// Handle executes the GetInsightsQuery.
func (h *GetInsightsHandler) Handle(ctx context.Context, query GetInsightsQuery) ([]InsightDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	insights, err := h.insightRepo.FindRecent(ctx, query.UserID, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]InsightDTO, len(insights))
	for i, ins := range insights {
		dtos[i] = InsightDTO{
			ID:          ins.ID,
			UserID:      ins.UserID,
			Type:        string(ins.Type),
			Payload:     ins.Payload,
			GeneratedAt: ins.GeneratedAt,
		}
	}
	return dtos, nil
}
