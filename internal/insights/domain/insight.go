package domain

import (
	"time"

	"github.com/google/uuid"
)

// Type tags the kind of analytical result an insight carries.
type Type string

const (
	TypeProductiveTime      Type = "productive_time"
	TypeCompletionRate      Type = "completion_rate"
	TypeCategoryPerformance Type = "category_performance"
	TypeTaskRecommendations Type = "task_recommendations"
)

// Insight is one persisted analytical result about a user's task
// history. Insights are immutable; each generation run appends new
// rows rather than updating old ones.
type Insight struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	Payload     Payload
	GeneratedAt time.Time
}

// NewInsight creates an insight for a payload, stamped at now.
func NewInsight(userID uuid.UUID, payload Payload, now time.Time) *Insight {
	return &Insight{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        payload.InsightType(),
		Payload:     payload,
		GeneratedAt: now.UTC(),
	}
}
