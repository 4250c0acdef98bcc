package domain

import (
	"github.com/google/uuid"

	shareddomain "github.com/felixgeelhaar/taskwise/internal/shared/domain"
)

const AggregateType = "NotificationPlan"

const RoutingKeyPlanCreated = "notifications.plan.created"

// PlanCreated is emitted when the planner produces a non-empty set of
// candidates for a user. The delivery layer consumes it from the broker.
type PlanCreated struct {
	shareddomain.BaseEvent
	UserID     uuid.UUID   `json:"user_id"`
	Candidates []Candidate `json:"candidates"`
}

func NewPlanCreated(userID uuid.UUID, candidates []Candidate) *PlanCreated {
	return &PlanCreated{
		BaseEvent:  shareddomain.NewBaseEvent(userID, AggregateType, RoutingKeyPlanCreated),
		UserID:     userID,
		Candidates: candidates,
	}
}
