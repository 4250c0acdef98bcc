package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payload is the typed, per-kind body of an insight. Payloads are
// serialized to JSON only at the persistence and API boundaries.
type Payload interface {
	InsightType() Type
}

// ProductiveTimePayload describes the hours a user completes the most
// tasks.
type ProductiveTimePayload struct {
	// ProductiveHours holds the top completion hours formatted on a
	// 12-hour clock, e.g. "9 AM".
	ProductiveHours []string    `json:"productive_hours"`
	Message         string      `json:"message"`
	HourData        map[int]int `json:"hour_data"`
}

func (ProductiveTimePayload) InsightType() Type { return TypeProductiveTime }

// CompletionRatePayload describes how much of a user's workload gets
// finished, and how much of that on time.
type CompletionRatePayload struct {
	CompletionRate   float64 `json:"completion_rate"`
	OnTimePercentage float64 `json:"on_time_percentage"`
	CompletedCount   int     `json:"completed_count"`
	PendingCount     int     `json:"pending_count"`
	Message          string  `json:"message"`
}

func (CompletionRatePayload) InsightType() Type { return TypeCompletionRate }

// CategoryStat is one category's slice of a user's completed work.
type CategoryStat struct {
	Category         string  `json:"category"`
	TaskCount        int     `json:"task_count"`
	OnTimePercentage float64 `json:"on_time_percentage"`
}

// CategoryPerformancePayload ranks categories by completed volume.
type CategoryPerformancePayload struct {
	Categories []CategoryStat `json:"categories"`
	Message    string         `json:"message"`
}

func (CategoryPerformancePayload) InsightType() Type { return TypeCategoryPerformance }

// RecommendedTask is one scored entry of a task-order recommendation.
type RecommendedTask struct {
	ID       uuid.UUID  `json:"id"`
	Title    string     `json:"title"`
	Score    int        `json:"score"`
	Priority int        `json:"priority"`
	DueDate  *time.Time `json:"due_date"`
	Category string     `json:"category"`
}

// TaskRecommendationsPayload is the ranked suggestion of what to work
// on next.
type TaskRecommendationsPayload struct {
	RecommendedTasks []RecommendedTask `json:"recommended_tasks"`
	Message          string            `json:"message"`
	Reasoning        string            `json:"reasoning"`
}

func (TaskRecommendationsPayload) InsightType() Type { return TypeTaskRecommendations }

// EncodePayload serializes a payload for storage.
func EncodePayload(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload deserializes a stored payload according to its type tag.
func DecodePayload(t Type, data []byte) (Payload, error) {
	switch t {
	case TypeProductiveTime:
		var p ProductiveTimePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeCompletionRate:
		var p CompletionRatePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeCategoryPerformance:
		var p CategoryPerformancePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeTaskRecommendations:
		var p TaskRecommendationsPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown insight type %q", t)
	}
}
