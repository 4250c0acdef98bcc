package domain

import "time"

// CandidateType distinguishes the notification rules.
type CandidateType string

const (
	CandidateDueToday       CandidateType = "due_today"
	CandidateHighPriority   CandidateType = "high_priority"
	CandidateProductiveTime CandidateType = "productive_time"
)

// Priority orders candidates for the delivery layer.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SymbolicProductiveSlot marks a candidate whose delivery time the
// delivery layer resolves from the user's productive hours.
const SymbolicProductiveSlot = "Next occurrence of productive time"

// Candidate is one planned notification. Exactly one of ScheduledAt
// and Slot is set: a concrete timestamp for time-bound notifications,
// a symbolic slot for ones anchored to the user's productive hours.
type Candidate struct {
	Type        CandidateType `json:"type"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	Priority    Priority      `json:"priority"`
	ScheduledAt *time.Time    `json:"scheduled_at,omitempty"`
	Slot        string        `json:"slot,omitempty"`
}
