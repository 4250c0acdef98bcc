package services

import (
	"fmt"
	"strings"
	"time"

	insights "github.com/felixgeelhaar/taskwise/internal/insights/domain"
	"github.com/felixgeelhaar/taskwise/internal/notifications/domain"
)

const (
	maxDueTodayTitles     = 3
	maxHighPriorityTitles = 2
	highPriorityWindow    = 3 // days
	highPriorityDelay     = 2 * time.Hour
)

// PlanNotifications derives candidate notifications from a snapshot of
// the user's state. Pending tasks must be ordered by due date
// ascending with undated tasks first. Pure: no store or clock access
// beyond the supplied now.
//
// Returns nil when push is disabled or nothing is pending.
func PlanNotifications(
	settings *domain.Settings,
	pending []insights.TaskSnapshot,
	productive *insights.ProductiveTimePayload,
	now time.Time,
) []domain.Candidate {
	if settings == nil || !settings.EnablePush || len(pending) == 0 {
		return nil
	}

	var candidates []domain.Candidate

	if c := dueTodayCandidate(pending, now); c != nil {
		candidates = append(candidates, *c)
	}
	if c := highPriorityCandidate(pending, now); c != nil {
		candidates = append(candidates, *c)
	}
	if c := productiveTimeCandidate(pending, productive); c != nil {
		candidates = append(candidates, *c)
	}

	return candidates
}

// dueTodayCandidate covers tasks due on the current calendar day.
func dueTodayCandidate(pending []insights.TaskSnapshot, now time.Time) *domain.Candidate {
	var dueToday []insights.TaskSnapshot
	for _, t := range pending {
		if t.DueDate != nil && sameDay(*t.DueDate, now) {
			dueToday = append(dueToday, t)
		}
	}
	if len(dueToday) == 0 {
		return nil
	}

	names := titles(dueToday, maxDueTodayTitles)
	if len(dueToday) > maxDueTodayTitles {
		names = append(names, fmt.Sprintf("and %d more", len(dueToday)-maxDueTodayTitles))
	}

	at := now
	return &domain.Candidate{
		Type:        domain.CandidateDueToday,
		Title:       fmt.Sprintf("You have %d tasks due today", len(dueToday)),
		Message:     fmt.Sprintf("Tasks due today: %s", strings.Join(names, ", ")),
		Priority:    domain.PriorityHigh,
		ScheduledAt: &at,
	}
}

// highPriorityCandidate covers priority 1 and 2 tasks due within the
// next three days.
func highPriorityCandidate(pending []insights.TaskSnapshot, now time.Time) *domain.Candidate {
	var upcoming []insights.TaskSnapshot
	for _, t := range pending {
		if t.Priority != 1 && t.Priority != 2 {
			continue
		}
		if t.DueDate == nil || !t.DueDate.After(now) {
			continue
		}
		if daysUntil(*t.DueDate, now) > highPriorityWindow {
			continue
		}
		upcoming = append(upcoming, t)
	}
	if len(upcoming) == 0 {
		return nil
	}

	at := now.Add(highPriorityDelay)
	return &domain.Candidate{
		Type:        domain.CandidateHighPriority,
		Title:       "High priority tasks coming up",
		Message:     fmt.Sprintf("Remember to work on: %s", strings.Join(titles(upcoming, maxHighPriorityTitles), ", ")),
		Priority:    domain.PriorityMedium,
		ScheduledAt: &at,
	}
}

// productiveTimeCandidate nudges the user toward the first pending
// task during their productive hours. The delivery layer resolves the
// symbolic slot to a concrete time.
func productiveTimeCandidate(pending []insights.TaskSnapshot, productive *insights.ProductiveTimePayload) *domain.Candidate {
	if productive == nil || len(productive.ProductiveHours) == 0 {
		return nil
	}
	return &domain.Candidate{
		Type:     domain.CandidateProductiveTime,
		Title:    "It's your productive time!",
		Message:  fmt.Sprintf("This is usually when you get the most done. Time to tackle '%s'?", pending[0].Title),
		Priority: domain.PriorityLow,
		Slot:     domain.SymbolicProductiveSlot,
	}
}

func titles(tasks []insights.TaskSnapshot, limit int) []string {
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func sameDay(t, ref time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// daysUntil counts whole 24-hour periods between now and due,
// truncated toward zero. A task due in 71 hours is 2 days out.
func daysUntil(due, now time.Time) int {
	return int(due.Sub(now).Hours() / 24)
}
