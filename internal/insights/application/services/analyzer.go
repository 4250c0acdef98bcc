package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskwise/internal/insights/domain"
)

// poorOnTimeThreshold is the on-time percentage below which a category
// is called out as needing improvement. 70% exactly does not qualify.
const poorOnTimeThreshold = 70.0

// maxRecommendations caps the task-order recommendation list.
const maxRecommendations = 5

// Analyzer computes insight payloads from task snapshots. All methods
// are pure: they read the snapshots handed in and touch nothing else.
// The clock is injectable so urgency scoring is testable.
type Analyzer struct {
	clock func() time.Time
}

// NewAnalyzer creates an analyzer using the wall clock.
func NewAnalyzer() *Analyzer {
	return &Analyzer{clock: time.Now}
}

// NewAnalyzerWithClock creates an analyzer with a fixed clock.
func NewAnalyzerWithClock(clock func() time.Time) *Analyzer {
	return &Analyzer{clock: clock}
}

// ProductiveTime buckets task completions into hours of the day and
// picks the top three. Returns false when no completion carries a
// usable timestamp. The activity log is accepted for future use and
// currently does not influence the result.
func (a *Analyzer) ProductiveTime(completed []domain.TaskSnapshot, activityLog []domain.ActivitySnapshot) (domain.ProductiveTimePayload, bool) {
	if len(completed) == 0 {
		return domain.ProductiveTimePayload{}, false
	}

	var completionHours []int
	for _, t := range completed {
		if t.CompletedAt != nil {
			completionHours = append(completionHours, t.CompletedAt.Hour())
		}
	}
	if len(completionHours) == 0 {
		return domain.ProductiveTimePayload{}, false
	}

	hourData := make(map[int]int, 24)
	for hour := 0; hour < 24; hour++ {
		hourData[hour] = 0
	}
	for _, hour := range completionHours {
		hourData[hour]++
	}

	type hourCount struct {
		hour  int
		count int
	}
	counts := make([]hourCount, 24)
	for hour := 0; hour < 24; hour++ {
		counts[hour] = hourCount{hour: hour, count: hourData[hour]}
	}
	// Stable sort keeps lower hours first on equal counts.
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	var formatted []string
	for _, hc := range counts[:3] {
		if hc.count > 0 {
			formatted = append(formatted, formatHour12(hc.hour))
		}
	}

	return domain.ProductiveTimePayload{
		ProductiveHours: formatted,
		Message:         fmt.Sprintf("You're most productive around %s", strings.Join(formatted, ", ")),
		HourData:        hourData,
	}, true
}

// CompletionRate computes the completed share of all tasks and, over
// the completed tasks that have both dates, the on-time share. Returns
// false when there are no tasks at all.
func (a *Analyzer) CompletionRate(completed, pending []domain.TaskSnapshot) (domain.CompletionRatePayload, bool) {
	total := len(completed) + len(pending)
	if total == 0 {
		return domain.CompletionRatePayload{}, false
	}

	completionRate := float64(len(completed)) / float64(total) * 100

	onTime := 0
	late := 0
	for _, t := range completed {
		if t.DueDate == nil || t.CompletedAt == nil {
			continue
		}
		if !t.CompletedAt.After(*t.DueDate) {
			onTime++
		} else {
			late++
		}
	}

	onTimePercentage := 0.0
	if withDue := onTime + late; withDue > 0 {
		onTimePercentage = float64(onTime) / float64(withDue) * 100
	}

	return domain.CompletionRatePayload{
		CompletionRate:   round1(completionRate),
		OnTimePercentage: round1(onTimePercentage),
		CompletedCount:   len(completed),
		PendingCount:     len(pending),
		Message: fmt.Sprintf("You've completed %.1f%% of your tasks, with %.1f%% completed on time.",
			round1(completionRate), round1(onTimePercentage)),
	}, true
}

// CategoryPerformance groups completed tasks by category and ranks the
// categories by volume. Returns false when there are no completed
// tasks.
func (a *Analyzer) CategoryPerformance(completed []domain.TaskSnapshot) (domain.CategoryPerformancePayload, bool) {
	if len(completed) == 0 {
		return domain.CategoryPerformancePayload{}, false
	}

	type categoryData struct {
		count        int
		onTime       int
		totalWithDue int
	}
	categories := make(map[string]*categoryData)
	var order []string

	for _, t := range completed {
		category := t.Category
		if category == "" {
			category = "Uncategorized"
		}
		data, ok := categories[category]
		if !ok {
			data = &categoryData{}
			categories[category] = data
			order = append(order, category)
		}
		data.count++

		if t.DueDate != nil && t.CompletedAt != nil {
			data.totalWithDue++
			if !t.CompletedAt.After(*t.DueDate) {
				data.onTime++
			}
		}
	}

	performance := make([]domain.CategoryStat, 0, len(order))
	for _, category := range order {
		data := categories[category]
		onTimePercentage := 0.0
		if data.totalWithDue > 0 {
			onTimePercentage = float64(data.onTime) / float64(data.totalWithDue) * 100
		}
		performance = append(performance, domain.CategoryStat{
			Category:         category,
			TaskCount:        data.count,
			OnTimePercentage: round1(onTimePercentage),
		})
	}
	sort.SliceStable(performance, func(i, j int) bool { return performance[i].TaskCount > performance[j].TaskCount })

	var message string
	if len(performance) > 1 {
		best := performance[0]
		worst := performance[0]
		for _, stat := range performance[1:] {
			if stat.OnTimePercentage > best.OnTimePercentage {
				best = stat
			}
			if stat.OnTimePercentage < worst.OnTimePercentage {
				worst = stat
			}
		}
		message = fmt.Sprintf("You perform best in '%s' tasks (%.1f%% on time)", best.Category, best.OnTimePercentage)
		if worst.OnTimePercentage < poorOnTimeThreshold {
			message += fmt.Sprintf(" and may need improvement in '%s' (%.1f%% on time)", worst.Category, worst.OnTimePercentage)
		}
	} else {
		message = fmt.Sprintf("You've completed %d tasks in the '%s' category", performance[0].TaskCount, performance[0].Category)
	}

	return domain.CategoryPerformancePayload{
		Categories: performance,
		Message:    message,
	}, true
}

// RecommendTaskOrder scores pending tasks by priority weight plus a
// due-date urgency bonus and returns the top five. The completed set is
// accepted for future scoring extensions. Returns false when nothing is
// pending.
func (a *Analyzer) RecommendTaskOrder(pending, completed []domain.TaskSnapshot) (domain.TaskRecommendationsPayload, bool) {
	if len(pending) == 0 {
		return domain.TaskRecommendationsPayload{}, false
	}

	now := a.clock()
	scored := make([]domain.RecommendedTask, 0, len(pending))
	for _, t := range pending {
		priority := t.Priority
		if priority == 0 {
			priority = 3
		}
		base := (6 - priority) * 10

		urgency := 0
		if t.DueDate != nil {
			urgency = urgencyBonus(daysUntil(now, *t.DueDate))
		}

		scored = append(scored, domain.RecommendedTask{
			ID:       t.ID,
			Title:    t.Title,
			Score:    base + urgency,
			Priority: priority,
			DueDate:  t.DueDate,
			Category: categoryOrDefault(t.Category),
		})
	}

	// Stable sort keeps the input order on ties.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	return domain.TaskRecommendationsPayload{
		RecommendedTasks: scored,
		Message:          "Here's your suggested task order for maximum productivity",
		Reasoning:        "Based on urgency, priority, and your past completion patterns",
	}, true
}

// urgencyBonus maps whole-day distance to a due date onto score points.
func urgencyBonus(days int) int {
	switch {
	case days < 0:
		return 40
	case days == 0:
		return 30
	case days == 1:
		return 20
	case days < 7:
		return 10
	default:
		return 0
	}
}

// daysUntil is the whole-day difference between now and due, floored
// toward negative infinity so anything even slightly past due counts
// as overdue.
func daysUntil(now, due time.Time) int {
	return int(math.Floor(due.Sub(now).Hours() / 24))
}

// formatHour12 renders an hour of day on a 12-hour clock, mapping 0 to
// "12 AM" and 12 to "12 PM".
func formatHour12(hour int) string {
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	formatted := hour % 12
	if formatted == 0 {
		formatted = 12
	}
	return fmt.Sprintf("%d %s", formatted, ampm)
}

func categoryOrDefault(category string) string {
	if category == "" {
		return "Uncategorized"
	}
	return category
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
