package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskwise/internal/insights/domain"
)

func timePtr(t time.Time) *time.Time { return &t }

func completedAt(hour int) domain.TaskSnapshot {
	return domain.TaskSnapshot{
		ID:          uuid.New(),
		Title:       "done",
		CompletedAt: timePtr(time.Date(2026, 5, 11, hour, 30, 0, 0, time.UTC)),
	}
}

func TestProductiveTimeEmptyInput(t *testing.T) {
	a := NewAnalyzer()

	_, ok := a.ProductiveTime(nil, nil)
	assert.False(t, ok)

	// Completed tasks without completion timestamps produce nothing.
	_, ok = a.ProductiveTime([]domain.TaskSnapshot{{ID: uuid.New(), Title: "x"}}, nil)
	assert.False(t, ok)
}

func TestProductiveTimeTopHoursAndFormatting(t *testing.T) {
	a := NewAnalyzer()

	tasks := []domain.TaskSnapshot{
		completedAt(9), completedAt(9), completedAt(9),
		completedAt(14), completedAt(14),
		completedAt(0),
	}

	payload, ok := a.ProductiveTime(tasks, nil)
	require.True(t, ok)

	assert.Equal(t, []string{"9 AM", "2 PM", "12 AM"}, payload.ProductiveHours)
	assert.Equal(t, "You're most productive around 9 AM, 2 PM, 12 AM", payload.Message)
	assert.Equal(t, 3, payload.HourData[9])
	assert.Equal(t, 2, payload.HourData[14])
	assert.Equal(t, 1, payload.HourData[0])
}

func TestProductiveTimeTiesPreferLowerHour(t *testing.T) {
	a := NewAnalyzer()

	tasks := []domain.TaskSnapshot{
		completedAt(22), completedAt(8), completedAt(15),
	}

	payload, ok := a.ProductiveTime(tasks, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"8 AM", "3 PM", "10 PM"}, payload.ProductiveHours)
}

func TestProductiveTimeNoonFormatting(t *testing.T) {
	a := NewAnalyzer()

	payload, ok := a.ProductiveTime([]domain.TaskSnapshot{completedAt(12)}, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"12 PM"}, payload.ProductiveHours)
}

func TestProductiveTimeHistogramSumsToSampleCount(t *testing.T) {
	a := NewAnalyzer()

	tasks := []domain.TaskSnapshot{
		completedAt(1), completedAt(5), completedAt(5), completedAt(23),
		{ID: uuid.New(), Title: "no timestamp"},
	}

	payload, ok := a.ProductiveTime(tasks, nil)
	require.True(t, ok)

	sum := 0
	for hour := 0; hour < 24; hour++ {
		sum += payload.HourData[hour]
	}
	assert.Equal(t, 4, sum)
	assert.Len(t, payload.HourData, 24)
}

func TestCompletionRateEmptyInput(t *testing.T) {
	a := NewAnalyzer()
	_, ok := a.CompletionRate(nil, nil)
	assert.False(t, ok)
}

func TestCompletionRateAndComplementSumTo100(t *testing.T) {
	a := NewAnalyzer()

	completed := []domain.TaskSnapshot{{ID: uuid.New()}, {ID: uuid.New()}}
	pending := []domain.TaskSnapshot{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}

	payload, ok := a.CompletionRate(completed, pending)
	require.True(t, ok)

	complement := float64(len(pending)) / float64(len(completed)+len(pending)) * 100
	assert.InDelta(t, 100, payload.CompletionRate+complement, 0.1)
	assert.Equal(t, 2, payload.CompletedCount)
	assert.Equal(t, 5, payload.PendingCount)
}

func TestCompletionRateAllCompletedNoDueDates(t *testing.T) {
	a := NewAnalyzer()

	completed := make([]domain.TaskSnapshot, 6)
	for i := range completed {
		completed[i] = completedAt(10)
		completed[i].DueDate = nil
	}

	payload, ok := a.CompletionRate(completed, nil)
	require.True(t, ok)
	assert.Equal(t, 100.0, payload.CompletionRate)
	assert.Equal(t, 0.0, payload.OnTimePercentage)
	assert.Equal(t, "You've completed 100.0% of your tasks, with 0.0% completed on time.", payload.Message)
}

func TestCompletionRateOnTimeClassification(t *testing.T) {
	a := NewAnalyzer()
	due := time.Date(2026, 5, 11, 17, 0, 0, 0, time.UTC)

	completed := []domain.TaskSnapshot{
		// Completed exactly at the due instant counts as on time.
		{ID: uuid.New(), DueDate: &due, CompletedAt: timePtr(due)},
		{ID: uuid.New(), DueDate: &due, CompletedAt: timePtr(due.Add(-time.Hour))},
		{ID: uuid.New(), DueDate: &due, CompletedAt: timePtr(due.Add(time.Minute))},
		// No due date: excluded from the on-time sample.
		{ID: uuid.New(), CompletedAt: timePtr(due)},
	}

	payload, ok := a.CompletionRate(completed, nil)
	require.True(t, ok)
	assert.InDelta(t, 66.7, payload.OnTimePercentage, 0.001)
}

func TestCategoryPerformanceEmptyInput(t *testing.T) {
	a := NewAnalyzer()
	_, ok := a.CategoryPerformance(nil)
	assert.False(t, ok)
}

func TestCategoryPerformanceSingleCategoryMessage(t *testing.T) {
	a := NewAnalyzer()

	completed := []domain.TaskSnapshot{
		{ID: uuid.New(), Category: "work", CompletedAt: timePtr(time.Now())},
		{ID: uuid.New(), Category: "work", CompletedAt: timePtr(time.Now())},
	}

	payload, ok := a.CategoryPerformance(completed)
	require.True(t, ok)
	require.Len(t, payload.Categories, 1)
	assert.Equal(t, "You've completed 2 tasks in the 'work' category", payload.Message)
}

func TestCategoryPerformanceBestAndWorst(t *testing.T) {
	a := NewAnalyzer()
	due := time.Date(2026, 5, 11, 17, 0, 0, 0, time.UTC)

	completed := []domain.TaskSnapshot{
		// work: 2/2 on time
		{ID: uuid.New(), Category: "work", DueDate: &due, CompletedAt: timePtr(due.Add(-time.Hour))},
		{ID: uuid.New(), Category: "work", DueDate: &due, CompletedAt: timePtr(due)},
		// chores: 0/2 on time
		{ID: uuid.New(), Category: "chores", DueDate: &due, CompletedAt: timePtr(due.Add(time.Hour))},
		{ID: uuid.New(), Category: "chores", DueDate: &due, CompletedAt: timePtr(due.Add(2 * time.Hour))},
	}

	payload, ok := a.CategoryPerformance(completed)
	require.True(t, ok)
	assert.Equal(t,
		"You perform best in 'work' tasks (100.0% on time) and may need improvement in 'chores' (0.0% on time)",
		payload.Message)
}

func TestCategoryPerformanceExactly70IsNotCalledOut(t *testing.T) {
	a := NewAnalyzer()
	due := time.Date(2026, 5, 11, 17, 0, 0, 0, time.UTC)

	onTimeTask := func(cat string) domain.TaskSnapshot {
		return domain.TaskSnapshot{ID: uuid.New(), Category: cat, DueDate: &due, CompletedAt: timePtr(due)}
	}
	lateTask := func(cat string) domain.TaskSnapshot {
		return domain.TaskSnapshot{ID: uuid.New(), Category: cat, DueDate: &due, CompletedAt: timePtr(due.Add(time.Hour))}
	}

	// chores lands at exactly 70% on time: 7 of 10.
	completed := []domain.TaskSnapshot{onTimeTask("work")}
	for i := 0; i < 7; i++ {
		completed = append(completed, onTimeTask("chores"))
	}
	for i := 0; i < 3; i++ {
		completed = append(completed, lateTask("chores"))
	}

	payload, ok := a.CategoryPerformance(completed)
	require.True(t, ok)
	assert.NotContains(t, payload.Message, "may need improvement")
}

func TestCategoryPerformanceCountsSumToTotal(t *testing.T) {
	a := NewAnalyzer()

	completed := []domain.TaskSnapshot{
		{ID: uuid.New(), Category: "a", CompletedAt: timePtr(time.Now())},
		{ID: uuid.New(), Category: "b", CompletedAt: timePtr(time.Now())},
		{ID: uuid.New(), Category: ""},
		{ID: uuid.New(), Category: "a"},
	}

	payload, ok := a.CategoryPerformance(completed)
	require.True(t, ok)

	sum := 0
	uncategorized := false
	for _, stat := range payload.Categories {
		sum += stat.TaskCount
		if stat.Category == "Uncategorized" {
			uncategorized = true
		}
	}
	assert.Equal(t, len(completed), sum)
	assert.True(t, uncategorized)
	// Sorted by task count descending.
	assert.Equal(t, "a", payload.Categories[0].Category)
}

func TestRecommendTaskOrderEmptyInput(t *testing.T) {
	a := NewAnalyzer()
	_, ok := a.RecommendTaskOrder(nil, nil)
	assert.False(t, ok)
}

func TestRecommendTaskOrderScoring(t *testing.T) {
	now := time.Date(2026, 5, 11, 12, 0, 0, 0, time.UTC)
	a := NewAnalyzerWithClock(func() time.Time { return now })

	yesterday := now.Add(-24 * time.Hour)
	inTenDays := now.Add(10 * 24 * time.Hour)

	payload, ok := a.RecommendTaskOrder([]domain.TaskSnapshot{
		{ID: uuid.New(), Title: "overdue urgent", Priority: 1, DueDate: &yesterday},
		{ID: uuid.New(), Title: "distant low", Priority: 5, DueDate: &inTenDays},
	}, nil)
	require.True(t, ok)

	require.Len(t, payload.RecommendedTasks, 2)
	assert.Equal(t, "overdue urgent", payload.RecommendedTasks[0].Title)
	assert.Equal(t, 90, payload.RecommendedTasks[0].Score)
	assert.Equal(t, "distant low", payload.RecommendedTasks[1].Title)
	assert.Equal(t, 10, payload.RecommendedTasks[1].Score)
}

func TestRecommendTaskOrderUrgencyBands(t *testing.T) {
	now := time.Date(2026, 5, 11, 8, 0, 0, 0, time.UTC)
	a := NewAnalyzerWithClock(func() time.Time { return now })

	scoreFor := func(due *time.Time) int {
		payload, ok := a.RecommendTaskOrder([]domain.TaskSnapshot{
			{ID: uuid.New(), Title: "t", Priority: 3, DueDate: due},
		}, nil)
		require.True(t, ok)
		return payload.RecommendedTasks[0].Score
	}

	dueToday := now.Add(6 * time.Hour)
	dueTomorrow := now.Add(30 * time.Hour)
	dueThisWeek := now.Add(5 * 24 * time.Hour)
	dueNextMonth := now.Add(30 * 24 * time.Hour)

	assert.Equal(t, 30+30, scoreFor(&dueToday))
	assert.Equal(t, 30+20, scoreFor(&dueTomorrow))
	assert.Equal(t, 30+10, scoreFor(&dueThisWeek))
	assert.Equal(t, 30, scoreFor(&dueNextMonth))
	assert.Equal(t, 30, scoreFor(nil))
}

func TestRecommendTaskOrderDefaultsMissingPriorityAndCategory(t *testing.T) {
	a := NewAnalyzer()

	payload, ok := a.RecommendTaskOrder([]domain.TaskSnapshot{
		{ID: uuid.New(), Title: "bare"},
	}, nil)
	require.True(t, ok)

	rec := payload.RecommendedTasks[0]
	assert.Equal(t, 3, rec.Priority)
	assert.Equal(t, 30, rec.Score)
	assert.Equal(t, "Uncategorized", rec.Category)
}

func TestRecommendTaskOrderStableAndDeterministic(t *testing.T) {
	now := time.Date(2026, 5, 11, 8, 0, 0, 0, time.UTC)
	a := NewAnalyzerWithClock(func() time.Time { return now })

	pending := []domain.TaskSnapshot{
		{ID: uuid.New(), Title: "first", Priority: 3},
		{ID: uuid.New(), Title: "second", Priority: 3},
		{ID: uuid.New(), Title: "third", Priority: 3},
	}

	payload, ok := a.RecommendTaskOrder(pending, nil)
	require.True(t, ok)

	// Equal scores keep input order.
	assert.Equal(t, "first", payload.RecommendedTasks[0].Title)
	assert.Equal(t, "second", payload.RecommendedTasks[1].Title)
	assert.Equal(t, "third", payload.RecommendedTasks[2].Title)

	again, ok := a.RecommendTaskOrder(pending, nil)
	require.True(t, ok)
	assert.Equal(t, payload, again)

	// Scores are non-increasing.
	for i := 1; i < len(payload.RecommendedTasks); i++ {
		assert.GreaterOrEqual(t, payload.RecommendedTasks[i-1].Score, payload.RecommendedTasks[i].Score)
	}
}

func TestRecommendTaskOrderCapsAtFive(t *testing.T) {
	a := NewAnalyzer()

	var pending []domain.TaskSnapshot
	for i := 0; i < 8; i++ {
		pending = append(pending, domain.TaskSnapshot{ID: uuid.New(), Title: "t", Priority: 3})
	}

	payload, ok := a.RecommendTaskOrder(pending, nil)
	require.True(t, ok)
	assert.Len(t, payload.RecommendedTasks, 5)
	assert.Equal(t, "Here's your suggested task order for maximum productivity", payload.Message)
	assert.Equal(t, "Based on urgency, priority, and your past completion patterns", payload.Reasoning)
}
