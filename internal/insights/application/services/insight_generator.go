package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/insights/domain"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/activity"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskwise/pkg/observability"
)

// minCompletedForInsights gates every analyzer: with five or fewer
// completed tasks the data is too thin to say anything useful.
const minCompletedForInsights = 5

// minPendingForRecommendations additionally gates the recommender.
const minPendingForRecommendations = 1

// activityFetchLimit bounds the activity window handed to the
// productive-time analysis.
const activityFetchLimit = 100

// NotificationPlanner is triggered after every generation run so fresh
// insights feed into notification scheduling.
type NotificationPlanner interface {
	PlanForUser(ctx context.Context, userID uuid.UUID) error
}

// InsightGenerator orchestrates the analyzers for one user: fetch
// snapshots, run the analytics that have enough data, persist the
// results as one atomic batch, then hand off to notification planning.
type InsightGenerator struct {
	taskRepo     task.Repository
	activityRepo activity.Repository
	insightRepo  domain.Repository
	analyzer     *Analyzer
	planner      NotificationPlanner
	logger       *slog.Logger
	metrics      observability.Metrics
	clock        func() time.Time
}

// NewInsightGenerator creates a generator. planner may be nil when
// notification scheduling is not wired.
func NewInsightGenerator(
	taskRepo task.Repository,
	activityRepo activity.Repository,
	insightRepo domain.Repository,
	analyzer *Analyzer,
	planner NotificationPlanner,
	logger *slog.Logger,
	metrics observability.Metrics,
) *InsightGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &InsightGenerator{
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
		insightRepo:  insightRepo,
		analyzer:     analyzer,
		planner:      planner,
		logger:       logger,
		metrics:      metrics,
		clock:        time.Now,
	}
}

// Generate runs all applicable analyzers for the user and persists the
// resulting insights. Analyzers that decline to produce a result are
// skipped silently; an empty run is a normal outcome.
func (g *InsightGenerator) Generate(ctx context.Context, userID uuid.UUID) ([]*domain.Insight, error) {
	start := g.clock()

	completedTasks, err := g.taskRepo.FindByUserAndStatus(ctx, userID, task.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("fetch completed tasks: %w", err)
	}
	pendingTasks, err := g.taskRepo.FindByUserAndStatus(ctx, userID, task.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("fetch pending tasks: %w", err)
	}
	activityLog, err := g.activityRepo.FindRecent(ctx, userID, activityFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch activity log: %w", err)
	}

	completed := ToSnapshots(completedTasks)
	pending := ToSnapshots(pendingTasks)
	SortByDueAscending(pending)

	now := g.clock()
	var insights []*domain.Insight

	if len(completed) > minCompletedForInsights {
		if payload, ok := g.analyzer.ProductiveTime(completed, toActivitySnapshots(activityLog)); ok {
			insights = append(insights, domain.NewInsight(userID, payload, now))
		}
		if payload, ok := g.analyzer.CompletionRate(completed, pending); ok {
			insights = append(insights, domain.NewInsight(userID, payload, now))
		}
		if payload, ok := g.analyzer.CategoryPerformance(completed); ok {
			insights = append(insights, domain.NewInsight(userID, payload, now))
		}
		if len(pending) > minPendingForRecommendations {
			if payload, ok := g.analyzer.RecommendTaskOrder(pending, completed); ok {
				insights = append(insights, domain.NewInsight(userID, payload, now))
			}
		}
	}

	if len(insights) > 0 {
		if err := g.insightRepo.SaveBatch(ctx, insights); err != nil {
			return nil, fmt.Errorf("save insights: %w", err)
		}
	}

	g.logger.Debug("insight generation finished",
		"user_id", userID,
		"insights", len(insights),
		"completed_tasks", len(completed),
		"pending_tasks", len(pending),
	)
	g.metrics.Counter("insights_generated", int64(len(insights)))
	g.metrics.Timing("insight_generation", g.clock().Sub(start))

	if g.planner != nil {
		if err := g.planner.PlanForUser(ctx, userID); err != nil {
			// Planning failures must not undo a successful generation.
			g.logger.Warn("notification planning failed", "user_id", userID, "error", err)
		}
	}

	return insights, nil
}

func ToSnapshots(tasks []*task.Task) []domain.TaskSnapshot {
	snapshots := make([]domain.TaskSnapshot, len(tasks))
	for i, t := range tasks {
		snapshots[i] = domain.TaskSnapshot{
			ID:          t.ID(),
			Title:       t.Title(),
			Category:    t.Category(),
			Priority:    t.Priority(),
			DueDate:     t.DueDate(),
			CompletedAt: t.CompletedAt(),
		}
	}
	return snapshots
}

func toActivitySnapshots(entries []*activity.Entry) []domain.ActivitySnapshot {
	snapshots := make([]domain.ActivitySnapshot, len(entries))
	for i, e := range entries {
		snapshots[i] = domain.ActivitySnapshot{
			Action:     string(e.Action),
			OccurredAt: e.OccurredAt,
		}
	}
	return snapshots
}

// SortByDueAscending orders tasks by due date, earliest first, with
// undated tasks ahead of dated ones. This is the order the recommender
// and planner see.
func SortByDueAscending(tasks []domain.TaskSnapshot) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, dj := tasks[i].DueDate, tasks[j].DueDate
		if di == nil {
			return dj != nil
		}
		if dj == nil {
			return false
		}
		return di.Before(*dj)
	})
}
