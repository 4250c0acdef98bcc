package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	insightservices "github.com/felixgeelhaar/taskwise/internal/insights/application/services"
	insights "github.com/felixgeelhaar/taskwise/internal/insights/domain"
	"github.com/felixgeelhaar/taskwise/internal/notifications/domain"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskwise/pkg/observability"
)

// PlanDispatcher delivers a finished plan to the delivery layer.
type PlanDispatcher interface {
	Dispatch(ctx context.Context, event *domain.PlanCreated) error
}

// PlanService assembles the inputs for notification planning, runs the
// planner, and dispatches the resulting plan.
type PlanService struct {
	settingsRepo domain.SettingsRepository
	taskRepo     task.Repository
	insightRepo  insights.Repository
	dispatcher   PlanDispatcher
	logger       *slog.Logger
	metrics      observability.Metrics
	clock        func() time.Time
}

func NewPlanService(
	settingsRepo domain.SettingsRepository,
	taskRepo task.Repository,
	insightRepo insights.Repository,
	dispatcher PlanDispatcher,
	logger *slog.Logger,
	metrics observability.Metrics,
) *PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &PlanService{
		settingsRepo: settingsRepo,
		taskRepo:     taskRepo,
		insightRepo:  insightRepo,
		dispatcher:   dispatcher,
		logger:       logger,
		metrics:      metrics,
		clock:        time.Now,
	}
}

// PlanForUser computes the user's notification plan and dispatches it.
// An empty plan dispatches nothing and is not an error.
func (s *PlanService) PlanForUser(ctx context.Context, userID uuid.UUID) error {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return err
	}

	pendingTasks, err := s.taskRepo.FindByUserAndStatus(ctx, userID, task.StatusPending)
	if err != nil {
		return fmt.Errorf("fetch pending tasks: %w", err)
	}
	pending := insightservices.ToSnapshots(pendingTasks)
	insightservices.SortByDueAscending(pending)

	productive, err := s.latestProductiveTime(ctx, userID)
	if err != nil {
		return err
	}

	candidates := PlanNotifications(settings, pending, productive, s.clock())
	if len(candidates) == 0 {
		s.logger.Debug("no notifications planned", "user_id", userID)
		return nil
	}

	event := domain.NewPlanCreated(userID, candidates)
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		return err
	}

	s.logger.Info("notification plan dispatched", "user_id", userID, "candidates", len(candidates))
	s.metrics.Counter("notification_plans_created", 1)
	return nil
}

// Settings loads the user's settings, creating and persisting the
// defaults the first time a user is seen.
func (s *PlanService) Settings(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	settings, err := s.settingsRepo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch notification settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	settings = domain.DefaultSettings(userID, s.clock())
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("create default notification settings: %w", err)
	}
	return settings, nil
}

func (s *PlanService) latestProductiveTime(ctx context.Context, userID uuid.UUID) (*insights.ProductiveTimePayload, error) {
	insight, err := s.insightRepo.FindLatestByType(ctx, userID, insights.TypeProductiveTime)
	if err != nil {
		return nil, fmt.Errorf("fetch productive time insight: %w", err)
	}
	if insight == nil {
		return nil, nil
	}
	payload, ok := insight.Payload.(insights.ProductiveTimePayload)
	if !ok {
		return nil, nil
	}
	return &payload, nil
}
