package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/activity"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
	sharedApplication "github.com/felixgeelhaar/taskwise/internal/shared/application"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/outbox"
)

// CompleteTaskCommand contains the data needed to complete a task.
type CompleteTaskCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	taskRepo     task.Repository
	activityRepo activity.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	refresher    InsightRefresher
	clock        func() time.Time
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler.
func NewCompleteTaskHandler(
	taskRepo task.Repository,
	activityRepo activity.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	refresher InsightRefresher,
) *CompleteTaskHandler {
	if refresher == nil {
		refresher = NoopRefresher{}
	}
	return &CompleteTaskHandler{
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		refresher:    refresher,
		clock:        time.Now,
	}
}

// Handle executes the CompleteTaskCommand.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		if err := t.Complete(h.clock()); err != nil {
			return err
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		taskID := t.ID()
		entry := activity.NewEntry(cmd.UserID, &taskID, activity.ActionTaskCompleted, activity.Metadata{
			Title: t.Title(),
		})
		if err := h.activityRepo.Append(txCtx, entry); err != nil {
			return err
		}

		msgs, err := outbox.FromEvents(t.DomainEvents())
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return err
	}

	h.refresher.RequestRefresh(ctx, cmd.UserID)
	return nil
}
