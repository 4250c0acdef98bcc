package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/activity"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
	sharedApplication "github.com/felixgeelhaar/taskwise/internal/shared/application"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/outbox"
)

// DeleteTaskCommand contains the data needed to delete a task.
type DeleteTaskCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo     task.Repository
	activityRepo activity.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(
	taskRepo task.Repository,
	activityRepo activity.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *DeleteTaskHandler {
	return &DeleteTaskHandler{
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the DeleteTaskCommand.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		t.RecordDeleted()

		if err := h.taskRepo.Delete(txCtx, cmd.TaskID); err != nil {
			return err
		}

		taskID := t.ID()
		entry := activity.NewEntry(cmd.UserID, &taskID, activity.ActionTaskDeleted, activity.Metadata{
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
}
