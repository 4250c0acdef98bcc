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

// UpdateTaskCommand carries partial task changes. Nil pointers leave
// the corresponding field untouched.
type UpdateTaskCommand struct {
	TaskID      uuid.UUID
	UserID      uuid.UUID
	Title       *string
	Description *string
	Category    *string
	Priority    *int
	DueDate     *time.Time
	ClearDue    bool
	Recurrence  *string
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo     task.Repository
	activityRepo activity.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	refresher    InsightRefresher
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(
	taskRepo task.Repository,
	activityRepo activity.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	refresher InsightRefresher,
) *UpdateTaskHandler {
	if refresher == nil {
		refresher = NoopRefresher{}
	}
	return &UpdateTaskHandler{
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		refresher:    refresher,
	}
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) error {
	var changed []string

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		if cmd.Title != nil {
			if err := t.SetTitle(*cmd.Title); err != nil {
				return err
			}
			changed = append(changed, "title")
		}
		if cmd.Description != nil {
			t.SetDescription(*cmd.Description)
			changed = append(changed, "description")
		}
		if cmd.Category != nil {
			t.SetCategory(*cmd.Category)
			changed = append(changed, "category")
		}
		if cmd.Priority != nil {
			t.SetPriority(*cmd.Priority)
			changed = append(changed, "priority")
		}
		if cmd.DueDate != nil || cmd.ClearDue {
			t.SetDueDate(cmd.DueDate)
			changed = append(changed, "due_date")
		}
		if cmd.Recurrence != nil {
			t.SetRecurrence(*cmd.Recurrence)
			changed = append(changed, "recurrence")
		}

		if len(changed) == 0 {
			return nil
		}
		t.RecordUpdated(changed)

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		taskID := t.ID()
		entry := activity.NewEntry(cmd.UserID, &taskID, activity.ActionTaskUpdated, activity.Metadata{
			Fields: changed,
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

	if significantUpdate(changed) {
		h.refresher.RequestRefresh(ctx, cmd.UserID)
	}
	return nil
}

// significantUpdate reports whether the change can shift analytics or
// notification planning.
func significantUpdate(fields []string) bool {
	for _, f := range fields {
		switch f {
		case "priority", "due_date", "category":
			return true
		}
	}
	return false
}
