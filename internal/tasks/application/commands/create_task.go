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

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	UserID       uuid.UUID
	Title        string
	Description  string
	Category     string
	Priority     int
	DueDate      *time.Time
	Recurrence   string
	ParentTaskID *uuid.UUID
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo     task.Repository
	activityRepo activity.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	refresher    InsightRefresher
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(
	taskRepo task.Repository,
	activityRepo activity.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	refresher InsightRefresher,
) *CreateTaskHandler {
	if refresher == nil {
		refresher = NoopRefresher{}
	}
	return &CreateTaskHandler{
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		refresher:    refresher,
	}
}

// Handle executes the CreateTaskCommand and returns the new task's ID.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (uuid.UUID, error) {
	t, err := task.NewTask(cmd.UserID, cmd.Title, cmd.Priority)
	if err != nil {
		return uuid.Nil, err
	}
	if cmd.Description != "" {
		t.SetDescription(cmd.Description)
	}
	if cmd.Category != "" {
		t.SetCategory(cmd.Category)
	}
	if cmd.DueDate != nil {
		t.SetDueDate(cmd.DueDate)
	}
	if cmd.Recurrence != "" {
		t.SetRecurrence(cmd.Recurrence)
	}
	if cmd.ParentTaskID != nil {
		t.SetParentTaskID(cmd.ParentTaskID)
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		taskID := t.ID()
		entry := activity.NewEntry(cmd.UserID, &taskID, activity.ActionTaskCreated, activity.Metadata{
			Title:    t.Title(),
			Priority: t.Priority(),
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
		return uuid.Nil, err
	}

	h.refresher.RequestRefresh(ctx, cmd.UserID)
	return t.ID(), nil
}
