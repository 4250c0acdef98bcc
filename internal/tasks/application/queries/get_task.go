package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
)

// GetTaskQuery fetches one task by ID, scoped to its owner.
type GetTaskQuery struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	taskRepo task.Repository
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(taskRepo task.Repository) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo}
}

// Handle executes the GetTaskQuery.
func (h *GetTaskHandler) Handle(ctx context.Context, query GetTaskQuery) (TaskDTO, error) {
	t, err := h.taskRepo.FindByID(ctx, query.TaskID)
	if err != nil {
		return TaskDTO{}, err
	}
	if t.UserID() != query.UserID {
		return TaskDTO{}, task.ErrTaskNotFound
	}
	return ToTaskDTO(t), nil
}
