package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	insightQueries "github.com/felixgeelhaar/taskwise/internal/insights/application/queries"
	notifCommands "github.com/felixgeelhaar/taskwise/internal/notifications/application/commands"
	notifQueries "github.com/felixgeelhaar/taskwise/internal/notifications/application/queries"
	notifDomain "github.com/felixgeelhaar/taskwise/internal/notifications/domain"
	taskCommands "github.com/felixgeelhaar/taskwise/internal/tasks/application/commands"
	taskQueries "github.com/felixgeelhaar/taskwise/internal/tasks/application/queries"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
)

// Handler handles all API requests.
type Handler struct {
	createTask     *taskCommands.CreateTaskHandler
	updateTask     *taskCommands.UpdateTaskHandler
	completeTask   *taskCommands.CompleteTaskHandler
	deleteTask     *taskCommands.DeleteTaskHandler
	listTasks      *taskQueries.ListTasksHandler
	getTask        *taskQueries.GetTaskHandler
	getInsights    *insightQueries.GetInsightsHandler
	getSettings    *notifQueries.GetSettingsHandler
	updateSettings *notifCommands.UpdateSettingsHandler
	logger         *slog.Logger
}

// HandlerConfig holds dependencies for the API handler.
type HandlerConfig struct {
	CreateTask     *taskCommands.CreateTaskHandler
	UpdateTask     *taskCommands.UpdateTaskHandler
	CompleteTask   *taskCommands.CompleteTaskHandler
	DeleteTask     *taskCommands.DeleteTaskHandler
	ListTasks      *taskQueries.ListTasksHandler
	GetTask        *taskQueries.GetTaskHandler
	GetInsights    *insightQueries.GetInsightsHandler
	GetSettings    *notifQueries.GetSettingsHandler
	UpdateSettings *notifCommands.UpdateSettingsHandler
	Logger         *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		createTask:     cfg.CreateTask,
		updateTask:     cfg.UpdateTask,
		completeTask:   cfg.CompleteTask,
		deleteTask:     cfg.DeleteTask,
		listTasks:      cfg.ListTasks,
		getTask:        cfg.GetTask,
		getInsights:    cfg.GetInsights,
		getSettings:    cfg.GetSettings,
		updateSettings: cfg.UpdateSettings,
		logger:         cfg.Logger,
	}
}

type createTaskRequest struct {
	UserID       uuid.UUID  `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Priority     int        `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	Recurrence   string     `json:"recurrence"`
	ParentTaskID *uuid.UUID `json:"parent_task_id"`
}

// CreateTask handles POST /api/v1/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	taskID, err := h.createTask.Handle(r.Context(), taskCommands.CreateTaskCommand{
		UserID:       req.UserID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		Recurrence:   req.Recurrence,
		ParentTaskID: req.ParentTaskID,
	})
	if err != nil {
		h.writeCommandError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":      taskID.String(),
		"message": "Task created successfully",
	})
}

// ListTasks handles GET /api/v1/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	tasks, err := h.listTasks.Handle(r.Context(), taskQueries.ListTasksQuery{
		UserID:   userID,
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/tasks/{taskID}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskIDPath(w, r)
	if !ok {
		return
	}

	dto, err := h.getTask.Handle(r.Context(), taskQueries.GetTaskQuery{
		TaskID: taskID,
		UserID: userID,
	})
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

type updateTaskRequest struct {
	UserID      uuid.UUID  `json:"user_id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Priority    *int       `json:"priority"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due"`
	Recurrence  *string    `json:"recurrence"`
}

// UpdateTask handles PUT /api/v1/tasks/{taskID}. Setting status to
// "completed" completes the task; other fields update it in place.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDPath(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	hasFieldChanges := req.Title != nil || req.Description != nil || req.Category != nil ||
		req.Priority != nil || req.DueDate != nil || req.ClearDue || req.Recurrence != nil
	completing := req.Status != nil && *req.Status == string(task.StatusCompleted)

	if !hasFieldChanges && !completing {
		writeError(w, http.StatusBadRequest, "no valid fields to update")
		return
	}

	if hasFieldChanges {
		err := h.updateTask.Handle(r.Context(), taskCommands.UpdateTaskCommand{
			TaskID:      taskID,
			UserID:      req.UserID,
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Priority:    req.Priority,
			DueDate:     req.DueDate,
			ClearDue:    req.ClearDue,
			Recurrence:  req.Recurrence,
		})
		if err != nil {
			h.writeCommandError(w, err)
			return
		}
	}

	if completing {
		err := h.completeTask.Handle(r.Context(), taskCommands.CompleteTaskCommand{
			TaskID: taskID,
			UserID: req.UserID,
		})
		if err != nil {
			h.writeCommandError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task updated successfully"})
}

// DeleteTask handles DELETE /api/v1/tasks/{taskID}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskIDPath(w, r)
	if !ok {
		return
	}

	err := h.deleteTask.Handle(r.Context(), taskCommands.DeleteTaskCommand{
		TaskID: taskID,
		UserID: userID,
	})
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// GetInsights handles GET /api/v1/insights
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	insights, err := h.getInsights.Handle(r.Context(), insightQueries.GetInsightsQuery{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// GetSettings handles GET /api/v1/notifications/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	settings, err := h.getSettings.Handle(r.Context(), userID)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type updateSettingsRequest struct {
	UserID     uuid.UUID                  `json:"user_id"`
	EnablePush *bool                      `json:"enable_push"`
	FocusHours *[]notifDomain.FocusWindow `json:"focus_hours"`
	Frequency  *notifDomain.Frequency     `json:"notification_frequency"`
}

// UpdateSettings handles PUT /api/v1/notifications/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	settings, err := h.updateSettings.Handle(r.Context(), notifCommands.UpdateSettingsCommand{
		UserID:     req.UserID,
		EnablePush: req.EnablePush,
		FocusHours: req.FocusHours,
		Frequency:  req.Frequency,
	})
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifQueries.ToSettingsDTO(settings))
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a UUID")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handler) taskIDPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(r.PathValue("taskID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "task id must be a UUID")
		return uuid.Nil, false
	}
	return taskID, true
}

func (h *Handler) writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found or access denied")
	case errors.Is(err, task.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, "Title and user_id are required")
	case errors.Is(err, task.ErrTaskAlreadyComplete):
		writeError(w, http.StatusConflict, "Task is already completed")
	case errors.Is(err, notifCommands.ErrNoFieldsToUpdate),
		errors.Is(err, notifDomain.ErrInvalidFrequency),
		errors.Is(err, notifDomain.ErrInvalidFocusHours):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
