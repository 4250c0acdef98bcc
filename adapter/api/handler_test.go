package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	insightQueries "github.com/felixgeelhaar/taskwise/internal/insights/application/queries"
	insightsDomain "github.com/felixgeelhaar/taskwise/internal/insights/domain"
	notifCommands "github.com/felixgeelhaar/taskwise/internal/notifications/application/commands"
	notifQueries "github.com/felixgeelhaar/taskwise/internal/notifications/application/queries"
	notifDomain "github.com/felixgeelhaar/taskwise/internal/notifications/domain"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/outbox"
	taskCommands "github.com/felixgeelhaar/taskwise/internal/tasks/application/commands"
	taskQueries "github.com/felixgeelhaar/taskwise/internal/tasks/application/queries"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/activity"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
)

// memTaskRepo is an in-memory implementation of task.Repository.
type memTaskRepo struct {
	tasks map[uuid.UUID]*task.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[uuid.UUID]*task.Task)}
}

func (m *memTaskRepo) Save(_ context.Context, t *task.Task) error {
	m.tasks[t.ID()] = t
	return nil
}

func (m *memTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*task.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}

func (m *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.tasks, id)
	return nil
}

func (m *memTaskRepo) FindByUserAndStatus(_ context.Context, userID uuid.UUID, status task.Status) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range m.tasks {
		if t.UserID() == userID && t.Status() == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTaskRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range m.tasks {
		if t.UserID() == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTaskRepo) ListActiveUsers(_ context.Context) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, t := range m.tasks {
		if !seen[t.UserID()] {
			seen[t.UserID()] = true
			out = append(out, t.UserID())
		}
	}
	return out, nil
}

type memActivityRepo struct {
	entries []*activity.Entry
}

func (m *memActivityRepo) Append(_ context.Context, e *activity.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memActivityRepo) FindRecent(_ context.Context, _ uuid.UUID, limit int) ([]*activity.Entry, error) {
	if len(m.entries) > limit {
		return m.entries[len(m.entries)-limit:], nil
	}
	return m.entries, nil
}

type memInsightRepo struct {
	insights []*insightsDomain.Insight
}

func (m *memInsightRepo) SaveBatch(_ context.Context, ins []*insightsDomain.Insight) error {
	m.insights = append(m.insights, ins...)
	return nil
}

func (m *memInsightRepo) FindRecent(_ context.Context, userID uuid.UUID, limit int) ([]*insightsDomain.Insight, error) {
	var out []*insightsDomain.Insight
	for i := len(m.insights) - 1; i >= 0 && len(out) < limit; i-- {
		if m.insights[i].UserID == userID {
			out = append(out, m.insights[i])
		}
	}
	return out, nil
}

func (m *memInsightRepo) FindLatestByType(_ context.Context, userID uuid.UUID, t insightsDomain.Type) (*insightsDomain.Insight, error) {
	for i := len(m.insights) - 1; i >= 0; i-- {
		if m.insights[i].UserID == userID && m.insights[i].Type == t {
			return m.insights[i], nil
		}
	}
	return nil, nil
}

type memSettingsRepo struct {
	settings map[uuid.UUID]*notifDomain.Settings
}

func (m *memSettingsRepo) Find(_ context.Context, userID uuid.UUID) (*notifDomain.Settings, error) {
	return m.settings[userID], nil
}

func (m *memSettingsRepo) Save(_ context.Context, s *notifDomain.Settings) error {
	m.settings[s.UserID] = s
	return nil
}

// passthroughUOW satisfies the unit of work without transactions.
type passthroughUOW struct{}

func (passthroughUOW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (passthroughUOW) Commit(_ context.Context) error                     { return nil }
func (passthroughUOW) Rollback(_ context.Context) error                   { return nil }

type settingsProvider struct {
	repo *memSettingsRepo
}

func (p *settingsProvider) Settings(ctx context.Context, userID uuid.UUID) (*notifDomain.Settings, error) {
	if s := p.repo.settings[userID]; s != nil {
		return s, nil
	}
	s := notifDomain.DefaultSettings(userID, time.Now())
	p.repo.settings[userID] = s
	return s, nil
}

type testEnv struct {
	server      *httptest.Server
	taskRepo    *memTaskRepo
	insightRepo *memInsightRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
	taskRepo := newMemTaskRepo()
	activityRepo := &memActivityRepo{}
	insightRepo := &memInsightRepo{}
	settingsRepo := &memSettingsRepo{settings: make(map[uuid.UUID]*notifDomain.Settings)}
	outboxRepo := outbox.NewInMemoryRepository()
	uow := passthroughUOW{}
	provider := &settingsProvider{repo: settingsRepo}

	handler := NewHandler(HandlerConfig{
		CreateTask:     taskCommands.NewCreateTaskHandler(taskRepo, activityRepo, outboxRepo, uow, nil),
		UpdateTask:     taskCommands.NewUpdateTaskHandler(taskRepo, activityRepo, outboxRepo, uow, nil),
		CompleteTask:   taskCommands.NewCompleteTaskHandler(taskRepo, activityRepo, outboxRepo, uow, nil),
		DeleteTask:     taskCommands.NewDeleteTaskHandler(taskRepo, activityRepo, outboxRepo, uow),
		ListTasks:      taskQueries.NewListTasksHandler(taskRepo),
		GetTask:        taskQueries.NewGetTaskHandler(taskRepo),
		GetInsights:    insightQueries.NewGetInsightsHandler(insightRepo),
		GetSettings:    notifQueries.NewGetSettingsHandler(provider),
		UpdateSettings: notifCommands.NewUpdateSettingsHandler(provider, settingsRepo, nil, logger),
		Logger:         logger,
	})

	srv := NewServer(DefaultServerConfig(), handler, nil, logger)
	ts := httptest.NewServer(srv.mux)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, taskRepo: taskRepo, insightRepo: insightRepo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreateAndGetTask(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	resp := env.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"user_id":  userID,
		"title":    "Write quarterly report",
		"category": "Work",
		"priority": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]string](t, resp)
	taskID := created["id"]
	require.NotEmpty(t, taskID)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%s?user_id=%s", taskID, userID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decode[taskQueries.TaskDTO](t, resp)
	assert.Equal(t, "Write quarterly report", dto.Title)
	assert.Equal(t, 2, dto.Priority)
	assert.Equal(t, "pending", dto.Status)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"user_id": uuid.New(),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCompleteTaskViaStatusUpdate(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	resp := env.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"user_id": userID,
		"title":   "Review pull request",
	})
	taskID := decode[map[string]string](t, resp)["id"]

	resp = env.do(t, http.MethodPut, "/api/v1/tasks/"+taskID, map[string]any{
		"user_id": userID,
		"status":  "completed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%s?user_id=%s", taskID, userID), nil)
	dto := decode[taskQueries.TaskDTO](t, resp)
	assert.Equal(t, "completed", dto.Status)
	assert.NotNil(t, dto.CompletedAt)
}

func TestTaskOwnershipIsEnforced(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	resp := env.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"user_id": owner,
		"title":   "Private task",
	})
	taskID := decode[map[string]string](t, resp)["id"]

	intruder := uuid.New()
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%s?user_id=%s", taskID, intruder), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	resp := env.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"user_id": userID,
		"title":   "Temporary task",
	})
	taskID := decode[map[string]string](t, resp)["id"]

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%s?user_id=%s", taskID, userID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%s?user_id=%s", taskID, userID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetInsightsReturnsRecent(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	env.insightRepo.insights = append(env.insightRepo.insights, insightsDomain.NewInsight(userID, insightsDomain.CompletionRatePayload{
		CompletionRate: 75.0,
		Message:        "You've completed 75.0% of your tasks, with 50.0% completed on time.",
	}, time.Now()))

	resp := env.do(t, http.MethodGet, "/api/v1/insights?user_id="+userID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[[]map[string]any](t, resp)
	require.Len(t, out, 1)
	assert.Equal(t, "completion_rate", out[0]["insight_type"])
}

func TestSettingsLazyDefaultAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	resp := env.do(t, http.MethodGet, "/api/v1/notifications/settings?user_id="+userID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	settings := decode[notifQueries.SettingsDTO](t, resp)
	assert.True(t, settings.EnablePush)
	assert.Equal(t, notifDomain.FrequencyMedium, settings.Frequency)
	assert.Empty(t, settings.FocusHours)

	resp = env.do(t, http.MethodPut, "/api/v1/notifications/settings", map[string]any{
		"user_id":                userID,
		"enable_push":            false,
		"notification_frequency": "low",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[notifQueries.SettingsDTO](t, resp)
	assert.False(t, updated.EnablePush)
	assert.Equal(t, notifDomain.FrequencyLow, updated.Frequency)
}

func TestUpdateSettingsRejectsBadFrequency(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPut, "/api/v1/notifications/settings", map[string]any{
		"user_id":                uuid.New(),
		"notification_frequency": "hourly",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
