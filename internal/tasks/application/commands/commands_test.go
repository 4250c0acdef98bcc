package commands

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/activity"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
)

type mockTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*task.Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[uuid.UUID]*task.Task)}
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID()] = t
	return nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) FindByUserAndStatus(ctx context.Context, userID uuid.UUID, status task.Status) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*task.Task
	for _, t := range m.tasks {
		if t.UserID() == userID && t.Status() == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*task.Task
	for _, t := range m.tasks {
		if t.UserID() == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) ListActiveUsers(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

type mockActivityRepo struct {
	mu      sync.Mutex
	entries []*activity.Entry
}

func (m *mockActivityRepo) Append(ctx context.Context, entry *activity.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockActivityRepo) FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*activity.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*activity.Entry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

type mockUnitOfWork struct{}

func (mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (mockUnitOfWork) Commit(ctx context.Context) error                   { return nil }
func (mockUnitOfWork) Rollback(ctx context.Context) error                 { return nil }

type recordingRefresher struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (r *recordingRefresher) RequestRefresh(ctx context.Context, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func TestCreateTaskRecordsActivityAndOutbox(t *testing.T) {
	taskRepo := newMockTaskRepo()
	activityRepo := &mockActivityRepo{}
	outboxRepo := outbox.NewInMemoryRepository()
	refresher := &recordingRefresher{}
	handler := NewCreateTaskHandler(taskRepo, activityRepo, outboxRepo, mockUnitOfWork{}, refresher)

	userID := uuid.New()
	due := time.Now().Add(24 * time.Hour)
	id, err := handler.Handle(context.Background(), CreateTaskCommand{
		UserID:   userID,
		Title:    "Prepare slides",
		Category: "work",
		Priority: 2,
		DueDate:  &due,
	})
	require.NoError(t, err)

	stored, err := taskRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Prepare slides", stored.Title())
	assert.Equal(t, "work", stored.Category())
	assert.Equal(t, 2, stored.Priority())

	require.Len(t, activityRepo.entries, 1)
	assert.Equal(t, activity.ActionTaskCreated, activityRepo.entries[0].Action)
	assert.Equal(t, "Prepare slides", activityRepo.entries[0].Metadata.Title)

	pending, err := outboxRepo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, task.RoutingKeyCreated, pending[0].RoutingKey)

	assert.Equal(t, []uuid.UUID{userID}, refresher.users)
}

func TestCompleteTaskRequiresOwnership(t *testing.T) {
	taskRepo := newMockTaskRepo()
	activityRepo := &mockActivityRepo{}
	outboxRepo := outbox.NewInMemoryRepository()
	handler := NewCompleteTaskHandler(taskRepo, activityRepo, outboxRepo, mockUnitOfWork{}, nil)

	owner := uuid.New()
	tk, err := task.NewTask(owner, "Private task", 3)
	require.NoError(t, err)
	tk.ClearDomainEvents()
	require.NoError(t, taskRepo.Save(context.Background(), tk))

	err = handler.Handle(context.Background(), CompleteTaskCommand{TaskID: tk.ID(), UserID: uuid.New()})
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
	assert.False(t, tk.IsCompleted())
}

func TestCompleteTaskStampsAndRefreshes(t *testing.T) {
	taskRepo := newMockTaskRepo()
	activityRepo := &mockActivityRepo{}
	outboxRepo := outbox.NewInMemoryRepository()
	refresher := &recordingRefresher{}
	handler := NewCompleteTaskHandler(taskRepo, activityRepo, outboxRepo, mockUnitOfWork{}, refresher)

	owner := uuid.New()
	tk, err := task.NewTask(owner, "Finish it", 1)
	require.NoError(t, err)
	tk.ClearDomainEvents()
	require.NoError(t, taskRepo.Save(context.Background(), tk))

	require.NoError(t, handler.Handle(context.Background(), CompleteTaskCommand{TaskID: tk.ID(), UserID: owner}))

	assert.True(t, tk.IsCompleted())
	require.Len(t, activityRepo.entries, 1)
	assert.Equal(t, activity.ActionTaskCompleted, activityRepo.entries[0].Action)
	assert.Equal(t, []uuid.UUID{owner}, refresher.users)
}

func TestUpdateTaskTriggersRefreshOnlyForSignificantFields(t *testing.T) {
	taskRepo := newMockTaskRepo()
	activityRepo := &mockActivityRepo{}
	outboxRepo := outbox.NewInMemoryRepository()
	refresher := &recordingRefresher{}
	handler := NewUpdateTaskHandler(taskRepo, activityRepo, outboxRepo, mockUnitOfWork{}, refresher)

	owner := uuid.New()
	tk, err := task.NewTask(owner, "Tweak me", 3)
	require.NoError(t, err)
	tk.ClearDomainEvents()
	require.NoError(t, taskRepo.Save(context.Background(), tk))

	desc := "just a description"
	require.NoError(t, handler.Handle(context.Background(), UpdateTaskCommand{
		TaskID:      tk.ID(),
		UserID:      owner,
		Description: &desc,
	}))
	assert.Empty(t, refresher.users)

	priority := 1
	require.NoError(t, handler.Handle(context.Background(), UpdateTaskCommand{
		TaskID:   tk.ID(),
		UserID:   owner,
		Priority: &priority,
	}))
	assert.Equal(t, []uuid.UUID{owner}, refresher.users)
	assert.Equal(t, 1, tk.Priority())
}

func TestDeleteTaskRemovesAndLogs(t *testing.T) {
	taskRepo := newMockTaskRepo()
	activityRepo := &mockActivityRepo{}
	outboxRepo := outbox.NewInMemoryRepository()
	handler := NewDeleteTaskHandler(taskRepo, activityRepo, outboxRepo, mockUnitOfWork{})

	owner := uuid.New()
	tk, err := task.NewTask(owner, "Remove me", 4)
	require.NoError(t, err)
	tk.ClearDomainEvents()
	require.NoError(t, taskRepo.Save(context.Background(), tk))

	require.NoError(t, handler.Handle(context.Background(), DeleteTaskCommand{TaskID: tk.ID(), UserID: owner}))

	_, err = taskRepo.FindByID(context.Background(), tk.ID())
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	require.Len(t, activityRepo.entries, 1)
	assert.Equal(t, activity.ActionTaskDeleted, activityRepo.entries[0].Action)

	pending, err := outboxRepo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, task.RoutingKeyDeleted, pending[0].RoutingKey)
}
