package task

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskDefaults(t *testing.T) {
	userID := uuid.New()

	tk, err := NewTask(userID, "Write report", 0)
	require.NoError(t, err)

	assert.Equal(t, userID, tk.UserID())
	assert.Equal(t, "Write report", tk.Title())
	assert.Equal(t, DefaultPriority, tk.Priority())
	assert.Equal(t, StatusPending, tk.Status())
	assert.Nil(t, tk.CompletedAt())

	events := tk.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, RoutingKeyCreated, events[0].RoutingKey())
}

func TestNewTaskRejectsEmptyTitle(t *testing.T) {
	_, err := NewTask(uuid.New(), "   ", 2)
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestCompleteStampsCompletedAt(t *testing.T) {
	tk, err := NewTask(uuid.New(), "Ship release", 1)
	require.NoError(t, err)
	tk.ClearDomainEvents()

	at := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	require.NoError(t, tk.Complete(at))

	assert.Equal(t, StatusCompleted, tk.Status())
	require.NotNil(t, tk.CompletedAt())
	assert.Equal(t, at, *tk.CompletedAt())

	events := tk.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, RoutingKeyCompleted, events[0].RoutingKey())
}

func TestCompleteTwiceFails(t *testing.T) {
	tk, err := NewTask(uuid.New(), "One shot", 3)
	require.NoError(t, err)

	require.NoError(t, tk.Complete(time.Now()))
	assert.ErrorIs(t, tk.Complete(time.Now()), ErrTaskAlreadyComplete)
}

func TestRehydrateDoesNotEmitEvents(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()
	due := now.Add(48 * time.Hour)

	tk := Rehydrate(id, userID, "Review PRs", "", "work", 2, StatusPending, &due, nil, "", nil, now, now, 3)

	assert.Equal(t, id, tk.ID())
	assert.Equal(t, 3, tk.Version())
	assert.Empty(t, tk.DomainEvents())
	require.NotNil(t, tk.DueDate())
	assert.Equal(t, due, *tk.DueDate())
}
