package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
)

// SQLTaskRepository implements task.Repository on any database.Connection.
type SQLTaskRepository struct {
	conn database.Connection
}

// NewSQLTaskRepository creates a task repository bound to conn.
func NewSQLTaskRepository(conn database.Connection) *SQLTaskRepository {
	return &SQLTaskRepository{conn: conn}
}

// taskRow mirrors the tasks table for scanning.
type taskRow struct {
	id           string
	userID       string
	title        string
	description  string
	category     string
	priority     int
	status       string
	dueDate      *string
	completedAt  *string
	recurrence   *string
	parentTaskID *string
	createdAt    string
	updatedAt    string
	version      int
}

const taskColumns = "id, user_id, title, description, category, priority, status, due_date, completed_at, recurrence, parent_task_id, created_at, updated_at, version"

func (r *SQLTaskRepository) rebind(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts a new task or updates an existing one with optimistic
// locking on the version column.
func (r *SQLTaskRepository) Save(ctx context.Context, t *task.Task) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	if t.Version() == 0 {
		query := r.rebind(`
			INSERT INTO tasks (` + taskColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`)
		_, err := exec.Exec(ctx, query,
			t.ID().String(),
			t.UserID().String(),
			t.Title(),
			t.Description(),
			t.Category(),
			t.Priority(),
			string(t.Status()),
			formatTimePtr(t.DueDate()),
			formatTimePtr(t.CompletedAt()),
			emptyToNil(t.Recurrence()),
			uuidPtrToString(t.ParentTaskID()),
			t.CreatedAt().UTC().Format(time.RFC3339Nano),
			t.UpdatedAt().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		t.SetVersion(1)
		return nil
	}

	query := r.rebind(`
		UPDATE tasks
		SET title = ?, description = ?, category = ?, priority = ?, status = ?,
		    due_date = ?, completed_at = ?, recurrence = ?, parent_task_id = ?,
		    updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`)
	res, err := exec.Exec(ctx, query,
		t.Title(),
		t.Description(),
		t.Category(),
		t.Priority(),
		string(t.Status()),
		formatTimePtr(t.DueDate()),
		formatTimePtr(t.CompletedAt()),
		emptyToNil(t.Recurrence()),
		uuidPtrToString(t.ParentTaskID()),
		t.UpdatedAt().UTC().Format(time.RFC3339Nano),
		t.ID().String(),
		t.Version(),
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %s: concurrent modification", t.ID())
	}
	t.IncrementVersion()
	return nil
}

func (r *SQLTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind("SELECT " + taskColumns + " FROM tasks WHERE id = ?")

	var row taskRow
	err := exec.QueryRow(ctx, query, id.String()).Scan(
		&row.id, &row.userID, &row.title, &row.description, &row.category,
		&row.priority, &row.status, &row.dueDate, &row.completedAt,
		&row.recurrence, &row.parentTaskID, &row.createdAt, &row.updatedAt, &row.version,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return rowToTask(row)
}

func (r *SQLTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.rebind("DELETE FROM tasks WHERE id = ?")
	res, err := exec.Exec(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// Listings order by due date with undated tasks first, the same order
// the recommender and planner consume.
const taskListOrder = " ORDER BY due_date ASC NULLS FIRST, created_at ASC"

func (r *SQLTaskRepository) FindByUserAndStatus(ctx context.Context, userID uuid.UUID, status task.Status) ([]*task.Task, error) {
	query := r.rebind("SELECT " + taskColumns + " FROM tasks WHERE user_id = ? AND status = ?" + taskListOrder)
	return r.queryTasks(ctx, query, userID.String(), string(status))
}

func (r *SQLTaskRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := r.rebind("SELECT " + taskColumns + " FROM tasks WHERE user_id = ?" + taskListOrder)
	return r.queryTasks(ctx, query, userID.String())
}

func (r *SQLTaskRepository) ListActiveUsers(ctx context.Context) ([]uuid.UUID, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, "SELECT DISTINCT user_id FROM tasks ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (r *SQLTaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		var row taskRow
		if err := rows.Scan(
			&row.id, &row.userID, &row.title, &row.description, &row.category,
			&row.priority, &row.status, &row.dueDate, &row.completedAt,
			&row.recurrence, &row.parentTaskID, &row.createdAt, &row.updatedAt, &row.version,
		); err != nil {
			return nil, err
		}
		t, err := rowToTask(row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func rowToTask(row taskRow) (*task.Task, error) {
	id, err := uuid.Parse(row.id)
	if err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	userID, err := uuid.Parse(row.userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, row.updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	dueDate, err := parseTimePtr(row.dueDate)
	if err != nil {
		return nil, fmt.Errorf("parse due_date: %w", err)
	}
	completedAt, err := parseTimePtr(row.completedAt)
	if err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}

	var parentID *uuid.UUID
	if row.parentTaskID != nil {
		parsed, err := uuid.Parse(*row.parentTaskID)
		if err != nil {
			return nil, fmt.Errorf("parse parent_task_id: %w", err)
		}
		parentID = &parsed
	}

	recurrence := ""
	if row.recurrence != nil {
		recurrence = *row.recurrence
	}

	return task.Rehydrate(
		id, userID,
		row.title, row.description, row.category,
		row.priority, task.Status(row.status),
		dueDate, completedAt,
		recurrence, parentID,
		createdAt, updatedAt,
		row.version,
	), nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
