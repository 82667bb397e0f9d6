package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/pkg/models"
)

var _ store.TaskStore = (*DB)(nil)

const taskColumns = `id, text, done, created_at`

// newTaskID is swapped in tests to force id collisions.
var newTaskID = func() string { return uuid.New().String() }

// Create appends a task with the normalized text. Blank text is a no-op and
// returns (nil, nil).
func (db *DB) Create(ctx context.Context, rawText string) (*models.Task, error) {
	text := store.Normalize(rawText)
	if text == "" {
		return nil, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := reserveTaskID(ctx, tx)
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		ID:        id,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	query := `INSERT INTO tasks (id, text, done, created_at) VALUES (?, ?, 0, ?)`
	if _, err := tx.ExecContext(ctx, query, t.ID, t.Text, t.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task: %w", err)
	}

	db.notify(ctx)
	return t, nil
}

// reserveTaskID records a fresh id in issued_ids, retrying if the generator
// ever returns one that was handed out before.
func reserveTaskID(ctx context.Context, exec executor) (string, error) {
	for i := 0; i < 8; i++ {
		id := newTaskID()
		res, err := exec.ExecContext(ctx, `INSERT OR IGNORE INTO issued_ids (id) VALUES (?)`, id)
		if err != nil {
			return "", fmt.Errorf("failed to reserve task id: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 1 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to allocate unused task id")
}

// ToggleDone flips the done flag and returns the updated task.
func (db *DB) ToggleDone(ctx context.Context, id string) (*models.Task, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE tasks SET done = 1 - done WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit toggle: %w", err)
	}

	db.notify(ctx)
	return t, nil
}

// Delete deletes a task by its ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	db.notify(ctx)
	return nil
}

// Clear deletes every task. Issued ids are kept.
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	db.notify(ctx)
	return nil
}

// List returns all tasks in insertion order.
func (db *DB) List(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY seq ASC`
	return db.queryTasks(ctx, query)
}

// queryTasks is a helper to execute a query that returns a list of tasks.
func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	var done int
	if err := s.Scan(&t.ID, &t.Text, &done, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Done = done == 1
	return t, nil
}
