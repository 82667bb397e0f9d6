// Package store defines the task list's source of truth and its in-process
// implementation.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/nick-dorsch/tasklist/pkg/models"
)

// ErrNotFound is returned when a toggle or delete references an id that is
// not in the list.
var ErrNotFound = errors.New("task not found")

// TaskStore owns the ordered task collection.
//
// Create returns (nil, nil) when the text is blank after normalization; the
// caller must treat that as a no-op. Records returned by any method are copies.
type TaskStore interface {
	Create(ctx context.Context, rawText string) (*models.Task, error)
	ToggleDone(ctx context.Context, id string) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	List(ctx context.Context) ([]*models.Task, error)
}

// Normalize strips surrounding whitespace from task text.
func Normalize(rawText string) string {
	return strings.TrimSpace(rawText)
}
