package dispatch

import (
	"context"

	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/pkg/models"
)

// Store serializes every call to the wrapped TaskStore through a Dispatcher.
type Store struct {
	d    *Dispatcher
	next store.TaskStore
}

var _ store.TaskStore = (*Store)(nil)

func NewStore(d *Dispatcher, next store.TaskStore) *Store {
	return &Store{d: d, next: next}
}

func (s *Store) Create(ctx context.Context, rawText string) (*models.Task, error) {
	var task *models.Task
	err := s.d.Do(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.next.Create(ctx, rawText)
		return err
	})
	if err == nil {
		s.d.logger.Debug("create", "created", task != nil)
	}
	return task, err
}

func (s *Store) ToggleDone(ctx context.Context, id string) (*models.Task, error) {
	var task *models.Task
	err := s.d.Do(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.next.ToggleDone(ctx, id)
		return err
	})
	s.d.logger.Debug("toggle", "id", id, "err", err)
	return task, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.d.Do(ctx, func(ctx context.Context) error {
		return s.next.Delete(ctx, id)
	})
	s.d.logger.Debug("delete", "id", id, "err", err)
	return err
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.d.Do(ctx, s.next.Clear)
	s.d.logger.Debug("clear", "err", err)
	return err
}

func (s *Store) List(ctx context.Context) ([]*models.Task, error) {
	var tasks []*models.Task
	err := s.d.Do(ctx, func(ctx context.Context) error {
		var err error
		tasks, err = s.next.List(ctx)
		return err
	})
	return tasks, err
}
