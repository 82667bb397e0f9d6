package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nick-dorsch/tasklist/pkg/models"
)

// Memory is a TaskStore backed by an ordered slice.
type Memory struct {
	mu     sync.RWMutex
	tasks  []*models.Task
	index  map[string]int
	issued map[string]struct{}
	newID  func() string
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		index:  make(map[string]int),
		issued: make(map[string]struct{}),
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

func (m *Memory) Create(ctx context.Context, rawText string) (*models.Task, error) {
	text := Normalize(rawText)
	if text == "" {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.nextID()
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		ID:        id,
		Text:      text,
		CreatedAt: m.now(),
	}
	m.issued[id] = struct{}{}
	m.index[id] = len(m.tasks)
	m.tasks = append(m.tasks, t)
	return t.Clone(), nil
}

// nextID draws ids until one has never been issued by this store.
func (m *Memory) nextID() (string, error) {
	for i := 0; i < 8; i++ {
		id := m.newID()
		if _, used := m.issued[id]; !used {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to allocate unused task id")
}

func (m *Memory) ToggleDone(ctx context.Context, id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t := m.tasks[i]
	t.Done = !t.Done
	return t.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.tasks); j++ {
		m.index[m.tasks[j].ID] = j
	}
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = nil
	m.index = make(map[string]int)
	return nil
}

func (m *Memory) List(ctx context.Context) ([]*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}
