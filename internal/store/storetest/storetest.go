// Package storetest holds the behavior every TaskStore implementation must
// satisfy, shared by the backend test suites.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/pkg/models"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) store.TaskStore

func Run(t *testing.T, newStore Factory) {
	t.Run("BlankCreateIsNoop", func(t *testing.T) { testBlankCreate(t, newStore(t)) })
	t.Run("CreateAppends", func(t *testing.T) { testCreate(t, newStore(t)) })
	t.Run("CreateTrims", func(t *testing.T) { testCreateTrims(t, newStore(t)) })
	t.Run("ToggleIsInvolution", func(t *testing.T) { testToggle(t, newStore(t)) })
	t.Run("DeletedIDNotFound", func(t *testing.T) { testDeleteNotFound(t, newStore(t)) })
	t.Run("InsertionOrder", func(t *testing.T) { testOrder(t, newStore(t)) })
	t.Run("ClearThenCreate", func(t *testing.T) { testClear(t, newStore(t)) })
	t.Run("UniqueIDs", func(t *testing.T) { testUniqueIDs(t, newStore(t)) })
	t.Run("ListReturnsCopies", func(t *testing.T) { testListCopies(t, newStore(t)) })
}

func mustCreate(t *testing.T, s store.TaskStore, text string) *models.Task {
	t.Helper()
	task, err := s.Create(context.Background(), text)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", text, err)
	}
	if task == nil {
		t.Fatalf("Create(%q) returned no task", text)
	}
	return task
}

func mustList(t *testing.T, s store.TaskStore) []*models.Task {
	t.Helper()
	tasks, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	return tasks
}

func ids(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func testBlankCreate(t *testing.T, s store.TaskStore) {
	mustCreate(t, s, "existing")

	for _, raw := range []string{"", "   ", "\n\t  \n"} {
		task, err := s.Create(context.Background(), raw)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", raw, err)
		}
		if task != nil {
			t.Errorf("Create(%q) expected no task, got %+v", raw, task)
		}
	}

	if n := len(mustList(t, s)); n != 1 {
		t.Errorf("expected list length 1, got %d", n)
	}
}

func testCreate(t *testing.T, s store.TaskStore) {
	task := mustCreate(t, s, "Buy milk")
	if task.Text != "Buy milk" {
		t.Errorf("expected text %q, got %q", "Buy milk", task.Text)
	}
	if task.Done {
		t.Errorf("expected new task to be active")
	}
	if task.ID == "" {
		t.Errorf("expected id to be assigned")
	}

	tasks := mustList(t, s)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].ID != task.ID {
		t.Errorf("expected listed id %s, got %s", task.ID, tasks[0].ID)
	}
}

func testCreateTrims(t *testing.T, s store.TaskStore) {
	task := mustCreate(t, s, "  trim me  ")
	if task.Text != "trim me" {
		t.Errorf("expected %q, got %q", "trim me", task.Text)
	}
	if got := mustList(t, s)[0].Text; got != "trim me" {
		t.Errorf("expected stored %q, got %q", "trim me", got)
	}
}

func testToggle(t *testing.T, s store.TaskStore) {
	ctx := context.Background()
	task := mustCreate(t, s, "toggle me")

	first, err := s.ToggleDone(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleDone failed: %v", err)
	}
	if !first.Done {
		t.Errorf("expected done after first toggle")
	}

	second, err := s.ToggleDone(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleDone failed: %v", err)
	}
	if second.Done != task.Done {
		t.Errorf("expected done=%v after two toggles, got %v", task.Done, second.Done)
	}
	if second.Text != task.Text {
		t.Errorf("toggle must not change text: %q -> %q", task.Text, second.Text)
	}
}

func testDeleteNotFound(t *testing.T, s store.TaskStore) {
	ctx := context.Background()
	keep := mustCreate(t, s, "keep")
	gone := mustCreate(t, s, "gone")

	if err := s.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := s.ToggleDone(ctx, gone.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound from ToggleDone, got %v", err)
	}
	if err := s.Delete(ctx, gone.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound from second Delete, got %v", err)
	}
	if _, err := s.ToggleDone(ctx, "never-issued"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}

	tasks := mustList(t, s)
	if len(tasks) != 1 || tasks[0].ID != keep.ID || tasks[0].Done {
		t.Errorf("expected list to hold only the untouched task, got %+v", tasks)
	}
}

func testOrder(t *testing.T, s store.TaskStore) {
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	c := mustCreate(t, s, "C")

	got := ids(mustList(t, s))
	want := []string{a.ID, b.ID, c.ID}
	if !equal(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}

	if err := s.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got = ids(mustList(t, s))
	want = []string{a.ID, c.ID}
	if !equal(got, want) {
		t.Errorf("expected order %v after delete, got %v", want, got)
	}

	// toggling must not move a task
	if _, err := s.ToggleDone(context.Background(), a.ID); err != nil {
		t.Fatalf("ToggleDone failed: %v", err)
	}
	d := mustCreate(t, s, "D")
	got = ids(mustList(t, s))
	want = []string{a.ID, c.ID, d.ID}
	if !equal(got, want) {
		t.Errorf("expected order %v after toggle+create, got %v", want, got)
	}
}

func testClear(t *testing.T, s store.TaskStore) {
	ctx := context.Background()
	mustCreate(t, s, "one")
	mustCreate(t, s, "two")

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n := len(mustList(t, s)); n != 0 {
		t.Fatalf("expected empty list after clear, got %d", n)
	}

	mustCreate(t, s, "three")
	tasks := mustList(t, s)
	if len(tasks) != 1 || tasks[0].Text != "three" {
		t.Errorf("expected single task after clear+create, got %+v", tasks)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Errorf("Clear on empty list failed: %v", err)
	}
}

func testUniqueIDs(t *testing.T, s store.TaskStore) {
	ctx := context.Background()
	const n = 50

	seen := make(map[string]string)
	var created []*models.Task
	for i := 0; i < n; i++ {
		task := mustCreate(t, s, "task")
		if _, dup := seen[task.ID]; dup {
			t.Fatalf("duplicate id %s", task.ID)
		}
		seen[task.ID] = task.Text
		created = append(created, task)
	}

	for i, task := range created {
		if i%3 == 0 {
			if err := s.Delete(ctx, task.ID); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
		}
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for i := 0; i < n; i++ {
		task := mustCreate(t, s, "fresh")
		if _, reused := seen[task.ID]; reused {
			t.Fatalf("id %s was reused", task.ID)
		}
		seen[task.ID] = task.Text
	}

	remaining := mustList(t, s)
	unique := make(map[string]bool)
	for _, task := range remaining {
		if unique[task.ID] {
			t.Errorf("duplicate id %s in list", task.ID)
		}
		unique[task.ID] = true
		if seen[task.ID] != task.Text {
			t.Errorf("id %s maps to %q, expected %q", task.ID, task.Text, seen[task.ID])
		}
	}
}

func testListCopies(t *testing.T, s store.TaskStore) {
	task := mustCreate(t, s, "original")

	listed := mustList(t, s)
	listed[0].Text = "mutated"
	listed[0].Done = true
	task.Text = "also mutated"

	again := mustList(t, s)
	if again[0].Text != "original" || again[0].Done {
		t.Errorf("store was mutated through a returned record: %+v", again[0])
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
