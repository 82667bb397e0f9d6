// Package binder projects the task store onto a list of rows and turns user
// intents into store calls.
//
// A Binder is driven from one goroutine (the UI update loop). Resync loads
// whatever the store already holds.
package binder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/pkg/models"
)

// ClearAllPrompt is the question asked before every task is deleted.
const ClearAllPrompt = "Do you want to delete all tasks?"

// ErrGateOpen is returned for any intent received while the clear-all
// confirmation is outstanding. The intent is not applied.
var ErrGateOpen = errors.New("confirmation pending")

// Row is the rendered view of one task.
type Row struct {
	ID   string
	Text string
	Done bool
}

func rowFromTask(t *models.Task) Row {
	return Row{ID: t.ID, Text: t.Text, Done: t.Done}
}

func (r Row) State() models.RowState {
	if r.Done {
		return models.RowStateDone
	}
	return models.RowStateActive
}

type Binder struct {
	store    store.TaskStore
	rows     []Row
	index    map[string]int
	gateOpen bool
	logger   *slog.Logger
}

func New(s store.TaskStore, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Binder{
		store:  s,
		index:  make(map[string]int),
		logger: logger,
	}
}

// Resync rebuilds every row from the store.
func (b *Binder) Resync(ctx context.Context) error {
	tasks, err := b.store.List(ctx)
	if err != nil {
		return err
	}
	b.rows = b.rows[:0]
	b.index = make(map[string]int, len(tasks))
	for _, t := range tasks {
		b.appendRow(rowFromTask(t))
	}
	return nil
}

// Rows returns the rows in display order.
func (b *Binder) Rows() []Row {
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

func (b *Binder) Row(id string) (Row, bool) {
	i, ok := b.index[id]
	if !ok {
		return Row{}, false
	}
	return b.rows[i], true
}

func (b *Binder) Len() int {
	return len(b.rows)
}

// Counts returns the number of rows and how many of them are done.
func (b *Binder) Counts() (total, done int) {
	for _, r := range b.rows {
		if r.Done {
			done++
		}
	}
	return len(b.rows), done
}

// GateOpen reports whether a clear-all confirmation is outstanding.
func (b *Binder) GateOpen() bool {
	return b.gateOpen
}

// OnSubmit creates a task from the input field contents. It reports false
// when the text was blank; nothing is rendered and the field is left as is.
func (b *Binder) OnSubmit(ctx context.Context, rawText string) (Row, bool, error) {
	if b.gateOpen {
		return Row{}, false, ErrGateOpen
	}
	t, err := b.store.Create(ctx, rawText)
	if err != nil {
		return Row{}, false, err
	}
	if t == nil {
		return Row{}, false, nil
	}
	row := rowFromTask(t)
	b.appendRow(row)
	b.logger.Debug("row added", "id", row.ID)
	return row, true, nil
}

// OnToggle flips a task between active and done and restyles its row.
// A task that no longer exists is a no-op: its stale row, if any, is dropped
// and false is returned.
func (b *Binder) OnToggle(ctx context.Context, id string) (Row, bool, error) {
	if b.gateOpen {
		return Row{}, false, ErrGateOpen
	}
	t, err := b.store.ToggleDone(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		b.dropStale(id)
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, err
	}

	row := rowFromTask(t)
	if i, ok := b.index[id]; ok {
		b.rows[i] = row
	} else {
		// changed elsewhere and not yet resynced
		b.appendRow(row)
	}
	return row, true, nil
}

// OnDelete removes a task and its row. A task that no longer exists is a
// no-op reported as false.
func (b *Binder) OnDelete(ctx context.Context, id string) (bool, error) {
	if b.gateOpen {
		return false, ErrGateOpen
	}
	err := b.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		b.dropStale(id)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	b.removeRow(id)
	b.logger.Debug("row removed", "id", id)
	return true, nil
}

// RequestClearAll opens the confirmation gate and returns the question to
// show. Until ResolveClearAll is called every other intent is refused.
func (b *Binder) RequestClearAll() string {
	b.gateOpen = true
	return ClearAllPrompt
}

// ResolveClearAll closes the confirmation gate. Only an affirmative answer
// clears the store and the rows; it reports whether that happened.
func (b *Binder) ResolveClearAll(ctx context.Context, confirmed bool) (bool, error) {
	if !b.gateOpen {
		return false, nil
	}
	b.gateOpen = false
	if !confirmed {
		b.logger.Debug("clear all declined")
		return false, nil
	}
	if err := b.store.Clear(ctx); err != nil {
		return false, err
	}
	b.rows = b.rows[:0]
	b.index = make(map[string]int)
	b.logger.Debug("clear all confirmed")
	return true, nil
}

// OnClearAll runs the whole confirmation flow with a blocking confirm func.
func (b *Binder) OnClearAll(ctx context.Context, confirm func(prompt string) bool) (bool, error) {
	if b.gateOpen {
		return false, ErrGateOpen
	}
	prompt := b.RequestClearAll()
	return b.ResolveClearAll(ctx, confirm(prompt))
}

func (b *Binder) appendRow(row Row) {
	b.index[row.ID] = len(b.rows)
	b.rows = append(b.rows, row)
}

func (b *Binder) removeRow(id string) {
	i, ok := b.index[id]
	if !ok {
		return
	}
	b.rows = append(b.rows[:i], b.rows[i+1:]...)
	delete(b.index, id)
	for j := i; j < len(b.rows); j++ {
		b.index[b.rows[j].ID] = j
	}
}

func (b *Binder) dropStale(id string) {
	if _, ok := b.index[id]; ok {
		b.logger.Warn("dropping stale row", "id", id)
		b.removeRow(id)
	}
}
