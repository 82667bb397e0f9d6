package models

import "time"

type RowState string

const (
	RowStateActive RowState = "active"
	RowStateDone   RowState = "done"
)

type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy that shares nothing with t.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}
