// Package db is the SQLite task store. Every database lives in memory and
// disappears with the process.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	embedsql "github.com/nick-dorsch/tasklist/embed/sql"
	_ "modernc.org/sqlite"
)

const dsn = ":memory:"

type DB struct {
	*sql.DB
	onChangeMu sync.RWMutex
	onChange   func(ctx context.Context)
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SetOnChange registers fn to run after every committed mutation. fn runs
// on the mutating goroutine and must not block.
func (db *DB) SetOnChange(fn func(ctx context.Context)) {
	db.onChangeMu.Lock()
	defer db.onChangeMu.Unlock()
	db.onChange = fn
}

func (db *DB) notify(ctx context.Context) {
	db.onChangeMu.RLock()
	fn := db.onChange
	db.onChangeMu.RUnlock()

	if fn != nil {
		fn(ctx)
	}
}

// Open opens an empty in-memory database with the task schema applied.
func Open(ctx context.Context) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// each connection to :memory: is its own database
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if _, err := conn.ExecContext(ctx, embedsql.Schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{DB: conn}, nil
}
