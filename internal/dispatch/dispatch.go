// Package dispatch runs intents one at a time on a single goroutine.
//
// Every source of intents (the terminal UI, MCP tool calls) goes through the
// same Dispatcher, so no two mutations of the task list ever interleave.
// An intent must not call Do on its own dispatcher; it would wait on itself.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrClosed = errors.New("dispatcher closed")

// Intent is a unit of work run on the dispatch goroutine.
type Intent func(ctx context.Context) error

type request struct {
	ctx    context.Context
	intent Intent
	done   chan error
}

type Dispatcher struct {
	queue     chan request
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Dispatcher{
		queue:  make(chan request),
		quit:   make(chan struct{}),
		logger: logger,
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		case req := <-d.queue:
			req.done <- d.run(req)
		}
	}
}

func (d *Dispatcher) run(req request) (err error) {
	if err := req.ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("intent panicked", "panic", r)
			err = fmt.Errorf("intent panicked: %v", r)
		}
	}()
	return req.intent(req.ctx)
}

// Do runs intent on the dispatch goroutine and waits for it to finish.
// If ctx ends before the intent is picked up, the intent never runs.
func (d *Dispatcher) Do(ctx context.Context, intent Intent) error {
	req := request{ctx: ctx, intent: intent, done: make(chan error, 1)}

	select {
	case <-d.quit:
		return ErrClosed
	default:
	}

	select {
	case d.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quit:
		return ErrClosed
	}
	return <-req.done
}

// Close stops the dispatch goroutine after the running intent, if any,
// completes. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.quit)
	})
	d.wg.Wait()
}
