// Package store provides durable keyed storage for tasks and settings.
//
// Implementations serialize mutations behind a single writer lock while
// reads share a reader lock, so a reader never observes a partial write.
package store

import (
	"context"
	"io"
	"log"
	"time"

	"todo/internal/task"
)

// Store is the task record store.
type Store interface {
	// ListAll returns every task. Read failures are logged and yield an empty slice.
	ListAll(ctx context.Context) []task.Task

	// Get returns the task with the given id or task.ErrNotFound.
	Get(ctx context.Context, id string) (task.Task, error)

	// Insert creates a task, assigning its id and creation time.
	// Returns task.ErrDuplicateTitle if any task already has the title.
	Insert(ctx context.Context, title, details string, start, end *time.Time) (task.Task, error)

	// Update overwrites the mutable fields of the task with t.ID.
	// Returns task.ErrNotFound or task.ErrDuplicateTitle.
	Update(ctx context.Context, t task.Task) error

	// Delete removes the task with the given id. A missing id is logged, not an error.
	Delete(ctx context.Context, id string) error

	// BulkInsertIfAbsent inserts each task whose title is not yet taken and
	// returns how many were inserted.
	BulkInsertIfAbsent(ctx context.Context, tasks []task.Task) (int, error)

	Close() error
}

// Settings is a small persistent key/value store for process-wide flags.
type Settings interface {
	Bool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// Option configures a store.
type Option func(*options)

type options struct {
	logger *log.Logger
	now    func() time.Time
}

func defaultOptions() options {
	return options{
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
	}
}

// WithLogger sets the logger used for soft failures.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
