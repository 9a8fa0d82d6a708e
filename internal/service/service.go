// Package service defines the task service consumed by presentation adapters.
package service

import (
	"context"
	"time"

	"todo/internal/task"
)

// Service defines the interface for task operations.
// The CLI commands and the HTTP API talk to tasks only through this interface.
// Commands never import the store or importer directly.
type Service interface {
	// Load refreshes the cached view and returns it sorted by the current order.
	// The first load imports the remote list once; later loads read the store.
	Load(ctx context.Context) []task.Task

	// Add creates a task and refreshes the cached view.
	// Returns task.ErrEmptyTitle or task.ErrDuplicateTitle.
	Add(ctx context.Context, title, details string, start, end *time.Time) (task.Task, error)

	// Update overwrites the task with t.ID and refreshes the cached view.
	// Returns task.ErrEmptyTitle, task.ErrNotFound or task.ErrDuplicateTitle.
	Update(ctx context.Context, t task.Task) error

	// ToggleCompletion flips t.IsCompleted and persists t.
	// The cached view is refreshed from the store whether or not the update
	// succeeded, so a failed toggle leaves the persisted state visible.
	ToggleCompletion(ctx context.Context, t task.Task) error

	// Delete removes the task with t.ID and always refreshes the cached view.
	Delete(ctx context.Context, t task.Task) error

	// SetSortOrder changes the sort order and re-sorts the cached view in place.
	SetSortOrder(order task.SortOrder)

	// SortOrder returns the current sort order.
	SortOrder() task.SortOrder

	// FilteredView projects the cached view through f without mutating it.
	FilteredView(f task.Filter) []task.Task

	// Tasks returns a copy of the cached view.
	Tasks() []task.Task

	// Get returns the task with the given id from the cached view.
	Get(id string) (task.Task, error)

	// State reports the service lifecycle state.
	State() State
}
