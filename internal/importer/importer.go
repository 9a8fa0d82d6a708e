// Package importer seeds the task store once from a remote task list.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"todo/internal/task"
)

const (
	// DefaultTimeout bounds a single remote fetch.
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrNetwork classifies transport failures and non-2xx responses.
	ErrNetwork = errors.New("network error")

	// ErrDecode classifies malformed payloads.
	ErrDecode = errors.New("decode error")

	// ErrStore classifies a failed write of the mapped tasks.
	ErrStore = errors.New("store error")
)

// RemoteTask is one entry of a remote list.
type RemoteTask struct {
	ExternalID string
	Text       string
	Completed  bool
}

// Source fetches a remote task list.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Fetch issues a single request for the remote list.
	Fetch(ctx context.Context) ([]RemoteTask, error)
}

// Seeder is the part of the store the importer writes through.
type Seeder interface {
	BulkInsertIfAbsent(ctx context.Context, tasks []task.Task) (int, error)
}

// Importer maps a remote list to local tasks and seeds the store with them.
type Importer struct {
	source  Source
	seeder  Seeder
	timeout time.Duration
	logger  *log.Logger
	now     func() time.Time
}

// New creates an Importer. A zero timeout uses DefaultTimeout; a nil logger discards.
func New(source Source, seeder Seeder, timeout time.Duration, logger *log.Logger) *Importer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Importer{
		source:  source,
		seeder:  seeder,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the clock used for createdAt (for testing).
func (i *Importer) SetClock(now func() time.Time) {
	i.now = now
}

// ImportOnce fetches the remote list, maps it to local tasks and inserts
// those whose titles are not taken yet.
//
// It returns the mapped tasks, which are not necessarily all persisted.
// On a fetch, decode or store failure it returns an empty slice and the
// classified error, so callers can leave the import pending and try again.
func (i *Importer) ImportOnce(ctx context.Context) ([]task.Task, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	remote, err := i.source.Fetch(fetchCtx)
	if err != nil {
		i.logger.Printf("warning: import from %s failed: %v", i.source.Name(), err)
		return []task.Task{}, err
	}

	tasks := i.mapTasks(remote)

	n, err := i.seeder.BulkInsertIfAbsent(ctx, tasks)
	if err != nil {
		i.logger.Printf("warning: failed to store imported tasks: %v", err)
		return []task.Task{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	i.logger.Printf("imported %d of %d tasks from %s", n, len(tasks), i.source.Name())
	return tasks, nil
}

func (i *Importer) mapTasks(remote []RemoteTask) []task.Task {
	now := i.now().UTC()
	tasks := make([]task.Task, 0, len(remote))
	for _, r := range remote {
		if err := task.ValidateTitle(r.Text); err != nil {
			i.logger.Printf("warning: skipping remote task %s: %v", r.ExternalID, err)
			continue
		}
		tasks = append(tasks, task.Task{
			ID:          uuid.NewString(),
			Title:       r.Text,
			CreatedAt:   now,
			IsCompleted: r.Completed,
		})
	}
	return tasks
}
