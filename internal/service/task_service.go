package service

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"todo/internal/store"
	"todo/internal/task"
)

// Importer seeds the store from a remote list.
type Importer interface {
	ImportOnce(ctx context.Context) ([]task.Task, error)
}

// Option configures a TaskService.
type Option func(*TaskService)

// WithLogger sets the logger used for soft failures.
func WithLogger(l *log.Logger) Option {
	return func(s *TaskService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSortOrder sets the initial sort order.
func WithSortOrder(order task.SortOrder) Option {
	return func(s *TaskService) {
		s.order = order
	}
}

// TaskService implements Service over a Store, an optional Importer and the
// persisted bootstrap flag.
//
// Store mutations complete before the cached view changes. Loads are
// serialized so the one-time import runs at most once per process.
type TaskService struct {
	store     store.Store
	importer  Importer
	bootstrap *BootstrapState
	logger    *log.Logger

	loadMu sync.Mutex

	mu    sync.RWMutex
	state State
	order task.SortOrder
	view  []task.Task
}

var _ Service = (*TaskService)(nil)

// New creates a TaskService. A nil importer or bootstrap disables the
// one-time import and every load reads the store.
func New(st store.Store, imp Importer, bootstrap *BootstrapState, opts ...Option) *TaskService {
	s := &TaskService{
		store:     st,
		importer:  imp,
		bootstrap: bootstrap,
		logger:    log.New(io.Discard, "", 0),
		order:     task.DefaultSortOrder,
		view:      []task.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) Load(ctx context.Context) []task.Task {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.Lock()
	s.state = Loading
	s.mu.Unlock()

	tasks := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	task.Sort(tasks, s.order)
	s.view = tasks
	s.state = Ready
	return task.CloneAll(s.view)
}

// fetch returns the tasks for a load: the imported set on the first
// successful bootstrap, the store contents otherwise.
func (s *TaskService) fetch(ctx context.Context) []task.Task {
	if s.importer == nil || s.bootstrap == nil {
		return s.store.ListAll(ctx)
	}

	done, err := s.bootstrap.Done(ctx)
	if err != nil {
		s.logger.Printf("warning: failed to read bootstrap flag, skipping import: %v", err)
		return s.store.ListAll(ctx)
	}
	if done {
		return s.store.ListAll(ctx)
	}

	imported, err := s.importer.ImportOnce(ctx)
	if err != nil {
		// Flag stays unset so the next load retries.
		s.logger.Printf("warning: remote import failed: %v", err)
		return s.store.ListAll(ctx)
	}
	if err := s.bootstrap.MarkDone(ctx); err != nil {
		s.logger.Printf("warning: failed to persist bootstrap flag: %v", err)
	}
	return task.CloneAll(imported)
}

func (s *TaskService) Add(ctx context.Context, title, details string, start, end *time.Time) (task.Task, error) {
	if err := task.ValidateTitle(title); err != nil {
		return task.Task{}, err
	}

	created, err := s.store.Insert(ctx, title, details, start, end)
	if err != nil {
		return task.Task{}, err
	}

	s.Load(ctx)
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, t task.Task) error {
	if err := task.ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := s.store.Update(ctx, t); err != nil {
		return err
	}

	s.Load(ctx)
	return nil
}

func (s *TaskService) ToggleCompletion(ctx context.Context, t task.Task) error {
	t.IsCompleted = !t.IsCompleted
	err := s.store.Update(ctx, t)
	if err != nil {
		s.logger.Printf("warning: failed to toggle completion of %s: %v", t.ID, err)
	}

	s.Load(ctx)
	return err
}

func (s *TaskService) Delete(ctx context.Context, t task.Task) error {
	err := s.store.Delete(ctx, t.ID)
	if err != nil {
		s.logger.Printf("warning: failed to delete %s: %v", t.ID, err)
	}

	s.Load(ctx)
	return err
}

func (s *TaskService) SetSortOrder(order task.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = order
	task.Sort(s.view, order)
}

func (s *TaskService) SortOrder() task.SortOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order
}

func (s *TaskService) FilteredView(f task.Filter) []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return task.Apply(s.view, f)
}

func (s *TaskService) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return task.CloneAll(s.view)
}

func (s *TaskService) Get(id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.view {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (s *TaskService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Close closes the underlying store.
func (s *TaskService) Close() error {
	return s.store.Close()
}
