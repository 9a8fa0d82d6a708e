// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todo/internal/service"
	"todo/internal/task"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []task.Task
	order  task.SortOrder
	state  service.State
	nextID int
	clock  time.Time

	// Loads counts Load calls.
	Loads int

	// Error injection for testing
	AddErr    error
	UpdateErr error
	ToggleErr error
	DeleteErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		order: task.DefaultSortOrder,
		clock: time.Date(2024, 9, 5, 8, 0, 0, 0, time.Local),
	}
}

// AddTask seeds a task and returns it. Each seeded task is one minute newer
// than the previous one.
func (f *FakeService) AddTask(title string, completed bool) task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.newTask(title, "", nil, nil)
	t.IsCompleted = completed
	f.tasks = append(f.tasks, t)
	task.Sort(f.tasks, f.order)
	return t.Clone()
}

func (f *FakeService) newTask(title, details string, start, end *time.Time) task.Task {
	f.nextID++
	f.clock = f.clock.Add(time.Minute)
	return task.Task{
		ID:        fmt.Sprintf("%08x-0000-4000-8000-000000000000", f.nextID),
		Title:     title,
		Details:   details,
		CreatedAt: f.clock,
		StartTime: start,
		EndTime:   end,
	}
}

// Load implements service.Service.
func (f *FakeService) Load(ctx context.Context) []task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Loads++
	f.state = service.Ready
	task.Sort(f.tasks, f.order)
	return task.CloneAll(f.tasks)
}

// Add implements service.Service.
func (f *FakeService) Add(ctx context.Context, title, details string, start, end *time.Time) (task.Task, error) {
	if f.AddErr != nil {
		return task.Task{}, f.AddErr
	}
	if err := task.ValidateTitle(title); err != nil {
		return task.Task{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.titleTaken(title, "") {
		return task.Task{}, task.ErrDuplicateTitle
	}
	t := f.newTask(title, details, start, end)
	f.tasks = append(f.tasks, t)
	task.Sort(f.tasks, f.order)
	return t.Clone(), nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, t task.Task) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if err := task.ValidateTitle(t.Title); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.put(t)
}

// ToggleCompletion implements service.Service.
func (f *FakeService) ToggleCompletion(ctx context.Context, t task.Task) error {
	if f.ToggleErr != nil {
		return f.ToggleErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	t.IsCompleted = !t.IsCompleted
	return f.put(t)
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, t task.Task) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, x := range f.tasks {
		if x.ID == t.ID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return nil
}

// SetSortOrder implements service.Service.
func (f *FakeService) SetSortOrder(order task.SortOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = order
	task.Sort(f.tasks, order)
}

// SortOrder implements service.Service.
func (f *FakeService) SortOrder() task.SortOrder {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.order
}

// FilteredView implements service.Service.
func (f *FakeService) FilteredView(filter task.Filter) []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return task.Apply(f.tasks, filter)
}

// Tasks implements service.Service.
func (f *FakeService) Tasks() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return task.CloneAll(f.tasks)
}

// Get implements service.Service.
func (f *FakeService) Get(id string) (task.Task, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

// State implements service.Service.
func (f *FakeService) State() service.State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *FakeService) put(t task.Task) error {
	idx := -1
	for i, x := range f.tasks {
		if x.ID == t.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return task.ErrNotFound
	}
	if f.titleTaken(t.Title, t.ID) {
		return task.ErrDuplicateTitle
	}
	f.tasks[idx] = t.Clone()
	task.Sort(f.tasks, f.order)
	return nil
}

func (f *FakeService) titleTaken(title, exceptID string) bool {
	for _, x := range f.tasks {
		if x.ID != exceptID && task.SameTitle(x.Title, title) {
			return true
		}
	}
	return false
}
