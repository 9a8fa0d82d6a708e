package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"todo/internal/task"
)

// MemoryStore is an in-memory Store and Settings.
type MemoryStore struct {
	mu       sync.RWMutex
	tasks    map[string]task.Task
	order    []string // insertion order, for stable listing
	settings map[string]bool
	opts     options
}

// NewMemory creates an empty MemoryStore.
func NewMemory(opts ...Option) *MemoryStore {
	return &MemoryStore{
		tasks:    make(map[string]task.Task),
		settings: make(map[string]bool),
		opts:     applyOptions(opts),
	}
}

func (m *MemoryStore) ListAll(ctx context.Context) []task.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]task.Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tasks[id].Clone())
	}
	return out
}

func (m *MemoryStore) Get(ctx context.Context, id string) (task.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t.Clone(), nil
}

func (m *MemoryStore) Insert(ctx context.Context, title, details string, start, end *time.Time) (task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.titleTaken(title, "") {
		return task.Task{}, task.ErrDuplicateTitle
	}

	t := task.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Details:   details,
		CreatedAt: m.opts.now().UTC(),
		StartTime: start,
		EndTime:   end,
	}
	t = t.Clone()
	m.put(t)
	return t.Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, t task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.tasks[t.ID]
	if !ok {
		return task.ErrNotFound
	}
	if m.titleTaken(t.Title, t.ID) {
		return task.ErrDuplicateTitle
	}

	cur.Title = t.Title
	cur.Details = t.Details
	cur.StartTime = t.StartTime
	cur.EndTime = t.EndTime
	cur.IsCompleted = t.IsCompleted
	m.tasks[t.ID] = cur.Clone()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		m.opts.logger.Printf("warning: delete of unknown task %s ignored", id)
		return nil
	}
	delete(m.tasks, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) BulkInsertIfAbsent(ctx context.Context, tasks []task.Task) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, t := range tasks {
		if m.titleTaken(t.Title, "") {
			continue
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, exists := m.tasks[t.ID]; exists {
			continue
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = m.opts.now().UTC()
		}
		m.put(t.Clone())
		inserted++
	}
	return inserted, nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Bool(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[key], nil
}

func (m *MemoryStore) SetBool(ctx context.Context, key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// titleTaken must be called with mu held.
func (m *MemoryStore) titleTaken(title, exceptID string) bool {
	for id, t := range m.tasks {
		if id != exceptID && task.SameTitle(t.Title, title) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) put(t task.Task) {
	m.tasks[t.ID] = t
	m.order = append(m.order, t.ID)
}
