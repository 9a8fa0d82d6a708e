package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/importer"
	"todo/internal/service"
	"todo/internal/store"
	"todo/internal/task"
)

// countingImporter seeds the store with a fixed list and counts calls.
type countingImporter struct {
	st    store.Store
	tasks []task.Task
	err   error
	calls int
}

func (c *countingImporter) ImportOnce(ctx context.Context) ([]task.Task, error) {
	c.calls++
	if c.err != nil {
		return []task.Task{}, c.err
	}
	if _, err := c.st.BulkInsertIfAbsent(ctx, c.tasks); err != nil {
		return nil, err
	}
	return c.tasks, nil
}

// stepClock returns start, start+step, start+2*step, ...
func stepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

func newService(t *testing.T, opts ...store.Option) (*service.TaskService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory(opts...)
	return service.New(st, nil, nil), st
}

func titles(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestAdd_DuplicateTitle(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	_, err := svc.Add(ctx, "Buy milk", "", nil, nil)
	require.NoError(t, err)

	_, err = svc.Add(ctx, "Buy milk", "x", nil, nil)
	assert.ErrorIs(t, err, task.ErrDuplicateTitle)

	list := st.ListAll(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "Buy milk", list[0].Title)
	assert.Equal(t, "", list[0].Details)
	assert.Len(t, svc.Tasks(), 1)
}

func TestAdd_EmptyTitle(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	_, err := svc.Add(ctx, "   ", "", nil, nil)
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
	assert.Empty(t, st.ListAll(ctx))
}

func TestAdd_RefreshesView(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	assert.Equal(t, service.Uninitialized, svc.State())

	created, err := svc.Add(ctx, "Task A", "", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, service.Ready, svc.State())
	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task A", got.Title)
}

func TestSetSortOrder_OldestFirst(t *testing.T) {
	ctx := context.Background()
	T := time.Date(2024, 9, 5, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, store.WithClock(stepClock(T, 10*time.Second)))

	_, err := svc.Add(ctx, "first", "", nil, nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "second", "", nil, nil)
	require.NoError(t, err)

	// Default is newest first.
	assert.Equal(t, []string{"second", "first"}, titles(svc.FilteredView(task.FilterAll)))

	svc.SetSortOrder(task.OldestFirst)
	view := svc.FilteredView(task.FilterAll)
	require.Len(t, view, 2)
	assert.Equal(t, "first", view[0].Title)
	assert.True(t, view[0].CreatedAt.Equal(T))
	assert.Equal(t, task.OldestFirst, svc.SortOrder())
}

func TestSetSortOrder_AlphabeticalIgnoresCase(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for _, title := range []string{"banana", "Apple", "cherry"} {
		_, err := svc.Add(ctx, title, "", nil, nil)
		require.NoError(t, err)
	}

	svc.SetSortOrder(task.AlphabeticalAZ)
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, titles(svc.Tasks()))

	svc.SetSortOrder(task.AlphabeticalZA)
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, titles(svc.Tasks()))

	// The order survives a reload.
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, titles(svc.Load(ctx)))
}

func TestFilteredView_Partition(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for _, title := range []string{"a", "b", "c", "d"} {
		_, err := svc.Add(ctx, title, "", nil, nil)
		require.NoError(t, err)
	}
	for _, x := range svc.Tasks() {
		if x.Title == "b" || x.Title == "d" {
			require.NoError(t, svc.ToggleCompletion(ctx, x))
		}
	}

	all := svc.FilteredView(task.FilterAll)
	open := svc.FilteredView(task.FilterOpen)
	closed := svc.FilteredView(task.FilterClosed)

	assert.Len(t, all, 4)
	assert.Len(t, open, 2)
	assert.Len(t, closed, 2)

	ids := map[string]int{}
	for _, x := range open {
		assert.False(t, x.IsCompleted)
		ids[x.ID]++
	}
	for _, x := range closed {
		assert.True(t, x.IsCompleted)
		ids[x.ID]++
	}
	for _, x := range all {
		assert.Equal(t, 1, ids[x.ID], "task %s", x.Title)
	}
}

func TestFilteredView_DoesNotMutateCache(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.Add(ctx, "Task A", "", nil, nil)
	require.NoError(t, err)

	view := svc.FilteredView(task.FilterAll)
	view[0].Title = "changed"

	assert.Equal(t, "Task A", svc.Tasks()[0].Title)
}

func TestLoad_ImportsOnceThenReadsStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	imp := &countingImporter{
		st:    st,
		tasks: []task.Task{{ID: "remote-1", Title: "Task A", CreatedAt: time.Now()}},
	}
	bootstrap := service.NewBootstrapState(st)
	svc := service.New(st, imp, bootstrap)

	first := svc.Load(ctx)
	require.Len(t, first, 1)
	assert.Equal(t, "Task A", first[0].Title)
	assert.Equal(t, 1, imp.calls)

	list := st.ListAll(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "Task A", list[0].Title)

	done, err := bootstrap.Done(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	second := svc.Load(ctx)
	assert.Equal(t, 1, imp.calls)
	assert.Equal(t, titles(first), titles(second))

	third := svc.Load(ctx)
	assert.Equal(t, 1, imp.calls)
	assert.Equal(t, titles(second), titles(third))
}

func TestLoad_FlagAlreadySetNeverImports(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.SetBool(ctx, service.BootstrapKey, true))
	_, err := st.Insert(ctx, "Local", "", nil, nil)
	require.NoError(t, err)

	imp := &countingImporter{st: st, tasks: []task.Task{{ID: "r", Title: "Remote"}}}
	svc := service.New(st, imp, service.NewBootstrapState(st))

	assert.Equal(t, []string{"Local"}, titles(svc.Load(ctx)))
	assert.Equal(t, []string{"Local"}, titles(svc.Load(ctx)))
	assert.Equal(t, 0, imp.calls)
}

func TestLoad_FailedImportRetriesLater(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	imp := &countingImporter{st: st, err: errors.New("network error")}
	bootstrap := service.NewBootstrapState(st)
	svc := service.New(st, imp, bootstrap)

	assert.Empty(t, svc.Load(ctx))
	assert.Equal(t, service.Ready, svc.State())

	done, err := bootstrap.Done(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	imp.err = nil
	imp.tasks = []task.Task{{ID: "r", Title: "Task A", CreatedAt: time.Now()}}
	assert.Equal(t, []string{"Task A"}, titles(svc.Load(ctx)))
	assert.Equal(t, 2, imp.calls)
}

// flakySeeder fails the first n bulk inserts and then writes through.
type flakySeeder struct {
	*store.MemoryStore
	failures int
}

func (f *flakySeeder) BulkInsertIfAbsent(ctx context.Context, tasks []task.Task) (int, error) {
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("disk full")
	}
	return f.MemoryStore.BulkInsertIfAbsent(ctx, tasks)
}

type staticSource []importer.RemoteTask

func (staticSource) Name() string { return "static" }

func (s staticSource) Fetch(ctx context.Context) ([]importer.RemoteTask, error) {
	return s, nil
}

func TestLoad_StoreFailureLeavesImportPending(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seeder := &flakySeeder{MemoryStore: st, failures: 1}
	imp := importer.New(staticSource{{ExternalID: "1", Text: "Task A"}}, seeder, 0, nil)
	bootstrap := service.NewBootstrapState(st)
	svc := service.New(st, imp, bootstrap)

	assert.Empty(t, svc.Load(ctx))
	done, err := bootstrap.Done(ctx)
	require.NoError(t, err)
	assert.False(t, done, "a failed store write must not mark the import done")

	assert.Equal(t, []string{"Task A"}, titles(svc.Load(ctx)))
	done, err = bootstrap.Done(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, st.ListAll(ctx), 1)
}

func TestLoad_ImportDoesNotDuplicateLocalTitles(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	_, err := st.Insert(ctx, "Task A", "mine", nil, nil)
	require.NoError(t, err)

	imp := &countingImporter{st: st, tasks: []task.Task{{ID: "r", Title: "Task A", CreatedAt: time.Now()}}}
	svc := service.New(st, imp, service.NewBootstrapState(st))
	svc.Load(ctx)

	list := st.ListAll(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Details)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, err := svc.Add(ctx, "Task A", "", nil, nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Task B", "", nil, nil)
	require.NoError(t, err)

	a.Details = "notes"
	require.NoError(t, svc.Update(ctx, a))
	got, err := svc.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes", got.Details)

	a.Title = "Task B"
	assert.ErrorIs(t, svc.Update(ctx, a), task.ErrDuplicateTitle)

	a.Title = ""
	assert.ErrorIs(t, svc.Update(ctx, a), task.ErrEmptyTitle)

	assert.ErrorIs(t, svc.Update(ctx, task.Task{ID: "missing", Title: "x"}), task.ErrNotFound)
}

func TestToggleCompletion_CollisionRevertsToPersistedState(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	a, err := svc.Add(ctx, "Alpha", "", nil, nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Beta", "", nil, nil)
	require.NoError(t, err)

	// The caller holds a copy whose title now collides with another task.
	stale := a
	stale.Title = "Beta"

	err = svc.ToggleCompletion(ctx, stale)
	assert.ErrorIs(t, err, task.ErrDuplicateTitle)

	got, err := svc.Get(a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Equal(t, "Alpha", got.Title)

	persisted, err := st.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, persisted.IsCompleted)
}

func TestToggleCompletion_Flips(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, err := svc.Add(ctx, "Alpha", "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.ToggleCompletion(ctx, a))
	got, _ := svc.Get(a.ID)
	assert.True(t, got.IsCompleted)

	require.NoError(t, svc.ToggleCompletion(ctx, got))
	got, _ = svc.Get(a.ID)
	assert.False(t, got.IsCompleted)
}

func TestDelete_AbsentIDStillRefreshes(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	a, err := svc.Add(ctx, "Alpha", "", nil, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, a))
	assert.Empty(t, svc.Tasks())

	// Another writer adds a task behind the service's back.
	_, err = st.Insert(ctx, "Behind", "", nil, nil)
	require.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, a))
	assert.Equal(t, []string{"Behind"}, titles(svc.Tasks()))

	_, err = svc.Get(a.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
}
