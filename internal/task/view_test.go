package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/task"
)

func titles(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestSort_CreatedAt(t *testing.T) {
	base := time.Date(2024, 9, 5, 10, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "1", Title: "first", CreatedAt: base},
		{ID: "2", Title: "second", CreatedAt: base.Add(10 * time.Second)},
	}

	assert.Equal(t, []string{"second", "first"}, titles(task.Sorted(tasks, task.NewestFirst)))
	assert.Equal(t, []string{"first", "second"}, titles(task.Sorted(tasks, task.OldestFirst)))
}

func TestSort_AlphabeticalIgnoresCase(t *testing.T) {
	tasks := []task.Task{
		{Title: "banana"},
		{Title: "Apple"},
		{Title: "cherry"},
	}

	assert.Equal(t, []string{"Apple", "banana", "cherry"}, titles(task.Sorted(tasks, task.AlphabeticalAZ)))
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, titles(task.Sorted(tasks, task.AlphabeticalZA)))
}

func TestSorted_DoesNotModifyInput(t *testing.T) {
	tasks := []task.Task{{Title: "b"}, {Title: "a"}}
	_ = task.Sorted(tasks, task.AlphabeticalAZ)
	assert.Equal(t, []string{"b", "a"}, titles(tasks))
}

func TestApply_PartitionsAll(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "a", IsCompleted: false},
		{ID: "2", Title: "b", IsCompleted: true},
		{ID: "3", Title: "c", IsCompleted: false},
		{ID: "4", Title: "d", IsCompleted: true},
	}

	all := task.Apply(tasks, task.FilterAll)
	open := task.Apply(tasks, task.FilterOpen)
	closed := task.Apply(tasks, task.FilterClosed)

	assert.Len(t, all, 4)
	assert.Equal(t, []string{"a", "c"}, titles(open))
	assert.Equal(t, []string{"b", "d"}, titles(closed))

	seen := map[string]int{}
	for _, x := range append(open, closed...) {
		seen[x.ID]++
	}
	for _, x := range all {
		assert.Equal(t, 1, seen[x.ID], "task %s must appear in exactly one partition", x.ID)
	}
}

func TestApply_ReturnsCopies(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tasks := []task.Task{{Title: "a", StartTime: &start}}

	out := task.Apply(tasks, task.FilterAll)
	*out[0].StartTime = start.Add(time.Hour)

	assert.Equal(t, start, *tasks[0].StartTime)
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want task.SortOrder
	}{
		{"", task.NewestFirst},
		{"newest", task.NewestFirst},
		{"oldest", task.OldestFirst},
		{"AZ", task.AlphabeticalAZ},
		{"za", task.AlphabeticalZA},
	}
	for _, tt := range tests {
		got, err := task.ParseSortOrder(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := task.ParseSortOrder("sideways")
	assert.EqualError(t, err, "invalid sort order: sideways")
}

func TestParseFilter(t *testing.T) {
	f, err := task.ParseFilter("open")
	require.NoError(t, err)
	assert.Equal(t, task.FilterOpen, f)

	f, err = task.ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, task.FilterAll, f)

	_, err = task.ParseFilter("pending")
	assert.Error(t, err)
}

func TestValidateTitle(t *testing.T) {
	assert.ErrorIs(t, task.ValidateTitle("   "), task.ErrEmptyTitle)
	assert.NoError(t, task.ValidateTitle("Buy milk"))
	assert.False(t, task.SameTitle("Buy milk", "buy milk"))
}
