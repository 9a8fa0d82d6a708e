package task

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder selects how the cached view is ordered.
type SortOrder int

const (
	NewestFirst SortOrder = iota
	OldestFirst
	AlphabeticalAZ
	AlphabeticalZA
)

// DefaultSortOrder is the order a fresh service starts with.
const DefaultSortOrder = NewestFirst

var sortOrderNames = map[SortOrder]string{
	NewestFirst:    "newest",
	OldestFirst:    "oldest",
	AlphabeticalAZ: "az",
	AlphabeticalZA: "za",
}

func (o SortOrder) String() string {
	if name, ok := sortOrderNames[o]; ok {
		return name
	}
	return fmt.Sprintf("SortOrder(%d)", int(o))
}

// ParseSortOrder parses the names accepted on the command line and API.
// Empty input yields DefaultSortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultSortOrder, nil
	case "newest", "newest-first":
		return NewestFirst, nil
	case "oldest", "oldest-first":
		return OldestFirst, nil
	case "az", "a-z", "alpha":
		return AlphabeticalAZ, nil
	case "za", "z-a":
		return AlphabeticalZA, nil
	}
	return 0, fmt.Errorf("invalid sort order: %s", s)
}

// Filter selects a subset of the cached view.
type Filter int

const (
	FilterAll Filter = iota
	FilterOpen
	FilterClosed
)

func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "all"
	case FilterOpen:
		return "open"
	case FilterClosed:
		return "closed"
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// ParseFilter parses "all", "open" or "closed". Empty input yields FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "open":
		return FilterOpen, nil
	case "closed", "done":
		return FilterClosed, nil
	}
	return 0, fmt.Errorf("invalid filter: %s", s)
}

// Sort orders tasks in place. Ties keep their relative order.
func Sort(tasks []Task, order SortOrder) {
	var less func(a, b Task) bool
	switch order {
	case OldestFirst:
		less = func(a, b Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case AlphabeticalAZ:
		less = func(a, b Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case AlphabeticalZA:
		less = func(a, b Task) bool { return strings.ToLower(a.Title) > strings.ToLower(b.Title) }
	default:
		less = func(a, b Task) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
}

// Sorted returns a sorted copy of tasks.
func Sorted(tasks []Task, order SortOrder) []Task {
	out := CloneAll(tasks)
	Sort(out, order)
	return out
}

// Apply returns the tasks matching f, preserving order. The input is not modified.
func Apply(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		switch f {
		case FilterOpen:
			if t.IsCompleted {
				continue
			}
		case FilterClosed:
			if !t.IsCompleted {
				continue
			}
		}
		out = append(out, t.Clone())
	}
	return out
}
