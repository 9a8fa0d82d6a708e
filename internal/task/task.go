// Package task defines the task data model and its pure projections.
package task

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrDuplicateTitle is returned when another task already has the title.
	ErrDuplicateTitle = errors.New("duplicate title")

	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")

	// ErrEmptyTitle is returned when a title is empty or whitespace.
	ErrEmptyTitle = errors.New("title required")

	// ErrStorage wraps read/write failures of the underlying store.
	ErrStorage = errors.New("storage error")
)

// Task is a titled, optionally time-boxed unit of work.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Details     string     `json:"details" yaml:"details"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	StartTime   *time.Time `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty" yaml:"endTime,omitempty"`
	IsCompleted bool       `json:"isCompleted" yaml:"isCompleted"`
}

// ValidateTitle rejects empty or whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// SameTitle reports whether two titles collide under the uniqueness rule.
// Comparison is exact and case-sensitive.
func SameTitle(a, b string) bool {
	return a == b
}

// Clone returns a copy of t that shares no pointers with it.
func (t Task) Clone() Task {
	c := t
	if t.StartTime != nil {
		v := *t.StartTime
		c.StartTime = &v
	}
	if t.EndTime != nil {
		v := *t.EndTime
		c.EndTime = &v
	}
	return c
}

// CloneAll copies a slice of tasks. A nil input yields an empty slice.
func CloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
