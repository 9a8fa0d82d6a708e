package commands

import (
	"context"
	"fmt"
	"strings"

	"todo/internal/service"
	"todo/internal/task"
)

// referenceView returns the tasks in reference order: all tasks, newest first.
// Positions in this view are stable under the list command's --sort and
// --filter flags.
func referenceView(ctx context.Context, svc service.Service) []task.Task {
	return task.Sorted(svc.Load(ctx), task.NewestFirst)
}

// refNumbers maps task ids to their 1-based reference number.
func refNumbers(view []task.Task) map[string]int {
	nums := make(map[string]int, len(view))
	for i, t := range view {
		nums[t.ID] = i + 1
	}
	return nums
}

// findTask resolves a reference against a freshly loaded reference view.
// An id prefix wins over a position; the position is used only when no id
// matches.
func findTask(ctx context.Context, svc service.Service, ref TaskRef) (task.Task, error) {
	view := referenceView(ctx, svc)

	if ref.IDPrefix != "" {
		var matches []task.Task
		for _, t := range view {
			if strings.HasPrefix(strings.ToLower(t.ID), ref.IDPrefix) {
				matches = append(matches, t)
			}
		}

		switch {
		case len(matches) == 1:
			return matches[0], nil
		case len(matches) > 1:
			return task.Task{}, fmt.Errorf("ambiguous task id: %s", ref.IDPrefix)
		case ref.Num == 0:
			return task.Task{}, fmt.Errorf("%w: %s", task.ErrNotFound, ref.IDPrefix)
		}
	}

	if ref.Num < 1 || ref.Num > len(view) {
		return task.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
	}
	return view[ref.Num-1], nil
}
