// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"todo/internal/backend/googletasks"
	"todo/internal/task"
)

const (
	// TimeLayout is the display and input layout for start and end times.
	TimeLayout = "15:04"

	// DateLayout is the display layout for creation dates.
	DateLayout = "2006-01-02 15:04"

	// NoTime is shown for a missing end time.
	NoTime = "N/A"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [ ] {TITLE}" followed by "  (START - END)" when a start
// time is set.
func FormatTask(w io.Writer, num int, t task.Task) {
	mark := " "
	if t.IsCompleted {
		mark = "x"
	}
	line := fmt.Sprintf("%4d  [%s] %s", num, mark, normalizeTitle(t.Title))
	if span := TimeRange(t); span != "" {
		line += "  (" + span + ")"
	}
	fmt.Fprintln(w, line)
}

// FormatDetail formats every field of a task, one per line.
func FormatDetail(w io.Writer, t task.Task) {
	status := "open"
	if t.IsCompleted {
		status = "done"
	}
	fmt.Fprintf(w, "id:       %s\n", t.ID)
	fmt.Fprintf(w, "title:    %s\n", normalizeTitle(t.Title))
	if d := strings.TrimSpace(t.Details); d != "" {
		fmt.Fprintf(w, "details:  %s\n", d)
	}
	fmt.Fprintf(w, "created:  %s\n", t.CreatedAt.Local().Format(DateLayout))
	if span := TimeRange(t); span != "" {
		fmt.Fprintf(w, "time:     %s\n", span)
	}
	fmt.Fprintf(w, "status:   %s\n", status)
}

// FormatListName formats a Google Tasks list name for the lists command.
func FormatListName(w io.Writer, list googletasks.TaskList) {
	title := normalizeTitle(list.Title)
	if list.IsDefault {
		title += " [default]"
	}
	fmt.Fprintf(w, "%s  %s\n", title, list.ID)
}

// TimeRange renders "START - END", using N/A for a missing end.
// Returns "" when neither time is set.
func TimeRange(t task.Task) string {
	if t.StartTime == nil && t.EndTime == nil {
		return ""
	}
	return formatTime(t.StartTime) + " - " + formatTime(t.EndTime)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return NoTime
	}
	return t.Local().Format(TimeLayout)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
