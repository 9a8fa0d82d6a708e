package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/task"
)

// MinTitleLength is the shortest title the CLI accepts for new tasks.
const MinTitleLength = 3

// now is the clock used to place HH:MM times on a date (for testing).
var now = time.Now

// fail prints err in the CLI error format and returns its exit code.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.For(err)
}

// failTitle is like fail but names the offending title for title errors.
func failTitle(errOut io.Writer, err error, title string) int {
	if errors.Is(err, task.ErrDuplicateTitle) {
		fmt.Fprintf(errOut, "error: duplicate title: %s\n", title)
		return exitcode.UserError
	}
	return fail(errOut, err)
}

// checkTitleLength enforces MinTitleLength.
func checkTitleLength(title string) error {
	if len([]rune(strings.TrimSpace(title))) < MinTitleLength {
		return fmt.Errorf("title must be at least %d characters", MinTitleLength)
	}
	return nil
}

// parseClock parses an HH:MM time of day onto today's date.
// An empty string yields nil.
func parseClock(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	hm, err := time.Parse(output.TimeLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid time (want HH:MM): %s", s)
	}
	day := now()
	t := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, day.Location())
	return &t, nil
}
