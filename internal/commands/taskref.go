package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MinIDPrefix is the shortest id prefix accepted as a task reference.
const MinIDPrefix = 4

// TaskRef represents a parsed task reference. An all-digit reference of at
// least MinIDPrefix characters sets both fields: the id prefix is tried first
// and Num is the fallback.
type TaskRef struct {
	Num      int    // 1-based position in the reference view, 0 if none
	IDPrefix string // lowercase id prefix, "" if none
}

func (r TaskRef) String() string {
	if r.IDPrefix != "" {
		return r.IDPrefix
	}
	return strconv.Itoa(r.Num)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the task reference in args[0].
//
// Parsing rules:
//  1. All digits, shorter than MinIDPrefix: a position in the reference view
//     (newest first, all tasks)
//  2. All digits, MinIDPrefix or longer: an id prefix, falling back to a
//     position when no id matches
//  3. At least MinIDPrefix hex digits or dashes: a task id prefix
//  4. Otherwise: error invalid task reference
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	arg := strings.TrimSpace(args[0])

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if len(arg) >= MinIDPrefix {
			if err != nil || num < 1 {
				num = 0
			}
			return TaskRef{Num: num, IDPrefix: arg}, nil
		}
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
		}
		return TaskRef{Num: num}, nil
	}

	if len(arg) >= MinIDPrefix && isIDPrefix(arg) {
		return TaskRef{IDPrefix: strings.ToLower(arg)}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isIDPrefix returns true if s looks like the start of a UUID.
func isIDPrefix(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == '-':
		default:
			return false
		}
	}
	return true
}
