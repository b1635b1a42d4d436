package commands

import (
	"errors"
	"fmt"
	"strconv"

	"todowork/internal/tasks"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the 1-based task number in args[0].
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || !isAllDigits(args[0]) {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	if n < 1 {
		return 0, fmt.Errorf("task number out of range: %d", n)
	}
	return n, nil
}

// lookupTask returns the task at 1-based position n of the unfiltered
// collection.
func lookupTask(list []tasks.Task, n int) (tasks.Task, error) {
	if n < 1 || n > len(list) {
		return tasks.Task{}, fmt.Errorf("task number out of range: %d", n)
	}
	return list[n-1], nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
