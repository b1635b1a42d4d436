package tasks

import "strings"

// Filter returns the visible set: tasks whose title contains query
// (case-insensitive) and, if completedOnly, that are completed.
// The input slice is not modified.
func Filter(list []Task, query string, completedOnly bool) []Task {
	q := strings.ToLower(query)
	var out []Task
	for _, t := range list {
		if completedOnly && !t.Completed {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}
