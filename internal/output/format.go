// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todowork/internal/service"
)

const (
	// Separator frames section headings.
	Separator = "------------"

	// HeadingAll titles the unfiltered and search views.
	HeadingAll = "Task List"

	// HeadingCompleted titles the completed-only view.
	HeadingCompleted = "Completed Tasks"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [{x| }] {TITLE}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s\n", num, mark, normalizeTitle(task.Title))
}

// FormatHeader formats a section heading between separator lines.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, Separator)
}

// FormatProfile formats the signed-in user's profile page.
func FormatProfile(w io.Writer, displayName, secondaryID, email string) {
	fmt.Fprintf(w, "Name:  %s\n", displayName)
	fmt.Fprintf(w, "ID:    %s\n", secondaryID)
	if email != "" {
		fmt.Fprintf(w, "Email: %s\n", email)
	}
}

// normalizeTitle normalizes a task title for display.
// Newlines become spaces; blank titles become "(untitled)".
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
