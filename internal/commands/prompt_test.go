package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadPassword_Pipe(t *testing.T) {
	oldIn, oldFd := stdin, stdinFd
	t.Cleanup(func() { stdin, stdinFd = oldIn, oldFd })

	tests := []struct {
		input string
		want  string
	}{
		{"hunter2\n", "hunter2"},
		{"hunter2\r\nextra\n", "hunter2"},
		{"no-newline", "no-newline"},
		{"", ""},
	}
	for _, tt := range tests {
		stdin, stdinFd = strings.NewReader(tt.input), -1
		var errOut bytes.Buffer

		got, err := readPassword(&errOut)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.want, got)
		}
		if errOut.Len() != 0 {
			t.Errorf("expected no prompt for piped input, got %q", errOut.String())
		}
	}
}
