package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Password input. Overridden in tests.
var (
	stdin   io.Reader = os.Stdin
	stdinFd           = int(os.Stdin.Fd())
)

// readPassword prompts on errOut and reads a password without echo when
// stdin is a terminal, or a single line otherwise.
func readPassword(errOut io.Writer) (string, error) {
	if term.IsTerminal(stdinFd) {
		fmt.Fprint(errOut, "Password: ")
		b, err := term.ReadPassword(stdinFd)
		fmt.Fprintln(errOut)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
