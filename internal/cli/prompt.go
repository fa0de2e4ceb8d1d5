package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptSecret reads a secret from the terminal without echo. It fails when
// stdin is not a terminal so scripted runs never block.
func promptSecret(out io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s is not set and stdin is not a terminal", label)
	}

	fmt.Fprintf(out, "%s: ", label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", label, err)
	}

	value := strings.TrimSpace(string(secret))
	if value == "" {
		return "", fmt.Errorf("%s is empty", label)
	}
	return value, nil
}
