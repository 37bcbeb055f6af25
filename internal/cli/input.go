package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var (
	errUsage    = errors.New("usage")
	errNoInput  = errors.New("no input")
	errNotLogin = errors.New("not logged in, use signup or login")
)

// GetSimpleText prints a prompt to w and returns the next input line with
// surrounding space trimmed.
//
//	Prompt text
//	> _
func GetSimpleText(lines *bufio.Scanner, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	if !lines.Scan() {
		if err := lines.Err(); err != nil {
			return "", err
		}
		return "", errNoInput
	}
	return strings.TrimSpace(lines.Text()), nil
}

// GetPassword prompts on w and reads a password without echo when stdin is
// a terminal. Piped input falls back to reading the next line.
func GetPassword(lines *bufio.Scanner, prompt string, w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return GetSimpleText(lines, prompt, w)
	}

	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
