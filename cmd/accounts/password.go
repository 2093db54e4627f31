package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minitienda/minitienda/internal/auth"
	"golang.org/x/term"
)

var errPasswordMismatch = errors.New("passwords do not match")

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	terminalFd   = func(r io.Reader) (int, bool) {
		f, ok := r.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return 0, false
		}
		return int(f.Fd()), true
	}
)

// promptPassword reads a new password. On a terminal it is asked twice without
// echo, otherwise the first line of in is used so passwords can be piped in.
func promptPassword(in io.Reader, prompt io.Writer) (auth.Password, error) {
	fd, ok := terminalFd(in)
	if !ok {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return auth.Password{}, fmt.Errorf("failed to read password: %w", err)
		}
		return auth.ParsePassword(strings.TrimRight(line, "\r\n"))
	}

	first, err := readTerminal(fd, prompt, "Password: ")
	if err != nil {
		return auth.Password{}, err
	}

	second, err := readTerminal(fd, prompt, "Repeat password: ")
	if err != nil {
		return auth.Password{}, err
	}

	if first != second {
		return auth.Password{}, errPasswordMismatch
	}

	return auth.ParsePassword(first)
}

func readTerminal(fd int, prompt io.Writer, text string) (string, error) {
	fmt.Fprint(prompt, text)
	b, err := readPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
