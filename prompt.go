package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// terminalConfirm asks y/N questions on a terminal. With yes set every
// question is answered without reading input.
type terminalConfirm struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func newTerminalConfirm(in io.Reader, out io.Writer, yes bool) *terminalConfirm {
	return &terminalConfirm{in: bufio.NewReader(in), out: out, yes: yes}
}

func (t *terminalConfirm) ask(question string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.yes {
		fmt.Fprintf(t.out, "%s [y/N] y\n", question)
		return true
	}
	fmt.Fprintf(t.out, "%s [y/N] ", question)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(t.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (t *terminalConfirm) ConfirmOverwrite(path string) bool {
	return t.ask(fmt.Sprintf("%s already exists. Overwrite?", path))
}

func (t *terminalConfirm) ConfirmDelete(path string) bool {
	return t.ask(fmt.Sprintf("Delete %s?", path))
}

func (t *terminalConfirm) NotifyResourceExhausted(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "Not enough space to write %s.\n", path)
}
