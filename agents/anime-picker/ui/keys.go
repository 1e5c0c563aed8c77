package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"golang.org/x/term"
)

// ErrInterrupted is returned when the user presses Ctrl-C or Ctrl-D while the
// terminal is in raw mode.
var ErrInterrupted = errors.New("interrupted")

// KeyReader blocks for a single key press.
type KeyReader interface {
	ReadKey() (rune, error)
}

// TerminalKeys reads one key at a time, switching the terminal to raw mode
// only for the duration of each read.
type TerminalKeys struct {
	in *os.File
	r  *bufio.Reader
}

func NewTerminalKeys(in *os.File) *TerminalKeys {
	return &TerminalKeys{in: in, r: bufio.NewReader(in)}
}

func (t *TerminalKeys) ReadKey() (rune, error) {
	fd := int(t.in.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return 0, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer term.Restore(fd, state)
	}
	return readKey(t.r)
}

// LineKeys reads keys from a plain stream, skipping whitespace. It serves
// scripted input and pipes.
type LineKeys struct {
	r *bufio.Reader
}

func NewLineKeys(in io.Reader) *LineKeys {
	return &LineKeys{r: bufio.NewReader(in)}
}

func (l *LineKeys) ReadKey() (rune, error) {
	for {
		k, err := readKey(l.r)
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(k) {
			return k, nil
		}
	}
}

func readKey(r *bufio.Reader) (rune, error) {
	k, _, err := r.ReadRune()
	if err != nil {
		return 0, err
	}
	switch k {
	case 0x03, 0x04:
		return 0, ErrInterrupted
	}
	return unicode.ToLower(k), nil
}
