// Package ui renders picks to the terminal and performs the side effects the
// key guide offers: opening a browser and launching a player.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	defaultWidth = 80

	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiMagent = "\033[35m"
	ansiCyan   = "\033[36m"
)

// Screen writes to a terminal of a fixed width. Color is off when the output
// is not a terminal.
type Screen struct {
	out   io.Writer
	width int
	color bool
}

// NewScreen sizes itself from out when out is a terminal.
func NewScreen(out io.Writer) *Screen {
	s := &Screen{out: out, width: defaultWidth}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.color = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			s.width = w
		}
	}
	return s
}

// NewPlainScreen is a colorless screen of the given width, for tests and pipes.
func NewPlainScreen(out io.Writer, width int) *Screen {
	if width <= 0 {
		width = defaultWidth
	}
	return &Screen{out: out, width: width}
}

func (s *Screen) Width() int { return s.width }

// Clear wipes the terminal. It is a no-op without color support.
func (s *Screen) Clear() {
	if s.color {
		fmt.Fprint(s.out, "\033[H\033[2J")
	}
}

// Println writes a line as is.
func (s *Screen) Println(line string) {
	fmt.Fprintln(s.out, line)
}

// Centered writes each line of text centered on the screen.
func (s *Screen) Centered(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintln(s.out, center(line, s.width))
	}
}

func (s *Screen) paint(code, text string) string {
	if !s.color {
		return text
	}
	return code + text + ansiReset
}

// center pads line on the left. Width is measured on visible runes, so
// strings must be centered before they are painted.
func center(line string, width int) string {
	n := utf8.RuneCountInString(line)
	if n >= width {
		return line
	}
	return strings.Repeat(" ", (width-n)/2) + line
}
