package ui

import (
	"fmt"
	"strings"
)

// Key is one entry of the key guide.
type Key struct {
	Key   rune
	Label string
	color string
}

var (
	KeyQuit    = Key{'Q', "Quit", ansiRed}
	KeyPlay    = Key{'W', "Play", ansiYellow}
	KeyAniList = Key{'E', "AniList", ansiBlue}
	KeyRefresh = Key{'R', "Refresh", ansiGreen}
	KeyTrailer = Key{'T', "Trailer", ansiCyan}
	KeyPitch   = Key{'P', "Pitch", ansiMagent}
)

// KeyGuide prints a framed row of keys.
func (s *Screen) KeyGuide(keys []Key) {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("[%c] %s", k.Key, k.Label)
	}
	plain := strings.Join(parts, "    ")

	painted := make([]string, len(keys))
	for i, k := range keys {
		painted[i] = s.paint(k.color+ansiBold, fmt.Sprintf("[%c]", k.Key)) + " " + k.Label
	}

	inner := len([]rune(plain)) + 2
	top := "╭─ Key Guide " + strings.Repeat("─", max(inner-len([]rune("─ Key Guide ")), 0)) + "╮"
	bottom := "╰" + strings.Repeat("─", inner) + "╯"

	pad := strings.Repeat(" ", max((s.width-inner-2)/2, 0))
	fmt.Fprintln(s.out, pad+s.paint(ansiMagent, top))
	fmt.Fprintln(s.out, pad+s.paint(ansiMagent, "│")+" "+strings.Join(painted, "    ")+" "+s.paint(ansiMagent, "│"))
	fmt.Fprintln(s.out, pad+s.paint(ansiMagent, bottom))
}

// Banner prints a highlighted message, e.g. an error that replaced the pick.
func (s *Screen) Banner(title, detail string, isError bool) {
	code := ansiYellow
	if isError {
		code = ansiRed
	}
	fmt.Fprintln(s.out, s.paint(code+ansiBold, center(title, s.width)))
	if detail != "" {
		for _, line := range strings.Split(detail, "\n") {
			fmt.Fprintln(s.out, s.paint(ansiDim, center(line, s.width)))
		}
	}
}

// Status prints a one-line notice below the guide.
func (s *Screen) Status(msg string) {
	fmt.Fprintln(s.out, s.paint(ansiCyan, center(msg, s.width)))
}
