package ui

import (
	"fmt"
	"strings"
)

const maxBarWidth = 50

// ProgressBar renders "NN% [#####-----] p/total" with a bar of at most width
// cells. Progress beyond total fills the bar.
func ProgressBar(progress, total, width int) string {
	if total < 1 {
		total = 1
	}
	width = min(max(width, 10), maxBarWidth)

	ratio := float64(progress) / float64(total)
	ratio = min(max(ratio, 0), 1)
	filled := int(ratio * float64(width))

	return fmt.Sprintf("%3.0f%% [%s%s] %d/%d",
		ratio*100,
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		progress, total)
}

// Progress prints the progress caption and bar centered under a table of
// tableWidth columns.
func (s *Screen) Progress(progress, total, tableWidth int) {
	caption := fmt.Sprintf("Progress: %d/%d", progress, total)
	fmt.Fprintln(s.out, s.paint(ansiYellow+ansiBold, center(caption, s.width)))
	fmt.Fprintln(s.out, center(ProgressBar(progress, total, tableWidth-20), s.width))
}
