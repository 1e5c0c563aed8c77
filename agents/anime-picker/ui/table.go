package ui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"anipick/internal/models"
)

// Row is one field of the details table.
type Row struct {
	Field string
	Value string
}

const listLimit = 4

// DetailRows extracts the displayed fields of a candidate.
func DetailRows(c models.CandidateEntry, weight float64) []Row {
	m := c.Media

	episodes := strconv.Itoa(m.Episodes)
	if !m.EpisodesKnown {
		episodes += " (unknown)"
	}
	score := "N/A"
	if c.Entry.Score != nil {
		score = strconv.FormatFloat(*c.Entry.Score, 'f', -1, 64)
	}

	rows := []Row{
		{"English Title", orNA(m.Title.English)},
		{"Romaji Title", orNA(m.Title.Romaji)},
		{"Native Title", orNA(m.Title.Native)},
		{"Format", orNA(m.Format)},
		{"Status", orNA(m.Status)},
		{"Episodes", episodes},
		{"Score", score},
		{"Genres", firstN(m.Genres)},
		{"Studios", firstN(m.Studios)},
		{"Tags", firstN(m.Tags)},
		{"Library Status", string(c.Entry.Status)},
		{"Started At", c.Entry.StartedAt.String()},
	}
	if c.Media.AverageScore > 0 {
		rows = append(rows, Row{"Average Score", fmt.Sprintf("%d%%", c.Media.AverageScore)})
	}
	if m.NextEpisode > 0 {
		rows = append(rows, Row{"Next Episode", strconv.Itoa(m.NextEpisode)})
	}
	rows = append(rows,
		Row{"Source", string(c.Provenance)},
		Row{"Weight", strconv.FormatFloat(weight, 'f', 3, 64)},
	)
	return rows
}

// Table renders a titled two-column table and returns its widest line.
func (s *Screen) Table(title string, rows []Row) int {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Field\tValue")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Field, sanitize(r.Value))
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	width := utf8.RuneCountInString(title)
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l))
	}
	rule := strings.Repeat("─", width)

	fmt.Fprintln(s.out, s.paint(ansiBold, center(sanitize(title), s.width)))
	fmt.Fprintln(s.out, center(rule, s.width))
	for i, l := range lines {
		line := center(padRight(l, width), s.width)
		if i == 0 {
			line = s.paint(ansiMagent+ansiBold, line)
		}
		fmt.Fprintln(s.out, line)
		if i == 0 {
			fmt.Fprintln(s.out, center(rule, s.width))
		}
	}
	fmt.Fprintln(s.out, center(rule, s.width))
	return width
}

func firstN(values []string) string {
	if len(values) == 0 {
		return "N/A"
	}
	if len(values) > listLimit {
		values = values[:listLimit]
	}
	return strings.Join(values, ", ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// sanitize keeps values on one line so tabwriter columns stay aligned.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
