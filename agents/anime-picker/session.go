package animepicker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"anipick/agents/anime-picker/anilist"
	"anipick/agents/anime-picker/ui"
	"anipick/agents/anime-picker/youtube"
	"anipick/internal/selection"
	"anipick/shared/logging"
)

// Session is the interactive loop: draw, render, then act on single keys
// until the user refreshes or quits. Every refresh fetches fresh data.
type Session struct {
	agent  *PickerAgent
	screen *ui.Screen
	keys   ui.KeyReader
	open   func(url string) error
	play   func(ctx context.Context, title string) error
}

func NewSession(agent *PickerAgent, screen *ui.Screen, keys ui.KeyReader, player *ui.Player) *Session {
	return &Session{
		agent:  agent,
		screen: screen,
		keys:   keys,
		open:   ui.OpenURL,
		play:   player.Play,
	}
}

// Run returns nil when the user quits. Fetch failures and empty pools are
// shown and can be retried with R; a broken draw ends the session with an
// error wrapping selection.ErrSelectionExhausted.
func (s *Session) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		sel, err := s.agent.Roll(ctx)
		if errors.Is(err, selection.ErrSelectionExhausted) {
			return fmt.Errorf("picker is in an inconsistent state: %w", err)
		}

		s.screen.Clear()
		if err != nil {
			logging.Warn().Err(err).Msg("Roll failed")
			s.renderError(err)
		} else {
			s.render(sel)
		}

		quit, err := s.waitForKey(ctx, sel)
		if err != nil {
			return err
		}
		if quit {
			s.screen.Clear()
			return nil
		}
	}
}

// waitForKey blocks until a key ends the iteration. It reports quit=true for
// Q, Ctrl-C and end of input; R returns quit=false.
func (s *Session) waitForKey(ctx context.Context, sel *Selection) (bool, error) {
	for {
		if ctx.Err() != nil {
			return true, nil
		}

		key, err := s.keys.ReadKey()
		if errors.Is(err, ui.ErrInterrupted) || errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to read key: %w", err)
		}

		switch key {
		case 'q':
			return true, nil
		case 'r':
			return false, nil
		case 'e', 'w', 't', 'p':
			if sel != nil {
				s.act(ctx, key, sel)
			}
		}
	}
}

func (s *Session) act(ctx context.Context, key rune, sel *Selection) {
	switch key {
	case 'e':
		url := fmt.Sprintf("https://anilist.co/anime/%d", sel.ID)
		if err := s.open(url); err != nil {
			s.screen.Status(err.Error())
			return
		}
		s.screen.Status("Opened " + url)

	case 'w':
		err := s.play(ctx, sel.Title)
		s.screen.Clear()
		s.render(sel)
		if err != nil {
			s.screen.Status(err.Error())
		}

	case 't':
		trailer, err := s.agent.Trailer(ctx, sel)
		switch {
		case err != nil:
			s.screen.Status("Trailer lookup failed: " + err.Error())
			return
		case trailer == nil:
			s.screen.Status("AniList lists no YouTube trailer for this title")
			return
		}
		if trailer.Title != "" {
			s.screen.Status(fmt.Sprintf("%s · %s · %s", trailer.Title, trailer.ChannelTitle, youtube.FormatDuration(trailer.DurationSeconds)))
		}
		if err := s.open(trailer.URL); err != nil {
			s.screen.Status(err.Error())
		}

	case 'p':
		if !s.agent.PitchEnabled() {
			s.screen.Status("AI pitches are disabled (set GEMINI_API_KEY)")
			return
		}
		s.screen.Status("Asking Gemini...")
		pitch, err := s.agent.Pitch(ctx, sel)
		if err != nil {
			s.screen.Status("Pitch failed: " + err.Error())
			return
		}
		s.screen.Println("")
		s.screen.Centered(wrap(pitch.Pitch, min(s.screen.Width()-4, 76)))
		s.screen.Status(fmt.Sprintf("Mood: %s · Fit: %d/10", pitch.Mood, pitch.Score))
	}
}

func (s *Session) render(sel *Selection) {
	width := s.screen.Table(sel.Title, ui.DetailRows(sel.Candidate, sel.Weight))

	if sel.Candidate.ShowsProgress() {
		s.screen.Println("")
		s.screen.Progress(sel.Candidate.Entry.Progress, sel.Candidate.Media.Episodes, width)
	}
	if sel.Status != "" {
		s.screen.Println("")
		s.screen.Centered(sel.Status)
	}

	s.screen.Println("")
	s.screen.Centered(fmt.Sprintf("Drawn from %d candidates (weight %.3f of %.3f)", sel.PoolSize, sel.Weight, sel.PoolTotal))
	if len(sel.Reasons) > 0 {
		s.screen.Centered(strings.Join(sel.Reasons, " · "))
	}
	s.screen.Println("")

	keys := []ui.Key{ui.KeyQuit, ui.KeyPlay, ui.KeyAniList, ui.KeyRefresh}
	if sel.Candidate.Media.HasYouTubeTrailer() {
		keys = append(keys, ui.KeyTrailer)
	}
	if s.agent.PitchEnabled() {
		keys = append(keys, ui.KeyPitch)
	}
	s.screen.KeyGuide(keys)
}

func (s *Session) renderError(err error) {
	switch {
	case errors.Is(err, anilist.ErrFetchFailed):
		s.screen.Banner("Could not load data from AniList", err.Error(), true)
	case errors.Is(err, selection.ErrEmptyPool):
		s.screen.Banner("Nothing to pick",
			"Every title in this scope is completed or dropped.\nTry a wider scope, e.g. --scope trending.", false)
	case errors.Is(err, selection.ErrZeroWeight):
		s.screen.Banner("Nothing to pick",
			"No candidate has any weight: nothing in this scope has been started.\nStart watching something, or try --scope discover.", false)
	default:
		s.screen.Banner("Something went wrong", err.Error(), true)
	}
	s.screen.Println("")
	s.screen.KeyGuide([]ui.Key{ui.KeyQuit, ui.KeyRefresh})
}

// wrap breaks text into lines of at most width runes at word boundaries.
func wrap(text string, width int) string {
	var lines []string
	var line []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		if len(line) > 0 && len(line)+1+len(w) > width {
			lines = append(lines, string(line))
			line = nil
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, w...)
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return strings.Join(lines, "\n")
}
