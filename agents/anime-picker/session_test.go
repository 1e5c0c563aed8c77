package animepicker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"anipick/agents/anime-picker/anilist"
	"anipick/agents/anime-picker/ui"
	"anipick/internal/models"
	"anipick/internal/selection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionHarness struct {
	session *Session
	out     *bytes.Buffer
	opened  []string
	played  []string
}

func newHarness(a *PickerAgent, keys string) *sessionHarness {
	h := &sessionHarness{out: &bytes.Buffer{}}
	h.session = &Session{
		agent:  a,
		screen: ui.NewPlainScreen(h.out, 100),
		keys:   ui.NewLineKeys(strings.NewReader(keys)),
		open: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		play: func(_ context.Context, title string) error {
			h.played = append(h.played, title)
			return nil
		},
	}
	return h
}

func (h *sessionHarness) renders() int {
	return strings.Count(h.out.String(), "Key Guide")
}

func sessionPayload() *models.Payload {
	m := media(154587, "Sousou no Frieren", 28)
	m.Trailer = &models.MediaTrailer{ID: ptr("qgQ9tsHnvB0"), Site: ptr("youtube")}
	return libraryPayload(entry(m, "CURRENT", 7))
}

func TestSessionActions(t *testing.T) {
	fetcher := &fakeFetcher{payload: sessionPayload()}
	h := newHarness(newTestAgent(models.ScopeLibraryOnly, fetcher), "ewtq")

	require.NoError(t, h.session.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Sousou no Frieren")
	assert.Contains(t, out, "Progress: 7/28")
	assert.Contains(t, out, "[T] Trailer")
	assert.NotContains(t, out, "[P] Pitch", "pitch key hidden without a Gemini key")

	assert.Equal(t, []string{
		"https://anilist.co/anime/154587",
		"https://www.youtube.com/watch?v=qgQ9tsHnvB0",
	}, h.opened)
	assert.Equal(t, []string{"Sousou no Frieren"}, h.played)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 2, h.renders(), "returning from the player redraws the same pick")
}

func TestSessionRefreshRefetches(t *testing.T) {
	fetcher := &fakeFetcher{payload: sessionPayload()}
	h := newHarness(newTestAgent(models.ScopeLibraryOnly, fetcher), "rRq")

	require.NoError(t, h.session.Run(context.Background()))
	assert.Equal(t, 3, fetcher.calls)
	assert.Equal(t, 3, h.renders())
}

func TestSessionIgnoresUnknownKeys(t *testing.T) {
	fetcher := &fakeFetcher{payload: sessionPayload()}
	h := newHarness(newTestAgent(models.ScopeLibraryOnly, fetcher), "xyz123q")

	require.NoError(t, h.session.Run(context.Background()))
	assert.Equal(t, 1, h.renders())
	assert.Empty(t, h.opened)
	assert.Empty(t, h.played)
}

func TestSessionEndOfInputQuits(t *testing.T) {
	h := newHarness(newTestAgent(models.ScopeLibraryOnly, &fakeFetcher{payload: sessionPayload()}), "")
	assert.NoError(t, h.session.Run(context.Background()))
}

func TestSessionErrorScreens(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
		want    string
	}{
		{
			name:    "fetch failure",
			fetcher: &fakeFetcher{err: fmt.Errorf("%w: connection refused", anilist.ErrFetchFailed)},
			want:    "Could not load data from AniList",
		},
		{
			name:    "empty pool",
			fetcher: &fakeFetcher{payload: libraryPayload(entry(media(2, "Dungeon Meshi", 24), "COMPLETED", 24))},
			want:    "completed or dropped",
		},
		{
			name:    "zero weight",
			fetcher: &fakeFetcher{payload: libraryPayload(entry(media(3, "Mushishi", 26), "PLANNING", 0))},
			want:    "nothing in this scope has been started",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// E and W do nothing without a pick; R retries.
			h := newHarness(newTestAgent(models.ScopeLibraryOnly, tt.fetcher), "ewrq")

			require.NoError(t, h.session.Run(context.Background()))
			out := h.out.String()
			assert.Equal(t, 2, strings.Count(out, tt.want))
			assert.NotContains(t, out, "[W] Play")
			assert.Empty(t, h.opened)
			assert.Empty(t, h.played)
			assert.Equal(t, 2, tt.fetcher.calls)
		})
	}
}

func TestSessionExhaustedIsFatal(t *testing.T) {
	a := newTestAgent(models.ScopeLibraryOnly, &fakeFetcher{payload: sessionPayload()})
	// A source that breaks its [0, max) contract makes the walk overrun.
	a.engine = selection.NewEngine(selection.DefaultWeights(), selection.WithUniform(func(max float64) float64 { return max * 2 }))
	h := newHarness(a, "q")

	err := h.session.Run(context.Background())
	assert.ErrorIs(t, err, selection.ErrSelectionExhausted)
	assert.Zero(t, h.renders())
}

func TestSessionDiscoveryStatus(t *testing.T) {
	fetcher := &fakeFetcher{payload: &models.Payload{GlobalPage: []models.Media{*media(10, "Kaiba", 12)}}}
	h := newHarness(newTestAgent(models.ScopeRandomGlobal, fetcher), "q")

	require.NoError(t, h.session.Run(context.Background()))
	assert.Contains(t, h.out.String(), "🎲🎲")
	assert.NotContains(t, h.out.String(), "Progress:")
}

func TestSessionPitch(t *testing.T) {
	a := newTestAgent(models.ScopeLibraryOnly, &fakeFetcher{payload: sessionPayload()})
	a.pitcher = &fakePitcher{pitch: &models.Pitch{Pitch: "An elf learns what a decade means to humans.", Mood: "wistful", Score: 9}}
	h := newHarness(a, "pq")

	require.NoError(t, h.session.Run(context.Background()))
	out := h.out.String()
	assert.Contains(t, out, "[P] Pitch")
	assert.Contains(t, out, "An elf learns what a decade means to humans.")
	assert.Contains(t, out, "Mood: wistful · Fit: 9/10")
}

func TestSessionPitchFailureStaysAlive(t *testing.T) {
	a := newTestAgent(models.ScopeLibraryOnly, &fakeFetcher{payload: sessionPayload()})
	a.pitcher = &fakePitcher{err: errors.New("quota exceeded")}
	h := newHarness(a, "pe q")

	require.NoError(t, h.session.Run(context.Background()))
	assert.Contains(t, h.out.String(), "Pitch failed")
	assert.Len(t, h.opened, 1, "keys after a failed pitch still work")
}

func TestSessionCancelledContext(t *testing.T) {
	fetcher := &fakeFetcher{payload: sessionPayload()}
	h := newHarness(newTestAgent(models.ScopeLibraryOnly, fetcher), "rrr")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.session.Run(ctx))
	assert.Zero(t, fetcher.calls)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", wrap("one two three", 8))
	assert.Equal(t, "supercalifragilistic", wrap("supercalifragilistic", 5))
	assert.Equal(t, "", wrap("  ", 10))
}
