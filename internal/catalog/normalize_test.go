package catalog

import (
	"testing"

	"anipick/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }
func num(n int) *int { return &n }

func media(id int, romaji string, episodes *int) *models.Media {
	return &models.Media{
		ID:       id,
		Title:    &models.MediaTitle{Romaji: str(romaji)},
		Episodes: episodes,
	}
}

func samplePayload() *models.Payload {
	full := media(1, "Frieren", num(28))
	full.Genres = []string{"Adventure", "Drama", "Drama"}
	full.Tags = []models.MediaTag{{Name: "Elf"}, {Name: ""}}
	full.Studios = &models.StudioConnection{Nodes: []models.Studio{{Name: "Madhouse"}}}
	full.Relations = &models.MediaConnection{Edges: []models.MediaEdge{
		{Node: &models.Media{ID: 2}}, {Node: nil}, {Node: &models.Media{ID: 2}},
	}}
	full.Description = str("An elf <i>mage</i> &amp; her party.<br>Years later...")

	return &models.Payload{
		Lists: []models.MediaList{
			{Name: "Watching", Entries: []models.MediaListEntry{
				{Media: full, Status: "CURRENT", Progress: num(6), StartedAt: &models.FuzzyDate{Year: num(2024), Month: num(1), Day: num(5)}},
				{Media: nil, Status: "CURRENT"},
			}},
			{Name: "Completed", Entries: []models.MediaListEntry{
				{Media: media(2, "Sousou", nil), Status: "COMPLETED", Progress: num(12), StartedAt: &models.FuzzyDate{Year: num(2023)}},
			}},
			{Name: "Dropped", Entries: []models.MediaListEntry{
				{Media: media(3, "Dropped Show", num(0)), Status: "dropped"},
			}},
		},
		GlobalPage: []models.Media{
			*media(2, "Sousou", num(12)),
			*media(100, "Trending One", num(12)),
			{ID: 101},
		},
	}
}

func TestNormalizeLibraryOnly(t *testing.T) {
	got := Normalize(samplePayload(), models.ScopeLibraryOnly)
	require.Len(t, got, 3, "nil media skipped, no status filtering")

	first := got[0]
	assert.Equal(t, models.ProvenanceLibrary, first.Provenance)
	assert.Equal(t, models.StatusCurrent, first.Entry.Status)
	assert.Equal(t, 6, first.Entry.Progress)
	assert.Equal(t, 28, first.Media.Episodes)
	assert.True(t, first.Media.EpisodesKnown)
	assert.Equal(t, []string{"Adventure", "Drama"}, first.Media.Genres)
	assert.Equal(t, []string{"Elf"}, first.Media.Tags)
	assert.Equal(t, []string{"Madhouse"}, first.Media.Studios)
	assert.Equal(t, []int{2}, first.Media.Relations)
	assert.Equal(t, "An elf mage & her party.\nYears later...", first.Media.Description)
	assert.Equal(t, "2024-01-05", first.Entry.StartedAt.String())

	completed := got[1]
	assert.Equal(t, 1, completed.Media.Episodes, "missing episodes become 1")
	assert.False(t, completed.Media.EpisodesKnown)
	assert.Equal(t, "N/A", completed.Entry.StartedAt.String(), "partial dates are absent")
	assert.NotNil(t, completed.Media.Genres)
	assert.NotNil(t, completed.Media.Tags)
	assert.NotNil(t, completed.Media.Studios)
	assert.NotNil(t, completed.Media.Relations)

	assert.Equal(t, models.StatusDropped, got[2].Entry.Status)
	assert.Equal(t, 1, got[2].Media.Episodes, "zero episodes become 1")
}

func TestNormalizeTrending(t *testing.T) {
	got := Normalize(samplePayload(), models.ScopeLibraryAndTrending)
	require.Len(t, got, 5)

	var globals []models.CandidateEntry
	for _, c := range got {
		if c.Provenance == models.ProvenanceGlobal {
			globals = append(globals, c)
		}
	}
	require.Len(t, globals, 2, "completed title 2 is not re-offered")
	for _, g := range globals {
		assert.Equal(t, models.StatusGlobal, g.Entry.Status)
		assert.Equal(t, 0, g.Entry.Progress)
		assert.NotEqual(t, 2, g.Media.ID)
	}
	assert.Equal(t, "Unknown Title", globals[1].Media.DisplayTitle())
}

func TestNormalizeRandomGlobal(t *testing.T) {
	got := Normalize(samplePayload(), models.ScopeRandomGlobal)
	require.Len(t, got, 3, "personal list is discarded, every page item kept")
	for _, c := range got {
		assert.Equal(t, models.ProvenanceGlobal, c.Provenance)
		assert.Equal(t, models.StatusGlobal, c.Entry.Status)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil, models.ScopeLibraryOnly))
	got := Normalize(&models.Payload{}, models.ScopeLibraryOnly)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildProfile(t *testing.T) {
	candidates := Normalize(samplePayload(), models.ScopeLibraryOnly)
	candidates[1].Media.Genres = []string{"Fantasy"}
	candidates[1].Media.Studios = []string{"Madhouse"}

	p := BuildProfile(candidates)
	assert.Len(t, p.Genres, 1)
	assert.Contains(t, p.Studios, "Madhouse")

	g, tg, s := p.Overlap(candidates[0].Media)
	assert.Equal(t, 0, g)
	assert.Equal(t, 0, tg)
	assert.Equal(t, 1, s)

	assert.Equal(t, []string{"Fantasy"}, p.GenreList(3))
	assert.Equal(t, map[int]struct{}{2: {}}, CompletedIDs(candidates))
}
