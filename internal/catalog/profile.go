package catalog

import (
	"sort"

	"anipick/internal/models"
)

// CompletedIDs returns the media IDs of every COMPLETED library candidate.
func CompletedIDs(candidates []models.CandidateEntry) map[int]struct{} {
	ids := make(map[int]struct{})
	for _, c := range candidates {
		if c.Provenance == models.ProvenanceLibrary && c.Entry.Status == models.StatusCompleted {
			ids[c.Media.ID] = struct{}{}
		}
	}
	return ids
}

// Profile is the taste reference built from completed library titles.
type Profile struct {
	Genres  map[string]struct{}
	Tags    map[string]struct{}
	Studios map[string]struct{}
}

// BuildProfile collects the genres, tag names and studio names of every
// COMPLETED library candidate.
func BuildProfile(candidates []models.CandidateEntry) Profile {
	p := Profile{
		Genres:  make(map[string]struct{}),
		Tags:    make(map[string]struct{}),
		Studios: make(map[string]struct{}),
	}
	for _, c := range candidates {
		if c.Provenance != models.ProvenanceLibrary || c.Entry.Status != models.StatusCompleted {
			continue
		}
		addAll(p.Genres, c.Media.Genres)
		addAll(p.Tags, c.Media.Tags)
		addAll(p.Studios, c.Media.Studios)
	}
	return p
}

// Overlap counts how many of the media's genres, tags and studios appear in
// the profile, per category.
func (p Profile) Overlap(m models.MediaRecord) (genres, tags, studios int) {
	return countIn(p.Genres, m.Genres), countIn(p.Tags, m.Tags), countIn(p.Studios, m.Studios)
}

// GenreList returns up to n profile genres, sorted.
func (p Profile) GenreList(n int) []string {
	out := make([]string, 0, len(p.Genres))
	for g := range p.Genres {
		out = append(out, g)
	}
	sort.Strings(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func addAll(set map[string]struct{}, values []string) {
	for _, v := range values {
		set[v] = struct{}{}
	}
}

func countIn(set map[string]struct{}, values []string) int {
	n := 0
	for _, v := range values {
		if _, ok := set[v]; ok {
			n++
		}
	}
	return n
}
