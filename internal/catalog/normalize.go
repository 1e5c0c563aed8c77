// Package catalog turns a fetched AniList payload into the flat candidate list
// the selection engine weighs.
package catalog

import (
	"html"
	"strings"

	"anipick/internal/models"

	"github.com/microcosm-cc/bluemonday"
)

// descriptionPolicy strips every tag; AniList descriptions carry <br> and <i>.
var descriptionPolicy = bluemonday.StrictPolicy()

// Normalize flattens the payload into candidates for the given scope. It never
// filters by library status; that is the engine's job.
func Normalize(payload *models.Payload, scope models.Scope) []models.CandidateEntry {
	if payload == nil {
		return []models.CandidateEntry{}
	}

	candidates := make([]models.CandidateEntry, 0)

	if scope.UsesLibrary() {
		for _, list := range payload.Lists {
			for _, entry := range list.Entries {
				if entry.Media == nil {
					continue
				}
				candidates = append(candidates, models.CandidateEntry{
					Provenance: models.ProvenanceLibrary,
					Media:      NormalizeMedia(entry.Media),
					Entry:      normalizeEntry(entry),
				})
			}
		}
	}

	switch scope {
	case models.ScopeLibraryAndTrending:
		completed := CompletedIDs(candidates)
		for i := range payload.GlobalPage {
			media := &payload.GlobalPage[i]
			if _, done := completed[media.ID]; done {
				continue
			}
			candidates = append(candidates, globalCandidate(media))
		}
	case models.ScopeRandomGlobal:
		for i := range payload.GlobalPage {
			candidates = append(candidates, globalCandidate(&payload.GlobalPage[i]))
		}
	}

	return candidates
}

func globalCandidate(media *models.Media) models.CandidateEntry {
	return models.CandidateEntry{
		Provenance: models.ProvenanceGlobal,
		Media:      NormalizeMedia(media),
		Entry: models.ListEntry{
			Status:   models.StatusGlobal,
			Progress: 0,
		},
	}
}

// NormalizeMedia substitutes empty sets for missing collections and 1 for a
// missing or zero episode count.
func NormalizeMedia(m *models.Media) models.MediaRecord {
	rec := models.MediaRecord{
		ID:        m.ID,
		Format:    deref(m.Format),
		Status:    deref(m.Status),
		Episodes:  1,
		Genres:    make([]string, 0, len(m.Genres)),
		Studios:   []string{},
		Tags:      make([]string, 0, len(m.Tags)),
		Relations: []int{},
	}

	if m.Title != nil {
		rec.Title = models.Title{
			Romaji:  deref(m.Title.Romaji),
			English: deref(m.Title.English),
			Native:  deref(m.Title.Native),
		}
	}
	if m.Episodes != nil && *m.Episodes > 0 {
		rec.Episodes = *m.Episodes
		rec.EpisodesKnown = true
	}

	rec.Genres = appendUnique(rec.Genres, m.Genres...)
	for _, tag := range m.Tags {
		rec.Tags = appendUnique(rec.Tags, tag.Name)
	}
	if m.Studios != nil {
		for _, studio := range m.Studios.Nodes {
			rec.Studios = appendUnique(rec.Studios, studio.Name)
		}
	}
	if m.Relations != nil {
		seen := make(map[int]struct{}, len(m.Relations.Edges))
		for _, edge := range m.Relations.Edges {
			if edge.Node == nil {
				continue
			}
			if _, dup := seen[edge.Node.ID]; dup {
				continue
			}
			seen[edge.Node.ID] = struct{}{}
			rec.Relations = append(rec.Relations, edge.Node.ID)
		}
	}

	rec.Description = plainText(deref(m.Description))
	rec.SiteURL = deref(m.SiteURL)
	if m.Trailer != nil {
		rec.TrailerID = deref(m.Trailer.ID)
		rec.TrailerSite = deref(m.Trailer.Site)
	}
	if m.AverageScore != nil {
		rec.AverageScore = *m.AverageScore
	}
	if m.NextAiringEpisode != nil {
		rec.NextEpisode = m.NextAiringEpisode.Episode
		rec.NextAiringAt = m.NextAiringEpisode.AiringAt
	}

	return rec
}

func normalizeEntry(e models.MediaListEntry) models.ListEntry {
	entry := models.ListEntry{
		Status:      models.LibraryStatus(strings.ToUpper(strings.TrimSpace(e.Status))),
		Score:       e.Score,
		StartedAt:   toDate(e.StartedAt),
		CompletedAt: toDate(e.CompletedAt),
	}
	if e.Progress != nil && *e.Progress > 0 {
		entry.Progress = *e.Progress
	}
	return entry
}

// toDate yields a valid Date only when every component is present.
func toDate(d *models.FuzzyDate) models.Date {
	if d == nil || d.Year == nil || d.Month == nil || d.Day == nil {
		return models.Date{}
	}
	return models.Date{Year: *d.Year, Month: *d.Month, Day: *d.Day, Valid: true}
}

func plainText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(s)
	s = html.UnescapeString(descriptionPolicy.Sanitize(s))
	return strings.TrimSpace(s)
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		found := false
		for _, have := range dst {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
