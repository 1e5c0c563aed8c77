package models

import (
	"fmt"
	"strings"
	"unicode"
)

// LibraryStatus is the status a user gave a title in their AniList library.
type LibraryStatus string

const (
	StatusCurrent   LibraryStatus = "CURRENT"
	StatusCompleted LibraryStatus = "COMPLETED"
	StatusDropped   LibraryStatus = "DROPPED"
	StatusPaused    LibraryStatus = "PAUSED"
	StatusPlanning  LibraryStatus = "PLANNING"
	StatusRepeating LibraryStatus = "REPEATING"

	// StatusGlobal is synthesized for catalog titles that are not in the library.
	StatusGlobal LibraryStatus = "GLOBAL"
)

// Provenance records where a candidate came from.
type Provenance string

const (
	ProvenanceLibrary Provenance = "library"
	ProvenanceGlobal  Provenance = "global"
)

// Scope selects how candidates are sourced.
type Scope string

const (
	ScopeLibraryOnly        Scope = "LIBRARY_ONLY"
	ScopeLibraryAndTrending Scope = "LIBRARY_PLUS_TRENDING"
	ScopeRandomGlobal       Scope = "LIBRARY_PLUS_RANDOM_GLOBAL"
)

// ParseScope accepts the canonical names plus the short aliases used on the
// command line ("library", "trending", "discover").
func ParseScope(s string) (Scope, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(ScopeLibraryOnly), "LIBRARY":
		return ScopeLibraryOnly, nil
	case string(ScopeLibraryAndTrending), "TRENDING":
		return ScopeLibraryAndTrending, nil
	case string(ScopeRandomGlobal), "DISCOVER", "RANDOM":
		return ScopeRandomGlobal, nil
	}
	return "", fmt.Errorf("unknown scope %q (want library, trending or discover)", s)
}

// UsesLibrary reports whether the personal list contributes candidates.
func (s Scope) UsesLibrary() bool {
	return s != ScopeRandomGlobal
}

// UsesGlobalPage reports whether a global catalog page must be fetched.
func (s Scope) UsesGlobalPage() bool {
	return s == ScopeLibraryAndTrending || s == ScopeRandomGlobal
}

const unknownTitle = "Unknown Title"

// Title holds the title variants AniList returns for a media.
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// MediaRecord is a normalized catalog entry. Sets are never nil and Episodes is
// at least 1.
type MediaRecord struct {
	ID            int      `json:"id"`
	Title         Title    `json:"title"`
	Format        string   `json:"format"`
	Status        string   `json:"status"`
	Episodes      int      `json:"episodes"`
	EpisodesKnown bool     `json:"episodes_known"`
	Genres        []string `json:"genres"`
	Studios       []string `json:"studios"`
	Tags          []string `json:"tags"`
	Relations     []int    `json:"relations"`
	Description   string   `json:"description"`
	SiteURL       string   `json:"site_url"`
	TrailerID     string   `json:"trailer_id"`
	TrailerSite   string   `json:"trailer_site"`
	AverageScore  int      `json:"average_score"`
	NextEpisode   int      `json:"next_episode"`
	NextAiringAt  int64    `json:"next_airing_at"`
}

// DisplayTitle prefers romaji, then english, then native. Control characters
// are removed so the result can be handed to a player as a single argument.
func (m MediaRecord) DisplayTitle() string {
	for _, t := range []string{m.Title.Romaji, m.Title.English, m.Title.Native} {
		if clean := stripControl(t); clean != "" {
			return clean
		}
	}
	return unknownTitle
}

// HasYouTubeTrailer reports whether the media links a YouTube trailer.
func (m MediaRecord) HasYouTubeTrailer() bool {
	return m.TrailerID != "" && strings.EqualFold(m.TrailerSite, "youtube")
}

func stripControl(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Date is a calendar date that is either fully known or absent.
type Date struct {
	Year  int  `json:"year"`
	Month int  `json:"month"`
	Day   int  `json:"day"`
	Valid bool `json:"valid"`
}

func (d Date) String() string {
	if !d.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ListEntry is the user's tracking record for one media.
type ListEntry struct {
	Status      LibraryStatus `json:"status"`
	Score       *float64      `json:"score,omitempty"`
	Progress    int           `json:"progress"`
	StartedAt   Date          `json:"started_at"`
	CompletedAt Date          `json:"completed_at"`
}

// CandidateEntry is one title the picker may choose.
type CandidateEntry struct {
	Provenance Provenance  `json:"provenance"`
	Media      MediaRecord `json:"media"`
	Entry      ListEntry   `json:"entry"`
}

// IsExcluded reports whether the entry's status keeps it out of every pool.
func (c CandidateEntry) IsExcluded() bool {
	return c.Entry.Status == StatusCompleted || c.Entry.Status == StatusDropped
}

// ShowsProgress reports whether a progress bar makes sense for the entry.
func (c CandidateEntry) ShowsProgress() bool {
	return c.Provenance == ProvenanceLibrary &&
		(c.Entry.Status == StatusCurrent || c.Entry.Status == StatusPaused)
}

// AniListURL is the public page of the media.
func (c CandidateEntry) AniListURL() string {
	if c.Media.SiteURL != "" {
		return c.Media.SiteURL
	}
	return fmt.Sprintf("https://anilist.co/anime/%d", c.Media.ID)
}
