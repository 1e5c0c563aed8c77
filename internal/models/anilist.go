package models

// Payload is the parsed AniList response the picker works from. Lists is the
// user's MediaListCollection grouped by sub-list, GlobalPage is the optional
// trending or random catalog page.
type Payload struct {
	Lists      []MediaList `json:"lists"`
	GlobalPage []Media     `json:"global_page,omitempty"`
	// LastPage is the catalog page count the global page was drawn from (0 when unknown).
	LastPage int `json:"last_page,omitempty"`
}

type MediaList struct {
	Name    string           `json:"name"`
	Entries []MediaListEntry `json:"entries"`
}

type MediaListEntry struct {
	Media       *Media     `json:"media"`
	Status      string     `json:"status"`
	Score       *float64   `json:"score"`
	Progress    *int       `json:"progress"`
	StartedAt   *FuzzyDate `json:"startedAt"`
	CompletedAt *FuzzyDate `json:"completedAt"`
}

type Media struct {
	ID                int               `json:"id"`
	Title             *MediaTitle       `json:"title"`
	Format            *string           `json:"format"`
	Status            *string           `json:"status"`
	Episodes          *int              `json:"episodes"`
	Genres            []string          `json:"genres"`
	Studios           *StudioConnection `json:"studios"`
	Tags              []MediaTag        `json:"tags"`
	Relations         *MediaConnection  `json:"relations"`
	Description       *string           `json:"description"`
	SiteURL           *string           `json:"siteUrl"`
	Trailer           *MediaTrailer     `json:"trailer"`
	AverageScore      *int              `json:"averageScore"`
	NextAiringEpisode *AiringSchedule   `json:"nextAiringEpisode"`
}

type MediaTitle struct {
	Romaji  *string `json:"romaji"`
	English *string `json:"english"`
	Native  *string `json:"native"`
}

type StudioConnection struct {
	Nodes []Studio `json:"nodes"`
}

type Studio struct {
	Name string `json:"name"`
}

type MediaTag struct {
	Name string `json:"name"`
}

type MediaConnection struct {
	Edges []MediaEdge `json:"edges"`
}

type MediaEdge struct {
	Node *Media `json:"node"`
}

type MediaTrailer struct {
	ID   *string `json:"id"`
	Site *string `json:"site"`
}

type AiringSchedule struct {
	AiringAt        int64 `json:"airingAt"`
	TimeUntilAiring int64 `json:"timeUntilAiring"`
	Episode         int   `json:"episode"`
}

// FuzzyDate is AniList's partial date; any component may be null.
type FuzzyDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}
