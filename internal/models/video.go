package models

import "time"

// Trailer is the YouTube video AniList links as a media's trailer.
type Trailer struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	ChannelTitle    string    `json:"channel_title"`
	PublishedAt     time.Time `json:"published_at"`
	Duration        string    `json:"duration"`
	DurationSeconds int       `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
	URL             string    `json:"url"`
}

// Pitch is the AI-written blurb for a pick.
type Pitch struct {
	Pitch string `json:"pitch"`
	Mood  string `json:"mood"`
	Score int    `json:"score"` // 1-10
}

// DigestReport is what the scheduled digest emails.
type DigestReport struct {
	Date       time.Time       `json:"date"`
	User       string          `json:"user"`
	Scope      Scope           `json:"scope"`
	Pick       *CandidateEntry `json:"pick"`
	Title      string          `json:"title"`
	Weight     float64         `json:"weight"`
	PoolSize   int             `json:"pool_size"`
	PoolTotal  float64         `json:"pool_total"`
	Reasons    []string        `json:"reasons"`
	Trailer    *Trailer        `json:"trailer,omitempty"`
	Pitch      *Pitch          `json:"pitch,omitempty"`
	AniListURL string          `json:"anilist_url"`
}
