package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"anipick/internal/models"
	"anipick/shared/config"
	"anipick/shared/logging"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrNotFound means YouTube has no video for the trailer ID (removed or private).
var ErrNotFound = errors.New("trailer video not found")

// Client resolves AniList trailer references into YouTube video details.
type Client struct {
	service *youtube.Service
}

// NewClient builds an API-key client. Extra options (endpoint, HTTP client)
// are passed through to the YouTube service.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// TrailerFor looks up media's trailer. It returns nil without error when the
// media has no YouTube trailer.
func (c *Client) TrailerFor(ctx context.Context, media models.MediaRecord) (*models.Trailer, error) {
	if !media.HasYouTubeTrailer() {
		return nil, nil
	}
	return c.GetTrailer(ctx, media.TrailerID)
}

// GetTrailer fetches snippet, duration and view count for one video.
func (c *Client) GetTrailer(ctx context.Context, videoID string) (*models.Trailer, error) {
	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, videoID)
	}

	item := resp.Items[0]
	trailer := &models.Trailer{
		ID:  item.Id,
		URL: WatchURL(item.Id),
	}
	if item.Snippet != nil {
		trailer.Title = item.Snippet.Title
		trailer.ChannelTitle = item.Snippet.ChannelTitle
		if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			trailer.PublishedAt = publishedAt
		}
	}
	if item.ContentDetails != nil {
		trailer.Duration = item.ContentDetails.Duration
		trailer.DurationSeconds = parseDurationSeconds(item.ContentDetails.Duration)
	}
	if item.Statistics != nil {
		trailer.ViewCount = int64(item.Statistics.ViewCount)
	}

	logging.Debug().Str("video_id", videoID).Str("title", trailer.Title).Int("seconds", trailer.DurationSeconds).Msg("Fetched trailer")
	return trailer, nil
}

// WatchURL is the browser URL for a YouTube video ID.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", strings.TrimSpace(videoID))
}

var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// parseDurationSeconds reads ISO 8601 durations such as PT1M30S.
func parseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	matches := durationPattern.FindStringSubmatch(duration)
	if len(matches) == 0 {
		return 0
	}

	var totalSeconds int
	for i, unit := range []int{3600, 60, 1} {
		if matches[i+1] == "" {
			continue
		}
		if n, err := strconv.Atoi(matches[i+1]); err == nil {
			totalSeconds += n * unit
		}
	}
	return totalSeconds
}

// FormatDuration renders seconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "?"
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
