package animepicker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anipick/agents/anime-picker/anilist"
	"anipick/agents/anime-picker/youtube"
	"anipick/internal/catalog"
	"anipick/internal/models"
	"anipick/internal/selection"
	"anipick/shared/ai"
	"anipick/shared/config"
	"anipick/shared/email"
	"anipick/shared/logging"
	"anipick/shared/scheduler"
)

// Fetcher loads the AniList data a scope needs.
type Fetcher interface {
	FetchPayload(ctx context.Context, username string, scope models.Scope) (*models.Payload, error)
}

// TrailerFinder resolves a media's trailer reference.
type TrailerFinder interface {
	TrailerFor(ctx context.Context, media models.MediaRecord) (*models.Trailer, error)
}

// Pitcher writes a short pitch for a pick.
type Pitcher interface {
	Pitch(ctx context.Context, pick models.CandidateEntry, genres []string) (*models.Pitch, error)
}

// DigestSender delivers the scheduled digest.
type DigestSender interface {
	SendDigest(report *models.DigestReport) error
}

// PickerMetrics is what one digest run did.
type PickerMetrics struct {
	Title        string  `json:"title"`
	Weight       float64 `json:"weight"`
	PoolSize     int     `json:"pool_size"`
	TrailerFound bool    `json:"trailer_found"`
	PitchWritten bool    `json:"pitch_written"`
	EmailSent    bool    `json:"email_sent"`
}

// GetSummary implements the scheduler.Metrics interface
func (m PickerMetrics) GetSummary() string {
	if m.Title == "" {
		return "no pick drawn"
	}
	summary := fmt.Sprintf("picked %q from %d candidates", m.Title, m.PoolSize)
	var extras []string
	if m.TrailerFound {
		extras = append(extras, "trailer")
	}
	if m.PitchWritten {
		extras = append(extras, "pitch")
	}
	if len(extras) > 0 {
		summary += fmt.Sprintf(" with %s", joinAnd(extras))
	}
	if m.EmailSent {
		summary += ", email sent"
	}
	return summary
}

// Selection is one drawn pick plus everything the screen shows about it.
type Selection struct {
	Candidate models.CandidateEntry
	// Title is the display title; it never contains control characters.
	Title     string
	ID        int
	Weight    float64
	PoolSize  int
	PoolTotal float64
	Reasons   []string
	// Status is a placeholder line for discovery picks, empty otherwise.
	Status string
	// Genres is the user's completed-genre profile, sorted.
	Genres []string
}

// PickerAgent draws anime picks. It implements scheduler.Agent for the daily
// digest and serves the interactive session through Roll.
type PickerAgent struct {
	config   *config.Config
	username string
	scope    models.Scope

	fetcher  Fetcher
	engine   *selection.Engine
	trailers TrailerFinder
	pitcher  Pitcher
	sender   DigestSender
	emoji    func(n int) string
}

func NewPickerAgent(cfg *config.Config) *PickerAgent {
	scope, _ := cfg.Scope()
	return &PickerAgent{
		config:   cfg,
		username: cfg.AniList.Username,
		scope:    scope,
		emoji:    RandomEmoji,
	}
}

func (p *PickerAgent) Name() string {
	return "Anime Picker"
}

func (p *PickerAgent) Username() string {
	return p.username
}

// SetUsername changes whose list later rolls fetch.
func (p *PickerAgent) SetUsername(username string) {
	p.username = username
}

func (p *PickerAgent) Scope() models.Scope {
	return p.scope
}

// Initialize builds the AniList client and engine. Trailer lookup, pitches
// and email are optional and only wired when configured.
func (p *PickerAgent) Initialize() error {
	logging.Debug().Str("agent", p.Name()).Msg("Initializing")

	if p.fetcher == nil {
		client, err := anilist.NewClient(&p.config.AniList)
		if err != nil {
			return fmt.Errorf("failed to create AniList client: %w", err)
		}
		p.fetcher = client
	}

	if p.engine == nil {
		weights, err := p.config.Weights()
		if err != nil {
			return fmt.Errorf("invalid weights: %w", err)
		}
		p.engine = selection.NewEngine(weights)
		logging.Debug().Interface("weights", weights).Msg("Selection engine initialized")
	}

	if p.trailers == nil && p.config.YouTube.APIKey != "" {
		client, err := youtube.NewClient(context.Background(), &p.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		p.trailers = client
		logging.Debug().Msg("YouTube trailer lookup enabled")
	}

	if p.pitcher == nil && p.config.AI.GeminiAPIKey != "" {
		pitcher, err := ai.NewPitcher(context.Background(), &p.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create AI pitcher: %w", err)
		}
		p.pitcher = pitcher
		logging.Debug().Str("model", p.config.AI.Model).Msg("AI pitches enabled")
	}

	if p.sender == nil && p.config.Email.SMTPServer != "" {
		p.sender = email.NewSender(&p.config.Email)
	}

	return nil
}

// Roll fetches fresh data for the current scope and draws one pick. Fetch
// errors wrap anilist.ErrFetchFailed; pool errors are the selection package's.
func (p *PickerAgent) Roll(ctx context.Context) (*Selection, error) {
	log := logging.FromContext(ctx)

	payload, err := p.fetcher.FetchPayload(ctx, p.username, p.scope)
	if err != nil {
		return nil, err
	}

	candidates := catalog.Normalize(payload, p.scope)
	pick, err := p.engine.Pick(candidates, p.scope)
	if err != nil {
		log.Debug().Err(err).Int("candidates", len(candidates)).Str("scope", string(p.scope)).Msg("Draw failed")
		return nil, err
	}

	sel := &Selection{
		Candidate: pick.Candidate,
		Title:     pick.Candidate.Media.DisplayTitle(),
		ID:        pick.Candidate.Media.ID,
		Weight:    pick.Weight,
		PoolSize:  pick.PoolSize,
		PoolTotal: pick.PoolTotal,
		Reasons:   pick.Reasons,
		Genres:    catalog.BuildProfile(candidates).GenreList(5),
	}
	if p.scope == models.ScopeRandomGlobal {
		sel.Status = p.emoji(5)
	}

	log.Info().
		Str("title", sel.Title).
		Int("id", sel.ID).
		Float64("weight", sel.Weight).
		Int("pool", sel.PoolSize).
		Float64("total", sel.PoolTotal).
		Msg("Drew pick")

	return sel, nil
}

// Trailer looks up the pick's trailer. Without a YouTube client it still
// returns a bare link for YouTube trailers.
func (p *PickerAgent) Trailer(ctx context.Context, sel *Selection) (*models.Trailer, error) {
	media := sel.Candidate.Media
	if !media.HasYouTubeTrailer() {
		return nil, nil
	}
	if p.trailers == nil {
		return &models.Trailer{ID: media.TrailerID, URL: youtube.WatchURL(media.TrailerID)}, nil
	}
	return p.trailers.TrailerFor(ctx, media)
}

// PitchEnabled reports whether a Gemini key was configured.
func (p *PickerAgent) PitchEnabled() bool {
	return p.pitcher != nil
}

func (p *PickerAgent) Pitch(ctx context.Context, sel *Selection) (*models.Pitch, error) {
	if p.pitcher == nil {
		return nil, fmt.Errorf("AI pitches are disabled (set GEMINI_API_KEY)")
	}
	return p.pitcher.Pitch(ctx, sel.Candidate, sel.Genres)
}

// RunOnce draws tonight's pick and emails it. Trailer and pitch failures are
// partial; fetch, draw and email failures are critical.
func (p *PickerAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	metrics := PickerMetrics{}
	log := logging.FromContext(ctx)

	critical := func(err error) error {
		if events != nil && events.OnCriticalFailure != nil {
			events.OnCriticalFailure(err, time.Since(startTime))
		}
		return err
	}
	partial := func(err error) {
		log.Warn().Err(err).Msg("Digest degraded")
		if events != nil && events.OnPartialFailure != nil {
			events.OnPartialFailure(err, time.Since(startTime))
		}
	}

	if p.sender == nil {
		return critical(fmt.Errorf("email is not configured"))
	}

	sel, err := p.Roll(ctx)
	if err != nil {
		return critical(fmt.Errorf("failed to draw a pick: %w", err))
	}
	metrics.Title = sel.Title
	metrics.Weight = sel.Weight
	metrics.PoolSize = sel.PoolSize

	report := &models.DigestReport{
		Date:       time.Now(),
		User:       p.username,
		Scope:      p.scope,
		Pick:       &sel.Candidate,
		Title:      sel.Title,
		Weight:     sel.Weight,
		PoolSize:   sel.PoolSize,
		PoolTotal:  sel.PoolTotal,
		Reasons:    sel.Reasons,
		AniListURL: sel.Candidate.AniListURL(),
	}

	if trailer, err := p.Trailer(ctx, sel); err != nil {
		partial(fmt.Errorf("failed to look up trailer: %w", err))
	} else if trailer != nil {
		report.Trailer = trailer
		metrics.TrailerFound = true
	}

	if p.pitcher != nil {
		if pitch, err := p.Pitch(ctx, sel); err != nil {
			partial(fmt.Errorf("failed to write pitch: %w", err))
		} else {
			report.Pitch = pitch
			metrics.PitchWritten = true
		}
	}

	if err := p.sender.SendDigest(report); err != nil {
		return critical(fmt.Errorf("failed to send digest: %w", err))
	}
	metrics.EmailSent = true

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
	log.Info().Str("summary", metrics.GetSummary()).Msg("Digest complete")
	return nil
}

func joinAnd(items []string) string {
	if len(items) < 2 {
		return strings.Join(items, "")
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
