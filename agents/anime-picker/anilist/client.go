package anilist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"anipick/internal/models"
	"anipick/shared/config"
	"anipick/shared/logging"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client talks to the AniList GraphQL API.
type Client struct {
	endpoint string
	perPage  int
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	intn     func(n int) int
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithIntn replaces the source used to choose a random catalog page. intn(n)
// must return a value in [0, n).
func WithIntn(intn func(n int) int) Option {
	return func(c *Client) {
		c.intn = intn
	}
}

// NewClient builds an anonymous client, or an authenticated one when an
// AniList OAuth client is configured. Authentication lets private lists load.
func NewClient(cfg *config.AniListConfig, opts ...Option) (*Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 90
	}

	c := &Client{
		endpoint: cfg.Endpoint,
		perPage:  cfg.PerPage,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 3),
		breaker:  newBreaker(),
		intn:     rand.IntN,
	}
	if c.perPage <= 0 || c.perPage > 50 {
		c.perPage = 50
	}

	if cfg.ClientID != "" {
		oauthConfig := newOAuthConfig(cfg)
		token, err := getToken(oauthConfig, cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to get AniList token: %w", err)
		}
		hc := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(token))
		hc.Timeout = timeout
		c.http = hc
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "anilist",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// A 4xx (unknown user, bad query) says nothing about AniList's health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
			}
			var ge *GraphQLError
			if errors.As(err, &ge) {
				return ge.StatusCode >= 400 && ge.StatusCode < 500 && ge.StatusCode != http.StatusTooManyRequests
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
		},
	})
}

// FetchPayload fetches everything scope needs. The discovery scope skips the
// personal list entirely.
func (c *Client) FetchPayload(ctx context.Context, username string, scope models.Scope) (*models.Payload, error) {
	payload := &models.Payload{Lists: []models.MediaList{}}

	if scope.UsesLibrary() {
		if username == "" {
			return nil, fmt.Errorf("%w: a username is required for scope %s", ErrFetchFailed, scope)
		}
		lists, err := c.FetchList(ctx, username)
		if err != nil {
			return nil, err
		}
		payload.Lists = lists
	}

	switch scope {
	case models.ScopeLibraryAndTrending:
		media, err := c.FetchTrending(ctx)
		if err != nil {
			return nil, err
		}
		payload.GlobalPage = media
	case models.ScopeRandomGlobal:
		media, lastPage, err := c.FetchRandomPage(ctx)
		if err != nil {
			return nil, err
		}
		payload.GlobalPage = media
		payload.LastPage = lastPage
	}

	return payload, nil
}

// FetchList returns the user's anime MediaListCollection.
func (c *Client) FetchList(ctx context.Context, username string) ([]models.MediaList, error) {
	var data struct {
		MediaListCollection *struct {
			Lists []models.MediaList `json:"lists"`
		} `json:"MediaListCollection"`
	}
	if err := c.query(ctx, listQuery, map[string]any{"username": username}, &data); err != nil {
		return nil, err
	}
	if data.MediaListCollection == nil {
		return []models.MediaList{}, nil
	}

	entries := 0
	for _, l := range data.MediaListCollection.Lists {
		entries += len(l.Entries)
	}
	logging.Debug().Str("user", username).Int("lists", len(data.MediaListCollection.Lists)).Int("entries", entries).Msg("Fetched anime list")

	return data.MediaListCollection.Lists, nil
}

// FetchTrending returns the first page of currently trending anime.
func (c *Client) FetchTrending(ctx context.Context) ([]models.Media, error) {
	page, err := c.page(ctx, trendingQuery, map[string]any{"perPage": c.perPage})
	if err != nil {
		return nil, err
	}
	return page.Media, nil
}

// FetchRandomPage counts the catalog's pages, then fetches one chosen
// uniformly from [1, lastPage].
func (c *Client) FetchRandomPage(ctx context.Context) ([]models.Media, int, error) {
	count, err := c.page(ctx, pageCountQuery, map[string]any{"perPage": c.perPage})
	if err != nil {
		return nil, 0, err
	}
	lastPage := count.PageInfo.LastPage
	pageNum := RandomPage(lastPage, c.intn)

	logging.Debug().Int("page", pageNum).Int("last_page", lastPage).Msg("Fetching random catalog page")

	page, err := c.page(ctx, pageQuery, map[string]any{"page": pageNum, "perPage": c.perPage})
	if err != nil {
		return nil, 0, err
	}
	return page.Media, lastPage, nil
}

// RandomPage maps intn onto [1, lastPage]; an unknown page count means page 1.
func RandomPage(lastPage int, intn func(n int) int) int {
	if lastPage < 1 {
		return 1
	}
	return intn(lastPage) + 1
}

type pageData struct {
	PageInfo struct {
		LastPage int `json:"lastPage"`
	} `json:"pageInfo"`
	Media []models.Media `json:"media"`
}

func (c *Client) page(ctx context.Context, q string, vars map[string]any) (*pageData, error) {
	var data struct {
		Page *pageData `json:"Page"`
	}
	if err := c.query(ctx, q, vars, &data); err != nil {
		return nil, err
	}
	if data.Page == nil {
		return &pageData{}, nil
	}
	return data.Page, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"errors"`
}

func (c *Client) query(ctx context.Context, q string, vars map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, q, vars)
	})
	if err != nil {
		if errors.Is(err, ErrFetchFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrFetchFailed, err)
	}
	if len(resp.Errors) > 0 {
		return graphQLErr(http.StatusOK, resp)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("%w: failed to decode data: %w", ErrFetchFailed, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, q string, vars map[string]any) ([]byte, error) {
	reqBody, err := json.Marshal(graphQLRequest{Query: q, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var gr graphQLResponse
		if json.Unmarshal(body, &gr) == nil && len(gr.Errors) > 0 {
			return nil, graphQLErr(resp.StatusCode, gr)
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func graphQLErr(status int, resp graphQLResponse) *GraphQLError {
	ge := &GraphQLError{StatusCode: status}
	for _, e := range resp.Errors {
		if e.Status != 0 && status == http.StatusOK {
			ge.StatusCode = e.Status
		}
		ge.Messages = append(ge.Messages, e.Message)
	}
	return ge
}
