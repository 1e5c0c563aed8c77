package anilist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFetchFailed is wrapped by every error the client returns.
var ErrFetchFailed = errors.New("anilist fetch failed")

// StatusError is a non-2xx response without a GraphQL error body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("AniList returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("AniList returned HTTP %d: %s", e.StatusCode, truncate(body, 200))
}

func (e *StatusError) Unwrap() error { return ErrFetchFailed }

// GraphQLError carries the messages of a GraphQL "errors" array, e.g. an
// unknown user name.
type GraphQLError struct {
	StatusCode int
	Messages   []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("AniList query failed (HTTP %d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

func (e *GraphQLError) Unwrap() error { return ErrFetchFailed }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
