package anilist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"anipick/internal/models"
	"anipick/shared/config"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listResponse = `{"data":{"MediaListCollection":{"lists":[
 {"name":"Watching","entries":[
  {"status":"CURRENT","score":8.5,"progress":6,"startedAt":{"year":2024,"month":1,"day":5},"completedAt":{"year":null,"month":null,"day":null},
   "media":{"id":1,"title":{"romaji":"Sousou no Frieren","english":"Frieren","native":null},"episodes":28,"genres":["Adventure"],
    "studios":{"nodes":[{"name":"Madhouse"}]},"tags":[{"name":"Elf"}],"relations":{"edges":[{"node":{"id":2}}]}}}]},
 {"name":"Completed","entries":[
  {"status":"COMPLETED","score":null,"progress":12,"media":{"id":2,"title":{"romaji":"Frieren Specials"},"episodes":null}}]}
]}}}`

const pageResponse = `{"data":{"Page":{"pageInfo":{"lastPage":%d},"media":[{"id":100,"title":{"romaji":"Trending"}},{"id":101}]}}}`

type recorded struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&config.AniListConfig{
		Endpoint:          srv.URL,
		PerPage:           2,
		TimeoutSeconds:    5,
		RequestsPerMinute: 60000,
	}, opts...)
	require.NoError(t, err)
	return c
}

func decode(t *testing.T, r *http.Request) recorded {
	t.Helper()
	var req recorded
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestFetchPayloadLibraryOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		req := decode(t, r)
		assert.Contains(t, req.Query, "MediaListCollection")
		assert.Equal(t, "frieren-fan", req.Variables["username"])
		w.Write([]byte(listResponse))
	})

	payload, err := c.FetchPayload(context.Background(), "frieren-fan", models.ScopeLibraryOnly)
	require.NoError(t, err)
	require.Len(t, payload.Lists, 2)
	assert.Empty(t, payload.GlobalPage)

	entry := payload.Lists[0].Entries[0]
	require.NotNil(t, entry.Media)
	assert.Equal(t, 1, entry.Media.ID)
	assert.Equal(t, 6, *entry.Progress)
	assert.Nil(t, entry.CompletedAt.Year)
	assert.Nil(t, payload.Lists[1].Entries[0].Media.Episodes)
}

func TestFetchPayloadTrending(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		req := decode(t, r)
		if strings.Contains(req.Query, "MediaListCollection") {
			w.Write([]byte(listResponse))
			return
		}
		assert.Contains(t, req.Query, "TRENDING_DESC")
		assert.EqualValues(t, 2, req.Variables["perPage"])
		w.Write([]byte(strings.Replace(pageResponse, "%d", "40", 1)))
	})

	payload, err := c.FetchPayload(context.Background(), "frieren-fan", models.ScopeLibraryAndTrending)
	require.NoError(t, err)
	assert.Len(t, payload.Lists, 2)
	assert.Len(t, payload.GlobalPage, 2)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchPayloadRandomGlobal(t *testing.T) {
	var pages []float64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decode(t, r)
		assert.NotContains(t, req.Query, "MediaListCollection", "discovery must not fetch the personal list")
		if p, ok := req.Variables["page"]; ok {
			pages = append(pages, p.(float64))
		}
		w.Write([]byte(strings.Replace(pageResponse, "%d", "120", 1)))
	}, WithIntn(func(n int) int {
		assert.Equal(t, 120, n)
		return n - 1
	}))

	payload, err := c.FetchPayload(context.Background(), "", models.ScopeRandomGlobal)
	require.NoError(t, err)
	assert.Empty(t, payload.Lists)
	assert.Len(t, payload.GlobalPage, 2)
	assert.Equal(t, 120, payload.LastPage)
	assert.Equal(t, []float64{120}, pages)
}

func TestRandomPageBounds(t *testing.T) {
	assert.Equal(t, 1, RandomPage(0, func(int) int { t.Fatal("must not draw"); return 0 }))
	assert.Equal(t, 1, RandomPage(10, func(int) int { return 0 }))
	assert.Equal(t, 10, RandomPage(10, func(n int) int { return n - 1 }))

	c, err := NewClient(&config.AniListConfig{Endpoint: "http://localhost"})
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		p := RandomPage(7, c.intn)
		assert.GreaterOrEqual(t, p, 1)
		assert.LessOrEqual(t, p, 7)
	}
}

func TestFetchPayloadRequiresUsername(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.FetchPayload(context.Background(), "", models.ScopeLibraryOnly)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetchErrors(t *testing.T) {
	t.Run("graphql error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"message":"User not found","status":404}],"data":{"MediaListCollection":null}}`))
		})
		_, err := c.FetchList(context.Background(), "nobody")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFetchFailed)

		var ge *GraphQLError
		require.True(t, errors.As(err, &ge))
		assert.Equal(t, http.StatusNotFound, ge.StatusCode)
		assert.Equal(t, []string{"User not found"}, ge.Messages)
	})

	t.Run("status error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		})
		_, err := c.FetchTrending(context.Background())
		assert.ErrorIs(t, err, ErrFetchFailed)

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
		assert.Contains(t, se.Error(), "upstream down")
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		})
		_, err := c.FetchTrending(context.Background())
		assert.ErrorIs(t, err, ErrFetchFailed)
	})
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 3; i++ {
		_, err := c.FetchTrending(context.Background())
		require.Error(t, err)
	}
	_, err := c.FetchTrending(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.EqualValues(t, 3, hits.Load())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"message":"User not found","status":404}]}`))
	})

	for i := 0; i < 5; i++ {
		_, err := c.FetchList(context.Background(), "nobody")
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	assert.EqualValues(t, 5, hits.Load())
}
