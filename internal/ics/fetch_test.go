package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchUsesETagAndFallsBack(t *testing.T) {
	var (
		calls   atomic.Int32
		failing atomic.Bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if failing.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	}))
	defer srv.Close()

	ctx := context.Background()
	f := NewFetcher(t.TempDir(), srv.Client())
	src := Source{ID: "s", URL: srv.URL + "/feed.ics"}

	res, err := f.FetchOne(ctx, src)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Contains(t, string(res.Body), "VCALENDAR")

	res, err = f.FetchOne(ctx, src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)

	failing.Store(true)
	res, err = f.FetchOne(ctx, src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	_, err := f.FetchOne(context.Background(), Source{ID: "s", URL: srv.URL})
	var se StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)

	_, err = f.FetchOne(context.Background(), Source{ID: "b"})
	assert.Error(t, err)
}

func TestFeedURLHelpers(t *testing.T) {
	assert.Equal(t, "https://example.com/a.ics", normalizeFeedURL(" webcal://example.com/a.ics "))
	assert.Equal(t, "http://example.com/a.ics", normalizeFeedURL("http://example.com/a.ics"))
	assert.Equal(t, "https://example.com/...(redacted)", redactURL(work.URL))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
