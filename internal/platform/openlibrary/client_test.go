package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "ISBN:9780134190440": {
    "title": "The Go Programming Language",
    "authors": [{"name": "Alan A. A. Donovan"}, {"name": "Brian W. Kernighan"}],
    "cover": {"large": "https://covers.openlibrary.org/b/id/1-L.jpg", "medium": "https://covers.openlibrary.org/b/id/1-M.jpg"},
    "notes": "Includes index."
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("libraryapi-test", 1000, 2, WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
}

func TestGetBooksByISBN(t *testing.T) {
	var gotQuery, gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("bibkeys")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(sampleResponse))
	})

	res, err := client.GetBooksByISBN(context.Background(), []string{"9780134190440", "9780000000002"})
	require.NoError(t, err)

	assert.Equal(t, "ISBN:9780134190440,ISBN:9780000000002", gotQuery)
	assert.Equal(t, "libraryapi-test", gotUA)
	require.Contains(t, res, "9780134190440")
	assert.NotContains(t, res, "9780000000002")

	details := res["9780134190440"]
	assert.Equal(t, "The Go Programming Language", details.Title)
	assert.Equal(t, "Alan A. A. Donovan, Brian W. Kernighan", details.AuthorNames())
	assert.Equal(t, "https://covers.openlibrary.org/b/id/1-L.jpg", details.CoverURL())
}

func TestGetBookByISBN_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.GetBookByISBN(context.Background(), "9780000000002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleResponse))
	})

	_, err := client.GetBookByISBN(context.Background(), "9780134190440")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetBookByISBN(context.Background(), "9780134190440")
	assert.ErrorContains(t, err, "after 2 retries")
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.GetBookByISBN(context.Background(), "9780134190440")
	assert.ErrorContains(t, err, "unexpected status code: 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestBookDetails_CoverFallback(t *testing.T) {
	var d BookDetails
	d.Cover.Medium = "m.jpg"
	assert.Equal(t, "m.jpg", d.CoverURL())
	assert.Empty(t, BookDetails{}.AuthorNames())
}
