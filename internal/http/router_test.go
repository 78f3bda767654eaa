package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/auth"
	"libraryapi/internal/book"
	apphttp "libraryapi/internal/http"
	"libraryapi/internal/httpx"
	"libraryapi/internal/metrics"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/testutil"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	handler http.Handler
	service *book.Service
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T, mutate func(*apphttp.RouterDeps)) *testServer {
	t.Helper()

	db, err := database.OpenBolt(filepath.Join(t.TempDir(), "library.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := book.NewBoltRepo(db, "")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	service := book.NewService(repo, nil, rec)

	deps := apphttp.RouterDeps{
		Auth:           auth.NewHTTPHandler(auth.NewService(testutil.TestSecret, time.Hour, nil, rec), nil),
		Books:          book.NewHTTPHandler(service, nil),
		Store:          service,
		Secret:         testutil.TestSecret,
		Metrics:        rec,
		MetricsHandler: metrics.Handler(reg),
		MaxBodyBytes:   1 << 20,
	}
	if mutate != nil {
		mutate(&deps)
	}

	return &testServer{handler: apphttp.NewRouter(deps), service: service, reg: reg}
}

func (s *testServer) do(r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	resp := s.do(testutil.NewRequest(http.MethodPost, "/generate_token", map[string]string{"secret_key": testutil.TestSecret}))
	require.Equal(t, http.StatusOK, resp.Code)
	token, ok := resp.Body["access_token"].(string)
	require.True(t, ok)
	return token
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.token(t)

	t.Run("list starts empty", func(t *testing.T) {
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodGet, "/books", nil, token))

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"books":[]}`, string(resp.Raw))
	})

	t.Run("add book", func(t *testing.T) {
		body := map[string]string{"isbn": "9781234567897", "title": "T", "author": "A"}
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodPost, "/books", body, token))

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Book details saved successfully", resp.Body["message"])
	})

	t.Run("lookup without token", func(t *testing.T) {
		resp := srv.do(testutil.NewRequest(http.MethodGet, "/isbn/9781234567897", nil))

		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t,
			`{"book_details":[{"id":1,"isbn":"9781234567897","author":"A","title":"T","summary":null,"cover_url":null,"status":true}]}`,
			string(resp.Raw))
	})

	t.Run("duplicate is a soft success", func(t *testing.T) {
		body := map[string]string{"isbn": "9781234567897", "title": "Other"}
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodPost, "/books", body, token))

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Book with the same ISBN already exists", resp.Body["message"])

		books, err := srv.service.List(context.Background())
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "T", books[0].Title)
	})

	t.Run("list contains the book", func(t *testing.T) {
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodGet, "/books", nil, token))

		require.Equal(t, http.StatusOK, resp.Code)
		books, ok := resp.Body["books"].([]any)
		require.True(t, ok)
		assert.Len(t, books, 1)
	})
}

func TestRouter_ISBNBoundaries(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.token(t)

	for _, isbn := range []string{"123456789012", "12345678901234", "978123456789X", "978-123456789"} {
		t.Run("lookup "+isbn, func(t *testing.T) {
			resp := srv.do(testutil.NewRequest(http.MethodGet, "/isbn/"+isbn, nil))
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, "Invalid ISBN format", resp.Body["error"])
		})

		t.Run("create "+isbn, func(t *testing.T) {
			resp := srv.do(testutil.NewRequestWithAuth(http.MethodPost, "/books", map[string]string{"isbn": isbn}, token))
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, "Invalid ISBN format", resp.Body["error"])
		})
	}

	t.Run("lookup miss is 404", func(t *testing.T) {
		resp := srv.do(testutil.NewRequest(http.MethodGet, "/isbn/0000000000000", nil))
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Book details not found", resp.Body["error"])
	})

	t.Run("create without isbn", func(t *testing.T) {
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodPost, "/books", map[string]string{"title": "T"}, token))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Invalid ISBN format", resp.Body["error"])
	})

	t.Run("create with long text fields", func(t *testing.T) {
		title := strings.Repeat("t", 101)
		body := map[string]string{"isbn": "9780000000019", "title": title, "cover_url": "https://covers.example/" + strings.Repeat("c", 300)}
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodPost, "/books", body, token))
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Book details saved successfully", resp.Body["message"])

		stored, err := srv.service.GetByISBN(context.Background(), "9780000000019")
		require.NoError(t, err)
		assert.Equal(t, title, stored.Title)
	})

	t.Run("create with numeric isbn", func(t *testing.T) {
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodPost, "/books", `{"isbn":1234567890123}`, token))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Invalid ISBN format", resp.Body["error"])
	})

	t.Run("create with malformed json", func(t *testing.T) {
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodPost, "/books", `{"isbn":`, token))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Invalid request body", resp.Body["error"])
	})
}

func TestRouter_TokenGate(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header"},
		{name: "wrong scheme", header: "Token " + testutil.GenerateTestToken(testutil.TestSecret)},
		{name: "garbage", header: "Bearer not-a-jwt"},
		{name: "wrong secret", header: "Bearer " + testutil.GenerateTestToken("other-secret")},
		{name: "expired", header: "Bearer " + testutil.GenerateExpiredToken(testutil.TestSecret)},
		{name: "foreign identity", header: "Bearer " + testutil.GenerateForeignIdentityToken(testutil.TestSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range []string{http.MethodGet, http.MethodPost} {
				var body any
				if method == http.MethodPost {
					body = map[string]string{"isbn": "9781234567897"}
				}
				r := testutil.NewRequest(method, "/books", body)
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}

				resp := srv.do(r)

				assert.Equal(t, http.StatusUnauthorized, resp.Code, method)
				assert.Equal(t, "Missing or invalid token", resp.Body["error"], method)
			}
		})
	}

	books, err := srv.service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestRouter_GenerateToken(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("wrong secret", func(t *testing.T) {
		resp := srv.do(testutil.NewRequest(http.MethodPost, "/generate_token", map[string]string{"secret_key": "wrong"}))
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "Invalid secret key", resp.Body["error"])
	})

	t.Run("non-string secret is a wrong secret", func(t *testing.T) {
		for _, body := range []string{`{"secret_key":12345}`, `{"secret_key":false}`, `{"secret_key":{}}`} {
			resp := srv.do(testutil.NewRequest(http.MethodPost, "/generate_token", body))
			assert.Equal(t, http.StatusUnauthorized, resp.Code, body)
			assert.Equal(t, "Invalid secret key", resp.Body["error"], body)
			assert.NotContains(t, resp.Body, "access_token", body)
		}
	})

	t.Run("issued token opens /books", func(t *testing.T) {
		resp := srv.do(testutil.NewRequestWithAuth(http.MethodGet, "/books", nil, srv.token(t)))
		assert.Equal(t, http.StatusOK, resp.Code)
	})
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, r := range []*http.Request{
		testutil.NewRequest(http.MethodDelete, "/books", nil),
		testutil.NewRequest(http.MethodPost, "/isbn/9781234567897", nil),
		testutil.NewRequest(http.MethodGet, "/generate_token", nil),
	} {
		resp := srv.do(r)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Code, r.Method+" "+r.URL.Path)
	}
}

func TestRouter_Probes(t *testing.T) {
	t.Run("healthz", func(t *testing.T) {
		srv := newTestServer(t, nil)
		resp := srv.do(testutil.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "ok", string(resp.Raw))
	})

	t.Run("readyz", func(t *testing.T) {
		srv := newTestServer(t, nil)
		resp := srv.do(testutil.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("readyz with store down", func(t *testing.T) {
		srv := newTestServer(t, func(d *apphttp.RouterDeps) {
			d.Store = fakePinger{err: errors.New("connection refused")}
		})
		resp := srv.do(testutil.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.do(testutil.NewRequest(http.MethodGet, "/isbn/9781234567897", nil))
	srv.do(testutil.NewRequest(http.MethodGet, "/isbn/9780000000002", nil))

	resp := srv.do(testutil.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	text := string(resp.Raw)
	assert.Contains(t, text, `library_http_requests_total{route="GET /isbn/{isbn}",status_code="404"} 2`)
	assert.NotContains(t, text, "9781234567897")
}

func TestRouter_Middleware(t *testing.T) {
	t.Run("request id and security headers", func(t *testing.T) {
		srv := newTestServer(t, nil)
		resp := srv.do(testutil.NewRequest(http.MethodGet, "/healthz", nil))
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("body too large", func(t *testing.T) {
		srv := newTestServer(t, func(d *apphttp.RouterDeps) { d.MaxBodyBytes = 16 })
		body := `{"secret_key":"` + strings.Repeat("x", 64) + `"}`
		resp := srv.do(testutil.NewRequest(http.MethodPost, "/generate_token", body))
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	})

	t.Run("rate limited", func(t *testing.T) {
		srv := newTestServer(t, func(d *apphttp.RouterDeps) {
			d.RateLimit = httpx.NewRateLimitMiddleware(0.001, 1)
		})
		first := srv.do(testutil.NewRequest(http.MethodGet, "/healthz", nil))
		second := srv.do(testutil.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		srv := newTestServer(t, func(d *apphttp.RouterDeps) { d.CORSOrigins = []string{"https://app.example"} })
		r := testutil.NewRequest(http.MethodOptions, "/books", nil)
		r.Header.Set("Origin", "https://app.example")
		resp := srv.do(r)
		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}
