package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"libraryapi/internal/auth"
	"libraryapi/internal/book"
	"libraryapi/internal/httpx"
	"libraryapi/internal/metrics"
)

const readinessTimeout = 500 * time.Millisecond

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	Auth    *auth.HTTPHandler
	Books   *book.HTTPHandler
	Store   Pinger
	Secret  string
	Log     *zap.Logger
	Metrics metrics.Recorder
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
	RateLimit      *httpx.RateLimitMiddleware
	MaxBodyBytes   int64
	CORSOrigins    []string
}

// NewRouter builds the route table and wraps it in the global middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := deps.Store.Ping(ctx); err != nil {
			log.Warn("readiness check failed", zap.Error(err))
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", deps.MetricsHandler)
	}

	mux.HandleFunc("POST /generate_token", deps.Auth.GenerateToken)
	mux.HandleFunc("GET /isbn/{isbn}", deps.Books.GetByISBN)

	requireToken := httpx.AuthMiddleware(deps.Secret, log)
	mux.Handle("GET /books", requireToken(http.HandlerFunc(deps.Books.List)))
	mux.Handle("POST /books", requireToken(http.HandlerFunc(deps.Books.Create)))

	mws := []httpx.Middleware{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(log, rec),
		httpx.RecoveryMiddleware(log),
		httpx.SecurityHeadersMiddleware,
	}
	if len(deps.CORSOrigins) > 0 {
		mws = append(mws, httpx.CORSMiddleware(deps.CORSOrigins))
	}
	if deps.MaxBodyBytes > 0 {
		mws = append(mws, httpx.RequestSizeLimitMiddleware(deps.MaxBodyBytes))
	}
	if deps.RateLimit != nil {
		mws = append(mws, deps.RateLimit.Middleware)
	}

	return httpx.Chain(mux, mws...)
}
