package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"libraryapi/internal/auth"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	apphttp "libraryapi/internal/http"
	"libraryapi/internal/httpx"
	"libraryapi/internal/logger"
	"libraryapi/internal/metrics"
	"libraryapi/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Production: cfg.IsProduction(), Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := store.Open(nCtx, cfg, log)
	if err != nil {
		log.Error("cannot open book store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewCollector(reg)

	bookService := book.NewService(repo, log, rec)
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTTTL, log, rec)

	var rateLimit *httpx.RateLimitMiddleware
	if cfg.RateLimitRPS > 0 {
		rateLimit = httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := apphttp.NewRouter(apphttp.RouterDeps{
		Auth:           auth.NewHTTPHandler(authService, log),
		Books:          book.NewHTTPHandler(bookService, log),
		Store:          bookService,
		Secret:         cfg.JWTSecret,
		Log:            log,
		Metrics:        rec,
		MetricsHandler: metrics.Handler(reg),
		RateLimit:      rateLimit,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		CORSOrigins:    cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(serve(server, log))
	g.Go(shutdown(nCtx, gCtx, server, cfg.ShutdownTimeout, log))
	if rateLimit != nil {
		g.Go(func() error {
			rateLimit.Run(gCtx)
			return nil
		})
	}

	err = g.Wait()
	log.Info("api server stopped", zap.String("addr", cfg.Addr), zap.Error(err))
	return err
}

// serve runs the listener until Shutdown is called.
func serve(server *http.Server, log *zap.Logger) func() error {
	return func() error {
		log.Info("api server starting", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}
}

// shutdown waits for the group context and drains the server. A failed
// graceful shutdown is followed by a hard Close. It returns nil so that only
// serve decides the group error.
func shutdown(nCtx, gCtx context.Context, server *http.Server, timeout time.Duration, log *zap.Logger) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			log.Info("api server stopping. reason: requested to stop")
		} else {
			log.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := server.Shutdown(sCtx)
		switch {
		case err == nil, errors.Is(err, http.ErrServerClosed):
			log.Info("api server graceful shutdown succeeded")
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			log.Warn("api server graceful shutdown timed out")
		default:
			log.Error("api server graceful shutdown failed", zap.Error(err))
		}

		log.Warn("api server going to force shutdown", zap.Error(server.Close()))
		return nil
	}
}
