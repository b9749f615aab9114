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

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/opentracing/opentracing-go"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/abhishek622/moviestream/internal/controller/auth"
	"github.com/abhishek622/moviestream/internal/controller/catalog"
	datagateway "github.com/abhishek622/moviestream/internal/gateway/data/http"
	identitygateway "github.com/abhishek622/moviestream/internal/gateway/identity/http"
	httphandler "github.com/abhishek622/moviestream/internal/handler/http"
	"github.com/abhishek622/moviestream/internal/httputil"
	"github.com/abhishek622/moviestream/pkg/logging"
	"github.com/abhishek622/moviestream/pkg/metrics"
	"github.com/abhishek622/moviestream/pkg/tracing"
)

const serviceName = "moviestream"

func main() {
	cfg, err := loadConfig(afero.NewOsFs(), "configs/default.yaml", os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("Starting the moviestream service", zap.Int("port", cfg.API.Port))

	tracer, tracerCloser, err := tracing.NewTracer(serviceName, cfg.Jaeger, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Jaeger tracer", zap.Error(err))
	}
	defer tracerCloser.Close()
	opentracing.SetGlobalTracer(tracer)

	scope, scopeCloser, metricsHandler := metrics.New(cfg.Metrics.Prefix, cfg.Metrics.ReportInterval)
	defer scopeCloser.Close()

	client := httputil.NewClient(cfg.Supabase.Timeout)
	data := datagateway.New(cfg.Supabase.URL, cfg.Supabase.AnonKey, client)
	identity := identitygateway.New(cfg.Supabase.URL, cfg.Supabase.AnonKey, client)

	jwtSecret := []byte(cfg.Supabase.JWTSecret)
	tokens := auth.NewTokenParser(func() []byte { return jwtSecret })
	if len(jwtSecret) == 0 {
		logger.Warn("No JWT secret configured, access tokens are decoded without signature checks")
	}

	store := sessions.NewCookieStore([]byte(cfg.Session.Secret), []byte(cfg.Session.BlockKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	h := httphandler.New(catalog.New(data, logger), data, identity, store,
		httphandler.WithLogger(logger),
		httphandler.WithMetrics(scope),
		httphandler.WithTokenParser(tokens))

	router := chi.NewRouter()
	router.Handle("/metrics", metricsHandler)
	router.Mount("/", h.Routes())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("Received signal, attempting graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down the HTTP server", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to serve HTTP", zap.Error(err))
	}
	logger.Info("Gracefully stopped the HTTP server")
}
