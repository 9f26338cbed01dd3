package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/reviewgate/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/reviewgate/internal/adapter/driving/http"
	"github.com/ericfisherdev/reviewgate/internal/application"
	"github.com/ericfisherdev/reviewgate/internal/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation API and Prometheus metrics",
		Long: `Start an HTTP server exposing the evaluation API under /api/v1 and
Prometheus metrics under /metrics. Evaluation endpoints are disabled when
REVIEWGATE_GITHUB_TOKEN is not set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"review_timeout", cfg.ReviewTimeout,
		"poll_interval", cfg.PollInterval,
		"autopilot", cfg.AutopilotMode,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode, migrated).
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	// 4. Wire adapters.
	signatureStore := sqliteadapter.NewSignatureRepo(db)
	evaluationStore := sqliteadapter.NewEvaluationRepo(db)
	trackingStore := sqliteadapter.NewTrackingRepo(db)
	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	// 5. Create the pipeline (nil if no credentials configured).
	var pipeline *application.Pipeline
	if client := newGitHubClient(cfg); client != nil {
		pipeline = application.NewPipeline(client, signatureStore, evaluationStore, trackingStore, recorder, cfg.Engine())
		slog.Info("github client created")
	} else {
		slog.Info("no github token configured, evaluation endpoints disabled")
	}

	// 6. Create HTTP handler with middleware.
	apiHandler := httphandler.NewHandler(pipeline, evaluationStore, signatureStore, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, promhttp.Handler(), slog.Default())

	// Evaluation requests block for up to the review timeout.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ReviewTimeout + time.Minute,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 8. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
