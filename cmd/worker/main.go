package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/walterneylp/process-doc/internal/bootstrap"
	"github.com/walterneylp/process-doc/internal/config"
	"github.com/walterneylp/process-doc/internal/core/domain"
	"github.com/walterneylp/process-doc/internal/core/ports"
	"github.com/walterneylp/process-doc/internal/observability/logging"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: app.Metrics.Handler(),
	}
	go func() {
		slog.Info("metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	handlers := ports.QueueHandlers{
		MailFetched: func(handlerCtx context.Context, payload []byte) error {
			var fetched domain.FetchedEmail
			if err := json.Unmarshal(payload, &fetched); err != nil {
				return fmt.Errorf("decode fetched email: %w", err)
			}
			ingestCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
			defer cancel()
			_, err := app.IngestUC.Ingest(ingestCtx, fetched)
			return err
		},
		EmailReceived: func(handlerCtx context.Context, emailID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
			defer cancel()
			return app.EmailUC.ProcessEmail(processCtx, emailID)
		},
		DocumentQueued: func(handlerCtx context.Context, documentID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
			defer cancel()

			app.Metrics.StartDocument()
			start := time.Now()
			err := app.ProcessUC.ProcessDocument(processCtx, documentID)
			app.Metrics.FinishDocument(time.Since(start), err)
			return err
		},
	}

	slog.Info("worker_subscribed",
		"mail_fetched", cfg.NATSSubjectMailFetched,
		"email_received", cfg.NATSSubjectEmailReceived,
		"document_queued", cfg.NATSSubjectDocumentQueued,
	)
	if err := app.Queue.Subscribe(ctx, handlers); err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
