// Command server runs the asynchronous PDF extraction API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfextract/internal/api"
	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/extract"
	"github.com/dgallion1/pdfextract/internal/ocr"
	"github.com/dgallion1/pdfextract/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Load(), log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ex, err := extract.FromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize extractor: %w", err)
	}

	orch := pipeline.NewOrchestrator(cfg, ex, log)
	orch.Start(context.WithoutCancel(ctx))
	defer orch.Stop()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, ex.Stats(), log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting pdfextract",
			"port", cfg.Port,
			"workers", cfg.WorkerCount,
			"page_workers", cfg.PageWorkers,
			"renderer", cfg.Renderer,
			"ocr", ocr.Enabled,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Stop taking uploads before the deferred orch.Stop cancels running jobs.
	return httpServer.Shutdown(shutdownCtx)
}
