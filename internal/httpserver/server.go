package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cun0/firehose/internal/config"
	"github.com/cun0/firehose/internal/logging"
)

func Serve(cfg config.HTTPConfig, shutdownDeadline time.Duration, logger *logging.Logger, handler http.Handler, onShutdown func(context.Context) error) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		IdleTimeout:       60 * time.Second,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	shutdownError := make(chan error, 1)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()

		// Stop background workers first so the final drain happens while
		// the process is still healthy.
		if onShutdown != nil {
			if err := onShutdown(ctx); err != nil {
				logger.Error("shutdown hook failed", "error", err)
			}
		}

		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Wait for shutdown result.
	if err := <-shutdownError; err != nil {
		return err
	}

	logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
