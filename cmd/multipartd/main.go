// Command multipartd serves the profile upload API.
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

	"github.com/joho/godotenv"

	"github.com/tomasbasham/multipartenc"
	"github.com/tomasbasham/multipartenc/internal/server"
	"github.com/tomasbasham/multipartenc/internal/settings"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "multipartd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The .env file is optional.
	_ = godotenv.Load()

	cfg, err := settings.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stdout)

	srv, err := server.New(
		server.WithLogger(logger),
		server.WithDecoderOptions(multipartenc.WithConfig(cfg.Multipart)),
	)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("unknown_fields", cfg.Multipart.UnknownFields.String()),
			slog.Int64("part_limit", cfg.Multipart.PartLimit),
			slog.Int64("total_limit", cfg.Multipart.TotalLimit),
		)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
