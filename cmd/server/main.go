// Command server runs the complaint email drafting service.
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

	"github.com/haowjy/complaint-mailer/drafter"
	"github.com/haowjy/complaint-mailer/internal/config"
	"github.com/haowjy/complaint-mailer/internal/logger"
	"github.com/haowjy/complaint-mailer/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging configuration: %v\n", err)
		os.Exit(1)
	}

	// A generator that fails to build does not stop the process: the
	// draft endpoint reports it on every request instead.
	generator, opts, genErr := buildGenerator(cfg)
	if genErr != nil {
		logger.Error("LLM client unavailable", "error", genErr)
	} else {
		logger.Info("LLM client ready", "provider", opts.Provider, "model", opts.Model)
	}
	opts.CORSOrigins = cfg.CORSOrigins
	opts.RequestTimeout = cfg.RequestTimeout

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(generator, genErr, opts),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

// buildGenerator returns a nil generator together with the reason when the
// model client cannot be built.
func buildGenerator(cfg *config.Config) (drafter.Generator, server.Options, error) {
	opts := server.Options{Provider: cfg.LLMProvider, Model: cfg.LLMModel}

	dc, err := cfg.Drafter()
	if err != nil {
		return nil, opts, err
	}

	client, err := drafter.NewClient(dc)
	if err != nil {
		return nil, opts, err
	}

	for _, w := range client.Warnings() {
		logger.Warn("model catalogue", "warning", w)
	}

	opts.Provider = client.Provider().String()
	opts.Model = client.Model()
	return client, opts, nil
}
