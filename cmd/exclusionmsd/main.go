// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// exclusionmsd serves the exclusion store over HTTP: an in-memory,
// multi-dimensional interval index answering real-time exclusion
// decisions for data-dependent mass spectrometry acquisitions.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pgarrett-scripps/exclusionms-go/internal/api"
	"github.com/pgarrett-scripps/exclusionms-go/internal/config"
	"github.com/pgarrett-scripps/exclusionms-go/internal/feedback"
	"github.com/pgarrett-scripps/exclusionms-go/internal/offset"
	"github.com/pgarrett-scripps/exclusionms-go/internal/store"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", "dir", cfg.DataDir, "err", err)
		os.Exit(1)
	}

	s := store.New()
	reg := &offset.Register{}
	srv := api.NewServer(s, reg, cfg.DataDir, cfg.WorkerPoolSize, logger)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Routes(),
	}

	feedbackCtx, stopFeedback := context.WithCancel(context.Background())
	defer stopFeedback()
	if cfg.FeedbackSource != "" {
		messages, err := feedbackMessages(feedbackCtx, cfg.FeedbackSource, logger)
		if err != nil {
			logger.Error("failed to open feedback source", "source", cfg.FeedbackSource, "err", err)
			os.Exit(1)
		}
		consumer := &feedback.Consumer{
			Store:     s,
			UID:       cfg.FeedbackUID,
			Tolerance: cfg.DefaultTolerance,
			Log:       logger,
		}
		go consumer.Run(feedbackCtx, messages)
		logger.Info("feedback consumer started", "source", cfg.FeedbackSource, "uid", cfg.FeedbackUID)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "data_dir", cfg.DataDir)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		stopFeedback()
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server exited", "err", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		stopFeedback()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
			os.Exit(1)
		}
	}
}

// feedbackMessages opens source — a file path, or "-" for stdin — and
// starts a goroutine decoding one PSM per line of newline-delimited JSON,
// sending each onto the returned channel until ctx is cancelled or the
// source is exhausted. The channel is closed when the goroutine returns.
func feedbackMessages(ctx context.Context, source string, logger *slog.Logger) (<-chan feedback.PSM, error) {
	var r io.ReadCloser
	if source == "-" {
		r = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}

	out := make(chan feedback.PSM)
	go func() {
		defer close(out)
		defer r.Close()

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var psm feedback.PSM
			if err := json.Unmarshal(line, &psm); err != nil {
				logger.Error("feedback: malformed record, skipping", "err", err)
				continue
			}
			select {
			case out <- psm:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Error("feedback: source read error", "err", err)
		}
	}()
	return out, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
