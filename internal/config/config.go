// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config is the process configuration for exclusionmsd: data
// directory, listen address, tolerance defaults and log level, loaded
// from flags with environment-variable fallbacks (the teacher's CLIs
// take everything from flags; a daemon additionally needs environment
// defaults so it can run under a process supervisor without a wrapper
// script).
package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/pgarrett-scripps/exclusionms-go/internal/optional"
	"github.com/pgarrett-scripps/exclusionms-go/internal/tolerance"
)

// Config is exclusionmsd's full process configuration.
type Config struct {
	// ListenAddr is the HTTP bind address, e.g. ":8080".
	ListenAddr string
	// DataDir holds one persisted store file per exid.
	DataDir string
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
	// DefaultTolerance seeds the feedback consumer's tolerance builder.
	DefaultTolerance tolerance.Config
	// WorkerPoolSize bounds the add-batch worker pool (§6).
	WorkerPoolSize int
	// FeedbackSource is a path to a newline-delimited JSON stream of PSM
	// records (see internal/feedback.PSM), "-" for stdin, or "" to
	// disable the feedback consumer entirely. The message-broker wiring
	// itself stays external (spec.md §1); this is the minimal decoded
	// form the consumer understands.
	FeedbackSource string
	// FeedbackUID scopes every interval id the feedback consumer derives
	// ("<uid>_<ms2_id>", matching the source's acquisition UID).
	FeedbackUID string
}

// Default returns the zero-offset, no-tolerance, info-logged default
// configuration.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		DataDir:        "./data",
		LogLevel:       "info",
		WorkerPoolSize: 4,
	}
}

// Parse builds a Config from command-line flags in args. The listen
// address, data directory, log level, worker count and feedback settings
// fall back to the EXCLUSIONMS_* environment variables and then Default()
// when their flag is not set. The tolerance flags have no environment
// variable; an unset tolerance is absent, and -default-exact-charge
// defaults to true.
func Parse(args []string) (Config, error) {
	d := Default()
	fs := flag.NewFlagSet("exclusionmsd", flag.ContinueOnError)

	listenAddr := fs.String("listen", envOr("EXCLUSIONMS_LISTEN", d.ListenAddr), "HTTP listen address")
	dataDir := fs.String("data-dir", envOr("EXCLUSIONMS_DATA_DIR", d.DataDir), "directory holding persisted store files")
	logLevel := fs.String("log-level", envOr("EXCLUSIONMS_LOG_LEVEL", d.LogLevel), "debug, info, warn, or error")
	workers := fs.Int("workers", envOrInt("EXCLUSIONMS_WORKERS", d.WorkerPoolSize), "worker pool size for batched interval adds")
	massPPM := fs.Float64("default-mass-ppm", 0, "default mass tolerance in ppm for the feedback consumer (0 disables)")
	rtTol := fs.Float64("default-rt-tolerance", 0, "default rt tolerance for the feedback consumer (0 disables)")
	ook0Tol := fs.Float64("default-ook0-tolerance", 0, "default relative ook0 tolerance for the feedback consumer (0 disables)")
	exactCharge := fs.Bool("default-exact-charge", true, "require exact charge match in feedback-derived intervals")
	feedbackSource := fs.String("feedback-source", envOr("EXCLUSIONMS_FEEDBACK_SOURCE", ""), "path to an NDJSON PSM feedback stream, or '-' for stdin (empty disables the feedback consumer)")
	feedbackUID := fs.String("feedback-uid", envOr("EXCLUSIONMS_FEEDBACK_UID", ""), "acquisition uid used to scope feedback-derived interval ids")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:     *listenAddr,
		DataDir:        *dataDir,
		LogLevel:       *logLevel,
		WorkerPoolSize: *workers,
		FeedbackSource: *feedbackSource,
		FeedbackUID:    *feedbackUID,
		DefaultTolerance: tolerance.Config{
			ExactCharge: *exactCharge,
		},
	}
	if *massPPM > 0 {
		cfg.DefaultTolerance.MassTolerancePPM = optional.OfFloat(*massPPM)
	}
	if *rtTol > 0 {
		cfg.DefaultTolerance.RTTolerance = optional.OfFloat(*rtTol)
	}
	if *ook0Tol > 0 {
		cfg.DefaultTolerance.OOK0Tolerance = optional.OfFloat(*ook0Tol)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
