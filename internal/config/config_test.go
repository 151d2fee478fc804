// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":8080" || cfg.DataDir != "./data" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, ok := cfg.DefaultTolerance.MassTolerancePPM.Get(); ok {
		t.Fatal("expected no default mass tolerance when unset")
	}
}

func TestParseFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Parse([]string{"-listen", ":9000", "-data-dir", "/tmp/exms", "-default-mass-ppm", "10"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":9000" || cfg.DataDir != "/tmp/exms" {
		t.Fatalf("flags did not override: %+v", cfg)
	}
	ppm, ok := cfg.DefaultTolerance.MassTolerancePPM.Get()
	if !ok || ppm != 10 {
		t.Fatalf("expected mass tolerance 10, got %v present=%v", ppm, ok)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("EXCLUSIONMS_LISTEN", ":7000")
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":7000" {
		t.Fatalf("expected env override, got %v", cfg.ListenAddr)
	}
}
