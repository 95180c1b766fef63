// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if ValidLevel("verbose") || !ValidLevel("") || !ValidLevel("Debug") {
		t.Errorf("ValidLevel disagrees with ParseLevel")
	}
}

func TestNewLoggerFiltering(t *testing.T) {
	tests := []struct {
		level      string
		logAtDebug bool
		logAtInfo  bool
	}{
		{"info", false, true},
		{"debug", true, true},
		{"trace", true, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := NewLogger(tt.level, &buf)
		logger.Debug("debug message")
		if has := strings.Contains(buf.String(), "debug message"); has != tt.logAtDebug {
			t.Errorf("%s: debug message visible = %v, want %v", tt.level, has, tt.logAtDebug)
		}
		buf.Reset()
		logger.Info("info message")
		if has := strings.Contains(buf.String(), "info message"); has != tt.logAtInfo {
			t.Errorf("%s: info message visible = %v, want %v", tt.level, has, tt.logAtInfo)
		}
	}
}

func TestTraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "step")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("trace level not labelled: %q", buf.String())
	}
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Errorf("Discard logger should not be enabled")
	}
}
