/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetLogger(t *testing.T) {
	t.Cleanup(func() {
		_ = Close()
		Init(Options{Level: "info", Console: io.Discard})
	})
}

func lastJSONLine(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines in %s", path)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

func TestFileGetsStructuredJSON(t *testing.T) {
	resetLogger(t)
	path := filepath.Join(t.TempDir(), "pookalam.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", File: path, Console: &console})

	l := WithOperation(WithComponent("scene"), "regenerate")
	l.Info("sequence regenerated", slog.Int("points", 3276))
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	m := lastJSONLine(t, path)
	want := map[string]any{
		"app":       "pookalam",
		"component": "scene",
		"op":        "regenerate",
		"msg":       "sequence regenerated",
		"points":    float64(3276),
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %v, want %v", k, m[k], v)
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr: %v", m)
	}
	if !strings.Contains(console.String(), "[scene] sequence regenerated") {
		t.Fatalf("console copy missing: %q", console.String())
	}
}

func TestJSONConsoleFormat(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	Init(Options{Format: "JSON", Console: &buf})
	WithComponent("presets").Warn("store unavailable")
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("console is not json: %q", buf.String())
	}
	if m["level"] != "WARN" || m["component"] != "presets" {
		t.Fatalf("unexpected record: %v", m)
	}
}

func TestConsoleWriterOverride(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	Init(Options{Level: "info", Console: &buf})

	WithComponent("term").Info("frame loop started", slog.Int("fps", 30))
	WithComponent("term").Debug("hidden")
	out := buf.String()
	if !strings.Contains(out, "INF [term] frame loop started fps=30") {
		t.Fatalf("console line malformed: %q", out)
	}
	if strings.Contains(out, "app=") || strings.Contains(out, "ts_init") {
		t.Fatalf("static attrs leaked to console: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record passed an info logger: %q", out)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "TRUE")
	t.Setenv(EnvFile, "")
	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("PKL_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"debug-2": slog.LevelDebug - 2,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCloseWithoutFile(t *testing.T) {
	resetLogger(t)
	Init(Options{Console: io.Discard})
	if err := Close(); err != nil {
		t.Fatalf("close without file: %v", err)
	}
}
