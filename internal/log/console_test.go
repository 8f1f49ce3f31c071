/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerLevels(t *testing.T) {
	h := newConsoleHandler(&bytes.Buffer{}, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not pass a warn handler")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should pass a warn handler")
	}
	for l, want := range map[slog.Level]string{
		slog.LevelDebug - 4: "DBG",
		slog.LevelInfo:      "INF",
		slog.LevelWarn + 1:  "WRN",
		slog.LevelError + 4: "ERR",
	} {
		if got := levelTag(l); got != want {
			t.Fatalf("levelTag(%v) = %s, want %s", l, got, want)
		}
	}
}

func TestConsoleHandlerFormatting(t *testing.T) {
	var buf bytes.Buffer
	var h slog.Handler = newConsoleHandler(&buf, slog.LevelDebug, false)
	h = h.WithAttrs([]slog.Attr{slog.String("component", "scene"), slog.String("app", "pookalam"), slog.String("mode", "fractal")})
	h = h.WithGroup("gen")

	ts := time.Date(2024, 9, 15, 18, 4, 5, 6e6, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "sequence regenerated", 0)
	r.AddAttrs(
		slog.Int("points", 42),
		slog.Float64("density", 0.75),
		slog.Bool("sorted", true),
		slog.Duration("elapsed", 1500*time.Microsecond),
		slog.String("curve", "rose curve"),
		slog.Group("params", slog.Int("petals", 8)),
	)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	want := `18:04:05.006 INF [scene] sequence regenerated mode=fractal gen.points=42 gen.density=0.75 gen.sorted=true gen.elapsed=1.5ms gen.curve="rose curve" gen.params.petals=8` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("line mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestConsoleHandlerRecordComponentAndSource(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newConsoleHandler(&buf, slog.LevelInfo, true))
	l.Info("saved", "component", "presets", "name", "")
	out := buf.String()
	if !strings.Contains(out, "[presets] saved") || !strings.Contains(out, `name=""`) {
		t.Fatalf("unexpected line: %q", out)
	}
	if !strings.Contains(out, "src=console_test.go:") {
		t.Fatalf("source missing: %q", out)
	}
}
