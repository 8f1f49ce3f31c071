/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the process-wide slog logger: a compact console
// handler or JSON on the console, plus an optional rotating JSON file.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"
	"pookalam/internal/version"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "PKL_LOG_LEVEL"  // debug|info|warn|error
	EnvFormat = "PKL_LOG_FORMAT" // console|json
	EnvSource = "PKL_LOG_SOURCE" // true|false
	EnvFile   = "PKL_LOG_FILE"   // path; enables the rotating file
)

// Options controls Init.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string    // rotated JSON log file; empty disables it
	Console   io.Writer // nil means os.Stderr; the terminal host passes io.Discard
}

var (
	current atomic.Pointer[slog.Logger]
	initMu  sync.Mutex // serialises Init and Close
	file    *lj.Logger
)

// L returns the application logger, initialising it from the environment
// on first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return current.Load()
}

// Init replaces the application logger and slog's default. A previously
// opened log file is closed.
func Init(opts Options) {
	initMu.Lock()
	defer initMu.Unlock()

	lvl := parseLevel(opts.Level)
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	var handlers []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		handlers = append(handlers, slog.NewJSONHandler(console, hopts))
	} else {
		handlers = append(handlers, newConsoleHandler(console, lvl, opts.AddSource))
	}

	closeFileLocked()
	if path := strings.TrimSpace(opts.File); path != "" {
		file = &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		handlers = append(handlers, slog.NewJSONHandler(file, hopts))
	}

	var h slog.Handler = fanout(handlers)
	if len(handlers) == 1 {
		h = handlers[0]
	}
	l := slog.New(h).With(
		slog.String(keyApp, "pookalam"),
		slog.String(keyVersion, version.Version),
		slog.Time(keyInit, time.Now()),
	)
	current.Store(l)
	slog.SetDefault(l)
}

// Close flushes and closes the log file, if any. Later records still reach
// the console.
func Close() error {
	initMu.Lock()
	defer initMu.Unlock()
	return closeFileLocked()
}

func closeFileLocked() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// FromEnv builds Options from the PKL_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv(EnvLevel, "info"),
		Format:    getenv(EnvFormat, "console"),
		AddSource: strings.EqualFold(getenv(EnvSource, "false"), "true"),
		File:      os.Getenv(EnvFile),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger tagged with the subsystem name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String(keyComponent, name)) }

// WithOperation tags l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String(keyOp, op)) }

// parseLevel accepts slog level names in any case, "warning", and offsets
// such as "debug-2". Anything else is info.
func parseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
