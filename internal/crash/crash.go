/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash recovers panics in the hosts, writes a crash report and
// autosaves the parameters the user was looking at.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "pookalam/internal/log"
	"pookalam/internal/presets"
	"pookalam/internal/telemetry"
	"pookalam/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Session describes where reports go and what to preserve.
type Session struct {
	// Dir receives crash reports and autosaves; empty means os.TempDir().
	Dir string
	// Current returns the parameters on screen. May be nil.
	Current func() presets.Preset
}

// Recover captures a panic, logs an error with stacktrace, writes an error
// report file and autosaves the current parameters as a preset file.
//
// Usage: defer crash.Recover(sess)
func Recover(sess *Session) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(sess, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}
		if path, err := Autosave(sess); err != nil {
			l.Error("autosave parameters failed", slog.Any("err", err))
		} else if path != "" {
			l.Info("autosave parameters written", slog.String("path", path))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

// Autosave writes the session's current parameters as a preset file next to
// the crash reports. It returns "" when there is nothing to save.
func Autosave(sess *Session) (string, error) {
	p, ok := current(sess)
	if !ok {
		return "", nil
	}
	if p.Name == "" {
		p.Name = "autosave"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	p.Params = presets.FitParams(p.Params)
	data, err := presets.Encode(p)
	if err != nil {
		return "", err
	}
	dir, err := reportDir(sess)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("autosave-%s.json", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return path, nil
}

func reportDir(sess *Session) (string, error) {
	if sess == nil || sess.Dir == "" {
		return os.TempDir(), nil
	}
	if err := os.MkdirAll(sess.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}
	return sess.Dir, nil
}

func writeReport(sess *Session, panicVal any, stack []byte) (string, error) {
	dir, err := reportDir(sess)
	if err != nil {
		dir = os.TempDir()
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Pookalam Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if p, ok := current(sess); ok {
		_, _ = fmt.Fprintf(&buf, "Mode: %s %s\n", p.Mode, p.Curve)
		_, _ = fmt.Fprintf(&buf, "Parameters: %s\n", p.Params)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	// optionally upload anonymized crash report (opt-in via env)
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

func current(sess *Session) (p presets.Preset, ok bool) {
	if sess == nil || sess.Current == nil {
		return p, false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return sess.Current(), true
}
