/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"pookalam/internal/config"
	"pookalam/internal/crash"
	applog "pookalam/internal/log"
	"pookalam/internal/presets"
	"pookalam/internal/telemetry"
	"pookalam/internal/version"
)

func usage() {
	fmt.Println("Pookalam: animated festival mandalas")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pookalam version|-v|--version             Show version")
	fmt.Println("  pookalam tui [--preset NAME] [flags]       Animate in the terminal")
	fmt.Println("  pookalam ui [--preset NAME] [flags]        Launch desktop UI (build with -tags fyne)")
	fmt.Println("  pookalam inspect [flags]                   Print what a parameter set generates")
	fmt.Println("  pookalam preset list                       List saved presets")
	fmt.Println("  pookalam preset show NAME                  Print a preset as JSON")
	fmt.Println("  pookalam preset save NAME [flags]          Save parameters under NAME")
	fmt.Println("  pookalam preset delete NAME                Delete a preset")
	fmt.Println("  pookalam preset import FILE                Import a preset JSON file")
	fmt.Println()
	fmt.Println("Parameter flags: --size --density --petals --style --complexity --symmetry --mode --curve")
}

// app is the per-invocation environment shared by the subcommands.
type app struct {
	cfg    config.AppConfig
	secret string
	log    *slog.Logger
	crash  *crash.Session
}

// setup loads config, initialises logging and telemetry. console receives
// log records; the terminal host passes io.Discard.
func setup(console io.Writer) *app {
	cfg, secret, err := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   console,
	})
	l := applog.WithComponent("cli")
	if err != nil {
		l.Warn("config unavailable, using defaults", slog.Any("err", err))
	}
	telemetry.NewDefault(telemetry.FromEnv().WithOptIn(cfg.General.TelemetryOptIn))

	sess := &crash.Session{}
	if dir, err := config.DataDir(); err == nil {
		sess.Dir = filepath.Join(dir, "crashes")
	}
	return &app{cfg: cfg, secret: secret, log: l, crash: sess}
}

// openStore opens the configured preset store.
func (a *app) openStore(ctx context.Context) (*presets.SQLStore, error) {
	pc := a.cfg.Presets
	target := pc.Path
	if pc.Driver == presets.DriverPostgres {
		target = pc.DSN
	} else if target == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		target = filepath.Join(dir, "presets.sqlite")
	}
	return presets.Open(ctx, pc.Driver, target, a.secret)
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	args := os.Args
	if len(args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Pookalam")
		fmt.Println(version.String())
		return
	case "tui":
		a := setup(io.Discard)
		defer crash.Recover(a.crash)
		if err := runTUI(ctx, a, args[2:]); err != nil {
			fail(a.log, "tui failed", err)
		}
	case "ui":
		a := setup(nil)
		defer crash.Recover(a.crash)
		if err := runUI(ctx, a, args[2:]); err != nil {
			fail(a.log, "ui failed", err)
		}
	case "inspect":
		a := setup(nil)
		defer crash.Recover(a.crash)
		if err := runInspect(os.Stdout, a, args[2:]); err != nil {
			fail(a.log, "inspect failed", err)
		}
	case "preset", "presets":
		a := setup(nil)
		defer crash.Recover(a.crash)
		if err := runPreset(ctx, os.Stdout, a, args[2:]); err != nil {
			fail(a.log, "preset command failed", err)
		}
	default:
		usage()
		os.Exit(2)
	}
	telemetry.Flush(ctx)
	_ = applog.Close()
}
