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
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"pookalam/internal/audio"
	"pookalam/internal/presets"
	"pookalam/internal/scene"
	"pookalam/internal/term"
	"pookalam/internal/ui"
)

// sessionConfig resolves config file, flags and an optional --preset into a
// scene setup. The returned store is nil when presets are unavailable.
func sessionConfig(ctx context.Context, a *app, name string, args []string) (scene.Config, presets.Store, error) {
	cfg := scene.ConfigFrom(a.cfg)
	fs, pf := newFlagSet(name, a.cfg, true)
	if err := parse(fs, args); err != nil {
		return cfg, nil, err
	}
	if err := pf.apply(&cfg); err != nil {
		return cfg, nil, err
	}

	var store presets.Store
	st, err := a.openStore(ctx)
	if err != nil {
		a.log.Warn("preset store unavailable", slog.Any("err", err))
	} else {
		store = st
	}
	if pf.preset != "" {
		if store == nil {
			return cfg, nil, err
		}
		p, err := store.Get(ctx, pf.preset)
		if err != nil {
			_ = store.Close()
			return cfg, nil, err
		}
		applyPreset(&cfg, p)
		a.log.Info("preset loaded", slog.String("name", p.Name))
	}
	return cfg, store, nil
}

// watchCrash lets crash reports autosave what sc is showing.
func watchCrash(a *app, sc *scene.Scene) {
	a.crash.Current = func() presets.Preset {
		r := sc.Request()
		return presets.Preset{Name: "autosave", Params: presets.FitParams(r.Params), Mode: r.Mode, Curve: r.Curve, CreatedAt: time.Now().UTC()}
	}
}

func runTUI(ctx context.Context, a *app, args []string) error {
	cfg, store, err := sessionConfig(ctx, a, "tui", args)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}
	cfg.Async = true
	sc := scene.New(cfg, nil, nil)
	watchCrash(a, sc)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	player := audio.New(a.cfg.General.Audio)
	defer player.Close()

	h := term.New(screen, sc, term.Options{
		FPS:        a.cfg.Animation.FPS,
		SpritePath: a.cfg.Sprite.Path,
		SpritePx:   a.cfg.Sprite.SizePx,
		Audio:      player,
		Presets:    store,
	})
	return h.Run(ctx)
}

func runUI(ctx context.Context, a *app, args []string) error {
	cfg, store, err := sessionConfig(ctx, a, "ui", args)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}
	cfg.Async = true
	sc := scene.New(cfg, nil, nil)
	watchCrash(a, sc)
	return ui.Run(ui.Options{
		Scene:      sc,
		Presets:    store,
		Audio:      audio.New(a.cfg.General.Audio),
		Crash:      a.crash,
		SpritePath: a.cfg.Sprite.Path,
		SpritePx:   a.cfg.Sprite.SizePx,
		FontPath:   a.cfg.View.FontPath,
		FontSize:   a.cfg.View.FontSize,
	})
}
