//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"pookalam/internal/anim"
	"pookalam/internal/audio"
	"pookalam/internal/crash"
	"pookalam/internal/domain"
	applog "pookalam/internal/log"
	"pookalam/internal/presets"
	"pookalam/internal/raster"
	"pookalam/internal/sampler"
	"pookalam/internal/scene"
	"pookalam/internal/version"
)

// styleSliderMax bounds the style slider; larger seeds are reachable via presets.
const styleSliderMax = 999

// Run starts the Fyne-based desktop UI.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")
	defer crash.Recover(opts.Crash)

	sc := opts.Scene
	if sc == nil {
		return errors.New("ui: no scene")
	}
	player := opts.Audio
	if player == nil {
		player = audio.Silent{}
	}
	defer player.Close()
	sc.OnTransition(player.Cue)

	fyneApp := app.NewWithID("pookalam")
	w := fyneApp.NewWindow("Pookalam")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1200), 640)
	winH := max(prefs.IntWithFallback("window.height", 800), 480)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	hud := widget.NewLabel("")
	pc := NewPookalamCanvas(sc)
	pc.OnFrame = func(s string) { hud.SetText(s) }
	if err := pc.SetFace(opts.FontPath, opts.FontSize); err != nil {
		l.Warn("font unavailable, using built-in face", slog.Any("err", err))
	}

	if opts.SpritePath != "" {
		go func() {
			res := <-raster.LoadSpriteAsync(opts.SpritePath, opts.SpritePx)
			fyne.Do(func() {
				if res.Err != nil {
					l.Warn("sprite unavailable, using dot marker", slog.Any("err", res.Err))
					status.SetText("Sprite unavailable: " + res.Err.Error())
					return
				}
				sc.SetSprite(res.Image)
			})
		}()
	}

	// Parameter sliders
	sliders := make(map[scene.Param]*widget.Slider)
	var paramRows []fyne.CanvasObject
	for i, r := range scene.Ranges {
		which := scene.Param(i)
		hi := r.Max
		if which == scene.ParamStyle {
			hi = styleSliderMax
		}
		s := widget.NewSlider(r.Min, hi)
		s.Step = r.Step
		s.Value = scene.Get(sc.Params(), which)
		val := widget.NewLabel(fmt.Sprintf("%g", s.Value))
		s.OnChanged = func(v float64) { val.SetText(fmt.Sprintf("%g", v)) }
		s.OnChangeEnded = func(v float64) {
			sc.SetParameters(scene.Set(sc.Params(), which, v))
			l.Debug("parameter changed", slog.String("param", which.String()), slog.Float64("value", v))
		}
		sliders[which] = s
		paramRows = append(paramRows, widget.NewLabel(r.Name), container.NewBorder(nil, nil, nil, val, s))
	}
	syncSliders := func() {
		p := sc.Params()
		for which, s := range sliders {
			s.SetValue(scene.Get(p, which))
		}
	}

	speed := widget.NewSlider(anim.MinSpeed, anim.MaxSpeed)
	speed.Step = 0.1
	speed.Value = sc.Speed()
	speed.OnChanged = func(v float64) { sc.SetSpeed(v) }

	// Mode and curve
	curveSel := widget.NewSelect(nil, nil)
	modeNames := make([]string, 0, 4)
	for _, m := range domain.Modes() {
		modeNames = append(modeNames, m.String())
	}
	modeSel := widget.NewSelect(modeNames, nil)
	setCurves := func(m domain.Mode, selected string) {
		curveSel.OnChanged = nil
		curveSel.Options = sampler.CurveNames(m)
		if m == domain.ModeFractal {
			curveSel.Disable()
			curveSel.ClearSelected()
		} else {
			curveSel.Enable()
			curveSel.SetSelected(selected)
		}
		curveSel.OnChanged = func(name string) {
			if name != "" {
				sc.SetMode(m, name)
			}
		}
		curveSel.Refresh()
	}
	req := sc.Request()
	modeSel.SetSelected(req.Mode.String())
	setCurves(req.Mode, req.Curve)
	onMode := func(name string) {
		m, err := domain.ParseMode(name)
		if err != nil {
			return
		}
		sc.SetMode(m, "")
		setCurves(m, sc.Request().Curve)
		status.SetText("Mode: " + name)
	}
	modeSel.OnChanged = onMode
	depth := widget.NewCheck("Depth sort", nil)
	depth.SetChecked(req.DepthSort)
	depth.OnChanged = func(on bool) { sc.SetDepthSort(on) }

	// Transport
	var playBtn *widget.Button
	playBtn = widget.NewButton("Pause", func() {
		if sc.TogglePlay() {
			playBtn.SetText("Pause")
		} else {
			playBtn.SetText("Play")
		}
	})
	resetBtn := widget.NewButton("Reset", func() { sc.Reset() })
	resetViewBtn := widget.NewButton("Reset View", func() { sc.ResetView() })

	// syncWidgets shows a request that did not come from the widgets.
	syncWidgets := func() {
		syncSliders()
		r := sc.Request()
		modeSel.OnChanged = nil
		modeSel.SetSelected(r.Mode.String())
		modeSel.OnChanged = onMode
		setCurves(r.Mode, r.Curve)
		depth.OnChanged = nil
		depth.SetChecked(r.DepthSort)
		depth.OnChanged = func(on bool) { sc.SetDepthSort(on) }
	}

	// Presets
	presetBox := presetControls(opts.Presets, sc, w, status, l, syncWidgets)

	side := container.NewVBox(
		widget.NewLabelWithStyle("Pattern", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2, widget.NewLabel("mode"), modeSel, widget.NewLabel("curve"), curveSel),
		depth,
		container.NewGridWithColumns(2, paramRows...),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Animation", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2, widget.NewLabel("speed"), speed),
		container.NewGridWithColumns(3, playBtn, resetBtn, resetViewBtn),
		widget.NewSeparator(),
		presetBox,
	)
	bottom := container.NewBorder(nil, nil, status, nil, hud)
	split := container.NewHSplit(pc, container.NewVScroll(side))
	split.SetOffset(0.72)
	w.SetContent(container.NewBorder(nil, bottom, nil, nil, split))

	aboutItem := fyne.NewMenuItem("About Pookalam", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("Pookalam\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe)
		dialog.ShowInformation("About", info, w)
	})
	w.SetMainMenu(fyne.NewMainMenu(fyne.NewMenu("Help", aboutItem)))

	// Persist preferences on close
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		pc.Stop()
		w.Close()
	})

	pc.Start()
	w.ShowAndRun()
	return nil
}

// presetControls builds the save/load panel. Store calls run off the main
// goroutine; results come back through fyne.Do.
func presetControls(st presets.Store, sc *scene.Scene, w fyne.Window, status *widget.Label, l *slog.Logger, applied func()) fyne.CanvasObject {
	title := widget.NewLabelWithStyle("Presets", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	if st == nil {
		return container.NewVBox(title, widget.NewLabel("Preset store not configured."))
	}
	name := widget.NewEntry()
	name.SetPlaceHolder("preset name")
	list := widget.NewSelect(nil, nil)

	refresh := func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			ps, err := st.List(ctx)
			fyne.Do(func() {
				if err != nil {
					l.Error("list presets failed", slog.Any("err", err))
					status.SetText("Listing presets failed.")
					return
				}
				names := make([]string, 0, len(ps))
				for _, p := range ps {
					names = append(names, p.Name)
				}
				list.Options = names
				list.Refresh()
			})
		}()
	}

	save := widget.NewButton("Save", func() {
		n := strings.TrimSpace(name.Text)
		if n == "" {
			dialog.ShowError(errors.New("enter a preset name"), w)
			return
		}
		r := sc.Request()
		p := presets.Preset{Name: n, Params: presets.FitParams(r.Params), Mode: r.Mode, Curve: r.Curve}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_, err := st.Save(ctx, p)
			fyne.Do(func() {
				if err != nil {
					l.Error("save preset failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Saved preset " + n)
				refresh()
			})
		}()
	})

	load := widget.NewButton("Load", func() {
		n := list.Selected
		if n == "" {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			p, err := st.Get(ctx, n)
			fyne.Do(func() {
				if err != nil {
					l.Error("load preset failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					return
				}
				sc.SetMode(p.Mode, p.Curve)
				sc.SetParameters(p.Params)
				applied()
				status.SetText("Loaded preset " + n)
			})
		}()
	})

	refresh()
	return container.NewVBox(title,
		container.NewBorder(nil, nil, nil, save, name),
		container.NewBorder(nil, nil, nil, load, list),
	)
}
