/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package term runs the pookalam animation in a terminal using tcell. Pixels
// are drawn with upper-half-block glyphs, two vertical pixels per cell.
package term

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"pookalam/internal/anim"
	"pookalam/internal/audio"
	applog "pookalam/internal/log"
	"pookalam/internal/presets"
	"pookalam/internal/raster"
	"pookalam/internal/render"
	"pookalam/internal/scene"
	"pookalam/internal/view"
)

// DefaultFPS is used when Options.FPS is not positive.
const DefaultFPS = 30

// Options configures a Host.
type Options struct {
	FPS        int
	SpritePath string
	SpritePx   int
	// Audio receives phase transitions; nil is silent.
	Audio audio.Player
	// Presets, when set, enables saving the current parameters with 'p'.
	Presets presets.Store
	Log     *slog.Logger
}

// Host owns the screen and drives the scene from one goroutine.
type Host struct {
	screen tcell.Screen
	sc     *scene.Scene
	canvas *raster.Canvas
	opts   Options
	log    *slog.Logger

	dragging     bool
	lastX, lastY int

	sprite <-chan raster.SpriteResult
	notes  chan string
	status string
}

// New wires a host around an initialised screen.
func New(screen tcell.Screen, sc *scene.Scene, opts Options) *Host {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Audio == nil {
		opts.Audio = audio.Silent{}
	}
	if opts.Log == nil {
		opts.Log = applog.WithComponent("term")
	}
	h := &Host{
		screen: screen,
		sc:     sc,
		canvas: raster.NewCanvas(1, 1),
		opts:   opts,
		log:    opts.Log,
		notes:  make(chan string, 4),
	}
	sc.OnTransition(func(tr anim.Transition) { h.opts.Audio.Cue(tr) })
	if opts.SpritePath != "" {
		h.sprite = raster.LoadSpriteAsync(opts.SpritePath, opts.SpritePx)
	}
	return h
}

// Run polls input and redraws at the configured rate until the user quits
// or ctx is done. The caller owns screen.Init and screen.Fini.
func (h *Host) Run(ctx context.Context) error {
	h.screen.EnableMouse()
	h.screen.HideCursor()

	events := make(chan tcell.Event, 100)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(h.opts.FPS))
	defer ticker.Stop()

	h.log.Info("terminal host started", slog.Int("fps", h.opts.FPS))
	h.draw(h.sc.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !h.handle(ev) {
				h.log.Info("terminal host stopped")
				return nil
			}
		case res := <-h.sprite:
			h.sprite = nil
			h.adoptSprite(res)
		case note := <-h.notes:
			h.status = note
		case <-ticker.C:
			h.draw(h.sc.Now())
		}
	}
}

func (h *Host) adoptSprite(res raster.SpriteResult) {
	if res.Err != nil {
		h.log.Warn("sprite unavailable, using dot marker", slog.Any("err", res.Err))
		h.status = "sprite: " + res.Err.Error()
		return
	}
	h.sc.SetSprite(res.Image)
}

// layout returns the pixel surface size and the number of drawing rows; the
// last terminal row carries the status line.
func (h *Host) layout() (pw, ph, rows int) {
	w, ht := h.screen.Size()
	rows = max(ht-1, 1)
	return max(w, 1), rows * 2, rows
}

func (h *Host) viewport() view.Viewport {
	pw, ph, _ := h.layout()
	return h.sc.Viewport(float64(pw), float64(ph))
}

func (h *Host) draw(now time.Time) {
	pw, ph, rows := h.layout()
	if cw, ch := h.canvas.Size(); cw != pw || ch != ph {
		h.canvas.Resize(pw, ph)
	}
	h.sc.Tick(now)
	f := h.sc.Frame(h.viewport())
	// glyph text does not survive half-block scaling; the status row replaces it
	f.Options.ShowHUD = false
	f.Options.ShowLabels = false
	f.Options.LineWidth = 1
	f.Options.MarkerSize = min(f.Options.MarkerSize, 6)
	h.canvas.Draw(render.Render(f))
	Blit(h.screen, h.canvas.Image(), rows)

	line := render.HUD(f)
	if h.status != "" {
		line += "  " + h.status
	}
	_, ht := h.screen.Size()
	drawText(h.screen, 0, ht-1, line, tcell.StyleDefault.Reverse(true))
	h.screen.Show()
}

// handle applies one input event. It returns false to quit.
func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.key(ev)
	case *tcell.EventMouse:
		h.mouse(ev)
	case *tcell.EventResize:
		h.screen.Sync()
	}
	return true
}

func (h *Host) mouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	vp := h.viewport()
	btn := ev.Buttons()
	switch {
	case btn&tcell.WheelUp != 0:
		h.sc.ZoomAt(vp, surfacePt(x, y), 1)
	case btn&tcell.WheelDown != 0:
		h.sc.ZoomAt(vp, surfacePt(x, y), -1)
	case btn&tcell.Button1 != 0:
		if h.dragging {
			h.sc.Drag(vp, float64(x-h.lastX), float64(2*(y-h.lastY)))
		}
		h.dragging, h.lastX, h.lastY = true, x, y
	default:
		h.dragging = false
	}
}

func (h *Host) savePreset() {
	st := h.opts.Presets
	if st == nil {
		h.status = "presets disabled"
		return
	}
	req := h.sc.Request()
	p := presets.Preset{
		Name:   "tui-" + time.Now().Format("20060102-150405"),
		Params: presets.FitParams(req.Params),
		Mode:   req.Mode,
		Curve:  req.Curve,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		note := "saved " + p.Name
		if _, err := st.Save(ctx, p); err != nil {
			h.log.Error("save preset failed", slog.Any("err", err))
			note = fmt.Sprintf("save failed: %v", err)
		}
		select {
		case h.notes <- note:
		default:
		}
	}()
}
