/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package term

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"pookalam/internal/anim"
	"pookalam/internal/presets"
	"pookalam/internal/scene"
)

var epoch = time.Date(2024, 9, 15, 18, 0, 0, 0, time.UTC)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newHost(t *testing.T, opts Options) (*Host, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 25)
	cfg := scene.DefaultConfig()
	cfg.Resolution = 0.05
	sc := scene.New(cfg, anim.NewManualClock(epoch), quiet())
	opts.Log = quiet()
	return New(screen, sc, opts), screen
}

func key(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestBlitHalfBlocks(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(2, 2)

	img := image.NewRGBA(image.Rect(0, 0, 2, 4))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	Blit(screen, img, 2)

	r, _, style, _ := screen.GetContent(0, 0)
	if r != upperHalf {
		t.Fatalf("cell rune = %q", r)
	}
	fg, bg, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) || bg != tcell.NewRGBColor(0, 0, 255) {
		t.Fatalf("cell colours fg=%v bg=%v", fg, bg)
	}
	_, _, style, _ = screen.GetContent(1, 1)
	if fg, _, _ := style.Decompose(); fg != tcell.NewRGBColor(0, 0, 0) {
		t.Fatalf("untouched pixel should be black, got %v", fg)
	}
}

func TestParameterKeys(t *testing.T) {
	h, _ := newHost(t, Options{})
	before := h.sc.Params()
	for _, r := range "]]}CDs" {
		if !h.handle(key(r)) {
			t.Fatalf("key %q should not quit", r)
		}
	}
	p := h.sc.Params()
	if p.Petals != before.Petals+2 || p.Style != before.Style+1 {
		t.Fatalf("petals/style not stepped: %+v", p)
	}
	if p.Complexity <= before.Complexity || p.Density <= before.Density || p.Symmetry >= before.Symmetry {
		t.Fatalf("complexity/density/symmetry not stepped: %+v", p)
	}
	if !strings.HasPrefix(h.status, "symmetry=") {
		t.Fatalf("status = %q", h.status)
	}
}

func TestTransportKeys(t *testing.T) {
	h, _ := newHost(t, Options{})
	h.handle(key(' '))
	if h.sc.State().Running {
		t.Fatalf("space should pause")
	}
	h.handle(key(' '))
	if !h.sc.State().Running {
		t.Fatalf("space should resume")
	}
	speed := h.sc.Speed()
	h.handle(key('+'))
	if h.sc.Speed() <= speed {
		t.Fatalf("+ should raise speed")
	}
	h.handle(key('-'))
	h.handle(key('-'))
	if h.sc.Speed() >= speed {
		t.Fatalf("- should lower speed")
	}
	h.handle(key('m'))
	if h.sc.Request().Mode.String() != "function" {
		t.Fatalf("m should cycle mode, got %s", h.sc.Request().Mode)
	}
	h.handle(key('o'))
	if h.sc.Request().DepthSort {
		t.Fatalf("o should toggle depth sort off")
	}
}

func TestQuitKeys(t *testing.T) {
	h, _ := newHost(t, Options{})
	if h.handle(key('q')) {
		t.Fatalf("q should quit")
	}
	if h.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatalf("Esc should quit")
	}
	if !h.handle(tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone)) {
		t.Fatalf("unbound keys are ignored")
	}
}

func TestMouseDragAndWheel(t *testing.T) {
	h, _ := newHost(t, Options{})
	h.handle(tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone))
	h.handle(tcell.NewEventMouse(14, 3, tcell.Button1, tcell.ModNone))
	h.handle(tcell.NewEventMouse(14, 3, tcell.ButtonNone, tcell.ModNone))
	v := h.sc.View()
	if v.Offset.X <= 0 || v.Offset.Y <= 0 {
		t.Fatalf("drag right/up should move the pattern right/up, offset %+v", v.Offset)
	}
	// a move without the button held is not a drag
	h.handle(tcell.NewEventMouse(30, 10, tcell.ButtonNone, tcell.ModNone))
	if h.sc.View().Offset != v.Offset {
		t.Fatalf("released mouse must not pan")
	}

	h.handle(tcell.NewEventMouse(40, 12, tcell.WheelUp, tcell.ModNone))
	if h.sc.View().Zoom <= 1 {
		t.Fatalf("wheel up should zoom in, zoom %v", h.sc.View().Zoom)
	}
	h.handle(key('0'))
	if h.sc.View().Zoom != 1 || h.sc.View().Offset.X != 0 {
		t.Fatalf("0 should reset the view")
	}
	h.handle(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	if h.sc.View().Offset.X <= 0 {
		t.Fatalf("left arrow should pan")
	}
}

func TestRunDrawsAndQuits(t *testing.T) {
	h, screen := newHost(t, Options{FPS: 60})
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-ctx.Done():
		t.Fatalf("Run did not stop on q")
	}

	_, ht := screen.Size()
	var status strings.Builder
	for x := 0; x < 7; x++ {
		r, _, _, _ := screen.GetContent(x, ht-1)
		status.WriteRune(r)
	}
	if status.String() != "fractal" {
		t.Fatalf("status row = %q", status.String())
	}
	if r, _, _, _ := screen.GetContent(40, 12); r != upperHalf {
		t.Fatalf("drawing area should hold half blocks, got %q", r)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	h, _ := newHost(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestMissingSpriteFallsBack(t *testing.T) {
	h, _ := newHost(t, Options{SpritePath: filepath.Join(t.TempDir(), "missing.png")})
	h.adoptSprite(<-h.sprite)
	if !strings.HasPrefix(h.status, "sprite:") {
		t.Fatalf("status = %q", h.status)
	}
	h.draw(h.sc.Now())
}

func TestSavePreset(t *testing.T) {
	ctx := context.Background()
	st, err := presets.OpenSQLite(ctx, filepath.Join(t.TempDir(), "p.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = st.Close() }()

	h, _ := newHost(t, Options{Presets: st})
	h.handle(key('p'))
	select {
	case note := <-h.notes:
		if !strings.HasPrefix(note, "saved tui-") {
			t.Fatalf("note = %q", note)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("preset save did not report back")
	}
	list, err := st.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}

	h2, _ := newHost(t, Options{})
	h2.handle(key('p'))
	if h2.status != "presets disabled" {
		t.Fatalf("status = %q", h2.status)
	}
}
