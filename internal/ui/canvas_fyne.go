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
	"image"
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"pookalam/internal/raster"
	"pookalam/internal/render"
	"pookalam/internal/scene"
	"pookalam/internal/vector"
	"pookalam/internal/view"
)

// PookalamCanvas shows the animated pattern. Drag pans, the wheel zooms at
// the cursor. All methods run on the fyne main goroutine, which is the
// scene's frame loop.
type PookalamCanvas struct {
	widget.BaseWidget

	sc     *scene.Scene
	canvas *raster.Canvas
	raster *canvas.Raster
	anim   *fyne.Animation

	// pixels per fyne unit of the last drawn frame
	pxPerUnit float64
	// OnFrame receives the HUD line after every tick.
	OnFrame func(hud string)
}

// NewPookalamCanvas wraps sc in a widget.
func NewPookalamCanvas(sc *scene.Scene) *PookalamCanvas {
	pc := &PookalamCanvas{sc: sc, canvas: raster.NewCanvas(1, 1), pxPerUnit: 1}
	pc.raster = canvas.NewRaster(pc.draw)
	pc.ExtendBaseWidget(pc)
	return pc
}

// SetFace selects the label/HUD font.
func (p *PookalamCanvas) SetFace(path string, size float64) error {
	face, err := raster.LoadFace(path, size)
	if err != nil {
		return err
	}
	p.canvas.SetFace(face)
	return nil
}

// Start drives the scene from a repeating fyne animation.
func (p *PookalamCanvas) Start() {
	if p.anim != nil {
		return
	}
	p.anim = fyne.NewAnimation(time.Second, func(float32) { p.Tick(p.sc.Now()) })
	p.anim.RepeatCount = fyne.AnimationRepeatForever
	p.anim.Curve = fyne.AnimationLinear
	p.anim.Start()
}

// Stop halts the animation driver.
func (p *PookalamCanvas) Stop() {
	if p.anim != nil {
		p.anim.Stop()
		p.anim = nil
	}
}

// Tick advances the scene and schedules a repaint.
func (p *PookalamCanvas) Tick(now time.Time) {
	p.sc.Tick(now)
	p.raster.Refresh()
	if p.OnFrame != nil {
		p.OnFrame(render.HUD(p.sc.Frame(p.viewport())))
	}
}

func (p *PookalamCanvas) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if cw, ch := p.canvas.Size(); cw != w || ch != h {
		p.canvas.Resize(w, h)
	}
	if sz := p.Size(); sz.Width > 0 {
		p.pxPerUnit = float64(w) / float64(sz.Width)
	}
	vp := p.sc.Viewport(float64(w), float64(h))
	p.canvas.Draw(render.Render(p.sc.Frame(vp)))
	return p.canvas.Image()
}

func (p *PookalamCanvas) viewport() view.Viewport {
	w, h := p.canvas.Size()
	return p.sc.Viewport(float64(w), float64(h))
}

func (p *PookalamCanvas) toPixels(pos fyne.Position) vector.Pt {
	return vector.Pt{X: float64(pos.X) * p.pxPerUnit, Y: float64(pos.Y) * p.pxPerUnit}
}

// Dragged pans the view.
func (p *PookalamCanvas) Dragged(e *fyne.DragEvent) {
	k := p.pxPerUnit
	p.sc.Drag(p.viewport(), float64(e.Dragged.DX)*k, float64(e.Dragged.DY)*k)
	p.raster.Refresh()
}

func (p *PookalamCanvas) DragEnd() {}

// Scrolled zooms around the cursor, one step per wheel notch.
func (p *PookalamCanvas) Scrolled(e *fyne.ScrollEvent) {
	dy := float64(e.Scrolled.DY)
	if dy == 0 {
		return
	}
	// fyne reports roughly 10 units per notch on most drivers
	notches := math.Copysign(math.Max(1, math.Abs(dy)/10), dy)
	p.sc.ZoomAt(p.viewport(), p.toPixels(e.Position), notches)
	p.raster.Refresh()
}

// MinSize keeps the drawing usable in small windows.
func (p *PookalamCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (p *PookalamCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &pookalamRenderer{pc: p, objects: []fyne.CanvasObject{p.raster}}
}

type pookalamRenderer struct {
	pc      *PookalamCanvas
	objects []fyne.CanvasObject
}

func (r *pookalamRenderer) Destroy()                     { r.pc.Stop() }
func (r *pookalamRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *pookalamRenderer) MinSize() fyne.Size           { return r.pc.MinSize() }
func (r *pookalamRenderer) Refresh()                     { r.pc.raster.Refresh() }
func (r *pookalamRenderer) Layout(size fyne.Size) {
	r.pc.raster.Resize(size)
	r.pc.raster.Move(fyne.NewPos(0, 0))
}
