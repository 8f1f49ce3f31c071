/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package raster executes render commands onto an in-memory RGBA image.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"

	"pookalam/internal/render"
	"pookalam/internal/vector"
)

// Canvas is a dumb drawing surface. It is not safe for concurrent use.
type Canvas struct {
	img  *image.RGBA
	ras  *xvector.Rasterizer
	face font.Face
}

// NewCanvas allocates a w x h canvas. Non-positive sizes give an empty canvas.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{face: basicfont.Face7x13}
	c.Resize(w, h)
	return c
}

// Resize reallocates the backing image when the size changes.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if c.img != nil && c.img.Rect.Dx() == w && c.img.Rect.Dy() == h {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	c.ras = xvector.NewRasterizer(max(w, 1), max(h, 1))
}

// SetFace changes the label font. nil restores the built-in face.
func (c *Canvas) SetFace(f font.Face) {
	if f == nil {
		f = basicfont.Face7x13
	}
	c.face = f
}

func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) { return c.img.Rect.Dx(), c.img.Rect.Dy() }

// MeasureText returns the advance width of s in pixels.
func (c *Canvas) MeasureText(s string) int {
	d := &font.Drawer{Face: c.face}
	return d.MeasureString(s).Round()
}

// Draw replays cmds in order.
func (c *Canvas) Draw(cmds []render.Command) {
	if c.img.Rect.Empty() {
		return
	}
	for _, cmd := range cmds {
		switch cmd.Kind {
		case render.KindClear:
			draw.Draw(c.img, c.img.Rect, image.NewUniform(cmd.Color), image.Point{}, draw.Src)
		case render.KindLine, render.KindPolyline:
			c.stroke(cmd.Points, cmd.Width, cmd.Color)
		case render.KindCircle:
			c.circle(cmd)
		case render.KindImage:
			c.blit(cmd)
		case render.KindText:
			c.text(cmd)
		}
	}
}

func (c *Canvas) bounds() vector.Rect {
	return vector.R(0, 0, float64(c.img.Rect.Dx()), float64(c.img.Rect.Dy()))
}

// stroke expands each segment to a quad and fills the union in one pass.
func (c *Canvas) stroke(pts []vector.Pt, width float64, col vector.Color) {
	if len(pts) < 2 || col.A == 0 {
		return
	}
	if !(width > 0) {
		width = 1
	}
	c.ras.Reset(c.img.Rect.Dx(), c.img.Rect.Dy())
	clip := c.bounds().Inset(-width, -width)
	drawn := false
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if !a.Finite() || !b.Finite() {
			continue
		}
		q := vector.StrokeQuad(a, b, width)
		if !overlaps(clip, vector.Bound(q[:]...)) {
			continue
		}
		c.polygon(q[:])
		drawn = true
	}
	if drawn {
		c.ras.Draw(c.img, c.img.Rect, image.NewUniform(col), image.Point{})
	}
}

func (c *Canvas) circle(cmd render.Command) {
	if cmd.Color.A == 0 || !(cmd.Radius > 0) || !cmd.Center.Finite() {
		return
	}
	box := vector.R(cmd.Center.X-cmd.Radius, cmd.Center.Y-cmd.Radius, 2*cmd.Radius, 2*cmd.Radius)
	if !overlaps(c.bounds(), box) {
		return
	}
	pts := vector.CirclePolygon(cmd.Center, cmd.Radius)
	if !cmd.Fill {
		c.stroke(append(pts, pts[0]), cmd.Width, cmd.Color)
		return
	}
	c.ras.Reset(c.img.Rect.Dx(), c.img.Rect.Dy())
	c.polygon(pts)
	c.ras.Draw(c.img, c.img.Rect, image.NewUniform(cmd.Color), image.Point{})
}

func (c *Canvas) polygon(pts []vector.Pt) {
	c.ras.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		c.ras.LineTo(float32(p.X), float32(p.Y))
	}
	c.ras.ClosePath()
}

// blit draws the image scaled to cmd.Size, rotated about its centre.
func (c *Canvas) blit(cmd render.Command) {
	if cmd.Image == nil || !(cmd.Size > 0) || cmd.Alpha <= 0 || !cmd.Center.Finite() {
		return
	}
	sb := cmd.Image.Bounds()
	if sb.Empty() {
		return
	}
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	m := vector.Translate(cmd.Center.X, cmd.Center.Y).
		Mul(vector.Rotate(cmd.Rotation)).
		Mul(vector.Scale(cmd.Size/sw, cmd.Size/sh)).
		Mul(vector.Translate(-float64(sb.Min.X)-sw/2, -float64(sb.Min.Y)-sh/2))
	if cmd.Alpha >= 1 {
		draw.BiLinear.Transform(c.img, aff3(m), cmd.Image, sb, draw.Over, nil)
		return
	}
	// translucent: resample into a scratch buffer, then composite through a
	// uniform alpha mask
	q := [4]vector.Pt{
		m.Apply(vector.Pt{X: float64(sb.Min.X), Y: float64(sb.Min.Y)}),
		m.Apply(vector.Pt{X: float64(sb.Max.X), Y: float64(sb.Min.Y)}),
		m.Apply(vector.Pt{X: float64(sb.Max.X), Y: float64(sb.Max.Y)}),
		m.Apply(vector.Pt{X: float64(sb.Min.X), Y: float64(sb.Max.Y)}),
	}
	b := vector.Bound(q[:]...)
	r := image.Rect(int(math.Floor(b.X)), int(math.Floor(b.Y)), int(math.Ceil(b.X+b.W)), int(math.Ceil(b.Y+b.H))).Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	tmp := image.NewRGBA(r)
	draw.BiLinear.Transform(tmp, aff3(m), cmd.Image, sb, draw.Src, nil)
	mask := image.NewUniform(color.Alpha{A: uint8(cmd.Alpha*255 + 0.5)})
	draw.DrawMask(c.img, r, tmp, r.Min, mask, image.Point{}, draw.Over)
}

func (c *Canvas) text(cmd render.Command) {
	if cmd.Text == "" || cmd.Color.A == 0 || !cmd.Pos.Finite() {
		return
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(cmd.Color),
		Face: c.face,
		Dot:  fixed.P(int(math.Round(cmd.Pos.X)), int(math.Round(cmd.Pos.Y))),
	}
	d.DrawString(cmd.Text)
}

func aff3(m vector.Affine2D) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}

func overlaps(a, b vector.Rect) bool {
	return b.X <= a.X+a.W && b.X+b.W >= a.X && b.Y <= a.Y+a.H && b.Y+b.H >= a.Y
}
