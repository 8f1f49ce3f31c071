/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package view maps world coordinates to the drawing surface and updates the
// mapping from drag and wheel input.
package view

import (
	"math"

	"pookalam/internal/vector"
)

// Zoom bounds.
const (
	MinZoom = 0.01
	MaxZoom = 100
)

// Viewport describes the drawing surface: its pixel size and the base scale
// in surface units per world unit at zoom 1.
type Viewport struct {
	Width  float64
	Height float64
	Scale  float64
}

// AutoScale returns a viewport that fits a pattern of radius size with a
// margin at zoom 1.
func AutoScale(w, h, size float64) Viewport {
	vp := Viewport{Width: w, Height: h, Scale: 1}
	if size > 0 && w > 0 && h > 0 {
		vp.Scale = 0.45 * math.Min(w, h) / size
	}
	return vp
}

// Centre returns the surface centre.
func (vp Viewport) Centre() vector.Pt { return vector.Pt{X: vp.Width / 2, Y: vp.Height / 2} }

// Transform is the pan/zoom state. The zero value is not usable; use New.
type Transform struct {
	Offset  vector.Pt
	Zoom    float64
	minZoom float64
	maxZoom float64
}

// New returns the identity view with the default zoom range.
func New() Transform {
	return Transform{Zoom: 1, minZoom: MinZoom, maxZoom: MaxZoom}
}

// WithZoomRange returns t with custom zoom bounds. Invalid ranges are ignored.
func (t Transform) WithZoomRange(lo, hi float64) Transform {
	if lo > 0 && hi >= lo && !math.IsInf(hi, 0) {
		t.minZoom, t.maxZoom = lo, hi
		t.Zoom = t.clampZoom(t.Zoom)
	}
	return t
}

func (t Transform) ZoomRange() (float64, float64) { return t.bounds() }

func (t Transform) bounds() (float64, float64) {
	if t.minZoom <= 0 || t.maxZoom < t.minZoom {
		return MinZoom, MaxZoom
	}
	return t.minZoom, t.maxZoom
}

func (t Transform) clampZoom(z float64) float64 {
	lo, hi := t.bounds()
	return math.Max(lo, math.Min(hi, z))
}

func (t Transform) factor(vp Viewport) float64 { return vp.Scale * t.Zoom }

// ToSurface maps a world point to surface coordinates. Surface y grows down.
func (t Transform) ToSurface(vp Viewport, w vector.Pt) vector.Pt {
	k := t.factor(vp)
	return vector.Pt{
		X: vp.Width/2 + (w.X+t.Offset.X)*k,
		Y: vp.Height/2 - (w.Y+t.Offset.Y)*k,
	}
}

// ToWorld is the inverse of ToSurface.
func (t Transform) ToWorld(vp Viewport, s vector.Pt) vector.Pt {
	k := t.factor(vp)
	if k == 0 {
		return vector.Pt{}
	}
	return vector.Pt{
		X: (s.X-vp.Width/2)/k - t.Offset.X,
		Y: (vp.Height/2-s.Y)/k - t.Offset.Y,
	}
}

// Matrix returns the world->surface mapping as an affine transform.
func (t Transform) Matrix(vp Viewport) vector.Affine2D {
	k := t.factor(vp)
	return vector.Translate(vp.Width/2, vp.Height/2).
		Mul(vector.Scale(k, -k)).
		Mul(vector.Translate(t.Offset.X, t.Offset.Y))
}

// Drag pans by a surface-space delta. The y axis is inverted.
func (t *Transform) Drag(vp Viewport, dx, dy float64) {
	k := t.factor(vp)
	if k == 0 || !finite(dx) || !finite(dy) {
		return
	}
	t.Offset.X += dx / k
	t.Offset.Y -= dy / k
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// the surface point s fixed.
func (t *Transform) ZoomAt(vp Viewport, s vector.Pt, factor float64) {
	if !(factor > 0) || math.IsInf(factor, 0) || vp.Scale <= 0 {
		return
	}
	pivot := t.ToWorld(vp, s)
	t.Zoom = t.clampZoom(t.Zoom * factor)
	k := t.factor(vp)
	t.Offset.X = (s.X-vp.Width/2)/k - pivot.X
	t.Offset.Y = (vp.Height/2-s.Y)/k - pivot.Y
}

// WheelFactor converts wheel notches into a zoom factor; positive notches
// zoom in.
func WheelFactor(notches, step float64) float64 {
	if !(step > 0) {
		step = 0.1
	}
	return math.Pow(1+step, notches)
}

// Reset restores zoom 1 and no pan.
func (t *Transform) Reset() {
	t.Zoom = t.clampZoom(1)
	t.Offset = vector.Pt{}
}

// Visible returns the world-space rectangle covered by the viewport.
func (t Transform) Visible(vp Viewport) vector.Rect {
	a := t.ToWorld(vp, vector.Pt{})
	b := t.ToWorld(vp, vector.Pt{X: vp.Width, Y: vp.Height})
	return vector.Bound(a, b)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
