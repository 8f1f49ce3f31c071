/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"image"
	"math"
	"strconv"

	"pookalam/internal/anim"
	"pookalam/internal/domain"
	"pookalam/internal/view"
	"pookalam/internal/vector"
)

// Options controls decoration and styling.
type Options struct {
	ShowGrid   bool
	ShowAxes   bool
	ShowLabels bool
	ShowHUD    bool
	// GridStep is the grid spacing in world units; it doubles until lines
	// are at least MinGridPx apart on the surface.
	GridStep   float64
	LineWidth  float64
	MarkerSize float64

	Background vector.Color
	GridColor  vector.Color
	AxisColor  vector.Color
	LabelColor vector.Color
	PathColor  vector.Color
	DotColor   vector.Color
}

// MinGridPx is the smallest on-surface grid spacing drawn.
const MinGridPx = 12

// maxGridLines bounds grid lines per axis.
const maxGridLines = 400

// DefaultOptions returns the stock look.
func DefaultOptions() Options {
	return Options{
		ShowGrid:   true,
		ShowAxes:   true,
		ShowLabels: true,
		ShowHUD:    true,
		GridStep:   10,
		LineWidth:  1.5,
		MarkerSize: 24,
		Background: vector.Color{R: 18, G: 14, B: 10, A: 255},
		GridColor:  vector.Color{R: 60, G: 52, B: 44, A: 255},
		AxisColor:  vector.Color{R: 120, G: 108, B: 90, A: 255},
		LabelColor: vector.Color{R: 160, G: 150, B: 130, A: 255},
		PathColor:  vector.Color{R: 255, G: 176, B: 0, A: 255},
		DotColor:   vector.Color{R: 255, G: 244, B: 214, A: 255},
	}
}

// Frame is everything one redraw depends on.
type Frame struct {
	Mode     domain.Mode
	Sequence domain.Sequence
	Segments []domain.Segment
	// Sorted marks depth-sorted sequences, whose strokes are not contiguous.
	Sorted   bool
	State    anim.State
	View     view.Transform
	Viewport view.Viewport
	// Sprite is the decoded marker image; nil selects the fallback dot.
	Sprite  image.Image
	Options Options
}

// Render produces the commands for f in paint order.
func Render(f Frame) []Command {
	o := f.Options
	cmds := []Command{Clear(o.Background)}
	if f.Viewport.Width <= 0 || f.Viewport.Height <= 0 {
		return cmds
	}
	if o.ShowGrid || o.ShowLabels {
		cmds = appendGrid(cmds, f)
	}
	if o.ShowAxes {
		cmds = appendAxes(cmds, f)
	}
	if len(f.Sequence) > 0 {
		last, tip := cursor(f)
		if f.Mode == domain.ModeImplicit {
			cmds = appendDots(cmds, f, last)
		} else {
			cmds = appendPath(cmds, f, last, tip)
		}
		cmds = appendMarker(cmds, f, last, tip)
	}
	if o.ShowHUD {
		cmds = append(cmds, Text(vector.Pt{X: 6, Y: 14}, HUD(f), o.LabelColor))
	}
	return cmds
}

// cursor returns the last fully drawn index and the interpolated tip
// position in world coordinates.
func cursor(f Frame) (int, vector.Pt) {
	seq := f.Sequence
	p := math.Max(0, f.State.Progress)
	last := min(int(p), len(seq)-1)
	tip := worldPt(seq[last])
	if frac := p - float64(last); frac > 0 && last+1 < len(seq) && continues(f, seq[last], seq[last+1]) {
		next := worldPt(seq[last+1])
		tip = tip.Add(next.Sub(tip).Mul(frac))
	}
	return last, tip
}

func worldPt(p domain.Point) vector.Pt { return vector.Pt{X: p.X, Y: p.Y} }

// continues reports whether a and b are joined by a path segment.
func continues(f Frame, a, b domain.Point) bool {
	return !f.Sorted || a.SameStroke(b)
}

func (f Frame) toSurface(w vector.Pt) vector.Pt { return f.View.ToSurface(f.Viewport, w) }

func (f Frame) pathColor(i int, segIdx *int) vector.Color {
	if f.Mode != domain.ModeFractal || len(f.Segments) == 0 {
		return f.Options.PathColor
	}
	for *segIdx < len(f.Segments)-1 && i >= f.Segments[*segIdx].End {
		*segIdx++
	}
	return domain.PaletteColor(f.Segments[*segIdx].Color)
}

func appendPath(cmds []Command, f Frame, last int, tip vector.Pt) []Command {
	seq := f.Sequence
	alpha := f.State.PathAlpha
	width := f.Options.LineWidth
	seg := 0
	color := f.pathColor(0, &seg)
	run := []vector.Pt{f.toSurface(worldPt(seq[0]))}

	flush := func() {
		if len(run) >= 2 {
			cmds = append(cmds, Polyline(run, color.WithAlpha(alpha), width))
		}
	}
	for i := 1; i <= last; i++ {
		s := f.toSurface(worldPt(seq[i]))
		if !continues(f, seq[i-1], seq[i]) {
			flush()
			color = f.pathColor(i, &seg)
			run = []vector.Pt{s}
			continue
		}
		if c := f.pathColor(i, &seg); c != color {
			// keep the joint so recoloured runs stay connected
			run = append(run, s)
			flush()
			color = c
			run = []vector.Pt{s}
			continue
		}
		run = append(run, s)
	}
	if t := f.toSurface(tip); !t.Near(run[len(run)-1], 1e-9) {
		run = append(run, t)
	}
	flush()
	return cmds
}

func appendDots(cmds []Command, f Frame, last int) []Command {
	r := math.Max(1, f.Options.LineWidth)
	c := f.Options.PathColor.WithAlpha(f.State.PathAlpha)
	for i := 0; i <= last; i++ {
		cmds = append(cmds, Circle(f.toSurface(worldPt(f.Sequence[i])), r, c, true))
	}
	return cmds
}

// appendMarker draws the sprite, or a fallback dot, at the tip, rotated to
// the local tangent estimated from neighbouring points.
func appendMarker(cmds []Command, f Frame, last int, tip vector.Pt) []Command {
	seq := f.Sequence
	prev := seq[max(last-1, 0)]
	next := seq[min(last+1, len(seq)-1)]
	if !continues(f, prev, seq[last]) {
		prev = seq[last]
	}
	if !continues(f, seq[last], next) {
		next = seq[last]
	}
	a := f.toSurface(worldPt(prev))
	b := f.toSurface(worldPt(next))
	angle := 0.0
	if d := b.Sub(a); d.Len() > 0 {
		angle = d.Angle()
	}
	centre := f.toSurface(tip)
	size := f.Options.MarkerSize
	if f.Sprite != nil {
		return append(cmds, Image(f.Sprite, centre, size, angle, f.State.SpriteAlpha))
	}
	return append(cmds, Circle(centre, math.Max(2, size/6), f.Options.DotColor.WithAlpha(f.State.SpriteAlpha), true))
}

// GridSpacing returns the world grid step actually drawn for the frame.
func GridSpacing(step, pxPerUnit float64) float64 {
	if !(step > 0) || math.IsInf(step, 0) {
		step = 10
	}
	if !(pxPerUnit > 0) {
		return step
	}
	for i := 0; step*pxPerUnit < MinGridPx && i < 64; i++ {
		step *= 2
	}
	return step
}

func appendGrid(cmds []Command, f Frame) []Command {
	o := f.Options
	vp := f.Viewport
	step := GridSpacing(o.GridStep, vp.Scale*f.View.Zoom)
	vis := f.View.Visible(vp)
	origin := f.toSurface(vector.Pt{})

	x0 := math.Ceil(vis.X/step) * step
	for i, x := 0, x0; x <= vis.X+vis.W && i < maxGridLines; i, x = i+1, x+step {
		sx := f.toSurface(vector.Pt{X: x}).X
		if o.ShowGrid {
			cmds = append(cmds, Line(vector.Pt{X: sx, Y: 0}, vector.Pt{X: sx, Y: vp.Height}, o.GridColor, 1))
		}
		if o.ShowLabels && !nearZero(x, step) {
			cmds = append(cmds, Text(vector.Pt{X: sx + 2, Y: clampF(origin.Y+12, 12, vp.Height-2)}, label(x), o.LabelColor))
		}
	}
	y0 := math.Ceil(vis.Y/step) * step
	for i, y := 0, y0; y <= vis.Y+vis.H && i < maxGridLines; i, y = i+1, y+step {
		sy := f.toSurface(vector.Pt{Y: y}).Y
		if o.ShowGrid {
			cmds = append(cmds, Line(vector.Pt{X: 0, Y: sy}, vector.Pt{X: vp.Width, Y: sy}, o.GridColor, 1))
		}
		if o.ShowLabels && !nearZero(y, step) {
			cmds = append(cmds, Text(vector.Pt{X: clampF(origin.X+3, 2, vp.Width-30), Y: sy - 2}, label(y), o.LabelColor))
		}
	}
	return cmds
}

func appendAxes(cmds []Command, f Frame) []Command {
	vp := f.Viewport
	o := f.toSurface(vector.Pt{})
	c := f.Options.AxisColor
	if o.X >= 0 && o.X <= vp.Width {
		cmds = append(cmds, Line(vector.Pt{X: o.X, Y: 0}, vector.Pt{X: o.X, Y: vp.Height}, c, 1))
	}
	if o.Y >= 0 && o.Y <= vp.Height {
		cmds = append(cmds, Line(vector.Pt{X: 0, Y: o.Y}, vector.Pt{X: vp.Width, Y: o.Y}, c, 1))
	}
	return cmds
}

// HUD is the one-line status shown over the drawing.
func HUD(f Frame) string {
	s := f.State
	state := "paused"
	if s.Running {
		state = "playing"
	}
	total := max(len(f.Sequence)-1, 0)
	return fmt.Sprintf("%s %s %s %d/%d zoom x%.2f", f.Mode, state, s.Phase, s.Index(), total, f.View.Zoom)
}

func label(v float64) string {
	return strconv.FormatFloat(vector.FloatRound(v, 4), 'g', 6, 64)
}

func nearZero(v, step float64) bool { return math.Abs(v) < step*1e-6 }

func clampF(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
