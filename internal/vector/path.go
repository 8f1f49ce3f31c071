/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and the flattening helpers used by the raster executor.

import "math"

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	Close
)

type PathCmd struct {
	Op PathOp
	P  Pt
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, P: Pt{x, y}}) }
func (p *Path) LineTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, P: Pt{x, y}}) }
func (p *Path) Close()              { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Polygon appends a closed subpath through pts.
func (p *Path) Polygon(pts ...Pt) {
	if len(pts) == 0 {
		return
	}
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		p.LineTo(q.X, q.Y)
	}
	p.Close()
}

// Transform returns a copy of the path with m applied to every point.
func (p *Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		if c.Op != Close {
			c.P = m.Apply(c.P)
		}
		out.Cmds[i] = c
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the path.
func (p *Path) Bounds() Rect {
	var pts []Pt
	for _, c := range p.Cmds {
		if c.Op != Close {
			pts = append(pts, c.P)
		}
	}
	return Bound(pts...)
}

// StrokeQuad returns the four corners of a segment a-b thickened to width.
// A zero-length segment yields a width x width square centred on a.
func StrokeQuad(a, b Pt, width float64) [4]Pt {
	h := width / 2
	dir := b.Sub(a).Unit()
	if dir == (Pt{}) {
		dir = Pt{1, 0}
		a = a.Sub(Pt{h, 0})
		b = b.Add(Pt{h, 0})
	}
	n := dir.Perp().Mul(h)
	return [4]Pt{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
}

// CirclePolygon approximates a circle with a regular polygon whose vertex
// count grows with the radius.
func CirclePolygon(c Pt, r float64) []Pt {
	n := int(math.Ceil(2 * math.Pi * r / 2))
	n = max(8, min(n, 256))
	pts := make([]Pt, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Pt{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
	}
	return pts
}
