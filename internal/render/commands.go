/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a frame description into a flat list of drawing
// commands. It never touches a real surface; executors replay the list.
package render

import (
	"image"

	"pookalam/internal/vector"
)

// Kind identifies a drawing primitive.
type Kind uint8

const (
	KindClear Kind = iota
	KindLine
	KindPolyline
	KindCircle
	KindImage
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindClear:
		return "clear"
	case KindLine:
		return "line"
	case KindPolyline:
		return "polyline"
	case KindCircle:
		return "circle"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Command is one primitive in surface coordinates. Fields not used by Kind
// are zero.
type Command struct {
	Kind   Kind
	Color  vector.Color
	Width  float64
	Points []vector.Pt // line (2 points) and polyline

	Center vector.Pt // circle and image centre
	Radius float64
	Fill   bool

	Image    image.Image
	Size     float64 // image edge length
	Rotation float64 // radians, clockwise on a y-down surface
	Alpha    float64

	Pos  vector.Pt // text baseline origin
	Text string
}

func Clear(c vector.Color) Command { return Command{Kind: KindClear, Color: c} }

func Line(a, b vector.Pt, c vector.Color, width float64) Command {
	return Command{Kind: KindLine, Points: []vector.Pt{a, b}, Color: c, Width: width}
}

func Polyline(pts []vector.Pt, c vector.Color, width float64) Command {
	return Command{Kind: KindPolyline, Points: pts, Color: c, Width: width}
}

func Circle(center vector.Pt, r float64, c vector.Color, fill bool) Command {
	return Command{Kind: KindCircle, Center: center, Radius: r, Color: c, Fill: fill, Width: 1}
}

func Image(img image.Image, center vector.Pt, size, rotation, alpha float64) Command {
	return Command{Kind: KindImage, Image: img, Center: center, Size: size, Rotation: rotation, Alpha: alpha}
}

func Text(pos vector.Pt, s string, c vector.Color) Command {
	return Command{Kind: KindText, Pos: pos, Text: s, Color: c}
}

// Count returns how many commands of kind k are in cmds.
func Count(cmds []Command, k Kind) int {
	n := 0
	for _, c := range cmds {
		if c.Kind == k {
			n++
		}
	}
	return n
}
