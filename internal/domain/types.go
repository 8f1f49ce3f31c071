/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model shared by the generator, the sampler,
// the animation machine and the renderer. Values are plain data; producers
// build them once and consumers never mutate them.

import (
	"fmt"
	"math"
	"strings"

	"pookalam/internal/fractal"
	"pookalam/internal/vector"
)

// GenerationParameters is the immutable input to one pattern synthesis.
type GenerationParameters struct {
	Size       float64 `json:"size" yaml:"size"`             // base radius, > 0
	Density    float64 `json:"density" yaml:"density"`       // layer-count driver, 0.3..1.0
	Petals     float64 `json:"petals" yaml:"petals"`         // primary rotational symmetry, >= 3
	Style      int     `json:"style" yaml:"style"`           // integer seed
	Complexity float64 `json:"complexity" yaml:"complexity"` // 0..1, detail driver
	Symmetry   float64 `json:"symmetry" yaml:"symmetry"`     // 0.5..1.0, 1 = perfectly symmetric
}

// DefaultParameters returns the parameter set hosts start with.
func DefaultParameters() GenerationParameters {
	return GenerationParameters{
		Size:       100,
		Density:    0.6,
		Petals:     8,
		Style:      1,
		Complexity: 0.5,
		Symmetry:   1.0,
	}
}

// Sanitize replaces non-finite or non-positive fields with defaults. Range
// clamps beyond that are applied by the composer, never here.
func (p GenerationParameters) Sanitize() GenerationParameters {
	d := DefaultParameters()
	if !finite(p.Size) || p.Size <= 0 {
		p.Size = d.Size
	}
	if !finite(p.Density) {
		p.Density = d.Density
	}
	if !finite(p.Petals) {
		p.Petals = d.Petals
	}
	if !finite(p.Complexity) {
		p.Complexity = d.Complexity
	}
	if !finite(p.Symmetry) {
		p.Symmetry = d.Symmetry
	}
	return p
}

func (p GenerationParameters) String() string {
	return fmt.Sprintf("size=%g density=%g petals=%g style=%d complexity=%g symmetry=%g",
		p.Size, p.Density, p.Petals, p.Style, p.Complexity, p.Symmetry)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Layer classifies where a point belongs in the composed pattern.
type Layer int

const (
	LayerMain Layer = iota
	LayerPetals
	LayerCore
)

func (l Layer) String() string {
	switch l {
	case LayerMain:
		return "main"
	case LayerPetals:
		return "petals"
	case LayerCore:
		return "core"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Point is one sample of a generated path.
// Depth is the paint-order key: deeper values are drawn first when a sequence
// is depth sorted. Strand distinguishes interleaved curves that share a
// depth, such as the sub-petals of one layer.
type Point struct {
	X, Y    float64
	Depth   int
	Strand  int
	Layer   Layer
	Color   int
	Pattern fractal.Basis
}

// SameStroke reports whether p and q belong to the same continuous curve.
func (p Point) SameStroke(q Point) bool {
	return p.Depth == q.Depth && p.Layer == q.Layer && p.Strand == q.Strand
}

// Radius returns the distance from the origin.
func (p Point) Radius() float64 { return math.Hypot(p.X, p.Y) }

// Sequence is a fully materialized, indexable list of points.
type Sequence []Point

// Len is len(s), spelled out for readability at call sites.
func (s Sequence) Len() int { return len(s) }

// Last returns the index of the final point, or 0 for an empty sequence.
func (s Sequence) Last() int {
	if len(s) == 0 {
		return 0
	}
	return len(s) - 1
}

// MaxRadius returns the largest distance from the origin in the sequence.
func (s Sequence) MaxRadius() float64 {
	m := 0.0
	for _, p := range s {
		m = math.Max(m, p.Radius())
	}
	return m
}

// Segment is a contiguous [Start,End) slice of a sequence with one display color.
type Segment struct {
	Start int
	End   int
	Color int
}

// Len returns the number of points covered.
func (s Segment) Len() int { return s.End - s.Start }

// Mode selects the point source feeding the sampler.
type Mode int

const (
	ModeFractal Mode = iota
	ModeFunction
	ModeParametric
	ModeImplicit
)

var modeNames = []string{"fractal", "function", "parametric", "implicit"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Modes lists all modes in cycling order.
func Modes() []Mode { return []Mode{ModeFractal, ModeFunction, ModeParametric, ModeImplicit} }

// ParseMode resolves a mode by name.
func ParseMode(s string) (Mode, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name == n {
			return Mode(i), nil
		}
	}
	return ModeFractal, fmt.Errorf("unknown mode %q", s)
}

// Next returns the following mode in cycling order.
func (m Mode) Next() Mode { return Mode((int(m) + 1) % len(modeNames)) }

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Palette is the fixed festival palette segments cycle through.
var Palette = []vector.Color{
	{R: 255, G: 176, B: 0, A: 255},   // marigold
	{R: 255, G: 120, B: 20, A: 255},  // saffron
	{R: 200, G: 20, B: 40, A: 255},   // crimson
	{R: 220, G: 40, B: 150, A: 255},  // magenta
	{R: 40, G: 150, B: 60, A: 255},   // leaf green
	{R: 250, G: 248, B: 235, A: 255}, // jasmine
	{R: 120, G: 60, B: 200, A: 255},  // violet
	{R: 230, G: 200, B: 30, A: 255},  // turmeric
}

// PaletteColor returns the palette entry for any index, wrapping negatives.
func PaletteColor(i int) vector.Color {
	n := len(Palette)
	i %= n
	if i < 0 {
		i += n
	}
	return Palette[i]
}
