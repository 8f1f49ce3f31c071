/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pattern synthesizes layered mandala geometry from generation
// parameters. A Composer is resolved once per parameter set and then queried
// per sampled angle.
package pattern

import (
	"math"

	"pookalam/internal/domain"
	"pookalam/internal/fractal"
	"pookalam/internal/rng"
)

const (
	// SeedOffset is added to the style parameter before seeding the RNG.
	SeedOffset = 7919

	minLayers = 3
	maxLayers = 64
	minPetals = 4
	maxPetals = 64

	// petalThreshold is the complexity above which petal detail is emitted.
	petalThreshold = 0.4
	// maxSubPetals is the sub-petal count at complexity 1.
	maxSubPetals = 6
	// coreFraction is the share of outer layers that carry no core points.
	coreFraction = 0.6

	petalRing   = 0.6
	petalRadius = 0.25
	coreRadius  = 0.25

	// harmonicNorm is 1 + 1/2 + 1/3; dividing by it keeps the harmonic sum
	// near the nominal core radius before the clamp.
	harmonicNorm = 11.0 / 6.0
)

// Depth offsets within one layer. Depth = layer*depthStride + kind.
const (
	depthMain = iota
	depthPetals
	depthCore
	depthStride
)

// Composer holds the resolved choices for one parameter set.
type Composer struct {
	params     domain.GenerationParameters
	layers     int
	petals     int
	subPetals  int
	complexity float64
	primary    fractal.Basis
	secondary  fractal.Basis
	asymmetry  float64
	rings      []ring
}

// ring caches the per-layer quantities that do not depend on the angle.
type ring struct {
	index     int
	radius    float64
	weight    float64
	amplitude float64
	core      bool
}

// New resolves layer counts, basis choices and the asymmetry phase.
// Degenerate inputs are floored or clamped, never rejected.
func New(params domain.GenerationParameters) *Composer {
	p := params.Sanitize()
	c := &Composer{params: p}

	// clamped before the int conversion so huge inputs cannot overflow
	c.layers = int(clamp(math.Floor(p.Density*10), minLayers, maxLayers))
	c.petals = int(clamp(math.Floor(p.Petals), minPetals, maxPetals))
	c.complexity = clamp(p.Complexity, 0, 1)
	if c.complexity > petalThreshold {
		c.subPetals = int(math.Floor(c.complexity * maxSubPetals))
		if c.subPetals < 1 {
			c.subPetals = 1
		}
	}

	r := rng.New(uint32(int64(p.Style) + SeedOffset))
	all := fractal.All()
	c.primary = all[r.Intn(len(all))]
	c.secondary = all[r.Intn(len(all))]
	c.asymmetry = r.Next() * 2 * math.Pi * (1 - clamp(p.Symmetry, 0, 1))

	c.rings = make([]ring, c.layers)
	for i := range c.rings {
		progress := 0.0
		if c.layers > 1 {
			progress = float64(i) / float64(c.layers-1)
		}
		w := math.Sin(math.Pi * progress)
		c.rings[i] = ring{
			index:     i,
			radius:    p.Size * (1 - 0.9*progress),
			weight:    w,
			amplitude: (0.05 + 0.25*c.complexity) * (0.4 + 0.6*w),
			core:      float64(i) >= coreFraction*float64(c.layers),
		}
	}
	return c
}

func (c *Composer) Params() domain.GenerationParameters { return c.params }
func (c *Composer) Size() float64                       { return c.params.Size }
func (c *Composer) Layers() int                         { return c.layers }
func (c *Composer) Petals() int                         { return c.petals }
func (c *Composer) SubPetals() int                      { return c.subPetals }
func (c *Composer) Primary() fractal.Basis              { return c.primary }
func (c *Composer) Secondary() fractal.Basis            { return c.secondary }
func (c *Composer) Asymmetry() float64                  { return c.asymmetry }

// LayerRadius returns the nominal radius of layer i, or 0 when out of range.
func (c *Composer) LayerRadius(i int) float64 {
	if i < 0 || i >= len(c.rings) {
		return 0
	}
	return c.rings[i].radius
}

// PointsAt returns every point belonging to angle t across all layers, in
// emission order: for each layer the main ring point, then petal detail,
// then core points.
func (c *Composer) PointsAt(t float64) []domain.Point {
	out := make([]domain.Point, 0, c.PointsPerAngle())
	for _, rg := range c.rings {
		out = append(out, c.mainPoint(rg, t))
		if c.subPetals > 0 {
			out = c.appendPetals(out, rg, t)
		}
		if rg.core {
			out = append(out, c.corePoint(rg, t))
		}
	}
	return out
}

// PointsPerAngle returns how many points PointsAt emits for each angle.
func (c *Composer) PointsPerAngle() int {
	n := 0
	for _, rg := range c.rings {
		n += 1 + c.subPetals
		if rg.core {
			n++
		}
	}
	return n
}

func (c *Composer) mainPoint(rg ring, t float64) domain.Point {
	freq := float64(c.petals)
	r1 := c.primary.Eval(t, rg.radius, freq, rg.amplitude)
	r2 := c.secondary.Eval(t+c.asymmetry, rg.radius, freq/2, rg.amplitude/2)
	r := rg.weight*r1 + (1-rg.weight)*r2
	r = math.Min(r, rg.radius)
	return c.point(r*math.Cos(t), r*math.Sin(t), rg, depthMain, c.primary)
}

func (c *Composer) appendPetals(out []domain.Point, rg ring, t float64) []domain.Point {
	freq := float64(c.petals)
	centreR := petalRing * rg.radius
	span := 2 * math.Pi / freq
	for k := 0; k < c.subPetals; k++ {
		frac := float64(k) / float64(c.subPetals)
		centreA := t + span*frac
		cx := centreR * math.Cos(centreA)
		cy := centreR * math.Sin(centreA)

		local := freq*t + c.asymmetry + 2*math.Pi*frac
		lr := c.secondary.Eval(local, petalRadius*rg.radius, freq*(1+frac), rg.amplitude)
		x := cx + lr*math.Cos(centreA+local)
		y := cy + lr*math.Sin(centreA+local)

		if d := math.Hypot(x, y); d > c.params.Size && d > 0 {
			s := c.params.Size / d
			x, y = x*s, y*s
		}
		pt := c.point(x, y, rg, depthPetals, c.secondary)
		pt.Strand = k
		out = append(out, pt)
	}
	return out
}

func (c *Composer) corePoint(rg ring, t float64) domain.Point {
	nominal := coreRadius * rg.radius
	freq := float64(c.petals)
	sum := 0.0
	for h := 1; h <= 3; h++ {
		hf := float64(h)
		sum += c.primary.Eval(t*hf, nominal/(hf*harmonicNorm), freq*hf, rg.amplitude/hf)
	}
	r := math.Min(sum, nominal)
	return c.point(r*math.Cos(t), r*math.Sin(t), rg, depthCore, c.primary)
}

func (c *Composer) point(x, y float64, rg ring, kind int, basis fractal.Basis) domain.Point {
	return domain.Point{
		X:       x,
		Y:       y,
		Depth:   rg.index*depthStride + kind,
		Layer:   domain.Layer(kind),
		Color:   (rg.index + kind) % len(domain.Palette),
		Pattern: basis,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
