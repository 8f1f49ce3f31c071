/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fractal holds the fixed set of radius-modulation basis functions the
// pattern composer draws from. Each basis is pure, deterministic and bounded:
//
//	scale*(1 - amplitude*MaxModulation) <= f(t) <= scale*(1 + amplitude*MaxModulation)
//
// for any finite input, which the composer's clamping relies on.
package fractal

import (
	"fmt"
	"math"
	"strings"
)

// MaxModulation is the bound K on |f(t)/scale - 1| / amplitude.
const MaxModulation = 1.5

// Basis identifies one registered basis function.
type Basis int

const (
	Fibonacci Basis = iota
	Dragon
	Koch
	Mandelbrot
	Fern

	basisCount
)

// registry order is load-bearing: RNG-indexed selection depends on it.
var registry = [basisCount]struct {
	name string
	fn   func(t, freq float64) float64
}{
	Fibonacci:  {"fibonacci", fibonacci},
	Dragon:     {"dragon", dragon},
	Koch:       {"koch", koch},
	Mandelbrot: {"mandelbrot", mandelbrot},
	Fern:       {"fern", fern},
}

// All returns every registered basis in stable order.
func All() []Basis {
	out := make([]Basis, 0, basisCount)
	for b := Basis(0); b < basisCount; b++ {
		out = append(out, b)
	}
	return out
}

// Count is the number of registered basis functions.
func Count() int { return int(basisCount) }

// Valid reports whether b names a registered basis.
func (b Basis) Valid() bool { return b >= 0 && b < basisCount }

func (b Basis) String() string {
	if !b.Valid() {
		return fmt.Sprintf("basis(%d)", int(b))
	}
	return registry[b].name
}

// Parse resolves a basis by name (case-insensitive).
func Parse(name string) (Basis, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for b := Basis(0); b < basisCount; b++ {
		if registry[b].name == n {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown basis %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (b Basis) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid basis %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Basis) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Eval returns the modulated radius for phase t. Invalid bases and non-finite
// inputs fall back to the unmodulated radius.
func (b Basis) Eval(t, scale, freq, amplitude float64) float64 {
	if !b.Valid() || !finite(t) || !finite(freq) || !finite(amplitude) {
		return scale
	}
	m := registry[b].fn(t, freq)
	if !finite(m) {
		return scale
	}
	// keep the documented bound even if a basis misbehaves
	m = math.Max(-MaxModulation, math.Min(MaxModulation, m))
	return scale * (1 + amplitude*m)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

const twoPi = 2 * math.Pi

// fibonacci: golden-spiral style logarithmic growth over each turn, carrying a
// sinusoid at freq.
func fibonacci(t, freq float64) float64 {
	u := math.Mod(math.Abs(t), twoPi) / twoPi
	growth := math.Log2(1 + u) // 0..1, logarithmic
	return 0.5*growth + math.Sin(freq*t)*(0.5+0.5*growth)
}

// dragon: paper-folding sequence sign on the integer part of t*freq/2π.
func dragon(t, freq float64) float64 {
	n := uint64(math.Abs(math.Floor(t * freq / twoPi)))
	sign := 1.0
	if n != 0 && (n&-n)<<1&n != 0 {
		sign = -1
	}
	return sign * math.Cos(freq*t)
}

// koch: four cosine harmonics, frequency x3 and amplitude /3 per step.
func koch(t, freq float64) float64 {
	sum := 0.0
	f, a := freq, 1.0
	for i := 0; i < 4; i++ {
		sum += a * math.Cos(f*t)
		f *= 3
		a /= 3
	}
	return sum
}

// mandelbrot: escape-time magnitude of z <- z^2 + c drives a sinusoid.
func mandelbrot(t, freq float64) float64 {
	c := complex(0.3, 0.1)
	z := complex(0.5*math.Cos(t), 0.5*math.Sin(t))
	for i := 0; i < 8; i++ {
		z = z*z + c
		if real(z)*real(z)+imag(z)*imag(z) > 4 {
			break
		}
	}
	mag := math.Hypot(real(z), imag(z))
	return math.Sin(freq*t) * math.Min(mag, 2) / 2
}

// fern: decaying envelope times two sinusoids.
func fern(t, freq float64) float64 {
	env := math.Exp(-0.5 * math.Abs(t))
	return env * math.Sin(freq*t) * math.Cos(0.5*freq*t+1)
}
