/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sampler

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"pookalam/internal/domain"
)

// ErrUnknownCurve is returned by LookupCurve for names outside the catalogue.
var ErrUnknownCurve = errors.New("unknown curve")

var errUndefined = errors.New("undefined")

// Curve is a named built-in source for the non-fractal modes. Exactly one of
// Function, Parametric or Field is set, matching Mode.
type Curve struct {
	Name       string
	Mode       domain.Mode
	Domain     Domain
	Resolution float64
	Function   Func
	Parametric ParamFunc
	Field      FieldFunc
}

// Request returns a sampling request for the curve.
func (c Curve) Request() Request {
	return Request{
		Mode:       c.Mode,
		Function:   c.Function,
		Parametric: c.Parametric,
		Field:      c.Field,
		Domain:     c.Domain,
		Resolution: c.Resolution,
	}
}

var curves = map[string]Curve{
	"sin": {
		Mode: domain.ModeFunction, Domain: Domain{-10, 10}, Resolution: 0.02,
		Function: func(x float64) (float64, error) { return 3 * math.Sin(x), nil },
	},
	"damped": {
		Mode: domain.ModeFunction, Domain: Domain{-10, 10}, Resolution: 0.02,
		Function: func(x float64) (float64, error) {
			if x == 0 {
				return 5, nil
			}
			return 5 * math.Sin(x) / x, nil
		},
	},
	"rose": {
		Mode: domain.ModeParametric, Domain: Domain{0, 2 * math.Pi}, Resolution: 0.005,
		Parametric: func(t float64) (float64, float64, error) {
			r := 5 * math.Cos(4*t)
			return r * math.Cos(t), r * math.Sin(t), nil
		},
	},
	"lissajous": {
		Mode: domain.ModeParametric, Domain: Domain{0, 2 * math.Pi}, Resolution: 0.005,
		Parametric: func(t float64) (float64, float64, error) {
			return 5 * math.Sin(3*t+math.Pi/2), 5 * math.Sin(4*t), nil
		},
	},
	"heart": {
		Mode: domain.ModeParametric, Domain: Domain{0, 2 * math.Pi}, Resolution: 0.005,
		Parametric: func(t float64) (float64, float64, error) {
			s := math.Sin(t)
			x := 16 * s * s * s
			y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
			return x / 3, y / 3, nil
		},
	},
	"circle": {
		Mode: domain.ModeImplicit, Domain: Domain{-6, 6}, Resolution: 0.05,
		Field: func(x, y float64) (float64, error) { return x*x + y*y - 25, nil },
	},
	"lemniscate": {
		Mode: domain.ModeImplicit, Domain: Domain{-6, 6}, Resolution: 0.05,
		Field: func(x, y float64) (float64, error) {
			r2 := x*x + y*y
			return r2*r2 - 2*25*(x*x-y*y), nil
		},
	},
	"hyperbola": {
		Mode: domain.ModeFunction, Domain: Domain{-10, 10}, Resolution: 0.02,
		Function: func(x float64) (float64, error) {
			if x == 0 {
				return 0, errUndefined
			}
			return 4 / x, nil
		},
	},
}

// LookupCurve returns the catalogue entry for name.
func LookupCurve(name string) (Curve, error) {
	c, ok := curves[name]
	if !ok {
		return Curve{}, fmt.Errorf("%w %q", ErrUnknownCurve, name)
	}
	c.Name = name
	return c, nil
}

// CurveNames lists catalogue entries for mode in name order.
func CurveNames(mode domain.Mode) []string {
	var names []string
	for name, c := range curves {
		if c.Mode == mode {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultCurve returns the first catalogue entry for mode, or "" for fractal.
func DefaultCurve(mode domain.Mode) string {
	names := CurveNames(mode)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
