/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"math"
	"time"

	"pookalam/internal/anim"
	"pookalam/internal/config"
	"pookalam/internal/domain"
	"pookalam/internal/render"
	"pookalam/internal/vector"
)

// Param names one adjustable generation parameter.
type Param int

const (
	ParamSize Param = iota
	ParamDensity
	ParamPetals
	ParamStyle
	ParamComplexity
	ParamSymmetry
)

// Range is the interactive range and step of a parameter.
type Range struct {
	Name           string
	Min, Max, Step float64
}

// Ranges lists the interactive limits hosts offer, indexed by Param.
var Ranges = []Range{
	ParamSize:       {Name: "size", Min: 10, Max: 1000, Step: 10},
	ParamDensity:    {Name: "density", Min: 0.3, Max: 1, Step: 0.05},
	ParamPetals:     {Name: "petals", Min: 3, Max: 32, Step: 1},
	ParamStyle:      {Name: "style", Min: 0, Max: math.MaxInt32, Step: 1},
	ParamComplexity: {Name: "complexity", Min: 0, Max: 1, Step: 0.05},
	ParamSymmetry:   {Name: "symmetry", Min: 0.5, Max: 1, Step: 0.05},
}

func (p Param) String() string {
	if p < 0 || int(p) >= len(Ranges) {
		return fmt.Sprintf("param(%d)", int(p))
	}
	return Ranges[p].Name
}

// Get reads parameter which from gp.
func Get(gp domain.GenerationParameters, which Param) float64 {
	switch which {
	case ParamSize:
		return gp.Size
	case ParamDensity:
		return gp.Density
	case ParamPetals:
		return gp.Petals
	case ParamStyle:
		return float64(gp.Style)
	case ParamComplexity:
		return gp.Complexity
	case ParamSymmetry:
		return gp.Symmetry
	}
	return 0
}

// Set writes v into parameter which, clamped to its Range.
func Set(gp domain.GenerationParameters, which Param, v float64) domain.GenerationParameters {
	if which < 0 || int(which) >= len(Ranges) || math.IsNaN(v) {
		return gp
	}
	r := Ranges[which]
	v = vector.FloatRound(math.Max(r.Min, math.Min(r.Max, v)), 4)
	switch which {
	case ParamSize:
		gp.Size = v
	case ParamDensity:
		gp.Density = v
	case ParamPetals:
		gp.Petals = v
	case ParamStyle:
		gp.Style = int(v)
	case ParamComplexity:
		gp.Complexity = v
	case ParamSymmetry:
		gp.Symmetry = v
	}
	return gp
}

// Step moves parameter which by dir steps.
func Step(gp domain.GenerationParameters, which Param, dir int) domain.GenerationParameters {
	if which < 0 || int(which) >= len(Ranges) {
		return gp
	}
	return Set(gp, which, Get(gp, which)+float64(dir)*Ranges[which].Step)
}

// Adjust steps one parameter and schedules a rebuild.
func (s *Scene) Adjust(which Param, dir int) domain.GenerationParameters {
	var out domain.GenerationParameters
	s.update(func(r *Request) {
		r.Params = Step(r.Params, which, dir)
		out = r.Params
	})
	return out
}

// CycleMode switches to the next mode with its default curve.
func (s *Scene) CycleMode() domain.Mode {
	next := s.Request().Mode.Next()
	s.SetMode(next, "")
	return next
}

// ConfigFrom maps the application config onto a session setup.
func ConfigFrom(ac config.AppConfig) Config {
	cfg := DefaultConfig()
	cfg.Params = ac.Generation.GenerationParameters
	cfg.Mode = ac.Generation.ParsedMode()
	cfg.Curve = ac.Generation.Curve
	if ac.Generation.Resolution > 0 {
		cfg.Resolution = ac.Generation.Resolution
	}
	if ac.Generation.Turns > 0 {
		cfg.Turns = ac.Generation.Turns
	}
	cfg.DepthSort = ac.Generation.DepthSort
	if ac.Generation.MaxPoints > 0 {
		cfg.MaxPoints = ac.Generation.MaxPoints
	}

	a := anim.DefaultConfig()
	if ac.Animation.Speed > 0 {
		a.Speed = ac.Animation.Speed
	}
	if ac.Animation.UnitsPerSecond > 0 {
		a.UnitsPerSecond = ac.Animation.UnitsPerSecond
	}
	if ac.Animation.HoldMs > 0 {
		a.Hold = time.Duration(ac.Animation.HoldMs) * time.Millisecond
	}
	if ac.Animation.FadeMs > 0 {
		a.Fade = time.Duration(ac.Animation.FadeMs) * time.Millisecond
	}
	cfg.Anim = a

	v := ac.View
	if v.MinZoom > 0 && v.MaxZoom > v.MinZoom {
		cfg.MinZoom, cfg.MaxZoom = v.MinZoom, v.MaxZoom
	}
	if v.WheelStep > 0 {
		cfg.WheelStep = v.WheelStep
	}
	ro := render.DefaultOptions()
	ro.ShowGrid = v.ShowGrid
	ro.ShowAxes = v.ShowAxes
	ro.ShowLabels = v.ShowLabels
	ro.ShowHUD = v.ShowHUD
	if v.GridStep > 0 {
		ro.GridStep = v.GridStep
	}
	if v.LineWidth > 0 {
		ro.LineWidth = v.LineWidth
	}
	if v.MarkerSize > 0 {
		ro.MarkerSize = v.MarkerSize
	}
	cfg.Render = ro
	return cfg
}
