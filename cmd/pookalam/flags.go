/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"flag"
	"fmt"
	"io"

	"pookalam/internal/config"
	"pookalam/internal/domain"
	"pookalam/internal/presets"
	"pookalam/internal/sampler"
	"pookalam/internal/scene"
)

// paramFlags binds the generation parameter flags onto defaults taken from
// the config file.
type paramFlags struct {
	params domain.GenerationParameters
	mode   string
	curve  string
	preset string
}

func newFlagSet(name string, cfg config.AppConfig, withPreset bool) (*flag.FlagSet, *paramFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pf := &paramFlags{
		params: cfg.Generation.GenerationParameters,
		mode:   cfg.Generation.Mode,
		curve:  cfg.Generation.Curve,
	}
	fs.Float64Var(&pf.params.Size, "size", pf.params.Size, "base radius")
	fs.Float64Var(&pf.params.Density, "density", pf.params.Density, "layer density 0.3..1")
	fs.Float64Var(&pf.params.Petals, "petals", pf.params.Petals, "rotational symmetry")
	fs.IntVar(&pf.params.Style, "style", pf.params.Style, "style seed")
	fs.Float64Var(&pf.params.Complexity, "complexity", pf.params.Complexity, "detail 0..1")
	fs.Float64Var(&pf.params.Symmetry, "symmetry", pf.params.Symmetry, "symmetry 0.5..1")
	fs.StringVar(&pf.mode, "mode", pf.mode, "fractal|function|parametric|implicit")
	fs.StringVar(&pf.curve, "curve", pf.curve, "catalogue curve for non-fractal modes")
	if withPreset {
		fs.StringVar(&pf.preset, "preset", "", "start from a saved preset")
	}
	return fs, pf
}

// apply writes the flag values over cfg.
func (pf *paramFlags) apply(cfg *scene.Config) error {
	m, err := domain.ParseMode(pf.mode)
	if err != nil {
		return err
	}
	curve := pf.curve
	if m == domain.ModeFractal {
		curve = ""
	} else if curve != "" {
		c, err := sampler.LookupCurve(curve)
		if err != nil {
			return err
		}
		if c.Mode != m {
			return fmt.Errorf("curve %q belongs to %s mode, not %s", curve, c.Mode, m)
		}
	}
	cfg.Params = pf.params.Sanitize()
	cfg.Mode = m
	cfg.Curve = curve
	return nil
}

// applyPreset replaces the generation setup with a stored preset.
func applyPreset(cfg *scene.Config, p presets.Preset) {
	cfg.Params = p.Params
	cfg.Mode = p.Mode
	cfg.Curve = p.Curve
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", fs.Name(), err)
	}
	return nil
}
