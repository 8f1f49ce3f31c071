/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"pookalam/internal/domain"
	"pookalam/internal/sampler"
	"pookalam/internal/scene"
)

// runInspect builds one sequence from the flags and prints a summary.
func runInspect(w io.Writer, a *app, args []string) error {
	cfg := scene.ConfigFrom(a.cfg)
	fs, pf := newFlagSet("inspect", a.cfg, false)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := pf.apply(&cfg); err != nil {
		return err
	}
	if cfg.Mode != domain.ModeFractal && cfg.Curve == "" {
		cfg.Curve = sampler.DefaultCurve(cfg.Mode)
	}
	snap := scene.Build(scene.Request{
		Params:     cfg.Params,
		Mode:       cfg.Mode,
		Curve:      cfg.Curve,
		Resolution: cfg.Resolution,
		Turns:      cfg.Turns,
		DepthSort:  cfg.DepthSort,
		MaxPoints:  cfg.MaxPoints,
	})
	return printSnapshot(w, snap)
}

func printSnapshot(w io.Writer, snap *scene.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	req := snap.Request
	fmt.Fprintf(tw, "mode:\t%s\n", req.Mode)
	if req.Curve != "" {
		fmt.Fprintf(tw, "curve:\t%s\n", req.Curve)
	}
	fmt.Fprintf(tw, "params:\t%s\n", req.Params)
	if req.Mode == domain.ModeFractal {
		fmt.Fprintf(tw, "layers:\t%d\n", snap.Layers)
		fmt.Fprintf(tw, "basis:\t%s / %s\n", snap.Primary, snap.Secondary)
	}
	fmt.Fprintf(tw, "points:\t%d\n", len(snap.Sequence))
	fmt.Fprintf(tw, "segments:\t%d\n", len(snap.Segments))
	fmt.Fprintf(tw, "depth sorted:\t%t\n", snap.Sorted)
	if snap.Dropped > 0 {
		fmt.Fprintf(tw, "dropped:\t%d\n", snap.Dropped)
	}
	fmt.Fprintf(tw, "max radius:\t%.2f\n", maxRadius(snap.Sequence))
	fmt.Fprintf(tw, "elapsed:\t%s\n", snap.Elapsed.Round(time.Microsecond))
	return tw.Flush()
}

func maxRadius(seq domain.Sequence) float64 {
	var r float64
	for _, p := range seq {
		r = math.Max(r, math.Hypot(p.X, p.Y))
	}
	return r
}
